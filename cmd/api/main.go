package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DmitriySvyatov/WalletApi/config"
	kafkaEvents "github.com/DmitriySvyatov/WalletApi/internal/adapter/events/kafka"
	httpHandler "github.com/DmitriySvyatov/WalletApi/internal/adapter/http/handler"
	memStorage "github.com/DmitriySvyatov/WalletApi/internal/adapter/storage/memory"
	pgStorage "github.com/DmitriySvyatov/WalletApi/internal/adapter/storage/postgres"
	redisStorage "github.com/DmitriySvyatov/WalletApi/internal/adapter/storage/redis"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"
	"github.com/DmitriySvyatov/WalletApi/internal/service"
	"github.com/DmitriySvyatov/WalletApi/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("WALLET_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("backend", cfg.Store.Backend).
		Msg("Starting Wallet API")

	ctx := context.Background()
	var healthCheckers []ports.HealthChecker

	// Redis backs idempotency and rate limiting, and optionally the wallets.
	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected")
	}

	var store ports.WalletStore
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare schema")
		}
		store = pgStorage.NewWalletStore(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
		log.Info().Msg("PostgreSQL connected")
	case config.BackendRedis:
		store = redisStorage.NewWalletStore(rdb, cfg.Wallet.MutationRetries)
	case config.BackendMemory:
		store = memStorage.NewWalletStore()
		log.Warn().Msg("Using in-memory wallet store, balances are lost on restart")
	}

	var publisher ports.EventPublisher
	if cfg.Kafka.Enabled {
		p := kafkaEvents.NewPublisher(cfg.Kafka, log)
		defer func() {
			if err := p.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to flush wallet events")
			}
		}()
		publisher = p
		healthCheckers = append(healthCheckers, kafkaEvents.NewHealthCheck(cfg.Kafka.Brokers))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher enabled")
	}

	lifecycleSvc := service.NewWalletLifecycleService(store, publisher, cfg.Wallet.MaxCreateAttempts, logger.Component(log, "wallet_lifecycle"))
	mutatorSvc := service.NewBalanceMutatorService(store, publisher, logger.Component(log, "balance_mutator"))
	querySvc := service.NewBalanceQueryService(store, logger.Component(log, "balance_query"))

	deps := httpHandler.RouterDeps{
		Lifecycle:      lifecycleSvc,
		Mutator:        mutatorSvc,
		Query:          querySvc,
		IdempotencyTTL: cfg.Wallet.IdempotencyTTL,
		HealthCheckers: healthCheckers,
		Logger:         log,
	}
	if rdb != nil {
		deps.IdempotencyStore = redisStorage.NewIdempotencyStore(rdb)
		if cfg.RateLimit.Enabled {
			deps.RateLimitStore = redisStorage.NewRateLimitStore(rdb)
		}
	}

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

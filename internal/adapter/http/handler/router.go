package handler

import (
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/adapter/http/middleware"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Lifecycle        ports.WalletLifecycle
	Mutator          ports.BalanceMutator
	Query            ports.BalanceQuery
	RateLimitStore   ports.RateLimitStore   // nil = rate limiting disabled
	IdempotencyStore ports.IdempotencyStore // nil = Idempotency-Key ignored
	IdempotencyTTL   time.Duration
	HealthCheckers   []ports.HealthChecker
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
// The gin mode is left to the caller.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBodyBytes))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	noop := func(c *gin.Context) { c.Next() }

	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return noop
		}
		rule, ok := rules[group]
		if !ok {
			return noop
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	idem := gin.HandlerFunc(noop)
	if deps.IdempotencyStore != nil {
		idem = middleware.Idempotency(deps.IdempotencyStore, deps.IdempotencyTTL, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.Lifecycle, deps.Mutator, deps.Query)

	v1 := r.Group("/api/v1")

	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl(middleware.GroupWalletCreate), idem, walletHandler.Create)
		wallets.POST("/create", rl(middleware.GroupWalletCreate), idem, walletHandler.Create)
		wallets.GET("/:id", rl(middleware.GroupWalletReads), walletHandler.GetWallet)
		wallets.GET("/:id/balance", rl(middleware.GroupWalletReads), walletHandler.GetBalance)
		wallets.POST("/:id/operations", rl(middleware.GroupWalletOperations), idem, walletHandler.ApplyOperation)
	}

	v1.POST("/wallet", rl(middleware.GroupWalletOperations), idem, walletHandler.LegacyOperation)

	return r
}

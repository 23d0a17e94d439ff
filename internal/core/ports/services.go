package ports

import (
	"context"
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
)

// IdempotencyStore keeps responses for client-supplied Idempotency-Keys.
type IdempotencyStore interface {
	// Reserve marks key as in flight. Returns false if it is already reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get returns the stored response, or nil if the key is unknown or still in flight.
	Get(ctx context.Context, key string) (*domain.IdempotentResponse, error)
	// Save replaces the reservation with the final response.
	Save(ctx context.Context, key string, resp *domain.IdempotentResponse, ttl time.Duration) error
	// Release drops a reservation so the client may retry.
	Release(ctx context.Context, key string) error
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// EventPublisher delivers wallet events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.WalletEvent) error
}

// --- Service Ports (Business Logic) ---

// WalletLifecycle creates wallets.
type WalletLifecycle interface {
	CreateWallet(ctx context.Context, initialBalance int64) (*domain.Wallet, error)
	GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error)
}

// BalanceMutator applies deposits and withdrawals.
type BalanceMutator interface {
	ApplyOperation(ctx context.Context, req OperationRequest) (*domain.Wallet, error)
	Deposit(ctx context.Context, walletID string, amount int64) (*domain.Wallet, error)
	Withdraw(ctx context.Context, walletID string, amount int64) (*domain.Wallet, error)
}

// BalanceQuery reads committed balances.
type BalanceQuery interface {
	GetBalance(ctx context.Context, walletID string) (int64, error)
}

// OperationRequest is a balance change as received from a client.
// WalletID and Type are validated by the mutator.
type OperationRequest struct {
	WalletID string
	Type     domain.OperationType
	Amount   int64 // Minor units
}

package ports

import (
	"context"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"

	"github.com/google/uuid"
)

// MutationFunc computes the new balance from the latest committed wallet
// state. Returning an error aborts the mutation with no effect.
type MutationFunc func(current domain.Wallet) (newBalance int64, err error)

// WalletStore is the durable mapping from wallet id to balance record.
//
// Implementations serialize ApplyMutation per wallet id: fn always observes
// the latest committed state and its result is committed before any other
// mutation of the same wallet reads it. Wallets are never deleted.
type WalletStore interface {
	// Create persists a new wallet. Returns domain.ErrWalletExists if the id is taken.
	Create(ctx context.Context, wallet *domain.Wallet) error
	// GetByID returns the committed wallet or domain.ErrWalletNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// ApplyMutation runs fn against the current state and commits the new
	// balance, bumping Version and UpdatedAt. It returns domain.ErrWalletNotFound,
	// domain.ErrNegativeBalance, or fn's own error without committing anything.
	ApplyMutation(ctx context.Context, id uuid.UUID, fn MutationFunc) (*domain.Wallet, error)
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wallet is a single balance record. Balance is held in minor units (cents)
// and is never negative once committed.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	Balance   int64     `json:"balance"`
	Version   int64     `json:"version"` // Incremented by every committed mutation
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWallet builds a fresh wallet at version 0.
func NewWallet(id uuid.UUID, initialBalance int64, now time.Time) (*Wallet, error) {
	if initialBalance < 0 {
		return nil, ErrNegativeBalance
	}
	now = now.UTC()
	return &Wallet{
		ID:        id,
		Balance:   initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ParseWalletID parses the canonical textual form of a wallet id.
func ParseWalletID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	// uuid.Parse also accepts urn and braced forms; only the 36-char form is public.
	if len(s) != 36 {
		return uuid.Nil, ErrInvalidWalletID
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidWalletID
	}
	return id, nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a wallet event.
type EventType string

const (
	EventWalletCreated  EventType = "WALLET_CREATED"
	EventBalanceChanged EventType = "BALANCE_CHANGED"
)

// WalletEvent is emitted after a committed change.
type WalletEvent struct {
	ID            uuid.UUID     `json:"id"`
	Type          EventType     `json:"type"`
	WalletID      uuid.UUID     `json:"wallet_id"`
	OperationType OperationType `json:"operation_type,omitempty"`
	Amount        int64         `json:"amount"`
	Balance       int64         `json:"balance"`
	Version       int64         `json:"version"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// NewCreatedEvent describes a newly created wallet.
func NewCreatedEvent(w *Wallet) WalletEvent {
	return WalletEvent{
		ID:         uuid.New(),
		Type:       EventWalletCreated,
		WalletID:   w.ID,
		Amount:     w.Balance,
		Balance:    w.Balance,
		Version:    w.Version,
		OccurredAt: w.CreatedAt,
	}
}

// NewBalanceChangedEvent describes a committed deposit or withdrawal.
func NewBalanceChangedEvent(w *Wallet, op OperationType, amount int64) WalletEvent {
	return WalletEvent{
		ID:            uuid.New(),
		Type:          EventBalanceChanged,
		WalletID:      w.ID,
		OperationType: op,
		Amount:        amount,
		Balance:       w.Balance,
		Version:       w.Version,
		OccurredAt:    w.UpdatedAt,
	}
}

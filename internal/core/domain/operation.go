package domain

import (
	"math"
	"strings"
)

// OperationType is the kind of balance change.
type OperationType string

const (
	OperationDeposit  OperationType = "DEPOSIT"
	OperationWithdraw OperationType = "WITHDRAW"
)

// IsValid reports whether t is a supported operation.
func (t OperationType) IsValid() bool {
	return t == OperationDeposit || t == OperationWithdraw
}

// ParseOperationType normalises client input ("deposit", " WITHDRAW ").
func ParseOperationType(s string) (OperationType, error) {
	t := OperationType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrUnknownOperation
	}
	return t, nil
}

// Apply returns the balance that results from applying amount to balance.
// The receiver wallet is not modified.
func (t OperationType) Apply(balance, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}
	switch t {
	case OperationDeposit:
		if balance > math.MaxInt64-amount {
			return 0, ErrBalanceOverflow
		}
		return balance + amount, nil
	case OperationWithdraw:
		if amount > balance {
			return 0, ErrInsufficientFunds
		}
		return balance - amount, nil
	default:
		return 0, ErrUnknownOperation
	}
}

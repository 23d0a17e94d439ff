package domain

import "errors"

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletExists      = errors.New("wallet id already exists")
	ErrInvalidWalletID   = errors.New("invalid wallet id")
	ErrNegativeBalance   = errors.New("balance cannot be negative")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrUnknownOperation  = errors.New("unknown operation type")
)

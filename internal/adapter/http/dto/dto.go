package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	InitialBalance *decimal.Decimal `json:"initialBalance" binding:"required"`
}

// OperationRequest is the request body for a deposit or withdrawal on the
// wallet named in the path.
type OperationRequest struct {
	OperationType string           `json:"operationType" binding:"required,max=32"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
}

// LegacyOperationRequest carries the wallet id in the body instead of the path.
type LegacyOperationRequest struct {
	WalletID      string           `json:"walletId" binding:"required,wallet_id"`
	OperationType string           `json:"operationType" binding:"required,max=32"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
}

// WalletURI binds the :id path parameter.
type WalletURI struct {
	ID string `uri:"id" binding:"required,wallet_id"`
}

// WalletResponse is the response body for wallet creation.
type WalletResponse struct {
	ID      string      `json:"id"`
	Balance json.Number `json:"balance"`
}

// WalletDetailResponse is the full wallet record.
type WalletDetailResponse struct {
	ID        string      `json:"id"`
	Balance   json.Number `json:"balance"`
	Version   int64       `json:"version"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

// OperationResponse is the response body for an applied operation.
type OperationResponse struct {
	WalletID      string      `json:"walletId"`
	OperationType string      `json:"operationType"`
	Amount        json.Number `json:"amount"`
	Balance       json.Number `json:"balance"`
	Version       int64       `json:"version"`
}

// BalanceResponse is the response for balance query.
type BalanceResponse struct {
	WalletID string      `json:"walletId"`
	Balance  json.Number `json:"balance"`
}

package handler

import (
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/adapter/http/dto"
	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"
	"github.com/DmitriySvyatov/WalletApi/pkg/money"
	"github.com/DmitriySvyatov/WalletApi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	lifecycle ports.WalletLifecycle
	mutator   ports.BalanceMutator
	query     ports.BalanceQuery
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(lifecycle ports.WalletLifecycle, mutator ports.BalanceMutator, query ports.BalanceQuery) *WalletHandler {
	return &WalletHandler{
		lifecycle: lifecycle,
		mutator:   mutator,
		query:     query,
	}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	initial, err := toMinor(req.InitialBalance)
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.lifecycle.CreateWallet(c.Request.Context(), initial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.WalletResponse{
		ID:      wallet.ID.String(),
		Balance: money.Number(wallet.Balance),
	})
}

// ApplyOperation handles POST /api/v1/wallets/:id/operations.
func (h *WalletHandler) ApplyOperation(c *gin.Context) {
	var uri dto.WalletURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	var req dto.OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	h.apply(c, uri.ID, req.OperationType, req.Amount)
}

// LegacyOperation handles POST /api/v1/wallet, which names the wallet in the body.
func (h *WalletHandler) LegacyOperation(c *gin.Context) {
	var req dto.LegacyOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	h.apply(c, req.WalletID, req.OperationType, req.Amount)
}

func (h *WalletHandler) apply(c *gin.Context, walletID, opType string, amount *decimal.Decimal) {
	cents, err := toMinor(amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.mutator.ApplyOperation(c.Request.Context(), ports.OperationRequest{
		WalletID: walletID,
		Type:     domain.OperationType(opType),
		Amount:   cents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// Already accepted by the mutator, so this only normalises case.
	normalized, _ := domain.ParseOperationType(opType)

	response.OK(c, dto.OperationResponse{
		WalletID:      wallet.ID.String(),
		OperationType: string(normalized),
		Amount:        money.Number(cents),
		Balance:       money.Number(wallet.Balance),
		Version:       wallet.Version,
	})
}

// GetBalance handles GET /api/v1/wallets/:id/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	var uri dto.WalletURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	balance, err := h.query.GetBalance(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		WalletID: uri.ID,
		Balance:  money.Number(balance),
	})
}

// GetWallet handles GET /api/v1/wallets/:id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	var uri dto.WalletURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	wallet, err := h.lifecycle.GetWallet(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletDetailResponse{
		ID:        wallet.ID.String(),
		Balance:   money.Number(wallet.Balance),
		Version:   wallet.Version,
		CreatedAt: wallet.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: wallet.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

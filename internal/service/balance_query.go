package service

import (
	"context"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"
	"github.com/DmitriySvyatov/WalletApi/pkg/apperror"

	"github.com/rs/zerolog"
)

// BalanceQueryService implements ports.BalanceQuery.
type BalanceQueryService struct {
	store ports.WalletStore
	log   zerolog.Logger
}

// NewBalanceQueryService creates a new BalanceQueryService.
func NewBalanceQueryService(store ports.WalletStore, log zerolog.Logger) *BalanceQueryService {
	return &BalanceQueryService{store: store, log: log}
}

var _ ports.BalanceQuery = (*BalanceQueryService)(nil)

// GetBalance returns the last committed balance in minor units.
func (s *BalanceQueryService) GetBalance(ctx context.Context, walletID string) (int64, error) {
	id, err := domain.ParseWalletID(walletID)
	if err != nil {
		return 0, apperror.ErrInvalidIdentifier()
	}

	wallet, err := s.store.GetByID(ctx, id)
	if err != nil {
		return 0, toAppError(s.log, err, walletID, "GET_BALANCE")
	}
	return wallet.Balance, nil
}

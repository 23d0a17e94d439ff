package service

import (
	"context"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"
	"github.com/DmitriySvyatov/WalletApi/pkg/apperror"

	"github.com/rs/zerolog"
)

// BalanceMutatorService implements ports.BalanceMutator. Serialization per
// wallet is delegated to the store's ApplyMutation.
type BalanceMutatorService struct {
	store  ports.WalletStore
	events eventNotifier
	log    zerolog.Logger
}

// NewBalanceMutatorService creates a new BalanceMutatorService. publisher may be nil.
func NewBalanceMutatorService(store ports.WalletStore, publisher ports.EventPublisher, log zerolog.Logger) *BalanceMutatorService {
	return &BalanceMutatorService{
		store:  store,
		events: eventNotifier{publisher: publisher, log: log},
		log:    log,
	}
}

var _ ports.BalanceMutator = (*BalanceMutatorService)(nil)

// ApplyOperation validates req and applies it atomically. On any error the
// wallet is unchanged.
func (s *BalanceMutatorService) ApplyOperation(ctx context.Context, req ports.OperationRequest) (*domain.Wallet, error) {
	id, err := domain.ParseWalletID(req.WalletID)
	if err != nil {
		return nil, apperror.ErrInvalidIdentifier()
	}
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount("must be positive")
	}
	opType, err := domain.ParseOperationType(string(req.Type))
	if err != nil {
		return nil, apperror.ErrUnknownOperationType(string(req.Type))
	}

	wallet, err := s.store.ApplyMutation(ctx, id, func(current domain.Wallet) (int64, error) {
		return opType.Apply(current.Balance, req.Amount)
	})
	if err != nil {
		return nil, toAppError(s.log, err, req.WalletID, string(opType))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("operation", string(opType)).
		Int64("amount", req.Amount).
		Int64("balance", wallet.Balance).
		Int64("version", wallet.Version).
		Msg("balance operation applied")

	s.events.notify(ctx, domain.NewBalanceChangedEvent(wallet, opType, req.Amount))
	return wallet, nil
}

// Deposit adds amount to the wallet.
func (s *BalanceMutatorService) Deposit(ctx context.Context, walletID string, amount int64) (*domain.Wallet, error) {
	return s.ApplyOperation(ctx, ports.OperationRequest{WalletID: walletID, Type: domain.OperationDeposit, Amount: amount})
}

// Withdraw removes amount from the wallet if the balance covers it.
func (s *BalanceMutatorService) Withdraw(ctx context.Context, walletID string, amount int64) (*domain.Wallet, error) {
	return s.ApplyOperation(ctx, ports.OperationRequest{WalletID: walletID, Type: domain.OperationWithdraw, Amount: amount})
}

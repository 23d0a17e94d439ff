package service

import (
	"context"
	"errors"
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"
	"github.com/DmitriySvyatov/WalletApi/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const opCreate = "CREATE"

// WalletLifecycleService implements ports.WalletLifecycle.
type WalletLifecycleService struct {
	store       ports.WalletStore
	events      eventNotifier
	maxAttempts int
	newID       func() uuid.UUID
	now         func() time.Time
	log         zerolog.Logger
}

// NewWalletLifecycleService creates a new WalletLifecycleService. publisher may be nil.
func NewWalletLifecycleService(
	store ports.WalletStore,
	publisher ports.EventPublisher,
	maxAttempts int,
	log zerolog.Logger,
) *WalletLifecycleService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &WalletLifecycleService{
		store:       store,
		events:      eventNotifier{publisher: publisher, log: log},
		maxAttempts: maxAttempts,
		newID:       uuid.New,
		now:         time.Now,
		log:         log,
	}
}

var _ ports.WalletLifecycle = (*WalletLifecycleService)(nil)

// CreateWallet persists a wallet with a fresh random id. An id collision is
// retried with a new id up to maxAttempts times.
func (s *WalletLifecycleService) CreateWallet(ctx context.Context, initialBalance int64) (*domain.Wallet, error) {
	if initialBalance < 0 {
		return nil, apperror.ErrInvalidAmount("initial balance cannot be negative")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		wallet, err := domain.NewWallet(s.newID(), initialBalance, s.now())
		if err != nil {
			return nil, toAppError(s.log, err, "", opCreate)
		}

		err = s.store.Create(ctx, wallet)
		if err == nil {
			s.log.Info().
				Str("wallet_id", wallet.ID.String()).
				Int64("balance", wallet.Balance).
				Int("attempt", attempt).
				Msg("wallet created")

			s.events.notify(ctx, domain.NewCreatedEvent(wallet))
			return wallet, nil
		}
		if !errors.Is(err, domain.ErrWalletExists) {
			return nil, toAppError(s.log, err, wallet.ID.String(), opCreate)
		}

		s.log.Warn().
			Str("wallet_id", wallet.ID.String()).
			Int("attempt", attempt).
			Msg("wallet id collision, regenerating")
	}

	s.log.Error().Int("attempts", s.maxAttempts).Msg("wallet id allocation exhausted")
	return nil, apperror.ErrIdentifierExhaustion(s.maxAttempts)
}

// GetWallet returns the full committed wallet record.
func (s *WalletLifecycleService) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	id, err := domain.ParseWalletID(walletID)
	if err != nil {
		return nil, apperror.ErrInvalidIdentifier()
	}

	wallet, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, toAppError(s.log, err, walletID, "GET")
	}
	return wallet, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE check_violation, raised by the balance >= 0 constraint.
const pgCheckViolation = "23514"

// WalletStore implements ports.WalletStore on PostgreSQL. Mutations take a
// row lock with SELECT ... FOR UPDATE, so concurrent operations on the same
// wallet queue on the row while other wallets proceed independently.
type WalletStore struct {
	pool       Pool
	transactor *Transactor
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool Pool) *WalletStore {
	return &WalletStore{
		pool:       pool,
		transactor: NewTransactor(pool),
	}
}

var _ ports.WalletStore = (*WalletStore)(nil)

// Create inserts a new wallet. An existing id is reported as domain.ErrWalletExists.
func (s *WalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	if w.Balance < 0 {
		return domain.ErrNegativeBalance
	}

	query := `INSERT INTO wallets (id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, w.ID, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletExists
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (s *WalletStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, balance, version, created_at, updated_at
		FROM wallets WHERE id = $1`

	w, err := scanWallet(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// ApplyMutation locks the wallet row, computes the new balance with fn and
// writes it back in the same transaction.
func (s *WalletStore) ApplyMutation(ctx context.Context, id uuid.UUID, fn ports.MutationFunc) (*domain.Wallet, error) {
	var result *domain.Wallet

	err := s.transactor.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		newBalance, err := fn(*current)
		if err != nil {
			return err
		}
		if newBalance < 0 {
			return domain.ErrNegativeBalance
		}

		updated := *current
		updated.Balance = newBalance
		if err := s.updateBalance(ctx, tx, &updated); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// getForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (s *WalletStore) getForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, balance, version, created_at, updated_at
		FROM wallets WHERE id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// updateBalance writes w.Balance and refreshes w's version and updated_at
// from the row.
func (s *WalletStore) updateBalance(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `UPDATE wallets SET balance = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING version, updated_at`

	err := tx.QueryRow(ctx, query, w.Balance, w.ID).Scan(&w.Version, &w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return domain.ErrNegativeBalance
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrWalletNotFound
		}
		return fmt.Errorf("update wallet balance: %w", err)
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	if err := row.Scan(&w.ID, &w.Balance, &w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return w, nil
}

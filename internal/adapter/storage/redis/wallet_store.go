package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrContention is returned when a mutation keeps losing the optimistic
// race for a wallet key.
var ErrContention = errors.New("wallet update contention: retries exhausted")

const (
	lockStripes = 256
	backoffBase = 2 * time.Millisecond
	backoffMax  = 50 * time.Millisecond
)

// WalletStore implements ports.WalletStore on Redis. Each wallet is one JSON
// value; mutations use WATCH/MULTI/EXEC and retry when another writer
// committed first.
//
// Writers in the same process are queued on a striped lock keyed by wallet
// id, so optimistic retries only happen against other processes.
type WalletStore struct {
	client     *goredis.Client
	prefix     string
	maxRetries int
	stripes    [lockStripes]sync.Mutex
}

// NewWalletStore creates a Redis wallet store. maxRetries bounds the number
// of optimistic attempts per mutation.
func NewWalletStore(client *goredis.Client, maxRetries int) *WalletStore {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &WalletStore{
		client:     client,
		prefix:     "wallet:",
		maxRetries: maxRetries,
	}
}

var _ ports.WalletStore = (*WalletStore)(nil)

func (s *WalletStore) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

func (s *WalletStore) stripe(id uuid.UUID) *sync.Mutex {
	return &s.stripes[xxhash.Sum64(id[:])%lockStripes]
}

// backoff returns a jittered delay for the given retry, doubling up to backoffMax.
func backoff(attempt int) time.Duration {
	d := backoffBase << min(attempt, 5)
	if d > backoffMax {
		d = backoffMax
	}
	return d/2 + rand.N(d/2+1)
}

// Create stores a new wallet with SET NX.
func (s *WalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	if w.Balance < 0 {
		return domain.ErrNegativeBalance
	}

	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding wallet: %w", err)
	}

	_, err = s.client.SetArgs(ctx, s.key(w.ID), data, goredis.SetArgs{Mode: "NX"}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.ErrWalletExists
		}
		return fmt.Errorf("redis wallet create: %w", err)
	}
	return nil
}

// GetByID reads the committed wallet value.
func (s *WalletStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("redis wallet get: %w", err)
	}
	return decodeWallet(raw)
}

// ApplyMutation runs fn inside a WATCH on the wallet key. If the key changes
// before EXEC, the transaction is discarded and fn runs again on the fresh
// value after a jittered backoff, up to maxRetries times.
func (s *WalletStore) ApplyMutation(ctx context.Context, id uuid.UUID, fn ports.MutationFunc) (*domain.Wallet, error) {
	key := s.key(id)

	mu := s.stripe(id)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var result *domain.Wallet
		err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, goredis.Nil) {
					return domain.ErrWalletNotFound
				}
				return fmt.Errorf("redis wallet get: %w", err)
			}

			current, err := decodeWallet(raw)
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
			updated.Version++
			updated.UpdatedAt = time.Now().UTC()

			data, err := json.Marshal(&updated)
			if err != nil {
				return fmt.Errorf("encoding wallet: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			if err != nil {
				return err
			}
			result = &updated
			return nil
		}, key)

		if err == nil {
			return result, nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("wallet %s after %d attempts: %w", id, s.maxRetries, ErrContention)
}

func decodeWallet(raw []byte) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding wallet: %w", err)
	}
	return &w, nil
}

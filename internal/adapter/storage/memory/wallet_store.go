// Package memory holds a process-local WalletStore for development and tests.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"

	"github.com/google/uuid"
)

// slot holds one wallet. mu serializes mutations of that wallet only;
// committed is swapped atomically so readers never wait on a writer.
type slot struct {
	mu        sync.Mutex
	committed atomic.Pointer[domain.Wallet]
}

// WalletStore implements ports.WalletStore in memory.
type WalletStore struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]*slot
	now   func() time.Time
}

// NewWalletStore creates an empty in-memory store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		slots: make(map[uuid.UUID]*slot),
		now:   time.Now,
	}
}

var _ ports.WalletStore = (*WalletStore)(nil)

// Create adds a wallet if its id is unused.
func (s *WalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	if w.Balance < 0 {
		return domain.ErrNegativeBalance
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[w.ID]; ok {
		return domain.ErrWalletExists
	}

	sl := &slot{}
	cp := *w
	sl.committed.Store(&cp)
	s.slots[w.ID] = sl
	return nil
}

// GetByID returns a copy of the last committed state.
func (s *WalletStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	sl, ok := s.lookup(id)
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	cp := *sl.committed.Load()
	return &cp, nil
}

// ApplyMutation holds the wallet's lock for the whole read-check-write.
func (s *WalletStore) ApplyMutation(ctx context.Context, id uuid.UUID, fn ports.MutationFunc) (*domain.Wallet, error) {
	sl, ok := s.lookup(id)
	if !ok {
		return nil, domain.ErrWalletNotFound
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current := *sl.committed.Load()
	newBalance, err := fn(current)
	if err != nil {
		return nil, err
	}
	if newBalance < 0 {
		return nil, domain.ErrNegativeBalance
	}

	next := current
	next.Balance = newBalance
	next.Version++
	next.UpdatedAt = s.now().UTC()
	sl.committed.Store(&next)

	out := next
	return &out, nil
}

// Len reports the number of wallets.
func (s *WalletStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

func (s *WalletStore) lookup(id uuid.UUID) (*slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots[id]
	return sl, ok
}

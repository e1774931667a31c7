package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/brisapay/brisapay/internal/fault"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Entry
}

// NewMemoryRepository constructs an in-memory entry repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Entry)}
}

func (r *memoryRepository) Insert(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[e.ID]; exists {
		return fault.Newf(fault.Conflict, "entry %s already exists", e.ID)
	}
	r.storage[e.ID] = e
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.storage[id]
	if !ok {
		return Entry{}, fault.New(fault.NotFound, "ledger entry not found")
	}
	return e, nil
}

func (r *memoryRepository) Update(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.storage[e.ID]
	if !ok {
		return fault.New(fault.NotFound, "ledger entry not found")
	}
	if stored.Status != StatusPending {
		return fault.Newf(fault.Validation, "entry %s is not pending", e.ID)
	}
	r.storage[e.ID] = e
	return nil
}

func (r *memoryRepository) ListByWallet(_ context.Context, walletID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []Entry
	for _, e := range r.storage {
		if e.WalletID == walletID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
	return entries, nil
}

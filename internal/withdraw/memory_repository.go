package withdraw

import (
	"context"
	"sort"
	"sync"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Withdrawal
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Withdrawal)}
}

func (r *memoryRepository) Create(_ context.Context, w Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[w.ID]; exists {
		return fault.Newf(fault.Conflict, "withdrawal %s already exists", w.ID)
	}
	r.storage[w.ID] = w
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.storage[id]
	if !ok {
		return Withdrawal{}, fault.New(fault.NotFound, "withdrawal not found")
	}
	return w, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string, page movement.Page) ([]Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var withdrawals []Withdrawal
	for _, w := range r.storage {
		if w.OwnerID == ownerID {
			withdrawals = append(withdrawals, w)
		}
	}
	sort.Slice(withdrawals, func(i, j int) bool { return withdrawals[i].RequestedAt.After(withdrawals[j].RequestedAt) })
	page = page.Normalize()
	if page.Offset >= len(withdrawals) {
		return nil, nil
	}
	end := page.Offset + page.Limit
	if end > len(withdrawals) {
		end = len(withdrawals)
	}
	return withdrawals[page.Offset:end], nil
}

func (r *memoryRepository) Update(_ context.Context, w Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[w.ID]; !ok {
		return fault.New(fault.NotFound, "withdrawal not found")
	}
	r.storage[w.ID] = w
	return nil
}

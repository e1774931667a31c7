package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brisapay/brisapay/internal/fault"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[w.ID]; exists {
		return fault.Newf(fault.Conflict, "wallet %s already exists", w.ID)
	}
	for _, existing := range r.storage {
		if existing.OwnerID == w.OwnerID && existing.Purpose == w.Purpose {
			return fault.Newf(fault.Conflict, "wallet already exists for owner %s purpose %s", w.OwnerID, w.Purpose)
		}
	}
	r.storage[w.ID] = w
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.storage[id]
	if !ok {
		return Wallet{}, fault.New(fault.NotFound, "wallet not found")
	}
	return w, nil
}

func (r *memoryRepository) GetByOwnerPurpose(_ context.Context, ownerID string, purpose Purpose) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.storage {
		if w.OwnerID == ownerID && w.Purpose == purpose {
			return w, nil
		}
	}
	return Wallet{}, fault.New(fault.NotFound, "wallet not found")
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var wallets []Wallet
	for _, w := range r.storage {
		if w.OwnerID == ownerID {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].CreatedAt.Before(wallets[j].CreatedAt) })
	return wallets, nil
}

func (r *memoryRepository) UpdateBalances(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.storage[w.ID]
	if !ok {
		return fault.New(fault.NotFound, "wallet not found")
	}
	if stored.Version != w.Version {
		return fault.Newf(fault.Conflict, "wallet %s changed concurrently", w.ID)
	}
	stored.Available = w.Available
	stored.Pending = w.Pending
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	r.storage[w.ID] = stored
	return nil
}

package deposit

import (
	"context"
	"sort"
	"sync"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Deposit
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Deposit)}
}

func (r *memoryRepository) Create(_ context.Context, d Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[d.ID]; exists {
		return fault.Newf(fault.Conflict, "deposit %s already exists", d.ID)
	}
	r.storage[d.ID] = d
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.storage[id]
	if !ok {
		return Deposit{}, fault.New(fault.NotFound, "deposit not found")
	}
	return d, nil
}

func (r *memoryRepository) GetByTransactionID(_ context.Context, transactionID string) (Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.storage {
		if d.TransactionID == transactionID {
			return d, nil
		}
	}
	return Deposit{}, fault.New(fault.NotFound, "deposit not found")
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string, page movement.Page) ([]Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var deposits []Deposit
	for _, d := range r.storage {
		if d.OwnerID == ownerID {
			deposits = append(deposits, d)
		}
	}
	sort.Slice(deposits, func(i, j int) bool { return deposits[i].RequestedAt.After(deposits[j].RequestedAt) })
	return paginate(deposits, page), nil
}

func (r *memoryRepository) Update(_ context.Context, d Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[d.ID]; !ok {
		return fault.New(fault.NotFound, "deposit not found")
	}
	r.storage[d.ID] = d
	return nil
}

func paginate(deposits []Deposit, page movement.Page) []Deposit {
	page = page.Normalize()
	if page.Offset >= len(deposits) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(deposits) {
		end = len(deposits)
	}
	return deposits[page.Offset:end]
}

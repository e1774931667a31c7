package refund

import (
	"context"
	"sort"
	"sync"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

type memoryRepository struct {
	mu      sync.RWMutex
	refunds map[string]Refund
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{refunds: make(map[string]Refund)}
}

func (r *memoryRepository) Create(_ context.Context, rf Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.refunds[rf.ID]; ok {
		return fault.New(fault.Conflict, "refund already exists")
	}
	r.refunds[rf.ID] = rf
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rf, ok := r.refunds[id]
	if !ok {
		return Refund{}, fault.New(fault.NotFound, "refund not found")
	}
	return rf, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string, page movement.Page) ([]Refund, error) {
	page = page.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()

	var refunds []Refund
	for _, rf := range r.refunds {
		if rf.OwnerID == ownerID {
			refunds = append(refunds, rf)
		}
	}
	sort.Slice(refunds, func(i, j int) bool {
		return refunds[i].RequestedAt.After(refunds[j].RequestedAt)
	})
	if page.Offset >= len(refunds) {
		return nil, nil
	}
	end := page.Offset + page.Limit
	if end > len(refunds) {
		end = len(refunds)
	}
	return refunds[page.Offset:end], nil
}

func (r *memoryRepository) Update(_ context.Context, rf Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.refunds[rf.ID]; !ok {
		return fault.New(fault.NotFound, "refund not found")
	}
	r.refunds[rf.ID] = rf
	return nil
}

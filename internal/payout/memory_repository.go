package payout

import (
	"context"
	"sort"
	"sync"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

type memoryRepository struct {
	mu      sync.RWMutex
	payouts map[string]Payout
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{payouts: make(map[string]Payout)}
}

func (r *memoryRepository) Create(_ context.Context, p Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payouts[p.ID]; ok {
		return fault.New(fault.Conflict, "payout already exists")
	}
	r.payouts[p.ID] = p
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payouts[id]
	if !ok {
		return Payout{}, fault.New(fault.NotFound, "payout not found")
	}
	return p, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string, page movement.Page) ([]Payout, error) {
	page = page.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()

	var payouts []Payout
	for _, p := range r.payouts {
		if p.OwnerID == ownerID {
			payouts = append(payouts, p)
		}
	}
	sort.Slice(payouts, func(i, j int) bool {
		return payouts[i].RequestedAt.After(payouts[j].RequestedAt)
	})
	if page.Offset >= len(payouts) {
		return nil, nil
	}
	end := page.Offset + page.Limit
	if end > len(payouts) {
		end = len(payouts)
	}
	return payouts[page.Offset:end], nil
}

func (r *memoryRepository) Update(_ context.Context, p Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payouts[p.ID]; !ok {
		return fault.New(fault.NotFound, "payout not found")
	}
	r.payouts[p.ID] = p
	return nil
}

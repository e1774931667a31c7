package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brisapay/brisapay/internal/fault"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Notification
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Notification)}
}

func (r *memoryRepository) Insert(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[n.ID]; exists {
		return fault.Newf(fault.Conflict, "notification %s already exists", n.ID)
	}
	r.storage[n.ID] = n
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.storage[id]
	if !ok {
		return Notification{}, fault.New(fault.NotFound, "notification not found")
	}
	return n, nil
}

func (r *memoryRepository) ListDue(_ context.Context, now time.Time) ([]Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var due []Notification
	for _, n := range r.storage {
		if n.Status == StatusPending && !n.NextAttemptAt.After(now) {
			due = append(due, n)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	return due, nil
}

func (r *memoryRepository) Update(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[n.ID]; !ok {
		return fault.New(fault.NotFound, "notification not found")
	}
	r.storage[n.ID] = n
	return nil
}

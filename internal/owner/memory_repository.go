package owner

import (
	"context"
	"sync"

	"github.com/brisapay/brisapay/internal/fault"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Owner
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Owner)}
}

func (r *memoryRepository) Create(_ context.Context, o Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if existing.Email == o.Email {
			return fault.Newf(fault.Conflict, "owner with email %s already exists", o.Email)
		}
	}
	r.storage[o.ID] = o
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.storage[id]
	if !ok {
		return Owner{}, fault.New(fault.NotFound, "owner not found")
	}
	return o, nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.storage {
		if o.Email == email {
			return o, nil
		}
	}
	return Owner{}, fault.New(fault.NotFound, "owner not found")
}

func (r *memoryRepository) UpdateCallbackURL(_ context.Context, id, callbackURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.storage[id]
	if !ok {
		return fault.New(fault.NotFound, "owner not found")
	}
	o.CallbackURL = callbackURL
	r.storage[id] = o
	return nil
}

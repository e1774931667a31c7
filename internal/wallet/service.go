package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
)

// Service exposes wallet lookup and lazy provisioning.
type Service struct {
	repo Repository
}

// NewService builds a wallet service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure returns the owner's wallet for the given purpose, creating it with
// zero balances on first need. Wallets are never created any other way.
func (s *Service) Ensure(ctx context.Context, ownerID string, purpose Purpose) (Wallet, error) {
	if !purpose.Valid() {
		return Wallet{}, fault.Newf(fault.Validation, "unknown wallet purpose %q", purpose)
	}
	if _, err := uuid.Parse(ownerID); err != nil {
		return Wallet{}, fault.Wrap(fault.Validation, "invalid owner id", err)
	}

	existing, err := s.repo.GetByOwnerPurpose(ctx, ownerID, purpose)
	if err == nil {
		return existing, nil
	}
	if !fault.IsKind(err, fault.NotFound) {
		return Wallet{}, err
	}

	now := time.Now().UTC()
	w := Wallet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Purpose:   purpose,
		Available: decimal.Zero,
		Pending:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		// A concurrent Ensure may have won the race; re-read.
		if fault.IsKind(err, fault.Conflict) {
			return s.repo.GetByOwnerPurpose(ctx, ownerID, purpose)
		}
		return Wallet{}, err
	}
	return w, nil
}

// Get retrieves a wallet snapshot.
func (s *Service) Get(ctx context.Context, id string) (Wallet, error) {
	return s.repo.Get(ctx, id)
}

// GetOwned retrieves a wallet and enforces that ownerID owns it.
func (s *Service) GetOwned(ctx context.Context, id, ownerID string) (Wallet, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return Wallet{}, err
	}
	if w.OwnerID != ownerID {
		return Wallet{}, fault.New(fault.Unauthorized, "wallet does not belong to caller")
	}
	return w, nil
}

// Find returns the owner's wallet for a purpose without creating it.
func (s *Service) Find(ctx context.Context, ownerID string, purpose Purpose) (Wallet, error) {
	return s.repo.GetByOwnerPurpose(ctx, ownerID, purpose)
}

// ListByOwner returns every wallet belonging to the owner.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

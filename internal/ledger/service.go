package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
	"github.com/brisapay/brisapay/internal/wallet"
)

// casAttempts bounds the reload-and-retry loop around the wallet snapshot
// compare-and-swap before giving up with a Conflict.
const casAttempts = 5

// Service owns the entry lifecycle and every wallet balance mutation.
// All movement orchestrators go through it; nothing else touches balances.
type Service struct {
	wallets wallet.Repository
	entries Repository
}

// NewService builds the ledger service.
func NewService(wallets wallet.Repository, entries Repository) *Service {
	return &Service{wallets: wallets, entries: entries}
}

// CreateEntry appends a new Pending entry and applies its reservation to the
// wallet snapshot: debit kinds move amount from available to pending (failing
// with InsufficientFunds when available cannot cover it), credit kinds park
// the incoming amount in pending.
func (s *Service) CreateEntry(ctx context.Context, walletID string, amount decimal.Decimal, kind Kind, ref movement.Ref) (Entry, error) {
	if err := money.RequirePositive(amount); err != nil {
		return Entry{}, err
	}
	if !kind.Valid() {
		return Entry{}, fault.Newf(fault.Validation, "unknown entry kind %q", kind)
	}

	if _, err := s.mutateWallet(ctx, walletID, func(w *wallet.Wallet) error {
		if kind.IsDebit() {
			if w.Available.LessThan(amount) {
				return fault.Newf(fault.InsufficientFunds, "available %s cannot cover %s", w.Available, amount)
			}
			w.Available = w.Available.Sub(amount)
		}
		w.Pending = w.Pending.Add(amount)
		return nil
	}); err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:        uuid.NewString(),
		WalletID:  walletID,
		Amount:    amount,
		Kind:      kind,
		Status:    StatusPending,
		Movement:  ref,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.entries.Insert(ctx, e); err != nil {
		s.releaseReservation(ctx, walletID, amount, kind)
		return Entry{}, err
	}
	return e, nil
}

// ProcessEntry moves a Pending entry to Completed and settles its amount:
// credit kinds release pending into available, debit kinds drop the reserved
// pending portion. Processing an already-Completed entry is a no-op returning
// the stored entry; the balance delta is never re-applied. The reservation is
// re-validated before settling; if it no longer covers the amount the entry
// becomes Failed and the wallet stays untouched.
func (s *Service) ProcessEntry(ctx context.Context, id string) (Entry, error) {
	e, err := s.entries.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.Status == StatusCompleted {
		return e, nil
	}
	if e.Status != StatusPending {
		return Entry{}, fault.Newf(fault.Validation, "entry %s is %s, cannot process", e.ID, e.Status)
	}

	var prev, next decimal.Decimal
	if _, err := s.mutateWallet(ctx, e.WalletID, func(w *wallet.Wallet) error {
		if w.Pending.LessThan(e.Amount) {
			return fault.Newf(fault.InsufficientFunds, "reservation for entry %s no longer covers %s", e.ID, e.Amount)
		}
		w.Pending = w.Pending.Sub(e.Amount)
		if e.Kind.IsDebit() {
			prev = w.Available.Add(e.Amount)
			next = w.Available
		} else {
			prev = w.Available
			w.Available = w.Available.Add(e.Amount)
			next = w.Available
		}
		return nil
	}); err != nil {
		if fault.IsKind(err, fault.InsufficientFunds) {
			e.Status = StatusFailed
			e.Reason = err.Error()
			e.ProcessedAt = time.Now().UTC()
			if uerr := s.entries.Update(ctx, e); uerr != nil {
				return Entry{}, uerr
			}
			return e, err
		}
		return Entry{}, err
	}

	e.Status = StatusCompleted
	e.PreviousBalance = prev
	e.NewBalance = next
	e.ProcessedAt = time.Now().UTC()
	if err := s.entries.Update(ctx, e); err != nil {
		// A concurrent processor won the entry; undo our wallet write so the
		// delta applies exactly once.
		s.revertSettlement(ctx, e)
		if fault.IsKind(err, fault.Validation) {
			return s.entries.Get(ctx, id)
		}
		return Entry{}, err
	}
	return e, nil
}

// CancelEntry moves a Pending entry to Cancelled and releases its
// reservation: debit kinds get the amount restored to available, credit kinds
// drop the parked pending amount. Completed entries are immutable; a
// correction is a new entry of the opposite kind.
func (s *Service) CancelEntry(ctx context.Context, id, reason string) (Entry, error) {
	e, err := s.entries.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.Status == StatusCancelled {
		return e, nil
	}
	if e.Status != StatusPending {
		return Entry{}, fault.Newf(fault.Validation, "entry %s is %s, cannot cancel", e.ID, e.Status)
	}

	if _, err := s.mutateWallet(ctx, e.WalletID, func(w *wallet.Wallet) error {
		if w.Pending.LessThan(e.Amount) {
			return fault.Newf(fault.Validation, "reservation for entry %s no longer covers %s", e.ID, e.Amount)
		}
		w.Pending = w.Pending.Sub(e.Amount)
		if e.Kind.IsDebit() {
			w.Available = w.Available.Add(e.Amount)
		}
		return nil
	}); err != nil {
		return Entry{}, err
	}

	e.Status = StatusCancelled
	e.Reason = reason
	e.ProcessedAt = time.Now().UTC()
	if err := s.entries.Update(ctx, e); err != nil {
		if fault.IsKind(err, fault.Validation) {
			// Lost a cancel race; put the reservation back.
			s.restoreReservation(ctx, e)
			return s.entries.Get(ctx, id)
		}
		return Entry{}, err
	}
	return e, nil
}

// Recompute independently derives the wallet's balances from its entries and
// compares them against the snapshot. Completed credits add, completed debit
// kinds subtract, and pending entries account for their reservations.
func (s *Service) Recompute(ctx context.Context, walletID string) (Recomputation, error) {
	w, err := s.wallets.Get(ctx, walletID)
	if err != nil {
		return Recomputation{}, err
	}
	entries, err := s.entries.ListByWallet(ctx, walletID)
	if err != nil {
		return Recomputation{}, err
	}

	available := decimal.Zero
	pending := decimal.Zero
	for _, e := range entries {
		switch e.Status {
		case StatusCompleted:
			if e.Kind.IsDebit() {
				available = available.Sub(e.Amount)
			} else {
				available = available.Add(e.Amount)
			}
		case StatusPending:
			pending = pending.Add(e.Amount)
			if e.Kind.IsDebit() {
				available = available.Sub(e.Amount)
			}
		}
	}

	return Recomputation{
		WalletID:          walletID,
		ComputedAvailable: available,
		ComputedPending:   pending,
		SnapshotAvailable: w.Available,
		SnapshotPending:   w.Pending,
		Match:             available.Equal(w.Available) && pending.Equal(w.Pending),
	}, nil
}

// Entry fetches a single entry.
func (s *Service) Entry(ctx context.Context, id string) (Entry, error) {
	return s.entries.Get(ctx, id)
}

// EntriesByWallet lists a wallet's entries, oldest first.
func (s *Service) EntriesByWallet(ctx context.Context, walletID string) ([]Entry, error) {
	return s.entries.ListByWallet(ctx, walletID)
}

// mutateWallet runs apply against a fresh snapshot and writes it back under
// the version compare-and-swap, reloading on conflict up to casAttempts.
func (s *Service) mutateWallet(ctx context.Context, walletID string, apply func(*wallet.Wallet) error) (wallet.Wallet, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		w, err := s.wallets.Get(ctx, walletID)
		if err != nil {
			return wallet.Wallet{}, err
		}
		if err := apply(&w); err != nil {
			return wallet.Wallet{}, err
		}
		err = s.wallets.UpdateBalances(ctx, w)
		if err == nil {
			w.Version++
			return w, nil
		}
		if !fault.IsKind(err, fault.Conflict) {
			return wallet.Wallet{}, err
		}
	}
	return wallet.Wallet{}, fault.Newf(fault.Conflict, "wallet %s is being updated concurrently, retry", walletID)
}

func (s *Service) releaseReservation(ctx context.Context, walletID string, amount decimal.Decimal, kind Kind) {
	_, _ = s.mutateWallet(ctx, walletID, func(w *wallet.Wallet) error {
		w.Pending = w.Pending.Sub(amount)
		if kind.IsDebit() {
			w.Available = w.Available.Add(amount)
		}
		return nil
	})
}

func (s *Service) restoreReservation(ctx context.Context, e Entry) {
	_, _ = s.mutateWallet(ctx, e.WalletID, func(w *wallet.Wallet) error {
		w.Pending = w.Pending.Add(e.Amount)
		if e.Kind.IsDebit() {
			w.Available = w.Available.Sub(e.Amount)
		}
		return nil
	})
}

func (s *Service) revertSettlement(ctx context.Context, e Entry) {
	_, _ = s.mutateWallet(ctx, e.WalletID, func(w *wallet.Wallet) error {
		w.Pending = w.Pending.Add(e.Amount)
		if !e.Kind.IsDebit() {
			w.Available = w.Available.Sub(e.Amount)
		}
		return nil
	})
}

package withdraw

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/ledger"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
	"github.com/brisapay/brisapay/internal/notification"
	"github.com/brisapay/brisapay/internal/wallet"
)

// Service orchestrates the withdrawal state machine. Funds are reserved at
// request time and either released on admin processing or restored on
// rejection.
type Service struct {
	repo     Repository
	wallets  *wallet.Service
	ledger   *ledger.Service
	notifier notification.Enqueuer
	logger   *slog.Logger
}

// NewService builds a withdrawal service.
func NewService(repo Repository, wallets *wallet.Service, ledgerSvc *ledger.Service, notifier notification.Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, ledger: ledgerSvc, notifier: notifier, logger: logger}
}

// CreateInput captures a withdrawal request.
type CreateInput struct {
	OwnerID           string
	Amount            decimal.Decimal
	PayeeKey          string
	ExternalReference string
}

// Create reserves the debit against the owner's general wallet immediately.
// Insufficient available balance rejects the request with no wallet change.
func (s *Service) Create(ctx context.Context, input CreateInput) (Withdrawal, error) {
	if err := money.RequirePositive(input.Amount); err != nil {
		return Withdrawal{}, err
	}

	source, err := s.wallets.Ensure(ctx, input.OwnerID, wallet.PurposeGeneral)
	if err != nil {
		return Withdrawal{}, err
	}

	w := Withdrawal{
		ID:                uuid.NewString(),
		OwnerID:           input.OwnerID,
		WalletID:          source.ID,
		Amount:            input.Amount,
		PayeeKey:          input.PayeeKey,
		ExternalReference: input.ExternalReference,
		Status:            StatusPending,
		RequestedAt:       time.Now().UTC(),
	}

	entry, err := s.ledger.CreateEntry(ctx, source.ID, input.Amount, ledger.KindWithdraw,
		movement.Ref{ID: w.ID, Type: movement.TypeWithdraw})
	if err != nil {
		return Withdrawal{}, err
	}
	w.EntryID = entry.ID

	if err := s.repo.Create(ctx, w); err != nil {
		if _, cerr := s.ledger.CancelEntry(ctx, entry.ID, "withdrawal persistence failed"); cerr != nil {
			s.logger.Error("cancel entry after persistence failure", "entry_id", entry.ID, "error", cerr)
		}
		return Withdrawal{}, err
	}
	return w, nil
}

// Process settles a pending withdrawal: the reserved funds leave the wallet.
func (s *Service) Process(ctx context.Context, id string) (Withdrawal, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return Withdrawal{}, err
	}
	if w.Status != StatusPending {
		return Withdrawal{}, fault.Newf(fault.Validation, "withdrawal %s is %s, cannot process", id, w.Status)
	}

	if _, err := s.ledger.ProcessEntry(ctx, w.EntryID); err != nil {
		return Withdrawal{}, err
	}
	w.Status = StatusCompleted
	w.ProcessedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, w); err != nil {
		return Withdrawal{}, err
	}
	s.notify(ctx, w)
	return w, nil
}

// Reject fails a pending withdrawal and restores the reserved amount to the
// wallet's available balance.
func (s *Service) Reject(ctx context.Context, id, reason string) (Withdrawal, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return Withdrawal{}, err
	}
	if w.Status != StatusPending {
		return Withdrawal{}, fault.Newf(fault.Validation, "withdrawal %s is %s, cannot reject", id, w.Status)
	}

	if _, err := s.ledger.CancelEntry(ctx, w.EntryID, reason); err != nil {
		return Withdrawal{}, err
	}
	w.Status = StatusFailed
	w.RejectionReason = reason
	w.ProcessedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, w); err != nil {
		return Withdrawal{}, err
	}
	s.notify(ctx, w)
	return w, nil
}

// Get fetches a withdrawal, enforcing ownership.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Withdrawal, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return Withdrawal{}, err
	}
	if w.OwnerID != ownerID {
		return Withdrawal{}, fault.New(fault.Unauthorized, "withdrawal does not belong to caller")
	}
	return w, nil
}

// List pages through an owner's withdrawals.
func (s *Service) List(ctx context.Context, ownerID string, page movement.Page) ([]Withdrawal, error) {
	return s.repo.ListByOwner(ctx, ownerID, page)
}

func (s *Service) notify(ctx context.Context, w Withdrawal) {
	event := notification.Event{
		SourceEventID: w.ID,
		OwnerID:       w.OwnerID,
		PaymentID:     w.ID,
		OrderID:       w.ExternalReference,
		Status:        string(w.Status),
		Amount:        w.Amount,
	}
	if w.Status == StatusCompleted {
		event.PaidAt = w.ProcessedAt
	}
	if err := s.notifier.Enqueue(ctx, event); err != nil {
		s.logger.Error("enqueue withdrawal notification", "withdrawal_id", w.ID, "error", err)
	}
}

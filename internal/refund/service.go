package refund

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/deposit"
	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/ledger"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
	"github.com/brisapay/brisapay/internal/notification"
	"github.com/brisapay/brisapay/internal/wallet"
)

// DepositLookup resolves the original deposit a refund targets.
type DepositLookup interface {
	ByTransactionID(ctx context.Context, transactionID string) (deposit.Deposit, error)
}

// Service orchestrates the refund state machine. The debit against the source
// wallet is reserved at request time; admin processing is two-phase, Pending
// to Processing on approval and Processing to Completed once the provider
// receipt arrives.
type Service struct {
	repo     Repository
	deposits DepositLookup
	wallets  *wallet.Service
	ledger   *ledger.Service
	notifier notification.Enqueuer
	logger   *slog.Logger
}

// NewService builds a refund service.
func NewService(repo Repository, deposits DepositLookup, wallets *wallet.Service, ledgerSvc *ledger.Service, notifier notification.Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, deposits: deposits, wallets: wallets, ledger: ledgerSvc, notifier: notifier, logger: logger}
}

// CreateInput captures a refund request against an earlier deposit.
type CreateInput struct {
	OwnerID               string
	Amount                decimal.Decimal
	OriginalTransactionID string
}

// Create validates the request against the original deposit and reserves the
// debit. The original must be a completed deposit of the caller, and the
// refund amount cannot exceed what was originally paid. Validation failures
// leave every wallet untouched.
func (s *Service) Create(ctx context.Context, input CreateInput) (Refund, error) {
	if err := money.RequirePositive(input.Amount); err != nil {
		return Refund{}, err
	}
	if input.OriginalTransactionID == "" {
		return Refund{}, fault.New(fault.Validation, "original transaction id is required")
	}

	original, err := s.deposits.ByTransactionID(ctx, input.OriginalTransactionID)
	if err != nil {
		return Refund{}, err
	}
	if original.OwnerID != input.OwnerID {
		return Refund{}, fault.New(fault.Unauthorized, "original deposit does not belong to caller")
	}
	if original.Status != deposit.StatusCompleted {
		return Refund{}, fault.Newf(fault.Validation, "original deposit is %s, only completed deposits are refundable", original.Status)
	}
	if input.Amount.GreaterThan(original.Amount) {
		return Refund{}, fault.New(fault.Validation, "refund amount exceeds original deposit amount")
	}

	source, err := s.sourceWallet(ctx, input.OwnerID)
	if err != nil {
		return Refund{}, err
	}

	rf := Refund{
		ID:                    uuid.NewString(),
		OwnerID:               input.OwnerID,
		WalletID:              source.ID,
		Amount:                input.Amount,
		OriginalTransactionID: input.OriginalTransactionID,
		OriginalAmount:        original.Amount,
		Status:                StatusPending,
		RequestedAt:           time.Now().UTC(),
	}

	entry, err := s.ledger.CreateEntry(ctx, source.ID, input.Amount, ledger.KindRefund,
		movement.Ref{ID: rf.ID, Type: movement.TypeRefund})
	if err != nil {
		return Refund{}, err
	}
	rf.EntryID = entry.ID

	if err := s.repo.Create(ctx, rf); err != nil {
		if _, cerr := s.ledger.CancelEntry(ctx, entry.ID, "refund persistence failed"); cerr != nil {
			s.logger.Error("cancel entry after persistence failure", "entry_id", entry.ID, "error", cerr)
		}
		return Refund{}, err
	}
	return rf, nil
}

// sourceWallet prefers the owner's withdrawal reserve wallet when one exists,
// falling back to the general wallet.
func (s *Service) sourceWallet(ctx context.Context, ownerID string) (wallet.Wallet, error) {
	reserve, err := s.wallets.Find(ctx, ownerID, wallet.PurposeWithdrawalReserve)
	if err == nil {
		return reserve, nil
	}
	if !fault.IsKind(err, fault.NotFound) {
		return wallet.Wallet{}, err
	}
	return s.wallets.Ensure(ctx, ownerID, wallet.PurposeGeneral)
}

// Approve moves a pending refund into processing. The reservation stays in
// place; no balance changes until completion.
func (s *Service) Approve(ctx context.Context, id string) (Refund, error) {
	rf, err := s.repo.Get(ctx, id)
	if err != nil {
		return Refund{}, err
	}
	if rf.Status != StatusPending {
		return Refund{}, fault.Newf(fault.Validation, "refund %s is %s, cannot approve", id, rf.Status)
	}
	rf.Status = StatusProcessing
	if err := s.repo.Update(ctx, rf); err != nil {
		return Refund{}, err
	}
	return rf, nil
}

// Complete settles a processing refund: the reserved funds leave the wallet
// and the provider receipt is recorded.
func (s *Service) Complete(ctx context.Context, id, receipt string) (Refund, error) {
	rf, err := s.repo.Get(ctx, id)
	if err != nil {
		return Refund{}, err
	}
	if rf.Status != StatusProcessing {
		return Refund{}, fault.Newf(fault.Validation, "refund %s is %s, cannot complete", id, rf.Status)
	}

	if _, err := s.ledger.ProcessEntry(ctx, rf.EntryID); err != nil {
		return Refund{}, err
	}
	rf.Status = StatusCompleted
	rf.Receipt = receipt
	rf.ProcessedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, rf); err != nil {
		return Refund{}, err
	}
	s.notify(ctx, rf)
	return rf, nil
}

// Reject fails a pending or processing refund and restores the reserved
// amount to the wallet's available balance.
func (s *Service) Reject(ctx context.Context, id, reason string) (Refund, error) {
	rf, err := s.repo.Get(ctx, id)
	if err != nil {
		return Refund{}, err
	}
	if rf.Status != StatusPending && rf.Status != StatusProcessing {
		return Refund{}, fault.Newf(fault.Validation, "refund %s is %s, cannot reject", id, rf.Status)
	}

	if _, err := s.ledger.CancelEntry(ctx, rf.EntryID, reason); err != nil {
		return Refund{}, err
	}
	rf.Status = StatusFailed
	rf.RejectionReason = reason
	rf.ProcessedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, rf); err != nil {
		return Refund{}, err
	}
	s.notify(ctx, rf)
	return rf, nil
}

// Get fetches a refund, enforcing ownership.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Refund, error) {
	rf, err := s.repo.Get(ctx, id)
	if err != nil {
		return Refund{}, err
	}
	if rf.OwnerID != ownerID {
		return Refund{}, fault.New(fault.Unauthorized, "refund does not belong to caller")
	}
	return rf, nil
}

// List pages through an owner's refunds.
func (s *Service) List(ctx context.Context, ownerID string, page movement.Page) ([]Refund, error) {
	return s.repo.ListByOwner(ctx, ownerID, page)
}

func (s *Service) notify(ctx context.Context, rf Refund) {
	event := notification.Event{
		SourceEventID: rf.ID,
		OwnerID:       rf.OwnerID,
		PaymentID:     rf.ID,
		TransactionID: rf.OriginalTransactionID,
		Status:        string(rf.Status),
		Amount:        rf.Amount,
	}
	if rf.Status == StatusCompleted {
		event.PaidAt = rf.ProcessedAt
	}
	if err := s.notifier.Enqueue(ctx, event); err != nil {
		s.logger.Error("enqueue refund notification", "refund_id", rf.ID, "error", err)
	}
}

package payout

import (
	"context"
	"log/slog"
	"net/mail"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/gateway"
	"github.com/brisapay/brisapay/internal/ledger"
	"github.com/brisapay/brisapay/internal/money"
	"github.com/brisapay/brisapay/internal/movement"
	"github.com/brisapay/brisapay/internal/notification"
	"github.com/brisapay/brisapay/internal/wallet"
)

// PixResolver reports which provider would carry an instant transfer. Payout
// processing refuses to settle when no Pix route is configured.
type PixResolver interface {
	Resolve(t gateway.PaymentType) (gateway.Provider, error)
}

// Service orchestrates the payout state machine. Like withdrawals, the debit
// against the general wallet is reserved at request time.
type Service struct {
	repo     Repository
	wallets  *wallet.Service
	ledger   *ledger.Service
	router   PixResolver
	notifier notification.Enqueuer
	logger   *slog.Logger
}

// NewService builds a payout service.
func NewService(repo Repository, wallets *wallet.Service, ledgerSvc *ledger.Service, router PixResolver, notifier notification.Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, ledger: ledgerSvc, router: router, notifier: notifier, logger: logger}
}

// CreateInput captures a payout request.
type CreateInput struct {
	OwnerID           string
	Amount            decimal.Decimal
	PayeeKey          string
	Description       string
	ExternalReference string
}

// Create reserves the debit against the owner's general wallet. The payee key
// is validated for shape up front so obviously broken requests never reserve
// funds.
func (s *Service) Create(ctx context.Context, input CreateInput) (Payout, error) {
	if err := money.RequirePositive(input.Amount); err != nil {
		return Payout{}, err
	}
	if !ValidPayeeKey(input.PayeeKey) {
		return Payout{}, fault.New(fault.Validation, "payee key must be an email, phone, document number or random key")
	}

	source, err := s.wallets.Ensure(ctx, input.OwnerID, wallet.PurposeGeneral)
	if err != nil {
		return Payout{}, err
	}

	p := Payout{
		ID:                uuid.NewString(),
		OwnerID:           input.OwnerID,
		WalletID:          source.ID,
		Amount:            input.Amount,
		PayeeKey:          input.PayeeKey,
		Description:       input.Description,
		ExternalReference: input.ExternalReference,
		Status:            StatusPending,
		RequestedAt:       time.Now().UTC(),
	}

	entry, err := s.ledger.CreateEntry(ctx, source.ID, input.Amount, ledger.KindDebit,
		movement.Ref{ID: p.ID, Type: movement.TypePayout})
	if err != nil {
		return Payout{}, err
	}
	p.EntryID = entry.ID

	if err := s.repo.Create(ctx, p); err != nil {
		if _, cerr := s.ledger.CancelEntry(ctx, entry.ID, "payout persistence failed"); cerr != nil {
			s.logger.Error("cancel entry after persistence failure", "entry_id", entry.ID, "error", cerr)
		}
		return Payout{}, err
	}
	return p, nil
}

// Process settles a pending payout. Settlement requires a configured Pix
// route; without one the payout stays pending and can be rejected instead.
func (s *Service) Process(ctx context.Context, id string) (Payout, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payout{}, err
	}
	if p.Status != StatusPending {
		return Payout{}, fault.Newf(fault.Validation, "payout %s is %s, cannot process", id, p.Status)
	}

	if _, err := s.router.Resolve(gateway.PaymentPix); err != nil {
		return Payout{}, err
	}

	if _, err := s.ledger.ProcessEntry(ctx, p.EntryID); err != nil {
		return Payout{}, err
	}
	p.Status = StatusCompleted
	p.ProcessedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return Payout{}, err
	}
	s.notify(ctx, p)
	return p, nil
}

// Reject cancels a pending payout and restores the reserved amount.
func (s *Service) Reject(ctx context.Context, id, reason string) (Payout, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payout{}, err
	}
	if p.Status != StatusPending {
		return Payout{}, fault.Newf(fault.Validation, "payout %s is %s, cannot reject", id, p.Status)
	}

	if _, err := s.ledger.CancelEntry(ctx, p.EntryID, reason); err != nil {
		return Payout{}, err
	}
	p.Status = StatusRejected
	p.RejectionReason = reason
	p.ProcessedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return Payout{}, err
	}
	s.notify(ctx, p)
	return p, nil
}

// Get fetches a payout, enforcing ownership.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Payout, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payout{}, err
	}
	if p.OwnerID != ownerID {
		return Payout{}, fault.New(fault.Unauthorized, "payout does not belong to caller")
	}
	return p, nil
}

// List pages through an owner's payouts.
func (s *Service) List(ctx context.Context, ownerID string, page movement.Page) ([]Payout, error) {
	return s.repo.ListByOwner(ctx, ownerID, page)
}

var (
	phoneKey    = regexp.MustCompile(`^\+?[0-9]{10,14}$`)
	documentKey = regexp.MustCompile(`^[0-9]{11}$|^[0-9]{14}$`)
)

// ValidPayeeKey accepts an email address, a phone number, an 11 or 14 digit
// document number, or a UUID random key.
func ValidPayeeKey(key string) bool {
	if key == "" {
		return false
	}
	if _, err := mail.ParseAddress(key); err == nil {
		return true
	}
	if phoneKey.MatchString(key) || documentKey.MatchString(key) {
		return true
	}
	_, err := uuid.Parse(key)
	return err == nil
}

func (s *Service) notify(ctx context.Context, p Payout) {
	event := notification.Event{
		SourceEventID: p.ID,
		OwnerID:       p.OwnerID,
		PaymentID:     p.ID,
		OrderID:       p.ExternalReference,
		Status:        string(p.Status),
		Amount:        p.Amount,
	}
	if p.Status == StatusCompleted {
		event.PaidAt = p.ProcessedAt
	}
	if err := s.notifier.Enqueue(ctx, event); err != nil {
		s.logger.Error("enqueue payout notification", "payout_id", p.ID, "error", err)
	}
}

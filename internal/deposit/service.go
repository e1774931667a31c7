package deposit

import (
	"context"
	"log/slog"
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

// Charger is the slice of the gateway router deposits need.
type Charger interface {
	ProcessPix(ctx context.Context, req gateway.PixChargeRequest) (gateway.PixCharge, error)
	ProcessBankSlip(ctx context.Context, req gateway.BankSlipChargeRequest) (gateway.BankSlipCharge, error)
	ProcessCreditCard(ctx context.Context, req gateway.CreditCardChargeRequest) (gateway.CreditCardCharge, error)
}

// Service orchestrates the deposit state machine: charge issued through the
// gateway, credit entry reserved, terminal state decided by the provider's
// asynchronous confirmation.
type Service struct {
	repo     Repository
	wallets  *wallet.Service
	ledger   *ledger.Service
	charger  Charger
	notifier notification.Enqueuer
	logger   *slog.Logger
}

// NewService builds a deposit service.
func NewService(repo Repository, wallets *wallet.Service, ledgerSvc *ledger.Service, charger Charger, notifier notification.Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, ledger: ledgerSvc, charger: charger, notifier: notifier, logger: logger}
}

// CreateInput captures a deposit request.
type CreateInput struct {
	OwnerID           string
	Amount            decimal.Decimal
	PaymentType       gateway.PaymentType
	WalletID          string
	ExternalReference string
	Payer             gateway.Payer
	Card              gateway.Card
	Customer          gateway.Customer
}

// Create resolves the target wallet, reserves a pending credit entry and
// issues the external charge. The deposit stays Pending until the provider
// confirms the charge.
func (s *Service) Create(ctx context.Context, input CreateInput) (Deposit, error) {
	if err := money.RequirePositive(input.Amount); err != nil {
		return Deposit{}, err
	}
	if !input.PaymentType.Valid() {
		return Deposit{}, fault.Newf(fault.Validation, "unknown payment type %q", input.PaymentType)
	}

	target, err := s.resolveTarget(ctx, input)
	if err != nil {
		return Deposit{}, err
	}

	d := Deposit{
		ID:                uuid.NewString(),
		OwnerID:           input.OwnerID,
		WalletID:          target.ID,
		Amount:            input.Amount,
		PaymentType:       input.PaymentType,
		ExternalReference: input.ExternalReference,
		Status:            StatusPending,
		RequestedAt:       time.Now().UTC(),
	}

	entry, err := s.ledger.CreateEntry(ctx, target.ID, input.Amount, ledger.KindCredit,
		movement.Ref{ID: d.ID, Type: movement.TypeDeposit})
	if err != nil {
		return Deposit{}, err
	}
	d.EntryID = entry.ID

	if err := s.charge(ctx, &d, input); err != nil {
		if _, cerr := s.ledger.CancelEntry(ctx, entry.ID, "charge failed"); cerr != nil {
			s.logger.Error("cancel entry after charge failure", "entry_id", entry.ID, "error", cerr)
		}
		d.Status = StatusFailed
		d.FailureReason = err.Error()
		d.ProcessedAt = time.Now().UTC()
		if perr := s.repo.Create(ctx, d); perr != nil {
			s.logger.Error("persist failed deposit", "deposit_id", d.ID, "error", perr)
		}
		return Deposit{}, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Deposit{}, err
	}
	return d, nil
}

// Target wallet priority: an explicit wallet id must be valid, owned by the
// requester and not the withdrawal reserve; otherwise the owner's deposit
// intake wallet, then the general wallet, creating the intake wallet lazily
// when the owner has neither.
func (s *Service) resolveTarget(ctx context.Context, input CreateInput) (wallet.Wallet, error) {
	if input.WalletID != "" {
		w, err := s.wallets.GetOwned(ctx, input.WalletID, input.OwnerID)
		if err != nil {
			if fault.IsKind(err, fault.Unauthorized) || fault.IsKind(err, fault.NotFound) {
				return wallet.Wallet{}, fault.New(fault.Validation, "target wallet is not usable for deposits")
			}
			return wallet.Wallet{}, err
		}
		if w.Purpose == wallet.PurposeWithdrawalReserve {
			return wallet.Wallet{}, fault.New(fault.Validation, "withdrawal reserve wallets cannot receive deposits")
		}
		return w, nil
	}

	if w, err := s.wallets.Find(ctx, input.OwnerID, wallet.PurposeDepositIntake); err == nil {
		return w, nil
	} else if !fault.IsKind(err, fault.NotFound) {
		return wallet.Wallet{}, err
	}
	if w, err := s.wallets.Find(ctx, input.OwnerID, wallet.PurposeGeneral); err == nil {
		return w, nil
	} else if !fault.IsKind(err, fault.NotFound) {
		return wallet.Wallet{}, err
	}
	return s.wallets.Ensure(ctx, input.OwnerID, wallet.PurposeDepositIntake)
}

func (s *Service) charge(ctx context.Context, d *Deposit, input CreateInput) error {
	switch input.PaymentType {
	case gateway.PaymentPix:
		charge, err := s.charger.ProcessPix(ctx, gateway.PixChargeRequest{
			Amount:     input.Amount,
			OrderID:    input.ExternalReference,
			CustomerID: input.OwnerID,
			Payer:      input.Payer,
		})
		if err != nil {
			return err
		}
		d.TransactionID = charge.TransactionID
		d.QRCode = charge.QRCode
	case gateway.PaymentBankSlip:
		charge, err := s.charger.ProcessBankSlip(ctx, gateway.BankSlipChargeRequest{
			Amount:  input.Amount,
			OrderID: input.ExternalReference,
			Payer:   input.Payer,
		})
		if err != nil {
			return err
		}
		d.TransactionID = charge.ID
		d.DigitableLine = charge.DigitableLine
		d.Barcode = charge.Barcode
	case gateway.PaymentCreditCard:
		charge, err := s.charger.ProcessCreditCard(ctx, gateway.CreditCardChargeRequest{
			Amount:   input.Amount,
			Card:     input.Card,
			Customer: input.Customer,
			OrderID:  input.ExternalReference,
		})
		if err != nil {
			return err
		}
		d.TransactionID = charge.ID
		d.AuthorizationCode = charge.AuthorizationCode
	}
	if d.TransactionID == "" {
		d.TransactionID = uuid.NewString()
	}
	return nil
}

// Confirmation is the inbound provider callback body.
type Confirmation struct {
	TransactionID string
	Status        string
	Amount        decimal.Decimal
}

// Confirm settles a deposit from a provider confirmation. Replays against a
// deposit already out of Pending are no-ops; an amount that differs from the
// recorded deposit amount is rejected before any wallet is touched.
func (s *Service) Confirm(ctx context.Context, conf Confirmation) (Deposit, error) {
	d, err := s.repo.GetByTransactionID(ctx, conf.TransactionID)
	if err != nil {
		return Deposit{}, err
	}
	if d.Status != StatusPending {
		return d, nil
	}

	switch conf.Status {
	case "approved", "completed":
		if !money.Equal(conf.Amount, d.Amount) {
			return Deposit{}, fault.Newf(fault.Validation,
				"confirmation amount %s does not match deposit amount %s", conf.Amount, d.Amount)
		}
		if _, err := s.ledger.ProcessEntry(ctx, d.EntryID); err != nil {
			return Deposit{}, err
		}
		d.Status = StatusCompleted
		d.ProcessedAt = time.Now().UTC()
	case "failed", "cancelled":
		if _, err := s.ledger.CancelEntry(ctx, d.EntryID, "provider reported "+conf.Status); err != nil {
			return Deposit{}, err
		}
		d.Status = StatusFailed
		d.FailureReason = "provider reported " + conf.Status
		d.ProcessedAt = time.Now().UTC()
	default:
		s.logger.Warn("unrecognized deposit confirmation status",
			"transaction_id", conf.TransactionID, "status", conf.Status)
		return d, nil
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return Deposit{}, err
	}
	s.notify(ctx, d)
	return d, nil
}

// Get fetches a deposit, enforcing ownership.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Deposit, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return Deposit{}, err
	}
	if d.OwnerID != ownerID {
		return Deposit{}, fault.New(fault.Unauthorized, "deposit does not belong to caller")
	}
	return d, nil
}

// ByTransactionID fetches a deposit by its provider transaction identifier.
func (s *Service) ByTransactionID(ctx context.Context, transactionID string) (Deposit, error) {
	return s.repo.GetByTransactionID(ctx, transactionID)
}

// List pages through an owner's deposits.
func (s *Service) List(ctx context.Context, ownerID string, page movement.Page) ([]Deposit, error) {
	return s.repo.ListByOwner(ctx, ownerID, page)
}

func (s *Service) notify(ctx context.Context, d Deposit) {
	event := notification.Event{
		SourceEventID: d.ID,
		OwnerID:       d.OwnerID,
		PaymentID:     d.ID,
		OrderID:       d.ExternalReference,
		TransactionID: d.TransactionID,
		Status:        string(d.Status),
		Amount:        d.Amount,
	}
	if d.Status == StatusCompleted {
		event.PaidAt = d.ProcessedAt
	}
	if err := s.notifier.Enqueue(ctx, event); err != nil {
		s.logger.Error("enqueue deposit notification", "deposit_id", d.ID, "error", err)
	}
}

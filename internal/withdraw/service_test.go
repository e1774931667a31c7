package withdraw

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/ledger"
	"github.com/brisapay/brisapay/internal/logging"
	"github.com/brisapay/brisapay/internal/movement"
	"github.com/brisapay/brisapay/internal/notification"
	"github.com/brisapay/brisapay/internal/wallet"
)

type fakeEnqueuer struct {
	events []notification.Event
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, event notification.Event) error {
	f.events = append(f.events, event)
	return nil
}

type fixture struct {
	svc      *Service
	wallets  *wallet.Service
	enqueuer *fakeEnqueuer
	ownerID  string
}

func newFixture(t *testing.T, funded string) *fixture {
	t.Helper()
	walletRepo := wallet.NewMemoryRepository()
	walletSvc := wallet.NewService(walletRepo)
	ledgerSvc := ledger.NewService(walletRepo, ledger.NewMemoryRepository())
	enqueuer := &fakeEnqueuer{}
	svc := NewService(NewMemoryRepository(), walletSvc, ledgerSvc, enqueuer, logging.Discard())

	ownerID := uuid.NewString()
	if funded != "" {
		ctx := context.Background()
		w, err := walletSvc.Ensure(ctx, ownerID, wallet.PurposeGeneral)
		if err != nil {
			t.Fatalf("ensure wallet: %v", err)
		}
		e, err := ledgerSvc.CreateEntry(ctx, w.ID, decimal.RequireFromString(funded), ledger.KindCredit,
			movement.Ref{ID: uuid.NewString(), Type: movement.TypeDeposit})
		if err != nil {
			t.Fatalf("fund wallet: %v", err)
		}
		if _, err := ledgerSvc.ProcessEntry(ctx, e.ID); err != nil {
			t.Fatalf("settle funding: %v", err)
		}
	}
	return &fixture{svc: svc, wallets: walletSvc, enqueuer: enqueuer, ownerID: ownerID}
}

func TestWithdrawalReservesImmediately(t *testing.T) {
	f := newFixture(t, "500.00")
	ctx := context.Background()

	w, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("200.00"),
		PayeeKey: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if w.Status != StatusPending {
		t.Fatalf("expected pending, got %s", w.Status)
	}

	snap, err := f.wallets.Get(ctx, w.WalletID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if !snap.Available.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("reservation must shrink available, got %s", snap.Available)
	}
	if !snap.Pending.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected reserved pending, got %s", snap.Pending)
	}
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	f := newFixture(t, "50.00")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("50.01"),
		PayeeKey: "ana@example.com",
	})
	if !fault.IsKind(err, fault.InsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestWithdrawalProcessSettlesReservation(t *testing.T) {
	f := newFixture(t, "100.00")
	ctx := context.Background()

	w, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("100.00"),
		PayeeKey: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	processed, err := f.svc.Process(ctx, w.ID)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", processed.Status)
	}

	snap, _ := f.wallets.Get(ctx, w.WalletID)
	if !snap.Available.IsZero() || !snap.Pending.IsZero() {
		t.Fatalf("expected emptied wallet, got available=%s pending=%s", snap.Available, snap.Pending)
	}
	if len(f.enqueuer.events) != 1 || f.enqueuer.events[0].Status != string(StatusCompleted) {
		t.Fatalf("expected completion notification, got %+v", f.enqueuer.events)
	}
}

func TestWithdrawalRejectRestoresBalance(t *testing.T) {
	f := newFixture(t, "100.00")
	ctx := context.Background()

	w, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("80.00"),
		PayeeKey: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	rejected, err := f.svc.Reject(ctx, w.ID, "payee key did not resolve")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusFailed || rejected.RejectionReason == "" {
		t.Fatalf("unexpected rejection result: %+v", rejected)
	}

	snap, _ := f.wallets.Get(ctx, w.WalletID)
	if !snap.Available.Equal(decimal.RequireFromString("100.00")) || !snap.Pending.IsZero() {
		t.Fatalf("expected restored balance, got available=%s pending=%s", snap.Available, snap.Pending)
	}
}

func TestWithdrawalProcessRequiresPending(t *testing.T) {
	f := newFixture(t, "100.00")
	ctx := context.Background()

	w, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("10.00"),
		PayeeKey: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if _, err := f.svc.Reject(ctx, w.ID, "manual"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.svc.Process(ctx, w.ID); !fault.IsKind(err, fault.Validation) {
		t.Fatalf("expected validation fault processing rejected withdrawal, got %v", err)
	}
}

func TestWithdrawalGetEnforcesOwnership(t *testing.T) {
	f := newFixture(t, "100.00")
	ctx := context.Background()

	w, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("10.00"),
		PayeeKey: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if _, err := f.svc.Get(ctx, w.ID, uuid.NewString()); !fault.IsKind(err, fault.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

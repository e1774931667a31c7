package payout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/gateway"
	"github.com/brisapay/brisapay/internal/ledger"
	"github.com/brisapay/brisapay/internal/logging"
	"github.com/brisapay/brisapay/internal/movement"
	"github.com/brisapay/brisapay/internal/notification"
	"github.com/brisapay/brisapay/internal/wallet"
)

type fakeResolver struct {
	err error
}

func (f *fakeResolver) Resolve(_ gateway.PaymentType) (gateway.Provider, error) {
	if f.err != nil {
		return gateway.ProviderUnknown, f.err
	}
	return gateway.ProviderAltaPag, nil
}

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
	resolver *fakeResolver
	ownerID  string
}

func newFixture(t *testing.T, funded string) *fixture {
	t.Helper()
	walletRepo := wallet.NewMemoryRepository()
	walletSvc := wallet.NewService(walletRepo)
	ledgerSvc := ledger.NewService(walletRepo, ledger.NewMemoryRepository())
	resolver := &fakeResolver{}
	svc := NewService(NewMemoryRepository(), walletSvc, ledgerSvc, resolver, &fakeEnqueuer{}, logging.Discard())

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
	return &fixture{svc: svc, wallets: walletSvc, resolver: resolver, ownerID: ownerID}
}

func TestPayoutLifecycle(t *testing.T) {
	f := newFixture(t, "500.00")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("120.00"),
		PayeeKey: "fornecedor@example.com",
	})
	if err != nil {
		t.Fatalf("create payout: %v", err)
	}
	if p.Status != StatusPending {
		t.Fatalf("expected pending, got %s", p.Status)
	}

	snap, _ := f.wallets.Find(ctx, f.ownerID, wallet.PurposeGeneral)
	if !snap.Available.Equal(decimal.RequireFromString("380.00")) {
		t.Fatalf("reservation must shrink available, got %s", snap.Available)
	}

	processed, err := f.svc.Process(ctx, p.ID)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", processed.Status)
	}

	snap, _ = f.wallets.Find(ctx, f.ownerID, wallet.PurposeGeneral)
	if !snap.Available.Equal(decimal.RequireFromString("380.00")) || !snap.Pending.IsZero() {
		t.Fatalf("expected settled payout, got available=%s pending=%s", snap.Available, snap.Pending)
	}
}

func TestPayoutProcessRequiresPixRoute(t *testing.T) {
	f := newFixture(t, "100.00")
	f.resolver.err = fault.New(fault.Configuration, "no provider configured for pix")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("50.00"),
		PayeeKey: "fornecedor@example.com",
	})
	if err != nil {
		t.Fatalf("create payout: %v", err)
	}

	if _, err := f.svc.Process(ctx, p.ID); !fault.IsKind(err, fault.Configuration) {
		t.Fatalf("expected configuration fault, got %v", err)
	}

	// Funds stay reserved; the payout can still be rejected.
	snap, _ := f.wallets.Find(ctx, f.ownerID, wallet.PurposeGeneral)
	if !snap.Pending.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("reservation must survive a routing failure, got pending=%s", snap.Pending)
	}
	if _, err := f.svc.Reject(ctx, p.ID, "no pix route"); err != nil {
		t.Fatalf("reject after routing failure: %v", err)
	}
	snap, _ = f.wallets.Find(ctx, f.ownerID, wallet.PurposeGeneral)
	if !snap.Available.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected restored balance, got %s", snap.Available)
	}
}

func TestPayoutRejectsBadPayeeKey(t *testing.T) {
	f := newFixture(t, "100.00")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("10.00"),
		PayeeKey: "not a key",
	})
	if !fault.IsKind(err, fault.Validation) {
		t.Fatalf("expected validation fault, got %v", err)
	}

	snap, _ := f.wallets.Find(ctx, f.ownerID, wallet.PurposeGeneral)
	if !snap.Available.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("bad payee key must not reserve funds, got %s", snap.Available)
	}
}

func TestValidPayeeKeyShapes(t *testing.T) {
	valid := []string{
		"ana@example.com",
		"+5511987654321",
		"11987654321",
		"12345678901",
		"12345678000195",
		uuid.NewString(),
	}
	for _, key := range valid {
		if !ValidPayeeKey(key) {
			t.Fatalf("expected %q to be a valid payee key", key)
		}
	}

	invalid := []string{"", "abc", "12345", "++5511987654321", "not a key"}
	for _, key := range invalid {
		if ValidPayeeKey(key) {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestPayoutInsufficientFunds(t *testing.T) {
	f := newFixture(t, "30.00")
	_, err := f.svc.Create(context.Background(), CreateInput{
		OwnerID:  f.ownerID,
		Amount:   decimal.RequireFromString("30.01"),
		PayeeKey: "ana@example.com",
	})
	if !fault.IsKind(err, fault.InsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/config"
	"github.com/brisapay/brisapay/internal/fault"
)

func TestBuildRouterResolvesProviders(t *testing.T) {
	cfg := config.Config{
		PixProvider:        "altapag",
		BankSlipProvider:   "altapag",
		CreditCardProvider: "vexocard",
		GatewayTimeout:     time.Second,
		Providers: map[string]config.ProviderConfig{
			"altapag":  {BaseURL: "http://altapag.test", ClientID: "id", ClientSecret: "secret"},
			"vexocard": {BaseURL: "http://vexocard.test", ClientID: "key", ClientSecret: "secret"},
		},
	}
	tokens := NewTokenSource(NewMemoryTokenCache(), time.Minute)

	router, err := BuildRouter(cfg, tokens)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	for paymentType, want := range map[PaymentType]Provider{
		PaymentPix:        ProviderAltaPag,
		PaymentBankSlip:   ProviderAltaPag,
		PaymentCreditCard: ProviderVexoCard,
	} {
		got, err := router.Resolve(paymentType)
		if err != nil {
			t.Fatalf("resolve %s: %v", paymentType, err)
		}
		if got != want {
			t.Fatalf("resolve %s: expected %s, got %s", paymentType, want, got)
		}
	}
}

func TestBuildRouterRejectsUnknownProvider(t *testing.T) {
	cfg := config.Config{
		PixProvider: "acmepay",
		Providers:   map[string]config.ProviderConfig{"acmepay": {BaseURL: "http://acmepay.test"}},
	}
	_, err := BuildRouter(cfg, NewTokenSource(NewMemoryTokenCache(), 0))
	if !fault.IsKind(err, fault.Configuration) {
		t.Fatalf("expected configuration fault, got %v", err)
	}
}

func TestBuildRouterRequiresBaseURL(t *testing.T) {
	cfg := config.Config{PixProvider: "altapag"}
	_, err := BuildRouter(cfg, NewTokenSource(NewMemoryTokenCache(), 0))
	if !fault.IsKind(err, fault.Configuration) {
		t.Fatalf("expected configuration fault, got %v", err)
	}
}

func TestRouterUnconfiguredTypeIsConfigurationFault(t *testing.T) {
	router := NewRouter(map[PaymentType]Adapter{})
	_, err := router.ProcessPix(context.Background(), PixChargeRequest{Amount: decimal.New(1, 0)})
	if !fault.IsKind(err, fault.Configuration) {
		t.Fatalf("expected configuration fault, got %v", err)
	}
}

func TestRouterRejectsUnsupportedCapability(t *testing.T) {
	// VexoCard has no pix capability; routing pix there must surface
	// NotSupported, not a nil-method panic.
	vexo := &VexoCard{}
	router := NewRouter(map[PaymentType]Adapter{PaymentPix: vexo})

	_, err := router.ProcessPix(context.Background(), PixChargeRequest{Amount: decimal.New(1, 0)})
	if !fault.IsKind(err, fault.NotSupported) {
		t.Fatalf("expected not supported fault, got %v", err)
	}
}

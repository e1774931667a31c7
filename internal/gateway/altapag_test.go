package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/config"
	"github.com/brisapay/brisapay/internal/fault"
)

func TestAltaPagPixChargeRoundTrip(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			json.NewEncoder(w).Encode(altaPagTokenResponse{AccessToken: "tok-1", ExpiresIn: 3600})
		case "/v1/pix/charges":
			sawAuth = r.Header.Get("Authorization")
			var req PixChargeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode charge request: %v", err)
			}
			if !req.Amount.Equal(decimal.RequireFromString("75.50")) {
				t.Errorf("unexpected amount %s", req.Amount)
			}
			json.NewEncoder(w).Encode(PixCharge{
				TransactionID: "tx-42",
				Status:        "pending",
				QRCode:        "qr-payload",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewMemoryTokenCache(), time.Minute)
	adapter := NewAltaPag(config.ProviderConfig{BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"},
		srv.Client(), tokens)

	charge, err := adapter.ProcessPix(context.Background(), PixChargeRequest{
		Amount: decimal.RequireFromString("75.50"),
		Payer:  Payer{Name: "Ana Souza", Document: "12345678901"},
	})
	if err != nil {
		t.Fatalf("process pix: %v", err)
	}
	if charge.TransactionID != "tx-42" || charge.QRCode != "qr-payload" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
	if sawAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer token on charge call, got %q", sawAuth)
	}
}

func TestAltaPagProviderErrorIsGatewayFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			json.NewEncoder(w).Encode(altaPagTokenResponse{AccessToken: "tok-1", ExpiresIn: 3600})
			return
		}
		http.Error(w, `{"error":"insufficient limit"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewMemoryTokenCache(), time.Minute)
	adapter := NewAltaPag(config.ProviderConfig{BaseURL: srv.URL}, srv.Client(), tokens)

	_, err := adapter.ProcessBankSlip(context.Background(), BankSlipChargeRequest{
		Amount: decimal.RequireFromString("10.00"),
	})
	if !fault.IsKind(err, fault.Gateway) {
		t.Fatalf("expected gateway fault, got %v", err)
	}
}

func TestVexoCardChargeRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/tokens":
			json.NewEncoder(w).Encode(vexoCardTokenResponse{Token: "vexo-tok", ExpiresIn: 900})
		case "/v1/charges":
			json.NewEncoder(w).Encode(CreditCardCharge{
				ID:                "card-7",
				Status:            "authorized",
				AuthorizationCode: "AUTH77",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewMemoryTokenCache(), time.Minute)
	adapter := NewVexoCard(config.ProviderConfig{BaseURL: srv.URL}, srv.Client(), tokens)

	charge, err := adapter.ProcessCreditCard(context.Background(), CreditCardChargeRequest{
		Amount: decimal.RequireFromString("320.00"),
		Card:   Card{Number: "4111111111111111", Holder: "ANA SOUZA", Expiry: "12/2028", CVV: "123"},
	})
	if err != nil {
		t.Fatalf("process credit card: %v", err)
	}
	if charge.ID != "card-7" || charge.AuthorizationCode != "AUTH77" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
)

// PaymentType selects which external charge flow a movement uses.
type PaymentType string

const (
	PaymentPix        PaymentType = "pix"
	PaymentBankSlip   PaymentType = "bank_slip"
	PaymentCreditCard PaymentType = "credit_card"
)

// Valid reports whether t is one of the known payment types.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentPix, PaymentBankSlip, PaymentCreditCard:
		return true
	default:
		return false
	}
}

// Payer identifies who pays an inbound charge.
type Payer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email"`
}

// Card carries the card data forwarded to a credit-card processor.
type Card struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Customer identifies the charged customer for card flows.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

// PixChargeRequest is the input for an instant-payment charge.
type PixChargeRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Payer      Payer           `json:"payer"`
}

// PixCharge is the provider's answer to a pix charge.
type PixCharge struct {
	PaymentID     string    `json:"payment_id"`
	Status        string    `json:"status"`
	QRCode        string    `json:"qr_code"`
	TransactionID string    `json:"transaction_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CreditCardChargeRequest is the input for a card charge.
type CreditCardChargeRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Card     Card            `json:"card"`
	Customer Customer        `json:"customer"`
	OrderID  string          `json:"order_id"`
}

// CreditCardCharge is the provider's answer to a card charge.
type CreditCardCharge struct {
	ID                string          `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	OrderID           string          `json:"order_id"`
	AuthorizationCode string          `json:"authorization_code"`
	Message           string          `json:"message"`
}

// BankSlipChargeRequest is the input for a bank-slip charge.
type BankSlipChargeRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	OrderID string          `json:"order_id"`
	Payer   Payer           `json:"payer"`
}

// BankSlipCharge is the provider's answer to a bank-slip charge.
type BankSlipCharge struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	DigitableLine string `json:"digitable_line"`
	Barcode       string `json:"barcode"`
	PDFHref       string `json:"pdf_href"`
}

// PixProcessor is the pix capability of a provider adapter.
type PixProcessor interface {
	ProcessPix(ctx context.Context, req PixChargeRequest) (PixCharge, error)
}

// BankSlipProcessor is the bank-slip capability of a provider adapter.
type BankSlipProcessor interface {
	ProcessBankSlip(ctx context.Context, req BankSlipChargeRequest) (BankSlipCharge, error)
}

// CreditCardProcessor is the credit-card capability of a provider adapter.
type CreditCardProcessor interface {
	ProcessCreditCard(ctx context.Context, req CreditCardChargeRequest) (CreditCardCharge, error)
}

// Adapter is any provider connector. Capabilities beyond the name are
// discovered by interface assertion; an adapter implements only the flows
// its provider supports.
type Adapter interface {
	Provider() Provider
}

// postJSON sends an authenticated JSON POST and decodes a 2xx response into
// out. Non-success upstream responses become Gateway faults carrying the
// status and body.
func postJSON(ctx context.Context, client *http.Client, url, bearer string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fault.Wrap(fault.Gateway, "provider request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fault.Wrap(fault.Gateway, "read provider response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fault.Wrap(fault.Gateway,
			fmt.Sprintf("provider returned %d", resp.StatusCode),
			fmt.Errorf("%s", string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fault.Wrap(fault.Gateway, "decode provider response", err)
	}
	return nil
}

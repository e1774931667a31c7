package deposit

import (
	"time"

	"github.com/brisapay/brisapay/internal/gateway"
)

// CreateRequest is the JSON body for deposit creation.
type CreateRequest struct {
	Amount            string         `json:"amount"`
	PaymentType       string         `json:"payment_type"`
	WalletID          string         `json:"wallet_id,omitempty"`
	ExternalReference string         `json:"external_reference"`
	Payer             gateway.Payer  `json:"payer,omitempty"`
	Card              gateway.Card   `json:"card,omitempty"`
	Customer          gateway.Customer `json:"customer,omitempty"`
}

// ConfirmationRequest is the JSON body of the provider confirmation webhook.
type ConfirmationRequest struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
}

// Response is the JSON representation of a deposit.
type Response struct {
	ID                string     `json:"id"`
	WalletID          string     `json:"wallet_id"`
	Amount            string     `json:"amount"`
	PaymentType       string     `json:"payment_type"`
	ExternalReference string     `json:"external_reference"`
	TransactionID     string     `json:"transaction_id"`
	Status            string     `json:"status"`
	QRCode            string     `json:"qr_code,omitempty"`
	DigitableLine     string     `json:"digitable_line,omitempty"`
	Barcode           string     `json:"barcode,omitempty"`
	AuthorizationCode string     `json:"authorization_code,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	RequestedAt       time.Time  `json:"requested_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
}

func toResponse(d Deposit) Response {
	resp := Response{
		ID:                d.ID,
		WalletID:          d.WalletID,
		Amount:            d.Amount.String(),
		PaymentType:       string(d.PaymentType),
		ExternalReference: d.ExternalReference,
		TransactionID:     d.TransactionID,
		Status:            string(d.Status),
		QRCode:            d.QRCode,
		DigitableLine:     d.DigitableLine,
		Barcode:           d.Barcode,
		AuthorizationCode: d.AuthorizationCode,
		FailureReason:     d.FailureReason,
		RequestedAt:       d.RequestedAt,
	}
	if !d.ProcessedAt.IsZero() {
		processedAt := d.ProcessedAt
		resp.ProcessedAt = &processedAt
	}
	return resp
}

func toResponses(deposits []Deposit) []Response {
	out := make([]Response, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, toResponse(d))
	}
	return out
}

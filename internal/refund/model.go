package refund

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the refund lifecycle state. Refunds are two-phase on the admin
// side: approval moves them to Processing, completion stores the provider
// receipt. Completed and Failed are terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Refund returns funds from an owner's wallet to the customer of an earlier
// completed deposit. The source-wallet debit is reserved at request time; a
// rejection restores it untouched.
type Refund struct {
	ID                    string
	OwnerID               string
	WalletID              string
	Amount                decimal.Decimal
	OriginalTransactionID string
	OriginalAmount        decimal.Decimal
	EntryID               string
	Receipt               string
	Status                Status
	RejectionReason       string
	RequestedAt           time.Time
	ProcessedAt           time.Time
}

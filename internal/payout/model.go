package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payout lifecycle state. Completed and Rejected are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Payout pushes funds from an owner's general wallet to an external payee
// key. The debit is reserved at request time, identically to withdrawals, so
// a rejection restores the balance untouched.
type Payout struct {
	ID                string
	OwnerID           string
	WalletID          string
	Amount            decimal.Decimal
	PayeeKey          string
	Description       string
	ExternalReference string
	EntryID           string
	Status            Status
	RejectionReason   string
	RequestedAt       time.Time
	ProcessedAt       time.Time
}

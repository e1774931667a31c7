package withdraw

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the withdrawal lifecycle state. Completed and Failed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Withdrawal is an outbound funds movement. The debit is reserved the moment
// the request is accepted, so two concurrent withdrawals can never spend the
// same funds; a later failure re-credits the reservation.
type Withdrawal struct {
	ID                string
	OwnerID           string
	WalletID          string
	Amount            decimal.Decimal
	PayeeKey          string
	ExternalReference string
	EntryID           string
	Status            Status
	RejectionReason   string
	RequestedAt       time.Time
	ProcessedAt       time.Time
}

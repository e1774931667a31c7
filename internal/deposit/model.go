package deposit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/gateway"
)

// Status is the deposit lifecycle state. Completed and Failed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Deposit is an inbound funds movement: an external charge that, once the
// provider confirms it, credits the target wallet. Kept forever as an audit
// record.
type Deposit struct {
	ID                string
	OwnerID           string
	WalletID          string
	Amount            decimal.Decimal
	PaymentType       gateway.PaymentType
	ExternalReference string
	// TransactionID is the provider transaction identifier confirmations
	// are matched against.
	TransactionID string
	EntryID       string
	Status        Status

	// Charge artifacts returned by the provider, by payment type.
	QRCode            string
	DigitableLine     string
	Barcode           string
	AuthorizationCode string

	FailureReason string
	RequestedAt   time.Time
	ProcessedAt   time.Time
}

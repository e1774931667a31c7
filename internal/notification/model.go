package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the delivery state of a notification. Delivered and Abandoned
// are terminal; Pending notifications are retried by the sweep until one of
// them is reached.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusAbandoned Status = "abandoned"
)

// Payload is the JSON body POSTed to the owner's callback URL.
type Payload struct {
	ID            string          `json:"id"`
	PaymentID     string          `json:"paymentId"`
	OrderID       string          `json:"orderId"`
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

// Notification is one outbound delivery, created when a movement reaches a
// terminal state and mutated only by the retry sweep. The payload is
// snapshotted at enqueue time so later state changes never alter what the
// owner receives.
type Notification struct {
	ID            string
	SourceEventID string
	CallbackURL   string
	Payload       []byte
	Status        Status
	AttemptCount  int
	LastAttemptAt time.Time
	NextAttemptAt time.Time
	CreatedAt     time.Time
}

// Event is what movement orchestrators emit on a terminal transition.
type Event struct {
	SourceEventID string
	OwnerID       string
	PaymentID     string
	OrderID       string
	TransactionID string
	Status        string
	Amount        decimal.Decimal
	PaidAt        time.Time
}

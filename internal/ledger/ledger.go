package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/movement"
)

// Kind is the direction and flavor of a balance change. Amounts are always
// positive magnitudes; the kind decides the sign.
type Kind string

const (
	KindCredit   Kind = "credit"
	KindDebit    Kind = "debit"
	KindWithdraw Kind = "withdraw"
	KindRefund   Kind = "refund"
)

// IsDebit reports whether the kind moves funds out of the wallet. Refunds
// drain the source wallet, so they carry the same sufficiency and
// reservation rules as debits and withdrawals.
func (k Kind) IsDebit() bool {
	switch k {
	case KindDebit, KindWithdraw, KindRefund:
		return true
	default:
		return false
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindCredit || k.IsDebit()
}

// Status is the lifecycle state of an entry. Completed and Cancelled (and
// Failed) are terminal; an entry never changes after reaching them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Entry is one append-only record of a balance change. A Pending debit-kind
// entry holds its amount reserved (available moved to pending) until it is
// completed or cancelled; a Pending credit-kind entry parks the incoming
// amount in pending until completion releases it to available.
type Entry struct {
	ID       string
	WalletID string
	Amount   decimal.Decimal
	Kind     Kind
	Status   Status
	Movement movement.Ref

	// Balance snapshots, captured exactly once when the entry completes.
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal

	Reason      string
	CreatedAt   time.Time
	ProcessedAt time.Time
}

// Recomputation is the result of independently deriving a wallet's balances
// from its entries for audit and reconciliation.
type Recomputation struct {
	WalletID          string
	ComputedAvailable decimal.Decimal
	ComputedPending   decimal.Decimal
	SnapshotAvailable decimal.Decimal
	SnapshotPending   decimal.Decimal
	Match             bool
}

package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purpose is the functional bucket a wallet serves for its owner. Movement
// orchestrators pick source and target wallets by purpose.
type Purpose string

const (
	PurposeGeneral           Purpose = "general"
	PurposeDepositIntake     Purpose = "deposit_intake"
	PurposeWithdrawalReserve Purpose = "withdrawal_reserve"
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeGeneral, PurposeDepositIntake, PurposeWithdrawalReserve:
		return true
	default:
		return false
	}
}

// Wallet is the current balance snapshot for one (owner, purpose) pair.
// Balances change only through ledger entry transitions. Version is the
// optimistic-concurrency token: every snapshot update compares and bumps it.
type Wallet struct {
	ID        string
	OwnerID   string
	Purpose   Purpose
	Available decimal.Decimal
	Pending   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Total is the invariant sum available + pending.
func (w Wallet) Total() decimal.Decimal {
	return w.Available.Add(w.Pending)
}

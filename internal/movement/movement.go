package movement

// Type identifies which business-level operation owns a ledger entry.
type Type string

const (
	TypeDeposit  Type = "deposit"
	TypeWithdraw Type = "withdrawal"
	TypeRefund   Type = "refund"
	TypePayout   Type = "payout"
)

// Ref points a ledger entry back at the movement that created it.
type Ref struct {
	ID   string
	Type Type
}

// Page carries limit/offset pagination for list-by-owner queries.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

package money

import (
	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
)

// Zero is the additive identity, exported for readability at call sites.
var Zero = decimal.Zero

// Parse converts a decimal string ("150.00") into an amount, rejecting
// anything with more than two fractional digits.
func Parse(input string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, fault.Wrap(fault.Validation, "invalid amount", err)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fault.Newf(fault.Validation, "amount %s has more than two decimal places", input)
	}
	return d, nil
}

// RequirePositive rejects zero and negative amounts.
func RequirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fault.Newf(fault.Validation, "amount must be positive, got %s", amount.String())
	}
	return nil
}

// Equal reports exact equality of two amounts regardless of representation.
func Equal(a, b decimal.Decimal) bool {
	return a.Equal(b)
}

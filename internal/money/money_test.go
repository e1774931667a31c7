package money

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/brisapay/brisapay/internal/fault"
)

func TestParse(t *testing.T) {
	valid := map[string]string{
		"150.00": "150.00",
		"0.01":   "0.01",
		"1000":   "1000",
		"99.9":   "99.9",
	}
	for input, want := range valid {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("parse %q: expected %s, got %s", input, want, got)
		}
	}

	invalid := []string{"", "abc", "10.001", "1,50"}
	for _, input := range invalid {
		if _, err := Parse(input); !fault.IsKind(err, fault.Validation) {
			t.Fatalf("parse %q: expected validation fault, got %v", input, err)
		}
	}
}

func TestRequirePositive(t *testing.T) {
	if err := RequirePositive(decimal.RequireFromString("0.01")); err != nil {
		t.Fatalf("positive amount rejected: %v", err)
	}
	for _, input := range []string{"0", "-0.01"} {
		if err := RequirePositive(decimal.RequireFromString(input)); !fault.IsKind(err, fault.Validation) {
			t.Fatalf("amount %s: expected validation fault, got %v", input, err)
		}
	}
}

func TestEqualIgnoresRepresentation(t *testing.T) {
	if !Equal(decimal.RequireFromString("150"), decimal.RequireFromString("150.00")) {
		t.Fatalf("150 and 150.00 must be equal")
	}
	if Equal(decimal.RequireFromString("150.00"), decimal.RequireFromString("149.99")) {
		t.Fatalf("unequal amounts reported equal")
	}
}

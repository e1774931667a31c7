package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(InsufficientFunds, "cannot cover debit")
	wrapped := fmt.Errorf("create entry: %w", base)

	if KindOf(wrapped) != InsufficientFunds {
		t.Fatalf("expected kind to survive wrapping, got %s", KindOf(wrapped))
	}
	if !IsKind(wrapped, InsufficientFunds) {
		t.Fatalf("IsKind should match through wrapping")
	}
	if IsKind(wrapped, NotFound) {
		t.Fatalf("IsKind matched the wrong kind")
	}
	if KindOf(errors.New("plain")) != Unknown {
		t.Fatalf("plain errors are Unknown")
	}
}

func TestWrapNilCause(t *testing.T) {
	if err := Wrap(Validation, "ignored", nil); err != nil {
		t.Fatalf("wrapping nil must return nil, got %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		NotFound:          http.StatusNotFound,
		Validation:        http.StatusUnprocessableEntity,
		InsufficientFunds: http.StatusUnprocessableEntity,
		Conflict:          http.StatusConflict,
		Unauthorized:      http.StatusForbidden,
		Gateway:           http.StatusBadGateway,
		Configuration:     http.StatusInternalServerError,
		NotSupported:      http.StatusNotImplemented,
		Unknown:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(New(kind, "x")); got != want {
			t.Fatalf("kind %s: expected %d, got %d", kind, want, got)
		}
	}
	if got := HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("plain error: expected 500, got %d", got)
	}
}

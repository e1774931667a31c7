package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so handlers can map it to a transport status
// without knowing which package produced it.
type Kind int

const (
	// Unknown covers failures outside the domain taxonomy (infrastructure, bugs).
	Unknown Kind = iota
	// NotFound indicates the referenced entity does not exist.
	NotFound
	// Validation indicates malformed input or an illegal state transition.
	Validation
	// Conflict indicates a duplicate creation or a lost optimistic-concurrency race.
	Conflict
	// InsufficientFunds indicates a debit would drive available balance negative.
	InsufficientFunds
	// Unauthorized indicates an ownership or role check failed.
	Unauthorized
	// Gateway indicates an upstream payment provider failure.
	Gateway
	// Configuration indicates a missing or inconsistent provider mapping.
	Configuration
	// NotSupported indicates the resolved provider lacks the requested capability.
	NotSupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case InsufficientFunds:
		return "insufficient_funds"
	case Unauthorized:
		return "unauthorized"
	case Gateway:
		return "gateway"
	case Configuration:
		return "configuration"
	case NotSupported:
		return "not_supported"
	default:
		return "unknown"
	}
}

// Error is a kinded domain error. It wraps an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes two fault errors match when their kinds match, so sentinel-style
// comparisons with errors.Is work across package boundaries.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds a fault error with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a fault error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates a cause with a kind and message. Returns nil for a nil cause.
func Wrap(kind Kind, msg string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or Unknown if err carries no fault.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

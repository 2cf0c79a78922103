package telemetry

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so callers can branch on it without
// matching message text.
type Kind int

const (
	// KindUnknown covers unclassified persistence failures. The caller
	// gets a generic message; the cause is logged for operators.
	KindUnknown Kind = iota
	// KindNotFound means a requested relay, device or report does not exist.
	KindNotFound
	// KindConflict means a creation collided with a uniqueness constraint.
	KindConflict
	// KindInvalid means caller-supplied identifiers disagree; rejected
	// before any lookup is attempted.
	KindInvalid
)

// Error carries a failure kind alongside a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// NotFoundf builds a KindNotFound error with an identifying message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a KindConflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Invalidf builds a KindInvalid error.
func Invalidf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// Unknown wraps an unclassified persistence failure behind a generic
// message. The original error stays reachable through Unwrap for logging.
func Unknown(cause error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Message: "an unknown error occurred while processing the request",
		cause:   cause,
	}
}

// KindOf extracts the failure kind from err, or KindUnknown when err was
// not produced by this engine.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

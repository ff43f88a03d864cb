package skyerr

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// These categories are intended to remain stable across versions.
// Callers should branch on Kind rather than matching error strings.
//
// NOTE: Error() strings are intentionally kept human-readable and may evolve.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindValidation marks a wrong type/length/shape of an input, rejected at
	// the API boundary before any derivation or crypto work.
	KindValidation Kind = "Validation"
	// KindFormat marks an unsupported container version or a length that is
	// not a member of the padded-size set, rejected before decryption.
	KindFormat Kind = "Format"
	// KindAuthentication marks an AEAD decryption or signature verification
	// failure. The root cause is deliberately undifferentiated.
	KindAuthentication Kind = "Authentication"
	// KindOverflow marks a size or revision computation beyond representable
	// magnitude.
	KindOverflow Kind = "Overflow"
	KindInternal Kind = "Internal"
)

// Error is the library's structured error type.
//
// Param names the offending input parameter for validation errors; it is
// empty for other kinds.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	Param   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New constructs a structured error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Newf constructs a structured error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation constructs a validation error naming the offending parameter.
func Validation(param, format string, args ...any) error {
	return &Error{Kind: KindValidation, Param: param, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a structured error that wraps cause.
func Wrap(kind Kind, msg string, cause error) error {
	if cause == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Param returns the offending parameter name for a validation error, or ""
// if err is not a structured error.
func Param(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Param
}

package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind discriminates error categories so the API layer can map them to
// status codes without an exception hierarchy.
type ErrorKind int

const (
	// KindInternal covers anything that is not one of the tagged kinds.
	KindInternal ErrorKind = iota

	// KindValidation means the client input is malformed.
	KindValidation

	// KindInjection means the input matched a prompt-injection pattern.
	// It is a stricter flavor of validation failure.
	KindInjection

	// KindRateLimit means the client must wait before retrying.
	KindRateLimit

	// KindConfig means a required external credential or connection is
	// missing.
	KindConfig

	// KindGeneration means the generation service returned no usable text.
	KindGeneration

	// KindSchema means the generation output could not be parsed or failed
	// the local schema pass.
	KindSchema

	// KindStorage means a database query failed.
	KindStorage

	// KindNotFound means a referenced record does not exist.
	KindNotFound
)

// Error is a tagged error carrying a user-safe message. RetryAfter is only
// set for KindRateLimit.
type Error struct {
	Kind       ErrorKind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a tagged error with a user-safe message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError tags an underlying error with a kind and user-safe message.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsValidation reports whether err should be treated as a client input
// problem. Injection failures count: they are a subtype of validation.
func IsValidation(err error) bool {
	k := KindOf(err)
	return k == KindValidation || k == KindInjection
}

// RetryAfterOf returns the retry-after hint from a rate-limit error, or
// zero when err is not one.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindRateLimit {
		return e.RetryAfter
	}
	return 0
}

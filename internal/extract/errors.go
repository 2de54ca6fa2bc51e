package extract

import (
	"errors"
	"fmt"
)

// Kind classifies extraction failures.
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindInvalidURL           Kind = "invalid_url"
	KindFetchFailed          Kind = "fetch_failed"
	KindAccessError          Kind = "access_error"
	KindNotFound             Kind = "not_found"
	KindInsufficientText     Kind = "insufficient_text"
	KindInsufficientMetadata Kind = "insufficient_metadata"
	KindNoContent            Kind = "no_content"
)

// Error is a user-facing extraction failure.
type Error struct {
	Kind       Kind
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the Kind of err, or "" when err is not an extraction error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

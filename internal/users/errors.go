package users

import "errors"

var (
	ErrNotFound   = errors.New("user not found")
	ErrDuplicate  = errors.New("an account with this email already exists")
	ErrAuthFailed = errors.New("invalid email or password")
)

// ValidationError carries a user-facing reason for rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

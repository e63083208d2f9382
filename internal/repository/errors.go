package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness constraint fails
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a domain error with a human readable message that unwraps to one
// of the sentinels above, so callers can branch with errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound builds a domain error of kind ErrNotFound.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

// Conflict builds a domain error of kind ErrConflict.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// Invalid builds a domain error of kind ErrInvalidInput.
func Invalid(msg string) error { return &Error{Kind: ErrInvalidInput, Message: msg} }

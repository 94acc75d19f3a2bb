// Package apperr holds the error kinds shared by repositories, services and handlers.
// Concrete errors wrap one of the kinds so callers can branch with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidState         = errors.New("invalid state")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrConflict             = errors.New("conflict")
)

// Validation returns an ErrValidation carrying a caller-facing reason.
func Validation(reason string) error {
	return &reasonError{kind: ErrValidation, reason: reason}
}

// InvalidState returns an ErrInvalidState carrying a caller-facing reason.
func InvalidState(reason string) error {
	return &reasonError{kind: ErrInvalidState, reason: reason}
}

type reasonError struct {
	kind   error
	reason string
}

func (e *reasonError) Error() string {
	return e.reason
}

func (e *reasonError) Unwrap() error {
	return e.kind
}

// Retryable reports whether err is safe to retry without caller correction.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// Conflictf wraps ErrConflict with context.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

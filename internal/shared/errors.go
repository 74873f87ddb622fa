package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate identifier.
	ErrConflict = errors.New("conflict")
	// ErrProtectedRole is returned when a protected role would be deleted or renamed.
	ErrProtectedRole = errors.New("protected role")
	// ErrValidation indicates malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence wraps failures of the underlying store.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Persistence marks err as a store failure while keeping the original cause reachable.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}

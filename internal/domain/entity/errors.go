package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced negotiation or contract does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an atomic operation loses to a concurrent
	// modification or the contract is in an unexpected status at commit time
	ErrConflict = errors.New("conflicting concurrent modification")
)

// ValidationError reports malformed input. It is returned before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories and services.
var (
	// ErrNotFound indicates a referenced game, player or bet does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds indicates a debit larger than the player's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ValidationError indicates malformed input: a selection whose shape or range
// does not match its bet type, or a non-positive amount.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StateError indicates an illegal lifecycle transition, such as drawing a
// game that is not scheduled or betting on a closed game.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "state: " + e.Reason
}

// NewStateError creates a StateError with a formatted reason.
func NewStateError(format string, args ...any) *StateError {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateError reports whether err is (or wraps) a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation indicates externally supplied context failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrDeadlineExceeded indicates the attached deadline has passed.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrPropagationLost indicates a downstream service did not receive the
	// context that was attached when the call was made.
	ErrPropagationLost = errors.New("context propagation lost")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// DeadlineExceededError reports how far past the attached deadline the
// check happened.
type DeadlineExceededError struct {
	Operation string
	Overrun   time.Duration
}

// Error implements the error interface.
func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("%s: deadline exceeded by %s", e.Operation, e.Overrun)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *DeadlineExceededError) Unwrap() error {
	return ErrDeadlineExceeded
}

// CheckDeadline returns a DeadlineExceededError when a deadline is attached
// and has passed. Without an attached deadline it always succeeds.
func CheckDeadline(operation string) error {
	d, ok := Deadlines.Current()
	if !ok || !d.Expired() {
		return nil
	}

	return &DeadlineExceededError{Operation: operation, Overrun: time.Since(d.at)}
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsDeadlineExceeded checks if an error is a deadline error.
func IsDeadlineExceeded(err error) bool {
	return errors.Is(err, ErrDeadlineExceeded)
}

// IsPropagationLost checks if an error reports lost context propagation.
func IsPropagationLost(err error) bool {
	return errors.Is(err, ErrPropagationLost)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NewPropagationLostError describes which value failed to arrive downstream.
func NewPropagationLostError(field, want, got string) error {
	return fmt.Errorf("%w: %s sent %q, downstream saw %q", ErrPropagationLost, field, want, got)
}

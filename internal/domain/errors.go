package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is usually wrapped by a ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or not positive.
	ErrInvalidID = errors.New("invalid ID")

	// ErrRoleNotExisted is returned when a role name is not one of the known roles,
	// or is not a role that may be assigned.
	ErrRoleNotExisted = errors.New("role does not exist")

	// ErrInvalidStateTransition is returned when a course or lecture is moved
	// out of a state it cannot leave, e.g. approving an already rejected course.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// ValidationError describes which field failed validation and why.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrValidation) on the wrapped sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError. When err is nil it wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create a duplicate entity
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthFailed is returned for missing, expired, or otherwise
	// unresolvable credentials. Deliberately coarse so callers cannot
	// distinguish "no such account" from "wrong password".
	ErrAuthFailed = errors.New("authentication failed")

	// ErrCodeExhaustion is returned when access code generation keeps
	// colliding and the retry budget runs out.
	ErrCodeExhaustion = errors.New("could not allocate a unique access code")

	// ErrSummarization is returned when the summarize pipeline fails at
	// any step: provider error, timeout, or a response that does not
	// match the required schema.
	ErrSummarization = errors.New("summarization failed")

	// ErrSummaryMissing is returned when export is requested for a
	// meeting that has not been summarized yet.
	ErrSummaryMissing = errors.New("meeting has no summary")

	// ErrExport is returned when rendering an export document fails.
	ErrExport = errors.New("export failed")
)

// ValidationError wraps field-specific validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

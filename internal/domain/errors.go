package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a rejected request parameter.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnavailable signals an upstream store failure.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a field-level validation error.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

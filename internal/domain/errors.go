// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"sort"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when client input fails validation.
	// Callers usually receive it wrapped in a *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is empty or malformed.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a status is outside the configured set.
	ErrInvalidStatus = errors.New("invalid task status")
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level validation failures.
// It always matches ErrValidation with errors.Is, in addition to any
// more specific cause it carries.
type ValidationError struct {
	Fields []FieldError
	Err    error
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Fields: []FieldError{{Field: field, Message: message}},
		Err:    err,
	}
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failures were recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// FieldMap returns the failures keyed by field name. When a field failed
// more than once the first message wins.
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Message
		}
	}
	return m
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	sort.Strings(parts)
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap exposes ErrValidation and the specific cause to errors.Is/As.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || errors.Is(e.Err, ErrValidation) {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by services, repositories and the HTTP layer.
var (
	ErrNotFound = errors.New("not found")

	// ErrConfiguration is returned when required configuration (e.g. the database URL) is missing.
	ErrConfiguration = errors.New("configuration error")

	// ErrConnection marks transient infrastructure failures while reaching the database.
	ErrConnection = errors.New("database connection failed")

	// ErrUpstream marks failures of external collaborators such as the image upload service.
	ErrUpstream = errors.New("upstream service failed")

	// ErrReference is returned when a booking points at an event that does not exist.
	ErrReference = errors.New("referenced event does not exist")

	ErrDuplicate  = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// FieldError represents a single field's validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ValidationError collects every failed field rule of a single write attempt.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a ValidationError for one field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Without returns the remaining field errors after dropping field, or nil if none remain.
func (e *ValidationError) Without(field string) error {
	var rest []FieldError
	for _, f := range e.Fields {
		if f.Field != field {
			rest = append(rest, f)
		}
	}
	if len(rest) == 0 {
		return nil
	}
	return &ValidationError{Fields: rest}
}

// DuplicateError is returned when a write violates a uniqueness constraint.
// Both the service pre-check and the storage-level constraint produce it.
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

func (e *DuplicateError) Error() string {
	if e.Entity == "booking" {
		return "already booked: this email has already booked the event"
	}
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

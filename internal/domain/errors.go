package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of a coach error.
type ErrorType string

const (
	// ErrorTypeValidation indicates missing or malformed user input. It is
	// surfaced as a form-level message and never moves a session to the
	// error phase.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeGeneration indicates the language-generation collaborator
	// failed or returned empty text. Retryable by the user.
	ErrorTypeGeneration ErrorType = "generation"

	// ErrorTypeSchemaMismatch indicates a structured response did not parse
	// into the expected shape. No partial result is accepted.
	ErrorTypeSchemaMismatch ErrorType = "schema_mismatch"

	// ErrorTypeStorage indicates a persistence failure. Storage errors never
	// interrupt the user-visible flow.
	ErrorTypeStorage ErrorType = "storage"

	// ErrorTypeConfiguration indicates missing required configuration.
	// Fatal at process start.
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeNotFound indicates a session or resource was not found.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeInvalidState indicates an operation was attempted in a phase
	// that does not permit it.
	ErrorTypeInvalidState ErrorType = "invalid_state"
)

// CoachError is the canonical error returned by the session core and
// translated to the appropriate format by the presentation surface.
type CoachError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Cause is the underlying error, if any
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *CoachError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *CoachError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *CoachError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeValidation, ErrorTypeInvalidState:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeGeneration, ErrorTypeSchemaMismatch:
		return http.StatusBadGateway
	case ErrorTypeConfiguration, ErrorTypeStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewError creates a new coach error.
func NewError(errType ErrorType, message string) *CoachError {
	return &CoachError{Type: errType, Message: message}
}

// WithCause attaches an underlying error.
func (e *CoachError) WithCause(err error) *CoachError {
	e.Cause = err
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(message string) *CoachError {
	return NewError(ErrorTypeValidation, message)
}

// ErrGeneration creates a generation error.
func ErrGeneration(message string) *CoachError {
	return NewError(ErrorTypeGeneration, message)
}

// ErrSchemaMismatch creates a schema mismatch error.
func ErrSchemaMismatch(message string) *CoachError {
	return NewError(ErrorTypeSchemaMismatch, message)
}

// ErrStorage creates a storage error.
func ErrStorage(message string) *CoachError {
	return NewError(ErrorTypeStorage, message)
}

// ErrConfiguration creates a configuration error.
func ErrConfiguration(message string) *CoachError {
	return NewError(ErrorTypeConfiguration, message)
}

// ErrNotFound creates a not-found error.
func ErrNotFound(message string) *CoachError {
	return NewError(ErrorTypeNotFound, message)
}

// ErrInvalidState creates an invalid-state error.
func ErrInvalidState(message string) *CoachError {
	return NewError(ErrorTypeInvalidState, message)
}

// AsCoachError converts any error to a *CoachError. Errors that are not
// already a CoachError are wrapped as internal storage-agnostic server
// failures of type generation when they come from the collaborator boundary;
// callers at other boundaries should classify before reporting.
func AsCoachError(err error) *CoachError {
	var ce *CoachError
	if errors.As(err, &ce) {
		return ce
	}
	return &CoachError{Type: ErrorTypeGeneration, Message: err.Error(), Cause: err}
}

// IsType reports whether err is a CoachError of the given type.
func IsType(err error, t ErrorType) bool {
	var ce *CoachError
	return errors.As(err, &ce) && ce.Type == t
}

// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrCacheExpired indicates cached data has exceeded TTL.
	ErrCacheExpired = errors.New("cache expired")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrMissingParameter indicates a required parameter is missing.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrEmptyCatalog indicates the course catalog has not been loaded.
	ErrEmptyCatalog = errors.New("course catalog is empty")

	// ErrSessionNotFound indicates an unknown or expired advising session.
	ErrSessionNotFound = errors.New("session not found")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRateLimitExceeded reports whether err wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool { return errors.Is(err, ErrRateLimitExceeded) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IngestError represents catalog ingestion failures with source context.
type IngestError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *IngestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ingest error (source=%s, status=%d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ingest error (source=%s): %v", e.Source, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// NewIngestError creates a new ingest error.
func NewIngestError(source string, statusCode int, err error) *IngestError {
	return &IngestError{
		Source:     source,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Package errors provides structured error types for the personalization pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout      = errors.New("operation timed out")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotReady     = errors.New("target is not ready")
	ErrRateLimit    = errors.New("rate limit exceeded")
	ErrUnavailable  = errors.New("service unavailable")
)

// CollabError represents an error from an external collaborator call
// (scraper, brand analyzer, or scene code editor).
type CollabError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *CollabError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s collaborator error (status %d): %s: %v", e.Service, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s collaborator error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *CollabError) Unwrap() error { return e.Err }

// NewCollabError creates a new collaborator error.
func NewCollabError(service string, statusCode int, message string) *CollabError {
	return &CollabError{Service: service, StatusCode: statusCode, Message: message}
}

// IsRetryable returns true if the error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var ce *CollabError
	if errors.As(err, &ce) {
		switch ce.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimit) || errors.Is(err, ErrUnavailable)
}

package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check
// for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrOperationRequiresNetwork indicates a requested operation is not in
	// the set of operations permitted to proceed offline. API layer should
	// map this to HTTP 409 Conflict.
	ErrOperationRequiresNetwork = errors.New("operation requires connectivity")

	// ErrUnknownOperation indicates the requested operation kind is not in
	// the offline policy table. API layer should map this to HTTP 404 Not
	// Found.
	ErrUnknownOperation = errors.New("unknown operation kind")
)

// EngineServiceError is a custom error type for engine service errors.
// It wraps an underlying error with the operation that failed and a
// caller-safe message.
type EngineServiceError struct {
	Operation string // The operation that failed (e.g., "save_profile")
	Message   string // Caller-safe error message
	Err       error  // Original error
}

// Error implements the error interface for EngineServiceError.
func (e *EngineServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *EngineServiceError) Unwrap() error {
	return e.Err
}

// NewEngineServiceError creates a new EngineServiceError with the given
// operation, message, and wrapped error.
func NewEngineServiceError(operation, message string, err error) *EngineServiceError {
	return &EngineServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

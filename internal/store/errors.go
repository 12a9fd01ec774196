package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic form of the entity-specific not found
	// errors.
	ErrNotFound = errors.New("entity not found")

	// ErrRecordNotFound indicates that the requested syncable record does
	// not exist in the store.
	ErrRecordNotFound = fmt.Errorf("%w: record", ErrNotFound)

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStorageFailure is returned when the local store itself fails (I/O
	// error, corrupted database, constraint breakage). This is fatal to the
	// in-progress operation: without local durability the engine makes no
	// progress, and the caller must retry explicitly.
	ErrStorageFailure = errors.New("local storage failure")

	// ErrStaleVersion is returned by MarkSynced when the record was
	// rewritten after the pushed payload version. The record stays dirty
	// and the newer payload will be reconciled later.
	ErrStaleVersion = errors.New("record version is stale")
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageFailure checks if the error indicates the local store itself
// failed, as opposed to an expected condition like a missing record.
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "record")
	Operation string // The operation that failed (e.g., "upsert", "mark_synced")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

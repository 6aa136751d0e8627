package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness rule.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or a constraint rejects it.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConcurrentConflict is returned when a concurrent writer made the
	// operation impossible to complete (serialization failure, deadlock,
	// busy database, or the target moved between reads). Nothing was
	// committed; the caller may retry.
	ErrConcurrentConflict = errors.New("concurrent modification conflict")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("%w: project", ErrNotFound)
	ErrBoardNotFound        = fmt.Errorf("%w: board", ErrNotFound)
	ErrColumnNotFound       = fmt.Errorf("%w: column", ErrNotFound)
	ErrTaskNotFound         = fmt.Errorf("%w: task", ErrNotFound)
	ErrLabelNotFound        = fmt.Errorf("%w: label", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrLabelNameExists indicates that the project already has a label with that name.
	ErrLabelNameExists = fmt.Errorf("%w: label name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError reports whether err is a retryable concurrency conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConcurrentConflict)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "task", "column")
	Operation string // The operation that failed (e.g., "create", "shift")
	Message   string
	Err       error
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

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

package service

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden indicates the actor may not act on the resource.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidCredentials indicates a login with an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrLabelInUse indicates a label still attached to tasks was deleted
	// without force.
	ErrLabelInUse = errors.New("label is in use")
)

// ServiceError is a custom error type for service errors.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// LabelInUseError reports how many tasks still use a label.
type LabelInUseError struct {
	TaskCount int
}

func (e *LabelInUseError) Error() string {
	if e.TaskCount == 1 {
		return "label is used by 1 task"
	}
	return fmt.Sprintf("label is used by %d tasks", e.TaskCount)
}

func (e *LabelInUseError) Unwrap() error {
	return ErrLabelInUse
}

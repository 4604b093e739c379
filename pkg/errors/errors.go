package errors

import (
	"fmt"
)

// Common application errors
var (
	ErrNotFound        = NewNotFoundError("resource", 0)
	ErrAlreadyExists   = NewAlreadyExistsError("resource", "resource already exists")
	ErrInvalidArgument = NewValidationError("", "invalid argument")
	ErrInternal        = NewInternalError("internal error", nil)
)

// Lending state errors
var (
	ErrAlreadyIssued    = NewStateError("already_issued", "book is already issued")
	ErrNotIssued        = NewStateError("not_issued", "book is not issued")
	ErrNotHeld          = NewStateError("not_held", "book is not issued to this user")
	ErrIDSpaceExhausted = NewStateError("id_space_exhausted", "no free user id left")
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NotFoundError represents a missing book or user
type NotFoundError struct {
	Resource string
	ID       int64
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s not found: id=%d", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is reports whether target is any NotFoundError, so errors.Is(err, ErrNotFound) matches.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// Is reports whether target is any AlreadyExistsError.
func (e *AlreadyExistsError) Is(target error) bool {
	_, ok := target.(*AlreadyExistsError)
	return ok
}

// StateError is a rejected state transition. Code is stable and safe to switch on.
type StateError struct {
	Code    string
	Message string
}

// NewStateError creates a new state error
func NewStateError(code, message string) *StateError {
	return &StateError{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *StateError) Error() string {
	return e.Message
}

// Is matches state errors by code.
func (e *StateError) Is(target error) bool {
	t, ok := target.(*StateError)
	return ok && t.Code == e.Code
}

// InternalError represents a storage or wiring failure with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

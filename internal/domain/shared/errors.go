package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Err is the underlying cause, if any. It is never exposed to clients.
	Err error `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodePropagationFailure = "PROPAGATION_FAILURE"
	CodeStorageFailure     = "STORAGE_FAILURE"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidState       = "INVALID_STATE"
)

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation         = NewDomainError(CodeValidation, "Invalid input provided")
	ErrPropagationFailure = NewDomainError(CodePropagationFailure, "Failed to mark parent records for review")
	ErrStorageFailure     = NewDomainError(CodeStorageFailure, "Storage operation failed")
	ErrAlreadyExists      = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrUnauthorized       = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidState       = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// NewNotFoundError reports that the named resource does not resolve.
func NewNotFoundError(resource string, id uint64) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %d not found", resource, id))
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewPropagationFailure wraps an ancestor flag write that failed after the
// leaf mutation was already persisted.
func NewPropagationFailure(err error) *DomainError {
	return &DomainError{
		Code:    CodePropagationFailure,
		Message: "record saved but parent review flags could not be updated",
		Err:     err,
	}
}

// NewStorageFailure wraps a store or transport error.
func NewStorageFailure(op string, err error) *DomainError {
	return &DomainError{
		Code:    CodeStorageFailure,
		Message: op + " failed",
		Err:     err,
	}
}

package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeIntegrity  = "INTEGRITY_ERROR"
	CodeForbidden  = "FORBIDDEN"
	CodeInternal   = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// WrapValidationError keeps err reachable through errors.Is.
func WrapValidationError(err error) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "validation failed",
		Err:     err,
	}
}

// NewIntegrityError wraps a constraint violation reported by the database.
func NewIntegrityError(err error) *AppError {
	return &AppError{
		Code:    CodeIntegrity,
		Message: "integrity constraint violated",
		Err:     err,
	}
}

// NewForbiddenError reports an action on a resource the caller does not own.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidationError reports whether err is a caller-side contract violation.
func IsValidationError(err error) bool { return hasCode(err, CodeValidation) }

// IsIntegrityError reports whether err is a database constraint violation.
func IsIntegrityError(err error) bool { return hasCode(err, CodeIntegrity) }

// IsForbiddenError reports whether err is an ownership violation.
func IsForbiddenError(err error) bool { return hasCode(err, CodeForbidden) }

// IsNotFoundError reports whether err is a missing-row error.
func IsNotFoundError(err error) bool { return hasCode(err, CodeNotFound) }

package services

import (
	"errors"
	"fmt"
)

// ErrorType tags a DomainError. Callers switch on the tag, never on messages.
type ErrorType string

const (
	// Authentication failures
	ErrorTypeMissingCredential ErrorType = "missing_credential"
	ErrorTypeInvalidSignature  ErrorType = "invalid_signature"
	ErrorTypeExpired           ErrorType = "expired"
	ErrorTypeStaleCredential   ErrorType = "stale_credential"

	// Authorization failures
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeForbidden       ErrorType = "forbidden"

	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError of the same type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Wrap returns a copy of e carrying cause. The receiver is left untouched,
// so package sentinels can be wrapped safely.
func (e *DomainError) Wrap(cause error) *DomainError {
	return NewDomainError(e.Type, e.Message, cause)
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Sentinels for errors.Is; match on Type only

var (
	ErrMissingCredential = NewDomainError(ErrorTypeMissingCredential, "access token is missing", nil)
	ErrInvalidSignature  = NewDomainError(ErrorTypeInvalidSignature, "token is invalid", nil)
	ErrExpired           = NewDomainError(ErrorTypeExpired, "token has expired", nil)
	ErrStaleCredential   = NewDomainError(ErrorTypeStaleCredential, "user associated with token no longer exists", nil)
	ErrUnauthenticated   = NewDomainError(ErrorTypeUnauthenticated, "user must be authenticated", nil)
	ErrForbidden         = NewDomainError(ErrorTypeForbidden, "access denied", nil)

	ErrUserNotFound = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrInternal     = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

package shared

import (
	"github.com/samber/oops"
)

// Domain error codes
const (
	ErrCodeInvalidInput     = 1001
	ErrCodeNotFound         = 1002
	ErrCodeAlreadyAssigned  = 1003
	ErrCodePoolExhausted    = 1004
	ErrCodeAllocationFailed = 1005
	ErrCodeStoreUnavailable = 1006
)

// NewDomainError creates a new domain error using oops
func NewDomainError(code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf(message)
}

// NewDomainErrorf creates a new domain error with formatted message
func NewDomainErrorf(code int, format string, args ...interface{}) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf(format, args...)
}

// WrapDomainError wraps an existing error with domain context
func WrapDomainError(err error, code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Wrapf(err, message)
}

// codeToString converts int error code to string
func codeToString(code int) string {
	switch code {
	case ErrCodeInvalidInput:
		return "INVALID_INPUT"
	case ErrCodeNotFound:
		return "NOT_FOUND"
	case ErrCodeAlreadyAssigned:
		return "ALREADY_ASSIGNED"
	case ErrCodePoolExhausted:
		return "POOL_EXHAUSTED"
	case ErrCodeAllocationFailed:
		return "ALLOCATION_FAILED"
	case ErrCodeStoreUnavailable:
		return "STORE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}

// CodeOf returns the string code of a domain error, or "" for foreign errors
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code()
	}
	return ""
}

// HasCode reports whether err carries the given domain error code
func HasCode(err error, code int) bool {
	return CodeOf(err) == codeToString(code)
}

// Common domain error builders

func ErrInvalidInput(msg string) error {
	return NewDomainError(ErrCodeInvalidInput, msg)
}

func ErrNotFound(resource string) error {
	return NewDomainErrorf(ErrCodeNotFound, "%s not found", resource)
}

func ErrAlreadyAssigned(unit string) error {
	return NewDomainErrorf(ErrCodeAlreadyAssigned, "username %q is already assigned", unit)
}

func ErrPoolExhausted() error {
	return NewDomainError(ErrCodePoolExhausted, "No usernames left")
}

func ErrAllocationFailed(attempts int) error {
	return NewDomainErrorf(ErrCodeAllocationFailed, "Failed to claim username after %d attempts", attempts)
}

func ErrStoreUnavailable(err error) error {
	return WrapDomainError(err, ErrCodeStoreUnavailable, "store operation failed")
}

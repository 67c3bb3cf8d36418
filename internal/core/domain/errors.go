// Package domain defines the core session model for the foteam storefront.
package domain

import (
	"errors"
	"strings"
)

// DomainError is an error with a stable code of the form FT-<AREA>-<NNNN>.
// Codes are what clients and tests match on; messages may change.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[" + e.Code + "] " + e.Message)
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code, so a detailed copy still
// satisfies errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError creates a sentinel error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithDetails returns a copy carrying details. The receiver is unchanged.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping cause. The receiver is unchanged.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Area returns the middle segment of the code ("SESS" for FT-SESS-4040).
func (e *DomainError) Area() string {
	parts := strings.SplitN(e.Code, "-", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}

// IsDomainError reports whether err wraps a DomainError with code. An
// empty code matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return code == "" || de.Code == code
}

// GetErrorCode returns the code of the DomainError in err's chain, or "".
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Session errors.
var (
	ErrInvalidSessionID     = NewDomainError("FT-SESS-4000", "invalid session id")
	ErrSessionNotFound      = NewDomainError("FT-SESS-4040", "session not found")
	ErrSessionDestroyed     = NewDomainError("FT-SESS-4100", "session destroyed")
	ErrSessionSerialization = NewDomainError("FT-SESS-4220", "session serialization failed")
)

// Request argument errors, raised by the HTTP handlers.
var (
	ErrInvalidArgument = NewDomainError("FT-ARG-1001", "invalid argument")
	ErrMissingArgument = NewDomainError("FT-ARG-1002", "missing argument")
	ErrCartFull        = NewDomainError("FT-ARG-1003", "cart is full")
	ErrItemNotFound    = NewDomainError("FT-ARG-4040", "item not found")
	ErrUnauthorized    = NewDomainError("FT-AUTH-4010", "authentication required")
)

// System errors.
var (
	ErrInternalServer     = NewDomainError("FT-SYS-5000", "internal server error")
	ErrStorageError       = NewDomainError("FT-SYS-5001", "storage error")
	ErrServiceUnavailable = NewDomainError("FT-SYS-5030", "service unavailable")
	ErrInvalidConfig      = NewDomainError("FT-SYS-4001", "invalid configuration")
)

package domain

import (
	"errors"
	"fmt"
)

// Error codes. Handlers map them to HTTP statuses; the backend client maps
// backend statuses onto them.
const (
	EINVALID      = "invalid"
	EUNAUTHORIZED = "unauthorized" // no portal session, or the backend rejected the bearer token
	EFORBIDDEN    = "forbidden"    // role may not see the list
	ENOTFOUND     = "not_found"
	ECONFLICT     = "conflict"
	ERATELIMIT    = "rate_limit" // ours or the backend's
	EUNAVAILABLE  = "unavailable"
	EINTERNAL     = "internal"
)

// Error is the portal's error value. Message is shown to users (except for
// EINTERNAL); Op and Err are for logs.
type Error struct {
	Code    string
	Op      string // e.g. "backend.list_reviews"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so errors.Is(err, &Error{Code: ERATELIMIT})
// works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

func Errorf(code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// ErrorCode returns the code of the outermost Error. Errors that are not an
// *Error count as EINTERNAL; nil has no code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// Temporary reports whether retrying the same call later may succeed.
func Temporary(err error) bool {
	switch ErrorCode(err) {
	case EINTERNAL, EUNAVAILABLE, ERATELIMIT:
		return true
	}
	return false
}

// ErrorMessage returns the text a user may see. Internal errors get a
// generic sentence.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

func NotFound(op, resource, id string) *Error {
	return Errorf(ENOTFOUND, op, "%s %q not found", resource, id)
}

func Invalid(op, message string) *Error      { return &Error{Code: EINVALID, Op: op, Message: message} }
func Unauthorized(op, message string) *Error { return &Error{Code: EUNAUTHORIZED, Op: op, Message: message} }
func Forbidden(op, message string) *Error    { return &Error{Code: EFORBIDDEN, Op: op, Message: message} }

// Unavailable wraps a transport failure talking to the thesis backend.
func Unavailable(err error, op string) *Error {
	return Wrap(err, EUNAVAILABLE, op, "The thesis service is not reachable right now.")
}

func Internal(err error, op, message string) *Error {
	return Wrap(err, EINTERNAL, op, message)
}

func RateLimit(op string) *Error {
	return &Error{Code: ERATELIMIT, Op: op, Message: "Too many requests. Please try again later."}
}

// ValidationError represents field-level validation errors.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed", e.Op)
}

// NewValidationError creates a new validation error with the first field error.
func NewValidationError(op, field, message string) *ValidationError {
	return &ValidationError{
		Op:     op,
		Fields: map[string]string{field: message},
	}
}

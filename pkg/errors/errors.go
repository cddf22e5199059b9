package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Routing errors
	ErrNoRouter      ErrorCode = "NO_ROUTER"
	ErrUnknownMethod ErrorCode = "UNKNOWN_METHOD"
	ErrDispatch      ErrorCode = "DISPATCH"
	ErrPattern       ErrorCode = "PATTERN"

	// Stream errors
	ErrStreamClosed ErrorCode = "STREAM_CLOSED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// File errors
	ErrFileRead    ErrorCode = "FILE_READ"
	ErrFileWrite   ErrorCode = "FILE_WRITE"
	ErrFrontMatter ErrorCode = "FRONT_MATTER"

	// Action errors
	ErrActionInvalid ErrorCode = "ACTION_INVALID"
	ErrActionFailed  ErrorCode = "ACTION_FAILED"
)

// RouteError represents a structured error with code and details
type RouteError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RouteError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RouteError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a RouteError with the same code
func (e *RouteError) Is(target error) bool {
	var targetErr *RouteError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RouteError with the given code and message
func New(code ErrorCode, message string) *RouteError {
	return &RouteError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RouteError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RouteError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a RouteError.
// A nil err yields a nil *RouteError.
func Wrap(err error, code ErrorCode, message string) *RouteError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RouteError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *RouteError) WithDetail(key string, value interface{}) *RouteError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RouteError) WithDetails(details map[string]interface{}) *RouteError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var routeErr *RouteError
		if !errors.As(err, &routeErr) {
			return false
		}
		if routeErr.Code == code {
			return true
		}
		err = routeErr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown
func GetErrorCode(err error) ErrorCode {
	var routeErr *RouteError
	if errors.As(err, &routeErr) {
		return routeErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RouteError
func GetErrorDetails(err error) map[string]interface{} {
	var routeErr *RouteError
	if errors.As(err, &routeErr) {
		return routeErr.Details
	}
	return nil
}

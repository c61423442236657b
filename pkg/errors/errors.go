package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an error category. Codes are stable strings so
// tests and callers can match on them without parsing messages.
type ErrorCode string

const (
	// General errors
	ErrUnhandled    ErrorCode = "UNHANDLED"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfig      ErrorCode = "CONFIG"
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Project errors
	ErrProjectRoot ErrorCode = "PROJECT_ROOT"

	// Package index errors
	ErrPackageNotFound ErrorCode = "PACKAGE_NOT_FOUND"
	ErrTransport       ErrorCode = "TRANSPORT"
	ErrParse           ErrorCode = "PARSE"
	ErrStdlibConflict  ErrorCode = "STDLIB_CONFLICT"

	// Cross-compiler errors
	ErrCompile        ErrorCode = "COMPILE"
	ErrCompileTimeout ErrorCode = "COMPILE_TIMEOUT"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// ForgeError carries an ErrorCode, a human-readable message, optional
// structured details, and an optional wrapped cause.
type ForgeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error renders as "[CODE] message", with the cause appended when present
func (e *ForgeError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Wrapped != nil {
		s += ": " + e.Wrapped.Error()
	}
	return s
}

// Unwrap exposes the cause to the errors package
func (e *ForgeError) Unwrap() error {
	return e.Wrapped
}

// Is matches two ForgeErrors on their code alone
func (e *ForgeError) Is(target error) bool {
	var targetErr *ForgeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New builds a ForgeError with the given code and message
func New(code ErrorCode, message string) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf builds a ForgeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ForgeError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to an existing error. A nil err
// yields a nil result so call sites can wrap unconditionally.
func Wrap(err error, code ErrorCode, message string) *ForgeError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ForgeError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail records one key/value pair on the error and returns it for
// chaining
func (e *ForgeError) WithDetail(key string, value interface{}) *ForgeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails merges a map of details into the error
func (e *ForgeError) WithDetails(details map[string]interface{}) *ForgeError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

func asForge(err error) (*ForgeError, bool) {
	var forgeErr *ForgeError
	ok := errors.As(err, &forgeErr)
	return forgeErr, ok
}

// IsErrorCode reports whether err, or any error it wraps, carries code
func IsErrorCode(err error, code ErrorCode) bool {
	if forgeErr, ok := asForge(err); ok {
		return forgeErr.Code == code
	}
	return false
}

// GetErrorCode extracts the code from err, or ErrUnhandled for errors
// that never passed through this package
func GetErrorCode(err error) ErrorCode {
	if forgeErr, ok := asForge(err); ok {
		return forgeErr.Code
	}
	return ErrUnhandled
}

// GetErrorDetails extracts the details map from err, nil for foreign
// errors
func GetErrorDetails(err error) map[string]interface{} {
	if forgeErr, ok := asForge(err); ok {
		return forgeErr.Details
	}
	return nil
}

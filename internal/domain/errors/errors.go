package errors

import (
	"errors"
	"fmt"
)

// Re-exports so callers don't need a second errors import.
var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// Error codes for every failure the service can surface. The set is closed;
// handlers map each code to exactly one HTTP status.
const (
	ErrNotFound                = "NOT_FOUND"
	ErrInvalidInput            = "INVALID_INPUT"
	ErrConflict                = "CONFLICT"
	ErrDownstreamTimeout       = "DOWNSTREAM_TIMEOUT"
	ErrDownstreamUnreachable   = "DOWNSTREAM_UNREACHABLE"
	ErrDownstreamRejected      = "DOWNSTREAM_REJECTED"
	ErrRefundPersistenceFailed = "REFUND_PERSISTENCE_FAILED"
	ErrInternal                = "INTERNAL"
)

// AppError carries a machine-checkable code alongside a human-readable
// message. Transport detail stays in the message; nothing else leaks.
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *AppError) Code() string {
	return e.code
}

func (e *AppError) Unwrap() error {
	return e.err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{code: code, message: message, err: err}
}

func NotFound(message string) *AppError {
	return &AppError{code: ErrNotFound, message: message}
}

func InvalidInput(message string) *AppError {
	return &AppError{code: ErrInvalidInput, message: message}
}

func Conflict(message string) *AppError {
	return &AppError{code: ErrConflict, message: message}
}

// CodeOf extracts the error code, defaulting to INTERNAL for plain errors.
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Wrap attaches a message while preserving the original code, so a store
// error keeps its classification as it crosses layers.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if As(err, &appErr) {
		return NewAppError(appErr.Code(), message, err)
	}
	return NewAppError(ErrInternal, message, err)
}

package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a failed table operation.
//
// Error includes structured fields for diagnostics: the operation and
// table it came from, and for execution failures the engine error itself,
// reachable through errors.Is and errors.As.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the table operation that failed ("query", "get", ...).
	Op string

	// Table is the table the operation ran against.
	Table string

	// Message is a human-readable description.
	Message string

	// Err is the underlying engine error, if any.
	Err error
}

// ErrorCode categorizes table operation errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a point read matched no row.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidArgument indicates bad input, detected before any I/O.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeEngineExecution indicates the SQL engine rejected a statement
	// or the connection failed.
	ErrCodeEngineExecution ErrorCode = "ENGINE_EXECUTION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s: %s %s: %s", e.Code, e.Op, e.Table, msg)
}

// Unwrap returns the underlying engine error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns an HTTP-style status for the error category.
func (e *Error) Status() int {
	switch e.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound returns true if the error is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsInvalidArgument returns true if the error is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidArgument)
}

// IsExecutionError returns true if the error came from the SQL engine.
func IsExecutionError(err error) bool {
	return hasCode(err, ErrCodeEngineExecution)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func notFound(op, table string, id any) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Op:      op,
		Table:   table,
		Message: fmt.Sprintf("no record with id %v", id),
	}
}

func invalidArgument(op, table string, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Op:      op,
		Table:   table,
		Message: fmt.Sprintf(format, args...),
	}
}

func executionError(op, table, message string, err error) *Error {
	return &Error{
		Code:    ErrCodeEngineExecution,
		Op:      op,
		Table:   table,
		Message: message,
		Err:     err,
	}
}

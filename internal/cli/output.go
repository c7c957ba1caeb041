package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/docstore/internal/engine"
	"github.com/roach88/docstore/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (record not found, engine error, failed scenarios)
	ExitCommandError = 2 // Command error (bad flags, invalid config, unknown table)
)

// Error codes for CLI JSON responses.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Config load or validation failed
	ErrCodeUnknownTable = "E003" // Table not declared in config
	ErrCodeInput        = "E004" // Unreadable or malformed input
	ErrCodeNotFound     = "E005" // Record not found
	ErrCodeInvalidArg   = "E006" // Rejected by the engine before any I/O
	ErrCodeEngine       = "E007" // SQL engine failure
	ErrCodeTestFailed   = "E008" // One or more scenarios failed
	ErrCodeOpenDatabase = "E009" // Database could not be opened
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	ErrCode string // CLI error code for JSON output (optional)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// GetErrCode extracts the CLI error code from an error.
func GetErrCode(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.ErrCode != "" {
		return exitErr.ErrCode
	}
	return ErrCodeGeneric
}

// operationError maps a table operation error to an exit error. Rejected
// arguments are command errors; everything else is an operation failure.
func operationError(message string, err error) *ExitError {
	exitErr := WrapExitError(ExitFailure, message, err)
	var e *engine.Error
	if !errors.As(err, &e) {
		exitErr.ErrCode = ErrCodeGeneric
		return exitErr
	}
	switch e.Code {
	case engine.ErrCodeNotFound:
		exitErr.ErrCode = ErrCodeNotFound
	case engine.ErrCodeInvalidArgument:
		exitErr.Code = ExitCommandError
		exitErr.ErrCode = ErrCodeInvalidArg
	default:
		exitErr.ErrCode = ErrCodeEngine
	}
	return exitErr
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Records outputs resources. Text output is one canonical JSON object per
// line; JSON output wraps the list in a CLIResponse.
func (f *OutputFormatter) Records(rows []ir.Resource) error {
	if f.Format == "json" {
		if rows == nil {
			rows = []ir.Resource{}
		}
		return f.Success(rows)
	}

	for _, r := range rows {
		line, err := ir.MarshalCanonical(r)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		fmt.Fprintf(f.Writer, "%s\n", line)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err as an error envelope in JSON mode, so scripted callers
// always get one, then returns err for the exit code. Text mode leaves the
// message to main.
func (f *OutputFormatter) Fail(err error) error {
	if f.Format == "json" {
		f.Error(GetErrCode(err), err.Error(), nil)
	}
	return err
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/MarkusFox/coco-object-detection/internal/dataset"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution (including output-collision no-ops)
	ExitFailure      = 1 // Operation failed mid-run (partial output may remain)
	ExitCommandError = 2 // Usage or precondition error (bad paths, bad fractions, malformed JSON)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands. Diagnostic
// output goes through slog on stderr, not through the formatter.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // run id for log correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // dataset error code, e.g. "BAD_SPLIT"
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any, runID string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: runID,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message, runID string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "error",
			Error:   &CLIError{Code: code, Message: message},
			TraceID: runID,
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// handleOpError maps dataset errors onto the CLI's exit-code taxonomy.
//
// An output-directory collision is deliberately not a failure: the operation
// did nothing, the existing data is untouched, and the command exits clean
// after reporting it. Precondition errors exit 2, everything else exits 1.
func handleOpError(f *OutputFormatter, runID string, err error) error {
	var pe *dataset.PrepError
	if errors.As(err, &pe) {
		if dataset.IsOutputExists(err) {
			if f.Format == "json" {
				return f.Success(map[string]any{
					"skipped": true,
					"reason":  pe.Message,
					"path":    pe.Path,
				}, runID)
			}
			fmt.Fprintf(f.Writer, "Output folder already exists, please rename or choose a different name! (%s)\n", pe.Path)
			return nil
		}
		_ = f.Error(string(pe.Code), err.Error(), runID)
		if dataset.IsPrecondition(err) {
			return NewExitError(ExitCommandError, err.Error())
		}
		return NewExitError(ExitFailure, err.Error())
	}

	_ = f.Error("INTERNAL", err.Error(), runID)
	return NewExitError(ExitFailure, err.Error())
}

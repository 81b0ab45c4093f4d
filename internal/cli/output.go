package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/draft/internal/config"
	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/value"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Transaction or scenario failure
	ExitCommandError = 2 // Command error (unreadable input, bad config, etc.)
)

// Error codes for failures that do not come from the engine. Engine
// failures are reported with their own draft.ErrorCode.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // Input file could not be read
	ErrCodeParseFailed = "E003" // Input file is not valid JSON or YAML
	ErrCodeConfig      = "E004" // Config file rejected
	ErrCodeWriteFailed = "E005" // Output could not be written
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
	Code    string `json:"code"`              // "E001" or an engine code such as "MODIFIED_AND_REPLACED"
	Class   string `json:"class,omitempty"`   // engine error class, if any
	Message string `json:"message"`           // human-readable message
	Path    string `json:"path,omitempty"`    // JSON pointer of the failing location
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

	// Human-readable text output
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Document outputs a state document. Text output is the document's JSON
// on a line of its own.
func (f *OutputFormatter) Document(v value.Value) error {
	raw, err := documentJSON(v)
	if err != nil {
		return err
	}
	if f.Format == "json" {
		return f.Success(raw)
	}
	_, err = fmt.Fprintln(f.Writer, string(raw))
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	return f.report(CLIError{Code: code, Message: message, Details: details})
}

// Fail reports err and returns it wrapped in an ExitError. Engine errors
// keep their code, class and path; config errors exit as command errors.
func (f *OutputFormatter) Fail(message string, err error) error {
	ce := CLIError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%s: %v", message, err)}
	exit := ExitFailure

	var de *draft.Error
	var cfgErr *config.Error
	switch {
	case errors.As(err, &de):
		ce.Code = string(de.Code)
		ce.Class = string(de.Class)
		if de.Path != nil {
			ce.Path = de.Path.String()
		}
	case errors.As(err, &cfgErr):
		ce.Code = ErrCodeConfig
		exit = ExitCommandError
	}

	if reportErr := f.report(ce); reportErr != nil {
		return WrapExitError(ExitCommandError, "write error report", reportErr)
	}
	return WrapExitError(exit, message, err)
}

func (f *OutputFormatter) report(ce CLIError) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &ce,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", ce.Code, ce.Message)
	if ce.Path != "" {
		fmt.Fprintf(f.Writer, "Path: %s\n", ce.Path)
	}
	if f.Verbose && ce.Details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", ce.Details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
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

// documentJSON encodes a state for output. A removed state is null.
func documentJSON(v value.Value) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("null"), nil
	}
	b, err := value.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

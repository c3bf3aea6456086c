package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig            = "CONFIG"
	ErrMissingPrivateKey = "MISSING_PRIVATE_KEY"
	ErrMissingPublicKey  = "MISSING_PUBLIC_KEY"
	ErrInvalidPublicKey  = "INVALID_PUBLIC_KEY"
	ErrStepFailed        = "STEP_FAILED"
	ErrLock              = "LOCK"
	ErrUsage             = "USAGE"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", strings.TrimSpace(e.Cause.Error())))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Summary renders err on a single line: the message, then the cause if any.
// Non-structured errors are returned as-is.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var mkErr *Error
	if !errors.As(err, &mkErr) {
		return strings.TrimSpace(err.Error())
	}
	if mkErr.Cause == nil {
		return mkErr.Message
	}
	cause := strings.Join(strings.Fields(mkErr.Cause.Error()), " ")
	return fmt.Sprintf("%s: %s", mkErr.Message, cause)
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var mkErr *Error
	if errors.As(err, &mkErr) {
		return mkErr.Code == code
	}
	return false
}

// ExitError carries a process exit code without an extra message.
// Used when the failure has already been reported to the user.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the code from an ExitError in err's chain.
func GetExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// ExitCode maps an error to a process exit status: 0 for nil, the carried
// code for an ExitError, and 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := GetExitCode(err); ok {
		return code
	}
	return 1
}

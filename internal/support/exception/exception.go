// Package exception provides the custom error type and classification helpers
// used by auctiond's background tasks. Errors are tagged with the module they
// originated in and with a retryable flag that the scheduler and batch drivers
// consult when deciding whether a failure should abandon the current cycle or
// merely be recorded against a single item.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrConnectionTimeout is the sentinel wrapped by the connection governor when
// acquiring a lease exceeds its configured bound. Callers abandon the current
// task cycle and retry on the next scheduled tick.
var ErrConnectionTimeout = errors.New("connection acquisition timed out")

// ErrNotificationSendFailure is the sentinel wrapped when the external
// notification sender reports failure for a single application.
var ErrNotificationSendFailure = errors.New("notification send failed")

// TaskError is the error type produced inside background task execution.
// It records the module where the failure occurred, a message, the wrapped
// original error, and whether a retry on the next cycle is expected to help.
type TaskError struct {
	// Module indicates the component where the error occurred (e.g., "governor", "engine", "notification").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// isRetryable indicates whether retrying on a later cycle is expected to succeed.
	isRetryable bool
	// StackTrace is the stack captured at construction time (for debugging).
	StackTrace string
}

// NewTaskError creates a new TaskError instance.
// module: The component where the error occurred.
// message: The error message.
// originalErr: The original error to wrap (may be nil).
// isRetryable: Whether this error is expected to clear on a later cycle.
func NewTaskError(module, message string, originalErr error, isRetryable bool) *TaskError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &TaskError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		StackTrace:  string(buf[:n]),
	}
}

// NewTaskErrorf creates a retryable-false TaskError with a formatted message.
func NewTaskErrorf(module, format string, a ...interface{}) *TaskError {
	return NewTaskError(module, fmt.Sprintf(format, a...), nil, false)
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap / errors.Is.
func (e *TaskError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether this error is expected to clear on a later cycle.
func (e *TaskError) IsRetryable() bool {
	return e.isRetryable
}

// IsTaskError determines if the given error is of type TaskError.
func IsTaskError(err error) bool {
	if err == nil {
		return false
	}
	var te *TaskError
	return errors.As(err, &te)
}

// IsTemporary determines if an error is temporary (network error, contention,
// transient DB issue). The retryable flag of a TaskError takes precedence.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te.IsRetryable()
	}
	if errors.Is(err, ErrConnectionTimeout) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "database is locked")
}

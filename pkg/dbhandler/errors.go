package dbhandler

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	rows, outcome := h.FetchWithOutcome(ctx, q)
//	if errors.Is(outcome.Err, dbhandler.ErrConnectionFailed) {
//	    // the database could not be reached before the query ran
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the driver could not establish a session.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrQueryExecution indicates a single execute/fetch attempt failed.
	ErrQueryExecution = errors.New("query execution failed")

	// ErrExhausted indicates every allowed attempt failed.
	ErrExhausted = errors.New("retry attempts exhausted")

	// ErrNotConnected indicates an operation was attempted with no live connection.
	ErrNotConnected = errors.New("not connected")

	// ErrInvalidArgument indicates a caller supplied an unusable argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOperationPanicked indicates a wrapped operation panicked and was recovered.
	ErrOperationPanicked = errors.New("operation panicked")

	// ErrUnsupportedDriver indicates the requested driver name is unknown.
	ErrUnsupportedDriver = errors.New("unsupported driver")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrProfileNotFound indicates a credentials document has no entry with the requested name.
	ErrProfileNotFound = errors.New("profile not found")
)

// usageErrorPatterns are the message prefixes cobra produces for bad command lines.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedDriver),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrProfileNotFound):
		return ExitConfigError
	case errors.Is(err, ErrInvalidArgument):
		return ExitUsageError
	case errors.Is(err, ErrConnectionFailed), errors.Is(err, ErrNotConnected):
		return ExitConnectionError
	case errors.Is(err, ErrExhausted), errors.Is(err, ErrQueryExecution):
		return ExitQueryFailed
	}

	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

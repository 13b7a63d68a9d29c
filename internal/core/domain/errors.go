// Package domain defines the core domain models for graphdev.
package domain

import (
	"errors"
	"fmt"
)

// Suggestion is an actionable hint shown to the user alongside an error.
type Suggestion string

const (
	// SuggestionNone means the error needs no remediation hint.
	SuggestionNone Suggestion = ""

	// SuggestionStartLeader asks the user to start or confirm a leader session.
	SuggestionStartLeader Suggestion = "Start a `graphdev dev` session first, or confirm that the main `graphdev dev` process is still running and listening on the same socket."

	// SuggestionSubmitIssue is the generic fallback for unclassified failures.
	SuggestionSubmitIssue Suggestion = "This error was unexpected. Please report it at https://github.com/yndnr/graphdev-go/issues with the command you ran and the log output."

	// SuggestionAlignVersions asks the user to run one graphdev build everywhere.
	SuggestionAlignVersions Suggestion = "You should use the same version of `graphdev` to run `graphdev dev` sessions."

	// SuggestionCheckGraphRef asks the user to verify the graph reference.
	SuggestionCheckGraphRef Suggestion = "Check that the graph ref is spelled correctly and that your credentials can read it."
)

// DomainError represents a domain error with a structured error code.
type DomainError struct {
	Code       string     // Error code (e.g., "GD-IPC-5030")
	Message    string     // Human-readable message
	Details    string     // Optional additional details
	Suggestion Suggestion // Optional remediation hint
	Cause      error      // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// WithSuggestion returns a copy of the error carrying the given suggestion.
func (e *DomainError) WithSuggestion(s Suggestion) *DomainError {
	c := *e
	c.Suggestion = s
	return &c
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// SuggestionFor returns the first suggestion found in the error chain.
// Errors without one get SuggestionSubmitIssue.
func SuggestionFor(err error) Suggestion {
	if err == nil {
		return SuggestionNone
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if de, ok := e.(*DomainError); ok && de.Suggestion != SuggestionNone {
			return de.Suggestion
		}
	}
	return SuggestionSubmitIssue
}

// ============================================================================
// Session IPC Errors (IPC)
// ============================================================================

var (
	// ErrConnectionUnavailable indicates no leader is listening on the socket.
	ErrConnectionUnavailable = NewDomainError("GD-IPC-5030", "there is not a main `graphdev dev` process to report updates to").WithSuggestion(SuggestionStartLeader)

	// ErrNoResponse indicates a request was sent but no reply was read back.
	ErrNoResponse = NewDomainError("GD-IPC-5040", "this process did not receive a message from the main process")

	// ErrChannelClosed indicates the in-process leader dispatcher has exited.
	ErrChannelClosed = NewDomainError("GD-IPC-5000", "the main process failed to update itself")

	// ErrSessionActive indicates another leader already owns the socket.
	ErrSessionActive = NewDomainError("GD-IPC-4090", "a main `graphdev dev` process is already listening on this socket")

	// ErrFraming indicates malformed bytes on the wire.
	ErrFraming = NewDomainError("GD-IPC-4000", "malformed session message")
)

// ============================================================================
// Version Errors (VER)
// ============================================================================

var (
	// ErrVersionMismatch indicates the leader runs a different build.
	ErrVersionMismatch = NewDomainError("GD-VER-4090", "graphdev version mismatch").WithSuggestion(SuggestionAlignVersions)
)

// ============================================================================
// Registry Errors (REG)
// ============================================================================

var (
	// ErrGraphNotFound indicates the remote registry has no such graph.
	ErrGraphNotFound = NewDomainError("GD-REG-4040", "graph not found").WithSuggestion(SuggestionCheckGraphRef)
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("GD-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("GD-ARG-1002", "missing required argument")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = NewDomainError("GD-SYS-5000", "internal error")
)

// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the crashpipe library.

package api

import "fmt"

// Sentinel errors used across the library.
var (
	// ErrInvalidInput marks malformed capture data: both the message and
	// the stack trace were empty.
	ErrInvalidInput = fmt.Errorf("invalid capture input")

	// ErrSeverityFiltered marks a log line below error severity. Such
	// lines are never normalized or captured.
	ErrSeverityFiltered = fmt.Errorf("severity below capture threshold")

	// ErrPipelineStopped is returned when a capture entry point is used
	// after Stop.
	ErrPipelineStopped = fmt.Errorf("pipeline is stopped")

	// ErrUnknownReport is returned for a confirmation decision on a
	// report id the gate is not holding.
	ErrUnknownReport = fmt.Errorf("no report pending under this id")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	// ErrCodeInvalidInput: malformed capture data.
	ErrCodeInvalidInput
	// ErrCodeCallbackFailure: a user-supplied callback panicked or
	// returned an error. Always isolated, never propagated into the
	// capture pipeline.
	ErrCodeCallbackFailure
	// ErrCodeDeliveryFailure: the external sink rejected a submission.
	// Surfaced through the failure notification, not retried here.
	ErrCodeDeliveryFailure
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

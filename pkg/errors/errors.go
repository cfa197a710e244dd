// Package errors provides structured error types for flowlayout.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - Non-fatal warnings that travel alongside a successful result
//
// # Error Codes
//
// Fatal codes abort a layout before the document is touched:
//   - INPUT_NOT_FOUND: the input path does not resolve to a readable file
//   - MALFORMED_SCHEMA: the document is not JSON or lacks scheme.nodes
//   - NO_START_NODE: the schema has no start node, or more than one
//
// DANGLING_EDGE_REFERENCE and DUPLICATE_NODE_ID are reported as [Warning]
// values and never abort a layout.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoStartNode, "no start node in %s", path)
//	if errors.Is(err, errors.ErrCodeNoStartNode) {
//	    // Handle missing start node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInputNotFound, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInputNotFound   Code = "INPUT_NOT_FOUND"
	ErrCodeMalformedSchema Code = "MALFORMED_SCHEMA"
	ErrCodeNoStartNode     Code = "NO_START_NODE"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeTooLarge        Code = "TOO_LARGE"

	// Warning codes
	ErrCodeDanglingEdge    Code = "DANGLING_EDGE_REFERENCE"
	ErrCodeDuplicateNodeID Code = "DUPLICATE_NODE_ID"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether err carries one of the codes that abort a layout
// before any output is produced.
func Fatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInputNotFound, ErrCodeMalformedSchema, ErrCodeNoStartNode:
		return true
	}
	return false
}

// Warning is a non-fatal condition observed while laying out a schema.
// Warnings never change the layout outcome.
type Warning struct {
	Code    Code   `json:"code" bson:"code"`
	NodeID  string `json:"node_id,omitempty" bson:"node_id,omitempty"`
	Target  string `json:"target,omitempty" bson:"target,omitempty"`
	Message string `json:"message" bson:"message"`
}

// String formats the warning as "CODE: message".
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Package errors provides structured error types for depot.
//
// This package defines error codes and types that enable:
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Collect-all reporting of independent problems via [List]
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Artifacts or versions that could not be located
//   - CYCLIC_*: Graph structure violations
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeArtifactNotFound, "unable to locate dependency [%s]", ref)
//	if errors.Is(err, errors.ErrCodeArtifactNotFound) {
//	    // Handle missing artifact
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePermanentIO, origErr, "fetch %s", item)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidIdentity Code = "INVALID_IDENTITY"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidMetadata Code = "INVALID_METADATA"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resolution errors
	ErrCodeArtifactNotFound     Code = "ARTIFACT_NOT_FOUND"
	ErrCodeVersionNotFound      Code = "VERSION_NOT_FOUND"
	ErrCodeIncompatibleVersions Code = "INCOMPATIBLE_VERSIONS"

	// Graph errors
	ErrCodeCyclicGraph      Code = "CYCLIC_GRAPH"
	ErrCodeCyclicDependency Code = "CYCLIC_DEPENDENCY"

	// Storage errors
	ErrCodePermanentIO Code = "PERMANENT_IO"
	ErrCodePublish     Code = "PUBLISH_FAILED"
	ErrCodeDelete      Code = "DELETE_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether err carries the given code. The chain is searched
// for the outermost *Error or *ListError.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error or *ListError in the
// chain of err, or "" when there is none.
func GetCode(err error) Code {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case *ListError:
			return e.Code
		}
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
	var le *ListError
	if errors.As(err, &le) {
		return le.report()
	}
	return err.Error()
}

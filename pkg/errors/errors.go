// Package errors provides structured error types for cranestack.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server, and the library
//   - Machine-readable error codes for programmatic handling
//   - A per-error input position (line or instruction) for user reports
//   - Error wrapping with context preservation
//
// # Error Kinds
//
// Every code belongs to exactly one [Kind]:
//   - [KindParse]: the input text is malformed (diagram row, instruction
//     line, numeric field)
//   - [KindInvariant]: the input is well-formed but violates a contract of
//     the crane engine (underflow, unknown column, double snapshot)
//   - [KindInput]: the input could not be obtained (missing file, bad option)
//   - [KindInternal]: everything else
//
// None of these are retryable.
//
// # Usage
//
//	err := errors.NewAt(errors.ErrCodeInvalidInstruction, 12, "unexpected text %q", line)
//	if errors.IsParse(err) {
//	    // Report the offending line
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Parse errors
	ErrCodeInvalidDiagram     Code = "INVALID_DIAGRAM"
	ErrCodeInvalidInstruction Code = "INVALID_INSTRUCTION"
	ErrCodeInvalidNumber      Code = "INVALID_NUMBER"

	// Engine invariant violations
	ErrCodeStackUnderflow Code = "STACK_UNDERFLOW"
	ErrCodeUnknownColumn  Code = "UNKNOWN_COLUMN"
	ErrCodeSnapshotHeld   Code = "SNAPSHOT_HELD"

	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Kind groups error codes into the categories callers branch on.
type Kind int

const (
	KindInternal Kind = iota
	KindParse
	KindInvariant
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindInvariant:
		return "invariant"
	case KindInput:
		return "input"
	default:
		return "internal"
	}
}

var codeKinds = map[Code]Kind{
	ErrCodeInvalidDiagram:     KindParse,
	ErrCodeInvalidInstruction: KindParse,
	ErrCodeInvalidNumber:      KindParse,
	ErrCodeStackUnderflow:     KindInvariant,
	ErrCodeUnknownColumn:      KindInvariant,
	ErrCodeSnapshotHeld:       KindInvariant,
	ErrCodeInvalidInput:       KindInput,
	ErrCodeFileNotFound:       KindInput,
}

// Kind returns the category of the code. Unknown codes are internal.
func (c Code) Kind() Kind {
	return codeKinds[c]
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Line    int    // 1-based input line, 0 if not tied to a line
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns the category of the error's code.
func (e *Error) Kind() Kind {
	return e.Code.Kind()
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewAt creates a new Error tied to a 1-based input line.
func NewAt(code Code, line int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
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

// IsParse reports whether err is a malformed-input error.
func IsParse(err error) bool {
	return GetKind(err) == KindParse
}

// IsInvariant reports whether err is an engine contract violation.
func IsInvariant(err error) bool {
	return GetKind(err) == KindInvariant
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

// GetKind extracts the error kind. Errors that are not *Error are internal.
func GetKind(err error) Kind {
	return GetCode(err).Kind()
}

// GetLine extracts the input line from an error, or 0.
func GetLine(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Line > 0 {
			return fmt.Sprintf("line %d: %s", e.Line, e.Message)
		}
		return e.Message
	}
	return err.Error()
}

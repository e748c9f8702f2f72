package engine

import (
	"errors"
	"fmt"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// RuntimeError represents an error detected while loading or operating on a
// machine.
//
// Runtime errors include:
//   - Unsupported kind: the document is not one of the five kinds
//   - Unsupported operation: e.g. Minimize on a Turing machine
//   - Decode failure: the JSON is not a document
//   - Precondition: the underlying engine rejected the operation
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Machine names the affected machine, when known.
	Machine string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnsupportedKind indicates a document of no known kind.
	ErrCodeUnsupportedKind RuntimeErrorCode = "UNSUPPORTED_KIND"

	// ErrCodeUnsupportedOperation indicates the kind has no such operation.
	ErrCodeUnsupportedOperation RuntimeErrorCode = "UNSUPPORTED_OPERATION"

	// ErrCodeDecodeFailed indicates the input is not a valid document.
	ErrCodeDecodeFailed RuntimeErrorCode = "DECODE_FAILED"

	// ErrCodePrecondition indicates the engine rejected the operation.
	ErrCodePrecondition RuntimeErrorCode = "PRECONDITION_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Machine != "" {
		return fmt.Sprintf("%s: %s (machine=%s)", e.Code, e.Message, e.Machine)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnsupportedError returns true if the error is an unsupported kind or
// unsupported operation error. Uses errors.As to handle wrapped errors.
func IsUnsupportedError(err error) bool {
	return hasCode(err, ErrCodeUnsupportedKind) || hasCode(err, ErrCodeUnsupportedOperation)
}

// IsDecodeError returns true if the error is a decode failure.
func IsDecodeError(err error) bool {
	return hasCode(err, ErrCodeDecodeFailed)
}

// NewUnsupportedKindError creates a RuntimeError for an unknown kind.
func NewUnsupportedKindError(machine string, kind ir.Kind) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnsupportedKind,
		Message: fmt.Sprintf("unsupported machine kind %q", kind),
		Machine: machine,
		Details: map[string]string{"kind": string(kind)},
	}
}

// NewUnsupportedOperationError creates a RuntimeError for an operation the
// kind does not have.
func NewUnsupportedOperationError(machine, op string, kind ir.Kind) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnsupportedOperation,
		Message: fmt.Sprintf("%s is not defined for %s machines", op, kind),
		Machine: machine,
		Details: map[string]string{
			"operation": op,
			"kind":      string(kind),
		},
	}
}

// NewDecodeError creates a RuntimeError wrapping a decode failure.
func NewDecodeError(machine string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeDecodeFailed,
		Message: err.Error(),
		Machine: machine,
		Err:     err,
	}
}

// NewPreconditionError creates a RuntimeError wrapping an engine
// precondition failure. errors.Is still matches the ir sentinel.
func NewPreconditionError(machine string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodePrecondition,
		Message: err.Error(),
		Machine: machine,
		Err:     err,
	}
}

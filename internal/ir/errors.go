package ir

import (
	"errors"
	"fmt"
)

// Precondition failures shared by every engine. Engines wrap them in a
// PreconditionError; callers match with errors.Is.
var (
	ErrUnknownState   = errors.New("state does not exist")
	ErrStateExists    = errors.New("state name already in use")
	ErrEmptyName      = errors.New("state name must not be empty")
	ErrEmptySymbol    = errors.New("symbol must not be empty")
	ErrEpsilonInput   = errors.New("epsilon cannot be consumed as an input symbol")
	ErrNoStartState   = errors.New("no start state")
	ErrNotDFA         = errors.New("automaton is not a DFA")
	ErrInvalidMove    = errors.New("move must be L or R")
	ErrReservedSymbol = errors.New("symbol is reserved")
	ErrKeySeparator   = errors.New("must not contain the key separator \",\"")
)

// PreconditionError reports an operation rejected before it changed anything.
type PreconditionError struct {
	// Op is the rejected operation, e.g. "add_transition".
	Op string

	// Subject is the label or symbol that violated the precondition.
	Subject string

	// Err is one of the sentinel errors above.
	Err error
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Precondition creates a PreconditionError.
func Precondition(op, subject string, err error) *PreconditionError {
	return &PreconditionError{Op: op, Subject: subject, Err: err}
}

// IsPrecondition returns true if err is, or wraps, a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

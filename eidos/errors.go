package eidos

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrTypeConversion       = errors.New("type conversion error")
	ErrIndex                = errors.New("index out of range")
	ErrImmutableValue       = errors.New("value is not modifiable")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrUnrecognizedProperty = errors.New("unrecognized property")
	ErrUnrecognizedMethod   = errors.New("unrecognized method")
	ErrReadOnlyProperty     = errors.New("read-only property")
	ErrRange                = errors.New("value out of range")
	ErrArityMismatch        = errors.New("arity mismatch")
	ErrUndefinedOperation   = errors.New("undefined operation")
)

// Error is a recoverable script-level failure. The simulation that observes
// one is expected to stop advancing until it is reset.
type Error struct {
	Kind error  // one of the Err* sentinels
	Op   string // operation that failed, e.g. "SetValueAtIndex"
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return fmt.Sprintf("ERROR (%s): %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NewError builds an *Error for callers outside this package (simulation
// classes use it to report their own argument and range failures).
func NewError(kind error, op, format string, args ...any) error {
	return newError(kind, op, format, args...)
}

// InternalError is the panic payload for engine invariant violations.
// It indicates a bug in the engine rather than in user input.
type InternalError struct {
	Op  string
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("ERROR (%s): (internal error) %s", e.Op, e.Msg)
}

// Internalf panics with an *InternalError.
func Internalf(op, format string, args ...any) {
	panic(&InternalError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

package middlewares

import (
	"errors"
	"fmt"
)

// ErrPanic is matched by every PanicError via errors.Is.
var ErrPanic = errors.New("middlewares: handler panicked")

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error, so errors.Is sees
// through it, and ErrPanic otherwise.
func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrPanic, err}
	}
	return []error{ErrPanic}
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	return errors.Is(err, ErrPanic)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

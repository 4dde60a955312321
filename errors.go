package beacon

import "errors"

// ErrHandlerPanic matches PanicError values via errors.Is.
var ErrHandlerPanic = errors.New("listener handler panicked")

// HandlerError wraps an error returned by a listener handler.
type HandlerError struct {
	// ListenerID identifies the listener whose handler failed.
	ListenerID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler error for listener " + e.ListenerID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from a listener handler.
type PanicError struct {
	// ListenerID identifies the listener whose handler panicked.
	ListenerID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "handler panic for listener " + e.ListenerID
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

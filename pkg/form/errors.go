package form

import "errors"

var (
	// ErrClosed is returned by mutating calls after Close.
	ErrClosed = errors.New("form: orchestrator closed")
	// ErrUnknownField reports a field name outside the form.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalidValue reports a value of the wrong type for its field.
	ErrInvalidValue = errors.New("form: invalid value")
)

package atomicx

import "errors"

var (
	// ErrDivisionByZero is returned by Div and DivAssign when the divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidState is returned when unmarshaling malformed cell state.
	ErrInvalidState = errors.New("invalid atomic cell state")
)

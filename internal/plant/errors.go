package plant

import (
	"errors"
	"fmt"
)

// Domain errors for plant construction and simulation.
var (
	// ErrInvalidParameter indicates malformed or out-of-domain model parameters.
	ErrInvalidParameter = errors.New("plant: invalid parameter")

	// ErrIllConditioned indicates discretization could not produce a finite,
	// numerically stable quadruple.
	ErrIllConditioned = errors.New("plant: ill-conditioned model")

	// ErrNotInitialized indicates an operation that needs a Ready simulator
	// was called before Initialize.
	ErrNotInitialized = errors.New("plant: simulator not initialized")
)

// Error wraps a domain error with the failing operation and detail.
type Error struct {
	Op      string
	Detail  string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Wrapped.Error())
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Wrapped.Error(), e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

func invalidParam(op, format string, args ...any) error {
	return &Error{Op: op, Detail: fmt.Sprintf(format, args...), Wrapped: ErrInvalidParameter}
}

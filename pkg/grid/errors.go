package grid

import (
	"errors"
	"fmt"

	"morphoseg/pkg/connectivity"
)

// ErrInvalidInput is the root of every precondition failure reported by the
// grid engines. Specific causes wrap it, so errors.Is(err, ErrInvalidInput)
// holds for all of them.
var ErrInvalidInput = errors.New("grid: invalid input")

var (
	// ErrInvalidShape indicates a non-positive dimension or a data slice
	// whose length does not match the shape.
	ErrInvalidShape = fmt.Errorf("%w: invalid shape", ErrInvalidInput)
	// ErrShapeMismatch indicates two grids that must be congruent are not.
	ErrShapeMismatch = fmt.Errorf("%w: grid shapes differ", ErrInvalidInput)
	// ErrUnknownConnectivity indicates an unsupported connectivity value.
	ErrUnknownConnectivity = fmt.Errorf("%w: unknown connectivity", ErrInvalidInput)
	// ErrNaN indicates a floating-point grid holding NaN values.
	ErrNaN = fmt.Errorf("%w: grid contains NaN", ErrInvalidInput)
)

// ErrOutOfRange indicates a value that cannot be represented by the target
// element type, e.g. more components than an int32 label can hold.
var ErrOutOfRange = errors.New("grid: value out of range")

// SameShape returns ErrShapeMismatch unless a and b are equal.
func SameShape(a, b Shape) error {
	if a != b {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a, b)
	}
	return nil
}

// CheckConnectivity returns ErrUnknownConnectivity if c is not supported.
func CheckConnectivity(c connectivity.Connectivity) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownConnectivity, err)
	}
	return nil
}

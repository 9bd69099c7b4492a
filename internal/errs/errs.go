// Package errs defines the error taxonomy shared across the reconstruction
// core: InvalidArgument and FileFormat fail the call, Io wraps the
// underlying OS error unchanged, Numerical and OutOfSupport mark
// recoverable conditions that callers may choose to report in-band instead
// of treating as failures.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// InvalidArgument marks malformed caller input (nil mesh, mismatched
	// buffer lengths, bad axis, non-positive focal length, ...).
	InvalidArgument Kind = iota
	// FileFormat marks an unrecognised or truncated on-disk format.
	FileFormat
	// Io wraps an underlying open/read/write failure.
	Io
	// Numerical marks a degenerate linear-algebra or optimisation step
	// (singular matrix, CG divergence, LM stagnation).
	Numerical
	// OutOfSupport marks a value that is absent by convention rather than
	// by error (unset voxel, ray-miss sentinel).
	OutOfSupport
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case FileFormat:
		return "file format"
	case Io:
		return "io"
	case Numerical:
		return "numerical"
	case OutOfSupport:
		return "out of support"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by the core. Kind is
// inspectable via the package's Is function, which finds an *Error in the
// chain with errors.As.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Invalid is shorthand for New(InvalidArgument, ...).
func Invalid(op, msg string) *Error {
	return New(InvalidArgument, op, errors.New(msg))
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

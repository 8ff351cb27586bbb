package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrParse is returned when persisted pose data is malformed or incomplete.
	ErrParse = errors.New("malformed pose data")

	// ErrIO is matched by every *IOError.
	ErrIO = errors.New("i/o failure")

	// ErrPrecondition is returned when an operation is invoked before a valid camera, image or
	// mesh state exists.
	ErrPrecondition = errors.New("precondition violated")
)

// NewParseError is used when a required key is absent or holds a value of the wrong shape.
func NewParseError(key string, cause error) error {
	if cause == nil {
		return errors.Wrapf(ErrParse, "key %q", key)
	}
	return errors.Wrapf(ErrParse, "key %q: %v", key, cause)
}

// NewMissingKeyError is used when a required key is absent.
func NewMissingKeyError(key string) error {
	return errors.Wrapf(ErrParse, "missing required key %q", key)
}

// NewPreconditionError is used when the caller has not established the state an operation needs.
func NewPreconditionError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrPrecondition, format, args...)
}

// IOError describes a failed file operation. It matches ErrIO as well as the wrapped error.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// NewIOError wraps err, which must be non-nil, as an *IOError.
func NewIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

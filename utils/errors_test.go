package utils

import (
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestParseError(t *testing.T) {
	err := NewParseError("metrics[0].truncated", errors.New("expected bool"))
	test.That(t, errors.Is(err, ErrParse), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"metrics[0].truncated"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected bool")

	err = NewMissingKeyError("image_name")
	test.That(t, errors.Is(err, ErrParse), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrIO), test.ShouldBeFalse)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing required key")
}

func TestIOError(t *testing.T) {
	err := NewIOError("open", "/nope/metrics.txt", fs.ErrNotExist)
	test.That(t, errors.Is(err, ErrIO), test.ShouldBeTrue)
	test.That(t, errors.Is(err, fs.ErrNotExist), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrParse), test.ShouldBeFalse)
	test.That(t, err.Error(), test.ShouldEqual, `cannot open "/nope/metrics.txt": file does not exist`)

	var ioErr *IOError
	test.That(t, errors.As(errors.Wrap(err, "writing metrics"), &ioErr), test.ShouldBeTrue)
	test.That(t, ioErr.Op, test.ShouldEqual, "open")
}

func TestPreconditionError(t *testing.T) {
	err := NewPreconditionError("no image loaded")
	test.That(t, errors.Is(err, ErrPrecondition), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldEqual, "no image loaded: precondition violated")
}

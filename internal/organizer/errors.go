package organizer

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind string

const (
	KindSourceRead      Kind = "source_read"
	KindWrite           Kind = "write"
	KindInvalidArgument Kind = "invalid_argument"
	KindCanceled        Kind = "canceled"
)

var (
	ErrNoSources = errors.New("no source documents given")
	ErrNotPDF    = errors.New("not a PDF document")
)

// Error is returned by every Organizer operation.
type Error struct {
	Op   string // merge, split, select, extract-images, page-count
	Kind Kind
	Path string // file the failure relates to, if any
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of an organizer error, or "" if err is not one.
func KindOf(err error) Kind {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return ""
}

func newError(op string, kind Kind, path string, err error) *Error {
	return &Error{Op: op, Kind: kind, Path: path, Err: err}
}

// guard runs fn and converts a panic from the PDF library into a source read error.
func guard(op, path string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(op, KindSourceRead, path, fmt.Errorf("pdf library panic: %v", r))
		}
	}()
	return fn()
}

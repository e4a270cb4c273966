package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the document file does not exist
	ErrNotFound = errors.New("document not found")

	// ErrInvalidFormat is returned when no backend can parse the file
	ErrInvalidFormat = errors.New("invalid PDF format")

	// ErrDocumentClosed is returned by calls on a closed document
	ErrDocumentClosed = errors.New("document is closed")

	// ErrOutOfRange is matched by every *OutOfRangeError
	ErrOutOfRange = errors.New("page index out of range")

	// ErrSearchCancelled is returned when a search is superseded or cancelled
	ErrSearchCancelled = errors.New("search cancelled")
)

// DocumentError reports a failure to open or read a document.
// It is fatal to that document but never to the process.
type DocumentError struct {
	Path string
	Kind error // ErrNotFound or ErrInvalidFormat
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Is matches the error kind
func (e *DocumentError) Is(target error) bool {
	return target == e.Kind
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// RenderFailure reports that a single page could not be rasterized.
// Callers show the page as failed and keep going.
type RenderFailure struct {
	Page int // 0-based
	Err  error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page, e.Err)
}

func (e *RenderFailure) Unwrap() error {
	return e.Err
}

// OutOfRangeError reports a page index outside [0, Count)
type OutOfRangeError struct {
	Index int
	Count int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("page index %d out of range [0, %d)", e.Index, e.Count)
}

// Is matches ErrOutOfRange
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// CheckIndex returns an *OutOfRangeError when index is not a valid page
func CheckIndex(index, count int) error {
	if index < 0 || index >= count {
		return &OutOfRangeError{Index: index, Count: count}
	}
	return nil
}

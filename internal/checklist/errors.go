package checklist

import (
	"errors"
	"fmt"
)

// Sentinel errors for checklist state operations
var (
	ErrLengthMismatch  = errors.New("snapshot length does not match item count")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// LengthMismatchError records a snapshot that could not be applied because
// its length disagrees with the loaded item list.
type LengthMismatchError struct {
	Got  int
	Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("snapshot has %d entries, list has %d items: %v", e.Got, e.Want, ErrLengthMismatch)
}

func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

// IndexError records an operation that referenced an index outside [1, N].
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s %d (valid 1..%d): %v", e.Op, e.Index, e.Len, ErrIndexOutOfRange)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// NewIndexError creates a new IndexError
func NewIndexError(op string, index, n int) *IndexError {
	return &IndexError{
		Op:    op,
		Index: index,
		Len:   n,
	}
}

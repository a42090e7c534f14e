package source

import (
	"errors"
	"fmt"
)

// ErrMalformedSource is returned when an item or attribute table cannot be
// parsed into the expected shape.
var ErrMalformedSource = errors.New("malformed source")

// SourceError records where a source table failed to parse.
type SourceError struct {
	Err    error
	Path   string
	Reason string
	Line   int
}

func (e *SourceError) Error() string {
	where := e.Path
	if where == "" {
		where = "input"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

// Unwrap exposes both ErrMalformedSource and the underlying cause.
func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedSource}
	}
	return []error{ErrMalformedSource, e.Err}
}

func malformed(line int, reason string, err error) *SourceError {
	return &SourceError{Line: line, Reason: reason, Err: err}
}

// withPath fills in the path on a *SourceError.
func withPath(err error, path string) error {
	var se *SourceError
	if errors.As(err, &se) && se.Path == "" {
		se.Path = path
	}
	return err
}

// Package source reads item lists and attribute tables from delimited text.
package source

import (
	"encoding/csv"
	"errors"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newCSVReader wraps r so that a UTF-8 or UTF-16 byte order mark selects the
// decoding and anything else must be valid UTF-8.
func newCSVReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(encoding.UTF8Validator))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	return cr
}

// readError converts a csv or decoding failure into a *SourceError.
func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return malformed(pe.Line, "invalid delimited text", pe.Err)
	}
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return malformed(0, "undecodable text encoding", err)
	}
	return malformed(0, "reading source", err)
}

package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Field is one named display attribute.
type Field struct {
	Name  string
	Value string
}

// Record holds the display attributes for one lookup key, in header order.
type Record struct {
	Key    string
	Fields []Field
}

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Map returns the fields keyed by name.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// Lookup maps item text to a Record. A nil *Lookup is valid and finds
// nothing.
type Lookup struct {
	records   map[string]Record
	keyColumn string
	columns   []string

	// Duplicates lists keys that appeared more than once; the first row wins.
	Duplicates []string
}

// Find returns the record whose key equals text verbatim.
func (l *Lookup) Find(text string) (Record, bool) {
	if l == nil {
		return Record{}, false
	}
	r, ok := l.records[text]
	return r, ok
}

// Len returns the number of distinct keys.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// KeyColumn returns the name of the lookup column.
func (l *Lookup) KeyColumn() string {
	if l == nil {
		return ""
	}
	return l.keyColumn
}

// Columns returns the attribute column names in header order, without the
// key column.
func (l *Lookup) Columns() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.columns))
	copy(out, l.columns)
	return out
}

// ReadAttributes parses a table with a header row. keyColumn names the
// lookup column; an empty keyColumn selects the first column.
func ReadAttributes(r io.Reader, keyColumn string) (*Lookup, error) {
	cr := newCSVReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, malformed(0, "missing header row", nil)
	}
	if err != nil {
		return nil, readError(err)
	}

	keyIdx := -1
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if seen[name] {
			return nil, malformed(1, fmt.Sprintf("duplicate column %q", name), nil)
		}
		seen[name] = true
		if name == keyColumn {
			keyIdx = i
		}
	}
	if keyColumn == "" {
		keyIdx = 0
	}
	if keyIdx < 0 {
		return nil, malformed(1, fmt.Sprintf("key column %q not found", keyColumn), nil)
	}
	if len(header) < 2 {
		return nil, malformed(1, "expected a key column and at least one attribute column", nil)
	}

	l := &Lookup{
		records:   make(map[string]Record),
		keyColumn: header[keyIdx],
	}
	for i, name := range header {
		if i != keyIdx {
			l.columns = append(l.columns, name)
		}
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		if len(row) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, malformed(line, fmt.Sprintf("expected %d columns, found %d", len(header), len(row)), nil)
		}

		key := row[keyIdx]
		if _, dup := l.records[key]; dup {
			l.Duplicates = append(l.Duplicates, key)
			continue
		}

		rec := Record{Key: key, Fields: make([]Field, 0, len(l.columns))}
		for i, v := range row {
			if i != keyIdx {
				rec.Fields = append(rec.Fields, Field{Name: header[i], Value: v})
			}
		}
		l.records[key] = rec
	}

	return l, nil
}

// LoadAttributesFile reads the attribute table at path.
func LoadAttributesFile(path, keyColumn string) (*Lookup, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening attribute source: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	l, err := ReadAttributes(f, keyColumn)
	if err != nil {
		return nil, withPath(err, path)
	}

	return l, nil
}

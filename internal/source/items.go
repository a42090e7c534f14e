package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadItems parses a one-column table with no header. Row order is item
// order. Blank lines are skipped; an empty input is an empty list.
func ReadItems(r io.Reader) ([]string, error) {
	cr := newCSVReader(r)

	var items []string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		if len(record) != 1 {
			line, _ := cr.FieldPos(0)
			return nil, malformed(line, fmt.Sprintf("expected 1 column, found %d", len(record)), nil)
		}

		items = append(items, record[0])
	}

	if items == nil {
		items = []string{}
	}

	return items, nil
}

// LoadItemsFile reads the item list at path.
func LoadItemsFile(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening item source: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	items, err := ReadItems(f)
	if err != nil {
		return nil, withPath(err, path)
	}

	return items, nil
}

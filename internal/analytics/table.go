// Package analytics turns raw CSV uploads into a structured financial summary.
//
// The engine is a pure function over the uploaded bytes: parse into a Table,
// resolve column roles, then aggregate. Parsing is the only stage that can
// fail; every later stage degrades to zero values and empty groupings rather
// than rejecting dirty data.
package analytics

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyFile is returned for zero-byte input. A header-only file is not
// empty: it parses into a Table with no rows.
var ErrEmptyFile = errors.New("file is empty")

// ParseError wraps a CSV decoding failure with the declared filename.
// The filename is used only for the message, never for parsing decisions.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse CSV %q: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Table is an in-memory tabular structure parsed from delimited text.
// Column names are trimmed and lower-cased; every row carries the same
// column set as the header.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// ParseTable decodes raw CSV content into a Table.
//
// Duplicate headers are not deduplicated: when building row maps the last
// occurrence wins, which keeps column selection deterministic. Records whose
// field count differs from the header are a parse failure.
func ParseTable(content []byte, filename string) (*Table, error) {
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}

	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(content))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	if len(records) == 0 {
		return &Table{Columns: []string{}, Rows: []map[string]string{}}, nil
	}

	cols := make([]string, len(records[0]))
	for i, c := range records[0] {
		cols[i] = strings.ToLower(strings.TrimSpace(c))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}

	return &Table{Columns: cols, Rows: rows}, nil
}

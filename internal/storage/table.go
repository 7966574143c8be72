package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Table is a fixed-schema tabular artifact. Column names are unique in
// memory; repeated header names in a CSV (the canonicalized attribute
// roles) are re-suffixed with .1, .2, ... on read and the suffix is
// stripped again on write.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the cell at (row, column name), or "" when out of range.
func (t *Table) Get(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// Set writes the cell at (row, column name). Unknown columns and
// out-of-range rows are ignored.
func (t *Table) Set(row int, column, value string) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return
	}
	t.Rows[row][idx] = value
}

// Append adds a row. Short rows are padded with empty cells so every row
// has the full column set.
func (t *Table) Append(row []string) {
	for len(row) < len(t.Columns) {
		row = append(row, "")
	}
	t.Rows = append(t.Rows, row[:len(t.Columns)])
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// DropColumn removes the named column, returning its values.
func (t *Table) DropColumn(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
			t.Rows[i] = append(row[:idx], row[idx+1:]...)
		}
	}
	return values
}

// InsertColumn adds a column at the given position with the given values.
func (t *Table) InsertColumn(idx int, name string, values []string) {
	if idx < 0 || idx > len(t.Columns) {
		idx = len(t.Columns)
	}
	t.Columns = append(t.Columns[:idx], append([]string{name}, t.Columns[idx:]...)...)
	for i, row := range t.Rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		t.Rows[i] = append(row[:idx], append([]string{v}, row[idx:]...)...)
	}
}

// WriteCSV writes the table. headerOf, when non-nil, transforms each
// column name on output (used to canonicalize repeated roles).
func (t *Table) WriteCSV(w io.Writer, headerOf func(string) string) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if headerOf != nil {
			header[i] = headerOf(c)
		} else {
			header[i] = c
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table from CSV, re-suffixing repeated header names so
// every in-memory column is unique.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read CSV: missing header row")
	}

	header := dedupeHeader(records[0])
	tbl := NewTable(header)
	for _, row := range records[1:] {
		tbl.Append(row)
	}
	return tbl, nil
}

// dedupeHeader appends .1, .2, ... to repeated header names, restoring
// the unique internal column names.
func dedupeHeader(header []string) []string {
	counts := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		if n := counts[name]; n > 0 {
			out[i] = name + "." + strconv.Itoa(n)
		} else {
			out[i] = name
		}
		counts[name]++
	}
	return out
}

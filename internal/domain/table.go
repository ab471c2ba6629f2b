package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Table is the untyped row form of a dataset: what the provider returned and
// exactly what the cache stores. The first CSV row of a cache file is Columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given header.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Require fails with ErrMalformedDataset when any column is missing.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if t.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrMalformedDataset, strings.Join(missing, ", "))
	}
	return nil
}

// AppendRow adds a row; short rows are padded so every row matches the header width.
func (t *Table) AppendRow(values ...string) {
	row := make([]string, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// ParseDate parses the provider's date cells. Time of day is kept when present.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrMalformedDataset, value)
}

// Day truncates a timestamp to its calendar date in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// rowReader decodes typed cells from one row, remembering the first error.
type rowReader struct {
	table *Table
	index map[string]int
	row   []string
	line  int
	err   error
}

func newRowReader(t *Table, required []string) (*rowReader, error) {
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	return &rowReader{table: t, index: idx}, nil
}

func (r *rowReader) reset(line int) {
	r.row = r.table.Rows[line]
	r.line = line
}

func (r *rowReader) cell(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r *rowReader) fail(column, value string, cause error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: row %d column %s value %q: %v", ErrMalformedDataset, r.line+1, column, value, cause)
	}
}

func (r *rowReader) str(column string) string {
	return r.cell(column)
}

func (r *rowReader) date(column string) time.Time {
	v := r.cell(column)
	t, err := ParseDate(v)
	if err != nil {
		r.fail(column, v, err)
	}
	return t
}

func (r *rowReader) day(column string) time.Time {
	return Day(r.date(column))
}

// float returns 0 for empty cells; pandas wrote missing numbers as empty strings.
func (r *rowReader) float(column string) float64 {
	v := r.cell(column)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(column, v, err)
	}
	return f
}

func (r *rowReader) integer(column string) int {
	v := r.cell(column)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(column, v, err)
		return 0
	}
	return int(f)
}

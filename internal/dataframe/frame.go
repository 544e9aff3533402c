// Package dataframe provides the in-memory tabular structure the pipeline
// analyzes. A Frame keeps CSV-born cells as strings with a stable column
// order; numeric and time interpretation is best-effort and on demand, which
// matches how uploaded datasets actually arrive.
package dataframe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Frame is an ordered-column tabular dataset. The column order is the schema
// contract for the whole pipeline and never changes after load.
type Frame struct {
	columns []string
	cells   map[string][]string
	rows    int
}

// New builds a Frame from an ordered column list and per-column cells.
// All columns must have the same length.
func New(columns []string, cells map[string][]string) (*Frame, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataframe: no columns")
	}
	rows := -1
	for _, col := range columns {
		vals, ok := cells[col]
		if !ok {
			return nil, fmt.Errorf("dataframe: missing cells for column %q", col)
		}
		if rows == -1 {
			rows = len(vals)
		} else if len(vals) != rows {
			return nil, fmt.Errorf("dataframe: column %q has %d rows, want %d", col, len(vals), rows)
		}
	}
	return &Frame{columns: append([]string(nil), columns...), cells: cells, rows: rows}, nil
}

// ReadCSV loads a Frame from CSV data. The first record is the header and
// fixes the column order.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Ragged records are padded with empty cells rather than rejected.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataframe: read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	cells := make(map[string][]string, len(columns))
	for _, col := range columns {
		cells[col] = []string{}
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataframe: read record: %w", err)
		}
		for i, col := range columns {
			val := ""
			if i < len(record) {
				val = record[i]
			}
			cells[col] = append(cells[col], val)
		}
	}

	return New(columns, cells)
}

// LoadCSV loads a Frame from a CSV file on disk.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataframe: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// Columns returns the ordered column names.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Rows returns the number of data rows.
func (f *Frame) Rows() int { return f.rows }

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cells[name]
	return ok
}

// Column returns the raw cells of a column.
func (f *Frame) Column(name string) ([]string, bool) {
	vals, ok := f.cells[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), vals...), true
}

// Cell returns the raw value at (row, column).
func (f *Frame) Cell(col string, row int) (string, bool) {
	vals, ok := f.cells[col]
	if !ok || row < 0 || row >= len(vals) {
		return "", false
	}
	return vals[row], true
}

// Copy returns a deep copy. The sandbox executes against a copy so generated
// code can never mutate the caller's dataset.
func (f *Frame) Copy() *Frame {
	cells := make(map[string][]string, len(f.columns))
	for _, col := range f.columns {
		cells[col] = append([]string(nil), f.cells[col]...)
	}
	return &Frame{columns: append([]string(nil), f.columns...), cells: cells, rows: f.rows}
}

// Numeric parses a column as float64. It succeeds only if every non-empty
// cell parses and at least one cell is non-empty; empty cells become NaN-free
// by being skipped from the returned positions slice.
func (f *Frame) Numeric(name string) (values []float64, positions []int, ok bool) {
	vals, found := f.cells[name]
	if !found {
		return nil, nil, false
	}
	for i, v := range vals {
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return nil, nil, false
		}
		values = append(values, n)
		positions = append(positions, i)
	}
	if len(values) == 0 {
		return nil, nil, false
	}
	return values, positions, true
}

// NumericColumns returns the names of all columns that parse as numeric,
// preserving schema order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, col := range f.columns {
		if _, _, ok := f.Numeric(col); ok {
			out = append(out, col)
		}
	}
	return out
}

// dateLayouts are tried in order for best-effort time parsing.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"2-Jan-2006",
	"2006-01",
}

// ParseTime attempts a best-effort date parse of a single cell.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Times parses a column as timestamps. Cells that do not parse are reported
// with ok=false in the parallel mask. The column qualifies as time-like when
// at least one cell parses.
func (f *Frame) Times(name string) (times []time.Time, mask []bool, any bool) {
	vals, found := f.cells[name]
	if !found {
		return nil, nil, false
	}
	times = make([]time.Time, len(vals))
	mask = make([]bool, len(vals))
	for i, v := range vals {
		if t, ok := ParseTime(v); ok {
			times[i] = t
			mask[i] = true
			any = true
		}
	}
	return times, mask, any
}

// Select returns a new Frame restricted to the named columns, in the given
// order. Unknown columns are an error.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cells := make(map[string][]string, len(names))
	for _, name := range names {
		vals, ok := f.cells[name]
		if !ok {
			return nil, fmt.Errorf("dataframe: unknown column %q", name)
		}
		cells[name] = append([]string(nil), vals...)
	}
	return New(names, cells)
}

// Head returns a new Frame with at most n rows.
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > f.rows {
		n = f.rows
	}
	cells := make(map[string][]string, len(f.columns))
	for _, col := range f.columns {
		cells[col] = append([]string(nil), f.cells[col][:n]...)
	}
	return &Frame{columns: append([]string(nil), f.columns...), cells: cells, rows: n}
}

// Records returns the frame as ordered rows of cells, one slice per row,
// matching the column order.
func (f *Frame) Records() [][]string {
	rows := make([][]string, f.rows)
	for i := 0; i < f.rows; i++ {
		row := make([]string, len(f.columns))
		for j, col := range f.columns {
			row[j] = f.cells[col][i]
		}
		rows[i] = row
	}
	return rows
}

// FilterRows returns a new Frame keeping only the rows whose index is listed.
func (f *Frame) FilterRows(indices []int) *Frame {
	cells := make(map[string][]string, len(f.columns))
	for _, col := range f.columns {
		kept := make([]string, 0, len(indices))
		src := f.cells[col]
		for _, i := range indices {
			if i >= 0 && i < len(src) {
				kept = append(kept, src[i])
			}
		}
		cells[col] = kept
	}
	out := &Frame{columns: append([]string(nil), f.columns...), cells: cells}
	if len(out.columns) > 0 {
		out.rows = len(cells[out.columns[0]])
	}
	return out
}

// Set replaces the cells of an existing column or appends a new one.
// The value count must match the row count on non-empty frames.
func (f *Frame) Set(name string, values []string) error {
	if f.rows > 0 && len(values) != f.rows {
		return fmt.Errorf("dataframe: column %q has %d values, want %d", name, len(values), f.rows)
	}
	if _, exists := f.cells[name]; !exists {
		f.columns = append(f.columns, name)
	}
	f.cells[name] = append([]string(nil), values...)
	if f.rows == 0 {
		f.rows = len(values)
	}
	return nil
}

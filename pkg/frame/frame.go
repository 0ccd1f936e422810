// pkg/frame/frame.go
package frame

import (
	"errors"
	"strings"
)

// Frame is a row-oriented view of one tabular input source. Cells are kept as
// raw strings; typed interpretation happens at the point of use so a single
// malformed cell never poisons the rest of the row.
type Frame struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New creates a frame over the given header and rows. Short rows are padded
// with empty cells so positional access never goes out of range.
func New(name string, columns []string, rows [][]string) (*Frame, error) {
	if len(columns) == 0 {
		return nil, errors.New("frame requires at least one column")
	}

	index := make(map[string]int, len(columns))
	for i, col := range columns {
		// First occurrence wins for duplicate headers
		key := strings.TrimSpace(col)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) < len(columns) {
			full := make([]string, len(columns))
			copy(full, row)
			row = full
		}
		padded[i] = row
	}

	return &Frame{
		Name:    name,
		Columns: columns,
		Rows:    padded,
		index:   index,
	}, nil
}

// Len returns the number of data rows
func (f *Frame) Len() int {
	return len(f.Rows)
}

// ColumnIndex returns the position of a raw column header
func (f *Frame) ColumnIndex(name string) (int, bool) {
	i, ok := f.index[strings.TrimSpace(name)]
	return i, ok
}

// Cell returns the raw cell at (row, column position), trimmed
func (f *Frame) Cell(row, col int) string {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(f.Rows[row][col])
}

// CellByName returns the raw cell for a raw column header
func (f *Frame) CellByName(row int, name string) (string, bool) {
	col, ok := f.ColumnIndex(name)
	if !ok {
		return "", false
	}
	return f.Cell(row, col), true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
)

// Table is an in-memory tabular result: named columns, optional row labels,
// and rows of cells aligned with Columns. Cells hold nil, string, int,
// int64, float64, bool, or time.Time values.
type Table struct {
	// Columns are the header names, in output order.
	Columns []string

	// IndexName is the header of the row-label column when it is shown.
	IndexName string

	// Index holds one label per row. It may be nil for plain listings.
	Index []string

	// Rows holds the cell values; every row has len(Columns) cells.
	Rows [][]any
}

// NewTable returns an empty table with the given column headers.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. It returns an error if the cell count does not match
// the column count.
func (t *Table) Append(cells ...any) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// Label returns the row label for row i, or the zero-based row position when
// the table has no index.
func (t *Table) Label(i int) string {
	if i < len(t.Index) {
		return t.Index[i]
	}
	return strconv.Itoa(i)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

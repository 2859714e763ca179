// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"math"

	"github.com/parquet-go/parquet-go"

	"github.com/pdiddy/ani-report/pkg/types"
)

// CellRecord is one table cell in the long-form Parquet layout: one record
// per (row, column) pair, in row-major order.
type CellRecord struct {
	// Position is the zero-based row position.
	Position int64 `parquet:"position"`

	// Row is the row label: the index value, or the position when the table
	// has no index.
	Row string `parquet:"row"`

	Column string `parquet:"column"`

	// Value is the cell rendered as text, as in the tab format.
	Value string `parquet:"value"`

	// Number holds numeric cells. It is null for text and missing values.
	Number *float64 `parquet:"number,optional"`
}

// writeParquet writes the table in long form, which keeps one fixed schema
// for every table regardless of its columns.
func writeParquet(w io.Writer, t *types.Table, _ Options) error {
	pw := parquet.NewGenericWriter[CellRecord](w, parquet.Compression(&parquet.Zstd))

	batch := make([]CellRecord, 0, len(t.Columns))
	for i, row := range t.Rows {
		batch = batch[:0]
		label := t.Label(i)
		for j, v := range row {
			rec := CellRecord{
				Position: int64(i),
				Row:      label,
				Column:   t.Columns[j],
				Value:    FormatCell(v),
			}
			if f, ok := numeric(v); ok && !math.IsNaN(f) {
				rec.Number = &f
			}
			batch = append(batch, rec)
		}
		if _, err := pw.Write(batch); err != nil {
			pw.Close()
			return fmt.Errorf("writing parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/ani-report/pkg/types"
)

// SheetName is the worksheet that receives the table.
const SheetName = "Sheet1"

// highlightFill is the background of cells at or above the colour threshold.
const highlightFill = "#FFD966"

// writeExcel writes an .xlsx workbook with a bold header row. With a colour
// threshold set, numeric columns get a conditional format that fills cells
// at or above it. Missing values are left as empty cells.
func writeExcel(w io.Writer, t *types.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	offset := 0
	if opts.ShowIndex {
		offset = 1
	}

	for j, name := range header(t, opts) {
		if err := setCell(f, j+1, 1, name); err != nil {
			return err
		}
	}
	if last := len(t.Columns) + offset; last > 0 {
		end, _ := excelize.CoordinatesToCellName(last, 1)
		if err := f.SetCellStyle(SheetName, "A1", end, bold); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}

	for i, row := range t.Rows {
		r := i + 2
		if opts.ShowIndex {
			if err := setCell(f, 1, r, indexValue(t.Label(i))); err != nil {
				return err
			}
		}
		for j, v := range row {
			if err := setCell(f, j+1+offset, r, excelValue(v)); err != nil {
				return err
			}
		}
	}

	if opts.ColourThreshold != nil && len(t.Rows) > 0 {
		if err := highlightColumns(f, t, offset, *opts.ColourThreshold); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	if v == nil {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("setting cell %s: %w", cell, err)
	}
	return nil
}

// excelValue maps a table cell to a value excelize can store. NaN becomes an
// empty cell and timestamps are stored as text.
func excelValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return nil
		}
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return FormatCell(x)
	}
	return v
}

// indexValue stores integer row labels (genome IDs) as numbers.
func indexValue(label string) any {
	if n, err := strconv.ParseInt(label, 10, 64); err == nil {
		return n
	}
	return label
}

// highlightColumns adds a ">= threshold" conditional fill over each run of
// adjacent columns whose cells are all numeric or empty. Text columns are
// skipped since Excel ranks text above any number.
func highlightColumns(f *excelize.File, t *types.Table, offset int, threshold float64) error {
	style, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{highlightFill}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating highlight style: %w", err)
	}
	rule := []excelize.ConditionalFormatOptions{{
		Type:     "cell",
		Criteria: ">=",
		Format:   &style,
		Value:    strconv.FormatFloat(threshold, 'f', -1, 64),
	}}

	for first := 0; first < len(t.Columns); {
		if !numericColumn(t, first) {
			first++
			continue
		}
		last := first
		for last+1 < len(t.Columns) && numericColumn(t, last+1) {
			last++
		}
		top, _ := excelize.CoordinatesToCellName(first+1+offset, 2)
		bottom, _ := excelize.CoordinatesToCellName(last+1+offset, len(t.Rows)+1)
		if err := f.SetConditionalFormat(SheetName, top+":"+bottom, rule); err != nil {
			return fmt.Errorf("setting conditional format on %s:%s: %w", top, bottom, err)
		}
		first = last + 1
	}
	return nil
}

func numericColumn(t *types.Table, j int) bool {
	for _, row := range t.Rows {
		if row[j] == nil {
			continue
		}
		if _, ok := numeric(row[j]); !ok {
			return false
		}
	}
	return true
}

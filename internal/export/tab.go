// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"io"

	"github.com/pdiddy/ani-report/pkg/types"
)

// writeTab writes tab-separated text with a header row.
func writeTab(w io.Writer, t *types.Table, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(header(t, opts)); err != nil {
		return err
	}
	for i, row := range t.Rows {
		rec := make([]string, 0, len(row)+1)
		if opts.ShowIndex {
			rec = append(rec, t.Label(i))
		}
		for _, v := range row {
			rec = append(rec, FormatCell(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

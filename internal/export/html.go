// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"html/template"
	"io"

	"github.com/pdiddy/ani-report/pkg/types"
)

var htmlTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table.results { border-collapse: collapse; font-family: sans-serif; font-size: 0.9em; }
table.results th, table.results td { border: 1px solid #999; padding: 0.2em 0.5em; text-align: right; }
table.results th { background: #eee; }
table.results td.highlight { background: ` + highlightFill + `; }
table.results td.missing { color: #999; }
</style>
</head>
<body>
<table class="results">
<thead>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{if .Label}}<th>{{.Label.Text}}</th>{{end}}{{range .Cells}}<td{{if .Class}} class="{{.Class}}"{{end}}>{{.Text}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type htmlCell struct {
	Text  string
	Class string
}

type htmlRow struct {
	Label *htmlCell
	Cells []htmlCell
}

type htmlPage struct {
	Title  string
	Header []string
	Rows   []htmlRow
}

// writeHTML writes a standalone HTML page holding the table. Cells at or
// above the colour threshold get the "highlight" class; NaN cells get
// "missing".
func writeHTML(w io.Writer, t *types.Table, opts Options) error {
	page := htmlPage{
		Title:  opts.Title,
		Header: header(t, opts),
		Rows:   make([]htmlRow, len(t.Rows)),
	}
	for i, row := range t.Rows {
		hr := htmlRow{Cells: make([]htmlCell, len(row))}
		if opts.ShowIndex {
			hr.Label = &htmlCell{Text: t.Label(i)}
		}
		for j, v := range row {
			c := htmlCell{Text: FormatCell(v)}
			switch {
			case highlighted(v, opts):
				c.Class = "highlight"
			case c.Text == missing:
				c.Class = "missing"
			}
			hr.Cells[j] = c
		}
		page.Rows[i] = hr
	}
	return htmlTemplate.Execute(w, page)
}

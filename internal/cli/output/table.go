package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes rows under headers: a box table in text mode, a pipe table in markdown.
// JSON callers encode their own values.
func (r *Renderer) Table(headers []string, rows [][]any) {
	if len(rows) == 0 {
		r.Println("(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = FormatValue(v)
		}
		t.AppendRow(out)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println("")
		return
	}
	t.Render()
}

// FormatValue renders a cell, showing nil as NULL.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case *float64:
		if x == nil {
			return "NULL"
		}
		return fmt.Sprintf("%g", *x)
	case *string:
		if x == nil {
			return "NULL"
		}
		return *x
	case float64:
		return fmt.Sprintf("%g", x)
	}
	return fmt.Sprintf("%v", v)
}

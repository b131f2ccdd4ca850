package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/pkg/adapter"
	"github.com/leapstack-labs/leapviz/pkg/core"
)

// renderImportResponse prints an import or merge outcome. An Error status is
// returned as an OperationFailed error so the process exits non-zero.
func renderImportResponse(r *output.Renderer, resp *core.ImportDatasetResponse) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(resp); err != nil {
			return err
		}
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(2, "Import "+string(resp.Status)))
		r.Println("")
		if resp.DatasetID != "" {
			r.Println(output.FormatKeyValue("Dataset", resp.DatasetID))
		}
		r.Println(output.FormatKeyValue("Message", resp.Message))
	default:
		if resp.Status == core.ImportSuccess {
			r.Success(resp.Message)
			r.KeyValue("Dataset", resp.DatasetID)
		} else if resp.DatasetID != "" {
			r.KeyValue("Dataset", resp.DatasetID)
		}
	}

	if resp.Status == core.ImportError {
		return core.OperationFailedf("%s", resp.Message)
	}
	return nil
}

// columnNames returns the schema's raw field names in column order.
func columnNames(schema []core.Column) []string {
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	return names
}

// rowCells projects rows onto the schema's column order.
func rowCells(schema []core.Column, rows []core.Row) [][]any {
	cells := make([][]any, len(rows))
	for i, row := range rows {
		line := make([]any, len(schema))
		for j, c := range schema {
			line[j] = row[c.Name]
		}
		cells[i] = line
	}
	return cells
}

func renderQueryResult(r *output.Renderer, schema []core.Column, res *core.QueryResult) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}
	r.Table(columnNames(schema), rowCells(schema, res.Items))
	r.Muted(fmt.Sprintf("Page %d of %d (%d rows total, %d per page)",
		res.Page, res.TotalPages, res.TotalCount, res.PageSize))
	return nil
}

func renderDataset(r *output.Renderer, ds *core.Dataset) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ds)
	}

	r.Header(1, ds.Name)
	r.KeyValue("ID", ds.ID)
	r.KeyValue("Status", ds.Status)
	r.KeyValue("Source", fmt.Sprintf("%s (%s)", ds.SourceType, ds.SourceName))
	r.KeyValue("Rows", ds.TotalRows)
	r.KeyValue("Owner", ds.CreatedBy)
	r.KeyValue("Created", ds.CreatedAt.Format(time.RFC3339))
	if ds.UpdatedAt != nil {
		r.KeyValue("Updated", ds.UpdatedAt.Format(time.RFC3339))
	}
	r.Println("")

	rows := make([][]any, len(ds.Schema))
	for i, c := range ds.Schema {
		rows[i] = []any{c.Order, c.Name, c.DisplayName, c.DataType, c.IsRequired, c.Description}
	}
	r.Table([]string{"#", "Column", "Display Name", "Type", "Required", "Description"}, rows)
	return nil
}

func renderDatasetPage(r *output.Renderer, page *core.DatasetPage) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(page)
	}

	r.Header(1, fmt.Sprintf("Datasets (%d total)", page.TotalCount))
	rows := make([][]any, len(page.Items))
	for i, ds := range page.Items {
		rows[i] = []any{ds.ID, ds.Name, ds.SourceType, ds.Status, ds.TotalRows, len(ds.Schema), ds.CreatedAt.Format(time.DateTime)}
	}
	r.Table([]string{"ID", "Name", "Source", "Status", "Rows", "Columns", "Created"}, rows)
	if page.TotalPages > 1 {
		r.Muted(fmt.Sprintf("Page %d of %d", page.Page, page.TotalPages))
	}
	return nil
}

// statisticsRows flattens column statistics into label/value pairs.
func statisticsRows(s core.ColumnStatistics) [][]any {
	return [][]any{
		{output.Title("totalValues"), s.TotalValues},
		{output.Title("nullCount"), s.NullCount},
		{output.Title("uniqueCount"), s.UniqueCount},
		{output.Title("min"), s.Min},
		{output.Title("max"), s.Max},
		{output.Title("average"), s.Average},
		{output.Title("mostCommonValue"), s.MostCommonValue},
		{output.Title("mostCommonCount"), s.MostCommonCount},
	}
}

func renderColumnDetail(r *output.Renderer, col *core.ColumnDetail) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(col)
	}

	r.Header(2, fmt.Sprintf("%s (%s)", col.Name, col.DataType))
	r.Table([]string{"Statistic", "Value"}, statisticsRows(col.Statistics))
	if len(col.Distribution) > 0 {
		r.Println("")
		rows := make([][]any, len(col.Distribution))
		for i, d := range col.Distribution {
			rows[i] = []any{d.Value, d.Count}
		}
		r.Table([]string{"Value", "Count"}, rows)
	}
	return nil
}

func renderDetail(r *output.Renderer, detail *core.DataSourceDetailResponse) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(detail)
	}

	r.Header(1, detail.Name)
	r.KeyValue("ID", detail.ID)
	r.KeyValue("Rows", detail.TotalRows)
	r.Println("")

	rows := make([][]any, len(detail.Columns))
	for i, c := range detail.Columns {
		s := c.Statistics
		rows[i] = []any{c.Name, c.DataType, s.NullCount, s.UniqueCount, s.Min, s.Max, s.Average, s.MostCommonValue}
	}
	r.Table([]string{"Column", "Type", "Nulls", "Unique", "Min", "Max", "Average", "Most Common"}, rows)
	r.Println("")

	return renderQueryResult(r, detail.Schema, &detail.Data)
}

func renderChart(r *output.Renderer, resp *core.ChartAggregationResponse) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(resp)
	}

	if len(resp.Series) == 0 {
		rows := make([][]any, len(resp.Categories))
		for i, c := range resp.Categories {
			var v any
			if i < len(resp.Values) {
				v = resp.Values[i]
			}
			rows[i] = []any{c, v}
		}
		r.Table([]string{"Category", "Value"}, rows)
		return nil
	}

	headers := append([]string{"Series"}, resp.Categories...)
	rows := make([][]any, len(resp.Series))
	for i, s := range resp.Series {
		line := make([]any, 0, len(s.Data)+1)
		line = append(line, s.Name)
		for _, v := range s.Data {
			line = append(line, v)
		}
		rows[i] = line
	}
	r.Table(headers, rows)
	return nil
}

func renderTableMetadata(r *output.Renderer, meta *core.TableMetadata) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(meta)
	}

	name := meta.Name
	if meta.Schema != "" {
		name = meta.Schema + "." + meta.Name
	}
	r.Header(2, name)
	r.KeyValue("Rows", meta.RowCount)
	r.Println("")

	rows := make([][]any, len(meta.Columns))
	for i, c := range meta.Columns {
		rows[i] = []any{c.Position, c.Name, c.DatabaseType, adapter.DataTypeFor(c.DatabaseType), c.Nullable}
	}
	r.Table([]string{"#", "Column", "Database Type", "Imports As", "Nullable"}, rows)
	return nil
}

func renderDropdown(r *output.Renderer, entries []core.DropdownEntry) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(entries)
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		cols := make([]string, len(e.Columns))
		for j, c := range e.Columns {
			cols[j] = c.Name + ":" + string(c.DataType)
		}
		rows[i] = []any{e.ID, e.Name, strings.Join(cols, ", ")}
	}
	r.Table([]string{"ID", "Name", "Columns"}, rows)
	return nil
}

// parseJoinCondition parses left:right[:operator].
func parseJoinCondition(s string) (core.JoinCondition, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return core.JoinCondition{}, core.InvalidArgumentf("invalid join condition %q, expected left:right[:operator]", s)
	}
	jc := core.JoinCondition{LeftColumn: parts[0], RightColumn: parts[1]}
	if len(parts) == 3 {
		jc.Operator = parts[2]
	}
	return jc, nil
}

// atoiOr parses s, falling back to def for empty or invalid input.
func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

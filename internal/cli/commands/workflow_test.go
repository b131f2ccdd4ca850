package commands

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapviz/internal/cli/config"
	"github.com/leapstack-labs/leapviz/internal/cli/testutil"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWorkspace loads a JSON-output config with a file-backed state
// database next to the sample data files.
func setupWorkspace(t *testing.T) string {
	t.Helper()

	dir := testutil.SetupTestData(t)
	cfgPath := filepath.Join(dir, "leapviz.yaml")
	content := `state_path: .leapviz/state.db
owner: tester
output: json
log_level: error
sources:
  shop:
    type: sqlite
    database: shop.db
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	return dir
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func importCSV(t *testing.T, dir, name string) string {
	t.Helper()
	out, err := execute(t, NewImportCommand(), "file", filepath.Join(dir, name))
	require.NoError(t, err)
	resp := decode[core.ImportDatasetResponse](t, out)
	require.Equal(t, core.ImportSuccess, resp.Status, resp.Message)
	require.NotEmpty(t, resp.DatasetID)
	return resp.DatasetID
}

func TestWorkflow_ImportAndQuery(t *testing.T) {
	dir := setupWorkspace(t)
	id := importCSV(t, dir, "sales.csv")

	t.Run("info", func(t *testing.T) {
		out, err := execute(t, NewDatasetsCommand(), "info", id)
		require.NoError(t, err)
		ds := decode[core.Dataset](t, out)
		assert.Equal(t, "sales", ds.Name)
		assert.Equal(t, core.SourceFile, ds.SourceType)
		assert.Equal(t, core.StatusCompleted, ds.Status)
		assert.Equal(t, 4, ds.TotalRows)
		assert.Equal(t, "tester", ds.CreatedBy)
		assert.Equal(t, []string{"region", "product", "amount", "day"}, columnNames(ds.Schema))
	})

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, NewDatasetsCommand(), "list")
		require.NoError(t, err)
		page := decode[core.DatasetPage](t, out)
		assert.Equal(t, 1, page.TotalCount)
		require.Len(t, page.Items, 1)
		assert.Equal(t, id, page.Items[0].ID)
	})

	t.Run("query filters and sorts", func(t *testing.T) {
		out, err := execute(t, NewQueryCommand(), id, "-f", "region:eq:north", "--sort", "amount", "--dir", "desc")
		require.NoError(t, err)
		res := decode[core.QueryResult](t, out)
		assert.Equal(t, 2, res.TotalCount)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "Coffee", res.Items[0]["product"])
		assert.Equal(t, "Tea", res.Items[1]["product"])
	})

	t.Run("query pages", func(t *testing.T) {
		out, err := execute(t, NewQueryCommand(), id, "--page", "2", "--page-size", "3")
		require.NoError(t, err)
		res := decode[core.QueryResult](t, out)
		assert.Equal(t, 2, res.TotalPages)
		assert.Len(t, res.Items, 1)
	})

	t.Run("query unknown operator", func(t *testing.T) {
		_, err := execute(t, NewQueryCommand(), id, "-f", "region:like:n")
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("stats", func(t *testing.T) {
		out, err := execute(t, NewStatsCommand(), id, "amount")
		require.NoError(t, err)
		col := decode[core.ColumnDetail](t, out)
		assert.Equal(t, "amount", col.Name)
		assert.Equal(t, 4, col.Statistics.TotalValues)
		require.NotNil(t, col.Statistics.Max)
		assert.InDelta(t, 12.5, *col.Statistics.Max, 1e-9)
	})

	t.Run("detail", func(t *testing.T) {
		out, err := execute(t, NewDetailCommand(), id)
		require.NoError(t, err)
		detail := decode[core.DataSourceDetailResponse](t, out)
		assert.Len(t, detail.Columns, 4)
		assert.Equal(t, core.DefaultDetailPageSize, detail.Data.PageSize)
		assert.Len(t, detail.Data.Items, 4)
	})

	t.Run("aggregate", func(t *testing.T) {
		out, err := execute(t, NewAggregateCommand(), id, "--category", "region", "--value", "amount", "--agg", "sum")
		require.NoError(t, err)
		resp := decode[core.ChartAggregationResponse](t, out)
		require.Len(t, resp.Values, len(resp.Categories))
		byRegion := make(map[string]float64)
		for i, c := range resp.Categories {
			byRegion[c] = resp.Values[i]
		}
		assert.InDelta(t, 19.75, byRegion["north"], 1e-9)
		assert.InDelta(t, 4.0, byRegion["south"], 1e-9)
	})

	t.Run("aggregate from request file", func(t *testing.T) {
		path := writeRequest(t, "chart.yaml", `
categoryField: region
valueField: amount
aggregation: count
`)
		out, err := execute(t, NewAggregateCommand(), id, "--request", path, "-f", "region:eq:north")
		require.NoError(t, err)
		resp := decode[core.ChartAggregationResponse](t, out)
		assert.Equal(t, []string{"north"}, resp.Categories)
		assert.Equal(t, []float64{2}, resp.Values)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		_, err := execute(t, NewQueryCommand(), "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestWorkflow_AppendAndDelete(t *testing.T) {
	dir := setupWorkspace(t)
	id := importCSV(t, dir, "sales.csv")

	extra := filepath.Join(dir, "more.csv")
	require.NoError(t, os.WriteFile(extra, []byte("Region,Product,Amount,Day\nwest,Tea,3,2024-03-01\n"), 0600))

	out, err := execute(t, NewImportCommand(), "append", id, extra)
	require.NoError(t, err)
	assert.Equal(t, core.ImportSuccess, decode[core.ImportDatasetResponse](t, out).Status)

	out, err = execute(t, NewDatasetsCommand(), "info", id)
	require.NoError(t, err)
	assert.Equal(t, 5, decode[core.Dataset](t, out).TotalRows)

	out, err = execute(t, NewDatasetsCommand(), "delete", id)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"datasetId": id, "deleted": true}, decode[map[string]any](t, out))

	_, err = execute(t, NewDatasetsCommand(), "info", id)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestWorkflow_Merge(t *testing.T) {
	dir := setupWorkspace(t)
	orders := importCSV(t, dir, "orders.csv")
	customers := importCSV(t, dir, "customers.csv")

	out, err := execute(t, NewMergeCommand(),
		"--name", "Orders by customer", "--left", orders, "--right", customers,
		"--on", "customer_id:id", "--type", "left")
	require.NoError(t, err)
	resp := decode[core.ImportDatasetResponse](t, out)
	require.Equal(t, core.ImportSuccess, resp.Status)

	out, err = execute(t, NewQueryCommand(), resp.DatasetID, "--sort", "Left_order_id")
	require.NoError(t, err)
	res := decode[core.QueryResult](t, out)
	require.Equal(t, 4, res.TotalCount)
	assert.Equal(t, "Alice", res.Items[0]["Right_name"])
	assert.NotContains(t, res.Items[3], "Right_name")

	t.Run("empty inner join fails", func(t *testing.T) {
		out, err := execute(t, NewMergeCommand(),
			"--name", "Nothing", "--left", orders, "--right", customers, "--on", "order_id:id")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrOperationFailed)
		assert.Equal(t, core.ImportError, decode[core.ImportDatasetResponse](t, out).Status)
	})

	t.Run("dropdown lists all three", func(t *testing.T) {
		out, err := execute(t, NewDatasetsCommand(), "dropdown")
		require.NoError(t, err)
		assert.Len(t, decode[[]core.DropdownEntry](t, out), 3)
	})
}

func TestWorkflow_ImportDBErrors(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, NewImportCommand(), "db", "--source", "missing", "--query", "SELECT 1", "--name", "x")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = execute(t, NewImportCommand(), "db", "--query", "SELECT 1", "--name", "x")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = execute(t, NewImportCommand(), "rest", "--name", "x")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestWorkflow_DescribeSource(t *testing.T) {
	dir := setupWorkspace(t)
	dbPath := filepath.Join(dir, "shop.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE items (id INTEGER NOT NULL, label TEXT, price REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO items VALUES (1, 'pen', 1.5)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := execute(t, NewImportCommand(), "describe", "items", "--type", "sqlite", "--database", dbPath)
	require.NoError(t, err)
	meta := decode[core.TableMetadata](t, out)
	assert.Equal(t, "items", meta.Name)
	assert.Equal(t, int64(1), meta.RowCount)
	require.Len(t, meta.Columns, 3)
	assert.Equal(t, "id", meta.Columns[0].Name)
	assert.False(t, meta.Columns[0].Nullable)
	assert.Equal(t, "REAL", meta.Columns[2].DatabaseType)

	_, err = execute(t, NewImportCommand(), "describe", "missing", "--type", "sqlite", "--database", dbPath)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = execute(t, NewImportCommand(), "describe", "items")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

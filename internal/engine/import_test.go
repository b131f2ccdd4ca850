package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapviz/internal/testutil"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/leapviz/pkg/adapters/sqlite"
)

const inventoryCSV = "sku,qty,price,restocked\nA-1,4,2.50,2024-05-01\nB-2,,3.10,2024-05-03\nC-3,9,1,\nD-4,1,4.75,2024-05-07\nE-5,3,0.99,2024-05-09\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportFile(t *testing.T) {
	f := setupEngine(t, func(c *Config) { c.BatchSize = 2 })
	ctx := context.Background()
	path := writeFile(t, "inventory.csv", inventoryCSV)

	resp, err := f.engine.ImportFile(ctx, "ana", "", path)
	require.NoError(t, err)
	require.Equal(t, core.ImportSuccess, resp.Status, resp.Message)
	assert.Equal(t, "Successfully imported 5 rows", resp.Message)

	ds, err := f.engine.GetDatasetInfo(ctx, resp.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, "inventory", ds.Name)
	assert.Equal(t, core.SourceFile, ds.SourceType)
	assert.Equal(t, "inventory.csv", ds.SourceName)
	assert.Equal(t, 5, ds.TotalRows)

	types := map[string]core.DataType{}
	required := map[string]bool{}
	for _, c := range ds.Schema {
		types[c.Name] = c.DataType
		required[c.Name] = c.IsRequired
	}
	assert.Equal(t, core.DataTypeString, types["sku"])
	assert.Equal(t, core.DataTypeInt, types["qty"])
	assert.Equal(t, core.DataTypeDecimal, types["price"])
	assert.Equal(t, core.DataTypeDateTime, types["restocked"])
	assert.True(t, required["sku"])
	assert.False(t, required["qty"])

	rows, err := f.store.GetAllRows(ctx, resp.DatasetID)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Nil(t, rows[1]["qty"])
	assert.Equal(t, json.Number("2.5"), rows[0]["price"])
	assert.Equal(t, "2024-05-01T00:00:00Z", rows[0]["restocked"])
	assert.Equal(t, "E-5", rows[4]["sku"])
}

func TestImportFile_Failures(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	_, err := f.engine.ImportFile(ctx, "ana", "x", filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	resp, err := f.engine.ImportFile(ctx, "ana", "x", writeFile(t, "notes.pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)
	assert.Contains(t, resp.Message, "unsupported file type")

	resp, err = f.engine.ImportFile(ctx, "ana", "x", writeFile(t, "dup.csv", "a,a\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)

	_, total, err := f.store.ListDatasets(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestImportREST(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"city":"Hue","pop":652572},{"city":"Hoi An","pop":152160}]}`))
	}))
	defer srv.Close()

	f := setupEngine(t)
	ctx := context.Background()

	opts := core.DefaultRestImportOptions()
	opts.URL = srv.URL
	opts.DataPath = "items"

	resp, err := f.engine.ImportREST(ctx, "ana", "cities", opts)
	require.NoError(t, err)
	require.Equal(t, core.ImportSuccess, resp.Status, resp.Message)

	ds, err := f.engine.GetDatasetInfo(ctx, resp.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, core.SourceAPI, ds.SourceType)
	assert.Equal(t, srv.URL, ds.SourceName)
	assert.Equal(t, 2, ds.TotalRows)

	_, err = f.engine.ImportREST(ctx, "ana", "", opts)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	opts.DataPath = "missing"
	resp, err = f.engine.ImportREST(ctx, "ana", "cities", opts)
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)
}

func TestImportDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER NOT NULL, customer TEXT, total REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders VALUES (1, 'ann', 12.5), (2, NULL, 7)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	f := setupEngine(t)
	ctx := context.Background()

	resp, err := f.engine.ImportDatabase(ctx, "ana", "orders", core.DatabaseImportOptions{
		Source: core.AdapterConfig{Type: "sqlite", Path: dbPath},
		Query:  "SELECT id, customer, total FROM orders ORDER BY id",
	})
	require.NoError(t, err)
	require.Equal(t, core.ImportSuccess, resp.Status, resp.Message)

	ds, err := f.engine.GetDatasetInfo(ctx, resp.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, core.SourceDatabase, ds.SourceType)
	assert.Equal(t, "sqlite:"+dbPath, ds.SourceName)
	require.Len(t, ds.Schema, 3)
	assert.Equal(t, core.DataTypeInt, ds.Schema[0].DataType)
	assert.Equal(t, core.DataTypeDouble, ds.Schema[2].DataType)

	resp, err = f.engine.ImportDatabase(ctx, "ana", "bad", core.DatabaseImportOptions{
		Source: core.AdapterConfig{Type: "oracle"},
		Query:  "SELECT 1",
	})
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)
	assert.Contains(t, resp.Message, "oracle")
}

func TestDescribeTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER NOT NULL, customer TEXT, total REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders VALUES (1, 'ann', 12.5), (2, NULL, 7)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	f := setupEngine(t)
	ctx := context.Background()
	src := core.AdapterConfig{Type: "sqlite", Path: dbPath}

	meta, err := f.engine.DescribeTable(ctx, src, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.RowCount)
	require.Len(t, meta.Columns, 3)
	assert.Equal(t, "customer", meta.Columns[1].Name)
	assert.True(t, meta.Columns[1].Nullable)

	_, err = f.engine.DescribeTable(ctx, src, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.engine.DescribeTable(ctx, src, " ")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = f.engine.DescribeTable(ctx, core.AdapterConfig{Type: "oracle"}, "orders")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestImportIntoDataset(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	id := f.seedSales(t)

	path := writeFile(t, "more.csv", "region,PRODUCT,amount,soldat,note\nWest,Tea,3,2024-06-01,new\nWest,Milk,,2024-06-02,\n")
	resp, err := f.engine.ImportIntoDataset(ctx, "ana", id, path)
	require.NoError(t, err)
	require.Equal(t, core.ImportSuccess, resp.Status, resp.Message)
	assert.Equal(t, id, resp.DatasetID)

	ds, err := f.engine.GetDatasetInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, ds.TotalRows)
	assert.Equal(t, core.StatusCompleted, ds.Status)

	rows, err := f.store.GetAllRows(ctx, id)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "3", rows[5]["amount"])
	assert.Equal(t, "", rows[6]["amount"])
	assert.Equal(t, "new", rows[5]["note"])
}

func TestImportIntoDataset_Failures(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	id := f.seedSales(t)

	_, err := f.engine.ImportIntoDataset(ctx, "ana", "missing", writeFile(t, "x.csv", "a\n1\n"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.engine.ImportIntoDataset(ctx, "bo", id, writeFile(t, "x.csv", "a\n1\n"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	resp, err := f.engine.ImportIntoDataset(ctx, "ana", id, writeFile(t, "partial.csv", "Region,Product\nWest,Tea\n"))
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)
	assert.Contains(t, resp.Message, "missing required columns: Amount, SoldAt")

	ds, err := f.engine.GetDatasetInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, ds.Status)
	assert.Equal(t, 5, ds.TotalRows)

	rows, err := f.store.GetAllRows(ctx, id)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestErroredDatasetIsNotQueryable(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	id := f.seedSales(t)

	resp, err := f.engine.ImportIntoDataset(ctx, "ana", id, writeFile(t, "partial.csv", "Region\nWest\n"))
	require.NoError(t, err)
	require.Equal(t, core.ImportError, resp.Status)

	_, err = f.engine.QueryData(ctx, id, core.DefaultQueryParameters())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = f.engine.DataSourceDetail(ctx, id, core.DefaultQueryParameters())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = f.engine.Aggregate(ctx, id, core.ChartAggregationRequest{CategoryField: "Region", ValueField: "Amount", Aggregation: "sum"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = f.engine.ColumnStatistics(ctx, id, "Amount")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	ds, err := f.engine.GetDatasetInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, ds.Status)
}

func TestDatasetName(t *testing.T) {
	tests := []struct {
		name, location, want string
	}{
		{"", "/data/sales.csv", "sales"},
		{"", "s3://bucket/q1/report.csv.gz", "report"},
		{"", "book.xlsx", "book"},
		{" Named ", "/data/sales.csv", "Named"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, datasetName(tt.name, tt.location))
		})
	}
}

func TestSeededRowsSurviveFailedImport(t *testing.T) {
	f := setupEngine(t)
	id := f.seedSales(t)

	logger, logs := testutil.NewRecordingLogger(t)
	eng, err := New(Config{Store: failingStore{f.store}, Logger: logger})
	require.NoError(t, err)

	resp, err := eng.ImportFile(context.Background(), "ana", "", writeFile(t, "inventory.csv", inventoryCSV))
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)

	errs := logs.Records(slog.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "import rolled back", errs[0].Message)
	assert.Equal(t, "inventory", errs[0].Attrs["name"])

	_, total, err := f.store.ListDatasets(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	ds, err := f.engine.GetDatasetInfo(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, ds.Status)
}

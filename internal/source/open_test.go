package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const salesCSV = "\ufeffregion,amount,day\nNorth,10.5,2024-01-01\nSouth,4,2024-01-02\n"

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		comp     Compression
		wantErr  bool
	}{
		{"sales.csv", FormatCSV, CompressionNone, false},
		{"SALES.CSV.GZ", FormatCSV, CompressionGzip, false},
		{"dir/sales.csv.zst", FormatCSV, CompressionZstd, false},
		{"s3://bucket/report.xlsx", FormatExcel, CompressionNone, false},
		{"notes.pdf", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, comp, err := DetectFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.comp, comp)
		})
	}
}

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(salesCSV), 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "amount", "day"}, table.Header())
	assert.Equal(t, core.DataTypeDecimal, table.Columns[1].DataType)
	assert.Equal(t, core.DataTypeDateTime, table.Columns[2].DataType)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "North", table.Rows[0]["region"])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), 100)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestRead_Compressed(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(salesCSV))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zst := enc.EncodeAll([]byte(salesCSV), nil)
	_ = enc.Close()

	tests := []struct {
		name string
		data []byte
	}{
		{"sales.csv.gz", gz.Bytes()},
		{"sales.csv.zst", zst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadBytes(tt.data, tt.name, 100)
			require.NoError(t, err)
			assert.Len(t, table.Rows, 2)
			assert.Equal(t, "region", table.Columns[0].Name)
		})
	}
}

func TestRead_CorruptGzip(t *testing.T) {
	_, err := ReadBytes([]byte("not gzip"), "sales.csv.gz", 100)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestReadExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"product", "units", "active"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Tea", 12, "true"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Coffee", 7, "false"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ReadBytes(buf.Bytes(), "stock.xlsx", 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"product", "units", "active"}, table.Header())
	assert.Equal(t, core.DataTypeInt, table.Columns[1].DataType)
	assert.Equal(t, core.DataTypeBoolean, table.Columns[2].DataType)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, true, table.Rows[0]["active"])
}

type fakeObjects struct {
	objects map[string]string
}

func (f fakeObjects) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, core.NotFoundf("object s3://%s/%s not found", bucket, key)
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func TestOpener(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(local, []byte(salesCSV), 0o600))

	opener := &Opener{Objects: fakeObjects{objects: map[string]string{"data/sales.csv": salesCSV}}}

	table, err := opener.ReadLocation(ctx, local, 100)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)

	table, err = opener.ReadLocation(ctx, "s3://data/sales.csv", 100)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)

	header, records, err := opener.RecordsAt(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "amount", "day"}, header)
	assert.Equal(t, []string{"South", "4", "2024-01-02"}, records[1])

	_, err = opener.ReadLocation(ctx, filepath.Join(dir, "missing.csv"), 100)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = opener.ReadLocation(ctx, "s3://data/missing.csv", 100)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = (&Opener{}).ReadLocation(ctx, "s3://data/sales.csv", 100)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestParseObjectURL(t *testing.T) {
	bucket, key, err := ParseObjectURL("s3://reports/2024/q1.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, "reports", bucket)
	assert.Equal(t, "2024/q1.csv.gz", key)

	for _, bad := range []string{"s3://only-bucket", "s3:///key", "http://host/key"} {
		_, _, err := ParseObjectURL(bad)
		assert.ErrorIs(t, err, core.ErrInvalidArgument, bad)
	}
}

func TestNewObjectStore_RequiresEndpoint(t *testing.T) {
	_, err := NewObjectStore(ObjectStoreConfig{})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	store, err := NewObjectStore(ObjectStoreConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b,\n1,x\n2,y,extra,more\n"), 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "Column3"}, table.Header())
	assert.Nil(t, table.Rows[0]["Column3"])
	assert.Equal(t, "extra", table.Rows[1]["Column3"])
	assert.False(t, table.Columns[2].IsRequired)
	assert.True(t, table.Columns[0].IsRequired)
}

package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/leapstack-labs/leapviz/pkg/core"
)

// Format is a supported file format.
type Format string

// Supported file formats.
const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

// Compression is a supported stream compression.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// DetectFormat derives format and compression from a file name such as
// sales.csv, sales.csv.gz or report.xlsx.
func DetectFormat(name string) (Format, Compression, error) {
	lower := strings.ToLower(path.Base(name))
	comp := CompressionNone
	switch {
	case strings.HasSuffix(lower, ".gz"):
		comp = CompressionGzip
		lower = strings.TrimSuffix(lower, ".gz")
	case strings.HasSuffix(lower, ".zst"):
		comp = CompressionZstd
		lower = strings.TrimSuffix(lower, ".zst")
	}

	switch ext := path.Ext(lower); ext {
	case ".csv", ".txt":
		return FormatCSV, comp, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, comp, nil
	default:
		return "", "", core.InvalidArgumentf("unsupported file type: %s", ext)
	}
}

// Decompress wraps r according to comp. The returned closer releases the
// decoder; it does not close r.
func Decompress(r io.Reader, comp Compression) (io.Reader, func(), error) {
	switch comp {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, core.Wrap(core.KindInvalidArgument, err, "invalid gzip stream")
		}
		return gz, func() { _ = gz.Close() }, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, core.Wrap(core.KindInvalidArgument, err, "invalid zstd stream")
		}
		return zr, zr.Close, nil
	}
	return r, func() {}, nil
}

// Records reads the header and raw text records of a file stream named name.
func Records(r io.Reader, name string) (header []string, records [][]string, err error) {
	format, comp, err := DetectFormat(name)
	if err != nil {
		return nil, nil, err
	}

	dr, release, err := Decompress(bufio.NewReader(r), comp)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	if format == FormatExcel {
		return ReadExcelRecords(dr)
	}
	return ReadCSVRecords(dr)
}

// Read parses a file stream named name and infers its schema.
func Read(r io.Reader, name string, sampleSize int) (*Table, error) {
	header, records, err := Records(r, name)
	if err != nil {
		return nil, err
	}
	return BuildTable(header, records, sampleSize)
}

// Opener resolves import locations: local paths or s3:// objects.
type Opener struct {
	Objects ObjectGetter
}

// Open returns a reader for location. Callers close it.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if IsObjectURL(location) {
		if o == nil || o.Objects == nil {
			return nil, core.InvalidArgumentf("no object store configured for %s", location)
		}
		bucket, key, err := ParseObjectURL(location)
		if err != nil {
			return nil, err
		}
		return o.Objects.GetObject(ctx, bucket, key)
	}

	f, err := os.Open(location) //nolint:gosec // user-supplied import path
	if os.IsNotExist(err) {
		return nil, core.NotFoundf("file %s not found", location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", location, err)
	}
	return f, nil
}

// ReadLocation opens and parses location.
func (o *Opener) ReadLocation(ctx context.Context, location string, sampleSize int) (*Table, error) {
	rc, err := o.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return Read(rc, location, sampleSize)
}

// RecordsAt opens location and returns its header and raw records.
func (o *Opener) RecordsAt(ctx context.Context, location string) ([]string, [][]string, error) {
	rc, err := o.Open(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rc.Close() }()
	return Records(rc, location)
}

// ReadBytes parses an in-memory file, e.g. an upload.
func ReadBytes(data []byte, name string, sampleSize int) (*Table, error) {
	return Read(bytes.NewReader(data), name, sampleSize)
}

package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// ReadCSVRecords reads a header row and all data records.
// Ragged rows are accepted; a header-only file yields no records.
func ReadCSVRecords(r io.Reader) (header []string, records [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err = cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, core.InvalidArgumentf("file is empty")
	}
	if err != nil {
		return nil, nil, core.Wrap(core.KindInvalidArgument, err, "failed to read CSV header")
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, core.Wrap(core.KindInvalidArgument, err, fmt.Sprintf("failed to read CSV record %d", len(records)+1))
		}
		records = append(records, rec)
	}
	return header, records, nil
}

// ReadCSV reads a CSV stream and infers its schema from the first
// sampleSize records.
func ReadCSV(r io.Reader, sampleSize int) (*Table, error) {
	header, records, err := ReadCSVRecords(r)
	if err != nil {
		return nil, err
	}
	return BuildTable(header, records, sampleSize)
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

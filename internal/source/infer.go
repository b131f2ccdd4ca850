package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// typeOrder is tried in order; the first type every non-empty sample value
// parses as wins.
var typeOrder = []core.DataType{
	core.DataTypeInt,
	core.DataTypeLong,
	core.DataTypeDecimal,
	core.DataTypeDouble,
	core.DataTypeDateTime,
	core.DataTypeBoolean,
}

func parses(dt core.DataType, s string) bool {
	switch dt {
	case core.DataTypeInt:
		n, ok := value.ParseInt(s)
		return ok && n >= math.MinInt32 && n <= math.MaxInt32
	case core.DataTypeLong:
		_, ok := value.ParseInt(s)
		return ok
	case core.DataTypeDecimal:
		_, ok := value.ParseDecimal(s)
		return ok
	case core.DataTypeDouble:
		_, ok := value.ParseDouble(s)
		return ok
	case core.DataTypeDateTime:
		_, ok := value.ParseTime(s)
		return ok
	case core.DataTypeBoolean:
		_, ok := value.ParseBool(s)
		return ok
	}
	return true
}

// DetermineType picks the narrowest type every non-empty value parses as.
// All-empty samples are strings.
func DetermineType(values []string) core.DataType {
	var present []string
	for _, v := range values {
		if v != "" {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return core.DataTypeString
	}

next:
	for _, dt := range typeOrder {
		for _, v := range present {
			if !parses(dt, v) {
				continue next
			}
		}
		return dt
	}
	return core.DataTypeString
}

// InferSchema builds columns from a header and the first sampleSize records.
// A column is required when no sampled value is empty. Empty header cells
// become Column<n> (1-based).
func InferSchema(header []string, records [][]string, sampleSize int) []core.Column {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	sample := records
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	cols := make([]core.Column, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}

		values := make([]string, len(sample))
		required := true
		for j, rec := range sample {
			if i < len(rec) {
				values[j] = rec[i]
			}
			if values[j] == "" {
				required = false
			}
		}

		cols[i] = core.Column{
			Name:        name,
			DisplayName: name,
			DataType:    DetermineType(values),
			IsRequired:  required,
			Order:       i,
		}
	}
	return cols
}

// ConvertValue converts raw text to the stored form for a column type.
// Empty text and text that does not parse become nil. Numbers are kept as
// json.Number so no precision is lost on the way to storage.
func ConvertValue(raw string, dt core.DataType) any {
	if raw == "" {
		return nil
	}
	switch dt {
	case core.DataTypeInt, core.DataTypeLong:
		if !parses(dt, raw) {
			return nil
		}
		n, _ := value.ParseInt(raw)
		return json.Number(strconv.FormatInt(n, 10))
	case core.DataTypeDecimal:
		d, ok := value.ParseDecimal(raw)
		if !ok {
			return nil
		}
		return json.Number(value.Decimal(d).String())
	case core.DataTypeDouble:
		f, ok := value.ParseDouble(raw)
		if !ok {
			return nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
	case core.DataTypeDateTime:
		t, ok := value.ParseTime(raw)
		if !ok {
			return nil
		}
		return t.Format(time.RFC3339Nano)
	case core.DataTypeBoolean:
		b, ok := value.ParseBool(raw)
		if !ok {
			return nil
		}
		return b
	}
	return raw
}

// BuildTable infers a schema from header and records and converts every
// record against it. Short records leave the missing fields null.
func BuildTable(header []string, records [][]string, sampleSize int) (*Table, error) {
	cols := InferSchema(header, records, sampleSize)
	if err := core.ValidateSchema(cols); err != nil {
		return nil, err
	}

	rows := make([]core.Row, len(records))
	for i, rec := range records {
		row := make(core.Row, len(cols))
		for j, c := range cols {
			raw := ""
			if j < len(rec) {
				raw = rec[j]
			}
			row[c.Name] = ConvertValue(raw, c.DataType)
		}
		rows[i] = row
	}
	return &Table{Columns: cols, Rows: rows}, nil
}

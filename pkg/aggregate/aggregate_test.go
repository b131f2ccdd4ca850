package aggregate

import (
	"testing"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salesSchema = []core.Column{
	{Name: "city", DataType: core.DataTypeString, Order: 0},
	{Name: "sales", DataType: core.DataTypeDecimal, Order: 1},
	{Name: "date", DataType: core.DataTypeDateTime, Order: 2},
	{Name: "channel", DataType: core.DataTypeString, Order: 3},
}

func mustSpec(t *testing.T, req core.ChartAggregationRequest) Spec {
	t.Helper()
	spec, err := Validate(req, salesSchema)
	require.NoError(t, err)
	return spec
}

func TestRun_SumSkipsNulls(t *testing.T) {
	rows := []core.Row{
		{"city": "Hanoi", "sales": "10"},
		{"city": "Hue", "sales": "20"},
		{"city": "Hanoi", "sales": nil},
	}
	res := Run(rows, mustSpec(t, core.ChartAggregationRequest{CategoryField: "city", ValueField: "sales", Aggregation: "sum"}))

	assert.Equal(t, []string{"Hanoi", "Hue"}, res.Categories)
	assert.Equal(t, []float64{10, 20}, res.Values)
	assert.Nil(t, res.Series)
}

func TestRun_Methods(t *testing.T) {
	rows := []core.Row{
		{"city": "A", "sales": "4"},
		{"city": "A", "sales": "8"},
		{"city": "A", "sales": "n/a"},
		{"city": "A", "sales": true},
		{"city": "B", "sales": "word"},
		{"city": nil, "sales": "1"},
	}
	tests := []struct {
		method string
		want   []float64
	}{
		{"sum", []float64{13, 0, 1}},
		{"AVG", []float64{13.0 / 3, 0, 1}},
		{"count", []float64{4, 1, 1}},
		{"min", []float64{1, 0, 1}},
		{"max", []float64{8, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			res := Run(rows, mustSpec(t, core.ChartAggregationRequest{CategoryField: "city", ValueField: "sales", Aggregation: tt.method}))
			assert.Equal(t, []string{"A", "B", UnknownKey}, res.Categories)
			assert.InDeltaSlice(t, tt.want, res.Values, 1e-9)
		})
	}
}

func TestRun_CountIgnoresCoercion(t *testing.T) {
	rows := []core.Row{
		{"city": "X", "channel": "web"},
		{"city": "X", "channel": "store"},
		{"city": "X", "channel": nil},
	}
	res := Run(rows, mustSpec(t, core.ChartAggregationRequest{CategoryField: "city", ValueField: "channel", Aggregation: "count"}))
	assert.Equal(t, []float64{2}, res.Values)
}

func TestRun_SeriesMatrixFillsZero(t *testing.T) {
	rows := []core.Row{
		{"city": "Hue", "channel": "web", "sales": "5"},
		{"city": "Hanoi", "channel": "store", "sales": "7"},
		{"city": "Hanoi", "channel": "web", "sales": "3"},
		{"city": "Hanoi", "channel": "web", "sales": "1"},
	}
	res := Run(rows, mustSpec(t, core.ChartAggregationRequest{
		CategoryField: "city", ValueField: "sales", SeriesField: "channel", Aggregation: "sum",
	}))

	assert.Equal(t, []string{"Hanoi", "Hue"}, res.Categories)
	require.Len(t, res.Series, 2)
	assert.Equal(t, core.ChartSeries{Name: "store", Data: []float64{7, 0}}, res.Series[0])
	assert.Equal(t, core.ChartSeries{Name: "web", Data: []float64{4, 5}}, res.Series[1])
	assert.Nil(t, res.Values)
}

func TestRun_FiltersBeforeBucketing(t *testing.T) {
	rows := []core.Row{
		{"date": "2024-01-15", "sales": "1"},
		{"date": "2024-02-20", "sales": "2"},
		{"date": "2024-02-21", "sales": "3"},
		{"date": "not a date", "sales": "4"},
	}
	res := Run(rows, mustSpec(t, core.ChartAggregationRequest{
		CategoryField: "date", ValueField: "sales", Aggregation: "sum", TimeInterval: "Month",
		Filters: []core.ChartFilter{{Field: "date", Operator: "gte", Value: "2024-02-01"}},
	}))

	// "not a date" survives the filter via ordinal string comparison and is passed through unbucketed.
	assert.Equal(t, []string{"2024-02", "not a date"}, res.Categories)
	assert.Equal(t, []float64{5, 4}, res.Values)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     core.ChartAggregationRequest
		wantErr string
	}{
		{"unknown category", core.ChartAggregationRequest{CategoryField: "region", ValueField: "sales", Aggregation: "sum"}, "category field 'region'"},
		{"unknown value", core.ChartAggregationRequest{CategoryField: "city", ValueField: "qty", Aggregation: "sum"}, "value field 'qty'"},
		{"unknown series", core.ChartAggregationRequest{CategoryField: "city", ValueField: "sales", SeriesField: "x", Aggregation: "sum"}, "series field 'x'"},
		{"bad method", core.ChartAggregationRequest{CategoryField: "city", ValueField: "sales", Aggregation: "median"}, "invalid aggregation method"},
		{"bad interval", core.ChartAggregationRequest{CategoryField: "date", ValueField: "sales", Aggregation: "sum", TimeInterval: "hour"}, "invalid time interval"},
		{"bad filter", core.ChartAggregationRequest{CategoryField: "city", ValueField: "sales", Aggregation: "sum", Filters: []core.ChartFilter{{Field: "city", Operator: "~"}}}, "unknown filter operator"},
		{"missing category", core.ChartAggregationRequest{ValueField: "sales", Aggregation: "sum"}, "categoryField is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.req, salesSchema)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
		})
	}
}

func TestLabel(t *testing.T) {
	d := time.Date(2024, time.August, 7, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-08-07", Label(d, Day))
	assert.Equal(t, "2024-W32", Label(d, Week))
	assert.Equal(t, "2024-08", Label(d, Month))
	assert.Equal(t, "2024-Q3", Label(d, Quarter))
	assert.Equal(t, "2024", Label(d, Year))
}

func TestWeekOfYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-01-01", 1},  // Monday
		{"2021-01-01", 53}, // Friday, belongs to 2020's last week
		{"2020-12-31", 53},
		{"2019-12-30", 53}, // ISO puts this in 2020-W01
		{"2023-01-01", 52}, // Sunday
		{"2023-01-02", 1},
		{"2015-12-31", 53},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, WeekOfYear(d))
		})
	}
}

func TestBucket_PassThrough(t *testing.T) {
	assert.Nil(t, Bucket(nil, Week))
	assert.Equal(t, "soon", Bucket("soon", Year))
	assert.Equal(t, "2024-Q1", Bucket("2024-03-31", Quarter))
	assert.Equal(t, "2024-03-31", Bucket("2024-03-31", NoInterval))
}

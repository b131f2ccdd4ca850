// Package aggregate groups dataset rows by category and optional series and
// reduces a value field, with optional time bucketing of the category.
package aggregate

import (
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/query"
)

// Method is a reduction over a group's values.
type Method string

// Reductions.
const (
	Sum   Method = "sum"
	Avg   Method = "avg"
	Count Method = "count"
	Min   Method = "min"
	Max   Method = "max"
)

// ParseMethod maps a case-insensitive name onto a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case Sum, Avg, Count, Min, Max:
		return m, nil
	}
	return "", core.InvalidArgumentf("invalid aggregation method: %s", s)
}

// Interval is a time bucket applied to the category field.
type Interval string

// Buckets. NoInterval leaves the category untouched.
const (
	NoInterval Interval = ""
	Day        Interval = "day"
	Week       Interval = "week"
	Month      Interval = "month"
	Quarter    Interval = "quarter"
	Year       Interval = "year"
)

// ParseInterval maps a case-insensitive name onto an Interval. Empty is NoInterval.
func ParseInterval(s string) (Interval, error) {
	switch iv := Interval(strings.ToLower(strings.TrimSpace(s))); iv {
	case NoInterval, Day, Week, Month, Quarter, Year:
		return iv, nil
	}
	return "", core.InvalidArgumentf("invalid time interval: %s", s)
}

// Spec is a validated aggregation request.
type Spec struct {
	CategoryField string
	ValueField    string
	SeriesField   string
	Method        Method
	Interval      Interval
	Filters       []query.Condition
}

// Validate checks a request against the dataset schema. Fields must be
// declared columns; method and interval must be known. Every failure is
// InvalidArgument.
func Validate(req core.ChartAggregationRequest, schema []core.Column) (Spec, error) {
	declared := make(map[string]bool, len(schema))
	for _, c := range schema {
		declared[c.Name] = true
	}

	if req.CategoryField == "" {
		return Spec{}, core.InvalidArgumentf("categoryField is required")
	}
	if !declared[req.CategoryField] {
		return Spec{}, core.InvalidArgumentf("category field '%s' not found in dataset", req.CategoryField)
	}
	if req.ValueField == "" {
		return Spec{}, core.InvalidArgumentf("valueField is required")
	}
	if !declared[req.ValueField] {
		return Spec{}, core.InvalidArgumentf("value field '%s' not found in dataset", req.ValueField)
	}
	if req.SeriesField != "" && !declared[req.SeriesField] {
		return Spec{}, core.InvalidArgumentf("series field '%s' not found in dataset", req.SeriesField)
	}

	method, err := ParseMethod(req.Aggregation)
	if err != nil {
		return Spec{}, err
	}
	interval, err := ParseInterval(req.TimeInterval)
	if err != nil {
		return Spec{}, err
	}
	filters, err := query.Compile(req.Filters)
	if err != nil {
		return Spec{}, err
	}

	return Spec{
		CategoryField: req.CategoryField,
		ValueField:    req.ValueField,
		SeriesField:   req.SeriesField,
		Method:        method,
		Interval:      interval,
		Filters:       filters,
	}, nil
}

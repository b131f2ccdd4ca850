package aggregate

import (
	"sort"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/query"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// UnknownKey labels groups whose key field is missing or null.
const UnknownKey = "Unknown"

// group accumulates the non-null values of one group.
type group struct {
	count   int
	numbers []float64
}

func (g *group) add(raw any) {
	if raw == nil {
		return
	}
	g.count++
	if f, ok := value.ToDouble(raw); ok {
		g.numbers = append(g.numbers, f)
	}
}

func (g *group) reduce(m Method) float64 {
	if g == nil {
		return 0
	}
	if m == Count {
		return float64(g.count)
	}
	if len(g.numbers) == 0 {
		return 0
	}
	switch m {
	case Sum, Avg:
		var total float64
		for _, f := range g.numbers {
			total += f
		}
		if m == Avg {
			return total / float64(len(g.numbers))
		}
		return total
	case Min:
		out := g.numbers[0]
		for _, f := range g.numbers[1:] {
			out = min(out, f)
		}
		return out
	case Max:
		out := g.numbers[0]
		for _, f := range g.numbers[1:] {
			out = max(out, f)
		}
		return out
	}
	return 0
}

func keyOf(row core.Row, field string) string {
	raw, _ := row.Get(field)
	return value.TextOr(raw, UnknownKey)
}

// Run filters, buckets, groups, and reduces rows according to spec.
func Run(rows []core.Row, spec Spec) core.ChartAggregationResponse {
	rows = query.Apply(rows, spec.Filters)
	rows = BucketRows(rows, spec.CategoryField, spec.Interval)

	if spec.SeriesField == "" {
		return byCategory(rows, spec)
	}
	return byCategoryAndSeries(rows, spec)
}

func byCategory(rows []core.Row, spec Spec) core.ChartAggregationResponse {
	groups := make(map[string]*group)
	for _, row := range rows {
		k := keyOf(row, spec.CategoryField)
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
		}
		raw, _ := row.Get(spec.ValueField)
		g.add(raw)
	}

	categories := sortedKeys(groups)
	values := make([]float64, len(categories))
	for i, c := range categories {
		values[i] = groups[c].reduce(spec.Method)
	}
	return core.ChartAggregationResponse{Categories: categories, Values: values}
}

type pair struct{ category, series string }

func byCategoryAndSeries(rows []core.Row, spec Spec) core.ChartAggregationResponse {
	groups := make(map[pair]*group)
	categorySet := make(map[string]struct{})
	seriesSet := make(map[string]struct{})

	for _, row := range rows {
		p := pair{keyOf(row, spec.CategoryField), keyOf(row, spec.SeriesField)}
		categorySet[p.category] = struct{}{}
		seriesSet[p.series] = struct{}{}
		g, ok := groups[p]
		if !ok {
			g = &group{}
			groups[p] = g
		}
		raw, _ := row.Get(spec.ValueField)
		g.add(raw)
	}

	categories := sortedKeys(categorySet)
	names := sortedKeys(seriesSet)

	series := make([]core.ChartSeries, len(names))
	for i, name := range names {
		data := make([]float64, len(categories))
		for j, c := range categories {
			data[j] = groups[pair{c, name}].reduce(spec.Method)
		}
		series[i] = core.ChartSeries{Name: name, Data: data}
	}
	return core.ChartAggregationResponse{Categories: categories, Series: series}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

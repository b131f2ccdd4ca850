// Package stats computes per-column statistics and value distributions.
package stats

import (
	"slices"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// NullText is the text form of a null value. A stored string equal to it
// also counts as null.
const NullText = "null"

// DistributionSize is the number of entries kept in a distribution.
const DistributionSize = 10

// Column computes statistics for one column. Every row counts towards
// TotalValues; only rows carrying the key contribute to the other figures.
// The distribution is the DistributionSize most frequent values, ties in
// first-encounter order.
func Column(rows []core.Row, column string) (core.ColumnStatistics, []core.DistributionEntry) {
	st := core.ColumnStatistics{TotalValues: len(rows)}

	counts := make(map[string]int)
	var order []string
	var numbers []float64

	for _, row := range rows {
		raw, ok := row.Get(column)
		if !ok {
			continue
		}
		text := value.TextOr(raw, NullText)
		if text == NullText {
			st.NullCount++
		}
		if _, seen := counts[text]; !seen {
			order = append(order, text)
		}
		counts[text]++

		if f, ok := value.ParseDouble(text); ok {
			numbers = append(numbers, f)
		}
	}

	st.UniqueCount = len(counts)

	if len(numbers) > 0 {
		lo, hi, total := numbers[0], numbers[0], 0.0
		for _, f := range numbers {
			lo = min(lo, f)
			hi = max(hi, f)
			total += f
		}
		avg := total / float64(len(numbers))
		st.Min, st.Max, st.Average = &lo, &hi, &avg
	}

	entries := make([]core.DistributionEntry, len(order))
	for i, text := range order {
		entries[i] = core.DistributionEntry{Value: text, Count: counts[text]}
	}
	slices.SortStableFunc(entries, func(a, b core.DistributionEntry) int {
		return b.Count - a.Count
	})

	if len(entries) > 0 {
		top := entries[0].Value
		st.MostCommonValue = &top
		st.MostCommonCount = entries[0].Count
	}
	if len(entries) > DistributionSize {
		entries = entries[:DistributionSize]
	}
	return st, entries
}

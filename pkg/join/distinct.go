package join

import (
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// Equal reports structural row equality: the same key set, and for every key
// either both values are null or their text forms are equal.
func Equal(a, b core.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		at, aok := value.Text(av)
		bt, bok := value.Text(bv)
		if aok != bok || at != bt {
			return false
		}
	}
	return true
}

// Distinct keeps the first occurrence of each structurally equal row.
// It compares every pair, O(n^2), so multiplicity and order match a
// first-wins linear scan.
func Distinct(rows []core.Row) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for _, row := range rows {
		dup := false
		for _, kept := range out {
			if Equal(row, kept) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, row)
		}
	}
	return out
}

package query

import (
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// Condition is a compiled filter predicate.
type Condition struct {
	Field string
	Op    Operator
	Value string
}

// Compile validates every filter before any row is scanned.
func Compile(filters []core.FilterParameter) ([]Condition, error) {
	conds := make([]Condition, 0, len(filters))
	for _, f := range filters {
		if f.Field == "" {
			return nil, core.InvalidArgumentf("filter field is required")
		}
		op, err := ParseOperator(f.Operator)
		if err != nil {
			return nil, err
		}
		conds = append(conds, Condition{Field: f.Field, Op: op, Value: f.Value})
	}
	return conds, nil
}

// Matches reports whether the row satisfies every condition.
// A missing or null field fails the row.
func Matches(row core.Row, conds []Condition) bool {
	for _, c := range conds {
		raw, ok := row.Get(c.Field)
		if !ok {
			return false
		}
		text, ok := value.Text(raw)
		if !ok {
			return false
		}
		if !c.Op.Evaluate(text, c.Value) {
			return false
		}
	}
	return true
}

// Apply keeps the rows matching all conditions, in order.
func Apply(rows []core.Row, conds []Condition) []core.Row {
	if len(conds) == 0 {
		return rows
	}
	out := make([]core.Row, 0, len(rows))
	for _, row := range rows {
		if Matches(row, conds) {
			out = append(out, row)
		}
	}
	return out
}

// Filter compiles and applies filters in one step.
func Filter(rows []core.Row, filters []core.FilterParameter) ([]core.Row, error) {
	conds, err := Compile(filters)
	if err != nil {
		return nil, err
	}
	return Apply(rows, conds), nil
}

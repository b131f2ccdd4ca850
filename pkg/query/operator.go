// Package query filters, sorts, and pages dataset rows in memory.
package query

import (
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// Operator is a closed set of comparison operators.
type Operator int

// Supported operators.
const (
	OpEq Operator = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpContains
	OpStartsWith
	OpEndsWith
)

var operatorNames = map[string]Operator{
	"eq":         OpEq,
	"neq":        OpNeq,
	"gt":         OpGt,
	"gte":        OpGte,
	"lt":         OpLt,
	"lte":        OpLte,
	"contains":   OpContains,
	"startswith": OpStartsWith,
	"endswith":   OpEndsWith,
}

func (o Operator) String() string {
	for name, op := range operatorNames {
		if op == o {
			return name
		}
	}
	return "unknown"
}

// ParseOperator maps a case-insensitive operator name onto an Operator.
// Unknown names fail with InvalidArgument.
func ParseOperator(s string) (Operator, error) {
	if op, ok := operatorNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return 0, core.InvalidArgumentf("unknown filter operator: %q", s)
}

// Ordering reports whether the operator compares by order rather than by substring.
func (o Operator) Ordering() bool {
	return o <= OpLte
}

// Holds applies the operator to a three-way comparison result.
func (o Operator) Holds(c int) bool {
	switch o {
	case OpEq:
		return c == 0
	case OpNeq:
		return c != 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	}
	return false
}

// Match reports whether a matches b under o for substring operators.
func (o Operator) Match(a, b string) bool {
	switch o {
	case OpContains:
		return strings.Contains(a, b)
	case OpStartsWith:
		return strings.HasPrefix(a, b)
	case OpEndsWith:
		return strings.HasSuffix(a, b)
	}
	return false
}

// Evaluate compares two texts at their shared cascade level.
// Substring operators work on the canonical text of the coerced values.
func (o Operator) Evaluate(left, right string) bool {
	l, r := value.Unify(left, right)
	if o.Ordering() {
		return o.Holds(value.Compare(l, r))
	}
	return o.Match(l.String(), r.String())
}

// Package join merges the rows of two datasets with nested-loop joins.
//
// Matching compares the text form of each key pair; there is no hash join
// and no index, so every mode except cross costs O(|left| x |right|) predicate
// evaluations. Duplicate keys therefore expand exactly as a relational
// nested loop would.
package join

import (
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/query"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// Column prefixes for merged rows and schemas.
const (
	LeftPrefix  = "Left_"
	RightPrefix = "Right_"
)

// Condition is a compiled join predicate.
type Condition struct {
	Left  string
	Right string
	Op    query.Operator
}

// Compile validates join conditions. An empty operator means eq.
func Compile(conds []core.JoinCondition) ([]Condition, error) {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.LeftColumn == "" || c.RightColumn == "" {
			return nil, core.InvalidArgumentf("join condition requires both leftColumn and rightColumn")
		}
		op := query.OpEq
		if strings.TrimSpace(c.Operator) != "" {
			var err error
			if op, err = query.ParseOperator(c.Operator); err != nil {
				return nil, err
			}
		}
		out = append(out, Condition{Left: c.LeftColumn, Right: c.RightColumn, Op: op})
	}
	return out, nil
}

// keyText is the join-side text of a field. Missing and null are "".
func keyText(row core.Row, field string) string {
	raw, _ := row.Get(field)
	return value.TextOr(raw, "")
}

// evaluate compares plain strings; join matching does not run the value cascade.
func evaluate(op query.Operator, a, b string) bool {
	if op.Ordering() {
		return op.Holds(strings.Compare(a, b))
	}
	return op.Match(a, b)
}

// Matches reports whether a left and right row satisfy every condition.
func Matches(left, right core.Row, conds []Condition) bool {
	for _, c := range conds {
		if !evaluate(c.Op, keyText(left, c.Left), keyText(right, c.Right)) {
			return false
		}
	}
	return true
}

func combine(left, right core.Row) core.Row {
	out := make(core.Row, len(left)+len(right))
	for k, v := range left {
		out[LeftPrefix+k] = v
	}
	for k, v := range right {
		out[RightPrefix+k] = v
	}
	return out
}

// Merge joins left and right under conds. Unmatched outer rows carry only
// their own side's keys; conds are ignored for cross joins.
func Merge(left, right []core.Row, conds []Condition, mode core.MergeType) ([]core.Row, error) {
	switch mode {
	case core.MergeInner, "":
		return inner(left, right, conds), nil
	case core.MergeLeft:
		return leftOuter(left, right, conds), nil
	case core.MergeRight:
		return rightOuter(left, right, conds), nil
	case core.MergeFull:
		return Distinct(append(leftOuter(left, right, conds), rightOuter(left, right, conds)...)), nil
	case core.MergeCross:
		return cross(left, right), nil
	}
	return nil, core.InvalidArgumentf("invalid merge type: %s", mode)
}

func inner(left, right []core.Row, conds []Condition) []core.Row {
	var out []core.Row
	for _, l := range left {
		for _, r := range right {
			if Matches(l, r, conds) {
				out = append(out, combine(l, r))
			}
		}
	}
	return out
}

func leftOuter(left, right []core.Row, conds []Condition) []core.Row {
	var out []core.Row
	for _, l := range left {
		matched := false
		for _, r := range right {
			if Matches(l, r, conds) {
				out = append(out, combine(l, r))
				matched = true
			}
		}
		if !matched {
			out = append(out, combine(l, nil))
		}
	}
	return out
}

func rightOuter(left, right []core.Row, conds []Condition) []core.Row {
	var out []core.Row
	for _, r := range right {
		matched := false
		for _, l := range left {
			if Matches(l, r, conds) {
				out = append(out, combine(l, r))
				matched = true
			}
		}
		if !matched {
			out = append(out, combine(nil, r))
		}
	}
	return out
}

func cross(left, right []core.Row) []core.Row {
	out := make([]core.Row, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, combine(l, r))
		}
	}
	return out
}

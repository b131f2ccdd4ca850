package query

import (
	"slices"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// CreatedAtField is the row field used for the default detail ordering.
const CreatedAtField = "CreatedAt"

// IsAscending reports whether a sort direction means ascending.
// Empty and "asc" are ascending; anything else is descending.
func IsAscending(direction string) bool {
	return direction == "" || strings.EqualFold(direction, "asc")
}

// SortKey extracts the cascaded sort key of field. Missing keys are null.
func SortKey(row core.Row, field string) value.Value {
	raw, ok := row.Get(field)
	if !ok {
		return value.Null()
	}
	return value.FromAny(raw)
}

// Sort orders rows by one field, stably, in place. Null keys stay first in
// both directions; only non-null keys are reversed by descending order.
func Sort(rows []core.Row, field, direction string) {
	asc := IsAscending(direction)

	type keyed struct {
		row core.Row
		key value.Value
	}
	tmp := make([]keyed, len(rows))
	for i, row := range rows {
		tmp[i] = keyed{row: row, key: SortKey(row, field)}
	}

	slices.SortStableFunc(tmp, func(a, b keyed) int {
		an, bn := a.key.IsNull(), b.key.IsNull()
		switch {
		case an && bn:
			return 0
		case an:
			return -1
		case bn:
			return 1
		}
		c := value.Compare(a.key, b.key)
		if !asc {
			c = -c
		}
		return c
	})

	for i := range tmp {
		rows[i] = tmp[i].row
	}
}

// SortByTimeDesc orders rows newest first by a date field, stably, in place.
// Missing or unparseable dates count as the zero time.
func SortByTimeDesc(rows []core.Row, field string) {
	type keyed struct {
		row core.Row
		at  time.Time
	}
	tmp := make([]keyed, len(rows))
	for i, row := range rows {
		tmp[i].row = row
		if raw, ok := row.Get(field); ok {
			if text, ok := value.Text(raw); ok {
				if t, ok := value.ParseTime(text); ok {
					tmp[i].at = t
				}
			}
		}
	}
	slices.SortStableFunc(tmp, func(a, b keyed) int {
		return b.at.Compare(a.at)
	})
	for i := range tmp {
		rows[i] = tmp[i].row
	}
}

package aggregate

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// Label renders the bucket label of t.
func Label(t time.Time, iv Interval) string {
	switch iv {
	case Day:
		return t.Format("2006-01-02")
	case Week:
		return fmt.Sprintf("%d-W%d", t.Year(), WeekOfYear(t))
	case Month:
		return t.Format("2006-01")
	case Quarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case Year:
		return t.Format("2006")
	}
	return t.Format(time.RFC3339)
}

// WeekOfYear numbers weeks starting Monday, where week 1 is the first week
// with at least four days in the year. Days before week 1 take the number
// of the previous year's last week, and late-December days stay in the
// current year (week 53 rather than the next year's week 1).
func WeekOfYear(t time.Time) int {
	const firstDay = int(time.Monday)
	const fullDays = 4

	dayOfYear := t.YearDay() - 1
	dayOfWeek := int(t.Weekday()) - dayOfYear%7
	offset := (firstDay - dayOfWeek + 14) % 7
	if offset != 0 && offset >= fullDays {
		offset -= 7
	}
	if day := dayOfYear - offset; day >= 0 {
		return day/7 + 1
	}
	return WeekOfYear(t.AddDate(0, 0, -(dayOfYear + 1)))
}

// Bucket rewrites a raw category value to its bucket label. Values that are
// null or do not parse as dates pass through unchanged.
func Bucket(raw any, iv Interval) any {
	if iv == NoInterval {
		return raw
	}
	text, ok := value.Text(raw)
	if !ok {
		return raw
	}
	t, ok := value.ParseTime(text)
	if !ok {
		return raw
	}
	return Label(t, iv)
}

// BucketRows returns copies of rows with field rewritten to bucket labels.
func BucketRows(rows []core.Row, field string, iv Interval) []core.Row {
	if iv == NoInterval {
		return rows
	}
	out := make([]core.Row, len(rows))
	for i, row := range rows {
		raw, ok := row.Get(field)
		if !ok {
			out[i] = row
			continue
		}
		c := row.Clone()
		c[field] = Bucket(raw, iv)
		out[i] = c
	}
	return out
}

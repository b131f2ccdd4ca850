package join

import (
	"fmt"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// MergeSchema prefixes the left columns, then the right columns, each in
// their original order, and renumbers Order densely.
func MergeSchema(leftName string, left []core.Column, rightName string, right []core.Column) []core.Column {
	out := make([]core.Column, 0, len(left)+len(right))
	add := func(prefix, dataset string, cols []core.Column) {
		for _, c := range cols {
			display := c.DisplayName
			if display == "" {
				display = c.Name
			}
			out = append(out, core.Column{
				Name:        prefix + c.Name,
				DisplayName: fmt.Sprintf("%s.%s", dataset, display),
				DataType:    c.DataType,
				IsRequired:  c.IsRequired,
				Description: fmt.Sprintf("From %s: %s", dataset, c.Description),
				Order:       len(out),
			})
		}
	}
	add(LeftPrefix, leftName, left)
	add(RightPrefix, rightName, right)
	return out
}

// SourceName describes a merged dataset's origin.
func SourceName(leftName, rightName string) string {
	return fmt.Sprintf("Merged from %s and %s", leftName, rightName)
}

// Package source reads external data into a schema plus rows ready for
// import: delimited and Excel files (optionally compressed or stored in an
// S3-compatible bucket), REST endpoints returning JSON, and SQL queries run
// through a registered adapter.
package source

import (
	"github.com/leapstack-labs/leapviz/pkg/core"
)

// DefaultSampleSize is how many leading records drive column type inference.
const DefaultSampleSize = 100

// Table is an imported schema with its converted rows.
type Table struct {
	Columns []core.Column
	Rows    []core.Row
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

package query

import (
	"github.com/leapstack-labs/leapviz/pkg/core"
)

// Run filters, sorts, and pages rows. When SortBy is empty the input order
// is kept. The input slice is not modified.
func Run(rows []core.Row, params core.QueryParameters, defaultSize int) (core.QueryResult, error) {
	page, size := Clamp(params.Page, params.PageSize, defaultSize)

	filtered, err := Filter(rows, params.Filters)
	if err != nil {
		return core.QueryResult{}, err
	}
	if len(params.Filters) == 0 {
		filtered = append([]core.Row(nil), rows...)
	}

	if params.SortBy != "" {
		Sort(filtered, params.SortBy, params.SortDirection)
	}

	return Paginate(filtered, page, size), nil
}

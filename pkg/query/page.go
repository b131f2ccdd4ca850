package query

import (
	"math"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// Clamp normalizes paging input: page below 1 becomes 1, size below 1 becomes
// defaultSize, and size above core.MaxPageSize becomes core.MaxPageSize.
func Clamp(page, size, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > core.MaxPageSize {
		size = core.MaxPageSize
	}
	return page, size
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Offset is the index of the first item on page, saturating at math.MaxInt
// instead of overflowing.
func Offset(page, size int) int {
	if page < 1 || size < 1 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// Window returns the [start, end) bounds of a page over n items. Pages past
// the end yield (n, n).
func Window(n, page, size int) (int, int) {
	if size < 1 || page-1 > n/size {
		return n, n
	}
	start := Offset(page, size)
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}

// Paginate slices an already filtered and ordered row list.
// Page and size must already be clamped.
func Paginate(rows []core.Row, page, size int) core.QueryResult {
	start, end := Window(len(rows), page, size)
	items := make([]core.Row, end-start)
	copy(items, rows[start:end])
	return core.QueryResult{
		Items:      items,
		TotalCount: len(rows),
		Page:       page,
		PageSize:   size,
		TotalPages: TotalPages(len(rows), size),
	}
}

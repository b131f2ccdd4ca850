// Package state persists datasets, their schemas and their rows in SQLite.
//
// SQLiteStore implements core.RowStore. All writes go through a unit of work
// backed by one transaction, so a dataset becomes visible to readers only
// once its import or merge commits.
package state

import "github.com/leapstack-labs/leapviz/pkg/core"

var (
	_ core.RowStore   = (*SQLiteStore)(nil)
	_ core.UnitOfWork = (*unitOfWork)(nil)
)

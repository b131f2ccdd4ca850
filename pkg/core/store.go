package core

import "context"

// RowStore is durable storage for datasets, their schemas, and their rows.
// Reads never observe a dataset whose unit of work has not committed.
type RowStore interface {
	// GetDataset returns the dataset header and schema, or a NotFound error.
	GetDataset(ctx context.Context, datasetID string) (*Dataset, error)

	// GetSchema returns the ordered schema of a dataset.
	GetSchema(ctx context.Context, datasetID string) ([]Column, error)

	// GetAllRows returns every row of a dataset in insertion order.
	GetAllRows(ctx context.Context, datasetID string) ([]Row, error)

	// ListDatasets returns one owner's datasets, newest first, and the total count.
	ListDatasets(ctx context.Context, owner string, offset, limit int) ([]Dataset, int, error)

	// DeleteDataset removes a dataset with its schema and rows.
	DeleteDataset(ctx context.Context, datasetID string) error

	// Begin opens an all-or-nothing unit of work.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork groups dataset creation, schema, row batches, and status changes
// into one atomic write. Nothing is visible to readers before Commit.
type UnitOfWork interface {
	// CreateDataset inserts the header. ID and CreatedAt are assigned when empty.
	CreateDataset(ctx context.Context, ds *Dataset) error

	// WriteSchema writes the ordered schema columns.
	WriteSchema(ctx context.Context, datasetID string, cols []Column) error

	// AppendRowBatch appends one batch of rows.
	AppendRowBatch(ctx context.Context, datasetID string, rows []Row) error

	// SetStatus updates status and total row count.
	SetStatus(ctx context.Context, datasetID string, status Status, totalRows int) error

	// Commit makes all writes visible.
	Commit() error

	// Rollback discards all writes. Safe to call after Commit.
	Rollback() error
}

package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/stretchr/testify/require"
)

// SalesSchema is a small schema used across engine and CLI tests.
func SalesSchema() []core.Column {
	return []core.Column{
		{Name: "Region", DisplayName: "Region", DataType: core.DataTypeString, IsRequired: true, Order: 0},
		{Name: "Product", DisplayName: "Product", DataType: core.DataTypeString, IsRequired: true, Order: 1},
		{Name: "Amount", DisplayName: "Amount", DataType: core.DataTypeDecimal, Order: 2},
		{Name: "SoldAt", DisplayName: "Sold At", DataType: core.DataTypeDateTime, Order: 3},
	}
}

// SalesRows matches SalesSchema. Amount is null on the last row.
func SalesRows() []core.Row {
	return []core.Row{
		{"Region": "North", "Product": "Tea", "Amount": json.Number("10.5"), "SoldAt": "2024-01-03T10:00:00Z"},
		{"Region": "South", "Product": "Tea", "Amount": json.Number("4"), "SoldAt": "2024-01-20T09:30:00Z"},
		{"Region": "North", "Product": "Coffee", "Amount": json.Number("7.25"), "SoldAt": "2024-02-11T12:00:00Z"},
		{"Region": "East", "Product": "Coffee", "Amount": json.Number("12"), "SoldAt": "2024-04-01T08:15:00Z"},
		{"Region": "South", "Product": "Juice", "Amount": nil, "SoldAt": "2024-04-05T17:45:00Z"},
	}
}

// DatasetOption customises a seeded dataset header.
type DatasetOption func(*core.Dataset)

// WithOwner sets CreatedBy.
func WithOwner(owner string) DatasetOption {
	return func(ds *core.Dataset) { ds.CreatedBy = owner }
}

// WithCreatedAt sets CreatedAt.
func WithCreatedAt(t time.Time) DatasetOption {
	return func(ds *core.Dataset) { ds.CreatedAt = t }
}

// SeedDataset writes a completed dataset into store and returns its ID.
func SeedDataset(t testing.TB, store core.RowStore, name string, cols []core.Column, rows []core.Row, opts ...DatasetOption) string {
	t.Helper()
	ctx := context.Background()

	ds := &core.Dataset{
		Name:       name,
		SourceType: core.SourceFile,
		SourceName: name + ".csv",
		Status:     core.StatusProcessing,
	}
	for _, opt := range opts {
		opt(ds)
	}

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	require.NoError(t, uow.CreateDataset(ctx, ds))
	require.NoError(t, uow.WriteSchema(ctx, ds.ID, cols))
	require.NoError(t, uow.AppendRowBatch(ctx, ds.ID, rows))
	require.NoError(t, uow.SetStatus(ctx, ds.ID, core.StatusCompleted, len(rows)))
	require.NoError(t, uow.Commit())
	return ds.ID
}

// Package adapter provides the SQL import-source contract for leapviz.
//
// An adapter connects to an external database, runs a caller-supplied query,
// and hands the result back as a typed schema plus rows ready to be written
// into a dataset. Concrete adapters live under pkg/adapters/ and register
// themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// TableMetadata is an alias for core.TableMetadata.
	TableMetadata = core.TableMetadata
)

// Adapter defines the interface that all import-source adapters implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*core.Rows, error)

	// ReadQuery runs sql and returns the inferred schema with at most limit
	// rows. A limit of zero or less reads everything.
	ReadQuery(ctx context.Context, sql string, limit int) (*Result, error)

	// GetTableMetadata retrieves metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error)
}

// Result is a query result converted for dataset import.
type Result struct {
	Columns []core.Column
	Rows    []core.Row
}

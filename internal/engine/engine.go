// Package engine runs dataset operations: queries, aggregation, column
// statistics, merges, and imports on top of a row store.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapviz/internal/source"
	"github.com/leapstack-labs/leapviz/internal/state"
	"github.com/leapstack-labs/leapviz/pkg/core"
)

// DefaultBatchSize is the number of rows written per batch.
const DefaultBatchSize = 1000

// Engine orchestrates dataset operations against a row store.
type Engine struct {
	store     core.RowStore
	ownsStore bool

	// Structured logger
	logger  *slog.Logger
	metrics *Metrics

	opener *source.Opener
	rest   *source.RESTClient

	batchSize  int
	sampleSize int
	pageSize   int
}

// Config holds engine configuration.
type Config struct {
	// Store is the row store. When nil, StatePath is opened and migrated.
	Store core.RowStore
	// StatePath is the sqlite state database used when Store is nil
	StatePath string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Metrics records operation counters (optional)
	Metrics *Metrics
	// Opener resolves file and s3:// import locations
	Opener *source.Opener
	// REST fetches API imports
	REST *source.RESTClient
	// BatchSize is the number of rows per write batch (default 1000)
	BatchSize int
	// SampleSize is the number of records used for type inference (default 100)
	SampleSize int
	// DefaultPageSize applies to queries without a page size (default 10)
	DefaultPageSize int
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store := cfg.Store
	owns := false
	if store == nil {
		if cfg.StatePath == "" {
			return nil, fmt.Errorf("engine requires a store or a state path")
		}
		logger.Debug("opening state store", "path", cfg.StatePath)
		s, err := state.OpenAndMigrate(cfg.StatePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		store = s
		owns = true
	}

	e := &Engine{
		store:      store,
		ownsStore:  owns,
		logger:     logger,
		metrics:    cfg.Metrics,
		opener:     cfg.Opener,
		rest:       cfg.REST,
		batchSize:  cfg.BatchSize,
		sampleSize: cfg.SampleSize,
		pageSize:   cfg.DefaultPageSize,
	}
	if e.opener == nil {
		e.opener = &source.Opener{}
	}
	if e.rest == nil {
		e.rest = source.NewRESTClient(nil)
	}
	if e.batchSize <= 0 {
		e.batchSize = DefaultBatchSize
	}
	if e.sampleSize <= 0 {
		e.sampleSize = source.DefaultSampleSize
	}
	if e.pageSize <= 0 {
		e.pageSize = core.DefaultPageSize
	}
	return e, nil
}

// Store returns the underlying row store.
func (e *Engine) Store() core.RowStore {
	return e.store
}

// Close releases the state store when the engine opened it.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")
	if !e.ownsStore {
		return nil
	}
	if c, ok := e.store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close state store: %w", err)
		}
	}
	return nil
}

// queryable fetches a dataset header, refusing datasets that never reached
// Completed or were marked Error by a failed append.
func (e *Engine) queryable(ctx context.Context, datasetID string) (*core.Dataset, error) {
	ds, err := e.store.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if ds.Status != core.StatusCompleted {
		return nil, core.InvalidArgumentf("dataset %s is not ready for queries (status %s)", datasetID, ds.Status)
	}
	return ds, nil
}

// load fetches a queryable dataset header and all of its rows.
func (e *Engine) load(ctx context.Context, datasetID string) (*core.Dataset, []core.Row, error) {
	ds, err := e.queryable(ctx, datasetID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := e.store.GetAllRows(ctx, datasetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rows for dataset %s: %w", datasetID, err)
	}
	e.logger.Debug("loaded dataset", "dataset_id", datasetID, "rows", len(rows))
	return ds, rows, nil
}

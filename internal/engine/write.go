package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// create writes a new dataset, its schema, and its rows in one unit of work.
// The dataset is committed as Completed or not at all.
func (e *Engine) create(ctx context.Context, ds *core.Dataset, cols []core.Column, rows []core.Row) error {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	ds.Status = core.StatusProcessing
	if err := uow.CreateDataset(ctx, ds); err != nil {
		return err
	}
	if err := uow.WriteSchema(ctx, ds.ID, cols); err != nil {
		return err
	}
	if err := e.appendBatches(ctx, uow, ds.ID, rows); err != nil {
		return err
	}
	if err := uow.SetStatus(ctx, ds.ID, core.StatusCompleted, len(rows)); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	ds.Status = core.StatusCompleted
	ds.TotalRows = len(rows)
	ds.Schema = cols
	e.metrics.rows(ds.SourceType, len(rows))
	return nil
}

func (e *Engine) appendBatches(ctx context.Context, uow core.UnitOfWork, datasetID string, rows []core.Row) error {
	for start := 0; start < len(rows); start += e.batchSize {
		end := min(start+e.batchSize, len(rows))
		if err := uow.AppendRowBatch(ctx, datasetID, rows[start:end]); err != nil {
			return fmt.Errorf("failed to write rows %d-%d: %w", start, end-1, err)
		}
		e.logger.Debug("wrote row batch", "dataset_id", datasetID, "from", start, "to", end)
	}
	return nil
}

// markError flags an existing dataset as Error in its own unit of work.
func (e *Engine) markError(ctx context.Context, datasetID string, totalRows int) {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		e.logger.Error("failed to flag dataset as error", "dataset_id", datasetID, "error", err)
		return
	}
	defer func() { _ = uow.Rollback() }()

	if err := uow.SetStatus(ctx, datasetID, core.StatusError, totalRows); err != nil {
		e.logger.Error("failed to flag dataset as error", "dataset_id", datasetID, "error", err)
		return
	}
	if err := uow.Commit(); err != nil {
		e.logger.Error("failed to flag dataset as error", "dataset_id", datasetID, "error", err)
	}
}

func success(ds *core.Dataset, msg string) *core.ImportDatasetResponse {
	return &core.ImportDatasetResponse{
		DatasetID: ds.ID,
		Status:    core.ImportSuccess,
		Message:   msg,
	}
}

func failure(datasetID, prefix string, err error) *core.ImportDatasetResponse {
	return &core.ImportDatasetResponse{
		DatasetID: datasetID,
		Status:    core.ImportError,
		Message:   fmt.Sprintf("%s: %v", prefix, err),
	}
}

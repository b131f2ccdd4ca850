package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/join"
	"golang.org/x/sync/errgroup"
)

// errNoMergeRows is reported when the join produces nothing to store.
var errNoMergeRows = core.OperationFailedf("no matching data found for merge, check the join conditions")

type mergeInput struct {
	ds   *core.Dataset
	rows []core.Row
}

// Merge joins two of owner's datasets into a new merged dataset.
//
// Invalid requests and unknown or foreign datasets are returned as errors.
// Failures after the join starts, including an empty result, are reported
// in the response with Status Error and leave nothing behind.
func (e *Engine) Merge(ctx context.Context, owner string, req core.DatasetMergeRequest) (_ *core.ImportDatasetResponse, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("merge", start, err) }()

	name := strings.TrimSpace(req.NewDatasetName)
	if name == "" {
		return nil, core.InvalidArgumentf("newDatasetName is required")
	}
	if req.LeftDatasetID == "" || req.RightDatasetID == "" {
		return nil, core.InvalidArgumentf("leftDatasetId and rightDatasetId are required")
	}
	mode, err := core.ParseMergeType(string(req.MergeType))
	if err != nil {
		return nil, err
	}
	conds, err := join.Compile(req.JoinConditions)
	if err != nil {
		return nil, err
	}

	var left, right mergeInput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.loadMergeInput(gctx, owner, req.LeftDatasetID, &left) })
	g.Go(func() error { return e.loadMergeInput(gctx, owner, req.RightDatasetID, &right) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug("merging datasets",
		"left", left.ds.ID, "left_rows", len(left.rows),
		"right", right.ds.ID, "right_rows", len(right.rows),
		"mode", mode)

	merged, err := join.Merge(left.rows, right.rows, conds, mode)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		e.logger.Error("merge produced no rows", "left", left.ds.ID, "right", right.ds.ID, "mode", mode)
		return failure("", "Failed to merge datasets", errNoMergeRows), nil
	}

	ds := &core.Dataset{
		Name:       name,
		SourceType: core.SourceMerged,
		SourceName: join.SourceName(left.ds.Name, right.ds.Name),
		CreatedBy:  owner,
	}
	schema := join.MergeSchema(left.ds.Name, left.ds.Schema, right.ds.Name, right.ds.Schema)

	if err := e.create(ctx, ds, schema, merged); err != nil {
		e.logger.Error("merge rolled back", "name", name, "error", err)
		return failure("", "Failed to merge datasets", err), nil
	}

	e.logger.Debug("merge committed", "dataset_id", ds.ID, "rows", len(merged))
	return success(ds, fmt.Sprintf("Successfully merged datasets. Created new dataset with %d rows", len(merged))), nil
}

func (e *Engine) loadMergeInput(ctx context.Context, owner, datasetID string, dst *mergeInput) error {
	ds, err := e.owned(ctx, owner, datasetID)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return core.NotFoundf("one or both datasets not found or access denied: %s", datasetID)
		}
		return err
	}
	if ds.Status != core.StatusCompleted {
		return core.InvalidArgumentf("dataset %s is not ready for merge (status %s)", datasetID, ds.Status)
	}
	rows, err := e.store.GetAllRows(ctx, datasetID)
	if err != nil {
		return fmt.Errorf("failed to load rows for dataset %s: %w", datasetID, err)
	}
	dst.ds = ds
	dst.rows = rows
	return nil
}

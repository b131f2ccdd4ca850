package engine

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/query"
)

// ListDatasets returns one page of an owner's datasets, newest first, each
// with its schema. An empty owner lists every dataset.
func (e *Engine) ListDatasets(ctx context.Context, owner string, page, pageSize int) (_ *core.DatasetPage, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("list", start, err) }()

	page, pageSize = query.Clamp(page, pageSize, e.pageSize)
	items, total, err := e.store.ListDatasets(ctx, owner, query.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, err
	}
	for i := range items {
		cols, err := e.store.GetSchema(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Schema = cols
	}

	return &core.DatasetPage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: query.TotalPages(total, pageSize),
	}, nil
}

// Dropdown lists every dataset of an owner, newest first, with column
// summaries for pickers.
func (e *Engine) Dropdown(ctx context.Context, owner string) (_ []core.DropdownEntry, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("dropdown", start, err) }()

	items, _, err := e.store.ListDatasets(ctx, owner, 0, 0)
	if err != nil {
		return nil, err
	}

	out := make([]core.DropdownEntry, 0, len(items))
	for _, ds := range items {
		cols, err := e.store.GetSchema(ctx, ds.ID)
		if err != nil {
			return nil, err
		}
		entry := core.DropdownEntry{
			DatasetRef: core.DatasetRef{ID: ds.ID, Name: ds.Name},
			Columns:    make([]core.DropdownColumn, len(cols)),
		}
		for i, c := range cols {
			entry.Columns[i] = core.DropdownColumn{Name: c.Name, DisplayName: c.DisplayName, DataType: c.DataType}
		}
		out = append(out, entry)
	}
	return out, nil
}

// DeleteDataset removes a dataset with its schema and rows. When owner is
// set, datasets owned by someone else are reported as not found.
func (e *Engine) DeleteDataset(ctx context.Context, owner, datasetID string) (err error) {
	start := time.Now()
	defer func() { e.metrics.observe("delete", start, err) }()

	if owner != "" {
		if _, err := e.owned(ctx, owner, datasetID); err != nil {
			return err
		}
	}
	if err := e.store.DeleteDataset(ctx, datasetID); err != nil {
		return err
	}
	e.logger.Debug("dataset deleted", "dataset_id", datasetID)
	return nil
}

// owned returns a dataset when owner created it.
func (e *Engine) owned(ctx context.Context, owner, datasetID string) (*core.Dataset, error) {
	ds, err := e.store.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if owner != "" && ds.CreatedBy != owner {
		return nil, core.NotFoundf("dataset %s not found", datasetID)
	}
	return ds, nil
}

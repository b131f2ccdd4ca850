package engine

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/aggregate"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/query"
	"github.com/leapstack-labs/leapviz/pkg/stats"
)

// QueryData filters, sorts, and pages a dataset's rows.
func (e *Engine) QueryData(ctx context.Context, datasetID string, params core.QueryParameters) (_ *core.QueryResult, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("query", start, err) }()

	_, rows, err := e.load(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	res, err := query.Run(rows, params, e.pageSize)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("query complete", "dataset_id", datasetID, "matched", res.TotalCount, "page", res.Page)
	return &res, nil
}

// GetDatasetInfo returns the dataset header with its ordered schema.
func (e *Engine) GetDatasetInfo(ctx context.Context, datasetID string) (_ *core.Dataset, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("info", start, err) }()

	return e.store.GetDataset(ctx, datasetID)
}

// DataSourceDetail returns the dataset header, statistics for every schema
// column over all rows, and one filtered, sorted page of rows. Without a sort
// field rows are ordered by their CreatedAt value, newest first.
func (e *Engine) DataSourceDetail(ctx context.Context, datasetID string, params core.QueryParameters) (_ *core.DataSourceDetailResponse, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("detail", start, err) }()

	ds, rows, err := e.load(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	filtered, err := query.Filter(rows, params.Filters)
	if err != nil {
		return nil, err
	}
	filtered = append([]core.Row(nil), filtered...)
	if params.SortBy != "" {
		query.Sort(filtered, params.SortBy, params.SortDirection)
	} else {
		query.SortByTimeDesc(filtered, query.CreatedAtField)
	}

	page, size := query.Clamp(params.Page, params.PageSize, core.DefaultDetailPageSize)

	columns := make([]core.ColumnDetail, 0, len(ds.Schema))
	for _, col := range ds.Schema {
		st, dist := stats.Column(rows, col.Name)
		columns = append(columns, core.ColumnDetail{
			Column:       col,
			Statistics:   st,
			Distribution: dist,
		})
	}

	return &core.DataSourceDetailResponse{
		Dataset: *ds,
		Columns: columns,
		Data:    query.Paginate(filtered, page, size),
	}, nil
}

// Aggregate validates req against the dataset schema and reduces its rows
// into chart categories and series.
func (e *Engine) Aggregate(ctx context.Context, datasetID string, req core.ChartAggregationRequest) (_ *core.ChartAggregationResponse, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("aggregate", start, err) }()

	ds, err := e.queryable(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	spec, err := aggregate.Validate(req, ds.Schema)
	if err != nil {
		return nil, err
	}

	rows, err := e.store.GetAllRows(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	res := aggregate.Run(rows, spec)
	e.logger.Debug("aggregation complete",
		"dataset_id", datasetID,
		"method", spec.Method,
		"categories", len(res.Categories))
	return &res, nil
}

// ColumnStatistics computes statistics and the value distribution of one
// schema column.
func (e *Engine) ColumnStatistics(ctx context.Context, datasetID, column string) (_ *core.ColumnDetail, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("stats", start, err) }()

	ds, err := e.queryable(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	col, ok := ds.Column(column)
	if !ok {
		return nil, core.NotFoundf("column %s not found in dataset %s", column, datasetID)
	}

	rows, err := e.store.GetAllRows(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	st, dist := stats.Column(rows, column)
	return &core.ColumnDetail{Column: col, Statistics: st, Distribution: dist}, nil
}

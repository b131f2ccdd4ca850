package engine

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/internal/source"
	"github.com/leapstack-labs/leapviz/pkg/core"
)

const importFailed = "Failed to import data"

// ImportFile imports a CSV or Excel file, optionally compressed, from a local
// path or an s3:// object. The dataset name defaults to the file name.
func (e *Engine) ImportFile(ctx context.Context, owner, name, location string) (_ *core.ImportDatasetResponse, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("import_file", start, err) }()

	table, err := e.opener.ReadLocation(ctx, location, e.sampleSize)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return nil, err
		}
		e.logger.Error("file import failed", "location", location, "error", err)
		return failure("", importFailed, err), nil
	}

	ds := &core.Dataset{
		Name:       datasetName(name, location),
		SourceType: core.SourceFile,
		SourceName: path.Base(location),
		CreatedBy:  owner,
	}
	return e.importTable(ctx, ds, table), nil
}

// ImportDatabase runs a query against a SQL source and imports the result.
func (e *Engine) ImportDatabase(ctx context.Context, owner, name string, opts core.DatabaseImportOptions) (_ *core.ImportDatasetResponse, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("import_database", start, err) }()

	if strings.TrimSpace(name) == "" {
		return nil, core.InvalidArgumentf("dataset name is required")
	}

	table, err := source.QueryDatabase(ctx, opts, e.logger)
	if err != nil {
		e.logger.Error("database import failed", "type", opts.Source.Type, "error", err)
		return failure("", importFailed, err), nil
	}

	ds := &core.Dataset{
		Name:       name,
		SourceType: core.SourceDatabase,
		SourceName: databaseSourceName(opts.Source),
		CreatedBy:  owner,
	}
	return e.importTable(ctx, ds, table), nil
}

// ImportREST fetches JSON records from an HTTP endpoint and imports them.
func (e *Engine) ImportREST(ctx context.Context, owner, name string, opts core.RestImportOptions) (_ *core.ImportDatasetResponse, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("import_rest", start, err) }()

	if strings.TrimSpace(name) == "" {
		return nil, core.InvalidArgumentf("dataset name is required")
	}

	table, err := e.rest.Fetch(ctx, opts, e.sampleSize)
	if err != nil {
		e.logger.Error("REST import failed", "url", opts.URL, "error", err)
		return failure("", importFailed, err), nil
	}

	ds := &core.Dataset{
		Name:       name,
		SourceType: core.SourceAPI,
		SourceName: opts.URL,
		CreatedBy:  owner,
	}
	return e.importTable(ctx, ds, table), nil
}

func (e *Engine) importTable(ctx context.Context, ds *core.Dataset, table *source.Table) *core.ImportDatasetResponse {
	e.logger.Debug("importing dataset",
		"name", ds.Name,
		"source_type", ds.SourceType,
		"columns", len(table.Columns),
		"rows", len(table.Rows))

	if err := e.create(ctx, ds, table.Columns, table.Rows); err != nil {
		e.logger.Error("import rolled back", "name", ds.Name, "error", err)
		return failure("", importFailed, err)
	}
	return success(ds, fmt.Sprintf("Successfully imported %d rows", len(table.Rows)))
}

// ImportIntoDataset appends a file's rows to an existing dataset. Every
// schema column must appear in the header, compared case-insensitively.
// Values are stored as raw text. On failure the appended rows are discarded
// and the dataset is flagged Error.
func (e *Engine) ImportIntoDataset(ctx context.Context, owner, datasetID, location string) (_ *core.ImportDatasetResponse, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("import_append", start, err) }()

	ds, err := e.owned(ctx, owner, datasetID)
	if err != nil {
		return nil, err
	}

	n, err := e.appendFile(ctx, ds, location)
	if err != nil {
		e.logger.Error("append rolled back", "dataset_id", ds.ID, "location", location, "error", err)
		e.markError(ctx, ds.ID, ds.TotalRows)
		return failure(ds.ID, importFailed, err), nil
	}
	return success(ds, fmt.Sprintf("Successfully imported %d rows", n)), nil
}

func (e *Engine) appendFile(ctx context.Context, ds *core.Dataset, location string) (int, error) {
	header, records, err := e.opener.RecordsAt(ctx, location)
	if err != nil {
		return 0, err
	}
	if missing := missingColumns(ds.Schema, header); len(missing) > 0 {
		return 0, core.OperationFailedf("missing required columns: %s", strings.Join(missing, ", "))
	}

	rows := make([]core.Row, len(records))
	for i, rec := range records {
		row := make(core.Row, len(header))
		for j, h := range header {
			raw := ""
			if j < len(rec) {
				raw = rec[j]
			}
			row[h] = raw
		}
		rows[i] = row
	}

	uow, err := e.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	if err := e.appendBatches(ctx, uow, ds.ID, rows); err != nil {
		return 0, err
	}
	if err := uow.SetStatus(ctx, ds.ID, core.StatusCompleted, ds.TotalRows+len(rows)); err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}
	e.metrics.rows(ds.SourceType, len(rows))
	return len(rows), nil
}

// missingColumns lists schema columns absent from header, ignoring case.
func missingColumns(schema []core.Column, header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}
	var missing []string
	for _, c := range schema {
		if !present[strings.ToLower(c.Name)] {
			missing = append(missing, c.Name)
		}
	}
	return missing
}

// DescribeTable reads a source table's declared columns so a caller can
// check them before writing an import query.
func (e *Engine) DescribeTable(ctx context.Context, src core.AdapterConfig, table string) (_ *core.TableMetadata, err error) {
	start := time.Now()
	defer func() { e.metrics.observe("describe", start, err) }()

	meta, err := source.DescribeTable(ctx, src, table, e.logger)
	if err != nil {
		e.logger.Debug("describe failed", "type", src.Type, "table", table, "error", err)
		return nil, err
	}
	return meta, nil
}

// datasetName returns name, or the file name without its extensions.
func datasetName(name, location string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	base := path.Base(location)
	for _, ext := range []string{".gz", ".zst"} {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func databaseSourceName(cfg core.AdapterConfig) string {
	target := cfg.Database
	if target == "" {
		target = cfg.Path
		if u, err := url.Parse(target); err == nil && u.User != nil {
			target = u.Redacted()
		}
	}
	if target == "" {
		return cfg.Type
	}
	return cfg.Type + ":" + target
}

package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/adapter"
	"github.com/leapstack-labs/leapviz/pkg/core"
)

// QueryDatabase connects with the configured adapter, runs query and returns
// its rows. The schema comes from the driver's column types.
func QueryDatabase(ctx context.Context, opts core.DatabaseImportOptions, logger *slog.Logger) (*Table, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, core.InvalidArgumentf("query is required")
	}

	adp, err := adapter.NewAdapter(opts.Source, logger)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidArgument, err, "invalid database source")
	}
	if err := adp.Connect(ctx, opts.Source); err != nil {
		return nil, core.Wrap(core.KindOperationFailed, err, "failed to connect to "+opts.Source.Type)
	}
	defer func() { _ = adp.Close() }()

	result, err := adp.ReadQuery(ctx, opts.Query, 0)
	if err != nil {
		return nil, core.Wrap(core.KindOperationFailed, err, "failed to run import query")
	}
	if err := core.ValidateSchema(result.Columns); err != nil {
		return nil, err
	}
	return &Table{Columns: result.Columns, Rows: result.Rows}, nil
}

// DescribeTable reports a source table's columns as the database declares
// them, with the row count.
func DescribeTable(ctx context.Context, cfg core.AdapterConfig, table string, logger *slog.Logger) (*core.TableMetadata, error) {
	if strings.TrimSpace(table) == "" {
		return nil, core.InvalidArgumentf("table is required")
	}

	adp, err := adapter.NewAdapter(cfg, logger)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidArgument, err, "invalid database source")
	}
	if err := adp.Connect(ctx, cfg); err != nil {
		return nil, core.Wrap(core.KindOperationFailed, err, "failed to connect to "+cfg.Type)
	}
	defer func() { _ = adp.Close() }()

	meta, err := adp.GetTableMetadata(ctx, table)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return nil, err
		}
		return nil, core.Wrap(core.KindOperationFailed, err, "failed to read table metadata")
	}
	return meta, nil
}

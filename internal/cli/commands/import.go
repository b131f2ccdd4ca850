package commands

import (
	"context"
	"strings"

	"github.com/leapstack-labs/leapviz/internal/cli/config"
	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command group.
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data into a new or existing dataset",
		Long: `Import tabular data into a dataset.

Sources:
  file    CSV or Excel files, local or s3://bucket/key, optionally .gz or .zst
  db      The result of a SQL query against a configured source
  rest    JSON records fetched from an HTTP endpoint
  append  Append a file's rows to an existing dataset

describe shows a SQL source table's columns before you write an import query.`,
	}

	cmd.AddCommand(newImportFileCommand())
	cmd.AddCommand(newImportDBCommand())
	cmd.AddCommand(newImportRESTCommand())
	cmd.AddCommand(newImportAppendCommand())
	cmd.AddCommand(newImportDescribeCommand())
	return cmd
}

// withSpinner runs fn behind a spinner when writing styled text to a terminal.
func withSpinner(r *output.Renderer, message string, fn func() (*core.ImportDatasetResponse, error)) (*core.ImportDatasetResponse, error) {
	if r.EffectiveMode() != output.ModeText || !r.IsTTY() {
		return fn()
	}

	spinner := r.NewSpinner(message)
	spinner.Start()
	resp, err := fn()
	switch {
	case err != nil:
		spinner.Fail(err.Error())
	case resp.Status == core.ImportError:
		spinner.Fail(resp.Message)
	default:
		spinner.Success(resp.Message)
	}
	return resp, err
}

// runImport wires the command context around one engine import call.
func runImport(cmd *cobra.Command, message string, fn func(ctx context.Context, cc *CommandContext) (*core.ImportDatasetResponse, error)) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := withSpinner(cmdCtx.Renderer, message, func() (*core.ImportDatasetResponse, error) {
		return fn(cmd.Context(), cmdCtx)
	})
	if err != nil {
		return err
	}
	return renderImportResponse(cmdCtx.Renderer, resp)
}

func newImportFileCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "file <path|s3://bucket/key>",
		Short: "Import a CSV or Excel file",
		Long: `Import a CSV (.csv) or Excel (.xlsx) file as a new dataset.

Column types are inferred from a sample of the rows. Files compressed with
gzip (.gz) or zstd (.zst) are decompressed on the fly. s3:// locations are read
from the configured object store.`,
		Example: `  # Import a local CSV file
  leapviz import file sales.csv --name "Sales 2024"

  # Import a compressed file from object storage
  leapviz import file s3://exports/orders.csv.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := args[0]
			return runImport(cmd, "Importing "+location+"...", func(ctx context.Context, cc *CommandContext) (*core.ImportDatasetResponse, error) {
				return cc.Engine.ImportFile(ctx, cc.Cfg.Owner, name, location)
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Dataset name (default: file name without extension)")
	return cmd
}

// dbImportRequest is the request file shape for import db.
type dbImportRequest struct {
	Name     string `mapstructure:"name"`
	Source   string `mapstructure:"source"`
	Type     string `mapstructure:"type"`
	Database string `mapstructure:"database"`
	Query    string `mapstructure:"query"`
}

func newImportDBCommand() *cobra.Command {
	var (
		req         dbImportRequest
		requestFile string
	)

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Import the result of a SQL query",
		Long: `Run a query against a SQL source and import its result as a new dataset.

The source is either a named entry under "sources" in leapviz.yaml, or an
ad-hoc --type with --database (a file path for sqlite/duckdb, a DSN for postgres).
Column types come from the driver's result metadata.`,
		Example: `  # Query a configured source
  leapviz import db --source warehouse --query "SELECT * FROM orders" --name Orders

  # Query a local SQLite file
  leapviz import db --type sqlite --database shop.db --query "SELECT * FROM items" --name Items`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if requestFile != "" {
				if err := loadRequest(requestFile, &req); err != nil {
					return err
				}
			}
			return runImport(cmd, "Running import query...", func(ctx context.Context, cc *CommandContext) (*core.ImportDatasetResponse, error) {
				opts, err := databaseOptions(cc.Cfg, req)
				if err != nil {
					return nil, err
				}
				return cc.Engine.ImportDatabase(ctx, cc.Cfg.Owner, req.Name, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "Dataset name (required)")
	cmd.Flags().StringVar(&req.Source, "source", "", "Named source from the config file")
	cmd.Flags().StringVar(&req.Type, "type", "", "Ad-hoc source type (sqlite, duckdb, postgres)")
	cmd.Flags().StringVar(&req.Database, "database", "", "Ad-hoc database path or DSN")
	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "SQL query to import (required)")
	cmd.Flags().StringVar(&requestFile, "request", "", "YAML or JSON request file")
	cmd.MarkFlagsMutuallyExclusive("source", "type")
	return cmd
}

// databaseOptions resolves a named or ad-hoc source into import options.
func databaseOptions(cfg *config.Config, req dbImportRequest) (core.DatabaseImportOptions, error) {
	var src *config.SourceConfig
	switch {
	case req.Source != "":
		src = cfg.Source(req.Source)
		if src == nil {
			return core.DatabaseImportOptions{}, core.NotFoundf("source %q is not configured", req.Source)
		}
	case req.Type != "":
		src = &config.SourceConfig{Type: req.Type, Database: req.Database}
		if err := src.Validate(); err != nil {
			return core.DatabaseImportOptions{}, core.Wrap(core.KindInvalidArgument, err, "invalid source")
		}
	default:
		return core.DatabaseImportOptions{}, core.InvalidArgumentf("either --source or --type is required")
	}
	return core.DatabaseImportOptions{Source: src.AdapterConfig(), Query: req.Query}, nil
}

func newImportDescribeCommand() *cobra.Command {
	var req dbImportRequest

	cmd := &cobra.Command{
		Use:   "describe <table>",
		Short: "Show a SQL source table's columns",
		Long: `Show the columns of a table in a SQL source as the database declares them,
with the column type each one imports as and the table's row count.

Use schema.table to look outside the source's default schema.`,
		Example: `  leapviz import describe orders --source warehouse
  leapviz import describe items --type sqlite --database shop.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			opts, err := databaseOptions(cmdCtx.Cfg, req)
			if err != nil {
				return err
			}
			meta, err := cmdCtx.Engine.DescribeTable(cmd.Context(), opts.Source, args[0])
			if err != nil {
				return err
			}
			return renderTableMetadata(cmdCtx.Renderer, meta)
		},
	}

	cmd.Flags().StringVar(&req.Source, "source", "", "Named source from the config file")
	cmd.Flags().StringVar(&req.Type, "type", "", "Ad-hoc source type (sqlite, duckdb, postgres)")
	cmd.Flags().StringVar(&req.Database, "database", "", "Ad-hoc database path or DSN")
	cmd.MarkFlagsMutuallyExclusive("source", "type")
	return cmd
}

// restImportRequest is the request file shape for import rest.
type restImportRequest struct {
	core.RestImportOptions `mapstructure:",squash"`

	Name string `mapstructure:"name"`
}

func newImportRESTCommand() *cobra.Command {
	var (
		name        string
		requestFile string
		headers     []string
		params      []string
		noFlatten   bool
		flagOpts    core.RestImportOptions
	)

	cmd := &cobra.Command{
		Use:   "rest [url]",
		Short: "Import JSON records from an HTTP endpoint",
		Long: `Fetch a JSON document and import its records as a new dataset.

--data-path selects the records array with a dot path (e.g. data.items).
Nested objects are flattened into dotted column names unless --no-flatten is set.
Arrays are stored as JSON text.`,
		Example: `  # Import the items array of an API response
  leapviz import rest https://api.example.com/orders --data-path data.items --name Orders

  # POST with a header and a request body
  leapviz import rest https://api.example.com/search -X POST \
    --header "Authorization=Bearer ${TOKEN}" --body '{"q":"open"}' --name Search`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, "Fetching records...", func(ctx context.Context, cc *CommandContext) (*core.ImportDatasetResponse, error) {
				req := restImportRequest{RestImportOptions: core.DefaultRestImportOptions()}
				if cc.Cfg.REST.TimeoutSeconds > 0 {
					req.TimeoutSeconds = cc.Cfg.REST.TimeoutSeconds
				}
				if cc.Cfg.REST.MaxRecords > 0 {
					req.MaxRecords = cc.Cfg.REST.MaxRecords
				}
				if requestFile != "" {
					if err := loadRequest(requestFile, &req); err != nil {
						return nil, err
					}
				}

				flags := cmd.Flags()
				if len(args) == 1 {
					req.URL = args[0]
				}
				if flags.Changed("name") {
					req.Name = name
				}
				if flags.Changed("method") {
					req.Method = strings.ToUpper(flagOpts.Method)
				}
				if flags.Changed("body") {
					req.RequestBody = flagOpts.RequestBody
				}
				if flags.Changed("data-path") {
					req.DataPath = flagOpts.DataPath
				}
				if flags.Changed("max-records") {
					req.MaxRecords = flagOpts.MaxRecords
				}
				if flags.Changed("timeout") {
					req.TimeoutSeconds = flagOpts.TimeoutSeconds
				}
				if noFlatten {
					req.FlattenNestedObjects = false
				}

				h, err := parsePairs("header", headers)
				if err != nil {
					return nil, err
				}
				req.Headers = mergePairs(req.Headers, h)
				p, err := parsePairs("param", params)
				if err != nil {
					return nil, err
				}
				req.QueryParameters = mergePairs(req.QueryParameters, p)

				if req.URL == "" {
					return nil, core.InvalidArgumentf("a URL is required")
				}
				return cc.Engine.ImportREST(ctx, cc.Cfg.Owner, req.Name, req.RestImportOptions)
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Dataset name (required)")
	cmd.Flags().StringVarP(&flagOpts.Method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Request header as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&flagOpts.RequestBody, "body", "", "Request body")
	cmd.Flags().StringVar(&flagOpts.DataPath, "data-path", "", "Dot path to the records array")
	cmd.Flags().IntVar(&flagOpts.MaxRecords, "max-records", 0, "Maximum records to import (default from config)")
	cmd.Flags().IntVar(&flagOpts.TimeoutSeconds, "timeout", 0, "Request timeout in seconds (default from config)")
	cmd.Flags().BoolVar(&noFlatten, "no-flatten", false, "Keep nested objects as JSON text")
	cmd.Flags().StringVar(&requestFile, "request", "", "YAML or JSON request file")
	return cmd
}

func mergePairs(base, extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(extra))
	}
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func newImportAppendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append <dataset-id> <path|s3://bucket/key>",
		Short: "Append a file's rows to an existing dataset",
		Long: `Append the rows of a CSV or Excel file to an existing dataset.

Every column of the dataset's schema must appear in the file header (compared
case-insensitively). If the append fails, no rows are added and the dataset is
marked Error.`,
		Example: `  leapviz import append 3f0c...e1 more-sales.csv`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, location := args[0], args[1]
			return runImport(cmd, "Appending "+location+"...", func(ctx context.Context, cc *CommandContext) (*core.ImportDatasetResponse, error) {
				return cc.Engine.ImportIntoDataset(ctx, cc.Cfg.Owner, datasetID, location)
			})
		},
	}
	return cmd
}

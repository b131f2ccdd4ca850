package commands

import (
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
)

// QueryOptions holds the flags shared by query and detail.
type QueryOptions struct {
	Filters     []string
	SortBy      string
	Direction   string
	Page        int
	PageSize    int
	RequestFile string
}

func (o *QueryOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.Filters, "filter", "f", nil, "Filter as field:operator:value (repeatable)")
	cmd.Flags().StringVar(&o.SortBy, "sort", "", "Field to sort by")
	cmd.Flags().StringVar(&o.Direction, "dir", "asc", "Sort direction (asc|desc)")
	cmd.Flags().IntVar(&o.Page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&o.PageSize, "page-size", 0, "Rows per page (max 100)")
	cmd.Flags().StringVar(&o.RequestFile, "request", "", "YAML or JSON file with query parameters")

	_ = cmd.RegisterFlagCompletionFunc("dir", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"asc", "desc"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// params builds query parameters from the request file, then flags that were set.
func (o *QueryOptions) params(cmd *cobra.Command) (core.QueryParameters, error) {
	var p core.QueryParameters
	if o.RequestFile != "" {
		if err := loadRequest(o.RequestFile, &p); err != nil {
			return p, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("filter") {
		filters, err := parseFilters(o.Filters)
		if err != nil {
			return p, err
		}
		p.Filters = filters
	}
	if flags.Changed("sort") || p.SortBy == "" {
		p.SortBy = o.SortBy
	}
	if flags.Changed("dir") || p.SortDirection == "" {
		p.SortDirection = o.Direction
	}
	if flags.Changed("page") || p.Page == 0 {
		p.Page = o.Page
	}
	if flags.Changed("page-size") || p.PageSize == 0 {
		p.PageSize = o.PageSize
	}
	return p, nil
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <dataset-id>",
		Short: "Filter, sort, and page a dataset's rows",
		Long: `Filter, sort, and page the rows of a dataset.

Filters are field:operator:value. Operators: eq, neq, gt, gte, lt, lte,
contains, startswith, endswith. Comparisons are numeric when both sides are
numbers, chronological when both are dates, and text otherwise.`,
		Example: `  # Rows where region is north, largest amount first
  leapviz query 3f0c...e1 --filter region:eq:north --sort amount --dir desc

  # Second page of 50 rows as JSON
  leapviz query 3f0c...e1 --page 2 --page-size 50 -o json

  # Parameters from a file
  leapviz query 3f0c...e1 --request query.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params(cmd)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			ds, err := cmdCtx.Engine.GetDatasetInfo(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := cmdCtx.Engine.QueryData(ctx, args[0], params)
			if err != nil {
				return err
			}
			return renderQueryResult(cmdCtx.Renderer, ds.Schema, res)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// NewDetailCommand creates the detail command.
func NewDetailCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "detail <dataset-id>",
		Short: "Show a dataset with per-column statistics and a page of rows",
		Long: `Show a dataset's header, statistics for every column, and one page of rows.

Statistics cover all rows. Filters and sorting apply to the page only; without
--sort rows are ordered newest first by their CreatedAt field when present.`,
		Example: `  leapviz detail 3f0c...e1
  leapviz detail 3f0c...e1 --filter status:eq:open --page-size 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params(cmd)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			detail, err := cmdCtx.Engine.DataSourceDetail(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			return renderDetail(cmdCtx.Renderer, detail)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

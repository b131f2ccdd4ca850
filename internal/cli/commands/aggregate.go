package commands

import (
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
)

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand() *cobra.Command {
	var (
		req         core.ChartAggregationRequest
		filters     []string
		requestFile string
	)

	cmd := &cobra.Command{
		Use:     "aggregate <dataset-id>",
		Aliases: []string{"chart"},
		Short:   "Group a dataset by category and reduce a value field",
		Long: `Group rows by a category field (and optionally a series field) and reduce
a value field with sum, avg, count, min, or max.

--interval buckets a date category by day, week, month, quarter, or year.
Filters use the same field:operator:value syntax as query.`,
		Example: `  # Total amount per region
  leapviz aggregate 3f0c...e1 --category region --value amount --agg sum

  # Monthly order count per product
  leapviz aggregate 3f0c...e1 --category day --interval month --value amount \
    --series product --agg count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flagReq := req
			if requestFile != "" {
				if err := loadRequest(requestFile, &req); err != nil {
					return err
				}
				overrideChanged(cmd, &req, flagReq)
			}
			parsed, err := parseFilters(filters)
			if err != nil {
				return err
			}
			req.Filters = append(req.Filters, parsed...)

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := cmdCtx.Engine.Aggregate(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return renderChart(cmdCtx.Renderer, resp)
		},
	}

	cmd.Flags().StringVar(&req.CategoryField, "category", "", "Category field (x axis)")
	cmd.Flags().StringVar(&req.ValueField, "value", "", "Value field to reduce")
	cmd.Flags().StringVar(&req.SeriesField, "series", "", "Optional series field")
	cmd.Flags().StringVar(&req.Aggregation, "agg", "sum", "Reduction: sum, avg, count, min, max")
	cmd.Flags().StringVar(&req.TimeInterval, "interval", "", "Time bucket: day, week, month, quarter, year")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter as field:operator:value (repeatable)")
	cmd.Flags().StringVar(&requestFile, "request", "", "YAML or JSON request file")

	_ = cmd.RegisterFlagCompletionFunc("agg", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sum", "avg", "count", "min", "max"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("interval", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"day", "week", "month", "quarter", "year"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// overrideChanged reapplies flags that were set explicitly over a request file.
func overrideChanged(cmd *cobra.Command, req *core.ChartAggregationRequest, flagReq core.ChartAggregationRequest) {
	flags := cmd.Flags()
	if flags.Changed("category") {
		req.CategoryField = flagReq.CategoryField
	}
	if flags.Changed("value") {
		req.ValueField = flagReq.ValueField
	}
	if flags.Changed("series") {
		req.SeriesField = flagReq.SeriesField
	}
	if flags.Changed("agg") {
		req.Aggregation = flagReq.Aggregation
	}
	if flags.Changed("interval") {
		req.TimeInterval = flagReq.TimeInterval
	}
}

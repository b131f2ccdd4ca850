package commands

import (
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <dataset-id> <column>",
		Short: "Show statistics and value distribution for one column",
		Long: `Show statistics for one column of a dataset: total, null, and unique
counts, numeric min/max/average when the values are numbers, the most common
value, and the ten most frequent values.`,
		Example: `  leapviz stats 3f0c...e1 amount`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			col, err := cmdCtx.Engine.ColumnStatistics(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return renderColumnDetail(cmdCtx.Renderer, col)
		},
	}
}

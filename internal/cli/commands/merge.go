package commands

import (
	"context"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	var (
		req         core.DatasetMergeRequest
		on          []string
		mergeType   string
		requestFile string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Join two datasets into a new dataset",
		Long: `Join two completed datasets into a new dataset.

Join conditions are left:right[:operator] pairs; all conditions must hold
for a pair of rows to match. Operators: eq (default), neq, gt, gte, lt, lte.
Types: inner (default), left, right, full, cross. Cross joins ignore --on.

Columns of the merged dataset are prefixed Left_ and Right_.`,
		Example: `  # Orders with their customer
  leapviz merge --name "Orders by customer" --left 3f0c...e1 --right 9a2b...07 \
    --on customer_id:id --type left`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flagReq := req
			if requestFile != "" {
				if err := loadRequest(requestFile, &req); err != nil {
					return err
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					req.NewDatasetName = flagReq.NewDatasetName
				}
				if flags.Changed("left") {
					req.LeftDatasetID = flagReq.LeftDatasetID
				}
				if flags.Changed("right") {
					req.RightDatasetID = flagReq.RightDatasetID
				}
			}
			if mergeType != "" {
				req.MergeType = core.MergeType(mergeType)
			}
			for _, s := range on {
				jc, err := parseJoinCondition(s)
				if err != nil {
					return err
				}
				req.JoinConditions = append(req.JoinConditions, jc)
			}

			return runImport(cmd, "Merging datasets...", func(ctx context.Context, cc *CommandContext) (*core.ImportDatasetResponse, error) {
				return cc.Engine.Merge(ctx, cc.Cfg.Owner, req)
			})
		},
	}

	cmd.Flags().StringVarP(&req.NewDatasetName, "name", "n", "", "Name of the merged dataset (required)")
	cmd.Flags().StringVar(&req.LeftDatasetID, "left", "", "Left dataset ID")
	cmd.Flags().StringVar(&req.RightDatasetID, "right", "", "Right dataset ID")
	cmd.Flags().StringArrayVar(&on, "on", nil, "Join condition as left:right[:operator] (repeatable)")
	cmd.Flags().StringVarP(&mergeType, "type", "t", "", "Join type: inner, left, right, full, cross")
	cmd.Flags().StringVar(&requestFile, "request", "", "YAML or JSON request file")

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"inner", "left", "right", "full", "cross"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

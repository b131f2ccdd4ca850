package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewDatasetsCommand creates the datasets command group.
func NewDatasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ds"},
		Short:   "List, inspect, and delete datasets",
	}

	cmd.AddCommand(newDatasetsListCommand())
	cmd.AddCommand(newDatasetsInfoCommand())
	cmd.AddCommand(newDatasetsDeleteCommand())
	cmd.AddCommand(newDatasetsDropdownCommand())
	return cmd
}

func newDatasetsListCommand() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your datasets, newest first",
		Long: `List the datasets owned by the configured owner, newest first.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  leapviz datasets list
  leapviz datasets list --page 2 --page-size 20 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cmdCtx.Engine.ListDatasets(cmd.Context(), cmdCtx.Cfg.Owner, page, pageSize)
			if err != nil {
				return err
			}
			return renderDatasetPage(cmdCtx.Renderer, res)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Datasets per page (default from config)")
	return cmd
}

func newDatasetsInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <dataset-id>",
		Short: "Show a dataset's header and schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ds, err := cmdCtx.Engine.GetDatasetInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderDataset(cmdCtx.Renderer, ds)
		},
	}
}

func newDatasetsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <dataset-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a dataset with its schema and rows",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Engine.DeleteDataset(cmd.Context(), cmdCtx.Cfg.Owner, args[0]); err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]any{"datasetId": args[0], "deleted": true})
			}
			r.Success(fmt.Sprintf("Deleted dataset %s", args[0]))
			return nil
		},
	}
}

func newDatasetsDropdownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dropdown",
		Short: "List datasets with their columns for pickers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := cmdCtx.Engine.Dropdown(cmd.Context(), cmdCtx.Cfg.Owner)
			if err != nil {
				return err
			}
			return renderDropdown(cmdCtx.Renderer, entries)
		},
	}
}

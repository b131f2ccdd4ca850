package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new leapviz workspace",
		Long: `Initialize a new leapviz workspace with a leapviz.yaml configuration file.

Use --example to also write sample CSV files under data/ and a config with a
local SQLite source, ready for "leapviz import".`,
		Example: `  # Initialize in current directory
  leapviz init

  # Initialize with sample data
  leapviz init --example

  # Initialize in a new directory
  leapviz init my-workspace --example

  # Force overwrite existing config
  leapviz init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Also write sample data files")

	return cmd
}

// prepareInitDir creates dir and refuses to clobber an existing config.
func prepareInitDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "leapviz.yaml")); err == nil && !force {
		return core.InvalidArgumentf("leapviz.yaml already exists. Use --force to overwrite")
	}
	return nil
}

// printScaffold lists written files with a check mark and kept files muted.
func printScaffold(r *output.Renderer, written, kept []scaffoldFile) {
	mark := r.Styles().StatusSuccess.String()
	for _, f := range written {
		r.Println(mark + " " + f.target)
	}
	for _, f := range kept {
		r.Muted("  " + f.target + " (kept existing file)")
	}
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	written, kept, err := writeScaffold("minimal", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}
	printScaffold(r, written, kept)

	r.Println("")
	r.Success("leapviz workspace initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Configure SQL sources and object storage in leapviz.yaml")
	r.Println("  2. Run 'leapviz import file <path>' to create a dataset")
	r.Println("  3. Run 'leapviz datasets list' to see your datasets")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	written, kept, err := writeScaffold("example", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}

	var configFiles, dataFiles []scaffoldFile
	for _, f := range written {
		if f.isSampleData() {
			dataFiles = append(dataFiles, f)
		} else {
			configFiles = append(configFiles, f)
		}
	}

	r.Header(2, "Configuration")
	printScaffold(r, configFiles, nil)
	r.Println("")
	r.Header(2, "Sample data")
	printScaffold(r, dataFiles, kept)

	r.Println("")
	r.Success("leapviz workspace initialized with example data!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  leapviz import file data/sales.csv       Import the sales sample")
	r.Println("  leapviz datasets list                    View imported datasets")
	r.Println("  leapviz aggregate <id> --category region --value amount")

	return nil
}

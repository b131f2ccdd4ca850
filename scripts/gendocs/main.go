// Command gendocs generates the markdown reference for the leapviz CLI and
// its configuration file.
//
// Usage:
//
//	go run ./scripts/gendocs --gen cli --outdir docs/cli
//	go run ./scripts/gendocs --gen config --outdir docs/reference
//	go run ./scripts/gendocs
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	if err := newGenerateCmd().Execute(); err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var gen, outDir string

	cmd := &cobra.Command{
		Use:           "gendocs",
		Short:         "Generate leapviz reference docs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if gen != "cli" && gen != "config" && gen != "all" {
				return fmt.Errorf("unknown --gen value %q (use cli, config or all)", gen)
			}
			if outDir != "" && gen == "all" {
				return fmt.Errorf("--outdir needs --gen cli or --gen config")
			}

			root, err := findProjectRoot()
			if err != nil {
				return fmt.Errorf("failed to find project root: %w", err)
			}
			target := func(def string) string {
				if outDir != "" {
					return outDir
				}
				return filepath.Join(root, "docs", def)
			}

			if gen != "config" {
				if err := generateCLIDocs(target("cli")); err != nil {
					return fmt.Errorf("cli docs: %w", err)
				}
			}
			if gen != "cli" {
				if err := generateConfigDocs(target("reference")); err != nil {
					return fmt.Errorf("config docs: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&gen, "gen", "all", "What to generate: cli, config, all")
	cmd.Flags().StringVar(&outDir, "outdir", "", "Output directory (default: docs/cli or docs/reference)")
	return cmd
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

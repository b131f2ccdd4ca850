package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/adapter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the leapviz version, build information, and the SQL source types compiled in.`,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "leapviz v%s\n", version)
			_, _ = fmt.Fprintf(w, "commit %s, built %s, %s %s/%s\n", commit, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)

			sources := adapter.ListAdapters()
			if len(sources) == 0 {
				sources = []string{"none"}
			}
			_, _ = fmt.Fprintf(w, "sql sources: %s\n", strings.Join(sources, ", "))
		},
	}
}

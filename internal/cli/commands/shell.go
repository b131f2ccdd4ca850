package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/internal/engine"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
)

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <dataset-id>",
		Short: "Explore a dataset interactively",
		Long: `Open an interactive shell on one dataset.

Build up filters, sorting, and paging with dot-commands and see the
current page after each change. Type .help for commands, .quit to exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args[0])
		},
	}
}

func runShell(cmd *cobra.Command, datasetID string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	sess, err := newShellSession(ctx, cmdCtx.Engine, cmdCtx.Renderer, datasetID)
	if err != nil {
		return err
	}

	// Setup history file next to the state database
	historyFile := ""
	if cmdCtx.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "shell_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sess.prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    sess.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapviz shell on %s (%d rows)\n", sess.ds.Name, sess.ds.TotalRows)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		quit, err := sess.handle(ctx, line)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		if quit {
			break
		}
		rl.SetPrompt(sess.prompt())
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// shellSession holds the query state of one interactive shell.
type shellSession struct {
	eng    *engine.Engine
	r      *output.Renderer
	ds     *core.Dataset
	params core.QueryParameters
}

func newShellSession(ctx context.Context, eng *engine.Engine, r *output.Renderer, datasetID string) (*shellSession, error) {
	ds, err := eng.GetDatasetInfo(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return &shellSession{
		eng:    eng,
		r:      r,
		ds:     ds,
		params: core.DefaultQueryParameters(),
	}, nil
}

func (s *shellSession) prompt() string {
	return fmt.Sprintf("%s[%d]> ", s.ds.Name, s.params.Page)
}

// completer offers dot-commands and column names.
func (s *shellSession) completer() *readline.PrefixCompleter {
	columns := make([]readline.PrefixCompleterInterface, len(s.ds.Schema))
	for i, c := range s.ds.Schema {
		columns[i] = readline.PcItem(c.Name)
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".show"),
		readline.PcItem(".next"),
		readline.PcItem(".prev"),
		readline.PcItem(".page"),
		readline.PcItem(".size"),
		readline.PcItem(".filter", columns...),
		readline.PcItem(".filters"),
		readline.PcItem(".clear"),
		readline.PcItem(".sort", columns...),
		readline.PcItem(".schema"),
		readline.PcItem(".stats", columns...),
		readline.PcItem(".agg", columns...),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// handle runs one shell line. It reports whether the shell should exit.
func (s *shellSession) handle(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true, nil

	case ".help":
		printShellHelp(s.r.Writer())
		return false, nil

	case ".schema":
		return false, renderDataset(s.r, s.ds)

	case ".show":
	case ".next":
		s.params.Page++
	case ".prev":
		if s.params.Page > 1 {
			s.params.Page--
		}
	case ".page":
		if len(args) != 1 {
			return false, core.InvalidArgumentf("usage: .page <n>")
		}
		s.params.Page = atoiOr(args[0], 1)
	case ".size":
		if len(args) != 1 {
			return false, core.InvalidArgumentf("usage: .size <n>")
		}
		s.params.PageSize = atoiOr(args[0], core.DefaultPageSize)
		s.params.Page = 1

	case ".filter":
		if len(args) == 0 {
			return false, core.InvalidArgumentf("usage: .filter field:operator:value")
		}
		f, err := parseFilter(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		s.params.Filters = append(s.params.Filters, f)
		s.params.Page = 1
		if err := s.show(ctx); err != nil {
			s.params.Filters = s.params.Filters[:len(s.params.Filters)-1]
			return false, err
		}
		return false, nil
	case ".filters":
		if len(s.params.Filters) == 0 {
			s.r.Muted("No filters")
			return false, nil
		}
		for i, f := range s.params.Filters {
			s.r.Printf("%d. %s %s %q\n", i+1, f.Field, f.Operator, f.Value)
		}
		return false, nil
	case ".clear":
		s.params = core.DefaultQueryParameters()

	case ".sort":
		if len(args) == 0 || len(args) > 2 {
			return false, core.InvalidArgumentf("usage: .sort <field> [asc|desc]")
		}
		s.params.SortBy = args[0]
		s.params.SortDirection = "asc"
		if len(args) == 2 {
			s.params.SortDirection = args[1]
		}

	case ".stats":
		if len(args) != 1 {
			return false, core.InvalidArgumentf("usage: .stats <column>")
		}
		col, err := s.eng.ColumnStatistics(ctx, s.ds.ID, args[0])
		if err != nil {
			return false, err
		}
		return false, renderColumnDetail(s.r, col)

	case ".agg":
		if len(args) < 2 {
			return false, core.InvalidArgumentf("usage: .agg <category> <value> [method] [series]")
		}
		req := core.ChartAggregationRequest{
			CategoryField: args[0],
			ValueField:    args[1],
			Aggregation:   "sum",
			Filters:       s.params.Filters,
		}
		if len(args) > 2 {
			req.Aggregation = args[2]
		}
		if len(args) > 3 {
			req.SeriesField = args[3]
		}
		resp, err := s.eng.Aggregate(ctx, s.ds.ID, req)
		if err != nil {
			return false, err
		}
		return false, renderChart(s.r, resp)

	default:
		return false, core.InvalidArgumentf("unknown command: %s (type .help for commands)", command)
	}

	return false, s.show(ctx)
}

// show renders the current page.
func (s *shellSession) show(ctx context.Context) error {
	res, err := s.eng.QueryData(ctx, s.ds.ID, s.params)
	if err != nil {
		return err
	}
	s.params.Page = res.Page
	s.params.PageSize = res.PageSize
	return renderQueryResult(s.r, s.ds.Schema, res)
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .show                      Show the current page
  .next / .prev              Move one page forward or back
  .page <n>                  Jump to a page
  .size <n>                  Set rows per page (max 100)
  .filter field:op:value     Add a filter (eq, neq, gt, gte, lt, lte, contains, startswith, endswith)
  .filters                   List active filters
  .clear                     Remove filters, sorting, and paging
  .sort <field> [asc|desc]   Sort rows
  .schema                    Show the dataset schema
  .stats <column>            Show column statistics
  .agg <cat> <val> [m] [s]   Aggregate with method m and optional series s
  .quit / .exit              Exit the shell

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for commands and column names
`
	_, _ = fmt.Fprintln(w, help)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapviz/internal/cli"
	"github.com/leapstack-labs/leapviz/internal/cli/config"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// exitCases pairs a representative error with what its exit code means.
// The code itself comes from cli.ExitCode so the table cannot drift.
var exitCases = []struct {
	err     error
	meaning string
}{
	{nil, "Success"},
	{errors.New("unexpected"), "Unexpected error (check stderr for details)"},
	{core.ErrInvalidArgument, "Invalid argument, filter, request file, or configuration"},
	{core.ErrNotFound, "Dataset, column, source, or file not found"},
	{core.ErrOperationFailed, "Import or merge failed and was rolled back"},
}

// documented reports whether cmd gets its own page or section.
func documented(cmd *cobra.Command) bool {
	return !cmd.Hidden && cmd.Name() != "help" && cmd.Name() != "__complete"
}

func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if documented(c) {
			out = append(out, c)
		}
	}
	return out
}

// generateCLIDocs writes index.md plus one page per top-level command.
func generateCLIDocs(outDir string) error {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(root).Bytes()}
	for _, cmd := range visibleCommands(root) {
		pages[cmd.Name()+".md"] = commandPage(cmd).Bytes()
	}

	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		logger.Info("generated", "file", filepath.Join(outDir, name))
	}
	return nil
}

func cliIndex(root *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for leapviz")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/leapviz/cmd/leapviz@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph("Flags override environment variables, which override leapviz.yaml. Each scalar setting has a variable; nested keys join with a double underscore.")
	var envRows [][]string
	for _, f := range getConfigSchema() {
		if f.Category == "source" {
			continue
		}
		envRows = append(envRows, []string{InlineCode(config.EnvVar(f.Name)), InlineCode(f.Name)})
	}
	w.Table([]string{"Variable", "Setting"}, envRows)

	w.Header(2, "Exit Codes")
	var exitRows [][]string
	for _, c := range exitCases {
		exitRows = append(exitRows, []string{InlineCode(strconv.Itoa(cli.ExitCode(c.err))), c.meaning})
	}
	w.Table([]string{"Code", "Meaning"}, exitRows)

	return w
}

// commandPage documents cmd and, in sections, each of its subcommands.
func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	w.Paragraph(description(cmd))

	w.Header(2, "Usage")
	if cmd.HasSubCommands() {
		w.CodeBlock("bash", fmt.Sprintf("leapviz %s <subcommand> [options]", cmd.Name()))
	} else {
		w.CodeBlock("bash", cmd.UseLine())
	}

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.BulletList(aliases)
	}

	subs := visibleCommands(cmd)
	if len(subs) > 0 {
		w.Header(2, "Subcommands")
		rows := make([][]string, len(subs))
		for i, sub := range subs {
			rows[i] = []string{InlineCode(sub.Name()), cleanDescription(sub.Short)}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	for _, sub := range subs {
		w.Header(2, sub.Name())
		w.Paragraph(description(sub))
		w.CodeBlock("bash", sub.UseLine())
		if sub.HasLocalFlags() {
			writeFlagsTable(w, sub.LocalFlags())
		}
		if sub.Example != "" {
			w.CodeBlock("bash", cleanExample(sub.Example))
		}
	}
	return w
}

func description(cmd *cobra.Command) string {
	if cmd.Long != "" {
		return cmd.Long
	}
	return cmd.Short
}

// writeFlagsTable lists the visible flags of a flag set.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		switch {
		case def == "" || def == "[]" || def == "0" && f.Value.Type() == "int":
			def = ""
		case f.Value.Type() == "string":
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// cleanExample strips the indentation shared by all non-blank lines.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, line := range lines {
			if len(line) >= indent {
				lines[i] = line[indent:]
			} else {
				lines[i] = strings.TrimLeft(line, " \t")
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

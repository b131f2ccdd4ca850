// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapviz/internal/cli/output"
)

// Sample import files written by SetupTestData. The sales rows are small
// enough that expected aggregates can be worked out by hand:
// north sums to 19.75, south to 4, and east has a missing amount.
var sampleFiles = map[string]string{
	"sales.csv": `region,product,amount,day
north,Coffee,12.5,2024-01-03
south,Tea,4,2024-01-15
north,Tea,7.25,2024-02-01
east,Juice,,2024-02-20
`,
	"customers.csv": `id,name
1,Alice
2,Bob
3,Cara
`,
	"orders.csv": `order_id,customer_id,total
10,1,20
11,1,35
12,2,12
13,9,8
`,
}

// SetupTestData writes sales.csv, customers.csv and orders.csv into a
// temporary directory and returns its path.
func SetupTestData(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range sampleFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	return dir
}

// TestRenderer wraps a Renderer whose output is captured in buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a capturing renderer with the given mode and TTY state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererMarkdown creates a capturing renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a capturing renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns everything written to stdout so far.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// Reset clears both buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// DecodeJSON unmarshals the captured stdout into a T.
func DecodeJSON[T any](t *testing.T, tr *TestRenderer) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(tr.Out.Bytes(), &v); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, tr.Output())
	}
	return v
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails when s contains ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains fails when s lacks the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertValidMarkdown checks for balanced code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// MarkdownTable returns the cells of the first markdown table in md, header
// row first. Separator rows are skipped and cells are trimmed.
func MarkdownTable(md string) [][]string {
	var rows [][]string
	started := false
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			if started {
				break
			}
			continue
		}
		started = true

		cells := strings.Split(strings.Trim(line, "|"), "|")
		separator := true
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
			if strings.Trim(cells[i], "-:") != "" {
				separator = false
			}
		}
		if !separator {
			rows = append(rows, cells)
		}
	}
	return rows
}

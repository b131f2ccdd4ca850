// Package main provides tests for the leapviz CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapviz/internal/cli"
	"github.com/leapstack-labs/leapviz/internal/cli/config"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(output, "leapviz v") {
		t.Errorf("version output should contain 'leapviz v', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help command error = %v", err)
	}

	expectedCommands := []string{"import", "datasets", "query", "detail", "stats", "aggregate", "merge", "shell", "init"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestImportAndListCommand(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	csvPath := filepath.Join(tmpDir, "sales.csv")
	if err := os.WriteFile(csvPath, []byte("region,amount\nnorth,12.5\nsouth,4\n"), 0600); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	state := filepath.Join(tmpDir, "state.db")

	output, err := runCLI(t, "import", "file", csvPath, "--state", state, "-o", "json")
	if err != nil {
		t.Fatalf("import command error = %v", err)
	}
	var resp struct {
		DatasetID string `json:"datasetId"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal([]byte(output), &resp); err != nil {
		t.Fatalf("import output is not JSON: %v\n%s", err, output)
	}
	if resp.Status != "Success" || resp.DatasetID == "" {
		t.Fatalf("unexpected import response: %+v", resp)
	}

	output, err = runCLI(t, "datasets", "list", "--state", state, "-o", "markdown")
	if err != nil {
		t.Fatalf("list command error = %v", err)
	}
	if !strings.Contains(output, resp.DatasetID) {
		t.Errorf("list output should contain %s, got: %s", resp.DatasetID, output)
	}
}

func TestExitCodes(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown dataset", []string{"query", "missing", "--state", ":memory:"}, 3},
		{"bad filter", []string{"query", "missing", "-f", "broken", "--state", ":memory:"}, 2},
		{"bad output flag", []string{"datasets", "list", "-o", "yaml", "--state", ":memory:"}, 2},
		{"unknown command", []string{"frobnicate"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if got := cli.ExitCode(err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d (err = %v)", got, tt.want, err)
			}
		})
	}
}

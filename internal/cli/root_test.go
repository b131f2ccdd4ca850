package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leapstack-labs/leapviz/internal/cli/config"
	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"invalid argument", core.InvalidArgumentf("bad"), 2},
		{"not found", core.NotFoundf("missing"), 3},
		{"operation failed", core.OperationFailedf("failed"), 4},
		{"wrapped", fmt.Errorf("outer: %w", core.NotFoundf("missing")), 3},
		{"unexpected kind", &core.Error{Kind: core.KindUnexpected, Message: "x"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestRootFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, flag := range []string{"config", "state", "owner", "verbose", "output", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestRootSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "init", "import", "datasets", "query", "detail", "stats", "aggregate", "merge", "shell", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig(context.Background())
	assert.Equal(t, config.DefaultStateFile, cfg.StatePath)
	assert.Equal(t, config.DefaultOwner, cfg.Owner)
	assert.Equal(t, config.DefaultBatchSize, cfg.BatchSize)

	r := GetRenderer(context.Background())
	assert.NotNil(t, r)
}

func TestPersistentPreRunStoresConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"version", "--owner", "ana", "-o", "json"})
	require.NoError(t, cmd.Execute())

	cfg := config.GetCurrentConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "ana", cfg.Owner)
	assert.Equal(t, string(output.ModeJSON), cfg.OutputFormat)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			cmd := NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs([]string{"completion", shell})
			require.NoError(t, cmd.Execute())
			assert.Contains(t, buf.String(), "leapviz")
		})
	}

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, cmd.Execute())
}

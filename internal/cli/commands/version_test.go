package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		wantOut []string
	}{
		{
			name:    "release build",
			version: "0.1.0",
			commit:  "abc123",
			wantOut: []string{"leapviz v0.1.0", "commit abc123, built today", runtime.Version()},
		},
		{
			name:    "dev build",
			version: "dev",
			commit:  "unknown",
			wantOut: []string{"leapviz vdev", "commit unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version, tt.commit, "today")
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
			// commands_test.go links the sqlite adapter into this package's tests.
			assert.Contains(t, buf.String(), "sql sources:")
			assert.Contains(t, buf.String(), "sqlite")
		})
	}
}

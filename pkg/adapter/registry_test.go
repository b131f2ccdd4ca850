package adapter

import (
	"log/slog"
	"testing"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "oracle",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()
	assert.Contains(t, msg, `"oracle"`)
	assert.Contains(t, msg, "duckdb, postgres")
	assert.Contains(t, msg, "leapviz.yaml", "error should point at the config file")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}

func TestRegister(t *testing.T) {
	Register(Registration{
		Name:      "Test_Source",
		FileBased: true,
		Factory:   func(_ *slog.Logger) Adapter { return nil },
	})

	assert.True(t, IsRegistered("test_source"), "names are matched case-insensitively")
	reg, ok := Lookup("TEST_SOURCE")
	require.True(t, ok)
	assert.True(t, reg.FileBased)
	assert.Contains(t, ListAdapters(), "test_source")
}

func TestRegister_RequiresFactory(t *testing.T) {
	assert.Panics(t, func() { Register(Registration{Name: "no_factory"}) })
	assert.Panics(t, func() { Register(Registration{Factory: func(*slog.Logger) Adapter { return nil }}) })
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err, "NewAdapter with empty type should fail")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

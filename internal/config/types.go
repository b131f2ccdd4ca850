// Package config provides shared configuration types for leapviz.
// It is decoupled from CLI concerns so any entry point can describe and
// validate a SQL import source.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/adapter"
)

// SourceConfig holds a named SQL import source.
type SourceConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File-based databases (DuckDB, SQLite) or a full DSN
	Database string `koanf:"database"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, secrets, settings)
	Params map[string]any `koanf:"params"`
}

// Validate checks if the source configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (s *SourceConfig) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("source type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(s.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      s.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// AdapterConfig converts the source into an adapter connection config.
// File-based types take their path from Database, and a URL in Database is
// passed through as the DSN.
func (s *SourceConfig) AdapterConfig() adapter.Config {
	cfg := adapter.Config{
		Type:     strings.ToLower(s.Type),
		Database: s.Database,
		Host:     s.Host,
		Port:     s.Port,
		Username: s.User,
		Password: s.Password,
		Schema:   s.Schema,
		Options:  s.Options,
		Params:   s.Params,
	}
	reg, ok := adapter.Lookup(cfg.Type)
	switch {
	case ok && reg.FileBased:
		cfg.Path = s.Database
	case strings.Contains(s.Database, "://"):
		// A URL-style DSN carries the whole connection.
		cfg.Path = s.Database
		cfg.Database = ""
	}
	return cfg
}

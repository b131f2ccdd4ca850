package core

import "database/sql"

// AdapterConfig holds configuration for connecting to an import source database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// SourceColumn is a column reported by a source database.
type SourceColumn struct {
	Name         string
	DatabaseType string
	Nullable     bool
	Position     int
}

// TableMetadata holds metadata about a source table.
type TableMetadata struct {
	Schema   string
	Name     string
	Columns  []SourceColumn
	RowCount int64
}

// Rows wraps sql.Rows to provide a consistent interface.
type Rows struct {
	*sql.Rows
}

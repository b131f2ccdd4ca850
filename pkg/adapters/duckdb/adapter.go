// Package duckdb provides a DuckDB import-source adapter for leapviz.
//
// Besides plain tables, DuckDB can read CSV and Parquet files or remote
// objects directly in the import query, e.g.
//
//	SELECT * FROM read_parquet('s3://bucket/sales/*.parquet')
//
// Extensions, secrets, session settings and file views come from
// AdapterConfig.Params.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}

	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path), slog.Bool("read_only", params.ReadOnly))

	db, err := sql.Open("duckdb", params.dsn(path))
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	if err := a.applyParams(ctx, params); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}
	return nil
}

// applyParams installs extensions, creates secrets, applies settings and
// defines file views.
func (a *Adapter) applyParams(ctx context.Context, p *Params) error {
	for _, ext := range p.Extensions {
		a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if err := a.Exec(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	for _, secret := range p.Secrets {
		if err := a.Exec(ctx, buildCreateSecretSQL(secret)); err != nil {
			return fmt.Errorf("failed to create %s secret: %w", secret.Type, err)
		}
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := a.Exec(ctx, fmt.Sprintf("SET %s = '%s'", k, p.Settings[k])); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}

	names := make([]string, 0, len(p.Views))
	for name := range p.Views {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := a.Exec(ctx, buildCreateViewSQL(name, p.Views[name])); err != nil {
			return fmt.Errorf("failed to create view %s: %w", name, err)
		}
	}
	return nil
}

// buildCreateViewSQL renders a temporary view over a file scan. DuckDB picks
// the reader (CSV, Parquet, JSON) from the file extension.
func buildCreateViewSQL(name, location string) string {
	return fmt.Sprintf("CREATE OR REPLACE TEMP VIEW %s AS SELECT * FROM %s",
		quoteIdent(name), quoteLiteral(location))
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// buildCreateSecretSQL renders a CREATE SECRET statement.
func buildCreateSecretSQL(s SecretConfig) string {
	parts := []string{"TYPE " + s.Type}
	if s.Provider != "" {
		parts = append(parts, "PROVIDER "+s.Provider)
	}
	if s.Region != "" {
		parts = append(parts, fmt.Sprintf("REGION '%s'", s.Region))
	}
	if scope := formatScope(s.Scope); scope != "" {
		parts = append(parts, "SCOPE "+scope)
	}
	if s.KeyID != "" {
		parts = append(parts, fmt.Sprintf("KEY_ID '%s'", s.KeyID))
	}
	if s.Secret != "" {
		parts = append(parts, fmt.Sprintf("SECRET '%s'", s.Secret))
	}
	if s.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("ENDPOINT '%s'", s.Endpoint))
	}
	if s.URLStyle != "" {
		parts = append(parts, fmt.Sprintf("URL_STYLE '%s'", s.URLStyle))
	}
	if s.UseSSL != nil {
		parts = append(parts, fmt.Sprintf("USE_SSL %t", *s.UseSSL))
	}
	return "CREATE SECRET (\n    " + strings.Join(parts, ",\n    ") + "\n)"
}

func formatScope(scope any) string {
	var items []string
	switch v := scope.(type) {
	case nil:
		return ""
	case string:
		return fmt.Sprintf("'%s'", v)
	case []string:
		items = v
	case []any:
		for _, s := range v {
			items = append(items, fmt.Sprint(s))
		}
	default:
		return fmt.Sprintf("'%v'", v)
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("'%s'", s)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.TableMetadata, error) {
	return a.GetTableMetadataCommon(ctx, table, "main", adapter.QuestionPlaceholder)
}

var _ adapter.Adapter = (*Adapter)(nil)

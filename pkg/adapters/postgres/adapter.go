// Package postgres provides a PostgreSQL import-source adapter for leapviz.
//
// Import sessions are opened read-only: every statement runs with
// default_transaction_read_only=on, so an import query cannot modify the
// source database.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/leapviz/pkg/adapter"
)

// defaultApplicationName identifies import sessions in pg_stat_activity.
const defaultApplicationName = "leapviz"

// Params holds PostgreSQL-specific configuration from adapter.Config.Params.
type Params struct {
	// ApplicationName overrides the session's application_name.
	ApplicationName string `mapstructure:"application_name"`

	// StatementTimeout caps each import query, in PostgreSQL interval
	// syntax (e.g. "30s", "5min").
	StatementTimeout string `mapstructure:"statement_timeout"`
}

func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build postgres params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid postgres params: %w", err)
	}
	return p, nil
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Connect establishes a read-only connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	connCfg, err := connConfig(cfg)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to postgres",
		slog.String("host", connCfg.Host),
		slog.Int("port", int(connCfg.Port)),
		slog.String("database", connCfg.Database))

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// connConfig parses the connection settings and adds the session parameters
// every import runs with.
func connConfig(cfg adapter.Config) (*pgx.ConnConfig, error) {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return nil, err
	}

	connCfg, err := pgx.ParseConfig(buildPostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("invalid postgres connection settings: %w", err)
	}

	rp := connCfg.RuntimeParams
	rp["default_transaction_read_only"] = "on"
	switch {
	case params.ApplicationName != "":
		rp["application_name"] = params.ApplicationName
	case rp["application_name"] == "":
		rp["application_name"] = defaultApplicationName
	}
	if params.StatementTimeout != "" {
		rp["statement_timeout"] = params.StatementTimeout
	}
	return connCfg, nil
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
// A Path is treated as a full connection URL and used as is.
func buildPostgresDSN(cfg adapter.Config) string {
	if strings.HasPrefix(cfg.Path, "postgres://") || strings.HasPrefix(cfg.Path, "postgresql://") {
		return cfg.Path
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	// Remaining options pass through in a stable order.
	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		if k != "sslmode" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		dsn += fmt.Sprintf(" %s=%s", k, cfg.Options[k])
	}

	return dsn
}

// defaultSchema is the configured schema, or public.
func (a *Adapter) defaultSchema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return "public"
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.TableMetadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.defaultSchema(), adapter.DollarPlaceholder)
}

var _ adapter.Adapter = (*Adapter)(nil)

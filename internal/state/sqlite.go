package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapviz/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements core.RowStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewWithDB wraps an already opened database. Used with sqlmock in tests.
func NewWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database, creating parent
// directories as needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state store", slog.String("path", path))
	return nil
}

// OpenAndMigrate opens path and applies all migrations.
func OpenAndMigrate(path string, logger *slog.Logger) (*SQLiteStore, error) {
	s := NewSQLiteStore(logger)
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the opened database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

// --- Dataset reads ---

const datasetColumns = `id, name, source_type, source_name, status, total_rows,
	schema_version, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(r rowScanner) (*core.Dataset, error) {
	var (
		ds        core.Dataset
		createdAt string
		updatedAt sql.NullString
	)
	if err := r.Scan(&ds.ID, &ds.Name, &ds.SourceType, &ds.SourceName, &ds.Status,
		&ds.TotalRows, &ds.SchemaVersion, &ds.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	ds.CreatedAt = parseTime(createdAt)
	if updatedAt.Valid {
		t := parseTime(updatedAt.String)
		ds.UpdatedAt = &t
	}
	return &ds, nil
}

// GetDataset returns the dataset header with its schema.
func (s *SQLiteStore) GetDataset(ctx context.Context, datasetID string) (*core.Dataset, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	//nolint:gosec // column list is a constant
	row := s.db.QueryRowContext(ctx, `SELECT `+datasetColumns+` FROM datasets WHERE id = ?`, datasetID)
	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFoundf("dataset %s not found", datasetID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	if ds.Schema, err = s.GetSchema(ctx, datasetID); err != nil {
		return nil, err
	}
	return ds, nil
}

// GetSchema returns the schema columns of a dataset in order.
func (s *SQLiteStore) GetSchema(ctx context.Context, datasetID string) ([]core.Column, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, display_name, data_type, is_required, description, column_order
		 FROM dataset_columns WHERE dataset_id = ? ORDER BY column_order`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []core.Column
	for rows.Next() {
		var c core.Column
		if err := rows.Scan(&c.Name, &c.DisplayName, &c.DataType, &c.IsRequired, &c.Description, &c.Order); err != nil {
			return nil, fmt.Errorf("failed to scan schema column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema: %w", err)
	}
	return cols, nil
}

// ListDatasets returns an owner's datasets newest first with the total count.
// An empty owner lists every dataset. A limit of zero or less means no limit.
func (s *SQLiteStore) ListDatasets(ctx context.Context, owner string, offset, limit int) ([]core.Dataset, int, error) {
	if s.db == nil {
		return nil, 0, errNotOpened
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM datasets WHERE (? = '' OR created_by = ?)`, owner, owner,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count datasets: %w", err)
	}

	//nolint:gosec // column list is a constant
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+datasetColumns+` FROM datasets
		 WHERE (? = '' OR created_by = ?)
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`, owner, owner, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []core.Dataset{}
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan dataset: %w", err)
		}
		out = append(out, *ds)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating datasets: %w", err)
	}
	return out, total, nil
}

// DeleteDataset removes a dataset. Schema and rows go with it via cascade.
func (s *SQLiteStore) DeleteDataset(ctx context.Context, datasetID string) error {
	if s.db == nil {
		return errNotOpened
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, datasetID)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return core.NotFoundf("dataset %s not found", datasetID)
	}
	s.logger.Debug("deleted dataset", slog.String("dataset_id", datasetID))
	return nil
}

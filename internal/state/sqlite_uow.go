package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// unitOfWork is one write transaction.
type unitOfWork struct {
	tx     *sql.Tx
	logger *slog.Logger
	// next row index per dataset touched in this transaction
	next map[string]int64
	done bool
}

// Begin opens a unit of work on a new transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (core.UnitOfWork, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &unitOfWork{tx: tx, logger: s.logger, next: make(map[string]int64)}, nil
}

func (u *unitOfWork) CreateDataset(ctx context.Context, ds *core.Dataset) error {
	if ds.ID == "" {
		ds.ID = generateID()
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = time.Now().UTC()
	}
	if ds.SchemaVersion == 0 {
		ds.SchemaVersion = 1
	}
	if ds.Status == "" {
		ds.Status = core.StatusProcessing
	}

	_, err := u.tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, source_type, source_name, status, total_rows,
			schema_version, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Name, string(ds.SourceType), ds.SourceName, string(ds.Status), ds.TotalRows,
		ds.SchemaVersion, ds.CreatedBy, formatTime(ds.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	u.next[ds.ID] = 0
	return nil
}

func (u *unitOfWork) WriteSchema(ctx context.Context, datasetID string, cols []core.Column) error {
	stmt, err := u.tx.PrepareContext(ctx,
		`INSERT INTO dataset_columns (dataset_id, column_order, name, display_name, data_type, is_required, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare schema insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range cols {
		if _, err := stmt.ExecContext(ctx, datasetID, c.Order, c.Name, c.DisplayName,
			string(c.DataType), c.IsRequired, c.Description); err != nil {
			return fmt.Errorf("failed to write schema column %s: %w", c.Name, err)
		}
	}
	return nil
}

// nextIndex resolves where appended rows start for a dataset.
func (u *unitOfWork) nextIndex(ctx context.Context, datasetID string) (int64, error) {
	if n, ok := u.next[datasetID]; ok {
		return n, nil
	}
	var n int64
	if err := u.tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(row_index) + 1, 0) FROM dataset_rows WHERE dataset_id = ?`, datasetID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to read row count: %w", err)
	}
	return n, nil
}

func (u *unitOfWork) AppendRowBatch(ctx context.Context, datasetID string, rows []core.Row) error {
	if len(rows) == 0 {
		return nil
	}
	start, err := u.nextIndex(ctx, datasetID)
	if err != nil {
		return err
	}

	stmt, err := u.tx.PrepareContext(ctx,
		`INSERT INTO dataset_rows (dataset_id, row_index, data) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		data, err := encodeRow(row)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, datasetID, start+int64(i), data); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	u.next[datasetID] = start + int64(len(rows))
	u.logger.Debug("appended row batch",
		slog.String("dataset_id", datasetID),
		slog.Int("rows", len(rows)))
	return nil
}

func (u *unitOfWork) SetStatus(ctx context.Context, datasetID string, status core.Status, totalRows int) error {
	result, err := u.tx.ExecContext(ctx,
		`UPDATE datasets SET status = ?, total_rows = ?, updated_at = ? WHERE id = ?`,
		string(status), totalRows, formatTime(time.Now()), datasetID)
	if err != nil {
		return fmt.Errorf("failed to set dataset status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return core.NotFoundf("dataset %s not found", datasetID)
	}
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return fmt.Errorf("unit of work already finished")
	}
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	u.done = true
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback: %w", err)
	}
	return nil
}

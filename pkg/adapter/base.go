package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and ReadQuery implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*core.Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ReadQuery runs sqlStr and converts the result for import.
// Column types come from the driver's reported column types; nullable columns
// are not required.
func (b *BaseSQLAdapter) ReadQuery(ctx context.Context, sqlStr string, limit int) (*Result, error) {
	rows, err := b.Query(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	columns := make([]core.Column, len(types))
	for i, ct := range types {
		nullable, ok := ct.Nullable()
		columns[i] = core.Column{
			Name:        ct.Name(),
			DisplayName: ct.Name(),
			DataType:    DataTypeFor(ct.DatabaseTypeName()),
			IsRequired:  ok && !nullable,
			Order:       i,
		}
	}

	result := &Result{Columns: columns}
	dest := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if limit > 0 && len(result.Rows) >= limit {
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(core.Row, len(columns))
		for i, c := range columns {
			row[c.Name] = normalize(dest[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if b.Logger != nil {
		b.Logger.Debug("read query result",
			slog.Int("columns", len(columns)),
			slog.Int("rows", len(result.Rows)))
	}
	return result, nil
}

// normalize turns driver values into JSON-friendly row values.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return v
}

// DataTypeFor maps a driver-reported database type name onto a column type.
// Unrecognised names map to string.
func DataTypeFor(dbType string) core.DataType {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	switch t {
	case "INT", "INT2", "INT4", "INTEGER", "SMALLINT", "TINYINT", "MEDIUMINT", "SERIAL", "UTINYINT", "USMALLINT":
		return core.DataTypeInt
	case "BIGINT", "INT8", "BIGSERIAL", "HUGEINT", "UINTEGER", "UBIGINT":
		return core.DataTypeLong
	case "DECIMAL", "NUMERIC", "MONEY":
		return core.DataTypeDecimal
	case "REAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "DOUBLE PRECISION":
		return core.DataTypeDouble
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE", "TIMESTAMP_NS", "TIMESTAMP_MS":
		return core.DataTypeDateTime
	case "BOOL", "BOOLEAN":
		return core.DataTypeBoolean
	}
	return core.DataTypeString
}

// ParseQualifiedName splits a table reference into schema and name,
// falling back to defaultSchema.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// Placeholder formats the n-th bind parameter for a driver.
type Placeholder func(n int) string

// QuestionPlaceholder renders "?" placeholders.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders "$n" placeholders.
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// GetTableMetadataCommon reads column metadata from information_schema.columns.
// Concrete adapters call it with their default schema and placeholder style.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table, defaultSchema string, ph Placeholder) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // Placeholders are ? or $N
	query := fmt.Sprintf(`
		SELECT 
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns 
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, ph(1), ph(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.SourceColumn
	for rows.Next() {
		var col core.SourceColumn
		var nullable string
		if err := rows.Scan(&col.Name, &col.DatabaseType, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, core.NotFoundf("table %s not found", table)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", schema, tableName) //nolint:gosec // Table names are from metadata
	var rowCount int64
	if err := b.DB.QueryRowContext(ctx, countQuery).Scan(&rowCount); err != nil {
		rowCount = 0
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}

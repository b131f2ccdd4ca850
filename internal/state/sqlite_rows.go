package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// GetAllRows returns every stored row of a dataset in insertion order.
// Numbers decode as json.Number so their text survives unchanged.
func (s *SQLiteStore) GetAllRows(ctx context.Context, datasetID string) ([]core.Row, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM dataset_rows WHERE dataset_id = ? ORDER BY row_index`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []core.Row{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row, err := decodeRow(data)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func decodeRow(data string) (core.Row, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	row := core.Row{}
	if err := dec.Decode(&row); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return row, nil
}

func encodeRow(row core.Row) (string, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("failed to encode row: %w", err)
	}
	return string(b), nil
}

package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name:  "empty map returns empty struct",
			input: map[string]any{},
			want:  &Params{},
		},
		{
			name:    "unknown key is rejected",
			input:   map[string]any{"view": map[string]any{"a": "a.csv"}},
			wantErr: true,
		},
		{
			name:  "settings with non-string values",
			input: map[string]any{"settings": map[string]any{"threads": 4}},
			want:  &Params{Settings: map[string]string{"threads": "4"}},
		},
		{
			name: "views and read only",
			input: map[string]any{
				"views": map[string]any{
					"orders":    "exports/orders/*.parquet",
					"customers": "customers.csv",
				},
				"read_only": "true",
			},
			want: &Params{
				Views: map[string]string{
					"orders":    "exports/orders/*.parquet",
					"customers": "customers.csv",
				},
				ReadOnly: true,
			},
		},
		{
			name: "remote files with a scoped secret",
			input: map[string]any{
				"extensions": []any{"httpfs"},
				"secrets": []any{
					map[string]any{
						"type":      "s3",
						"provider":  "config",
						"key_id":    "minio",
						"secret":    "minio123",
						"endpoint":  "localhost:9000",
						"url_style": "path",
						"use_ssl":   false,
						"scope":     []any{"s3://exports", "s3://archive"},
					},
				},
				"views": map[string]any{"sales": "s3://exports/sales.parquet"},
			},
			want: &Params{
				Extensions: []string{"httpfs"},
				Secrets: []SecretConfig{{
					Type:     "s3",
					Provider: "config",
					KeyID:    "minio",
					Secret:   "minio123",
					Endpoint: "localhost:9000",
					URLStyle: "path",
					UseSSL:   boolPtr(false),
					Scope:    []any{"s3://exports", "s3://archive"},
				}},
				Views: map[string]string{"sales": "s3://exports/sales.parquet"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_DSN(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		path   string
		want   string
	}{
		{"read write", Params{}, "shop.duckdb", "shop.duckdb"},
		{"read only file", Params{ReadOnly: true}, "shop.duckdb", "shop.duckdb?access_mode=READ_ONLY"},
		{"read only ignored in memory", Params{ReadOnly: true}, ":memory:", ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.dsn(tt.path))
		})
	}
}

func TestBuildCreateViewSQL(t *testing.T) {
	assert.Equal(t,
		`CREATE OR REPLACE TEMP VIEW "orders" AS SELECT * FROM 'exports/orders/*.parquet'`,
		buildCreateViewSQL("orders", "exports/orders/*.parquet"))
	assert.Equal(t,
		`CREATE OR REPLACE TEMP VIEW "odd""name" AS SELECT * FROM 'it''s.csv'`,
		buildCreateViewSQL(`odd"name`, "it's.csv"))
}

func boolPtr(b bool) *bool {
	return &b
}

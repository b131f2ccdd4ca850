package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/leapstack-labs/leapviz/internal/cli/config"
)

// generateConfigDocs generates the leapviz.yaml reference.
func generateConfigDocs(outDir string) error {

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	logger.Info("generated", "file", filepath.Join(outDir, "configuration.md"))

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "general", "rest", "object_store", "source"
}

var fieldDescriptions = map[string]string{
	"state_path":              "SQLite state database, relative to the config file. `:memory:` keeps state for one run",
	"owner":                   "Owner recorded on imported datasets and checked on merge, delete, and append",
	"verbose":                 "Debug logging and the config file in use",
	"output":                  "Output format: auto, text, markdown, json",
	"log_level":               "Log level: debug, info, warn, error",
	"log_format":              "Log format: text, json",
	"batch_size":              "Rows per write batch",
	"sample_size":             "Records sampled when inferring column types",
	"default_page_size":       "Rows per page when a request leaves the size unset (max 100)",
	"metrics_textfile":        "Write Prometheus metrics for each run to this file",
	"rest.timeout_seconds":    "Default REST request timeout",
	"rest.max_records":        "Default cap on imported REST records",
	"object_store.endpoint":   "S3-compatible endpoint (host:port) for s3://bucket/key locations",
	"object_store.access_key": "Access key, supports ${VAR}",
	"object_store.secret_key": "Secret key, supports ${VAR}",
	"object_store.use_ssl":    "Use HTTPS",
	"object_store.region":     "Bucket region",
	"type":                    "Source type: sqlite, duckdb, postgres",
	"database":                "File path (sqlite, duckdb), database name, or postgres:// DSN",
	"host":                    "Database host",
	"port":                    "Database port (postgres default 5432)",
	"user":                    "Database username",
	"password":                "Database password, supports ${VAR}",
	"schema":                  "Default schema (public for postgres, main otherwise)",
	"options":                 "Additional driver-specific options",
	"params":                  "Adapter-specific configuration",
}

var fieldDefaults = map[string]string{
	"state_path":           config.DefaultStateFile,
	"owner":                config.DefaultOwner,
	"output":               config.DefaultOutput,
	"log_level":            config.DefaultLogLevel,
	"log_format":           config.DefaultLogFormat,
	"batch_size":           fmt.Sprint(config.DefaultBatchSize),
	"sample_size":          fmt.Sprint(config.DefaultSampleSize),
	"default_page_size":    "10",
	"rest.timeout_seconds": "30",
	"rest.max_records":     "1000",
}

// getConfigSchema reflects the koanf tags of the config structs.
func getConfigSchema() []ConfigField {
	var fields []ConfigField
	fields = append(fields, structFields(reflect.TypeOf(config.Config{}), "", "general")...)
	fields = append(fields, structFields(reflect.TypeOf(config.RESTConfig{}), "rest.", "rest")...)
	fields = append(fields, structFields(reflect.TypeOf(config.ObjectStoreConfig{}), "object_store.", "object_store")...)
	fields = append(fields, structFields(reflect.TypeOf(config.SourceConfig{}), "", "source")...)
	return fields
}

func structFields(t reflect.Type, prefix, category string) []ConfigField {
	var out []ConfigField
	for i := range t.NumField() {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("koanf"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		// Nested sections are documented on their own.
		switch f.Type.Kind() {
		case reflect.Struct, reflect.Pointer:
			continue
		case reflect.Map:
			if f.Type.Elem().Kind() == reflect.Pointer {
				continue
			}
		}
		name := prefix + tag
		out = append(out, ConfigField{
			Name:        name,
			Type:        f.Type.String(),
			Default:     fieldDefaults[name],
			Description: fieldDescriptions[name],
			Category:    category,
		})
	}
	return out
}

func fieldRows(fields []ConfigField, category string) [][]string {
	var rows [][]string
	for _, f := range fields {
		if f.Category != category {
			continue
		}
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
	}
	return rows
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "leapviz configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("leapviz reads `leapviz.yaml` (or `leapviz.yml`) from the working directory, or the file named by `--config`. Relative paths resolve against the config file's directory.")

	fields := getConfigSchema()
	headers := []string{"Field", "Type", "Default", "Description"}

	w.Header(2, "General Settings")
	w.Table(headers, fieldRows(fields, "general"))

	w.Header(2, "REST Imports")
	w.Paragraph("Defaults for `leapviz import rest`, under the `rest` key:")
	w.Table(headers, fieldRows(fields, "rest"))

	w.Header(2, "Object Storage")
	w.Paragraph("File imports read `s3://bucket/key` locations through an S3-compatible store configured under `object_store`:")
	w.Table(headers, fieldRows(fields, "object_store"))

	w.Header(2, "SQL Sources")
	w.Paragraph("Named sources for `leapviz import db --source <name>` live under the `sources` key:")
	w.Table(headers, fieldRows(fields, "source"))

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# leapviz.yaml
state_path: .leapviz/state.db
owner: analyst
output: auto
log_level: info
batch_size: 1000
sample_size: 100

sources:
  warehouse:
    type: postgres
    host: db.example.com
    user: reader
    password: ${WAREHOUSE_PASSWORD}
    database: analytics
  local:
    type: sqlite
    database: ./data/shop.db

object_store:
  endpoint: minio.example.com:9000
  access_key: ${MINIO_ACCESS_KEY}
  secret_key: ${MINIO_SECRET_KEY}
  use_ssl: true

rest:
  timeout_seconds: 30
  max_records: 1000`)

	w.Header(2, "Environment Variables")
	w.Paragraph("Use `${VAR_NAME}` inside source and object store values. Any key can also be set with a `LEAPVIZ_` variable, using `__` between nested keys:")
	w.CodeBlock("bash", `LEAPVIZ_OWNER=analyst
LEAPVIZ_OBJECT_STORE__ENDPOINT=localhost:9000`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

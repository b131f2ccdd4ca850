package core

import (
	"fmt"
	"strings"
	"time"
)

// DataType is the declared type of a dataset column.
// It is advisory at query time: comparisons always re-infer from the stored value.
type DataType string

// Supported column data types.
const (
	DataTypeString   DataType = "string"
	DataTypeInt      DataType = "int"
	DataTypeLong     DataType = "long"
	DataTypeDecimal  DataType = "decimal"
	DataTypeDouble   DataType = "double"
	DataTypeDateTime DataType = "datetime"
	DataTypeBoolean  DataType = "boolean"
)

// ParseDataType maps a case-insensitive name onto a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch dt := DataType(strings.ToLower(strings.TrimSpace(s))); dt {
	case DataTypeString, DataTypeInt, DataTypeLong, DataTypeDecimal,
		DataTypeDouble, DataTypeDateTime, DataTypeBoolean:
		return dt, true
	}
	return "", false
}

// Status is the lifecycle state of a dataset.
type Status string

// Dataset lifecycle states.
const (
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusError      Status = "Error"
)

// SourceType records where a dataset's rows came from.
type SourceType string

// Dataset source types.
const (
	SourceFile     SourceType = "file"
	SourceDatabase SourceType = "database"
	SourceAPI      SourceType = "api"
	SourceMerged   SourceType = "merged"
)

// Column describes one field of a dataset schema.
type Column struct {
	Name        string   `json:"columnName" mapstructure:"column_name"`
	DisplayName string   `json:"displayName" mapstructure:"display_name"`
	DataType    DataType `json:"dataType" mapstructure:"data_type"`
	IsRequired  bool     `json:"isRequired" mapstructure:"is_required"`
	Description string   `json:"description,omitempty" mapstructure:"description"`
	Order       int      `json:"columnOrder" mapstructure:"column_order"`
}

// Dataset is a named, schema-described collection of rows.
type Dataset struct {
	ID            string     `json:"datasetId"`
	Name          string     `json:"datasetName"`
	SourceType    SourceType `json:"sourceType"`
	SourceName    string     `json:"sourceName"`
	Status        Status     `json:"status"`
	TotalRows     int        `json:"totalRows"`
	SchemaVersion int        `json:"schemaVersion"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	Schema        []Column   `json:"schema,omitempty"`
}

// Column looks up a schema column by its raw field name.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Schema {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the schema declares the named field.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// ValidateSchema checks that column names are unique and non-empty and that
// Order forms a dense 0-based sequence in slice order.
func ValidateSchema(cols []Column) error {
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return InvalidArgumentf("column %d has an empty name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return InvalidArgumentf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Order != i {
			return InvalidArgumentf("column %q has order %d, expected %d", c.Name, c.Order, i)
		}
		if _, ok := ParseDataType(string(c.DataType)); !ok {
			return InvalidArgumentf("column %q has unknown data type %q", c.Name, c.DataType)
		}
	}
	return nil
}

// Row is one record: field name to a deserialized scalar.
// Values are nil, bool, json.Number, string, or nested JSON structures.
type Row map[string]any

// Get returns the raw value for field and whether the key is present.
func (r Row) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DatasetRef is a compact id/name pair for pickers.
type DatasetRef struct {
	ID   string `json:"datasetId"`
	Name string `json:"datasetName"`
}

// String implements fmt.Stringer.
func (r DatasetRef) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.ID)
}

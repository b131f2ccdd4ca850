package core

import "strings"

// FilterParameter is one field/operator/value predicate.
// Value is always textual; coercion happens per comparison.
type FilterParameter struct {
	Field    string `json:"field" mapstructure:"field"`
	Operator string `json:"operator" mapstructure:"operator"`
	Value    string `json:"value" mapstructure:"value"`
}

// ChartFilter is the filter shape carried by aggregation requests.
type ChartFilter = FilterParameter

// Page size bounds shared by every paginated call site.
const (
	DefaultPageSize       = 10
	DefaultDetailPageSize = 20
	MaxPageSize           = 100
)

// QueryParameters selects, orders, and pages a dataset's rows.
type QueryParameters struct {
	Page          int               `json:"page" mapstructure:"page"`
	PageSize      int               `json:"pageSize" mapstructure:"page_size"`
	SortBy        string            `json:"sortBy,omitempty" mapstructure:"sort_by"`
	SortDirection string            `json:"sortDirection,omitempty" mapstructure:"sort_direction"`
	Filters       []FilterParameter `json:"filters,omitempty" mapstructure:"filters"`
}

// DefaultQueryParameters returns the first page at the default size.
func DefaultQueryParameters() QueryParameters {
	return QueryParameters{Page: 1, PageSize: DefaultPageSize}
}

// ChartAggregationRequest groups a dataset by category (and optional series)
// and reduces a value field.
type ChartAggregationRequest struct {
	CategoryField string        `json:"categoryField" mapstructure:"category_field"`
	ValueField    string        `json:"valueField" mapstructure:"value_field"`
	SeriesField   string        `json:"seriesField,omitempty" mapstructure:"series_field"`
	Aggregation   string        `json:"aggregation" mapstructure:"aggregation"`
	TimeInterval  string        `json:"timeInterval,omitempty" mapstructure:"time_interval"`
	Filters       []ChartFilter `json:"filters,omitempty" mapstructure:"filters"`
}

// JoinCondition pairs a left column with a right column. Operator defaults to eq.
type JoinCondition struct {
	LeftColumn  string `json:"leftColumn" mapstructure:"left_column"`
	RightColumn string `json:"rightColumn" mapstructure:"right_column"`
	Operator    string `json:"operator,omitempty" mapstructure:"operator"`
}

// MergeType selects the join mode of a merge.
type MergeType string

// Merge modes.
const (
	MergeInner MergeType = "Inner"
	MergeLeft  MergeType = "Left"
	MergeRight MergeType = "Right"
	MergeFull  MergeType = "Full"
	MergeCross MergeType = "Cross"
)

// ParseMergeType maps a case-insensitive name onto a MergeType.
// An empty name is Inner.
func ParseMergeType(s string) (MergeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inner":
		return MergeInner, nil
	case "left":
		return MergeLeft, nil
	case "right":
		return MergeRight, nil
	case "full":
		return MergeFull, nil
	case "cross":
		return MergeCross, nil
	}
	return "", InvalidArgumentf("invalid merge type: %s", s)
}

// DatasetMergeRequest joins two datasets into a new one.
type DatasetMergeRequest struct {
	NewDatasetName string          `json:"newDatasetName" mapstructure:"new_dataset_name"`
	LeftDatasetID  string          `json:"leftDatasetId" mapstructure:"left_dataset_id"`
	RightDatasetID string          `json:"rightDatasetId" mapstructure:"right_dataset_id"`
	JoinConditions []JoinCondition `json:"joinConditions" mapstructure:"join_conditions"`
	MergeType      MergeType       `json:"mergeType,omitempty" mapstructure:"merge_type"`
}

// RestImportOptions configures an HTTP JSON import.
type RestImportOptions struct {
	URL                  string            `json:"url" mapstructure:"url"`
	Method               string            `json:"httpMethod" mapstructure:"method"`
	Headers              map[string]string `json:"headers,omitempty" mapstructure:"headers"`
	QueryParameters      map[string]string `json:"queryParameters,omitempty" mapstructure:"query_parameters"`
	RequestBody          string            `json:"requestBody,omitempty" mapstructure:"request_body"`
	DataPath             string            `json:"dataPath,omitempty" mapstructure:"data_path"`
	MaxRecords           int               `json:"maxRecords" mapstructure:"max_records"`
	TimeoutSeconds       int               `json:"timeoutSeconds" mapstructure:"timeout_seconds"`
	FlattenNestedObjects bool              `json:"flattenNestedObjects" mapstructure:"flatten_nested_objects"`
}

// DefaultRestImportOptions returns GET with 1000 records, 30s timeout, and flattening on.
func DefaultRestImportOptions() RestImportOptions {
	return RestImportOptions{
		Method:               "GET",
		MaxRecords:           1000,
		TimeoutSeconds:       30,
		FlattenNestedObjects: true,
	}
}

// DatabaseImportOptions configures a SQL query import.
type DatabaseImportOptions struct {
	Source AdapterConfig
	Query  string
}

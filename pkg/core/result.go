package core

// QueryResult is one page of rows.
type QueryResult struct {
	Items      []Row `json:"items"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// ChartSeries is one series row of a dense series x category matrix.
type ChartSeries struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// ChartAggregationResponse holds either Values (no series) or Series.
type ChartAggregationResponse struct {
	Categories []string      `json:"categories"`
	Values     []float64     `json:"values,omitempty"`
	Series     []ChartSeries `json:"series,omitempty"`
}

// ColumnStatistics summarizes one column.
type ColumnStatistics struct {
	TotalValues     int      `json:"totalValues"`
	NullCount       int      `json:"nullCount"`
	UniqueCount     int      `json:"uniqueCount"`
	Min             *float64 `json:"min"`
	Max             *float64 `json:"max"`
	Average         *float64 `json:"average"`
	MostCommonValue *string  `json:"mostCommonValue"`
	MostCommonCount int      `json:"mostCommonCount"`
}

// DistributionEntry is one value/frequency pair.
type DistributionEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnDetail is a schema column with its statistics.
type ColumnDetail struct {
	Column
	Statistics   ColumnStatistics    `json:"statistics"`
	Distribution []DistributionEntry `json:"valueDistribution"`
}

// DataSourceDetailResponse is the dataset header, per-column statistics, and a data page.
type DataSourceDetailResponse struct {
	Dataset
	Columns []ColumnDetail `json:"columns"`
	Data    QueryResult    `json:"data"`
}

// ImportStatus is the outcome of an import or merge.
type ImportStatus string

// Import outcomes.
const (
	ImportSuccess ImportStatus = "Success"
	ImportError   ImportStatus = "Error"
)

// ImportDatasetResponse reports the dataset created by an import or merge.
type ImportDatasetResponse struct {
	DatasetID string       `json:"datasetId,omitempty"`
	Status    ImportStatus `json:"status"`
	Message   string       `json:"message"`
}

// DatasetPage is one page of dataset headers.
type DatasetPage struct {
	Items      []Dataset `json:"items"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

// DropdownColumn is the column summary shown in dataset pickers.
type DropdownColumn struct {
	Name        string   `json:"columnName"`
	DisplayName string   `json:"displayName"`
	DataType    DataType `json:"dataType"`
}

// DropdownEntry is one dataset in a picker with its ordered columns.
type DropdownEntry struct {
	DatasetRef
	Columns []DropdownColumn `json:"columns"`
}

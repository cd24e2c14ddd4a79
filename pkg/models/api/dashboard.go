package api

import "time"

// DatasetSummary describes the currently loaded dataset.
type DatasetSummary struct {
	Name        string   `json:"name"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
	Categorical []string `json:"categorical_columns"`
	Numeric     []string `json:"numeric_columns"`
	Cleaned     bool     `json:"cleaned"`
}

// TablePreview is a bounded slice of a table for UI display.
type TablePreview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total_rows"`
}

// ManualAnalysisRequest drives one aggregate-and-chart run.
type ManualAnalysisRequest struct {
	CategoryColumn string `json:"category_column"`
	NumericColumn  string `json:"numeric_column"`
	Aggregation    string `json:"aggregation"`
	ChartKind      string `json:"chart_kind"`
}

// QuestionRequest asks the insight producer about the loaded dataset.
type QuestionRequest struct {
	Question string `json:"question"`
}

// QuestionResponse carries the produced answer text.
type QuestionResponse struct {
	Answer string `json:"answer"`
}

// Report is one pending report record as shown in the UI listing.
type Report struct {
	Index      int          `json:"index"`
	SheetName  string       `json:"sheet_name"`
	Provenance string       `json:"provenance"`
	ChartPath  string       `json:"chart_path,omitempty"`
	HasChart   bool         `json:"has_chart"`
	Insight    string       `json:"insight"`
	Pivot      TablePreview `json:"pivot"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ReportList groups pending records by provenance bucket.
type ReportList struct {
	Manual []Report `json:"manual"`
	AI     []Report `json:"ai"`
}

// ExportRequest names the output file for a full report export.
type ExportRequest struct {
	BaseName string `json:"base_name"`
}

// ExportResponse returns the written document location.
type ExportResponse struct {
	Path   string `json:"path"`
	Sheets int    `json:"sheets"`
}

// Error is the uniform error payload.
type Error struct {
	Message string `json:"message"`
}

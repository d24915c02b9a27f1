package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Operation constants for known run kinds
const (
	OperationAnalyze      = "analyze"
	OperationCompare      = "compare"
	OperationMultiCompare = "multicompare"
	OperationMapping      = "mapping"
)

// Artifact kind constants for known artifact types
const (
	ArtifactModelJSON       = "model_json"
	ArtifactReportJSON      = "report_json"
	ArtifactMultiReportJSON = "multi_report_json"
	ArtifactMappingJSON     = "mapping_json"
	ArtifactWorkbook        = "workbook"
	ArtifactHTMLReport      = "html_report"
)

// Run represents one recorded toolkit invocation
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Operation    string     `json:"operation"`
	SchemaNames  []string   `json:"schema_names"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Artifact represents a stored run artifact
type Artifact struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Content   any       `json:"content,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	HasJSON   bool      `json:"has_json"`
	HasFile   bool      `json:"has_file"`
}

package types

import "time"

// MatrixCell describes one field's shape in one schema version. Absent fields
// produce a zero cell with Present=false.
type MatrixCell struct {
	Present        bool           `json:"present"`
	DeclaredType   string         `json:"declared_type,omitempty"`
	MinOccurs      string         `json:"min_occurs,omitempty"`
	MaxOccurs      string         `json:"max_occurs,omitempty"`
	Classification Classification `json:"classification,omitempty"`
}

// MatrixRow is one field path across every compared schema version, cells in
// input order.
type MatrixRow struct {
	Path  string       `json:"path"`
	Name  string       `json:"name"`
	Cells []MatrixCell `json:"cells"`
}

// PathRollup aggregates every pairwise difference touching one field path
// across a version chain.
type PathRollup struct {
	Path        string           `json:"path"`
	Kinds       []DifferenceKind `json:"kinds"`
	MaxSeverity Severity         `json:"max_severity"`
	Changes     int              `json:"changes"`
	Summaries   []string         `json:"summaries,omitempty"`
}

// MultiSummary holds the headline counters of a multi-version comparison.
// StableFields counts paths present in every version; AddedFields and
// RemovedFields compare the last version against the first.
type MultiSummary struct {
	SchemaNames       []string `json:"schema_names"`
	FieldCounts       []int    `json:"field_counts"`
	TotalFields       int      `json:"total_fields"`
	StableFields      int      `json:"stable_fields"`
	AddedFields       int      `json:"added_fields"`
	RemovedFields     int      `json:"removed_fields"`
	DifferencesByPair []int    `json:"differences_by_pair"`
}

// MultiComparisonReport is the result of comparing N schema versions: a
// presence matrix over the field union, diff reports for each consecutive
// pair, and per-path rollups.
type MultiComparisonReport struct {
	SchemaNames []string            `json:"schema_names"`
	GeneratedAt time.Time           `json:"generated_at,omitempty"`
	Matrix      []MatrixRow         `json:"matrix"`
	Pairwise    []*ComparisonReport `json:"pairwise"`
	Rollups     []PathRollup        `json:"rollups"`
	Summary     MultiSummary        `json:"summary"`
}

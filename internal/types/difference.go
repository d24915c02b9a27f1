package types

import "time"

// Severity ranks how disruptive a schema difference is for message processing.
type Severity string

const (
	// SeverityHigh marks breaking changes (removed fields, type changes,
	// fields becoming mandatory, tightened enumerations).
	SeverityHigh Severity = "HIGH"
	// SeverityMedium marks changes that usually need migration work.
	SeverityMedium Severity = "MEDIUM"
	// SeverityLow marks informational changes.
	SeverityLow Severity = "LOW"
)

// Rank returns a numeric order for severity comparisons: HIGH > MEDIUM > LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the more severe of the two.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// DifferenceKind identifies what aspect of a field changed between two schemas.
type DifferenceKind string

const (
	KindAdded                 DifferenceKind = "ADDED"
	KindRemoved               DifferenceKind = "REMOVED"
	KindTypeChanged           DifferenceKind = "TYPE_CHANGED"
	KindCardinalityChanged    DifferenceKind = "CARDINALITY_CHANGED"
	KindRestrictionChanged    DifferenceKind = "RESTRICTION_CHANGED"
	KindClassificationChanged DifferenceKind = "CLASSIFICATION_CHANGED"
	KindEnumerationChanged    DifferenceKind = "ENUMERATION_CHANGED"
	KindFixedValueChanged     DifferenceKind = "FIXED_VALUE_CHANGED"
	KindDefaultValueChanged   DifferenceKind = "DEFAULT_VALUE_CHANGED"
	KindRulebookChanged       DifferenceKind = "RULEBOOK_CHANGED"
	KindUsageRuleChanged      DifferenceKind = "USAGE_RULE_CHANGED"
)

// Difference is one detected change at one field path. LeftSequence and
// RightSequence are the field's positions in each schema (0 when the field is
// absent on that side).
type Difference struct {
	Kind              DifferenceKind `json:"kind"`
	Severity          Severity       `json:"severity"`
	Path              string         `json:"path"`
	ElementName       string         `json:"element_name"`
	LeftValue         string         `json:"left_value"`
	RightValue        string         `json:"right_value"`
	Impact            string         `json:"impact"`
	RestrictionDetail string         `json:"restriction_detail,omitempty"`
	LeftSequence      int            `json:"left_sequence,omitempty"`
	RightSequence     int            `json:"right_sequence,omitempty"`
}

// DiffSummary holds derived counters over a difference list.
type DiffSummary struct {
	Total      int                    `json:"total"`
	BySeverity map[Severity]int       `json:"by_severity"`
	ByKind     map[DifferenceKind]int `json:"by_kind"`
}

// Summarize computes counters for a difference list.
func Summarize(diffs []Difference) DiffSummary {
	s := DiffSummary{
		Total:      len(diffs),
		BySeverity: make(map[Severity]int),
		ByKind:     make(map[DifferenceKind]int),
	}
	for _, d := range diffs {
		s.BySeverity[d.Severity]++
		s.ByKind[d.Kind]++
	}
	return s
}

// ComparisonReport is the result of diffing two resolved schema models.
// GeneratedAt is stamped at the persistence/rendering boundary, not by the
// engine, so that identical inputs produce identical reports.
type ComparisonReport struct {
	LeftName    string       `json:"left_name"`
	RightName   string       `json:"right_name"`
	GeneratedAt time.Time    `json:"generated_at,omitempty"`
	Differences []Difference `json:"differences"`
	Summary     DiffSummary  `json:"summary"`
}

// HasBreakingChanges reports whether any HIGH severity difference is present.
func (r *ComparisonReport) HasBreakingChanges() bool {
	return r.Summary.BySeverity[SeverityHigh] > 0
}

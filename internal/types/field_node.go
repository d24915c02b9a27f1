// Package types provides type definitions for structured data used throughout the schema toolkit.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Classification is the business classification of a schema field, taken from
// the colour markers embedded in ISO 20022 scheme documentation.
type Classification string

const (
	// ClassificationYellow marks payment-critical fields ("Yellow Field" marker).
	ClassificationYellow Classification = "Yellow"
	// ClassificationWhite marks standard fields ("White Field" marker).
	ClassificationWhite Classification = "White"
	// ClassificationNotSpecified is used when the schema carries no marker.
	ClassificationNotSpecified Classification = "NotSpecified"
)

// Display returns the human-readable form used in reports.
func (c Classification) Display() string {
	switch c {
	case ClassificationYellow:
		return "Yellow (ISO 20022)"
	case ClassificationWhite:
		return "White (ISO 20022)"
	default:
		return "Not specified"
	}
}

// Restrictions is the validation facet set attached to a field or named simple
// type. String-valued facets keep the raw lexical form from the schema; an
// empty string means the facet is absent.
type Restrictions struct {
	Pattern        string   `json:"pattern,omitempty"`
	MinLength      string   `json:"min_length,omitempty"`
	MaxLength      string   `json:"max_length,omitempty"`
	Length         string   `json:"length,omitempty"`
	MinInclusive   string   `json:"min_inclusive,omitempty"`
	MaxInclusive   string   `json:"max_inclusive,omitempty"`
	FractionDigits string   `json:"fraction_digits,omitempty"`
	TotalDigits    string   `json:"total_digits,omitempty"`
	WhiteSpace     string   `json:"white_space,omitempty"`
	Enumeration    []string `json:"enumeration,omitempty"`
}

// maxEnumInSummary caps how many enumeration values appear in the serialized
// summary before collapsing into a "+N more" suffix.
const maxEnumInSummary = 5

// IsZero reports whether no facet is set.
func (r Restrictions) IsZero() bool {
	return r.Pattern == "" && r.MinLength == "" && r.MaxLength == "" &&
		r.Length == "" && r.MinInclusive == "" && r.MaxInclusive == "" &&
		r.FractionDigits == "" && r.TotalDigits == "" && r.WhiteSpace == "" &&
		len(r.Enumeration) == 0
}

// Summary serializes the facet set into a deterministic single line, e.g.
// "Enum: CASH, CORT, … (+12 more) | Pattern: [A-Z]{3} | maxLength: 35".
// Two fields restrict identically iff their summaries are equal.
func (r Restrictions) Summary() string {
	var parts []string

	if len(r.Enumeration) > 0 {
		shown := r.Enumeration
		suffix := ""
		if len(shown) > maxEnumInSummary {
			suffix = fmt.Sprintf(" (+%d more)", len(shown)-maxEnumInSummary)
			shown = shown[:maxEnumInSummary]
		}
		parts = append(parts, fmt.Sprintf("Enum: %s%s", strings.Join(shown, ", "), suffix))
	}
	if r.Pattern != "" {
		parts = append(parts, fmt.Sprintf("Pattern: %s", r.Pattern))
	}
	if r.MinLength != "" {
		parts = append(parts, fmt.Sprintf("minLength: %s", r.MinLength))
	}
	if r.MaxLength != "" {
		parts = append(parts, fmt.Sprintf("maxLength: %s", r.MaxLength))
	}
	if r.Length != "" {
		parts = append(parts, fmt.Sprintf("length: %s", r.Length))
	}
	if r.TotalDigits != "" {
		parts = append(parts, fmt.Sprintf("totalDigits: %s", r.TotalDigits))
	}
	if r.FractionDigits != "" {
		parts = append(parts, fmt.Sprintf("fractionDigits: %s", r.FractionDigits))
	}
	if r.MinInclusive != "" {
		parts = append(parts, fmt.Sprintf("minInclusive: %s", r.MinInclusive))
	}
	if r.MaxInclusive != "" {
		parts = append(parts, fmt.Sprintf("maxInclusive: %s", r.MaxInclusive))
	}
	if r.WhiteSpace != "" {
		parts = append(parts, fmt.Sprintf("whiteSpace: %s", r.WhiteSpace))
	}

	return strings.Join(parts, " | ")
}

// FieldNode is one fully resolved element or attribute of a schema, in
// document declaration order. Attributes are emitted as nodes too: their path
// segment and name carry a leading "@".
type FieldNode struct {
	Sequence          int            `json:"sequence"`
	Path              string         `json:"path"`
	Level             int            `json:"level"`
	Name              string         `json:"name"`
	DeclaredType      string         `json:"declared_type,omitempty"`
	MinOccurs         string         `json:"min_occurs"`
	MaxOccurs         string         `json:"max_occurs"`
	ChoiceGroup       string         `json:"choice_group,omitempty"`
	ChoiceAlternative string         `json:"choice_alternative,omitempty"`
	Restrictions      Restrictions   `json:"restrictions"`
	AnnotationText    string         `json:"annotation,omitempty"`
	RulebookText      string         `json:"rulebook,omitempty"`
	UsageRuleText     string         `json:"usage_rules,omitempty"`
	Classification    Classification `json:"classification"`
	FixedValue        string         `json:"fixed,omitempty"`
	DefaultValue      string         `json:"default,omitempty"`
}

// IsAttribute reports whether the node is an XML attribute rather than an element.
func (f *FieldNode) IsAttribute() bool {
	return strings.HasPrefix(f.Name, "@")
}

// Mandatory reports whether the field must occur at least once at its own level.
func (f *FieldNode) Mandatory() bool {
	return f.MinOccurs != "0"
}

// SchemaModel is the resolved structural model of one schema document: its
// identity plus every reachable field in declaration order.
type SchemaModel struct {
	Name            string                  `json:"name"`
	TargetNamespace string                  `json:"target_namespace,omitempty"`
	RootElement     string                  `json:"root_element,omitempty"`
	RootType        string                  `json:"root_type,omitempty"`
	Scheme          string                  `json:"scheme,omitempty"`
	Fields          []FieldNode             `json:"fields"`
	TypeFacets      map[string]Restrictions `json:"type_facets,omitempty"`
	BaseTypes       map[string]string       `json:"base_types,omitempty"`
}

// IndexByPath builds a path-keyed lookup over the model's fields. When a path
// occurs more than once (choice alternatives sharing a leaf), the last
// occurrence wins.
func (m *SchemaModel) IndexByPath() map[string]FieldNode {
	idx := make(map[string]FieldNode, len(m.Fields))
	for _, f := range m.Fields {
		idx[f.Path] = f
	}
	return idx
}

// FacetsFor looks up the facet set of a named type, if the schema declared one.
func (m *SchemaModel) FacetsFor(typeName string) (Restrictions, bool) {
	r, ok := m.TypeFacets[typeName]
	return r, ok
}

// BaseFor looks up the primitive base of a named type's restriction chain,
// e.g. Max35Text → string.
func (m *SchemaModel) BaseFor(typeName string) (string, bool) {
	b, ok := m.BaseTypes[typeName]
	return b, ok
}

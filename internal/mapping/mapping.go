// Package mapping generates field-mapping template rows from a resolved
// schema model: one row per field, pre-filled with type, cardinality, and a
// sample value, leaving the source-field and transformation columns for the
// integration analyst.
package mapping

import (
	"fmt"
	"strings"

	"github.com/matthias/iso20022-toolkit/internal/codesets"
	"github.com/matthias/iso20022-toolkit/internal/types"
	"github.com/matthias/iso20022-toolkit/internal/usagerules"
)

const (
	defaultAnnotationLimit = 200
	maxEnumValues          = 5
)

// sampleValues holds realistic sample data for common ISO 20022 element
// names, keyed by tag.
var sampleValues = map[string]string{
	"MsgId":             "MSG20240115123456",
	"CreDtTm":           "2024-01-15T10:30:00",
	"NbOfTxs":           "1",
	"TtlIntrBkSttlmAmt": "1000.00",
	"IntrBkSttlmDt":     "2024-01-15",
	"EndToEndId":        "E2E20240115001",
	"TxId":              "TX20240115001",
	"InstrId":           "INSTR20240115001",
	"UETR":              "eb6305c9-1f7f-49de-aed0-16487c27b42d",
	"IntrBkSttlmAmt":    "1000.00",
	"InstdAmt":          "1000.00",
	"ChrgBr":            "SLEV",
	"Nm":                "John Smith",
	"IBAN":              "DE89370400440532013000",
	"BICFI":             "DEUTDEFF",
	"BIC":               "DEUTDEFF",
	"Ctry":              "DE",
	"Ccy":               "EUR",
	"StrtNm":            "Main Street",
	"BldgNb":            "123",
	"PstCd":             "10115",
	"TwnNm":             "Berlin",
	"Ustrd":             "Payment for Invoice 12345",
	"Cd":                "SALA",
	"Prtry":             "PROPRIETARY",
}

// Options configures row generation.
type Options struct {
	// SkipAttributes leaves XML attributes (@Ccy and friends) out of the
	// template.
	SkipAttributes bool
	// AnnotationLimit truncates the annotation column; zero means the
	// default of 200 characters.
	AnnotationLimit int
}

// Generate builds one mapping row per field of the model, in document order.
// codes may be nil; when given, external code sets contribute sample values
// for ExternalXxxCode typed fields.
func Generate(model *types.SchemaModel, codes *codesets.CodeSets, opts Options) []types.MappingRow {
	limit := opts.AnnotationLimit
	if limit <= 0 {
		limit = defaultAnnotationLimit
	}
	exclusions := usagerules.Exclusions(model.Fields)

	rows := make([]types.MappingRow, 0, len(model.Fields))
	for _, f := range model.Fields {
		if opts.SkipAttributes && f.IsAttribute() {
			continue
		}

		mandatory := "No"
		if f.Mandatory() {
			mandatory = "Yes"
		}

		rows = append(rows, types.MappingRow{
			XPath:          f.Path,
			Element:        f.Name,
			Level:          f.Level,
			DataType:       dataType(model, f),
			MinOccurs:      f.MinOccurs,
			MaxOccurs:      f.MaxOccurs,
			Mandatory:      mandatory,
			Pattern:        f.Restrictions.Pattern,
			MaxLength:      f.Restrictions.MaxLength,
			Enumeration:    enumerationColumn(f.Restrictions.Enumeration),
			SampleValue:    sampleValue(model, codes, f),
			Classification: f.Classification,
			Annotation:     truncate(f.AnnotationText, limit),
			Notes:          notes(f, exclusions),
		})
	}
	return rows
}

// dataType resolves the display type of a field: the primitive base of its
// declared type where the schema lets us chase one, the declared type name
// otherwise, and "complex" for anonymous complex content.
func dataType(model *types.SchemaModel, f types.FieldNode) string {
	if f.DeclaredType == "" {
		return "complex"
	}
	if base, ok := model.BaseFor(f.DeclaredType); ok {
		return base
	}
	return f.DeclaredType
}

func enumerationColumn(values []string) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) <= maxEnumValues {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(values[:maxEnumValues], ", "), len(values)-maxEnumValues)
}

// sampleValue picks a sample in precedence order: well-known element names,
// external code sets keyed by the declared type, the field's own enumeration,
// then a primitive-base fallback.
func sampleValue(model *types.SchemaModel, codes *codesets.CodeSets, f types.FieldNode) string {
	name := strings.TrimPrefix(f.Name, "@")
	if sample, ok := sampleValues[name]; ok {
		return sample
	}
	if codes != nil && f.DeclaredType != "" {
		if sample, ok := codes.Sample(f.DeclaredType); ok {
			return sample
		}
	}
	if len(f.Restrictions.Enumeration) > 0 {
		return f.Restrictions.Enumeration[0]
	}

	base := f.DeclaredType
	if resolved, ok := model.BaseFor(f.DeclaredType); ok {
		base = resolved
	}
	lower := strings.ToLower(base)
	switch {
	case strings.Contains(lower, "decimal"):
		return "100.00"
	case strings.Contains(lower, "date") && strings.Contains(lower, "time"):
		return "2024-01-15T10:30:00"
	case strings.Contains(lower, "date"):
		return "2024-01-15"
	case strings.Contains(lower, "int"):
		return "1"
	case strings.Contains(lower, "boolean"):
		return "true"
	}
	return fmt.Sprintf("[%s]", name)
}

func notes(f types.FieldNode, exclusions map[string][]string) string {
	var parts []string
	if f.ChoiceAlternative != "" {
		parts = append(parts, fmt.Sprintf("Choice: %s", f.ChoiceAlternative))
	}
	if excluded := exclusions[f.Path]; len(excluded) > 0 {
		parts = append(parts, fmt.Sprintf("Mutually exclusive with %s", strings.Join(excluded, ", ")))
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// Hierarchical returns the full template in document order.
func Hierarchical(rows []types.MappingRow) []types.MappingRow {
	return rows
}

// Flat keeps only the data-carrying leaves: rows without element children.
// An element whose only children are attributes still counts as a leaf, since
// it carries the value (amounts with their Ccy attribute).
func Flat(rows []types.MappingRow) []types.MappingRow {
	var flat []types.MappingRow
	for i, row := range rows {
		if isLeaf(rows, i) {
			flat = append(flat, row)
		}
	}
	return flat
}

func isLeaf(rows []types.MappingRow, i int) bool {
	prefix := rows[i].XPath + "/"
	for j := i + 1; j < len(rows) && strings.HasPrefix(rows[j].XPath, prefix); j++ {
		if !strings.HasPrefix(rows[j].Element, "@") {
			return false
		}
	}
	return true
}

// MandatoryOnly keeps rows whose whole ancestor chain is mandatory: a
// required field under an optional parent is dropped with it.
func MandatoryOnly(rows []types.MappingRow) []types.MappingRow {
	qualified := make(map[string]bool, len(rows))
	var mandatory []types.MappingRow
	for _, row := range rows {
		if row.Mandatory != "Yes" {
			continue
		}
		parent := parentPath(row.XPath)
		if parent != "" && !qualified[parent] {
			continue
		}
		qualified[row.XPath] = true
		mandatory = append(mandatory, row)
	}
	return mandatory
}

func parentPath(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// Package reporting renders resolved models and comparison reports into
// JSON, Excel, and HTML artifacts.
package reporting

import (
	"encoding/json"
	"os"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

// WriteModelJSON writes a resolved schema model as indented JSON.
func WriteModelJSON(model *types.SchemaModel, path string) error {
	return writeJSON(model, path)
}

// WriteReportJSON writes a pairwise comparison report as indented JSON.
func WriteReportJSON(report *types.ComparisonReport, path string) error {
	return writeJSON(report, path)
}

// WriteMultiReportJSON writes a multi-schema comparison report as indented JSON.
func WriteMultiReportJSON(report *types.MultiComparisonReport, path string) error {
	return writeJSON(report, path)
}

// WriteMappingJSON writes mapping template rows as indented JSON.
func WriteMappingJSON(rows []types.MappingRow, path string) error {
	return writeJSON(rows, path)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &WriteError{Path: path, Message: "marshal failed", Cause: err}
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Message: "write failed", Cause: err}
	}
	return nil
}

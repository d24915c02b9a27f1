package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matthias/iso20022-toolkit/internal/mapping"
	"github.com/matthias/iso20022-toolkit/internal/types"
)

// Workbook cell colours, shared across all generated workbooks.
const (
	headerFillColor = "1A1A2E"
	headerFontColor = "FFFFFF"
	yellowFillColor = "FFF9C4"
	whiteFillColor  = "E3F2FD"
	highFillColor   = "FFC7CE"
	highFontColor   = "9C0006"
	mediumFillColor = "FFEB9C"
	mediumFontColor = "9C6500"
	lowFillColor    = "EDEDED"
	lowFontColor    = "808080"
)

// AnalysisWorkbook writes the full structure of a resolved schema model as an
// Excel workbook: the complete field tree plus a classification breakdown.
func AnalysisWorkbook(model *types.SchemaModel, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeStructureSheet(f, model); err != nil {
		return &WriteError{Path: path, Message: "structure sheet failed", Cause: err}
	}
	if err := writeClassificationSheet(f, model); err != nil {
		return &WriteError{Path: path, Message: "classification sheet failed", Cause: err}
	}
	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Message: "save failed", Cause: err}
	}
	return nil
}

func writeStructureSheet(f *excelize.File, model *types.SchemaModel) error {
	const sheet = "Complete Structure"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []any{"Seq", "Level", "Element", "XPath", "Type", "Min", "Max", "Classification", "Restrictions", "Annotation"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	yellowStyle, whiteStyle, err := classificationStyles(f)
	if err != nil {
		return err
	}

	for i, fld := range model.Fields {
		row := i + 2
		indent := strings.Repeat("  ", fld.Level)
		values := []any{
			fld.Sequence, fld.Level, indent + fld.Name, fld.Path, fld.DeclaredType,
			fld.MinOccurs, fld.MaxOccurs, fld.Classification.Display(),
			fld.Restrictions.Summary(), fld.AnnotationText,
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		span := fmt.Sprintf("A%d", row)
		switch fld.Classification {
		case types.ClassificationYellow:
			if err := f.SetCellStyle(sheet, span, fmt.Sprintf("J%d", row), yellowStyle); err != nil {
				return err
			}
		case types.ClassificationWhite:
			if err := f.SetCellStyle(sheet, span, fmt.Sprintf("J%d", row), whiteStyle); err != nil {
				return err
			}
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "B", 6}, {"C", "C", 40}, {"D", "D", 60}, {"E", "E", 30},
		{"F", "G", 6}, {"H", "H", 18}, {"I", "I", 45}, {"J", "J", 60},
	}
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return err
		}
	}
	return freezeTopRow(f, sheet)
}

func writeClassificationSheet(f *excelize.File, model *types.SchemaModel) error {
	const sheet = "Field Classification"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	var yellow, white, unspecified int
	for _, fld := range model.Fields {
		switch fld.Classification {
		case types.ClassificationYellow:
			yellow++
		case types.ClassificationWhite:
			white++
		default:
			unspecified++
		}
	}

	summary := [][]any{
		{"Classification Summary", ""},
		{"Classification", "Count"},
		{types.ClassificationYellow.Display(), yellow},
		{types.ClassificationWhite.Display(), white},
		{types.ClassificationNotSpecified.Display(), unspecified},
		{"Total", len(model.Fields)},
		{"", ""},
		{"Classification", "XPath", "Element", "Type"},
	}
	for i, values := range summary {
		if err := writeRow(f, sheet, i+1, values); err != nil {
			return err
		}
	}

	row := len(summary) + 1
	for _, fld := range model.Fields {
		if fld.Classification != types.ClassificationYellow && fld.Classification != types.ClassificationWhite {
			continue
		}
		values := []any{fld.Classification.Display(), fld.Path, fld.Name, fld.DeclaredType}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	return f.SetColWidth(sheet, "B", "B", 60)
}

// ComparisonWorkbook writes a pairwise comparison report as an Excel workbook
// with a summary sheet and per-change-kind breakdowns.
func ComparisonWorkbook(report *types.ComparisonReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeComparisonSummarySheet(f, report); err != nil {
		return &WriteError{Path: path, Message: "summary sheet failed", Cause: err}
	}
	if err := writeAllDifferencesSheet(f, report); err != nil {
		return &WriteError{Path: path, Message: "differences sheet failed", Cause: err}
	}
	if err := writeBreakdownSheets(f, report); err != nil {
		return &WriteError{Path: path, Message: "breakdown sheets failed", Cause: err}
	}
	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Message: "save failed", Cause: err}
	}
	return nil
}

func writeComparisonSummarySheet(f *excelize.File, report *types.ComparisonReport) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Schema Comparison", ""},
		{"Left Schema", report.LeftName},
		{"Right Schema", report.RightName},
	}
	if !report.GeneratedAt.IsZero() {
		rows = append(rows, []any{"Generated", report.GeneratedAt.Format(time.RFC3339)})
	}
	rows = append(rows,
		[]any{"Total Differences", report.Summary.Total},
		[]any{"", ""},
		[]any{"By Severity", ""},
		[]any{string(types.SeverityHigh), report.Summary.BySeverity[types.SeverityHigh]},
		[]any{string(types.SeverityMedium), report.Summary.BySeverity[types.SeverityMedium]},
		[]any{string(types.SeverityLow), report.Summary.BySeverity[types.SeverityLow]},
		[]any{"", ""},
		[]any{"By Change Type", ""},
	)

	kinds := make([]string, 0, len(report.Summary.ByKind))
	for kind := range report.Summary.ByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		rows = append(rows, []any{kind, report.Summary.ByKind[types.DifferenceKind(kind)]})
	}

	for i, values := range rows {
		if err := writeRow(f, sheet, i+1, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

func writeAllDifferencesSheet(f *excelize.File, report *types.ComparisonReport) error {
	const sheet = "All Differences"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []any{"#", "Severity", "Change Type", "XPath", "Element", "Left Value", "Right Value", "Impact", "Restriction Detail"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	styles, err := severityStyles(f)
	if err != nil {
		return err
	}

	for i, d := range report.Differences {
		row := i + 2
		values := []any{
			i + 1, string(d.Severity), string(d.Kind), d.Path, d.ElementName,
			d.LeftValue, d.RightValue, d.Impact, d.RestrictionDetail,
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		if style, ok := styles[d.Severity]; ok {
			cell := fmt.Sprintf("B%d", row)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 5}, {"B", "B", 10}, {"C", "C", 24}, {"D", "D", 55},
		{"E", "E", 20}, {"F", "G", 25}, {"H", "H", 60}, {"I", "I", 45},
	}
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return err
		}
	}
	return freezeTopRow(f, sheet)
}

func writeBreakdownSheets(f *excelize.File, report *types.ComparisonReport) error {
	added := filterDiffs(report.Differences, func(d types.Difference) bool { return d.Kind == types.KindAdded })
	removed := filterDiffs(report.Differences, func(d types.Difference) bool { return d.Kind == types.KindRemoved })
	changed := filterDiffs(report.Differences, func(d types.Difference) bool {
		return d.Kind != types.KindAdded && d.Kind != types.KindRemoved
	})
	enums := filterDiffs(report.Differences, func(d types.Difference) bool { return d.Kind == types.KindEnumerationChanged })
	typeFacets := filterDiffs(report.Differences, func(d types.Difference) bool {
		return d.Kind == types.KindTypeChanged && d.RestrictionDetail != ""
	})

	if err := writeDiffListSheet(f, "Added", []any{"XPath", "Element", "Impact"}, added,
		func(d types.Difference) []any { return []any{d.Path, d.ElementName, d.Impact} }); err != nil {
		return err
	}
	if err := writeDiffListSheet(f, "Removed", []any{"XPath", "Element", "Impact"}, removed,
		func(d types.Difference) []any { return []any{d.Path, d.ElementName, d.Impact} }); err != nil {
		return err
	}
	if err := writeDiffListSheet(f, "Changed", []any{"Severity", "Change Type", "XPath", "Element", "Left Value", "Right Value", "Impact"}, changed,
		func(d types.Difference) []any {
			return []any{string(d.Severity), string(d.Kind), d.Path, d.ElementName, d.LeftValue, d.RightValue, d.Impact}
		}); err != nil {
		return err
	}
	if err := writeDiffListSheet(f, "Enumeration Changes", []any{"Severity", "XPath", "Element", "Left Enum", "Right Enum", "Impact"}, enums,
		func(d types.Difference) []any {
			return []any{string(d.Severity), d.Path, d.ElementName, d.LeftValue, d.RightValue, d.Impact}
		}); err != nil {
		return err
	}
	return writeDiffListSheet(f, "Type Restriction Changes", []any{"XPath", "Element", "Left Type", "Right Type", "Facet Changes"}, typeFacets,
		func(d types.Difference) []any { return []any{d.Path, d.ElementName, d.LeftValue, d.RightValue, d.RestrictionDetail} })
}

func writeDiffListSheet(f *excelize.File, sheet string, headers []any, diffs []types.Difference, project func(types.Difference) []any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}
	for i, d := range diffs {
		if err := writeRow(f, sheet, i+2, project(d)); err != nil {
			return err
		}
	}
	return freezeTopRow(f, sheet)
}

// MappingWorkbook writes mapping template rows as an Excel workbook with
// hierarchical, flat, and mandatory-only views.
func MappingWorkbook(rows []types.MappingRow, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Hierarchical"); err != nil {
		return &WriteError{Path: path, Message: "sheet setup failed", Cause: err}
	}
	if err := writeMappingSheet(f, "Hierarchical", rows, true); err != nil {
		return &WriteError{Path: path, Message: "hierarchical sheet failed", Cause: err}
	}

	for _, view := range []struct {
		sheet string
		rows  []types.MappingRow
	}{
		{"Flat", mapping.Flat(rows)},
		{"Mandatory Fields", mapping.MandatoryOnly(rows)},
	} {
		if _, err := f.NewSheet(view.sheet); err != nil {
			return &WriteError{Path: path, Message: "sheet setup failed", Cause: err}
		}
		if err := writeMappingSheet(f, view.sheet, view.rows, false); err != nil {
			return &WriteError{Path: path, Message: view.sheet + " sheet failed", Cause: err}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Message: "save failed", Cause: err}
	}
	return nil
}

func writeMappingSheet(f *excelize.File, sheet string, rows []types.MappingRow, indent bool) error {
	headers := []any{
		"Level", "XPath", "Element", "Data Type", "Min", "Max", "Mandatory",
		"Pattern", "Max Length", "Enumeration", "Sample Value", "Classification",
		"Annotation", "Notes", "Source Field", "Transformation",
	}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	yellowStyle, whiteStyle, err := classificationStyles(f)
	if err != nil {
		return err
	}

	for i, r := range rows {
		rowNum := i + 2
		element := r.Element
		if indent {
			element = strings.Repeat("  ", r.Level) + element
		}
		values := []any{
			r.Level, r.XPath, element, r.DataType, r.MinOccurs, r.MaxOccurs,
			r.Mandatory, r.Pattern, r.MaxLength, r.Enumeration, r.SampleValue,
			r.Classification.Display(), r.Annotation, r.Notes, r.SourceField, r.Transformation,
		}
		if err := writeRow(f, sheet, rowNum, values); err != nil {
			return err
		}
		span := fmt.Sprintf("A%d", rowNum)
		switch r.Classification {
		case types.ClassificationYellow:
			if err := f.SetCellStyle(sheet, span, fmt.Sprintf("P%d", rowNum), yellowStyle); err != nil {
				return err
			}
		case types.ClassificationWhite:
			if err := f.SetCellStyle(sheet, span, fmt.Sprintf("P%d", rowNum), whiteStyle); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 55); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "C", 32); err != nil {
		return err
	}
	return freezeTopRow(f, sheet)
}

// MatrixWorkbook writes a multi-schema comparison as an Excel workbook: the
// field presence matrix plus the per-path rollup of all pairwise changes.
func MatrixWorkbook(multi *types.MultiComparisonReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeMatrixSheet(f, multi); err != nil {
		return &WriteError{Path: path, Message: "matrix sheet failed", Cause: err}
	}
	if err := writeRollupSheet(f, multi); err != nil {
		return &WriteError{Path: path, Message: "rollup sheet failed", Cause: err}
	}
	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Message: "save failed", Cause: err}
	}
	return nil
}

const matrixGroupWidth = 5

func writeMatrixSheet(f *excelize.File, multi *types.MultiComparisonReport) error {
	const sheet = "Master Matrix"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	// Row 1 names each schema above its column group, row 2 carries the
	// per-group column labels.
	nameRow := []any{"", ""}
	labelRow := []any{"XPath", "Element"}
	for _, name := range multi.SchemaNames {
		nameRow = append(nameRow, name, "", "", "", "")
		labelRow = append(labelRow, "Present", "Type", "Min", "Max", "Class")
	}
	if err := writeRow(f, sheet, 1, nameRow); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 2, labelRow); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(2+len(multi.SchemaNames)*matrixGroupWidth, 2)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, row := range multi.Matrix {
		values := []any{row.Path, row.Name}
		for _, cell := range row.Cells {
			if cell.Present {
				values = append(values, "✓", cell.DeclaredType, cell.MinOccurs, cell.MaxOccurs, string(cell.Classification))
			} else {
				values = append(values, "", "", "", "", "")
			}
		}
		if err := writeRow(f, sheet, i+3, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 55); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      2,
		TopLeftCell: "C3",
		ActivePane:  "bottomRight",
	})
}

func writeRollupSheet(f *excelize.File, multi *types.MultiComparisonReport) error {
	const sheet = "Rollup"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []any{"XPath", "Changes", "Max Severity", "Change Types", "Impacts"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	styles, err := severityStyles(f)
	if err != nil {
		return err
	}

	for i, roll := range multi.Rollups {
		row := i + 2
		kinds := make([]string, len(roll.Kinds))
		for j, k := range roll.Kinds {
			kinds[j] = string(k)
		}
		values := []any{
			roll.Path, roll.Changes, string(roll.MaxSeverity),
			strings.Join(kinds, ", "), strings.Join(roll.Summaries, " | "),
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		if style, ok := styles[roll.MaxSeverity]; ok {
			cell := fmt.Sprintf("C%d", row)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 55); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "E", "E", 80); err != nil {
		return err
	}
	return freezeTopRow(f, sheet)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []any) error {
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func freezeTopRow(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Font: &excelize.Font{Bold: true, Color: headerFontColor},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			WrapText:   true,
		},
	})
}

func classificationStyles(f *excelize.File) (yellow, white int, err error) {
	yellow, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{yellowFillColor}},
	})
	if err != nil {
		return 0, 0, err
	}
	white, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{whiteFillColor}},
	})
	if err != nil {
		return 0, 0, err
	}
	return yellow, white, nil
}

func severityStyles(f *excelize.File) (map[types.Severity]int, error) {
	styles := make(map[types.Severity]int, 3)
	for _, s := range []struct {
		severity types.Severity
		fill     string
		font     string
	}{
		{types.SeverityHigh, highFillColor, highFontColor},
		{types.SeverityMedium, mediumFillColor, mediumFontColor},
		{types.SeverityLow, lowFillColor, lowFontColor},
	} {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.fill}},
			Font: &excelize.Font{Color: s.font},
		})
		if err != nil {
			return nil, err
		}
		styles[s.severity] = id
	}
	return styles, nil
}

func filterDiffs(diffs []types.Difference, keep func(types.Difference) bool) []types.Difference {
	var out []types.Difference
	for _, d := range diffs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

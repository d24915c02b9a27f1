// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSchemaModel outputs a human-readable summary of a resolved schema.
func (p *Printer) PrintSchemaModel(model *types.SchemaModel) {
	if model == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Schema:    %s\n", model.Name))
	if model.RootElement != "" {
		sb.WriteString(fmt.Sprintf("Root:      %s", model.RootElement))
		if model.RootType != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", model.RootType))
		}
		sb.WriteString("\n")
	}
	if model.Scheme != "" {
		sb.WriteString(fmt.Sprintf("Scheme:    %s\n", model.Scheme))
	}
	sb.WriteString(fmt.Sprintf("Fields:    %d\n", len(model.Fields)))

	var yellow, white, attrs, maxLevel int
	for _, f := range model.Fields {
		switch f.Classification {
		case types.ClassificationYellow:
			yellow++
		case types.ClassificationWhite:
			white++
		}
		if f.IsAttribute() {
			attrs++
		}
		if f.Level > maxLevel {
			maxLevel = f.Level
		}
	}
	sb.WriteString(fmt.Sprintf("Depth:     %d levels\n", maxLevel+1))
	sb.WriteString(fmt.Sprintf("Attrs:     %d\n", attrs))
	sb.WriteString("\n")
	sb.WriteString("Classification:\n")
	sb.WriteString(fmt.Sprintf("  Yellow:        %d\n", yellow))
	sb.WriteString(fmt.Sprintf("  White:         %d\n", white))
	sb.WriteString(fmt.Sprintf("  Not specified: %d", len(model.Fields)-yellow-white))

	p.printBox("RESOLVED SCHEMA MODEL", sb.String())
}

// PrintComparisonReport outputs the headline numbers of a pairwise comparison
// plus the most severe differences.
func (p *Printer) PrintComparisonReport(report *types.ComparisonReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Left:   %s\n", report.LeftName))
	sb.WriteString(fmt.Sprintf("Right:  %s\n", report.RightName))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total differences: %d\n", report.Summary.Total))
	sb.WriteString(fmt.Sprintf("  HIGH:   %d\n", report.Summary.BySeverity[types.SeverityHigh]))
	sb.WriteString(fmt.Sprintf("  MEDIUM: %d\n", report.Summary.BySeverity[types.SeverityMedium]))
	sb.WriteString(fmt.Sprintf("  LOW:    %d\n", report.Summary.BySeverity[types.SeverityLow]))

	high := highSeverity(report.Differences)
	if len(high) > 0 {
		sb.WriteString("\nBreaking changes:\n")
		count := min(len(high), maxItemsToShow)
		for i := 0; i < count; i++ {
			d := high[i]
			path := d.Path
			if len(path) > 40 {
				path = "..." + path[len(path)-37:]
			}
			sb.WriteString(fmt.Sprintf("⚠ %s\n", path))
			sb.WriteString(fmt.Sprintf("  %s\n", d.Kind))
		}
		if len(high) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more", len(high)-maxItemsToShow))
		}
	}

	p.printBox("SCHEMA COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMultiComparisonReport outputs the evolution summary of a version chain.
func (p *Printer) PrintMultiComparisonReport(report *types.MultiComparisonReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Versions compared: %d\n", len(report.SchemaNames)))
	for i, name := range report.SchemaNames {
		fields := 0
		if i < len(report.Summary.FieldCounts) {
			fields = report.Summary.FieldCounts[i]
		}
		sb.WriteString(fmt.Sprintf("  v%d: %s (%d fields)\n", i+1, name, fields))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Union of paths: %d\n", report.Summary.TotalFields))
	sb.WriteString(fmt.Sprintf("Stable:         %d\n", report.Summary.StableFields))
	sb.WriteString(fmt.Sprintf("Added:          %d\n", report.Summary.AddedFields))
	sb.WriteString(fmt.Sprintf("Removed:        %d\n", report.Summary.RemovedFields))

	if len(report.Summary.DifferencesByPair) > 0 {
		sb.WriteString("\nDifferences per step:\n")
		for i, n := range report.Summary.DifferencesByPair {
			sb.WriteString(fmt.Sprintf("  v%d → v%d: %d\n", i+1, i+2, n))
		}
	}

	p.printBox("MULTI-SCHEMA COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMappingSummary outputs the shape of a generated mapping template.
func (p *Printer) PrintMappingSummary(view string, rows []types.MappingRow) {
	if len(rows) == 0 {
		return
	}

	mandatory := 0
	withSamples := 0
	for _, row := range rows {
		if row.Mandatory == "Yes" {
			mandatory++
		}
		if row.SampleValue != "" {
			withSamples++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("View:         %s\n", view))
	sb.WriteString(fmt.Sprintf("Rows:         %d\n", len(rows)))
	sb.WriteString(fmt.Sprintf("Mandatory:    %d\n", mandatory))
	sb.WriteString(fmt.Sprintf("With samples: %d\n", withSamples))

	count := min(len(rows), maxItemsToShow)
	sb.WriteString("\n")
	for i := 0; i < count; i++ {
		row := rows[i]
		sb.WriteString(fmt.Sprintf("• %s%s\n", strings.Repeat("  ", min(row.Level, 3)), row.Element))
	}
	if len(rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more rows", len(rows)-maxItemsToShow))
	}

	p.printBox("MAPPING TEMPLATE", strings.TrimSuffix(sb.String(), "\n"))
}

// highSeverity filters a difference list down to the HIGH entries.
func highSeverity(diffs []types.Difference) []types.Difference {
	var high []types.Difference
	for _, d := range diffs {
		if d.Severity == types.SeverityHigh {
			high = append(high, d)
		}
	}
	return high
}

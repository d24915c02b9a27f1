package reporting

import (
	"bytes"
	_ "embed"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

//go:embed report.html.tmpl
var reportTemplateSrc string

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"sevClass": func(s types.Severity) string {
		return "severity-" + strings.ToLower(string(s))
	},
}).Parse(reportTemplateSrc))

type htmlReportData struct {
	Report    *types.ComparisonReport
	High      int
	Medium    int
	Low       int
	Generated string
}

// WriteReportHTML renders a comparison report as a standalone HTML page with
// summary cards and a severity-filterable difference table.
func WriteReportHTML(report *types.ComparisonReport, path string) error {
	data := htmlReportData{
		Report: report,
		High:   report.Summary.BySeverity[types.SeverityHigh],
		Medium: report.Summary.BySeverity[types.SeverityMedium],
		Low:    report.Summary.BySeverity[types.SeverityLow],
	}
	if !report.GeneratedAt.IsZero() {
		data.Generated = report.GeneratedAt.Format(time.RFC3339)
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return &WriteError{Path: path, Message: "template failed", Cause: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &WriteError{Path: path, Message: "write failed", Cause: err}
	}
	return nil
}

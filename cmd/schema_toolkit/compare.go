package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matthias/iso20022-toolkit/internal/db"
	"github.com/matthias/iso20022-toolkit/internal/diff"
	"github.com/matthias/iso20022-toolkit/internal/observability"
	"github.com/matthias/iso20022-toolkit/internal/reporting"
)

var compareCmd = &cobra.Command{
	Use:   "compare <left.xsd> <right.xsd>",
	Short: "Compare two schema versions for structural differences",
	Long:  "Resolve two XSD message definitions and diff them field by field, classifying every difference by severity. Writes JSON, Excel and HTML reports.",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

var (
	compareMaxDepth int
)

func init() {
	compareCmd.Flags().IntVar(&compareMaxDepth, "max-depth", 0, "Maximum element nesting depth before resolution aborts (default 64)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = compareMaxDepth
	}

	left, err := resolveSchema(args[0], cfg.MaxDepth)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	right, err := resolveSchema(args[1], cfg.MaxDepth)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[1], err)
	}
	if cfg.Verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Comparing %s (%d fields) against %s (%d fields)\n",
			left.Name, len(left.Fields), right.Name, len(right.Fields))
	}

	report := diff.Compare(left, right)
	report.GeneratedAt = time.Now().UTC()

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintComparisonReport(report)

	if err := ensureOutputDir(cfg.OutputDir); err != nil {
		return err
	}

	base := fmt.Sprintf("%s_vs_%s", report.LeftName, report.RightName)
	jsonPath := filepath.Join(cfg.OutputDir, base+"_report.json")
	if err := reporting.WriteReportJSON(report, jsonPath); err != nil {
		return fmt.Errorf("failed to write report JSON: %w", err)
	}

	workbookPath := filepath.Join(cfg.OutputDir, base+"_report.xlsx")
	if err := reporting.ComparisonWorkbook(report, workbookPath); err != nil {
		return fmt.Errorf("failed to write comparison workbook: %w", err)
	}

	htmlPath := filepath.Join(cfg.OutputDir, base+"_report.html")
	if err := reporting.WriteReportHTML(report, htmlPath); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Report JSON: %s\n", jsonPath)
	_, _ = fmt.Fprintf(os.Stdout, "Comparison workbook: %s\n", workbookPath)
	_, _ = fmt.Fprintf(os.Stdout, "HTML report: %s\n", htmlPath)

	persistRun(cmd.Context(), cfg.DatabaseURL, db.OperationCompare, []string{left.Name, right.Name}, func(ctx context.Context, database *db.DB, runID uuid.UUID) error {
		if err := database.SaveJSONArtifact(ctx, runID, "report", db.ArtifactReportJSON, report); err != nil {
			return err
		}
		if err := database.SaveFileArtifact(ctx, runID, "comparison_workbook", db.ArtifactWorkbook, workbookPath); err != nil {
			return err
		}
		return database.SaveFileArtifact(ctx, runID, "html_report", db.ArtifactHTMLReport, htmlPath)
	})

	return nil
}

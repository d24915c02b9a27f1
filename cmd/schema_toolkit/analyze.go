package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matthias/iso20022-toolkit/internal/db"
	"github.com/matthias/iso20022-toolkit/internal/observability"
	"github.com/matthias/iso20022-toolkit/internal/reporting"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <schema.xsd>",
	Short: "Resolve an XSD schema into its flat field model",
	Long:  "Resolve an ISO 20022 XSD message definition into a flat, document-ordered field model and write it as JSON plus an analysis workbook.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var (
	analyzeMaxDepth int
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMaxDepth, "max-depth", 0, "Maximum element nesting depth before resolution aborts (default 64)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = analyzeMaxDepth
	}

	schemaPath := args[0]
	if cfg.Verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Resolving schema: %s\n", schemaPath)
	}

	model, err := resolveSchema(schemaPath, cfg.MaxDepth)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", schemaPath, err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSchemaModel(model)

	if err := ensureOutputDir(cfg.OutputDir); err != nil {
		return err
	}

	jsonPath := filepath.Join(cfg.OutputDir, model.Name+"_model.json")
	if err := reporting.WriteModelJSON(model, jsonPath); err != nil {
		return fmt.Errorf("failed to write model JSON: %w", err)
	}

	workbookPath := filepath.Join(cfg.OutputDir, model.Name+"_analysis.xlsx")
	if err := reporting.AnalysisWorkbook(model, workbookPath); err != nil {
		return fmt.Errorf("failed to write analysis workbook: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Model JSON: %s\n", jsonPath)
	_, _ = fmt.Fprintf(os.Stdout, "Analysis workbook: %s\n", workbookPath)

	persistRun(cmd.Context(), cfg.DatabaseURL, db.OperationAnalyze, []string{model.Name}, func(ctx context.Context, database *db.DB, runID uuid.UUID) error {
		if err := database.SaveJSONArtifact(ctx, runID, "model", db.ArtifactModelJSON, model); err != nil {
			return err
		}
		return database.SaveFileArtifact(ctx, runID, "analysis_workbook", db.ArtifactWorkbook, workbookPath)
	})

	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matthias/iso20022-toolkit/internal/codesets"
	"github.com/matthias/iso20022-toolkit/internal/db"
	"github.com/matthias/iso20022-toolkit/internal/mapping"
	"github.com/matthias/iso20022-toolkit/internal/observability"
	"github.com/matthias/iso20022-toolkit/internal/reporting"
	"github.com/matthias/iso20022-toolkit/internal/types"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping <schema.xsd>",
	Short: "Generate a field-mapping template from a schema",
	Long:  "Resolve an XSD message definition and generate a field-mapping template with one row per field, pre-filled with types, cardinality and sample values. Writes JSON and an Excel workbook with hierarchical, flat and mandatory-only sheets.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMapping,
}

var (
	mappingMaxDepth       int
	mappingCodeSetPath    string
	mappingView           string
	mappingSkipAttributes bool
)

func init() {
	mappingCmd.Flags().IntVar(&mappingMaxDepth, "max-depth", 0, "Maximum element nesting depth before resolution aborts (default 64)")
	mappingCmd.Flags().StringVar(&mappingCodeSetPath, "codesets", "", "Path to an external code set JSON document for sample values")
	mappingCmd.Flags().StringVar(&mappingView, "view", "hierarchical", "Row view for the JSON output: hierarchical, flat or mandatory")
	mappingCmd.Flags().BoolVar(&mappingSkipAttributes, "skip-attributes", false, "Leave XML attributes out of the template")
	rootCmd.AddCommand(mappingCmd)
}

func runMapping(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = mappingMaxDepth
	}
	if cmd.Flags().Changed("codesets") {
		cfg.CodeSetPath = mappingCodeSetPath
	}

	switch mappingView {
	case "hierarchical", "flat", "mandatory":
	default:
		return fmt.Errorf("invalid view %q: must be hierarchical, flat or mandatory", mappingView)
	}

	model, err := resolveSchema(args[0], cfg.MaxDepth)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	var codes *codesets.CodeSets
	if cfg.CodeSetPath != "" {
		codes, err = codesets.Load(cfg.CodeSetPath)
		if err != nil {
			return fmt.Errorf("failed to load code sets: %w", err)
		}
		if cfg.Verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded %d code sets from %s\n", codes.Len(), cfg.CodeSetPath)
		}
	}

	rows := mapping.Generate(model, codes, mapping.Options{SkipAttributes: mappingSkipAttributes})
	view := viewRows(rows, mappingView)

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintMappingSummary(mappingView, view)

	if err := ensureOutputDir(cfg.OutputDir); err != nil {
		return err
	}

	jsonPath := filepath.Join(cfg.OutputDir, model.Name+"_mapping.json")
	if err := reporting.WriteMappingJSON(view, jsonPath); err != nil {
		return fmt.Errorf("failed to write mapping JSON: %w", err)
	}

	// The workbook always carries all three views as separate sheets.
	workbookPath := filepath.Join(cfg.OutputDir, model.Name+"_mapping.xlsx")
	if err := reporting.MappingWorkbook(rows, workbookPath); err != nil {
		return fmt.Errorf("failed to write mapping workbook: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Mapping JSON: %s\n", jsonPath)
	_, _ = fmt.Fprintf(os.Stdout, "Mapping workbook: %s\n", workbookPath)

	persistRun(cmd.Context(), cfg.DatabaseURL, db.OperationMapping, []string{model.Name}, func(ctx context.Context, database *db.DB, runID uuid.UUID) error {
		if err := database.SaveJSONArtifact(ctx, runID, "mapping", db.ArtifactMappingJSON, view); err != nil {
			return err
		}
		return database.SaveFileArtifact(ctx, runID, "mapping_workbook", db.ArtifactWorkbook, workbookPath)
	})

	return nil
}

func viewRows(rows []types.MappingRow, view string) []types.MappingRow {
	switch view {
	case "flat":
		return mapping.Flat(rows)
	case "mandatory":
		return mapping.MandatoryOnly(rows)
	default:
		return mapping.Hierarchical(rows)
	}
}

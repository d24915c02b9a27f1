package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matthias/iso20022-toolkit/internal/db"
	"github.com/matthias/iso20022-toolkit/internal/multicompare"
	"github.com/matthias/iso20022-toolkit/internal/observability"
	"github.com/matthias/iso20022-toolkit/internal/reporting"
	"github.com/matthias/iso20022-toolkit/internal/types"
)

var multicompareCmd = &cobra.Command{
	Use:   "multicompare <a.xsd> <b.xsd> [c.xsd ...]",
	Short: "Compare a chain of schema versions",
	Long:  "Resolve two or more XSD message definitions given in version order, diff each consecutive pair, and build a field presence matrix across all versions. Writes JSON and Excel reports.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runMultiCompare,
}

var (
	multicompareMaxDepth int
	multicompareWorkers  int
)

func init() {
	multicompareCmd.Flags().IntVar(&multicompareMaxDepth, "max-depth", 0, "Maximum element nesting depth before resolution aborts (default 64)")
	multicompareCmd.Flags().IntVar(&multicompareWorkers, "workers", 0, "Parallel workers for resolution and pairwise diffs (default: number of CPUs)")
	rootCmd.AddCommand(multicompareCmd)
}

func runMultiCompare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = multicompareMaxDepth
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = multicompareWorkers
	}

	models, err := resolveAll(cmd.Context(), args, cfg.MaxDepth, cfg.Workers)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		for _, m := range models {
			_, _ = fmt.Fprintf(os.Stdout, "Resolved %s: %d fields\n", m.Name, len(m.Fields))
		}
	}

	report, err := multicompare.Compare(cmd.Context(), models, multicompare.Options{Workers: cfg.Workers})
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}
	report.GeneratedAt = time.Now().UTC()

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintMultiComparisonReport(report)

	if err := ensureOutputDir(cfg.OutputDir); err != nil {
		return err
	}

	names := report.SchemaNames
	base := fmt.Sprintf("%s_to_%s", names[0], names[len(names)-1])
	jsonPath := filepath.Join(cfg.OutputDir, base+"_multi.json")
	if err := reporting.WriteMultiReportJSON(report, jsonPath); err != nil {
		return fmt.Errorf("failed to write multi-comparison JSON: %w", err)
	}

	workbookPath := filepath.Join(cfg.OutputDir, base+"_matrix.xlsx")
	if err := reporting.MatrixWorkbook(report, workbookPath); err != nil {
		return fmt.Errorf("failed to write matrix workbook: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Multi-comparison JSON: %s\n", jsonPath)
	_, _ = fmt.Fprintf(os.Stdout, "Matrix workbook: %s\n", workbookPath)

	persistRun(cmd.Context(), cfg.DatabaseURL, db.OperationMultiCompare, names, func(ctx context.Context, database *db.DB, runID uuid.UUID) error {
		if err := database.SaveJSONArtifact(ctx, runID, "multi_report", db.ArtifactMultiReportJSON, report); err != nil {
			return err
		}
		return database.SaveFileArtifact(ctx, runID, "matrix_workbook", db.ArtifactWorkbook, workbookPath)
	})

	return nil
}

// resolveAll resolves a batch of schema files under a bounded errgroup,
// preserving input order.
func resolveAll(ctx context.Context, paths []string, maxDepth, workers int) ([]*types.SchemaModel, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	models := make([]*types.SchemaModel, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			model, err := resolveSchema(path, maxDepth)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", path, err)
			}
			models[i] = model
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

// Package multicompare diffs a chain of schema versions: it builds a
// presence matrix over the union of all field paths, compares each
// consecutive pair, and rolls the pairwise differences up per field path.
package multicompare

import (
	"context"
	"fmt"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matthias/iso20022-toolkit/internal/diff"
	"github.com/matthias/iso20022-toolkit/internal/types"
)

// maxRollupSummaries caps how many impact lines a rollup keeps before
// collapsing the rest into a "+N more" entry.
const maxRollupSummaries = 3

// Options configures a multi-schema comparison.
type Options struct {
	// Workers bounds the number of pairwise comparisons running in
	// parallel. Zero means one worker per CPU.
	Workers int
}

// Compare diffs two or more schema models given in version order. Pairwise
// comparisons run in parallel; the report is assembled in input order, so the
// output is deterministic regardless of scheduling.
func Compare(ctx context.Context, models []*types.SchemaModel, opts Options) (*types.MultiComparisonReport, error) {
	if len(models) < 2 {
		return nil, fmt.Errorf("multi-schema comparison needs at least two schemas, got %d", len(models))
	}

	names := make([]string, len(models))
	indexes := make([]map[string]types.FieldNode, len(models))
	for i, m := range models {
		names[i] = m.Name
		indexes[i] = m.IndexByPath()
	}

	pairwise, err := comparePairs(ctx, models, opts.Workers)
	if err != nil {
		return nil, err
	}

	matrix := buildMatrix(models, indexes)
	report := &types.MultiComparisonReport{
		SchemaNames: names,
		Matrix:      matrix,
		Pairwise:    pairwise,
		Rollups:     rollUp(matrix, pairwise),
	}
	report.Summary = summarize(report, models)
	return report, nil
}

// comparePairs runs the consecutive pairwise diffs under a bounded errgroup,
// writing each report to its slot so order is preserved.
func comparePairs(ctx context.Context, models []*types.SchemaModel, workers int) ([]*types.ComparisonReport, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	reports := make([]*types.ComparisonReport, len(models)-1)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range reports {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			reports[i] = diff.Compare(models[i], models[i+1])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// buildMatrix lists the union of field paths in first-appearance order with
// one cell per schema.
func buildMatrix(models []*types.SchemaModel, indexes []map[string]types.FieldNode) []types.MatrixRow {
	var order []string
	seen := make(map[string]bool)
	nameOf := make(map[string]string)
	for _, m := range models {
		for _, f := range m.Fields {
			if !seen[f.Path] {
				seen[f.Path] = true
				order = append(order, f.Path)
				nameOf[f.Path] = f.Name
			}
		}
	}

	rows := make([]types.MatrixRow, 0, len(order))
	for _, path := range order {
		row := types.MatrixRow{Path: path, Name: nameOf[path], Cells: make([]types.MatrixCell, len(models))}
		for i, idx := range indexes {
			if f, ok := idx[path]; ok {
				row.Cells[i] = types.MatrixCell{
					Present:        true,
					DeclaredType:   f.DeclaredType,
					MinOccurs:      f.MinOccurs,
					MaxOccurs:      f.MaxOccurs,
					Classification: f.Classification,
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// rollUp aggregates all pairwise differences per field path, in matrix order.
// Paths nothing touched produce no rollup.
func rollUp(matrix []types.MatrixRow, pairwise []*types.ComparisonReport) []types.PathRollup {
	byPath := make(map[string][]types.Difference)
	for _, report := range pairwise {
		for _, d := range report.Differences {
			byPath[d.Path] = append(byPath[d.Path], d)
		}
	}

	var rollups []types.PathRollup
	for _, row := range matrix {
		diffs := byPath[row.Path]
		if len(diffs) == 0 {
			continue
		}

		severity := types.Severity("")
		var summaries []string
		for _, d := range diffs {
			severity = types.MaxSeverity(severity, d.Severity)
			summaries = append(summaries, d.Impact)
		}
		if len(summaries) > maxRollupSummaries {
			rest := len(summaries) - maxRollupSummaries
			summaries = append(summaries[:maxRollupSummaries], fmt.Sprintf("+%d more", rest))
		}

		rollups = append(rollups, types.PathRollup{
			Path: row.Path,
			Kinds: lo.Uniq(lo.Map(diffs, func(d types.Difference, _ int) types.DifferenceKind {
				return d.Kind
			})),
			MaxSeverity: severity,
			Changes:     len(diffs),
			Summaries:   summaries,
		})
	}
	return rollups
}

func summarize(report *types.MultiComparisonReport, models []*types.SchemaModel) types.MultiSummary {
	s := types.MultiSummary{
		SchemaNames: report.SchemaNames,
		TotalFields: len(report.Matrix),
	}
	for _, m := range models {
		s.FieldCounts = append(s.FieldCounts, len(m.Fields))
	}
	for _, row := range report.Matrix {
		stable := true
		for _, c := range row.Cells {
			if !c.Present {
				stable = false
				break
			}
		}
		if stable {
			s.StableFields++
		}
		first := row.Cells[0].Present
		last := row.Cells[len(row.Cells)-1].Present
		if !first && last {
			s.AddedFields++
		}
		if first && !last {
			s.RemovedFields++
		}
	}
	for _, p := range report.Pairwise {
		s.DifferencesByPair = append(s.DifferencesByPair, len(p.Differences))
	}
	return s
}

// Package diff compares two resolved schema models field by field and
// produces typed, severity-ranked difference records ordered by document
// position.
package diff

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

const (
	presentMark = "PRESENT"
	absentMark  = "NOT PRESENT"
	noneMark    = "None"

	// maxValueLen caps free-text values (rulebook, usage rules) in
	// difference records.
	maxValueLen = 100
)

// Compare diffs two resolved models. It never fails on valid models, never
// mutates them, and is deterministic: the same pair always yields the same
// report. GeneratedAt is left zero; callers stamp it when persisting.
func Compare(left, right *types.SchemaModel) *types.ComparisonReport {
	leftIdx := left.IndexByPath()
	rightIdx := right.IndexByPath()

	var diffs []types.Difference
	for _, path := range unionPaths(leftIdx, rightIdx) {
		lf, inLeft := leftIdx[path]
		rf, inRight := rightIdx[path]
		switch {
		case inLeft && !inRight:
			diffs = append(diffs, types.Difference{
				Kind:         types.KindRemoved,
				Severity:     types.SeverityHigh,
				Path:         path,
				ElementName:  lf.Name,
				LeftValue:    presentMark,
				RightValue:   absentMark,
				Impact:       fmt.Sprintf("Field '%s' removed in %s. Breaking change if field was in use.", path, right.Name),
				LeftSequence: lf.Sequence,
			})
		case !inLeft && inRight:
			diffs = append(diffs, types.Difference{
				Kind:          types.KindAdded,
				Severity:      types.SeverityHigh,
				Path:          path,
				ElementName:   rf.Name,
				LeftValue:     absentMark,
				RightValue:    presentMark,
				Impact:        fmt.Sprintf("New field '%s' added in %s. May be required in new version.", path, right.Name),
				RightSequence: rf.Sequence,
			})
		default:
			diffs = append(diffs, compareField(lf, rf, left, right)...)
		}
	}

	return &types.ComparisonReport{
		LeftName:    left.Name,
		RightName:   right.Name,
		Differences: diffs,
		Summary:     types.Summarize(diffs),
	}
}

// unionPaths orders the union of both path sets by document position: left
// sequence first, right sequence for paths only the right schema has, path
// text as the final tiebreak.
func unionPaths(left, right map[string]types.FieldNode) []string {
	paths := lo.Union(lo.Keys(left), lo.Keys(right))

	seqOf := func(idx map[string]types.FieldNode, p string) int {
		if f, ok := idx[p]; ok {
			return f.Sequence
		}
		return math.MaxInt
	}
	sort.Slice(paths, func(i, j int) bool {
		li, lj := seqOf(left, paths[i]), seqOf(left, paths[j])
		if li != lj {
			return li < lj
		}
		ri, rj := seqOf(right, paths[i]), seqOf(right, paths[j])
		if ri != rj {
			return ri < rj
		}
		return paths[i] < paths[j]
	})
	return paths
}

// compareField emits one difference per changed facet of a field present on
// both sides, in a fixed order. Pure positional moves (sequence changed,
// nothing else) emit nothing.
func compareField(lf, rf types.FieldNode, left, right *types.SchemaModel) []types.Difference {
	var out []types.Difference
	add := func(d types.Difference) {
		d.Path = rf.Path
		d.ElementName = rf.Name
		d.LeftSequence = lf.Sequence
		d.RightSequence = rf.Sequence
		out = append(out, d)
	}

	if lf.DeclaredType != rf.DeclaredType {
		impact := fmt.Sprintf("Data type changed from '%s' to '%s'. May require data conversion.", lf.DeclaredType, rf.DeclaredType)
		detail := typeFacetDelta(lf.DeclaredType, rf.DeclaredType, left, right)
		if detail != "" {
			impact += " Restrictions: " + detail
		}
		add(types.Difference{
			Kind:              types.KindTypeChanged,
			Severity:          types.SeverityHigh,
			LeftValue:         lf.DeclaredType,
			RightValue:        rf.DeclaredType,
			Impact:            impact,
			RestrictionDetail: detail,
		})
	}

	if lf.MinOccurs != rf.MinOccurs {
		severity := types.SeverityMedium
		if lf.MinOccurs == "0" && rf.MinOccurs != "0" {
			severity = types.SeverityHigh
		}
		impact := "Field is now optional."
		if rf.MinOccurs != "0" {
			impact = "Field is now required."
		}
		add(types.Difference{
			Kind:       types.KindCardinalityChanged,
			Severity:   severity,
			LeftValue:  "min:" + lf.MinOccurs,
			RightValue: "min:" + rf.MinOccurs,
			Impact:     impact,
		})
	}

	if lf.MaxOccurs != rf.MaxOccurs {
		add(types.Difference{
			Kind:       types.KindCardinalityChanged,
			Severity:   types.SeverityMedium,
			LeftValue:  "max:" + lf.MaxOccurs,
			RightValue: "max:" + rf.MaxOccurs,
			Impact:     fmt.Sprintf("Max occurrences changed from %s to %s.", lf.MaxOccurs, rf.MaxOccurs),
		})
	}

	if ls, rs := lf.Restrictions.Summary(), rf.Restrictions.Summary(); ls != rs {
		add(types.Difference{
			Kind:       types.KindRestrictionChanged,
			Severity:   types.SeverityHigh,
			LeftValue:  orNone(ls),
			RightValue: orNone(rs),
			Impact:     "Validation rules changed. May affect data validation.",
		})
	}

	if lf.Classification != rf.Classification {
		severity, impact := classificationChange(lf.Classification, rf.Classification)
		add(types.Difference{
			Kind:       types.KindClassificationChanged,
			Severity:   severity,
			LeftValue:  string(lf.Classification),
			RightValue: string(rf.Classification),
			Impact:     impact,
		})
	}

	if lf.FixedValue != rf.FixedValue {
		add(types.Difference{
			Kind:       types.KindFixedValueChanged,
			Severity:   types.SeverityHigh,
			LeftValue:  orNone(lf.FixedValue),
			RightValue: orNone(rf.FixedValue),
			Impact:     fmt.Sprintf("Fixed value changed from '%s' to '%s'.", orNone(lf.FixedValue), orNone(rf.FixedValue)),
		})
	}

	if lf.DefaultValue != rf.DefaultValue {
		add(types.Difference{
			Kind:       types.KindDefaultValueChanged,
			Severity:   types.SeverityMedium,
			LeftValue:  orNone(lf.DefaultValue),
			RightValue: orNone(rf.DefaultValue),
			Impact:     fmt.Sprintf("Default value changed from '%s' to '%s'.", orNone(lf.DefaultValue), orNone(rf.DefaultValue)),
		})
	}

	if d, ok := textChange(types.KindRulebookChanged, lf.RulebookText, rf.RulebookText,
		"Rulebook definition changed.", "Rulebook definition added.", "Rulebook definition removed."); ok {
		add(d)
	}
	if d, ok := textChange(types.KindUsageRuleChanged, lf.UsageRuleText, rf.UsageRuleText,
		"Usage rules changed.", "Usage rules added.", "Usage rules removed."); ok {
		add(d)
	}

	if d, ok := enumerationChange(lf.Restrictions.Enumeration, rf.Restrictions.Enumeration); ok {
		add(d)
	}

	return out
}

// typeFacetDelta renders the facet differences between two named types via
// the models' type facet indexes. Enumerations are compared separately and
// excluded here. An empty string means no detail (either type unknown or the
// facet sets match).
func typeFacetDelta(leftType, rightType string, left, right *types.SchemaModel) string {
	lr, lok := left.FacetsFor(leftType)
	rr, rok := right.FacetsFor(rightType)
	if !lok || !rok {
		return ""
	}

	lm, rm := facetMap(lr), facetMap(rr)
	keys := lo.Union(lo.Keys(lm), lo.Keys(rm))
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		lv, rv := orNA(lm[k]), orNA(rm[k])
		if lv != rv {
			parts = append(parts, fmt.Sprintf("%s: %s → %s", k, lv, rv))
		}
	}
	return strings.Join(parts, "; ")
}

// facetMap flattens a facet set into XSD facet names, skipping enumeration.
func facetMap(r types.Restrictions) map[string]string {
	m := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("pattern", r.Pattern)
	set("minLength", r.MinLength)
	set("maxLength", r.MaxLength)
	set("length", r.Length)
	set("minInclusive", r.MinInclusive)
	set("maxInclusive", r.MaxInclusive)
	set("fractionDigits", r.FractionDigits)
	set("totalDigits", r.TotalDigits)
	set("whiteSpace", r.WhiteSpace)
	return m
}

// classificationChange maps a classification transition to its severity and
// impact. Moves between Yellow and White are breaking for payment routing;
// gaining a colour matters more than losing one, and Yellow always outranks
// White.
func classificationChange(from, to types.Classification) (types.Severity, string) {
	switch {
	case from == types.ClassificationYellow && to == types.ClassificationWhite,
		from == types.ClassificationWhite && to == types.ClassificationYellow:
		return types.SeverityHigh, "Classification changed between Yellow and White. Review payment-processing impact."
	case from == types.ClassificationNotSpecified && to == types.ClassificationYellow:
		return types.SeverityMedium, "Field is now classified as Yellow (payment critical)."
	case from == types.ClassificationNotSpecified && to == types.ClassificationWhite:
		return types.SeverityLow, "Field is now classified as White."
	case from == types.ClassificationYellow && to == types.ClassificationNotSpecified:
		return types.SeverityMedium, "Field is no longer classified as Yellow."
	default:
		return types.SeverityLow, "Field is no longer classified as White."
	}
}

// textChange handles the rulebook and usage-rule text facets: modified text
// is MEDIUM, newly added text is MEDIUM, removed text is LOW.
func textChange(kind types.DifferenceKind, leftText, rightText, changedMsg, addedMsg, removedMsg string) (types.Difference, bool) {
	if leftText == rightText {
		return types.Difference{}, false
	}
	d := types.Difference{
		Kind:       kind,
		LeftValue:  orNone(truncate(leftText, maxValueLen)),
		RightValue: orNone(truncate(rightText, maxValueLen)),
	}
	switch {
	case leftText != "" && rightText != "":
		d.Severity, d.Impact = types.SeverityMedium, changedMsg
	case leftText == "":
		d.Severity, d.Impact = types.SeverityMedium, addedMsg
	default:
		d.Severity, d.Impact = types.SeverityLow, removedMsg
	}
	return d, true
}

// enumerationChange compares the (sorted) enumeration value sets. Removed
// values break existing data and rank HIGH; additions alone are MEDIUM.
func enumerationChange(leftEnum, rightEnum []string) (types.Difference, bool) {
	if slicesEqual(leftEnum, rightEnum) {
		return types.Difference{}, false
	}
	removed := lo.Without(leftEnum, rightEnum...)
	added := lo.Without(rightEnum, leftEnum...)

	d := types.Difference{
		Kind:       types.KindEnumerationChanged,
		LeftValue:  orNone(strings.Join(leftEnum, ", ")),
		RightValue: orNone(strings.Join(rightEnum, ", ")),
	}
	switch {
	case len(removed) > 0:
		d.Severity = types.SeverityHigh
		d.Impact = fmt.Sprintf("Enumeration values removed: %s. Breaking change for existing data.", strings.Join(removed, ", "))
	case len(added) > 0:
		d.Severity = types.SeverityMedium
		d.Impact = fmt.Sprintf("Enumeration values added: %s.", strings.Join(added, ", "))
	default:
		d.Severity = types.SeverityLow
		d.Impact = "Enumeration values changed."
	}
	return d, true
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func orNone(s string) string {
	if s == "" {
		return noneMark
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Rank(t *testing.T) {
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Equal(t, 0, Severity("").Rank())
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, MaxSeverity(SeverityLow, SeverityHigh))
	assert.Equal(t, SeverityHigh, MaxSeverity(SeverityHigh, SeverityMedium))
	assert.Equal(t, SeverityMedium, MaxSeverity(SeverityMedium, SeverityMedium))
}

func TestSummarize(t *testing.T) {
	diffs := []Difference{
		{Kind: KindAdded, Severity: SeverityHigh},
		{Kind: KindRemoved, Severity: SeverityHigh},
		{Kind: KindCardinalityChanged, Severity: SeverityMedium},
		{Kind: KindEnumerationChanged, Severity: SeverityLow},
	}
	s := Summarize(diffs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.BySeverity[SeverityHigh])
	assert.Equal(t, 1, s.BySeverity[SeverityMedium])
	assert.Equal(t, 1, s.BySeverity[SeverityLow])
	assert.Equal(t, 1, s.ByKind[KindAdded])
	assert.Equal(t, 1, s.ByKind[KindRemoved])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.BySeverity)
	assert.Empty(t, s.ByKind)
}

func TestComparisonReport_HasBreakingChanges(t *testing.T) {
	r := ComparisonReport{Summary: Summarize([]Difference{{Kind: KindAdded, Severity: SeverityHigh}})}
	assert.True(t, r.HasBreakingChanges())

	r = ComparisonReport{Summary: Summarize([]Difference{{Kind: KindDefaultValueChanged, Severity: SeverityMedium}})}
	assert.False(t, r.HasBreakingChanges())
}

func TestDifference_JSONMarshaling(t *testing.T) {
	d := Difference{
		Kind:          KindCardinalityChanged,
		Severity:      SeverityHigh,
		Path:          "Document/CstmrCdtTrfInitn/PmtInf/ReqdExctnDt",
		ElementName:   "ReqdExctnDt",
		LeftValue:     "min:0",
		RightValue:    "min:1",
		Impact:        "Field is now required.",
		LeftSequence:  41,
		RightSequence: 43,
	}

	jsonBytes, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"kind":"CARDINALITY_CHANGED"`)
	assert.Contains(t, string(jsonBytes), `"severity":"HIGH"`)
	assert.Contains(t, string(jsonBytes), `"left_sequence":41`)

	var back Difference
	require.NoError(t, json.Unmarshal(jsonBytes, &back))
	assert.Equal(t, d, back)
}

func TestDifference_AbsentSideOmitsSequence(t *testing.T) {
	d := Difference{
		Kind:          KindAdded,
		Severity:      SeverityHigh,
		Path:          "Document/GrpHdr/InitgPty",
		ElementName:   "InitgPty",
		LeftValue:     "NOT PRESENT",
		RightValue:    "PRESENT",
		RightSequence: 7,
	}
	jsonBytes, err := json.Marshal(d)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonBytes), "left_sequence")
	assert.Contains(t, string(jsonBytes), `"right_sequence":7`)
}

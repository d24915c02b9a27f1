package reporting

import (
	"github.com/matthias/iso20022-toolkit/internal/types"
)

func sampleModel() *types.SchemaModel {
	return &types.SchemaModel{
		Name:            "pain.001.001.03",
		TargetNamespace: "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03",
		RootElement:     "Document",
		RootType:        "Document",
		Fields: []types.FieldNode{
			{Sequence: 1, Path: "Document", Level: 0, Name: "Document", DeclaredType: "Document", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
			{Sequence: 2, Path: "Document/GrpHdr", Level: 1, Name: "GrpHdr", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
			{
				Sequence: 3, Path: "Document/GrpHdr/MsgId", Level: 2, Name: "MsgId", DeclaredType: "Max35Text",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationYellow,
				Restrictions:   types.Restrictions{MinLength: "1", MaxLength: "35"},
				AnnotationText: "Point to point reference assigned by the instructing party.",
			},
			{
				Sequence: 4, Path: "Document/GrpHdr/PmtMtd", Level: 2, Name: "PmtMtd", DeclaredType: "PaymentMethod3Code",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationWhite,
				Restrictions: types.Restrictions{Enumeration: []string{"CHK", "TRA", "TRF"}},
			},
		},
	}
}

func sampleReport() *types.ComparisonReport {
	diffs := []types.Difference{
		{
			Kind: types.KindRemoved, Severity: types.SeverityHigh,
			Path: "Document/CstmrCdtTrfInitn/GrpHdr/Grpg", ElementName: "Grpg",
			LeftValue: "PRESENT", RightValue: "NOT PRESENT",
			Impact:       "Field 'Grpg' removed in pain.001.001.09. Breaking change if field was in use.",
			LeftSequence: 4,
		},
		{
			Kind: types.KindAdded, Severity: types.SeverityHigh,
			Path: "Document/CstmrCdtTrfInitn/PmtInf/PmtInfId", ElementName: "PmtInfId",
			LeftValue: "NOT PRESENT", RightValue: "PRESENT",
			Impact:        "New field 'PmtInfId' added in pain.001.001.09. May be required in new version.",
			RightSequence: 6,
		},
		{
			Kind: types.KindTypeChanged, Severity: types.SeverityHigh,
			Path: "Document/CstmrCdtTrfInitn/GrpHdr/MsgId", ElementName: "MsgId",
			LeftValue: "Max35Text", RightValue: "Max70Text",
			Impact:            "Data type changed from 'Max35Text' to 'Max70Text'. May require data conversion. Restrictions: maxLength: 35 → 70",
			RestrictionDetail: "maxLength: 35 → 70",
			LeftSequence:      3, RightSequence: 3,
		},
		{
			Kind: types.KindCardinalityChanged, Severity: types.SeverityMedium,
			Path: "Document/CstmrCdtTrfInitn/PmtInf/BtchBookg", ElementName: "BtchBookg",
			LeftValue: "min:1", RightValue: "min:0",
			Impact:       "Field is now optional.",
			LeftSequence: 8, RightSequence: 8,
		},
		{
			Kind: types.KindEnumerationChanged, Severity: types.SeverityHigh,
			Path: "Document/CstmrCdtTrfInitn/PmtInf/PmtMtd", ElementName: "PmtMtd",
			LeftValue: "CHK, TRA, TRF", RightValue: "TRA, TRF",
			Impact:       "Enumeration values removed: CHK. Breaking change for existing data.",
			LeftSequence: 9, RightSequence: 9,
		},
		{
			Kind: types.KindRulebookChanged, Severity: types.SeverityLow,
			Path: "Document/CstmrCdtTrfInitn/GrpHdr/CreDtTm", ElementName: "CreDtTm",
			LeftValue: "Rulebook reference 2.1", RightValue: "None",
			Impact:       "Rulebook reference removed.",
			LeftSequence: 5, RightSequence: 5,
		},
	}
	return &types.ComparisonReport{
		LeftName:    "pain.001.001.03",
		RightName:   "pain.001.001.09",
		Differences: diffs,
		Summary:     types.Summarize(diffs),
	}
}

func sampleMulti() *types.MultiComparisonReport {
	report := sampleReport()
	return &types.MultiComparisonReport{
		SchemaNames: []string{"pain.001.001.03", "pain.001.001.09"},
		Matrix: []types.MatrixRow{
			{
				Path: "Document", Name: "Document",
				Cells: []types.MatrixCell{
					{Present: true, DeclaredType: "Document", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
					{Present: true, DeclaredType: "Document", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
				},
			},
			{
				Path: "Document/CstmrCdtTrfInitn/GrpHdr/Grpg", Name: "Grpg",
				Cells: []types.MatrixCell{
					{Present: true, DeclaredType: "Grouping1Code", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
					{},
				},
			},
		},
		Pairwise: []*types.ComparisonReport{report},
		Rollups: []types.PathRollup{
			{
				Path:        "Document/CstmrCdtTrfInitn/GrpHdr/Grpg",
				Kinds:       []types.DifferenceKind{types.KindRemoved},
				MaxSeverity: types.SeverityHigh,
				Changes:     1,
				Summaries:   []string{"Field 'Grpg' removed in pain.001.001.09. Breaking change if field was in use."},
			},
		},
		Summary: types.MultiSummary{
			SchemaNames:       []string{"pain.001.001.03", "pain.001.001.09"},
			FieldCounts:       []int{2, 1},
			TotalFields:       2,
			StableFields:      1,
			RemovedFields:     1,
			DifferencesByPair: []int{len(report.Differences)},
		},
	}
}

func sampleRows() []types.MappingRow {
	return []types.MappingRow{
		{XPath: "Document", Element: "Document", Level: 0, DataType: "Document", MinOccurs: "1", MaxOccurs: "1", Mandatory: "Yes", SampleValue: "[Document]", Classification: types.ClassificationNotSpecified},
		{XPath: "Document/GrpHdr", Element: "GrpHdr", Level: 1, DataType: "complex", MinOccurs: "1", MaxOccurs: "1", Mandatory: "Yes", SampleValue: "[GrpHdr]", Classification: types.ClassificationNotSpecified},
		{XPath: "Document/GrpHdr/MsgId", Element: "MsgId", Level: 2, DataType: "string", MinOccurs: "1", MaxOccurs: "1", Mandatory: "Yes", MaxLength: "35", SampleValue: "MSG20240115123456", Classification: types.ClassificationYellow},
		{XPath: "Document/GrpHdr/Authstn", Element: "Authstn", Level: 2, DataType: "string", MinOccurs: "0", MaxOccurs: "2", Mandatory: "No", SampleValue: "[Authstn]", Classification: types.ClassificationNotSpecified},
	}
}

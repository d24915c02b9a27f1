package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthias/iso20022-toolkit/internal/codesets"
	"github.com/matthias/iso20022-toolkit/internal/types"
)

func paymentModel() *types.SchemaModel {
	return &types.SchemaModel{
		Name: "pain.001.001.03",
		Fields: []types.FieldNode{
			{Sequence: 1, Path: "Document", Level: 0, Name: "Document", DeclaredType: "Document", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
			{Sequence: 2, Path: "Document/GrpHdr", Level: 1, Name: "GrpHdr", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
			{
				Sequence: 3, Path: "Document/GrpHdr/MsgId", Level: 2, Name: "MsgId", DeclaredType: "Max35Text",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationYellow,
				Restrictions:   types.Restrictions{MinLength: "1", MaxLength: "35"},
				AnnotationText: "Point to point reference assigned by the instructing party.",
			},
			{Sequence: 4, Path: "Document/PmtInf", Level: 1, Name: "PmtInf", DeclaredType: "PaymentInstruction", MinOccurs: "1", MaxOccurs: "unbounded", Classification: types.ClassificationNotSpecified},
			{
				Sequence: 5, Path: "Document/PmtInf/PmtMtd", Level: 2, Name: "PmtMtd", DeclaredType: "PaymentMethod3Code",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationWhite,
				Restrictions: types.Restrictions{Enumeration: []string{"CHK", "TRA", "TRF"}},
			},
			{Sequence: 6, Path: "Document/PmtInf/CtgyPurp", Level: 2, Name: "CtgyPurp", DeclaredType: "ExternalCategoryPurpose1Code", MinOccurs: "0", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
			{
				Sequence: 7, Path: "Document/PmtInf/Amt", Level: 2, Name: "Amt", DeclaredType: "ActiveOrHistoricCurrencyAndAmount",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified,
				Restrictions: types.Restrictions{FractionDigits: "5"},
			},
			{
				Sequence: 8, Path: "Document/PmtInf/Amt/@Ccy", Level: 3, Name: "@Ccy", DeclaredType: "ActiveOrHistoricCurrencyCode",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified,
				Restrictions: types.Restrictions{Pattern: "[A-Z]{3,3}"},
			},
			{Sequence: 9, Path: "Document/PmtInf/ReqdExctnDt", Level: 2, Name: "ReqdExctnDt", DeclaredType: "ISODate", MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified},
			{
				Sequence: 10, Path: "Document/PmtInf/RmtInf", Level: 2, Name: "RmtInf", DeclaredType: "RemittanceInformation5",
				MinOccurs: "0", MaxOccurs: "1", Classification: types.ClassificationNotSpecified,
				UsageRuleText: "Either 'Structured' or 'Unstructured' may be present.",
			},
			{
				Sequence: 11, Path: "Document/PmtInf/RmtInf/Ustrd", Level: 3, Name: "Ustrd", DeclaredType: "Max140Text",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified,
				ChoiceGroup: "choice-0001", ChoiceAlternative: "alternative 1 of 2",
			},
			{
				Sequence: 12, Path: "Document/PmtInf/RmtInf/Strd", Level: 3, Name: "Strd", DeclaredType: "StructuredRemittanceInformation7",
				MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified,
				ChoiceGroup: "choice-0001", ChoiceAlternative: "alternative 2 of 2",
			},
		},
		BaseTypes: map[string]string{
			"Max35Text":                         "string",
			"Max140Text":                        "string",
			"PaymentMethod3Code":                "string",
			"ActiveOrHistoricCurrencyAndAmount": "decimal",
			"ActiveOrHistoricCurrencyCode":      "string",
			"ISODate":                           "date",
		},
	}
}

func externalCodes(t *testing.T) *codesets.CodeSets {
	t.Helper()
	cs, err := codesets.Parse("codes.json", []byte(`{
		"definitions": {
			"ExternalCategoryPurpose1Code": {"enum": ["SALA", "BONU", "CASH"]}
		}
	}`))
	require.NoError(t, err)
	return cs
}

func rowAt(t *testing.T, rows []types.MappingRow, xpath string) types.MappingRow {
	t.Helper()
	for _, r := range rows {
		if r.XPath == xpath {
			return r
		}
	}
	t.Fatalf("no row with xpath %s", xpath)
	return types.MappingRow{}
}

func TestGenerate_RowShape(t *testing.T) {
	rows := Generate(paymentModel(), nil, Options{})
	require.Len(t, rows, 12)

	msgID := rowAt(t, rows, "Document/GrpHdr/MsgId")
	assert.Equal(t, "MsgId", msgID.Element)
	assert.Equal(t, 2, msgID.Level)
	assert.Equal(t, "string", msgID.DataType)
	assert.Equal(t, "1", msgID.MinOccurs)
	assert.Equal(t, "Yes", msgID.Mandatory)
	assert.Equal(t, "35", msgID.MaxLength)
	assert.Equal(t, "MSG20240115123456", msgID.SampleValue)
	assert.Equal(t, types.ClassificationYellow, msgID.Classification)
	assert.Empty(t, msgID.SourceField)
	assert.Empty(t, msgID.Transformation)
}

func TestGenerate_DataTypes(t *testing.T) {
	rows := Generate(paymentModel(), nil, Options{})

	assert.Equal(t, "Document", rowAt(t, rows, "Document").DataType, "unresolvable named type keeps its name")
	assert.Equal(t, "complex", rowAt(t, rows, "Document/GrpHdr").DataType, "anonymous complex content")
	assert.Equal(t, "decimal", rowAt(t, rows, "Document/PmtInf/Amt").DataType)
	assert.Equal(t, "date", rowAt(t, rows, "Document/PmtInf/ReqdExctnDt").DataType)
}

func TestGenerate_SampleValues(t *testing.T) {
	model := paymentModel()

	rows := Generate(model, externalCodes(t), Options{})
	assert.Equal(t, "CHK", rowAt(t, rows, "Document/PmtInf/PmtMtd").SampleValue, "enumeration first value")
	assert.Equal(t, "SALA", rowAt(t, rows, "Document/PmtInf/CtgyPurp").SampleValue, "external code set sample")
	assert.Equal(t, "EUR", rowAt(t, rows, "Document/PmtInf/Amt/@Ccy").SampleValue, "name table applies to attributes")
	assert.Equal(t, "100.00", rowAt(t, rows, "Document/PmtInf/Amt").SampleValue, "decimal base fallback")
	assert.Equal(t, "2024-01-15", rowAt(t, rows, "Document/PmtInf/ReqdExctnDt").SampleValue, "date base fallback")

	// Without code sets, CtgyPurp has no enumeration and a string base.
	rows = Generate(model, nil, Options{})
	assert.Equal(t, "[CtgyPurp]", rowAt(t, rows, "Document/PmtInf/CtgyPurp").SampleValue)
}

func TestGenerate_EnumerationCapped(t *testing.T) {
	model := &types.SchemaModel{
		Fields: []types.FieldNode{{
			Sequence: 1, Path: "Document/Purp", Level: 1, Name: "Purp", DeclaredType: "PurposeCode",
			MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified,
			Restrictions: types.Restrictions{Enumeration: []string{"ADVA", "AGRT", "BEXP", "BONU", "CASH", "CBFF", "CCRD"}},
		}},
	}

	rows := Generate(model, nil, Options{})
	assert.Equal(t, "ADVA, AGRT, BEXP, BONU, CASH +2 more", rows[0].Enumeration)
}

func TestGenerate_Notes(t *testing.T) {
	rows := Generate(paymentModel(), nil, Options{})

	assert.Equal(t, "Choice: alternative 1 of 2; Mutually exclusive with Strd",
		rowAt(t, rows, "Document/PmtInf/RmtInf/Ustrd").Notes)
	assert.Equal(t, "Choice: alternative 2 of 2; Mutually exclusive with Ustrd",
		rowAt(t, rows, "Document/PmtInf/RmtInf/Strd").Notes)
	assert.Empty(t, rowAt(t, rows, "Document/GrpHdr/MsgId").Notes)
}

func TestGenerate_AnnotationTruncated(t *testing.T) {
	model := &types.SchemaModel{
		Fields: []types.FieldNode{{
			Sequence: 1, Path: "Document", Level: 0, Name: "Document",
			MinOccurs: "1", MaxOccurs: "1", Classification: types.ClassificationNotSpecified,
			AnnotationText: strings.Repeat("x", 250),
		}},
	}

	rows := Generate(model, nil, Options{})
	assert.Len(t, rows[0].Annotation, 203)
	assert.True(t, strings.HasSuffix(rows[0].Annotation, "..."))

	rows = Generate(model, nil, Options{AnnotationLimit: 10})
	assert.Equal(t, strings.Repeat("x", 10)+"...", rows[0].Annotation)
}

func TestGenerate_SkipAttributes(t *testing.T) {
	rows := Generate(paymentModel(), nil, Options{SkipAttributes: true})
	require.Len(t, rows, 11)
	for _, r := range rows {
		assert.False(t, strings.HasPrefix(r.Element, "@"))
	}
}

func TestFlat_LeavesOnly(t *testing.T) {
	rows := Generate(paymentModel(), nil, Options{})
	flat := Flat(rows)

	paths := make([]string, len(flat))
	for i, r := range flat {
		paths[i] = r.XPath
	}
	assert.Equal(t, []string{
		"Document/GrpHdr/MsgId",
		"Document/PmtInf/PmtMtd",
		"Document/PmtInf/CtgyPurp",
		"Document/PmtInf/Amt",
		"Document/PmtInf/Amt/@Ccy",
		"Document/PmtInf/ReqdExctnDt",
		"Document/PmtInf/RmtInf/Ustrd",
		"Document/PmtInf/RmtInf/Strd",
	}, paths, "Amt stays a leaf: its only child is an attribute")
}

func TestMandatoryOnly_DropsOptionalSubtrees(t *testing.T) {
	rows := Generate(paymentModel(), nil, Options{})
	mandatory := MandatoryOnly(rows)

	paths := make([]string, len(mandatory))
	for i, r := range mandatory {
		paths[i] = r.XPath
	}
	assert.Equal(t, []string{
		"Document",
		"Document/GrpHdr",
		"Document/GrpHdr/MsgId",
		"Document/PmtInf",
		"Document/PmtInf/PmtMtd",
		"Document/PmtInf/Amt",
		"Document/PmtInf/Amt/@Ccy",
		"Document/PmtInf/ReqdExctnDt",
	}, paths, "mandatory fields under the optional RmtInf are dropped with it")
}

func TestHierarchical_ReturnsAllRows(t *testing.T) {
	rows := Generate(paymentModel(), nil, Options{})
	assert.Equal(t, rows, Hierarchical(rows))
}

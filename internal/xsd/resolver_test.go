package xsd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

// painFixture is a trimmed-down credit transfer initiation schema exercising
// the constructs the resolver has to handle: nested complex types, choice
// compositors, simple-content amounts with a currency attribute, facets and
// documentation markers.
const painFixture = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"
           elementFormDefault="qualified">
  <xs:element name="Document" type="Document"/>
  <xs:complexType name="Document">
    <xs:sequence>
      <xs:element name="CstmrCdtTrfInitn" type="CustomerCreditTransferInitiationV03"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="CustomerCreditTransferInitiationV03">
    <xs:sequence>
      <xs:element name="GrpHdr" type="GroupHeader32"/>
      <xs:element name="PmtInf" type="PaymentInstruction" maxOccurs="unbounded"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="GroupHeader32">
    <xs:sequence>
      <xs:element name="MsgId" type="Max35Text">
        <xs:annotation>
          <xs:documentation source="Yellow Field"/>
          <xs:documentation source="Rulebook">AT-01 point-to-point reference.</xs:documentation>
          <xs:documentation>Unique identification assigned by the instructing party.</xs:documentation>
        </xs:annotation>
      </xs:element>
      <xs:element name="CreDtTm" type="ISODateTime">
        <xs:annotation>
          <xs:documentation source="Usage Rule">Local time of the instructing party.</xs:documentation>
          <xs:documentation source="Format Rule">ISO 8601.</xs:documentation>
        </xs:annotation>
      </xs:element>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="PaymentInstruction">
    <xs:sequence>
      <xs:element name="PmtMtd" type="PaymentMethod3Code">
        <xs:annotation>
          <xs:documentation source="White Field"/>
        </xs:annotation>
      </xs:element>
      <xs:element name="ReqdExctnDt" type="ISODate" minOccurs="0"/>
      <xs:element name="Amt" type="ActiveOrHistoricCurrencyAndAmount"/>
      <xs:element name="RmtInf" type="RemittanceInformation5" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="RemittanceInformation5">
    <xs:choice>
      <xs:element name="Ustrd" type="Max140Text"/>
      <xs:element name="Strd" type="StructuredRemittanceInformation7"/>
    </xs:choice>
  </xs:complexType>
  <xs:complexType name="StructuredRemittanceInformation7">
    <xs:sequence>
      <xs:element name="CdtrRefInf" type="Max35Text" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="ActiveOrHistoricCurrencyAndAmount">
    <xs:simpleContent>
      <xs:extension base="ActiveOrHistoricCurrencyAndAmount_SimpleType">
        <xs:attribute name="Ccy" type="ActiveOrHistoricCurrencyCode" use="required"/>
      </xs:extension>
    </xs:simpleContent>
  </xs:complexType>
  <xs:simpleType name="ActiveOrHistoricCurrencyAndAmount_SimpleType">
    <xs:restriction base="xs:decimal">
      <xs:fractionDigits value="5"/>
      <xs:totalDigits value="18"/>
      <xs:minInclusive value="0"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="ActiveOrHistoricCurrencyCode">
    <xs:restriction base="xs:string">
      <xs:pattern value="[A-Z]{3,3}"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="Max35Text">
    <xs:restriction base="xs:string">
      <xs:minLength value="1"/>
      <xs:maxLength value="35"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="Max140Text">
    <xs:restriction base="xs:string">
      <xs:minLength value="1"/>
      <xs:maxLength value="140"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="ISODateTime">
    <xs:restriction base="xs:dateTime"/>
  </xs:simpleType>
  <xs:simpleType name="ISODate">
    <xs:restriction base="xs:date"/>
  </xs:simpleType>
  <xs:simpleType name="PaymentMethod3Code">
    <xs:restriction base="xs:string">
      <xs:enumeration value="TRF"/>
      <xs:enumeration value="CHK"/>
      <xs:enumeration value="TRA"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`

func resolveFixture(t *testing.T, name, src string, opts ...ResolverOption) *types.SchemaModel {
	t.Helper()
	model, err := NewResolver(parseFixture(t, name, src), opts...).Resolve()
	require.NoError(t, err)
	return model
}

func fieldAt(t *testing.T, m *types.SchemaModel, path string) types.FieldNode {
	t.Helper()
	for _, f := range m.Fields {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("no field with path %q", path)
	return types.FieldNode{}
}

func TestResolver_DocumentOrder(t *testing.T) {
	model := resolveFixture(t, "pain.001.001.03", painFixture)

	var paths []string
	for _, f := range model.Fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"Document",
		"Document/CstmrCdtTrfInitn",
		"Document/CstmrCdtTrfInitn/GrpHdr",
		"Document/CstmrCdtTrfInitn/GrpHdr/MsgId",
		"Document/CstmrCdtTrfInitn/GrpHdr/CreDtTm",
		"Document/CstmrCdtTrfInitn/PmtInf",
		"Document/CstmrCdtTrfInitn/PmtInf/PmtMtd",
		"Document/CstmrCdtTrfInitn/PmtInf/ReqdExctnDt",
		"Document/CstmrCdtTrfInitn/PmtInf/Amt",
		"Document/CstmrCdtTrfInitn/PmtInf/Amt/@Ccy",
		"Document/CstmrCdtTrfInitn/PmtInf/RmtInf",
		"Document/CstmrCdtTrfInitn/PmtInf/RmtInf/Ustrd",
		"Document/CstmrCdtTrfInitn/PmtInf/RmtInf/Strd",
		"Document/CstmrCdtTrfInitn/PmtInf/RmtInf/Strd/CdtrRefInf",
	}, paths)
}

func TestResolver_SequenceMonotonic(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	require.NotEmpty(t, model.Fields)
	for i, f := range model.Fields {
		assert.Equal(t, i+1, f.Sequence, "field %s", f.Path)
	}
}

func TestResolver_Determinism(t *testing.T) {
	first := resolveFixture(t, "pain", painFixture)
	second := resolveFixture(t, "pain", painFixture)
	require.Equal(t, first, second)
}

func TestResolver_RootInfo(t *testing.T) {
	model := resolveFixture(t, "pain.001.001.03", painFixture)

	assert.Equal(t, "pain.001.001.03", model.Name)
	assert.Equal(t, "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03", model.TargetNamespace)
	assert.Equal(t, "Document", model.RootElement)
	assert.Equal(t, "Document", model.RootType)
	assert.Empty(t, model.Scheme)
}

func TestResolver_SchemeSuffix(t *testing.T) {
	model := resolveFixture(t, "variant", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Document_GBIC_3"/>
  <xs:complexType name="Document_GBIC_3">
    <xs:sequence>
      <xs:element name="GrpHdr" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)
	assert.Equal(t, "Document_GBIC_3", model.RootType)
	assert.Equal(t, "GBIC_3", model.Scheme)
}

func TestResolver_Levels(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	assert.Equal(t, 0, fieldAt(t, model, "Document").Level)
	assert.Equal(t, 1, fieldAt(t, model, "Document/CstmrCdtTrfInitn").Level)
	assert.Equal(t, 3, fieldAt(t, model, "Document/CstmrCdtTrfInitn/GrpHdr/MsgId").Level)
	assert.Equal(t, 4, fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/Amt/@Ccy").Level)
}

func TestResolver_CardinalityDefaults(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	grpHdr := fieldAt(t, model, "Document/CstmrCdtTrfInitn/GrpHdr")
	assert.Equal(t, "1", grpHdr.MinOccurs)
	assert.Equal(t, "1", grpHdr.MaxOccurs)

	pmtInf := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf")
	assert.Equal(t, "unbounded", pmtInf.MaxOccurs)

	reqd := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/ReqdExctnDt")
	assert.Equal(t, "0", reqd.MinOccurs)
}

func TestResolver_Classification(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	assert.Equal(t, types.ClassificationYellow,
		fieldAt(t, model, "Document/CstmrCdtTrfInitn/GrpHdr/MsgId").Classification)
	assert.Equal(t, types.ClassificationWhite,
		fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/PmtMtd").Classification)
	assert.Equal(t, types.ClassificationNotSpecified,
		fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/Amt").Classification)
}

func TestResolver_AnnotationPartition(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	msgID := fieldAt(t, model, "Document/CstmrCdtTrfInitn/GrpHdr/MsgId")
	assert.Equal(t, "AT-01 point-to-point reference.", msgID.RulebookText)
	assert.Equal(t, "Unique identification assigned by the instructing party.", msgID.AnnotationText)

	creDtTm := fieldAt(t, model, "Document/CstmrCdtTrfInitn/GrpHdr/CreDtTm")
	assert.Equal(t, "Local time of the instructing party. | [Format] ISO 8601.", creDtTm.UsageRuleText)
}

func TestResolver_FacetsAttached(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	msgID := fieldAt(t, model, "Document/CstmrCdtTrfInitn/GrpHdr/MsgId")
	assert.Equal(t, "1", msgID.Restrictions.MinLength)
	assert.Equal(t, "35", msgID.Restrictions.MaxLength)

	pmtMtd := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/PmtMtd")
	assert.Equal(t, []string{"CHK", "TRA", "TRF"}, pmtMtd.Restrictions.Enumeration)

	amt := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/Amt")
	assert.Equal(t, "ActiveOrHistoricCurrencyAndAmount", amt.DeclaredType)
	assert.Equal(t, "5", amt.Restrictions.FractionDigits)
}

func TestResolver_BaseTypesPublished(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	base, ok := model.BaseFor("Max35Text")
	require.True(t, ok)
	assert.Equal(t, "string", base)

	base, ok = model.BaseFor("ActiveOrHistoricCurrencyAndAmount")
	require.True(t, ok)
	assert.Equal(t, "decimal", base)
}

func TestResolver_AttributeNode(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	ccy := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/Amt/@Ccy")
	assert.Equal(t, "@Ccy", ccy.Name)
	assert.True(t, ccy.IsAttribute())
	assert.Equal(t, "1", ccy.MinOccurs, "use=required maps to min 1")
	assert.Equal(t, "1", ccy.MaxOccurs)
	assert.Equal(t, "ActiveOrHistoricCurrencyCode", ccy.DeclaredType)
	assert.Equal(t, "[A-Z]{3,3}", ccy.Restrictions.Pattern)

	// The attribute directly follows its carrier element in the sequence.
	amt := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/Amt")
	assert.Equal(t, amt.Sequence+1, ccy.Sequence)
}

func TestResolver_ChoiceFlattening(t *testing.T) {
	model := resolveFixture(t, "pain", painFixture)

	ustrd := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/RmtInf/Ustrd")
	strd := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/RmtInf/Strd")

	require.NotEmpty(t, ustrd.ChoiceGroup)
	assert.Equal(t, ustrd.ChoiceGroup, strd.ChoiceGroup)
	assert.Equal(t, "alternative 1 of 2", ustrd.ChoiceAlternative)
	assert.Equal(t, "alternative 2 of 2", strd.ChoiceAlternative)

	// Descendants of an alternative inherit the group but not the ordinal.
	ref := fieldAt(t, model, "Document/CstmrCdtTrfInitn/PmtInf/RmtInf/Strd/CdtrRefInf")
	assert.Equal(t, strd.ChoiceGroup, ref.ChoiceGroup)
	assert.Empty(t, ref.ChoiceAlternative)

	// Fields outside the choice carry no group.
	assert.Empty(t, fieldAt(t, model, "Document/CstmrCdtTrfInitn/GrpHdr").ChoiceGroup)
}

func TestResolver_ExtensionEmitsBaseFirst(t *testing.T) {
	model := resolveFixture(t, "ext", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Derived"/>
  <xs:complexType name="Base">
    <xs:sequence>
      <xs:element name="BaseFld" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="Derived">
    <xs:complexContent>
      <xs:extension base="Base">
        <xs:sequence>
          <xs:element name="OwnFld" type="xs:string"/>
        </xs:sequence>
        <xs:attribute name="Vrsn" type="xs:string"/>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`)

	var paths []string
	for _, f := range model.Fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"Document",
		"Document/BaseFld",
		"Document/OwnFld",
		"Document/@Vrsn",
	}, paths)
}

func TestResolver_RestrictionReplacesBase(t *testing.T) {
	model := resolveFixture(t, "restr", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Narrowed"/>
  <xs:complexType name="Base">
    <xs:sequence>
      <xs:element name="Old" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="Narrowed">
    <xs:complexContent>
      <xs:restriction base="Base">
        <xs:sequence>
          <xs:element name="Kept" type="xs:string"/>
        </xs:sequence>
      </xs:restriction>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`)

	var paths []string
	for _, f := range model.Fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"Document", "Document/Kept"}, paths)
}

func TestResolver_InlineComplexTypeWins(t *testing.T) {
	model := resolveFixture(t, "inline", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="NamedType">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="Inline" type="xs:string"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
  <xs:complexType name="NamedType">
    <xs:sequence>
      <xs:element name="FromNamed" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)

	var paths []string
	for _, f := range model.Fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"Document", "Document/Inline"}, paths)
	assert.Equal(t, "NamedType", fieldAt(t, model, "Document").DeclaredType)
}

func TestResolver_InlineSimpleType(t *testing.T) {
	model := resolveFixture(t, "inline-simple", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Doc"/>
  <xs:complexType name="Doc">
    <xs:sequence>
      <xs:element name="Ctry">
        <xs:simpleType>
          <xs:restriction base="xs:string">
            <xs:pattern value="[A-Z]{2,2}"/>
          </xs:restriction>
        </xs:simpleType>
      </xs:element>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)

	ctry := fieldAt(t, model, "Document/Ctry")
	assert.Equal(t, "string", ctry.DeclaredType, "anonymous simple types fall back to the restriction base")
	assert.Equal(t, "[A-Z]{2,2}", ctry.Restrictions.Pattern)
}

func TestResolver_ElementRef(t *testing.T) {
	model := resolveFixture(t, "ref", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Doc"/>
  <xs:element name="Sgntr" type="Max35Text">
    <xs:annotation>
      <xs:documentation>Detached signature block.</xs:documentation>
    </xs:annotation>
  </xs:element>
  <xs:complexType name="Doc">
    <xs:sequence>
      <xs:element ref="Sgntr" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
  <xs:simpleType name="Max35Text">
    <xs:restriction base="xs:string">
      <xs:maxLength value="35"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`)

	nested := fieldAt(t, model, "Document/Sgntr")
	assert.Equal(t, "0", nested.MinOccurs, "occurrence attributes come from the ref site")
	assert.Equal(t, "Max35Text", nested.DeclaredType, "type comes from the global declaration")
	assert.Equal(t, "Detached signature block.", nested.AnnotationText)

	// The global declaration is also a resolution root of its own.
	top := fieldAt(t, model, "Sgntr")
	assert.Equal(t, "1", top.MinOccurs)
}

func TestResolver_DanglingTypeReference(t *testing.T) {
	model := resolveFixture(t, "dangling", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Doc"/>
  <xs:complexType name="Doc">
    <xs:sequence>
      <xs:element name="Orphan" type="MissingType"/>
      <xs:element name="After" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)

	orphan := fieldAt(t, model, "Document/Orphan")
	assert.Equal(t, "MissingType", orphan.DeclaredType)
	// Resolution continued past the degraded leaf.
	fieldAt(t, model, "Document/After")
}

func TestResolver_SelfReferentialTypeTerminates(t *testing.T) {
	model := resolveFixture(t, "recursive", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Prty"/>
  <xs:complexType name="Prty">
    <xs:sequence>
      <xs:element name="Nm" type="xs:string"/>
      <xs:element name="RltdPty" type="Prty" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)

	var paths []string
	for _, f := range model.Fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"Document", "Document/Nm", "Document/RltdPty"}, paths)
}

func TestResolver_DepthLimit(t *testing.T) {
	doc := parseFixture(t, "deep", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="L0"/>
  <xs:complexType name="L0"><xs:sequence><xs:element name="A" type="L1"/></xs:sequence></xs:complexType>
  <xs:complexType name="L1"><xs:sequence><xs:element name="B" type="L2"/></xs:sequence></xs:complexType>
  <xs:complexType name="L2"><xs:sequence><xs:element name="C" type="L3"/></xs:sequence></xs:complexType>
  <xs:complexType name="L3"><xs:sequence><xs:element name="D" type="xs:string"/></xs:sequence></xs:complexType>
</xs:schema>`)

	_, err := NewResolver(doc, WithMaxDepth(2)).Resolve()
	var recErr *RecursionError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "deep", recErr.Schema)
	assert.Equal(t, 2, recErr.Depth)
	assert.Equal(t, "Document/A/B", recErr.Path)
}

func TestResolver_EmptySchema(t *testing.T) {
	doc := parseFixture(t, "empty", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="Max35Text">
    <xs:restriction base="xs:string">
      <xs:maxLength value="35"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`)

	_, err := NewResolver(doc).Resolve()
	var emptyErr *EmptySchemaError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "empty", emptyErr.Schema)
	assert.Contains(t, err.Error(), "empty")
}

func TestParseDocument_MalformedXML(t *testing.T) {
	_, err := ParseDocument("broken", []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">`))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "broken", parseErr.Schema)
	assert.NotNil(t, errors.Unwrap(parseErr))
}

func TestParseDocument_NotASchema(t *testing.T) {
	_, err := ParseDocument("html", []byte(`<html><body/></html>`))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Error(), "html")
}

func TestResolver_FixedAndDefaultValues(t *testing.T) {
	model := resolveFixture(t, "fixed", `
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Document" type="Doc"/>
  <xs:complexType name="Doc">
    <xs:sequence>
      <xs:element name="Cd" type="xs:string" fixed="SEPA"/>
      <xs:element name="Prty" type="xs:string" default="NORM" minOccurs="0"/>
    </xs:sequence>
    <xs:attribute name="Vrsn" type="xs:string" default="1"/>
  </xs:complexType>
</xs:schema>`)

	assert.Equal(t, "SEPA", fieldAt(t, model, "Document/Cd").FixedValue)
	assert.Equal(t, "NORM", fieldAt(t, model, "Document/Prty").DefaultValue)

	vrsn := fieldAt(t, model, "Document/@Vrsn")
	assert.Equal(t, "1", vrsn.DefaultValue)
	assert.Equal(t, "0", vrsn.MinOccurs, "optional attribute")
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the schema_toolkit binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "schema_toolkit"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/schema_toolkit ./cmd/schema_toolkit'", binaryPath)
	}

	return binaryPath
}

// writeFixture writes content to dir/name and returns the full path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// cliSchemaV1 is a small payment schema for CLI round-trip tests.
const cliSchemaV1 = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"
           elementFormDefault="qualified">
  <xs:element name="Document" type="Document"/>
  <xs:complexType name="Document">
    <xs:sequence>
      <xs:element name="CdtTrfInitn" type="CreditTransferInitiation"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="CreditTransferInitiation">
    <xs:sequence>
      <xs:element name="MsgId" type="Max35Text">
        <xs:annotation>
          <xs:documentation source="Yellow Field"/>
        </xs:annotation>
      </xs:element>
      <xs:element name="NbOfTxs" type="Max15NumericText"/>
      <xs:element name="Purp" type="ExternalPurpose1Code" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
  <xs:simpleType name="Max35Text">
    <xs:restriction base="xs:string">
      <xs:minLength value="1"/>
      <xs:maxLength value="35"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="Max15NumericText">
    <xs:restriction base="xs:string">
      <xs:pattern value="[0-9]{1,15}"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="ExternalPurpose1Code">
    <xs:restriction base="xs:string">
      <xs:minLength value="1"/>
      <xs:maxLength value="4"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`

// cliSchemaV2 tightens MsgId and makes Purp mandatory.
const cliSchemaV2 = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="urn:iso:std:iso:20022:tech:xsd:pain.001.001.04"
           elementFormDefault="qualified">
  <xs:element name="Document" type="Document"/>
  <xs:complexType name="Document">
    <xs:sequence>
      <xs:element name="CdtTrfInitn" type="CreditTransferInitiation"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="CreditTransferInitiation">
    <xs:sequence>
      <xs:element name="MsgId" type="Max16Text">
        <xs:annotation>
          <xs:documentation source="Yellow Field"/>
        </xs:annotation>
      </xs:element>
      <xs:element name="NbOfTxs" type="Max15NumericText"/>
      <xs:element name="Purp" type="ExternalPurpose1Code"/>
    </xs:sequence>
  </xs:complexType>
  <xs:simpleType name="Max16Text">
    <xs:restriction base="xs:string">
      <xs:minLength value="1"/>
      <xs:maxLength value="16"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="Max15NumericText">
    <xs:restriction base="xs:string">
      <xs:pattern value="[0-9]{1,15}"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="ExternalPurpose1Code">
    <xs:restriction base="xs:string">
      <xs:minLength value="1"/>
      <xs:maxLength value="4"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`

// cliCodeSets is a minimal external code set document.
const cliCodeSets = `{
  "definitions": {
    "ExternalPurpose1Code": {
      "enum": ["SALA", "SUPP", "TAXS"],
      "description": "Underlying reason for the payment transaction."
    },
    "ExternalCategoryPurpose1Code": {
      "enum": ["CASH", "CORT"]
    }
  }
}`

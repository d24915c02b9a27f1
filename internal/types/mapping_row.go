package types

// MappingRow is one line of a field-mapping template: the resolved shape of a
// schema field plus empty analyst columns (SourceField, Transformation) to be
// filled in during integration projects. Element holds the plain tag name;
// renderers indent it by Level.
type MappingRow struct {
	XPath          string         `json:"xpath"`
	Element        string         `json:"element"`
	Level          int            `json:"level"`
	DataType       string         `json:"data_type"`
	MinOccurs      string         `json:"min_occurs"`
	MaxOccurs      string         `json:"max_occurs"`
	Mandatory      string         `json:"mandatory"`
	Pattern        string         `json:"pattern,omitempty"`
	MaxLength      string         `json:"max_length,omitempty"`
	Enumeration    string         `json:"enumeration,omitempty"`
	SampleValue    string         `json:"sample_value,omitempty"`
	Classification Classification `json:"classification"`
	Annotation     string         `json:"annotation,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	SourceField    string         `json:"source_field"`
	Transformation string         `json:"transformation"`
}

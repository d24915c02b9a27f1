// Package xsd resolves ISO 20022 XML Schema documents into ordered field
// models: one node per reachable element and attribute, in document
// declaration order, with cardinality, facets, documentation and
// classification attached.
package xsd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// Document is a parsed schema document plus the display name used in reports
// and error messages.
type Document struct {
	Name string
	root *etree.Element
}

// LoadDocument reads and parses a schema file. The document name is the file
// name without its extension.
func LoadDocument(path string) (*Document, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Schema: name, Message: "cannot read file", Cause: err}
	}
	return ParseDocument(name, data)
}

// ParseDocument parses schema bytes under the given display name.
func ParseDocument(name string, data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Schema: name, Message: "malformed XML", Cause: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Schema: name, Message: "document has no root element"}
	}
	if root.Tag != "schema" {
		return nil, &ParseError{Schema: name, Message: "root element <" + root.Tag + "> is not an XML Schema"}
	}
	return &Document{Name: name, root: root}, nil
}

// TargetNamespace returns the schema's target namespace, if declared.
func (d *Document) TargetNamespace() string {
	return d.root.SelectAttrValue("targetNamespace", "")
}

// topLevelElements returns the document's global element declarations in
// declaration order.
func (d *Document) topLevelElements() []*etree.Element {
	var out []*etree.Element
	for _, child := range d.root.ChildElements() {
		if child.Tag == "element" {
			out = append(out, child)
		}
	}
	return out
}

// localName strips any namespace prefix from a QName ("xs:string" → "string").
func localName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

// childElement returns the first direct child with the given local tag name,
// regardless of namespace prefix.
func childElement(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

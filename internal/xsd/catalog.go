package xsd

import (
	"sort"

	"github.com/beevik/etree"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

// Catalog is the name → declaration lookup of a single schema document,
// built in one pre-pass before resolution starts. It is immutable after
// construction and owned by the resolver that built it; two resolvers never
// share a catalog.
type Catalog struct {
	complexTypes map[string]*etree.Element
	simpleTypes  map[string]*etree.Element
	elements     map[string]*etree.Element
}

// BuildCatalog collects every named complexType and simpleType declaration in
// the document (any depth) plus the global element declarations. On duplicate
// names the last declaration wins.
func BuildCatalog(doc *Document) *Catalog {
	c := &Catalog{
		complexTypes: make(map[string]*etree.Element),
		simpleTypes:  make(map[string]*etree.Element),
		elements:     make(map[string]*etree.Element),
	}
	c.collect(doc.root)
	for _, el := range doc.topLevelElements() {
		if name := el.SelectAttrValue("name", ""); name != "" {
			c.elements[name] = el
		}
	}
	return c
}

func (c *Catalog) collect(el *etree.Element) {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "complexType":
			if name := child.SelectAttrValue("name", ""); name != "" {
				c.complexTypes[name] = child
			}
		case "simpleType":
			if name := child.SelectAttrValue("name", ""); name != "" {
				c.simpleTypes[name] = child
			}
		}
		c.collect(child)
	}
}

// ComplexType looks up a named complex type declaration.
func (c *Catalog) ComplexType(name string) (*etree.Element, bool) {
	el, ok := c.complexTypes[name]
	return el, ok
}

// SimpleType looks up a named simple type declaration.
func (c *Catalog) SimpleType(name string) (*etree.Element, bool) {
	el, ok := c.simpleTypes[name]
	return el, ok
}

// Element looks up a global element declaration, for ref= resolution.
func (c *Catalog) Element(name string) (*etree.Element, bool) {
	el, ok := c.elements[name]
	return el, ok
}

// Len returns the number of named type declarations in the catalog.
func (c *Catalog) Len() int {
	return len(c.complexTypes) + len(c.simpleTypes)
}

// FacetsForType resolves the validation facets of a named type: the
// restriction facets of a simple type, or the simple-content facets of a
// complex type (chasing a simple-content extension to its base simple type).
func (c *Catalog) FacetsForType(name string) (types.Restrictions, bool) {
	if st, ok := c.simpleTypes[name]; ok {
		r, _ := simpleTypeFacets(st)
		return r, true
	}
	ct, ok := c.complexTypes[name]
	if !ok {
		return types.Restrictions{}, false
	}
	sc := childElement(ct, "simpleContent")
	if sc == nil {
		return types.Restrictions{}, true
	}
	if restr := childElement(sc, "restriction"); restr != nil {
		return extractFacets(restr), true
	}
	if ext := childElement(sc, "extension"); ext != nil {
		base := localName(ext.SelectAttrValue("base", ""))
		if st, ok := c.simpleTypes[base]; ok {
			r, _ := simpleTypeFacets(st)
			return r, true
		}
	}
	return types.Restrictions{}, true
}

// FacetIndex builds the type name → facet set map published on the resolved
// model. Types without any facet are left out.
func (c *Catalog) FacetIndex() map[string]types.Restrictions {
	idx := make(map[string]types.Restrictions)
	for name := range c.simpleTypes {
		if r, ok := c.FacetsForType(name); ok && !r.IsZero() {
			idx[name] = r
		}
	}
	for name := range c.complexTypes {
		if r, ok := c.FacetsForType(name); ok && !r.IsZero() {
			idx[name] = r
		}
	}
	return idx
}

// BaseIndex maps every named type to the primitive base of its restriction
// chain, where one resolves inside this schema. Simple types chase named
// bases until a built-in name is reached; complex types contribute only
// their simple content.
func (c *Catalog) BaseIndex() map[string]string {
	idx := make(map[string]string)
	for name := range c.simpleTypes {
		if base := c.primitiveBase(name, make(map[string]bool)); base != "" && base != name {
			idx[name] = base
		}
	}
	for name, ct := range c.complexTypes {
		sc := childElement(ct, "simpleContent")
		if sc == nil {
			continue
		}
		var base string
		if restr := childElement(sc, "restriction"); restr != nil {
			base = localName(restr.SelectAttrValue("base", ""))
		} else if ext := childElement(sc, "extension"); ext != nil {
			base = localName(ext.SelectAttrValue("base", ""))
		}
		if base == "" {
			continue
		}
		if base = c.primitiveBase(base, make(map[string]bool)); base != "" {
			idx[name] = base
		}
	}
	return idx
}

// primitiveBase follows a simple type's restriction chain to the first base
// that is not itself a named simple type in this schema.
func (c *Catalog) primitiveBase(name string, visited map[string]bool) string {
	if visited[name] {
		return ""
	}
	visited[name] = true
	st, ok := c.simpleTypes[name]
	if !ok {
		return name
	}
	_, base := simpleTypeFacets(st)
	if base == "" {
		return ""
	}
	return c.primitiveBase(base, visited)
}

// simpleTypeFacets extracts the facets and base type name from a simpleType
// declaration. Union and list types carry no facets of their own.
func simpleTypeFacets(st *etree.Element) (types.Restrictions, string) {
	restr := childElement(st, "restriction")
	if restr == nil {
		return types.Restrictions{}, ""
	}
	return extractFacets(restr), localName(restr.SelectAttrValue("base", ""))
}

// extractFacets reads the facet children of a restriction element.
// Enumeration values are sorted so that equal value sets always serialize
// identically. Unknown facets are ignored.
func extractFacets(restriction *etree.Element) types.Restrictions {
	var r types.Restrictions
	for _, f := range restriction.ChildElements() {
		v := f.SelectAttrValue("value", "")
		switch f.Tag {
		case "pattern":
			r.Pattern = v
		case "minLength":
			r.MinLength = v
		case "maxLength":
			r.MaxLength = v
		case "length":
			r.Length = v
		case "minInclusive":
			r.MinInclusive = v
		case "maxInclusive":
			r.MaxInclusive = v
		case "fractionDigits":
			r.FractionDigits = v
		case "totalDigits":
			r.TotalDigits = v
		case "whiteSpace":
			r.WhiteSpace = v
		case "enumeration":
			r.Enumeration = append(r.Enumeration, v)
		}
	}
	sort.Strings(r.Enumeration)
	return r
}

package xsd

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

// DefaultMaxDepth bounds element nesting during resolution. ISO 20022
// payment schemas stay well below this; hitting the bound means a
// pathological or hostile document.
const DefaultMaxDepth = 64

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxDepth overrides the default recursion depth bound.
func WithMaxDepth(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// Resolver expands one schema document into its ordered field model. A
// Resolver owns its catalog and sequence state, is single-use, and is not
// safe for concurrent use; resolve different schemas with different
// Resolvers.
type Resolver struct {
	doc      *Document
	catalog  *Catalog
	maxDepth int

	seq       int
	choiceSeq int
	fields    []types.FieldNode
}

// NewResolver builds the type catalog for the document and prepares a
// resolver over it.
func NewResolver(doc *Document, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		doc:      doc,
		catalog:  BuildCatalog(doc),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog exposes the resolver's type catalog (read-only).
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// choiceContext carries the enclosing choice group down the walk. The
// alternative ordinal is set on immediate choice alternatives only; the
// group id flows to all descendants.
type choiceContext struct {
	group       string
	alternative string
}

// typeStack tracks named types on the active expansion path so that
// self-referential types terminate instead of looping.
type typeStack struct {
	active map[string]bool
}

func newTypeStack() *typeStack {
	return &typeStack{active: make(map[string]bool)}
}

func (s *typeStack) seen(name string) bool { return s.active[name] }
func (s *typeStack) push(name string)      { s.active[name] = true }
func (s *typeStack) pop(name string)       { delete(s.active, name) }

// Resolve walks every top-level element declaration in document order and
// returns the complete field model. The same document always yields the same
// model: every emission path iterates children in declaration order and
// choice group ids come from a per-schema counter.
func (r *Resolver) Resolve() (*types.SchemaModel, error) {
	tops := r.doc.topLevelElements()
	if len(tops) == 0 {
		return nil, &EmptySchemaError{Schema: r.doc.Name}
	}

	r.seq = 0
	r.choiceSeq = 0
	r.fields = nil

	visited := newTypeStack()
	for _, el := range tops {
		if err := r.expandElement(el, "", 0, choiceContext{}, visited); err != nil {
			return nil, err
		}
	}

	model := &types.SchemaModel{
		Name:            r.doc.Name,
		TargetNamespace: r.doc.TargetNamespace(),
		Fields:          r.fields,
		TypeFacets:      r.catalog.FacetIndex(),
		BaseTypes:       r.catalog.BaseIndex(),
	}
	r.fillRootInfo(model, tops[0])
	return model, nil
}

// fillRootInfo records the root element identity. The scheme tag is the
// suffix publishers append to the root type name after an underscore
// (e.g. "..._GBIC_3").
func (r *Resolver) fillRootInfo(model *types.SchemaModel, root *etree.Element) {
	model.RootElement = root.SelectAttrValue("name", "")
	model.RootType = localName(root.SelectAttrValue("type", ""))
	if i := strings.Index(model.RootType, "_"); i >= 0 {
		model.Scheme = model.RootType[i+1:]
	}
}

// expandElement emits the field node for one element particle and descends
// into its type.
func (r *Resolver) expandElement(el *etree.Element, parentPath string, level int, choice choiceContext, visited *typeStack) error {
	if level > r.maxDepth {
		return &RecursionError{Schema: r.doc.Name, Path: parentPath, Depth: r.maxDepth}
	}

	name := localName(el.SelectAttrValue("name", ""))
	decl := el
	if name == "" {
		// A ref= particle: occurrence attributes live here, everything else
		// on the referenced global declaration (when it exists).
		refName := localName(el.SelectAttrValue("ref", ""))
		if refName == "" {
			return nil
		}
		name = refName
		if global, ok := r.catalog.Element(refName); ok {
			decl = global
		}
	}

	path := name
	if parentPath != "" {
		path = parentPath + "/" + name
	}

	typeAttr := localName(decl.SelectAttrValue("type", ""))
	inlineComplex := childElement(decl, "complexType")
	inlineSimple := childElement(decl, "simpleType")

	declared := typeAttr
	var facets types.Restrictions
	switch {
	case inlineSimple != nil:
		var base string
		facets, base = simpleTypeFacets(inlineSimple)
		if declared == "" {
			declared = base
		}
	case typeAttr != "":
		if f, ok := r.catalog.FacetsForType(typeAttr); ok {
			facets = f
		}
	}

	ann := scanAnnotation(el)
	if decl != el && len(documentationEntries(el)) == 0 {
		ann = scanAnnotation(decl)
	}

	r.seq++
	r.fields = append(r.fields, types.FieldNode{
		Sequence:          r.seq,
		Path:              path,
		Level:             level,
		Name:              name,
		DeclaredType:      declared,
		MinOccurs:         el.SelectAttrValue("minOccurs", "1"),
		MaxOccurs:         el.SelectAttrValue("maxOccurs", "1"),
		ChoiceGroup:       choice.group,
		ChoiceAlternative: choice.alternative,
		Restrictions:      facets,
		AnnotationText:    ann.Documentation,
		RulebookText:      ann.Rulebook,
		UsageRuleText:     ann.UsageRules,
		Classification:    ann.Classification,
		FixedValue:        declAttr(el, decl, "fixed"),
		DefaultValue:      declAttr(el, decl, "default"),
	})

	// Descend. The alternative ordinal stops here; the group id flows on.
	child := choiceContext{group: choice.group}
	switch {
	case inlineComplex != nil:
		return r.expandComplexType(inlineComplex, path, level+1, child, visited)
	case typeAttr != "":
		ct, ok := r.catalog.ComplexType(typeAttr)
		if !ok {
			// Simple type or dangling reference: the node stays a leaf.
			return nil
		}
		if visited.seen(typeAttr) {
			// Self-referential type: terminate descent at this node.
			return nil
		}
		visited.push(typeAttr)
		err := r.expandComplexType(ct, path, level+1, child, visited)
		visited.pop(typeAttr)
		return err
	}
	return nil
}

// expandComplexType walks a complex type's content model. Extensions emit the
// base type's fields first, then their own; restrictions replace the base
// content entirely. Simple content contributes attributes only (its facets
// were already attached to the declaring element).
func (r *Resolver) expandComplexType(ct *etree.Element, parentPath string, level int, choice choiceContext, visited *typeStack) error {
	if cc := childElement(ct, "complexContent"); cc != nil {
		if restr := childElement(cc, "restriction"); restr != nil {
			return r.expandContentModel(restr, parentPath, level, choice, visited)
		}
		if ext := childElement(cc, "extension"); ext != nil {
			base := localName(ext.SelectAttrValue("base", ""))
			if baseCT, ok := r.catalog.ComplexType(base); ok && !visited.seen(base) {
				visited.push(base)
				err := r.expandComplexType(baseCT, parentPath, level, choice, visited)
				visited.pop(base)
				if err != nil {
					return err
				}
			}
			return r.expandContentModel(ext, parentPath, level, choice, visited)
		}
		return nil
	}

	if sc := childElement(ct, "simpleContent"); sc != nil {
		if ext := childElement(sc, "extension"); ext != nil {
			return r.expandAttributes(ext, parentPath, level)
		}
		if restr := childElement(sc, "restriction"); restr != nil {
			return r.expandAttributes(restr, parentPath, level)
		}
		return nil
	}

	return r.expandContentModel(ct, parentPath, level, choice, visited)
}

// expandContentModel iterates a container's children in declaration order:
// compositors recurse, elements and attributes emit. Wildcards and group
// references are out of scope and skipped.
func (r *Resolver) expandContentModel(container *etree.Element, parentPath string, level int, choice choiceContext, visited *typeStack) error {
	for _, child := range container.ChildElements() {
		var err error
		switch child.Tag {
		case "sequence", "all":
			err = r.expandContentModel(child, parentPath, level, choice, visited)
		case "choice":
			err = r.expandChoice(child, parentPath, level, visited)
		case "element":
			err = r.expandElement(child, parentPath, level, choice, visited)
		case "attribute":
			err = r.expandAttribute(child, parentPath, level)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// expandChoice allocates a fresh group id and expands every alternative.
// Element alternatives are numbered "alternative i of n"; compositor
// alternatives recurse carrying the group id without a number.
func (r *Resolver) expandChoice(ch *etree.Element, parentPath string, level int, visited *typeStack) error {
	r.choiceSeq++
	group := fmt.Sprintf("choice-%04d", r.choiceSeq)

	n := 0
	for _, child := range ch.ChildElements() {
		if child.Tag == "element" {
			n++
		}
	}

	i := 0
	for _, child := range ch.ChildElements() {
		var err error
		switch child.Tag {
		case "element":
			i++
			ctx := choiceContext{
				group:       group,
				alternative: fmt.Sprintf("alternative %d of %d", i, n),
			}
			err = r.expandElement(child, parentPath, level, ctx, visited)
		case "sequence", "all":
			err = r.expandContentModel(child, parentPath, level, choiceContext{group: group}, visited)
		case "choice":
			err = r.expandChoice(child, parentPath, level, visited)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// expandAttributes emits every attribute declared directly on the container.
func (r *Resolver) expandAttributes(container *etree.Element, parentPath string, level int) error {
	for _, child := range container.ChildElements() {
		if child.Tag != "attribute" {
			continue
		}
		if err := r.expandAttribute(child, parentPath, level); err != nil {
			return err
		}
	}
	return nil
}

// expandAttribute emits an attribute node. Attributes count in the same
// sequence as elements; their path segment and name carry a leading "@",
// minOccurs follows use="required", and maxOccurs is always "1".
func (r *Resolver) expandAttribute(attr *etree.Element, parentPath string, level int) error {
	name := localName(attr.SelectAttrValue("name", ""))
	if name == "" {
		name = localName(attr.SelectAttrValue("ref", ""))
	}
	if name == "" {
		return nil
	}

	path := "@" + name
	if parentPath != "" {
		path = parentPath + "/@" + name
	}

	minOccurs := "0"
	if attr.SelectAttrValue("use", "") == "required" {
		minOccurs = "1"
	}

	typeAttr := localName(attr.SelectAttrValue("type", ""))
	declared := typeAttr
	var facets types.Restrictions
	if inline := childElement(attr, "simpleType"); inline != nil {
		var base string
		facets, base = simpleTypeFacets(inline)
		if declared == "" {
			declared = base
		}
	} else if typeAttr != "" {
		if f, ok := r.catalog.FacetsForType(typeAttr); ok {
			facets = f
		}
	}

	ann := scanAnnotation(attr)

	r.seq++
	r.fields = append(r.fields, types.FieldNode{
		Sequence:       r.seq,
		Path:           path,
		Level:          level,
		Name:           "@" + name,
		DeclaredType:   declared,
		MinOccurs:      minOccurs,
		MaxOccurs:      "1",
		Restrictions:   facets,
		AnnotationText: ann.Documentation,
		RulebookText:   ann.Rulebook,
		UsageRuleText:  ann.UsageRules,
		Classification: ann.Classification,
		FixedValue:     attr.SelectAttrValue("fixed", ""),
		DefaultValue:   attr.SelectAttrValue("default", ""),
	})
	return nil
}

// declAttr reads an attribute from the particle first, then from the
// referenced global declaration.
func declAttr(el, decl *etree.Element, key string) string {
	if v := el.SelectAttrValue(key, ""); v != "" {
		return v
	}
	if decl != el {
		return decl.SelectAttrValue(key, "")
	}
	return ""
}

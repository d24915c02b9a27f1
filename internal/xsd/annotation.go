package xsd

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

// DocumentationEntry is one xs:documentation block together with its source
// attribute. ISO 20022 scheme publishers use the source attribute to tag
// rulebook text, usage rules and field-colour markers.
type DocumentationEntry struct {
	Source string
	Text   string
}

// Annotation is the partitioned documentation of one schema node.
type Annotation struct {
	Documentation  string
	Rulebook       string
	UsageRules     string
	Classification types.Classification
}

// documentationEntries reads the xs:documentation children of a node's
// annotation, in document order.
func documentationEntries(el *etree.Element) []DocumentationEntry {
	ann := childElement(el, "annotation")
	if ann == nil {
		return nil
	}
	var entries []DocumentationEntry
	for _, doc := range ann.ChildElements() {
		if doc.Tag != "documentation" {
			continue
		}
		entries = append(entries, DocumentationEntry{
			Source: doc.SelectAttrValue("source", ""),
			Text:   strings.TrimSpace(doc.Text()),
		})
	}
	return entries
}

// scanAnnotation partitions a node's documentation entries into general
// documentation, rulebook text, usage rules and the field classification.
// Classification markers are consumed and never appear in the documentation
// text. Format rules join the usage rules with a "[Format] " prefix.
func scanAnnotation(el *etree.Element) Annotation {
	entries := documentationEntries(el)
	if len(entries) == 0 {
		return Annotation{Classification: types.ClassificationNotSpecified}
	}

	var docs, rulebook, usage []string
	for _, e := range entries {
		switch {
		case e.Source == "Rulebook":
			if e.Text != "" {
				rulebook = append(rulebook, e.Text)
			}
		case e.Source == "Usage Rule":
			if e.Text != "" {
				usage = append(usage, e.Text)
			}
		case e.Source == "Format Rule":
			if e.Text != "" {
				usage = append(usage, "[Format] "+e.Text)
			}
		case isClassificationMarker(e.Source):
			// marker only, handled by Classify below
		default:
			if e.Text != "" {
				docs = append(docs, e.Text)
			}
		}
	}

	return Annotation{
		Documentation:  strings.Join(docs, " | "),
		Rulebook:       strings.Join(rulebook, " | "),
		UsageRules:     strings.Join(usage, " | "),
		Classification: Classify(entries),
	}
}

// Classify derives the business classification from documentation entries.
// Only explicit source markers count: exact "Yellow Field" / "White Field"
// first, then a case-insensitive fallback. Element names never influence the
// result.
func Classify(entries []DocumentationEntry) types.Classification {
	for _, e := range entries {
		switch e.Source {
		case "Yellow Field":
			return types.ClassificationYellow
		case "White Field":
			return types.ClassificationWhite
		}
	}
	for _, e := range entries {
		s := strings.ToLower(e.Source)
		if strings.Contains(s, "yellow") && strings.Contains(s, "field") {
			return types.ClassificationYellow
		}
		if strings.Contains(s, "white") && strings.Contains(s, "field") {
			return types.ClassificationWhite
		}
	}
	return types.ClassificationNotSpecified
}

func isClassificationMarker(source string) bool {
	s := strings.ToLower(source)
	if !strings.Contains(s, "field") {
		return false
	}
	return strings.Contains(s, "yellow") || strings.Contains(s, "white")
}

// Package codesets loads ISO 20022 external code set definitions and resolves
// ExternalXxxCode type names to their allowed values.
package codesets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matthias/iso20022-toolkit/internal/schemas"
)

// externalCodesSchema is the embedded JSON Schema every code set document
// must satisfy before decoding.
const externalCodesSchema = "external_codes.schema.json"

// LoadError represents a failure to read, validate, or decode a code set
// document.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load code sets %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load code sets %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

type definition struct {
	Enum        []string `json:"enum"`
	Description string   `json:"description,omitempty"`
}

type document struct {
	Definitions map[string]definition `json:"definitions"`
}

type codeSet struct {
	values      []string // document order
	description string
}

// CodeSets is an immutable lookup of external code set values keyed by
// definition name. Construct one with Load or Parse and pass it to consumers;
// there is no package-level cache.
type CodeSets struct {
	sets map[string]codeSet
	// version-stripped name -> actual key, for ExternalPurpose2Code-style
	// lookups against an ExternalPurpose1Code entry.
	normalized map[string]string
}

// Load reads and parses a code set JSON file.
func Load(path string) (*CodeSets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "read failed", Cause: err}
	}
	return Parse(filepath.Base(path), data)
}

// Parse validates data against the external-codes schema and decodes it.
// name only labels errors.
func Parse(name string, data []byte) (*CodeSets, error) {
	if err := schemas.Validate(externalCodesSchema, data); err != nil {
		return nil, &LoadError{Path: name, Message: "document does not match the external code set schema", Cause: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: name, Message: "malformed JSON", Cause: err}
	}

	cs := &CodeSets{
		sets:       make(map[string]codeSet, len(doc.Definitions)),
		normalized: make(map[string]string, len(doc.Definitions)),
	}
	for key, def := range doc.Definitions {
		values := make([]string, len(def.Enum))
		copy(values, def.Enum)
		cs.sets[key] = codeSet{values: values, description: def.Description}
	}
	// Sorted key order keeps the normalized index deterministic when two
	// versions of the same set appear in one document.
	for _, key := range sortedKeys(cs.sets) {
		norm := stripVersion(key)
		if _, taken := cs.normalized[norm]; !taken {
			cs.normalized[norm] = key
		}
	}
	return cs, nil
}

// Values returns a sorted copy of the named set's codes, or nil when the
// name resolves to no set.
func (c *CodeSets) Values(name string) []string {
	set, ok := c.resolve(name)
	if !ok {
		return nil
	}
	values := make([]string, len(set.values))
	copy(values, set.values)
	sort.Strings(values)
	return values
}

// Sample returns the first code listed in the document for the named set.
func (c *CodeSets) Sample(name string) (string, bool) {
	set, ok := c.resolve(name)
	if !ok || len(set.values) == 0 {
		return "", false
	}
	return set.values[0], true
}

// Has reports whether name resolves to a known code set.
func (c *CodeSets) Has(name string) bool {
	_, ok := c.resolve(name)
	return ok
}

// Description returns the named set's description text, if any.
func (c *CodeSets) Description(name string) string {
	set, ok := c.resolve(name)
	if !ok {
		return ""
	}
	return set.description
}

// Names returns all code set names, sorted.
func (c *CodeSets) Names() []string {
	return sortedKeys(c.sets)
}

// Len returns the number of code sets.
func (c *CodeSets) Len() int {
	return len(c.sets)
}

// resolve finds a set by exact name first, then by the version-stripped
// form: ExternalCategoryPurpose1Code and ExternalCategoryPurpose2Code both
// resolve to whichever version the document carries.
func (c *CodeSets) resolve(name string) (codeSet, bool) {
	if set, ok := c.sets[name]; ok {
		return set, true
	}
	if actual, ok := c.normalized[stripVersion(name)]; ok {
		return c.sets[actual], true
	}
	return codeSet{}, false
}

// stripVersion drops the version digits before the Code suffix:
// ExternalCategoryPurpose1Code -> ExternalCategoryPurposeCode.
func stripVersion(name string) string {
	stem, ok := strings.CutSuffix(name, "Code")
	if !ok {
		return name
	}
	return strings.TrimRight(stem, "0123456789") + "Code"
}

func sortedKeys(m map[string]codeSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

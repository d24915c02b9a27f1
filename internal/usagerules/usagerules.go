// Package usagerules extracts structured constraints from ISO 20022 usage
// rule text, such as "Either 'Structured' or 'Unstructured' may be present.".
package usagerules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/matthias/iso20022-toolkit/internal/types"
)

var (
	quotedEitherOr   = regexp.MustCompile(`Either\s+'([^']+)'\s+or\s+'([^']+)'`)
	unquotedEitherOr = regexp.MustCompile(`Either\s+(\w+)\s+or\s+(\w+)`)
)

// ParseEitherOr extracts the mutually exclusive option pairs named by an
// either/or usage rule. Quoted options win over bare words; text without
// such a rule yields nil.
func ParseEitherOr(text string) [][2]string {
	if text == "" {
		return nil
	}

	matches := quotedEitherOr.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		matches = unquotedEitherOr.FindAllStringSubmatch(text, -1)
	}

	var pairs [][2]string
	for _, m := range matches {
		pairs = append(pairs, [2]string{m[1], m[2]})
	}
	return pairs
}

// Exclusions maps a field path to the sibling element names its either/or
// rules exclude. Rules are read from each field's UsageRuleText and applied
// to that field's immediate children, since ISO 20022 schemas annotate the
// parent of the alternatives.
func Exclusions(fields []types.FieldNode) map[string][]string {
	exclusions := make(map[string][]string)
	for _, parent := range fields {
		pairs := ParseEitherOr(parent.UsageRuleText)
		if len(pairs) == 0 {
			continue
		}

		children := childrenOf(fields, parent)
		for _, pair := range pairs {
			var left, right []types.FieldNode
			for _, child := range children {
				switch {
				case matchesOption(child.Name, pair[0]):
					left = append(left, child)
				case matchesOption(child.Name, pair[1]):
					right = append(right, child)
				}
			}
			for _, a := range left {
				for _, b := range right {
					exclusions[a.Path] = append(exclusions[a.Path], b.Name)
					exclusions[b.Path] = append(exclusions[b.Path], a.Name)
				}
			}
		}
	}

	for path, names := range exclusions {
		names = lo.Uniq(names)
		sort.Strings(names)
		exclusions[path] = names
	}
	return exclusions
}

func childrenOf(fields []types.FieldNode, parent types.FieldNode) []types.FieldNode {
	prefix := parent.Path + "/"
	var children []types.FieldNode
	for _, f := range fields {
		if f.Level == parent.Level+1 && !f.IsAttribute() && strings.HasPrefix(f.Path, prefix) {
			children = append(children, f)
		}
	}
	return children
}

// matchesOption reports whether an element tag names the given rule option.
// Tags abbreviate their rule names (Strd for Structured, Ustrd for
// Unstructured), so besides exact matches a tag counts when it is a
// subsequence of the option anchored at the same first letter.
func matchesOption(name, option string) bool {
	if strings.EqualFold(name, option) {
		return true
	}
	n := strings.ToLower(name)
	o := strings.ToLower(option)
	if n == "" || o == "" || n[0] != o[0] {
		return false
	}
	return isSubsequence(n, o)
}

func isSubsequence(needle, hay string) bool {
	i := 0
	for j := 0; i < len(needle) && j < len(hay); j++ {
		if needle[i] == hay[j] {
			i++
		}
	}
	return i == len(needle)
}

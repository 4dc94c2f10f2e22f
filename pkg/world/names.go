package world

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameKey returns the comparison key for a model-supplied name:
// trimmed and lowercased. Two names are "the same" when their keys match.
func NameKey(name string) string {
	// Casers are stateful, so one is built per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// SameName reports whether a and b name the same thing, ignoring case
// and surrounding whitespace.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

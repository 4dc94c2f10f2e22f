package tools

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// MaxDossierLines caps the number of lines kept in a merged memory description.
const MaxDossierLines = 15

var (
	bulletPrefix = regexp.MustCompile(`^[-•*]\s*`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// normalizeLine reduces a dossier line to its comparison key: bullet
// stripped, lowercased, punctuation removed, whitespace collapsed.
func normalizeLine(line string) string {
	line = bulletPrefix.ReplaceAllString(line, "")
	line = strings.ToLower(line)
	line = nonAlnum.ReplaceAllString(line, "")
	line = whitespace.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// mergeDossier appends the lines of incoming that are not already present
// in existing, comparing normalized keys. Lines that normalize to nothing
// are dropped. Existing lines keep their order and the result is capped at
// MaxDossierLines.
func mergeDossier(existing, incoming string) string {
	merged := splitLines(existing)
	seen := make(map[string]struct{}, len(merged))
	for _, line := range merged {
		seen[normalizeLine(line)] = struct{}{}
	}
	for _, line := range splitLines(incoming) {
		key := normalizeLine(line)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		merged = append(merged, line)
		seen[key] = struct{}{}
	}
	if len(merged) > MaxDossierLines {
		merged = merged[:MaxDossierLines]
	}
	return strings.Join(merged, "\n")
}

func categoryList() string {
	names := make([]string, len(world.Categories))
	for i, c := range world.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func (a *UpsertMemoryArgs) apply(next *world.Snapshot) (string, bool) {
	category, err := world.ParseCategory(a.Category.String())
	if err != nil {
		return reject("Error: Invalid category '%s'. Must be one of: %s", a.Category, categoryList())
	}
	name := strings.TrimSpace(a.Name.String())
	desc := strings.TrimSpace(a.Description.String())
	if name == "" || desc == "" {
		return reject("Error: upsert_memory missing required fields.")
	}
	enabled := a.IsEnabled.Or(true)

	if i := next.FindMemory(category, name); i >= 0 {
		m := &next.Memories[i]
		m.Description = mergeDossier(m.Description, desc)
		m.Enabled = enabled
		return fmt.Sprintf("Memory updated: [%s] %s. Facts merged.", category, m.Name), true
	}

	next.Memories = append(next.Memories, world.NewMemoryItem(category, name, desc, enabled))
	return fmt.Sprintf("Memory saved: [%s] %s", category, name), true
}

package world

import (
	"fmt"

	"github.com/google/uuid"
)

// Category classifies a memory dossier entry.
type Category string

const (
	CategoryCharacter Category = "Character"
	CategoryPlace     Category = "Place"
	CategoryItem      Category = "Item"
	CategoryLore      Category = "Lore"
	CategoryOther     Category = "Other"
)

// Categories lists every valid memory category in display order.
var Categories = []Category{CategoryCharacter, CategoryPlace, CategoryItem, CategoryLore, CategoryOther}

// ParseCategory validates s against the closed set of categories.
// Matching is exact, as the tool schema declares an enum.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", s)
}

// MemoryItem is a persistent world-knowledge dossier entry.
// Disabled entries are kept but excluded from the model context.
type MemoryItem struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Enabled     bool     `json:"is_enabled"`
}

// NewMemoryItem creates an enabled-or-disabled memory with a fresh ID.
func NewMemoryItem(category Category, name, description string, enabled bool) MemoryItem {
	return MemoryItem{
		ID:          uuid.NewString(),
		Category:    category,
		Name:        name,
		Description: description,
		Enabled:     enabled,
	}
}

// FindMemory returns the index of the memory with the given category and
// case-insensitive name, or -1.
func (s *Snapshot) FindMemory(category Category, name string) int {
	key := NameKey(name)
	for i, m := range s.Memories {
		if m.Category == category && NameKey(m.Name) == key {
			return i
		}
	}
	return -1
}

// ActiveMemories returns the memories that are enabled for the model context.
func (s *Snapshot) ActiveMemories() []MemoryItem {
	var out []MemoryItem
	for _, m := range s.Memories {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

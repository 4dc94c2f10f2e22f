package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/tools"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <snapshot.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &SnapshotValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Snapshot is consistent!")
}

// SnapshotValidator checks an exported session snapshot, such as the body
// of GET /v1/sessions/{id}, against the world-consistency rules.
type SnapshotValidator struct {
	errors []string
}

func (v *SnapshotValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return v.validateBytes(filename, data)
}

func (v *SnapshotValidator) validateBytes(filename string, data []byte) error {
	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var s world.Snapshot
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateSnapshot(&s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *SnapshotValidator) validateSnapshot(s *world.Snapshot) {
	v.validateMessages(s.Messages)

	for _, m := range s.Memories {
		if _, err := world.ParseCategory(string(m.Category)); err != nil {
			v.addError(fmt.Sprintf("memory %q: %v", m.Name, err))
		}
		if strings.TrimSpace(m.Name) == "" {
			v.addError(fmt.Sprintf("memory %s has no name", m.ID))
		}
		if n := len(strings.Split(m.Description, "\n")); n > tools.MaxDossierLines {
			v.addError(fmt.Sprintf("memory %q has %d lines, more than %d", m.Name, n, tools.MaxDossierLines))
		}
	}

	for _, item := range s.Inventory {
		if _, err := world.ParseItemType(string(item.Type)); err != nil {
			v.addError(fmt.Sprintf("item %q: %v", item.Name, err))
		}
		if item.Quantity < 1 {
			v.addError(fmt.Sprintf("item %q has quantity %d", item.Name, item.Quantity))
		}
	}

	if s.Currency != s.Currency.Clamp() {
		v.addError(fmt.Sprintf("currency %s has a negative denomination", s.Currency))
	}

	for _, loc := range s.Locations {
		seen := make(map[string]bool, len(loc.Zones))
		for _, z := range loc.Zones {
			if z.ID == "" {
				v.addError(fmt.Sprintf("location %q has a zone without an id", loc.Name))
				continue
			}
			if seen[z.ID] {
				v.addError(fmt.Sprintf("location %q repeats zone id %q", loc.Name, z.ID))
			}
			seen[z.ID] = true
		}
	}

	switch {
	case s.CurrentLocationID == "" && s.CurrentZoneID == "":
	case s.CurrentZone() == nil:
		v.addError(fmt.Sprintf("position %s/%s does not resolve to a zone", s.CurrentLocationID, s.CurrentZoneID))
	}

	if _, err := world.ParsePanel(string(s.ActivePanel)); err != nil {
		v.addError(err.Error())
	}
	if s.Loading {
		v.addError("snapshot was exported mid-turn (is_loading is true)")
	}
}

// validateMessages checks that IDs are unique and that every tool result
// answers a call made by an earlier assistant message.
func (v *SnapshotValidator) validateMessages(msgs []world.Message) {
	ids := make(map[string]bool, len(msgs))
	calls := make(map[string]bool)
	for i, m := range msgs {
		if ids[m.ID] {
			v.addError(fmt.Sprintf("message %d repeats id %q", i, m.ID))
		}
		ids[m.ID] = true

		switch m.Role {
		case world.RoleUser, world.RoleSystem:
		case world.RoleAssistant:
			for _, c := range m.ToolCalls {
				calls[c.ID] = true
			}
		case world.RoleTool:
			if !calls[m.ToolCallID] {
				v.addError(fmt.Sprintf("tool message %d answers unknown call %q", i, m.ToolCallID))
			}
		default:
			v.addError(fmt.Sprintf("message %d has invalid role %q", i, m.Role))
		}
	}
}

func (v *SnapshotValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

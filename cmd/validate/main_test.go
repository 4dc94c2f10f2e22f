package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func validSnapshot() *world.Snapshot {
	s := world.New("A quiet harbor.")
	call := world.ToolCall{ID: "call_1", Type: world.ToolCallTypeFunction, Function: world.FunctionCall{Name: "navigate", Arguments: "{}"}}
	s.Messages = append(s.Messages,
		world.NewUserMessage("I walk north."),
		world.Message{ID: "a1", Role: world.RoleAssistant, ToolCalls: []world.ToolCall{call}},
		world.NewToolMessage(call, "Moved."),
	)
	loc := world.NewLocation("Dock", []world.Zone{{ID: "pier", Name: "Pier", Connections: []string{}}})
	s.Locations = append(s.Locations, loc)
	s.CurrentLocationID, s.CurrentZoneID = loc.ID, "pier"
	s.Inventory = append(s.Inventory, world.NewInventoryItem("Rope", world.ItemMaterial, "", 1))
	s.Memories = append(s.Memories, world.NewMemoryItem(world.CategoryPlace, "Dock", "Smells of tar.", true))
	return s
}

func validate(t *testing.T, s *world.Snapshot) error {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}
	return (&SnapshotValidator{}).validateBytes("snapshot.json", data)
}

func TestValidateSnapshot_Valid(t *testing.T) {
	if err := validate(t, validSnapshot()); err != nil {
		t.Errorf("Expected valid snapshot, got %v", err)
	}
}

func TestValidateSnapshot_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *world.Snapshot)
		want   string
	}{
		{"dangling position", func(s *world.Snapshot) { s.CurrentZoneID = "cellar" }, "does not resolve"},
		{"half position", func(s *world.Snapshot) { s.CurrentLocationID = "" }, "does not resolve"},
		{"negative currency", func(s *world.Snapshot) { s.Currency.Silver = -1 }, "negative"},
		{"bad category", func(s *world.Snapshot) { s.Memories[0].Category = "Gossip" }, "memory"},
		{"bad item type", func(s *world.Snapshot) { s.Inventory[0].Type = "Pebble" }, "item"},
		{"zero quantity", func(s *world.Snapshot) { s.Inventory[0].Quantity = 0 }, "quantity 0"},
		{"duplicate zone", func(s *world.Snapshot) {
			s.Locations[0].Zones = append(s.Locations[0].Zones, world.Zone{ID: "pier", Name: "Again"})
		}, "repeats zone id"},
		{"orphan tool result", func(s *world.Snapshot) { s.Messages[2].ToolCallID = "call_9" }, "unknown call"},
		{"mid-turn", func(s *world.Snapshot) { s.Loading = true }, "mid-turn"},
		{"long dossier", func(s *world.Snapshot) {
			s.Memories[0].Description = strings.Repeat("line\n", 16)
		}, "more than 15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(s)
			err := validate(t, s)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateSnapshot_UnknownFields(t *testing.T) {
	err := (&SnapshotValidator{}).validateBytes("x.json", []byte(`{"messages":[],"scenario":"pirates"}`))
	if err == nil || !strings.Contains(err.Error(), "strict") {
		t.Errorf("Expected strict unmarshaling error, got %v", err)
	}
	if err := (&SnapshotValidator{}).validateBytes("x.json", []byte(`{nope`)); err == nil {
		t.Error("Expected invalid JSON error")
	}
}

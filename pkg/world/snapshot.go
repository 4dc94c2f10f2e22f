package world

import (
	"errors"
	"fmt"
)

// Panel is the side panel currently open in the presentation layer.
// At most one panel is open at a time.
type Panel string

const (
	PanelNone      Panel = ""
	PanelSettings  Panel = "settings"
	PanelMemory    Panel = "memory"
	PanelInventory Panel = "inventory"
	PanelMap       Panel = "map"
)

// ParsePanel validates a panel name. The empty string and "none" close all panels.
func ParsePanel(s string) (Panel, error) {
	switch Panel(s) {
	case PanelNone, "none":
		return PanelNone, nil
	case PanelSettings, PanelMemory, PanelInventory, PanelMap:
		return Panel(s), nil
	}
	return PanelNone, fmt.Errorf("invalid panel %q", s)
}

// ErrDanglingPosition is returned when a position does not resolve to a real zone.
var ErrDanglingPosition = errors.New("position does not resolve to a zone")

// Snapshot is the complete world state of one session. It is treated as a
// value: writers Clone before mutating so readers never see a torn write.
//
// CurrentLocationID and CurrentZoneID are either both empty, meaning the
// player is in an undefined location, or both set.
type Snapshot struct {
	Messages          []Message       `json:"messages"`
	Memories          []MemoryItem    `json:"memories"`
	Inventory         []InventoryItem `json:"inventory"`
	Currency          Currency        `json:"currency"`
	Locations         []Location      `json:"locations"`
	CurrentLocationID string          `json:"current_location_id,omitempty"`
	CurrentZoneID     string          `json:"current_zone_id,omitempty"`
	WorldPrompt       string          `json:"world_prompt"`

	Loading     bool   `json:"is_loading"`
	Error       string `json:"error,omitempty"`
	ActivePanel Panel  `json:"active_panel,omitempty"`
}

// New creates an empty snapshot using the given world prompt.
func New(worldPrompt string) *Snapshot {
	return &Snapshot{
		Messages:    make([]Message, 0),
		Memories:    make([]MemoryItem, 0),
		Inventory:   make([]InventoryItem, 0),
		Locations:   make([]Location, 0),
		WorldPrompt: worldPrompt,
	}
}

// Clone returns a deep copy of s with no shared slices.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	out.Memories = append(make([]MemoryItem, 0, len(s.Memories)), s.Memories...)
	out.Inventory = append(make([]InventoryItem, 0, len(s.Inventory)), s.Inventory...)
	out.Locations = make([]Location, len(s.Locations))
	for i, l := range s.Locations {
		out.Locations[i] = l.Clone()
	}
	return &out
}

// FindLocation returns the index of the location with the given ID, or -1.
func (s *Snapshot) FindLocation(id string) int {
	for i := range s.Locations {
		if s.Locations[i].ID == id {
			return i
		}
	}
	return -1
}

// CurrentLocation returns the location the player is in, or nil.
func (s *Snapshot) CurrentLocation() *Location {
	if s.CurrentLocationID == "" {
		return nil
	}
	if i := s.FindLocation(s.CurrentLocationID); i >= 0 {
		return &s.Locations[i]
	}
	return nil
}

// CurrentZone returns the zone the player is in, or nil when the position
// does not resolve.
func (s *Snapshot) CurrentZone() *Zone {
	loc := s.CurrentLocation()
	if loc == nil {
		return nil
	}
	return loc.Zone(s.CurrentZoneID)
}

// FindZone searches every location, in order, for a zone with the given ID
// and returns the first match along with its location.
func (s *Snapshot) FindZone(zoneID string) (*Location, *Zone) {
	for i := range s.Locations {
		if z := s.Locations[i].Zone(zoneID); z != nil {
			return &s.Locations[i], z
		}
	}
	return nil, nil
}

// SetPosition moves the player to zoneID within locationID. Both must resolve.
func (s *Snapshot) SetPosition(locationID, zoneID string) error {
	i := s.FindLocation(locationID)
	if i < 0 || !s.Locations[i].HasZone(zoneID) {
		return fmt.Errorf("%w: %s/%s", ErrDanglingPosition, locationID, zoneID)
	}
	s.CurrentLocationID = locationID
	s.CurrentZoneID = zoneID
	return nil
}

// ClearPosition puts the player in an undefined location.
func (s *Snapshot) ClearPosition() {
	s.CurrentLocationID = ""
	s.CurrentZoneID = ""
}

// LastAssistantText returns the content of the most recent assistant message
// that has any, or "".
func (s *Snapshot) LastAssistantText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == RoleAssistant && m.Text() != "" {
			return m.Text()
		}
	}
	return ""
}

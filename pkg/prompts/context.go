package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// MemoryContext renders the enabled memories, or "" when there are none.
func MemoryContext(s *world.Snapshot) string {
	active := s.ActiveMemories()
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, len(active))
	for i, m := range active {
		lines[i] = fmt.Sprintf("- [%s] %s: %s", m.Category, m.Name, m.Description)
	}
	return memoryHeader + strings.Join(lines, "\n")
}

// SpatialContext describes the player's position, the exits available from
// it and the full layout of the current location, which the player never sees.
func SpatialContext(s *world.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(spatialHeader)

	loc := s.CurrentLocation()
	zone := s.CurrentZone()
	if loc == nil || zone == nil {
		sb.WriteString(undefinedLocationMsg)
		return sb.String()
	}

	fmt.Fprintf(&sb, "Current Location: %s\n", loc.Name)
	fmt.Fprintf(&sb, "Current Zone: %s (ID: %s)\n", zone.Name, zone.ID)
	fmt.Fprintf(&sb, "Zone Description: %s\n", zone.Description)

	exits := loc.ConnectedZones(*zone)
	exitList := "None"
	if len(exits) > 0 {
		parts := make([]string, len(exits))
		for i, z := range exits {
			parts[i] = fmt.Sprintf("\"%s\" (ID: %s)", z.Name, z.ID)
		}
		exitList = strings.Join(parts, ", ")
	}
	fmt.Fprintf(&sb, "VALID EXITS: %s.\n", exitList)

	sb.WriteString(layoutHeader)
	for _, z := range loc.Zones {
		fmt.Fprintf(&sb, "- ID: %s | Name: %s | Exits: %s\n", z.ID, z.Name, strings.Join(z.Connections, ", "))
	}
	return sb.String()
}

// InventoryContext renders the wallet, equipped items and backpack.
func InventoryContext(s *world.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(inventoryHeader)
	fmt.Fprintf(&sb, "Wallet: %dG, %dS, %dC\n", s.Currency.Gold, s.Currency.Silver, s.Currency.Copper)

	equipped := "Nothing"
	if items := s.Equipped(); len(items) > 0 {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprintf("%s (%s)", item.Name, item.Type)
		}
		equipped = strings.Join(parts, ", ")
	}
	fmt.Fprintf(&sb, "Equipped: %s\n", equipped)

	backpack := "Empty"
	if items := s.Backpack(); len(items) > 0 {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprintf("%s (x%d)", item.Name, item.Quantity)
		}
		backpack = strings.Join(parts, ", ")
	}
	fmt.Fprintf(&sb, "Backpack: %s\n", backpack)
	return sb.String()
}

// SystemPrompt assembles the full system content for one completion request.
func SystemPrompt(s *world.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(CoreMechanicsPrompt)
	sb.WriteString(worldSettingHeader)
	sb.WriteString(s.WorldPrompt)
	sb.WriteString(MemoryContext(s))
	sb.WriteString(SpatialContext(s))
	sb.WriteString(InventoryContext(s))
	return sb.String()
}

package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

const (
	defaultZoneName        = "Unknown Room"
	defaultZoneDescription = "..."
	defaultLocationName    = "Unknown Location"
)

// matchLocation picks the location create_map_location should merge into:
// first one that already holds the start zone, then the first whose name
// loosely matches. It returns -1 when a new location should be created.
func matchLocation(locations []world.Location, startZoneID, name string) int {
	for i := range locations {
		if locations[i].HasZone(startZoneID) {
			return i
		}
	}
	clean := strings.ToLower(strings.TrimSpace(name))
	if clean == "" {
		return -1
	}
	for i := range locations {
		existing := strings.ToLower(strings.TrimSpace(locations[i].Name))
		if existing == "" {
			continue
		}
		if existing == clean || strings.Contains(existing, clean) || strings.Contains(clean, existing) {
			return i
		}
	}
	return -1
}

// mergeZones folds specs into loc. Known zones are updated field by field,
// unknown zones are appended. The start zone is marked explored; nothing is
// ever unmarked.
func mergeZones(loc *world.Location, specs []ZoneSpec, startZoneID string) {
	for _, spec := range specs {
		id := strings.TrimSpace(spec.ID.String())
		if id == "" {
			continue
		}
		if z := loc.Zone(id); z != nil {
			if spec.Name != "" {
				z.Name = spec.Name.String()
			}
			if spec.Description != "" {
				z.Description = spec.Description.String()
			}
			if spec.Connections.Set {
				z.Connections = spec.Connections.Items
			}
			if id == startZoneID {
				z.Explored = true
			}
			continue
		}
		zone := world.Zone{
			ID:          id,
			Name:        spec.Name.String(),
			Description: spec.Description.String(),
			Connections: spec.Connections.Items,
			Explored:    id == startZoneID,
		}
		if zone.Name == "" {
			zone.Name = defaultZoneName
		}
		if zone.Description == "" {
			zone.Description = defaultZoneDescription
		}
		if zone.Connections == nil {
			zone.Connections = []string{}
		}
		loc.Zones = append(loc.Zones, zone)
	}
}

func (a *CreateMapLocationArgs) apply(next *world.Snapshot) (string, bool) {
	startZoneID := strings.TrimSpace(a.StartZoneID.String())
	if startZoneID == "" {
		return reject("Error: create_map_location requires start_zone_id.")
	}
	name := strings.TrimSpace(a.LocationName.String())

	if i := matchLocation(next.Locations, startZoneID, name); i >= 0 {
		loc := &next.Locations[i]
		if utf8.RuneCountInString(name) > utf8.RuneCountInString(loc.Name) {
			loc.Name = name
		}
		mergeZones(loc, a.Zones, startZoneID)
		if err := next.SetPosition(loc.ID, startZoneID); err != nil {
			return reject("Error: Start zone '%s' is not part of '%s'. Include it in zones.", startZoneID, loc.Name)
		}
		return fmt.Sprintf("Map updated. Merged %d zones into '%s'. Player at %s.", len(a.Zones), loc.Name, startZoneID), true
	}

	locName := name
	if locName == "" {
		locName = defaultLocationName
	}
	loc := world.NewLocation(locName, make([]world.Zone, 0, len(a.Zones)))
	mergeZones(&loc, a.Zones, startZoneID)
	if !loc.HasZone(startZoneID) {
		return reject("Error: Start zone '%s' is not part of '%s'. Include it in zones.", startZoneID, locName)
	}
	next.Locations = append(next.Locations, loc)
	if err := next.SetPosition(loc.ID, startZoneID); err != nil {
		return reject("Error: %v", err)
	}
	return fmt.Sprintf("Generated new map '%s' with %d zones. Player placed in %s.", locName, len(a.Zones), startZoneID), true
}

func (a *UpdateZoneDescriptionArgs) apply(next *world.Snapshot) (string, bool) {
	zoneID := strings.TrimSpace(a.ZoneID.String())
	if zoneID == "" {
		zoneID = next.CurrentZoneID
	}
	if a.Description == "" {
		return reject("Error: update_zone_description requires a description.")
	}
	loc, zone := next.FindZone(zoneID)
	if zone == nil {
		return reject("Error: Zone %s not found. Cannot update description.", zoneID)
	}
	zone.Description = a.Description.String()
	return fmt.Sprintf("Description updated for zone %s in %s.", zoneID, loc.Name), true
}

func (a *NavigateArgs) apply(next *world.Snapshot) (string, bool) {
	loc := next.CurrentLocation()
	if loc == nil {
		return reject("Error: Player is not in a valid location.")
	}
	targetID := strings.TrimSpace(a.TargetZoneID.String())
	target := loc.Zone(targetID)
	if target == nil {
		return reject("Error: Target zone ID not found in current location.")
	}

	// An unresolved current zone skips the adjacency check.
	if current := loc.Zone(next.CurrentZoneID); current != nil && !current.ConnectsTo(targetID) {
		exits := "None"
		if len(current.Connections) > 0 {
			exits = strings.Join(current.Connections, ", ")
		}
		return reject("Movement Failed: The zone '%s' is not connected to '%s' (ID: %s). Valid exits: %s.",
			current.Name, target.Name, targetID, exits)
	}

	target.Explored = true
	next.CurrentZoneID = target.ID
	if a.Reason == "" {
		return fmt.Sprintf("Player moved to %s. Zone marked explored.", target.Name), true
	}
	return fmt.Sprintf("Player moved to %s. Zone marked explored. Reason: %s", target.Name, a.Reason), true
}

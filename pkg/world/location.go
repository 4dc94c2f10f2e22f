package world

import (
	"slices"

	"github.com/google/uuid"
)

// UnknownZoneName is shown for a connection whose far end is not mapped yet.
const UnknownZoneName = "unknown"

// Zone is a navigable sub-area of a Location. Connections hold zone IDs
// and are kept verbatim even when they do not resolve.
type Zone struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Connections []string `json:"connections"`
	Explored    bool     `json:"is_explored"` // fog of war
}

// ConnectsTo reports whether zoneID is listed among z's connections.
func (z Zone) ConnectsTo(zoneID string) bool {
	return slices.Contains(z.Connections, zoneID)
}

// Clone returns a copy of z that shares no memory with it.
func (z Zone) Clone() Zone {
	out := z
	if z.Connections != nil {
		out.Connections = slices.Clone(z.Connections)
	}
	return out
}

// Location is a named container of zones: a building, dungeon or district.
// Zone IDs are unique within a location and supplied by the model.
type Location struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Zones []Zone `json:"zones"`
}

// NewLocation creates a location with a fresh ID.
func NewLocation(name string, zones []Zone) Location {
	return Location{
		ID:    uuid.NewString(),
		Name:  name,
		Zones: zones,
	}
}

// Zone returns the zone with the given ID, or nil.
func (l *Location) Zone(id string) *Zone {
	for i := range l.Zones {
		if l.Zones[i].ID == id {
			return &l.Zones[i]
		}
	}
	return nil
}

// HasZone reports whether a zone with the given ID exists in l.
func (l *Location) HasZone(id string) bool {
	return l.Zone(id) != nil
}

// ExitNames resolves the connections of zone to display names, using
// UnknownZoneName for connections that do not resolve within l.
func (l *Location) ExitNames(zone Zone) []string {
	names := make([]string, 0, len(zone.Connections))
	for _, id := range zone.Connections {
		if target := l.Zone(id); target != nil {
			names = append(names, target.Name)
		} else {
			names = append(names, UnknownZoneName)
		}
	}
	return names
}

// ConnectedZones returns the zones of l reachable from zone, in l's order.
// Unresolved connections are skipped.
func (l *Location) ConnectedZones(zone Zone) []Zone {
	var out []Zone
	for _, z := range l.Zones {
		if zone.ConnectsTo(z.ID) {
			out = append(out, z)
		}
	}
	return out
}

// ExploredZones returns the zones visible through the fog of war.
func (l *Location) ExploredZones() []Zone {
	var out []Zone
	for _, z := range l.Zones {
		if z.Explored {
			out = append(out, z)
		}
	}
	return out
}

// Clone returns a copy of l that shares no memory with it.
func (l Location) Clone() Location {
	out := l
	if l.Zones != nil {
		out.Zones = make([]Zone, len(l.Zones))
		for i, z := range l.Zones {
			out.Zones[i] = z.Clone()
		}
	}
	return out
}

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

var (
	// ErrNotFound is returned when an override names an entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOverride is returned when an override would break a world invariant.
	ErrInvalidOverride = errors.New("invalid override")
)

// mutate applies fn to a copy of the canonical snapshot and publishes the
// result. World edits are refused while a turn is running; a failed fn
// leaves the snapshot untouched.
func (e *Engine) mutate(fn func(s *world.Snapshot) error) error {
	e.mu.Lock()
	if e.state.Running() {
		e.mu.Unlock()
		return ErrTurnInProgress
	}
	working := e.snap.Clone()
	if err := fn(working); err != nil {
		e.mu.Unlock()
		return err
	}
	e.snap = working
	out := working.Clone()
	e.mu.Unlock()

	e.notify(func(o Observer) { o.OnSnapshot(out) })
	return nil
}

// setPanel changes only the open panel. Allowed at any time.
func (e *Engine) setPanel(fn func(current world.Panel) world.Panel) world.Panel {
	e.mu.Lock()
	e.snap.ActivePanel = fn(e.snap.ActivePanel)
	panel := e.snap.ActivePanel
	out := e.snap.Clone()
	e.mu.Unlock()

	e.notify(func(o Observer) { o.OnSnapshot(out) })
	return panel
}

// TogglePanel opens p, closing any other panel, or closes p if it is
// already open. It returns the panel open afterwards.
func (e *Engine) TogglePanel(p world.Panel) world.Panel {
	return e.setPanel(func(current world.Panel) world.Panel {
		if current == p {
			return world.PanelNone
		}
		return p
	})
}

// CloseAllPanels closes whatever panel is open.
func (e *Engine) CloseAllPanels() {
	e.setPanel(func(world.Panel) world.Panel { return world.PanelNone })
}

// UpdateWorldPrompt replaces the world prompt used for future turns.
func (e *Engine) UpdateWorldPrompt(text string) error {
	return e.mutate(func(s *world.Snapshot) error {
		s.WorldPrompt = text
		return nil
	})
}

// ResetWorldPrompt restores the engine's default world prompt.
func (e *Engine) ResetWorldPrompt() error {
	return e.UpdateWorldPrompt(e.worldPrompt)
}

// Reset starts the session over from the welcome message. The world prompt
// in effect is kept.
func (e *Engine) Reset() error {
	err := e.mutate(func(s *world.Snapshot) error {
		*s = *e.freshSnapshot(s.WorldPrompt)
		return nil
	})
	if err == nil {
		e.mu.Lock()
		e.state = StateIdle
		e.mu.Unlock()
		e.logger.Info("Session reset")
	}
	return err
}

// AddMemory adds a memory directly, without dossier merging.
func (e *Engine) AddMemory(category world.Category, name, description string, enabled bool) (world.MemoryItem, error) {
	if _, err := world.ParseCategory(string(category)); err != nil {
		return world.MemoryItem{}, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return world.MemoryItem{}, fmt.Errorf("%w: memory name is required", ErrInvalidOverride)
	}
	item := world.NewMemoryItem(category, name, description, enabled)
	err := e.mutate(func(s *world.Snapshot) error {
		s.Memories = append(s.Memories, item)
		return nil
	})
	return item, err
}

// DeleteMemory removes the memory with the given ID.
func (e *Engine) DeleteMemory(id string) error {
	return e.mutate(func(s *world.Snapshot) error {
		for i := range s.Memories {
			if s.Memories[i].ID == id {
				s.Memories = append(s.Memories[:i], s.Memories[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("memory %s: %w", id, ErrNotFound)
	})
}

// ToggleMemory flips whether a memory is included in the model context.
func (e *Engine) ToggleMemory(id string) error {
	return e.mutate(func(s *world.Snapshot) error {
		for i := range s.Memories {
			if s.Memories[i].ID == id {
				s.Memories[i].Enabled = !s.Memories[i].Enabled
				return nil
			}
		}
		return fmt.Errorf("memory %s: %w", id, ErrNotFound)
	})
}

// SetCurrency replaces the wallet. Negative denominations are clamped to zero.
func (e *Engine) SetCurrency(c world.Currency) error {
	return e.mutate(func(s *world.Snapshot) error {
		s.Currency = c.Clamp()
		return nil
	})
}

// AddInventoryItem appends a new stack without merging into existing ones.
func (e *Engine) AddInventoryItem(name string, itemType world.ItemType, description string, quantity int) (world.InventoryItem, error) {
	if _, err := world.ParseItemType(string(itemType)); err != nil {
		return world.InventoryItem{}, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return world.InventoryItem{}, fmt.Errorf("%w: item name is required", ErrInvalidOverride)
	}
	if quantity < 1 {
		quantity = 1
	}
	item := world.NewInventoryItem(name, itemType, description, quantity)
	err := e.mutate(func(s *world.Snapshot) error {
		s.Inventory = append(s.Inventory, item)
		return nil
	})
	return item, err
}

// RemoveInventoryItem removes a whole stack by ID.
func (e *Engine) RemoveInventoryItem(id string) error {
	return e.mutate(func(s *world.Snapshot) error {
		for i := range s.Inventory {
			if s.Inventory[i].ID == id {
				s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	})
}

// ToggleEquip flips the equipped flag of a stack.
func (e *Engine) ToggleEquip(id string) error {
	return e.mutate(func(s *world.Snapshot) error {
		for i := range s.Inventory {
			if s.Inventory[i].ID == id {
				s.Inventory[i].Equipped = !s.Inventory[i].Equipped
				return nil
			}
		}
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	})
}

// AddLocation adds a location built from zones. Zone IDs must be present
// and unique; missing connection lists become empty.
func (e *Engine) AddLocation(name string, zones []world.Zone) (world.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return world.Location{}, fmt.Errorf("%w: location name is required", ErrInvalidOverride)
	}
	seen := make(map[string]bool, len(zones))
	cloned := make([]world.Zone, 0, len(zones))
	for _, z := range zones {
		if err := checkZone(z, seen); err != nil {
			return world.Location{}, err
		}
		cloned = append(cloned, normalizeZone(z))
	}

	loc := world.NewLocation(name, cloned)
	err := e.mutate(func(s *world.Snapshot) error {
		s.Locations = append(s.Locations, loc)
		return nil
	})
	return loc.Clone(), err
}

// DeleteLocation removes a location. If the player was in it, the player
// ends up in an undefined location.
func (e *Engine) DeleteLocation(id string) error {
	return e.mutate(func(s *world.Snapshot) error {
		i := s.FindLocation(id)
		if i < 0 {
			return fmt.Errorf("location %s: %w", id, ErrNotFound)
		}
		s.Locations = append(s.Locations[:i], s.Locations[i+1:]...)
		if s.CurrentLocationID == id {
			s.ClearPosition()
		}
		return nil
	})
}

// AddZone appends a zone to a location.
func (e *Engine) AddZone(locationID string, zone world.Zone) error {
	return e.mutate(func(s *world.Snapshot) error {
		i := s.FindLocation(locationID)
		if i < 0 {
			return fmt.Errorf("location %s: %w", locationID, ErrNotFound)
		}
		seen := make(map[string]bool, len(s.Locations[i].Zones))
		for _, z := range s.Locations[i].Zones {
			seen[z.ID] = true
		}
		if err := checkZone(zone, seen); err != nil {
			return err
		}
		s.Locations[i].Zones = append(s.Locations[i].Zones, normalizeZone(zone))
		return nil
	})
}

// SetPosition moves the player. The pair must resolve to a real zone.
func (e *Engine) SetPosition(locationID, zoneID string) error {
	return e.mutate(func(s *world.Snapshot) error {
		if err := s.SetPosition(locationID, zoneID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOverride, err)
		}
		return nil
	})
}

func checkZone(z world.Zone, seen map[string]bool) error {
	if strings.TrimSpace(z.ID) == "" {
		return fmt.Errorf("%w: zone id is required", ErrInvalidOverride)
	}
	if seen[z.ID] {
		return fmt.Errorf("%w: duplicate zone id %q", ErrInvalidOverride, z.ID)
	}
	seen[z.ID] = true
	return nil
}

func normalizeZone(z world.Zone) world.Zone {
	out := z.Clone()
	if out.Connections == nil {
		out.Connections = []string{}
	}
	return out
}

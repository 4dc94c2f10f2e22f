package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

type MemoryRequest struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     *bool  `json:"is_enabled,omitempty"`
}

type InventoryRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type LocationRequest struct {
	Name  string       `json:"name"`
	Zones []world.Zone `json:"zones"`
}

type PositionRequest struct {
	LocationID string `json:"location_id"`
	ZoneID     string `json:"zone_id"`
}

// routeWorldEdit serves the direct edits a game master makes outside of a
// turn. It reports false when rest matches none of them.
//
// POST   memories                 - Add a memory
// DELETE memories/{mid}           - Delete a memory
// POST   memories/{mid}/toggle    - Enable or disable a memory
// PUT    currency                 - Replace the wallet
// POST   inventory                - Add an item stack
// DELETE inventory/{iid}          - Remove an item stack
// POST   inventory/{iid}/equip    - Equip or unequip an item
// POST   locations                - Add a location
// DELETE locations/{lid}          - Delete a location
// POST   locations/{lid}/zones    - Add a zone to a location
// PUT    position                 - Move the player
func (h *SessionsHandler) routeWorldEdit(w http.ResponseWriter, r *http.Request, id string, rest []string, log *slog.Logger) bool {
	switch {
	case len(rest) == 1 && rest[0] == "memories":
		if h.allow(w, r, http.MethodPost) {
			h.handleAddMemory(w, r, id, log)
		}
	case len(rest) == 2 && rest[0] == "memories":
		if h.allow(w, r, http.MethodDelete) {
			h.update(w, r, id, log, func(e *engine.Engine) error { return e.DeleteMemory(rest[1]) })
		}
	case len(rest) == 3 && rest[0] == "memories" && rest[2] == "toggle":
		if h.allow(w, r, http.MethodPost) {
			h.update(w, r, id, log, func(e *engine.Engine) error { return e.ToggleMemory(rest[1]) })
		}

	case len(rest) == 1 && rest[0] == "currency":
		if h.allow(w, r, http.MethodPut) {
			var c world.Currency
			if decodeBody(w, r, log, &c) {
				h.update(w, r, id, log, func(e *engine.Engine) error { return e.SetCurrency(c) })
			}
		}

	case len(rest) == 1 && rest[0] == "inventory":
		if h.allow(w, r, http.MethodPost) {
			h.handleAddItem(w, r, id, log)
		}
	case len(rest) == 2 && rest[0] == "inventory":
		if h.allow(w, r, http.MethodDelete) {
			h.update(w, r, id, log, func(e *engine.Engine) error { return e.RemoveInventoryItem(rest[1]) })
		}
	case len(rest) == 3 && rest[0] == "inventory" && rest[2] == "equip":
		if h.allow(w, r, http.MethodPost) {
			h.update(w, r, id, log, func(e *engine.Engine) error { return e.ToggleEquip(rest[1]) })
		}

	case len(rest) == 1 && rest[0] == "locations":
		if h.allow(w, r, http.MethodPost) {
			h.handleAddLocation(w, r, id, log)
		}
	case len(rest) == 2 && rest[0] == "locations":
		if h.allow(w, r, http.MethodDelete) {
			h.update(w, r, id, log, func(e *engine.Engine) error { return e.DeleteLocation(rest[1]) })
		}
	case len(rest) == 3 && rest[0] == "locations" && rest[2] == "zones":
		if h.allow(w, r, http.MethodPost) {
			var z world.Zone
			if decodeBody(w, r, log, &z) {
				h.update(w, r, id, log, func(e *engine.Engine) error { return e.AddZone(rest[1], z) })
			}
		}

	case len(rest) == 1 && rest[0] == "position":
		if h.allow(w, r, http.MethodPut) {
			var p PositionRequest
			if decodeBody(w, r, log, &p) {
				h.update(w, r, id, log, func(e *engine.Engine) error { return e.SetPosition(p.LocationID, p.ZoneID) })
			}
		}

	default:
		return false
	}
	return true
}

func (h *SessionsHandler) handleAddMemory(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	var req MemoryRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	h.update(w, r, id, log, func(e *engine.Engine) error {
		_, err := e.AddMemory(world.Category(req.Category), req.Name, req.Description, enabled)
		return err
	})
}

func (h *SessionsHandler) handleAddItem(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	var req InventoryRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	h.update(w, r, id, log, func(e *engine.Engine) error {
		_, err := e.AddInventoryItem(req.Name, world.ItemType(req.Type), req.Description, req.Quantity)
		return err
	})
}

func (h *SessionsHandler) handleAddLocation(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	var req LocationRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	h.update(w, r, id, log, func(e *engine.Engine) error {
		_, err := e.AddLocation(req.Name, req.Zones)
		return err
	})
}

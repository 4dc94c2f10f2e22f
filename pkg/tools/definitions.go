package tools

import "github.com/jwebster45206/chronicle-engine/pkg/world"

// Definition is a function tool declared to the model, with a JSON Schema
// for its parameters.
type Definition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Definitions returns the tool set offered to the model on every turn.
// A fresh copy is built per call so callers may modify it.
func Definitions() []Definition {
	itemTypes := enumOf(world.ItemTypes)
	return []Definition{
		{
			Name:        ToolInitializeCharacter,
			Description: "Set the player's starting equipment and wealth based on their background. Use this once at the very beginning of the story.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"items": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name":        map[string]interface{}{"type": "string"},
								"type":        map[string]interface{}{"type": "string", "enum": itemTypes},
								"description": map[string]interface{}{"type": "string"},
								"quantity":    map[string]interface{}{"type": "integer"},
								"isEquipped":  map[string]interface{}{"type": "boolean"},
							},
							"required": []string{"name", "type"},
						},
					},
					"gold":   map[string]interface{}{"type": "integer"},
					"silver": map[string]interface{}{"type": "integer"},
					"copper": map[string]interface{}{"type": "integer"},
				},
			},
		},
		{
			Name: ToolManageInventory,
			Description: "Manage the player's inventory. CRITICAL: Only use 'add' if the item explicitly exists in the scene and the player " +
				"has successfully physically acquired it. Use 'remove' if the item is consumed, lost, or destroyed.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"action":      map[string]interface{}{"type": "string", "enum": []string{ActionAdd, ActionRemove, ActionEquip, ActionUnequip}},
					"item_name":   map[string]interface{}{"type": "string"},
					"item_type":   map[string]interface{}{"type": "string", "enum": itemTypes},
					"quantity":    map[string]interface{}{"type": "integer"},
					"description": map[string]interface{}{"type": "string"},
				},
				"required": []string{"action", "item_name"},
			},
		},
		{
			Name:        ToolUpdateCurrency,
			Description: "Modify the player's wallet balance.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"gold_delta":   map[string]interface{}{"type": "integer"},
					"silver_delta": map[string]interface{}{"type": "integer"},
					"copper_delta": map[string]interface{}{"type": "integer"},
				},
			},
		},
		{
			Name:        ToolNavigate,
			Description: "Move the player to a connected zone. ONLY use this if the player explicitly attempts to move to a valid exit.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"target_zone_id": map[string]interface{}{
						"type":        "string",
						"description": "The exact ID of the zone to move to.",
					},
					"reason": map[string]interface{}{
						"type":        "string",
						"description": "Why the movement is happening.",
					},
				},
				"required": []string{"target_zone_id"},
			},
		},
		{
			Name: ToolCreateMapLocation,
			Description: "Generate a NEW multi-room layout OR update the existing location map. Use this when entering a new structure " +
				"or revealing more rooms in the current one.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"location_name": map[string]interface{}{
						"type":        "string",
						"description": "Name of the place (e.g. 'Goblin Cave')",
					},
					"zones": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"id": map[string]interface{}{
									"type":        "string",
									"description": "Unique ID (e.g. 'cave_entrance', 'main_hall')",
								},
								"name": map[string]interface{}{"type": "string"},
								"description": map[string]interface{}{
									"type":        "string",
									"description": "Visual description of the room.",
								},
								"connections": map[string]interface{}{
									"type":        "array",
									"items":       map[string]interface{}{"type": "string"},
									"description": "IDs of zones this room connects to.",
								},
							},
							"required": []string{"id", "name", "description", "connections"},
						},
					},
					"start_zone_id": map[string]interface{}{
						"type":        "string",
						"description": "The ID of the zone the player is currently in.",
					},
				},
				"required": []string{"location_name", "zones", "start_zone_id"},
			},
		},
		{
			Name: ToolUpdateZoneDescription,
			Description: "Update the visual description of a room when the environment changes (e.g., walls broken, items dropped, " +
				"fire started, mess cleaned up).",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"description": map[string]interface{}{
						"type":        "string",
						"description": "The new full description of the room.",
					},
					"zone_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional. The ID of the zone to update. Defaults to current zone if omitted.",
					},
				},
				"required": []string{"description"},
			},
		},
		{
			Name: ToolUpsertMemory,
			Description: "Create or update a world memory entry (Character/Place/Item/Lore/Other). Only use when something NEW becomes " +
				"notable (new named NPC, important place, key lore reveal, special item). Keep descriptions short (1-2 sentences).",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category":    map[string]interface{}{"type": "string", "enum": enumOf(world.Categories)},
					"name":        map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
					"isEnabled":   map[string]interface{}{"type": "boolean"},
				},
				"required": []string{"category", "name", "description"},
			},
		},
	}
}

package world

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemType is the slot or kind of an inventory item.
type ItemType string

const (
	ItemHead       ItemType = "Head"
	ItemBody       ItemType = "Body"
	ItemLegs       ItemType = "Legs"
	ItemFeet       ItemType = "Feet"
	ItemWeapon     ItemType = "Weapon"
	ItemOffhand    ItemType = "Offhand"
	ItemAccessory  ItemType = "Accessory"
	ItemConsumable ItemType = "Consumable"
	ItemMaterial   ItemType = "Material"
)

// ItemTypes lists every valid item type in display order.
var ItemTypes = []ItemType{
	ItemHead, ItemBody, ItemLegs, ItemFeet, ItemWeapon,
	ItemOffhand, ItemAccessory, ItemConsumable, ItemMaterial,
}

// ParseItemType validates s against the closed set of item types.
func ParseItemType(s string) (ItemType, error) {
	for _, t := range ItemTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", s)
}

// InventoryItem is a stack of possessed objects. Items sharing a
// case-insensitive name and a type are one stack.
type InventoryItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	Equipped    bool     `json:"is_equipped"`
}

// NewInventoryItem creates an unequipped stack with a fresh ID.
func NewInventoryItem(name string, itemType ItemType, description string, quantity int) InventoryItem {
	return InventoryItem{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        itemType,
		Description: description,
		Quantity:    quantity,
	}
}

// Stacks reports whether an item named name of type itemType belongs to i.
// Equipped state does not affect stacking.
func (i InventoryItem) Stacks(name string, itemType ItemType) bool {
	return i.Type == itemType && SameName(i.Name, name)
}

// FindStack returns the index of the stack matching name and type, or -1.
func (s *Snapshot) FindStack(name string, itemType ItemType) int {
	for i, item := range s.Inventory {
		if item.Stacks(name, itemType) {
			return i
		}
	}
	return -1
}

// FindItem returns the index of the first item with a case-insensitive
// name match regardless of type, or -1.
func (s *Snapshot) FindItem(name string) int {
	for i, item := range s.Inventory {
		if SameName(item.Name, name) {
			return i
		}
	}
	return -1
}

// Equipped returns the items currently equipped.
func (s *Snapshot) Equipped() []InventoryItem {
	var out []InventoryItem
	for _, item := range s.Inventory {
		if item.Equipped {
			out = append(out, item)
		}
	}
	return out
}

// Backpack returns the items carried but not equipped.
func (s *Snapshot) Backpack() []InventoryItem {
	var out []InventoryItem
	for _, item := range s.Inventory {
		if !item.Equipped {
			out = append(out, item)
		}
	}
	return out
}

// Currency is the player's wallet. No denomination is ever negative.
type Currency struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Copper int `json:"copper"`
}

// Apply adds each delta independently, clamping every denomination at zero.
// There is no conversion between denominations.
func (c Currency) Apply(gold, silver, copper int) Currency {
	return Currency{
		Gold:   max(0, c.Gold+gold),
		Silver: max(0, c.Silver+silver),
		Copper: max(0, c.Copper+copper),
	}
}

// Clamp returns c with negative denominations raised to zero.
func (c Currency) Clamp() Currency {
	return c.Apply(0, 0, 0)
}

// String formats the wallet as "5G 0S 12C".
func (c Currency) String() string {
	return fmt.Sprintf("%dG %dS %dC", c.Gold, c.Silver, c.Copper)
}

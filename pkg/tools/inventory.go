package tools

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

const (
	defaultStartingDescription = "Starting equipment."
	defaultItemDescription     = "No description provided."
)

func itemTypeList() string {
	names := make([]string, len(world.ItemTypes))
	for i, t := range world.ItemTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// itemTypeOr parses s, falling back to Material when s is empty.
func itemTypeOr(s string) (world.ItemType, error) {
	if s == "" {
		return world.ItemMaterial, nil
	}
	return world.ParseItemType(s)
}

func (a *InitializeCharacterArgs) apply(next *world.Snapshot) (string, bool) {
	items := make([]world.InventoryItem, 0, len(a.Items))
	for _, spec := range a.Items {
		name := strings.TrimSpace(spec.Name.String())
		if name == "" {
			continue
		}
		itemType, err := itemTypeOr(spec.Type.String())
		if err != nil {
			return reject("Error: Invalid item type '%s' for '%s'. Must be one of: %s.", spec.Type, name, itemTypeList())
		}
		desc := spec.Description.String()
		if desc == "" {
			desc = defaultStartingDescription
		}
		qty := spec.Quantity.Or(1)
		if qty < 1 {
			qty = 1
		}
		item := world.NewInventoryItem(name, itemType, desc, qty)
		item.Equipped = spec.Equipped.Or(false)
		items = append(items, item)
	}

	next.Inventory = items
	next.Currency = world.Currency{
		Gold:   a.Gold.Or(0),
		Silver: a.Silver.Or(0),
		Copper: a.Copper.Or(0),
	}.Clamp()
	return fmt.Sprintf("Character initialized. Inventory: %d items. Wallet: %s.", len(items), next.Currency), true
}

func (a *ManageInventoryArgs) apply(next *world.Snapshot) (string, bool) {
	name := strings.TrimSpace(a.ItemName.String())
	if name == "" {
		return reject("Error: manage_inventory requires item_name.")
	}
	qty := a.Quantity.Or(1)
	if qty < 1 {
		qty = 1
	}

	switch a.Action.String() {
	case ActionAdd:
		itemType, err := itemTypeOr(a.ItemType.String())
		if err != nil {
			return reject("Error: Invalid item type '%s'. Must be one of: %s.", a.ItemType, itemTypeList())
		}
		if i := next.FindStack(name, itemType); i >= 0 {
			next.Inventory[i].Quantity += qty
			return fmt.Sprintf("Added %d to existing stack of %s.", qty, name), true
		}
		desc := a.Description.String()
		if desc == "" {
			desc = defaultItemDescription
		}
		next.Inventory = append(next.Inventory, world.NewInventoryItem(name, itemType, desc, qty))
		return fmt.Sprintf("Added %dx %s (%s) to backpack.", qty, name, itemType), true

	case ActionRemove:
		i := next.FindItem(name)
		if i < 0 {
			return reject("Error: Item '%s' not found in inventory. Cannot remove.", name)
		}
		if next.Inventory[i].Quantity <= qty {
			next.Inventory = append(next.Inventory[:i], next.Inventory[i+1:]...)
			return fmt.Sprintf("Removed all %s.", name), true
		}
		next.Inventory[i].Quantity -= qty
		return fmt.Sprintf("Removed %d from %s.", qty, name), true

	case ActionEquip, ActionUnequip:
		i := next.FindItem(name)
		if i < 0 {
			return reject("Error: Item '%s' not found.", name)
		}
		equip := a.Action.String() == ActionEquip
		next.Inventory[i].Equipped = equip
		if equip {
			return fmt.Sprintf("Equipped %s.", name), true
		}
		return fmt.Sprintf("Unequipped %s.", name), true
	}

	return reject("Error: Unknown inventory action '%s'. Must be one of: %s, %s, %s, %s.",
		a.Action, ActionAdd, ActionRemove, ActionEquip, ActionUnequip)
}

func (a *UpdateCurrencyArgs) apply(next *world.Snapshot) (string, bool) {
	next.Currency = next.Currency.Apply(a.GoldDelta.Or(0), a.SilverDelta.Or(0), a.CopperDelta.Or(0))
	return fmt.Sprintf("Wallet updated. New Balance: %s", next.Currency), true
}

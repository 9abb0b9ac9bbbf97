package entity

import "github.com/samdwyer/dungeoncrawl/internal/ecs"

// PickUp moves the first floor item under holder into its inventory.
// Stackable items merge with a carried item of the same name.
func PickUp(w *ecs.World, holder ecs.Entity) (Item, bool) {
	pos, ok := ecs.Get(w, holder, PositionComponent)
	if !ok {
		return Item{}, false
	}
	here := *pos
	inv, ok := ecs.Get(w, holder, InventoryComponent)
	if !ok {
		return Item{}, false
	}

	for _, e := range FloorItems(w) {
		p, _ := ecs.Get(w, e, PositionComponent)
		if *p != here {
			continue
		}
		item, _ := ecs.Get(w, e, ItemComponent)
		picked := *item
		w.Destroy(e)
		inv.Items = stack(inv.Items, picked)
		inv.LastPicked = picked.Name
		return picked, true
	}
	return Item{}, false
}

// Drop places one unit of the most recently picked up item at holder's
// feet. A stack keeps the rest. When that item is no longer carried the
// last inventory slot is dropped instead.
func Drop(w *ecs.World, holder ecs.Entity) (Item, bool) {
	pos, ok := ecs.Get(w, holder, PositionComponent)
	if !ok {
		return Item{}, false
	}
	inv, ok := ecs.Get(w, holder, InventoryComponent)
	if !ok || len(inv.Items) == 0 {
		return Item{}, false
	}

	here := *pos
	slot := inv.slotFor(inv.LastPicked)
	item := inv.Items[slot]
	if item.Stackable && item.Quantity > 1 {
		inv.Items[slot].Quantity--
		item.ID = ""
		item.Quantity = 1
	} else {
		inv.Items = append(inv.Items[:slot], inv.Items[slot+1:]...)
		if !inv.carries(inv.LastPicked) {
			inv.LastPicked = ""
		}
	}
	SpawnItem(w, item, here)
	return item, true
}

// slotFor returns the last slot holding an item called name, or the last
// slot when there is none. It returns -1 for an empty inventory.
func (inv *Inventory) slotFor(name string) int {
	if name != "" {
		for i := len(inv.Items) - 1; i >= 0; i-- {
			if inv.Items[i].Name == name {
				return i
			}
		}
	}
	return len(inv.Items) - 1
}

func (inv *Inventory) carries(name string) bool {
	for _, it := range inv.Items {
		if it.Name == name {
			return true
		}
	}
	return false
}

func stack(items []Item, it Item) []Item {
	if it.Stackable {
		for i := range items {
			if items[i].Stackable && items[i].Name == it.Name {
				items[i].Quantity += it.Quantity
				return items
			}
		}
	}
	return append(items, it)
}

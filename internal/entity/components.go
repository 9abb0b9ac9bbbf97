// Package entity defines the gameplay components carried by donburi
// entities and helpers for spawning the player, monsters and floor items.
package entity

import "github.com/yohamta/donburi"

// Position is a map coordinate.
type Position struct {
	X, Y int
}

// Health tracks hit points.
type Health struct {
	Current int
	Maximum int
}

// Alive reports whether there are hit points left.
func (h Health) Alive() bool { return h.Current > 0 }

// Mana tracks spell points.
type Mana struct {
	Current int
	Maximum int
}

// Stats are the character's attributes.
type Stats struct {
	Strength     int
	Dexterity    int
	Intelligence int
	Constitution int
	AttackPower  int
	Defense      int
}

// Player marks the player-controlled entity.
type Player struct {
	Name             string
	Level            int
	Experience       int
	ExperienceToNext int
}

// Renderable describes how an entity is drawn. Colors are names or hex
// codes understood by gamedata.ParseColor.
type Renderable struct {
	Glyph rune
	FG    string
	BG    string
}

// Identity is the stable, persisted identity of a non-player entity.
type Identity struct {
	ID   string
	Type string
}

// Item is something that can be carried.
type Item struct {
	ID          string
	Name        string
	Description string
	Type        string
	Stackable   bool
	Quantity    int
}

// Inventory holds carried items in pickup order. LastPicked names the item
// most recently picked up; it is not persisted.
type Inventory struct {
	Items      []Item
	LastPicked string
}

var (
	PositionComponent   = donburi.NewComponentType[Position]()
	HealthComponent     = donburi.NewComponentType[Health]()
	ManaComponent       = donburi.NewComponentType[Mana]()
	StatsComponent      = donburi.NewComponentType[Stats]()
	PlayerComponent     = donburi.NewComponentType[Player]()
	RenderableComponent = donburi.NewComponentType[Renderable]()
	IdentityComponent   = donburi.NewComponentType[Identity]()
	ItemComponent       = donburi.NewComponentType[Item]()
	InventoryComponent  = donburi.NewComponentType[Inventory]()
)

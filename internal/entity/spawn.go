package entity

import (
	"github.com/google/uuid"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
)

// Entity kinds passed to ecs.World.Spawn.
const (
	KindPlayer  = "player"
	KindMonster = "monster"
	KindItem    = "item"
)

const (
	// PlayerInitiative puts the player ahead of every monster in the bundled data.
	PlayerInitiative = 20

	PlayerGlyph = '@'
)

// PlayerSpec describes a player to spawn.
type PlayerSpec struct {
	Player Player
	Health Health
	Mana   Mana
	Stats  Stats
	Pos    Position
	Items  []Item
}

// NewPlayerSpec returns a fresh level 1 character at pos.
func NewPlayerSpec(name string, pos Position) PlayerSpec {
	return PlayerSpec{
		Player: Player{Name: name, Level: 1, ExperienceToNext: 100},
		Health: Health{Current: 100, Maximum: 100},
		Mana:   Mana{Current: 50, Maximum: 50},
		Stats: Stats{
			Strength:     10,
			Dexterity:    10,
			Intelligence: 10,
			Constitution: 10,
			AttackPower:  10,
			Defense:      10,
		},
		Pos: pos,
	}
}

// SpawnPlayer creates the player entity.
func SpawnPlayer(w *ecs.World, spec PlayerSpec) ecs.Entity {
	e := w.Spawn(KindPlayer,
		PlayerComponent,
		PositionComponent,
		HealthComponent,
		ManaComponent,
		StatsComponent,
		RenderableComponent,
		InventoryComponent,
		ecs.ActorTurnComponent,
	)
	ecs.Set(w, e, PlayerComponent, spec.Player)
	ecs.Set(w, e, PositionComponent, spec.Pos)
	ecs.Set(w, e, HealthComponent, spec.Health)
	ecs.Set(w, e, ManaComponent, spec.Mana)
	ecs.Set(w, e, StatsComponent, spec.Stats)
	ecs.Set(w, e, RenderableComponent, Renderable{Glyph: PlayerGlyph, FG: "Yellow", BG: "Black"})
	ecs.Set(w, e, InventoryComponent, Inventory{Items: append([]Item(nil), spec.Items...)})
	ecs.Set(w, e, ecs.ActorTurnComponent, ecs.ActorTurn{Initiative: PlayerInitiative, ActionPoints: 1})
	return e
}

// FindPlayer returns the player entity.
func FindPlayer(w *ecs.World) (ecs.Entity, bool) {
	return ecs.First(w, PlayerComponent)
}

// MonsterSpec describes a monster to spawn. ID is generated when empty.
type MonsterSpec struct {
	ID         string
	Type       string
	Pos        Position
	Health     Health
	Renderable Renderable
	Initiative int
	Actions    float64
}

// MonsterFromDef builds a spawn spec from a data definition.
func MonsterFromDef(def *gamedata.MonsterDef, pos Position) MonsterSpec {
	return MonsterSpec{
		Type:       def.Name,
		Pos:        pos,
		Health:     Health{Current: def.HP, Maximum: def.HP},
		Renderable: Renderable{Glyph: def.GlyphRune(), FG: def.Color, BG: "Black"},
		Initiative: def.Initiative,
		Actions:    def.ActionPoints,
	}
}

// SpawnMonster creates a monster that takes part in turn order.
func SpawnMonster(w *ecs.World, spec MonsterSpec) ecs.Entity {
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	e := w.Spawn(KindMonster,
		IdentityComponent,
		PositionComponent,
		HealthComponent,
		RenderableComponent,
		ecs.ActorTurnComponent,
	)
	ecs.Set(w, e, IdentityComponent, Identity{ID: spec.ID, Type: spec.Type})
	ecs.Set(w, e, PositionComponent, spec.Pos)
	ecs.Set(w, e, HealthComponent, spec.Health)
	ecs.Set(w, e, RenderableComponent, spec.Renderable)
	ecs.Set(w, e, ecs.ActorTurnComponent, ecs.ActorTurn{Initiative: spec.Initiative, ActionPoints: spec.Actions})
	return e
}

// SpawnItem places an item on the floor at pos.
func SpawnItem(w *ecs.World, item Item, pos Position) ecs.Entity {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	e := w.Spawn(KindItem, ItemComponent, PositionComponent, RenderableComponent)
	ecs.Set(w, e, ItemComponent, item)
	ecs.Set(w, e, PositionComponent, pos)
	ecs.Set(w, e, RenderableComponent, Renderable{Glyph: '!', FG: "Aqua", BG: "Black"})
	return e
}

// Monsters returns every non-player actor in creation order.
func Monsters(w *ecs.World) []ecs.Entity {
	return ecs.Entities(w, IdentityComponent, ecs.ActorTurnComponent)
}

// FloorItems returns every item lying on the map in creation order.
func FloorItems(w *ecs.World) []ecs.Entity {
	return ecs.Entities(w, ItemComponent, PositionComponent)
}

// Occupied reports whether a living monster or the player stands at pos,
// ignoring self.
func Occupied(w *ecs.World, pos Position, self ecs.Entity) bool {
	for _, e := range ecs.Entities(w, PositionComponent, ecs.ActorTurnComponent) {
		if e == self {
			continue
		}
		p, _ := ecs.Get(w, e, PositionComponent)
		if *p != pos {
			continue
		}
		if h, ok := ecs.Get(w, e, HealthComponent); ok && !h.Alive() {
			continue
		}
		return true
	}
	return false
}

// Package session connects a running game to its save file: it captures the
// world into a save.GameSaveData, rebuilds the world from one, starts new
// games and routes player actions.
package session

import (
	"time"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/entity"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
	"github.com/samdwyer/dungeoncrawl/internal/save"
	"github.com/samdwyer/dungeoncrawl/internal/turn"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// PlayerKey is the EntityPositions key used for the player.
const PlayerKey = "player"

// Fallbacks for monsters whose type is not in the monster registry.
const (
	defaultInitiative = 10
	defaultActions    = 1
)

// Capture builds a snapshot of the running game. A world without a player
// yields the default player.
func Capture(w *ecs.World, d *world.Dungeon, turns *turn.Scheduler, state gamestate.State) *save.GameSaveData {
	data := save.NewGameSaveData()
	data.SaveDate = time.Now().UTC()
	data.CurrentTurn = turns.CurrentTurn()
	data.GameState = state.String()

	if d != nil {
		data.Map = captureMap(d)
	}

	if p, ok := entity.FindPlayer(w); ok {
		player := capturePlayer(w, p)
		data.Player = &player
		data.Map.EntityPositions[PlayerKey] = player.Position

		if inv, ok := ecs.Get(w, p, entity.InventoryComponent); ok {
			for _, it := range inv.Items {
				data.Inventory = append(data.Inventory, itemData(it, nil))
			}
		}
	}

	for _, m := range entity.Monsters(w) {
		ent := monsterData(w, m)
		data.Entities = append(data.Entities, ent)
		data.Map.EntityPositions[ent.ID] = ent.Position
	}

	for _, e := range entity.FloorItems(w) {
		it, _ := ecs.Get(w, e, entity.ItemComponent)
		pos, _ := ecs.Get(w, e, entity.PositionComponent)
		data.Inventory = append(data.Inventory, itemData(*it, &save.Position{X: pos.X, Y: pos.Y}))
	}
	return data
}

func captureMap(d *world.Dungeon) *save.MapSaveData {
	m := save.DefaultMap()
	m.Width = d.Width
	m.Height = d.Height
	m.TileData = make([][]save.TileSaveData, d.Width)
	for x := 0; x < d.Width; x++ {
		col := make([]save.TileSaveData, d.Height)
		for y := 0; y < d.Height; y++ {
			t := d.GetTile(x, y)
			col[y] = save.TileSaveData{
				Type:       t.Name(),
				IsWalkable: t.IsPassable(),
				IsVisible:  d.IsVisible(x, y),
				IsExplored: d.IsExplored(x, y),
				Character:  string(t.Rune()),
			}
		}
		m.TileData[x] = col
	}
	return &m
}

func capturePlayer(w *ecs.World, e ecs.Entity) save.PlayerSaveData {
	out := save.DefaultPlayer()
	if p, ok := ecs.Get(w, e, entity.PlayerComponent); ok {
		out.Name = p.Name
		out.Level = p.Level
		out.Experience = p.Experience
		out.ExperienceToNext = p.ExperienceToNext
	}
	if h, ok := ecs.Get(w, e, entity.HealthComponent); ok {
		out.Health = save.HealthSaveData{Current: h.Current, Maximum: h.Maximum}
	}
	if m, ok := ecs.Get(w, e, entity.ManaComponent); ok {
		out.Mana = save.ManaSaveData{Current: m.Current, Maximum: m.Maximum}
	}
	if s, ok := ecs.Get(w, e, entity.StatsComponent); ok {
		out.Stats = save.StatsSaveData(*s)
	}
	if pos, ok := ecs.Get(w, e, entity.PositionComponent); ok {
		out.Position = save.Position{X: pos.X, Y: pos.Y}
	}
	return out
}

func monsterData(w *ecs.World, e ecs.Entity) save.EntitySaveData {
	var out save.EntitySaveData
	if id, ok := ecs.Get(w, e, entity.IdentityComponent); ok {
		out.ID = id.ID
		out.Type = id.Type
	}
	if pos, ok := ecs.Get(w, e, entity.PositionComponent); ok {
		out.Position = save.Position{X: pos.X, Y: pos.Y}
	}
	if h, ok := ecs.Get(w, e, entity.HealthComponent); ok {
		out.Health = &save.HealthSaveData{Current: h.Current, Maximum: h.Maximum}
	}
	if r, ok := ecs.Get(w, e, entity.RenderableComponent); ok {
		out.Renderable = &save.RenderableSaveData{
			Character:       string(r.Glyph),
			ForegroundColor: r.FG,
			BackgroundColor: r.BG,
		}
	}
	return out
}

func itemData(it entity.Item, pos *save.Position) save.ItemSaveData {
	return save.ItemSaveData{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Type:        it.Type,
		IsStackable: it.Stackable,
		Quantity:    it.Quantity,
		Position:    pos,
	}
}

// Restore clears every gameplay entity from w, respawns the snapshot's
// player, monsters and floor items, rewinds turns and returns the rebuilt
// map together with the state to resume in. monsters may be nil.
func Restore(w *ecs.World, turns *turn.Scheduler, monsters *gamedata.MonsterRegistry, data *save.GameSaveData) (*world.Dungeon, gamestate.State) {
	Clear(w)

	d := restoreMap(data.Map)

	player := data.Player
	if player == nil {
		p := save.DefaultPlayer()
		player = &p
	}
	spec := entity.PlayerSpec{
		Player: entity.Player{
			Name:             player.Name,
			Level:            player.Level,
			Experience:       player.Experience,
			ExperienceToNext: player.ExperienceToNext,
		},
		Health: entity.Health{Current: player.Health.Current, Maximum: player.Health.Maximum},
		Mana:   entity.Mana{Current: player.Mana.Current, Maximum: player.Mana.Maximum},
		Stats:  entity.Stats(player.Stats),
		Pos:    entity.Position{X: player.Position.X, Y: player.Position.Y},
	}
	for _, it := range data.Inventory {
		if it.Position == nil {
			spec.Items = append(spec.Items, item(it))
		}
	}
	entity.SpawnPlayer(w, spec)

	for _, ent := range data.Entities {
		entity.SpawnMonster(w, monsterSpec(ent, monsters))
	}

	for _, it := range data.Inventory {
		if it.Position != nil {
			entity.SpawnItem(w, item(it), entity.Position{X: it.Position.X, Y: it.Position.Y})
		}
	}

	turns.Restore(data.CurrentTurn)

	state, err := gamestate.Parse(data.GameState)
	if err != nil || state == gamestate.Exiting || state == gamestate.MainMenu {
		state = gamestate.Playing
	}
	return d, state
}

// Clear destroys every entity that takes part in play, leaving the
// engine's singletons alone.
func Clear(w *ecs.World) {
	doomed := ecs.Entities(w, entity.PositionComponent)
	doomed = append(doomed, ecs.Entities(w, ecs.ActorTurnComponent)...)
	for _, e := range doomed {
		w.Destroy(e)
	}
}

func restoreMap(m *save.MapSaveData) *world.Dungeon {
	if m == nil || len(m.TileData) == 0 {
		return world.NewPlaceholder()
	}
	d := world.NewDungeon(m.Width, m.Height)
	for x, col := range m.TileData {
		for y, t := range col {
			d.SetTile(x, y, world.ParseTile(t.Type, t.Character))
			d.SetSeen(x, y, t.IsVisible, t.IsExplored)
		}
	}
	return d
}

func monsterSpec(ent save.EntitySaveData, monsters *gamedata.MonsterRegistry) entity.MonsterSpec {
	spec := entity.MonsterSpec{
		ID:         ent.ID,
		Type:       ent.Type,
		Pos:        entity.Position{X: ent.Position.X, Y: ent.Position.Y},
		Initiative: defaultInitiative,
		Actions:    defaultActions,
	}

	var def *gamedata.MonsterDef
	if monsters != nil {
		def = monsters.GetByName(ent.Type)
	}
	if def != nil {
		spec.Initiative = def.Initiative
		spec.Actions = def.ActionPoints
		spec.Health = entity.Health{Current: def.HP, Maximum: def.HP}
	}
	if ent.Health != nil {
		spec.Health = entity.Health{Current: ent.Health.Current, Maximum: ent.Health.Maximum}
	}

	r := save.DefaultRenderable()
	if ent.Renderable != nil {
		r = *ent.Renderable
	}
	spec.Renderable = entity.Renderable{Glyph: firstRune(r.Character), FG: r.ForegroundColor, BG: r.BackgroundColor}
	return spec
}

func item(it save.ItemSaveData) entity.Item {
	return entity.Item{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Type:        it.Type,
		Stackable:   it.IsStackable,
		Quantity:    it.Quantity,
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return '?'
}

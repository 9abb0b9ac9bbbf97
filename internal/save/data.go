package save

import (
	"encoding/json"
	"time"
)

// CurrentVersion is written to every new save.
const CurrentVersion = "1.0"

// GameSaveData is the persisted snapshot of a game. Section pointers and
// slices are nil only when the section is missing from a file; Validate
// rejects such data.
type GameSaveData struct {
	Version     string           `json:"version"`
	SaveDate    time.Time        `json:"saveDate"`
	CurrentTurn int              `json:"currentTurn"`
	GameState   string           `json:"gameState"`
	Player      *PlayerSaveData  `json:"player"`
	Map         *MapSaveData     `json:"map"`
	Entities    []EntitySaveData `json:"entities"`
	Inventory   []ItemSaveData   `json:"inventory"`
}

// PlayerSaveData holds the player character.
type PlayerSaveData struct {
	Name             string         `json:"name"`
	Level            int            `json:"level"`
	Experience       int            `json:"experience"`
	ExperienceToNext int            `json:"experienceToNext"`
	Health           HealthSaveData `json:"health"`
	Mana             ManaSaveData   `json:"mana"`
	Stats            StatsSaveData  `json:"stats"`
	Position         Position       `json:"position"`
}

// MapSaveData holds the map. TileData is column-major: TileData[x][y].
type MapSaveData struct {
	Width           int                 `json:"width"`
	Height          int                 `json:"height"`
	TileData        [][]TileSaveData    `json:"tileData"`
	EntityPositions map[string]Position `json:"entityPositions"`
}

// HealthSaveData holds current and maximum hit points.
type HealthSaveData struct {
	Current int `json:"current"`
	Maximum int `json:"maximum"`
}

// ManaSaveData holds current and maximum mana.
type ManaSaveData struct {
	Current int `json:"current"`
	Maximum int `json:"maximum"`
}

// StatsSaveData holds the player's attributes.
type StatsSaveData struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Intelligence int `json:"intelligence"`
	Constitution int `json:"constitution"`
	AttackPower  int `json:"attackPower"`
	Defense      int `json:"defense"`
}

// Position is a map cell.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TileSaveData is one map cell with its visibility flags.
type TileSaveData struct {
	Type       string `json:"type"`
	IsWalkable bool   `json:"isWalkable"`
	IsVisible  bool   `json:"isVisible"`
	IsExplored bool   `json:"isExplored"`
	Character  string `json:"character"`
}

// EntitySaveData is a non-player entity on the map.
type EntitySaveData struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	Position   Position            `json:"position"`
	Health     *HealthSaveData     `json:"health,omitempty"`
	Renderable *RenderableSaveData `json:"renderable,omitempty"`
}

// RenderableSaveData is a glyph with its colors.
type RenderableSaveData struct {
	Character       string `json:"character"`
	ForegroundColor string `json:"foregroundColor"`
	BackgroundColor string `json:"backgroundColor"`
}

// ItemSaveData is an inventory item. Position is set only for items lying
// in the world.
type ItemSaveData struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	IsStackable bool      `json:"isStackable"`
	Quantity    int       `json:"quantity"`
	Position    *Position `json:"position,omitempty"`
}

// NewGameSaveData returns a complete snapshot populated with defaults.
func NewGameSaveData() *GameSaveData {
	player := DefaultPlayer()
	m := DefaultMap()
	return &GameSaveData{
		Version:     CurrentVersion,
		SaveDate:    time.Now().UTC(),
		CurrentTurn: 1,
		GameState:   "Playing",
		Player:      &player,
		Map:         &m,
		Entities:    []EntitySaveData{},
		Inventory:   []ItemSaveData{},
	}
}

// DefaultPlayer returns a level 1 player with default vitals and stats.
func DefaultPlayer() PlayerSaveData {
	return PlayerSaveData{
		Name:             "Player",
		Level:            1,
		ExperienceToNext: 100,
		Health:           DefaultHealth(),
		Mana:             DefaultMana(),
		Stats:            DefaultStats(),
	}
}

// DefaultMap returns an empty 80x24 map.
func DefaultMap() MapSaveData {
	return MapSaveData{
		Width:           80,
		Height:          24,
		TileData:        [][]TileSaveData{},
		EntityPositions: map[string]Position{},
	}
}

// DefaultHealth returns 100 of 100 hit points.
func DefaultHealth() HealthSaveData { return HealthSaveData{Current: 100, Maximum: 100} }

// DefaultMana returns 50 of 50 mana.
func DefaultMana() ManaSaveData { return ManaSaveData{Current: 50, Maximum: 50} }

// DefaultStats returns 10 in every attribute.
func DefaultStats() StatsSaveData {
	return StatsSaveData{
		Strength:     10,
		Dexterity:    10,
		Intelligence: 10,
		Constitution: 10,
		AttackPower:  10,
		Defense:      10,
	}
}

// DefaultTile returns an unexplored walkable floor tile.
func DefaultTile() TileSaveData {
	return TileSaveData{Type: "Floor", IsWalkable: true, Character: "."}
}

// DefaultRenderable returns a white question mark on black.
func DefaultRenderable() RenderableSaveData {
	return RenderableSaveData{Character: "?", ForegroundColor: "White", BackgroundColor: "Black"}
}

// DefaultItem returns a single generic item.
func DefaultItem() ItemSaveData {
	return ItemSaveData{
		Name:        "Unknown Item",
		Description: "A mysterious item.",
		Type:        "Generic",
		Quantity:    1,
	}
}

// The UnmarshalJSON methods below start from the documented defaults so
// fields missing from a file keep them. Unknown fields are ignored.

func (d *GameSaveData) UnmarshalJSON(b []byte) error {
	type plain GameSaveData
	v := plain{Version: CurrentVersion, GameState: "Playing"}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*d = GameSaveData(v)
	return nil
}

func (p *PlayerSaveData) UnmarshalJSON(b []byte) error {
	type plain PlayerSaveData
	v := plain(DefaultPlayer())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = PlayerSaveData(v)
	return nil
}

func (m *MapSaveData) UnmarshalJSON(b []byte) error {
	type plain MapSaveData
	v := plain{Width: 80, Height: 24}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.TileData == nil {
		v.TileData = [][]TileSaveData{}
	}
	if v.EntityPositions == nil {
		v.EntityPositions = map[string]Position{}
	}
	*m = MapSaveData(v)
	return nil
}

func (h *HealthSaveData) UnmarshalJSON(b []byte) error {
	type plain HealthSaveData
	v := plain(DefaultHealth())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*h = HealthSaveData(v)
	return nil
}

func (m *ManaSaveData) UnmarshalJSON(b []byte) error {
	type plain ManaSaveData
	v := plain(DefaultMana())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = ManaSaveData(v)
	return nil
}

func (s *StatsSaveData) UnmarshalJSON(b []byte) error {
	type plain StatsSaveData
	v := plain(DefaultStats())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = StatsSaveData(v)
	return nil
}

func (t *TileSaveData) UnmarshalJSON(b []byte) error {
	type plain TileSaveData
	v := plain(DefaultTile())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = TileSaveData(v)
	return nil
}

func (e *EntitySaveData) UnmarshalJSON(b []byte) error {
	type plain EntitySaveData
	v := plain{Type: "Unknown"}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*e = EntitySaveData(v)
	return nil
}

func (r *RenderableSaveData) UnmarshalJSON(b []byte) error {
	type plain RenderableSaveData
	v := plain(DefaultRenderable())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = RenderableSaveData(v)
	return nil
}

func (it *ItemSaveData) UnmarshalJSON(b []byte) error {
	type plain ItemSaveData
	v := plain(DefaultItem())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*it = ItemSaveData(v)
	return nil
}

// Clone returns a deep copy of d.
func (d *GameSaveData) Clone() *GameSaveData {
	if d == nil {
		return nil
	}
	c := *d
	if d.Player != nil {
		p := *d.Player
		c.Player = &p
	}
	if d.Map != nil {
		m := *d.Map
		if d.Map.TileData != nil {
			m.TileData = make([][]TileSaveData, len(d.Map.TileData))
			for x, col := range d.Map.TileData {
				m.TileData[x] = append([]TileSaveData(nil), col...)
			}
		}
		if d.Map.EntityPositions != nil {
			m.EntityPositions = make(map[string]Position, len(d.Map.EntityPositions))
			for k, v := range d.Map.EntityPositions {
				m.EntityPositions[k] = v
			}
		}
		c.Map = &m
	}
	if d.Entities != nil {
		c.Entities = make([]EntitySaveData, len(d.Entities))
		for i, e := range d.Entities {
			if e.Health != nil {
				h := *e.Health
				e.Health = &h
			}
			if e.Renderable != nil {
				r := *e.Renderable
				e.Renderable = &r
			}
			c.Entities[i] = e
		}
	}
	if d.Inventory != nil {
		c.Inventory = make([]ItemSaveData, len(d.Inventory))
		for i, it := range d.Inventory {
			if it.Position != nil {
				p := *it.Position
				it.Position = &p
			}
			c.Inventory[i] = it
		}
	}
	return &c
}

package gamedata

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// MonsterDef defines a monster type loaded from monsters.yaml.
type MonsterDef struct {
	ID           string  `yaml:"id"`           // Unique identifier (e.g., "goblin")
	Name         string  `yaml:"name"`         // Display name (e.g., "Goblin")
	Glyph        string  `yaml:"glyph"`        // Single character for rendering (e.g., "g")
	Color        string  `yaml:"color"`        // Color name or hex code (e.g., "Green", "#00FF00")
	HP           int     `yaml:"hp"`           // Base hit points
	Initiative   int     `yaml:"initiative"`   // Turn order priority, higher acts first
	ActionPoints float64 `yaml:"actionPoints"` // Must be positive for the monster to act
	SpawnWeight  int     `yaml:"spawnWeight"`  // Relative spawn frequency (higher = more common)
}

// GlyphRune returns the glyph as a rune for rendering.
func (m *MonsterDef) GlyphRune() rune {
	for _, r := range m.Glyph {
		return r
	}
	return '?'
}

// TCellColor returns the color as a tcell.Color, falling back to white.
func (m *MonsterDef) TCellColor() tcell.Color {
	color, err := ParseColor(m.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

func (m *MonsterDef) validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("monster %q has no id", m.Name)
	case m.HP <= 0:
		return fmt.Errorf("monster %s: hp must be positive", m.ID)
	case m.SpawnWeight < 0:
		return fmt.Errorf("monster %s: spawnWeight must not be negative", m.ID)
	}
	if _, err := ParseColor(m.Color); err != nil {
		return fmt.Errorf("monster %s: %w", m.ID, err)
	}
	return nil
}

// MonstersFile represents the structure of monsters.yaml.
type MonstersFile struct {
	Monsters []MonsterDef `yaml:"monsters"`
}

// LoadMonsters loads and validates monster definitions from monsters.yaml.
func LoadMonsters() ([]MonsterDef, error) {
	file, err := Load[MonstersFile]("monsters.yaml")
	if err != nil {
		return nil, err
	}
	for i := range file.Monsters {
		if err := file.Monsters[i].validate(); err != nil {
			return nil, err
		}
	}
	return file.Monsters, nil
}

// Package world holds the dungeon map.
package world

// Tile represents a single map tile.
type Tile rune

const (
	// TileWall represents an impassable wall tile.
	TileWall Tile = '#'
	// TileFloor represents a passable floor tile.
	TileFloor Tile = '.'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileFloor
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}

// Name returns the tile type as written to save files.
func (t Tile) Name() string {
	switch t {
	case TileWall:
		return "Wall"
	case TileFloor:
		return "Floor"
	default:
		return "Unknown"
	}
}

// ParseTile maps a saved type name or glyph back to a tile. Unknown input
// becomes a wall.
func ParseTile(name, glyph string) Tile {
	switch name {
	case "Floor":
		return TileFloor
	case "Wall":
		return TileWall
	}
	if glyph == string(TileFloor) {
		return TileFloor
	}
	return TileWall
}

package world

import "math/rand"

const (
	// Default dungeon dimensions
	DefaultWidth  = 80
	DefaultHeight = 24

	// sightRadius is how far Reveal marks tiles visible.
	sightRadius = 6
)

// placeholderRooms is the fixed layout used for new games.
var placeholderRooms = []Room{
	{X: 2, Y: 2, Width: 16, Height: 8},
	{X: 30, Y: 8, Width: 20, Height: 9},
	{X: 58, Y: 3, Width: 18, Height: 8},
	{X: 6, Y: 14, Width: 18, Height: 8},
	{X: 56, Y: 15, Width: 20, Height: 7},
}

// Dungeon represents the game map. Tiles, visible and explored are indexed [y][x].
type Dungeon struct {
	Width    int
	Height   int
	Tiles    [][]Tile
	Rooms    []Room
	visible  [][]bool
	explored [][]bool
}

// NewDungeon creates a new dungeon filled with walls.
func NewDungeon(width, height int) *Dungeon {
	d := &Dungeon{
		Width:    width,
		Height:   height,
		Tiles:    make([][]Tile, height),
		visible:  make([][]bool, height),
		explored: make([][]bool, height),
	}
	for y := 0; y < height; y++ {
		d.Tiles[y] = make([]Tile, width)
		d.visible[y] = make([]bool, width)
		d.explored[y] = make([]bool, width)
		for x := range d.Tiles[y] {
			d.Tiles[y][x] = TileWall
		}
	}
	return d
}

// NewPlaceholder returns the fixed default map: five rooms joined in a chain
// of corridors.
func NewPlaceholder() *Dungeon {
	d := NewDungeon(DefaultWidth, DefaultHeight)
	for i, room := range placeholderRooms {
		d.AddRoom(room)
		if i > 0 {
			d.carveCorridor(placeholderRooms[i-1], room)
		}
	}
	return d
}

// AddRoom carves room into the map and records it.
func (d *Dungeon) AddRoom(room Room) {
	d.carveRoom(room)
	d.Rooms = append(d.Rooms, room)
}

// InBounds reports whether the position lies on the map.
func (d *Dungeon) InBounds(x, y int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Height
}

// IsPassable returns true if the given position can be walked on.
func (d *Dungeon) IsPassable(x, y int) bool {
	if !d.InBounds(x, y) {
		return false
	}
	return d.Tiles[y][x].IsPassable()
}

// GetTile returns the tile at the given position.
func (d *Dungeon) GetTile(x, y int) Tile {
	if !d.InBounds(x, y) {
		return TileWall
	}
	return d.Tiles[y][x]
}

// SetTile replaces the tile at the given position.
func (d *Dungeon) SetTile(x, y int, t Tile) {
	if d.InBounds(x, y) {
		d.Tiles[y][x] = t
	}
}

// IsVisible reports whether the tile is in the player's current sight.
func (d *Dungeon) IsVisible(x, y int) bool {
	return d.InBounds(x, y) && d.visible[y][x]
}

// IsExplored reports whether the tile has ever been seen.
func (d *Dungeon) IsExplored(x, y int) bool {
	return d.InBounds(x, y) && d.explored[y][x]
}

// SetSeen sets the visibility flags of a tile directly. Used when restoring a map.
func (d *Dungeon) SetSeen(x, y int, visible, explored bool) {
	if d.InBounds(x, y) {
		d.visible[y][x] = visible
		d.explored[y][x] = explored
	}
}

// Reveal marks tiles within sight of (cx, cy) visible and explored and
// clears visibility everywhere else. Walls do not block sight.
func (d *Dungeon) Reveal(cx, cy int) {
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			dx, dy := x-cx, y-cy
			in := dx*dx+dy*dy <= sightRadius*sightRadius
			d.visible[y][x] = in
			if in {
				d.explored[y][x] = true
			}
		}
	}
}

// RoomIndexAt returns the index of the room containing the position, or -1 if not in a room.
func (d *Dungeon) RoomIndexAt(x, y int) int {
	for i, room := range d.Rooms {
		if room.Contains(x, y) {
			return i
		}
	}
	return -1
}

// RandomPointInRoom returns a random passable point within the specified room.
func (d *Dungeon) RandomPointInRoom(rng *rand.Rand, roomIndex int) (int, int) {
	if roomIndex < 0 || roomIndex >= len(d.Rooms) {
		return -1, -1
	}
	room := d.Rooms[roomIndex]

	// Try random points until we find a passable one (max 100 attempts)
	for i := 0; i < 100; i++ {
		x := room.X + rng.Intn(room.Width)
		y := room.Y + rng.Intn(room.Height)
		if d.IsPassable(x, y) {
			return x, y
		}
	}

	// Fallback to room center
	return room.Center()
}

// carveRoom sets all tiles within the room to floor.
func (d *Dungeon) carveRoom(room Room) {
	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			if x > 0 && x < d.Width-1 && y > 0 && y < d.Height-1 {
				d.Tiles[y][x] = TileFloor
			}
		}
	}
}

// carveCorridor joins two room centers, horizontal leg first.
func (d *Dungeon) carveCorridor(room1, room2 Room) {
	x1, y1 := room1.Center()
	x2, y2 := room2.Center()
	d.carveHorizontalTunnel(x1, x2, y1)
	d.carveVerticalTunnel(y1, y2, x2)
}

// carveHorizontalTunnel carves a horizontal tunnel.
func (d *Dungeon) carveHorizontalTunnel(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		if x > 0 && x < d.Width-1 && y > 0 && y < d.Height-1 {
			d.Tiles[y][x] = TileFloor
		}
	}
}

// carveVerticalTunnel carves a vertical tunnel.
func (d *Dungeon) carveVerticalTunnel(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if x > 0 && x < d.Width-1 && y > 0 && y < d.Height-1 {
			d.Tiles[y][x] = TileFloor
		}
	}
}

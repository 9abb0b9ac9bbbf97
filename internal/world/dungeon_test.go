package world

import (
	"math/rand"
	"testing"
)

func TestPlaceholderLayout(t *testing.T) {
	d := NewPlaceholder()

	if d.Width != DefaultWidth || d.Height != DefaultHeight {
		t.Fatalf("NewPlaceholder() size = %dx%d, want %dx%d", d.Width, d.Height, DefaultWidth, DefaultHeight)
	}

	// Border must be solid
	for x := 0; x < d.Width; x++ {
		if d.IsPassable(x, 0) || d.IsPassable(x, d.Height-1) {
			t.Errorf("border tile at column %d is passable", x)
		}
	}
	for y := 0; y < d.Height; y++ {
		if d.IsPassable(0, y) || d.IsPassable(d.Width-1, y) {
			t.Errorf("border tile at row %d is passable", y)
		}
	}

	// New games start the player here
	if !d.IsPassable(40, 12) {
		t.Error("IsPassable(40, 12) = false, want true")
	}
}

func TestPlaceholderIsReproducible(t *testing.T) {
	d1 := NewPlaceholder()
	d2 := NewPlaceholder()

	for y := 0; y < d1.Height; y++ {
		for x := 0; x < d1.Width; x++ {
			if d1.Tiles[y][x] != d2.Tiles[y][x] {
				t.Errorf("Tile mismatch at (%d,%d): %v != %v", x, y, d1.Tiles[y][x], d2.Tiles[y][x])
			}
		}
	}
}

func TestPlaceholderRoomsConnected(t *testing.T) {
	d := NewPlaceholder()
	sx, sy := d.Rooms[0].Center()

	// Flood fill from the first room
	seen := map[[2]int]bool{{sx, sy}: true}
	stack := [][2]int{{sx, sy}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range [][2]int{{p[0] + 1, p[1]}, {p[0] - 1, p[1]}, {p[0], p[1] + 1}, {p[0], p[1] - 1}} {
			if !seen[n] && d.IsPassable(n[0], n[1]) {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}

	for i, room := range d.Rooms {
		cx, cy := room.Center()
		if !seen[[2]int{cx, cy}] {
			t.Errorf("room %d at (%d,%d) is not reachable", i, cx, cy)
		}
	}
}

func TestGetTileOutOfBounds(t *testing.T) {
	d := NewDungeon(4, 4)
	if got := d.GetTile(-1, 2); got != TileWall {
		t.Errorf("GetTile(-1, 2) = %v, want TileWall", got)
	}
	d.SetTile(99, 99, TileFloor)
	if d.IsPassable(99, 99) {
		t.Error("IsPassable(99, 99) = true, want false")
	}
}

func TestReveal(t *testing.T) {
	d := NewPlaceholder()

	d.Reveal(40, 12)
	if !d.IsVisible(40, 12) || !d.IsExplored(40, 12) {
		t.Error("player tile should be visible and explored after Reveal")
	}
	if d.IsVisible(2, 2) {
		t.Error("IsVisible(2, 2) = true, want false")
	}

	d.Reveal(10, 5)
	if d.IsVisible(40, 12) {
		t.Error("old position should no longer be visible")
	}
	if !d.IsExplored(40, 12) {
		t.Error("old position should stay explored")
	}
}

func TestRandomPointInRoom(t *testing.T) {
	d := NewPlaceholder()
	rng := rand.New(rand.NewSource(12345))

	for i := range d.Rooms {
		x, y := d.RandomPointInRoom(rng, i)
		if d.RoomIndexAt(x, y) != i || !d.IsPassable(x, y) {
			t.Errorf("RandomPointInRoom(%d) = (%d,%d), not a floor tile in that room", i, x, y)
		}
	}
	if x, y := d.RandomPointInRoom(rng, 42); x != -1 || y != -1 {
		t.Errorf("RandomPointInRoom(42) = (%d,%d), want (-1,-1)", x, y)
	}
}

func TestTileNames(t *testing.T) {
	tests := []struct {
		tile Tile
		name string
	}{
		{TileWall, "Wall"},
		{TileFloor, "Floor"},
		{Tile('?'), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.tile.Name(); got != tt.name {
			t.Errorf("Tile(%q).Name() = %q, want %q", tt.tile.Rune(), got, tt.name)
		}
		if tt.name != "Unknown" {
			if got := ParseTile(tt.name, ""); got != tt.tile {
				t.Errorf("ParseTile(%q) = %v, want %v", tt.name, got, tt.tile)
			}
		}
	}
	if got := ParseTile("Mystery", "."); got != TileFloor {
		t.Errorf("ParseTile(Mystery, .) = %v, want TileFloor", got)
	}
}

package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/entity"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// messageLines is how many log messages are shown under the status line.
const messageLines = 3

// View is what the renderer needs from the running game.
type View interface {
	Dungeon() *world.Dungeon
	State() gamestate.State
	Turn() int
}

// Renderer is the subsystem that draws the game every tick.
type Renderer struct {
	screen *Screen
	view   View
	sub    *event.Subscription

	mu       sync.Mutex
	messages []string
}

// NewRenderer creates a renderer for view and starts collecting log
// messages from bus.
func NewRenderer(screen *Screen, view View, bus *event.Bus) *Renderer {
	r := &Renderer{screen: screen, view: view}
	r.sub = event.Subscribe(bus, r.addMessage)
	return r
}

// Close stops collecting messages.
func (r *Renderer) Close() {
	r.sub.Cancel()
}

// Messages returns the most recent log messages, oldest first.
func (r *Renderer) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func (r *Renderer) addMessage(ev event.MessageLogged) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, ev.Text)
	if len(r.messages) > messageLines {
		r.messages = r.messages[len(r.messages)-messageLines:]
	}
}

func (r *Renderer) ShouldRunInState(s gamestate.State) bool {
	return s != gamestate.Exiting
}

func (r *Renderer) Update(w *ecs.World, _ time.Duration) {
	r.Render(w)
}

// Render draws one frame.
func (r *Renderer) Render(w *ecs.World) {
	r.screen.Clear()

	state := r.view.State()
	if state == gamestate.MainMenu {
		r.renderMenu()
	} else {
		dungeon := r.view.Dungeon()
		r.renderMap(dungeon)
		r.renderEntities(w, dungeon)
		r.renderStatus(w, dungeon.Height, state)
	}
	r.renderMessages()

	r.screen.Show()
}

func (r *Renderer) renderMenu() {
	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	plain := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	r.screen.DrawText(2, 2, "DUNGEONCRAWL", title)
	r.screen.DrawText(2, 4, "Enter  new game", plain)
	r.screen.DrawText(2, 5, "L      load game", plain)
	r.screen.DrawText(2, 6, "?      help", plain)
	r.screen.DrawText(2, 7, "q      quit", plain)
}

// renderMap draws visible tiles bright, explored tiles dim and leaves the
// rest blank.
func (r *Renderer) renderMap(d *world.Dungeon) {
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			if !d.IsExplored(x, y) {
				continue
			}
			tile := d.GetTile(x, y)
			r.screen.SetContent(x, y, tile.Rune(), tileStyle(tile, d.IsVisible(x, y)))
		}
	}
}

// tileStyle returns the appropriate style for a tile type.
func tileStyle(tile world.Tile, visible bool) tcell.Style {
	if !visible {
		return tcell.StyleDefault.Foreground(tcell.ColorNavy)
	}
	switch tile {
	case world.TileWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TileFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	default:
		return tcell.StyleDefault
	}
}

// renderEntities draws items, then monsters, then the player, each only
// when standing on a visible tile.
func (r *Renderer) renderEntities(w *ecs.World, d *world.Dungeon) {
	layers := [][]ecs.Entity{entity.FloorItems(w), entity.Monsters(w)}
	if p, ok := entity.FindPlayer(w); ok {
		layers = append(layers, []ecs.Entity{p})
	}
	for _, layer := range layers {
		for _, e := range layer {
			pos, ok := ecs.Get(w, e, entity.PositionComponent)
			if !ok || !d.IsVisible(pos.X, pos.Y) {
				continue
			}
			rd, ok := ecs.Get(w, e, entity.RenderableComponent)
			if !ok {
				continue
			}
			r.screen.SetContent(pos.X, pos.Y, rd.Glyph, renderStyle(rd))
		}
	}
}

func renderStyle(rd *entity.Renderable) tcell.Style {
	fg, err := gamedata.ParseColor(rd.FG)
	if err != nil {
		fg = tcell.ColorWhite
	}
	style := tcell.StyleDefault.Foreground(fg).Bold(true)
	if bg, err := gamedata.ParseColor(rd.BG); err == nil {
		style = style.Background(bg)
	}
	return style
}

func (r *Renderer) renderStatus(w *ecs.World, y int, state gamestate.State) {
	status := fmt.Sprintf("Turn %d  [%s]", r.view.Turn(), state)
	if p, ok := entity.FindPlayer(w); ok {
		pl, _ := ecs.Get(w, p, entity.PlayerComponent)
		hp, _ := ecs.Get(w, p, entity.HealthComponent)
		mp, _ := ecs.Get(w, p, entity.ManaComponent)
		status = fmt.Sprintf("%s  Lv %d  HP %d/%d  MP %d/%d  %s",
			pl.Name, pl.Level, hp.Current, hp.Maximum, mp.Current, mp.Maximum, status)
	}
	r.screen.DrawText(0, y, status, tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true))

	if state == gamestate.Paused {
		r.screen.DrawText(2, 1, " PAUSED - press p to resume ", tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow))
	}
}

func (r *Renderer) renderMessages() {
	_, h := r.screen.Size()
	msgs := r.Messages()
	style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	for i, m := range msgs {
		r.screen.DrawText(0, h-len(msgs)+i, m, style)
	}
}

package session

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/entity"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
	"github.com/samdwyer/dungeoncrawl/internal/turn"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// maxPending bounds the player's typed-ahead actions.
const maxPending = 4

// Driver is the Playing subsystem that hands each actor its turn. Monsters
// wait. The player consumes queued actions until one takes the turn; with
// nothing queued the turn stays open until input arrives.
type Driver struct {
	turns   *turn.Scheduler
	bus     *event.Bus
	dungeon func() *world.Dungeon
	log     *zap.Logger

	pending []event.Action
}

// NewDriver creates a driver. dungeon returns the current map.
func NewDriver(turns *turn.Scheduler, bus *event.Bus, dungeon func() *world.Dungeon, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{turns: turns, bus: bus, dungeon: dungeon, log: log}
}

// Queue adds a turn-taking action for the player. Non-turn actions and
// actions beyond the buffer are dropped.
func (d *Driver) Queue(a event.Action) bool {
	if !a.TakesTurn() || len(d.pending) >= maxPending {
		return false
	}
	d.pending = append(d.pending, a)
	return true
}

// Pending returns the number of queued actions.
func (d *Driver) Pending() int { return len(d.pending) }

// Reset drops every queued action.
func (d *Driver) Reset() { d.pending = d.pending[:0] }

func (d *Driver) ShouldRunInState(s gamestate.State) bool {
	return s == gamestate.Playing
}

func (d *Driver) Update(w *ecs.World, _ time.Duration) {
	for {
		actor := d.turns.NextActor()
		if actor == ecs.Null {
			return
		}
		if !d.turns.CanAct(actor) || !w.Has(actor, entity.PlayerComponent) {
			d.turns.MarkActed(actor)
			continue
		}
		if !d.playerTurn(w, actor) {
			return
		}
		d.turns.MarkActed(actor)
	}
}

// playerTurn performs queued actions until one takes the turn.
func (d *Driver) playerTurn(w *ecs.World, player ecs.Entity) bool {
	for len(d.pending) > 0 {
		a := d.pending[0]
		d.pending = d.pending[1:]
		if d.perform(w, player, a) {
			d.log.Debug("player acted", zap.Stringer("action", a), zap.Int("turn", d.turns.CurrentTurn()))
			return true
		}
	}
	return false
}

func (d *Driver) perform(w *ecs.World, player ecs.Entity, a event.Action) bool {
	if dx, dy, ok := a.Delta(); ok {
		return d.move(w, player, dx, dy)
	}

	switch a {
	case event.ActionWait:
		return true
	case event.ActionPickup:
		it, ok := entity.PickUp(w, player)
		if !ok {
			d.say("There is nothing here to pick up.")
			return false
		}
		d.say(fmt.Sprintf("You pick up the %s.", it.Name))
		return true
	case event.ActionDrop:
		it, ok := entity.Drop(w, player)
		if !ok {
			d.say("You are not carrying anything.")
			return false
		}
		d.say(fmt.Sprintf("You drop the %s.", it.Name))
		return true
	}
	return false
}

func (d *Driver) move(w *ecs.World, player ecs.Entity, dx, dy int) bool {
	pos, ok := ecs.Get(w, player, entity.PositionComponent)
	if !ok {
		return false
	}
	dungeon := d.dungeon()
	next := entity.Position{X: pos.X + dx, Y: pos.Y + dy}

	if !dungeon.IsPassable(next.X, next.Y) {
		return false
	}
	if entity.Occupied(w, next, player) {
		d.say("Something blocks your way.")
		return false
	}

	*pos = next
	dungeon.Reveal(next.X, next.Y)
	return true
}

func (d *Driver) say(text string) {
	event.Publish(d.bus, event.MessageLogged{Text: text})
}

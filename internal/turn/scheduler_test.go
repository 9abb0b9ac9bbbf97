package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/event"
)

func spawnActor(w *ecs.World, initiative int, points float64) ecs.Entity {
	e := w.Spawn("actor", ecs.ActorTurnComponent)
	ecs.Set(w, e, ecs.ActorTurnComponent, ecs.ActorTurn{Initiative: initiative, ActionPoints: points})
	return e
}

// drain walks the turn the way the engine does and returns the acting order.
func drain(s *Scheduler) []ecs.Entity {
	var order []ecs.Entity
	for {
		e := s.NextActor()
		if e == ecs.Null {
			return order
		}
		order = append(order, e)
		s.MarkActed(e)
	}
}

func TestNewSchedulerDefaults(t *testing.T) {
	s := NewScheduler(ecs.NewWorld(), nil)

	assert.Equal(t, 1, s.CurrentTurn())
	assert.False(t, s.InProgress())
	assert.Equal(t, ecs.Null, s.CurrentActor())
	assert.Empty(t, s.Queue())
}

func TestDescendingInitiativeOrder(t *testing.T) {
	w := ecs.NewWorld()
	low := spawnActor(w, 5, 1)
	high := spawnActor(w, 20, 1)
	mid := spawnActor(w, 10, 1)

	s := NewScheduler(w, nil)
	s.BeginTurn()

	assert.Equal(t, high, s.CurrentActor(), "first queued actor is current after BeginTurn")
	assert.Equal(t, []ecs.Entity{high, mid, low}, s.Queue())
	assert.Equal(t, []ecs.Entity{high, mid, low}, drain(s))
}

func TestEqualInitiativeKeepsCreationOrder(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnActor(w, 10, 1)
	b := spawnActor(w, 15, 1)
	c := spawnActor(w, 10, 1)
	d := spawnActor(w, 10, 1)

	s := NewScheduler(w, nil)
	s.BeginTurn()

	assert.Equal(t, []ecs.Entity{b, a, c, d}, s.Queue())
}

func TestBeginTurnIsIdempotent(t *testing.T) {
	w := ecs.NewWorld()
	bus := event.NewBus()
	started := 0
	event.Subscribe(bus, func(event.TurnStarted) { started++ })

	a := spawnActor(w, 1, 1)
	s := NewScheduler(w, bus)
	s.BeginTurn()
	s.MarkActed(a)

	spawnActor(w, 99, 1)
	s.BeginTurn()

	assert.Equal(t, 1, started)
	assert.Len(t, s.Queue(), 1, "queue is a snapshot, not refreshed mid-turn")
	assert.False(t, s.CanAct(a), "second BeginTurn must not reset acted flags")
}

func TestBeginTurnResetsActedFlags(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnActor(w, 1, 1)
	s := NewScheduler(w, nil)

	s.BeginTurn()
	s.MarkActed(a)
	s.EndTurn()
	require.False(t, s.CanAct(a))

	s.BeginTurn()
	assert.True(t, s.CanAct(a))
}

func TestNextActorIsSideEffectFree(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnActor(w, 3, 1)
	spawnActor(w, 1, 1)
	s := NewScheduler(w, nil)
	s.BeginTurn()

	assert.Equal(t, a, s.NextActor())
	assert.Equal(t, a, s.NextActor(), "actor is returned again until marked")
}

func TestNextActorSkipsRemovedEntities(t *testing.T) {
	w := ecs.NewWorld()
	first := spawnActor(w, 30, 1)
	second := spawnActor(w, 20, 1)
	third := spawnActor(w, 10, 1)

	s := NewScheduler(w, nil)
	s.BeginTurn()
	w.Destroy(second)

	assert.Equal(t, []ecs.Entity{first, third}, drain(s))
}

func TestCanActAndMarkActed(t *testing.T) {
	w := ecs.NewWorld()
	ready := spawnActor(w, 1, 1.5)
	exhausted := spawnActor(w, 1, 0)
	bystander := w.Spawn("rock")

	s := NewScheduler(w, nil)

	assert.True(t, s.CanAct(ready))
	s.MarkActed(ready)
	assert.False(t, s.CanAct(ready))

	assert.False(t, s.CanAct(exhausted))
	assert.False(t, s.CanAct(bystander))
	assert.NotPanics(t, func() { s.MarkActed(bystander) })
	assert.NotPanics(t, func() { s.MarkActed(ecs.Null) })
}

func TestMarkActedDoesNotAdvanceCurrentActor(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnActor(w, 2, 1)
	spawnActor(w, 1, 1)
	s := NewScheduler(w, nil)
	s.BeginTurn()

	s.MarkActed(a)
	assert.Equal(t, a, s.CurrentActor())
}

func TestEndTurn(t *testing.T) {
	w := ecs.NewWorld()
	bus := event.NewBus()
	var ended []int
	event.Subscribe(bus, func(ev event.TurnEnded) { ended = append(ended, ev.Turn) })

	spawnActor(w, 1, 1)
	s := NewScheduler(w, bus)

	s.EndTurn()
	assert.Equal(t, 1, s.CurrentTurn(), "EndTurn without a turn in progress is a no-op")

	for i := 0; i < 3; i++ {
		before := s.CurrentTurn()
		s.BeginTurn()
		drain(s)
		s.EndTurn()
		assert.Equal(t, before+1, s.CurrentTurn())
		assert.False(t, s.InProgress())
		assert.Equal(t, ecs.Null, s.CurrentActor())
		assert.Empty(t, s.Queue())
	}

	assert.Equal(t, []int{1, 2, 3}, ended)
}

func TestEmptyTurn(t *testing.T) {
	s := NewScheduler(ecs.NewWorld(), nil)
	s.BeginTurn()

	assert.Equal(t, ecs.Null, s.CurrentActor())
	assert.Equal(t, ecs.Null, s.NextActor())
	s.EndTurn()
	assert.Equal(t, 2, s.CurrentTurn())
}

func TestRestore(t *testing.T) {
	w := ecs.NewWorld()
	spawnActor(w, 1, 1)
	s := NewScheduler(w, nil)
	s.BeginTurn()

	s.Restore(150)
	assert.Equal(t, 150, s.CurrentTurn())
	assert.False(t, s.InProgress())

	s.Restore(-3)
	assert.Equal(t, 1, s.CurrentTurn())
}

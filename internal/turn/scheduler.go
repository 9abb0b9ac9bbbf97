// Package turn orders actors within a turn and tracks who has acted.
package turn

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/event"
)

// Scheduler builds a per-turn queue of actors sorted by initiative and hands
// out the next actor that has not acted yet.
//
// Ending a turn is the caller's job: when NextActor returns ecs.Null the
// orchestrator must call EndTurn.
type Scheduler struct {
	world *ecs.World
	bus   *event.Bus
	log   *zap.Logger

	currentTurn  int
	inProgress   bool
	currentActor ecs.Entity
	queue        []ecs.Entity
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// NewScheduler creates a scheduler over world that publishes turn events on bus.
func NewScheduler(world *ecs.World, bus *event.Bus, opts ...Option) *Scheduler {
	s := &Scheduler{
		world:        world,
		bus:          bus,
		log:          zap.NewNop(),
		currentTurn:  1,
		currentActor: ecs.Null,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentTurn returns the turn number, starting at 1.
func (s *Scheduler) CurrentTurn() int { return s.currentTurn }

// InProgress reports whether a turn has begun and not yet ended.
func (s *Scheduler) InProgress() bool { return s.inProgress }

// CurrentActor returns the actor most recently handed out, or ecs.Null.
func (s *Scheduler) CurrentActor() ecs.Entity { return s.currentActor }

// Queue returns a copy of this turn's actor order.
func (s *Scheduler) Queue() []ecs.Entity { return slices.Clone(s.queue) }

// BeginTurn snapshots every actor into the queue, highest initiative first,
// and clears their acted flags. It does nothing while a turn is in progress.
func (s *Scheduler) BeginTurn() {
	if s.inProgress {
		return
	}
	s.inProgress = true

	// Entities come back in creation order, so the stable sort breaks
	// initiative ties by creation sequence.
	s.queue = ecs.Entities(s.world, ecs.ActorTurnComponent)
	slices.SortStableFunc(s.queue, func(a, b ecs.Entity) int {
		return cmp.Compare(s.initiative(b), s.initiative(a))
	})

	for _, e := range s.queue {
		if at, ok := ecs.Get(s.world, e, ecs.ActorTurnComponent); ok {
			at.HasActed = false
		}
	}

	s.log.Debug("turn started", zap.Int("turn", s.currentTurn), zap.Int("actors", len(s.queue)))
	event.Publish(s.bus, event.TurnStarted{Turn: s.currentTurn})

	s.currentActor = ecs.Null
	if len(s.queue) > 0 {
		s.currentActor = s.queue[0]
	}
}

// NextActor returns the first queued actor that still exists and has not
// acted, and makes it current. It returns ecs.Null when none remain.
// It does not mark anyone as acted.
func (s *Scheduler) NextActor() ecs.Entity {
	for _, e := range s.queue {
		at, ok := ecs.Get(s.world, e, ecs.ActorTurnComponent)
		if !ok || at.HasActed {
			continue
		}
		s.currentActor = e
		return e
	}
	return ecs.Null
}

// CanAct reports whether e carries ActorTurn, has not acted and has action points.
func (s *Scheduler) CanAct(e ecs.Entity) bool {
	at, ok := ecs.Get(s.world, e, ecs.ActorTurnComponent)
	if !ok {
		return false
	}
	return !at.HasActed && at.ActionPoints > 0
}

// MarkActed records that e has acted this turn. Unknown entities are ignored.
func (s *Scheduler) MarkActed(e ecs.Entity) {
	if at, ok := ecs.Get(s.world, e, ecs.ActorTurnComponent); ok {
		at.HasActed = true
	}
}

// EndTurn closes the current turn and advances the counter by one.
// It does nothing when no turn is in progress.
func (s *Scheduler) EndTurn() {
	if !s.inProgress {
		return
	}

	s.log.Debug("turn ended", zap.Int("turn", s.currentTurn))
	event.Publish(s.bus, event.TurnEnded{Turn: s.currentTurn})

	s.currentTurn++
	s.inProgress = false
	s.queue = nil
	s.currentActor = ecs.Null
}

// Restore resets the scheduler to the start of turn. Used after loading a save.
func (s *Scheduler) Restore(turn int) {
	if turn < 1 {
		turn = 1
	}
	s.currentTurn = turn
	s.inProgress = false
	s.queue = nil
	s.currentActor = ecs.Null
}

func (s *Scheduler) initiative(e ecs.Entity) int {
	if at, ok := ecs.Get(s.world, e, ecs.ActorTurnComponent); ok {
		return at.Initiative
	}
	return 0
}

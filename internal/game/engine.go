// Package game provides the frame loop, the game state machine and subsystem
// dispatch.
package game

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
	"github.com/samdwyer/dungeoncrawl/internal/turn"
)

// Subsystem is driven by the engine once per tick in the states it opts into.
// Implementations are compared by identity, so use pointer receivers.
type Subsystem interface {
	Update(world *ecs.World, dt time.Duration)
	ShouldRunInState(s gamestate.State) bool
}

// Engine owns the world, the turn scheduler and the state machine and runs
// the frame loop.
type Engine struct {
	cfg    Config
	world  *ecs.World
	bus    *event.Bus
	turns  *turn.Scheduler
	states *StateMachine
	log    *zap.Logger
	tracer trace.Tracer
	now    func() time.Time

	systems       []Subsystem
	turnCompleted []func(turn int)

	initialized bool
	running     atomic.Bool
	elapsed     time.Duration
	startTime   time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithTracer overrides the tracer used for engine spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine over world. Events go to bus, which may be nil.
func New(cfg Config, world *ecs.World, bus *event.Bus, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg.withDefaults(),
		world:  world,
		bus:    bus,
		log:    zap.NewNop(),
		tracer: telemetry.Tracer("engine"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.turns = turn.NewScheduler(world, bus, turn.WithLogger(e.log.Named("turn")))
	e.states = NewStateMachine(bus, e.log.Named("state"))
	return e
}

// World returns the entity store.
func (e *Engine) World() *ecs.World { return e.world }

// Bus returns the event bus.
func (e *Engine) Bus() *event.Bus { return e.bus }

// Turns returns the turn scheduler.
func (e *Engine) Turns() *turn.Scheduler { return e.turns }

// States returns the state machine.
func (e *Engine) States() *StateMachine { return e.states }

// State returns the current game state.
func (e *Engine) State() gamestate.State { return e.states.Current() }

// IsRunning reports whether the engine is initialized and has not stopped.
func (e *Engine) IsRunning() bool { return e.running.Load() }

// Elapsed returns the accumulated tick time.
func (e *Engine) Elapsed() time.Duration { return e.elapsed }

// Initialize creates the time and session singletons and starts the engine
// in MainMenu. Calling it again has no effect.
func (e *Engine) Initialize(ctx context.Context) {
	if e.initialized {
		return
	}
	_, span := e.tracer.Start(ctx, "engine.initialize")
	defer span.End()

	e.startTime = e.now()
	ecs.Singleton(e.world, ecs.GameTimeComponent, "game_time")
	_, session := ecs.Singleton(e.world, ecs.GameSessionComponent, "game_session")
	session.SaveName = e.cfg.SaveName
	session.StartTime = e.startTime

	e.initialized = true
	e.running.Store(true)
	e.states.Change(gamestate.MainMenu)
	e.syncClock()

	span.SetAttributes(
		attribute.Int("engine.systems", len(e.systems)),
		attribute.Int64("engine.tick_ms", e.cfg.TickRate.Milliseconds()),
	)
	e.log.Info("engine initialized", zap.Duration("tick", e.cfg.TickRate))
}

// Shutdown stops the engine. Later ticks are ignored.
func (e *Engine) Shutdown() {
	if e.running.CompareAndSwap(true, false) {
		e.log.Info("engine shut down", zap.Int("turn", e.turns.CurrentTurn()))
	}
}

// Register adds s to the tick dispatch list. Registering the same subsystem
// twice has no effect; the return value reports whether s was added.
func (e *Engine) Register(s Subsystem) bool {
	if s == nil || slices.Contains(e.systems, s) {
		return false
	}
	e.systems = append(e.systems, s)
	e.log.Debug("subsystem registered", zap.Int("count", len(e.systems)))
	return true
}

// Unregister removes s. It returns false if s was not registered.
func (e *Engine) Unregister(s Subsystem) bool {
	i := slices.Index(e.systems, s)
	if i < 0 {
		return false
	}
	e.systems = slices.Delete(e.systems, i, i+1)
	return true
}

// Systems returns the registered subsystems in registration order.
func (e *Engine) Systems() []Subsystem {
	return slices.Clone(e.systems)
}

// OnTurnCompleted registers fn to run after every finished turn.
func (e *Engine) OnTurnCompleted(fn func(turn int)) {
	e.turnCompleted = append(e.turnCompleted, fn)
}

// ChangeState transitions the state machine.
func (e *Engine) ChangeState(ctx context.Context, next gamestate.State) bool {
	if next == e.states.Current() {
		return false
	}
	_, span := e.tracer.Start(ctx, "state.change", trace.WithAttributes(
		attribute.String("state.from", e.states.Current().String()),
		attribute.String("state.to", next.String()),
	))
	defer span.End()
	return e.states.Change(next)
}

// Update runs one tick. It panics if the engine was never initialized.
func (e *Engine) Update(ctx context.Context, dt time.Duration) {
	if !e.initialized {
		panic("game: Engine.Update called before Initialize")
	}
	if !e.running.Load() {
		return
	}

	e.elapsed += dt
	e.syncClock()

	switch st := e.states.Current(); st {
	case gamestate.Playing:
		e.processTurn(ctx, dt)
	case gamestate.Exiting:
		e.Shutdown()
	default:
		e.runSystems(dt)
	}
}

// Run ticks at the configured rate until the state becomes Exiting, the
// engine is shut down, or ctx is cancelled. It panics if the engine was
// never initialized.
func (e *Engine) Run(ctx context.Context) error {
	if !e.initialized {
		panic("game: Engine.Run called before Initialize")
	}
	ticker := time.NewTicker(e.cfg.TickRate)
	defer ticker.Stop()

	last := e.now()
	for e.running.Load() && e.states.Current() != gamestate.Exiting {
		select {
		case <-ctx.Done():
			e.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			now := e.now()
			e.Update(ctx, now.Sub(last))
			last = now
		}
	}
	e.Shutdown()
	return nil
}

// processTurn begins a turn if needed, runs the Playing subsystems and ends
// the turn once no actor is left to act.
func (e *Engine) processTurn(ctx context.Context, dt time.Duration) {
	if !e.turns.InProgress() {
		_, span := e.tracer.Start(ctx, "turn.begin")
		e.turns.BeginTurn()
		span.SetAttributes(
			attribute.Int("turn.number", e.turns.CurrentTurn()),
			attribute.Int("turn.actors", len(e.turns.Queue())),
		)
		span.End()
	}

	e.runSystems(dt)

	// A subsystem may have reset the scheduler, e.g. by loading a save.
	if !e.turns.InProgress() || e.turns.NextActor() != ecs.Null {
		return
	}

	finished := e.turns.CurrentTurn()
	_, span := e.tracer.Start(ctx, "turn.end", trace.WithAttributes(
		attribute.Int("turn.number", finished),
	))
	e.turns.EndTurn()
	span.End()

	e.syncClock()
	for _, fn := range e.turnCompleted {
		fn(finished)
	}
}

// runSystems calls every subsystem that opts into the current state. The
// state is re-read per subsystem so a transition mid-tick takes effect
// immediately.
func (e *Engine) runSystems(dt time.Duration) {
	for _, s := range slices.Clone(e.systems) {
		if s.ShouldRunInState(e.states.Current()) {
			s.Update(e.world, dt)
		}
	}
}

func (e *Engine) syncClock() {
	_, clock := ecs.Singleton(e.world, ecs.GameTimeComponent, "game_time")
	clock.Turn = e.turns.CurrentTurn()
	clock.RealTimeSeconds = e.elapsed.Seconds()

	_, session := ecs.Singleton(e.world, ecs.GameSessionComponent, "game_session")
	session.PlayTimeSeconds = int(e.elapsed / time.Second)
}

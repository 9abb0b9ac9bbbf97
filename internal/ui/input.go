package ui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
)

// inputBuffer is how many terminal events may wait for the next tick.
const inputBuffer = 64

// EventSource produces terminal events. PollEvent returns nil once the
// source is closed.
type EventSource interface {
	PollEvent() tcell.Event
}

// Input is the subsystem that hands terminal events to the game. Poll runs
// on its own goroutine and feeds a channel; Update drains it on the engine
// goroutine and publishes ActionRequested for every bound key.
type Input struct {
	events chan tcell.Event
	bus    *event.Bus
	screen *Screen
	log    *zap.Logger
}

// NewInput creates the input subsystem. screen is synced on resize and may
// be nil.
func NewInput(bus *event.Bus, screen *Screen, log *zap.Logger) *Input {
	if log == nil {
		log = zap.NewNop()
	}
	return &Input{
		events: make(chan tcell.Event, inputBuffer),
		bus:    bus,
		screen: screen,
		log:    log,
	}
}

// Poll forwards events from src until it is closed or ctx is done.
func (in *Input) Poll(ctx context.Context, src EventSource) error {
	for {
		ev := src.PollEvent()
		if ev == nil {
			return nil
		}
		select {
		case in.events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// Push queues ev as if it had been polled. It reports false when the buffer is full.
func (in *Input) Push(ev tcell.Event) bool {
	select {
	case in.events <- ev:
		return true
	default:
		return false
	}
}

func (in *Input) ShouldRunInState(gamestate.State) bool { return true }

func (in *Input) Update(_ *ecs.World, _ time.Duration) {
	for {
		select {
		case ev := <-in.events:
			in.handle(ev)
		default:
			return
		}
	}
}

func (in *Input) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a := ActionFor(ev)
		if a == event.ActionNone {
			return
		}
		in.log.Debug("key", zap.Stringer("action", a))
		event.Publish(in.bus, event.ActionRequested{Action: a})
	case *tcell.EventResize:
		if in.screen != nil {
			in.screen.Sync()
		}
	}
}

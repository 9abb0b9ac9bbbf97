package game

import (
	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
)

// Hook runs on a state transition.
type Hook func(from, to gamestate.State)

// StateMachine holds the current game state and runs exit and enter hooks
// around every transition. Any state may follow any other; callers decide
// which transitions make sense.
type StateMachine struct {
	current   gamestate.State
	enter     map[gamestate.State][]Hook
	exit      map[gamestate.State][]Hook
	listeners []func(gamestate.State)
	returnTo  map[gamestate.State]gamestate.State
	bus       *event.Bus
	log       *zap.Logger
}

// NewStateMachine creates a machine in MainMenu. Entering Paused publishes
// GamePaused and leaving it publishes GameResumed.
func NewStateMachine(bus *event.Bus, log *zap.Logger) *StateMachine {
	if log == nil {
		log = zap.NewNop()
	}
	m := &StateMachine{
		current:  gamestate.MainMenu,
		enter:    make(map[gamestate.State][]Hook),
		exit:     make(map[gamestate.State][]Hook),
		returnTo: make(map[gamestate.State]gamestate.State),
		bus:      bus,
		log:      log,
	}

	m.OnEnter(gamestate.Paused, func(_, _ gamestate.State) {
		event.Publish(m.bus, event.GamePaused{})
	})
	m.OnExit(gamestate.Paused, func(_, _ gamestate.State) {
		event.Publish(m.bus, event.GameResumed{})
	})
	return m
}

// Current returns the active state.
func (m *StateMachine) Current() gamestate.State {
	return m.current
}

// OnEnter registers fn to run after s becomes current.
func (m *StateMachine) OnEnter(s gamestate.State, fn Hook) {
	m.enter[s] = append(m.enter[s], fn)
}

// OnExit registers fn to run before s stops being current.
func (m *StateMachine) OnExit(s gamestate.State, fn Hook) {
	m.exit[s] = append(m.exit[s], fn)
}

// OnChange registers fn to receive every new state.
func (m *StateMachine) OnChange(fn func(gamestate.State)) {
	m.listeners = append(m.listeners, fn)
}

// Change moves to next. A transition to the current state does nothing and
// returns false.
func (m *StateMachine) Change(next gamestate.State) bool {
	prev := m.current
	if next == prev {
		return false
	}

	for _, fn := range m.exit[prev] {
		fn(prev, next)
	}
	m.current = next
	for _, fn := range m.enter[next] {
		fn(prev, next)
	}

	m.log.Info("state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
	)

	for _, fn := range m.listeners {
		fn(next)
	}
	event.Publish(m.bus, event.StateChanged{State: next, Previous: prev})
	return true
}

// Toggle enters s, or returns to the state s was entered from when s is
// already current. Playing is the fallback.
func (m *StateMachine) Toggle(s gamestate.State) bool {
	if m.current == s {
		back, ok := m.returnTo[s]
		if !ok || back == s {
			back = gamestate.Playing
		}
		delete(m.returnTo, s)
		return m.Change(back)
	}
	m.returnTo[s] = m.current
	return m.Change(s)
}

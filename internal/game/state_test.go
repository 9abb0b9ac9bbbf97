package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
)

func TestStateMachineStartsInMainMenu(t *testing.T) {
	m := NewStateMachine(nil, nil)
	assert.Equal(t, gamestate.MainMenu, m.Current())
}

func TestSelfTransitionIsSilent(t *testing.T) {
	bus := event.NewBus()
	m := NewStateMachine(bus, nil)

	fired := 0
	event.Subscribe(bus, func(event.StateChanged) { fired++ })
	m.OnChange(func(gamestate.State) { fired++ })
	m.OnEnter(gamestate.MainMenu, func(_, _ gamestate.State) { fired++ })
	m.OnExit(gamestate.MainMenu, func(_, _ gamestate.State) { fired++ })

	assert.False(t, m.Change(gamestate.MainMenu))
	assert.Zero(t, fired)
}

func TestTransitionOrder(t *testing.T) {
	bus := event.NewBus()
	m := NewStateMachine(bus, nil)
	var order []string

	m.OnExit(gamestate.MainMenu, func(from, to gamestate.State) {
		order = append(order, "exit "+from.String()+" current="+m.Current().String())
	})
	m.OnEnter(gamestate.Playing, func(from, to gamestate.State) {
		order = append(order, "enter "+to.String()+" current="+m.Current().String())
	})
	m.OnChange(func(s gamestate.State) { order = append(order, "local "+s.String()) })
	event.Subscribe(bus, func(ev event.StateChanged) {
		order = append(order, "bus "+ev.Previous.String()+"->"+ev.State.String())
	})

	assert.True(t, m.Change(gamestate.Playing))
	assert.Equal(t, []string{
		"exit MainMenu current=MainMenu",
		"enter Playing current=Playing",
		"local Playing",
		"bus MainMenu->Playing",
	}, order)
}

func TestPauseNotifications(t *testing.T) {
	bus := event.NewBus()
	m := NewStateMachine(bus, nil)
	var got []string
	event.Subscribe(bus, func(event.GamePaused) { got = append(got, "paused") })
	event.Subscribe(bus, func(event.GameResumed) { got = append(got, "resumed") })

	m.Change(gamestate.Playing)
	m.Change(gamestate.Paused)
	m.Change(gamestate.Paused)
	m.Change(gamestate.Playing)

	assert.Equal(t, []string{"paused", "resumed"}, got)
}

func TestAnyTransitionAllowed(t *testing.T) {
	m := NewStateMachine(nil, nil)
	for _, from := range gamestate.All() {
		for _, to := range gamestate.All() {
			m.Change(from)
			m.Change(to)
			assert.Equal(t, to, m.Current(), "%v -> %v", from, to)
		}
	}
}

func TestToggle(t *testing.T) {
	m := NewStateMachine(nil, nil)
	m.Change(gamestate.Playing)

	m.Toggle(gamestate.Inventory)
	assert.Equal(t, gamestate.Inventory, m.Current())
	m.Toggle(gamestate.Inventory)
	assert.Equal(t, gamestate.Playing, m.Current())

	m.Change(gamestate.GameOver)
	m.Toggle(gamestate.Paused)
	m.Toggle(gamestate.Paused)
	assert.Equal(t, gamestate.GameOver, m.Current())

	// Entered directly, so there is nothing recorded to go back to.
	m.Change(gamestate.Paused)
	m.Toggle(gamestate.Paused)
	assert.Equal(t, gamestate.Playing, m.Current())
}

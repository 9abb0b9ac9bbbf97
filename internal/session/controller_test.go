package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/dungeoncrawl/internal/entity"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
)

func request(h *harness, a event.Action) {
	event.Publish(h.bus, event.ActionRequested{Action: a})
}

func TestControllerNewGameOnlyFromMenu(t *testing.T) {
	h := newHarness(t)
	c := NewController(context.Background(), h.session)
	defer c.Close()

	request(h, event.ActionNewGame)
	require.Equal(t, gamestate.Playing, h.engine.State())

	request(h, event.ActionMoveEast)
	request(h, event.ActionNewGame)
	assert.Equal(t, 1, h.session.Driver().Pending(), "new game is ignored while playing")
}

func TestControllerQuit(t *testing.T) {
	h := newHarness(t)
	c := NewController(context.Background(), h.session)
	defer c.Close()

	request(h, event.ActionQuit)
	assert.Equal(t, gamestate.Exiting, h.engine.State())
}

func TestControllerPauseAndInventoryToggle(t *testing.T) {
	h := newHarness(t)
	c := NewController(context.Background(), h.session)
	defer c.Close()

	request(h, event.ActionPause)
	assert.Equal(t, gamestate.MainMenu, h.engine.State(), "no pausing from the menu")

	request(h, event.ActionNewGame)
	request(h, event.ActionPause)
	assert.Equal(t, gamestate.Paused, h.engine.State())
	request(h, event.ActionPause)
	assert.Equal(t, gamestate.Playing, h.engine.State())

	request(h, event.ActionInventory)
	assert.Equal(t, gamestate.Inventory, h.engine.State())
	request(h, event.ActionMoveEast)
	assert.Zero(t, h.session.Driver().Pending(), "moves are ignored outside Playing")
	request(h, event.ActionInventory)
	assert.Equal(t, gamestate.Playing, h.engine.State())
}

func TestControllerSaveAndLoad(t *testing.T) {
	h := newHarness(t)
	c := NewController(context.Background(), h.session)
	defer c.Close()

	var order []string
	event.Subscribe(h.bus, func(event.SaveRequested) { order = append(order, "save-requested") })
	event.Subscribe(h.bus, func(event.GameSaved) { order = append(order, "saved") })
	event.Subscribe(h.bus, func(event.LoadRequested) { order = append(order, "load-requested") })
	event.Subscribe(h.bus, func(event.GameLoaded) { order = append(order, "loaded") })

	request(h, event.ActionNewGame)
	request(h, event.ActionSave)
	require.True(t, h.saves.Exists())

	request(h, event.ActionMoveEast)
	h.engine.Update(context.Background(), tick)
	require.Equal(t, entity.Position{X: 41, Y: 12}, h.position(t))

	request(h, event.ActionLoad)
	assert.Equal(t, entity.Position{X: 40, Y: 12}, h.position(t))
	assert.Equal(t, 1, h.engine.Turns().CurrentTurn())
	assert.Equal(t, []string{"save-requested", "saved", "load-requested", "loaded"}, order)
}

func TestControllerMessages(t *testing.T) {
	h := newHarness(t)
	c := NewController(context.Background(), h.session)
	defer c.Close()

	var messages []string
	event.Subscribe(h.bus, func(ev event.MessageLogged) { messages = append(messages, ev.Text) })

	request(h, event.ActionHelp)
	request(h, event.ActionNewGame)
	request(h, event.ActionCharacter)
	request(h, event.ActionInventory)

	assert.Contains(t, messages, HelpText)
	assert.Contains(t, messages, "Hero, level 1  HP 100/100  MP 50/50  XP 0/100")
	assert.Contains(t, messages, "Your pack is empty.")
}

func TestControllerClose(t *testing.T) {
	h := newHarness(t)
	c := NewController(context.Background(), h.session)
	c.Close()

	request(h, event.ActionQuit)
	assert.Equal(t, gamestate.MainMenu, h.engine.State())
}

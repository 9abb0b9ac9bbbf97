package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/entity"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
)

// HelpText lists the key bindings.
const HelpText = "Move: arrows/hjkl/wasd  Wait: space  g: pick up  D: drop  i: inventory  c: character  p: pause  S: save  L: load  q: quit"

// Controller turns ActionRequested events into session operations.
type Controller struct {
	ctx     context.Context
	session *Session
	scope   event.Scope
	log     *zap.Logger
}

// NewController subscribes to the session's bus. ctx is used for the
// saves, loads and state changes the controller triggers.
func NewController(ctx context.Context, s *Session) *Controller {
	c := &Controller{ctx: ctx, session: s, log: s.log.Named("controller")}
	c.scope.Add(event.Subscribe(s.engine.Bus(), c.handle))
	return c
}

// Close unsubscribes the controller.
func (c *Controller) Close() {
	c.scope.Close()
}

func (c *Controller) handle(ev event.ActionRequested) {
	engine := c.session.engine
	bus := engine.Bus()
	state := engine.State()

	c.log.Debug("action requested", zap.Stringer("action", ev.Action), zap.Stringer("state", state))

	switch ev.Action {
	case event.ActionQuit:
		engine.ChangeState(c.ctx, gamestate.Exiting)

	case event.ActionNewGame:
		if state == gamestate.MainMenu || state == gamestate.GameOver {
			c.session.NewGame(c.ctx)
		}

	case event.ActionSave:
		event.Publish(bus, event.SaveRequested{})
		if err := c.session.Save(c.ctx); err != nil {
			c.log.Debug("save failed", zap.Error(err))
		}

	case event.ActionLoad:
		event.Publish(bus, event.LoadRequested{})
		if err := c.session.Load(c.ctx); err != nil {
			c.log.Debug("load failed", zap.Error(err))
		}

	case event.ActionPause:
		if state == gamestate.Playing || state == gamestate.Paused {
			engine.States().Toggle(gamestate.Paused)
		}

	case event.ActionInventory:
		if state == gamestate.Playing || state == gamestate.Inventory {
			engine.States().Toggle(gamestate.Inventory)
		}
		if engine.State() == gamestate.Inventory {
			c.say(c.inventoryLine())
		}

	case event.ActionCharacter:
		if c.session.InGame() {
			c.say(c.characterLine())
		}

	case event.ActionHelp:
		c.say(HelpText)

	default:
		if state == gamestate.Playing {
			c.session.driver.Queue(ev.Action)
		}
	}
}

func (c *Controller) say(text string) {
	event.Publish(c.session.engine.Bus(), event.MessageLogged{Text: text})
}

func (c *Controller) inventoryLine() string {
	w := c.session.engine.World()
	p, ok := entity.FindPlayer(w)
	if !ok {
		return "You have no pack."
	}
	inv, _ := ecs.Get(w, p, entity.InventoryComponent)
	if inv == nil || len(inv.Items) == 0 {
		return "Your pack is empty."
	}
	names := make([]string, len(inv.Items))
	for i, it := range inv.Items {
		names[i] = it.Name
		if it.Quantity > 1 {
			names[i] = fmt.Sprintf("%s x%d", it.Name, it.Quantity)
		}
	}
	return "You carry: " + strings.Join(names, ", ")
}

func (c *Controller) characterLine() string {
	w := c.session.engine.World()
	p, _ := entity.FindPlayer(w)
	pl, _ := ecs.Get(w, p, entity.PlayerComponent)
	hp, _ := ecs.Get(w, p, entity.HealthComponent)
	mp, _ := ecs.Get(w, p, entity.ManaComponent)
	return fmt.Sprintf("%s, level %d  HP %d/%d  MP %d/%d  XP %d/%d",
		pl.Name, pl.Level, hp.Current, hp.Maximum, mp.Current, mp.Maximum, pl.Experience, pl.ExperienceToNext)
}

package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeoncrawl/internal/event"
)

var keyActions = map[tcell.Key]event.Action{
	tcell.KeyUp:     event.ActionMoveNorth,
	tcell.KeyDown:   event.ActionMoveSouth,
	tcell.KeyRight:  event.ActionMoveEast,
	tcell.KeyLeft:   event.ActionMoveWest,
	tcell.KeyEnter:  event.ActionNewGame,
	tcell.KeyEscape: event.ActionQuit,
	tcell.KeyCtrlQ:  event.ActionQuit,
	tcell.KeyCtrlC:  event.ActionQuit,
	tcell.KeyCtrlS:  event.ActionSave,
	tcell.KeyCtrlL:  event.ActionLoad,
	tcell.KeyF1:     event.ActionHelp,
}

var runeActions = map[rune]event.Action{
	'k': event.ActionMoveNorth,
	'w': event.ActionMoveNorth,
	'j': event.ActionMoveSouth,
	's': event.ActionMoveSouth,
	'l': event.ActionMoveEast,
	'd': event.ActionMoveEast,
	'h': event.ActionMoveWest,
	'a': event.ActionMoveWest,
	' ': event.ActionWait,
	'.': event.ActionWait,
	'g': event.ActionPickup,
	'D': event.ActionDrop,
	'i': event.ActionInventory,
	'c': event.ActionCharacter,
	'S': event.ActionSave,
	'L': event.ActionLoad,
	'q': event.ActionQuit,
	'Q': event.ActionQuit,
	'?': event.ActionHelp,
	'p': event.ActionPause,
	'P': event.ActionPause,
}

// Lookup maps a key press to an action. Unbound keys map to ActionNone.
func Lookup(key tcell.Key, r rune) event.Action {
	if key == tcell.KeyRune {
		return runeActions[r]
	}
	return keyActions[key]
}

// ActionFor maps a tcell key event to an action.
func ActionFor(ev *tcell.EventKey) event.Action {
	return Lookup(ev.Key(), ev.Rune())
}

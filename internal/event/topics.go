package event

import (
	"github.com/yohamta/donburi"

	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
)

// StateChanged is published after every non-trivial state transition.
type StateChanged struct {
	State    gamestate.State
	Previous gamestate.State
}

// TurnStarted is published when a turn begins.
type TurnStarted struct {
	Turn int
}

// TurnEnded is published when a turn ends, before the counter advances.
type TurnEnded struct {
	Turn int
}

// GamePaused is published when the Paused state is entered.
type GamePaused struct{}

// GameResumed is published when the Paused state is left.
type GameResumed struct{}

// SaveRequested is published before a save is attempted.
type SaveRequested struct{}

// LoadRequested is published before a load is attempted.
type LoadRequested struct{}

// GameSaved is published after a save file was written.
type GameSaved struct {
	Path string
}

// GameLoaded is published after a save file was read and validated.
type GameLoaded struct {
	Path string
}

// SaveLoadError carries a human-readable persistence failure.
type SaveLoadError struct {
	Message string
}

// MessageLogged is a line for the in-game message log.
type MessageLogged struct {
	Text string
}

// EntityCreated is published when gameplay code spawns an entity.
type EntityCreated struct {
	Entity donburi.Entity
	Kind   string
}

// EntityDestroyed is published when gameplay code removes an entity.
type EntityDestroyed struct {
	Entity donburi.Entity
}

// ActionRequested is issued by the presentation layer for a player command.
type ActionRequested struct {
	Action Action
}

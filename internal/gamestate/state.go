// Package gamestate defines the high-level game states shared by the engine,
// the event bus and save files.
package gamestate

import "fmt"

// State represents the current high-level game state.
type State int

const (
	// MainMenu is the initial state before a game is started or loaded.
	MainMenu State = iota
	// Playing runs turn processing.
	Playing
	// Paused suspends turn processing until resumed.
	Paused
	// Inventory shows the player's items; turns do not advance.
	Inventory
	// GameOver is entered when the run has ended.
	GameOver
	// Exiting is terminal: the engine loop stops on its next check.
	Exiting
)

var names = [...]string{
	MainMenu:  "MainMenu",
	Playing:   "Playing",
	Paused:    "Paused",
	Inventory: "Inventory",
	GameOver:  "GameOver",
	Exiting:   "Exiting",
}

// String returns the state name as written to save files.
func (s State) String() string {
	if s < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s >= MainMenu && s <= Exiting
}

// Parse converts a state name back into a State.
func Parse(name string) (State, error) {
	for i, n := range names {
		if n == name {
			return State(i), nil
		}
	}
	return MainMenu, fmt.Errorf("unknown game state %q", name)
}

// All returns every state in declaration order.
func All() []State {
	return []State{MainMenu, Playing, Paused, Inventory, GameOver, Exiting}
}

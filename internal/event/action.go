package event

// Action is a player command produced by the input layer.
type Action int

const (
	ActionNone Action = iota
	ActionMoveNorth
	ActionMoveSouth
	ActionMoveEast
	ActionMoveWest
	ActionWait
	ActionPickup
	ActionDrop
	ActionInventory
	ActionCharacter
	ActionSave
	ActionLoad
	ActionQuit
	ActionHelp
	ActionPause
	ActionNewGame
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionMoveNorth:
		return "move north"
	case ActionMoveSouth:
		return "move south"
	case ActionMoveEast:
		return "move east"
	case ActionMoveWest:
		return "move west"
	case ActionWait:
		return "wait"
	case ActionPickup:
		return "pickup"
	case ActionDrop:
		return "drop"
	case ActionInventory:
		return "inventory"
	case ActionCharacter:
		return "character"
	case ActionSave:
		return "save"
	case ActionLoad:
		return "load"
	case ActionQuit:
		return "quit"
	case ActionHelp:
		return "help"
	case ActionPause:
		return "pause"
	case ActionNewGame:
		return "new game"
	default:
		return "none"
	}
}

// Delta returns the movement offset for directional actions.
func (a Action) Delta() (dx, dy int, ok bool) {
	switch a {
	case ActionMoveNorth:
		return 0, -1, true
	case ActionMoveSouth:
		return 0, 1, true
	case ActionMoveEast:
		return 1, 0, true
	case ActionMoveWest:
		return -1, 0, true
	default:
		return 0, 0, false
	}
}

// TakesTurn reports whether the action consumes the player's turn.
func (a Action) TakesTurn() bool {
	switch a {
	case ActionMoveNorth, ActionMoveSouth, ActionMoveEast, ActionMoveWest,
		ActionWait, ActionPickup, ActionDrop:
		return true
	default:
		return false
	}
}

package ecs

import (
	"time"

	"github.com/yohamta/donburi"
)

// Spawn is attached to every entity created through World.Spawn.
type Spawn struct {
	Seq  uint64
	Kind string
}

// ActorTurn marks an entity that takes part in turn order.
type ActorTurn struct {
	Initiative   int     // higher acts first
	HasActed     bool    // reset when a turn begins
	ActionPoints float64 // must be positive to act
}

// GameTime mirrors the engine's counters. Rewritten every tick.
type GameTime struct {
	Turn            int
	RealTimeSeconds float64
}

// GameSession holds bookkeeping for the running game.
type GameSession struct {
	SaveName        string
	StartTime       time.Time
	PlayTimeSeconds int
}

var (
	SpawnComponent       = donburi.NewComponentType[Spawn]()
	ActorTurnComponent   = donburi.NewComponentType[ActorTurn]()
	GameTimeComponent    = donburi.NewComponentType[GameTime]()
	GameSessionComponent = donburi.NewComponentType[GameSession]()
)

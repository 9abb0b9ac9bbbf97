package game

import "time"

// DefaultTickRate targets roughly 60 ticks per second.
const DefaultTickRate = time.Second / 60

// Config holds engine options.
type Config struct {
	// TickRate is the interval between frame loop iterations.
	TickRate time.Duration

	// SaveName is recorded in the GameSession singleton.
	SaveName string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		TickRate: DefaultTickRate,
		SaveName: "quicksave",
	}
}

func (c Config) withDefaults() Config {
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	if c.SaveName == "" {
		c.SaveName = "quicksave"
	}
	return c
}

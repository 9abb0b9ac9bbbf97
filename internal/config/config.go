// Package config loads game configuration from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "dungeoncrawl.toml"

type Config struct {
	Game      GameConfig      `toml:"game"`
	Save      SaveConfig      `toml:"save"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

type GameConfig struct {
	TickRate     time.Duration `toml:"tick_rate" env:"DUNGEONCRAWL_TICK_RATE"`
	Seed         int64         `toml:"seed" env:"DUNGEONCRAWL_SEED"` // 0 = random
	MonsterCount int           `toml:"monster_count" env:"DUNGEONCRAWL_MONSTERS"`
}

type SaveConfig struct {
	Dir  string `toml:"dir" env:"DUNGEONCRAWL_SAVE_DIR"`
	Slot string `toml:"slot" env:"DUNGEONCRAWL_SAVE_SLOT"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"DUNGEONCRAWL_LOG_LEVEL"`
	Format string `toml:"format" env:"DUNGEONCRAWL_LOG_FORMAT"` // "json" or "console"
	File   string `toml:"file" env:"DUNGEONCRAWL_LOG_FILE"`     // empty = stderr
}

type TelemetryConfig struct {
	Enabled  bool              `toml:"enabled" env:"DUNGEONCRAWL_TELEMETRY"`
	Endpoint string            `toml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers  map[string]string `toml:"headers" env:"DUNGEONCRAWL_TELEMETRY_HEADERS"`
	APIKey   string            `toml:"-" env:"HONEYCOMB_DUNGEONCRAWL_API_KEY"`
	Dataset  string            `toml:"dataset" env:"HONEYCOMB_DUNGEONCRAWL_DATASET"`
}

// ExportHeaders merges Headers with the Honeycomb key and dataset, if set.
func (t TelemetryConfig) ExportHeaders() map[string]string {
	h := make(map[string]string, len(t.Headers)+2)
	for k, v := range t.Headers {
		h[k] = v
	}
	if t.APIKey != "" {
		h["x-honeycomb-team"] = t.APIKey
		h["x-honeycomb-dataset"] = t.Dataset
	}
	return h
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			TickRate:     time.Second / 60,
			MonsterCount: 4,
		},
		Save: SaveConfig{
			Dir:  "saves",
			Slot: "quicksave",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "dungeoncrawl.log",
		},
		Telemetry: TelemetryConfig{
			Endpoint: "https://api.honeycomb.io",
			Dataset:  "dungeoncrawl",
		},
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (a missing file is not an error), then environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *Config) Validate() error {
	if c.Game.TickRate <= 0 {
		return fmt.Errorf("game.tick_rate must be positive, got %s", c.Game.TickRate)
	}
	if c.Game.MonsterCount < 0 {
		return fmt.Errorf("game.monster_count must not be negative, got %d", c.Game.MonsterCount)
	}
	if c.Save.Slot == "" {
		return errors.New("save.slot must not be empty")
	}
	if c.Save.Dir == "" {
		return errors.New("save.dir must not be empty")
	}
	return nil
}

package session

import (
	"context"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/entity"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/game"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/gamestate"
	"github.com/samdwyer/dungeoncrawl/internal/save"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// New game defaults.
const (
	DefaultPlayerName   = "Hero"
	DefaultMonsterCount = 4
	startX, startY      = 40, 12
)

// starterItems are scattered on the floor of a new game.
var starterItems = []entity.Item{
	{Name: "Healing Potion", Description: "Restores a little health.", Type: "Consumable", Stackable: true, Quantity: 1},
	{Name: "Torch", Description: "A sputtering torch.", Type: "Tool", Quantity: 1},
}

// Session owns the current map and connects the engine to the save service.
type Session struct {
	engine   *game.Engine
	saves    *save.Service
	monsters *gamedata.MonsterRegistry
	rng      *rand.Rand
	dungeon  *world.Dungeon
	driver   *Driver

	playerName   string
	monsterCount int

	log    *zap.Logger
	tracer trace.Tracer
}

// Option configures a Session.
type Option func(*Session)

// WithMonsters sets the registry new games spawn monsters from and restores
// look up initiative in.
func WithMonsters(r *gamedata.MonsterRegistry) Option {
	return func(s *Session) { s.monsters = r }
}

// WithSeed seeds monster placement.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithMonsterCount sets how many monsters a new game spawns.
func WithMonsterCount(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.monsterCount = n
		}
	}
}

// WithPlayerName overrides the new game character name.
func WithPlayerName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.playerName = name
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTracer overrides the tracer used for capture and restore spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New creates a session over engine with the placeholder map loaded and
// registers its turn driver with the engine.
func New(engine *game.Engine, saves *save.Service, opts ...Option) *Session {
	s := &Session{
		engine:       engine,
		saves:        saves,
		rng:          rand.New(rand.NewSource(1)),
		dungeon:      world.NewPlaceholder(),
		playerName:   DefaultPlayerName,
		monsterCount: DefaultMonsterCount,
		log:          zap.NewNop(),
		tracer:       telemetry.Tracer("session"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.driver = NewDriver(engine.Turns(), engine.Bus(), s.Dungeon, s.log.Named("driver"))
	engine.Register(s.driver)
	return s
}

// Dungeon returns the current map.
func (s *Session) Dungeon() *world.Dungeon { return s.dungeon }

// Driver returns the turn driver.
func (s *Session) Driver() *Driver { return s.driver }

// Engine returns the engine the session drives.
func (s *Session) Engine() *game.Engine { return s.engine }

// State returns the engine's current state.
func (s *Session) State() gamestate.State { return s.engine.State() }

// Turn returns the current turn number.
func (s *Session) Turn() int { return s.engine.Turns().CurrentTurn() }

// InGame reports whether a game is under way, i.e. saving makes sense.
func (s *Session) InGame() bool {
	switch s.engine.State() {
	case gamestate.Playing, gamestate.Paused, gamestate.Inventory:
		_, ok := entity.FindPlayer(s.engine.World())
		return ok
	default:
		return false
	}
}

// NewGame discards the current world, builds the placeholder map, spawns
// the player, monsters and starter items and enters Playing.
func (s *Session) NewGame(ctx context.Context) {
	w := s.engine.World()
	Clear(w)
	s.driver.Reset()

	s.dungeon = world.NewPlaceholder()
	start := entity.Position{X: startX, Y: startY}
	entity.SpawnPlayer(w, entity.NewPlayerSpec(s.playerName, start))
	s.dungeon.Reveal(start.X, start.Y)

	s.spawnMonsters(w, s.dungeon.RoomIndexAt(start.X, start.Y))
	for i, it := range starterItems {
		room := (i + 2) % len(s.dungeon.Rooms)
		x, y := s.dungeon.RandomPointInRoom(s.rng, room)
		entity.SpawnItem(w, it, entity.Position{X: x, Y: y})
	}

	s.engine.Turns().Restore(1)
	s.engine.ChangeState(ctx, gamestate.Playing)

	s.log.Info("new game started",
		zap.String("player", s.playerName),
		zap.Int("monsters", len(entity.Monsters(w))),
	)
	event.Publish(s.engine.Bus(), event.MessageLogged{Text: fmt.Sprintf("Welcome to the dungeon, %s.", s.playerName)})
}

func (s *Session) spawnMonsters(w *ecs.World, playerRoom int) {
	if s.monsters == nil || len(s.dungeon.Rooms) < 2 {
		return
	}
	for i := 0; i < s.monsterCount; i++ {
		def := s.monsters.SpawnRandom(s.rng)
		if def == nil {
			return
		}
		room := s.rng.Intn(len(s.dungeon.Rooms))
		if room == playerRoom {
			room = (room + 1) % len(s.dungeon.Rooms)
		}
		x, y := s.dungeon.RandomPointInRoom(s.rng, room)
		pos := entity.Position{X: x, Y: y}
		if entity.Occupied(w, pos, ecs.Null) {
			continue
		}
		entity.SpawnMonster(w, entity.MonsterFromDef(def, pos))
	}
}

// Capture snapshots the running game.
func (s *Session) Capture(ctx context.Context) *save.GameSaveData {
	_, span := s.tracer.Start(ctx, "session.capture")
	defer span.End()

	data := Capture(s.engine.World(), s.dungeon, s.engine.Turns(), s.engine.State())
	span.SetAttributes(
		attribute.Int("save.turn", data.CurrentTurn),
		attribute.Int("save.entities", len(data.Entities)),
		attribute.Int("save.items", len(data.Inventory)),
	)
	return data
}

// Restore replaces the running game with data and resumes in its state.
func (s *Session) Restore(ctx context.Context, data *save.GameSaveData) {
	ctx, span := s.tracer.Start(ctx, "session.restore", trace.WithAttributes(
		attribute.Int("save.turn", data.CurrentTurn),
		attribute.String("save.state", data.GameState),
	))
	defer span.End()

	s.driver.Reset()
	d, state := Restore(s.engine.World(), s.engine.Turns(), s.monsters, data)
	s.dungeon = d
	s.engine.ChangeState(ctx, state)

	s.log.Info("game restored",
		zap.Int("turn", data.CurrentTurn),
		zap.Stringer("state", state),
	)
}

// Save captures the game and writes it to the save slot.
func (s *Session) Save(ctx context.Context) error {
	return s.saves.Save(ctx, s.Capture(ctx))
}

// Load reads the save slot and restores it. On failure the running game is
// left untouched.
func (s *Session) Load(ctx context.Context) error {
	data, err := s.saves.Load(ctx)
	if err != nil {
		return err
	}
	s.Restore(ctx, data)
	return nil
}

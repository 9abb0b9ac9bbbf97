// Package main is the entry point for dungeoncrawl.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/dungeoncrawl/internal/config"
	"github.com/samdwyer/dungeoncrawl/internal/ecs"
	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/game"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/logging"
	"github.com/samdwyer/dungeoncrawl/internal/save"
	"github.com/samdwyer/dungeoncrawl/internal/session"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
	"github.com/samdwyer/dungeoncrawl/internal/ui"
)

func main() {
	// Load .env file for local development
	// This makes HONEYCOMB_DUNGEONCRAWL_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	if err := run(); err != nil {
		log.Fatalf("dungeoncrawl: %v", err)
	}
}

func run() error {
	path := os.Getenv("DUNGEONCRAWL_CONFIG")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Headers:  cfg.Telemetry.ExportHeaders(),
	})
	if err != nil {
		// Continue without telemetry - game still works
		logger.Warn("telemetry setup failed, running without tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	monsters, err := gamedata.LoadMonsterRegistry()
	if err != nil {
		return fmt.Errorf("load monsters: %w", err)
	}

	bus := event.NewBus(event.WithLogger(logger.Named("bus")))
	world := ecs.NewWorld(ecs.WithBus(bus), ecs.WithLogger(logger.Named("ecs")))
	engine := game.New(game.Config{
		TickRate: cfg.Game.TickRate,
		SaveName: cfg.Save.Slot,
	}, world, bus, game.WithLogger(logger.Named("engine")))

	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	// Input goes first so a key pressed this tick is acted on this tick.
	input := ui.NewInput(bus, screen, logger.Named("input"))
	engine.Register(input)

	var sess *session.Session
	saves := save.NewService(cfg.Save.Dir,
		save.WithSlot(cfg.Save.Slot),
		save.WithBus(bus),
		save.WithLogger(logger.Named("save")),
		save.WithSavePolicy(func() bool { return sess.InGame() }),
	)
	sess = session.New(engine, saves,
		session.WithMonsters(monsters),
		session.WithSeed(seed),
		session.WithMonsterCount(cfg.Game.MonsterCount),
		session.WithLogger(logger.Named("session")),
	)

	controller := session.NewController(ctx, sess)
	defer controller.Close()

	renderer := ui.NewRenderer(screen, sess, bus)
	defer renderer.Close()
	engine.Register(renderer)

	logger.Info("starting",
		zap.String("save_path", saves.Path()),
		zap.Int64("seed", seed),
		zap.Int("monster_types", monsters.Count()),
	)
	engine.Initialize(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Closing the screen unblocks the input poller.
		defer screen.Close()
		err := engine.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return input.Poll(gctx, screen)
	})

	err = g.Wait()
	logger.Info("exiting", zap.Int("turn", engine.Turns().CurrentTurn()))
	return err
}

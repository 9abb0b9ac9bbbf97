package save

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
)

type captured struct {
	mu       sync.Mutex
	errors   []string
	saved    []string
	loaded   []string
	messages []string
}

func (c *captured) errs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errors...)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *captured) {
	t.Helper()
	bus := event.NewBus()
	c := &captured{}
	event.Subscribe(bus, func(ev event.SaveLoadError) {
		c.mu.Lock()
		c.errors = append(c.errors, ev.Message)
		c.mu.Unlock()
	})
	event.Subscribe(bus, func(ev event.GameSaved) {
		c.mu.Lock()
		c.saved = append(c.saved, ev.Path)
		c.mu.Unlock()
	})
	event.Subscribe(bus, func(ev event.GameLoaded) {
		c.mu.Lock()
		c.loaded = append(c.loaded, ev.Path)
		c.mu.Unlock()
	})
	event.Subscribe(bus, func(ev event.MessageLogged) {
		c.mu.Lock()
		c.messages = append(c.messages, ev.Text)
		c.mu.Unlock()
	})

	opts = append([]Option{WithBus(bus), WithTracer(telemetry.NoopTracer())}, opts...)
	return NewService(t.TempDir(), opts...), c
}

func advancedSave() *GameSaveData {
	d := NewGameSaveData()
	d.CurrentTurn = 150
	d.GameState = "Paused"
	d.Player.Name = "AdvancedPlayer"
	d.Player.Level = 7
	d.Player.Experience = 3400
	d.Player.ExperienceToNext = 4000
	d.Player.Health = HealthSaveData{Current: 85, Maximum: 120}
	d.Player.Mana = ManaSaveData{Current: 12, Maximum: 60}
	d.Player.Stats = StatsSaveData{Strength: 15, Dexterity: 12, Intelligence: 8, Constitution: 14, AttackPower: 20, Defense: 11}
	d.Player.Position = Position{X: 25, Y: 18}
	d.Map = &MapSaveData{
		Width:  2,
		Height: 3,
		TileData: [][]TileSaveData{
			{{Type: "Wall", Character: "#"}, DefaultTile(), {Type: "Wall", Character: "#", IsExplored: true}},
			{DefaultTile(), {Type: "Floor", IsWalkable: true, IsVisible: true, Character: "."}, DefaultTile()},
		},
		EntityPositions: map[string]Position{"orc-1": {X: 1, Y: 1}, "goblin-2": {X: 0, Y: 1}},
	}
	d.Entities = []EntitySaveData{
		{
			ID: "orc-1", Type: "Orc", Position: Position{X: 1, Y: 1},
			Health:     &HealthSaveData{Current: 30, Maximum: 40},
			Renderable: &RenderableSaveData{Character: "o", ForegroundColor: "Red", BackgroundColor: "Black"},
		},
		{ID: "goblin-2", Type: "Goblin", Position: Position{X: 0, Y: 1}},
	}
	d.Inventory = []ItemSaveData{
		{ID: "potion-1", Name: "Health Potion", Description: "Restores health.", Type: "Consumable", IsStackable: true, Quantity: 3},
		{ID: "sword-1", Name: "Iron Sword", Description: "A plain blade.", Type: "Weapon", Quantity: 1, Position: &Position{X: 4, Y: 5}},
	}
	return d
}

func TestSaveLoadRoundTrip(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()
	want := advancedSave()

	require.NoError(t, svc.Save(ctx, want))
	assert.True(t, svc.Exists())
	assert.Equal(t, []string{svc.Path()}, c.saved)

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, want.SaveDate.Equal(got.SaveDate))
	got.SaveDate = want.SaveDate
	assert.Equal(t, want, got)
	assert.Equal(t, []string{svc.Path()}, c.loaded)
	assert.Equal(t, []string{"Game saved successfully", "Game loaded successfully"}, c.messages)
	assert.Empty(t, c.errs())
}

func TestSaveStampsDate(t *testing.T) {
	stamp := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	svc, _ := newTestService(t, WithClock(func() time.Time { return stamp }))
	d := NewGameSaveData()

	require.NoError(t, svc.Save(context.Background(), d))
	assert.Equal(t, stamp, d.SaveDate)
}

func TestFailedSaveKeepsDate(t *testing.T) {
	stamp := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	svc, _ := newTestService(t, WithClock(func() time.Time { return stamp }))
	d := NewGameSaveData()
	before := d.SaveDate
	d.Player = nil

	err := svc.Save(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.Equal(t, before, d.SaveDate)
	assert.False(t, svc.Exists())

	d.Player = NewGameSaveData().Player
	require.NoError(t, svc.Save(context.Background(), d))
	assert.Equal(t, stamp, d.SaveDate)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, NewGameSaveData()))
	require.NoError(t, svc.Save(ctx, advancedSave()))

	entries, err := os.ReadDir(filepath.Dir(svc.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "quicksave.json", entries[0].Name())
}

func TestLoadMissingFile(t *testing.T) {
	svc, c := newTestService(t)

	data, err := svc.Load(context.Background())

	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, []string{"No save file found"}, c.errs())
}

func TestLoadCorruptFilesIsNonDestructive(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    Kind
		prefix  string
	}{
		{"empty", "", KindEmpty, "Save file is empty or corrupted"},
		{"whitespace", "  \n\t ", KindEmpty, "Save file is empty or corrupted"},
		{"malformed", `{"version": "1.0", "player": {`, KindCorrupt, "Corrupted save file detected: "},
		{"not json", "this is not json", KindCorrupt, "Corrupted save file detected: "},
		{"null", "null", KindCorrupt, "Failed to parse save file"},
		{"wrong type", `{"currentTurn": "many"}`, KindCorrupt, "Corrupted save file detected: "},
		{"missing sections", `{"version": "1.0"}`, KindInvalid, "Save file format is invalid or corrupted"},
		{"empty version", `{"version": "", "player": {}, "map": {}, "entities": [], "inventory": []}`, KindInvalid, "Save file format is invalid or corrupted"},
		{"bad grid", `{"player": {}, "map": {"width": 2, "height": 1, "tileData": [[{}]]}, "entities": [], "inventory": []}`, KindInvalid, "Save file format is invalid or corrupted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, c := newTestService(t)
			require.NoError(t, os.WriteFile(svc.Path(), []byte(tt.content), 0o644))

			data, err := svc.Load(context.Background())

			assert.Nil(t, data)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			require.Len(t, c.errs(), 1)
			assert.NotEmpty(t, c.errs()[0])
			assert.Contains(t, c.errs()[0], tt.prefix)

			after, rerr := os.ReadFile(svc.Path())
			require.NoError(t, rerr, "corrupt file must not be deleted")
			assert.Equal(t, tt.content, string(after), "corrupt file must not be modified")
		})
	}
}

func TestLoadAppliesDefaultsAndToleratesUnknownFields(t *testing.T) {
	svc, _ := newTestService(t)
	doc := `{
		"futureField": {"nested": true},
		"player": {"name": "Sparse", "mystery": 1},
		"map": {},
		"entities": [{"id": "e1", "renderable": {}}],
		"inventory": [{"id": "i1"}]
	}`
	require.NoError(t, os.WriteFile(svc.Path(), []byte(doc), 0o644))

	d, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.0", d.Version)
	assert.Equal(t, "Playing", d.GameState)
	assert.Equal(t, "Sparse", d.Player.Name)
	assert.Equal(t, 1, d.Player.Level)
	assert.Equal(t, 100, d.Player.ExperienceToNext)
	assert.Equal(t, DefaultHealth(), d.Player.Health)
	assert.Equal(t, DefaultMana(), d.Player.Mana)
	assert.Equal(t, DefaultStats(), d.Player.Stats)
	assert.Equal(t, 80, d.Map.Width)
	assert.Equal(t, 24, d.Map.Height)
	assert.Equal(t, "Unknown", d.Entities[0].Type)
	assert.Nil(t, d.Entities[0].Health)
	assert.Equal(t, DefaultRenderable(), *d.Entities[0].Renderable)
	assert.Equal(t, "Unknown Item", d.Inventory[0].Name)
	assert.Equal(t, 1, d.Inventory[0].Quantity)
	assert.Nil(t, d.Inventory[0].Position)
}

func TestSaveRejectsIncompleteData(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	err := svc.Save(ctx, nil)
	assert.Equal(t, KindNoData, KindOf(err))

	d := NewGameSaveData()
	d.Player = nil
	err = svc.Save(ctx, d)
	assert.ErrorIs(t, err, ErrInvalid)

	assert.False(t, svc.Exists())
	assert.Equal(t, "No game data to save", c.errs()[0])
	assert.Len(t, c.errs(), 2)
}

func TestSaveNormalizesNilLists(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d := NewGameSaveData()
	d.Entities = nil
	d.Inventory = nil

	require.NoError(t, svc.Save(ctx, d))
	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got.Entities)
	assert.NotNil(t, got.Inventory)
}

func TestSavePolicy(t *testing.T) {
	svc, c := newTestService(t, WithSavePolicy(func() bool { return false }))

	err := svc.Save(context.Background(), NewGameSaveData())

	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, []string{"Cannot save during combat or menu screens"}, c.errs())
	assert.False(t, svc.Exists())
}

func TestSaveIntoRemovedDirectory(t *testing.T) {
	svc, c := newTestService(t)
	require.NoError(t, os.RemoveAll(filepath.Dir(svc.Path())))

	err := svc.Save(context.Background(), NewGameSaveData())

	require.Error(t, err)
	assert.Equal(t, KindDirectory, KindOf(err))
	assert.Len(t, c.errs(), 1)
}

func TestLoadPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	svc, c := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Save(ctx, NewGameSaveData()))
	require.NoError(t, os.Chmod(svc.Path(), 0o000))
	t.Cleanup(func() { _ = os.Chmod(svc.Path(), 0o644) })

	data, err := svc.Load(ctx)

	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrPermission)
	assert.Contains(t, c.errs()[0], "File permission error")
}

func TestDelete(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	deleted, err := svc.Delete()
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, svc.Save(ctx, NewGameSaveData()))
	deleted, err = svc.Delete()
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, svc.Exists())
	assert.Contains(t, c.messages, "Save file deleted")
}

func TestInfo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Info()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Save(ctx, advancedSave()))
	first, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, svc.Path(), first.Path)
	assert.Positive(t, first.Size)
	assert.Len(t, first.Digest, 16)

	again, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, first.Digest, again.Digest)

	require.NoError(t, svc.Save(ctx, NewGameSaveData()))
	changed, err := svc.Info()
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest, changed.Digest)
}

func TestWithSlot(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir, WithSlot("../slot2.json"), WithTracer(telemetry.NoopTracer()))

	assert.Equal(t, "slot2", svc.Slot())
	assert.Equal(t, filepath.Join(dir, "slot2.json"), svc.Path())
}

func TestNewServiceCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "saves")
	NewService(dir, WithTracer(telemetry.NoopTracer()))

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestAsyncOperations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d := advancedSave()

	require.NoError(t, <-svc.SaveAsync(ctx, d))

	res := <-svc.LoadAsync(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, "AdvancedPlayer", res.Data.Player.Name)
	assert.Equal(t, 150, res.Data.CurrentTurn)
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Save(ctx, advancedSave()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Save(ctx, advancedSave()))
		}()
		go func() {
			defer wg.Done()
			d, err := svc.Load(ctx)
			if assert.NoError(t, err) {
				d.Player.Name = "mutated"
			}
		}()
	}
	wg.Wait()

	d, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AdvancedPlayer", d.Player.Name, "loaded copies are independent")
}

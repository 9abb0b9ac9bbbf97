package save

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNamesAreCamelCase(t *testing.T) {
	b, err := json.Marshal(advancedSave())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))

	for _, key := range []string{"version", "saveDate", "currentTurn", "gameState", "player", "map", "entities", "inventory"} {
		assert.Contains(t, raw, key)
	}

	player := raw["player"].(map[string]any)
	assert.Contains(t, player, "experienceToNext")
	assert.Contains(t, player["stats"], "attackPower")

	m := raw["map"].(map[string]any)
	assert.Contains(t, m, "tileData")
	assert.Contains(t, m, "entityPositions")

	tile := m["tileData"].([]any)[0].([]any)[0].(map[string]any)
	assert.Equal(t, "#", tile["character"])
	assert.Contains(t, tile, "isWalkable")
}

func TestOptionalSectionsOmitted(t *testing.T) {
	b, err := json.Marshal(EntitySaveData{ID: "x", Type: "Rat"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "health")
	assert.NotContains(t, string(b), "renderable")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(NewGameSaveData()))
	assert.NoError(t, Validate(advancedSave()))
	assert.Error(t, Validate(nil))

	d := NewGameSaveData()
	d.Version = ""
	d.Inventory = nil
	err := Validate(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
	assert.Contains(t, err.Error(), "inventory")

	d = advancedSave()
	d.Map.TileData[1] = d.Map.TileData[1][:2]
	assert.Error(t, Validate(d))
}

func TestCloneIsDeep(t *testing.T) {
	orig := advancedSave()
	c := orig.Clone()

	c.Player.Name = "changed"
	c.Map.TileData[0][0].Character = "X"
	c.Map.EntityPositions["orc-1"] = Position{X: 9, Y: 9}
	c.Entities[0].Health.Current = 1
	c.Inventory[1].Position.X = 99

	assert.Equal(t, "AdvancedPlayer", orig.Player.Name)
	assert.Equal(t, "#", orig.Map.TileData[0][0].Character)
	assert.Equal(t, Position{X: 1, Y: 1}, orig.Map.EntityPositions["orc-1"])
	assert.Equal(t, 30, orig.Entities[0].Health.Current)
	assert.Equal(t, 4, orig.Inventory[1].Position.X)
	assert.Nil(t, (*GameSaveData)(nil).Clone())
}

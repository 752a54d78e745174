package encounter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/predicate"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

const ambushYAML = `
id: ambush
name: Forest Ambush
description: Goblins in the trees.
tileset: forest
layout:
  rows:
    - "....T"
    - "..~.."
    - "....."
victory:
  - type: all-enemies-defeated
defeat:
  - type: all-players-defeated
  - type: turn-limit
    turns: 20
deployment:
  - {x: 0, y: 0}
  - {x: 0, y: 1}
placements:
  - enemy: a
    position: {x: 4, y: 2}
  - enemy: b
    position: {x: 3, y: 0}
guaranteed_loot: [potion]
`

func tilesets(t *testing.T) *grid.TilesetRegistry {
	t.Helper()
	ts, err := grid.LoadTilesetsFromBytes([]byte("id: forest\nlegend:\n  \".\": grass\n  \"T\": tree\n  \"~\": water\n"))
	require.NoError(t, err)
	reg := grid.NewTilesetRegistry()
	require.NoError(t, reg.Register(ts[0]))
	return reg
}

func TestLoadFromBytes(t *testing.T) {
	deps := encounter.Deps{Enemies: enemies(t, goblin("a", 10, 5), goblin("b", 20, 15))}
	es, err := encounter.LoadFromBytes([]byte(ambushYAML), tilesets(t), deps)
	require.NoError(t, err)
	require.Len(t, es, 1)
	e := es[0]

	assert.Equal(t, "Forest Ambush", e.Name)
	assert.Equal(t, 5, e.Map.Width())
	assert.Equal(t, 3, e.Map.Height())
	c, _ := e.Map.Cell(grid.Position{X: 4, Y: 0})
	assert.Equal(t, grid.Tree, c.Terrain)
	assert.Len(t, e.Victory, 1)
	assert.Len(t, e.Defeat, 2)
	assert.Equal(t, []grid.Position{{X: 0, Y: 0}, {X: 0, Y: 1}}, e.DeploymentZones())
	assert.Equal(t, encounter.Rewards{XP: 30, Gold: 20, Items: []string{"potion"}}, e.VictoryRewards())
}

func TestLoadFromBytes_StructuralErrors(t *testing.T) {
	deps := encounter.Deps{}
	cases := map[string]string{
		"unknown tileset":   "id: x\ntileset: swamp\nlayout: {rows: [\"..\"]}\n",
		"unknown predicate": "id: x\nlayout: {rows: [\"..\"]}\nvictory: [{type: sudden-death}]\n",
		"bad placement":     "id: x\nlayout: {rows: [\".#\"]}\nplacements: [{enemy: a, position: {x: 1, y: 0}}]\n",
		"unknown field":     "id: x\nlayout: {rows: [\"..\"]}\nboss: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := encounter.LoadFromBytes([]byte(doc), tilesets(t), deps)
			assert.Error(t, err)
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ambush.yaml"), []byte(ambushYAML), 0o644))
	reg, err := encounter.LoadDirectory(dir, tilesets(t), encounter.Deps{})
	require.NoError(t, err)
	assert.True(t, reg.Has("ambush"))
}

func TestJSON_RoundTrip(t *testing.T) {
	deps := encounter.Deps{Enemies: enemies(t, goblin("a", 10, 5), goblin("b", 20, 15))}
	es, err := encounter.LoadFromBytes([]byte(ambushYAML), tilesets(t), deps)
	require.NoError(t, err)
	in := es[0]
	rewards := in.VictoryRewards()

	data, err := encounter.Marshal(in)
	require.NoError(t, err)
	out, err := encounter.Unmarshal(data, deps)
	require.NoError(t, err)

	assert.Equal(t, in.Map.Width(), out.Map.Width())
	assert.Equal(t, in.Map.Height(), out.Map.Height())
	for _, p := range in.Map.Positions() {
		want, _ := in.Map.Cell(p)
		got, _ := out.Map.Cell(p)
		assert.Equal(t, want.Terrain, got.Terrain, "terrain at %s", p)
	}
	assert.Equal(t, in.Placements(), out.Placements())
	assert.Equal(t, in.DeploymentZones(), out.DeploymentZones())
	assert.Equal(t, in.GuaranteedLoot(), out.GuaranteedLoot())
	require.NotNil(t, out.Record().Rewards)
	assert.Equal(t, rewards, *out.Record().Rewards, "cached rewards survive")
	require.Len(t, out.Victory, len(in.Victory))
	require.Len(t, out.Defeat, len(in.Defeat))

	man := unit.NewManifest()
	require.NoError(t, man.Add(unit.New("hero", "Hero", unit.Humanoid, unit.Player, stat.Block{Health: 10}), grid.Position{}))
	for turn := 0; turn <= 25; turn++ {
		st := combat.State{Turn: turn, Map: out.Map, Manifest: man}
		assert.Equal(t, predicate.IsDefeat(in.Defeat, st), out.IsDefeat(st), "turn %d", turn)
		assert.Equal(t, in.IsVictory(st), out.IsVictory(st), "turn %d", turn)
	}
}

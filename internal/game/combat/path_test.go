package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

func TestFindPath_StartIsDest(t *testing.T) {
	h := hero("h")
	st := newState(t, openMap(t, 3, 3), at(h, 1, 1))
	path, ok := combat.FindPath(st.Map, st.Manifest, h, grid.Position{X: 1, Y: 1}, grid.Position{X: 1, Y: 1}, 0)
	require.True(t, ok)
	assert.NotNil(t, path)
	assert.Empty(t, path)
}

func TestFindPath_AroundWall(t *testing.T) {
	m := layout(t,
		".#.",
		".#.",
		"...",
	)
	h := hero("h")
	st := newState(t, m, at(h, 0, 0))
	path, ok := combat.FindPath(m, st.Manifest, h, grid.Position{X: 0, Y: 0}, grid.Position{X: 2, Y: 0}, 6)
	require.True(t, ok)
	assert.Equal(t, []grid.Position{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0}}, path)

	_, ok = combat.FindPath(m, st.Manifest, h, grid.Position{X: 0, Y: 0}, grid.Position{X: 2, Y: 0}, 5)
	assert.False(t, ok, "longer than budget")
	_, ok = combat.FindPath(m, st.Manifest, h, grid.Position{X: 0, Y: 0}, grid.Position{X: 1, Y: 0}, 9)
	assert.False(t, ok, "destination is a wall")
}

func TestFindPath_TieBreakIsNeighborOrder(t *testing.T) {
	h := hero("h")
	st := newState(t, openMap(t, 3, 3), at(h, 0, 0))
	path, ok := combat.FindPath(st.Map, st.Manifest, h, grid.Position{X: 0, Y: 0}, grid.Position{X: 1, Y: 1}, 2)
	require.True(t, ok)
	assert.Equal(t, []grid.Position{{X: 1, Y: 0}, {X: 1, Y: 1}}, path, "east is visited before south")
}

func TestFindPath_OccupiedDestination(t *testing.T) {
	h, corpse := hero("h"), foe("c")
	corpse.TakeDamage(100)
	st := newState(t, openMap(t, 3, 1), at(h, 0, 0), at(corpse, 1, 0))
	_, ok := combat.FindPath(st.Map, st.Manifest, h, grid.Position{X: 0, Y: 0}, grid.Position{X: 1, Y: 0}, 3)
	assert.False(t, ok)
	_, ok = combat.FindPath(st.Map, st.Manifest, h, grid.Position{X: 0, Y: 0}, grid.Position{X: 2, Y: 0}, 3)
	assert.False(t, ok, "a corpse in a corridor blocks passage")
}

func TestFindPath_Property_ValidSteps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := openMap(t, 6, 6)
		for i := 0; i < rapid.IntRange(0, 8).Draw(rt, "walls"); i++ {
			p := grid.Position{X: rapid.IntRange(0, 5).Draw(rt, "wx"), Y: rapid.IntRange(0, 5).Draw(rt, "wy")}
			require.NoError(rt, m.SetCell(p, grid.NewCell(grid.Water)))
		}
		start := grid.Position{X: 0, Y: 0}
		require.NoError(rt, m.SetCell(start, grid.NewCell(grid.Floor)))
		man := unit.NewManifest()
		h := hero("h")
		require.NoError(rt, man.Add(h, start))
		dest := grid.Position{X: rapid.IntRange(0, 5).Draw(rt, "dx"), Y: rapid.IntRange(0, 5).Draw(rt, "dy")}
		budget := rapid.IntRange(0, 12).Draw(rt, "budget")

		path, ok := combat.FindPath(m, man, h, start, dest, budget)
		if !ok {
			assert.Nil(rt, path)
			return
		}
		assert.LessOrEqual(rt, len(path), budget)
		assert.GreaterOrEqual(rt, len(path), grid.Manhattan(start, dest))
		prev := start
		for _, p := range path {
			assert.Equal(rt, 1, grid.Manhattan(prev, p))
			assert.True(rt, m.IsWalkable(p))
			prev = p
		}
		if len(path) > 0 {
			assert.Equal(rt, dest, path[len(path)-1])
		}
	})
}

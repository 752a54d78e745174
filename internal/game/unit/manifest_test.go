package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

func goblin(id string) *unit.Unit {
	return unit.New(unit.ID(id), "Goblin "+id, unit.Monster, unit.Enemy, stat.Block{Health: 6})
}

func TestManifest_AddRejectsDuplicates(t *testing.T) {
	m := unit.NewManifest()
	a := goblin("a")
	require.NoError(t, m.Add(a, grid.Position{X: 1, Y: 1}))
	assert.Error(t, m.Add(a, grid.Position{X: 2, Y: 2}), "unit already present")
	assert.Error(t, m.Add(goblin("b"), grid.Position{X: 1, Y: 1}), "tile occupied")
	assert.Error(t, m.Add(nil, grid.Position{}))
	assert.Equal(t, 1, m.Len())
}

func TestManifest_MoveAndQueries(t *testing.T) {
	m := unit.NewManifest()
	a, b := goblin("a"), goblin("b")
	require.NoError(t, m.Add(a, grid.Position{X: 0, Y: 0}))
	require.NoError(t, m.Add(b, grid.Position{X: 1, Y: 0}))

	assert.Error(t, m.Move("a", grid.Position{X: 1, Y: 0}))
	assert.Error(t, m.Move("ghost", grid.Position{X: 3, Y: 3}))
	require.NoError(t, m.Move("a", grid.Position{X: 0, Y: 0}), "moving onto own tile is allowed")
	require.NoError(t, m.Move("a", grid.Position{X: 2, Y: 2}))

	_, ok := m.UnitAt(grid.Position{X: 0, Y: 0})
	assert.False(t, ok)
	got, ok := m.UnitAt(grid.Position{X: 2, Y: 2})
	require.True(t, ok)
	assert.Same(t, a, got)
	p, ok := m.PositionOf("a")
	require.True(t, ok)
	assert.Equal(t, grid.Position{X: 2, Y: 2}, p)
}

func TestManifest_KOdUnitsStayAndBlock(t *testing.T) {
	m := unit.NewManifest()
	a, b := goblin("a"), goblin("b")
	require.NoError(t, m.Add(a, grid.Position{X: 0, Y: 0}))
	require.NoError(t, m.Add(b, grid.Position{X: 1, Y: 0}))
	a.TakeDamage(100)

	assert.Len(t, m.Entries(), 2)
	living := m.Living()
	require.Len(t, living, 1)
	assert.Same(t, b, living[0].Unit)
	assert.True(t, m.Occupied(grid.Position{X: 0, Y: 0}))
	assert.Equal(t, 1, m.CountLiving(unit.Enemy))
	assert.Equal(t, 0, m.CountLiving(unit.Player))
}

func TestManifest_RemoveAndOrder(t *testing.T) {
	m := unit.NewManifest()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Add(goblin(id), grid.Position{X: i}))
	}
	assert.True(t, m.Remove("b"))
	assert.False(t, m.Remove("b"))
	var ids []unit.ID
	for _, e := range m.Entries() {
		ids = append(ids, e.Unit.ID)
	}
	assert.Equal(t, []unit.ID{"a", "c"}, ids)
	assert.False(t, m.Occupied(grid.Position{X: 1}))
}

func TestManifest_SnapshotIsDeep(t *testing.T) {
	m := unit.NewManifest()
	a := goblin("a")
	require.NoError(t, m.Add(a, grid.Position{}))
	snap := m.Snapshot()

	su, ok := snap.Get("a")
	require.True(t, ok)
	su.TakeDamage(3)
	require.NoError(t, snap.Move("a", grid.Position{X: 4}))

	assert.Equal(t, 0, a.Wounds())
	p, _ := m.PositionOf("a")
	assert.Equal(t, grid.Position{}, p)
}

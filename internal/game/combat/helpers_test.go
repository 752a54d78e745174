package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

func openMap(t testing.TB, w, h int) *grid.Map {
	t.Helper()
	m, err := grid.NewMap(w, h, grid.Floor)
	require.NoError(t, err)
	return m
}

func layout(t testing.TB, rows ...string) *grid.Map {
	t.Helper()
	m, err := grid.Layout{Rows: rows}.Build()
	require.NoError(t, err)
	return m
}

func hero(id string) *unit.Unit {
	return unit.New(unit.ID(id), "Hero "+id, unit.Humanoid, unit.Player,
		stat.Block{Health: 10, Mana: 10, PPower: 3, MPower: 4, Speed: 10, Move: 3, PEvade: 10, MEvade: 5})
}

func foe(id string) *unit.Unit {
	return unit.New(unit.ID(id), "Foe "+id, unit.Monster, unit.Enemy,
		stat.Block{Health: 10, Mana: 4, PPower: 2, MPower: 1, Speed: 8, Move: 3, PEvade: 20, MEvade: 10})
}

type placed struct {
	u *unit.Unit
	p grid.Position
}

func at(u *unit.Unit, x, y int) placed { return placed{u: u, p: grid.Position{X: x, Y: y}} }

func newState(t testing.TB, m *grid.Map, units ...placed) combat.State {
	t.Helper()
	man := unit.NewManifest()
	for _, pu := range units {
		require.NoError(t, man.Add(pu.u, pu.p))
	}
	return combat.State{Turn: 1, Map: m, Phase: combat.PhaseAction, Manifest: man}
}

// newExecutor builds an executor whose percent rolls replay values (roll = v+1).
func newExecutor(t testing.TB, logger *zap.Logger, values ...int) *combat.Executor {
	t.Helper()
	if logger == nil {
		logger = zaptest.NewLogger(t)
	}
	if len(values) == 0 {
		values = []int{0}
	}
	roller := dice.NewLoggedRoller(dice.NewFixedSource(values...), logger)
	eval := scripting.NewEvaluator(0, roller, logger)
	t.Cleanup(eval.Close)
	return combat.NewExecutor(combat.DefaultHitRules, roller, eval, logger)
}

func strike(value int, autoHit bool) *ability.Ability {
	return &ability.Ability{
		ID: "strike", Name: "Strike", Type: ability.TypeAction,
		Effects: []ability.Effect{{Kind: ability.EffectDamagePhysical, Target: ability.TargetEnemy, Value: ability.Lit(value), AutoHit: autoHit}},
	}
}

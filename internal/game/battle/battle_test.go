package battle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/battle"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/enemy"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/predicate"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

// deps wires a resolver stack whose percent rolls always come up 1.
func deps(t *testing.T) battle.Deps {
	t.Helper()
	logger := zaptest.NewLogger(t)
	roller := dice.NewLoggedRoller(dice.NewFixedSource(0), logger)
	eval := scripting.NewEvaluator(0, roller, logger)
	t.Cleanup(eval.Close)
	exec := combat.NewExecutor(combat.DefaultHitRules, roller, eval, logger)
	return battle.Deps{
		Executor: exec,
		Attacker: combat.NewAttacker(combat.DefaultHitRules, roller, combat.NewReactionSystem(exec), logger),
		AI:       ai.NewRegistry(eval, logger),
		Logger:   logger,
	}
}

func hero(speed, power, health int) *unit.Unit {
	return unit.New("hero", "Hero", unit.Humanoid, unit.Player,
		stat.Block{Health: health, PPower: power, Speed: speed, Move: 3})
}

// skirmish builds an encounter on rows with the hero deploying at (0,0) and
// one goblin placed at goblinAt.
func skirmish(t *testing.T, rows []string, goblin stat.Block, goblinAt grid.Position) *encounter.Encounter {
	t.Helper()
	m, err := grid.Layout{Rows: rows}.Build()
	require.NoError(t, err)
	reg := enemy.NewRegistry()
	require.NoError(t, reg.Register(&enemy.Definition{ID: "goblin", Name: "Goblin", Stats: goblin, XPValue: 12, GoldValue: 3}))
	e, err := encounter.New("skirmish", "Skirmish", m, []grid.Position{{X: 0, Y: 0}},
		[]encounter.Placement{{EnemyID: "goblin", Position: goblinAt}},
		encounter.Deps{Enemies: reg, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	e.Victory = []predicate.Predicate{predicate.AllEnemiesDefeated{}}
	e.Defeat = []predicate.Predicate{predicate.AllPlayersDefeated{}}
	return e
}

func TestRun_Victory(t *testing.T) {
	enc := skirmish(t, []string{"....."}, stat.Block{Health: 3, Speed: 5}, grid.Position{X: 1, Y: 0})
	b, err := battle.New(enc, []*unit.Unit{hero(50, 5, 10)}, deps(t), 0)
	require.NoError(t, err)

	res, err := b.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeVictory, res.Outcome)
	assert.Equal(t, 2, res.Ticks, "the hero reaches the threshold on the second tick")
	require.Len(t, res.Turns, 1)
	assert.Equal(t, unit.ID("hero"), res.Turns[0].Actor)
	assert.Equal(t, "attack-lethal", res.Turns[0].Decision.Behavior)
	assert.Contains(t, combat.Messages(res.Log), "Hero hits Goblin for 3 damage")
	require.NotNil(t, res.Rewards)
	assert.Equal(t, encounter.Rewards{XP: 12, Gold: 3, Items: []string{}}, *res.Rewards)
	assert.Equal(t, combat.PhaseVictory, b.State().Phase)

	g, ok := b.State().Manifest.UnitAt(grid.Position{X: 1, Y: 0})
	require.True(t, ok, "KO'd units keep their tile")
	assert.True(t, g.IsKO())
}

func TestRun_Defeat(t *testing.T) {
	enc := skirmish(t, []string{"....."}, stat.Block{Health: 5, PPower: 4, Speed: 100}, grid.Position{X: 1, Y: 0})
	b, err := battle.New(enc, []*unit.Unit{hero(0, 0, 1)}, deps(t), 0)
	require.NoError(t, err)

	res, err := b.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeDefeat, res.Outcome)
	assert.Equal(t, 1, res.Ticks)
	assert.Nil(t, res.Rewards)
}

func TestRun_TurnLimitAndModifierExpiry(t *testing.T) {
	enc := skirmish(t, []string{"..#.."}, stat.Block{Health: 5}, grid.Position{X: 4, Y: 0})
	enc.Defeat = append(enc.Defeat, predicate.TurnLimit{Turns: 3})
	h := hero(100, 1, 10)
	require.NoError(t, h.ApplyModifier(condition.Modifier{Source: "haste", Stat: stat.Move, Amount: 1, Duration: 1}))

	b, err := battle.New(enc, []*unit.Unit{h}, deps(t), 0)
	require.NoError(t, err)
	res, err := b.Run(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, battle.OutcomeDefeat, res.Outcome)
	assert.Equal(t, 3, b.State().Turn)
	assert.Len(t, res.Turns, 3)
	assert.Equal(t, "advance", res.Turns[0].Decision.Behavior)
	assert.Contains(t, combat.Messages(res.Turns[0].Log), "Hero moves to (1,0)")
	assert.Contains(t, combat.Messages(res.Turns[0].Log), "haste on Hero wears off.")
	assert.Equal(t, 3, h.Stat(stat.Move))
	pos, _ := b.State().Manifest.PositionOf("hero")
	assert.Equal(t, grid.Position{X: 1, Y: 0}, pos, "the wall stops the advance")
}

func TestRun_Timeout(t *testing.T) {
	enc := skirmish(t, []string{"....."}, stat.Block{Health: 5}, grid.Position{X: 4, Y: 0})
	b, err := battle.New(enc, []*unit.Unit{hero(0, 1, 10)}, deps(t), 0)
	require.NoError(t, err)

	res, err := b.Run(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeTimeout, res.Outcome)
	assert.Equal(t, 5, res.Ticks)
	assert.Empty(t, res.Turns)
}

func TestRun_Cancelled(t *testing.T) {
	enc := skirmish(t, []string{"....."}, stat.Block{Health: 5}, grid.Position{X: 4, Y: 0})
	b, err := battle.New(enc, []*unit.Unit{hero(0, 1, 10)}, deps(t), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := b.Run(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, battle.OutcomeTimeout, res.Outcome)
	assert.Equal(t, 0, res.Ticks)
}

func TestRun_DecidedBeforeFirstTick(t *testing.T) {
	m, err := grid.NewMap(3, 3, grid.Floor)
	require.NoError(t, err)
	enc, err := encounter.New("empty", "Empty", m, []grid.Position{{X: 0, Y: 0}}, nil, encounter.Deps{})
	require.NoError(t, err)
	enc.Victory = []predicate.Predicate{predicate.AllEnemiesDefeated{}}

	b, err := battle.New(enc, []*unit.Unit{hero(10, 1, 10)}, deps(t), 0)
	require.NoError(t, err)
	res, err := b.Run(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeVictory, res.Outcome)
	assert.Equal(t, 0, res.Ticks)
	require.NotNil(t, res.Rewards)
	assert.NotNil(t, res.Rewards.Items)
}

func TestNew_DeploymentErrors(t *testing.T) {
	enc := skirmish(t, []string{"....."}, stat.Block{Health: 5}, grid.Position{X: 4, Y: 0})
	other := unit.New("sidekick", "Sidekick", unit.Humanoid, unit.Player, stat.Block{Health: 5})
	_, err := battle.New(enc, []*unit.Unit{hero(10, 1, 10), other}, deps(t), 0)
	assert.ErrorIs(t, err, battle.ErrNotEnoughZones)
}

func TestNew_SpawnsEnemiesFresh(t *testing.T) {
	enc := skirmish(t, []string{"....."}, stat.Block{Health: 5}, grid.Position{X: 4, Y: 0})
	first, err := battle.New(enc, []*unit.Unit{hero(10, 1, 10)}, deps(t), 0)
	require.NoError(t, err)
	second, err := battle.New(enc, []*unit.Unit{hero(10, 1, 10)}, deps(t), 0)
	require.NoError(t, err)

	g1, ok := first.State().Manifest.UnitAt(grid.Position{X: 4, Y: 0})
	require.True(t, ok)
	g2, ok := second.State().Manifest.UnitAt(grid.Position{X: 4, Y: 0})
	require.True(t, ok)
	assert.NotEqual(t, g1.ID, g2.ID)
	assert.Equal(t, unit.Enemy, g1.Controller)
	assert.Equal(t, combat.PhaseDeploy, first.State().Phase)
}

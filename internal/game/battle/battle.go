// Package battle runs an encounter to completion: it deploys the party, spawns
// the enemies, and drives the action-timer turn pipeline until a victory or
// defeat predicate holds.
package battle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

const (
	// DefaultActionThreshold is the action timer value at which a unit acts.
	DefaultActionThreshold = 100
	// DefaultMaxTicks bounds Run when the caller passes maxTicks <= 0.
	DefaultMaxTicks = 1000
)

// ErrNotEnoughZones is returned when the party outnumbers the deployment zones.
var ErrNotEnoughZones = errors.New("battle: party larger than deployment zones")

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeTimeout Outcome = "timeout"
)

// Deps are the resolvers a Battle drives units through.
type Deps struct {
	Executor *combat.Executor
	Attacker *combat.Attacker
	AI       *ai.Registry
	Logger   *zap.Logger
}

// Turn records one acting unit's turn.
type Turn struct {
	Tick     int
	Turn     int
	Actor    unit.ID
	Decision *ai.Decision
	Log      []combat.LogEntry
}

// Result is the outcome of Run.
type Result struct {
	Outcome Outcome
	Ticks   int
	Turns   []Turn
	Log     []combat.LogEntry
	// Rewards is set on victory.
	Rewards *encounter.Rewards
}

// Battle is one live fight over an encounter.
//
// Invariant: state.Manifest holds every deployed and spawned unit; KO'd units
// stay in place for the rest of the battle.
type Battle struct {
	enc       *encounter.Encounter
	state     combat.State
	deps      Deps
	threshold int
	turns     []Turn
	log       []combat.LogEntry
	outcome   Outcome
}

// New deploys party onto the encounter's deployment zones in order and spawns
// the encounter's enemies on a copy of its map.
//
// Precondition: deps.Executor, deps.Attacker, and deps.AI are non-nil.
// Postcondition: returns ErrNotEnoughZones when len(party) exceeds the zones,
// or an error when any unit cannot be placed.
func New(enc *encounter.Encounter, party []*unit.Unit, deps Deps, threshold int) (*Battle, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultActionThreshold
	}
	zones := enc.DeploymentZones()
	if len(party) > len(zones) {
		return nil, fmt.Errorf("%w: %d units, %d zones", ErrNotEnoughZones, len(party), len(zones))
	}
	m := unit.NewManifest()
	for i, u := range party {
		if err := m.Add(u, zones[i]); err != nil {
			return nil, fmt.Errorf("battle: deploying %s: %w", u.Name, err)
		}
	}
	for _, e := range enc.CreateEnemyUnits() {
		if err := m.Add(e.Unit, e.Position); err != nil {
			return nil, fmt.Errorf("battle: spawning %s: %w", e.Unit.Name, err)
		}
	}
	b := &Battle{
		enc: enc,
		state: combat.State{
			Map:      enc.Map.Clone(),
			Tileset:  enc.Tileset,
			Phase:    combat.PhaseDeploy,
			Manifest: m,
		},
		deps:      deps,
		threshold: threshold,
	}
	deps.Logger.Info("battle deployed",
		zap.String("encounter", enc.ID),
		zap.Int("party", len(party)),
		zap.Int("units", m.Len()),
	)
	return b, nil
}

// State returns the live combat state.
func (b *Battle) State() combat.State { return b.state }

// Run advances ticks until the battle is decided, maxTicks elapse, or ctx is
// cancelled. Each tick every living unit gains Speed on its action timer; units
// at or past the threshold then act in manifest order.
//
// Postcondition: the error is non-nil only when ctx was cancelled; the result
// then carries OutcomeTimeout.
func (b *Battle) Run(ctx context.Context, maxTicks int) (Result, error) {
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	if b.decided() {
		return b.result(), nil
	}
	for b.state.Tick < maxTicks {
		if err := ctx.Err(); err != nil {
			b.outcome = OutcomeTimeout
			return b.result(), fmt.Errorf("battle: %w", err)
		}
		b.state.Tick++
		b.state.Phase = combat.PhaseTick
		for _, e := range b.state.Manifest.Living() {
			e.Unit.AdjustActionTimer(e.Unit.Stat(stat.Speed))
		}
		for _, e := range b.state.Manifest.Living() {
			u := e.Unit
			if u.IsKO() || u.ActionTimer() < b.threshold {
				continue
			}
			b.takeTurn(u)
			if b.outcome != "" {
				return b.result(), nil
			}
		}
	}
	b.outcome = OutcomeTimeout
	b.deps.Logger.Info("battle timed out", zap.String("encounter", b.enc.ID), zap.Int("ticks", b.state.Tick))
	return b.result(), nil
}

func (b *Battle) result() Result {
	r := Result{
		Outcome: b.outcome,
		Ticks:   b.state.Tick,
		Turns:   append([]Turn(nil), b.turns...),
		Log:     append([]combat.LogEntry(nil), b.log...),
	}
	if b.outcome == OutcomeVictory {
		rewards := b.enc.VictoryRewards()
		r.Rewards = &rewards
	}
	return r
}

// decided checks the encounter predicates against the live state. Victory is
// checked before defeat.
func (b *Battle) decided() bool {
	switch {
	case b.enc.IsVictory(b.state):
		b.outcome = OutcomeVictory
		b.state.Phase = combat.PhaseVictory
	case b.enc.IsDefeat(b.state):
		b.outcome = OutcomeDefeat
		b.state.Phase = combat.PhaseDefeat
	default:
		return false
	}
	b.deps.Logger.Info("battle decided",
		zap.String("encounter", b.enc.ID),
		zap.String("outcome", string(b.outcome)),
		zap.Int("turn", b.state.Turn),
	)
	return true
}

func (b *Battle) record(t *Turn, entries ...combat.LogEntry) {
	t.Log = append(t.Log, entries...)
	b.log = append(b.log, entries...)
}

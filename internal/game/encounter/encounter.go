// Package encounter provides the Encounter aggregate: a battlefield, its
// victory and defeat conditions, deployment zones, enemy placements, and the
// cached victory rewards.
package encounter

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/enemy"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/predicate"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// DefaultMaxRewardItems caps the victory item list when Deps.MaxItems is unset.
const DefaultMaxRewardItems = 8

// Placement is an enemy definition reference and where it spawns.
type Placement struct {
	EnemyID  string        `json:"enemy" yaml:"enemy"`
	Position grid.Position `json:"position" yaml:"position"`
}

// Rewards is the victory payout: summed XP and gold plus equipment ids.
type Rewards struct {
	XP    int      `json:"xp"`
	Gold  int      `json:"gold"`
	Items []string `json:"items"`
}

// Deps are the collaborators an Encounter resolves its references through.
type Deps struct {
	Enemies *enemy.Registry
	Spawner enemy.Spawner
	// Loot may be nil, in which case nothing is rolled.
	Loot enemy.LootRoller
	// Equipment may be nil, in which case item ids are not checked.
	Equipment *inventory.Registry
	// MaxItems <= 0 uses DefaultMaxRewardItems.
	MaxItems int
	Logger   *zap.Logger
}

// Encounter is the aggregate root of one authored battle.
//
// Invariant: every placement and deployment zone is in bounds and walkable;
// no two placements share a tile. The rewards cache is only recomputed after
// it is invalidated.
type Encounter struct {
	ID          string
	Name        string
	Description string
	Tileset     string
	Map         *grid.Map
	// Victory holds when every predicate holds.
	Victory []predicate.Predicate
	// Defeat holds when any predicate holds.
	Defeat []predicate.Predicate

	deployment     []grid.Position
	placements     []Placement
	guaranteedLoot []string

	deps         Deps
	rewards      *Rewards
	forceMinimum int
}

// New creates an encounter over m.
//
// Precondition: m is non-nil.
// Postcondition: returns an error when a deployment zone or placement violates
// the tile invariant.
func New(id, name string, m *grid.Map, deployment []grid.Position, placements []Placement, deps Deps) (*Encounter, error) {
	if id == "" {
		return nil, errors.New("encounter: id must not be empty")
	}
	if m == nil {
		return nil, fmt.Errorf("encounter %q: map must not be nil", id)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	e := &Encounter{ID: id, Name: name, Map: m, deps: deps}
	for _, p := range deployment {
		if !m.IsWalkable(p) {
			return nil, fmt.Errorf("encounter %q: deployment zone %s is not a walkable tile", id, p)
		}
	}
	e.deployment = append([]grid.Position(nil), deployment...)
	for _, p := range placements {
		if err := e.AddPlacement(p); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Key returns the encounter ID.
func (e *Encounter) Key() string { return e.ID }

// Deps returns the collaborators the encounter was built with.
func (e *Encounter) Deps() Deps { return e.deps }

// DeploymentZones returns the player start tiles in deployment order.
func (e *Encounter) DeploymentZones() []grid.Position {
	return append([]grid.Position(nil), e.deployment...)
}

// Placements returns a copy of the enemy placements.
func (e *Encounter) Placements() []Placement {
	return append([]Placement(nil), e.placements...)
}

// GuaranteedLoot returns a copy of the guaranteed item ids.
func (e *Encounter) GuaranteedLoot() []string {
	return append([]string(nil), e.guaranteedLoot...)
}

func (e *Encounter) checkPlacement(p Placement, skip int) error {
	if p.EnemyID == "" {
		return fmt.Errorf("encounter %q: placement at %s has no enemy id", e.ID, p.Position)
	}
	if !e.Map.IsWalkable(p.Position) {
		return fmt.Errorf("encounter %q: placement %q at %s is not a walkable tile", e.ID, p.EnemyID, p.Position)
	}
	for i, q := range e.placements {
		if i != skip && q.Position == p.Position {
			return fmt.Errorf("encounter %q: placements %q and %q share %s", e.ID, q.EnemyID, p.EnemyID, p.Position)
		}
	}
	return nil
}

// AddPlacement appends p and invalidates the rewards.
func (e *Encounter) AddPlacement(p Placement) error {
	if err := e.checkPlacement(p, -1); err != nil {
		return err
	}
	e.placements = append(e.placements, p)
	e.InvalidateRewards()
	return nil
}

// RemovePlacement deletes the placement at index i and invalidates the rewards.
func (e *Encounter) RemovePlacement(i int) error {
	if i < 0 || i >= len(e.placements) {
		return fmt.Errorf("encounter %q: placement index %d out of range", e.ID, i)
	}
	e.placements = append(e.placements[:i], e.placements[i+1:]...)
	e.InvalidateRewards()
	return nil
}

// ReplacePlacement swaps the placement at index i for p and invalidates the rewards.
func (e *Encounter) ReplacePlacement(i int, p Placement) error {
	if i < 0 || i >= len(e.placements) {
		return fmt.Errorf("encounter %q: placement index %d out of range", e.ID, i)
	}
	if err := e.checkPlacement(p, i); err != nil {
		return err
	}
	e.placements[i] = p
	e.InvalidateRewards()
	return nil
}

// SetGuaranteedLoot replaces the guaranteed item ids and invalidates the rewards.
func (e *Encounter) SetGuaranteedLoot(ids []string) {
	e.guaranteedLoot = append([]string(nil), ids...)
	e.InvalidateRewards()
}

// InvalidateRewards drops the cached rewards; the next VictoryRewards call recomputes.
func (e *Encounter) InvalidateRewards() {
	e.rewards = nil
}

// ForceMinimumDrops makes the next rewards computation roll at least n items
// from each enemy loot table. The override clears itself once used.
func (e *Encounter) ForceMinimumDrops(n int) {
	e.forceMinimum = n
	e.InvalidateRewards()
}

// VictoryRewards returns the cached rewards, computing them if invalidated.
//
// Postcondition: Items is non-nil, holds guaranteed loot before rolled loot,
// and never exceeds the item cap.
func (e *Encounter) VictoryRewards() Rewards {
	if e.rewards == nil {
		r := e.computeRewards()
		e.rewards = &r
	}
	return e.rewards.clone()
}

func (r Rewards) clone() Rewards {
	r.Items = append([]string{}, r.Items...)
	return r
}

func (e *Encounter) computeRewards() Rewards {
	force := e.forceMinimum
	e.forceMinimum = 0

	r := Rewards{}
	var rolled []string
	for _, p := range e.placements {
		d, ok := e.deps.Enemies.Get(p.EnemyID)
		if !ok {
			e.deps.Logger.Warn("unknown enemy id",
				zap.String("encounter", e.ID),
				zap.String("enemy_id", p.EnemyID),
			)
			continue
		}
		r.XP += d.XPValue
		r.Gold += d.GoldValue
		if d.Loot != nil && e.deps.Loot != nil {
			rolled = append(rolled, e.deps.Loot.Roll(d.Loot, force)...)
		}
	}
	items := append(append([]string{}, e.guaranteedLoot...), rolled...)
	if e.deps.Equipment != nil {
		known := items[:0]
		for _, d := range inventory.Resolve(e.deps.Equipment, items, e.deps.Logger) {
			known = append(known, d.ID)
		}
		items = known
	}
	if limit := e.maxItems(); len(items) > limit {
		items = items[:limit]
	}
	r.Items = items
	return r
}

func (e *Encounter) maxItems() int {
	if e.deps.MaxItems > 0 {
		return e.deps.MaxItems
	}
	return DefaultMaxRewardItems
}

// CreateEnemyUnits spawns a fresh unit for every placement whose definition
// resolves. Each call yields new unit IDs.
//
// Postcondition: unknown enemy ids are logged at Warn and skipped.
func (e *Encounter) CreateEnemyUnits() []unit.Entry {
	out := make([]unit.Entry, 0, len(e.placements))
	for _, p := range e.placements {
		d, ok := e.deps.Enemies.Get(p.EnemyID)
		if !ok {
			e.deps.Logger.Warn("unknown enemy id",
				zap.String("encounter", e.ID),
				zap.String("enemy_id", p.EnemyID),
			)
			continue
		}
		out = append(out, unit.Entry{Unit: e.deps.Spawner.Spawn(d), Position: p.Position})
	}
	return out
}

// IsVictory reports whether every victory predicate holds in st.
func (e *Encounter) IsVictory(st combat.State) bool {
	return predicate.IsVictory(e.Victory, st)
}

// IsDefeat reports whether any defeat predicate holds in st.
func (e *Encounter) IsDefeat(st combat.State) bool {
	return predicate.IsDefeat(e.Defeat, st)
}

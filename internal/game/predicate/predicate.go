// Package predicate provides the composable victory and defeat conditions
// evaluated against combat state.
package predicate

import (
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Type tags a predicate variant in its serialized form.
type Type string

const (
	TypeAllEnemiesDefeated Type = "all-enemies-defeated"
	TypeAllPlayersDefeated Type = "all-players-defeated"
	TypeTurnLimit          Type = "turn-limit"
	TypeUnitDefeated       Type = "unit-defeated"
	TypeAnd                Type = "and"
	TypeOr                 Type = "or"
)

// Predicate is a side-effect free boolean rule over combat state.
type Predicate interface {
	Type() Type
	// Evaluate reports whether the rule holds for st. It must not mutate st.
	Evaluate(st combat.State) bool
}

// AllEnemiesDefeated holds when no Enemy-controlled unit is still standing.
// A field with no enemies at all satisfies it.
type AllEnemiesDefeated struct{}

func (AllEnemiesDefeated) Type() Type { return TypeAllEnemiesDefeated }

func (AllEnemiesDefeated) Evaluate(st combat.State) bool {
	return noneStanding(st, unit.Enemy)
}

// AllPlayersDefeated holds when no Player-controlled unit is still standing.
// A field with no player units at all satisfies it.
type AllPlayersDefeated struct{}

func (AllPlayersDefeated) Type() Type { return TypeAllPlayersDefeated }

func (AllPlayersDefeated) Evaluate(st combat.State) bool {
	return noneStanding(st, unit.Player)
}

func noneStanding(st combat.State, c unit.Controller) bool {
	if st.Manifest == nil {
		return true
	}
	return st.Manifest.CountLiving(c) == 0
}

// TurnLimit holds once the turn counter reaches Turns.
type TurnLimit struct {
	Turns int
}

func (TurnLimit) Type() Type { return TypeTurnLimit }

func (p TurnLimit) Evaluate(st combat.State) bool { return st.Turn >= p.Turns }

// UnitDefeated holds when at least one unit named Name is on the field and
// every unit of that name is KO'd. Spawned enemies share display names, so a
// single match is not enough.
type UnitDefeated struct {
	Name string
}

func (UnitDefeated) Type() Type { return TypeUnitDefeated }

func (p UnitDefeated) Evaluate(st combat.State) bool {
	if st.Manifest == nil {
		return false
	}
	found := false
	for _, e := range st.Manifest.Entries() {
		if e.Unit.Name != p.Name {
			continue
		}
		if !e.Unit.IsKO() {
			return false
		}
		found = true
	}
	return found
}

// And holds when every child holds. An empty And holds.
type And struct {
	Children []Predicate
}

func (And) Type() Type { return TypeAnd }

func (p And) Evaluate(st combat.State) bool { return All(p.Children, st) }

// Or holds when any child holds. An empty Or does not hold.
type Or struct {
	Children []Predicate
}

func (Or) Type() Type { return TypeOr }

func (p Or) Evaluate(st combat.State) bool { return Any(p.Children, st) }

// All evaluates ps left to right, stopping at the first false.
func All(ps []Predicate, st combat.State) bool {
	for _, p := range ps {
		if !p.Evaluate(st) {
			return false
		}
	}
	return true
}

// Any evaluates ps left to right, stopping at the first true.
func Any(ps []Predicate, st combat.State) bool {
	for _, p := range ps {
		if p.Evaluate(st) {
			return true
		}
	}
	return false
}

// IsVictory reports whether every victory predicate holds.
//
// Postcondition: an empty list is a victory.
func IsVictory(victory []Predicate, st combat.State) bool { return All(victory, st) }

// IsDefeat reports whether any defeat predicate holds.
//
// Postcondition: an empty list is never a defeat.
func IsDefeat(defeat []Predicate, st combat.State) bool { return Any(defeat, st) }

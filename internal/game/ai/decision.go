package ai

import (
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Order sequences the movement and action parts of a Decision.
type Order string

const (
	OrderMoveOnly    Order = "move-only"
	OrderActOnly     Order = "act-only"
	OrderMoveThenAct Order = "move-then-act"
	OrderActThenMove Order = "act-then-move"
)

// ActionType selects how a decided action is resolved.
type ActionType string

const (
	// ActionAttack swings every weapon at the target.
	ActionAttack ActionType = "attack"
	// ActionAbility executes a learned action ability.
	ActionAbility ActionType = "ability"
)

// Movement is a validated destination and the path that reaches it.
type Movement struct {
	Dest grid.Position
	Path []grid.Position
}

// Action names what to do and to whom. Target is empty for untargeted abilities.
type Action struct {
	Type           ActionType
	Target         unit.ID
	TargetPosition grid.Position
	AbilityID      string
}

// Decision is the plan one behaviour produced for the acting unit's turn.
// A Decision with neither Move nor Action ends the turn.
type Decision struct {
	Move     *Movement
	Action   *Action
	Order    Order
	Behavior string
}

// Idle reports whether d does nothing.
func (d *Decision) Idle() bool {
	return d == nil || (d.Move == nil && d.Action == nil)
}

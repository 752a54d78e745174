package combat

import (
	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// ReactionContext describes one attack-event phase offered to a reactor.
type ReactionContext struct {
	// Trigger is one of the ability.Trigger* tags.
	Trigger          string
	Reactor          *unit.Unit
	ReactorPosition  grid.Position
	Attacker         *unit.Unit
	AttackerPosition grid.Position
	Target           *unit.Unit
	TargetPosition   grid.Position
	// Damage is the wounds already dealt by the attack, for after-* triggers.
	Damage int
	State  State
}

// ReactionResult is the outcome of one reaction check.
type ReactionResult struct {
	// ShouldExecute is true when every gate passed and the reaction was executed.
	ShouldExecute bool
	State         State
	Log           []LogEntry
	Execution     Result
}

// ReactionSystem offers reaction abilities a chance to fire on attack events.
type ReactionSystem struct {
	exec *Executor
}

// NewReactionSystem creates a ReactionSystem that executes through exec.
func NewReactionSystem(exec *Executor) *ReactionSystem {
	return &ReactionSystem{exec: exec}
}

// CheckReaction fires the reactor's reaction ability if the reactor has one, is
// not KO'd, and the ability carries ctx.Trigger as a tag. Attacker-side
// triggers (before/after-attack) target the attack's target; defender-side
// triggers (before/after-attacked) target the attacker.
//
// Postcondition: when any gate fails the result is a no-op with ShouldExecute false.
// A reaction the executor rejects logs an attempt line, never a trigger line.
// Each call is independent; a dual-wield attack offers every trigger twice.
func (r *ReactionSystem) CheckReaction(ctx ReactionContext) ReactionResult {
	out := ReactionResult{State: ctx.State}
	reactor := ctx.Reactor
	if reactor == nil || reactor.Reaction == nil || reactor.IsKO() || !reactor.Reaction.HasTag(ctx.Trigger) {
		return out
	}
	var opponent *unit.Unit
	var opponentPos grid.Position
	switch ctx.Trigger {
	case ability.TriggerBeforeAttack, ability.TriggerAfterAttack:
		opponent, opponentPos = ctx.Target, ctx.TargetPosition
	case ability.TriggerBeforeAttacked, ability.TriggerAfterAttacked:
		opponent, opponentPos = ctx.Attacker, ctx.AttackerPosition
	default:
		return out
	}
	res := r.exec.Execute(reactor.Reaction, Context{
		Caster:         reactor,
		CasterPosition: ctx.ReactorPosition,
		Target:         opponent,
		TargetPosition: opponentPos,
		State:          ctx.State,
	})
	out.Execution = res
	out.ShouldExecute = res.Success
	head := entry(reactor, "%s triggered %s (%s)", reactor.Name, reactor.Reaction.Name, ctx.Trigger)
	if !res.Success {
		head = entry(reactor, "%s attempts %s (%s)", reactor.Name, reactor.Reaction.Name, ctx.Trigger)
	}
	out.Log = append([]LogEntry{head}, res.Log...)
	return out
}

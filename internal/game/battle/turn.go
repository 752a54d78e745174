package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// takeTurn asks u's AI profile for a decision and applies it. The encounter
// predicates are checked after every mutation; a decided battle ends the turn
// immediately.
func (b *Battle) takeTurn(u *unit.Unit) {
	b.state.Phase = combat.PhaseAction
	pos, _ := b.state.Manifest.PositionOf(u.ID)
	t := Turn{Tick: b.state.Tick, Turn: b.state.Turn, Actor: u.ID}

	ctx := ai.Builder{Rules: b.deps.Executor.Rules()}.Build(u, pos, b.state, false, false)
	d := b.deps.AI.Resolve(u.AIProfile).Decide(ctx)
	t.Decision = d

	steps := b.steps(d)
	if len(steps) == 0 {
		b.record(&t, combat.LogEntry{Team: combat.TeamOf(u), Message: fmt.Sprintf("%s waits.", u.Name)})
	}
	for _, step := range steps {
		step(u, &t)
		if b.decided() {
			b.turns = append(b.turns, t)
			return
		}
		if u.IsKO() {
			break
		}
	}

	for _, m := range u.TickModifiers() {
		b.record(&t, combat.LogEntry{Team: combat.TeamOf(u), Message: fmt.Sprintf("%s on %s wears off.", m.Source, u.Name)})
	}
	u.AdjustActionTimer(-b.threshold)
	b.state.Turn++
	b.turns = append(b.turns, t)
	b.decided()
}

type step func(u *unit.Unit, t *Turn)

func (b *Battle) steps(d *ai.Decision) []step {
	if d.Idle() {
		return nil
	}
	move := func(u *unit.Unit, t *Turn) { b.move(u, d.Move, t) }
	act := func(u *unit.Unit, t *Turn) { b.act(u, d.Action, t) }
	switch {
	case d.Move != nil && d.Action != nil && d.Order == ai.OrderActThenMove:
		return []step{act, move}
	case d.Move != nil && d.Action != nil:
		return []step{move, act}
	case d.Move != nil:
		return []step{move}
	default:
		return []step{act}
	}
}

// move revalidates the decided path against the live state before moving.
func (b *Battle) move(u *unit.Unit, mv *ai.Movement, t *Turn) {
	from, _ := b.state.Manifest.PositionOf(u.ID)
	if mv.Dest == from {
		return
	}
	if _, ok := combat.FindPath(b.state.Map, b.state.Manifest, u, from, mv.Dest, u.Stat(stat.Move)); !ok {
		b.deps.Logger.Warn("decided move no longer reachable",
			zap.String("unit", u.Name), zap.Stringer("from", from), zap.Stringer("dest", mv.Dest))
		b.record(t, combat.LogEntry{Team: combat.TeamNeutral, Warning: true,
			Message: fmt.Sprintf("%s cannot reach %s", u.Name, mv.Dest)})
		return
	}
	if err := b.state.Manifest.Move(u.ID, mv.Dest); err != nil {
		b.deps.Logger.Warn("move rejected", zap.String("unit", u.Name), zap.Error(err))
		return
	}
	b.record(t, combat.LogEntry{Team: combat.TeamOf(u), Message: fmt.Sprintf("%s moves to %s", u.Name, mv.Dest)})
}

func (b *Battle) act(u *unit.Unit, a *ai.Action, t *Turn) {
	pos, _ := b.state.Manifest.PositionOf(u.ID)
	var target *unit.Unit
	if a.Target != "" {
		var ok bool
		if target, ok = b.state.Manifest.Get(a.Target); !ok {
			b.deps.Logger.Warn("decided target not on the field", zap.String("unit", u.Name), zap.String("target", string(a.Target)))
			return
		}
	}
	switch a.Type {
	case ai.ActionAttack:
		if target == nil || target.IsKO() {
			b.record(t, combat.LogEntry{Team: combat.TeamOf(u), Message: fmt.Sprintf("%s attacks but hits nothing.", u.Name)})
			return
		}
		out := b.deps.Attacker.Attack(b.state, u, target)
		b.record(t, out.Log...)
	case ai.ActionAbility:
		ab := learnedAction(u, a.AbilityID)
		if ab == nil {
			b.deps.Logger.Warn("decided ability not learned", zap.String("unit", u.Name), zap.String("ability_id", a.AbilityID))
			return
		}
		ctx := combat.Context{Caster: u, CasterPosition: pos, Target: target, State: b.state}
		if target != nil {
			ctx.TargetPosition, _ = b.state.Manifest.PositionOf(target.ID)
		}
		out := b.deps.Attacker.Cast(ab, ctx)
		b.record(t, out.Log...)
	default:
		b.deps.Logger.Warn("unknown action type", zap.String("unit", u.Name), zap.String("type", string(a.Type)))
	}
}

func learnedAction(u *unit.Unit, id string) *ability.Ability {
	for _, a := range u.Actions() {
		if a.ID == id {
			return a
		}
	}
	return nil
}

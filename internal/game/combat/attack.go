package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// AttackEvent is the outcome of one weapon swing.
type AttackEvent struct {
	Weapon    inventory.WeaponProfile
	Resolved  bool
	Hit       bool
	Roll      int
	Chance    int
	Damage    int
	Reactions []ReactionResult
}

// AttackOutcome collects every weapon event of one attack action.
type AttackOutcome struct {
	Events []AttackEvent
	Log    []LogEntry
}

// TotalDamage sums the wounds dealt across events.
func (o AttackOutcome) TotalDamage() int {
	total := 0
	for _, e := range o.Events {
		total += e.Damage
	}
	return total
}

// Attacker resolves weapon attacks, offering reactions around each swing.
type Attacker struct {
	rules     HitRules
	roller    *dice.Roller
	reactions *ReactionSystem
	logger    *zap.Logger
}

// NewAttacker creates an Attacker.
//
// Precondition: roller, reactions, and logger must be non-nil.
func NewAttacker(rules HitRules, roller *dice.Roller, reactions *ReactionSystem, logger *zap.Logger) *Attacker {
	return &Attacker{rules: rules, roller: roller, reactions: reactions, logger: logger}
}

// Attack resolves one attack action of attacker against defender: one event per
// weapon (dual wield yields two). Each event offers before-attack and
// before-attacked reactions, rolls to hit, deals WeaponDamage, then offers
// after-attack and after-attacked reactions.
//
// Precondition: both units are in st.Manifest.
// Postcondition: a weapon whose band does not reach the defender is skipped.
func (a *Attacker) Attack(st State, attacker, defender *unit.Unit) AttackOutcome {
	var out AttackOutcome
	ap, aok := st.Manifest.PositionOf(attacker.ID)
	dp, dok := st.Manifest.PositionOf(defender.ID)
	if !aok || !dok {
		a.logger.Warn("attack between units not in manifest",
			zap.String("attacker", attacker.Name), zap.String("defender", defender.Name))
		out.Log = append(out.Log, warning("%s cannot attack %s: not on the field", attacker.Name, defender.Name))
		return out
	}
	for _, w := range attacker.Weapons() {
		ev := AttackEvent{Weapon: w}
		if !InBand(st.Map, ap, dp, ReachOf(w)) {
			out.Log = append(out.Log, entry(attacker, "%s is out of reach of %s", defender.Name, attacker.Name))
			out.Events = append(out.Events, ev)
			continue
		}
		rc := ReactionContext{
			Attacker: attacker, AttackerPosition: ap,
			Target: defender, TargetPosition: dp,
			State: st,
		}
		offer := func(trigger string, reactor *unit.Unit) {
			if res, ok := a.offer(rc, trigger, reactor); ok {
				ev.Reactions = append(ev.Reactions, res)
				out.Log = append(out.Log, res.Log...)
			}
		}
		offer(ability.TriggerBeforeAttack, attacker)
		offer(ability.TriggerBeforeAttacked, defender)
		if attacker.IsKO() || defender.IsKO() {
			out.Events = append(out.Events, ev)
			continue
		}

		ev.Resolved = true
		ev.Chance = HitChance(a.rules, w.DamageType, defender)
		ev.Roll, ev.Hit = a.roller.Percent("weapon attack", ev.Chance)
		if ev.Hit {
			ev.Damage = defender.TakeDamage(WeaponDamage(attacker, w))
			out.Log = append(out.Log, entry(attacker, "%s hits %s for %d damage", attacker.Name, defender.Name, ev.Damage))
			if defender.IsKO() {
				out.Log = append(out.Log, entry(attacker, "%s is KO'd!", defender.Name))
			}
		} else {
			out.Log = append(out.Log, entry(attacker, "%s evaded! (rolled %d vs %d%%)", defender.Name, ev.Roll, ev.Chance))
		}

		rc.Damage = ev.Damage
		offer(ability.TriggerAfterAttack, attacker)
		offer(ability.TriggerAfterAttacked, defender)
		out.Events = append(out.Events, ev)
	}
	return out
}

func (a *Attacker) offer(rc ReactionContext, trigger string, reactor *unit.Unit) (ReactionResult, bool) {
	rc.Trigger = trigger
	rc.Reactor = reactor
	if reactor == rc.Attacker {
		rc.ReactorPosition = rc.AttackerPosition
	} else {
		rc.ReactorPosition = rc.TargetPosition
	}
	res := a.reactions.CheckReaction(rc)
	if !res.ShouldExecute && len(res.Log) == 0 {
		return res, false
	}
	return res, true
}

// CastOutcome is the result of one action ability with the reactions it provoked.
type CastOutcome struct {
	Execution Result
	Reactions []ReactionResult
	Log       []LogEntry
}

// Cast executes an action ability through the executor. When the ability
// damages a living opposing target the cast is an attack event: caster and
// target are offered before-attack and before-attacked reactions, the ability
// executes, then after-attack and after-attacked reactions follow on success.
//
// Precondition: ctx.Caster is non-nil.
// Postcondition: abilities that deal no damage, target no opponent, or cannot be
// afforded execute without offering reactions.
func (a *Attacker) Cast(ab *ability.Ability, ctx Context) CastOutcome {
	exec := a.reactions.exec
	var out CastOutcome
	if !provokes(ab, ctx) {
		out.Execution = exec.Execute(ab, ctx)
		out.Log = out.Execution.Log
		return out
	}
	rc := ReactionContext{
		Attacker: ctx.Caster, AttackerPosition: ctx.CasterPosition,
		Target: ctx.Target, TargetPosition: ctx.TargetPosition,
		State: ctx.State,
	}
	offer := func(trigger string, reactor *unit.Unit) {
		if res, ok := a.offer(rc, trigger, reactor); ok {
			out.Reactions = append(out.Reactions, res)
			out.Log = append(out.Log, res.Log...)
		}
	}
	offer(ability.TriggerBeforeAttack, ctx.Caster)
	offer(ability.TriggerBeforeAttacked, ctx.Target)
	if ctx.Caster.IsKO() || ctx.Target.IsKO() {
		out.Log = append(out.Log, entry(ctx.Caster, "%s's %s is interrupted.", ctx.Caster.Name, ab.Name))
		return out
	}
	out.Execution = exec.Execute(ab, ctx)
	out.Log = append(out.Log, out.Execution.Log...)
	if !out.Execution.Success {
		return out
	}
	rc.Damage = out.Execution.Damage[ctx.Target.ID]
	offer(ability.TriggerAfterAttack, ctx.Caster)
	offer(ability.TriggerAfterAttacked, ctx.Target)
	return out
}

// provokes reports whether casting ab in ctx counts as an attack on ctx.Target.
func provokes(ab *ability.Ability, ctx Context) bool {
	if ctx.Caster == nil || ctx.Target == nil || ctx.Caster.IsKO() || ctx.Target.IsKO() ||
		!ctx.Target.Controller.Opposes(ctx.Caster.Controller) || ab.ManaCost() > ctx.Caster.Mana() {
		return false
	}
	for _, e := range ab.Effects {
		if e.Kind == ability.EffectDamagePhysical || e.Kind == ability.EffectDamageMagical {
			return true
		}
	}
	return false
}

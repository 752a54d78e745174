package combat

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

// Context is the input of one ability execution.
type Context struct {
	Caster         *unit.Unit
	CasterPosition grid.Position
	Target         *unit.Unit
	TargetPosition grid.Position
	State          State
}

// Result is the outcome of one ability execution. Damage, Healing, and Modifiers
// are keyed by unit ID.
type Result struct {
	Success   bool
	Log       []LogEntry
	Damage    map[unit.ID]int
	Healing   map[unit.ID]int
	Modifiers map[unit.ID][]condition.Modifier
}

func newResult() Result {
	return Result{
		Damage:    make(map[unit.ID]int),
		Healing:   make(map[unit.ID]int),
		Modifiers: make(map[unit.ID][]condition.Modifier),
	}
}

func failed(msg LogEntry) Result {
	r := newResult()
	r.Log = []LogEntry{msg}
	return r
}

// Executor interprets ability effects against a caster/target pair.
type Executor struct {
	rules     HitRules
	roller    *dice.Roller
	evaluator *scripting.Evaluator
	logger    *zap.Logger
}

// NewExecutor creates an Executor. evaluator may be nil, in which case formula
// values are rejected with a warning and evaluate to 0.
//
// Precondition: roller and logger must be non-nil.
func NewExecutor(rules HitRules, roller *dice.Roller, evaluator *scripting.Evaluator, logger *zap.Logger) *Executor {
	return &Executor{rules: rules, roller: roller, evaluator: evaluator, logger: logger}
}

// Rules returns the hit rules the executor rolls against.
func (x *Executor) Rules() HitRules { return x.rules }

// Execute runs a against ctx.
//
// Gates, checked before any mutation: a caster that is present and not KO'd, at
// least one effect, a target when any effect selects target/ally/enemy, and
// enough mana for every mana-cost effect. A failed gate returns Success=false
// with one diagnostic entry and changes nothing.
//
// Postcondition: on success mana is spent first, then effects apply in order,
// each independently; a miss never rolls back an earlier effect.
func (x *Executor) Execute(a *ability.Ability, ctx Context) Result {
	caster := ctx.Caster
	switch {
	case a == nil:
		return failed(warning("no ability to execute"))
	case caster == nil:
		return failed(warning("%s has no caster", a.Name))
	case caster.IsKO():
		return failed(entry(caster, "%s is KO'd and cannot use %s", caster.Name, a.Name))
	case len(a.Effects) == 0:
		return failed(entry(caster, "%s has no effects", a.Name))
	case a.RequiresTarget() && ctx.Target == nil:
		return failed(entry(caster, "%s needs a target", a.Name))
	}
	cost := a.ManaCost()
	if caster.Mana() < cost {
		return failed(entry(caster, "%s: not enough mana (%d/%d)", a.Name, caster.Mana(), cost))
	}

	res := newResult()
	res.Success = true
	if cost > 0 {
		_ = caster.SpendMana(cost)
		res.Log = append(res.Log, entry(caster, "%s spends %d mana on %s", caster.Name, cost, a.Name))
	}
	res.Log = append(res.Log, entry(caster, "%s uses %s", caster.Name, a.Name))

	for i, e := range a.Effects {
		if e.Kind == ability.EffectManaCost {
			continue
		}
		targets, ok := x.resolveTargets(a, i, e, ctx, &res)
		if !ok {
			continue
		}
		for _, t := range targets {
			if t.IsKO() {
				res.Log = append(res.Log, entry(caster, "%s is KO'd; %s effect skipped", t.Name, e.Kind))
				continue
			}
			x.apply(a, e, caster, t, &res)
		}
	}
	return res
}

func (x *Executor) resolveTargets(a *ability.Ability, i int, e ability.Effect, ctx Context, res *Result) ([]*unit.Unit, bool) {
	caster := ctx.Caster
	switch e.Target {
	case ability.TargetSelf:
		return []*unit.Unit{caster}, true
	case ability.TargetTarget:
		return []*unit.Unit{ctx.Target}, true
	case ability.TargetAlly:
		if ctx.Target.Controller.Opposes(caster.Controller) {
			res.Log = append(res.Log, warning("%s: %s is not an ally of %s", a.Name, ctx.Target.Name, caster.Name))
			return nil, false
		}
		return []*unit.Unit{ctx.Target}, true
	case ability.TargetEnemy:
		if !ctx.Target.Controller.Opposes(caster.Controller) {
			res.Log = append(res.Log, warning("%s: %s is not an enemy of %s", a.Name, ctx.Target.Name, caster.Name))
			return nil, false
		}
		return []*unit.Unit{ctx.Target}, true
	case ability.TargetAllAllies, ability.TargetAllEnemies:
		if ctx.State.Manifest == nil {
			return nil, false
		}
		var out []*unit.Unit
		for _, en := range ctx.State.Manifest.Living() {
			opposed := en.Unit.Controller.Opposes(caster.Controller)
			if opposed == (e.Target == ability.TargetAllEnemies) {
				out = append(out, en.Unit)
			}
		}
		return out, true
	default:
		x.logger.Warn("unsupported target selector",
			zap.String("ability", a.ID),
			zap.Int("effect", i),
			zap.String("selector", string(e.Target)),
		)
		res.Log = append(res.Log, warning("%s: unsupported target selector %q", a.Name, e.Target))
		return nil, false
	}
}

func (x *Executor) apply(a *ability.Ability, e ability.Effect, caster, t *unit.Unit, res *Result) {
	switch e.Kind {
	case ability.EffectDamagePhysical, ability.EffectDamageMagical:
		if !e.AutoHit {
			chance := HitChance(x.rules, DamageTypeOf(e.Kind), t)
			if e.HitChance != nil {
				chance = *e.HitChance
			}
			roll, hit := x.roller.Percent(a.ID, chance)
			if !hit {
				res.Log = append(res.Log, entry(caster, "%s evaded! (rolled %d vs %d%%)", t.Name, roll, chance))
				return
			}
		}
		dealt := t.TakeDamage(x.value(a, e, caster, t, res))
		res.Damage[t.ID] += dealt
		res.Log = append(res.Log, entry(caster, "%s takes %d damage", t.Name, dealt))
		if t.IsKO() {
			res.Log = append(res.Log, entry(caster, "%s is KO'd!", t.Name))
		}
	case ability.EffectHeal:
		healed := t.Heal(x.value(a, e, caster, t, res))
		res.Healing[t.ID] += healed
		res.Log = append(res.Log, entry(caster, "%s recovers %d health", t.Name, healed))
	case ability.EffectStatBonus, ability.EffectStatPenalty:
		amount := x.value(a, e, caster, t, res)
		if e.Kind == ability.EffectStatPenalty {
			amount = -amount
		}
		duration := e.Duration
		if duration == 0 {
			duration = condition.Permanent
		}
		m := condition.Modifier{Source: a.ID, Stat: e.Stat, Amount: amount, Duration: duration}
		if err := t.ApplyModifier(m); err != nil {
			x.logger.Warn("modifier rejected", zap.String("ability", a.ID), zap.Error(err))
			res.Log = append(res.Log, warning("%s: %v", a.Name, err))
			return
		}
		res.Modifiers[t.ID] = append(res.Modifiers[t.ID], m)
		res.Log = append(res.Log, entry(caster, "%s %s %+d", t.Name, e.Stat.Title(), amount))
	case ability.EffectManaRestore:
		restored := t.RestoreMana(x.value(a, e, caster, t, res))
		res.Log = append(res.Log, entry(caster, "%s restores %d mana", t.Name, restored))
	case ability.EffectActionTimerShift:
		delta := x.value(a, e, caster, t, res)
		now := t.AdjustActionTimer(delta)
		res.Log = append(res.Log, entry(caster, "%s action timer %+d (now %d)", t.Name, delta, now))
	default:
		x.logger.Warn("unsupported effect kind", zap.String("ability", a.ID), zap.String("kind", string(e.Kind)))
		res.Log = append(res.Log, warning("%s: unsupported effect kind %q", a.Name, e.Kind))
	}
}

// value evaluates an effect magnitude. Dice are rolled through the executor's
// roller; formulas see the caster's stats as bare names plus caster and target tables.
func (x *Executor) value(a *ability.Ability, e ability.Effect, caster, t *unit.Unit, res *Result) int {
	switch e.Value.Kind() {
	case ability.ValueLiteral:
		n, _ := e.Value.Literal()
		return n
	case ability.ValueDice:
		r, err := x.roller.RollExpr(e.Value.Raw())
		if err != nil {
			x.logger.Warn("bad dice value", zap.String("ability", a.ID), zap.Error(err))
			res.Log = append(res.Log, warning("%s: bad dice value %q", a.Name, e.Value.Raw()))
			return 0
		}
		return r.Total()
	default:
		if x.evaluator == nil {
			x.logger.Warn("formula evaluation unavailable", zap.String("ability", a.ID), zap.String("formula", e.Value.Raw()))
			res.Log = append(res.Log, warning("%s: incomplete formula %q evaluated as 0", a.Name, e.Value.Raw()))
			return 0
		}
		v, err := x.evaluator.Number(e.Value.Raw(), FormulaVars(caster, t))
		if err != nil {
			x.logger.Warn("formula evaluation failed",
				zap.String("ability", a.ID),
				zap.String("formula", e.Value.Raw()),
				zap.Error(err),
			)
			res.Log = append(res.Log, warning("%s: incomplete formula %q evaluated as 0", a.Name, e.Value.Raw()))
			return 0
		}
		return int(math.Floor(v))
	}
}

// FormulaVars binds the variables a formula may reference: every caster stat by
// its title (PPower, MEvade, ...) and caster/target tables that also expose
// wounds, mana, and health.
func FormulaVars(caster, target *unit.Unit) scripting.Vars {
	vars := scripting.Vars{"caster": unitVars(caster)}
	for _, n := range stat.All {
		vars[n.Title()] = caster.Stat(n)
	}
	if target != nil {
		vars["target"] = unitVars(target)
	}
	return vars
}

func unitVars(u *unit.Unit) scripting.Vars {
	v := scripting.Vars{
		"wounds":         u.Wounds(),
		"mana_left":      u.Mana(),
		"current_health": u.CurrentHealth(),
	}
	for n, val := range u.Stats().Map() {
		v[n.Title()] = val
	}
	return v
}

package ai

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// BehaviorType tags a behaviour variant.
type BehaviorType string

const (
	BehaviorAttackLethal  BehaviorType = "attack-lethal"
	BehaviorAttackInRange BehaviorType = "attack-in-range"
	BehaviorMoveAndAttack BehaviorType = "move-and-attack"
	BehaviorCastAbility   BehaviorType = "cast-ability"
	BehaviorHealAlly      BehaviorType = "heal-ally"
	BehaviorRetreat       BehaviorType = "retreat"
	BehaviorAdvance       BehaviorType = "advance"
	BehaviorWait          BehaviorType = "wait"
)

// BehaviorTypes lists every known variant.
var BehaviorTypes = []BehaviorType{
	BehaviorAttackLethal, BehaviorAttackInRange, BehaviorMoveAndAttack, BehaviorCastAbility,
	BehaviorHealAlly, BehaviorRetreat, BehaviorAdvance, BehaviorWait,
}

// BehaviorSpec is the authored form of one behaviour in a profile.
type BehaviorSpec struct {
	Type BehaviorType `yaml:"type"`
	// Name defaults to Type.
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	// Condition is an optional Lua expression over Context.Vars.
	Condition string `yaml:"condition"`
	// Ability is the action ability cast by cast-ability and heal-ally.
	Ability string `yaml:"ability"`
	// Threshold is a health percentage: heal-ally fires below it, retreat at or below it.
	Threshold int `yaml:"threshold"`
}

// Validate checks the parameters the spec's type requires.
func (s BehaviorSpec) Validate() error {
	switch s.Type {
	case BehaviorAttackLethal, BehaviorAttackInRange, BehaviorMoveAndAttack, BehaviorAdvance, BehaviorWait:
	case BehaviorCastAbility:
		if s.Ability == "" {
			return fmt.Errorf("behavior %q: ability must not be empty", s.Type)
		}
	case BehaviorHealAlly:
		if s.Ability == "" {
			return fmt.Errorf("behavior %q: ability must not be empty", s.Type)
		}
		fallthrough
	case BehaviorRetreat:
		if s.Threshold < 1 || s.Threshold > 100 {
			return fmt.Errorf("behavior %q: threshold must be in 1..100, got %d", s.Type, s.Threshold)
		}
	case "":
		return errors.New("behavior type must not be empty")
	default:
		return fmt.Errorf("unknown behavior type %q", s.Type)
	}
	return nil
}

// Behavior is one prioritized rule. Guard reports whether the rule can fire
// now; Decide may still return nil, in which case the engine moves on.
type Behavior interface {
	Name() string
	Priority() int
	// Condition returns the optional script guard, or "".
	Condition() string
	Guard(c *Context) bool
	Decide(c *Context) *Decision
}

// NewBehavior builds the variant named by s.Type.
//
// Postcondition: returns an error for an unknown type or missing parameters.
func NewBehavior(s BehaviorSpec) (Behavior, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b := base{name: s.Name, priority: s.Priority, condition: s.Condition}
	if b.name == "" {
		b.name = string(s.Type)
	}
	switch s.Type {
	case BehaviorAttackLethal:
		return attackLethal{b}, nil
	case BehaviorAttackInRange:
		return attackInRange{b}, nil
	case BehaviorMoveAndAttack:
		return moveAndAttack{b}, nil
	case BehaviorCastAbility:
		return castAbility{base: b, ability: s.Ability}, nil
	case BehaviorHealAlly:
		return healAlly{base: b, ability: s.Ability, threshold: s.Threshold}, nil
	case BehaviorRetreat:
		return retreat{base: b, threshold: s.Threshold}, nil
	case BehaviorAdvance:
		return advance{b}, nil
	default:
		return wait{b}, nil
	}
}

type base struct {
	name      string
	priority  int
	condition string
}

func (b base) Name() string      { return b.name }
func (b base) Priority() int     { return b.priority }
func (b base) Condition() string { return b.condition }

func (b base) attack(e unit.Entry) *Action {
	return &Action{Type: ActionAttack, Target: e.Unit.ID, TargetPosition: e.Position}
}

// attackLethal attacks the first target in reach that one attack would KO.
type attackLethal struct{ base }

func (b attackLethal) Guard(c *Context) bool {
	return c.CanAct && b.pick(c) != nil
}

func (b attackLethal) Decide(c *Context) *Decision {
	e := b.pick(c)
	if e == nil {
		return nil
	}
	return &Decision{Action: b.attack(*e), Order: OrderActOnly, Behavior: b.name}
}

func (attackLethal) pick(c *Context) *unit.Entry {
	for _, e := range c.Targets() {
		if c.CanKill(e.Unit) {
			return &e
		}
	}
	return nil
}

// attackInRange attacks the weakest target in reach.
type attackInRange struct{ base }

func (b attackInRange) Guard(c *Context) bool {
	return c.CanAct && len(c.Targets()) > 0
}

func (b attackInRange) Decide(c *Context) *Decision {
	e, ok := weakest(c.Targets())
	if !ok {
		return nil
	}
	return &Decision{Action: b.attack(e), Order: OrderActOnly, Behavior: b.name}
}

// moveAndAttack walks the shortest distance to a tile with a target in reach,
// then attacks the weakest target from there.
type moveAndAttack struct{ base }

func (b moveAndAttack) Guard(c *Context) bool {
	return c.CanAct && c.CanMove && len(c.Enemies) > 0
}

func (b moveAndAttack) Decide(c *Context) *Decision {
	var (
		best    *Movement
		targets []unit.Entry
	)
	for _, tile := range c.MovementTiles {
		ts := c.UnitsInAttackRangeFrom(tile)
		if len(ts) == 0 {
			continue
		}
		path, ok := c.PathTo(tile)
		if !ok || (best != nil && len(path) >= len(best.Path)) {
			continue
		}
		best, targets = &Movement{Dest: tile, Path: path}, ts
	}
	if best == nil {
		return nil
	}
	e, _ := weakest(targets)
	return &Decision{Move: best, Action: b.attack(e), Order: OrderMoveThenAct, Behavior: b.name}
}

// castAbility casts a learned action ability when it is affordable and, if it
// needs a target, one is in range.
type castAbility struct {
	base
	ability string
}

func (b castAbility) Guard(c *Context) bool {
	a, ok := usable(c, b.ability)
	if !ok {
		return false
	}
	return !a.RequiresTarget() || len(candidates(c, a)) > 0
}

func (b castAbility) Decide(c *Context) *Decision {
	a, ok := usable(c, b.ability)
	if !ok {
		return nil
	}
	act := &Action{Type: ActionAbility, AbilityID: a.ID}
	if a.RequiresTarget() {
		cands := candidates(c, a)
		if len(cands) == 0 {
			return nil
		}
		var e unit.Entry
		if friendly(a) {
			e = mostWounded(cands)
		} else {
			e, _ = weakest(cands)
		}
		act.Target, act.TargetPosition = e.Unit.ID, e.Position
	}
	return &Decision{Action: act, Order: OrderActOnly, Behavior: b.name}
}

// healAlly casts a friendly ability on the most wounded ally (self included)
// whose health is below the threshold percentage.
type healAlly struct {
	base
	ability   string
	threshold int
}

func (b healAlly) Guard(c *Context) bool {
	a, ok := usable(c, b.ability)
	return ok && len(b.hurt(c, a)) > 0
}

func (b healAlly) Decide(c *Context) *Decision {
	a, ok := usable(c, b.ability)
	if !ok {
		return nil
	}
	hurt := b.hurt(c, a)
	if len(hurt) == 0 {
		return nil
	}
	e := mostWounded(hurt)
	return &Decision{
		Action:   &Action{Type: ActionAbility, AbilityID: a.ID, Target: e.Unit.ID, TargetPosition: e.Position},
		Order:    OrderActOnly,
		Behavior: b.name,
	}
}

func (b healAlly) hurt(c *Context, a *ability.Ability) []unit.Entry {
	var out []unit.Entry
	for _, e := range c.InBandOf(a, friends(c)) {
		if healthPercent(e.Unit) < b.threshold {
			out = append(out, e)
		}
	}
	return out
}

// retreat moves to the reachable tile farthest from the nearest enemy once
// health falls to the threshold percentage.
type retreat struct {
	base
	threshold int
}

func (b retreat) Guard(c *Context) bool {
	return c.CanMove && len(c.Enemies) > 0 && c.HealthPercent() <= b.threshold
}

func (b retreat) Decide(c *Context) *Decision {
	safety := func(p grid.Position) int {
		e, _ := nearest(p, c.Enemies)
		return grid.Manhattan(p, e.Position)
	}
	bestScore := safety(c.Position)
	var dest *grid.Position
	for i, tile := range c.MovementTiles {
		if s := safety(tile); s > bestScore {
			bestScore, dest = s, &c.MovementTiles[i]
		}
	}
	return moveTo(c, dest, b.name)
}

// advance closes distance on the nearest enemy.
type advance struct{ base }

func (b advance) Guard(c *Context) bool {
	return c.CanMove && len(c.Enemies) > 0
}

func (b advance) Decide(c *Context) *Decision {
	target, ok := c.NearestEnemy()
	if !ok {
		return nil
	}
	bestDist := grid.Manhattan(c.Position, target.Position)
	var dest *grid.Position
	for i, tile := range c.MovementTiles {
		if d := grid.Manhattan(tile, target.Position); d < bestDist {
			bestDist, dest = d, &c.MovementTiles[i]
		}
	}
	return moveTo(c, dest, b.name)
}

// wait ends the turn.
type wait struct{ base }

func (wait) Guard(*Context) bool { return true }

func (b wait) Decide(*Context) *Decision { return &Decision{Behavior: b.name} }

func moveTo(c *Context, dest *grid.Position, name string) *Decision {
	if dest == nil {
		return nil
	}
	path, ok := c.PathTo(*dest)
	if !ok {
		return nil
	}
	return &Decision{Move: &Movement{Dest: *dest, Path: path}, Order: OrderMoveOnly, Behavior: name}
}

// usable returns the learned ability id when Self can act and afford it.
func usable(c *Context, id string) (*ability.Ability, bool) {
	if !c.CanAct {
		return nil, false
	}
	a, ok := c.Ability(id)
	if !ok || c.Self.Mana() < a.ManaCost() {
		return nil, false
	}
	return a, true
}

// friendly reports whether a's explicit target is meant to be an ally.
func friendly(a *ability.Ability) bool {
	for _, e := range a.Effects {
		if e.Target == ability.TargetAlly {
			return true
		}
	}
	return false
}

// friends returns Self followed by its allies.
func friends(c *Context) []unit.Entry {
	return append([]unit.Entry{{Unit: c.Self, Position: c.Position}}, c.Allies...)
}

func candidates(c *Context, a *ability.Ability) []unit.Entry {
	if friendly(a) {
		return c.InBandOf(a, friends(c))
	}
	return c.InBandOf(a, c.Enemies)
}

func mostWounded(entries []unit.Entry) unit.Entry {
	best := entries[0]
	for _, e := range entries[1:] {
		if healthPercent(e.Unit) < healthPercent(best.Unit) {
			best = e
		}
	}
	return best
}

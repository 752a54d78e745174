// Package ai decides the turns of computer-controlled units: a read-only
// Context snapshot per decision, prioritized Behaviors, and the Engine that
// picks the first behaviour willing to act.
package ai

import (
	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

// Context is the point-in-time view one decision is made from. It holds a
// snapshot of the combat state, so nothing a behaviour reads can change under it.
//
// Invariant: Allies and Enemies never contain Self or a KO'd unit.
type Context struct {
	Self     *unit.Unit
	Position grid.Position
	State    combat.State

	Allies  []unit.Entry
	Enemies []unit.Entry

	// Weapon is the widest-reaching weapon, Unarmed when nothing is equipped.
	Weapon        inventory.WeaponProfile
	MovementTiles []grid.Position
	// AttackTiles is the union of every weapon's band from Position.
	AttackTiles []combat.AttackTile

	HasMoved bool
	HasActed bool
	CanMove  bool
	CanAct   bool

	rules combat.HitRules
}

// Builder constructs contexts under a fixed set of hit rules.
type Builder struct {
	Rules combat.HitRules
}

// Build constructs a Context with combat.DefaultHitRules.
func Build(self *unit.Unit, pos grid.Position, st combat.State, hasMoved, hasActed bool) *Context {
	return Builder{Rules: combat.DefaultHitRules}.Build(self, pos, st, hasMoved, hasActed)
}

// Build constructs the Context for self standing at pos.
//
// Precondition: self is in st.Manifest.
// Postcondition: CanMove is false when HasMoved or no tile is reachable;
// CanAct is false when HasActed or self is KO'd.
func (b Builder) Build(self *unit.Unit, pos grid.Position, st combat.State, hasMoved, hasActed bool) *Context {
	snap := st.Snapshot()
	me, ok := snap.Manifest.Get(self.ID)
	if !ok {
		me = self.Clone()
	}
	c := &Context{
		Self:     me,
		Position: pos,
		State:    snap,
		Allies:   snap.Allies(me),
		Enemies:  snap.Enemies(me),
		Weapon:   me.BestWeapon(),
		HasMoved: hasMoved,
		HasActed: hasActed,
		rules:    b.Rules,
	}
	if !hasMoved {
		c.MovementTiles = combat.MovementRange(snap.Map, snap.Manifest, me, pos, me.Stat(stat.Move))
	}
	c.AttackTiles = combat.WeaponsRange(snap.Map, snap.Manifest, me, pos)
	c.CanMove = !hasMoved && len(c.MovementTiles) > 0
	c.CanAct = !hasActed && !me.IsKO()
	return c
}

// Distance returns the Manhattan distance between a and b.
func (c *Context) Distance(a, b grid.Position) int {
	return grid.Manhattan(a, b)
}

// UnitsWithin returns the living units other than Self within n tiles, allies
// and enemies alike, in manifest order.
func (c *Context) UnitsWithin(n int) []unit.Entry {
	var out []unit.Entry
	for _, e := range c.State.Manifest.Living() {
		if e.Unit.ID != c.Self.ID && grid.Manhattan(c.Position, e.Position) <= n {
			out = append(out, e)
		}
	}
	return out
}

// Targets returns the enemies attackable from the current position.
func (c *Context) Targets() []unit.Entry {
	return c.tileTargets(c.AttackTiles)
}

// UnitsInAttackRangeFrom returns the enemies Self could attack with any of its
// weapons if it stood at p.
func (c *Context) UnitsInAttackRangeFrom(p grid.Position) []unit.Entry {
	return c.tileTargets(combat.WeaponsRange(c.State.Map, c.State.Manifest, c.Self, p))
}

func (c *Context) tileTargets(tiles []combat.AttackTile) []unit.Entry {
	var out []unit.Entry
	for _, t := range tiles {
		if t.Target != nil {
			out = append(out, unit.Entry{Unit: t.Target, Position: t.Position})
		}
	}
	return out
}

// InBandOf returns the entries of candidates that a lies in range of from the
// current position.
func (c *Context) InBandOf(a *ability.Ability, candidates []unit.Entry) []unit.Entry {
	var out []unit.Entry
	for _, e := range candidates {
		if combat.InBand(c.State.Map, c.Position, e.Position, a.Reach()) {
			out = append(out, e)
		}
	}
	return out
}

// PathTo returns the path from the current position to dest within Self's
// movement budget.
func (c *Context) PathTo(dest grid.Position) ([]grid.Position, bool) {
	return combat.FindPath(c.State.Map, c.State.Manifest, c.Self, c.Position, dest, c.Self.Stat(stat.Move))
}

// PredictDamage returns the wounds one attack action from the current position
// would deal to target if every reaching weapon hit.
//
// Postcondition: never exceeds target's current health; 0 when no weapon reaches.
func (c *Context) PredictDamage(target *unit.Unit) int {
	return c.PredictDamageFrom(c.Position, target)
}

// PredictDamageFrom is PredictDamage with Self standing at from. Only weapons
// the attack resolver would swing from there are counted.
func (c *Context) PredictDamageFrom(from grid.Position, target *unit.Unit) int {
	to, ok := c.State.Manifest.PositionOf(target.ID)
	if !ok {
		return 0
	}
	total := 0
	for _, w := range combat.ReachingWeapons(c.State.Map, c.Self, from, to) {
		total += combat.WeaponDamage(c.Self, w)
	}
	if hp := target.CurrentHealth(); total > hp {
		return hp
	}
	return total
}

// HitChance returns the percent chance Self's first weapon reaching target lands,
// falling back to Weapon when none reaches.
func (c *Context) HitChance(target *unit.Unit) int {
	dt := c.Weapon.DamageType
	if to, ok := c.State.Manifest.PositionOf(target.ID); ok {
		if ws := combat.ReachingWeapons(c.State.Map, c.Self, c.Position, to); len(ws) > 0 {
			dt = ws[0].DamageType
		}
	}
	return combat.HitChance(c.rules, dt, target)
}

// CanKill reports whether a fully landed attack from the current position would KO target.
func (c *Context) CanKill(target *unit.Unit) bool {
	return !target.IsKO() && c.PredictDamage(target) >= target.CurrentHealth()
}

// NearestEnemy returns the closest enemy; ties go to manifest order.
func (c *Context) NearestEnemy() (unit.Entry, bool) {
	return nearest(c.Position, c.Enemies)
}

// WeakestEnemy returns the enemy with the least current health; ties go to
// manifest order.
func (c *Context) WeakestEnemy() (unit.Entry, bool) {
	return weakest(c.Enemies)
}

// HealthPercent returns Self's current health as a percentage of its maximum.
func (c *Context) HealthPercent() int {
	return healthPercent(c.Self)
}

// Ability returns Self's learned action ability with id.
func (c *Context) Ability(id string) (*ability.Ability, bool) {
	for _, a := range c.Self.Actions() {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Vars exposes the context to behaviour condition scripts.
func (c *Context) Vars() scripting.Vars {
	v := scripting.Vars{
		"health_pct":     c.HealthPercent(),
		"current_health": c.Self.CurrentHealth(),
		"wounds":         c.Self.Wounds(),
		"mana_left":      c.Self.Mana(),
		"allies":         len(c.Allies),
		"enemies":        len(c.Enemies),
		"targets":        len(c.Targets()),
		"has_moved":      c.HasMoved,
		"has_acted":      c.HasActed,
		"can_move":       c.CanMove,
		"can_act":        c.CanAct,
		"turn":           c.State.Turn,
	}
	for _, n := range stat.All {
		v[n.Title()] = c.Self.Stat(n)
	}
	if e, ok := c.NearestEnemy(); ok {
		v["nearest_enemy_distance"] = grid.Manhattan(c.Position, e.Position)
	}
	return v
}

func healthPercent(u *unit.Unit) int {
	maxHealth := u.MaxHealth()
	if maxHealth <= 0 {
		return 0
	}
	return u.CurrentHealth() * 100 / maxHealth
}

func nearest(from grid.Position, entries []unit.Entry) (unit.Entry, bool) {
	if len(entries) == 0 {
		return unit.Entry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if grid.Manhattan(from, e.Position) < grid.Manhattan(from, best.Position) {
			best = e
		}
	}
	return best, true
}

func weakest(entries []unit.Entry) (unit.Entry, bool) {
	if len(entries) == 0 {
		return unit.Entry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Unit.CurrentHealth() < best.Unit.CurrentHealth() {
			best = e
		}
	}
	return best, true
}

package combat

import (
	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Band is a base hit chance and the [Min, Max] percent clamp applied after the
// defender's evade is subtracted.
type Band struct {
	Base int
	Min  int
	Max  int
}

// Clamp limits v to [b.Min, b.Max].
func (b Band) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// HitRules holds the physical and magical hit bands.
type HitRules struct {
	Physical Band
	Magical  Band
}

// DefaultHitRules are used when configuration supplies nothing.
var DefaultHitRules = HitRules{
	Physical: Band{Base: 90, Min: 10, Max: 95},
	Magical:  Band{Base: 85, Min: 10, Max: 95},
}

// HitChance returns the percent chance that an attack of damage type dt lands on
// defender: base minus the matching evade stat, clamped to the band.
//
// Postcondition: rules.X.Min <= result <= rules.X.Max.
func HitChance(rules HitRules, dt inventory.DamageType, defender *unit.Unit) int {
	if dt == inventory.DamageMagical {
		return rules.Magical.Clamp(rules.Magical.Base - defender.Stat(stat.MEvade))
	}
	return rules.Physical.Clamp(rules.Physical.Base - defender.Stat(stat.PEvade))
}

// DamageTypeOf maps a damage effect kind to its damage type.
func DamageTypeOf(k ability.EffectKind) inventory.DamageType {
	if k == ability.EffectDamageMagical {
		return inventory.DamageMagical
	}
	return inventory.DamagePhysical
}

// WeaponDamage returns the wounds a hit with w deals: the weapon's power plus the
// attacker's physical or magical power.
//
// Postcondition: Returns >= 0.
func WeaponDamage(attacker *unit.Unit, w inventory.WeaponProfile) int {
	power := attacker.Stat(stat.PPower)
	if w.DamageType == inventory.DamageMagical {
		power = attacker.Stat(stat.MPower)
	}
	if d := w.Power + power; d > 0 {
		return d
	}
	return 0
}

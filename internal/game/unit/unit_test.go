package unit_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

func knight() *unit.Unit {
	return unit.New("k1", "Knight", unit.Humanoid, unit.Player, stat.Block{Health: 20, Mana: 5, PPower: 6, Speed: 10, Move: 4})
}

func TestUnit_EffectiveStats(t *testing.T) {
	u := knight()
	u.Class = &unit.Class{ID: "squire", Name: "Squire", Modifiers: stat.Block{Health: 5, PPower: 1}}
	_, err := u.Equipment.Equip(inventory.SlotBody, &inventory.EquipmentDef{ID: "mail", Name: "Mail", Category: inventory.CategoryBody, Bonuses: stat.Block{PEvade: 4, Move: -1}})
	require.NoError(t, err)
	require.NoError(t, u.ApplyModifier(condition.Modifier{Source: "slow", Stat: stat.Move, Amount: -10, Duration: 1}))

	s := u.Stats()
	assert.Equal(t, 25, s.Health)
	assert.Equal(t, 7, s.PPower)
	assert.Equal(t, 4, s.PEvade)
	assert.Equal(t, 0, s.Move, "effective stats are floored at zero")

	u.TickModifiers()
	assert.Equal(t, 3, u.Stat(stat.Move))
}

func TestUnit_DamageAndHeal(t *testing.T) {
	u := knight()
	assert.Equal(t, 5, u.TakeDamage(5))
	assert.Equal(t, 15, u.CurrentHealth())
	assert.False(t, u.IsKO())
	assert.Equal(t, 0, u.TakeDamage(-3))

	assert.Equal(t, 15, u.TakeDamage(40), "wounds are capped at max health")
	assert.True(t, u.IsKO())
	assert.Equal(t, 0, u.CurrentHealth())

	assert.Equal(t, 20, u.Heal(100))
	assert.Equal(t, 0, u.Wounds())
}

func TestUnit_Mana(t *testing.T) {
	u := knight()
	require.NoError(t, u.SpendMana(3))
	assert.Equal(t, 2, u.Mana())

	err := u.SpendMana(3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, unit.ErrInsufficientMana))
	assert.Equal(t, 2, u.Mana(), "failed spend changes nothing")

	assert.Equal(t, 3, u.RestoreMana(10))
	assert.Equal(t, 5, u.Mana())
}

func TestUnit_ActionTimerFloor(t *testing.T) {
	u := knight()
	assert.Equal(t, 30, u.AdjustActionTimer(30))
	assert.Equal(t, 0, u.AdjustActionTimer(-100))
}

func TestUnit_AssignAndLearn(t *testing.T) {
	u := knight()
	counter := &ability.Ability{ID: "counter", Name: "Counter", Type: ability.TypeReaction}
	slash := &ability.Ability{ID: "slash", Name: "Slash", Type: ability.TypeAction}

	require.NoError(t, u.Assign(counter))
	assert.Same(t, counter, u.Reaction)
	assert.Error(t, u.Assign(slash), "action abilities have no slot")

	u.Class = &unit.Class{ID: "squire", Name: "Squire", Abilities: []string{"slash"}}
	require.NoError(t, u.Learn(slash))
	require.NoError(t, u.Learn(slash))
	assert.Len(t, u.Learned, 1)
	assert.Error(t, u.Learn(&ability.Ability{ID: "fireball", Name: "Fireball", Type: ability.TypeAction}))
	assert.Equal(t, []*ability.Ability{slash}, u.Actions())
}

func TestUnit_Weapons(t *testing.T) {
	u := knight()
	assert.Equal(t, []inventory.WeaponProfile{inventory.Unarmed}, u.Weapons())

	bow := &inventory.EquipmentDef{ID: "bow", Name: "Bow", Category: inventory.CategoryHand,
		Weapon: &inventory.WeaponProfile{MinRange: 2, MaxRange: 5, Power: 3, DamageType: inventory.DamagePhysical}}
	dagger := &inventory.EquipmentDef{ID: "dagger", Name: "Dagger", Category: inventory.CategoryHand,
		Weapon: &inventory.WeaponProfile{MinRange: 1, MaxRange: 1, Power: 2, DamageType: inventory.DamagePhysical}}
	_, err := u.Equipment.Equip(inventory.SlotMainHand, dagger)
	require.NoError(t, err)
	_, err = u.Equipment.Equip(inventory.SlotOffHand, bow)
	require.NoError(t, err)
	assert.Len(t, u.Weapons(), 2)
	assert.Equal(t, 5, u.BestWeapon().MaxRange)

	m := unit.New("m1", "Wolf", unit.Monster, unit.Enemy, stat.Block{Health: 8})
	assert.Nil(t, m.Equipment)
	m.NaturalWeapon = &inventory.WeaponProfile{MinRange: 1, MaxRange: 1, Power: 3, DamageType: inventory.DamagePhysical}
	assert.Equal(t, 3, m.BestWeapon().Power)
}

func TestUnit_Clone_IsIndependent(t *testing.T) {
	u := knight()
	c := u.Clone()
	c.TakeDamage(7)
	require.NoError(t, c.ApplyModifier(condition.Modifier{Source: "x", Stat: stat.Speed, Amount: 1, Duration: 2}))
	assert.Equal(t, 0, u.Wounds())
	assert.Equal(t, 0, u.Modifiers.Len())
}

func TestUnit_Property_WoundsStayInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		u := knight()
		ops := rapid.SliceOfN(rapid.IntRange(-30, 30), 1, 20).Draw(rt, "ops")
		for _, n := range ops {
			if n >= 0 {
				u.TakeDamage(n)
			} else {
				u.Heal(-n)
			}
			assert.GreaterOrEqual(rt, u.Wounds(), 0)
			assert.LessOrEqual(rt, u.Wounds(), u.MaxHealth())
			assert.Equal(rt, u.Wounds() >= u.MaxHealth(), u.IsKO())
		}
	})
}

func TestRecord_RoundTrip(t *testing.T) {
	abilities := ability.NewRegistry()
	counter := &ability.Ability{ID: "counter", Name: "Counter", Type: ability.TypeReaction, Tags: []string{ability.TriggerAfterAttacked}}
	slash := &ability.Ability{ID: "slash", Name: "Slash", Type: ability.TypeAction}
	require.NoError(t, abilities.Register(counter))
	require.NoError(t, abilities.Register(slash))
	classes := unit.NewClassRegistry()
	squire := &unit.Class{ID: "squire", Name: "Squire", Modifiers: stat.Block{Health: 2}}
	require.NoError(t, classes.Register(squire))
	gear := inventory.NewRegistry()
	sword := &inventory.EquipmentDef{ID: "sword", Name: "Sword", Category: inventory.CategoryHand,
		Weapon: &inventory.WeaponProfile{MinRange: 1, MaxRange: 1, Power: 4, DamageType: inventory.DamagePhysical}}
	require.NoError(t, gear.Register(sword))

	u := knight()
	u.Class = squire
	require.NoError(t, u.Learn(slash))
	require.NoError(t, u.Assign(counter))
	_, err := u.Equipment.Equip(inventory.SlotMainHand, sword)
	require.NoError(t, err)
	u.TakeDamage(4)
	require.NoError(t, u.SpendMana(2))
	u.AdjustActionTimer(35)
	require.NoError(t, u.ApplyModifier(condition.Modifier{Source: "haste", Stat: stat.Speed, Amount: 3, Duration: 2}))

	data, err := json.Marshal(u.Record())
	require.NoError(t, err)
	var rec unit.Record
	require.NoError(t, json.Unmarshal(data, &rec))

	res := unit.Resolver{Classes: classes, Abilities: abilities, Equipment: gear, Logger: zap.NewNop()}
	back, err := res.FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, u.Stats(), back.Stats())
	assert.Equal(t, 4, back.Wounds())
	assert.Equal(t, 2, back.ManaUsed())
	assert.Equal(t, 35, back.ActionTimer())
	assert.Same(t, counter, back.Reaction)
	assert.Same(t, sword, back.Equipment.Weapons()[0])
	assert.True(t, back.Knows("slash"))
}

func TestRecord_UnknownReferencesWarn(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	res := unit.Resolver{Abilities: ability.NewRegistry(), Logger: zap.New(core)}
	u, err := res.FromRecord(unit.Record{
		ID: "x", Name: "X", Kind: unit.Humanoid, Controller: unit.Player,
		Class: "ghost", Learned: []string{"nope"}, Equipment: map[inventory.Slot]string{inventory.SlotHead: "hat"},
	})
	require.NoError(t, err)
	assert.Nil(t, u.Class)
	assert.Empty(t, u.Learned)
	assert.Equal(t, 3, logs.Len())

	_, err = res.FromRecord(unit.Record{ID: "x", Name: "X", Kind: "dragon", Controller: unit.Player})
	assert.Error(t, err)
}

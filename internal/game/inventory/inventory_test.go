package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

func sword() *inventory.EquipmentDef {
	return &inventory.EquipmentDef{
		ID: "sword", Name: "Sword", Category: inventory.CategoryHand,
		Weapon: &inventory.WeaponProfile{MinRange: 1, MaxRange: 1, Power: 4, DamageType: inventory.DamagePhysical},
	}
}

func bow() *inventory.EquipmentDef {
	return &inventory.EquipmentDef{
		ID: "bow", Name: "Bow", Category: inventory.CategoryHand,
		Weapon: &inventory.WeaponProfile{MinRange: 2, MaxRange: 5, Power: 3, DamageType: inventory.DamagePhysical},
	}
}

func helm() *inventory.EquipmentDef {
	return &inventory.EquipmentDef{ID: "helm", Name: "Helm", Category: inventory.CategoryHead, Bonuses: stat.Block{PEvade: 2, Health: 3}}
}

func TestEquipment_EquipAndBonus(t *testing.T) {
	e := inventory.NewEquipment()
	_, err := e.Equip(inventory.SlotMainHand, sword())
	require.NoError(t, err)
	_, err = e.Equip(inventory.SlotHead, helm())
	require.NoError(t, err)

	_, err = e.Equip(inventory.SlotBody, helm())
	assert.Error(t, err, "a head item does not fit the body slot")
	_, err = e.Equip(inventory.SlotHead, nil)
	assert.Error(t, err)

	assert.Equal(t, stat.Block{PEvade: 2, Health: 3}, e.Bonus())
	assert.Equal(t, map[inventory.Slot]string{inventory.SlotMainHand: "sword", inventory.SlotHead: "helm"}, e.IDs())

	prev, err := e.Equip(inventory.SlotHead, &inventory.EquipmentDef{ID: "cap", Name: "Cap", Category: inventory.CategoryHead})
	require.NoError(t, err)
	assert.Equal(t, "helm", prev.ID)
	assert.Equal(t, "cap", e.Unequip(inventory.SlotHead).ID)
	assert.Nil(t, e.Unequip(inventory.SlotHead))
}

func TestEquipment_Weapons_DualWield(t *testing.T) {
	e := inventory.NewEquipment()
	assert.Empty(t, e.Weapons())
	assert.Equal(t, inventory.Unarmed, e.BestWeapon())

	_, err := e.Equip(inventory.SlotOffHand, bow())
	require.NoError(t, err)
	_, err = e.Equip(inventory.SlotMainHand, sword())
	require.NoError(t, err)

	ws := e.Weapons()
	require.Len(t, ws, 2)
	assert.Equal(t, "sword", ws[0].ID, "main hand first")
	assert.Equal(t, 5, e.BestWeapon().MaxRange)

	c := e.Clone()
	c.Unequip(inventory.SlotMainHand)
	assert.Len(t, e.Weapons(), 2)
}

func TestEquipmentDef_Validate(t *testing.T) {
	assert.NoError(t, sword().Validate())
	bad := helm()
	bad.Weapon = &inventory.WeaponProfile{MinRange: 1, MaxRange: 1, DamageType: inventory.DamagePhysical}
	assert.Error(t, bad.Validate())
	assert.Error(t, (&inventory.EquipmentDef{ID: "x", Name: "X", Category: "feet"}).Validate())

	badRange := sword()
	badRange.Weapon.MinRange = 0
	assert.Error(t, badRange.Validate())
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	data := `
id: longbow
name: Longbow
category: hand
weapon: {min_range: 2, max_range: 6, power: 5, damage_type: physical}
value: 40
---
id: amulet
name: Amulet
category: accessory
bonuses: {mpower: 2, attunement: 1}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gear.yaml"), []byte(data), 0o644))
	reg, err := inventory.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	amulet, ok := reg.Get("amulet")
	require.True(t, ok)
	assert.Equal(t, 2, amulet.Bonuses.MPower)

	_, err = inventory.LoadFromBytes([]byte("id: x\nname: X\ncategory: hand\nweight: 3\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestResolve_SkipsUnknownWithWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reg := inventory.NewRegistry()
	require.NoError(t, reg.Register(sword()))
	require.NoError(t, reg.Register(helm()))

	got := inventory.Resolve(reg, []string{"helm", "ghost", "sword"}, zap.New(core))
	require.Len(t, got, 2)
	assert.Equal(t, "helm", got[0].ID)
	assert.Equal(t, "sword", got[1].ID)
	assert.Equal(t, 1, logs.FilterMessage("unknown equipment id").Len())
}

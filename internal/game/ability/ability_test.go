package ability_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

const fireball = `
id: fireball
name: Fireball
description: A burst of flame.
type: action
xp_price: 120
tags: [fire, magic]
range: {min: 2, max: 4}
effects:
  - kind: mana-cost
    target: self
    value: 6
  - kind: damage-magical
    target: enemy
    value: MPower * 1.5
  - kind: stat-penalty
    target: enemy
    stat: mevade
    value: 2
    duration: 2
`

func TestLoadFromBytes_Fireball(t *testing.T) {
	abilities, err := ability.LoadFromBytes([]byte(fireball))
	require.NoError(t, err)
	require.Len(t, abilities, 1)
	a := abilities[0]

	assert.Equal(t, "fireball", a.Key())
	assert.Equal(t, ability.TypeAction, a.Type)
	assert.True(t, a.HasTag("fire"))
	assert.False(t, a.HasTag("ice"))
	assert.True(t, a.RequiresTarget())
	assert.Equal(t, 6, a.ManaCost())
	assert.Equal(t, ability.Range{Min: 2, Max: 4}, a.Reach())
	require.Len(t, a.Effects, 3)
	assert.Equal(t, ability.ValueFormula, a.Effects[1].Value.Kind())
	assert.Equal(t, "MPower * 1.5", a.Effects[1].Value.Raw())
	assert.Equal(t, stat.MEvade, a.Effects[2].Stat)
}

func TestLoadFromBytes_MultipleDocuments(t *testing.T) {
	data := `
id: a
name: A
type: passive
---
id: b
name: B
type: reaction
tags: [after-attacked]
`
	abilities, err := ability.LoadFromBytes([]byte(data))
	require.NoError(t, err)
	require.Len(t, abilities, 2)
	assert.True(t, abilities[1].HasTag(ability.TriggerAfterAttacked))
	assert.Equal(t, ability.Range{Min: 1, Max: 1}, abilities[0].Reach())
}

func TestLoadFromBytes_RejectsStructuralErrors(t *testing.T) {
	cases := map[string]string{
		"unknown field": "id: x\nname: X\ntype: action\npower: 3\n",
		"missing id":    "name: X\ntype: action\n",
		"bad type":      "id: x\nname: X\ntype: spell\n",
		"bad range":     "id: x\nname: X\ntype: action\nrange: {min: 3, max: 1}\n",
		"stat missing":  "id: x\nname: X\ntype: action\neffects:\n  - {kind: stat-bonus, target: self, value: 1}\n",
		"mana formula":  "id: x\nname: X\ntype: action\neffects:\n  - {kind: mana-cost, target: self, value: MPower}\n",
		"hit chance":    "id: x\nname: X\ntype: action\neffects:\n  - {kind: heal, target: self, value: 1, hit_chance: 120}\n",
		"value mapping": "id: x\nname: X\ntype: action\neffects:\n  - {kind: heal, target: self, value: {a: 1}}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ability.LoadFromBytes([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseValue_Kinds(t *testing.T) {
	v := ability.ParseValue(" 7 ")
	n, ok := v.Literal()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	assert.Equal(t, ability.ValueDice, ability.ParseValue("2d6+1").Kind())
	assert.Equal(t, ability.ValueFormula, ability.ParseValue("PPower * 2").Kind())
	assert.Equal(t, ability.ValueLiteral, ability.ParseValue("").Kind())
	assert.Equal(t, "0", ability.Value{}.Raw())
}

func TestValue_JSON(t *testing.T) {
	e := ability.Effect{Kind: ability.EffectHeal, Target: ability.TargetAlly, Value: ability.ParseValue("1d8")}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value":"1d8"`)

	var back ability.Effect
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ability.ValueDice, back.Value.Kind())

	require.NoError(t, json.Unmarshal([]byte(`{"kind":"heal","target":"self","value":4}`), &back))
	n, ok := back.Value.Literal()
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fireball.yaml"), []byte(fireball), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reg, err := ability.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Has("fireball"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dupe.yaml"), []byte(fireball), 0o644))
	_, err = ability.LoadDirectory(dir)
	assert.Error(t, err, "duplicate ids are structural errors")
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := ability.LoadDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

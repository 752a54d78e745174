package enemy

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// chanceResolution is the denominator used to roll fractional drop chances.
const chanceResolution = 10000

// ItemDrop defines a single equipment entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item" json:"item"`
	Chance float64 `yaml:"chance" json:"chance"`
	MinQty int     `yaml:"min_qty" json:"min_qty"`
	MaxQty int     `yaml:"max_qty" json:"max_qty"`
}

// LootTable defines the possible equipment drops of an enemy definition.
type LootTable struct {
	Items []ItemDrop `yaml:"items" json:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff all item constraints hold; an empty table is valid.
func (lt *LootTable) Validate() error {
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// LootRoller turns a loot table into a list of equipment ids.
type LootRoller interface {
	// Roll returns the dropped equipment ids. When forcedMinimum > 0 the result
	// holds at least that many ids, provided the table has any items.
	Roll(lt *LootTable, forcedMinimum int) []string
}

// DiceLootRoller rolls loot from an injected dice.Source.
type DiceLootRoller struct {
	src dice.Source
}

// NewLootRoller returns a LootRoller drawing from src.
//
// Precondition: src must not be nil.
func NewLootRoller(src dice.Source) *DiceLootRoller {
	return &DiceLootRoller{src: src}
}

// Roll rolls each drop independently, then tops the result up to forcedMinimum
// with uniformly chosen drops.
//
// Precondition: lt, when non-nil, has passed Validate.
// Postcondition: each dropped entry contributes between MinQty and MaxQty ids.
func (r *DiceLootRoller) Roll(lt *LootTable, forcedMinimum int) []string {
	if lt == nil || len(lt.Items) == 0 {
		return nil
	}
	var out []string
	for _, item := range lt.Items {
		if r.src.Intn(chanceResolution) < int(item.Chance*chanceResolution) {
			out = r.drop(out, item)
		}
	}
	for len(out) < forcedMinimum {
		out = r.drop(out, lt.Items[r.src.Intn(len(lt.Items))])
	}
	return out
}

func (r *DiceLootRoller) drop(out []string, item ItemDrop) []string {
	qty := item.MinQty
	if spread := item.MaxQty - item.MinQty; spread > 0 {
		qty += r.src.Intn(spread + 1)
	}
	for i := 0; i < qty; i++ {
		out = append(out, item.ItemID)
	}
	return out
}

package condition

import "github.com/cory-johannsen/tactics/internal/game/stat"

// Total returns the net adjustment to n from every active modifier.
func (s *ActiveSet) Total(n stat.Name) int {
	total := 0
	for _, am := range s.mods {
		if am.Stat == n {
			total += am.Amount
		}
	}
	return total
}

// Bonus returns the net adjustment of every stat as a Block.
//
// Postcondition: Bonus().Get(n) == Total(n) for every n in stat.All.
func (s *ActiveSet) Bonus() stat.Block {
	var b stat.Block
	for _, am := range s.mods {
		b = b.With(am.Stat, b.Get(am.Stat)+am.Amount)
	}
	return b
}

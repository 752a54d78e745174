package combat

import (
	"sort"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// admissible reports whether mover may stand on p: in bounds, walkable, and not
// occupied by any other unit. KO'd units keep blocking their tile.
func admissible(m *grid.Map, manifest *unit.Manifest, mover *unit.Unit, p grid.Position) bool {
	if !m.IsWalkable(p) {
		return false
	}
	occ, ok := manifest.UnitAt(p)
	return !ok || (mover != nil && occ.ID == mover.ID)
}

// MovementRange returns every tile mover can reach from origin spending at most
// budget movement points, one point per orthogonal step.
//
// Postcondition: origin is excluded; the result is in row-major order; budget
// <= 0 yields an empty result.
func MovementRange(m *grid.Map, manifest *unit.Manifest, mover *unit.Unit, origin grid.Position, budget int) []grid.Position {
	dist := reach(m, manifest, mover, origin, budget, nil)
	out := make([]grid.Position, 0, len(dist))
	for p := range dist {
		if p != origin {
			out = append(out, p)
		}
	}
	sortRowMajor(out)
	return out
}

// reach runs a bounded breadth-first search from origin and returns the step
// count to every admissible tile within budget. When prev is non-nil it records
// each tile's predecessor.
func reach(m *grid.Map, manifest *unit.Manifest, mover *unit.Unit, origin grid.Position, budget int, prev map[grid.Position]grid.Position) map[grid.Position]int {
	dist := map[grid.Position]int{origin: 0}
	if budget <= 0 {
		return dist
	}
	queue := []grid.Position{origin}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] == budget {
			continue
		}
		for _, n := range m.Neighbors(cur) {
			if _, seen := dist[n]; seen || !admissible(m, manifest, mover, n) {
				continue
			}
			dist[n] = dist[cur] + 1
			if prev != nil {
				prev[n] = cur
			}
			queue = append(queue, n)
		}
	}
	return dist
}

// AttackTile is one tile of an attack band.
type AttackTile struct {
	Position grid.Position
	// Blocked is true when the tile is opaque or, for ranged bands, out of sight.
	Blocked bool
	// Target is the living opposing unit that may be attacked here, or nil.
	Target *unit.Unit
}

// ReachOf converts a weapon profile into an attack band.
func ReachOf(w inventory.WeaponProfile) ability.Range {
	return ability.Range{Min: w.MinRange, Max: w.MaxRange}
}

// AttackRange returns every in-bounds tile whose Manhattan distance from origin
// lies in [band.Min, band.Max], annotated with blocking and targets.
//
// Postcondition: deterministic, row-major order; a KO'd unit is never a Target.
func AttackRange(m *grid.Map, manifest *unit.Manifest, attacker *unit.Unit, origin grid.Position, band ability.Range) []AttackTile {
	var out []AttackTile
	for y := origin.Y - band.Max; y <= origin.Y+band.Max; y++ {
		for x := origin.X - band.Max; x <= origin.X+band.Max; x++ {
			p := grid.Position{X: x, Y: y}
			d := grid.Manhattan(origin, p)
			if d < band.Min || d > band.Max || !m.InBounds(p) {
				continue
			}
			cell, _ := m.Cell(p)
			t := AttackTile{Position: p}
			t.Blocked = cell.Terrain.Opaque() || (band.Max > 1 && !m.LineOfSight(origin, p))
			if occ, ok := manifest.UnitAt(p); ok && !t.Blocked && !occ.IsKO() &&
				attacker != nil && occ.Controller.Opposes(attacker.Controller) {
				t.Target = occ
			}
			out = append(out, t)
		}
	}
	return out
}

// WeaponsRange returns the union of the attack bands of every weapon attacker
// swings. A tile is blocked only when every band covering it is blocked, and it
// holds a Target when any band reaches the unit there.
//
// Precondition: attacker is non-nil.
// Postcondition: deterministic, row-major order.
func WeaponsRange(m *grid.Map, manifest *unit.Manifest, attacker *unit.Unit, origin grid.Position) []AttackTile {
	merged := make(map[grid.Position]AttackTile)
	for _, w := range attacker.Weapons() {
		for _, t := range AttackRange(m, manifest, attacker, origin, ReachOf(w)) {
			prev, seen := merged[t.Position]
			if !seen {
				merged[t.Position] = t
				continue
			}
			prev.Blocked = prev.Blocked && t.Blocked
			if prev.Target == nil {
				prev.Target = t.Target
			}
			merged[t.Position] = prev
		}
	}
	out := make([]AttackTile, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Position, out[j].Position
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

// ReachingWeapons returns the weapons of attacker whose band reaches to from
// from, in the order the attack resolver swings them.
func ReachingWeapons(m *grid.Map, attacker *unit.Unit, from, to grid.Position) []inventory.WeaponProfile {
	var out []inventory.WeaponProfile
	for _, w := range attacker.Weapons() {
		if InBand(m, from, to, ReachOf(w)) {
			out = append(out, w)
		}
	}
	return out
}

// Targets returns the units attackable from origin within band, in row-major order.
func Targets(m *grid.Map, manifest *unit.Manifest, attacker *unit.Unit, origin grid.Position, band ability.Range) []*unit.Unit {
	var out []*unit.Unit
	for _, t := range AttackRange(m, manifest, attacker, origin, band) {
		if t.Target != nil {
			out = append(out, t.Target)
		}
	}
	return out
}

// InBand reports whether to is attackable from from within band on m: distance
// in range, target tile not opaque, and in sight for ranged bands.
func InBand(m *grid.Map, from, to grid.Position, band ability.Range) bool {
	d := grid.Manhattan(from, to)
	if d < band.Min || d > band.Max {
		return false
	}
	cell, ok := m.Cell(to)
	if !ok || cell.Terrain.Opaque() {
		return false
	}
	return band.Max <= 1 || m.LineOfSight(from, to)
}

func sortRowMajor(ps []grid.Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}

package combat

import (
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// FindPath returns the shortest path from start to dest that mover can walk
// with budget movement points.
//
// Postcondition: the path excludes start and includes dest; len(path) <= budget;
// start == dest yields an empty non-nil path; ok is false when dest is
// unreachable within budget. Ties break by grid.NeighborOrder.
func FindPath(m *grid.Map, manifest *unit.Manifest, mover *unit.Unit, start, dest grid.Position, budget int) ([]grid.Position, bool) {
	if start == dest {
		return []grid.Position{}, true
	}
	if !admissible(m, manifest, mover, dest) {
		return nil, false
	}
	prev := make(map[grid.Position]grid.Position)
	dist := reach(m, manifest, mover, start, budget, prev)
	n, ok := dist[dest]
	if !ok {
		return nil, false
	}
	path := make([]grid.Position, n)
	for cur, i := dest, n-1; i >= 0; i-- {
		path[i] = cur
		cur = prev[cur]
	}
	return path, true
}

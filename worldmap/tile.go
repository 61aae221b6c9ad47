// Package worldmap builds and queries the static tile grid: obstacle and
// movement costs, island partitioning, portal graphs, areas, and the A*
// search passes consult. The map is immutable after construction.
package worldmap

import "github.com/pthm-cable/gridsim/geom"

// TileKind enumerates the three tile kinds a map cell can have.
type TileKind uint8

const (
	Obstacle TileKind = iota
	Normal
	Fast
)

// Infinite stands in for an unreachable/obstacle cost or distance.
const Infinite = int(1) << 30

// Portal teleports an entity stepping into From while moving in
// Direction (or any direction, if HasDirection is false) to To, in the
// same move.
type Portal struct {
	From, To     int
	Direction    geom.Direction
	HasDirection bool
}

// Area names a set of tiles. Areas may overlap; the last definition wins
// both for the per-cell lookup and for name lookup.
type Area struct {
	Name        string
	Description string
	Cells       []int
}

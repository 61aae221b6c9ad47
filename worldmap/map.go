package worldmap

import (
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/config"
	"github.com/pthm-cable/gridsim/geom"
)

// Map is the immutable static map every pass consults: tile costs,
// portal teleports, island partitioning, and the precomputed portal
// graph. Construct one with New; it never changes after that.
type Map struct {
	grid    geom.Grid
	tiles   []TileKind
	portals []Portal
	areas   []Area
	cfg     *config.Config

	islandIndex          []int
	portalsByFrom        map[int][]int
	portalsByIslandFrom  map[int][]int // islandId -> portal indices whose From is on that island
	portalsByIslandExits map[int][]int // islandId -> portal indices whose To is on that island

	areaIndex  []int
	areaByName map[string]int

	graph *portalGraph
}

// New builds a Map from a grid, tile kinds, portals and areas, running
// the full construction pipeline: island partitioning, portal indexing,
// portal-distance A*, portal APSP, and area preprocessing. Returns
// ErrInvalidMap if any portal index falls outside the grid.
func New(g geom.Grid, tiles []TileKind, portals []Portal, areas []Area, cfg *config.Config) (*Map, error) {
	if len(tiles) != g.Len() {
		return nil, ErrInvalidMap
	}
	for _, p := range portals {
		if !g.InBounds(p.From) || !g.InBounds(p.To) {
			return nil, ErrInvalidMap
		}
	}

	m := &Map{
		grid:                 g,
		tiles:                append([]TileKind(nil), tiles...),
		portals:              append([]Portal(nil), portals...),
		areas:                areas,
		cfg:                  cfg,
		portalsByFrom:        make(map[int][]int),
		portalsByIslandFrom:  make(map[int][]int),
		portalsByIslandExits: make(map[int][]int),
		areaByName:           make(map[string]int),
	}

	m.islandIndex = partitionIslands(g, m.tiles)

	for i, p := range m.portals {
		m.portalsByFrom[p.From] = append(m.portalsByFrom[p.From], i)
		if isl := m.islandIndex[p.From]; isl >= 0 {
			m.portalsByIslandFrom[isl] = append(m.portalsByIslandFrom[isl], i)
		}
		if isl := m.islandIndex[p.To]; isl >= 0 {
			m.portalsByIslandExits[isl] = append(m.portalsByIslandExits[isl], i)
		}
	}

	m.areaIndex = make([]int, g.Len())
	for i := range m.areaIndex {
		m.areaIndex[i] = -1
	}
	for idx, a := range areas {
		for _, cell := range a.Cells {
			if g.InBounds(cell) {
				m.areaIndex[cell] = idx
			}
		}
		m.areaByName[a.Name] = idx
	}

	m.graph = buildPortalGraph(m)

	return m, nil
}

// Grid returns the map's coordinate system.
func (m *Map) Grid() geom.Grid { return m.grid }

// IsObstacle reports whether tile i blocks movement.
func (m *Map) IsObstacle(i int) bool {
	return !m.grid.InBounds(i) || m.tiles[i] == Obstacle
}

// Cost returns the movement cost, in ticks, of stepping onto tile i.
func (m *Map) Cost(i int) int {
	if m.IsObstacle(i) {
		return Infinite
	}
	if m.tiles[i] == Fast {
		return m.cfg.Tiles.FastCost
	}
	return m.cfg.Tiles.NormalCost
}

// IslandOf returns tile i's island id, or -1 if it is an obstacle.
func (m *Map) IslandOf(i int) int {
	if !m.grid.InBounds(i) {
		return -1
	}
	return m.islandIndex[i]
}

// AreaAt returns the index into the constructor's areas slice that tile i
// belongs to (last-definition-wins), or -1 if uncovered.
func (m *Map) AreaAt(i int) int {
	if !m.grid.InBounds(i) {
		return -1
	}
	return m.areaIndex[i]
}

// AreaByName returns the last-defined area index registered under name.
func (m *Map) AreaByName(name string) (int, bool) {
	idx, ok := m.areaByName[name]
	return idx, ok
}

// EstimateDistance returns the Manhattan distance between a and b, or
// Infinite if either is an obstacle. Admissible given the tile costs
// A* uses it with.
func (m *Map) EstimateDistance(a, b int) int {
	if m.IsObstacle(a) || m.IsObstacle(b) {
		return Infinite
	}
	d, err := m.grid.Manhattan(a, b)
	if err != nil {
		return Infinite
	}
	return d
}

// portalAt returns the first portal at tileIdx whose direction
// constraint matches d (or is unrestricted), preferring an exact
// direction match over an unrestricted one.
func (m *Map) portalAt(tileIdx int, d geom.Direction) (Portal, bool) {
	var unrestricted *Portal
	for _, idx := range m.portalsByFrom[tileIdx] {
		p := m.portals[idx]
		if p.HasDirection && p.Direction == d {
			return p, true
		}
		if !p.HasDirection && unrestricted == nil {
			pp := p
			unrestricted = &pp
		}
	}
	if unrestricted != nil {
		return *unrestricted, true
	}
	return Portal{}, false
}

// resolveDestination returns the tile that actually results from
// stepping onto adjIdx while moving in direction d: adjIdx itself, or a
// matching portal's To tile.
func (m *Map) resolveDestination(adjIdx int, d geom.Direction) int {
	if p, ok := m.portalAt(adjIdx, d); ok {
		return p.To
	}
	return adjIdx
}

// Neighbors returns the reachable neighbour tile indices of i. If
// entryDirection is non-nil, only that cardinal direction is considered
// (used to recover the direction of each hop of a found path); otherwise
// all four are (used by the pathfinder's neighbour expansion). Portal entries are substituted for their
// destination tile.4's query surface.
func (m *Map) Neighbors(i int, entryDirection *geom.Direction) []int {
	dirs := [...]geom.Direction{geom.Up, geom.Down, geom.Left, geom.Right}
	out := make([]int, 0, 4)
	for _, d := range dirs {
		if entryDirection != nil && d != *entryDirection {
			continue
		}
		adj, ok := m.grid.Step(i, d)
		if !ok || m.tiles[adj] == Obstacle {
			continue
		}
		out = append(out, m.resolveDestination(adj, d))
	}
	return out
}

// GenerateMove builds the Move an entity at fromIdx gets by stepping in
// direction, or reports failure: out of bounds, static obstacle, dynamic
// obstacle, or a portal target outside the grid.
func (m *Map) GenerateMove(fromIdx int, direction geom.Direction, dynamicObstacle func(int) bool) (components.Move, bool) {
	adj, ok := m.grid.Step(fromIdx, direction)
	if !ok || m.tiles[adj] == Obstacle {
		return components.Move{}, false
	}
	if dynamicObstacle != nil && dynamicObstacle(adj) {
		return components.Move{}, false
	}
	target := m.resolveDestination(adj, direction)
	if !m.grid.InBounds(target) {
		return components.Move{}, false
	}
	cost := m.Cost(adj)
	x, y, err := m.grid.Coord(target)
	if err != nil {
		return components.Move{}, false
	}
	return components.Move{
		TotalTicks:     cost,
		RemainingTicks: cost,
		TargetIdx:      target,
		TargetPosition: components.Position{X: x, Y: y},
	}, true
}

// isPortalFromTile reports whether tileIdx is some portal's From tile.
func (m *Map) isPortalFromTile(tileIdx int) bool {
	return len(m.portalsByFrom[tileIdx]) > 0
}

// portalDistance runs the construction-time low-level A* from "from" to
// "to": plain grid adjacency (no portal teleports so the route can't
// shortcut through a third portal), and every tile that is another
// portal's From is treated as blocked unless it is the goal itself.
func (m *Map) portalDistance(from, to int) (int, bool) {
	expand := func(cur int) []int {
		out := make([]int, 0, 4)
		for _, n := range m.grid.Neighbors4(cur) {
			if m.tiles[n] == Obstacle {
				continue
			}
			if n != to && m.isPortalFromTile(n) {
				continue
			}
			out = append(out, n)
		}
		return out
	}
	stepCost := func(_, next int) (float64, bool) {
		return float64(m.Cost(next)), true
	}
	res := runAStar(m.grid, from, to, expand, stepCost)
	if !res.reached {
		return 0, false
	}
	return int(res.goalCost), true
}

// FindLowLevelPath runs the game-time low-level A* PathFindingPass uses
// within a single island: expansion goes through Neighbors (so an
// in-island portal is a valid shortcut), and colliders flags tiles
// currently occupied by another mover's body/target, incurring the
// dynamic-obstacle penalty or hard block describes. Returns
// the direction sequence, or a single-step fallback toward the goal if
// full search fails, or (nil, false) if nothing at all makes progress.
func (m *Map) FindLowLevelPath(start, goal int, colliders func(int) bool) ([]geom.Direction, bool) {
	if start == goal {
		return nil, false
	}
	expand := func(cur int) []int {
		return m.Neighbors(cur, nil)
	}
	stepCost := func(_, next int) (float64, bool) {
		if m.IsObstacle(next) {
			return 0, false
		}
		base := float64(m.Cost(next))
		if colliders != nil && colliders(next) {
			dist := m.EstimateDistance(next, goal)
			if dist <= m.cfg.Pathing.HardBlockDistance {
				return 0, false
			}
			base += m.cfg.Pathing.DynamicObstaclePenaltyNumerator / float64(dist)
		}
		return base, true
	}

	// dirsOf maps each path hop to the direction that produces it, so a hop
	// through a portal becomes the step onto the portal's entry tile.
	dirsOf := func(path []int) []geom.Direction {
		var dirs []geom.Direction
	hops:
		for i := 0; i+1 < len(path); i++ {
			for _, d := range [...]geom.Direction{geom.Up, geom.Down, geom.Left, geom.Right} {
				if nb := m.Neighbors(path[i], &d); len(nb) == 1 && nb[0] == path[i+1] {
					dirs = append(dirs, d)
					continue hops
				}
			}
			return nil
		}
		return dirs
	}

	res := runAStar(m.grid, start, goal, expand, stepCost)
	if res.reached {
		path := reconstructPath(res.cameFrom, start, goal)
		return dirsOf(path), true
	}
	if res.hasBest && res.bestNode != start {
		path := reconstructPath(res.cameFrom, start, res.bestNode)
		if dirs := dirsOf(path); len(dirs) > 0 {
			return dirs, true
		}
	}
	return m.fallbackStep(start, goal, colliders)
}

// fallbackStep tries each cardinal direction that is a valid move and
// reduces the Manhattan distance to goal.6's single-step
// fallback when A* yields nothing.
func (m *Map) fallbackStep(start, goal int, colliders func(int) bool) ([]geom.Direction, bool) {
	currentDist := m.EstimateDistance(start, goal)
	for _, d := range [...]geom.Direction{geom.Up, geom.Down, geom.Left, geom.Right} {
		adj, ok := m.grid.Step(start, d)
		if !ok || m.tiles[adj] == Obstacle {
			continue
		}
		if colliders != nil && colliders(adj) {
			continue
		}
		if m.EstimateDistance(adj, goal) < currentDist {
			return []geom.Direction{d}, true
		}
	}
	return nil, false
}

// FindPath is the full PathFindingPass planning algorithm: same-island low-level A*, or cross-island portal routing when
// start and goal lie on different islands. Returns the direction
// sequence to follow this tick and the tile index the resulting
// PathPlan should target (goal itself for same-island; for cross-island,
// also goal -- subsequent ticks re-plan as the entity crosses into each
// successive island).
func (m *Map) FindPath(start, goal int, colliders func(int) bool) (dirs []geom.Direction, targetIndex int, ok bool) {
	startIsland := m.IslandOf(start)
	goalIsland := m.IslandOf(goal)
	if startIsland < 0 || goalIsland < 0 {
		return nil, 0, false
	}
	if startIsland == goalIsland {
		dirs, ok = m.FindLowLevelPath(start, goal, colliders)
		return dirs, goal, ok
	}

	entries := m.PortalEntriesOf(startIsland)
	exits := m.PortalExitsOf(goalIsland)
	bestCost := -1
	bestEntry := -1
	for _, e := range entries {
		for _, x := range exits {
			c, okCost := m.PortalAPSPCost(e, x)
			if !okCost {
				continue
			}
			if bestCost == -1 || c < bestCost {
				bestCost = c
				bestEntry = e
			}
		}
	}
	if bestEntry == -1 {
		return nil, 0, false
	}

	firstPortalFrom := m.Portal(bestEntry).From
	dirs, ok = m.FindLowLevelPath(start, firstPortalFrom, colliders)
	if !ok {
		return nil, 0, false
	}
	return dirs, goal, true
}

// PortalEntriesOf returns the portal indices whose From tile is on
// island id.
func (m *Map) PortalEntriesOf(island int) []int {
	return m.portalsByIslandFrom[island]
}

// PortalExitsOf returns the portal indices whose To tile is on island
// id.
func (m *Map) PortalExitsOf(island int) []int {
	return m.portalsByIslandExits[island]
}

// PortalAPSPCost returns the precomputed shortest cost from portal i to
// portal j.
func (m *Map) PortalAPSPCost(i, j int) (int, bool) {
	return m.graph.Cost(i, j)
}

// PortalAPSPPath returns the precomputed portal-index sequence from
// portal i to portal j.
func (m *Map) PortalAPSPPath(i, j int) ([]int, bool) {
	return m.graph.Path(i, j)
}

// Portal returns the portal at index idx.
func (m *Map) Portal(idx int) Portal { return m.portals[idx] }

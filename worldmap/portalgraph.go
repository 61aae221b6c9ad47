package worldmap

import (
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// portalGraph holds the precomputed portal-to-portal all-pairs shortest
// paths: a weighted directed graph over portals, edge i->j weighted by
// the in-island A* cost from portals[i].To to portals[j].From, solved
// with Floyd-Warshall for every reachable pair.
type portalGraph struct {
	cost map[[2]int]int
	path map[[2]int][]int
}

// buildPortalGraph runs the in-island A* distance search between every
// pair of portals that share an island (p.To's island == q.From's
// island), then solves all-pairs shortest paths over the resulting
// directed graph with gonum's Floyd-Warshall.
func buildPortalGraph(m *Map) *portalGraph {
	n := len(m.portals)
	g := simple.NewWeightedDirectedGraph(0, Infinite64)
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}

	for i, p := range m.portals {
		toIsland := m.islandIndex[p.To]
		if toIsland < 0 {
			continue
		}
		for j, q := range m.portals {
			if i == j {
				continue
			}
			if m.islandIndex[q.From] != toIsland {
				continue
			}
			cost, ok := m.portalDistance(p.To, q.From)
			if !ok {
				continue
			}
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(i), T: simple.Node(j), W: float64(cost)})
		}
	}

	// Every edge weight is a non-negative A* distance, so a negative
	// cycle is impossible; the reported ok is always true here.
	shortest, _ := path.FloydWarshall(g)

	pg := &portalGraph{cost: map[[2]int]int{}, path: map[[2]int][]int{}}
	for i := 0; i < n; i++ {
		pg.cost[[2]int{i, i}] = 0
		pg.path[[2]int{i, i}] = []int{i}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			w := shortest.Weight(int64(i), int64(j))
			if w >= Infinite64 {
				continue
			}
			nodes, _, _ := shortest.Between(int64(i), int64(j))
			if len(nodes) == 0 {
				continue
			}
			idxPath := make([]int, len(nodes))
			for k, nd := range nodes {
				idxPath[k] = int(nd.ID())
			}
			pg.cost[[2]int{i, j}] = int(w)
			pg.path[[2]int{i, j}] = idxPath
		}
	}
	return pg
}

// Infinite64 is the "unreachable" sentinel weight gonum's weighted graph
// uses for absent edges.
const Infinite64 = 1e9

// Cost returns the precomputed APSP cost from portal i to portal j, and
// whether the pair is reachable.
func (pg *portalGraph) Cost(i, j int) (int, bool) {
	c, ok := pg.cost[[2]int{i, j}]
	return c, ok
}

// Path returns the precomputed portal-index sequence from portal i to j.
func (pg *portalGraph) Path(i, j int) ([]int, bool) {
	p, ok := pg.path[[2]int{i, j}]
	return p, ok
}

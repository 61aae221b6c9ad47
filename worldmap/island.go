package worldmap

import "github.com/pthm-cable/gridsim/geom"

// partitionIslands assigns every non-obstacle tile a maximal 4-connected
// component id; obstacles get -1. Portals never count as adjacency here
// -- this walks plain grid neighbours only. The flood fill uses an
// explicit stack rather than recursion so the depth bound is the tile
// count, not the Go call stack.
func partitionIslands(g geom.Grid, tiles []TileKind) []int {
	islandIndex := make([]int, len(tiles))
	for i := range islandIndex {
		islandIndex[i] = -1
	}

	nextID := 0
	stack := make([]int, 0, 64)
	for start, kind := range tiles {
		if kind == Obstacle || islandIndex[start] != -1 {
			continue
		}
		islandIndex[start] = nextID
		stack = append(stack, start)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, n := range g.Neighbors4(cur) {
				if tiles[n] == Obstacle || islandIndex[n] != -1 {
					continue
				}
				islandIndex[n] = nextID
				stack = append(stack, n)
			}
		}
		nextID++
	}
	return islandIndex
}

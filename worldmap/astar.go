package worldmap

import (
	"github.com/pthm-cable/gridsim/config"
	"github.com/pthm-cable/gridsim/geom"
	"github.com/pthm-cable/gridsim/pqueue"
)

// searchResult is the raw output of runAStar: the backpointer map needed
// to reconstruct a path, whether the goal itself was reached, and -- if
// not -- the best (lowest f-score) node visited other than start, for a
// "best partial path" fallback.
type searchResult struct {
	cameFrom map[int]int
	reached  bool
	bestNode int
	hasBest  bool
	goalCost float64
}

// runAStar is the shared core of both the construction-time portal
// distance search and the game-time PathFindingPass search. expand
// returns the neighbour tile indices to consider from cur; stepCost
// returns the (possibly penalised) cost of the from->to edge, or ok=false
// if that edge is impassable. The search is capped at
// config.MaxSearchIterations expansions: a safety
// valve against pathological inputs, not a tunable.
func runAStar(g geom.Grid, start, goal int, expand func(cur int) []int, stepCost func(from, to int) (cost float64, ok bool)) searchResult {
	open := pqueue.New()
	gScore := map[int]float64{start: 0}
	fScore := map[int]float64{start: float64(geom.ManhattanXY(coordX(g, start), coordY(g, start), coordX(g, goal), coordY(g, goal)))}
	cameFrom := map[int]int{}
	closed := map[int]bool{}

	open.Push(start, fScore[start])

	result := searchResult{cameFrom: cameFrom}

	iterations := 0
	for open.Len() > 0 {
		if iterations >= config.MaxSearchIterations {
			break
		}
		iterations++

		cur, _, _ := open.Pop()
		if cur == goal {
			result.reached = true
			result.goalCost = gScore[cur]
			return result
		}
		closed[cur] = true

		if !result.hasBest || fScore[cur] < fScore[result.bestNode] {
			result.bestNode = cur
			result.hasBest = true
		}

		for _, next := range expand(cur) {
			if closed[next] {
				continue
			}
			cost, ok := stepCost(cur, next)
			if !ok {
				continue
			}
			tentative := gScore[cur] + cost
			if existing, ok := gScore[next]; ok && tentative >= existing {
				continue
			}
			cameFrom[next] = cur
			gScore[next] = tentative
			h := float64(geom.ManhattanXY(coordX(g, next), coordY(g, next), coordX(g, goal), coordY(g, goal)))
			fScore[next] = tentative + h
			open.DecreasePriority(next, fScore[next])
		}
	}
	return result
}

func coordX(g geom.Grid, i int) int {
	x, _, _ := g.Coord(i)
	return x
}

func coordY(g geom.Grid, i int) int {
	_, y, _ := g.Coord(i)
	return y
}

// reconstructPath walks cameFrom backwards from goal to start, returning
// the tile sequence start..goal inclusive.
func reconstructPath(cameFrom map[int]int, start, goal int) []int {
	path := []int{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// toDirections converts a tile-index path into the Direction sequence
// PathPlan stores.
func toDirections(g geom.Grid, path []int) []geom.Direction {
	if len(path) < 2 {
		return nil
	}
	dirs := make([]geom.Direction, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		d, ok := g.DirectionBetween(path[i], path[i+1])
		if !ok {
			return nil
		}
		dirs = append(dirs, d)
	}
	return dirs
}

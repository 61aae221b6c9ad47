package worldmap

import (
	"testing"

	"github.com/pthm-cable/gridsim/config"
	"github.com/pthm-cable/gridsim/geom"
)

func testConfig() *config.Config {
	return &config.Config{
		Tiles: config.TileConfig{NormalCost: 10, FastCost: 7},
		Pathing: config.PathingConfig{
			DynamicObstaclePenaltyNumerator: 20,
			HardBlockDistance:               1,
		},
	}
}

func allNormal(n int) []TileKind {
	tiles := make([]TileKind, n)
	for i := range tiles {
		tiles[i] = Normal
	}
	return tiles
}

func TestInvalidMapOnBadPortalIndex(t *testing.T) {
	g := geom.New(3, 1)
	tiles := allNormal(3)
	_, err := New(g, tiles, []Portal{{From: 5, To: 0}}, nil, testConfig())
	if err != ErrInvalidMap {
		t.Fatalf("err = %v, want ErrInvalidMap", err)
	}
}

func TestIslandPartitionSplitsOnObstacles(t *testing.T) {
	g := geom.New(3, 1)
	tiles := []TileKind{Normal, Obstacle, Normal}
	m, err := New(g, tiles, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.IslandOf(0) == m.IslandOf(2) {
		t.Fatalf("tiles separated by an obstacle should be different islands")
	}
	if m.IslandOf(1) != -1 {
		t.Fatalf("obstacle tile should have island -1")
	}
}

func TestGenerateMoveNormalCost(t *testing.T) {
	g := geom.New(3, 1)
	m, err := New(g, allNormal(3), nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mv, ok := m.GenerateMove(0, geom.Right, nil)
	if !ok {
		t.Fatalf("expected move to succeed")
	}
	if mv.TotalTicks != 10 || mv.TargetIdx != 1 {
		t.Fatalf("mv = %+v", mv)
	}
}

func TestGenerateMoveFastTile(t *testing.T) {
	g := geom.New(2, 1)
	m, err := New(g, []TileKind{Normal, Fast}, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mv, ok := m.GenerateMove(0, geom.Right, nil)
	if !ok || mv.TotalTicks != 7 {
		t.Fatalf("mv = %+v, ok=%v, want TotalTicks=7", mv, ok)
	}
}

func TestGenerateMoveBlockedByObstacle(t *testing.T) {
	g := geom.New(2, 1)
	m, err := New(g, []TileKind{Normal, Obstacle}, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.GenerateMove(0, geom.Right, nil); ok {
		t.Fatalf("expected move into obstacle to fail")
	}
}

func TestGenerateMoveBlockedByDynamicObstacle(t *testing.T) {
	g := geom.New(2, 1)
	m, err := New(g, allNormal(2), nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	blocked := func(i int) bool { return i == 1 }
	if _, ok := m.GenerateMove(0, geom.Right, blocked); ok {
		t.Fatalf("expected move onto dynamically-occupied tile to fail")
	}
}

func TestGenerateMoveThroughPortalTeleports(t *testing.T) {
	g := geom.New(5, 1)
	m, err := New(g, allNormal(5), []Portal{{From: 2, To: 4, Direction: geom.Right, HasDirection: true}}, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mv, ok := m.GenerateMove(1, geom.Right, nil)
	if !ok {
		t.Fatalf("expected move to succeed")
	}
	if mv.TargetIdx != 4 {
		t.Fatalf("expected teleport to tile 4, got %d", mv.TargetIdx)
	}
	if mv.TotalTicks != 10 {
		t.Fatalf("totalTicks should equal cost(from tile), got %d", mv.TotalTicks)
	}
}

func TestEstimateDistanceInfiniteForObstacle(t *testing.T) {
	g := geom.New(2, 1)
	m, err := New(g, []TileKind{Normal, Obstacle}, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d := m.EstimateDistance(0, 1); d != Infinite {
		t.Fatalf("EstimateDistance = %d, want Infinite", d)
	}
}

func TestFindLowLevelPathSameIsland(t *testing.T) {
	g := geom.New(3, 3)
	m, err := New(g, allNormal(9), nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dirs, ok := m.FindLowLevelPath(0, 8, nil)
	if !ok || len(dirs) == 0 {
		t.Fatalf("expected a path from corner to corner, got %v,%v", dirs, ok)
	}
}

func TestFindLowLevelPathHardBlocksNearGoal(t *testing.T) {
	// A dynamic occupant standing adjacent to the goal (estimateDistance
	// <= hardBlockDistance) must never appear as a transit tile in the
	// returned path.6 step 8.
	g := geom.New(3, 3)
	m, err := New(g, allNormal(9), nil, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	goalIdx, _ := g.Index(2, 1)
	blockedIdx, _ := g.Index(1, 1) // adjacent to goal: estimateDistance == 1
	colliders := func(i int) bool { return i == blockedIdx }

	dirs, ok := m.FindLowLevelPath(0, goalIdx, colliders)
	if !ok {
		return // no route at all is an acceptable outcome here
	}
	cur := 0
	for i, d := range dirs {
		next, stepOK := g.Step(cur, d)
		if !stepOK {
			t.Fatalf("step %d left the grid", i)
		}
		if next == blockedIdx {
			t.Fatalf("path routed through the hard-blocked tile %d", blockedIdx)
		}
		cur = next
	}
}

func TestPortalAPSPAndCrossIslandFind(t *testing.T) {
	// 4x1: [Normal, Normal, Obstacle, Normal]. Tiles 0,1 form one island;
	// tile 3 is an island of its own. A portal from tile 1 bridges to it.
	g := geom.New(4, 1)
	tiles := []TileKind{Normal, Normal, Obstacle, Normal}
	portals := []Portal{{From: 1, To: 3}}
	m, err := New(g, tiles, portals, nil, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.IslandOf(0) == m.IslandOf(3) {
		t.Fatalf("tile 0 and tile 3 should be on different islands")
	}
	dirs, target, ok := m.FindPath(0, 3, nil)
	if !ok {
		t.Fatalf("expected a cross-island route to exist")
	}
	if target != 3 {
		t.Fatalf("target = %d, want 3", target)
	}
	if len(dirs) == 0 || dirs[0] != geom.Right {
		t.Fatalf("dirs = %v, want first step Right toward the portal", dirs)
	}
}

package script

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/pthm-cable/gridsim/ai"
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/config"
)

func testStructure(width, height int) MapStructure {
	tiles := make([]int, width*height)
	for i := range tiles {
		tiles[i] = 1
	}
	return MapStructure{Width: width, Height: height, Tiles: tiles}
}

func testConfig() *config.Config {
	return &config.Config{
		Tiles:   config.TileConfig{NormalCost: 10, FastCost: 7},
		Pathing: config.PathingConfig{DynamicObstaclePenaltyNumerator: 20, HardBlockDistance: 1},
		AI:      config.AIConfig{ThinkingDelayMs: 100, MinWaitTicks: 3, MaxWaitTicks: 5, MinWalk: 2, MaxWalk: 3},
	}
}

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	f, err := New(InitOptions{
		Structure: testStructure(10, 10),
		Options: Options{
			Logger: slog.Default(),
			Config: testConfig(),
			RNG:    ai.NewSystemRandom(1),
		},
	})
	if err != nil {
		t.Fatalf("building facade: %v", err)
	}
	return f
}

func TestSetupPlayersReconcilesRoster(t *testing.T) {
	f := newTestFacade(t)

	f.SetupPlayers(map[string]PlayerInit{
		"alice": {Spawn: Point{X: 1, Y: 1}},
		"bob":   {Spawn: Point{X: 2, Y: 2}},
	})
	if len(f.players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(f.players))
	}

	views := f.buildViews(nil)
	if _, ok := views["alice"]; !ok {
		t.Fatal("expected alice in the view map")
	}
	if _, ok := views["bob"]; !ok {
		t.Fatal("expected bob in the view map")
	}

	// Dropping bob from the desired roster should delete its entity.
	f.SetupPlayers(map[string]PlayerInit{
		"alice": {Spawn: Point{X: 1, Y: 1}},
	})
	if len(f.players) != 1 {
		t.Fatalf("expected 1 player after reconciliation, got %d", len(f.players))
	}
	if _, ok := f.players["bob"]; ok {
		t.Fatal("expected bob's entity removed")
	}

	// Re-adding alice is a no-op: the existing entity is kept, not
	// recreated (spawn position restated here should have no effect).
	aliceBefore := f.players["alice"]
	f.SetupPlayers(map[string]PlayerInit{
		"alice": {Spawn: Point{X: 9, Y: 9}},
	})
	if f.players["alice"] != aliceBefore {
		t.Fatal("expected alice's entity identity to be preserved across SetupPlayers calls")
	}
	pos, _ := f.handles.Position.Get(aliceBefore)
	if pos.X != 1 || pos.Y != 1 {
		t.Fatalf("expected alice's original spawn retained, got %+v", pos)
	}
}

func TestBuildViewsReportsJustFinishedMoveSentinel(t *testing.T) {
	f := newTestFacade(t)
	f.SetupPlayers(map[string]PlayerInit{"alice": {Spawn: Point{X: 0, Y: 0}}})
	e := f.players["alice"]

	f.handles.Move.Set(e, components.Move{TotalTicks: 7, RemainingTicks: 3, TargetIdx: 1})
	before := f.captureMoveMemo()
	if !before[e].hadMove || before[e].total != 7 {
		t.Fatalf("expected captured memo {hadMove:true, total:7}, got %+v", before[e])
	}

	// The move finished before this tick's view is built.
	f.handles.Move.Remove(e)
	views := f.buildViews(before)
	view := views["alice"]
	if view.Move == nil || view.Move.Current != -1 || view.Move.Total != 7 {
		t.Fatalf("expected sentinel {current:-1, total:7}, got %+v", view.Move)
	}

	// The tick after, with no prior memo, the sentinel must not reappear.
	views = f.buildViews(f.captureMoveMemo())
	if views["alice"].Move != nil {
		t.Fatalf("expected no Move reported the tick after the sentinel, got %+v", views["alice"].Move)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := newTestFacade(t)
	f.SetupPlayers(map[string]PlayerInit{"alice": {Spawn: Point{X: 3, Y: 4}}})
	// Deliberately does not Tick(): a tick can leave an in-flight async
	// task relation that a fresh process's task manager would, by
	// design, treat as orphaned and drop on restore --
	// that is a deliberate behavior, not a violation of the
	// serialize-is-a-retraction invariant, which this test keeps clear
	// of by saving only steady, non-async-pending state.

	snap, err := f.Save()
	if err != nil {
		t.Fatalf("saving: %v", err)
	}

	f2, err := New(InitOptions{
		SavedData: snap,
		Structure: testStructure(10, 10),
		Options: Options{
			Logger: slog.Default(),
			Config: testConfig(),
			RNG:    ai.NewSystemRandom(1),
		},
	})
	if err != nil {
		t.Fatalf("restoring: %v", err)
	}

	if _, ok := f2.players["alice"]; !ok {
		t.Fatal("expected alice reconstructed from the restored snapshot")
	}

	resnap, err := f2.Save()
	if err != nil {
		t.Fatalf("re-saving: %v", err)
	}

	var a, b map[string]any
	if err := json.Unmarshal(snap, &a); err != nil {
		t.Fatalf("unmarshalling original snapshot: %v", err)
	}
	if err := json.Unmarshal(resnap, &b); err != nil {
		t.Fatalf("unmarshalling round-tripped snapshot: %v", err)
	}
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Fatalf("expected serialize(load(serialize(w))) == serialize(w), got\n%s\nvs\n%s", aj, bj)
	}
}

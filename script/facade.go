// Package script implements the ScriptApi façade: the single surface an
// embedding host drives (player roster diffing, tick, snapshot
// save/load), wiring together the pipeline, the demo AI loop, the task
// manager and the map.
package script

import (
	"encoding/json"
	"log/slog"

	"github.com/pthm-cable/gridsim/ai"
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/config"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/geom"
	"github.com/pthm-cable/gridsim/passes"
	"github.com/pthm-cable/gridsim/pipeline"
	"github.com/pthm-cable/gridsim/telemetry"
	"github.com/pthm-cable/gridsim/worldmap"
)

// Platform receives the narrative events the engine emits. ai.Platform
// is structurally identical, so any Platform implementation satisfies
// it too.
type Platform interface {
	EmitEvent(name string, payload map[string]any)
}

// PlayerInit is the per-player setup payload SetupPlayers accepts:
// where to spawn a newly created player entity.
type PlayerInit struct {
	Spawn Point
}

// MoveView is the in-progress-movement summary a PlayerView reports.
type MoveView struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// PlayerView is the per-player snapshot Tick returns.
type PlayerView struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Direction int       `json:"direction"`
	Move      *MoveView `json:"move,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// Options configures a Facade beyond the map and initial save data.
type Options struct {
	Logger    *slog.Logger
	Config    *config.Config
	Platform  Platform
	RNG       ai.Random
	Scheduler ai.Scheduler
	Seed      int64
	// Telemetry, if set, receives one RecordTick call per Tick with that
	// tick's per-pass durations. A nil Sink (the zero value) is a no-op.
	Telemetry *telemetry.Sink
}

// InitOptions is the ScriptInitOptions contract.
type InitOptions struct {
	SavedData []byte
	Structure MapStructure
	Options   Options
}

type moveMemo struct {
	hadMove bool
	total   int
}

// Facade is the ScriptApi implementation: setupPlayers, tick, save.
type Facade struct {
	world   *ecs.World
	handles *ecsreg.Handles
	gmap    *worldmap.Map
	pipe    *pipeline.Pipeline
	logger  *slog.Logger
	trace   *telemetry.Sink
	tick    int

	players map[string]ecs.Entity
	memo    map[ecs.Entity]moveMemo
}

// tracingPlatform forwards every event to inner (if any) and records it
// to sink, tagged with whatever tick the owning Facade is currently on.
type tracingPlatform struct {
	inner Platform
	sink  *telemetry.Sink
	tick  *int
}

func (t *tracingPlatform) EmitEvent(name string, payload map[string]any) {
	playerID, _ := payload["playerId"].(string)
	if err := t.sink.RecordEvent(*t.tick, playerID, name); err != nil {
		slog.Default().Warn("telemetry: recording event failed", "error", err)
	}
	if t.inner != nil {
		t.inner.EmitEvent(name, payload)
	}
}

// New builds a Facade from opts: registers component/relation kinds,
// builds the map, wires the fixed pass pipeline plus the demo AI loop,
// and restores SavedData if present.
func New(opts InitOptions) (*Facade, error) {
	logger := opts.Options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Options.Config
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	w := ecs.NewWorld()
	h := ecsreg.New(w)

	gmap, err := opts.Structure.build(cfg)
	if err != nil {
		return nil, err
	}

	rng := opts.Options.RNG
	if rng == nil {
		rng = ai.NewSystemRandom(opts.Options.Seed)
	}

	f := &Facade{
		world:   w,
		handles: h,
		gmap:    gmap,
		logger:  logger,
		trace:   opts.Options.Telemetry,
		players: make(map[string]ecs.Entity),
		memo:    make(map[ecs.Entity]moveMemo),
	}
	platform := &tracingPlatform{inner: opts.Options.Platform, sink: f.trace, tick: &f.tick}

	pipe := pipeline.New(logger)
	pipe.Use(passes.NewPendingPass(h), pipeline.Info{ID: "pending", Name: "Pending", Description: "Applies a deferred facing change once an entity is stationary."})
	pipe.Use(passes.NewTimerPass(h), pipeline.Info{ID: "timer", Name: "Timer", Description: "Counts down Timer relations and converts expired ones to Timeout."})
	pipe.Use(passes.NewDynamicColliderPass(h, gmap), pipeline.Info{ID: "dynamicCollider", Name: "Dynamic collider", Description: "Rebuilds the per-tick occupied-tile bitset."})
	pipe.Use(passes.NewMovementPass(h), pipeline.Info{ID: "movement", Name: "Movement", Description: "Advances in-flight moves and finalizes completed ones."})
	pipe.Use(passes.NewPathFindingPass(h, gmap), pipeline.Info{ID: "pathFinding", Name: "Path finding", Description: "Resolves goal requests into executable path plans."})
	pipe.Use(passes.NewPlanExecutionPass(h, gmap), pipeline.Info{ID: "planExecution", Name: "Plan execution", Description: "Executes one step of a computed path plan."})
	pipe.Use(passes.NewStraightWalkPass(h, gmap), pipeline.Info{ID: "straightWalk", Name: "Straight walk", Description: "Executes one step of a fixed-direction walk."})
	pipe.Use(ai.NewLoop(h, cfg, platform, rng, opts.Options.Scheduler), pipeline.Info{ID: "aiLoop", Name: "AI loop", Description: "Drives the demo Idle/Thinking/Timer behaviour cycle."})

	f.pipe = pipe

	if len(opts.SavedData) > 0 {
		var snap ecs.Snapshot
		if err := json.Unmarshal(opts.SavedData, &snap); err != nil {
			return nil, err
		}
		if err := ecs.Load(w, snap); err != nil {
			return nil, err
		}
		f.reconstructPlayers()
	}

	return f, nil
}

// reconstructPlayers rebuilds the players index from PlayerId rows
// after a Load, since the in-memory index itself is not part of the
// snapshot.
func (f *Facade) reconstructPlayers() {
	q := f.world.CreateQuery(f.handles.PlayerId.Required())
	q.ForEach(func(e ecs.Entity) {
		pid, ok := f.handles.PlayerId.Get(e)
		if !ok {
			return
		}
		f.players[pid.ID] = e
	})
}

// SetupPlayers reconciles the live player roster against desired:
// entities for ids not yet present are created and spawned; entities
// for ids no longer listed are deleted.
func (f *Facade) SetupPlayers(desired map[string]PlayerInit) {
	for id, init := range desired {
		if _, ok := f.players[id]; ok {
			continue
		}
		e := f.world.New()
		f.handles.PlayerId.Set(e, components.PlayerId{ID: id})
		f.handles.Position.Set(e, components.Position{X: init.Spawn.X, Y: init.Spawn.Y})
		f.handles.FaceDirection.Set(e, components.FaceDirection{Dir: geom.Down})
		f.handles.PlayerInited.Set(e, components.PlayerInited{})
		f.players[id] = e
	}

	for id, e := range f.players {
		if _, ok := desired[id]; ok {
			continue
		}
		f.world.Delete(e)
		delete(f.memo, e)
		delete(f.players, id)
	}

	f.world.Sync()
}

// Tick runs one full pipeline pass and returns the resulting
// per-player view.
func (f *Facade) Tick() map[string]PlayerView {
	before := f.captureMoveMemo()
	f.tick++
	timings := f.pipe.Tick(f.world)
	if err := f.trace.RecordTick(f.tick, timings); err != nil {
		f.logger.Warn("telemetry: recording tick failed", "error", err)
	}
	return f.buildViews(before)
}

func (f *Facade) captureMoveMemo() map[ecs.Entity]moveMemo {
	before := make(map[ecs.Entity]moveMemo, len(f.players))
	for _, e := range f.players {
		if mv, ok := f.handles.Move.Get(e); ok {
			before[e] = moveMemo{hadMove: true, total: mv.TotalTicks}
		}
	}
	return before
}

// buildViews assembles the PlayerView map, applying the "just
// finished a move" sentinel.
func (f *Facade) buildViews(before map[ecs.Entity]moveMemo) map[string]PlayerView {
	views := make(map[string]PlayerView, len(f.players))
	for id, e := range f.players {
		pos, _ := f.handles.Position.Get(e)
		face, _ := f.handles.FaceDirection.Get(e)

		view := PlayerView{X: pos.X, Y: pos.Y, Direction: int(face.Dir)}

		if mv, ok := f.handles.Move.Get(e); ok {
			view.Move = &MoveView{Current: mv.TotalTicks - mv.RemainingTicks, Total: mv.TotalTicks}
		} else if prior, ok := before[e]; ok && prior.hadMove {
			view.Move = &MoveView{Current: -1, Total: prior.total}
		}

		if status, ok := f.handles.PlayerStatus.Get(e); ok {
			view.Status = status.Status
		}

		views[id] = view
	}
	return views
}

// Save returns the UTF-8 JSON encoding of the world's full
// serialization. Must be called between
// ticks, never from inside a pass.
func (f *Facade) Save() ([]byte, error) {
	snap := f.world.Serialize()
	return json.Marshal(snap)
}

// Map exposes the built worldmap.Map, e.g. for a host wanting to
// validate spawn points against tile kinds before calling SetupPlayers.
func (f *Facade) Map() *worldmap.Map { return f.gmap }

// Package pipeline runs a fixed, ordered sequence of synchronous passes:
// each pass reads and writes the ECS directly, and the pipeline calls
// world.Sync() exactly once, after the final pass, per tick.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/gridsim/ecs"
)

// Pass is one step of the per-tick pipeline.
type Pass interface {
	// Name returns a stable identifier, used for registry lookup and
	// telemetry labeling.
	Name() string
	// Run executes the pass's logic against the world. Passes mutate the
	// ECS directly; the pipeline does not pass a payload struct between
	// them -- the world itself is the payload, since every pass
	// reads/writes overlapping component sets rather than a narrow
	// private slice (the dynamic-collider bitset is the one value passed
	// pass-to-pass explicitly, and is owned by PassContext).
	Run(w *ecs.World, ctx *PassContext)
}

// PassContext carries the one piece of cross-pass state passed
// explicitly: the dynamic-collider bitset DynamicColliderPass computes
// and PlanExecutionPass/StraightWalkPass update in place.
type PassContext struct {
	Colliders ColliderSet
}

// ColliderSet is the dynamic-collider bitset surface passes need: reads
// for every pathing pass, writes for DynamicColliderPass (full rebuild)
// and PlanExecutionPass/StraightWalkPass (marking a newly-claimed target
// tile mid-tick).
type ColliderSet interface {
	Has(i int) bool
	Set(i int)
}

// Timing records how long one pass took during a tick, for the
// telemetry trace.
type Timing struct {
	Name     string
	Duration time.Duration
}

// Pipeline is the ordered list of passes executed once per tick.
type Pipeline struct {
	passes   []Pass
	registry *Registry
	logger   *slog.Logger
}

// New creates an empty pipeline. If logger is nil, passes log to
// slog.Default().
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{registry: NewRegistry(), logger: logger}
}

// Use appends pass to the pipeline (order matters -- callers register
// passes in the exact sequence they must run) and registers its
// metadata.
func (p *Pipeline) Use(pass Pass, info Info) *Pipeline {
	p.passes = append(p.passes, pass)
	p.registry.Register(info)
	return p
}

// Registry returns the pipeline's pass metadata registry.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Tick runs every pass once, in registration order, against w, then
// calls w.Sync() exactly once. Returns per-pass timings for telemetry.
func (p *Pipeline) Tick(w *ecs.World) []Timing {
	ctx := &PassContext{}
	timings := make([]Timing, 0, len(p.passes))
	for _, pass := range p.passes {
		start := time.Now()
		pass.Run(w, ctx)
		d := time.Since(start)
		timings = append(timings, Timing{Name: pass.Name(), Duration: d})
		p.logger.Debug("pass complete", "pass", pass.Name(), "duration", d)
	}
	w.Sync()
	return timings
}

// Package ai implements a demo behaviour loop: a three-query state
// machine (Idle / Task-done / Timer-fired) layered on top of the core
// movement passes, driving the task manager and emitting narrative
// Platform events.
package ai

import (
	"strconv"
	"time"

	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/config"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/geom"
	"github.com/pthm-cable/gridsim/pipeline"
	"github.com/pthm-cable/gridsim/task"
)

// Random is the injectable source of randomness the loop consults for
// wait durations and walk choices, so tests can run it deterministically.
type Random interface {
	// IntRange returns an integer in [min, max], inclusive.
	IntRange(min, max int) int
	// Direction returns a random cardinal direction.
	Direction() geom.Direction
}

// Scheduler defers fn by d. The production implementation wraps
// time.AfterFunc; tests substitute a fake that fires synchronously or
// on demand, since the task's completion must not depend on wall time.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// Platform receives the narrative events the loop emits.
type Platform interface {
	EmitEvent(name string, payload map[string]any)
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// Loop is a pipeline.Pass implementing the Idle -> Thinking ->
// Task-done -> Timer-fired -> Idle behaviour cycle.
type Loop struct {
	h         *ecsreg.Handles
	cfg       *config.Config
	platform  Platform
	rng       Random
	scheduler Scheduler
	thinking  *task.Manager
}

// NewLoop builds the demo AI loop. A nil scheduler defaults to a real
// time.AfterFunc-backed one; a nil platform silently drops events.
func NewLoop(h *ecsreg.Handles, cfg *config.Config, platform Platform, rng Random, scheduler Scheduler) *Loop {
	if scheduler == nil {
		scheduler = realScheduler{}
	}
	target := ecs.TargetComponent(h.Thinking)
	return &Loop{
		h:         h,
		cfg:       cfg,
		platform:  platform,
		rng:       rng,
		scheduler: scheduler,
		thinking:  task.NewManager(target, h.Task, h.TaskCompleted, nil),
	}
}

func (l *Loop) Name() string { return "aiLoop" }

// Run executes the three queries in order: a player can only progress
// one state per tick, since each query's preconditions are left behind
// by the previous query's action.
func (l *Loop) Run(w *ecs.World, _ *pipeline.PassContext) {
	l.runIdle(w)
	l.runTaskDone(w)
	l.runTimerFired(w)
}

func (l *Loop) runIdle(w *ecs.World) {
	q := w.CreateQuery(
		l.h.PlayerInited.Required(),
		l.h.PlayerId.Required(),
		l.h.Move.Forbidden(),
		l.h.StraightWalk.Forbidden(),
		l.h.PathPlan.Forbidden(),
		l.h.GoalPathfinding.Forbidden(),
		l.h.Thinking.Forbidden(),
	)
	q.ForEach(func(e ecs.Entity) {
		l.h.Thinking.Set(e, components.Thinking{})
		l.h.PlayerStatus.Set(e, components.PlayerStatus{Status: "thinking"})

		handle := l.thinking.Start(w, e)
		delay := time.Duration(l.cfg.AI.ThinkingDelayMs) * time.Millisecond
		l.scheduler.AfterFunc(delay, func() {
			select {
			case <-handle.Signal:
				return
			default:
				handle.Complete()
			}
		})
	})
}

func (l *Loop) runTaskDone(w *ecs.World) {
	target := ecs.TargetComponent(l.h.Thinking)
	q := w.CreateQuery(
		l.h.Thinking.Required(),
		l.h.TaskCompleted.Required(target),
		l.h.Timer.Forbidden(target),
		l.h.Timeout.Forbidden(target),
	)
	q.ForEach(func(e ecs.Entity) {
		l.h.PlayerStatus.Set(e, components.PlayerStatus{Status: "tip"})

		wait := l.rng.IntRange(l.cfg.AI.MinWaitTicks, l.cfg.AI.MaxWaitTicks)
		l.h.Timer.Set(e, target, components.TimerValue{Remaining: wait})

		l.emit(e, "thinking:start", map[string]any{"content": strconv.Itoa(wait)})
	})
}

func (l *Loop) runTimerFired(w *ecs.World) {
	target := ecs.TargetComponent(l.h.Thinking)
	q := w.CreateQuery(
		l.h.Thinking.Required(),
		l.h.PlayerId.Required(),
		l.h.Timeout.Required(target),
	)
	q.ForEach(func(e ecs.Entity) {
		l.h.PlayerStatus.Remove(e)
		l.h.Thinking.Remove(e)
		l.h.Task.Remove(e, target)
		l.h.TaskCompleted.Remove(e, target)
		l.h.Timeout.Remove(e, target)

		dir := l.rng.Direction()
		dist := l.rng.IntRange(l.cfg.AI.MinWalk, l.cfg.AI.MaxWalk)
		l.h.StraightWalk.Set(e, components.StraightWalk{Direction: dir, RemainingDistance: dist})

		l.emit(e, "thinking:end", nil)
	})
}

// emit adds playerId to payload (creating one if nil) and forwards the
// event to the platform, if any is wired.
func (l *Loop) emit(e ecs.Entity, name string, payload map[string]any) {
	if l.platform == nil {
		return
	}
	pid, ok := l.h.PlayerId.Get(e)
	if !ok {
		return
	}
	if payload == nil {
		payload = make(map[string]any, 1)
	}
	payload["playerId"] = pid.ID
	l.platform.EmitEvent(name, payload)
}

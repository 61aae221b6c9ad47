// Package task implements a per-component-target task manager: a
// cancellable async handle keyed by entity, attached to the ECS as a
// Task<->Target relation so a restored snapshot and a live in-memory
// handle can be reconciled.
package task

import (
	"log/slog"

	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/ecs"
)

// Handle is returned by Start. Signal is closed when the task is
// stopped (cancelled) before it completes; Complete finalizes it.
type Handle struct {
	Signal   <-chan struct{}
	Complete func()

	cancel chan struct{}
}

// Manager tracks in-flight tasks for one relation target (e.g. the
// Thinking component, in the demo AI loop). Target is fixed at
// construction: every Start/Complete/Stop call operates against that
// single target across whatever entity is passed in.
type Manager struct {
	target ecs.Target
	task   *ecs.RelationType[components.Tag]
	done   *ecs.RelationType[components.Tag]
	logger *slog.Logger

	handles map[ecs.Entity]*Handle
}

// NewManager builds a Manager for one relation target. task and done
// are the Task and TaskCompleted relation handles shared across every
// Manager in the simulation; logger defaults to slog.Default() if nil.
func NewManager(target ecs.Target, task, done *ecs.RelationType[components.Tag], logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		target:  target,
		task:    task,
		done:    done,
		logger:  logger,
		handles: make(map[ecs.Entity]*Handle),
	}
	task.OnInit(func(w *ecs.World, e ecs.Entity, t ecs.Target, _ components.Tag) {
		if t != target {
			return
		}
		m.onTaskAttached(e)
	})
	task.OnRemove(func(w *ecs.World, e ecs.Entity, t ecs.Target, _ components.Tag) {
		if t != target {
			return
		}
		m.onTaskRemoved(e)
	})
	return m
}

// onTaskAttached fires whenever a Task<->target row appears on an
// entity, including via Load restoring a snapshot. An entity with no
// registered handle means the task's owning process is gone -- the
// relation is orphaned and is dropped with a warning.
func (m *Manager) onTaskAttached(e ecs.Entity) {
	if _, ok := m.handles[e]; ok {
		return
	}
	m.logger.Warn("orphaned task relation, dropping", "entity", e.String())
	m.task.Remove(e, m.target)
}

// onTaskRemoved cancels the handle, if any, associated with e. Fires
// on explicit Stop, on Complete (which removes Task itself), and on
// entity deletion.
func (m *Manager) onTaskRemoved(e ecs.Entity) {
	h, ok := m.handles[e]
	if !ok {
		return
	}
	delete(m.handles, e)
	select {
	case <-h.cancel:
	default:
		close(h.cancel)
	}
}

// Start creates a new task for e: a cancellation handle and a
// Task<->target relation row. Calling Start again for an entity that
// already has a handle replaces it, cancelling the previous one.
func (m *Manager) Start(w *ecs.World, e ecs.Entity) *Handle {
	if old, ok := m.handles[e]; ok {
		delete(m.handles, e)
		select {
		case <-old.cancel:
		default:
			close(old.cancel)
		}
	}
	cancel := make(chan struct{})
	h := &Handle{Signal: cancel, cancel: cancel}
	h.Complete = func() { m.complete(w, e) }
	m.handles[e] = h
	m.task.Set(e, m.target, components.Tag{})
	return h
}

// complete removes Task<->target and attaches TaskCompleted<->target,
// then flushes via world.Sync so the completion becomes visible to the
// very next tick.
func (m *Manager) complete(w *ecs.World, e ecs.Entity) {
	if _, ok := m.handles[e]; !ok {
		return
	}
	delete(m.handles, e)
	m.task.Remove(e, m.target)
	m.done.Set(e, m.target, components.Tag{})
	w.Sync()
}

// Stop cancels e's task, if any, and removes every trace of it:
// Task<->target and TaskCompleted<->target.
func (m *Manager) Stop(e ecs.Entity) {
	if h, ok := m.handles[e]; ok {
		delete(m.handles, e)
		select {
		case <-h.cancel:
		default:
			close(h.cancel)
		}
	}
	m.task.Remove(e, m.target)
	m.done.Remove(e, m.target)
}

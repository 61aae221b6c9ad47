// Package components defines the component kinds used by the simulation's
// entity-component store. Each exported type is registered
// with the ecs package under its own stable name; tag components carry no
// fields.
package components

import "github.com/pthm-cable/gridsim/geom"

// Position is an entity's tile location. Owned by the ECS; written by the
// movement pass.
type Position struct {
	X, Y int
}

// Index returns the 1D tile index for this position on g.
func (p Position) Index(g geom.Grid) (int, error) {
	return g.Index(p.X, p.Y)
}

// FaceDirection is the direction an entity is currently facing.
type FaceDirection struct {
	Dir geom.Direction
}

// Pending is the relation-key marker meaning "apply the pending
// FaceDirection once this entity is no longer moving" (relation
// Pending -> FaceDirection).
type Pending struct{}

// DynamicCollider tags an entity as occupying its current (and, if moving,
// target) tile for other movers this tick.
type DynamicCollider struct{}

// Move describes an in-flight step. Present only while the entity is
// actually moving between tiles.
type Move struct {
	TotalTicks     int
	RemainingTicks int
	TargetIdx      int
	TargetPosition Position
}

// StraightWalk is a simple "keep walking N more tiles in this direction"
// directive, used by the demo AI loop.
type StraightWalk struct {
	Direction         geom.Direction
	RemainingDistance int
}

// PathPlan is a computed route: a sequence of directions plus a cursor
// into it, executed one step per tick by PlanExecutionPass.
type PathPlan struct {
	TargetIndex     int
	Path            []geom.Direction
	NextActionIndex int
}

// GoalPathfinding requests that the pathfinding pass (re)plan a route to
// TargetIndex, retrying up to MaxRetries times on failure.
type GoalPathfinding struct {
	TargetIndex int
	RetryCount  int
	MaxRetries  int
}

// PlayerId associates an entity with a host-supplied player identifier.
type PlayerId struct {
	ID string
}

// PlayerStatus is the display status reported to the host for a player
// entity (e.g. "thinking", "wondering", "speaking", "tip", or a custom
// string).
type PlayerStatus struct {
	Status string
}

// PlayerInited marks a player entity as having completed initial setup;
// the AI loop's Idle query requires it.
type PlayerInited struct{}

// Thinking is a marker attached to a player entity for the duration of the
// "thinking" phase of the demo AI loop.
type Thinking struct{}

// TimerValue is the value type of Timer<->Tag relations: ticks remaining.
type TimerValue struct {
	Remaining int
}

// Tag is an empty marker value for relations that only need
// presence/absence rather than a payload: Timeout, Task, and
// TaskCompleted.
type Tag struct{}

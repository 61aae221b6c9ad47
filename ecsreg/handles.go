// Package ecsreg registers every component and relation kind the
// simulation uses and groups the resulting typed handles into one
// struct, built once at startup rather than re-resolved by name on
// every access.
package ecsreg

import (
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/geom"
)

// Handles is every component/relation handle a pass, the task manager,
// or the AI loop needs. Build one with New against a fresh world before
// registering any pass.
type Handles struct {
	World *ecs.World

	Position        *ecs.ComponentType[components.Position]
	FaceDirection   *ecs.ComponentType[components.FaceDirection]
	DynamicCollider *ecs.ComponentType[components.DynamicCollider]
	Move            *ecs.ComponentType[components.Move]
	StraightWalk    *ecs.ComponentType[components.StraightWalk]
	PathPlan        *ecs.ComponentType[components.PathPlan]
	GoalPathfinding *ecs.ComponentType[components.GoalPathfinding]
	PlayerId        *ecs.ComponentType[components.PlayerId]
	PlayerStatus    *ecs.ComponentType[components.PlayerStatus]
	PlayerInited    *ecs.ComponentType[components.PlayerInited]
	Thinking        *ecs.ComponentType[components.Thinking]

	// Pending targets the FaceDirection component itself (not an
	// entity); its value is the direction to apply once the entity
	// stops moving.
	Pending *ecs.RelationType[geom.Direction]

	// Timer/Timeout/Task/TaskCompleted are relation kinds whose target
	// is whatever "tag" component the caller is timing or tasking
	// against (e.g. Thinking, in the demo AI loop). One RelationType
	// instance per kind holds rows for every target simultaneously.
	Timer         *ecs.RelationType[components.TimerValue]
	Timeout       *ecs.RelationType[components.Tag]
	Task          *ecs.RelationType[components.Tag]
	TaskCompleted *ecs.RelationType[components.Tag]
}

// New registers every component/relation kind on w and returns the
// resulting handle set.
func New(w *ecs.World) *Handles {
	h := &Handles{
		World: w,

		Position:        ecs.RegisterComponent[components.Position](w, "position"),
		FaceDirection:   ecs.RegisterComponent[components.FaceDirection](w, "faceDirection"),
		DynamicCollider: ecs.RegisterComponent[components.DynamicCollider](w, "dynamicCollider"),
		Move:            ecs.RegisterComponent[components.Move](w, "move"),
		StraightWalk:    ecs.RegisterComponent[components.StraightWalk](w, "straightWalk"),
		PathPlan:        ecs.RegisterComponent[components.PathPlan](w, "pathPlan"),
		GoalPathfinding: ecs.RegisterComponent[components.GoalPathfinding](w, "goalPathfinding"),
		PlayerId:        ecs.RegisterComponent[components.PlayerId](w, "playerId"),
		PlayerStatus:    ecs.RegisterComponent[components.PlayerStatus](w, "playerStatus"),
		PlayerInited:    ecs.RegisterComponent[components.PlayerInited](w, "playerInited"),
		Thinking:        ecs.RegisterComponent[components.Thinking](w, "thinking"),

		Pending:       ecs.RegisterRelation[geom.Direction](w, "pending"),
		Timer:         ecs.RegisterRelation[components.TimerValue](w, "timer"),
		Timeout:       ecs.RegisterRelation[components.Tag](w, "timeout"),
		Task:          ecs.RegisterRelation[components.Tag](w, "task"),
		TaskCompleted: ecs.RegisterRelation[components.Tag](w, "taskCompleted"),
	}
	return h
}

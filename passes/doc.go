// Package passes implements the fixed, ordered sequence of per-tick
// passes: PendingPass, TimerPass, DynamicColliderPass, MovementPass,
// PathFindingPass, PlanExecutionPass, and StraightWalkPass. Each is a
// pipeline.Pass built against a shared ecsreg.Handles set and a
// worldmap.Map.
package passes

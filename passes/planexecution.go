package passes

import (
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/pipeline"
	"github.com/pthm-cable/gridsim/worldmap"
)

// PlanExecutionPass advances a computed PathPlan by one step per tick:
// an entity with a plan and no Move in flight takes its next queued
// direction and turns it into a Move. A blocked
// step simply drops the PathPlan -- the GoalPathfinding request that
// produced it is never removed by PathFindingPass on success, so it is
// still attached and PathFindingPass re-plans from scratch next tick.
//
// A successful step claims its target tile in the shared collider set
// immediately, so a second entity planned this same tick cannot also
// claim it.
type PlanExecutionPass struct {
	h *ecsreg.Handles
	m *worldmap.Map
}

// NewPlanExecutionPass builds a PlanExecutionPass against h and m.
func NewPlanExecutionPass(h *ecsreg.Handles, m *worldmap.Map) *PlanExecutionPass {
	return &PlanExecutionPass{h: h, m: m}
}

func (p *PlanExecutionPass) Name() string { return "planExecution" }

func (p *PlanExecutionPass) Run(w *ecs.World, ctx *pipeline.PassContext) {
	q := w.CreateQuery(p.h.PathPlan.Required(), p.h.Position.Required(), p.h.Move.Forbidden())
	q.ForEach(func(e ecs.Entity) {
		plan, ok := p.h.PathPlan.Get(e)
		if !ok {
			return
		}
		if plan.NextActionIndex >= len(plan.Path) {
			p.h.PathPlan.Remove(e)
			return
		}
		pos, ok := p.h.Position.Get(e)
		if !ok {
			return
		}
		fromIdx, err := pos.Index(p.m.Grid())
		if err != nil {
			p.h.PathPlan.Remove(e)
			return
		}

		dir := plan.Path[plan.NextActionIndex]
		dynamicObstacle := func(i int) bool {
			if ctx.Colliders == nil {
				return false
			}
			return ctx.Colliders.Has(i)
		}

		mv, ok := p.m.GenerateMove(fromIdx, dir, dynamicObstacle)
		if !ok {
			p.h.PathPlan.Remove(e)
			return
		}

		p.h.Move.Set(e, mv)
		p.h.FaceDirection.Set(e, components.FaceDirection{Dir: dir})
		if ctx.Colliders != nil {
			ctx.Colliders.Set(mv.TargetIdx)
		}

		plan.NextActionIndex++
		p.h.PathPlan.Set(e, plan)
	})
}

package passes

import (
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/pipeline"
	"github.com/pthm-cable/gridsim/worldmap"
)

// PathFindingPass resolves every GoalPathfinding request into a
// PathPlan. GoalPathfinding is only considered while the
// entity has no PathPlan, and it is NOT removed once a plan is
// produced: it stays attached so that, once PlanExecutionPass consumes
// the plan (e.g. on reaching the next island on a cross-island route),
// this pass fires again and plans the next leg. It is removed only
// once the entity has reached its target, or its retry budget is
// exhausted.
type PathFindingPass struct {
	h *ecsreg.Handles
	m *worldmap.Map
}

// NewPathFindingPass builds a PathFindingPass against h and m.
func NewPathFindingPass(h *ecsreg.Handles, m *worldmap.Map) *PathFindingPass {
	return &PathFindingPass{h: h, m: m}
}

func (p *PathFindingPass) Name() string { return "pathFinding" }

func (p *PathFindingPass) Run(w *ecs.World, ctx *pipeline.PassContext) {
	q := w.CreateQuery(p.h.GoalPathfinding.Required(), p.h.Position.Required(), p.h.PathPlan.Forbidden())
	q.ForEach(func(e ecs.Entity) {
		goal, ok := p.h.GoalPathfinding.Get(e)
		if !ok {
			return
		}
		pos, ok := p.h.Position.Get(e)
		if !ok {
			return
		}
		start, err := pos.Index(p.m.Grid())
		if err != nil {
			p.h.GoalPathfinding.Remove(e)
			return
		}
		if start == goal.TargetIndex {
			p.h.GoalPathfinding.Remove(e)
			return
		}

		colliders := func(i int) bool {
			if ctx.Colliders == nil {
				return false
			}
			return ctx.Colliders.Has(i)
		}

		dirs, target, ok := p.m.FindPath(start, goal.TargetIndex, colliders)
		if !ok {
			goal.RetryCount++
			if goal.RetryCount >= goal.MaxRetries {
				p.h.GoalPathfinding.Remove(e)
				return
			}
			p.h.GoalPathfinding.Set(e, goal)
			return
		}

		goal.RetryCount = 0
		p.h.GoalPathfinding.Set(e, goal)
		p.h.PathPlan.Set(e, components.PathPlan{
			TargetIndex:     target,
			Path:            dirs,
			NextActionIndex: 0,
		})
	})
}

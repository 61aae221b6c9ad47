package passes

import (
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/pipeline"
	"github.com/pthm-cable/gridsim/worldmap"
)

// StraightWalkPass advances a "keep walking N more tiles" directive by
// one step per tick, the demo AI loop's simplest
// movement directive: no pathfinding, just a fixed direction and a
// remaining-distance counter. A blocked step simply ends the walk
// early rather than retrying -- callers wanting retried movement use
// GoalPathfinding/PathPlan instead.
type StraightWalkPass struct {
	h *ecsreg.Handles
	m *worldmap.Map
}

// NewStraightWalkPass builds a StraightWalkPass against h and m.
func NewStraightWalkPass(h *ecsreg.Handles, m *worldmap.Map) *StraightWalkPass {
	return &StraightWalkPass{h: h, m: m}
}

func (p *StraightWalkPass) Name() string { return "straightWalk" }

func (p *StraightWalkPass) Run(w *ecs.World, ctx *pipeline.PassContext) {
	q := w.CreateQuery(p.h.StraightWalk.Required(), p.h.Position.Required(), p.h.Move.Forbidden())
	q.ForEach(func(e ecs.Entity) {
		sw, ok := p.h.StraightWalk.Get(e)
		if !ok {
			return
		}
		if sw.RemainingDistance <= 0 {
			p.h.StraightWalk.Remove(e)
			return
		}
		pos, ok := p.h.Position.Get(e)
		if !ok {
			return
		}
		fromIdx, err := pos.Index(p.m.Grid())
		if err != nil {
			p.h.StraightWalk.Remove(e)
			return
		}

		dynamicObstacle := func(i int) bool {
			if ctx.Colliders == nil {
				return false
			}
			return ctx.Colliders.Has(i)
		}

		mv, ok := p.m.GenerateMove(fromIdx, sw.Direction, dynamicObstacle)
		if !ok {
			p.h.StraightWalk.Remove(e)
			return
		}

		p.h.Move.Set(e, mv)
		p.h.FaceDirection.Set(e, components.FaceDirection{Dir: sw.Direction})
		if ctx.Colliders != nil {
			ctx.Colliders.Set(mv.TargetIdx)
		}

		sw.RemainingDistance--
		p.h.StraightWalk.Set(e, sw)
	})
}

package passes

import (
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/pipeline"
)

// MovementPass advances every in-flight Move by one tick. A move whose
// remaining ticks drop to one or below this tick is finalized: the
// entity lands on its target tile and the Move component is removed,
// letting the same-tick PlanExecutionPass/StraightWalkPass queue the
// entity's next step.
type MovementPass struct {
	h *ecsreg.Handles
}

// NewMovementPass builds a MovementPass against h.
func NewMovementPass(h *ecsreg.Handles) *MovementPass {
	return &MovementPass{h: h}
}

func (p *MovementPass) Name() string { return "movement" }

func (p *MovementPass) Run(w *ecs.World, _ *pipeline.PassContext) {
	q := w.CreateQuery(p.h.Move.Required())
	q.ForEach(func(e ecs.Entity) {
		mv, ok := p.h.Move.Get(e)
		if !ok {
			return
		}
		mv.RemainingTicks--
		if mv.RemainingTicks <= 1 {
			p.h.Position.Set(e, mv.TargetPosition)
			p.h.Move.Remove(e)
			return
		}
		p.h.Move.Set(e, mv)
	})
}

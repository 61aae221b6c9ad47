package passes

import (
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/pipeline"
)

// PendingPass reorients stationary entities: an entity with a pending
// FaceDirection (and no Move in flight) is only reoriented once it has
// stopped.
type PendingPass struct {
	h *ecsreg.Handles
}

// NewPendingPass builds a PendingPass against h.
func NewPendingPass(h *ecsreg.Handles) *PendingPass {
	return &PendingPass{h: h}
}

func (p *PendingPass) Name() string { return "pending" }

func (p *PendingPass) Run(w *ecs.World, _ *pipeline.PassContext) {
	target := ecs.TargetComponent(p.h.FaceDirection)
	q := w.CreateQuery(p.h.Pending.Required(target), p.h.Move.Forbidden())
	q.ForEach(func(e ecs.Entity) {
		dir, ok := p.h.Pending.Get(e, target)
		if !ok {
			return
		}
		p.h.FaceDirection.Set(e, components.FaceDirection{Dir: dir})
		p.h.Pending.Remove(e, target)
	})
}

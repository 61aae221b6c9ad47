package passes

import (
	"github.com/pthm-cable/gridsim/components"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/pipeline"
)

// TimerPass decrements every live Timer<->target row by one tick; a row
// that already reads zero when the pass runs (that is, one tick after it
// reached zero) is removed and replaced with a Timeout<->target row on
// the same entity, so the next pass (or a consumer polling the ECS
// directly) can observe "this timer just fired".
type TimerPass struct {
	h *ecsreg.Handles
}

// NewTimerPass builds a TimerPass against h.
func NewTimerPass(h *ecsreg.Handles) *TimerPass {
	return &TimerPass{h: h}
}

func (p *TimerPass) Name() string { return "timer" }

type firedTimer struct {
	e      ecs.Entity
	target ecs.Target
}

func (p *TimerPass) Run(w *ecs.World, _ *pipeline.PassContext) {
	q := w.CreateQuery(p.h.Timer.RequiredAny())
	var fired []firedTimer
	q.ForEach(func(e ecs.Entity) {
		var targets []ecs.Target
		p.h.Timer.ForEach(e, func(target ecs.Target, _ components.TimerValue) {
			targets = append(targets, target)
		})
		for _, target := range targets {
			val, ok := p.h.Timer.Get(e, target)
			if !ok {
				continue
			}
			if val.Remaining > 0 {
				p.h.Timer.Set(e, target, components.TimerValue{Remaining: val.Remaining - 1})
				continue
			}
			p.h.Timer.Remove(e, target)
			fired = append(fired, firedTimer{e: e, target: target})
		}
	})
	for _, f := range fired {
		p.h.Timeout.Set(f.e, f.target, components.Tag{})
	}
}

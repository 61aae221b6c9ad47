package passes

import (
	"github.com/pthm-cable/gridsim/bitset"
	"github.com/pthm-cable/gridsim/ecs"
	"github.com/pthm-cable/gridsim/ecsreg"
	"github.com/pthm-cable/gridsim/pipeline"
	"github.com/pthm-cable/gridsim/worldmap"
)

// DynamicColliderPass rebuilds the tick's dynamic-collider bitset from
// scratch: every entity tagged DynamicCollider marks its current tile,
// and -- if it has an in-flight Move -- its target tile too, so other
// entities' pathing this tick treats both ends of a crossing move as
// occupied. The bitset is
// owned by this pass and reused tick over tick (bitset.Reset keeps the
// same backing array as long as the grid size is unchanged).
type DynamicColliderPass struct {
	h    *ecsreg.Handles
	m    *worldmap.Map
	bits *bitset.BitSet
}

// NewDynamicColliderPass builds a DynamicColliderPass against h and m.
func NewDynamicColliderPass(h *ecsreg.Handles, m *worldmap.Map) *DynamicColliderPass {
	return &DynamicColliderPass{h: h, m: m, bits: bitset.New(m.Grid().Len())}
}

func (p *DynamicColliderPass) Name() string { return "dynamicCollider" }

func (p *DynamicColliderPass) Run(w *ecs.World, ctx *pipeline.PassContext) {
	p.bits.Reset(p.m.Grid().Len())
	q := w.CreateQuery(p.h.DynamicCollider.Required(), p.h.Position.Required())
	q.ForEach(func(e ecs.Entity) {
		pos, ok := p.h.Position.Get(e)
		if !ok {
			return
		}
		idx, err := pos.Index(p.m.Grid())
		if err == nil {
			p.bits.Set(idx)
		}
		if mv, ok := p.h.Move.Get(e); ok {
			p.bits.Set(mv.TargetIdx)
		}
	})
	ctx.Colliders = p.bits
}

package ecs

// Requirement is one condition a query checks against a candidate entity:
// a required or forbidden component, or a required/forbidden relation
// target. Build one with a ComponentType/RelationType's Required/Forbidden
// methods.
type Requirement struct {
	check func(e Entity) bool
}

type requirement = Requirement

// Query is a cached set of requirements a createQuery caller iterates
// repeatedly. There is no archetype index backing it -- ForEach walks the
// live entity slots and tests every requirement, which is the right
// trade-off for the entity counts this engine targets.
type Query struct {
	w    *World
	reqs []Requirement
}

// CreateQuery builds a query over every currently-registered entity slot,
// requiring all of reqs to hold.
func (w *World) CreateQuery(reqs ...Requirement) *Query {
	return &Query{w: w, reqs: reqs}
}

// ForEach calls fn once for every live entity matching the query's
// requirements. The list of live entities is snapshotted before the first
// callback, so no entity is visited twice within this call. Each entity is
// checked for liveness and against the requirements just before its own
// callback, so an entity that an earlier callback deleted, or changed so
// that it no longer matches, is skipped.
func (q *Query) ForEach(fn func(e Entity)) {
	candidates := make([]Entity, 0, len(q.w.slots))
	for id, s := range q.w.slots {
		if s.alive {
			candidates = append(candidates, Entity{id: uint32(id), version: s.version})
		}
	}
	for _, e := range candidates {
		if !q.w.Alive(e) {
			continue
		}
		if q.matches(e) {
			fn(e)
		}
	}
}

// Count returns the number of currently-live entities matching the query.
func (q *Query) Count() int {
	n := 0
	q.ForEach(func(Entity) { n++ })
	return n
}

func (q *Query) matches(e Entity) bool {
	for _, r := range q.reqs {
		if !r.check(e) {
			return false
		}
	}
	return true
}

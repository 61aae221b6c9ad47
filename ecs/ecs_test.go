package ecs

import (
	"encoding/json"
	"errors"
	"testing"
)

type position struct {
	X, Y int
}

type tag struct{}

func TestEntityLifecycleAndVersionReuse(t *testing.T) {
	w := NewWorld()
	e1 := w.New()
	if !w.Alive(e1) {
		t.Fatalf("new entity should be alive")
	}
	w.Delete(e1)
	if w.Alive(e1) {
		t.Fatalf("deleted entity should not be alive")
	}
	e2 := w.New()
	if e2.ID() != e1.ID() {
		t.Fatalf("expected slot reuse, got id %d want %d", e2.ID(), e1.ID())
	}
	if e2.Version() == e1.Version() {
		t.Fatalf("expected version bump on reuse")
	}
	if w.Alive(e1) {
		t.Fatalf("stale handle must not report alive after reuse")
	}
}

func TestComponentSetGetHasRemove(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[position](w, "position")
	e := w.New()

	if pos.Has(e) {
		t.Fatalf("fresh entity should not have position")
	}
	if err := pos.Set(e, position{1, 2}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := pos.Get(e)
	if !ok || got != (position{1, 2}) {
		t.Fatalf("Get = %v,%v want {1 2},true", got, ok)
	}
	pos.Remove(e)
	if pos.Has(e) {
		t.Fatalf("removed component should be gone")
	}
	pos.Remove(e) // no-op
}

func TestSetOnDeadEntityIsEntityGone(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[position](w, "position")
	e := w.New()
	w.Delete(e)
	if err := pos.Set(e, position{}); !errors.Is(err, ErrEntityGone) {
		t.Fatalf("Set on dead entity = %v, want ErrEntityGone", err)
	}
}

func TestComponentHooksFireOnInitSetRemove(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[position](w, "position")

	var inits, sets, removes int
	pos.OnInit(func(_ *World, _ Entity, _ position) { inits++ })
	pos.OnSet(func(_ *World, _ Entity, _ position) { sets++ })
	pos.OnRemove(func(_ *World, _ Entity, _ position) { removes++ })

	e := w.New()
	pos.Set(e, position{1, 1})
	if inits != 1 || sets != 1 {
		t.Fatalf("first set: inits=%d sets=%d want 1,1", inits, sets)
	}
	pos.Set(e, position{2, 2})
	if inits != 1 || sets != 2 {
		t.Fatalf("second set: inits=%d sets=%d want 1,2", inits, sets)
	}
	pos.Remove(e)
	if removes != 1 {
		t.Fatalf("removes=%d want 1", removes)
	}
}

func TestComponentHookFiresOnEntityDelete(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[position](w, "position")
	var removed bool
	pos.OnRemove(func(_ *World, _ Entity, _ position) { removed = true })

	e := w.New()
	pos.Set(e, position{1, 1})
	w.Delete(e)
	if !removed {
		t.Fatalf("expected onRemove hook to fire on entity deletion")
	}
}

func TestRelationSetGetForEach(t *testing.T) {
	w := NewWorld()
	type likes struct{ Weight int }
	rel := RegisterRelation[likes](w, "likes")

	a := w.New()
	b := w.New()
	c := w.New()

	rel.Set(a, TargetEntity(b), likes{Weight: 5})
	rel.Set(a, TargetEntity(c), likes{Weight: 9})

	v, ok := rel.Get(a, TargetEntity(b))
	if !ok || v.Weight != 5 {
		t.Fatalf("Get(a,b) = %v,%v", v, ok)
	}

	seen := map[uint32]int{}
	rel.ForEach(a, func(target Target, val likes) {
		seen[target.Entity().ID()] = val.Weight
	})
	if len(seen) != 2 || seen[b.ID()] != 5 || seen[c.ID()] != 9 {
		t.Fatalf("ForEach saw %v", seen)
	}
}

func TestRelationTargetComponent(t *testing.T) {
	w := NewWorld()
	thinking := RegisterComponent[tag](w, "thinking")
	task := RegisterRelation[tag](w, "task")

	e := w.New()
	task.Set(e, TargetComponent(thinking), tag{})
	if !task.Has(e, TargetComponentName("thinking")) {
		t.Fatalf("expected task relation targeting component name to match")
	}
}

func TestRelationCascadeDeleteAsSourceAndTarget(t *testing.T) {
	w := NewWorld()
	type edge struct{ N int }
	rel := RegisterRelation[edge](w, "edge")

	a := w.New()
	b := w.New()
	rel.Set(a, TargetEntity(b), edge{N: 1})
	rel.Set(b, TargetEntity(a), edge{N: 2})

	w.Delete(a)
	if rel.HasAny(a) {
		t.Fatalf("deleted source entity should have no outgoing relation rows")
	}
	if rel.Has(b, TargetEntity(a)) {
		t.Fatalf("relation row targeting the deleted entity should be dropped")
	}
}

func TestDeferAndSyncOrdering(t *testing.T) {
	w := NewWorld()
	var order []int
	w.Defer(func(*World) { order = append(order, 1) })
	w.Defer(func(*World) { order = append(order, 2) })
	if len(order) != 0 {
		t.Fatalf("deferred fns must not run before Sync")
	}
	w.Sync()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v, want [1 2]", order)
	}
	w.Sync() // second sync with nothing queued is a no-op
	if len(order) != 2 {
		t.Fatalf("second sync should not rerun stale deferred fns")
	}
}

func TestQueryForEachSnapshotsAndDoesNotDoubleVisit(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[position](w, "position")

	var ids []uint32
	for i := 0; i < 5; i++ {
		e := w.New()
		pos.Set(e, position{X: i})
	}

	q := w.CreateQuery(pos.Required())
	visits := 0
	q.ForEach(func(e Entity) {
		visits++
		ids = append(ids, e.ID())
		// Deleting mid-iteration must not cause a revisit or a skip of
		// entities already snapshotted.
		if len(ids) == 1 {
			w.Delete(e)
		}
	})
	if visits != 5 {
		t.Fatalf("visits = %d, want 5 (the entity deleted mid-iteration was already visited)", visits)
	}
}

func TestQueryForbidden(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[position](w, "position")
	pending := RegisterComponent[tag](w, "pending")

	a := w.New()
	pos.Set(a, position{})
	b := w.New()
	pos.Set(b, position{})
	pending.Set(b, tag{})

	q := w.CreateQuery(pos.Required(), pending.Forbidden())
	if q.Count() != 1 {
		t.Fatalf("Count = %d, want 1", q.Count())
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[position](w, "position")
	type likes struct{ Weight int }
	rel := RegisterRelation[likes](w, "likes")

	a := w.New()
	b := w.New()
	pos.Set(a, position{X: 3, Y: 4})
	rel.Set(a, TargetEntity(b), likes{Weight: 7})

	snap1 := w.Serialize()
	data, err := json.Marshal(snap1)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	w2 := NewWorld()
	pos2 := RegisterComponent[position](w2, "position")
	rel2 := RegisterRelation[likes](w2, "likes")

	var snap2 Snapshot
	if err := json.Unmarshal(data, &snap2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := Load(w2, snap2); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, ok := pos2.Get(a)
	if !ok || got != (position{X: 3, Y: 4}) {
		t.Fatalf("restored position = %v,%v", got, ok)
	}
	gotRel, ok := rel2.Get(a, TargetEntity(b))
	if !ok || gotRel.Weight != 7 {
		t.Fatalf("restored relation = %v,%v", gotRel, ok)
	}

	snap3 := w2.Serialize()
	data3, _ := json.Marshal(snap3)
	if string(data) != string(data3) {
		t.Fatalf("serialize(load(serialize(w))) != serialize(w)\n%s\n%s", data, data3)
	}
}

func TestLoadUnknownComponentIsHardError(t *testing.T) {
	w := NewWorld()
	RegisterComponent[position](w, "position")
	e := w.New()
	RegisterComponent[position](w, "position").Set(e, position{X: 1})
	snap := w.Serialize()

	w2 := NewWorld() // note: "position" never registered here
	if err := Load(w2, snap); !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("Load with missing registration = %v, want ErrUnknownComponent", err)
	}
}

package ecs

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SnapshotVersion is incremented when the serialized shape changes.
const SnapshotVersion = 1

// Snapshot is the plain data tree calls out: {version,
// entityManager, entities: [{id, components: [{type, value}]}]}.
type Snapshot struct {
	Version       int                   `json:"version"`
	EntityManager EntityManagerSnapshot `json:"entityManager"`
	Entities      []EntitySnapshot      `json:"entities"`
}

// EntityManagerSnapshot captures enough of the id/version/free-list state
// to restore entity identity exactly, including dead slots awaiting reuse.
type EntityManagerSnapshot struct {
	Versions []uint32 `json:"versions"`
	Alive    []bool   `json:"alive"`
	Free     []uint32 `json:"free"`
}

// EntitySnapshot is one entity's full component/relation row set.
type EntitySnapshot struct {
	ID         uint32           `json:"id"`
	Components []ComponentEntry `json:"components"`
}

// ComponentEntry is one component or relation row. Type is either a bare
// registered name (plain component) or a {component, target} object (a
// relation row) -- see ComponentTypeRef.
type ComponentEntry struct {
	Type  ComponentTypeRef `json:"type"`
	Value json.RawMessage  `json:"value,omitempty"`
}

// ComponentTypeRef discriminates a plain component name from a relation's
// (kind, target) pair. It marshals to a bare JSON string in the first
// case and to {"component":...,"target":...} in the second, matching
// snapshot format exactly.
type ComponentTypeRef struct {
	Name     string   // set when this is a plain component
	Relation *RelRef  // set when this is a relation row
}

// RelRef names a relation kind and its target, where target is either an
// entity id (number) or a component name (string).
type RelRef struct {
	Component         string
	TargetEntityID    *uint32
	TargetComponent   *string
}

func (c ComponentTypeRef) MarshalJSON() ([]byte, error) {
	if c.Relation == nil {
		return json.Marshal(c.Name)
	}
	obj := struct {
		Component string `json:"component"`
		Target    any    `json:"target"`
	}{Component: c.Relation.Component}
	if c.Relation.TargetEntityID != nil {
		obj.Target = *c.Relation.TargetEntityID
	} else if c.Relation.TargetComponent != nil {
		obj.Target = *c.Relation.TargetComponent
	}
	return json.Marshal(obj)
}

func (c *ComponentTypeRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		c.Relation = nil
		return nil
	}
	var obj struct {
		Component string          `json:"component"`
		Target    json.RawMessage `json:"target"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ecs: invalid component type entry: %w", err)
	}
	ref := &RelRef{Component: obj.Component}
	var asID uint32
	if err := json.Unmarshal(obj.Target, &asID); err == nil {
		ref.TargetEntityID = &asID
	} else {
		var asName string
		if err := json.Unmarshal(obj.Target, &asName); err != nil {
			return fmt.Errorf("ecs: invalid relation target: %w", err)
		}
		ref.TargetComponent = &asName
	}
	c.Relation = ref
	return nil
}

// Serialize captures the entire world as a Snapshot, suitable for
// json.Marshal. Output entity and component order is deterministic
// (ascending id, registration order) so that serializing twice without
// mutation in between produces byte-identical JSON.
func (w *World) Serialize() Snapshot {
	snap := Snapshot{
		Version: SnapshotVersion,
		EntityManager: EntityManagerSnapshot{
			Versions: make([]uint32, len(w.slots)),
			Alive:    make([]bool, len(w.slots)),
			Free:     append([]uint32(nil), w.free...),
		},
	}
	for i, s := range w.slots {
		snap.EntityManager.Versions[i] = s.version
		snap.EntityManager.Alive[i] = s.alive
	}

	byEntity := make(map[uint32][]ComponentEntry)
	for _, reg := range w.order {
		if !reg.isRelation {
			store := w.components[reg.name]
			exports := store.exportAll()
			sort.Slice(exports, func(i, j int) bool { return exports[i].Entity.id < exports[j].Entity.id })
			for _, ex := range exports {
				byEntity[ex.Entity.id] = append(byEntity[ex.Entity.id], ComponentEntry{
					Type:  ComponentTypeRef{Name: store.name()},
					Value: ex.Value,
				})
			}
			continue
		}
		store := w.relations[reg.name]
		exports := store.exportAll()
		sort.Slice(exports, func(i, j int) bool {
			if exports[i].Entity.id != exports[j].Entity.id {
				return exports[i].Entity.id < exports[j].Entity.id
			}
			return targetSortKey(exports[i].Target) < targetSortKey(exports[j].Target)
		})
		for _, ex := range exports {
			ref := RelRef{Component: store.kind()}
			if ex.Target.IsComponent() {
				name := ex.Target.ComponentName()
				ref.TargetComponent = &name
			} else {
				id := ex.Target.Entity().id
				ref.TargetEntityID = &id
			}
			byEntity[ex.Entity.id] = append(byEntity[ex.Entity.id], ComponentEntry{
				Type:  ComponentTypeRef{Relation: &ref},
				Value: ex.Value,
			})
		}
	}

	ids := make([]uint32, 0, len(byEntity))
	for id := range byEntity {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		snap.Entities = append(snap.Entities, EntitySnapshot{ID: id, Components: byEntity[id]})
	}
	return snap
}

func targetSortKey(t Target) string {
	return t.key()
}

// Load restores w (which must already have every component/relation kind
// it will encounter registered) from a Snapshot produced by Serialize.
// Entity ids are preserved exactly. An entry naming a component or
// relation that was never registered on w is reported as
// ErrUnknownComponent.
func Load(w *World, snap Snapshot) error {
	w.slots = make([]entityState, len(snap.EntityManager.Versions))
	for i := range w.slots {
		w.slots[i] = entityState{
			version: snap.EntityManager.Versions[i],
			alive:   i < len(snap.EntityManager.Alive) && snap.EntityManager.Alive[i],
		}
	}
	w.free = append([]uint32(nil), snap.EntityManager.Free...)
	w.deferred = nil

	for _, es := range snap.Entities {
		if int(es.ID) >= len(w.slots) {
			continue
		}
		e := Entity{id: es.ID, version: w.slots[es.ID].version}
		if !w.slots[es.ID].alive {
			continue
		}
		for _, entry := range es.Components {
			if entry.Type.Relation == nil {
				store, ok := w.components[entry.Type.Name]
				if !ok {
					return fmt.Errorf("%w: %q", ErrUnknownComponent, entry.Type.Name)
				}
				if err := store.importOne(w, e, entry.Value); err != nil {
					return err
				}
				continue
			}
			relStore, ok := w.relations[entry.Type.Relation.Component]
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownComponent, entry.Type.Relation.Component)
			}
			var target Target
			if entry.Type.Relation.TargetComponent != nil {
				target = TargetComponentName(*entry.Type.Relation.TargetComponent)
			} else if entry.Type.Relation.TargetEntityID != nil {
				tid := *entry.Type.Relation.TargetEntityID
				if int(tid) >= len(w.slots) {
					return fmt.Errorf("%w: relation target entity %d", ErrUnknownComponent, tid)
				}
				target = TargetEntity(Entity{id: tid, version: w.slots[tid].version})
			}
			if err := relStore.importOne(w, e, target, entry.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

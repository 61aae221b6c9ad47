package ecs

import "fmt"

// Entity is an opaque identity with a version counter, so a reused slot
// index never aliases a deleted entity.
type Entity struct {
	id      uint32
	version uint32
}

// ID returns the entity's slot id. Two different (live) entities never
// share an id at the same time, but ids are reused after deletion -- use
// the whole Entity value, not ID(), to tell entities apart.
func (e Entity) ID() uint32 { return e.id }

// Version returns the entity's version counter.
func (e Entity) Version() uint32 { return e.version }

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d#%d)", e.id, e.version)
}

// entityState tracks liveness for one id slot.
type entityState struct {
	version uint32
	alive   bool
}

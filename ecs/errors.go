package ecs

import "errors"

// ErrEntityGone is returned when a mutation targets a deleted (or never
// created) entity -- a mutation on a dead entity is a programmer error
// that must be reported, not silently swallowed like a read.
var ErrEntityGone = errors.New("ecs: entity is gone")

// ErrUnknownComponent is returned by Load when a snapshot references a
// component or relation name that was never registered on the world.
var ErrUnknownComponent = errors.New("ecs: unknown component")

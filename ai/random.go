package ai

import (
	"math/rand"

	"github.com/pthm-cable/gridsim/geom"
)

// SystemRandom is the production Random, backed by a seeded math/rand
// source held as a struct field rather than resolved globally.
type SystemRandom struct {
	rng *rand.Rand
}

// NewSystemRandom builds a SystemRandom seeded with seed.
func NewSystemRandom(seed int64) *SystemRandom {
	return &SystemRandom{rng: rand.New(rand.NewSource(seed))}
}

// IntRange returns a uniform random integer in [min, max].
func (r *SystemRandom) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.rng.Intn(max-min+1)
}

// Direction returns one of the four cardinal directions uniformly.
func (r *SystemRandom) Direction() geom.Direction {
	dirs := [...]geom.Direction{geom.Up, geom.Down, geom.Left, geom.Right}
	return dirs[r.rng.Intn(len(dirs))]
}

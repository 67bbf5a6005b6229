package replacement

import (
	"math/rand/v2"
)

// RandomPolicy evicts a uniformly random way. It keeps no bookkeeping.
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandom creates a random policy drawing from rng. A nil rng uses a
// randomly seeded source.
func NewRandom(rng *rand.Rand) *RandomPolicy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &RandomPolicy{rng: rng}
}

// OnAccess is a no-op.
func (p *RandomPolicy) OnAccess(way int) {}

// Choose prefers a free way; otherwise it picks one at random.
func (p *RandomPolicy) Choose(valid []bool) int {
	if way := firstInvalid(valid); way >= 0 {
		return way
	}

	if len(valid) == 0 {
		return 0
	}

	return p.rng.IntN(len(valid))
}

// OnInsert is a no-op.
func (p *RandomPolicy) OnInsert(way int) {}

// OnRemove is a no-op.
func (p *RandomPolicy) OnRemove(way int) {}

// Clear is a no-op.
func (p *RandomPolicy) Clear() {}

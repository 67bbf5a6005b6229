package simulator

import (
	"math/rand/v2"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
)

// Builder can build simulators.
type Builder struct {
	config cache.Config
	memory Memory
	seed   uint64
	hooks  []sim.Hook
}

// MakeBuilder creates a builder with the default cache configuration.
func MakeBuilder() Builder {
	return Builder{
		config: cache.DefaultConfig(),
		seed:   memory.DefaultSeed,
	}
}

// WithConfig sets the initial cache configuration.
func (b Builder) WithConfig(config cache.Config) Builder {
	b.config = config
	return b
}

// WithMemory sets the main memory. If not set, a fresh memory.Memory seeded
// with the builder seed is used.
func (b Builder) WithMemory(m Memory) Builder {
	b.memory = m
	return b
}

// WithSeed sets the seed of the default memory fill and of the random
// replacement policy.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	return b
}

// WithHook registers a hook on the built simulator.
func (b Builder) WithHook(hook sim.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Build builds a simulator. It fails if the configuration is invalid.
func (b Builder) Build() (*Simulator, error) {
	rng := rand.New(rand.NewPCG(b.seed, b.seed+1))

	c, err := cache.New(b.config, rng)
	if err != nil {
		return nil, err
	}

	mem := b.memory
	if mem == nil {
		mem = memory.New(memory.WithSeed(b.seed))
	}

	s := &Simulator{
		memory: mem,
		rng:    rng,
		cache:  c,
	}

	for _, hook := range b.hooks {
		s.AcceptHook(hook)
	}

	s.invoke(HookPosConfigure, c.Config())

	return s, nil
}

// MustBuild is like Build but panics on an invalid configuration.
func (b Builder) MustBuild() *Simulator {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}

	return s
}

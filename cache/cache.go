// Package cache models a set-associative cache: blocks, sets with their own
// replacement policy, and the cache that owns the sets.
package cache

import (
	"fmt"
	"math/rand/v2"

	"github.com/sarchlab/cachesim/address"
	"github.com/sarchlab/cachesim/replacement"
)

// Cache is an array of sets with a fixed geometry.
type Cache struct {
	config  Config
	numSets int
	decoder address.Decoder
	sets    []*Set
}

// New creates a cache. Each set receives its own policy instance; rng feeds
// the Random policy and may be nil.
func New(config Config, rng *rand.Rand) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	numSets := config.NumSets()
	c := &Cache{
		config:  config,
		numSets: numSets,
		decoder: address.NewDecoder(config.BlockSize, numSets),
		sets:    make([]*Set, numSets),
	}

	for i := range c.sets {
		c.sets[i] = NewSet(
			i,
			config.Associativity,
			config.BlockSize,
			replacement.New(config.Policy, rng),
		)
	}

	return c, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew(config Config, rng *rand.Rand) *Cache {
	c, err := New(config, rng)
	if err != nil {
		panic(fmt.Sprintf("cache: %v", err))
	}

	return c
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// NumSets returns the number of sets.
func (c *Cache) NumSets() int {
	return c.numSets
}

// BlockSize returns the block size in bytes.
func (c *Cache) BlockSize() int {
	return c.config.BlockSize
}

// Associativity returns the number of ways per set.
func (c *Cache) Associativity() int {
	return c.config.Associativity
}

// Decoder returns the address decoder matching the cache geometry.
func (c *Cache) Decoder() address.Decoder {
	return c.decoder
}

// Set returns the set at index.
func (c *Cache) Set(index int) *Set {
	return c.sets[index]
}

// Sets returns all sets.
func (c *Cache) Sets() []*Set {
	return c.sets
}

// Flush writes back all dirty blocks and returns how many were written.
func (c *Cache) Flush(backing BackingStore) int {
	n := 0
	for _, set := range c.sets {
		n += set.Flush(c.numSets, backing)
	}

	return n
}

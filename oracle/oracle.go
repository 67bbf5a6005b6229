// Package oracle provides an independent LRU cache model built on Akita's
// cache directory. It tracks tags and dirty flags only and is used to check
// the hit, miss and eviction sequence of the simulator.
package oracle

import (
	"errors"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replacement"
	"github.com/sarchlab/cachesim/simulator"
)

// ErrUnsupportedPolicy is returned for configurations that do not use LRU
// replacement.
var ErrUnsupportedPolicy = errors.New("oracle only models LRU replacement")

// Outcome is what the oracle predicts for one access.
type Outcome struct {
	Hit bool
	// Bypass is true for a write miss that does not allocate.
	Bypass bool
	// Evicted is true if a valid dirty block was replaced.
	Evicted    bool
	EvictedTag int64
}

// Oracle is an LRU cache model backed by an Akita directory. Blocks are
// tagged with their block-aligned address.
type Oracle struct {
	config    cache.Config
	numSets   uint64
	directory *akitacache.DirectoryImpl
	stats     cache.Statistics
}

// New creates an oracle for the given configuration.
func New(config cache.Config) (*Oracle, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Policy != replacement.LRU {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedPolicy, config.Policy)
	}

	numSets := config.NumSets()

	return &Oracle{
		config:  config,
		numSets: uint64(numSets),
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}, nil
}

// Config returns the modelled configuration.
func (o *Oracle) Config() cache.Config {
	return o.config
}

// Stats returns the statistics the oracle kept.
func (o *Oracle) Stats() cache.Statistics {
	return o.stats
}

// Read models a read.
func (o *Oracle) Read(addr uint64) Outcome {
	blockAddr := o.blockAddr(addr)

	if block := o.lookup(blockAddr); block != nil {
		o.stats.RecordRead(true)
		o.directory.Visit(block)

		return Outcome{Hit: true}
	}

	o.stats.RecordRead(false)

	return o.fill(blockAddr)
}

// Write models a write. Unset policies behave as WriteBack and
// WriteAllocate.
func (o *Oracle) Write(
	addr uint64,
	policy simulator.WritePolicy,
	missPolicy simulator.WriteMissPolicy,
) Outcome {
	blockAddr := o.blockAddr(addr)

	block := o.lookup(blockAddr)
	if block != nil {
		o.stats.RecordWrite(true)
		o.directory.Visit(block)
		o.markWritten(block, policy)

		return Outcome{Hit: true}
	}

	o.stats.RecordWrite(false)

	if missPolicy == simulator.NoWriteAllocate {
		return Outcome{Bypass: true}
	}

	outcome := o.fill(blockAddr)
	o.markWritten(o.lookup(blockAddr), policy)

	return outcome
}

// Flush marks every dirty block clean and returns how many there were.
func (o *Oracle) Flush() int {
	n := 0

	for _, set := range o.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				block.IsDirty = false
				n++
			}
		}
	}

	for i := 0; i < n; i++ {
		o.stats.RecordWriteback()
	}

	return n
}

// Reset invalidates all blocks and clears the statistics.
func (o *Oracle) Reset() {
	o.directory.Reset()
	o.stats = cache.Statistics{}
}

func (o *Oracle) blockAddr(addr uint64) uint64 {
	bs := uint64(o.config.BlockSize)
	return (addr / bs) * bs
}

func (o *Oracle) lookup(blockAddr uint64) *akitacache.Block {
	block := o.directory.Lookup(0, blockAddr)
	if block == nil || !block.IsValid {
		return nil
	}

	return block
}

func (o *Oracle) fill(blockAddr uint64) Outcome {
	outcome := Outcome{}

	victim := o.directory.FindVictim(blockAddr)

	if victim.IsValid && victim.IsDirty {
		o.stats.RecordEviction()
		outcome.Evicted = true
		outcome.EvictedTag = o.tagOf(victim.Tag)
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	o.directory.Visit(victim)

	return outcome
}

func (o *Oracle) markWritten(block *akitacache.Block, policy simulator.WritePolicy) {
	if policy != simulator.WriteThrough {
		block.IsDirty = true
	}
}

func (o *Oracle) tagOf(blockAddr uint64) int64 {
	return int64(blockAddr / uint64(o.config.BlockSize) / o.numSets)
}

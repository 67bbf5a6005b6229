// Package simulator runs reads, writes and flushes against a set-associative
// cache backed by main memory, applying the write and write-miss policies and
// keeping statistics.
//
// A Simulator is safe for concurrent use. Every operation, including
// reconfiguration and snapshots, runs under a single lock, so callers never
// observe a partially applied access or a half-swapped cache.
package simulator

import (
	"math/rand/v2"
	"sync"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/address"
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replacement"
)

// Memory is the main memory the simulator writes through and fills from.
type Memory interface {
	cache.BackingStore
	Read8(addr uint64) byte
	Write8(addr uint64, value byte)
}

// Simulator owns a cache, its statistics and the main memory below it.
//
// Hooks are invoked while the simulator lock is held. A hook must not call
// back into the simulator. Hooks should be registered before the simulator
// is shared between goroutines.
type Simulator struct {
	sim.HookableBase

	lock sync.Mutex

	memory Memory
	rng    *rand.Rand
	cache  *cache.Cache
	stats  cache.Statistics
}

// Read reads one byte through the cache.
func (s *Simulator) Read(addr uint64) AccessResult {
	s.lock.Lock()
	defer s.lock.Unlock()

	dc := s.cache.Decoder().Decode(addr)
	set := s.cache.Set(dc.SetIndex)
	result := newResult(addr, dc, OpRead)

	if way, ok := set.Lookup(dc.Tag); ok {
		set.Touch(way)
		s.stats.RecordRead(true)

		result.Hit = true
		result.Way = way
		result.Value = set.Block(way).Data[dc.Offset]
	} else {
		s.stats.RecordRead(false)

		way := s.allocate(set, dc, &result)
		result.Way = way
		result.Value = set.Block(way).Data[dc.Offset]
	}

	result.Stats = s.stats
	s.invoke(HookPosAccess, result)

	return result
}

// Write writes one byte through the cache.
//
// On a hit, or on a miss with WriteAllocate, the byte lands in the cache
// block. WriteBack then marks the block dirty while WriteThrough also writes
// the byte to memory and leaves the dirty flag alone. On a miss with
// NoWriteAllocate the byte goes straight to memory and the cache is not
// touched. Unset policies behave as WriteBack and WriteAllocate.
func (s *Simulator) Write(
	addr uint64,
	value byte,
	policy WritePolicy,
	missPolicy WriteMissPolicy,
) AccessResult {
	if policy != WriteThrough {
		policy = WriteBack
	}

	if missPolicy != NoWriteAllocate {
		missPolicy = WriteAllocate
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	dc := s.cache.Decoder().Decode(addr)
	set := s.cache.Set(dc.SetIndex)

	result := newResult(addr, dc, OpWrite)
	result.Value = value
	result.WritePolicy = policy
	result.MissPolicy = missPolicy

	if way, ok := set.Lookup(dc.Tag); ok {
		set.Touch(way)
		s.stats.RecordWrite(true)

		result.Hit = true
		result.Way = way
		s.storeByte(set.Block(way), addr, dc.Offset, value, policy)
	} else {
		s.stats.RecordWrite(false)

		if missPolicy == WriteAllocate {
			way := s.allocate(set, dc, &result)
			result.Way = way
			s.storeByte(set.Block(way), addr, dc.Offset, value, policy)
		} else {
			s.memory.Write8(addr, value)
		}
	}

	result.Stats = s.stats
	s.invoke(HookPosAccess, result)

	return result
}

// Flush writes every valid dirty block back to memory and marks it clean.
// It returns the number of blocks written.
func (s *Simulator) Flush() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	n := s.cache.Flush(s.memory)
	for i := 0; i < n; i++ {
		s.stats.RecordWriteback()
	}

	s.invoke(HookPosFlush, FlushEvent{Blocks: n})

	return n
}

// Configure replaces the cache, its address decoder and the statistics with
// fresh ones for config. Memory is kept. If config is invalid nothing
// changes and an error wrapping cache.ErrConfiguration is returned.
func (s *Simulator) Configure(config cache.Config) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	c, err := cache.New(config, s.rng)
	if err != nil {
		return err
	}

	s.cache = c
	s.stats = cache.Statistics{}

	s.invoke(HookPosConfigure, config)

	return nil
}

// Reconfigure is Configure for callers that hold the policy as a name.
func (s *Simulator) Reconfigure(size, blockSize, associativity int, policyName string) error {
	config, err := cache.ParseConfig(size, blockSize, associativity, policyName)
	if err != nil {
		return err
	}

	return s.Configure(config)
}

// Config returns the current cache configuration.
func (s *Simulator) Config() cache.Config {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.cache.Config()
}

// Stats returns a snapshot of the statistics.
func (s *Simulator) Stats() cache.Statistics {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.stats
}

// State returns a deep copy of the cache contents.
func (s *Simulator) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()

	state := State{
		NumSets:       s.cache.NumSets(),
		BlockSize:     s.cache.BlockSize(),
		Associativity: s.cache.Associativity(),
		Policy:        s.cache.Config().Policy,
		Sets:          make([]SetState, s.cache.NumSets()),
	}

	for i, set := range s.cache.Sets() {
		blocks := make([]BlockState, set.Associativity())
		for way := range blocks {
			b := set.Block(way).Clone()
			blocks[way] = BlockState{
				Valid: b.Valid,
				Dirty: b.Dirty,
				Tag:   b.Tag,
				Data:  b.Data,
			}
		}

		state.Sets[i].Blocks = blocks
	}

	return state
}

// PeekMemory reads main memory directly, bypassing the cache.
func (s *Simulator) PeekMemory(addr uint64) byte {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.memory.Read8(addr)
}

// Policy returns the replacement policy of the current cache.
func (s *Simulator) Policy() replacement.Kind {
	return s.Config().Policy
}

func (s *Simulator) allocate(
	set *cache.Set,
	dc address.Decomposition,
	result *AccessResult,
) int {
	alloc := set.Allocate(dc.Tag, s.cache.NumSets(), s.memory)
	if alloc.Evicted == nil {
		return alloc.Way
	}

	s.stats.RecordEviction()

	result.Evicted = true
	result.EvictedTag = alloc.Evicted.Tag
	result.EvictedDirty = alloc.Evicted.Dirty

	s.invoke(HookPosEviction, EvictionEvent{
		Address:  result.Address,
		SetIndex: dc.SetIndex,
		Way:      alloc.Way,
		Eviction: *alloc.Evicted,
	})

	return alloc.Way
}

func (s *Simulator) storeByte(
	block *cache.Block,
	addr uint64,
	offset int,
	value byte,
	policy WritePolicy,
) {
	block.Data[offset] = value

	if policy == WriteBack {
		block.Dirty = true
		return
	}

	s.memory.Write8(addr, value)
}

func newResult(addr uint64, dc address.Decomposition, op Op) AccessResult {
	return AccessResult{
		Address:  addr,
		Tag:      dc.Tag,
		SetIndex: dc.SetIndex,
		Offset:   dc.Offset,
		Op:       op,
		Way:      -1,
	}
}

package cache

import (
	"github.com/sarchlab/cachesim/address"
	"github.com/sarchlab/cachesim/replacement"
)

// Eviction describes a dirty block that was written back to make room for a
// new one.
type Eviction struct {
	Tag   int64
	Dirty bool
	// Addr is the first memory address the block was written back to.
	Addr uint64
	Data []byte
}

// Allocation is the outcome of Set.Allocate.
type Allocation struct {
	Way     int
	Evicted *Eviction
}

// A Set is a fixed number of ways plus the replacement policy that manages
// them. The policy is private to the set.
type Set struct {
	index     int
	blockSize int
	blocks    []Block
	policy    replacement.Policy
}

// NewSet creates a set of associativity empty blocks.
func NewSet(
	index, associativity, blockSize int,
	policy replacement.Policy,
) *Set {
	s := &Set{
		index:     index,
		blockSize: blockSize,
		blocks:    make([]Block, associativity),
		policy:    policy,
	}

	for i := range s.blocks {
		s.blocks[i] = newBlock(blockSize)
	}

	return s
}

// Index returns the position of the set in its cache.
func (s *Set) Index() int {
	return s.index
}

// Associativity returns the number of ways.
func (s *Set) Associativity() int {
	return len(s.blocks)
}

// Block returns the block in the given way.
func (s *Set) Block(way int) *Block {
	return &s.blocks[way]
}

// Policy returns the set's replacement policy.
func (s *Set) Policy() replacement.Policy {
	return s.policy
}

// Lookup finds the way holding a valid block with the given tag.
func (s *Set) Lookup(tag int64) (way int, ok bool) {
	for i := range s.blocks {
		if s.blocks[i].Valid && s.blocks[i].Tag == tag {
			return i, true
		}
	}

	return -1, false
}

// Touch tells the replacement policy that way was hit.
func (s *Set) Touch(way int) {
	s.policy.OnAccess(way)
}

// Allocate places the block with the given tag into the set. The victim is
// chosen by the set's policy; a valid dirty victim is written back to
// backing first. The new block is filled from backing and is clean.
func (s *Set) Allocate(tag int64, numSets int, backing BackingStore) Allocation {
	way := s.policy.Choose(s.validMask())
	s.policy.OnRemove(way)

	victim := &s.blocks[way]
	alloc := Allocation{Way: way}

	if victim.Valid && victim.Dirty {
		alloc.Evicted = s.writeBack(victim, numSets, backing)
	}

	victim.Tag = tag
	victim.Valid = true
	victim.Dirty = false

	base := address.MemoryAddress(tag, s.index, 0, numSets, s.blockSize)
	copy(victim.Data, backing.Read(base, s.blockSize))

	s.policy.OnInsert(way)

	return alloc
}

// Flush writes back every valid dirty block and marks it clean. Validity and
// replacement state are left alone. It returns the number of blocks written.
func (s *Set) Flush(numSets int, backing BackingStore) int {
	n := 0

	for i := range s.blocks {
		block := &s.blocks[i]
		if !block.Valid || !block.Dirty {
			continue
		}

		s.writeBack(block, numSets, backing)
		block.Dirty = false
		n++
	}

	return n
}

func (s *Set) writeBack(block *Block, numSets int, backing BackingStore) *Eviction {
	base := address.MemoryAddress(block.Tag, s.index, 0, numSets, s.blockSize)

	data := make([]byte, len(block.Data))
	copy(data, block.Data)
	backing.Write(base, data)

	return &Eviction{
		Tag:   block.Tag,
		Dirty: block.Dirty,
		Addr:  base,
		Data:  data,
	}
}

func (s *Set) validMask() []bool {
	valid := make([]bool, len(s.blocks))
	for i := range s.blocks {
		valid[i] = s.blocks[i].Valid
	}

	return valid
}

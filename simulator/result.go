package simulator

import (
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replacement"
)

// Op is the kind of a cache access.
type Op int

// The access kinds.
const (
	OpRead Op = iota
	OpWrite
)

func (o Op) String() string {
	if o == OpWrite {
		return "WRITE"
	}

	return "READ"
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// AccessResult reports what a single read or write did.
type AccessResult struct {
	Address  uint64 `json:"address"`
	Tag      int64  `json:"tag"`
	SetIndex int    `json:"set_index"`
	Offset   int    `json:"offset"`
	Op       Op     `json:"operation"`
	Hit      bool   `json:"hit"`
	// Value is the byte read, or the byte written.
	Value byte `json:"value"`
	// Way is the slot that served the access, or -1 when the cache was not
	// touched (a no-write-allocate miss).
	Way int `json:"way_index"`

	Evicted      bool  `json:"evicted"`
	EvictedTag   int64 `json:"evicted_tag"`
	EvictedDirty bool  `json:"evicted_dirty"`

	WritePolicy WritePolicy     `json:"write_policy,omitempty"`
	MissPolicy  WriteMissPolicy `json:"miss_policy,omitempty"`

	Stats cache.Statistics `json:"stats"`
}

// EvictionEvent is delivered to hooks when a dirty block is written back to
// make room for another.
type EvictionEvent struct {
	// Address is the access that caused the eviction.
	Address  uint64
	SetIndex int
	Way      int
	Eviction cache.Eviction
}

// FlushEvent is delivered to hooks after a flush.
type FlushEvent struct {
	Blocks int
}

// BlockState is a copy of one block.
type BlockState struct {
	Valid bool   `json:"valid"`
	Dirty bool   `json:"dirty"`
	Tag   int64  `json:"tag"`
	Data  []byte `json:"data"`
}

// SetState is a copy of one set.
type SetState struct {
	Blocks []BlockState `json:"cache_blocks"`
}

// State is a full copy of the cache contents.
type State struct {
	NumSets       int              `json:"num_sets"`
	BlockSize     int              `json:"block_size"`
	Associativity int              `json:"associativity"`
	Policy        replacement.Kind `json:"policy"`
	Sets          []SetState       `json:"sets"`
}

// ValidBlocks counts the valid blocks in the snapshot.
func (s State) ValidBlocks() int {
	n := 0
	for _, set := range s.Sets {
		for _, b := range set.Blocks {
			if b.Valid {
				n++
			}
		}
	}

	return n
}

// DirtyBlocks counts the valid dirty blocks in the snapshot.
func (s State) DirtyBlocks() int {
	n := 0
	for _, set := range s.Sets {
		for _, b := range set.Blocks {
			if b.Valid && b.Dirty {
				n++
			}
		}
	}

	return n
}

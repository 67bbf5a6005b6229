// Package tracing provides hooks that observe a simulator and report or
// persist what it does.
package tracing

import (
	"github.com/sarchlab/cachesim/simulator"
)

// AccessRecord is the persisted form of one access.
type AccessRecord struct {
	RunID        string
	Seq          uint64
	Op           string
	Address      uint64
	Tag          int64
	SetIndex     int
	Offset       int
	Hit          bool
	Value        byte
	Way          int
	Evicted      bool
	EvictedTag   int64
	EvictedDirty bool
	WritePolicy  string
	MissPolicy   string
}

func newAccessRecord(runID string, seq uint64, r simulator.AccessResult) AccessRecord {
	return AccessRecord{
		RunID:        runID,
		Seq:          seq,
		Op:           r.Op.String(),
		Address:      r.Address,
		Tag:          r.Tag,
		SetIndex:     r.SetIndex,
		Offset:       r.Offset,
		Hit:          r.Hit,
		Value:        r.Value,
		Way:          r.Way,
		Evicted:      r.Evicted,
		EvictedTag:   r.EvictedTag,
		EvictedDirty: r.EvictedDirty,
		WritePolicy:  r.WritePolicy.String(),
		MissPolicy:   r.MissPolicy.String(),
	}
}

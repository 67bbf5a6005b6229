package trace

import (
	"github.com/sarchlab/cachesim/simulator"
)

// A Target executes accesses. *simulator.Simulator is a Target.
type Target interface {
	Read(addr uint64) simulator.AccessResult
	Write(
		addr uint64,
		value byte,
		policy simulator.WritePolicy,
		missPolicy simulator.WriteMissPolicy,
	) simulator.AccessResult
}

// Replayer feeds accesses to a Target.
type Replayer struct {
	// WritePolicy and MissPolicy apply to writes that do not name their own.
	WritePolicy simulator.WritePolicy
	MissPolicy  simulator.WriteMissPolicy

	// OnResult, if set, is called after every access.
	OnResult func(i int, a Access, r simulator.AccessResult)
}

// Replay runs every access against t in order and returns the result of the
// last one. The zero result is returned for an empty trace.
func (r Replayer) Replay(t Target, accesses []Access) simulator.AccessResult {
	var last simulator.AccessResult

	for i, a := range accesses {
		last = r.Step(t, a)

		if r.OnResult != nil {
			r.OnResult(i, a, last)
		}
	}

	return last
}

// Step runs one access against t.
func (r Replayer) Step(t Target, a Access) simulator.AccessResult {
	if a.Op == simulator.OpRead {
		return t.Read(a.Addr)
	}

	wp := a.WritePolicy
	if wp == 0 {
		wp = r.WritePolicy
	}

	mp := a.MissPolicy
	if mp == 0 {
		mp = r.MissPolicy
	}

	return t.Write(a.Addr, a.Value, wp, mp)
}

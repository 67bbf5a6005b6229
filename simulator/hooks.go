package simulator

import (
	"github.com/sarchlab/akita/v4/sim"
)

// HookPosAccess marks the completion of a read or write. The hook item is an
// AccessResult.
var HookPosAccess = &sim.HookPos{Name: "CacheAccess"}

// HookPosEviction marks a dirty block being written back on replacement. The
// hook item is an EvictionEvent.
var HookPosEviction = &sim.HookPos{Name: "CacheEviction"}

// HookPosFlush marks the end of a flush. The hook item is a FlushEvent.
var HookPosFlush = &sim.HookPos{Name: "CacheFlush"}

// HookPosConfigure marks a successful reconfiguration. The hook item is the
// new cache.Config.
var HookPosConfigure = &sim.HookPos{Name: "CacheConfigure"}

func (s *Simulator) invoke(pos *sim.HookPos, item interface{}) {
	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
	})
}

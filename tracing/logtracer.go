package tracing

import (
	"log"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/simulator"
)

// A LogTracer is a hook that prints every simulator event as a line of the
// given logger.
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a LogTracer.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Func prints the event.
func (t *LogTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case simulator.HookPosAccess:
		t.access(ctx.Item.(simulator.AccessResult))
	case simulator.HookPosEviction:
		e := ctx.Item.(simulator.EvictionEvent)
		t.logger.Printf("evict, set %d, way %d, tag %d, 0x%x\n",
			e.SetIndex, e.Way, e.Eviction.Tag, e.Eviction.Addr)
	case simulator.HookPosFlush:
		t.logger.Printf("flush, %d blocks\n", ctx.Item.(simulator.FlushEvent).Blocks)
	case simulator.HookPosConfigure:
		c := ctx.Item.(cache.Config)
		t.logger.Printf("configure, %dB, %dB blocks, %d ways, %s\n",
			c.Size, c.BlockSize, c.Associativity, c.Policy)
	}
}

func (t *LogTracer) access(r simulator.AccessResult) {
	outcome := "miss"
	if r.Hit {
		outcome = "hit"
	}

	t.logger.Printf("%s, 0x%x, set %d, tag %d, offset %d, way %d, %s, 0x%02x\n",
		r.Op, r.Address, r.SetIndex, r.Tag, r.Offset, r.Way, outcome, r.Value)
}

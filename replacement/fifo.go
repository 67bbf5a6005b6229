package replacement

import (
	"github.com/secnot/orderedmap"
)

// FIFOPolicy evicts the way that was filled first. Hits do not change the
// order.
type FIFOPolicy struct {
	queue *orderedmap.OrderedMap
}

// NewFIFO creates an empty FIFO policy.
func NewFIFO() *FIFOPolicy {
	return &FIFOPolicy{queue: orderedmap.NewOrderedMap()}
}

// OnAccess is a no-op.
func (p *FIFOPolicy) OnAccess(way int) {}

// Choose prefers a free way; otherwise it returns the oldest way in the
// queue. The way stays queued until OnRemove.
func (p *FIFOPolicy) Choose(valid []bool) int {
	if way := firstInvalid(valid); way >= 0 {
		return way
	}

	iter := p.queue.Iter()
	for key, _, ok := iter.Next(); ok; key, _, ok = iter.Next() {
		way := key.(int)
		if way < len(valid) {
			return way
		}
	}

	return 0
}

// OnInsert appends way to the back of the queue.
func (p *FIFOPolicy) OnInsert(way int) {
	p.queue.Delete(way)
	p.queue.Set(way, struct{}{})
}

// OnRemove drops way from the queue.
func (p *FIFOPolicy) OnRemove(way int) {
	p.queue.Delete(way)
}

// Clear empties the queue.
func (p *FIFOPolicy) Clear() {
	p.queue = orderedmap.NewOrderedMap()
}

// Order returns the queued ways from oldest to newest.
func (p *FIFOPolicy) Order() []int {
	return keys(p.queue)
}

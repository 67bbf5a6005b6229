package replacement

import (
	"github.com/secnot/orderedmap"
)

// LRUPolicy evicts the least recently used way of its set.
type LRUPolicy struct {
	order *orderedmap.OrderedMap
}

// NewLRU creates an empty LRU policy.
func NewLRU() *LRUPolicy {
	return &LRUPolicy{order: orderedmap.NewOrderedMap()}
}

// OnAccess moves way to the most recently used position.
func (p *LRUPolicy) OnAccess(way int) {
	p.touch(way)
}

// Choose prefers a free way; otherwise it returns the least recently used
// way that the set owns.
func (p *LRUPolicy) Choose(valid []bool) int {
	if way := firstInvalid(valid); way >= 0 {
		return way
	}

	iter := p.order.Iter()
	for key, _, ok := iter.Next(); ok; key, _, ok = iter.Next() {
		way := key.(int)
		if way < len(valid) {
			return way
		}
	}

	return 0
}

// OnInsert records way as the most recently used.
func (p *LRUPolicy) OnInsert(way int) {
	p.touch(way)
}

// OnRemove forgets way.
func (p *LRUPolicy) OnRemove(way int) {
	p.order.Delete(way)
}

// Clear forgets every way.
func (p *LRUPolicy) Clear() {
	p.order = orderedmap.NewOrderedMap()
}

// Order returns the tracked ways from least to most recently used.
func (p *LRUPolicy) Order() []int {
	return keys(p.order)
}

func (p *LRUPolicy) touch(way int) {
	if ok := p.order.MoveLast(way); !ok {
		p.order.Set(way, struct{}{})
	}
}

func keys(m *orderedmap.OrderedMap) []int {
	ways := make([]int, 0, m.Len())

	iter := m.Iter()
	for key, _, ok := iter.Next(); ok; key, _, ok = iter.Next() {
		ways = append(ways, key.(int))
	}

	return ways
}

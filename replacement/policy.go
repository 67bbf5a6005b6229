// Package replacement provides the victim selection policies used by cache
// sets.
//
// Every set owns its own Policy instance. Policies identify blocks by way
// index, the position of the block inside its set, so a policy can never
// select a block that lives in another set.
package replacement

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ErrUnknownPolicy is returned when a policy name is not recognized.
var ErrUnknownPolicy = errors.New("unknown replacement policy")

// A Policy decides which way of a set is replaced on a miss.
type Policy interface {
	// OnAccess records a hit on way.
	OnAccess(way int)

	// Choose returns the way to replace. valid holds the valid flag of every
	// way of the set. The result is always in [0, len(valid)).
	Choose(valid []bool) int

	// OnInsert records that way now holds a new block.
	OnInsert(way int)

	// OnRemove drops way from the policy's bookkeeping.
	OnRemove(way int)

	// Clear forgets all bookkeeping.
	Clear()
}

// Kind names a replacement policy.
type Kind int

// The supported policies.
const (
	LRU Kind = iota
	FIFO
	Random
)

// Kinds lists all supported policies.
func Kinds() []Kind {
	return []Kind{LRU, FIFO, Random}
}

func (k Kind) String() string {
	switch k {
	case LRU:
		return "LRU"
	case FIFO:
		return "FIFO"
	case Random:
		return "RANDOM"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the supported policies.
func (k Kind) Valid() bool {
	return k >= LRU && k <= Random
}

// ParseKind converts a policy name into a Kind. Names are case-insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "LRU":
		return LRU, nil
	case "FIFO":
		return FIFO, nil
	case "RANDOM":
		return Random, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// New creates a fresh policy of the given kind for one set. rng is only used
// by Random and may be nil for the other kinds.
func New(kind Kind, rng *rand.Rand) Policy {
	switch kind {
	case LRU:
		return NewLRU()
	case FIFO:
		return NewFIFO()
	case Random:
		return NewRandom(rng)
	default:
		panic(fmt.Sprintf("unknown replacement policy kind %d", int(kind)))
	}
}

// firstInvalid returns the first way that does not hold a block, or -1.
func firstInvalid(valid []bool) int {
	for way, v := range valid {
		if !v {
			return way
		}
	}

	return -1
}

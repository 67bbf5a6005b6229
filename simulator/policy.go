package simulator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownWritePolicy is returned when a write policy name is not
// recognized.
var ErrUnknownWritePolicy = errors.New("unknown write policy")

// WritePolicy decides when written data reaches main memory.
type WritePolicy int

// Write policies. The zero value is unset and behaves as WriteBack.
const (
	WriteBack WritePolicy = iota + 1
	WriteThrough
)

func (p WritePolicy) String() string {
	switch p {
	case WriteBack:
		return "WRITE_BACK"
	case WriteThrough:
		return "WRITE_THROUGH"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p WritePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *WritePolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseWritePolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// ParseWritePolicy accepts WRITE_BACK, write-back, writeback or WB and the
// write-through equivalents, in any case.
func ParseWritePolicy(name string) (WritePolicy, error) {
	switch normalizeName(name) {
	case "WRITEBACK", "WB":
		return WriteBack, nil
	case "WRITETHROUGH", "WT":
		return WriteThrough, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWritePolicy, name)
	}
}

// WriteMissPolicy decides whether a write miss allocates a block.
type WriteMissPolicy int

// Write miss policies. The zero value is unset and behaves as WriteAllocate.
const (
	WriteAllocate WriteMissPolicy = iota + 1
	NoWriteAllocate
)

func (p WriteMissPolicy) String() string {
	switch p {
	case WriteAllocate:
		return "WRITE_ALLOCATE"
	case NoWriteAllocate:
		return "NO_WRITE_ALLOCATE"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p WriteMissPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *WriteMissPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseWriteMissPolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// ParseWriteMissPolicy accepts WRITE_ALLOCATE, write-allocate or WA and the
// no-write-allocate equivalents (NO_WRITE_ALLOCATE, NWA), in any case.
func ParseWriteMissPolicy(name string) (WriteMissPolicy, error) {
	switch normalizeName(name) {
	case "WRITEALLOCATE", "WA":
		return WriteAllocate, nil
	case "NOWRITEALLOCATE", "NWA":
		return NoWriteAllocate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWritePolicy, name)
	}
}

func normalizeName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")

	return name
}

// Package memory models the byte-addressable main memory behind the cache.
package memory

import (
	"math/rand/v2"
)

const (
	// DefaultFillSize is the number of low addresses that are pre-filled with
	// pseudo-random bytes when a Memory is created.
	DefaultFillSize = 4096

	// DefaultSeed seeds the pre-fill so that traces are reproducible.
	DefaultSeed uint64 = 0x5eed

	// Landmark is the value pinned at address 0 after the pre-fill.
	Landmark byte = 0xAA
)

// Memory is a sparse byte-addressable store. Addresses that were never
// written read as zero.
//
// Memory is not safe for concurrent use. The simulator serializes all
// accesses under its own lock.
type Memory struct {
	data map[uint64]byte

	seed     uint64
	fillSize int
}

// An Option configures a Memory at construction.
type Option func(m *Memory)

// WithSeed sets the seed used for the initial random fill.
func WithSeed(seed uint64) Option {
	return func(m *Memory) {
		m.seed = seed
	}
}

// WithFillSize sets how many bytes starting at address 0 are pre-filled.
// A size of 0 leaves the memory empty apart from the landmark.
func WithFillSize(n int) Option {
	return func(m *Memory) {
		m.fillSize = n
	}
}

// New creates a memory, fills the low addresses with pseudo-random bytes and
// pins address 0 to Landmark.
func New(opts ...Option) *Memory {
	m := &Memory{
		data:     make(map[uint64]byte),
		seed:     DefaultSeed,
		fillSize: DefaultFillSize,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.fill()

	return m
}

func (m *Memory) fill() {
	rng := rand.New(rand.NewPCG(m.seed, m.seed^0x9e3779b97f4a7c15))

	for i := 0; i < m.fillSize; i++ {
		m.data[uint64(i)] = byte(rng.UintN(256))
	}

	m.data[0] = Landmark
}

// Read8 returns the byte at addr.
func (m *Memory) Read8(addr uint64) byte {
	return m.data[addr]
}

// Write8 stores a byte at addr.
func (m *Memory) Write8(addr uint64, value byte) {
	m.data[addr] = value
}

// Read returns size consecutive bytes starting at addr.
func (m *Memory) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = m.data[addr+uint64(i)]
	}

	return data
}

// Write stores data at consecutive addresses starting at addr.
func (m *Memory) Write(addr uint64, data []byte) {
	for i, b := range data {
		m.data[addr+uint64(i)] = b
	}
}

// Footprint returns the number of addresses that hold an explicit value.
func (m *Memory) Footprint() int {
	return len(m.data)
}

// Seed returns the seed used for the initial fill.
func (m *Memory) Seed() uint64 {
	return m.seed
}

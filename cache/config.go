package cache

import (
	"errors"
	"fmt"

	"github.com/sarchlab/cachesim/replacement"
)

// ErrConfiguration is the root of all configuration errors.
var ErrConfiguration = errors.New("configuration error")

// ErrInvalidPolicy reports an unknown replacement policy.
var ErrInvalidPolicy = fmt.Errorf("%w: invalid replacement policy", ErrConfiguration)

// ErrInvalidConfiguration reports a geometry that does not yield at least one
// set.
var ErrInvalidConfiguration = fmt.Errorf("%w: invalid cache configuration", ErrConfiguration)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// Policy selects the replacement policy of every set
	Policy replacement.Kind `json:"policy"`
}

// DefaultConfig returns the configuration the simulator boots with: 1KB,
// 32B lines, 4-way, FIFO.
func DefaultConfig() Config {
	return Config{
		Size:          1024,
		BlockSize:     32,
		Associativity: 4,
		Policy:        replacement.FIFO,
	}
}

// NumSets returns the number of sets the geometry yields. The result may be
// zero or negative for invalid geometries.
func (c Config) NumSets() int {
	if c.BlockSize <= 0 || c.Associativity <= 0 {
		return 0
	}

	return c.Size / c.BlockSize / c.Associativity
}

// Validate checks the policy first and then the geometry.
func (c Config) Validate() error {
	if !c.Policy.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPolicy, int(c.Policy))
	}

	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d must be > 0",
			ErrInvalidConfiguration, c.BlockSize)
	}

	if c.Associativity <= 0 {
		return fmt.Errorf("%w: associativity %d must be > 0",
			ErrInvalidConfiguration, c.Associativity)
	}

	if c.NumSets() <= 0 {
		return fmt.Errorf("%w: %dB / (%dB x %d ways) yields no sets",
			ErrInvalidConfiguration, c.Size, c.BlockSize, c.Associativity)
	}

	return nil
}

// ParseConfig builds a Config from a policy name, the way front ends receive
// it, and validates it.
func ParseConfig(size, blockSize, associativity int, policyName string) (Config, error) {
	kind, err := replacement.ParseKind(policyName)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidPolicy, policyName)
	}

	c := Config{
		Size:          size,
		BlockSize:     blockSize,
		Associativity: associativity,
		Policy:        kind,
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Package config loads and saves the simulator configuration.
//
// A configuration starts from DefaultConfig, may be replaced by a JSON file
// and is then overlaid with CACHESIM_* environment variables. LoadEnv reads
// those variables from .env files first.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
	"github.com/sarchlab/cachesim/replacement"
	"github.com/sarchlab/cachesim/simulator"
)

// Environment variables read by ApplyEnv.
const (
	EnvSize          = "CACHESIM_SIZE"
	EnvBlockSize     = "CACHESIM_BLOCK_SIZE"
	EnvAssociativity = "CACHESIM_ASSOCIATIVITY"
	EnvPolicy        = "CACHESIM_POLICY"
	EnvWritePolicy   = "CACHESIM_WRITE_POLICY"
	EnvMissPolicy    = "CACHESIM_MISS_POLICY"
	EnvSeed          = "CACHESIM_SEED"
)

// Config is everything needed to build a simulator and drive writes.
type Config struct {
	// Size is the cache capacity in bytes. Default: 1024.
	Size int `json:"size"`

	// BlockSize is the cache line size in bytes. Default: 32.
	BlockSize int `json:"block_size"`

	// Associativity is the number of ways per set. Default: 4.
	Associativity int `json:"associativity"`

	// Policy is the replacement policy. Default: FIFO.
	Policy replacement.Kind `json:"policy"`

	// WritePolicy applies to writes that do not name one.
	// Default: WRITE_BACK.
	WritePolicy simulator.WritePolicy `json:"write_policy"`

	// MissPolicy applies to writes that do not name one.
	// Default: WRITE_ALLOCATE.
	MissPolicy simulator.WriteMissPolicy `json:"miss_policy"`

	// Seed drives the main memory fill and random replacement.
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the configuration the simulator boots with.
func DefaultConfig() *Config {
	c := cache.DefaultConfig()

	return &Config{
		Size:          c.Size,
		BlockSize:     c.BlockSize,
		Associativity: c.Associativity,
		Policy:        c.Policy,
		WritePolicy:   simulator.WriteBack,
		MissPolicy:    simulator.WriteAllocate,
		Seed:          memory.DefaultSeed,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse cache config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}

// Validate checks the cache geometry and policy. Errors wrap
// cache.ErrConfiguration.
func (c *Config) Validate() error {
	return c.Cache().Validate()
}

// Cache returns the cache part of the configuration.
func (c *Config) Cache() cache.Config {
	return cache.Config{
		Size:          c.Size,
		BlockSize:     c.BlockSize,
		Associativity: c.Associativity,
		Policy:        c.Policy,
	}
}

// Builder returns a simulator builder set up from the configuration.
func (c *Config) Builder() simulator.Builder {
	return simulator.MakeBuilder().
		WithConfig(c.Cache()).
		WithSeed(c.Seed)
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// LoadEnv reads .env style files into the process environment. Variables
// that are already set win. With no files it reads ./.env and ignores its
// absence.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil {
		return nil
	}

	if len(files) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to load environment file: %w", err)
}

// ApplyEnv overrides fields with the CACHESIM_* variables that are set.
// Nothing is changed if any of them is malformed.
func (c *Config) ApplyEnv() error {
	next := *c

	ints := []struct {
		key   string
		field *int
	}{
		{EnvSize, &next.Size},
		{EnvBlockSize, &next.BlockSize},
		{EnvAssociativity, &next.Associativity},
	}

	for _, e := range ints {
		v, ok := os.LookupEnv(e.key)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}

		*e.field = n
	}

	if v, ok := os.LookupEnv(EnvPolicy); ok {
		if err := next.Policy.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvPolicy, err)
		}
	}

	if v, ok := os.LookupEnv(EnvWritePolicy); ok {
		if err := next.WritePolicy.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvWritePolicy, err)
		}
	}

	if v, ok := os.LookupEnv(EnvMissPolicy); ok {
		if err := next.MissPolicy.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvMissPolicy, err)
		}
	}

	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}

		next.Seed = seed
	}

	*c = next

	return nil
}

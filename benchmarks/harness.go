// Package benchmarks provides synthetic workloads and a harness that runs
// them against cache configurations.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/trace"
)

// BenchmarkResult holds the results for a single workload run.
type BenchmarkResult struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload measures
	Description string `json:"description"`

	// Config is the cache the workload ran against
	Config cache.Config `json:"config"`

	// Accesses is the number of reads and writes issued
	Accesses uint64 `json:"accesses"`

	Reads  uint64 `json:"reads"`
	Writes uint64 `json:"writes"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`

	HitRate  float64 `json:"hit_rate"`
	MissRate float64 `json:"miss_rate"`

	// Evictions counts dirty blocks written back on replacement
	Evictions uint64 `json:"evictions"`

	// Writebacks counts every block written back, including the final flush
	Writebacks uint64 `json:"writebacks"`

	// FlushedBlocks is the number of dirty blocks left at the end
	FlushedBlocks int `json:"flushed_blocks"`

	// WallTime is the actual time taken to run the workload
	WallTime time.Duration `json:"wall_time_ns"`
}

// Workload defines a single synthetic access pattern.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload measures
	Description string

	// Generate produces the accesses for the given cache. rng is seeded
	// from the harness so runs are reproducible.
	Generate func(c cache.Config, rng *rand.Rand) []trace.Access
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Configs are the caches every workload runs against
	Configs []cache.Config

	// WritePolicy and MissPolicy apply to writes that do not name their own
	WritePolicy simulator.WritePolicy
	MissPolicy  simulator.WriteMissPolicy

	// Seed drives memory contents, random replacement and random workloads
	Seed uint64

	// Hooks are attached to every simulator the harness builds
	Hooks []sim.Hook

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Configs:     []cache.Config{cache.DefaultConfig()},
		WritePolicy: simulator.WriteBack,
		MissPolicy:  simulator.WriteAllocate,
		Seed:        memory.DefaultSeed,
		Output:      os.Stdout,
		Verbose:     false,
	}
}

// Harness runs workloads and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll executes every workload against every configuration and returns
// the results, configuration-major.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.workloads)*len(h.config.Configs))

	for _, c := range h.config.Configs {
		for _, w := range h.workloads {
			result, err := h.runWorkload(c, w)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", w.Name, err)
			}
			results = append(results, result)
		}
	}

	return results, nil
}

// runWorkload executes a single workload on a fresh simulator.
func (h *Harness) runWorkload(c cache.Config, w Workload) (BenchmarkResult, error) {
	builder := simulator.MakeBuilder().
		WithConfig(c).
		WithSeed(h.config.Seed)
	for _, hook := range h.config.Hooks {
		builder = builder.WithHook(hook)
	}

	s, err := builder.Build()
	if err != nil {
		return BenchmarkResult{}, err
	}

	rng := rand.New(rand.NewPCG(h.config.Seed, uint64(len(w.Name))))
	accesses := w.Generate(c, rng)

	replayer := trace.Replayer{
		WritePolicy: h.config.WritePolicy,
		MissPolicy:  h.config.MissPolicy,
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "running %s on %dB/%dB/%d-way %s (%d accesses)\n",
			w.Name, c.Size, c.BlockSize, c.Associativity, c.Policy, len(accesses))
	}

	// Run workload and measure time
	start := time.Now()
	replayer.Replay(s, accesses)
	flushed := s.Flush()
	wallTime := time.Since(start)

	stats := s.Stats()

	return BenchmarkResult{
		Name:          w.Name,
		Description:   w.Description,
		Config:        c,
		Accesses:      stats.Accesses(),
		Reads:         stats.Reads,
		Writes:        stats.Writes,
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		HitRate:       stats.HitRate(),
		MissRate:      stats.MissRate(),
		Evictions:     stats.Evictions,
		Writebacks:    stats.Writebacks,
		FlushedBlocks: flushed,
		WallTime:      wallTime,
	}, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Cache Workload Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Workload: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Cache: %dB, %dB blocks, %d ways, %s\n",
			r.Config.Size, r.Config.BlockSize, r.Config.Associativity, r.Config.Policy)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Accesses ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Reads:      %d\n", r.Reads)
		_, _ = fmt.Fprintf(h.config.Output, "  Writes:     %d\n", r.Writes)
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:       %d\n", r.Hits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:     %d\n", r.Misses)
		_, _ = fmt.Fprintf(h.config.Output, "  Hit Rate:   %.2f%%\n", 100*r.HitRate)

		if r.Writebacks > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Write-back ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Evictions:  %d\n", r.Evictions)
			_, _ = fmt.Fprintf(h.config.Output, "  Flushed:    %d\n", r.FlushedBlocks)
			_, _ = fmt.Fprintf(h.config.Output, "  Writebacks: %d\n", r.Writebacks)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,size,block_size,associativity,policy,reads,writes,hits,misses,hit_rate,evictions,writebacks")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%s,%d,%d,%d,%d,%.4f,%d,%d\n",
			r.Name,
			r.Config.Size,
			r.Config.BlockSize,
			r.Config.Associativity,
			r.Config.Policy,
			r.Reads,
			r.Writes,
			r.Hits,
			r.Misses,
			r.HitRate,
			r.Evictions,
			r.Writebacks,
		)
	}
}

// PrintJSON outputs benchmark results as an indented JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

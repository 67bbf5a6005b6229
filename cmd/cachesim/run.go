package main

import (
	"encoding/json"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/trace"
	"github.com/sarchlab/cachesim/tracing"
)

// runReport is the JSON form of the run summary.
type runReport struct {
	Trace         string           `json:"trace"`
	Config        *config.Config   `json:"config"`
	Stats         cache.Statistics `json:"stats"`
	HitRate       float64          `json:"hit_rate"`
	FlushedBlocks int              `json:"flushed_blocks"`
	ValidBlocks   int              `json:"valid_blocks"`
	DirtyBlocks   int              `json:"dirty_blocks"`
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <trace>",
		Short: "Replay a trace file through the cache.",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrace,
	}

	runCmd.Flags().Bool("flush", false, "Flush dirty blocks after the trace")
	runCmd.Flags().String("csv", "", "Record every access into this CSV file (without suffix)")
	runCmd.Flags().String("sqlite", "", "Record every access into this SQLite database (without suffix)")
	runCmd.Flags().Bool("json", false, "Print the report as JSON")
	runCmd.Flags().BoolP("verbose", "v", false, "Log every access to stderr")

	return runCmd
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	accesses, err := trace.ParseFile(args[0])
	if err != nil {
		return err
	}

	builder := cfg.Builder()

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		builder = builder.WithHook(tracing.NewLogTracer(log.New(cmd.ErrOrStderr(), "", 0)))
	}

	var closers []func() error

	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		recorder := tracing.NewCSVRecorder(path)
		if err := recorder.Init(); err != nil {
			return err
		}
		builder = builder.WithHook(recorder)
		closers = append(closers, recorder.Close)
	}

	if path, _ := cmd.Flags().GetString("sqlite"); path != "" {
		recorder := tracing.NewSQLiteRecorder(path)
		if err := recorder.Init(); err != nil {
			return err
		}
		builder = builder.WithHook(recorder)
		closers = append(closers, recorder.Close)
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	replayer := trace.Replayer{
		WritePolicy: cfg.WritePolicy,
		MissPolicy:  cfg.MissPolicy,
	}
	replayer.Replay(s, accesses)

	report := runReport{
		Trace:  args[0],
		Config: cfg,
	}

	if flush, _ := cmd.Flags().GetBool("flush"); flush {
		report.FlushedBlocks = s.Flush()
	}

	for _, closeRecorder := range closers {
		if err := closeRecorder(); err != nil {
			return err
		}
	}

	state := s.State()
	report.Stats = s.Stats()
	report.HitRate = report.Stats.HitRate()
	report.ValidBlocks = state.ValidBlocks()
	report.DirtyBlocks = state.DirtyBlocks()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printRunReport(cmd, report)

	return nil
}

func printRunReport(cmd *cobra.Command, r runReport) {
	printf(cmd, "Trace: %s\n", r.Trace)
	printf(cmd, "Cache: %dB, %dB blocks, %d ways, %d sets, %s\n",
		r.Config.Size, r.Config.BlockSize, r.Config.Associativity,
		r.Config.Cache().NumSets(), r.Config.Policy)
	printf(cmd, "Write policy: %s, %s\n", r.Config.WritePolicy, r.Config.MissPolicy)
	printf(cmd, "\n")
	printf(cmd, "Reads:      %d\n", r.Stats.Reads)
	printf(cmd, "Writes:     %d\n", r.Stats.Writes)
	printf(cmd, "Hits:       %d\n", r.Stats.Hits)
	printf(cmd, "Misses:     %d\n", r.Stats.Misses)
	printf(cmd, "Hit Rate:   %.2f%%\n", 100*r.HitRate)
	printf(cmd, "Evictions:  %d\n", r.Stats.Evictions)
	printf(cmd, "Writebacks: %d\n", r.Stats.Writebacks)
	if r.FlushedBlocks > 0 {
		printf(cmd, "Flushed:    %d\n", r.FlushedBlocks)
	}
	printf(cmd, "Resident:   %d valid, %d dirty\n", r.ValidBlocks, r.DirtyBlocks)
}

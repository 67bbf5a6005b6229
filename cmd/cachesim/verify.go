package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/oracle"
	"github.com/sarchlab/cachesim/replacement"
	"github.com/sarchlab/cachesim/trace"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <trace>",
		Short: "Check LRU hits, misses and evictions against the reference model.",
		Args:  cobra.ExactArgs(1),
		RunE:  verifyTrace,
	}
}

func verifyTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Policy != replacement.LRU {
		warnf(cmd, "verify models LRU only, replacing %s\n", cfg.Policy)
		cfg.Policy = replacement.LRU
	}

	accesses, err := trace.ParseFile(args[0])
	if err != nil {
		return err
	}

	s, err := cfg.Builder().Build()
	if err != nil {
		return err
	}

	replayer := trace.Replayer{
		WritePolicy: cfg.WritePolicy,
		MissPolicy:  cfg.MissPolicy,
	}

	if err := oracle.Verify(s, accesses, replayer); err != nil {
		return err
	}

	stats := s.Stats()
	printf(cmd, "OK: %d accesses agree (%d hits, %d misses, %d evictions)\n",
		len(accesses), stats.Hits, stats.Misses, stats.Evictions)

	return nil
}

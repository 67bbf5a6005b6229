package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/config"
)

// Execute runs the command line and exits through atexit so recorders can
// flush.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cachesim",
		Short: "cachesim simulates a set-associative CPU cache.",
		Long: `cachesim simulates a set-associative CPU cache in front of a ` +
			`byte-addressable main memory. It replays access traces, checks ` +
			`LRU behaviour against a reference model and runs synthetic ` +
			`workloads.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a cache configuration JSON file")
	flags.StringSlice("env", nil, "Environment files to load (default: ./.env if present)")
	flags.Int("size", 0, "Cache size in bytes")
	flags.Int("block", 0, "Block size in bytes")
	flags.Int("ways", 0, "Associativity")
	flags.String("policy", "", "Replacement policy: LRU, FIFO or RANDOM")
	flags.String("write-policy", "", "Default write policy: WRITE_BACK or WRITE_THROUGH")
	flags.String("miss-policy", "", "Default write miss policy: WRITE_ALLOCATE or NO_WRITE_ALLOCATE")
	flags.Uint64("seed", 0, "Seed for memory contents and random replacement")
	addProfileFlags(rootCmd)

	rootCmd.AddCommand(
		newRunCmd(),
		newVerifyCmd(),
		newBenchCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// loadConfig builds the effective configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	envFiles, _ := flags.GetStringSlice("env")
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()

	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("size") {
		cfg.Size, _ = flags.GetInt("size")
	}

	if flags.Changed("block") {
		cfg.BlockSize, _ = flags.GetInt("block")
	}

	if flags.Changed("ways") {
		cfg.Associativity, _ = flags.GetInt("ways")
	}

	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}

	if flags.Changed("policy") {
		name, _ := flags.GetString("policy")
		if err := cfg.Policy.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("--policy: %w", err)
		}
	}

	if flags.Changed("write-policy") {
		name, _ := flags.GetString("write-policy")
		if err := cfg.WritePolicy.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("--write-policy: %w", err)
		}
	}

	if flags.Changed("miss-policy") {
		name, _ := flags.GetString("miss-policy")
		if err := cfg.MissPolicy.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("--miss-policy: %w", err)
		}
	}

	return nil
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func warnf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

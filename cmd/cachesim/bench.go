package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/benchmarks"
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replacement"
)

func newBenchCmd() *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the synthetic workloads against the configured cache.",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}

	benchCmd.Flags().Bool("json", false, "Output results as JSON")
	benchCmd.Flags().Bool("csv", false, "Output results in CSV format")
	benchCmd.Flags().Bool("core", false, "Run only the core workloads")
	benchCmd.Flags().Bool("all-policies", false, "Run every workload under each replacement policy")

	return benchCmd
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	harnessConfig := benchmarks.DefaultConfig()
	harnessConfig.Configs = []cache.Config{cfg.Cache()}
	harnessConfig.WritePolicy = cfg.WritePolicy
	harnessConfig.MissPolicy = cfg.MissPolicy
	harnessConfig.Seed = cfg.Seed
	harnessConfig.Output = cmd.OutOrStdout()

	if all, _ := cmd.Flags().GetBool("all-policies"); all {
		harnessConfig.Configs = nil
		for _, kind := range replacement.Kinds() {
			c := cfg.Cache()
			c.Policy = kind
			harnessConfig.Configs = append(harnessConfig.Configs, c)
		}
	}

	harness := benchmarks.NewHarness(harnessConfig)
	if core, _ := cmd.Flags().GetBool("core"); core {
		harness.AddWorkloads(benchmarks.GetCoreWorkloads())
	} else {
		harness.AddWorkloads(benchmarks.GetWorkloads())
	}

	results, err := harness.RunAll()
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	asCSV, _ := cmd.Flags().GetBool("csv")

	switch {
	case asJSON:
		return harness.PrintJSON(results)
	case asCSV:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	return nil
}

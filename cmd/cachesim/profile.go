package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

// profiler writes CPU and heap profiles around a command.
type profiler struct {
	cpuFile *os.File
}

func addProfileFlags(rootCmd *cobra.Command) {
	p := &profiler{}

	rootCmd.PersistentFlags().String("cpuprofile", "", "Write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "Write a heap profile to this file")
	rootCmd.PersistentPreRunE = p.start
	rootCmd.PersistentPostRunE = p.stop
}

func (p *profiler) start(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("cpuprofile")
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}

	p.cpuFile = f

	return nil
}

func (p *profiler) stop(cmd *cobra.Command, _ []string) error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = p.cpuFile.Close()
		p.cpuFile = nil
	}

	path, _ := cmd.Flags().GetString("memprofile")
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	return nil
}

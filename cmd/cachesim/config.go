package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective cache configuration as JSON.",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	}

	configCmd.Flags().String("save", "", "Also write the configuration to this file")

	return configCmd
}

func showConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := cfg.SaveConfig(path); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(cfg)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sveltefmt/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [flags] [path]",
	Short: "Print the resolved options for a file or directory as TOML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().String("config", "", "use this config file instead of searching for one")
	addOptionFlags(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	overrides, err := readOverrides(cmd)
	if err != nil {
		return err
	}
	resolver := &config.Resolver{Explicit: explicit, Overrides: overrides}
	cfg, err := resolver.Resolve(target)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := cfg.TOML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

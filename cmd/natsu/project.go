package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"natsu/internal/config"
)

// loadProjectConfig returns the natsu.toml named by --config, or the one
// found by walking up from the working directory. It returns nil when
// neither exists.
func loadProjectConfig(cmd *cobra.Command) (*config.File, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	f, ok, err := config.Discover(wd)
	if err != nil || !ok {
		return nil, err
	}
	return f, nil
}

// references merges config references with --ref values; flags come last
// so they see every configured module first.
func references(cmd *cobra.Command, cfg *config.File) ([]string, error) {
	refs, err := cmd.Flags().GetStringSlice("ref")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return refs, nil
	}
	return append(cfg.ReferencePaths(), refs...), nil
}

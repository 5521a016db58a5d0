package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"natsu/internal/buildpipeline"
	"natsu/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [output-dir]",
	Short: "Drop the output cache",
	Long:  "Remove the cache entries that let translate skip unchanged modules. Generated sources are kept.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().String("config", "", "path to natsu.toml (default: search upwards)")
}

func runClean(cmd *cobra.Command, args []string) error {
	outDir := "."
	if len(args) > 0 && args[0] != "" {
		outDir = args[0]
	} else {
		cfg, err := loadProjectConfig(cmd)
		if err != nil {
			return err
		}
		if cfg != nil && cfg.OutputDir() != "" {
			outDir = cfg.OutputDir()
		}
	}
	cacheDir := filepath.Join(outDir, buildpipeline.CacheDirName)
	info, err := os.Stat(cacheDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no output cache found")
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", cacheDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", cacheDir)
	}
	cache, err := driver.OpenOutputCache(cacheDir)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cacheDir)
	return nil
}

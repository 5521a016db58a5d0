package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"natsu/internal/buildpipeline"
)

var graphCmd = &cobra.Command{
	Use:   "graph <image>",
	Short: "Print the declaration order of a module's types",
	Long: `Print the batches in which a module's types are declared and the
types each one uses from other modules.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringSlice("ref", nil, "referenced module images (repeatable)")
	graphCmd.Flags().String("config", "", "path to natsu.toml (default: search upwards)")
	graphCmd.Flags().IntP("jobs", "j", 0, "parallel image loads (0 = GOMAXPROCS)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	refs, err := references(cmd, cfg)
	if err != nil {
		return err
	}
	if cfg != nil {
		// configured input modules can be referenced by the graphed one
		refs = append(cfg.ModulePaths(), refs...)
	}
	refs = withoutPath(refs, args[0])
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := buildpipeline.Graph(ctx, args[0], refs, jobs)
	if err != nil {
		return err
	}
	return report.Print(cmd.OutOrStdout())
}

func withoutPath(paths []string, drop string) []string {
	abs := func(p string) string {
		if a, err := filepath.Abs(p); err == nil {
			return a
		}
		return filepath.Clean(p)
	}
	target := abs(drop)
	out := paths[:0:0]
	for _, p := range paths {
		if abs(p) != target {
			out = append(out, p)
		}
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"natsu/internal/buildpipeline"
	"natsu/internal/config"
	"natsu/internal/diag"
	"natsu/internal/layout"
	"natsu/internal/version"
)

var translateCmd = &cobra.Command{
	Use:   "translate [images...]",
	Short: "Translate module images into C++",
	Long: `Translate module images into <Module>.h/<Module>.cpp pairs.
Images are translated in the order given; without arguments the modules
listed in natsu.toml are used.`,
	RunE: runTranslate,
}

func init() {
	addTranslateFlags(translateCmd)
}

func addTranslateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "output directory (default: natsu.toml output or .)")
	cmd.Flags().StringSlice("ref", nil, "reference-only module images (repeatable)")
	cmd.Flags().String("config", "", "path to natsu.toml (default: search upwards)")
	cmd.Flags().IntP("jobs", "j", 0, "parallel image loads (0 = GOMAXPROCS)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the output cache")
	cmd.Flags().Int("pointer-size", 0, "target pointer size in bytes (4|8)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	req, err := buildTranslateRequest(cmd, args)
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readSwitch("ui", uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var res buildpipeline.TranslateResult
	if !quiet && mode.enabled(os.Stdout) {
		res, err = runTranslateWithUI(ctx, "translating", req)
	} else {
		res, err = buildpipeline.Translate(ctx, req)
	}
	out := cmd.OutOrStdout()
	if !quiet {
		printModuleResults(out, res.Modules)
	}
	if showTimings {
		printStageTimings(out, res.Timings)
		if res.Timer != nil {
			_, _ = fmt.Fprint(out, res.Timer.Summary())
		}
	}
	return err
}

// buildTranslateRequest merges natsu.toml with the command line; flags win.
func buildTranslateRequest(cmd *cobra.Command, args []string) (*buildpipeline.TranslateRequest, error) {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	req := &buildpipeline.TranslateRequest{
		Inputs:     args,
		OutputDir:  ".",
		Translator: version.Translator(),
	}
	pointerSize := 0
	if cfg != nil {
		if len(req.Inputs) == 0 {
			req.Inputs = cfg.ModulePaths()
		}
		if dir := cfg.OutputDir(); dir != "" {
			req.OutputDir = dir
		}
		req.Jobs = cfg.Translate.Jobs
		pointerSize = cfg.Target.PointerSize
	}
	if len(req.Inputs) == 0 {
		return nil, diag.Errorf(diag.CfgNoModules, diag.Location{}, "no module images given; pass paths or set translate.modules in %s", config.FileName)
	}
	if req.References, err = references(cmd, cfg); err != nil {
		return nil, err
	}

	if flags.Changed("out") {
		if req.OutputDir, err = flags.GetString("out"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("jobs") {
		if req.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("pointer-size") {
		if pointerSize, err = flags.GetInt("pointer-size"); err != nil {
			return nil, err
		}
	}
	if req.NoCache, err = flags.GetBool("no-cache"); err != nil {
		return nil, err
	}
	if req.Target, err = layout.TargetForPointerSize(pointerSize); err != nil {
		return nil, err
	}
	req.Files = displayNames(req.Inputs)
	return req, nil
}

// displayNames shortens image paths for the progress view, keeping the
// full path only where base names collide.
func displayNames(paths []string) []string {
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		counts[filepath.Base(p)]++
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		if counts[filepath.Base(p)] == 1 {
			names[i] = filepath.Base(p)
		} else {
			names[i] = p
		}
	}
	return names
}

func printModuleResults(out io.Writer, modules []buildpipeline.ModuleResult) {
	if out == nil {
		out = os.Stdout
	}
	for _, m := range modules {
		if m.Cached {
			_, _ = fmt.Fprintf(out, "%s: up to date\n", m.Module)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s: %s, %s (%d types, %d methods, %d strings)\n",
			m.Module, m.HeaderPath, m.SourcePath, m.Types, m.Methods, m.Strings)
	}
}

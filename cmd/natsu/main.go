// Package main implements the natsu CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"natsu/internal/driver"
	"natsu/internal/prof"
	"natsu/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "natsu",
	Short: "Ahead-of-time translator from CLR module images to C++",
	Long: `natsu translates compiled module images into C++ header/source pairs
that build against the natsu runtime.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupRoot,
}

var profSession *prof.Session

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().String("log", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file")

	err := rootCmd.Execute()
	if stopErr := profSession.Stop(); stopErr != nil {
		fmt.Fprintf(os.Stderr, "profiling: %v\n", stopErr)
	}
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// setupRoot applies the persistent flags before any command runs.
func setupRoot(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	colorValue, err := flags.GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(colorValue); err != nil {
		return err
	}

	verbosity, err := flags.GetCount("verbose")
	if err != nil {
		return err
	}
	logPath, err := flags.GetString("log")
	if err != nil {
		return err
	}
	driver.ConfigureLogging(verbosity, logPath)

	cpuProfile, err := flags.GetString("cpu-profile")
	if err != nil {
		return err
	}
	memProfile, err := flags.GetString("mem-profile")
	if err != nil {
		return err
	}
	profSession, err = prof.Start(cpuProfile, memProfile)
	return err
}

func applyColorMode(value string) error {
	mode, err := readSwitch("color", value)
	if err != nil {
		return err
	}
	color.NoColor = !mode.enabled(os.Stdout) || (mode == modeAuto && os.Getenv("NO_COLOR") != "")
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sveltefmt/internal/diagfmt"
	"sveltefmt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sveltefmt",
	Short: "Formatter for Svelte components",
	Long:  `sveltefmt rewrites .svelte files into one canonical layout`,
	// ошибки печатает main
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		on, err := colorEnabled(mode)
		if err != nil {
			return err
		}
		color.NoColor = !on
		if _, err := diagfmt.ParsePathMode(persistentString(cmd, "paths")); err != nil {
			return err
		}
		return startProfiling(cmd)
	},
}

// main registers subcommands and persistent flags and runs the root command.
// Exit status is 1 on any error.
func main() {
	rootCmd.Version = version.Read().String()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("paths", "auto", "file names in diagnostics (auto|absolute|relative|basename)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("exec-trace", "", "write a Go runtime execution trace to this file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stopProfiling()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func persistentString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Root().PersistentFlags().GetString(name)
	return v
}

// diagPaths is the --paths value, validated before any command runs.
func diagPaths(cmd *cobra.Command) diagfmt.PathMode {
	m, _ := diagfmt.ParsePathMode(persistentString(cmd, "paths"))
	return m
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

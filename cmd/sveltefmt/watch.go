package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sveltefmt/internal/diagfmt"
	"sveltefmt/internal/driver"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <path> [path...]",
	Short: "Reformat components whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", driver.DefaultDebounce, "wait this long for changes to settle")
	watchCmd.Flags().Bool("initial", true, "format every file once on start")
	addFormatFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	initial, err := cmd.Flags().GetBool("initial")
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, driver.ModeWrite)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	if !quiet {
		fmt.Fprintf(errOut, "watching %d path(s), press Ctrl+C to stop\n", len(args))
	}
	onReport := func(rep *driver.Report) {
		for _, res := range rep.Results {
			if res.Err == nil && res.Changed && !quiet {
				fmt.Fprintf(out, "reformatted %s\n", res.Path)
			}
		}
		if rep.Failed() > 0 {
			if err := diagfmt.Pretty(errOut, rep.Diagnostics(maxDiagnostics), rep.Files, diagfmt.PrettyOpts{
				Color:     !color.NoColor,
				Paths:     diagPaths(cmd),
				ShowNotes: true,
			}); err != nil {
				fmt.Fprintf(errOut, "watch: %v\n", err)
			}
		}
		if opts.Timer != nil {
			fmt.Fprint(errOut, opts.Timer.Summary())
			opts.Timer.Reset()
		}
		if !quiet {
			fmt.Fprintf(errOut, "%d file(s), %d changed, %d failed\n",
				len(rep.Results), rep.Changed(), rep.Failed())
		}
	}

	err = driver.Watch(cmd.Context(), args, driver.WatchOptions{
		Options:  opts,
		Debounce: debounce,
		Initial:  initial,
	}, onReport)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sveltefmt/internal/prof"
)

var profSession *prof.Session

func startProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opt prof.Options
	var err error
	if opt.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return err
	}
	if opt.Mem, err = flags.GetString("memprofile"); err != nil {
		return err
	}
	if opt.Trace, err = flags.GetString("exec-trace"); err != nil {
		return err
	}
	if opt == (prof.Options{}) {
		return nil
	}
	profSession, err = prof.Start(opt)
	if err != nil {
		return fmt.Errorf("profiling: %w", err)
	}
	return nil
}

func stopProfiling() {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
	}
	profSession = nil
}

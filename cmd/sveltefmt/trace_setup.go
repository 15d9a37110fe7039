package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sveltefmt/internal/trace"
)

// traceConfig reads --trace, --trace-level and --trace-format.
func traceConfig(cmd *cobra.Command) (trace.Config, error) {
	flags := cmd.Root().PersistentFlags()
	var cfg trace.Config
	output, err := flags.GetString("trace")
	if err != nil {
		return cfg, err
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return cfg, err
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return cfg, err
	}
	if cfg.Level, err = trace.ParseLevel(levelStr); err != nil {
		return cfg, fmt.Errorf("invalid trace level: %w", err)
	}
	if cfg.Format, err = trace.ParseFormat(formatStr); err != nil {
		return cfg, err
	}
	// --trace без уровня включает фазы
	if cfg.Level == trace.LevelOff && output != "" {
		cfg.Level = trace.LevelPhase
	}
	cfg.OutputPath = output
	return cfg, nil
}

// setupTracing attaches the configured tracer to the command context. The
// returned cleanup flushes it and closes the trace file.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := traceConfig(cmd)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, err
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"sveltefmt/internal/driver"
	"sveltefmt/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Serve formatting to editors over LSP on stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 0, "delay before diagnostics after an edit (0 = 300ms)")
	addFormatFlags(lspCmd)
}

func runLSP(cmd *cobra.Command, args []string) error {
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
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, driver.ModeStdout)
	if err != nil {
		return err
	}
	// stdout занят протоколом
	opts.Timer = nil

	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.ServerOptions{
		Debounce:       debounce,
		Format:         opts,
		MaxDiagnostics: maxDiagnostics,
		Log:            cmd.ErrOrStderr(),
	})
	err = server.Run(cmd.Context())
	if errors.Is(err, lsp.ErrExit) {
		return nil
	}
	return err
}

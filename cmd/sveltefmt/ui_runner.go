package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"sveltefmt/internal/driver"
	"sveltefmt/internal/ui"
)

var errInterrupted = errors.New("interrupted")

// runFormatWithUI formats files while a progress view follows the events.
// The view goes to stderr so formatted output on stdout stays clean.
// Ctrl+C in the view cancels the run.
func runFormatWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	opts.Progress = driver.ChannelSink{Ch: events, Done: ctx.Done()}

	var (
		g      errgroup.Group
		report *driver.Report
	)
	g.Go(func() error {
		defer close(events)
		var err error
		report, err = driver.FormatFiles(ctx, files, opts)
		return err
	})

	final, uiErr := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stderr)).Run()
	aborted := uiErr != nil || ui.Aborted(final)
	if aborted {
		cancel()
	}
	err := g.Wait()
	switch {
	case uiErr != nil:
		return report, uiErr
	case aborted:
		return report, errInterrupted
	}
	return report, err
}

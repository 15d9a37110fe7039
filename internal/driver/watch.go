package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"sveltefmt/internal/trace"
)

// DefaultDebounce is how long Watch waits for a burst of changes to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Options
	Debounce time.Duration
	// Initial formats every file once before waiting for changes.
	Initial bool
}

// Watch formats component files under paths whenever they change, until ctx
// is cancelled. onReport receives every batch.
func Watch(ctx context.Context, paths []string, opts WatchOptions, onReport func(*Report)) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	scope := watchScope{files: make(map[string]bool)}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := watchDirRecursive(w, p); err != nil {
				return err
			}
			scope.dirs = append(scope.dirs, absClean(p))
			continue
		}
		scope.files[absClean(p)] = true
		if err := w.Add(filepath.Dir(p)); err != nil {
			return err
		}
	}

	if opts.Initial {
		report, err := FormatPaths(ctx, paths, opts.Options)
		if err != nil {
			return err
		}
		onReport(report)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err := watchDirRecursive(w, event.Name); err != nil {
						trace.Error(ctx, trace.ScopeDriver, "watch.add", err)
					}
					continue
				}
			}
			if !scope.wanted(event.Name) {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			trace.Error(ctx, trace.ScopeDriver, "watch", err)

		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				// the file may be gone again by now
				if _, err := os.Stat(p); err == nil {
					batch = append(batch, p)
				}
			}
			clear(pending)
			if len(batch) == 0 {
				continue
			}
			sort.Strings(batch)
			trace.Point(ctx, trace.ScopeDriver, "watch.batch", strings.Join(batch, ","))
			report, err := FormatFiles(ctx, batch, opts.Options)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			onReport(report)
		}
	}
}

// watchScope is what the user asked to watch: whole directories and single
// files whose parent directory is watched as well.
type watchScope struct {
	dirs  []string
	files map[string]bool
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// wanted reports whether a changed path should be formatted.
func (s watchScope) wanted(path string) bool {
	path = absClean(path)
	if s.files[path] {
		return true
	}
	// editors write temporary dot files next to the target
	if !strings.EqualFold(filepath.Ext(path), Ext) || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	for _, dir := range s.dirs {
		if rel, err := filepath.Rel(dir, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watchDirRecursive adds a directory and its subdirectories to the watch list.
func watchDirRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

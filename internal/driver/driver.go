// Package driver formats many component files: it collects them, resolves
// per-file configuration, formats in parallel and writes or reports the
// results.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"sveltefmt/internal/config"
	"sveltefmt/internal/embedfmt"
	"sveltefmt/internal/format"
	"sveltefmt/internal/observ"
	"sveltefmt/internal/parser"
	"sveltefmt/internal/source"
	"sveltefmt/internal/trace"
)

// Mode selects what happens to formatted output.
type Mode uint8

const (
	// ModeCheck only reports which files would change.
	ModeCheck Mode = iota
	// ModeStdout returns the output for the caller to print.
	ModeStdout
	// ModeWrite rewrites changed files in place.
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeCheck:
		return "check"
	case ModeStdout:
		return "stdout"
	case ModeWrite:
		return "write"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Options configures a run.
type Options struct {
	Mode Mode
	Jobs int // <= 0 means GOMAXPROCS
	// Verify formats every output a second time and fails files that change.
	Verify bool

	Cache    *Cache           // optional
	Resolver *config.Resolver // nil resolves with defaults and search only
	// NewParser builds the parser for a file's config; nil runs the
	// configured parser program.
	NewParser func(config.Config) format.Parser
	Embed     format.EmbedFormatter // nil means embedfmt.New()
	Timer     *observ.Timer         // optional, shared by all files
	Progress  ProgressSink          // optional
}

func (o Options) withDefaults() Options {
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.Resolver == nil {
		o.Resolver = &config.Resolver{}
	}
	if o.NewParser == nil {
		o.NewParser = func(cfg config.Config) format.Parser {
			return &parser.Command{Program: cfg.Parser}
		}
	}
	if o.Embed == nil {
		o.Embed = embedfmt.New()
	}
	return o
}

// Result is the outcome for one file.
type Result struct {
	Path      string
	FileID    source.FileID
	Changed   bool
	Cached    bool
	Formatted []byte // nil on error
	Err       error
	Elapsed   time.Duration
}

// Report collects the results of a run in input order.
type Report struct {
	Files   *source.FileSet
	Results []Result
}

// Failed counts results with an error.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Changed counts files whose output differs from the input.
func (r *Report) Changed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil && res.Changed {
			n++
		}
	}
	return n
}

// FormatPaths collects component files under paths and formats them.
func FormatPaths(ctx context.Context, paths []string, opts Options) (*Report, error) {
	files, err := CollectFiles(paths)
	if err != nil {
		return nil, err
	}
	return FormatFiles(ctx, files, opts)
}

// FormatFiles formats the given files.
func FormatFiles(ctx context.Context, files []string, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	fileSet := source.NewFileSet()
	if wd, err := os.Getwd(); err == nil {
		fileSet.SetBaseDir(wd)
	}

	// Загружаем последовательно, чтобы FileID шли в порядке аргументов
	ids := make([]source.FileID, len(files))
	loadErrs := make([]error, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			id = fileSet.AddVirtual(path, nil)
			loadErrs[i] = &IOError{Op: "read", Path: path, Err: err}
		}
		ids[i] = id
		emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusQueued})
	}

	ctx, runSpan := trace.Start(ctx, trace.ScopeDriver, "fmt")
	runSpan.Set("files", fmt.Sprint(len(files))).Set("mode", opts.Mode.String())

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(opts.Jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErrs[i] != nil {
				results[i] = Result{Path: path, FileID: ids[i], Err: loadErrs[i]}
				emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusError, Err: loadErrs[i]})
				return nil
			}
			results[i] = formatOne(gctx, fileSet.Get(ids[i]), opts)
			return nil
		})
	}
	err := g.Wait()
	runSpan.End(err)
	if err != nil {
		return nil, err
	}
	return &Report{Files: fileSet, Results: results}, nil
}

// FormatSource formats content that does not come from a file on disk, such
// as stdin. name is used for config lookup and diagnostics.
func FormatSource(ctx context.Context, name string, content []byte, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	opts.Mode = ModeStdout
	fileSet := source.NewFileSet()
	normalized, _ := source.Normalize(content)
	id := fileSet.AddVirtual(name, normalized)
	res := formatOne(ctx, fileSet.Get(id), opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Report{Files: fileSet, Results: []Result{res}}, nil
}

func formatOne(ctx context.Context, sf *source.File, opts Options) Result {
	started := time.Now()
	res := Result{Path: sf.Path, FileID: sf.ID}

	ctx, sp := trace.Start(ctx, trace.ScopeFile, "file")
	sp.Set("path", sf.Path)

	fail := func(stage Stage, err error) Result {
		res.Err = err
		res.Formatted = nil
		res.Elapsed = time.Since(started)
		sp.End(err)
		emit(opts.Progress, Event{File: sf.Path, Stage: stage, Status: StatusError, Err: err, Elapsed: res.Elapsed})
		return res
	}

	emit(opts.Progress, Event{File: sf.Path, Stage: StageFormat, Status: StatusWorking})
	cfg, err := opts.Resolver.Resolve(sf.Path)
	if err != nil {
		return fail(StageFormat, err)
	}
	deps := format.Deps{Parser: opts.NewParser(cfg), Embed: opts.Embed, Timer: opts.Timer}

	key := Key(sf.Content, cfg.Fingerprint(), buildID())
	out, hit, err := opts.Cache.Get(key)
	if err != nil {
		trace.Error(ctx, trace.ScopeFile, "cache.get", err)
		hit = false
	}
	if hit {
		res.Cached = true
	} else {
		out, err = format.FormatFile(ctx, sf, deps, cfg.Format)
		if err != nil {
			return fail(StageFormat, err)
		}
		if opts.Verify {
			emit(opts.Progress, Event{File: sf.Path, Stage: StageVerify, Status: StatusWorking})
			if err := format.CheckIdempotent(ctx, out, deps, cfg.Format); err != nil {
				return fail(StageVerify, &format.SourceError{Span: source.SpanOf(sf.ID, 0, 0), Err: err})
			}
		}
		if err := opts.Cache.Put(key, out); err != nil {
			trace.Error(ctx, trace.ScopeFile, "cache.put", err)
		}
	}

	res.Formatted = out
	// BOM and CRLF were stripped on load, so such files change even when
	// the normalized text is already canonical
	res.Changed = !bytes.Equal(out, sf.Content) || sf.Flags&(source.HadBOM|source.HadCRLF) != 0
	if opts.Mode == ModeWrite && res.Changed && sf.Flags&source.Virtual == 0 {
		emit(opts.Progress, Event{File: sf.Path, Stage: StageWrite, Status: StatusWorking})
		if err := writeFile(sf.Path, out); err != nil {
			return fail(StageWrite, &IOError{Op: "write", Path: sf.Path, Err: err})
		}
	}

	res.Elapsed = time.Since(started)
	status := StatusDone
	if res.Cached {
		status = StatusCached
	}
	sp.Set("changed", fmt.Sprint(res.Changed)).End(nil)
	emit(opts.Progress, Event{File: sf.Path, Stage: StageFormat, Status: status, Elapsed: res.Elapsed})
	return res
}

// writeFile replaces path atomically, keeping its permissions.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".sveltefmt-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, mode); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

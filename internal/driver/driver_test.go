package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/config"
	"sveltefmt/internal/diag"
	"sveltefmt/internal/format"
	"sveltefmt/internal/parser"
)

// wordsParser treats the whole text as one text node, so formatting
// collapses whitespace. "<<" is a parse error.
type wordsParser struct {
	calls atomic.Int32
	// suffix is appended to every text after the first call
	suffix string
}

func (p *wordsParser) Parse(_ context.Context, text string) (*ast.Root, error) {
	n := p.calls.Add(1)
	if i := strings.Index(text, "<<"); i >= 0 {
		return nil, &parser.Error{Message: "unexpected <", Start: i, End: i + 2}
	}
	if n > 1 {
		text += p.suffix
	}
	return &ast.Root{HTML: &ast.Fragment{Children: []ast.Node{
		&ast.Text{Pos: ast.Pos{End: len(text)}, Raw: text, Data: text},
	}}}, nil
}

func (p *wordsParser) options(mode Mode) Options {
	return Options{
		Mode:      mode,
		Jobs:      2,
		NewParser: func(config.Config) format.Parser { return p },
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"a.svelte", "b/c.svelte", "b/d.txt",
		"node_modules/lib/x.svelte", ".git/y.svelte", "b/.cache/z.svelte",
	} {
		writeTestFile(t, filepath.Join(root, name), "")
	}
	explicit := filepath.Join(root, "b", "d.txt")

	got, err := CollectFiles([]string{root, explicit, filepath.Join(root, "a.svelte")})
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.svelte"),
		filepath.Join(root, "b", "c.svelte"),
		explicit,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CollectFiles mismatch (-want +got):\n%s", diff)
	}

	if _, err := CollectFiles([]string{filepath.Join(root, "missing")}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestFormatModes(t *testing.T) {
	tests := []struct {
		mode      Mode
		wantDisk  string
		wantCount int
	}{
		{ModeCheck, "hello   world", 1},
		{ModeStdout, "hello   world", 1},
		{ModeWrite, "hello world\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			root := t.TempDir()
			messy := filepath.Join(root, "Messy.svelte")
			clean := filepath.Join(root, "Clean.svelte")
			writeTestFile(t, messy, "hello   world")
			writeTestFile(t, clean, "ok\n")

			p := &wordsParser{}
			report, err := FormatPaths(context.Background(), []string{root}, p.options(tt.mode))
			if err != nil {
				t.Fatalf("FormatPaths: %v", err)
			}
			if report.Failed() != 0 {
				t.Fatalf("unexpected failures: %+v", report.Results)
			}
			if report.Changed() != tt.wantCount {
				t.Fatalf("Changed = %d, want %d", report.Changed(), tt.wantCount)
			}
			// results follow sorted input order
			if report.Results[0].Path != clean || report.Results[0].Changed {
				t.Fatalf("unexpected first result: %+v", report.Results[0])
			}
			if got := string(report.Results[1].Formatted); got != "hello world\n" {
				t.Fatalf("Formatted = %q", got)
			}
			if got := readFile(t, messy); got != tt.wantDisk {
				t.Fatalf("disk content:\nwant %q\ngot  %q", tt.wantDisk, got)
			}
		})
	}
}

func TestCRLFCountsAsChanged(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "A.svelte")
	writeTestFile(t, path, "ok\r\n")

	p := &wordsParser{}
	report, err := FormatFiles(context.Background(), []string{path}, p.options(ModeWrite))
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	if !report.Results[0].Changed {
		t.Fatal("CRLF file should be reported as changed")
	}
	if got := readFile(t, path); got != "ok\n" {
		t.Fatalf("disk content = %q", got)
	}
}

func TestParseErrorDiagnostic(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Bad.svelte")
	writeTestFile(t, path, "  x << y\n")

	p := &wordsParser{}
	report, err := FormatFiles(context.Background(), []string{path}, p.options(ModeCheck))
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	res := report.Results[0]
	var pe *parser.Error
	if !errors.As(res.Err, &pe) {
		t.Fatalf("expected *parser.Error, got %v", res.Err)
	}

	bag := report.Diagnostics(10)
	if bag.Len() != 1 {
		t.Fatalf("want 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.SynParseFailed {
		t.Fatalf("code = %v", d.Code)
	}
	if d.Primary.Start != 4 || d.Primary.End != 6 {
		t.Fatalf("span = %v, want 4-6", d.Primary)
	}
	got := diag.FormatShortDiagnostics(bag.Items(), report.Files, false)
	if want := ":1:5 parse error: unexpected <"; !strings.HasSuffix(got, want) {
		t.Fatalf("short diagnostics:\nwant suffix %q\ngot  %q", want, got)
	}
}

func TestMissingFileDiagnostic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Gone.svelte")
	p := &wordsParser{}
	report, err := FormatFiles(context.Background(), []string{path}, p.options(ModeCheck))
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	d, ok := report.Results[0].Diagnostic()
	if !ok || d.Code != diag.IOLoadFileError {
		t.Fatalf("unexpected diagnostic %+v (ok=%t)", d, ok)
	}
	if p.calls.Load() != 0 {
		t.Fatal("parser must not run for unreadable files")
	}
}

func TestFileIDsFollowArguments(t *testing.T) {
	root := t.TempDir()
	files := []string{
		filepath.Join(root, "b.svelte"),
		filepath.Join(root, "gone.svelte"),
		filepath.Join(root, "a.svelte"),
	}
	writeTestFile(t, files[0], "b")
	writeTestFile(t, files[2], "a")
	p := &wordsParser{}
	opts := p.options(ModeCheck)
	opts.Jobs = 3
	report, err := FormatFiles(context.Background(), files, opts)
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	for i, res := range report.Results {
		if res.Path != files[i] {
			t.Fatalf("Results[%d].Path = %q, want %q", i, res.Path, files[i])
		}
		if got := report.Files.Get(res.FileID).Path; got != files[i] {
			t.Fatalf("file %d: FileSet path %q, want %q", res.FileID, got, files[i])
		}
		if i > 0 && res.FileID <= report.Results[i-1].FileID {
			t.Fatalf("FileID %d does not follow %d", res.FileID, report.Results[i-1].FileID)
		}
	}
}

func TestCacheHit(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "A.svelte")
	writeTestFile(t, path, "a   b")

	cache, err := OpenCacheDir(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	p := &wordsParser{}
	opts := p.options(ModeCheck)
	opts.Cache = cache

	for i, wantCached := range []bool{false, true} {
		report, err := FormatFiles(context.Background(), []string{path}, opts)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		res := report.Results[0]
		if res.Cached != wantCached || string(res.Formatted) != "a b\n" || !res.Changed {
			t.Fatalf("run %d: unexpected result %+v", i, res)
		}
	}
	if n := p.calls.Load(); n != 1 {
		t.Fatalf("parser calls = %d, want 1", n)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := FormatFiles(context.Background(), []string{path}, opts); err != nil {
		t.Fatal(err)
	}
	if n := p.calls.Load(); n != 2 {
		t.Fatalf("parser calls after Clear = %d, want 2", n)
	}
}

func TestCacheDropsBrokenEntries(t *testing.T) {
	cache, err := OpenCacheDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("a"), "opts", "1.0")
	if err := cache.Put(key, []byte("a\n")); err != nil {
		t.Fatal(err)
	}
	out, ok, err := cache.Get(key)
	if err != nil || !ok || string(out) != "a\n" {
		t.Fatalf("Get = %q, %t, %v", out, ok, err)
	}

	if err := os.WriteFile(cache.pathFor(key), []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("broken entry: ok=%t err=%v", ok, err)
	}
	if _, err := os.Stat(cache.pathFor(key)); !os.IsNotExist(err) {
		t.Fatalf("broken entry not removed: %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	base := Key([]byte("a"), "opts", "1.0")
	for _, other := range []Digest{
		Key([]byte("b"), "opts", "1.0"),
		Key([]byte("a"), "opts2", "1.0"),
		Key([]byte("a"), "opts", "1.1"),
		Key([]byte("a\x00opts"), "", "1.0"),
	} {
		if other == base {
			t.Fatal("distinct inputs produced the same key")
		}
	}
}

func TestVerifyCatchesUnstableOutput(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "A.svelte")
	writeTestFile(t, path, "a")

	p := &wordsParser{suffix: " more"}
	opts := p.options(ModeCheck)
	opts.Verify = true
	report, err := FormatFiles(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	var ne *format.NotIdempotentError
	if !errors.As(report.Results[0].Err, &ne) {
		t.Fatalf("expected *format.NotIdempotentError, got %v", report.Results[0].Err)
	}
}

func TestConfigReachesParser(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ".sveltefmtrc.toml"), "parser = \"my-node\"\n")
	path := filepath.Join(root, "A.svelte")
	writeTestFile(t, path, "x\n")

	var seen atomic.Value
	p := &wordsParser{}
	opts := p.options(ModeCheck)
	opts.NewParser = func(cfg config.Config) format.Parser {
		seen.Store(cfg.Parser)
		return p
	}
	if _, err := FormatFiles(context.Background(), []string{path}, opts); err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	if got, _ := seen.Load().(string); got != "my-node" {
		t.Fatalf("parser program = %q", got)
	}
}

func TestProgressEvents(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "A.svelte")
	writeTestFile(t, path, "x\n")

	ch := make(chan Event, 16)
	p := &wordsParser{}
	opts := p.options(ModeCheck)
	opts.Progress = ChannelSink{Ch: ch}
	if _, err := FormatFiles(context.Background(), []string{path}, opts); err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	close(ch)

	var statuses []Status
	for ev := range ch {
		statuses = append(statuses, ev.Status)
	}
	want := []Status{StatusQueued, StatusWorking, StatusDone}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Fatalf("statuses (-want +got):\n%s", diff)
	}
}

func TestFormatSource(t *testing.T) {
	p := &wordsParser{}
	report, err := FormatSource(context.Background(), "<stdin>", []byte("\ufeffa \r\n b"), p.options(ModeWrite))
	if err != nil {
		t.Fatalf("FormatSource: %v", err)
	}
	if got := string(report.Results[0].Formatted); got != "a b\n" {
		t.Fatalf("Formatted = %q", got)
	}
}

func TestCancelled(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "A.svelte"), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &wordsParser{}
	if _, err := FormatPaths(ctx, []string{root}, p.options(ModeCheck)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWatchScope(t *testing.T) {
	root := t.TempDir()
	s := watchScope{
		dirs:  []string{absClean(filepath.Join(root, "src"))},
		files: map[string]bool{absClean(filepath.Join(root, "one.html")): true},
	}
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "src", "A.svelte"), true},
		{filepath.Join(root, "src", "deep", "B.SVELTE"), true},
		{filepath.Join(root, "src", ".A.svelte.swp"), false},
		{filepath.Join(root, "src", ".#A.svelte"), false},
		{filepath.Join(root, "src", "a.ts"), false},
		{filepath.Join(root, "other", "C.svelte"), false},
		{filepath.Join(root, "srcx", "C.svelte"), false},
		{filepath.Join(root, "one.html"), true},
	}
	for _, tt := range tests {
		if got := s.wanted(tt.path); got != tt.want {
			t.Fatalf("wanted(%s) = %t, want %t", tt.path, got, tt.want)
		}
	}
}

type unavailableParser struct{}

func (unavailableParser) Parse(context.Context, string) (*ast.Root, error) {
	return nil, &parser.UnavailableError{Program: "node", Err: errors.New("executable file not found")}
}

func TestUnavailableParserNote(t *testing.T) {
	report, err := FormatSource(context.Background(), "App.svelte", []byte("<p>x</p>"), Options{
		NewParser: func(config.Config) format.Parser { return unavailableParser{} },
	})
	if err != nil {
		t.Fatalf("FormatSource: %v", err)
	}
	bag := report.Diagnostics(10)
	if bag.Len() != 1 {
		t.Fatalf("want 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.FmtParserUnavailable || len(d.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if !strings.Contains(d.Notes[0].Msg, ".sveltefmtrc.toml") {
		t.Fatalf("note = %q", d.Notes[0].Msg)
	}
}

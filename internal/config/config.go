// Package config finds and loads .sveltefmtrc files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"sveltefmt/internal/diag"
	"sveltefmt/internal/format"
)

// FileNames are tried in order in every directory.
var FileNames = []string{".sveltefmtrc.toml", ".sveltefmtrc.yaml", ".sveltefmtrc.yml"}

// File is the content of one config file. Nil fields are unset.
type File struct {
	SortOrder      *string `toml:"sort_order" yaml:"sort_order"`
	StrictMode     *bool   `toml:"strict_mode" yaml:"strict_mode"`
	BracketNewLine *bool   `toml:"bracket_new_line" yaml:"bracket_new_line"`
	PrintWidth     *int    `toml:"print_width" yaml:"print_width"`
	TabWidth       *int    `toml:"tab_width" yaml:"tab_width"`
	UseTabs        *bool   `toml:"use_tabs" yaml:"use_tabs"`
	Parser         *string `toml:"parser" yaml:"parser"`
}

var knownKeys = map[string]bool{
	"sort_order": true, "strict_mode": true, "bracket_new_line": true,
	"print_width": true, "tab_width": true, "use_tabs": true, "parser": true,
}

// Config is a fully resolved configuration.
type Config struct {
	Format format.Options
	Parser string // parser program, empty for the default
	Path   string // file the values came from, empty when none was found
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Format: format.Options{
		SortOrder:  format.DefaultSortOrder,
		PrintWidth: 80,
		TabWidth:   2,
	}}
}

// Apply overwrites c with every field set in f.
func (c *Config) Apply(f File) {
	if f.SortOrder != nil {
		c.Format.SortOrder = *f.SortOrder
	}
	if f.StrictMode != nil {
		c.Format.StrictMode = *f.StrictMode
	}
	if f.BracketNewLine != nil {
		c.Format.BracketNewLine = *f.BracketNewLine
	}
	if f.PrintWidth != nil {
		c.Format.PrintWidth = *f.PrintWidth
	}
	if f.TabWidth != nil {
		c.Format.TabWidth = *f.TabWidth
	}
	if f.UseTabs != nil {
		c.Format.UseTabs = *f.UseTabs
	}
	if f.Parser != nil {
		c.Parser = *f.Parser
	}
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	if _, err := format.ParseSortOrder(c.Format.SortOrder); err != nil {
		return &Error{Path: c.Path, code: diag.CfgBadSortOrder, Err: err}
	}
	if c.Format.PrintWidth <= 0 {
		return &Error{Path: c.Path, code: diag.CfgInvalid, Err: fmt.Errorf("print_width must be positive, got %d", c.Format.PrintWidth)}
	}
	if c.Format.TabWidth <= 0 {
		return &Error{Path: c.Path, code: diag.CfgInvalid, Err: fmt.Errorf("tab_width must be positive, got %d", c.Format.TabWidth)}
	}
	return nil
}

// Fingerprint identifies the options that affect output.
func (c Config) Fingerprint() string {
	o := c.Format
	return fmt.Sprintf("sort=%s strict=%t bnl=%t width=%d tab=%d tabs=%t parser=%s",
		o.SortOrder, o.StrictMode, o.BracketNewLine, o.PrintWidth, o.TabWidth, o.UseTabs, c.Parser)
}

// Error is a config failure.
type Error struct {
	Path string
	Err  error
	code diag.Code
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Code() diag.Code { return e.code }

// Find walks up from startDir to the first directory holding a config file.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads one config file; the format follows the extension.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &Error{Path: path, code: diag.CfgInvalid, Err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(path, data)
	case ".yaml", ".yml":
		return decodeYAML(path, data)
	}
	return File{}, &Error{Path: path, code: diag.CfgInvalid, Err: errors.New("unsupported config format (want .toml, .yaml or .yml)")}
}

func unknownKeys(path string, keys []string) error {
	sort.Strings(keys)
	return &Error{Path: path, code: diag.CfgUnknownKey, Err: fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))}
}

// Resolver resolves configs for many files, caching per directory.
type Resolver struct {
	// Explicit, when set, is used for every file instead of searching.
	Explicit string
	// Overrides are applied last.
	Overrides File

	mu    sync.Mutex
	byDir map[string]resolved
}

type resolved struct {
	cfg Config
	err error
}

// Resolve returns the config for target, a file or a directory.
func (r *Resolver) Resolve(target string) (Config, error) {
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, &Error{Path: target, code: diag.CfgInvalid, Err: err}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.byDir[dir]; ok {
		return res.cfg, res.err
	}
	cfg, err := r.resolve(dir)
	if r.byDir == nil {
		r.byDir = make(map[string]resolved)
	}
	r.byDir[dir] = resolved{cfg: cfg, err: err}
	return cfg, err
}

func (r *Resolver) resolve(dir string) (Config, error) {
	cfg := Default()
	path := r.Explicit
	if path == "" {
		found, ok, err := Find(dir)
		if err != nil {
			return Config{}, &Error{code: diag.CfgInvalid, Err: err}
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		f, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Apply(f)
		cfg.Path = path
	}
	cfg.Apply(r.Overrides)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package diagfmt

import (
	"fmt"
	"strings"

	"sveltefmt/internal/source"
)

// PathMode selects how file names appear in diagnostics.
type PathMode string

const (
	PathAsGiven  PathMode = ""
	PathAbsolute PathMode = "absolute"
	PathRelative PathMode = "relative" // to FileSet.BaseDir
	PathBasename PathMode = "basename"
)

// ParsePathMode accepts "auto" as a synonym for PathAsGiven.
func ParsePathMode(s string) (PathMode, error) {
	switch m := PathMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "auto":
		return PathAsGiven, nil
	case PathAsGiven, PathAbsolute, PathRelative, PathBasename:
		return m, nil
	}
	return PathAsGiven, fmt.Errorf("invalid path mode %q (expected auto|absolute|relative|basename)", s)
}

func (m PathMode) render(f *source.File, baseDir string) string {
	if m == PathAsGiven {
		return f.Path
	}
	return f.FormatPath(string(m), baseDir)
}

type PrettyOpts struct {
	Color     bool
	Paths     PathMode
	Width     uint8 // ширина строки контекста, 0 без ограничения
	ShowNotes bool
	NoContext bool // no source line and caret
}

type JSONOpts struct {
	Paths            PathMode
	IncludePositions bool // line/col next to offsets
	IncludeNotes     bool
	Max              int // cuts the output, the bag keeps everything
}

package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"sveltefmt/internal/source"
)

// Located is a diagnostic or note resolved to a path and position.
type Located struct {
	Severity string `json:"severity"` // "error", "warning", "info" or "note"
	Code     string `json:"code"`
	Path     string `json:"path"`
	Line     uint32 `json:"line"`
	Column   uint32 `json:"column"`
	Message  string `json:"message"`
}

func (l Located) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.Severity, l.Code, l.Path, l.Line, l.Column, l.Message)
}

// Locate resolves diags, and their notes when includeNotes is set, sorted
// by position. Entries in files unknown to fs are dropped.
func Locate(diags []Diagnostic, fs *source.FileSet, includeNotes bool) []Located {
	if fs == nil {
		return nil
	}
	var out []Located
	add := func(sev string, code Code, span source.Span, msg string) {
		f := fs.Get(span.File)
		if f == nil {
			return
		}
		pos := f.Position(span.Start)
		out = append(out, Located{
			Severity: sev,
			Code:     code.ID(),
			Path:     strings.TrimPrefix(f.FormatPath("relative", fs.BaseDir()), "./"),
			Line:     pos.Line,
			Column:   pos.Col,
			Message:  oneLine(msg),
		})
	}
	for _, d := range diags {
		add(strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Located) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.Severity, b.Severity),
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Message, b.Message),
		)
	})
	return out
}

// FormatShortDiagnostics renders one "severity CODE path:line:col message"
// line per entry; golden tests compare against it.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	located := Locate(diags, fs, includeNotes)
	lines := make([]string, len(located))
	for i, l := range located {
		lines[i] = l.String()
	}
	return strings.Join(lines, "\n")
}

// oneLine folds a multi-line message onto one line.
func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}

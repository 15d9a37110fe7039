package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"sveltefmt/internal/diag"
	"sveltefmt/internal/source"
)

// Position is one end of a Location. Line and Col are 1-based and omitted
// unless JSONOpts.IncludePositions is set.
type Position struct {
	Offset uint32 `json:"offset"`
	Line   uint32 `json:"line,omitempty"`
	Col    uint32 `json:"col,omitempty"`
}

type Location struct {
	File  string   `json:"file,omitempty"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Note struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

// Diagnostic is the JSON form of diag.Diagnostic.
type Diagnostic struct {
	Severity string   `json:"severity"` // "error", "warning" or "info"
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Notes    []Note   `json:"notes,omitempty"`
}

// Report is the JSON document for a bag of diagnostics. Dropped counts the
// diagnostics cut by the bag limit or JSONOpts.Max.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Count       int          `json:"count"`
	Dropped     int          `json:"dropped,omitempty"`
}

type locator struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (l locator) locate(span source.Span) Location {
	loc := Location{Start: Position{Offset: span.Start}, End: Position{Offset: span.End}}
	f := l.fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = l.opts.Paths.render(f, l.fs.BaseDir())
	if l.opts.IncludePositions {
		start, end := f.Position(span.Start), f.Position(span.End)
		loc.Start.Line, loc.Start.Col = start.Line, start.Col
		loc.End.Line, loc.End.Col = end.Line, end.Col
	}
	return loc
}

// Build converts bag into its JSON document without encoding it.
func Build(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	l := locator{fs: fs, opts: opts}
	out := Report{Diagnostics: make([]Diagnostic, 0, n), Dropped: bag.Dropped() + len(items) - n}
	for _, d := range items[:n] {
		jd := Diagnostic{
			Severity: strings.ToLower(d.Severity.String()),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: l.locate(d.Primary),
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				jd.Notes = append(jd.Notes, Note{Message: note.Msg, Location: l.locate(note.Span)})
			}
		}
		out.Diagnostics = append(out.Diagnostics, jd)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(bag, fs, opts))
}

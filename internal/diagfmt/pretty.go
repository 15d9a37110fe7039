package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sveltefmt/internal/diag"
	"sveltefmt/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <sev> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := painter{on: opts.Color}
	for _, d := range bag.Items() {
		if err := prettyOne(w, d, fs, opts, p); err != nil {
			return err
		}
	}
	if n := bag.Dropped(); n > 0 {
		_, err := fmt.Fprintf(w, "%s\n", p.paint(fmt.Sprintf("... %d more diagnostics not shown", n), color.Faint))
		return err
	}
	return nil
}

type painter struct{ on bool }

func (p painter) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if p.on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func severityColor(sev diag.Severity) []color.Attribute {
	switch sev {
	case diag.SevError:
		return []color.Attribute{color.FgRed, color.Bold}
	case diag.SevWarning:
		return []color.Attribute{color.FgYellow, color.Bold}
	default:
		return []color.Attribute{color.FgCyan}
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p painter) error {
	f := fs.Get(d.Primary.File)
	head := p.paint(d.Severity.String()+" "+d.Code.ID(), severityColor(d.Severity)...) + ": " + d.Message
	if f == nil {
		_, err := fmt.Fprintln(w, head)
		return err
	}
	start, end := fs.Resolve(d.Primary)
	path := opts.Paths.render(f, fs.BaseDir())
	if _, err := fmt.Fprintf(w, "%s: %s\n", p.paint(fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col), color.Bold), head); err != nil {
		return err
	}
	if !opts.NoContext {
		if err := writeContext(w, f, start, end, opts, p, severityColor(d.Severity)); err != nil {
			return err
		}
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			loc := ""
			if nf := fs.Get(n.Span.File); nf != nil {
				ns, _ := fs.Resolve(n.Span)
				loc = fmt.Sprintf(" (%s:%d:%d)", opts.Paths.render(nf, fs.BaseDir()), ns.Line, ns.Col)
			}
			if _, err := fmt.Fprintf(w, "  %s %s%s\n", p.paint("note:", color.FgCyan), n.Msg, loc); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeContext prints the first line of the span with a caret underline.
func writeContext(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, p painter, attrs []color.Attribute) error {
	line := lineText(f, start.Line)
	if line == "" && start.Line == 0 {
		return nil
	}
	if opts.Width > 0 {
		line = runewidth.Truncate(line, int(opts.Width), "…")
	}
	col := int(start.Col) - 1
	col = max(0, min(col, len(line)))
	span := 1
	if end.Line == start.Line && int(end.Col) > int(start.Col) {
		span = runewidth.StringWidth(line[col:min(len(line), int(end.Col)-1)])
	}
	gutter := fmt.Sprintf("%4d | ", start.Line)
	pad := strings.Repeat(" ", len(gutter)-2) + "| " + strings.Repeat(" ", runewidth.StringWidth(line[:col]))
	caret := "^" + strings.Repeat("~", max(0, span-1))
	_, err := fmt.Fprintf(w, "%s%s\n%s%s\n", p.paint(gutter, color.Faint), line, p.paint(pad, color.Faint), p.paint(caret, attrs...))
	return err
}

func lineText(f *source.File, line uint32) string {
	return strings.TrimRight(f.Line(line), "\r")
}

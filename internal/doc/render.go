package doc

import "strings"

// RenderOptions controls the layout of a document.
type RenderOptions struct {
	PrintWidth int
	TabWidth   int
	UseTabs    bool
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.PrintWidth <= 0 {
		o.PrintWidth = 80
	}
	if o.TabWidth <= 0 {
		o.TabWidth = 2
	}
	return o
}

type mode uint8

const (
	modeBreak mode = iota
	modeFlat
)

// indentation is a linked stack of indentation levels; dedent pops one level.
type indentation struct {
	value  string
	width  int
	parent *indentation
}

type command struct {
	ind  *indentation
	mode mode
	doc  Doc
}

type renderer struct {
	opt     RenderOptions
	broken  map[*GroupDoc]bool
	visited map[*GroupDoc]bool
	out     *writer
}

// Render lays d out for the configured width and returns the text.
func Render(d Doc, opt RenderOptions) string {
	r := &renderer{
		opt:     opt.withDefaults(),
		broken:  make(map[*GroupDoc]bool),
		visited: make(map[*GroupDoc]bool),
		out:     newWriter(1024),
	}
	r.propagateBreaks(d)
	r.run(d)
	return r.out.String()
}

// propagateBreaks marks every group that contains a forced break and
// reports whether d itself contains one.
func (r *renderer) propagateBreaks(d Doc) bool {
	switch d := d.(type) {
	case ConcatDoc:
		found := false
		for _, part := range d {
			if r.propagateBreaks(part) {
				found = true
			}
		}
		return found
	case FillDoc:
		found := false
		for _, part := range d.Parts {
			if r.propagateBreaks(part) {
				found = true
			}
		}
		return found
	case IndentDoc:
		return r.propagateBreaks(d.Contents)
	case DedentDoc:
		return r.propagateBreaks(d.Contents)
	case *GroupDoc:
		if d == nil {
			return false
		}
		if r.visited[d] {
			return r.broken[d]
		}
		r.visited[d] = true
		inner := r.propagateBreaks(d.Contents)
		if inner || d.Break {
			r.broken[d] = true
			return true
		}
		return false
	case Line:
		return d.Hard
	case BreakParentDoc:
		return true
	}
	return false
}

func (r *renderer) indent(ind *indentation) *indentation {
	unit := strings.Repeat(" ", r.opt.TabWidth)
	if r.opt.UseTabs {
		unit = "\t"
	}
	return &indentation{
		value:  ind.value + unit,
		width:  ind.width + r.opt.TabWidth,
		parent: ind,
	}
}

func (r *renderer) dedent(ind *indentation) *indentation {
	if ind.parent == nil {
		return ind
	}
	return ind.parent
}

func (r *renderer) run(root Doc) {
	width := r.opt.PrintWidth
	stack := []command{{ind: &indentation{}, mode: modeBreak, doc: root}}
	shouldRemeasure := false

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch d := c.doc.(type) {
		case Text:
			r.out.WriteString(string(d))
		case ConcatDoc:
			for i := len(d) - 1; i >= 0; i-- {
				stack = append(stack, command{ind: c.ind, mode: c.mode, doc: d[i]})
			}
		case IndentDoc:
			stack = append(stack, command{ind: r.indent(c.ind), mode: c.mode, doc: d.Contents})
		case DedentDoc:
			stack = append(stack, command{ind: r.dedent(c.ind), mode: c.mode, doc: d.Contents})
		case *GroupDoc:
			if d == nil {
				continue
			}
			if c.mode == modeFlat && !shouldRemeasure {
				m := modeFlat
				if r.broken[d] {
					m = modeBreak
				}
				stack = append(stack, command{ind: c.ind, mode: m, doc: d.Contents})
				continue
			}
			shouldRemeasure = false
			next := command{ind: c.ind, mode: modeFlat, doc: d.Contents}
			if !r.broken[d] && r.fits(next, stack, width-r.out.col, false) {
				stack = append(stack, next)
			} else {
				stack = append(stack, command{ind: c.ind, mode: modeBreak, doc: d.Contents})
			}
		case FillDoc:
			stack = r.fill(stack, c, d, width)
		case Line:
			if c.mode == modeFlat && !d.Hard {
				if !d.Soft {
					r.out.WriteString(" ")
				}
				continue
			}
			if c.mode == modeFlat {
				// a hard line inside a flat group invalidates earlier fit decisions
				shouldRemeasure = true
			}
			if d.Literal {
				r.out.LiteralNewline()
			} else {
				r.out.Newline(c.ind)
			}
		case BreakParentDoc:
		}
	}
}

// fill decides each separator in turn: content stays flat if it fits, and a
// separator stays flat if the following content fits on the same line.
func (r *renderer) fill(stack []command, c command, d FillDoc, width int) []command {
	rem := width - r.out.col
	parts := d.Parts
	if len(parts) == 0 {
		return stack
	}

	content := parts[0]
	contentFlat := command{ind: c.ind, mode: modeFlat, doc: content}
	contentBreak := command{ind: c.ind, mode: modeBreak, doc: content}
	contentFits := r.fits(contentFlat, nil, rem, true)

	if len(parts) == 1 {
		if contentFits {
			return append(stack, contentFlat)
		}
		return append(stack, contentBreak)
	}

	sepFlat := command{ind: c.ind, mode: modeFlat, doc: parts[1]}
	sepBreak := command{ind: c.ind, mode: modeBreak, doc: parts[1]}

	if len(parts) == 2 {
		if contentFits {
			return append(stack, sepFlat, contentFlat)
		}
		return append(stack, sepBreak, contentBreak)
	}

	rest := command{ind: c.ind, mode: c.mode, doc: FillDoc{Parts: parts[2:]}}
	pair := command{ind: c.ind, mode: modeFlat, doc: ConcatDoc{content, parts[1], parts[2]}}

	switch {
	case r.fits(pair, nil, rem, true):
		return append(stack, rest, sepFlat, contentFlat)
	case contentFits:
		return append(stack, rest, sepBreak, contentFlat)
	default:
		return append(stack, rest, sepBreak, contentBreak)
	}
}

// fits reports whether next, followed by the rest of the current line taken
// from rest, fits into width columns.
func (r *renderer) fits(next command, rest []command, width int, mustBeFlat bool) bool {
	restIdx := len(rest)
	cmds := []command{next}

	for width >= 0 {
		if len(cmds) == 0 {
			if restIdx == 0 {
				return true
			}
			restIdx--
			cmds = append(cmds, rest[restIdx])
			continue
		}

		c := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := c.doc.(type) {
		case Text:
			width -= textWidth(string(d))
		case ConcatDoc:
			for i := len(d) - 1; i >= 0; i-- {
				cmds = append(cmds, command{ind: c.ind, mode: c.mode, doc: d[i]})
			}
		case FillDoc:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				cmds = append(cmds, command{ind: c.ind, mode: c.mode, doc: d.Parts[i]})
			}
		case IndentDoc:
			cmds = append(cmds, command{ind: c.ind, mode: c.mode, doc: d.Contents})
		case DedentDoc:
			cmds = append(cmds, command{ind: c.ind, mode: c.mode, doc: d.Contents})
		case *GroupDoc:
			if d == nil {
				continue
			}
			if mustBeFlat && r.broken[d] {
				return false
			}
			m := c.mode
			if r.broken[d] {
				m = modeBreak
			}
			cmds = append(cmds, command{ind: c.ind, mode: m, doc: d.Contents})
		case Line:
			if c.mode == modeBreak || d.Hard {
				return true
			}
			if !d.Soft {
				width--
			}
		}
	}
	return false
}

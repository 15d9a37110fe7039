package format

import (
	"strings"

	"github.com/coregx/coregex"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/doc"
)

var (
	wordSepRe   = mustCompile(`[\t\n\f\r ]+`)
	blankLineRe = mustCompile(`\n\r?\s*\n\r?`)
)

func mustCompile(expr string) *coregex.Regexp {
	re, err := coregex.Compile(expr)
	if err != nil {
		panic("format: compile " + expr + ": " + err.Error())
	}
	return re
}

func isEmptyText(t *ast.Text) bool {
	return strings.TrimSpace(t.Data) == ""
}

// isEmptyChildren reports whether children print nothing but whitespace.
func isEmptyChildren(children []ast.Node) bool {
	for _, c := range children {
		t, ok := c.(*ast.Text)
		if !ok || !isEmptyText(t) {
			return false
		}
	}
	return true
}

func isInline(n ast.Node) bool {
	switch n.(type) {
	case *ast.Text, *ast.MustacheTag:
		return true
	}
	return false
}

// printText turns whitespace into fill separators. Whitespace-only text
// becomes a single line that survives alone only over a blank line.
func printText(t *ast.Text) doc.Doc {
	raw := t.Raw
	if raw == "" {
		raw = t.Data
	}
	if isEmptyText(t) {
		return doc.Line{KeepIfLonely: blankLineRe.MatchString(raw)}
	}
	words := wordSepRe.Split(raw, -1)
	parts := make([]doc.Doc, 0, 2*len(words))
	for i, w := range words {
		if i > 0 {
			parts = append(parts, doc.Line{})
		}
		parts = append(parts, doc.Text(w))
	}
	return doc.Fill(parts)
}

// printChildren groups inline runs into fills and puts every other child on
// its own line. surround adds the soft padding used inside containers.
func (p *printer) printChildren(children []ast.Node, parent ast.Node, surround bool) doc.Doc {
	var (
		out []doc.Doc
		run []doc.Doc
	)
	flush := func() {
		if d, ok := inlineRun(run); ok {
			out = append(out, d)
		}
		run = run[:0]
	}
	for _, c := range children {
		d := p.print(c, parent)
		if isInline(c) {
			run = append(run, d)
			continue
		}
		flush()
		out = append(out, doc.Concat(doc.BreakParent, d))
	}
	flush()

	body := doc.Join(doc.Hardline, out)
	if !surround {
		return body
	}
	return doc.Concat(doc.Softline, body, doc.Dedent(doc.Softline))
}

// inlineRun merges the docs of adjacent Text and MustacheTag nodes into one
// fill with alternating content and separators, trimming separators at both
// edges. ok is false when the run prints nothing.
func inlineRun(run []doc.Doc) (d doc.Doc, ok bool) {
	if len(run) == 0 {
		return nil, false
	}
	if len(run) == 1 {
		if l, isLine := run[0].(doc.Line); isLine {
			if !l.KeepIfLonely {
				return nil, false
			}
			return doc.Group(doc.Line{}), true
		}
	}

	var parts []doc.Doc
	lastIsContent := false
	addContent := func(c doc.Doc) {
		if lastIsContent {
			parts[len(parts)-1] = doc.Concat(parts[len(parts)-1], c)
			return
		}
		parts = append(parts, c)
		lastIsContent = true
	}
	addSeparator := func(s doc.Doc) {
		if !lastIsContent {
			if len(parts) == 0 {
				// leading separators are trimmed below
				parts = append(parts, doc.Empty)
			} else {
				return
			}
		}
		parts = append(parts, s)
		lastIsContent = false
	}
	for _, item := range run {
		switch item := item.(type) {
		case doc.FillDoc:
			for i, part := range item.Parts {
				if i%2 == 0 {
					addContent(part)
				} else {
					addSeparator(part)
				}
			}
		case doc.Line:
			addSeparator(doc.Line{})
		default:
			addContent(item)
		}
	}

	// trim edges: leading "" + separator, trailing separator (+ "")
	for len(parts) >= 2 && isBlankText(parts[0]) {
		parts = parts[2:]
	}
	if !lastIsContent && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	for len(parts) >= 2 && isBlankText(parts[len(parts)-1]) {
		parts = parts[:len(parts)-2]
	}
	if len(parts) == 0 || (len(parts) == 1 && isBlankText(parts[0])) {
		return nil, false
	}
	return doc.Fill(parts), true
}

func isBlankText(d doc.Doc) bool {
	t, ok := d.(doc.Text)
	return ok && t == ""
}

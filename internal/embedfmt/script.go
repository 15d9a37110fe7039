package embedfmt

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"sveltefmt/internal/doc"
)

// reindent strips the common indentation of text and returns it one line
// per hard line. Lines that begin inside a multi-line string or template
// literal are reproduced verbatim behind a literal line. With lexJS false
// the text is treated as opaque.
func reindent(text string, lexJS bool) doc.Doc {
	var literals [][2]int
	if lexJS {
		literals = multilineLiterals(text)
	}

	type line struct {
		text     string
		verbatim bool
	}
	var lines []line
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}
		lines = append(lines, line{text: text[start:end], verbatim: insideLiteral(literals, start)})
		start = end + 1
	}

	indent := ""
	first := true
	for _, ln := range lines {
		if ln.verbatim || strings.TrimSpace(ln.text) == "" {
			continue
		}
		lead := ln.text[:len(ln.text)-len(strings.TrimLeft(ln.text, " \t"))]
		if first {
			indent, first = lead, false
			continue
		}
		indent = commonPrefix(indent, lead)
	}

	var parts []doc.Doc
	blank := false
	for _, ln := range lines {
		if ln.verbatim {
			parts = append(parts, doc.Literalline, doc.Text(ln.text))
			blank = false
			continue
		}
		s := strings.TrimRight(strings.TrimPrefix(ln.text, indent), " \t\r")
		if s == "" {
			blank = len(parts) > 0
			continue
		}
		if len(parts) > 0 {
			parts = append(parts, doc.Hardline)
			if blank {
				parts = append(parts, doc.Hardline)
			}
		}
		blank = false
		parts = append(parts, doc.Text(s))
	}
	if len(parts) == 0 {
		return doc.Empty
	}
	parts = append(parts, doc.Hardline)
	return doc.Concat(parts...)
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// multilineLiterals returns the byte ranges of string and template tokens
// that span a line break.
func multilineLiterals(text string) [][2]int {
	var out [][2]int
	l := js.NewLexer(parse.NewInputString(text))
	prev, prevData := js.ErrorToken, []byte(nil)
	off := 0
	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			break
		}
		if tt == js.DivToken || tt == js.DivEqToken {
			if !endsOperand(prev, prevData) {
				tt, data = l.RegExp()
				if tt == js.ErrorToken {
					break
				}
			}
		}
		switch tt {
		case js.StringToken, js.TemplateToken, js.TemplateStartToken,
			js.TemplateMiddleToken, js.TemplateEndToken:
			if strings.IndexByte(string(data), '\n') >= 0 {
				out = append(out, [2]int{off, off + len(data)})
			}
		}
		off += len(data)
		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
		default:
			prev, prevData = tt, data
		}
	}
	return out
}

func insideLiteral(ranges [][2]int, off int) bool {
	for _, r := range ranges {
		if r[0] < off && off < r[1] {
			return true
		}
	}
	return false
}

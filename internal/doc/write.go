package doc

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// writer accumulates rendered output and tracks the current column.
type writer struct {
	buf []byte
	col int
}

func newWriter(capHint int) *writer {
	return &writer{buf: make([]byte, 0, capHint)}
}

// WriteString appends s and advances the column by its display width.
func (w *writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.buf = append(w.buf, s...)
	w.col += textWidth(s)
}

// Newline trims trailing blanks of the current line, then starts a new line
// at the given indentation.
func (w *writer) Newline(ind *indentation) {
	w.trimTrailingBlanks()
	w.buf = append(w.buf, '\n')
	w.buf = append(w.buf, ind.value...)
	w.col = ind.width
}

// LiteralNewline starts a new line at column zero without trimming.
func (w *writer) LiteralNewline() {
	w.buf = append(w.buf, '\n')
	w.col = 0
}

func (w *writer) trimTrailingBlanks() {
	n := len(w.buf)
	for n > 0 && (w.buf[n-1] == ' ' || w.buf[n-1] == '\t') {
		n--
	}
	w.buf = w.buf[:n]
}

func (w *writer) String() string {
	return string(w.buf)
}

// textWidth measures s in terminal cells after NFC composition, so decomposed
// accents count once.
func textWidth(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return runewidth.StringWidth(norm.NFC.String(s))
		}
	}
	return len(s)
}

package lsp

import (
	"strings"
	"unicode/utf16"
)

// applyChanges applies full and ranged content changes in order.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, c := range changes {
		if c.Range == nil {
			text = c.Text
			continue
		}
		start := offsetForPosition(text, c.Range.Start)
		end := max(start, offsetForPosition(text, c.Range.End))
		text = text[:start] + c.Text + text[end:]
	}
	return text
}

// offsetForPosition maps a position with UTF-16 columns to a byte offset.
// A column past the end of its line clamps to the line end, a line past
// the end of text to len(text). A column inside a surrogate pair rounds
// down to the start of the rune.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	off := 0
	for range pos.Line {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return len(text)
		}
		off += i + 1
	}
	units := 0
	for i, r := range text[off:] {
		n := utf16.RuneLen(r)
		if r == '\n' || units+n > pos.Character {
			return off + i
		}
		units += n
	}
	return len(text)
}

// endPosition is the position just past the last character of text.
func endPosition(text string) position {
	line := strings.Count(text, "\n")
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return position{Line: line, Character: utf16Len([]byte(last))}
}

package lsp

import (
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"

	"sveltefmt/internal/source"
)

// positionForOffset converts a byte offset into a zero-based line and a
// UTF-16 column. Offsets past the end clamp to it.
func positionForOffset(file *source.File, offset uint32) position {
	if file == nil {
		return position{}
	}
	lc := file.Position(offset)
	prefix := file.Line(lc.Line)[:lc.Col-1]
	line, err := safecast.Conv[int](lc.Line - 1)
	if err != nil {
		return position{}
	}
	return position{Line: line, Character: utf16Len([]byte(prefix))}
}

// utf16Len counts UTF-16 code units; invalid bytes count as one each.
func utf16Len(b []byte) int {
	units := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		units += utf16.RuneLen(r)
		b = b[size:]
	}
	return units
}

func rangeForSpan(file *source.File, span source.Span) lspRange {
	return lspRange{
		Start: positionForOffset(file, span.Start),
		End:   positionForOffset(file, span.End),
	}
}

package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is a byte range [Start, End) in one file.
type Span struct {
	File       FileID
	Start, End uint32
}

// SpanOf builds a Span from int offsets. Negative starts clamp to zero and
// an end before start collapses onto it; offsets beyond uint32 panic.
func SpanOf(file FileID, start, end int) Span {
	start = max(start, 0)
	end = max(end, start)
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("span start: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("span end: %w", err))
	}
	return Span{File: file, Start: s, End: e}
}

func (s Span) String() string { return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End) }

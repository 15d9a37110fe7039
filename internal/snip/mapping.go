package snip

import (
	"sort"
	"strings"
)

// Mapping translates offsets in pre-processed text back to the original.
type Mapping struct {
	stages []stage
}

// Original maps a pre-processed offset to an offset in the original text.
// Offsets inside synthetic text map to the start of the replaced region.
func (m Mapping) Original(off int) int {
	for i := len(m.stages) - 1; i >= 0; i-- {
		off = m.stages[i].original(off)
	}
	return off
}

// stage is one text transform: an ordered list of output segments.
type stage struct {
	segs []segment
}

type segment struct {
	pre, orig       int
	preLen, origLen int
	copied          bool
}

func (st *stage) outLen() int {
	if len(st.segs) == 0 {
		return 0
	}
	last := st.segs[len(st.segs)-1]
	return last.pre + last.preLen
}

func (st *stage) copy(sb *strings.Builder, src string, from, to int) {
	if to <= from {
		return
	}
	st.segs = append(st.segs, segment{pre: st.outLen(), orig: from, preLen: to - from, origLen: to - from, copied: true})
	sb.WriteString(src[from:to])
}

func (st *stage) synth(sb *strings.Builder, text string, orig int) {
	st.segs = append(st.segs, segment{pre: st.outLen(), orig: orig, preLen: len(text)})
	sb.WriteString(text)
}

func (st stage) original(off int) int {
	if len(st.segs) == 0 {
		return off
	}
	i := sort.Search(len(st.segs), func(i int) bool { return st.segs[i].pre > off }) - 1
	if i < 0 {
		return st.segs[0].orig
	}
	seg := st.segs[i]
	if !seg.copied {
		return seg.orig
	}
	// past the end of the last segment: extrapolate
	return seg.orig + (off - seg.pre)
}

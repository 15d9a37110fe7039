package doc

import (
	"strconv"
	"strings"
)

// TrimTrailingLine returns d with its last trailing line turned into empty
// text. The walk goes backwards from the end of d, skipping only break-parent
// markers; it stops at the first line (which is removed) or at any other
// content (nothing is removed).
func TrimTrailingLine(d Doc) Doc {
	out, _ := trimTrailingLine(d)
	return out
}

// trimTrailingLine reports done=true once the walk must stop.
func trimTrailingLine(d Doc) (Doc, bool) {
	switch d := d.(type) {
	case ConcatDoc:
		for i := len(d) - 1; i >= 0; i-- {
			part, done := trimTrailingLine(d[i])
			if !done {
				continue
			}
			out := make(ConcatDoc, len(d))
			copy(out, d)
			out[i] = part
			return out, true
		}
		return d, false
	case FillDoc:
		parts, done := trimTrailingLine(ConcatDoc(d.Parts))
		if !done {
			return d, false
		}
		return FillDoc{Parts: parts.(ConcatDoc)}, true
	case IndentDoc:
		inner, done := trimTrailingLine(d.Contents)
		return IndentDoc{Contents: inner}, done
	case DedentDoc:
		inner, done := trimTrailingLine(d.Contents)
		return DedentDoc{Contents: inner}, done
	case *GroupDoc:
		if d == nil {
			return d, false
		}
		inner, done := trimTrailingLine(d.Contents)
		if !done {
			return d, false
		}
		return &GroupDoc{Contents: inner, Break: d.Break}, true
	case Line:
		return Empty, true
	case BreakParentDoc:
		return d, false
	case nil:
		return d, false
	default:
		return d, true
	}
}

// RemoveLines flattens d onto a single line: plain and hard lines become a
// space, soft lines disappear, groups are unwrapped.
func RemoveLines(d Doc) Doc {
	switch d := d.(type) {
	case ConcatDoc:
		out := make(ConcatDoc, 0, len(d))
		for _, part := range d {
			out = append(out, RemoveLines(part))
		}
		return out
	case FillDoc:
		out := make(ConcatDoc, 0, len(d.Parts))
		for _, part := range d.Parts {
			out = append(out, RemoveLines(part))
		}
		return out
	case IndentDoc:
		return RemoveLines(d.Contents)
	case DedentDoc:
		return RemoveLines(d.Contents)
	case *GroupDoc:
		if d == nil {
			return Empty
		}
		return RemoveLines(d.Contents)
	case Line:
		if d.Soft {
			return Empty
		}
		return Text(" ")
	case BreakParentDoc:
		return Empty
	default:
		return d
	}
}

// IsEmpty reports whether d prints nothing in any layout.
func IsEmpty(d Doc) bool {
	switch d := d.(type) {
	case nil:
		return true
	case Text:
		return d == ""
	case ConcatDoc:
		for _, part := range d {
			if !IsEmpty(part) {
				return false
			}
		}
		return true
	case FillDoc:
		for _, part := range d.Parts {
			if !IsEmpty(part) {
				return false
			}
		}
		return true
	case IndentDoc:
		return IsEmpty(d.Contents)
	case DedentDoc:
		return IsEmpty(d.Contents)
	case *GroupDoc:
		return d == nil || IsEmpty(d.Contents)
	case BreakParentDoc:
		return true
	}
	return false
}

// Debug renders the structure of d in a compact builder-like notation.
func Debug(d Doc) string {
	var sb strings.Builder
	writeDebug(&sb, d)
	return sb.String()
}

func writeDebug(sb *strings.Builder, d Doc) {
	switch d := d.(type) {
	case nil:
		sb.WriteString("nil")
	case Text:
		sb.WriteString(strconv.Quote(string(d)))
	case ConcatDoc:
		if len(d) == 2 {
			if l, ok := d[0].(Line); ok && l.Hard {
				if _, ok := d[1].(BreakParentDoc); ok {
					if l.Literal {
						sb.WriteString("literalline")
					} else {
						sb.WriteString("hardline")
					}
					return
				}
			}
		}
		sb.WriteByte('[')
		for i, part := range d {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDebug(sb, part)
		}
		sb.WriteByte(']')
	case FillDoc:
		sb.WriteString("fill(")
		writeDebug(sb, ConcatDoc(d.Parts))
		sb.WriteByte(')')
	case IndentDoc:
		sb.WriteString("indent(")
		writeDebug(sb, d.Contents)
		sb.WriteByte(')')
	case DedentDoc:
		sb.WriteString("dedent(")
		writeDebug(sb, d.Contents)
		sb.WriteByte(')')
	case *GroupDoc:
		if d == nil {
			sb.WriteString("nil")
			return
		}
		sb.WriteString("group(")
		writeDebug(sb, d.Contents)
		if d.Break {
			sb.WriteString(", break")
		}
		sb.WriteByte(')')
	case Line:
		switch {
		case d.Hard && d.Literal:
			sb.WriteString("literalline!")
		case d.Hard:
			sb.WriteString("hardline!")
		case d.Soft:
			sb.WriteString("softline")
		case d.KeepIfLonely:
			sb.WriteString("line(keep)")
		default:
			sb.WriteString("line")
		}
	case BreakParentDoc:
		sb.WriteString("breakParent")
	}
}

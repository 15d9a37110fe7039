// Package doc implements the layout-agnostic document IR used by the printer
// and the renderer that turns a document into text for a given line width.
//
// Documents are immutable values. Line-breaking decisions are deferred to
// Render: a group is printed flat when it fits the remaining width and
// broken otherwise; a group that contains a BreakParent (transitively) is
// always broken.
//
// Не делает: разбор шаблонов, знания о конкретном синтаксисе.
package doc

// Doc is a node of the document IR.
type Doc interface {
	isDoc()
}

// Text is literal text. It must not contain newlines except inside verbatim
// embedded content.
type Text string

// ConcatDoc is a sequence of documents.
type ConcatDoc []Doc

// GroupDoc is printed flat when it fits, broken otherwise.
type GroupDoc struct {
	Contents Doc
	// Break forces broken mode regardless of fit.
	Break bool
}

// IndentDoc increases the indentation of line breaks inside Contents.
type IndentDoc struct {
	Contents Doc
}

// DedentDoc restores the indentation of the enclosing level for Contents.
type DedentDoc struct {
	Contents Doc
}

// Line is a potential line break.
//
// In flat mode a plain line prints a space and a soft line prints nothing.
// A hard line always breaks; a literal line breaks without indentation.
type Line struct {
	Soft    bool
	Hard    bool
	Literal bool
	// KeepIfLonely marks a line that originated from a whitespace-only text
	// containing a blank line; the children grouper keeps it when it is the
	// only thing in an inline run.
	KeepIfLonely bool
}

// FillDoc alternates content and separator parts and breaks a separator only
// when the next content would not fit.
type FillDoc struct {
	Parts []Doc
}

// BreakParentDoc forces every enclosing group to break.
type BreakParentDoc struct{}

func (Text) isDoc()           {}
func (ConcatDoc) isDoc()      {}
func (*GroupDoc) isDoc()      {}
func (IndentDoc) isDoc()      {}
func (DedentDoc) isDoc()      {}
func (Line) isDoc()           {}
func (FillDoc) isDoc()        {}
func (BreakParentDoc) isDoc() {}

var (
	// Empty prints nothing.
	Empty Doc = Text("")
	// Softline breaks only when the enclosing group breaks.
	Softline Doc = Line{Soft: true}
	// Hardline always breaks and propagates the break to enclosing groups.
	Hardline Doc = ConcatDoc{Line{Hard: true}, BreakParentDoc{}}
	// Literalline always breaks and starts the next line at column zero.
	Literalline Doc = ConcatDoc{Line{Hard: true, Literal: true}, BreakParentDoc{}}
	// BreakParent forces enclosing groups to break.
	BreakParent Doc = BreakParentDoc{}
)

// Concat builds a sequence.
func Concat(parts ...Doc) Doc {
	return ConcatDoc(parts)
}

// Group wraps d into a group.
func Group(d Doc) *GroupDoc {
	return &GroupDoc{Contents: d}
}

// Indent wraps d into an indentation level.
func Indent(d Doc) Doc {
	return IndentDoc{Contents: d}
}

// Dedent prints d at the enclosing indentation level.
func Dedent(d Doc) Doc {
	return DedentDoc{Contents: d}
}

// Fill builds a fill from alternating content/separator parts.
func Fill(parts []Doc) Doc {
	return FillDoc{Parts: parts}
}

// Join interleaves sep between docs.
func Join(sep Doc, docs []Doc) Doc {
	if len(docs) == 0 {
		return ConcatDoc(nil)
	}
	out := make(ConcatDoc, 0, len(docs)*2-1)
	for i, d := range docs {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, d)
	}
	return out
}

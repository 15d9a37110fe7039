// Package ast models the template syntax tree produced by the component
// compiler's parser.
//
// Node is a closed sum type: every variant lives in this package and carries
// byte offsets into the text handed to the parser (the pre-processed text).
// Variants the decoder does not recognise become *Unknown so that the printer
// can report them instead of silently dropping output.
package ast

import "encoding/json"

// Node is any template node.
type Node interface {
	// Span returns the byte range [start, end) of the node.
	Span() (start, end int)
	// Kind returns the parser's type tag, e.g. "Element".
	Kind() string
	node()
}

// Pos is embedded by every node.
type Pos struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (p Pos) Span() (start, end int) { return p.Start, p.End }

// Root is the parser result.
type Root struct {
	HTML     *Fragment
	CSS      *Style
	Instance *Script
	Module   *Script
}

// Expression is an opaque ESTree node. Only the outer span is used for
// printing; Name is set for identifiers and for patterns given as plain
// strings, in which case the span is zero.
type Expression struct {
	Pos
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// IsIdentifier reports whether e is an identifier called name.
func (e *Expression) IsIdentifier(name string) bool {
	return e != nil && e.Type == "Identifier" && e.Name == name
}

// Tag holds what element-like nodes share.
type Tag struct {
	Pos
	Name       string `json:"name"`
	Attributes []Node `json:"attributes,omitempty"`
	Children   []Node `json:"children,omitempty"`
}

type (
	Fragment struct {
		Pos
		Children []Node `json:"children,omitempty"`
	}

	Text struct {
		Pos
		Raw  string `json:"raw,omitempty"`
		Data string `json:"data"`
	}

	Element struct{ Tag }

	// InlineComponent covers components and svelte:component/svelte:self.
	// Expression is the `this={...}` target of a dynamic component.
	InlineComponent struct {
		Tag
		Expression *Expression `json:"expression,omitempty"`
	}

	Slot   struct{ Tag }
	Window struct{ Tag }
	Head   struct{ Tag }
	Title  struct{ Tag }

	// Options is <svelte:options>.
	Options struct{ Tag }
	Body    struct{ Tag }

	// Attribute.Value is nil for a bare boolean attribute; otherwise it holds
	// Text, MustacheTag and AttributeShorthand parts.
	Attribute struct {
		Pos
		Name  string `json:"name"`
		Value []Node `json:"value,omitempty"`
	}

	AttributeShorthand struct {
		Pos
		Expression *Expression `json:"expression"`
	}

	MustacheTag struct {
		Pos
		Expression *Expression `json:"expression"`
	}

	RawMustacheTag struct {
		Pos
		Expression *Expression `json:"expression"`
	}

	IfBlock struct {
		Pos
		Expression *Expression `json:"expression"`
		Children   []Node      `json:"children,omitempty"`
		Else       *ElseBlock  `json:"else,omitempty"`
	}

	ElseBlock struct {
		Pos
		Children []Node `json:"children,omitempty"`
	}

	EachBlock struct {
		Pos
		Expression *Expression `json:"expression"`
		Context    *Expression `json:"context"`
		Index      string      `json:"index,omitempty"`
		Key        *Expression `json:"key,omitempty"`
		Children   []Node      `json:"children,omitempty"`
		Else       *ElseBlock  `json:"else,omitempty"`
	}

	AwaitBlock struct {
		Pos
		Expression *Expression   `json:"expression"`
		Value      *Expression   `json:"value,omitempty"`
		Error      *Expression   `json:"error,omitempty"`
		Pending    *PendingBlock `json:"pending,omitempty"`
		Then       *ThenBlock    `json:"then,omitempty"`
		Catch      *CatchBlock   `json:"catch,omitempty"`
	}

	PendingBlock struct {
		Pos
		Children []Node `json:"children,omitempty"`
	}

	ThenBlock struct {
		Pos
		Children []Node `json:"children,omitempty"`
	}

	CatchBlock struct {
		Pos
		Children []Node `json:"children,omitempty"`
	}

	EventHandler struct {
		Pos
		Name       string      `json:"name"`
		Modifiers  []string    `json:"modifiers,omitempty"`
		Expression *Expression `json:"expression,omitempty"`
	}

	Binding struct {
		Pos
		Name       string      `json:"name"`
		Expression *Expression `json:"expression"`
	}

	Class struct {
		Pos
		Name       string      `json:"name"`
		Expression *Expression `json:"expression"`
	}

	Let struct {
		Pos
		Name       string      `json:"name"`
		Expression *Expression `json:"expression,omitempty"`
	}

	Action struct {
		Pos
		Name       string      `json:"name"`
		Expression *Expression `json:"expression,omitempty"`
	}

	Animation struct {
		Pos
		Name       string      `json:"name"`
		Expression *Expression `json:"expression,omitempty"`
	}

	Transition struct {
		Pos
		Name       string      `json:"name"`
		Modifiers  []string    `json:"modifiers,omitempty"`
		Expression *Expression `json:"expression,omitempty"`
		Intro      bool        `json:"intro"`
		Outro      bool        `json:"outro"`
	}

	DebugTag struct {
		Pos
		Identifiers []*Expression `json:"identifiers,omitempty"`
	}

	Ref struct {
		Pos
		Name string `json:"name"`
	}

	Spread struct {
		Pos
		Expression *Expression `json:"expression"`
	}

	Comment struct {
		Pos
		Data string `json:"data"`
	}

	// Script is a top-level <script>. The tag text between Start and End
	// still carries the snipped content attribute.
	Script struct {
		Pos
		Context string `json:"context"`
	}

	// Style is the top-level <style>.
	Style struct {
		Pos
		Attributes []Node `json:"attributes,omitempty"`
	}

	Identifier struct {
		Pos
		Name string `json:"name"`
	}

	// Unknown keeps a node whose type tag is not modelled here.
	Unknown struct {
		Pos
		Type string          `json:"type"`
		Raw  json.RawMessage `json:"-"`
	}
)

func (*Expression) Kind() string         { return "Expression" }
func (*Fragment) Kind() string           { return "Fragment" }
func (*Text) Kind() string               { return "Text" }
func (*Element) Kind() string            { return "Element" }
func (*InlineComponent) Kind() string    { return "InlineComponent" }
func (*Slot) Kind() string               { return "Slot" }
func (*Window) Kind() string             { return "Window" }
func (*Head) Kind() string               { return "Head" }
func (*Title) Kind() string              { return "Title" }
func (*Options) Kind() string            { return "Options" }
func (*Body) Kind() string               { return "Body" }
func (*Attribute) Kind() string          { return "Attribute" }
func (*AttributeShorthand) Kind() string { return "AttributeShorthand" }
func (*MustacheTag) Kind() string        { return "MustacheTag" }
func (*RawMustacheTag) Kind() string     { return "RawMustacheTag" }
func (*IfBlock) Kind() string            { return "IfBlock" }
func (*ElseBlock) Kind() string          { return "ElseBlock" }
func (*EachBlock) Kind() string          { return "EachBlock" }
func (*AwaitBlock) Kind() string         { return "AwaitBlock" }
func (*PendingBlock) Kind() string       { return "PendingBlock" }
func (*ThenBlock) Kind() string          { return "ThenBlock" }
func (*CatchBlock) Kind() string         { return "CatchBlock" }
func (*EventHandler) Kind() string       { return "EventHandler" }
func (*Binding) Kind() string            { return "Binding" }
func (*Class) Kind() string              { return "Class" }
func (*Let) Kind() string                { return "Let" }
func (*Action) Kind() string             { return "Action" }
func (*Animation) Kind() string          { return "Animation" }
func (*Transition) Kind() string         { return "Transition" }
func (*DebugTag) Kind() string           { return "DebugTag" }
func (*Ref) Kind() string                { return "Ref" }
func (*Spread) Kind() string             { return "Spread" }
func (*Comment) Kind() string            { return "Comment" }
func (*Script) Kind() string             { return "Script" }
func (*Style) Kind() string              { return "Style" }
func (*Identifier) Kind() string         { return "Identifier" }
func (u *Unknown) Kind() string          { return u.Type }

func (*Expression) node()         {}
func (*Fragment) node()           {}
func (*Text) node()               {}
func (*Element) node()            {}
func (*InlineComponent) node()    {}
func (*Slot) node()               {}
func (*Window) node()             {}
func (*Head) node()               {}
func (*Title) node()              {}
func (*Options) node()            {}
func (*Body) node()               {}
func (*Attribute) node()          {}
func (*AttributeShorthand) node() {}
func (*MustacheTag) node()        {}
func (*RawMustacheTag) node()     {}
func (*IfBlock) node()            {}
func (*ElseBlock) node()          {}
func (*EachBlock) node()          {}
func (*AwaitBlock) node()         {}
func (*PendingBlock) node()       {}
func (*ThenBlock) node()          {}
func (*CatchBlock) node()         {}
func (*EventHandler) node()       {}
func (*Binding) node()            {}
func (*Class) node()              {}
func (*Let) node()                {}
func (*Action) node()             {}
func (*Animation) node()          {}
func (*Transition) node()         {}
func (*DebugTag) node()           {}
func (*Ref) node()                {}
func (*Spread) node()             {}
func (*Comment) node()            {}
func (*Script) node()             {}
func (*Style) node()              {}
func (*Identifier) node()         {}
func (*Unknown) node()            {}

// TagOf returns the shared element fields of element-like nodes.
func TagOf(n Node) (*Tag, bool) {
	switch n := n.(type) {
	case *Element:
		return &n.Tag, true
	case *InlineComponent:
		return &n.Tag, true
	case *Slot:
		return &n.Tag, true
	case *Window:
		return &n.Tag, true
	case *Head:
		return &n.Tag, true
	case *Title:
		return &n.Tag, true
	case *Options:
		return &n.Tag, true
	case *Body:
		return &n.Tag, true
	}
	return nil, false
}

// Inspect walks the tree depth-first in source order, calling fn for each
// node. Children are skipped when fn returns false.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	walk := func(nodes []Node) {
		for _, c := range nodes {
			Inspect(c, fn)
		}
	}
	if t, ok := TagOf(n); ok {
		walk(t.Attributes)
		walk(t.Children)
		return
	}
	switch n := n.(type) {
	case *Fragment:
		walk(n.Children)
	case *Attribute:
		walk(n.Value)
	case *Style:
		walk(n.Attributes)
	case *IfBlock:
		walk(n.Children)
		if n.Else != nil {
			Inspect(n.Else, fn)
		}
	case *ElseBlock:
		walk(n.Children)
	case *EachBlock:
		walk(n.Children)
		if n.Else != nil {
			Inspect(n.Else, fn)
		}
	case *AwaitBlock:
		if n.Pending != nil {
			Inspect(n.Pending, fn)
		}
		if n.Then != nil {
			Inspect(n.Then, fn)
		}
		if n.Catch != nil {
			Inspect(n.Catch, fn)
		}
	case *PendingBlock:
		walk(n.Children)
	case *ThenBlock:
		walk(n.Children)
	case *CatchBlock:
		walk(n.Children)
	}
}

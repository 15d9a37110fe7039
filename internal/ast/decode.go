package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// rawNode is the union of every field the parser may emit.
type rawNode struct {
	Type        string            `json:"type"`
	Start       int               `json:"start"`
	End         int               `json:"end"`
	Name        string            `json:"name"`
	Data        string            `json:"data"`
	Raw         *string           `json:"raw"`
	Children    []json.RawMessage `json:"children"`
	Attributes  []json.RawMessage `json:"attributes"`
	Expression  json.RawMessage   `json:"expression"`
	Value       json.RawMessage   `json:"value"`
	Error       json.RawMessage   `json:"error"`
	Context     json.RawMessage   `json:"context"`
	Index       string            `json:"index"`
	Key         json.RawMessage   `json:"key"`
	Else        json.RawMessage   `json:"else"`
	Pending     json.RawMessage   `json:"pending"`
	Then        json.RawMessage   `json:"then"`
	Catch       json.RawMessage   `json:"catch"`
	Modifiers   []string          `json:"modifiers"`
	Intro       bool              `json:"intro"`
	Outro       bool              `json:"outro"`
	Identifiers []json.RawMessage `json:"identifiers"`
}

type rawRoot struct {
	HTML     json.RawMessage `json:"html"`
	CSS      json.RawMessage `json:"css"`
	Instance json.RawMessage `json:"instance"`
	Module   json.RawMessage `json:"module"`
}

// DecodeRoot decodes the JSON produced by the component compiler's parse().
func DecodeRoot(data []byte) (*Root, error) {
	var rr rawRoot
	if err := json.Unmarshal(data, &rr); err != nil {
		return nil, fmt.Errorf("ast: decode root: %w", err)
	}
	root := &Root{}

	if !isNull(rr.HTML) {
		n, err := DecodeNode(rr.HTML)
		if err != nil {
			return nil, fmt.Errorf("ast: html: %w", err)
		}
		frag, ok := n.(*Fragment)
		if !ok {
			return nil, fmt.Errorf("ast: html: expected Fragment, got %s", n.Kind())
		}
		root.HTML = frag
	}
	if !isNull(rr.CSS) {
		n, err := DecodeNode(rr.CSS)
		if err != nil {
			return nil, fmt.Errorf("ast: css: %w", err)
		}
		style, ok := n.(*Style)
		if !ok {
			return nil, fmt.Errorf("ast: css: expected Style, got %s", n.Kind())
		}
		root.CSS = style
	}
	var err error
	if root.Instance, err = decodeScript(rr.Instance); err != nil {
		return nil, fmt.Errorf("ast: instance: %w", err)
	}
	if root.Module, err = decodeScript(rr.Module); err != nil {
		return nil, fmt.Errorf("ast: module: %w", err)
	}
	return root, nil
}

func decodeScript(data json.RawMessage) (*Script, error) {
	if isNull(data) {
		return nil, nil
	}
	n, err := DecodeNode(data)
	if err != nil {
		return nil, err
	}
	s, ok := n.(*Script)
	if !ok {
		return nil, fmt.Errorf("expected Script, got %s", n.Kind())
	}
	return s, nil
}

// DecodeNode decodes a single template node. Unrecognised type tags yield
// *Unknown rather than an error.
func DecodeNode(data []byte) (Node, error) {
	var r rawNode
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	pos := Pos{Start: r.Start, End: r.End}
	d := decoder{}

	var n Node
	switch r.Type {
	case "Fragment":
		n = &Fragment{Pos: pos, Children: d.nodes(r.Children)}
	case "Text":
		raw := r.Data
		if r.Raw != nil {
			raw = *r.Raw
		}
		n = &Text{Pos: pos, Raw: raw, Data: r.Data}
	case "Element":
		n = &Element{Tag: d.tag(pos, &r)}
	case "InlineComponent":
		n = &InlineComponent{Tag: d.tag(pos, &r), Expression: d.expr(r.Expression)}
	case "Slot":
		n = &Slot{Tag: d.tag(pos, &r)}
	case "Window":
		n = &Window{Tag: d.tag(pos, &r)}
	case "Head":
		n = &Head{Tag: d.tag(pos, &r)}
	case "Title":
		n = &Title{Tag: d.tag(pos, &r)}
	case "Options":
		n = &Options{Tag: d.tag(pos, &r)}
	case "Body":
		n = &Body{Tag: d.tag(pos, &r)}
	case "Attribute":
		n = &Attribute{Pos: pos, Name: r.Name, Value: d.attrValue(r.Value)}
	case "AttributeShorthand":
		n = &AttributeShorthand{Pos: pos, Expression: d.expr(r.Expression)}
	case "MustacheTag":
		n = &MustacheTag{Pos: pos, Expression: d.expr(r.Expression)}
	case "RawMustacheTag":
		n = &RawMustacheTag{Pos: pos, Expression: d.expr(r.Expression)}
	case "IfBlock":
		n = &IfBlock{Pos: pos, Expression: d.expr(r.Expression), Children: d.nodes(r.Children), Else: d.elseBlock(r.Else)}
	case "ElseBlock":
		n = &ElseBlock{Pos: pos, Children: d.nodes(r.Children)}
	case "EachBlock":
		n = &EachBlock{
			Pos:        pos,
			Expression: d.expr(r.Expression),
			Context:    d.expr(r.Context),
			Index:      r.Index,
			Key:        d.expr(r.Key),
			Children:   d.nodes(r.Children),
			Else:       d.elseBlock(r.Else),
		}
	case "AwaitBlock":
		aw := &AwaitBlock{Pos: pos, Expression: d.expr(r.Expression), Value: d.expr(r.Value), Error: d.expr(r.Error)}
		if b := d.node(r.Pending); b != nil {
			aw.Pending, _ = b.(*PendingBlock)
		}
		if b := d.node(r.Then); b != nil {
			aw.Then, _ = b.(*ThenBlock)
		}
		if b := d.node(r.Catch); b != nil {
			aw.Catch, _ = b.(*CatchBlock)
		}
		n = aw
	case "PendingBlock":
		n = &PendingBlock{Pos: pos, Children: d.nodes(r.Children)}
	case "ThenBlock":
		n = &ThenBlock{Pos: pos, Children: d.nodes(r.Children)}
	case "CatchBlock":
		n = &CatchBlock{Pos: pos, Children: d.nodes(r.Children)}
	case "EventHandler":
		n = &EventHandler{Pos: pos, Name: r.Name, Modifiers: r.Modifiers, Expression: d.expr(r.Expression)}
	case "Binding":
		n = &Binding{Pos: pos, Name: r.Name, Expression: d.expr(r.Expression)}
	case "Class":
		n = &Class{Pos: pos, Name: r.Name, Expression: d.expr(r.Expression)}
	case "Let":
		n = &Let{Pos: pos, Name: r.Name, Expression: d.expr(r.Expression)}
	case "Action":
		n = &Action{Pos: pos, Name: r.Name, Expression: d.expr(r.Expression)}
	case "Animation":
		n = &Animation{Pos: pos, Name: r.Name, Expression: d.expr(r.Expression)}
	case "Transition":
		n = &Transition{Pos: pos, Name: r.Name, Modifiers: r.Modifiers, Expression: d.expr(r.Expression), Intro: r.Intro, Outro: r.Outro}
	case "DebugTag":
		dt := &DebugTag{Pos: pos}
		for _, id := range r.Identifiers {
			if e := d.expr(id); e != nil {
				dt.Identifiers = append(dt.Identifiers, e)
			}
		}
		n = dt
	case "Ref":
		n = &Ref{Pos: pos, Name: r.Name}
	case "Spread":
		n = &Spread{Pos: pos, Expression: d.expr(r.Expression)}
	case "Comment":
		n = &Comment{Pos: pos, Data: r.Data}
	case "Script":
		var ctx string
		if !isNull(r.Context) {
			_ = json.Unmarshal(r.Context, &ctx)
		}
		n = &Script{Pos: pos, Context: ctx}
	case "Style":
		n = &Style{Pos: pos, Attributes: d.nodes(r.Attributes)}
	case "Identifier":
		n = &Identifier{Pos: pos, Name: r.Name}
	default:
		n = &Unknown{Pos: pos, Type: r.Type, Raw: append(json.RawMessage(nil), data...)}
	}
	if d.err != nil {
		return nil, d.err
	}
	return n, nil
}

// decoder keeps the first nested error.
type decoder struct {
	err error
}

func (d *decoder) node(data json.RawMessage) Node {
	if d.err != nil || isNull(data) {
		return nil
	}
	n, err := DecodeNode(data)
	if err != nil {
		d.err = err
		return nil
	}
	return n
}

func (d *decoder) nodes(list []json.RawMessage) []Node {
	if len(list) == 0 {
		return nil
	}
	out := make([]Node, 0, len(list))
	for _, item := range list {
		if n := d.node(item); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (d *decoder) tag(pos Pos, r *rawNode) Tag {
	return Tag{
		Pos:        pos,
		Name:       r.Name,
		Attributes: d.nodes(r.Attributes),
		Children:   d.nodes(r.Children),
	}
}

func (d *decoder) elseBlock(data json.RawMessage) *ElseBlock {
	n := d.node(data)
	if n == nil {
		return nil
	}
	eb, ok := n.(*ElseBlock)
	if !ok {
		d.err = fmt.Errorf("expected ElseBlock, got %s", n.Kind())
		return nil
	}
	return eb
}

// attrValue decodes `true` as nil and an array as its parts.
func (d *decoder) attrValue(data json.RawMessage) []Node {
	if d.err != nil || isNull(data) {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("true")) {
		return nil
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(trimmed, &parts); err != nil {
		d.err = fmt.Errorf("attribute value: %w", err)
		return nil
	}
	out := d.nodes(parts)
	if out == nil {
		out = []Node{}
	}
	return out
}

// expr decodes an ESTree node, or a plain string (older parsers emit
// identifiers in await/each positions as strings).
func (d *decoder) expr(data json.RawMessage) *Expression {
	if d.err != nil || isNull(data) {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			d.err = err
			return nil
		}
		if name == "" {
			return nil
		}
		return &Expression{Type: "Identifier", Name: name}
	}
	var e Expression
	if err := json.Unmarshal(trimmed, &e); err != nil {
		d.err = fmt.Errorf("expression: %w", err)
		return nil
	}
	return &e
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

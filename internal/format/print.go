package format

import (
	"strings"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/doc"
	"sveltefmt/internal/snip"
)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// print dispatches on the node kind. parent is the enclosing node where a
// rule depends on it.
func (p *printer) print(n ast.Node, parent ast.Node) doc.Doc {
	if p.err != nil {
		return doc.Empty
	}
	switch n := n.(type) {
	case *ast.Fragment:
		if isEmptyChildren(n.Children) {
			return doc.Empty
		}
		return doc.Concat(p.printChildren(n.Children, n, false), doc.Hardline)
	case *ast.Text:
		return printText(n)
	case *ast.Element:
		if n.Name == "script" || n.Name == "style" {
			if d, ok := p.printCarrier(carrier{tag: n.Name, start: n.Start, end: n.End, attributes: n.Attributes}); ok {
				return d
			}
		}
		return p.printTag(n, &n.Tag, nil)
	case *ast.InlineComponent:
		return p.printTag(n, &n.Tag, n.Expression)
	case *ast.Slot:
		return p.printTag(n, &n.Tag, nil)
	case *ast.Window:
		return p.printTag(n, &n.Tag, nil)
	case *ast.Head:
		return p.printTag(n, &n.Tag, nil)
	case *ast.Title:
		return p.printTag(n, &n.Tag, nil)
	case *ast.Options:
		return p.printVoidTag(&n.Tag)
	case *ast.Body:
		return p.printVoidTag(&n.Tag)
	case *ast.Identifier:
		return doc.Text(n.Name)
	case *ast.Expression:
		return p.printExpr(n)
	case *ast.Attribute:
		return p.printAttribute(n)
	case *ast.AttributeShorthand:
		return doc.Concat(doc.Text("{"), p.printExpr(n.Expression), doc.Text("}"))
	case *ast.MustacheTag:
		return doc.Concat(doc.Text("{"), p.printExpr(n.Expression), doc.Text("}"))
	case *ast.RawMustacheTag:
		return doc.Concat(doc.Text("{@html "), p.printExpr(n.Expression), doc.Text("}"))
	case *ast.Spread:
		return doc.Concat(doc.Line{}, doc.Text("{..."), p.printExpr(n.Expression), doc.Text("}"))
	case *ast.IfBlock:
		return p.printIf(n)
	case *ast.ElseBlock:
		return p.printElse(n, parent)
	case *ast.EachBlock:
		return p.printEach(n)
	case *ast.AwaitBlock:
		return p.printAwait(n)
	case *ast.PendingBlock:
		return p.printChildren(n.Children, n, true)
	case *ast.ThenBlock:
		return p.printChildren(n.Children, n, true)
	case *ast.CatchBlock:
		return p.printChildren(n.Children, n, true)
	case *ast.EventHandler:
		return p.directive("on:", n.Name, n.Modifiers, n.Expression, false)
	case *ast.Binding:
		return p.directive("bind:", n.Name, nil, n.Expression, true)
	case *ast.Class:
		return p.directive("class:", n.Name, nil, n.Expression, true)
	case *ast.Let:
		return p.directive("let:", n.Name, nil, n.Expression, true)
	case *ast.Action:
		return p.directive("use:", n.Name, nil, n.Expression, false)
	case *ast.Animation:
		return p.directive("animate:", n.Name, nil, n.Expression, false)
	case *ast.Transition:
		kind := "out:"
		switch {
		case n.Intro && n.Outro:
			kind = "transition:"
		case n.Intro:
			kind = "in:"
		}
		return p.directive(kind, n.Name, n.Modifiers, n.Expression, false)
	case *ast.Ref:
		return doc.Concat(doc.Line{}, doc.Text("ref:"+n.Name))
	case *ast.DebugTag:
		if len(n.Identifiers) == 0 {
			return doc.Text("{@debug}")
		}
		ids := make([]doc.Doc, len(n.Identifiers))
		for i, id := range n.Identifiers {
			if id.Name != "" {
				ids[i] = doc.Text(id.Name)
			} else {
				ids[i] = p.printExpr(id)
			}
		}
		return doc.Concat(doc.Text("{@debug "), doc.Join(doc.Text(", "), ids), doc.Text("}"))
	case *ast.Comment:
		return doc.Group(doc.Concat(doc.Text("<!--"), doc.Text(snip.Unsnip(n.Data)), doc.Text("-->")))
	case *ast.Script:
		return p.topLevelScript(n)
	case *ast.Style:
		return p.topLevelStyle(n)
	}

	start, end := n.Span()
	p.fail(&UnknownNodeError{Kind: n.Kind(), Start: start, End: end, Dump: dump(n)})
	return doc.Empty
}

// printTag prints Element, InlineComponent, Slot, Window, Head and Title.
// this is the target of a dynamic component.
func (p *printer) printTag(n ast.Node, t *ast.Tag, this *ast.Expression) doc.Doc {
	empty := isEmptyChildren(t.Children)
	_, isElement := n.(*ast.Element)
	selfClosing := empty && (!p.opt.StrictMode || !isElement || voidTags[t.Name])

	attrs := make([]doc.Doc, 0, len(t.Attributes)+2)
	if this != nil {
		attrs = append(attrs, doc.Line{}, doc.Text("this="), p.openBrace(), p.printExpr(this), p.closeBrace())
	}
	for _, a := range t.Attributes {
		attrs = append(attrs, p.print(a, n))
	}
	if p.opt.BracketNewLine {
		if selfClosing {
			attrs = append(attrs, doc.Dedent(doc.Line{}))
		} else {
			attrs = append(attrs, doc.Dedent(doc.Softline))
		}
	}

	parts := []doc.Doc{
		doc.Text("<" + t.Name),
		doc.Indent(doc.Group(doc.Concat(attrs...))),
	}
	switch {
	case selfClosing:
		if !p.opt.BracketNewLine {
			parts = append(parts, doc.Text(" "))
		}
		parts = append(parts, doc.Text("/>"))
	case empty:
		parts = append(parts, doc.Text(">"), doc.Text("</"+t.Name+">"))
	default:
		parts = append(parts,
			doc.Text(">"),
			doc.Indent(p.printChildren(t.Children, n, true)),
			doc.Text("</"+t.Name+">"),
		)
	}
	return doc.Group(doc.Concat(parts...))
}

// printVoidTag prints Options and Body: attributes only, always self-closing.
func (p *printer) printVoidTag(t *ast.Tag) doc.Doc {
	attrs := make([]doc.Doc, len(t.Attributes))
	for i, a := range t.Attributes {
		attrs[i] = p.print(a, nil)
	}
	return doc.Group(doc.Concat(
		doc.Text("<"+t.Name),
		doc.Indent(doc.Group(doc.Concat(attrs...))),
		doc.Text(" />"),
	))
}

func (p *printer) openBrace() doc.Doc {
	if p.opt.StrictMode {
		return doc.Text(`"{`)
	}
	return doc.Text("{")
}

func (p *printer) closeBrace() doc.Doc {
	if p.opt.StrictMode {
		return doc.Text(`}"`)
	}
	return doc.Text("}")
}

func (p *printer) printAttribute(a *ast.Attribute) doc.Doc {
	if len(a.Value) == 1 {
		switch v := a.Value[0].(type) {
		case *ast.MustacheTag:
			if v.Expression.IsIdentifier(a.Name) {
				return doc.Concat(doc.Line{}, doc.Text("{"+a.Name+"}"))
			}
		case *ast.AttributeShorthand:
			return doc.Concat(doc.Line{}, doc.Text("{"+a.Name+"}"))
		}
	}

	parts := []doc.Doc{doc.Line{}, doc.Text(a.Name)}
	if a.Value == nil {
		return doc.Concat(parts...)
	}
	_, loneMustache := singleValue(a.Value).(*ast.MustacheTag)
	quote := ""
	if !loneMustache || p.opt.StrictMode {
		quote = `"`
		for _, v := range a.Value {
			if t, ok := v.(*ast.Text); ok && strings.Contains(t.Raw, `"`) {
				quote = "'"
				break
			}
		}
	}
	parts = append(parts, doc.Text("="+quote))
	for _, v := range a.Value {
		if t, ok := v.(*ast.Text); ok {
			parts = append(parts, doc.Text(t.Raw))
			continue
		}
		parts = append(parts, p.print(v, a))
	}
	parts = append(parts, doc.Text(quote))
	return doc.Concat(parts...)
}

func singleValue(list []ast.Node) ast.Node {
	if len(list) == 1 {
		return list[0]
	}
	return nil
}

// directive prints prefix:name|mods=value. With shorthand set, the value is
// omitted when it is the identifier name.
func (p *printer) directive(prefix, name string, modifiers []string, e *ast.Expression, shorthand bool) doc.Doc {
	parts := []doc.Doc{doc.Line{}, doc.Text(prefix + name)}
	if len(modifiers) > 0 {
		parts = append(parts, doc.Text("|"+strings.Join(modifiers, "|")))
	}
	if e != nil && !(shorthand && e.IsIdentifier(name)) {
		parts = append(parts, doc.Text("="), p.openBrace(), p.printExpr(e), p.closeBrace())
	}
	return doc.Concat(parts...)
}

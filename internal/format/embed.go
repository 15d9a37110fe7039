package format

import (
	"strings"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/attrs"
	"sveltefmt/internal/doc"
	"sveltefmt/internal/snip"
)

// Language selects the sub-language formatter for embedded text.
type Language uint8

const (
	LangExpression   Language = iota // parenthesised JS expression
	LangTSExpression                 // expression in a TypeScript component
	LangJS
	LangTS
	LangCSS
	LangRaw // unknown script type or preprocessor style; only re-indented
)

func (l Language) String() string {
	switch l {
	case LangExpression:
		return "expression"
	case LangTSExpression:
		return "ts-expression"
	case LangJS:
		return "javascript"
	case LangTS:
		return "typescript"
	case LangCSS:
		return "css"
	case LangRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// EmbedFormatter formats embedded text. Calls may nest and must not share
// mutable state.
type EmbedFormatter interface {
	Format(text string, lang Language) (doc.Doc, error)
}

// printExpr prints an expression through the embedded formatter on a
// single line.
func (p *printer) printExpr(e *ast.Expression) doc.Doc {
	if e == nil {
		return doc.Empty
	}
	if e.Start == e.End {
		return doc.Text(e.Name)
	}
	lang := LangExpression
	if p.ts {
		lang = LangTSExpression
	}
	d, err := p.embed.Format("("+p.slice(e.Start, e.End)+")", lang)
	if err != nil {
		p.fail(&EmbedError{Lang: lang, Start: e.Start, End: e.End, Err: err})
		return doc.Empty
	}
	return doc.RemoveLines(d)
}

// carrier is a script or style tag whose body was snipped.
type carrier struct {
	tag        string
	start, end int
	attributes []ast.Node
}

// printCarrier formats the snipped body of a script or style tag and splices
// it back between the tags. ok is false when the tag has no content
// attribute.
func (p *printer) printCarrier(c carrier) (d doc.Doc, ok bool) {
	var (
		encoded string
		found   bool
		printed []ast.Node
	)
	for _, a := range c.attributes {
		if attr, isAttr := a.(*ast.Attribute); isAttr && attr.Name == snip.Marker {
			encoded, found = attrs.Text(attr), true
			continue
		}
		printed = append(printed, a)
	}
	if !found {
		return nil, false
	}

	lang := carrierLanguage(c.tag, printed)
	content, err := snip.Decode(encoded)
	if err != nil {
		p.fail(&EmbedError{Lang: lang, Tag: c.tag, Start: c.start, End: c.end, Err: err})
		return doc.Empty, true
	}

	attrDocs := make([]doc.Doc, 0, len(printed))
	for _, a := range printed {
		attrDocs = append(attrDocs, p.print(a, nil))
	}
	open := doc.Concat(doc.Text("<"+c.tag), doc.Indent(doc.Group(doc.Concat(attrDocs...))), doc.Text(">"))
	closing := doc.Text("</" + c.tag + ">")

	if strings.TrimSpace(content) == "" {
		return doc.Group(doc.Concat(open, closing)), true
	}
	body, err := p.embed.Format(content, lang)
	if err != nil {
		p.fail(&EmbedError{Lang: lang, Tag: c.tag, Start: c.start, End: c.end, Err: err})
		return doc.Empty, true
	}
	return doc.Group(doc.Concat(
		open,
		doc.Indent(doc.Concat(doc.Hardline, doc.TrimTrailingLine(body))),
		doc.Hardline,
		closing,
	)), true
}

// topLevelScript prints the instance or module script.
func (p *printer) topLevelScript(s *ast.Script) doc.Doc {
	return p.topLevelCarrier(carrier{tag: "script", start: s.Start, end: s.End, attributes: p.extractAttrs(s.Start, s.End)})
}

func (p *printer) topLevelStyle(s *ast.Style) doc.Doc {
	nodes := s.Attributes
	if !hasMarker(nodes) {
		nodes = p.extractAttrs(s.Start, s.End)
	}
	return p.topLevelCarrier(carrier{tag: "style", start: s.Start, end: s.End, attributes: nodes})
}

func (p *printer) topLevelCarrier(c carrier) doc.Doc {
	d, ok := p.printCarrier(c)
	if !ok {
		p.fail(&EmbedError{Lang: carrierLanguage(c.tag, c.attributes), Tag: c.tag, Start: c.start, End: c.end, Err: ErrMissingContent})
		return doc.Empty
	}
	return d
}

func hasMarker(list []ast.Node) bool {
	for _, a := range list {
		if attr, ok := a.(*ast.Attribute); ok && attr.Name == snip.Marker {
			return true
		}
	}
	return false
}

// carrierLanguage picks the formatter from the lang and type attributes.
func carrierLanguage(tag string, list []ast.Node) Language {
	lang, _ := attrs.Value(list, "lang")
	typ, _ := attrs.Value(list, "type")
	lang, typ = strings.ToLower(lang), strings.ToLower(typ)
	if tag == "style" {
		switch {
		case lang == "" && (typ == "" || typ == "text/css"), lang == "css":
			return LangCSS
		default:
			return LangRaw
		}
	}
	switch {
	case lang == "ts" || lang == "typescript" || typ == "text/typescript" || typ == "application/typescript":
		return LangTS
	case lang == "" || lang == "js" || lang == "javascript":
		switch typ {
		case "", "module", "text/javascript", "application/javascript":
			return LangJS
		}
	}
	return LangRaw
}

// isTypeScript reports whether the instance script is TypeScript.
func (p *printer) isTypeScript(s *ast.Script) bool {
	if s == nil {
		return false
	}
	return carrierLanguage("script", p.extractAttrs(s.Start, s.End)) == LangTS
}

// extractAttrs recovers the attributes of the tag at [start, end).
func (p *printer) extractAttrs(start, end int) []ast.Node {
	list := attrs.Extract(p.slice(start, end), start)
	nodes := make([]ast.Node, len(list))
	for i, a := range list {
		nodes[i] = a
	}
	return nodes
}

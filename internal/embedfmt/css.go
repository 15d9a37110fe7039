package embedfmt

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"sveltefmt/internal/doc"
	"sveltefmt/internal/format"
)

// cssBlock is an open `{` scope while reprinting a stylesheet.
type cssBlock struct {
	header doc.Doc
	items  []doc.Doc
}

func formatCSS(text string) (doc.Doc, error) {
	p := css.NewParser(parse.NewInputString(text), false)
	stack := []*cssBlock{{}}
	var selectors []string

	top := func() *cssBlock { return stack[len(stack)-1] }
	emit := func(d doc.Doc) { top().items = append(top().items, d) }

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && err != io.EOF {
				return nil, syntaxError(format.LangCSS, err)
			}
			if len(stack) > 1 {
				return nil, &SyntaxError{Lang: format.LangCSS, Message: "unclosed block"}
			}
			return cssBlockDoc(stack[0].items), nil
		case css.CommentGrammar:
			emit(doc.Text(strings.TrimSpace(string(data))))
		case css.AtRuleGrammar:
			emit(doc.Text(atRule(data, p.Values()) + ";"))
		case css.BeginAtRuleGrammar:
			stack = append(stack, &cssBlock{header: doc.Text(atRule(data, p.Values()) + " {")})
		case css.QualifiedRuleGrammar:
			selectors = append(selectors, cssValues(p.Values()))
		case css.BeginRulesetGrammar:
			selectors = append(selectors, cssValues(p.Values()))
			parts := make([]doc.Doc, len(selectors))
			for i, s := range selectors {
				parts[i] = doc.Text(s)
			}
			header := doc.Concat(doc.Join(doc.Concat(doc.Text(","), doc.Hardline), parts), doc.Text(" {"))
			selectors = selectors[:0]
			stack = append(stack, &cssBlock{header: header})
		case css.DeclarationGrammar:
			emit(doc.Text(string(data) + ": " + cssValues(p.Values()) + ";"))
		case css.CustomPropertyGrammar:
			emit(doc.Text(string(data) + ": " + strings.TrimSpace(cssValues(p.Values())) + ";"))
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if len(stack) == 1 {
				return nil, &SyntaxError{Lang: format.LangCSS, Message: "unexpected '}'"}
			}
			b := top()
			stack = stack[:len(stack)-1]
			if len(b.items) == 0 {
				emit(doc.Concat(b.header, doc.Text("}")))
				continue
			}
			emit(doc.Concat(
				b.header,
				doc.Indent(doc.Concat(doc.Hardline, doc.Join(doc.Hardline, b.items))),
				doc.Hardline,
				doc.Text("}"),
			))
		case css.TokenGrammar:
			if s := strings.TrimSpace(string(data)); s != "" && s != ";" {
				emit(doc.Text(s))
			}
		}
	}
}

func cssBlockDoc(items []doc.Doc) doc.Doc {
	if len(items) == 0 {
		return doc.Empty
	}
	return doc.Concat(doc.Join(doc.Hardline, items), doc.Hardline)
}

func atRule(name []byte, values []css.Token) string {
	v := cssValues(values)
	if v == "" {
		return string(name)
	}
	return string(name) + " " + v
}

// cssValues joins grammar values, collapsing whitespace runs.
func cssValues(values []css.Token) string {
	var sb strings.Builder
	space := false
	for _, v := range values {
		if v.TokenType == css.WhitespaceToken {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(v.Data)
	}
	return sb.String()
}

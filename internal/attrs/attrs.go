// Package attrs recovers the attribute list of a tag from its raw text.
//
// It is used for script and style carriers whose attributes are not part of
// the parsed tree. The grammar is deliberately small: a tag name followed by
// bare, double-quoted, single-quoted or unquoted attributes.
package attrs

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"

	"sveltefmt/internal/ast"
)

var (
	tagOpenRe   = mustCompile(`<[A-Za-z][A-Za-z0-9:_-]*`)
	attributeRe = mustCompile(`[^\s=>"'/]+(?:="[^"]*"|='[^']*'|=[^\s>"']+)?`)
)

func mustCompile(expr string) *coregex.Regexp {
	re, err := coregex.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("attrs: compile %q: %v", expr, err))
	}
	return re
}

// Extract returns the attributes of the first opening tag in html. base is
// added to every offset so that positions are absolute in the enclosing
// document.
func Extract(html string, base int) []*ast.Attribute {
	loc := tagOpenRe.FindStringIndex(html)
	if loc == nil {
		return nil
	}
	from := loc[1]
	to := tagEnd(html, from)
	body := html[from:to]

	var out []*ast.Attribute
	for _, m := range attributeRe.FindAllStringIndex(body, -1) {
		start, end := from+m[0], from+m[1]
		out = append(out, attribute(html[start:end], base+start))
	}
	return out
}

// tagEnd finds the '>' closing the tag, skipping quoted values.
func tagEnd(html string, from int) int {
	var quote byte
	for i := from; i < len(html); i++ {
		c := html[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return len(html)
}

func attribute(text string, start int) *ast.Attribute {
	attr := &ast.Attribute{Pos: ast.Pos{Start: start, End: start + len(text)}}
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		attr.Name = text
		return attr
	}
	attr.Name = text[:eq]
	value := text[eq+1:]
	valueStart := start + eq + 1
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') {
		value = value[1 : len(value)-1]
		valueStart++
	}
	attr.Value = []ast.Node{&ast.Text{
		Pos:  ast.Pos{Start: valueStart, End: valueStart + len(value)},
		Raw:  value,
		Data: value,
	}}
	return attr
}

// Value returns the text of the named attribute in list, if present.
// Directives and spreads in list are skipped.
func Value(list []ast.Node, name string) (string, bool) {
	for _, n := range list {
		if a, ok := n.(*ast.Attribute); ok && a.Name == name {
			return Text(a), true
		}
	}
	return "", false
}

// Text joins the text parts of an attribute value; expression parts are
// dropped and a bare attribute gives "".
func Text(a *ast.Attribute) string {
	var sb strings.Builder
	for _, v := range a.Value {
		if t, ok := v.(*ast.Text); ok {
			sb.WriteString(t.Data)
		}
	}
	return sb.String()
}

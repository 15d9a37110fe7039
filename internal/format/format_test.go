package format

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/diag"
	"sveltefmt/internal/doc"
	"sveltefmt/internal/snip"
	"sveltefmt/internal/source"
)

// stubEmbed strips expressions and prints script/style bodies as trimmed
// lines.
type stubEmbed struct {
	fail string // text that triggers an error
}

func (s stubEmbed) Format(text string, lang Language) (doc.Doc, error) {
	if s.fail != "" && text == s.fail {
		return nil, errors.New("bad input")
	}
	if lang == LangExpression || lang == LangTSExpression {
		return doc.Text(strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "("), ")"))), nil
	}
	var parts []doc.Doc
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, doc.Text(l))
		}
	}
	return doc.Concat(doc.Join(doc.Hardline, parts), doc.Hardline), nil
}

// fakeParser hands back a fixed tree and records the text it saw.
type fakeParser struct {
	root *ast.Root
	err  error
	seen string
}

func (f *fakeParser) Parse(_ context.Context, text string) (*ast.Root, error) {
	f.seen = text
	return f.root, f.err
}

func printString(t *testing.T, root *ast.Root, text string, opt Options) string {
	t.Helper()
	d, err := Print(root, text, stubEmbed{}, opt)
	if err != nil {
		t.Fatalf("Print: %v", err)
	}
	opt = opt.withDefaults()
	return finalNewline(doc.Render(d, doc.RenderOptions{PrintWidth: opt.PrintWidth, TabWidth: opt.TabWidth}))
}

// ident returns an identifier expression located at name's first
// occurrence in text.
func ident(text, name string) *ast.Expression {
	i := strings.Index(text, name)
	return &ast.Expression{Pos: ast.Pos{Start: i, End: i + len(name)}, Type: "Identifier", Name: name}
}

func textNode(s string) *ast.Text {
	return &ast.Text{Raw: s, Data: s}
}

func fragment(children ...ast.Node) *ast.Root {
	return &ast.Root{HTML: &ast.Fragment{Children: children}}
}

func element(name string, attributes []ast.Node, children ...ast.Node) *ast.Element {
	return &ast.Element{Tag: ast.Tag{Name: name, Attributes: attributes, Children: children}}
}

func TestPrintMarkup(t *testing.T) {
	const text = "a b p v z items item key"
	tests := []struct {
		name string
		root *ast.Root
		opt  Options
		want string
	}{
		{
			name: "paragraph",
			root: fragment(element("p", nil, textNode("c"))),
			want: "<p>c</p>\n",
		},
		{
			name: "text whitespace collapses",
			root: fragment(element("p", nil, textNode("  one\n\n  two  "))),
			want: "<p>one two</p>\n",
		},
		{
			name: "else if collapses",
			root: fragment(&ast.IfBlock{
				Expression: ident(text, "a"),
				Children:   []ast.Node{textNode("x")},
				Else: &ast.ElseBlock{Children: []ast.Node{&ast.IfBlock{
					Expression: ident(text, "b"),
					Children:   []ast.Node{textNode("y")},
				}}},
			}),
			want: "{#if a}x{:else if b}y{/if}\n",
		},
		{
			name: "else if kept nested inside each",
			root: fragment(&ast.EachBlock{
				Expression: ident(text, "items"),
				Context:    &ast.Expression{Type: "Identifier", Name: "item"},
				Children:   []ast.Node{textNode("x")},
				Else: &ast.ElseBlock{Children: []ast.Node{&ast.IfBlock{
					Expression: ident(text, "b"),
					Children:   []ast.Node{textNode("y")},
				}}},
			}),
			want: "{#each items as item}\n  x\n{:else}\n  {#if b}y{/if}\n{/each}\n",
		},
		{
			name: "each with index and key",
			root: fragment(&ast.EachBlock{
				Expression: ident(text, "items"),
				Context:    ident(text, "item"),
				Index:      "i",
				Key:        ident(text, "key"),
				Children:   []ast.Node{textNode("x")},
			}),
			want: "{#each items as item, i (key)}x{/each}\n",
		},
		{
			name: "await then only",
			root: fragment(&ast.AwaitBlock{
				Expression: ident(text, "p"),
				Value:      &ast.Expression{Type: "Identifier", Name: "v"},
				Pending:    &ast.PendingBlock{Children: []ast.Node{textNode("\n")}},
				Then:       &ast.ThenBlock{Children: []ast.Node{textNode("ok")}},
				Catch:      &ast.CatchBlock{},
			}),
			want: "{#await p then v}ok{/await}\n",
		},
		{
			name: "await full",
			root: fragment(&ast.AwaitBlock{
				Expression: ident(text, "p"),
				Value:      &ast.Expression{Type: "Identifier", Name: "v"},
				Error:      &ast.Expression{Type: "Identifier", Name: "e"},
				Pending:    &ast.PendingBlock{Children: []ast.Node{textNode("wait")}},
				Then:       &ast.ThenBlock{Children: []ast.Node{textNode("ok")}},
				Catch:      &ast.CatchBlock{Children: []ast.Node{textNode("no")}},
			}),
			want: "{#await p}wait{:then v}ok{:catch e}no{/await}\n",
		},
		{
			name: "await catch only",
			root: fragment(&ast.AwaitBlock{
				Expression: ident(text, "p"),
				Value:      &ast.Expression{Type: "Identifier", Name: "v"},
				Error:      &ast.Expression{Type: "Identifier", Name: "e"},
				Pending:    &ast.PendingBlock{},
				Then:       &ast.ThenBlock{Children: []ast.Node{textNode("ok")}},
				Catch:      &ast.CatchBlock{Children: []ast.Node{textNode("no")}},
			}),
			want: "{#await p then v}ok{:catch e}no{/await}\n",
		},
		{
			name: "nested block breaks parent",
			root: fragment(element("div", nil,
				textNode("\n  "),
				element("span", nil, textNode("a")),
				textNode("\n"),
			)),
			want: "<div>\n  <span>a</span>\n</div>\n",
		},
		{
			name: "blank line between blocks survives",
			root: fragment(
				element("p", nil, textNode("a")),
				textNode("\n\n\n"),
				element("p", nil, textNode("b")),
				textNode("\n"),
				element("p", nil, textNode("c")),
			),
			want: "<p>a</p>\n\n<p>b</p>\n<p>c</p>\n",
		},
		{
			name: "mustache inside text",
			root: fragment(element("p", nil,
				textNode("a "),
				&ast.MustacheTag{Expression: ident(text, "b")},
				textNode("! "),
			)),
			want: "<p>a {b}!</p>\n",
		},
		{
			name: "self closing non strict",
			root: fragment(element("div", nil)),
			want: "<div />\n",
		},
		{
			name: "strict keeps non-void open",
			root: fragment(element("div", nil), element("br", nil)),
			opt:  Options{StrictMode: true},
			want: "<div></div>\n<br />\n",
		},
		{
			name: "bracket new line self closing",
			root: fragment(element("br", nil)),
			opt:  Options{BracketNewLine: true},
			want: "<br />\n",
		},
		{
			name: "empty fragment",
			root: fragment(textNode("\n\n")),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := printString(t, tt.root, text, tt.opt); got != tt.want {
				t.Fatalf("Print:\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

func TestPrintAttributes(t *testing.T) {
	const text = "<input {x} y={z} />"
	x, z := ident(text, "x"), ident(text, "z")
	attrs := []ast.Node{
		&ast.Attribute{Name: "x", Value: []ast.Node{&ast.MustacheTag{Expression: x}}},
		&ast.Attribute{Name: "y", Value: []ast.Node{&ast.MustacheTag{Expression: z}}},
	}
	root := fragment(element("input", attrs))

	if got, want := printString(t, root, text, Options{}), "<input {x} y={z} />\n"; got != want {
		t.Fatalf("non-strict:\nwant %q\ngot  %q", want, got)
	}
	if got, want := printString(t, root, text, Options{StrictMode: true}), "<input {x} y=\"{z}\" />\n"; got != want {
		t.Fatalf("strict:\nwant %q\ngot  %q", want, got)
	}
}

func TestPrintAttributeValues(t *testing.T) {
	const text = "cls on"
	tests := []struct {
		name string
		attr ast.Node
		want string
	}{
		{"boolean", &ast.Attribute{Name: "disabled"}, "<a disabled />\n"},
		{"empty", &ast.Attribute{Name: "alt", Value: []ast.Node{}}, "<a alt=\"\" />\n"},
		{"raw text", &ast.Attribute{Name: "title", Value: []ast.Node{textNode("a  b")}}, "<a title=\"a  b\" />\n"},
		{"single quotes", &ast.Attribute{Name: "title", Value: []ast.Node{textNode(`say "hi"`)}}, "<a title='say \"hi\"' />\n"},
		{"mixed", &ast.Attribute{Name: "class", Value: []ast.Node{textNode("a "), &ast.MustacheTag{Expression: ident(text, "cls")}}}, "<a class=\"a {cls}\" />\n"},
		{"shorthand node", &ast.Attribute{Name: "cls", Value: []ast.Node{&ast.AttributeShorthand{Expression: ident(text, "cls")}}}, "<a {cls} />\n"},
		{"binding shorthand", &ast.Binding{Name: "on", Expression: ident(text, "on")}, "<a bind:on />\n"},
		{"binding value", &ast.Binding{Name: "value", Expression: ident(text, "cls")}, "<a bind:value={cls} />\n"},
		{"class directive", &ast.Class{Name: "on", Expression: ident(text, "on")}, "<a class:on />\n"},
		{"let without value", &ast.Let{Name: "item"}, "<a let:item />\n"},
		{"event modifiers", &ast.EventHandler{Name: "click", Modifiers: []string{"once", "preventDefault"}, Expression: ident(text, "on")}, "<a on:click|once|preventDefault={on} />\n"},
		{"forwarded event", &ast.EventHandler{Name: "click"}, "<a on:click />\n"},
		{"transition both", &ast.Transition{Name: "fade", Intro: true, Outro: true}, "<a transition:fade />\n"},
		{"transition in", &ast.Transition{Name: "fly", Intro: true, Expression: ident(text, "cls")}, "<a in:fly={cls} />\n"},
		{"transition out", &ast.Transition{Name: "fly"}, "<a out:fly />\n"},
		{"action", &ast.Action{Name: "tip", Expression: ident(text, "cls")}, "<a use:tip={cls} />\n"},
		{"animation", &ast.Animation{Name: "flip"}, "<a animate:flip />\n"},
		{"spread", &ast.Spread{Expression: ident(text, "cls")}, "<a {...cls} />\n"},
		{"ref", &ast.Ref{Name: "node"}, "<a ref:node />\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := fragment(element("a", []ast.Node{tt.attr}))
			if got := printString(t, root, text, Options{}); got != tt.want {
				t.Fatalf("attribute:\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

func TestPrintSpecialTags(t *testing.T) {
	const text = "Thing html a b"
	tests := []struct {
		name string
		root *ast.Root
		want string
	}{
		{
			name: "dynamic component",
			root: fragment(&ast.InlineComponent{Tag: ast.Tag{Name: "svelte:component"}, Expression: ident(text, "Thing")}),
			want: "<svelte:component this={Thing} />\n",
		},
		{
			name: "options",
			root: fragment(&ast.Options{Tag: ast.Tag{Name: "svelte:options", Attributes: []ast.Node{
				&ast.Attribute{Name: "immutable"},
			}}}),
			want: "<svelte:options immutable />\n",
		},
		{
			name: "raw html",
			root: fragment(&ast.RawMustacheTag{Expression: ident(text, "html")}),
			want: "{@html html}\n",
		},
		{
			name: "debug",
			root: fragment(&ast.DebugTag{Identifiers: []*ast.Expression{ident(text, "a"), ident(text, "b")}}),
			want: "{@debug a, b}\n",
		},
		{
			name: "bare debug",
			root: fragment(&ast.DebugTag{}),
			want: "{@debug}\n",
		},
		{
			name: "comment is unsnipped",
			root: fragment(&ast.Comment{Data: " <script " + snip.Marker + `="YQ==">{}</script> `}),
			want: "<!-- <script>a</script> -->\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := printString(t, tt.root, text, Options{}); got != tt.want {
				t.Fatalf("Print:\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

func TestSortOrder(t *testing.T) {
	text := snip.Preprocess("<script>a</script>\n<style>b</style>\n<p>c</p>")
	scriptEnd := strings.Index(text, "</script>") + len("</script>")
	styleStart := strings.Index(text, "<style")
	styleEnd := strings.Index(text, "</style>") + len("</style>")

	root := &ast.Root{
		Instance: &ast.Script{Pos: ast.Pos{Start: 0, End: scriptEnd}, Context: "default"},
		CSS:      &ast.Style{Pos: ast.Pos{Start: styleStart, End: styleEnd}},
		HTML:     &ast.Fragment{Children: []ast.Node{element("p", nil, textNode("c"))}},
	}

	tests := []struct {
		order string
		want  string
	}{
		{"styles-markup-scripts", "<style>\n  b\n</style>\n<p>c</p>\n\n<script>\n  a\n</script>\n"},
		{"scripts-styles-markup", "<script>\n  a\n</script>\n<style>\n  b\n</style>\n<p>c</p>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			if got := printString(t, root, text, Options{SortOrder: tt.order}); got != tt.want {
				t.Fatalf("Print:\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

func TestModuleScriptFirst(t *testing.T) {
	text := snip.Preprocess(`<script context="module">m</script><script>i</script>`)
	second := strings.LastIndex(text, "<script")
	root := &ast.Root{
		Module:   &ast.Script{Pos: ast.Pos{Start: 0, End: second}, Context: "module"},
		Instance: &ast.Script{Pos: ast.Pos{Start: second, End: len(text)}, Context: "default"},
	}
	want := "<script context=\"module\">\n  m\n</script>\n<script>\n  i\n</script>\n"
	if got := printString(t, root, text, Options{}); got != want {
		t.Fatalf("Print:\nwant %q\ngot  %q", want, got)
	}
}

func TestEmptyScriptBody(t *testing.T) {
	text := snip.Preprocess(`<script lang="ts"></script>`)
	root := &ast.Root{Instance: &ast.Script{Pos: ast.Pos{Start: 0, End: len(text)}}}
	if got, want := printString(t, root, text, Options{}), "<script lang=\"ts\"></script>\n"; got != want {
		t.Fatalf("Print:\nwant %q\ngot  %q", want, got)
	}
}

func TestCarrierLanguage(t *testing.T) {
	attr := func(name, value string) ast.Node {
		return &ast.Attribute{Name: name, Value: []ast.Node{textNode(value)}}
	}
	tests := []struct {
		tag   string
		attrs []ast.Node
		want  Language
	}{
		{"script", nil, LangJS},
		{"script", []ast.Node{attr("lang", "ts")}, LangTS},
		{"script", []ast.Node{attr("lang", "typescript")}, LangTS},
		{"script", []ast.Node{attr("type", "module")}, LangJS},
		{"script", []ast.Node{attr("type", "text/x-template")}, LangRaw},
		{"script", []ast.Node{attr("lang", "coffee")}, LangRaw},
		{"style", nil, LangCSS},
		{"style", []ast.Node{attr("lang", "scss")}, LangRaw},
		{"style", []ast.Node{attr("type", "text/css")}, LangCSS},
	}
	for _, tt := range tests {
		if got := carrierLanguage(tt.tag, tt.attrs); got != tt.want {
			t.Fatalf("carrierLanguage(%s, %v) = %s, want %s", tt.tag, tt.attrs, got, tt.want)
		}
	}
}

func TestUnknownNode(t *testing.T) {
	root := fragment(&ast.Unknown{Pos: ast.Pos{Start: 3, End: 9}, Type: "Wibble", Raw: []byte(`{"type":"Wibble"}`)})
	_, err := Print(root, "", stubEmbed{}, Options{})
	var unk *UnknownNodeError
	if !errors.As(err, &unk) {
		t.Fatalf("expected *UnknownNodeError, got %v", err)
	}
	if unk.Kind != "Wibble" || unk.Dump != `{"type":"Wibble"}` || unk.Code() != diag.FmtUnknownNode {
		t.Fatalf("unexpected error: %+v", unk)
	}
}

func TestBadSortOrder(t *testing.T) {
	for _, order := range []string{"scripts-styles", "scripts-styles-styles", "a-b-c"} {
		if _, err := ParseSortOrder(order); err == nil {
			t.Fatalf("ParseSortOrder(%q) should fail", order)
		}
	}
}

func TestFormatFileLocatesEmbedErrors(t *testing.T) {
	src := "\n\n<p>{oops}</p>\n"
	fs := source.NewFileSet()
	id := fs.AddVirtual("App.svelte", []byte(src))
	sf := fs.Get(id)

	pre := snip.Preprocess(src) // "<p>{oops}</p>"
	parser := &fakeParser{root: fragment(element("p", nil, &ast.MustacheTag{Expression: ident(pre, "oops")}))}
	deps := Deps{Parser: parser, Embed: stubEmbed{fail: "(oops)"}}

	_, err := FormatFile(context.Background(), sf, deps, Options{})
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SourceError, got %v", err)
	}
	if parser.seen != pre {
		t.Fatalf("parser saw %q, want %q", parser.seen, pre)
	}
	start := strings.Index(src, "oops")
	if int(se.Span.Start) != start || int(se.Span.End) != start+len("oops") {
		t.Fatalf("span = %v, want %d-%d", se.Span, start, start+4)
	}
	if se.Code() != diag.FmtEmbedExpression {
		t.Fatalf("code = %v", se.Code())
	}
}

func TestFormatAndIdempotence(t *testing.T) {
	src := "<p>c</p>"
	parser := &fakeParser{root: fragment(element("p", nil, textNode("c")))}
	deps := Deps{Parser: parser, Embed: stubEmbed{}}

	out, err := Format(context.Background(), src, deps, Options{})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if out != "<p>c</p>\n" {
		t.Fatalf("Format = %q", out)
	}
	if err := CheckIdempotent(context.Background(), []byte(out), deps, Options{}); err != nil {
		t.Fatalf("CheckIdempotent: %v", err)
	}

	parser.root = fragment(element("p", nil, textNode("d")))
	err = CheckIdempotent(context.Background(), []byte(out), deps, Options{})
	var ne *NotIdempotentError
	if !errors.As(err, &ne) || ne.Line != 1 {
		t.Fatalf("expected *NotIdempotentError on line 1, got %v", err)
	}
}

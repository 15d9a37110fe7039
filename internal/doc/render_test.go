package doc

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		doc  Doc
		opt  RenderOptions
		want string
	}{
		{
			name: "group fits",
			doc:  Group(Concat(Text("a"), Line{}, Text("b"))),
			want: "a b",
		},
		{
			name: "group breaks when too wide",
			doc:  Group(Concat(Text("a"), Line{}, Text("bb"))),
			opt:  RenderOptions{PrintWidth: 3},
			want: "a\nbb",
		},
		{
			name: "softline prints nothing in flat mode",
			doc:  Group(Concat(Text("<p>"), Softline, Text("x"), Softline, Text("</p>"))),
			want: "<p>x</p>",
		},
		{
			name: "fit check looks past the group to the rest of the line",
			doc:  Concat(Group(Concat(Text("aaa"), Line{}, Text("bbb"))), Text("cccc")),
			opt:  RenderOptions{PrintWidth: 8},
			want: "aaa\nbbbcccc",
		},
		{
			name: "indent",
			doc:  Concat(Text("{"), Indent(Concat(Hardline, Text("x"))), Hardline, Text("}")),
			want: "{\n  x\n}",
		},
		{
			name: "dedent returns to the enclosing level",
			doc:  Concat(Text("a"), Indent(Concat(Hardline, Text("b"), Dedent(Concat(Hardline, Text("c")))))),
			want: "a\n  b\nc",
		},
		{
			name: "tabs",
			doc:  Concat(Text("a"), Indent(Concat(Hardline, Text("x")))),
			opt:  RenderOptions{UseTabs: true},
			want: "a\n\tx",
		},
		{
			name: "trailing blanks are trimmed before a break",
			doc:  Concat(Text("a "), Hardline, Text("b"), Indent(Concat(Hardline, Hardline, Text("x")))),
			want: "a\nb\n\n  x",
		},
		{
			name: "break parent forces the group to break",
			doc:  Group(Concat(Text("a"), Line{}, Text("b"), BreakParent)),
			want: "a\nb",
		},
		{
			name: "break propagates through nested groups",
			doc:  Group(Concat(Text("x"), Line{}, Group(Concat(Text("y"), BreakParent)))),
			want: "x\ny",
		},
		{
			name: "explicit break flag",
			doc:  &GroupDoc{Contents: Concat(Text("a"), Line{}, Text("b")), Break: true},
			want: "a\nb",
		},
		{
			name: "fill wraps only where needed",
			doc: Fill([]Doc{
				Text("aaaa"), Line{}, Text("bbbb"), Line{}, Text("cccc"),
			}),
			opt:  RenderOptions{PrintWidth: 10},
			want: "aaaa bbbb\ncccc",
		},
		{
			name: "wide runes count as two cells",
			doc:  Group(Concat(Text("日本"), Line{}, Text("語"))),
			opt:  RenderOptions{PrintWidth: 5},
			want: "日本\n語",
		},
		{
			name: "literal line resets the column",
			doc:  Concat(Text("a"), Indent(Concat(Hardline, Text("`x  "), Literalline, Text("y`")))),
			want: "a\n  `x  \ny`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.doc, tt.opt)
			if got != tt.want {
				t.Fatalf("render mismatch:\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

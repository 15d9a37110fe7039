package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeRoot(t *testing.T) {
	data := []byte(`{
	  "html": {"type": "Fragment", "start": 0, "end": 30, "children": [
	    {"type": "Element", "start": 0, "end": 20, "name": "input", "attributes": [
	      {"type": "Attribute", "start": 7, "end": 15, "name": "disabled", "value": true},
	      {"type": "Attribute", "start": 16, "end": 19, "name": "a", "value": [
	        {"type": "Text", "start": 18, "end": 19, "raw": "x", "data": "x"}
	      ]}
	    ], "children": []},
	    {"type": "Text", "start": 20, "end": 22, "raw": "\n\n", "data": "\n\n"},
	    {"type": "Wibble", "start": 22, "end": 30}
	  ]},
	  "css": null,
	  "instance": {"type": "Script", "start": 40, "end": 80, "context": "default", "content": {}},
	  "module": null
	}`)

	root, err := DecodeRoot(data)
	if err != nil {
		t.Fatalf("DecodeRoot: %v", err)
	}
	if root.CSS != nil || root.Module != nil {
		t.Fatalf("expected nil css/module, got %+v", root)
	}
	if root.Instance == nil || root.Instance.Context != "default" || root.Instance.End != 80 {
		t.Fatalf("instance = %+v", root.Instance)
	}
	if len(root.HTML.Children) != 3 {
		t.Fatalf("children = %d", len(root.HTML.Children))
	}

	el, ok := root.HTML.Children[0].(*Element)
	if !ok {
		t.Fatalf("child 0 is %T", root.HTML.Children[0])
	}
	want := []Node{
		&Attribute{Pos: Pos{7, 15}, Name: "disabled"},
		&Attribute{Pos: Pos{16, 19}, Name: "a", Value: []Node{&Text{Pos: Pos{18, 19}, Raw: "x", Data: "x"}}},
	}
	if diff := cmp.Diff(want, el.Attributes); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}

	unk, ok := root.HTML.Children[2].(*Unknown)
	if !ok || unk.Kind() != "Wibble" || len(unk.Raw) == 0 {
		t.Fatalf("child 2 = %#v", root.HTML.Children[2])
	}
}

func TestDecodePatternForms(t *testing.T) {
	tests := []struct {
		name string
		json string
		want *Expression
	}{
		{
			name: "string",
			json: `{"type": "EachBlock", "start": 0, "end": 1, "expression": {"type": "Identifier", "start": 7, "end": 12, "name": "items"}, "context": "item", "children": []}`,
			want: &Expression{Type: "Identifier", Name: "item"},
		},
		{
			name: "pattern",
			json: `{"type": "EachBlock", "start": 0, "end": 1, "expression": {"type": "Identifier", "start": 7, "end": 12, "name": "items"}, "context": {"type": "ObjectPattern", "start": 16, "end": 22}, "children": []}`,
			want: &Expression{Pos: Pos{16, 22}, Type: "ObjectPattern"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := DecodeNode([]byte(tt.json))
			if err != nil {
				t.Fatalf("DecodeNode: %v", err)
			}
			each := n.(*EachBlock)
			if diff := cmp.Diff(tt.want, each.Context); diff != "" {
				t.Fatalf("context mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeAwaitBranches(t *testing.T) {
	data := `{"type": "AwaitBlock", "start": 0, "end": 40,
	  "expression": {"type": "Identifier", "start": 8, "end": 9, "name": "p"},
	  "value": "v", "error": null,
	  "pending": {"type": "PendingBlock", "start": 10, "end": 10, "children": []},
	  "then": {"type": "ThenBlock", "start": 16, "end": 30, "children": [{"type": "Text", "start": 16, "end": 18, "data": "ok"}]},
	  "catch": {"type": "CatchBlock", "start": 30, "end": 30, "children": []}}`
	n, err := DecodeNode([]byte(data))
	if err != nil {
		t.Fatalf("DecodeNode: %v", err)
	}
	aw := n.(*AwaitBlock)
	if aw.Pending == nil || aw.Then == nil || aw.Catch == nil {
		t.Fatalf("missing branch: %+v", aw)
	}
	if !aw.Value.IsIdentifier("v") || aw.Error != nil {
		t.Fatalf("value/error = %+v / %+v", aw.Value, aw.Error)
	}
	text := aw.Then.Children[0].(*Text)
	if text.Raw != "ok" {
		t.Fatalf("raw should default to data, got %q", text.Raw)
	}
}

func TestDecodeBadElse(t *testing.T) {
	data := `{"type": "IfBlock", "start": 0, "end": 1, "else": {"type": "Text", "start": 0, "end": 0, "data": ""}}`
	if _, err := DecodeNode([]byte(data)); err == nil {
		t.Fatalf("expected error for non-ElseBlock else branch")
	}
}

func TestInspectOrder(t *testing.T) {
	frag := &Fragment{Children: []Node{
		&Element{Tag: Tag{Name: "p", Attributes: []Node{&Attribute{Name: "a"}}, Children: []Node{&Text{Data: "x"}}}},
		&IfBlock{Children: []Node{&Text{Data: "y"}}, Else: &ElseBlock{}},
	}}
	var kinds []string
	Inspect(frag, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	want := []string{"Fragment", "Element", "Attribute", "Text", "IfBlock", "Text", "ElseBlock"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("Inspect order (-want +got):\n%s", diff)
	}
}

package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/config"
	"sveltefmt/internal/diag"
	"sveltefmt/internal/driver"
	"sveltefmt/internal/format"
	"sveltefmt/internal/parser"
	"sveltefmt/internal/source"
)

// wordsParser treats the whole text as one text node. "<<" is a parse error.
type wordsParser struct{}

func (wordsParser) Parse(_ context.Context, text string) (*ast.Root, error) {
	if i := strings.Index(text, "<<"); i >= 0 {
		return nil, &parser.Error{Message: "unexpected <", Start: i, End: i + 2}
	}
	return &ast.Root{HTML: &ast.Fragment{Children: []ast.Node{
		&ast.Text{Pos: ast.Pos{End: len(text)}, Raw: text, Data: text},
	}}}, nil
}

func newTestServer(in []byte, out *bytes.Buffer) *Server {
	return NewServer(bytes.NewReader(in), out, ServerOptions{
		Debounce: time.Hour,
		Format: driver.Options{
			NewParser: func(config.Config) format.Parser { return wordsParser{} },
		},
		Log: &bytes.Buffer{},
	})
}

func frame(t *testing.T, msgs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		if err := writeMessage(&buf, []byte(m)); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func readAll(t *testing.T, out []byte) []message {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(out))
	var msgs []message
	for {
		payload, err := readMessage(r)
		if err != nil {
			break
		}
		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode %s: %v", payload, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestSessionFormatting(t *testing.T) {
	uri := pathToURI(filepath.Join(t.TempDir(), "App.svelte"))
	open, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/didOpen",
		"params":  didOpenTextDocumentParams{TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "a   b"}},
	})
	formatting := `{"jsonrpc":"2.0","id":2,"method":"textDocument/formatting","params":{"textDocument":{"uri":"` + uri + `"},"options":{"tabSize":2,"insertSpaces":true}}}`
	in := frame(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"initialized","params":{}}`,
		string(open),
		formatting,
		`{"jsonrpc":"2.0","id":3,"method":"textDocument/formatting","params":{"textDocument":{"uri":"file:///nope.svelte"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"textDocument/hover","params":{}}`,
		`{"jsonrpc":"2.0","id":5,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	)
	var out bytes.Buffer
	err := newTestServer(in, &out).Run(context.Background())
	if !errors.Is(err, ErrExit) {
		t.Fatalf("Run = %v, want ErrExit", err)
	}

	msgs := readAll(t, out.Bytes())
	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want 5", len(msgs))
	}

	var init initializeResult
	if err := json.Unmarshal(msgs[0].Result, &init); err != nil {
		t.Fatal(err)
	}
	if !init.Capabilities.DocumentFormattingProvider || init.ServerInfo.Name != "sveltefmt" {
		t.Fatalf("initialize result = %+v", init)
	}

	var edits []textEdit
	if err := json.Unmarshal(msgs[1].Result, &edits); err != nil {
		t.Fatal(err)
	}
	want := []textEdit{{Range: lspRange{End: position{Line: 0, Character: 5}}, NewText: "a b\n"}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Fatalf("edits mismatch (-want +got):\n%s", diff)
	}

	if msgs[2].Error == nil || msgs[2].Error.Code != codeInvalidParams {
		t.Fatalf("unopened document: %+v", msgs[2])
	}
	if msgs[3].Error == nil || msgs[3].Error.Code != codeMethodNotFound {
		t.Fatalf("unknown method: %+v", msgs[3])
	}
	if string(msgs[4].ID) != "5" || msgs[4].Error != nil {
		t.Fatalf("shutdown: %+v", msgs[4])
	}
}

func TestFormattingFormattedDocument(t *testing.T) {
	uri := pathToURI(filepath.Join(t.TempDir(), "App.svelte"))
	var out bytes.Buffer
	s := newTestServer(nil, &out)
	s.docs.open(uri, "a b\n", 1)
	params, _ := json.Marshal(documentFormattingParams{TextDocument: textDocumentIdentifier{URI: uri}})
	if err := s.dispatch(&message{ID: json.RawMessage("7"), Method: "textDocument/formatting", Params: params}); err != nil {
		t.Fatal(err)
	}
	msgs := readAll(t, out.Bytes())
	if len(msgs) != 1 || string(msgs[0].Result) != "[]" {
		t.Fatalf("want an empty edit list, got %+v", msgs)
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	var out bytes.Buffer
	err := newTestServer(frame(t, `{"jsonrpc":"2.0","method":"exit"}`), &out).Run(context.Background())
	if !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("Run = %v", err)
	}
}

func TestPublishDiagnostics(t *testing.T) {
	uri := pathToURI(filepath.Join(t.TempDir(), "App.svelte"))
	var out bytes.Buffer
	s := newTestServer(nil, &out)

	openParams, _ := json.Marshal(didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "a << b"},
	})
	if err := s.dispatch(&message{Method: "textDocument/didOpen", Params: openParams}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	s.stopTimer()
	s.runDiagnostics()

	msgs := readAll(t, out.Bytes())
	if len(msgs) != 1 || msgs[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("want one publish, got %+v", msgs)
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msgs[0].Params, &params); err != nil {
		t.Fatal(err)
	}
	if params.URI != uri || params.Version == nil || *params.Version != 1 {
		t.Fatalf("publish target = %s v%v", params.URI, params.Version)
	}
	want := []lspDiagnostic{{
		Range:    lspRange{Start: position{Character: 2}, End: position{Character: 4}},
		Severity: 1,
		Code:     diag.SynParseFailed.ID(),
		Source:   "sveltefmt",
		Message:  "parse error: unexpected <",
	}}
	if diff := cmp.Diff(want, params.Diagnostics); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	// fixing the document clears the published diagnostics
	out.Reset()
	changeParams, _ := json.Marshal(didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Range: &lspRange{Start: position{Character: 2}, End: position{Character: 5}}, Text: ""}},
	})
	if err := s.dispatch(&message{Method: "textDocument/didChange", Params: changeParams}); err != nil {
		t.Fatalf("didChange: %v", err)
	}
	s.stopTimer()
	s.runDiagnostics()
	msgs = readAll(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("want one publish, got %d", len(msgs))
	}
	if err := json.Unmarshal(msgs[0].Params, &params); err != nil {
		t.Fatal(err)
	}
	if len(params.Diagnostics) != 0 {
		t.Fatalf("diagnostics not cleared: %+v", params.Diagnostics)
	}
	if doc, _ := s.docs.get(uri); doc.text != "a b" || doc.version != 2 {
		t.Fatalf("document = %+v", doc)
	}

	// clean documents that never had diagnostics publish nothing
	out.Reset()
	s.docs.update(uri, 0, func(text string) string { return text })
	s.runDiagnostics()
	if out.Len() != 0 {
		t.Fatalf("unexpected publish: %s", out.String())
	}
}

func TestPositions(t *testing.T) {
	fs := source.NewFileSet()
	content := "ab\n😀x\n"
	f := fs.Get(fs.AddVirtual("a.svelte", []byte(content)))
	tests := []struct {
		off  int
		want position
	}{
		{0, position{0, 0}},
		{2, position{0, 2}},
		{3, position{1, 0}},
		{7, position{1, 2}}, // after the emoji: two UTF-16 units
		{8, position{1, 3}},
		{100, position{2, 0}},
	}
	for _, tt := range tests {
		if got := positionForOffset(f, uint32(tt.off)); got != tt.want {
			t.Fatalf("positionForOffset(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
	if got := endPosition(content); got != (position{2, 0}) {
		t.Fatalf("endPosition = %+v", got)
	}
	if got := endPosition("x\n😀"); got != (position{1, 2}) {
		t.Fatalf("endPosition = %+v", got)
	}
}

func TestDispatchIgnoresAndRejects(t *testing.T) {
	in := frame(t,
		`{"jsonrpc":"2.0","method":"$/cancelRequest","params":{"id":1}}`,
		`{"jsonrpc":"2.0","id":9,"method":"$/custom"}`,
		`{"jsonrpc":"2.0","method":"workspace/didChangeConfiguration","params":{}}`,
		`{not json`,
		`{"jsonrpc":"2.0","id":10,"method":"textDocument/formatting","params":[1]}`,
	)
	var out bytes.Buffer
	if err := newTestServer(in, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run = %v", err)
	}
	msgs := readAll(t, out.Bytes())
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2: %+v", len(msgs), msgs)
	}
	if msgs[0].Error == nil || msgs[0].Error.Code != codeParseError {
		t.Fatalf("parse error response = %+v", msgs[0])
	}
	if msgs[1].Error == nil || msgs[1].Error.Code != codeInvalidParams || string(msgs[1].ID) != "10" {
		t.Fatalf("invalid params response = %+v", msgs[1])
	}
}

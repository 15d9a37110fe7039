package diag

import (
	"testing"

	"sveltefmt/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	app := fs.Add("/workspace/src/App.svelte", []byte("<p>\n{a b}\n"), 0)
	other := fs.Add("/workspace/src/Nav.svelte", []byte("x\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     FmtEmbedExpression,
			Message:  "expression: unexpected\nidentifier",
			Primary:  source.Span{File: app, Start: 5, End: 8},
			Notes: []Note{
				{Span: source.Span{File: app, Start: 0, End: 3}, Msg: "inside this element"},
			},
		},
		{
			Severity: SevError,
			Code:     SynParseFailed,
			Message:  "unexpected end of input",
			Primary:  source.Span{File: other, Start: 2, End: 2},
		},
	}

	want := "note FMT3004 src/App.svelte:1:1 inside this element\n" +
		"error FMT3004 src/App.svelte:2:2 expression: unexpected identifier\n" +
		"error SYN2001 src/Nav.svelte:2:1 unexpected end of input"

	if got := FormatShortDiagnostics(diags, fs, true); got != want {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(CfgInvalid, source.Span{}, "first")) {
		t.Fatalf("first Add rejected")
	}
	if bag.Add(NewError(CfgInvalid, source.Span{}, "second")) {
		t.Fatalf("second Add accepted past the limit")
	}
	if bag.Len() != 1 || bag.Dropped() != 1 || !bag.HasErrors() {
		t.Fatalf("len=%d dropped=%d errors=%v", bag.Len(), bag.Dropped(), bag.HasErrors())
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		SynParseFailed:   "SYN2001",
		FmtUnknownNode:   "FMT3001",
		IOWriteFileError: "IO4002",
		CfgBadSortOrder:  "CFG5003",
		UnknownCode:      "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Fatalf("%d.ID() = %q, want %q", code, got, want)
		}
	}
}

func TestBagSort(t *testing.T) {
	bag := NewBag(0)
	warn := NewError(CfgUnknownKey, source.Span{File: 0, Start: 4, End: 5}, "w")
	warn.Severity = SevWarning
	bag.Add(NewError(SynParseFailed, source.Span{File: 1, Start: 0, End: 1}, "c"))
	bag.Add(warn)
	bag.Add(NewError(FmtEmbedStyle, source.Span{File: 0, Start: 4, End: 5}, "b"))
	bag.Add(NewError(FmtEmbedScript, source.Span{File: 0, Start: 0, End: 9}, "a"))
	bag.Sort()

	var got string
	for _, d := range bag.Items() {
		got += d.Message
	}
	if got != "abwc" {
		t.Fatalf("order = %q, want %q", got, "abwc")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, SynParseFailed, source.Span{}, "x").
		WithNote(source.Span{Start: 1}, "here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 || len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("bag = %+v", bag.Items())
	}
}

package driver

import (
	"errors"
	"fmt"

	"sveltefmt/internal/config"
	"sveltefmt/internal/diag"
	"sveltefmt/internal/format"
	"sveltefmt/internal/parser"
	"sveltefmt/internal/source"
)

// IOError is a failure to read or write a file.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Code() diag.Code {
	if e.Op == "write" {
		return diag.IOWriteFileError
	}
	return diag.IOLoadFileError
}

// Diagnostic converts a failed result. ok is false for successful results.
func (r Result) Diagnostic() (d diag.Diagnostic, ok bool) {
	if r.Err == nil {
		return diag.Diagnostic{}, false
	}
	code := diag.UnknownCode
	var coded interface{ Code() diag.Code }
	if errors.As(r.Err, &coded) {
		code = coded.Code()
	}
	span := source.SpanOf(r.FileID, 0, 0)
	var se *format.SourceError
	if errors.As(r.Err, &se) {
		span = se.Span
	}
	return diag.NewError(code, span, r.Err.Error()), true
}

// Emit reports every failed result to rep, with hints where the fix is
// outside the file.
func (r *Report) Emit(rep diag.Reporter) {
	for _, res := range r.Results {
		d, ok := res.Diagnostic()
		if !ok {
			continue
		}
		b := diag.ReportError(rep, d.Code, d.Primary, d.Message)
		var unavailable *parser.UnavailableError
		if errors.As(res.Err, &unavailable) {
			b.WithNote(d.Primary, "install the svelte package next to the project or set `parser` in "+config.FileNames[0])
		}
		b.Emit()
	}
}

// Diagnostics collects the diagnostics of every failed result, sorted.
func (r *Report) Diagnostics(maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	r.Emit(diag.BagReporter{Bag: bag})
	bag.Sort()
	return bag
}

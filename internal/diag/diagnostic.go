package diag

import (
	"slices"

	"sveltefmt/internal/source"
)

// Note points at a related location, e.g. the element around a failing
// expression.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one problem found while formatting. Primary is a span in
// the original file, after snip offsets are mapped back.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Primary: primary, Message: msg}
}

// WithNote returns d with a note appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(slices.Clip(d.Notes), Note{Span: sp, Msg: msg})
	return d
}

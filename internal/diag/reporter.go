package diag

import "sveltefmt/internal/source"

// Reporter receives finished diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder collects notes for one diagnostic; Emit hands it over once.
type ReportBuilder struct {
	r    Reporter
	d    Diagnostic
	sent bool
}

// ReportError starts an error diagnostic for r.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{r: r, d: NewError(code, primary, msg)}
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.d = b.d.WithNote(sp, msg)
	return b
}

func (b *ReportBuilder) Emit() {
	if b.sent || b.r == nil {
		return
	}
	b.sent = true
	b.r.Report(b.d)
}

// BagReporter adds reports to Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

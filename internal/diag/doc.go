// Package diag defines the diagnostic model used to report formatting
// failures: a Diagnostic carries a Severity, a stable Code, a message and a
// primary source.Span, plus optional notes.
//
// Producers emit through a Reporter (BagReporter collects into a Bag);
// rendering lives in internal/diagfmt, golden.go keeps the short
// one-line form used by tests.
//
// Не делает: IO, цветной вывод, применение исправлений.
package diag

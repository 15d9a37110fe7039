// Package embedfmt formats the sub-languages embedded in a component:
// script bodies, style bodies and bare template expressions.
//
// Scripts are validated and re-indented rather than fully reprinted; styles
// are reprinted from the CSS grammar stream; expressions are normalised to
// a single line.
package embedfmt

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2"

	"sveltefmt/internal/doc"
	"sveltefmt/internal/format"
)

// SyntaxError is a failure inside embedded text. Line and Column are 1-based
// and relative to the text given to Format.
type SyntaxError struct {
	Lang    format.Language
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %d:%d: %s", e.Lang, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Lang, e.Message)
}

// Formatter implements format.EmbedFormatter. The zero value is ready to use
// and safe for concurrent use.
type Formatter struct{}

var _ format.EmbedFormatter = Formatter{}

// New returns a Formatter.
func New() Formatter { return Formatter{} }

// Format formats text as lang.
func (Formatter) Format(text string, lang format.Language) (doc.Doc, error) {
	switch lang {
	case format.LangExpression, format.LangTSExpression:
		out, err := formatExpression(text, lang == format.LangExpression)
		if err != nil {
			return nil, err
		}
		return doc.Text(out), nil
	case format.LangJS:
		if err := validateJS(text, lang); err != nil {
			return nil, err
		}
		return reindent(text, true), nil
	case format.LangTS:
		return reindent(text, true), nil
	case format.LangCSS:
		return formatCSS(text)
	case format.LangRaw:
		return reindent(text, false), nil
	default:
		return nil, fmt.Errorf("embedfmt: unsupported language %s", lang)
	}
}

func syntaxError(lang format.Language, err error) error {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return &SyntaxError{Lang: lang, Line: perr.Line, Column: perr.Column, Message: perr.Message}
	}
	return &SyntaxError{Lang: lang, Message: err.Error()}
}

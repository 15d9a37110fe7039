package embedfmt

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"sveltefmt/internal/format"
)

func validateJS(text string, lang format.Language) error {
	if _, err := js.Parse(parse.NewInputString(text), js.Options{}); err != nil {
		return syntaxError(lang, err)
	}
	return nil
}

// formatExpression normalises a parenthesised expression to one line:
// whitespace runs become a single space, line comments become block
// comments and string quotes prefer single quotes. The wrapping
// parentheses are removed.
func formatExpression(text string, validate bool) (string, error) {
	if validate {
		if err := validateJS(text, format.LangExpression); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	space := false
	prev, prevData := js.ErrorToken, []byte(nil)
	l := js.NewLexer(parse.NewInputString(text))
	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			if err := l.Err(); err != nil && err != io.EOF {
				return "", syntaxError(format.LangExpression, err)
			}
			break
		}
		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken:
			space = true
			continue
		case js.DivToken, js.DivEqToken:
			if !endsOperand(prev, prevData) {
				tt, data = l.RegExp()
			}
		}

		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false

		switch tt {
		case js.CommentToken, js.CommentLineTerminatorToken:
			sb.WriteString(inlineComment(string(data)))
			// comments are transparent for regex detection
			continue
		case js.StringToken:
			sb.WriteString(preferSingleQuotes(string(data)))
		default:
			sb.Write(data)
		}
		prev, prevData = tt, data
	}

	out := strings.TrimSpace(sb.String())
	if len(out) >= 2 && out[0] == '(' && out[len(out)-1] == ')' {
		out = strings.TrimSpace(out[1 : len(out)-1])
	}
	return out, nil
}

// endsOperand reports whether a '/' after the token is division.
func endsOperand(tt js.TokenType, data []byte) bool {
	if js.IsIdentifier(tt) {
		return true
	}
	if len(data) > 0 && isDigit(data[0]) || len(data) > 1 && data[0] == '.' && isDigit(data[1]) {
		return true // numeric literal
	}
	switch tt {
	case js.StringToken, js.RegExpToken,
		js.TemplateToken, js.TemplateEndToken, js.PrivateIdentifierToken,
		js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.ThisToken, js.SuperToken, js.NullToken, js.TrueToken, js.FalseToken:
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func inlineComment(c string) string {
	if strings.HasPrefix(c, "//") {
		return "/* " + strings.TrimSpace(c[2:]) + " */"
	}
	return strings.Join(strings.Fields(c), " ")
}

// preferSingleQuotes re-quotes a string literal with single quotes unless
// that would need more escapes than the double-quoted form.
func preferSingleQuotes(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	inner := lit[1 : len(lit)-1]
	singles, doubles := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\':
			i++
		case '\'':
			singles++
		case '"':
			doubles++
		}
	}
	quote := byte('\'')
	if singles > doubles {
		quote = '"'
	}

	var sb strings.Builder
	sb.Grow(len(lit) + 2)
	sb.WriteByte(quote)
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner):
			next := inner[i+1]
			if (next == '\'' || next == '"') && next != quote {
				sb.WriteByte(next)
			} else {
				sb.WriteByte(c)
				sb.WriteByte(next)
			}
			i++
		case c == quote:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

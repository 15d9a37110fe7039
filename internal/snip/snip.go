// Package snip hides script and style bodies from the template parser.
//
// Snip moves the body of every <tag>…</tag> into a base64 attribute on the
// opening tag and leaves a short placeholder in its place; Unsnip reverses
// the transform on a raw text window.
package snip

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/coregx/coregex"
)

// Marker is the name of the synthetic content attribute.
const Marker = "✂prettier:content✂"

// ScriptPlaceholder keeps the parser from reading the script as markup.
const ScriptPlaceholder = "{}"

// Patterns keep a case-sensitive literal prefix: coregex then searches
// forward from it. A leading \s* or (?i) leaves only the trailing ">" as a
// literal and the reverse suffix search it picks for that misses matches
// and reports false ones. Whitespace before the marker is consumed by hand.
var (
	unsnipRe = mustCompile(Marker + `="[^"]*">`)

	openMu sync.Mutex
	openRe = map[string]*coregex.Regexp{}
)

func mustCompile(expr string) *coregex.Regexp {
	re, err := coregex.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("snip: compile %q: %v", expr, err))
	}
	return re
}

func openTagRegexp(tag string) *coregex.Regexp {
	openMu.Lock()
	defer openMu.Unlock()
	if re, ok := openRe[tag]; ok {
		return re
	}
	re := mustCompile(`<` + tag + `(?:\s[^>]*)?>`)
	openRe[tag] = re
	return re
}

// Encode returns the attribute value for content.
func Encode(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}

// Decode reverses Encode.
func Decode(value string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("snip: bad content attribute: %w", err)
	}
	return string(b), nil
}

// Snip replaces the body of every tag element in source with placeholder,
// storing the original body in the Marker attribute. Whitespace around
// each element is consumed. Tag names match case-sensitively, as the
// component parser reads them.
func Snip(tag, source, placeholder string) string {
	out, _ := snip(tag, source, placeholder)
	return out
}

func snip(tag, source, placeholder string) (string, stage) {
	re := openTagRegexp(tag)
	closing := "</" + tag + ">"

	var (
		sb     strings.Builder
		st     stage
		cursor int // source offset already emitted
		search int
	)
	for search <= len(source) {
		loc := re.FindStringIndex(source[search:])
		if loc == nil {
			break
		}
		openStart, openEnd := search+loc[0], search+loc[1]
		rel := strings.Index(source[openEnd:], closing)
		if rel < 0 {
			break
		}
		closeStart := openEnd + rel
		closeEnd := closeStart + len(closing)

		start := openStart
		for start > cursor && isSpace(source[start-1]) {
			start--
		}
		end := closeEnd
		for end < len(source) && isSpace(source[end]) {
			end++
		}

		st.copy(&sb, source, cursor, start)

		// `<tag attrs` survives verbatim
		st.copy(&sb, source, openStart, openEnd-1)
		synthetic := " " + Marker + `="` + Encode(source[openEnd:closeStart]) + `">` +
			placeholder + source[closeStart:closeEnd]
		st.synth(&sb, synthetic, openEnd)

		cursor = end
		search = end
	}
	st.copy(&sb, source, cursor, len(source))
	return sb.String(), st
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// Unsnip restores snipped bodies: each Marker attribute is dropped and the
// placeholder up to the next closing tag is replaced by the decoded content.
// Text without the marker is returned unchanged.
func Unsnip(text string) string {
	if !strings.Contains(text, Marker) {
		return text
	}
	locs := unsnipRe.FindAllStringIndex(text, -1)
	var sb strings.Builder
	cursor := 0
	for _, loc := range locs {
		if loc[0] < cursor {
			continue
		}
		value := text[loc[0]+len(Marker)+2 : loc[1]-2]
		content, err := Decode(value)
		if err != nil {
			continue
		}
		rest := strings.Index(text[loc[1]:], "</")
		if rest < 0 {
			continue
		}
		start := loc[0]
		for start > cursor && isSpace(text[start-1]) {
			start--
		}
		sb.WriteString(text[cursor:start])
		sb.WriteByte('>')
		sb.WriteString(content)
		cursor = loc[1] + rest
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}

// Preprocess prepares raw component text for the parser.
func Preprocess(text string) string {
	out, _ := PreprocessMapped(text)
	return out
}

// PreprocessMapped is Preprocess that also returns the offset mapping back to
// text.
func PreprocessMapped(text string) (string, Mapping) {
	trimmed := strings.TrimSpace(text)
	lead := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	var m Mapping
	m.stages = append(m.stages, stage{segs: []segment{{pre: 0, orig: lead, preLen: len(trimmed), origLen: len(trimmed), copied: true}}})

	scripted, st := snip("script", trimmed, ScriptPlaceholder)
	m.stages = append(m.stages, st)
	styled, st := snip("style", scripted, "")
	m.stages = append(m.stages, st)
	return styled, m
}

package format

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/doc"
	"sveltefmt/internal/observ"
	"sveltefmt/internal/snip"
	"sveltefmt/internal/source"
	"sveltefmt/internal/trace"
)

// Parser parses pre-processed component text.
type Parser interface {
	Parse(ctx context.Context, text string) (*ast.Root, error)
}

// Deps are the collaborators of a format call.
type Deps struct {
	Parser Parser
	Embed  EmbedFormatter
	Timer  *observ.Timer // optional
}

type printer struct {
	text  string // the text handed to the parser
	embed EmbedFormatter
	opt   Options
	ts    bool // expressions are TypeScript
	err   error
}

// fail keeps the first error; printing stops contributing output after it.
func (p *printer) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *printer) slice(start, end int) string {
	start = max(0, min(start, len(p.text)))
	end = max(start, min(end, len(p.text)))
	return p.text[start:end]
}

// Print builds the document for root. text must be the pre-processed text
// the tree was parsed from.
func Print(root *ast.Root, text string, embed EmbedFormatter, opt Options) (doc.Doc, error) {
	if root == nil {
		return nil, errors.New("format: nil root")
	}
	if embed == nil {
		return nil, errors.New("format: nil embed formatter")
	}
	opt = opt.withDefaults()
	order, err := ParseSortOrder(opt.SortOrder)
	if err != nil {
		return nil, err
	}
	p := &printer{text: text, embed: embed, opt: opt}
	p.ts = p.isTypeScript(root.Instance)
	d := p.printRoot(root, order)
	if p.err != nil {
		return nil, p.err
	}
	return d, nil
}

func (p *printer) printRoot(root *ast.Root, order []string) doc.Doc {
	var parts []doc.Doc
	for _, section := range order {
		switch section {
		case SectionScripts:
			if root.Module != nil {
				parts = append(parts, p.topLevelScript(root.Module))
			}
			if root.Instance != nil {
				parts = append(parts, p.topLevelScript(root.Instance))
			}
		case SectionStyles:
			if root.CSS != nil {
				parts = append(parts, p.topLevelStyle(root.CSS))
			}
		case SectionMarkup:
			if root.HTML != nil {
				if d := p.print(root.HTML, nil); !doc.IsEmpty(d) {
					parts = append(parts, d)
				}
			}
		}
	}
	return doc.Group(doc.Join(doc.Hardline, parts))
}

// Format formats component source text.
func Format(ctx context.Context, text string, deps Deps, opt Options) (string, error) {
	out, _, err := format(ctx, text, deps, opt)
	return out, err
}

func format(ctx context.Context, text string, deps Deps, opt Options) (string, snip.Mapping, error) {
	if deps.Parser == nil {
		return "", snip.Mapping{}, errors.New("format: nil parser")
	}
	if err := opt.Validate(); err != nil {
		return "", snip.Mapping{}, err
	}
	opt = opt.withDefaults()
	var (
		pre     string
		mapping snip.Mapping
		root    *ast.Root
		d       doc.Doc
		out     string
	)
	phase := func(name string, fn func(ctx context.Context) error) error {
		pctx, sp := trace.Start(ctx, trace.ScopePass, name)
		err := deps.Timer.Track(name, func() error { return fn(pctx) })
		sp.End(err)
		return err
	}

	if err := phase("preprocess", func(context.Context) error {
		pre, mapping = snip.PreprocessMapped(text)
		return nil
	}); err != nil {
		return "", mapping, err
	}
	if err := ctx.Err(); err != nil {
		return "", mapping, err
	}
	if err := phase("parse", func(ctx context.Context) (err error) {
		root, err = deps.Parser.Parse(ctx, pre)
		return err
	}); err != nil {
		return "", mapping, err
	}
	if err := phase("print", func(context.Context) (err error) {
		d, err = Print(root, pre, deps.Embed, opt)
		return err
	}); err != nil {
		return "", mapping, err
	}
	_ = phase("render", func(context.Context) error {
		out = doc.Render(d, doc.RenderOptions{PrintWidth: opt.PrintWidth, TabWidth: opt.TabWidth, UseTabs: opt.UseTabs})
		return nil
	})
	return finalNewline(out), mapping, nil
}

// finalNewline makes non-empty output end with exactly one newline.
func finalNewline(s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	return s + "\n"
}

// FormatFile formats sf. Failures are returned as *SourceError located in
// the original file.
func FormatFile(ctx context.Context, sf *source.File, deps Deps, opt Options) ([]byte, error) {
	if sf == nil {
		return nil, errors.New("format: nil source file")
	}
	out, mapping, err := format(ctx, string(sf.Content), deps, opt)
	if err != nil {
		return nil, locate(sf, mapping, err)
	}
	return []byte(out), nil
}

func locate(sf *source.File, mapping snip.Mapping, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	span := source.SpanOf(sf.ID, 0, 0)
	var loc interface{ Offsets() (int, int) }
	if errors.As(err, &loc) {
		start, end := loc.Offsets()
		span = source.SpanOf(sf.ID, mapping.Original(start), mapping.Original(end))
	}
	return &SourceError{Span: span, Err: err}
}

// CheckIdempotent formats first again and reports whether the output is a
// fixed point.
func CheckIdempotent(ctx context.Context, first []byte, deps Deps, opt Options) error {
	second, err := Format(ctx, string(first), deps, opt)
	if err != nil {
		return err
	}
	if second == string(first) {
		return nil
	}
	a := strings.Split(string(first), "\n")
	b := strings.Split(second, "\n")
	for i := 0; i < max(len(a), len(b)); i++ {
		var la, lb string
		if i < len(a) {
			la = a[i]
		}
		if i < len(b) {
			lb = b[i]
		}
		if la != lb {
			return &NotIdempotentError{Line: i + 1, First: la, Next: lb}
		}
	}
	return &NotIdempotentError{}
}

// dump serialises a node for error reports.
func dump(n ast.Node) string {
	if u, ok := n.(*ast.Unknown); ok && len(u.Raw) > 0 {
		return string(u.Raw)
	}
	data, err := json.Marshal(n)
	if err != nil {
		return n.Kind()
	}
	return string(data)
}

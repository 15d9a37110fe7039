package format

import (
	"errors"
	"fmt"

	"sveltefmt/internal/diag"
	"sveltefmt/internal/source"
)

// ErrMissingContent is wrapped by EmbedError when a script or style carrier
// has no snipped content attribute.
var ErrMissingContent = errors.New("snipped content attribute missing")

// UnknownNodeError is reported for a node kind the printer cannot handle,
// which means the parser and printer disagree about the tree shape.
type UnknownNodeError struct {
	Kind       string
	Start, End int
	Dump       string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q: %s", e.Kind, e.Dump)
}

func (e *UnknownNodeError) Offsets() (start, end int) { return e.Start, e.End }

func (e *UnknownNodeError) Code() diag.Code { return diag.FmtUnknownNode }

// EmbedError wraps a failure to format embedded script, style or expression
// text. Tag is "script" or "style" for blocks and empty for expressions;
// Start and End locate the embedded region.
type EmbedError struct {
	Lang       Language
	Tag        string
	Start, End int
	Err        error
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("cannot format %s: %v", e.Lang, e.Err)
}

func (e *EmbedError) Unwrap() error { return e.Err }

func (e *EmbedError) Offsets() (start, end int) { return e.Start, e.End }

func (e *EmbedError) Code() diag.Code {
	if errors.Is(e.Err, ErrMissingContent) {
		return diag.FmtMissingContent
	}
	switch e.Tag {
	case "script":
		return diag.FmtEmbedScript
	case "style":
		return diag.FmtEmbedStyle
	}
	return diag.FmtEmbedExpression
}

// SourceError attaches a location in the original file to a format failure.
type SourceError struct {
	Span source.Span
	Err  error
}

func (e *SourceError) Error() string { return e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

// Code returns the diagnostic code of the wrapped error.
func (e *SourceError) Code() diag.Code {
	var c interface{ Code() diag.Code }
	if errors.As(e.Err, &c) {
		return c.Code()
	}
	return diag.UnknownCode
}

// NotIdempotentError is returned by CheckIdempotent when a second pass
// changes the output.
type NotIdempotentError struct {
	Line        int
	First, Next string
}

func (e *NotIdempotentError) Error() string {
	return fmt.Sprintf("output changes when formatted again (line %d: %q became %q)", e.Line, e.First, e.Next)
}

func (e *NotIdempotentError) Code() diag.Code { return diag.FmtNotIdempotent }

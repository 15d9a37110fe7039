package parser

import (
	"fmt"

	"sveltefmt/internal/diag"
)

// Error is a parse failure reported by the compiler. Start and End are byte
// offsets into the parsed text.
type Error struct {
	Message    string
	Start, End int
}

func (e *Error) Error() string { return "parse error: " + e.Message }

func (e *Error) Offsets() (start, end int) { return e.Start, e.End }

func (e *Error) Code() diag.Code { return diag.SynParseFailed }

// UnavailableError means the parser program or the compiler it loads could
// not be started.
type UnavailableError struct {
	Program string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("parser %q unavailable: %v", e.Program, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Code() diag.Code { return diag.FmtParserUnavailable }

// Package parser runs the component compiler's parse() in a subprocess and
// decodes the tree it prints.
package parser

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"fortio.org/safecast"

	"sveltefmt/internal/ast"
	"sveltefmt/internal/trace"
)

//go:embed bridge.js
var bridgeScript string

// DefaultProgram runs the bridge script.
const DefaultProgram = "node"

// exit status of the bridge when the compiler module cannot be loaded
const exitNoCompiler = 3

// Command parses by running Program. With Args nil the embedded bridge
// script is passed with -e; otherwise Args are used as is and the program
// must speak the same stdin/stdout protocol.
type Command struct {
	Program string
	Args    []string
	Dir     string
	Env     []string // appended to the inherited environment
}

// Parse implements format.Parser.
func (c *Command) Parse(ctx context.Context, text string) (*ast.Root, error) {
	program := c.Program
	if program == "" {
		program = DefaultProgram
	}
	path, err := exec.LookPath(program)
	if err != nil {
		return nil, &UnavailableError{Program: program, Err: err}
	}
	args := c.Args
	if args == nil {
		args = []string{"-e", bridgeScript}
	}

	_, sp := trace.Start(ctx, trace.ScopeNode, "parser.exec")
	sp.Set("program", program)

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		sp.End(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitNoCompiler {
			return nil, &UnavailableError{Program: program, Err: errors.New(msg)}
		}
		if msg != "" {
			return nil, fmt.Errorf("parser: %s: %w: %s", program, err, msg)
		}
		return nil, fmt.Errorf("parser: %s: %w", program, err)
	}
	sp.End(nil)
	return decodeResponse(stdout.Bytes())
}

type response struct {
	AST   json.RawMessage `json:"ast"`
	Error *struct {
		Message string `json:"message"`
		Start   *int64 `json:"start"`
		End     *int64 `json:"end"`
	} `json:"error"`
}

func decodeResponse(data []byte) (*ast.Root, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parser: bad response: %w", err)
	}
	if resp.Error != nil {
		start := offset(resp.Error.Start)
		end := offset(resp.Error.End)
		if end < start {
			end = start
		}
		return nil, &Error{Message: resp.Error.Message, Start: start, End: end}
	}
	if len(resp.AST) == 0 {
		return nil, errors.New("parser: response has neither ast nor error")
	}
	return ast.DecodeRoot(resp.AST)
}

func offset(v *int64) int {
	if v == nil || *v < 0 {
		return 0
	}
	n, err := safecast.Conv[int](*v)
	if err != nil {
		return 0
	}
	return n
}

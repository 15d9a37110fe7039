// Package lsp serves document formatting and format diagnostics to editors
// over the Language Server Protocol on stdio.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sveltefmt/internal/driver"
	"sveltefmt/internal/trace"
	"sveltefmt/internal/version"
)

var (
	// ErrExit ends Run after "exit" following "shutdown".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown ends Run after an "exit" the client sent
	// without "shutdown" first.
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

const (
	defaultDebounce       = 300 * time.Millisecond
	defaultMaxDiagnostics = 100
)

type ServerOptions struct {
	Debounce       time.Duration  // delay between an edit and diagnostics; 0 means 300ms
	Format         driver.Options // used for every document, Mode ignored
	MaxDiagnostics int            // per document; 0 means 100
	Log            io.Writer      // protocol problems; nil means stderr
}

// Server speaks JSON-RPC on one reader/writer pair.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	log    io.Writer
	sendMu sync.Mutex

	docs     *store
	shutdown atomic.Bool

	timerMu  sync.Mutex
	timer    *time.Timer
	debounce time.Duration

	opts           driver.Options
	maxDiagnostics int
	ctx            context.Context
}

// handler serves one method. Errors it returns end Run, so per-request
// failures must be sent as error responses instead.
type handler func(s *Server, msg *message) error

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		"initialize":              (*Server).initialize,
		"initialized":             ignore,
		"shutdown":                (*Server).handleShutdown,
		"exit":                    (*Server).exit,
		"textDocument/didOpen":    notify((*Server).didOpen),
		"textDocument/didChange":  notify((*Server).didChange),
		"textDocument/didSave":    notify((*Server).didSave),
		"textDocument/didClose":   notify((*Server).didClose),
		"textDocument/formatting": request((*Server).formatting),
	}
}

func ignore(*Server, *message) error { return nil }

// notify decodes params of type P for fn. Undecodable params are logged.
func notify[P any](fn func(s *Server, params P) error) handler {
	return func(s *Server, msg *message) error {
		var params P
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.logf("%s: %v", msg.Method, err)
			return nil
		}
		return fn(s, params)
	}
}

// request decodes params of type P for fn and sends its result, or its
// *responseError, back.
func request[P, R any](fn func(s *Server, params P) (R, error)) handler {
	return func(s *Server, msg *message) error {
		var params P
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.reply(newErrorResponse(msg.ID, codeInvalidParams, "invalid params"))
		}
		result, err := fn(s, params)
		var rerr *responseError
		switch {
		case errors.As(err, &rerr):
			return s.reply(newErrorResponse(msg.ID, rerr.Code, rerr.Message))
		case err != nil:
			return s.reply(newErrorResponse(msg.ID, codeRequestFailed, err.Error()))
		}
		resp, err := newResponse(msg.ID, result)
		if err != nil {
			return s.reply(newErrorResponse(msg.ID, codeRequestFailed, err.Error()))
		}
		return s.reply(resp)
	}
}

func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logOut := opts.Log
	if logOut == nil {
		logOut = os.Stderr
	}
	return &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		log:            logOut,
		docs:           newStore(),
		debounce:       orDefault(opts.Debounce, defaultDebounce),
		opts:           opts.Format,
		maxDiagnostics: orDefault(opts.MaxDiagnostics, defaultMaxDiagnostics),
		ctx:            context.Background(),
	}
}

func orDefault[T time.Duration | int](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// Run serves messages until exit or end of input. ctx is checked between
// messages and bounds every format call.
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx
	defer s.stopTimer()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("bad message: %v", err)
			if err := s.reply(newErrorResponse(nil, codeParseError, err.Error())); err != nil {
				return err
			}
			continue
		}
		if err := s.dispatch(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) dispatch(msg *message) error {
	if msg.Method == "" {
		return nil // a response; the server sends no requests
	}
	trace.Point(s.ctx, trace.ScopeFile, "lsp."+msg.Method, "")
	if h, ok := handlers[msg.Method]; ok {
		return h(s, msg)
	}
	// $/cancelRequest and friends may be ignored
	if !msg.isRequest() || strings.HasPrefix(msg.Method, "$/") {
		return nil
	}
	return s.reply(newErrorResponse(msg.ID, codeMethodNotFound, "method not found: "+msg.Method))
}

func (s *Server) initialize(msg *message) error {
	resp, err := newResponse(msg.ID, initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2, // incremental
				Save:      saveOptions{IncludeText: true},
			},
			DocumentFormattingProvider: true,
		},
		ServerInfo: serverInfo{Name: "sveltefmt", Version: version.Read().String()},
	})
	if err != nil {
		return err
	}
	return s.reply(resp)
}

func (s *Server) handleShutdown(msg *message) error {
	s.shutdown.Store(true)
	s.stopTimer()
	resp, _ := newResponse(msg.ID, nil)
	return s.reply(resp)
}

func (s *Server) exit(*message) error {
	if s.shutdown.Load() {
		return ErrExit
	}
	return ErrExitWithoutShutdown
}

func (s *Server) didOpen(p didOpenTextDocumentParams) error {
	if p.TextDocument.URI == "" {
		return nil
	}
	s.docs.open(p.TextDocument.URI, p.TextDocument.Text, p.TextDocument.Version)
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) didChange(p didChangeTextDocumentParams) error {
	edit := func(text string) string { return applyChanges(text, p.ContentChanges) }
	if s.docs.update(p.TextDocument.URI, p.TextDocument.Version, edit) {
		s.scheduleDiagnostics()
	}
	return nil
}

func (s *Server) didSave(p didSaveTextDocumentParams) error {
	edit := func(text string) string {
		if p.Text != nil {
			return *p.Text
		}
		return text
	}
	if s.docs.update(p.TextDocument.URI, 0, edit) {
		s.scheduleDiagnostics()
	}
	return nil
}

func (s *Server) didClose(p didCloseTextDocumentParams) error {
	if s.docs.close(p.TextDocument.URI) {
		return s.publish(p.TextDocument.URI, nil, nil)
	}
	return nil
}

// formatting answers with one edit replacing the whole document, or none
// when it is already formatted.
func (s *Server) formatting(p documentFormattingParams) ([]textEdit, error) {
	uri := p.TextDocument.URI
	doc, ok := s.docs.get(uri)
	if !ok {
		return nil, &responseError{Code: codeInvalidParams, Message: fmt.Sprintf("document %s is not open", uri)}
	}
	rep, err := s.format(s.ctx, uri, doc.text)
	if err != nil {
		return nil, err
	}
	res := rep.Results[0]
	if res.Err != nil {
		return nil, res.Err
	}
	edits := []textEdit{}
	if out := string(res.Formatted); out != doc.text {
		edits = append(edits, textEdit{Range: lspRange{End: endPosition(doc.text)}, NewText: out})
	}
	return edits, nil
}

// format runs the driver on an in-memory document.
func (s *Server) format(ctx context.Context, uri, text string) (*driver.Report, error) {
	path := uriToPath(uri)
	if path == "" {
		path = "untitled" + driver.Ext
	}
	return driver.FormatSource(ctx, path, []byte(text), s.opts)
}

func (s *Server) publish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.send(notification{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  publishDiagnosticsParams{URI: uri, Version: version, Diagnostics: list},
	})
}

func (s *Server) reply(resp response) error { return s.send(resp) }

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}

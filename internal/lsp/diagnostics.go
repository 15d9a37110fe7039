package lsp

import (
	"time"

	"sveltefmt/internal/diag"
	"sveltefmt/internal/driver"
)

// scheduleDiagnostics (re)starts the debounce timer; edits arriving in a
// burst produce one diagnostics pass.
func (s *Server) scheduleDiagnostics() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.runDiagnostics)
}

func (s *Server) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// runDiagnostics formats every dirty document and publishes what failed.
// Documents that format cleanly get their earlier diagnostics cleared.
func (s *Server) runDiagnostics() {
	ctx := s.ctx
	for _, snap := range s.docs.takeDirty() {
		if ctx.Err() != nil {
			return
		}
		rep, err := s.format(ctx, snap.uri, snap.text)
		if err != nil {
			s.logf("format %s: %v", snap.uri, err)
			continue
		}
		list := s.convert(rep)
		if !s.docs.settle(snap, len(list)) {
			continue
		}
		version := snap.version
		if err := s.publish(snap.uri, &version, list); err != nil {
			s.logf("publish %s: %v", snap.uri, err)
		}
	}
}

func (s *Server) convert(rep *driver.Report) []lspDiagnostic {
	bag := rep.Diagnostics(s.maxDiagnostics)
	out := make([]lspDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, lspDiagnostic{
			Range:    rangeForSpan(rep.Files.Get(d.Primary.File), d.Primary),
			Severity: lspSeverity(d.Severity),
			Code:     d.Code.ID(),
			Source:   "sveltefmt",
			Message:  d.Message,
		})
	}
	return out
}

// lspSeverity maps to DiagnosticSeverity: 1 error, 2 warning, 3 info.
func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	}
	return 3
}

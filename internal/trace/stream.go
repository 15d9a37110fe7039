package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes each accepted event to a buffered writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer // the trace file, when New opened one
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: bufio.NewWriter(w), level: level, format: format}
}

// Emit drops span and point events the level filters out; error events
// always pass. Write errors are ignored: tracing never fails a run.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || (ev.Kind != KindError && !t.level.ShouldEmit(ev.Scope)) {
		return
	}
	data := FormatEvent(ev, t.format)
	t.mu.Lock()
	_, _ = t.w.Write(data)
	if ev.Kind == KindError {
		_ = t.w.Flush()
	}
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Flush()
}

// Close flushes and closes the trace file, if any.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
		t.closer = nil
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

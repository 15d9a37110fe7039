package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// Span is an open traced operation. A nil Span is inert.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	depth  int
	scope  Scope
	name   string
	start  time.Time
	attrs  map[string]string
}

// Start opens a span under the span carried by ctx and returns a context
// carrying the new one. When the tracer filters scope out the span is inert
// and ctx is returned unchanged, so children attach to the nearest emitted
// ancestor.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return ctx, nil
	}
	parent := spanFrom(ctx)
	s := &Span{
		t:     t,
		id:    spanIDs.Add(1),
		scope: scope,
		name:  name,
		start: time.Now(),
	}
	if parent != nil {
		s.parent = parent.id
		s.depth = parent.depth + 1
	}
	t.Emit(s.event(KindSpanBegin, s.start, ""))
	return context.WithValue(ctx, spanKey{}, s), s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      seq.Add(1),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Depth:    s.depth,
		Name:     s.name,
		Detail:   detail,
	}
}

// Set attaches a key/value to the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string, 2)
	}
	s.attrs[key] = value
	return s
}

// End closes the span; a non-nil err becomes the event detail.
func (s *Span) End(err error) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	ev := s.event(KindSpanEnd, now, detail)
	ev.Extra = s.attrs
	ev.Elapsed = now.Sub(s.start)
	s.t.Emit(ev)
	return ev.Elapsed
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

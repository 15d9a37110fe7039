package trace

import (
	"context"
	"time"
)

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer attaches t to ctx; a nil t means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

func spanFrom(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

// standalone builds a non-span event placed under the span in ctx.
func standalone(ctx context.Context, kind Kind, scope Scope, name, detail string) *Event {
	ev := &Event{
		Time:   time.Now(),
		Seq:    seq.Add(1),
		Kind:   kind,
		Scope:  scope,
		Name:   name,
		Detail: detail,
	}
	if p := spanFrom(ctx); p != nil {
		ev.ParentID = p.id
		ev.Depth = p.depth + 1
	}
	return ev
}

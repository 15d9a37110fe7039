package trace

import (
	"context"
	"time"
)

// Kind is what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindError // emitted at every level except off
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindError: "error"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // a CLI run
	ScopePass                    // preprocess, parse, print, render
	ScopeFile                    // one file
	ScopeNode                    // parser and printer internals
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeFile: "file", ScopeNode: "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide, increasing
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // 0 for point and error events
	ParentID uint64 // enclosing span, 0 at the top
	Depth    int
	Name     string
	Detail   string
	Elapsed  time.Duration     // end events only
	Extra    map[string]string // span attributes, end events only
}

// Point emits an instant event under the span in ctx if the tracer accepts
// scope.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(standalone(ctx, KindPoint, scope, name, detail))
}

// Error reports err under the span in ctx regardless of scope.
func Error(ctx context.Context, scope Scope, name string, err error) {
	t := FromContext(ctx)
	if !t.Enabled() || err == nil {
		return
	}
	t.Emit(standalone(ctx, KindError, scope, name, err.Error()))
}

package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer aggregates the time spent in named phases (parse, print, ...)
// across all files of a run. It is safe for concurrent use and a nil
// *Timer only runs the tracked functions.
type Timer struct {
	mu     sync.Mutex
	order  []string
	phases map[string]*phaseStats
}

type phaseStats struct {
	count  int
	failed int
	total  time.Duration
	max    time.Duration
}

func NewTimer() *Timer { return &Timer{phases: make(map[string]*phaseStats)} }

// Track runs fn as one occurrence of phase name.
func (t *Timer) Track(name string, fn func() error) error {
	if t == nil {
		return fn()
	}
	start := time.Now()
	err := fn()
	t.record(name, time.Since(start), err != nil)
	return err
}

func (t *Timer) record(name string, d time.Duration, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.phases[name]
	if !ok {
		st = &phaseStats{}
		t.phases[name] = st
		t.order = append(t.order, name)
	}
	st.count++
	st.total += d
	st.max = max(st.max, d)
	if failed {
		st.failed++
	}
}

// Reset forgets everything recorded so far; watch mode calls it between
// batches.
func (t *Timer) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.order = nil
	clear(t.phases)
	t.mu.Unlock()
}

// PhaseReport is the aggregate of one phase.
type PhaseReport struct {
	Name    string  `json:"name"`
	TotalMS float64 `json:"total_ms"`
	MaxMS   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	Failed  int     `json:"failed,omitempty"`
}

// Report lists phases in order of first use. TotalMS sums phase time over
// all workers, so it can exceed wall time.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	for _, name := range t.order {
		st := t.phases[name]
		r.Phases = append(r.Phases, PhaseReport{
			Name:    name,
			TotalMS: millis(st.total),
			MaxMS:   millis(st.max),
			Count:   st.count,
			Failed:  st.failed,
		})
		r.TotalMS += millis(st.total)
	}
	return r
}

// Summary renders the report as an aligned table:
//
//	timings:
//	  parse          12.40 ms  x4  max 5.10 ms
//	  total          15.02 ms
func (t *Timer) Summary() string {
	r := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-12s %8.2f ms", p.Name, p.TotalMS)
		if p.Count > 1 {
			fmt.Fprintf(&b, "  x%d  max %.2f ms", p.Count, p.MaxMS)
		}
		if p.Failed > 0 {
			fmt.Fprintf(&b, "  %d failed", p.Failed)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %8.2f ms\n", "total", r.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

package driver

import "time"

// Stage is the step a file is in.
type Stage string

const (
	StageFormat Stage = "format"
	StageVerify Stage = "verify" // idempotence re-format
	StageWrite  Stage = "write"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached" // output taken from the cache
	StatusError   Status = "error"
)

// Event is one progress step of one file. Final events (done, cached,
// error) carry the time spent on the file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink receives events from worker goroutines, possibly at the
// same time.
type ProgressSink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

// ChannelSink sends events to Ch. Once Done is closed events are dropped
// instead of blocking the sender.
type ChannelSink struct {
	Ch   chan<- Event
	Done <-chan struct{}
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	select {
	case s.Ch <- ev:
	case <-s.Done:
	}
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sveltefmt/internal/driver"
)

const (
	maxActive   = 8 // rows of in-flight files
	maxFailures = 5
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	cachedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// fileState is where one file is in the pipeline.
type fileState struct {
	stage   driver.Stage
	status  driver.Status
	started int // order in which it became active
}

type failure struct {
	path string
	msg  string
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	files   map[string]*fileState
	total   int
	seq     int

	done, cached int
	failures     []failure

	width    int
	started  time.Time
	finished bool
	aborted  bool
}

type eventMsg driver.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model showing counters, the files
// being formatted right now and the first failures. It quits when events is
// closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = activeStyle

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60

	states := make(map[string]*fileState, len(files))
	for _, f := range files {
		states[f] = &fileState{status: driver.StatusQueued}
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		files:   states,
		total:   len(files),
		width:   80,
		started: time.Now(),
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case closedMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(10, min(msg.Width-20, 80))
		}
		return m, nil
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// Aborted reports whether the user quit the view before the run ended.
func Aborted(m tea.Model) bool {
	pm, ok := m.(*progressModel)
	return ok && pm.aborted
}

// next waits for one event off the channel.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	st, ok := m.files[ev.File]
	if !ok {
		return nil
	}
	if isFinal(st.status) {
		return nil
	}
	switch ev.Status {
	case driver.StatusWorking:
		if st.status != driver.StatusWorking {
			m.seq++
			st.started = m.seq
		}
	case driver.StatusDone:
		m.done++
	case driver.StatusCached:
		m.cached++
	case driver.StatusError:
		msg := ""
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		m.failures = append(m.failures, failure{path: ev.File, msg: msg})
	}
	st.stage = ev.Stage
	st.status = ev.Status
	return m.bar.SetPercent(m.percent())
}

func isFinal(s driver.Status) bool {
	return s == driver.StatusDone || s == driver.StatusCached || s == driver.StatusError
}

// percent counts finished files fully and in-flight files by stage.
func (m *progressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	sum := float64(m.done + m.cached + len(m.failures))
	for _, st := range m.files {
		if st.status == driver.StatusWorking {
			sum += stageWeight(st.stage)
		}
	}
	return sum / float64(m.total)
}

func stageWeight(stage driver.Stage) float64 {
	switch stage {
	case driver.StageFormat:
		return 0.3
	case driver.StageVerify:
		return 0.7
	case driver.StageWrite:
		return 0.9
	}
	return 0
}

func stageVerb(stage driver.Stage) string {
	switch stage {
	case driver.StageVerify:
		return "verifying"
	case driver.StageWrite:
		return "writing"
	}
	return "formatting"
}

// active returns in-flight files, oldest first.
func (m *progressModel) active() []string {
	var paths []string
	for p, st := range m.files {
		if st.status == driver.StatusWorking {
			paths = append(paths, p)
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return m.files[paths[i]].started < m.files[paths[j]].started
	})
	return paths
}

func (m *progressModel) View() string {
	if m.total == 0 {
		return ""
	}
	var b strings.Builder

	finished := m.done + m.cached + len(m.failures)
	lead := m.spinner.View()
	if m.finished {
		lead = doneStyle.Render("✓")
		if len(m.failures) > 0 {
			lead = failedStyle.Render("✗")
		}
	}
	fmt.Fprintf(&b, "%s %s %s\n", lead, headerStyle.Render(m.title),
		dimStyle.Render(fmt.Sprintf("%d/%d  %s", finished, m.total, time.Since(m.started).Round(100*time.Millisecond))))

	if m.finished {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("  ")
	b.WriteString(doneStyle.Render(fmt.Sprintf("%d done", m.done)))
	b.WriteString(dimStyle.Render(" · "))
	b.WriteString(cachedStyle.Render(fmt.Sprintf("%d cached", m.cached)))
	b.WriteString(dimStyle.Render(" · "))
	b.WriteString(failedStyle.Render(fmt.Sprintf("%d failed", len(m.failures))))
	b.WriteString("\n")

	if !m.finished {
		active := m.active()
		nameWidth := max(20, m.width-14)
		for i, p := range active {
			if i == maxActive {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(active)-maxActive)))
				b.WriteString("\n")
				break
			}
			fmt.Fprintf(&b, "  %s %s\n", activeStyle.Render(fmt.Sprintf("%-10s", stageVerb(m.files[p].stage))), truncate(p, nameWidth))
		}
	}

	for i, f := range m.failures {
		if i == maxFailures {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more failures", len(m.failures)-maxFailures)))
			b.WriteString("\n")
			break
		}
		line := f.path
		if f.msg != "" {
			line += ": " + f.msg
		}
		fmt.Fprintf(&b, "  %s %s\n", failedStyle.Render("error"), truncate(line, max(20, m.width-8)))
	}
	return b.String()
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

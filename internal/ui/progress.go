// Package ui renders a live Bubble Tea view of a recording in
// progress: one row per open sequence buffer's record count, plus the
// running count of chunks flushed to disk. It polls a Source on a
// timer rather than listening on a push channel, since neither a live
// engine.Writer nor a recording directory being written by another
// process offers a natural event stream the way the teacher's
// buildpipeline did.
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
)

// SequenceStat is one sequence buffer's current record count, labeled
// for display.
type SequenceStat struct {
	Label       string
	RecordCount int
}

// Stats is a point-in-time snapshot a Source reports on each poll.
type Stats struct {
	Flushes   uint64
	Sequences []SequenceStat
}

// Source supplies the latest Stats snapshot. Implementations may read
// a live engine.Writer directly or re-open a recording directory from
// disk; either way a single call must not block indefinitely.
type Source interface {
	Stats() (Stats, error)
}

type watchModel struct {
	title    string
	source   Source
	interval time.Duration
	spinner  spinner.Model
	prog     progress.Model
	stats    Stats
	err      error
	done     bool
	width    int
}

type statsMsg struct {
	stats Stats
	err   error
}

// StopMsg tells a running watch model its source has finished (e.g. the
// recording it was watching completed) so it should quit.
type StopMsg struct{}

// NewWatchModel returns a Bubble Tea model that polls source every
// interval and renders the recording's live progress until Stop is
// sent (via the returned tea.Program's Send, or the model quitting on
// its own 'q'/ctrl+c binding).
func NewWatchModel(title string, source Source, interval time.Duration) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &watchModel{
		title:    title,
		source:   source,
		interval: interval,
		spinner:  sp,
		prog:     prog,
		width:    80,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m *watchModel) poll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		stats, err := m.source.Stats()
		return statsMsg{stats: stats, err: err}
	})
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		if m.done {
			return m, nil
		}
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Batch(m.poll(), m.prog.SetPercent(progressFromFlushes(msg.stats)))
	case StopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *watchModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("stopped: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("flushes: %d\n\n", m.stats.Flushes))

	labelWidth := m.width - 16
	if labelWidth < 20 {
		labelWidth = 20
	}
	sorted := append([]SequenceStat(nil), m.stats.Sequences...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	for _, seq := range sorted {
		label := truncate(seq.Label, labelWidth)
		b.WriteString(fmt.Sprintf("  %s %6d records\n", label, seq.RecordCount))
	}

	b.WriteString("\n")
	b.WriteString(m.prog.View())
	b.WriteString("\n")

	return b.String()
}

// progressFromFlushes has no fixed total to divide by (a recording has
// no a priori end), so it renders a sawtooth: the bar fills toward 1.0
// across ten flushes and wraps, giving visual feedback that flushing is
// still happening without pretending to know when it will finish.
func progressFromFlushes(stats Stats) float64 {
	const cycle = 10
	return float64(stats.Flushes%cycle) / float64(cycle)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

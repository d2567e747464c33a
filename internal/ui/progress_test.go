package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSource struct {
	stats Stats
	err   error
}

func (f fakeSource) Stats() (Stats, error) { return f.stats, f.err }

func TestWatchModelRendersFlushesAndSequences(t *testing.T) {
	source := fakeSource{stats: Stats{
		Flushes: 7,
		Sequences: []SequenceStat{
			{Label: "seq 2", RecordCount: 5},
			{Label: "seq 1", RecordCount: 42},
		},
	}}
	m := NewWatchModel("recording", source, time.Second).(*watchModel)

	updated, _ := m.Update(statsMsg{stats: source.stats})
	m = updated.(*watchModel)

	view := m.View()
	if !strings.Contains(view, "flushes: 7") {
		t.Fatalf("expected view to report flush count, got %q", view)
	}
	if !strings.Contains(view, "seq 1") || !strings.Contains(view, "seq 2") {
		t.Fatalf("expected view to list both sequences, got %q", view)
	}

	// Sequences must render sorted by label regardless of input order.
	if strings.Index(view, "seq 1") > strings.Index(view, "seq 2") {
		t.Fatalf("expected seq 1 to render before seq 2, got %q", view)
	}
}

func TestWatchModelRendersSourceError(t *testing.T) {
	m := NewWatchModel("recording", fakeSource{}, time.Second).(*watchModel)

	updated, _ := m.Update(statsMsg{err: errors.New("disk read failed")})
	m = updated.(*watchModel)

	if !strings.Contains(m.View(), "disk read failed") {
		t.Fatalf("expected view to surface the source error, got %q", m.View())
	}
}

func TestWatchModelStopMsgQuits(t *testing.T) {
	m := NewWatchModel("recording", fakeSource{}, time.Second).(*watchModel)

	updated, cmd := m.Update(StopMsg{})
	m = updated.(*watchModel)

	if !m.done {
		t.Fatalf("expected StopMsg to mark the model done")
	}
	if cmd == nil {
		t.Fatalf("expected StopMsg to return a quit command")
	}
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Fatalf("expected a tea.QuitMsg, got %T", msg)
	}

	// Once done, further stats updates are ignored.
	updated, _ = m.Update(statsMsg{stats: Stats{Flushes: 99}})
	m = updated.(*watchModel)
	if m.stats.Flushes == 99 {
		t.Fatalf("expected stats update to be ignored once done")
	}
}

func TestWatchModelKeyQuits(t *testing.T) {
	m := NewWatchModel("recording", fakeSource{}, time.Second).(*watchModel)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = updated.(*watchModel)

	if !m.done {
		t.Fatalf("expected 'q' to mark the model done")
	}
	if cmd == nil {
		t.Fatalf("expected 'q' to return a quit command")
	}
}

func TestProgressFromFlushesSawtooths(t *testing.T) {
	cases := []struct {
		flushes uint64
		want    float64
	}{
		{0, 0},
		{5, 0.5},
		{9, 0.9},
		{10, 0},
		{23, 0.3},
	}
	for _, c := range cases {
		got := progressFromFlushes(Stats{Flushes: c.flushes})
		if got != c.want {
			t.Errorf("progressFromFlushes(%d) = %v, want %v", c.flushes, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate should not modify strings within width, got %q", got)
	}
	if got := truncate("a very long sequence label indeed", 10); got != "a very ..." {
		t.Errorf("truncate(...) = %q, want %q", got, "a very ...")
	}
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rfr/internal/chunked"
	"rfr/internal/engine"
	"rfr/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch a recording's live buffer occupancy and flush counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

// liveSource reports ui.Stats directly from an in-process engine.Writer,
// used by `rfr record --watch`.
type liveSource struct {
	w *engine.Writer
}

func (s liveSource) Stats() (ui.Stats, error) {
	seqs := s.w.Stats()
	out := make([]ui.SequenceStat, 0, len(seqs))
	for _, st := range seqs {
		out = append(out, ui.SequenceStat{
			Label:       "seq " + strconv.FormatUint(uint64(st.SeqID), 10),
			RecordCount: st.RecordCount,
		})
	}
	return ui.Stats{Flushes: s.w.FlushCount(), Sequences: out}, nil
}

// diskSource reports ui.Stats by re-opening a recording directory from
// disk on every poll, for `rfr watch <path>` attached to a recording
// another process is writing.
type diskSource struct {
	path string
}

func (s diskSource) Stats() (ui.Stats, error) {
	rec, err := chunked.OpenRecording(s.path)
	if err != nil {
		return ui.Stats{}, err
	}
	counts := make(map[engine.SeqID]int)
	for _, sc := range rec.SubChunks() {
		counts[sc.Header.SeqId] += len(sc.Records)
	}
	out := make([]ui.SequenceStat, 0, len(counts))
	for id, n := range counts {
		out = append(out, ui.SequenceStat{Label: "seq " + strconv.FormatUint(uint64(id), 10), RecordCount: n})
	}
	return ui.Stats{Flushes: uint64(len(rec.ChunkPaths())), Sequences: out}, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return catPath(cmd, path)
	}

	p := tea.NewProgram(ui.NewWatchModel(path, diskSource{path: path}, 500*time.Millisecond))
	_, err := p.Run()
	return err
}

// runWatchUI drives a watch model against source until done is closed.
// When stdout isn't a TTY it prints a one-line notice and simply waits
// for done, without polling source or drawing a TUI.
func runWatchUI(cmd *cobra.Command, source ui.Source, done <-chan struct{}) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(cmd.OutOrStdout(), "not a terminal; skipping live view")
		<-done
		return
	}

	p := tea.NewProgram(ui.NewWatchModel("recording", source, 500*time.Millisecond))
	go func() {
		<-done
		p.Send(ui.StopMsg{})
	}()
	p.Run()
}

package engine

import (
	"context"
	"time"
)

// minPollInterval bounds how often Run will call WriteCompletedChunks
// even if the computed next-write-in duration is very small, to avoid
// a busy loop around interval boundaries.
const minPollInterval = 10 * time.Millisecond

// Run drives the flusher loop: it repeatedly calls WriteCompletedChunks
// and sleeps for the duration it reports, until ctx is done or a write
// fails. Callers typically run this in its own goroutine for the
// lifetime of the recording and call Shutdown separately once done.
func (w *Writer) Run(ctx context.Context) error {
	for {
		next, err := w.WriteCompletedChunks()
		if err != nil {
			return err
		}
		if next < minPollInterval {
			next = minPollInterval
		}
		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

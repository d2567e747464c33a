package engine

import (
	"context"
	"errors"

	"rfr/internal/schema"
)

// ErrFlusherClosed is returned by WaitFlush when the writer is closed
// before the awaited interval is flushed.
var ErrFlusherClosed = errors.New("engine: flusher closed before chunk was written")

// waitResult is sent on a notifier's channel exactly once.
type waitResult struct {
	closed bool
}

// notifier lets one caller block until every chunk covering timestamps
// up to ts has been written to disk, replacing the original
// implementation's Mutex+Condvar pair with a buffered channel: the
// writer side sends at most once and the wait side always receives
// (or times out via ctx), so the channel never blocks either party.
type notifier struct {
	ts schema.AbsTimestamp
	ch chan waitResult
}

func newNotifier(ts schema.AbsTimestamp) *notifier {
	return &notifier{ts: ts, ch: make(chan waitResult, 1)}
}

func (n *notifier) notify(closed bool) {
	select {
	case n.ch <- waitResult{closed: closed}:
	default:
	}
}

func (n *notifier) wait(ctx context.Context) error {
	select {
	case res := <-n.ch:
		if res.closed {
			return ErrFlusherClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

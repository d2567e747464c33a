package engine

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"rfr/internal/chunked"
	"rfr/internal/observ"
	"rfr/internal/schema"
)

// writeSettleBuffer is how long past an interval's end_time the writer
// waits before treating it as complete, giving concurrent producers
// time to finish appending to it.
const writeSettleBuffer = 150 * time.Millisecond

// notifyExtraBuffer is added on top of writeSettleBuffer when telling a
// caller how long until the next poll is worthwhile.
const notifyExtraBuffer = 50 * time.Millisecond

// Clock supplies the current time; tests substitute a deterministic one.
type Clock func() schema.AbsTimestamp

// Writer is a live chunked recording in progress: it owns the
// recording's root directory, callsite registry, and the set of
// per-interval chunk buffers currently being filled, and flushes
// completed intervals to disk.
type Writer struct {
	rootDir         string
	chunkPeriodUsec uint64
	now             Clock

	callsites     *CallsiteRegistry
	callsitesFile *os.File

	mu      sync.Mutex
	buffers map[schema.ChunkInterval]*chunkBuffer
	closed  bool

	flushCount atomic.Uint64
	timer      *observ.Timer

	notifMu   sync.Mutex
	notifiers []*notifier
}

// SequenceStats is a point-in-time snapshot of one sequence buffer's
// occupancy within a still-open chunk interval, for `rfr watch`.
type SequenceStats struct {
	Interval    schema.ChunkInterval
	SeqID       SeqID
	RecordCount int
}

// Stats reports every currently-open sequence buffer's record count;
// the flush count is reported separately by FlushCount. It takes the same
// lock WriteCompletedChunks does, so a concurrent watcher never sees a
// torn snapshot.
func (w *Writer) Stats() []SequenceStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []SequenceStats
	for interval, cb := range w.buffers {
		cb.mu.Lock()
		for seqID, sb := range cb.seq {
			out = append(out, SequenceStats{
				Interval:    interval,
				SeqID:       seqID,
				RecordCount: sb.RecordCount(),
			})
		}
		cb.mu.Unlock()
	}
	return out
}

// FlushCount reports how many chunk files WriteCompletedChunks has
// written to disk.
func (w *Writer) FlushCount() uint64 { return w.flushCount.Load() }

// Options configures a new Writer.
type Options struct {
	// ChunkPeriodMicros is the length of time a chunk is responsible
	// for. It must be a whole-second multiple of 1_000_000 or a
	// divisor of 1_000_000 (spec.md's enumerated granularities:
	// 250ms, 500ms, 1s, 5s).
	ChunkPeriodMicros uint64
	// Clock overrides time.Now for deterministic tests; nil uses the
	// real wall clock.
	Clock Clock
}

func defaultClock() schema.AbsTimestamp {
	now := time.Now().UTC()
	return schema.AbsTimestamp{
		Secs:         uint64(now.Unix()),
		SubsecMicros: uint32(now.Nanosecond() / 1000),
	}
}

// NewWriter creates a fresh recording at rootDir: the directory must
// not already exist. It writes meta.rfr immediately and opens
// callsites.rfr for incremental writes.
func NewWriter(rootDir string, opts Options) (*Writer, error) {
	if _, err := os.Stat(rootDir); err == nil {
		return nil, os.ErrExist
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, err
	}

	now := opts.Clock
	if now == nil {
		now = defaultClock
	}
	chunkPeriod := opts.ChunkPeriodMicros
	if chunkPeriod == 0 {
		chunkPeriod = 1_000_000
	}

	meta, err := chunked.NewMeta(now(), []string{"rfr-c/0.1.0"})
	if err != nil {
		return nil, err
	}
	metaFile, err := os.Create(chunked.MetaPath(rootDir))
	if err != nil {
		return nil, err
	}
	if err := chunked.WriteMeta(metaFile, meta); err != nil {
		metaFile.Close()
		return nil, err
	}
	if err := metaFile.Close(); err != nil {
		return nil, err
	}

	callsitesWriter, callsitesFile, err := chunked.CreateCallsitesWriter(chunked.CallsitesPath(rootDir))
	if err != nil {
		return nil, err
	}

	return &Writer{
		rootDir:         rootDir,
		chunkPeriodUsec: chunkPeriod,
		now:             now,
		callsites:       NewCallsiteRegistry(callsitesWriter),
		callsitesFile:   callsitesFile,
		buffers:         make(map[schema.ChunkInterval]*chunkBuffer),
		timer:           observ.NewTimer(),
	}, nil
}

// RootDir reports the directory this recording was created in.
func (w *Writer) RootDir() string { return w.rootDir }

// Timings reports how long this Writer has spent sealing and writing
// chunks to disk, phase by phase, for `rfr record --timings`.
func (w *Writer) Timings() *observ.Timer { return w.timer }

// RegisterCallsite allocates a CallsiteId and stages the callsite for
// the next callsites flush.
func (w *Writer) RegisterCallsite(level schema.Level, kind schema.Kind, constFields []schema.Field, constFieldNames []schema.FieldName) schema.Callsite {
	return w.callsites.Register(level, kind, constFields, constFieldNames)
}

// Sequence allocates a new sequence handle. A producer should call
// this once (e.g. once per goroutine/worker) and reuse the returned
// SeqID for every record it emits.
func (w *Writer) Sequence() SeqID { return allocateSeqID() }

// bufferForInterval returns the chunk buffer responsible for
// timestamp, creating one (and its on-disk directory) if needed.
func (w *Writer) bufferForInterval(timestamp schema.AbsTimestamp) *chunkBuffer {
	interval := schema.ChunkIntervalFromTimestampAndPeriod(timestamp, w.chunkPeriodUsec)

	w.mu.Lock()
	defer w.mu.Unlock()
	cb, ok := w.buffers[interval]
	if !ok {
		cb = newChunkBuffer(interval)
		w.buffers[interval] = cb
	}
	return cb
}

// Record appends a single activity record, resolving any object it
// references via resolve. It reports false if the record was dropped
// because a referenced object was not resolvable.
func (w *Writer) Record(seqID SeqID, timestamp schema.AbsTimestamp, data schema.ChunkedRecordData, resolve ObjectResolver) bool {
	cb := w.bufferForInterval(timestamp)
	sb := cb.sequenceBuffer(seqID)
	return sb.AppendRecord(timestamp, data, resolve)
}

// WriteCompletedChunks writes every chunk buffer whose interval ended
// more than writeSettleBuffer ago, discarding each from memory once
// written, and returns how long the caller should wait before polling
// again.
func (w *Writer) WriteCompletedChunks() (time.Duration, error) {
	phase := w.timer.Begin("write_completed_chunks")
	defer func() { w.timer.End(phase, "") }()

	if err := w.callsites.Flush(); err != nil {
		return 0, err
	}

	now := w.now()
	var writeErr error

	w.mu.Lock()
	for interval, cb := range w.buffers {
		endTime := interval.AbsEndTime()
		if !sinceCompletion(now, endTime, writeSettleBuffer) {
			continue
		}
		chunk := cb.seal()
		if len(chunk.SeqChunks) > 0 {
			if err := chunked.CreateChunkFile(chunked.ChunkPath(w.rootDir, interval), chunk); err != nil && writeErr == nil {
				writeErr = err
			} else if err == nil {
				w.flushCount.Add(1)
			}
		}
		delete(w.buffers, interval)
		w.notifyUpTo(endTime)
	}
	w.mu.Unlock()

	if writeErr != nil {
		return 0, writeErr
	}

	nextInterval := schema.ChunkIntervalFromTimestampAndPeriod(now, w.chunkPeriodUsec)
	nextEnd := nextInterval.AbsEndTime()
	nextWriteIn := durationBetween(now, nextEnd) + writeSettleBuffer + notifyExtraBuffer
	return nextWriteIn, nil
}

// sinceCompletion reports whether now is more than buffer past endTime.
func sinceCompletion(now, endTime schema.AbsTimestamp, buffer time.Duration) bool {
	return durationBetween(endTime, now) > buffer
}

// durationBetween returns b-a as a duration, zero if b is before a.
func durationBetween(a, b schema.AbsTimestamp) time.Duration {
	aMicros := int64(a.Secs)*1_000_000 + int64(a.SubsecMicros)
	bMicros := int64(b.Secs)*1_000_000 + int64(b.SubsecMicros)
	if bMicros <= aMicros {
		return 0
	}
	return time.Duration(bMicros-aMicros) * time.Microsecond
}

// WriteAllChunks writes every buffered chunk to disk without
// discarding them, so records may continue accumulating and be
// rewritten on a subsequent flush.
func (w *Writer) WriteAllChunks() error {
	if err := w.callsites.Flush(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	g := new(errgroup.Group)
	for interval, cb := range w.buffers {
		interval, cb := interval, cb
		g.Go(func() error {
			chunk := cb.seal()
			if len(chunk.SeqChunks) == 0 {
				return nil
			}
			return chunked.CreateChunkFile(chunked.ChunkPath(w.rootDir, interval), chunk)
		})
	}
	return g.Wait()
}

// WaitFlush blocks until every chunk interval buffered at the time of
// the call has been written to disk by WriteCompletedChunks, or ctx is
// done, or the writer is closed first. It returns nil at once when no
// interval is buffered. Writes made by WriteAllChunks do not wake it.
func (w *Writer) WaitFlush(ctx context.Context) error {
	w.mu.Lock()
	var latest schema.AbsTimestamp
	pending := false
	for interval := range w.buffers {
		if end := interval.AbsEndTime(); !pending || latest.Compare(end) < 0 {
			latest = end
		}
		pending = true
	}
	n := newNotifier(latest)

	w.notifMu.Lock()
	if w.closed {
		w.notifMu.Unlock()
		w.mu.Unlock()
		return ErrFlusherClosed
	}
	if pending {
		w.notifiers = append(w.notifiers, n)
	}
	w.notifMu.Unlock()
	w.mu.Unlock()

	if !pending {
		return nil
	}
	return n.wait(ctx)
}

func (w *Writer) notifyUpTo(endTime schema.AbsTimestamp) {
	w.notifMu.Lock()
	defer w.notifMu.Unlock()
	remaining := w.notifiers[:0]
	for _, n := range w.notifiers {
		if n.ts.Compare(endTime) <= 0 {
			n.notify(false)
			continue
		}
		remaining = append(remaining, n)
	}
	w.notifiers = remaining
}

// Shutdown flushes every remaining buffered chunk to disk, closes the
// callsites file, and wakes any pending WaitFlush callers with
// ErrFlusherClosed.
func (w *Writer) Shutdown() error {
	err := w.WriteAllChunks()

	w.notifMu.Lock()
	w.closed = true
	for _, n := range w.notifiers {
		n.notify(true)
	}
	w.notifiers = nil
	w.notifMu.Unlock()

	if flushErr := w.callsites.Flush(); err == nil {
		err = flushErr
	}
	if closeErr := w.callsitesFile.Close(); err == nil {
		err = closeErr
	}
	return err
}

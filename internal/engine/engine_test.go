package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rfr/internal/chunked"
	"rfr/internal/schema"
)

func fixedClock(ts schema.AbsTimestamp) Clock {
	return func() schema.AbsTimestamp { return ts }
}

func TestNewWriterRejectsExistingDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir, Options{}); err == nil {
		t.Fatalf("expected error creating writer over an existing directory")
	}
}

func TestRegisterCallsiteAssignsIncreasingIds(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec.rfr")
	w, err := NewWriter(dir, Options{Clock: fixedClock(schema.AbsTimestamp{Secs: 1000})})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	c1 := w.RegisterCallsite(schema.LevelInfo, schema.KindEvent, nil, nil)
	c2 := w.RegisterCallsite(schema.LevelWarn, schema.KindSpan, nil, nil)
	if c2.CallsiteId <= c1.CallsiteId {
		t.Fatalf("expected increasing callsite ids, got %d and %d", c1.CallsiteId, c2.CallsiteId)
	}
	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	_, callsites, err := chunked.ReadCallsites(mustOpen(t, chunked.CallsitesPath(dir)))
	if err != nil {
		t.Fatalf("ReadCallsites: %v", err)
	}
	if len(callsites) != 2 {
		t.Fatalf("expected 2 callsites on disk, got %d", len(callsites))
	}
}

// TestRecordDropsUnresolvableObject exercises the object-closure
// missing-reference policy: a record referencing an iid the resolver
// cannot supply is dropped rather than appended.
func TestRecordDropsUnresolvableObject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec.rfr")
	w, err := NewWriter(dir, Options{Clock: fixedClock(schema.AbsTimestamp{Secs: 1000})})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Shutdown()

	seq := w.Sequence()
	ts := schema.AbsTimestamp{Secs: 1000, SubsecMicros: 500}
	ok := w.Record(seq, ts, schema.NewNewTask(7), func([]schema.InstrumentationId) []*schema.Object {
		return []*schema.Object{nil}
	})
	if ok {
		t.Fatalf("expected record to be dropped when object cannot be resolved")
	}
}

// TestRecordResolvesAndCachesObject verifies a referenced object is
// requested from the resolver only once, even across multiple records
// referencing the same iid.
func TestRecordResolvesAndCachesObject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec.rfr")
	w, err := NewWriter(dir, Options{Clock: fixedClock(schema.AbsTimestamp{Secs: 1000})})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Shutdown()

	seq := w.Sequence()
	resolveCalls := 0
	resolve := func(ids []schema.InstrumentationId) []*schema.Object {
		resolveCalls++
		task := schema.NewTaskObject(schema.Task{Iid: ids[0], TaskId: 1})
		return []*schema.Object{&task}
	}
	ts := schema.AbsTimestamp{Secs: 1000, SubsecMicros: 100}
	if !w.Record(seq, ts, schema.NewNewTask(7), resolve) {
		t.Fatalf("expected first record to be appended")
	}
	ts2 := schema.AbsTimestamp{Secs: 1000, SubsecMicros: 200}
	if !w.Record(seq, ts2, schema.NewTaskPollStart(7), resolve) {
		t.Fatalf("expected second record to be appended")
	}
	if resolveCalls != 1 {
		t.Fatalf("expected object to be resolved exactly once, got %d calls", resolveCalls)
	}
}

// TestWriteCompletedChunksProducesChunkFile exercises the interval
// rotation + on-disk chunk write end to end.
func TestWriteCompletedChunksProducesChunkFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec.rfr")
	base := schema.AbsTimestamp{Secs: 1000}
	clockTime := base
	clock := func() schema.AbsTimestamp { return clockTime }

	w, err := NewWriter(dir, Options{ChunkPeriodMicros: 1_000_000, Clock: clock})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	seq := w.Sequence()
	resolve := func(ids []schema.InstrumentationId) []*schema.Object {
		task := schema.NewTaskObject(schema.Task{Iid: ids[0], TaskId: 1})
		return []*schema.Object{&task}
	}
	if !w.Record(seq, base, schema.NewNewTask(1), resolve) {
		t.Fatalf("expected record to be appended")
	}

	// Advance the clock well past the interval's end plus the settle buffer.
	clockTime = schema.AbsTimestamp{Secs: base.Secs + 2}
	if _, err := w.WriteCompletedChunks(); err != nil {
		t.Fatalf("WriteCompletedChunks: %v", err)
	}

	paths := mustWalkChunks(t, dir)
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 chunk file written, got %d: %v", len(paths), paths)
	}
	chunk, err := chunked.OpenChunkFile(paths[0])
	if err != nil {
		t.Fatalf("OpenChunkFile: %v", err)
	}
	if len(chunk.SeqChunks) != 1 || len(chunk.SeqChunks[0].Records) != 1 {
		t.Fatalf("unexpected chunk contents: %+v", chunk)
	}
	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestWaitFlushUnblocksAfterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec.rfr")
	base := schema.AbsTimestamp{Secs: 2000}
	clockTime := base
	clock := func() schema.AbsTimestamp { return clockTime }

	w, err := NewWriter(dir, Options{ChunkPeriodMicros: 1_000_000, Clock: clock})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	seq := w.Sequence()
	resolve := func(ids []schema.InstrumentationId) []*schema.Object {
		task := schema.NewTaskObject(schema.Task{Iid: ids[0], TaskId: 1})
		return []*schema.Object{&task}
	}
	w.Record(seq, base, schema.NewNewTask(1), resolve)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- w.WaitFlush(ctx)
	}()

	clockTime = schema.AbsTimestamp{Secs: base.Secs + 2}
	if _, err := w.WriteCompletedChunks(); err != nil {
		t.Fatalf("WriteCompletedChunks: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitFlush: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitFlush did not unblock after write")
	}
	w.Shutdown()
}

func TestWaitFlushReturnsErrorAfterShutdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec.rfr")
	w, err := NewWriter(dir, Options{Clock: fixedClock(schema.AbsTimestamp{Secs: 1})})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := w.WaitFlush(context.Background()); err != ErrFlusherClosed {
		t.Fatalf("expected ErrFlusherClosed, got %v", err)
	}
}

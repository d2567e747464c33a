package chunkindex

import (
	"path/filepath"
	"testing"

	"rfr/internal/chunked"
	"rfr/internal/engine"
	"rfr/internal/schema"
)

func TestBuildWriteReadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec.rfr")
	w, err := engine.NewWriter(dir, engine.Options{
		ChunkPeriodMicros: 1_000_000,
		Clock:             func() schema.AbsTimestamp { return schema.AbsTimestamp{Secs: 2000} },
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	seq := w.Sequence()
	resolve := func(ids []schema.InstrumentationId) []*schema.Object {
		task := schema.NewTaskObject(schema.Task{Iid: ids[0], TaskId: 1, TaskName: "t"})
		return []*schema.Object{&task}
	}
	ts := schema.AbsTimestamp{Secs: 2000, SubsecMicros: 10}
	if !w.Record(seq, ts, schema.NewNewTask(1), resolve) {
		t.Fatalf("expected record to be appended")
	}
	if err := w.WriteAllChunks(); err != nil {
		t.Fatalf("WriteAllChunks: %v", err)
	}
	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	rec, err := chunked.OpenRecording(dir)
	if err != nil {
		t.Fatalf("OpenRecording: %v", err)
	}
	idx, err := Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(idx.Entries) != 1 {
		t.Fatalf("expected 1 index entry, got %d", len(idx.Entries))
	}
	if idx.Entries[0].BaseSecs != 2000 {
		t.Fatalf("expected base secs 2000, got %d", idx.Entries[0].BaseSecs)
	}
	if len(idx.Entries[0].SeqIDs) != 1 || idx.Entries[0].SeqIDs[0] != uint64(seq) {
		t.Fatalf("expected entry to carry seq %d, got %v", seq, idx.Entries[0].SeqIDs)
	}

	if err := WriteFile(dir, idx); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loaded, err := ReadFile(dir)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(loaded.Entries) != 1 || loaded.Entries[0].RelPath != idx.Entries[0].RelPath {
		t.Fatalf("round-tripped index mismatch: got %+v, want %+v", loaded.Entries, idx.Entries)
	}

	seqIDs := loaded.SeqIDs()
	if len(seqIDs) != 1 || seqIDs[0] != uint64(seq) {
		t.Fatalf("SeqIDs() = %v, want [%d]", seqIDs, seq)
	}
	if entries := loaded.EntriesForSeq(uint64(seq)); len(entries) != 1 {
		t.Fatalf("EntriesForSeq(%d) = %d entries, want 1", seq, len(entries))
	}
	if entries := loaded.EntriesForSeq(uint64(seq) + 99); len(entries) != 0 {
		t.Fatalf("EntriesForSeq(unknown) = %d entries, want 0", len(entries))
	}
}

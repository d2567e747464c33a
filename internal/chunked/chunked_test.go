package chunked

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rfr/internal/schema"
)

func TestMetaRoundTrip(t *testing.T) {
	m, err := NewMeta(schema.AbsTimestamp{Secs: 100}, []string{"rfr-c/0.1.0"})
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteMeta(&buf, m); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	got, err := ReadMeta(&buf)
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if got.Header.CreatedTime != m.Header.CreatedTime {
		t.Fatalf("got %+v, want %+v", got.Header, m.Header)
	}
}

func TestNewMetaRejectsEmptyFormatIdentifiers(t *testing.T) {
	if _, err := NewMeta(schema.AbsTimestamp{}, nil); !errors.Is(err, ErrMissingFormatIdentifiers) {
		t.Fatalf("expected ErrMissingFormatIdentifiers, got %v", err)
	}
}

func TestCallsitesWriterDedup(t *testing.T) {
	var buf bytes.Buffer
	cw, err := NewCallsitesWriter(&buf)
	if err != nil {
		t.Fatalf("NewCallsitesWriter: %v", err)
	}
	c1 := schema.Callsite{CallsiteId: 1, Level: schema.LevelInfo, Kind: schema.KindEvent}
	c2 := schema.Callsite{CallsiteId: 2, Level: schema.LevelWarn, Kind: schema.KindSpan}
	if res := cw.PushCallsite(c1); res != Added {
		t.Fatalf("expected Added, got %v", res)
	}
	if res := cw.PushCallsite(c2); res != Added {
		t.Fatalf("expected Added, got %v", res)
	}
	if res := cw.PushCallsite(c1); res != Duplicate {
		t.Fatalf("expected Duplicate, got %v", res)
	}
	if !cw.NeedsFlush() {
		t.Fatalf("expected NeedsFlush true")
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if cw.NeedsFlush() {
		t.Fatalf("expected NeedsFlush false after flush")
	}

	_, callsites, err := ReadCallsites(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadCallsites: %v", err)
	}
	if len(callsites) != 2 {
		t.Fatalf("expected 2 callsites, got %d", len(callsites))
	}
}

func TestChunkFileRoundTrip(t *testing.T) {
	chunk := schema.Chunk{
		Header: schema.ChunkHeader{
			Interval: schema.ChunkInterval{
				BaseTime:  schema.AbsTimestampSecs{Secs: 100},
				StartTime: schema.ChunkTimestamp{Micros: 0},
				EndTime:   schema.ChunkTimestamp{Micros: 1_000_000},
			},
			EarliestTimestamp: schema.ChunkTimestamp{Micros: 10},
			LatestTimestamp:   schema.ChunkTimestamp{Micros: 900_000},
		},
		SeqChunks: []schema.SeqChunk{
			{
				Header: schema.SeqChunkHeader{SeqId: 1, EarliestTimestamp: schema.ChunkTimestamp{Micros: 10}, LatestTimestamp: schema.ChunkTimestamp{Micros: 900_000}},
				Records: []schema.ChunkedRecord{
					{Timestamp: schema.ChunkTimestamp{Micros: 10}, Data: schema.NewNewTask(1)},
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := WriteChunkFile(&buf, chunk); err != nil {
		t.Fatalf("WriteChunkFile: %v", err)
	}
	got, err := ReadChunkFile(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadChunkFile: %v", err)
	}
	if len(got.SeqChunks) != 1 || len(got.SeqChunks[0].Records) != 1 {
		t.Fatalf("unexpected chunk contents: %+v", got)
	}
}

// TestChunkFilePartialRecovery implements scenario S4: a chunk file
// truncated mid-write still yields its earlier, fully-decoded
// sub-chunks along with ErrPartialChunk.
func TestChunkFilePartialRecovery(t *testing.T) {
	chunk := schema.Chunk{
		Header: schema.ChunkHeader{
			Interval: schema.ChunkInterval{
				BaseTime: schema.AbsTimestampSecs{Secs: 5},
				EndTime:  schema.ChunkTimestamp{Micros: 1_000_000},
			},
		},
		SeqChunks: []schema.SeqChunk{
			{
				Header:  schema.SeqChunkHeader{SeqId: 1},
				Records: []schema.ChunkedRecord{{Data: schema.NewNewTask(1)}},
			},
			{
				Header:  schema.SeqChunkHeader{SeqId: 2},
				Records: []schema.ChunkedRecord{{Data: schema.NewNewTask(2)}},
			},
		},
	}
	var full bytes.Buffer
	if err := WriteChunkFile(&full, chunk); err != nil {
		t.Fatalf("WriteChunkFile: %v", err)
	}
	truncated := full.Bytes()[:full.Len()-2]

	got, err := ReadChunkFile(bytes.NewReader(truncated))
	if !errors.Is(err, ErrPartialChunk) {
		t.Fatalf("expected ErrPartialChunk, got %v", err)
	}
	if len(got.SeqChunks) != 1 {
		t.Fatalf("expected first sub-chunk recovered, got %d sub-chunks", len(got.SeqChunks))
	}
}

func TestChunkPathLayout(t *testing.T) {
	interval := schema.ChunkInterval{BaseTime: schema.AbsTimestampSecs{Secs: 1700000000}}
	path := ChunkPath("/recordings/demo.rfr", interval)
	want := filepath.Join("/recordings/demo.rfr", "2023-11", "14-22", "chunk-13-20-000000.rfr")
	if path != want {
		t.Fatalf("got %s, want %s", path, want)
	}
}

// TestChunkPathDistinguishesSubSecondIntervals verifies that two
// intervals sharing a base_time but differing only in their
// sub-second start_time offset (as produced by a 250ms/500ms
// chunk_period) no longer collide on the same chunk file path.
func TestChunkPathDistinguishesSubSecondIntervals(t *testing.T) {
	base := schema.AbsTimestampSecs{Secs: 1700000000}
	paths := make(map[string]bool)
	for _, micros := range []uint64{0, 250_000, 500_000, 750_000} {
		interval := schema.ChunkInterval{BaseTime: base, StartTime: schema.ChunkTimestamp{Micros: micros}}
		path := ChunkPath("/recordings/demo.rfr", interval)
		if paths[path] {
			t.Fatalf("expected distinct path for start_time micros=%d, got duplicate %s", micros, path)
		}
		paths[path] = true
	}
}

func TestOpenRecordingDiscoversChunks(t *testing.T) {
	root := t.TempDir()
	m, err := NewMeta(schema.AbsTimestamp{Secs: 1}, []string{"rfr-c/0.1.0"})
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}
	metaFile, err := os.Create(MetaPath(root))
	if err != nil {
		t.Fatalf("create meta: %v", err)
	}
	if err := WriteMeta(metaFile, m); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	metaFile.Close()

	cw, callsitesFile, err := CreateCallsitesWriter(CallsitesPath(root))
	if err != nil {
		t.Fatalf("CreateCallsitesWriter: %v", err)
	}
	cw.PushCallsite(schema.Callsite{CallsiteId: 1, Level: schema.LevelInfo, Kind: schema.KindEvent})
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	callsitesFile.Close()

	interval := schema.ChunkInterval{BaseTime: schema.AbsTimestampSecs{Secs: 1}, EndTime: schema.ChunkTimestamp{Micros: 1_000_000}}
	chunk := schema.Chunk{
		Header: schema.ChunkHeader{Interval: interval},
		SeqChunks: []schema.SeqChunk{
			{Header: schema.SeqChunkHeader{SeqId: 1}, Records: []schema.ChunkedRecord{{Data: schema.NewNewTask(1)}}},
		},
	}
	if err := CreateChunkFile(ChunkPath(root, interval), chunk); err != nil {
		t.Fatalf("CreateChunkFile: %v", err)
	}

	rec, err := OpenRecording(root)
	if err != nil {
		t.Fatalf("OpenRecording: %v", err)
	}
	if len(rec.Callsites) != 1 {
		t.Fatalf("expected 1 callsite, got %d", len(rec.Callsites))
	}
	if len(rec.ChunkPaths()) != 1 {
		t.Fatalf("expected 1 chunk path, got %d", len(rec.ChunkPaths()))
	}
	subChunks := rec.SubChunks()
	if len(subChunks) != 1 || len(subChunks[0].Records) != 1 {
		t.Fatalf("unexpected sub-chunks: %+v", subChunks)
	}
}

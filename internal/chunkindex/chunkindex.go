// Package chunkindex builds and loads a regenerable side-index over a
// chunked recording directory, mapping each chunk file to its interval
// and the sequence ids it carries so a reader can do random access
// into a large recording without re-reading every chunk header. It is
// not part of the normative wire format (see internal/chunked,
// internal/stream): the index is a local cache, always rebuildable
// from the chunk files themselves, which is why a general-purpose
// serializer is appropriate here where it would not be for the core
// codec.
package chunkindex

import (
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"rfr/internal/chunked"
)

// IndexFileName is the index's filename within a recording directory.
const IndexFileName = "index.msgpack"

// Entry describes one chunk file's interval and the sequences it
// carries, relative to the recording root.
type Entry struct {
	RelPath   string   `msgpack:"rel_path"`
	BaseSecs  uint64   `msgpack:"base_secs"`
	StartUsec uint64   `msgpack:"start_usec"`
	EndUsec   uint64   `msgpack:"end_usec"`
	SeqIDs    []uint64 `msgpack:"seq_ids"`
}

// Index is the full side-index for one recording.
type Index struct {
	Entries []Entry `msgpack:"entries"`
}

// Build walks rec's already-discovered chunk files and constructs an
// Index from their headers. A chunk that fails to load entirely is
// skipped (the index is best-effort; a missing entry just costs a
// reader the random-access shortcut for that chunk, never correctness
// since internal/chunked always falls back to reading the file).
func Build(rec *chunked.Recording) (*Index, error) {
	idx := &Index{}
	for _, loaded := range rec.Chunks() {
		if loaded.Err != nil && len(loaded.Chunk.SeqChunks) == 0 {
			continue
		}
		relPath, err := filepath.Rel(rec.RootDir, loaded.Path)
		if err != nil {
			relPath = loaded.Path
		}
		seqIDs := make([]uint64, 0, len(loaded.Chunk.SeqChunks))
		for _, sc := range loaded.Chunk.SeqChunks {
			seqIDs = append(seqIDs, uint64(sc.Header.SeqId))
		}
		interval := loaded.Chunk.Header.Interval
		base := interval.BaseTime.Secs
		start := interval.StartTime.Micros
		end := interval.EndTime.Micros
		idx.Entries = append(idx.Entries, Entry{
			RelPath:   relPath,
			BaseSecs:  base,
			StartUsec: start,
			EndUsec:   end,
			SeqIDs:    seqIDs,
		})
	}
	return idx, nil
}

// Path returns the index file path for a recording rooted at dir.
func Path(dir string) string { return filepath.Join(dir, IndexFileName) }

// WriteFile msgpack-encodes idx to Path(dir).
func WriteFile(dir string, idx *Index) error {
	data, err := msgpack.Marshal(idx)
	if err != nil {
		return err
	}
	return os.WriteFile(Path(dir), data, 0o644)
}

// ReadFile loads a previously written index for the recording at dir.
func ReadFile(dir string) (*Index, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := msgpack.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// SeqIDs returns the set of sequence ids carried anywhere in the
// index, deduplicated.
func (idx *Index) SeqIDs() []uint64 {
	seen := make(map[uint64]bool)
	var out []uint64
	for _, e := range idx.Entries {
		for _, id := range e.SeqIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// EntriesForSeq returns every entry that carries seqID, in index order.
func (idx *Index) EntriesForSeq(seqID uint64) []Entry {
	var out []Entry
	for _, e := range idx.Entries {
		for _, id := range e.SeqIDs {
			if id == seqID {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

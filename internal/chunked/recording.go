package chunked

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rfr/internal/identifier"
	"rfr/internal/schema"
)

// Recording is an opened chunked recording directory: its meta file,
// callsites, and the lazily-loaded sequence of chunk files beneath it.
type Recording struct {
	RootDir    string
	Meta       Meta
	Callsites  []schema.Callsite
	chunkPaths []string
}

// ChunkLoadResult pairs a chunk (possibly partial) with the error, if
// any, encountered loading it and the path it was loaded from.
type ChunkLoadResult struct {
	Path  string
	Chunk schema.Chunk
	Err   error
}

// OpenRecording opens a chunked recording rooted at dir: it reads
// meta.rfr and callsites.rfr eagerly and discovers every chunk file
// beneath dir (any "*.rfr" file other than those two), sorted by path
// so chunks are visited in their natural chronological directory order.
func OpenRecording(dir string) (*Recording, error) {
	metaFile, err := os.Open(MetaPath(dir))
	if err != nil {
		return nil, err
	}
	meta, err := ReadMeta(metaFile)
	metaFile.Close()
	if err != nil {
		return nil, err
	}

	current := identifier.Current(identifier.VariantChunk)
	if len(meta.Header.FormatIdentifiers) > 0 {
		if writerID, err := identifier.Parse(meta.Header.FormatIdentifiers[0]); err == nil {
			if err := current.CanReadVersion(writerID); err != nil {
				return nil, err
			}
		}
	}

	var callsites []schema.Callsite
	if callsitesFile, err := os.Open(CallsitesPath(dir)); err == nil {
		_, callsites, err = ReadCallsites(callsitesFile)
		callsitesFile.Close()
		if err != nil {
			return nil, err
		}
	}

	var chunkPaths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == "meta.rfr" || name == "callsites.rfr" {
			return nil
		}
		if strings.HasSuffix(name, ".rfr") {
			chunkPaths = append(chunkPaths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(chunkPaths)

	return &Recording{
		RootDir:    dir,
		Meta:       meta,
		Callsites:  callsites,
		chunkPaths: chunkPaths,
	}, nil
}

// ChunkPaths returns the discovered chunk file paths in sorted order.
func (rec *Recording) ChunkPaths() []string { return append([]string(nil), rec.chunkPaths...) }

// Chunks loads every discovered chunk file in order. A chunk that fails
// to load (including partially, see ErrPartialChunk) is still reported
// in the result slice rather than aborting the whole recording, so a
// single corrupted or in-progress chunk never hides the rest.
func (rec *Recording) Chunks() []ChunkLoadResult {
	results := make([]ChunkLoadResult, 0, len(rec.chunkPaths))
	for _, path := range rec.chunkPaths {
		chunk, err := OpenChunkFile(path)
		results = append(results, ChunkLoadResult{Path: path, Chunk: chunk, Err: err})
	}
	return results
}

// SubChunkRef names a single sub-chunk (sequence chunk) within a loaded
// chunk, pairing its header and records with a reference to the object
// table it was decoded alongside.
type SubChunkRef struct {
	ChunkPath string
	Header    schema.SeqChunkHeader
	Objects   []schema.Object
	Records   []schema.ChunkedRecord
}

// SubChunks flattens every chunk's sequence chunks into a single
// ordered list, skipping chunks that failed to load entirely (a
// partial chunk's successfully-decoded sub-chunks are still included).
func (rec *Recording) SubChunks() []SubChunkRef {
	var out []SubChunkRef
	for _, loaded := range rec.Chunks() {
		for _, sc := range loaded.Chunk.SeqChunks {
			out = append(out, SubChunkRef{
				ChunkPath: loaded.Path,
				Header:    sc.Header,
				Objects:   sc.Objects,
				Records:   sc.Records,
			})
		}
	}
	return out
}

package chunked

import (
	"errors"
	"io"
	"os"

	"rfr/internal/identifier"
	"rfr/internal/schema"
	"rfr/internal/wire"
)

// ErrPartialChunk is returned when a chunk file's format identifier
// decodes cleanly but its header, its sub-chunk count, or one or more
// of its declared sub-chunks are missing or truncated. The caller
// receives whatever header and sub-chunks were successfully decoded
// alongside this error.
var ErrPartialChunk = errors.New("chunked: chunk file is truncated")

// WriteChunkFile serializes chunk as a standalone chunk file: the
// format identifier header followed by the chunk's own encoding.
func WriteChunkFile(w io.Writer, chunk schema.Chunk) error {
	enc := wire.NewWriter()
	identifier.Current(identifier.VariantChunk).Encode(enc)
	chunk.Encode(enc)
	_, err := w.Write(enc.Bytes())
	return err
}

// CreateChunkFile creates path (and any missing parent directories) and
// writes chunk to it.
func CreateChunkFile(path string, chunk schema.Chunk) error {
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteChunkFile(f, chunk)
}

func dirOf(path string) string {
	i := len(path)
	for i > 0 && path[i-1] != '/' {
		i--
	}
	if i == 0 {
		return "."
	}
	return path[:i-1]
}

// ReadChunkFile reads and validates a complete chunk file. If the
// header decodes but the declared number of sub-chunks cannot be fully
// decoded (the file was read while still being written), the
// successfully-decoded sub-chunks are returned alongside ErrPartialChunk
// rather than discarding the whole chunk — this realizes spec.md's
// partial-chunk recovery scenario (S4).
func ReadChunkFile(r io.Reader) (schema.Chunk, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return schema.Chunk{}, err
	}
	rd := wire.NewReader(data)
	id, err := identifier.Decode(rd)
	if err != nil {
		return schema.Chunk{}, err
	}
	current := identifier.Current(identifier.VariantChunk)
	if err := current.CanReadVersion(id); err != nil {
		return schema.Chunk{}, err
	}
	header, err := schema.DecodeChunkHeader(rd)
	if err != nil {
		return schema.Chunk{}, ErrPartialChunk
	}
	n, err := rd.GetSeqLen()
	if err != nil {
		return schema.Chunk{Header: header}, ErrPartialChunk
	}
	seqChunks := make([]schema.SeqChunk, 0, n)
	for i := 0; i < n; i++ {
		sc, err := schema.DecodeSeqChunk(rd)
		if err != nil {
			return schema.Chunk{Header: header, SeqChunks: seqChunks}, ErrPartialChunk
		}
		seqChunks = append(seqChunks, sc)
	}
	return schema.Chunk{Header: header, SeqChunks: seqChunks}, nil
}

// OpenChunkFile opens path and reads it with ReadChunkFile.
func OpenChunkFile(path string) (schema.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Chunk{}, err
	}
	defer f.Close()
	return ReadChunkFile(f)
}

package engine

import (
	"sync"

	"rfr/internal/schema"
)

// chunkBuffer accumulates every sequence's contribution to a single
// chunk interval until it is sealed and written to disk.
type chunkBuffer struct {
	interval schema.ChunkInterval

	mu  sync.Mutex
	seq map[SeqID]*SequenceBuffer
}

func newChunkBuffer(interval schema.ChunkInterval) *chunkBuffer {
	return &chunkBuffer{interval: interval, seq: make(map[SeqID]*SequenceBuffer)}
}

// sequenceBuffer returns the buffer for seqID, creating it if absent.
func (cb *chunkBuffer) sequenceBuffer(seqID SeqID) *SequenceBuffer {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	sb, ok := cb.seq[seqID]
	if !ok {
		sb = NewSequenceBuffer(seqID, cb.interval)
		cb.seq[seqID] = sb
	}
	return sb
}

// seal aggregates every sequence buffer into a schema.Chunk, with the
// chunk-level earliest/latest timestamps taking the min/max across all
// sequences (per spec.md's invariant that the chunk envelope bounds
// every sub-chunk's own envelope).
func (cb *chunkBuffer) seal() schema.Chunk {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	header := schema.ChunkHeader{
		Interval:          cb.interval,
		EarliestTimestamp: cb.interval.EndTime,
		LatestTimestamp:   cb.interval.StartTime,
	}
	seqChunks := make([]schema.SeqChunk, 0, len(cb.seq))
	for _, sb := range cb.seq {
		sc := sb.Seal()
		if len(sc.Records) == 0 {
			continue
		}
		seqChunks = append(seqChunks, sc)
		if sc.Header.EarliestTimestamp.Micros < header.EarliestTimestamp.Micros {
			header.EarliestTimestamp = sc.Header.EarliestTimestamp
		}
		if sc.Header.LatestTimestamp.Micros > header.LatestTimestamp.Micros {
			header.LatestTimestamp = sc.Header.LatestTimestamp
		}
	}
	return schema.Chunk{Header: header, SeqChunks: seqChunks}
}

// empty reports whether no sequence buffer has any record yet.
func (cb *chunkBuffer) empty() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	for _, sb := range cb.seq {
		if sb.RecordCount() > 0 {
			return false
		}
	}
	return true
}

package engine

import (
	"sync"
	"sync/atomic"

	"rfr/internal/schema"
)

// SeqID is a process-wide unique handle a producer acquires once
// (via Writer.Sequence) and reuses for every record it emits,
// replacing the original implementation's thread-local SeqId
// allocation with an explicit handle appropriate for goroutines, which
// have no stable thread-local storage.
type SeqID = schema.SeqId

var nextSeqID atomic.Uint64

func allocateSeqID() SeqID {
	return SeqID(nextSeqID.Add(1))
}

// ObjectResolver resolves a batch of instrumentation ids to the
// Span/Task object each declares, in the same order as requested. A nil
// entry means the id could not be resolved at all.
type ObjectResolver func(ids []schema.InstrumentationId) []*schema.Object

// SequenceBuffer accumulates one sequence's in-order records for a
// single chunk interval, resolving and caching the Span/Task objects
// its records reference the first time each is seen. A record whose
// referenced object cannot be resolved is silently dropped — mirroring
// the original implementation's append_record behavior exactly — since
// a record about an object the recorder never observed cannot be
// interpreted by a reader either.
type SequenceBuffer struct {
	interval schema.ChunkInterval

	mu      sync.Mutex
	header  schema.SeqChunkHeader
	objects map[schema.InstrumentationId]schema.Object
	missing map[schema.InstrumentationId]struct{}
	records []schema.ChunkedRecord
}

// NewSequenceBuffer creates an empty buffer for seqID over interval.
func NewSequenceBuffer(seqID SeqID, interval schema.ChunkInterval) *SequenceBuffer {
	return &SequenceBuffer{
		interval: interval,
		header: schema.SeqChunkHeader{
			SeqId:             seqID,
			EarliestTimestamp: interval.EndTime,
			LatestTimestamp:   interval.StartTime,
		},
		objects: make(map[schema.InstrumentationId]schema.Object),
		missing: make(map[schema.InstrumentationId]struct{}),
	}
}

// Interval reports the chunk interval this buffer belongs to.
func (sb *SequenceBuffer) Interval() schema.ChunkInterval { return sb.interval }

// SeqID reports this buffer's sequence identifier.
func (sb *SequenceBuffer) SeqID() SeqID {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.header.SeqId
}

// RecordCount reports how many records have been appended so far.
func (sb *SequenceBuffer) RecordCount() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return len(sb.records)
}

// AppendRecord converts timestamp to a ChunkTimestamp relative to this
// buffer's interval base time, resolves any object the record
// references via resolve (skipping ids already cached), and appends
// the record. It reports false if the record was dropped because an
// object it references could not be resolved.
func (sb *SequenceBuffer) AppendRecord(timestamp schema.AbsTimestamp, data schema.ChunkedRecordData, resolve ObjectResolver) bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if iid, ok := data.ReferencedIid(); ok {
		if _, cached := sb.objects[iid]; !cached {
			if _, known := sb.missing[iid]; known {
				return false
			}
			resolved := resolve([]schema.InstrumentationId{iid})
			if len(resolved) == 0 || resolved[0] == nil {
				sb.missing[iid] = struct{}{}
				return false
			}
			sb.objects[iid] = *resolved[0]
		}
	}

	ts := sb.interval.ChunkTimestampFor(timestamp)
	rec := schema.ChunkedRecord{Timestamp: ts, Data: data}

	if len(sb.records) == 0 {
		sb.header.EarliestTimestamp = ts
	}
	sb.header.LatestTimestamp = ts
	sb.records = append(sb.records, rec)
	return true
}

// Seal returns the SeqChunk this buffer has accumulated. The buffer
// remains usable afterward (Seal does not clear state); callers
// writing completed chunks discard the whole buffer rather than
// reusing it across intervals.
func (sb *SequenceBuffer) Seal() schema.SeqChunk {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	objects := make([]schema.Object, 0, len(sb.objects))
	for _, o := range sb.objects {
		objects = append(objects, o)
	}
	records := make([]schema.ChunkedRecord, len(sb.records))
	copy(records, sb.records)
	return schema.SeqChunk{
		Header:  sb.header,
		Objects: objects,
		Records: records,
	}
}

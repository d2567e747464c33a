package schema

import "rfr/internal/wire"

// ObjectKind discriminates the Object tagged union stored in a
// sub-chunk's object table.
type ObjectKind uint64

const (
	ObjectSpan ObjectKind = 0
	ObjectTask ObjectKind = 1
)

// Object is a Span or Task declaration attached to a sub-chunk, resolved
// once per interval per sequence the first time a record references it.
type Object struct {
	Kind ObjectKind
	Span Span
	Task Task
}

// NewSpanObject wraps a Span as an Object.
func NewSpanObject(s Span) Object { return Object{Kind: ObjectSpan, Span: s} }

// NewTaskObject wraps a Task as an Object.
func NewTaskObject(t Task) Object { return Object{Kind: ObjectTask, Task: t} }

// Iid returns the instrumentation id the object is declared under,
// regardless of which variant it is.
func (o Object) Iid() InstrumentationId {
	if o.Kind == ObjectTask {
		return o.Task.Iid
	}
	return o.Span.Iid
}

// Encode writes the object.
func (o Object) Encode(w *wire.Writer) {
	w.PutDiscriminant(uint64(o.Kind))
	switch o.Kind {
	case ObjectSpan:
		o.Span.Encode(w)
	case ObjectTask:
		o.Task.Encode(w)
	}
}

// DecodeObject reads an Object.
func DecodeObject(r *wire.Reader) (Object, error) {
	tag, err := r.GetDiscriminant()
	if err != nil {
		return Object{}, err
	}
	switch ObjectKind(tag) {
	case ObjectSpan:
		s, err := DecodeSpan(r)
		if err != nil {
			return Object{}, err
		}
		return NewSpanObject(s), nil
	case ObjectTask:
		t, err := DecodeTask(r)
		if err != nil {
			return Object{}, err
		}
		return NewTaskObject(t), nil
	default:
		return Object{}, wire.NewUnknownVariantError(tag)
	}
}

// SeqChunkHeader is the header for one sequence's contribution to a
// chunk: its identity and the timestamp envelope of its records.
type SeqChunkHeader struct {
	SeqId             SeqId
	EarliestTimestamp ChunkTimestamp
	LatestTimestamp   ChunkTimestamp
}

// Encode writes the header.
func (h SeqChunkHeader) Encode(w *wire.Writer) {
	h.SeqId.Encode(w)
	h.EarliestTimestamp.Encode(w)
	h.LatestTimestamp.Encode(w)
}

// DecodeSeqChunkHeader reads a SeqChunkHeader.
func DecodeSeqChunkHeader(r *wire.Reader) (SeqChunkHeader, error) {
	seqID, err := DecodeSeqId(r)
	if err != nil {
		return SeqChunkHeader{}, err
	}
	earliest, err := DecodeChunkTimestamp(r)
	if err != nil {
		return SeqChunkHeader{}, err
	}
	latest, err := DecodeChunkTimestamp(r)
	if err != nil {
		return SeqChunkHeader{}, err
	}
	return SeqChunkHeader{SeqId: seqID, EarliestTimestamp: earliest, LatestTimestamp: latest}, nil
}

// SeqChunk is one sequence's in-order contribution to a chunk: the
// objects its records reference (local to this sub-chunk; may duplicate
// entries found in other sub-chunks) and the records themselves.
type SeqChunk struct {
	Header  SeqChunkHeader
	Objects []Object
	Records []ChunkedRecord
}

// Encode writes the sub-chunk: header, object count + objects, record
// count + records.
func (s SeqChunk) Encode(w *wire.Writer) {
	s.Header.Encode(w)
	w.PutSeqLen(len(s.Objects))
	for _, o := range s.Objects {
		o.Encode(w)
	}
	w.PutSeqLen(len(s.Records))
	for _, rec := range s.Records {
		rec.Encode(w)
	}
}

// DecodeSeqChunk reads a SeqChunk.
func DecodeSeqChunk(r *wire.Reader) (SeqChunk, error) {
	header, err := DecodeSeqChunkHeader(r)
	if err != nil {
		return SeqChunk{}, err
	}
	objN, err := r.GetSeqLen()
	if err != nil {
		return SeqChunk{}, err
	}
	objects := make([]Object, 0, objN)
	for i := 0; i < objN; i++ {
		o, err := DecodeObject(r)
		if err != nil {
			return SeqChunk{}, err
		}
		objects = append(objects, o)
	}
	recN, err := r.GetSeqLen()
	if err != nil {
		return SeqChunk{}, err
	}
	records := make([]ChunkedRecord, 0, recN)
	for i := 0; i < recN; i++ {
		rec, err := DecodeChunkedRecord(r)
		if err != nil {
			return SeqChunk{}, err
		}
		records = append(records, rec)
	}
	return SeqChunk{Header: header, Objects: objects, Records: records}, nil
}

// ChunkInterval is the half-open wall-clock window `[start, end)` a
// chunk covers, expressed as a whole-second base time plus chunk-relative
// start/end offsets in microseconds.
type ChunkInterval struct {
	BaseTime  AbsTimestampSecs
	StartTime ChunkTimestamp
	EndTime   ChunkTimestamp
}

// AbsStartTime returns the interval's start as an absolute timestamp.
func (iv ChunkInterval) AbsStartTime() AbsTimestamp {
	return chunkTimestampToAbs(iv.BaseTime, iv.StartTime)
}

// AbsEndTime returns the interval's end as an absolute timestamp.
func (iv ChunkInterval) AbsEndTime() AbsTimestamp {
	return chunkTimestampToAbs(iv.BaseTime, iv.EndTime)
}

func chunkTimestampToAbs(base AbsTimestampSecs, ts ChunkTimestamp) AbsTimestamp {
	secs := ts.Micros / 1_000_000
	subsec := uint32(ts.Micros % 1_000_000)
	return AbsTimestamp{Secs: base.Secs + secs, SubsecMicros: subsec}
}

// Contains reports whether an absolute timestamp falls within this
// half-open interval.
func (iv ChunkInterval) Contains(ts AbsTimestamp) bool {
	start := iv.AbsStartTime()
	end := iv.AbsEndTime()
	return ts.Compare(start) >= 0 && ts.Compare(end) < 0
}

// ChunkTimestampFor converts an absolute timestamp known to lie within
// this interval into a chunk-relative ChunkTimestamp.
func (iv ChunkInterval) ChunkTimestampFor(ts AbsTimestamp) ChunkTimestamp {
	secs := ts.Secs - iv.BaseTime.Secs
	micros := secs*1_000_000 + uint64(ts.SubsecMicros)
	return ChunkTimestamp{Micros: micros}
}

// Encode writes the interval.
func (iv ChunkInterval) Encode(w *wire.Writer) {
	iv.BaseTime.Encode(w)
	iv.StartTime.Encode(w)
	iv.EndTime.Encode(w)
}

// DecodeChunkInterval reads a ChunkInterval.
func DecodeChunkInterval(r *wire.Reader) (ChunkInterval, error) {
	base, err := DecodeAbsTimestampSecs(r)
	if err != nil {
		return ChunkInterval{}, err
	}
	start, err := DecodeChunkTimestamp(r)
	if err != nil {
		return ChunkInterval{}, err
	}
	end, err := DecodeChunkTimestamp(r)
	if err != nil {
		return ChunkInterval{}, err
	}
	return ChunkInterval{BaseTime: base, StartTime: start, EndTime: end}, nil
}

// ChunkIntervalFromTimestampAndPeriod computes the ChunkInterval a wall-
// clock timestamp belongs to, given an interval period in microseconds.
// periodMicros must either be a multiple of 1_000_000 (whole seconds) or
// evenly divide it (a sub-second period); see spec.md §4.7.
func ChunkIntervalFromTimestampAndPeriod(timestamp AbsTimestamp, periodMicros uint64) ChunkInterval {
	if periodMicros >= 1_000_000 {
		periodSecs := periodMicros / 1_000_000
		baseSecs := timestamp.Secs - (timestamp.Secs % periodSecs)
		start := ChunkTimestamp{Micros: 0}
		end := ChunkTimestamp{Micros: periodMicros}
		return ChunkInterval{BaseTime: AbsTimestampSecs{Secs: baseSecs}, StartTime: start, EndTime: end}
	}
	k := uint64(timestamp.SubsecMicros) / periodMicros
	start := ChunkTimestamp{Micros: k * periodMicros}
	end := ChunkTimestamp{Micros: (k + 1) * periodMicros}
	return ChunkInterval{BaseTime: AbsTimestampSecs{Secs: timestamp.Secs}, StartTime: start, EndTime: end}
}

// ChunkHeader is the per-chunk header: the interval it covers and the
// timestamp envelope over all of its sub-chunks.
type ChunkHeader struct {
	Interval          ChunkInterval
	EarliestTimestamp ChunkTimestamp
	LatestTimestamp   ChunkTimestamp
}

// Encode writes the header.
func (h ChunkHeader) Encode(w *wire.Writer) {
	h.Interval.Encode(w)
	h.EarliestTimestamp.Encode(w)
	h.LatestTimestamp.Encode(w)
}

// DecodeChunkHeader reads a ChunkHeader.
func DecodeChunkHeader(r *wire.Reader) (ChunkHeader, error) {
	interval, err := DecodeChunkInterval(r)
	if err != nil {
		return ChunkHeader{}, err
	}
	earliest, err := DecodeChunkTimestamp(r)
	if err != nil {
		return ChunkHeader{}, err
	}
	latest, err := DecodeChunkTimestamp(r)
	if err != nil {
		return ChunkHeader{}, err
	}
	return ChunkHeader{Interval: interval, EarliestTimestamp: earliest, LatestTimestamp: latest}, nil
}

// Chunk is a complete, self-describing chunk file's logical contents
// (the leading FormatIdentifier is handled by the chunked package, which
// owns file framing).
type Chunk struct {
	Header    ChunkHeader
	SeqChunks []SeqChunk
}

// Encode writes the header followed by the sequence count and sequences.
func (c Chunk) Encode(w *wire.Writer) {
	c.Header.Encode(w)
	w.PutSeqLen(len(c.SeqChunks))
	for _, sc := range c.SeqChunks {
		sc.Encode(w)
	}
}

// DecodeChunk reads a Chunk.
func DecodeChunk(r *wire.Reader) (Chunk, error) {
	header, err := DecodeChunkHeader(r)
	if err != nil {
		return Chunk{}, err
	}
	n, err := r.GetSeqLen()
	if err != nil {
		return Chunk{}, err
	}
	seqChunks := make([]SeqChunk, 0, n)
	for i := 0; i < n; i++ {
		sc, err := DecodeSeqChunk(r)
		if err != nil {
			return Chunk{}, err
		}
		seqChunks = append(seqChunks, sc)
	}
	return Chunk{Header: header, SeqChunks: seqChunks}, nil
}

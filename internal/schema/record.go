package schema

import "rfr/internal/wire"

// ChunkedRecordKind discriminates the chunked RecordData tagged union.
// These integers are normative and must never be reassigned across
// versions — additions land at new, unused discriminants.
type ChunkedRecordKind uint64

const (
	RecSpanNew        ChunkedRecordKind = 0
	RecSpanEnter      ChunkedRecordKind = 1
	RecSpanExit       ChunkedRecordKind = 2
	RecSpanClose      ChunkedRecordKind = 3
	RecEvent          ChunkedRecordKind = 4
	RecNewTask        ChunkedRecordKind = 5
	RecTaskPollStart  ChunkedRecordKind = 6
	RecTaskPollEnd    ChunkedRecordKind = 7
	RecTaskDrop       ChunkedRecordKind = 8
	RecWakerWake      ChunkedRecordKind = 9
	RecWakerWakeByRef ChunkedRecordKind = 10
	RecWakerClone     ChunkedRecordKind = 11
	RecWakerDrop      ChunkedRecordKind = 12
)

// ChunkedRecordData is the flat tagged union of activity records stored
// inside a chunk file. Exactly one field is meaningful, selected by Kind.
type ChunkedRecordData struct {
	Kind  ChunkedRecordKind
	Iid   InstrumentationId // SpanNew/SpanEnter/SpanExit/SpanClose/NewTask/TaskPollStart/TaskPollEnd/TaskDrop
	Event Event             // Event
	Waker Waker             // WakerWake/WakerWakeByRef/WakerClone/WakerDrop
}

func iidRecord(kind ChunkedRecordKind, iid InstrumentationId) ChunkedRecordData {
	return ChunkedRecordData{Kind: kind, Iid: iid}
}

// NewSpanNew constructs a SpanNew record.
func NewSpanNew(iid InstrumentationId) ChunkedRecordData { return iidRecord(RecSpanNew, iid) }

// NewSpanEnter constructs a SpanEnter record.
func NewSpanEnter(iid InstrumentationId) ChunkedRecordData { return iidRecord(RecSpanEnter, iid) }

// NewSpanExit constructs a SpanExit record.
func NewSpanExit(iid InstrumentationId) ChunkedRecordData { return iidRecord(RecSpanExit, iid) }

// NewSpanClose constructs a SpanClose record.
func NewSpanClose(iid InstrumentationId) ChunkedRecordData { return iidRecord(RecSpanClose, iid) }

// NewEventRecord constructs an Event record.
func NewEventRecord(ev Event) ChunkedRecordData {
	return ChunkedRecordData{Kind: RecEvent, Event: ev}
}

// NewNewTask constructs a NewTask record.
func NewNewTask(iid InstrumentationId) ChunkedRecordData { return iidRecord(RecNewTask, iid) }

// NewTaskPollStart constructs a TaskPollStart record.
func NewTaskPollStart(iid InstrumentationId) ChunkedRecordData {
	return iidRecord(RecTaskPollStart, iid)
}

// NewTaskPollEnd constructs a TaskPollEnd record.
func NewTaskPollEnd(iid InstrumentationId) ChunkedRecordData {
	return iidRecord(RecTaskPollEnd, iid)
}

// NewTaskDrop constructs a TaskDrop record.
func NewTaskDrop(iid InstrumentationId) ChunkedRecordData { return iidRecord(RecTaskDrop, iid) }

func wakerRecord(kind ChunkedRecordKind, wk Waker) ChunkedRecordData {
	return ChunkedRecordData{Kind: kind, Waker: wk}
}

// NewWakerWake constructs a WakerWake record.
func NewWakerWake(wk Waker) ChunkedRecordData { return wakerRecord(RecWakerWake, wk) }

// NewWakerWakeByRef constructs a WakerWakeByRef record.
func NewWakerWakeByRef(wk Waker) ChunkedRecordData { return wakerRecord(RecWakerWakeByRef, wk) }

// NewWakerClone constructs a WakerClone record.
func NewWakerClone(wk Waker) ChunkedRecordData { return wakerRecord(RecWakerClone, wk) }

// NewWakerDrop constructs a WakerDrop record.
func NewWakerDrop(wk Waker) ChunkedRecordData { return wakerRecord(RecWakerDrop, wk) }

// ReferencedIid reports the instrumentation id this record needs
// resolved via the per-sequence object closure, if any. Event and
// Waker-kind records reference task/span ids indirectly through their
// payload rather than a bare iid, and are handled by the caller.
func (d ChunkedRecordData) ReferencedIid() (InstrumentationId, bool) {
	switch d.Kind {
	case RecSpanNew, RecSpanEnter, RecSpanExit, RecSpanClose,
		RecNewTask, RecTaskPollStart, RecTaskPollEnd, RecTaskDrop:
		return d.Iid, true
	default:
		return 0, false
	}
}

// Encode writes the discriminant and payload.
func (d ChunkedRecordData) Encode(w *wire.Writer) {
	w.PutDiscriminant(uint64(d.Kind))
	switch d.Kind {
	case RecSpanNew, RecSpanEnter, RecSpanExit, RecSpanClose,
		RecNewTask, RecTaskPollStart, RecTaskPollEnd, RecTaskDrop:
		d.Iid.Encode(w)
	case RecEvent:
		d.Event.Encode(w)
	case RecWakerWake, RecWakerWakeByRef, RecWakerClone, RecWakerDrop:
		d.Waker.Encode(w)
	}
}

// DecodeChunkedRecordData reads a ChunkedRecordData.
func DecodeChunkedRecordData(r *wire.Reader) (ChunkedRecordData, error) {
	tag, err := r.GetDiscriminant()
	if err != nil {
		return ChunkedRecordData{}, err
	}
	kind := ChunkedRecordKind(tag)
	switch kind {
	case RecSpanNew, RecSpanEnter, RecSpanExit, RecSpanClose,
		RecNewTask, RecTaskPollStart, RecTaskPollEnd, RecTaskDrop:
		iid, err := DecodeInstrumentationId(r)
		if err != nil {
			return ChunkedRecordData{}, err
		}
		return iidRecord(kind, iid), nil
	case RecEvent:
		ev, err := DecodeEvent(r)
		if err != nil {
			return ChunkedRecordData{}, err
		}
		return NewEventRecord(ev), nil
	case RecWakerWake, RecWakerWakeByRef, RecWakerClone, RecWakerDrop:
		wk, err := DecodeWaker(r)
		if err != nil {
			return ChunkedRecordData{}, err
		}
		return wakerRecord(kind, wk), nil
	default:
		return ChunkedRecordData{}, wire.NewUnknownVariantError(tag)
	}
}

// ChunkedRecord pairs a chunk-relative timestamp with its payload.
type ChunkedRecord struct {
	Timestamp ChunkTimestamp
	Data      ChunkedRecordData
}

// Encode writes the record.
func (rec ChunkedRecord) Encode(w *wire.Writer) {
	rec.Timestamp.Encode(w)
	rec.Data.Encode(w)
}

// DecodeChunkedRecord reads a ChunkedRecord.
func DecodeChunkedRecord(r *wire.Reader) (ChunkedRecord, error) {
	ts, err := DecodeChunkTimestamp(r)
	if err != nil {
		return ChunkedRecord{}, err
	}
	data, err := DecodeChunkedRecordData(r)
	if err != nil {
		return ChunkedRecord{}, err
	}
	return ChunkedRecord{Timestamp: ts, Data: data}, nil
}

// StreamRecordKind discriminates the streaming RecordData tagged union.
// Unlike the chunked form, the streaming variant also declares objects
// inline (there is no side callsites/objects log in a single file) and
// carries the End terminator at discriminant 0.
type StreamRecordKind uint64

const (
	StreamEnd            StreamRecordKind = 0
	StreamCallsite       StreamRecordKind = 1
	StreamSpan           StreamRecordKind = 2
	StreamEvent          StreamRecordKind = 3
	StreamTask           StreamRecordKind = 4
	StreamSpanNew        StreamRecordKind = 5
	StreamSpanEnter      StreamRecordKind = 6
	StreamSpanExit       StreamRecordKind = 7
	StreamSpanClose      StreamRecordKind = 8
	StreamNewTask        StreamRecordKind = 9
	StreamTaskPollStart  StreamRecordKind = 10
	StreamTaskPollEnd    StreamRecordKind = 11
	StreamTaskDrop       StreamRecordKind = 12
	StreamWakerWake      StreamRecordKind = 13
	StreamWakerWakeByRef StreamRecordKind = 14
	StreamWakerClone     StreamRecordKind = 15
	StreamWakerDrop      StreamRecordKind = 16
)

// StreamRecordData is the streaming file's flat tagged union.
type StreamRecordData struct {
	Kind     StreamRecordKind
	Callsite Callsite
	Span     Span
	Event    Event
	Task     Task
	Iid      InstrumentationId
	Waker    Waker
}

// NewStreamEnd constructs the terminal End record.
func NewStreamEnd() StreamRecordData { return StreamRecordData{Kind: StreamEnd} }

// NewStreamCallsite constructs an inline callsite declaration.
func NewStreamCallsite(c Callsite) StreamRecordData {
	return StreamRecordData{Kind: StreamCallsite, Callsite: c}
}

// NewStreamSpan constructs an inline span declaration.
func NewStreamSpan(s Span) StreamRecordData { return StreamRecordData{Kind: StreamSpan, Span: s} }

// NewStreamEvent constructs an event record.
func NewStreamEvent(e Event) StreamRecordData {
	return StreamRecordData{Kind: StreamEvent, Event: e}
}

// NewStreamTask constructs an inline task declaration.
func NewStreamTask(t Task) StreamRecordData { return StreamRecordData{Kind: StreamTask, Task: t} }

func streamIidRecord(kind StreamRecordKind, iid InstrumentationId) StreamRecordData {
	return StreamRecordData{Kind: kind, Iid: iid}
}

// NewStreamSpanNew constructs a SpanNew activity record.
func NewStreamSpanNew(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamSpanNew, iid)
}

// NewStreamSpanEnter constructs a SpanEnter activity record.
func NewStreamSpanEnter(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamSpanEnter, iid)
}

// NewStreamSpanExit constructs a SpanExit activity record.
func NewStreamSpanExit(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamSpanExit, iid)
}

// NewStreamSpanClose constructs a SpanClose activity record.
func NewStreamSpanClose(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamSpanClose, iid)
}

// NewStreamNewTask constructs a NewTask activity record.
func NewStreamNewTask(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamNewTask, iid)
}

// NewStreamTaskPollStart constructs a TaskPollStart activity record.
func NewStreamTaskPollStart(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamTaskPollStart, iid)
}

// NewStreamTaskPollEnd constructs a TaskPollEnd activity record.
func NewStreamTaskPollEnd(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamTaskPollEnd, iid)
}

// NewStreamTaskDrop constructs a TaskDrop activity record.
func NewStreamTaskDrop(iid InstrumentationId) StreamRecordData {
	return streamIidRecord(StreamTaskDrop, iid)
}

func streamWakerRecord(kind StreamRecordKind, wk Waker) StreamRecordData {
	return StreamRecordData{Kind: kind, Waker: wk}
}

// NewStreamWakerWake constructs a WakerWake activity record.
func NewStreamWakerWake(wk Waker) StreamRecordData { return streamWakerRecord(StreamWakerWake, wk) }

// NewStreamWakerWakeByRef constructs a WakerWakeByRef activity record.
func NewStreamWakerWakeByRef(wk Waker) StreamRecordData {
	return streamWakerRecord(StreamWakerWakeByRef, wk)
}

// NewStreamWakerClone constructs a WakerClone activity record.
func NewStreamWakerClone(wk Waker) StreamRecordData {
	return streamWakerRecord(StreamWakerClone, wk)
}

// NewStreamWakerDrop constructs a WakerDrop activity record.
func NewStreamWakerDrop(wk Waker) StreamRecordData {
	return streamWakerRecord(StreamWakerDrop, wk)
}

// Encode writes the discriminant and payload.
func (d StreamRecordData) Encode(w *wire.Writer) {
	w.PutDiscriminant(uint64(d.Kind))
	switch d.Kind {
	case StreamEnd:
	case StreamCallsite:
		d.Callsite.Encode(w)
	case StreamSpan:
		d.Span.Encode(w)
	case StreamEvent:
		d.Event.Encode(w)
	case StreamTask:
		d.Task.Encode(w)
	case StreamSpanNew, StreamSpanEnter, StreamSpanExit, StreamSpanClose,
		StreamNewTask, StreamTaskPollStart, StreamTaskPollEnd, StreamTaskDrop:
		d.Iid.Encode(w)
	case StreamWakerWake, StreamWakerWakeByRef, StreamWakerClone, StreamWakerDrop:
		d.Waker.Encode(w)
	}
}

// DecodeStreamRecordData reads a StreamRecordData.
func DecodeStreamRecordData(r *wire.Reader) (StreamRecordData, error) {
	tag, err := r.GetDiscriminant()
	if err != nil {
		return StreamRecordData{}, err
	}
	kind := StreamRecordKind(tag)
	switch kind {
	case StreamEnd:
		return NewStreamEnd(), nil
	case StreamCallsite:
		c, err := DecodeCallsite(r)
		if err != nil {
			return StreamRecordData{}, err
		}
		return NewStreamCallsite(c), nil
	case StreamSpan:
		s, err := DecodeSpan(r)
		if err != nil {
			return StreamRecordData{}, err
		}
		return NewStreamSpan(s), nil
	case StreamEvent:
		e, err := DecodeEvent(r)
		if err != nil {
			return StreamRecordData{}, err
		}
		return NewStreamEvent(e), nil
	case StreamTask:
		t, err := DecodeTask(r)
		if err != nil {
			return StreamRecordData{}, err
		}
		return NewStreamTask(t), nil
	case StreamSpanNew, StreamSpanEnter, StreamSpanExit, StreamSpanClose,
		StreamNewTask, StreamTaskPollStart, StreamTaskPollEnd, StreamTaskDrop:
		iid, err := DecodeInstrumentationId(r)
		if err != nil {
			return StreamRecordData{}, err
		}
		return streamIidRecord(kind, iid), nil
	case StreamWakerWake, StreamWakerWakeByRef, StreamWakerClone, StreamWakerDrop:
		wk, err := DecodeWaker(r)
		if err != nil {
			return StreamRecordData{}, err
		}
		return streamWakerRecord(kind, wk), nil
	default:
		return StreamRecordData{}, wire.NewUnknownVariantError(tag)
	}
}

// StreamMeta is the per-record metadata in the streaming format.
type StreamMeta struct {
	Timestamp AbsTimestamp
}

// StreamRecord pairs streaming metadata with its payload.
type StreamRecord struct {
	Meta StreamMeta
	Data StreamRecordData
}

// Encode writes the record.
func (rec StreamRecord) Encode(w *wire.Writer) {
	rec.Meta.Timestamp.Encode(w)
	rec.Data.Encode(w)
}

// DecodeStreamRecord reads a StreamRecord.
func DecodeStreamRecord(r *wire.Reader) (StreamRecord, error) {
	ts, err := DecodeAbsTimestamp(r)
	if err != nil {
		return StreamRecord{}, err
	}
	data, err := DecodeStreamRecordData(r)
	if err != nil {
		return StreamRecord{}, err
	}
	return StreamRecord{Meta: StreamMeta{Timestamp: ts}, Data: data}, nil
}

// IsEnd reports whether this record is the streaming terminator.
func (rec StreamRecord) IsEnd() bool { return rec.Data.Kind == StreamEnd }

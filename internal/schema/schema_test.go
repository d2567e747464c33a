package schema

import (
	"reflect"
	"testing"

	"rfr/internal/wire"
)

func encodeDecode[T any](enc func(*wire.Writer), dec func(*wire.Reader) (T, error)) (T, error) {
	w := wire.NewWriter()
	enc(w)
	r := wire.NewReader(w.Bytes())
	return dec(r)
}

func TestFieldValueRoundTrip(t *testing.T) {
	values := []FieldValue{
		NewF64(3.14),
		NewI64(-42),
		NewU64(42),
		NewI128(wire.I128FromInt64(-1)),
		NewU128(wire.U128FromUint64(1)),
		NewBool(true),
		NewStr("hello"),
	}
	for _, v := range values {
		got, err := encodeDecode(v.Encode, DecodeFieldValue)
		if err != nil {
			t.Fatalf("round trip %+v: %v", v, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("got %+v, want %+v", got, v)
		}
	}
}

func TestCallsiteRoundTrip(t *testing.T) {
	c := Callsite{
		CallsiteId: 7,
		Level:      LevelInfo,
		Kind:       KindSpan,
		ConstFields: []Field{
			{Name: "file", Value: NewStr("main.rs")},
			{Name: "line", Value: NewU64(10)},
		},
		ConstFieldNames: []FieldName{{Name: "count"}},
	}
	got, err := encodeDecode(c.Encode, DecodeCallsite)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Fatalf("got %+v, want %+v", got, c)
	}
}

func TestSpanRoundTrip(t *testing.T) {
	s := Span{
		Iid:              3,
		CallsiteId:       7,
		Parent:           ExplicitParent(2),
		ConstFieldValues: []FieldValue{NewU64(1)},
		DynamicFields:    []Field{{Name: "n", Value: NewBool(false)}},
	}
	got, err := encodeDecode(s.Encode, DecodeSpan)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestTaskRoundTripWithContext(t *testing.T) {
	ctx := TaskId(5)
	task := Task{
		Iid:        1,
		CallsiteId: 2,
		TaskId:     3,
		TaskName:   "worker",
		TaskKind:   TaskKind{Discriminant: TaskKindOther, Other: "custom"},
		Context:    &ctx,
	}
	got, err := encodeDecode(task.Encode, DecodeTask)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("got %+v, want %+v", got, task)
	}
}

func TestTaskRoundTripNoContext(t *testing.T) {
	task := Task{
		Iid:        1,
		CallsiteId: 2,
		TaskId:     3,
		TaskName:   "main",
		TaskKind:   TaskKind{Discriminant: TaskKindTask},
	}
	got, err := encodeDecode(task.Encode, DecodeTask)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("got %+v, want %+v", got, task)
	}
}

func TestChunkedRecordRoundTrip(t *testing.T) {
	records := []ChunkedRecordData{
		NewSpanNew(1),
		NewSpanEnter(1),
		NewSpanExit(1),
		NewSpanClose(1),
		NewEventRecord(Event{CallsiteId: 9, Parent: RootParent}),
		NewNewTask(2),
		NewTaskPollStart(2),
		NewTaskPollEnd(2),
		NewTaskDrop(2),
		NewWakerWake(Waker{TaskId: 4}),
		NewWakerWakeByRef(Waker{TaskId: 4}),
		NewWakerClone(Waker{TaskId: 4}),
		NewWakerDrop(Waker{TaskId: 4}),
	}
	for i, d := range records {
		rec := ChunkedRecord{Timestamp: ChunkTimestamp{Micros: uint64(i)}, Data: d}
		got, err := encodeDecode(rec.Encode, DecodeChunkedRecord)
		if err != nil {
			t.Fatalf("record %d round trip: %v", i, err)
		}
		if !reflect.DeepEqual(got, rec) {
			t.Fatalf("record %d: got %+v, want %+v", i, got, rec)
		}
	}
}

func TestChunkedRecordDiscriminants(t *testing.T) {
	cases := []struct {
		data ChunkedRecordData
		want uint64
	}{
		{NewSpanNew(1), 0},
		{NewSpanEnter(1), 1},
		{NewSpanExit(1), 2},
		{NewSpanClose(1), 3},
		{NewEventRecord(Event{}), 4},
		{NewNewTask(1), 5},
		{NewTaskPollStart(1), 6},
		{NewTaskPollEnd(1), 7},
		{NewTaskDrop(1), 8},
		{NewWakerWake(Waker{}), 9},
		{NewWakerWakeByRef(Waker{}), 10},
		{NewWakerClone(Waker{}), 11},
		{NewWakerDrop(Waker{}), 12},
	}
	for _, c := range cases {
		w := wire.NewWriter()
		c.data.Encode(w)
		r := wire.NewReader(w.Bytes())
		tag, err := r.GetDiscriminant()
		if err != nil {
			t.Fatalf("decode discriminant: %v", err)
		}
		if tag != c.want {
			t.Fatalf("kind %v: got discriminant %d, want %d", c.data.Kind, tag, c.want)
		}
	}
}

func TestStreamRecordRoundTripIncludingEnd(t *testing.T) {
	records := []StreamRecordData{
		NewStreamCallsite(Callsite{CallsiteId: 1, Level: LevelInfo, Kind: KindEvent}),
		NewStreamSpan(Span{Iid: 1, CallsiteId: 1, Parent: CurrentParent}),
		NewStreamTask(Task{Iid: 2, CallsiteId: 1, TaskId: 1, TaskKind: TaskKind{Discriminant: TaskKindTask}}),
		NewStreamNewTask(1),
		NewStreamWakerWakeByRef(Waker{TaskId: 2}),
		NewStreamEnd(),
	}
	for i, d := range records {
		rec := StreamRecord{Meta: StreamMeta{Timestamp: AbsTimestamp{Secs: uint64(i)}}, Data: d}
		got, err := encodeDecode(rec.Encode, DecodeStreamRecord)
		if err != nil {
			t.Fatalf("record %d round trip: %v", i, err)
		}
		if !reflect.DeepEqual(got, rec) {
			t.Fatalf("record %d: got %+v, want %+v", i, got, rec)
		}
		if i == len(records)-1 && !got.IsEnd() {
			t.Fatalf("expected last record to be End")
		}
	}
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := Chunk{
		Header: ChunkHeader{
			Interval: ChunkInterval{
				BaseTime:  AbsTimestampSecs{Secs: 100},
				StartTime: ChunkTimestamp{Micros: 0},
				EndTime:   ChunkTimestamp{Micros: 1_000_000},
			},
			EarliestTimestamp: ChunkTimestamp{Micros: 10},
			LatestTimestamp:   ChunkTimestamp{Micros: 900_000},
		},
		SeqChunks: []SeqChunk{
			{
				Header: SeqChunkHeader{SeqId: 1, EarliestTimestamp: ChunkTimestamp{Micros: 10}, LatestTimestamp: ChunkTimestamp{Micros: 900_000}},
				Objects: []Object{
					NewTaskObject(Task{Iid: 1, CallsiteId: 1, TaskId: 1, TaskKind: TaskKind{Discriminant: TaskKindTask}}),
				},
				Records: []ChunkedRecord{
					{Timestamp: ChunkTimestamp{Micros: 10}, Data: NewNewTask(1)},
					{Timestamp: ChunkTimestamp{Micros: 900_000}, Data: NewTaskDrop(1)},
				},
			},
		},
	}
	got, err := encodeDecode(chunk.Encode, DecodeChunk)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(got, chunk) {
		t.Fatalf("got %+v, want %+v", got, chunk)
	}
}

// TestChunkIntervalWholeSecond verifies S2 from the testable scenarios:
// a 1s period straddling a second boundary splits events as specified.
func TestChunkIntervalWholeSecond(t *testing.T) {
	base := uint64(1700000000)
	iv1 := ChunkIntervalFromTimestampAndPeriod(AbsTimestamp{Secs: base, SubsecMicros: 500_000}, 1_000_000)
	iv2 := ChunkIntervalFromTimestampAndPeriod(AbsTimestamp{Secs: base, SubsecMicros: 999_999}, 1_000_000)
	if iv1 != iv2 {
		t.Fatalf("expected both offsets within base second to share an interval: %+v vs %+v", iv1, iv2)
	}
	if iv1.BaseTime.Secs != base {
		t.Fatalf("expected base_time=%d, got %d", base, iv1.BaseTime.Secs)
	}
	iv3 := ChunkIntervalFromTimestampAndPeriod(AbsTimestamp{Secs: base + 1, SubsecMicros: 0}, 1_000_000)
	iv4 := ChunkIntervalFromTimestampAndPeriod(AbsTimestamp{Secs: base + 1, SubsecMicros: 500_000}, 1_000_000)
	if iv3 != iv4 {
		t.Fatalf("expected offsets in the next second to share an interval")
	}
	if iv3.BaseTime.Secs != base+1 {
		t.Fatalf("expected base_time=%d, got %d", base+1, iv3.BaseTime.Secs)
	}
	if iv1 == iv3 {
		t.Fatalf("expected distinct intervals across the second boundary")
	}
}

// TestChunkIntervalSubSecond verifies S3: a 250ms period places an event
// at secs=100, subsec_micros=600_000 in [500_000, 750_000) with a
// ChunkTimestamp of 100_000.
func TestChunkIntervalSubSecond(t *testing.T) {
	ts := AbsTimestamp{Secs: 100, SubsecMicros: 600_000}
	iv := ChunkIntervalFromTimestampAndPeriod(ts, 250_000)
	if iv.BaseTime.Secs != 100 {
		t.Fatalf("expected base_time=100, got %d", iv.BaseTime.Secs)
	}
	if iv.StartTime.Micros != 500_000 || iv.EndTime.Micros != 750_000 {
		t.Fatalf("expected [500000,750000), got [%d,%d)", iv.StartTime.Micros, iv.EndTime.Micros)
	}
	chunkTS := iv.ChunkTimestampFor(ts)
	if chunkTS.Micros != 100_000 {
		t.Fatalf("expected ChunkTimestamp=100000, got %d", chunkTS.Micros)
	}
}

func TestChunkIntervalHalfOpenBoundary(t *testing.T) {
	iv := ChunkIntervalFromTimestampAndPeriod(AbsTimestamp{Secs: 100, SubsecMicros: 0}, 250_000)
	end := iv.AbsEndTime()
	if iv.Contains(end) {
		t.Fatalf("end instant must belong to the next interval, not this one")
	}
	nextIv := ChunkIntervalFromTimestampAndPeriod(end, 250_000)
	if !nextIv.Contains(end) {
		t.Fatalf("expected the next interval to contain the boundary instant")
	}
}

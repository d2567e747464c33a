package schema

import "rfr/internal/wire"

// CallsiteId uniquely identifies a source-emission location; stable for
// the lifetime of the recording.
type CallsiteId uint64

// Encode writes the id as a newtype-wrapped varint.
func (id CallsiteId) Encode(w *wire.Writer) { w.PutU64(uint64(id)) }

// DecodeCallsiteId reads a CallsiteId.
func DecodeCallsiteId(r *wire.Reader) (CallsiteId, error) {
	v, err := r.GetU64()
	return CallsiteId(v), err
}

// InstrumentationId (iid) identifies a span-like or task-like object;
// assigned by the instrumentation source, unique only within a recording.
type InstrumentationId uint64

// Encode writes the id as a newtype-wrapped varint.
func (id InstrumentationId) Encode(w *wire.Writer) { w.PutU64(uint64(id)) }

// DecodeInstrumentationId reads an InstrumentationId.
func DecodeInstrumentationId(r *wire.Reader) (InstrumentationId, error) {
	v, err := r.GetU64()
	return InstrumentationId(v), err
}

// TaskId is the runtime-assigned task identifier; not necessarily unique
// across time but unique while live.
type TaskId uint64

// Encode writes the id as a newtype-wrapped varint.
func (id TaskId) Encode(w *wire.Writer) { w.PutU64(uint64(id)) }

// DecodeTaskId reads a TaskId.
func DecodeTaskId(r *wire.Reader) (TaskId, error) {
	v, err := r.GetU64()
	return TaskId(v), err
}

// SeqId identifies an in-order producer of records, typically one per
// thread that emits instrumentation.
type SeqId uint64

// Encode writes the id as a newtype-wrapped varint.
func (id SeqId) Encode(w *wire.Writer) { w.PutU64(uint64(id)) }

// DecodeSeqId reads a SeqId.
func DecodeSeqId(r *wire.Reader) (SeqId, error) {
	v, err := r.GetU64()
	return SeqId(v), err
}

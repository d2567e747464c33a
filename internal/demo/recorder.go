// Package demo provides producers that drive internal/engine.Writer
// the way an instrumented async runtime would: they declare Task/Span
// objects, register callsites, and emit lifecycle records as work
// runs. It exists to exercise the engine end-to-end and to back
// `rfr record`'s bundled scenarios, mirroring the role
// rfr-subscriber/examples/*.rs plays for the original — a harness
// a reader can run standalone, not a library consumers import.
package demo

import (
	"sync"
	"sync/atomic"

	"rfr/internal/engine"
	"rfr/internal/schema"
)

// Recorder wraps an engine.Writer with the bookkeeping a producer
// needs: a monotonic instrumentation-id allocator and the in-memory
// Task/Span object table that backs an engine.ObjectResolver. The
// original keeps this same table per-thread (tracing-subscriber's
// registry); here one Recorder is shared by every goroutine a demo
// scenario spawns.
type Recorder struct {
	w *engine.Writer

	nextIid    atomic.Uint64
	nextTaskID atomic.Uint64

	mu      sync.RWMutex
	objects map[schema.InstrumentationId]*schema.Object
}

// NewRecorder wraps w.
func NewRecorder(w *engine.Writer) *Recorder {
	return &Recorder{
		w:       w,
		objects: make(map[schema.InstrumentationId]*schema.Object),
	}
}

func (r *Recorder) allocIid() schema.InstrumentationId {
	return schema.InstrumentationId(r.nextIid.Add(1))
}

func (r *Recorder) allocTaskID() schema.TaskId {
	return schema.TaskId(r.nextTaskID.Add(1))
}

// resolve implements engine.ObjectResolver over the Recorder's table.
func (r *Recorder) resolve(ids []schema.InstrumentationId) []*schema.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*schema.Object, len(ids))
	for i, id := range ids {
		out[i] = r.objects[id]
	}
	return out
}

func (r *Recorder) declare(obj schema.Object) schema.InstrumentationId {
	iid := obj.Iid()
	r.mu.Lock()
	r.objects[iid] = &obj
	r.mu.Unlock()
	return iid
}

// NewTask declares a Task object and returns both the instrumentation
// id a producer passes to schema.NewNewTask/NewTaskPollStart/
// NewTaskPollEnd/NewTaskDrop and the
// TaskId a Waker record references when this task is woken.
func (r *Recorder) NewTask(callsiteID schema.CallsiteId, name string, kind schema.TaskKind, context *schema.TaskId) (schema.InstrumentationId, schema.TaskId) {
	iid := r.allocIid()
	taskID := r.allocTaskID()
	r.declare(schema.Object{
		Kind: schema.ObjectTask,
		Task: schema.Task{
			Iid:        iid,
			CallsiteId: callsiteID,
			TaskId:     taskID,
			TaskName:   name,
			TaskKind:   kind,
			Context:    context,
		},
	})
	return iid, taskID
}

// NewSpan declares a Span object.
func (r *Recorder) NewSpan(callsiteID schema.CallsiteId, parent schema.Parent, constValues []schema.FieldValue) schema.InstrumentationId {
	iid := r.allocIid()
	return r.declare(schema.Object{
		Kind: schema.ObjectSpan,
		Span: schema.Span{
			Iid:              iid,
			CallsiteId:       callsiteID,
			Parent:           parent,
			ConstFieldValues: constValues,
		},
	})
}

// Record appends a single activity record on behalf of seqID, using
// the Recorder's own object table to resolve references.
func (r *Recorder) Record(seqID engine.SeqID, ts schema.AbsTimestamp, data schema.ChunkedRecordData) bool {
	return r.w.Record(seqID, ts, data, r.resolve)
}

// RegisterTaskCallsite registers a callsite describing a task spawn
// point, the way rfr-subscriber's tracing::instrument-backed
// spawn_named annotates each spawned future with its name.
func (r *Recorder) RegisterTaskCallsite(level schema.Level) schema.Callsite {
	return r.w.RegisterCallsite(level, schema.KindSpan, nil, nil)
}

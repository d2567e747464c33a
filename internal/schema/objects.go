package schema

import "rfr/internal/wire"

// ParentKind discriminates a Span or Event's parent linkage.
type ParentKind uint64

const (
	ParentCurrent  ParentKind = 0
	ParentRoot     ParentKind = 1
	ParentExplicit ParentKind = 2
)

// Parent links a Span or Event to its parent span: the implicit current
// span, an explicit root (no parent), or a named span by iid.
type Parent struct {
	Kind     ParentKind
	Explicit InstrumentationId // meaningful only when Kind == ParentExplicit
}

// CurrentParent is the implicit-current-span parent.
var CurrentParent = Parent{Kind: ParentCurrent}

// RootParent is the explicit-no-parent root.
var RootParent = Parent{Kind: ParentRoot}

// ExplicitParent names a specific parent span by instrumentation id.
func ExplicitParent(iid InstrumentationId) Parent {
	return Parent{Kind: ParentExplicit, Explicit: iid}
}

// Encode writes the parent linkage.
func (p Parent) Encode(w *wire.Writer) {
	w.PutDiscriminant(uint64(p.Kind))
	if p.Kind == ParentExplicit {
		p.Explicit.Encode(w)
	}
}

// DecodeParent reads a Parent.
func DecodeParent(r *wire.Reader) (Parent, error) {
	tag, err := r.GetDiscriminant()
	if err != nil {
		return Parent{}, err
	}
	switch ParentKind(tag) {
	case ParentCurrent:
		return CurrentParent, nil
	case ParentRoot:
		return RootParent, nil
	case ParentExplicit:
		iid, err := DecodeInstrumentationId(r)
		if err != nil {
			return Parent{}, err
		}
		return ExplicitParent(iid), nil
	default:
		return Parent{}, wire.NewUnknownVariantError(tag)
	}
}

func encodeFieldValues(w *wire.Writer, values []FieldValue) {
	w.PutSeqLen(len(values))
	for _, v := range values {
		v.Encode(w)
	}
}

func decodeFieldValues(r *wire.Reader) ([]FieldValue, error) {
	n, err := r.GetSeqLen()
	if err != nil {
		return nil, err
	}
	out := make([]FieldValue, 0, n)
	for i := 0; i < n; i++ {
		v, err := DecodeFieldValue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Span is an instrumented interval of execution that may be entered and
// exited multiple times between creation and close.
type Span struct {
	Iid              InstrumentationId
	CallsiteId       CallsiteId
	Parent           Parent
	ConstFieldValues []FieldValue
	DynamicFields    []Field
}

// Encode writes the full span declaration.
func (s Span) Encode(w *wire.Writer) {
	s.Iid.Encode(w)
	s.CallsiteId.Encode(w)
	s.Parent.Encode(w)
	encodeFieldValues(w, s.ConstFieldValues)
	w.PutSeqLen(len(s.DynamicFields))
	for _, f := range s.DynamicFields {
		f.Encode(w)
	}
}

// DecodeSpan reads a Span.
func DecodeSpan(r *wire.Reader) (Span, error) {
	iid, err := DecodeInstrumentationId(r)
	if err != nil {
		return Span{}, err
	}
	cid, err := DecodeCallsiteId(r)
	if err != nil {
		return Span{}, err
	}
	parent, err := DecodeParent(r)
	if err != nil {
		return Span{}, err
	}
	constValues, err := decodeFieldValues(r)
	if err != nil {
		return Span{}, err
	}
	dynN, err := r.GetSeqLen()
	if err != nil {
		return Span{}, err
	}
	dynFields := make([]Field, 0, dynN)
	for i := 0; i < dynN; i++ {
		f, err := DecodeField(r)
		if err != nil {
			return Span{}, err
		}
		dynFields = append(dynFields, f)
	}
	return Span{
		Iid:              iid,
		CallsiteId:       cid,
		Parent:           parent,
		ConstFieldValues: constValues,
		DynamicFields:    dynFields,
	}, nil
}

// Event represents a point in time, optionally attached to a parent span.
type Event struct {
	CallsiteId       CallsiteId
	Parent           Parent
	ConstFieldValues []FieldValue
	DynamicFields    []Field
}

// Encode writes the full event.
func (e Event) Encode(w *wire.Writer) {
	e.CallsiteId.Encode(w)
	e.Parent.Encode(w)
	encodeFieldValues(w, e.ConstFieldValues)
	w.PutSeqLen(len(e.DynamicFields))
	for _, f := range e.DynamicFields {
		f.Encode(w)
	}
}

// DecodeEvent reads an Event.
func DecodeEvent(r *wire.Reader) (Event, error) {
	cid, err := DecodeCallsiteId(r)
	if err != nil {
		return Event{}, err
	}
	parent, err := DecodeParent(r)
	if err != nil {
		return Event{}, err
	}
	constValues, err := decodeFieldValues(r)
	if err != nil {
		return Event{}, err
	}
	dynN, err := r.GetSeqLen()
	if err != nil {
		return Event{}, err
	}
	dynFields := make([]Field, 0, dynN)
	for i := 0; i < dynN; i++ {
		f, err := DecodeField(r)
		if err != nil {
			return Event{}, err
		}
		dynFields = append(dynFields, f)
	}
	return Event{
		CallsiteId:       cid,
		Parent:           parent,
		ConstFieldValues: constValues,
		DynamicFields:    dynFields,
	}, nil
}

// TaskKind classifies what kind of asynchronous unit of work a Task
// represents.
type TaskKind struct {
	Discriminant TaskKindDiscriminant
	Other        string // meaningful only when Discriminant == TaskKindOther
}

// TaskKindDiscriminant enumerates the TaskKind variants.
type TaskKindDiscriminant uint64

const (
	TaskKindTask     TaskKindDiscriminant = 0
	TaskKindLocal    TaskKindDiscriminant = 1
	TaskKindBlocking TaskKindDiscriminant = 2
	TaskKindBlockOn  TaskKindDiscriminant = 3
	TaskKindOther    TaskKindDiscriminant = 4
)

// Encode writes the task kind.
func (k TaskKind) Encode(w *wire.Writer) {
	w.PutDiscriminant(uint64(k.Discriminant))
	if k.Discriminant == TaskKindOther {
		w.PutString(k.Other)
	}
}

// DecodeTaskKind reads a TaskKind.
func DecodeTaskKind(r *wire.Reader) (TaskKind, error) {
	tag, err := r.GetDiscriminant()
	if err != nil {
		return TaskKind{}, err
	}
	switch TaskKindDiscriminant(tag) {
	case TaskKindTask, TaskKindLocal, TaskKindBlocking, TaskKindBlockOn:
		return TaskKind{Discriminant: TaskKindDiscriminant(tag)}, nil
	case TaskKindOther:
		s, err := r.GetString()
		if err != nil {
			return TaskKind{}, err
		}
		return TaskKind{Discriminant: TaskKindOther, Other: s}, nil
	default:
		return TaskKind{}, wire.NewUnknownVariantError(tag)
	}
}

// Task is a unit of asynchronous execution tracked by the runtime.
type Task struct {
	Iid        InstrumentationId
	CallsiteId CallsiteId
	TaskId     TaskId
	TaskName   string
	TaskKind   TaskKind
	Context    *TaskId // Option<TaskId>: the enclosing task, if any
}

// Encode writes the full task declaration.
func (t Task) Encode(w *wire.Writer) {
	t.Iid.Encode(w)
	t.CallsiteId.Encode(w)
	t.TaskId.Encode(w)
	w.PutString(t.TaskName)
	t.TaskKind.Encode(w)
	w.PutOptionTag(t.Context != nil)
	if t.Context != nil {
		t.Context.Encode(w)
	}
}

// DecodeTask reads a Task.
func DecodeTask(r *wire.Reader) (Task, error) {
	iid, err := DecodeInstrumentationId(r)
	if err != nil {
		return Task{}, err
	}
	cid, err := DecodeCallsiteId(r)
	if err != nil {
		return Task{}, err
	}
	tid, err := DecodeTaskId(r)
	if err != nil {
		return Task{}, err
	}
	name, err := r.GetString()
	if err != nil {
		return Task{}, err
	}
	kind, err := DecodeTaskKind(r)
	if err != nil {
		return Task{}, err
	}
	present, err := r.GetOptionTag()
	if err != nil {
		return Task{}, err
	}
	var ctx *TaskId
	if present {
		c, err := DecodeTaskId(r)
		if err != nil {
			return Task{}, err
		}
		ctx = &c
	}
	return Task{
		Iid:        iid,
		CallsiteId: cid,
		TaskId:     tid,
		TaskName:   name,
		TaskKind:   kind,
		Context:    ctx,
	}, nil
}

// Waker describes an action observed against a task's wake mechanism.
// It appears only inside record variants (WakerWake, WakerWakeByRef,
// WakerClone, WakerDrop), never as a standalone declared object.
type Waker struct {
	TaskId  TaskId
	Context *TaskId // Option<TaskId>: the waking task, if known
}

// Encode writes the waker.
func (wk Waker) Encode(w *wire.Writer) {
	wk.TaskId.Encode(w)
	w.PutOptionTag(wk.Context != nil)
	if wk.Context != nil {
		wk.Context.Encode(w)
	}
}

// DecodeWaker reads a Waker.
func DecodeWaker(r *wire.Reader) (Waker, error) {
	tid, err := DecodeTaskId(r)
	if err != nil {
		return Waker{}, err
	}
	present, err := r.GetOptionTag()
	if err != nil {
		return Waker{}, err
	}
	var ctx *TaskId
	if present {
		c, err := DecodeTaskId(r)
		if err != nil {
			return Waker{}, err
		}
		ctx = &c
	}
	return Waker{TaskId: tid, Context: ctx}, nil
}

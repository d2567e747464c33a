package schema

import "rfr/internal/wire"

// Level is the severity a callsite is emitted at.
type Level uint32

const (
	LevelTrace Level = 10
	LevelDebug Level = 20
	LevelInfo  Level = 30
	LevelWarn  Level = 40
	LevelError Level = 50
)

// Encode writes the level as a varint.
func (l Level) Encode(w *wire.Writer) { w.PutU64(uint64(l)) }

// DecodeLevel reads a Level.
func DecodeLevel(r *wire.Reader) (Level, error) {
	v, err := r.GetU64()
	return Level(v), err
}

// Kind classifies what a callsite produces.
type Kind uint64

const (
	KindUnknown Kind = 0
	KindEvent   Kind = 1
	KindSpan    Kind = 2
)

// Encode writes the kind as a tagged-union discriminant.
func (k Kind) Encode(w *wire.Writer) { w.PutDiscriminant(uint64(k)) }

// DecodeKind reads a Kind, rejecting unknown discriminants.
func DecodeKind(r *wire.Reader) (Kind, error) {
	tag, err := r.GetDiscriminant()
	if err != nil {
		return 0, err
	}
	switch Kind(tag) {
	case KindUnknown, KindEvent, KindSpan:
		return Kind(tag), nil
	default:
		return 0, wire.NewUnknownVariantError(tag)
	}
}

// FieldName is the name half of a Field; const fields carry their value
// inline, dynamic fields carry only the name (their value arrives in the
// record that references the callsite).
type FieldName struct {
	Name string
}

// Encode writes the field name as a length-prefixed string.
func (f FieldName) Encode(w *wire.Writer) { w.PutString(f.Name) }

// DecodeFieldName reads a FieldName.
func DecodeFieldName(r *wire.Reader) (FieldName, error) {
	s, err := r.GetString()
	if err != nil {
		return FieldName{}, err
	}
	return FieldName{Name: s}, nil
}

// Field pairs a constant name with a constant value, known at callsite
// registration time (e.g. source location metadata).
type Field struct {
	Name  string
	Value FieldValue
}

// Encode writes the field as (name, value).
func (f Field) Encode(w *wire.Writer) {
	w.PutString(f.Name)
	f.Value.Encode(w)
}

// DecodeField reads a Field.
func DecodeField(r *wire.Reader) (Field, error) {
	name, err := r.GetString()
	if err != nil {
		return Field{}, err
	}
	value, err := DecodeFieldValue(r)
	if err != nil {
		return Field{}, err
	}
	return Field{Name: name, Value: value}, nil
}

// Callsite carries compile-time-constant metadata for a single
// instrumented location: its severity, kind, constant fields (known at
// registration) and the names of fields whose values vary per emission.
// Within a recording a given CallsiteId is written at most once.
type Callsite struct {
	CallsiteId      CallsiteId
	Level           Level
	Kind            Kind
	ConstFields     []Field
	ConstFieldNames []FieldName
}

// Encode writes the full callsite record.
func (c Callsite) Encode(w *wire.Writer) {
	c.CallsiteId.Encode(w)
	c.Level.Encode(w)
	c.Kind.Encode(w)
	w.PutSeqLen(len(c.ConstFields))
	for _, f := range c.ConstFields {
		f.Encode(w)
	}
	w.PutSeqLen(len(c.ConstFieldNames))
	for _, n := range c.ConstFieldNames {
		n.Encode(w)
	}
}

// DecodeCallsite reads a Callsite.
func DecodeCallsite(r *wire.Reader) (Callsite, error) {
	id, err := DecodeCallsiteId(r)
	if err != nil {
		return Callsite{}, err
	}
	level, err := DecodeLevel(r)
	if err != nil {
		return Callsite{}, err
	}
	kind, err := DecodeKind(r)
	if err != nil {
		return Callsite{}, err
	}
	constN, err := r.GetSeqLen()
	if err != nil {
		return Callsite{}, err
	}
	constFields := make([]Field, 0, constN)
	for i := 0; i < constN; i++ {
		f, err := DecodeField(r)
		if err != nil {
			return Callsite{}, err
		}
		constFields = append(constFields, f)
	}
	dynN, err := r.GetSeqLen()
	if err != nil {
		return Callsite{}, err
	}
	dynNames := make([]FieldName, 0, dynN)
	for i := 0; i < dynN; i++ {
		n, err := DecodeFieldName(r)
		if err != nil {
			return Callsite{}, err
		}
		dynNames = append(dynNames, n)
	}
	return Callsite{
		CallsiteId:      id,
		Level:           level,
		Kind:            kind,
		ConstFields:     constFields,
		ConstFieldNames: dynNames,
	}, nil
}

package schema

import "rfr/internal/wire"

// FieldValueKind discriminates the scalar kinds a FieldValue may hold.
type FieldValueKind uint64

const (
	FieldValueF64  FieldValueKind = 0
	FieldValueI64  FieldValueKind = 1
	FieldValueU64  FieldValueKind = 2
	FieldValueI128 FieldValueKind = 3
	FieldValueU128 FieldValueKind = 4
	FieldValueBool FieldValueKind = 5
	FieldValueStr  FieldValueKind = 6
)

// FieldValue is a tagged union over the scalar field value kinds a
// callsite's const fields or a record's dynamic fields may carry.
// Exactly one of the typed members is meaningful, selected by Kind.
type FieldValue struct {
	Kind FieldValueKind
	F64  float64
	I64  int64
	U64  uint64
	I128 wire.I128
	U128 wire.U128
	Bool bool
	Str  string
}

// NewF64 constructs an f64 FieldValue.
func NewF64(v float64) FieldValue { return FieldValue{Kind: FieldValueF64, F64: v} }

// NewI64 constructs an i64 FieldValue.
func NewI64(v int64) FieldValue { return FieldValue{Kind: FieldValueI64, I64: v} }

// NewU64 constructs a u64 FieldValue.
func NewU64(v uint64) FieldValue { return FieldValue{Kind: FieldValueU64, U64: v} }

// NewI128 constructs an i128 FieldValue.
func NewI128(v wire.I128) FieldValue { return FieldValue{Kind: FieldValueI128, I128: v} }

// NewU128 constructs a u128 FieldValue.
func NewU128(v wire.U128) FieldValue { return FieldValue{Kind: FieldValueU128, U128: v} }

// NewBool constructs a bool FieldValue.
func NewBool(v bool) FieldValue { return FieldValue{Kind: FieldValueBool, Bool: v} }

// NewStr constructs a string FieldValue.
func NewStr(v string) FieldValue { return FieldValue{Kind: FieldValueStr, Str: v} }

// Encode writes the discriminant followed by the active variant's payload.
func (v FieldValue) Encode(w *wire.Writer) {
	w.PutDiscriminant(uint64(v.Kind))
	switch v.Kind {
	case FieldValueF64:
		w.PutF64(v.F64)
	case FieldValueI64:
		w.PutI64(v.I64)
	case FieldValueU64:
		w.PutU64(v.U64)
	case FieldValueI128:
		w.PutI128(v.I128)
	case FieldValueU128:
		w.PutU128(v.U128)
	case FieldValueBool:
		w.PutBool(v.Bool)
	case FieldValueStr:
		w.PutString(v.Str)
	}
}

// DecodeFieldValue reads a FieldValue, rejecting unknown discriminants.
func DecodeFieldValue(r *wire.Reader) (FieldValue, error) {
	tag, err := r.GetDiscriminant()
	if err != nil {
		return FieldValue{}, err
	}
	switch FieldValueKind(tag) {
	case FieldValueF64:
		v, err := r.GetF64()
		if err != nil {
			return FieldValue{}, err
		}
		return NewF64(v), nil
	case FieldValueI64:
		v, err := r.GetI64()
		if err != nil {
			return FieldValue{}, err
		}
		return NewI64(v), nil
	case FieldValueU64:
		v, err := r.GetU64()
		if err != nil {
			return FieldValue{}, err
		}
		return NewU64(v), nil
	case FieldValueI128:
		v, err := r.GetI128()
		if err != nil {
			return FieldValue{}, err
		}
		return NewI128(v), nil
	case FieldValueU128:
		v, err := r.GetU128()
		if err != nil {
			return FieldValue{}, err
		}
		return NewU128(v), nil
	case FieldValueBool:
		v, err := r.GetBool()
		if err != nil {
			return FieldValue{}, err
		}
		return NewBool(v), nil
	case FieldValueStr:
		v, err := r.GetString()
		if err != nil {
			return FieldValue{}, err
		}
		return NewStr(v), nil
	default:
		return FieldValue{}, wire.NewUnknownVariantError(tag)
	}
}

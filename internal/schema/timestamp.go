// Package schema implements the typed RFR data model: timestamps,
// identifiers, callsites, field values, spans, events, tasks, wakers and
// the record variants that carry them. Every type encodes/decodes
// strictly through internal/wire; the contract is encode-then-decode is
// the identity.
package schema

import "rfr/internal/wire"

// AbsTimestamp is an absolute wall-clock time since the Unix epoch.
type AbsTimestamp struct {
	Secs         uint64
	SubsecMicros uint32 // < 1_000_000
}

// Earliest is the smallest representable AbsTimestamp greater than the
// zero instant, matching the original implementation's sentinel value.
var Earliest = AbsTimestamp{Secs: 0, SubsecMicros: 1}

// Compare returns -1, 0 or 1 as a is before, equal to, or after b.
func (a AbsTimestamp) Compare(b AbsTimestamp) int {
	if a.Secs != b.Secs {
		if a.Secs < b.Secs {
			return -1
		}
		return 1
	}
	if a.SubsecMicros != b.SubsecMicros {
		if a.SubsecMicros < b.SubsecMicros {
			return -1
		}
		return 1
	}
	return 0
}

// Encode writes the timestamp as (secs, subsec_micros).
func (a AbsTimestamp) Encode(w *wire.Writer) {
	w.PutU64(a.Secs)
	w.PutU64(uint64(a.SubsecMicros))
}

// DecodeAbsTimestamp reads an AbsTimestamp.
func DecodeAbsTimestamp(r *wire.Reader) (AbsTimestamp, error) {
	secs, err := r.GetU64()
	if err != nil {
		return AbsTimestamp{}, err
	}
	subsec, err := r.GetU64()
	if err != nil {
		return AbsTimestamp{}, err
	}
	return AbsTimestamp{Secs: secs, SubsecMicros: uint32(subsec)}, nil
}

// AbsTimestampSecs is an AbsTimestamp with the sub-second component
// dropped, used as a chunk's base time.
type AbsTimestampSecs struct {
	Secs uint64
}

// Encode writes the whole-seconds timestamp.
func (a AbsTimestampSecs) Encode(w *wire.Writer) { w.PutU64(a.Secs) }

// DecodeAbsTimestampSecs reads an AbsTimestampSecs.
func DecodeAbsTimestampSecs(r *wire.Reader) (AbsTimestampSecs, error) {
	secs, err := r.GetU64()
	if err != nil {
		return AbsTimestampSecs{}, err
	}
	return AbsTimestampSecs{Secs: secs}, nil
}

// ChunkTimestamp is an unsigned microsecond offset from a chunk's base
// time; it must fall within the chunk's declared interval.
type ChunkTimestamp struct {
	Micros uint64
}

// Encode writes the offset as a varint.
func (c ChunkTimestamp) Encode(w *wire.Writer) { w.PutU64(c.Micros) }

// DecodeChunkTimestamp reads a ChunkTimestamp.
func DecodeChunkTimestamp(r *wire.Reader) (ChunkTimestamp, error) {
	micros, err := r.GetU64()
	if err != nil {
		return ChunkTimestamp{}, err
	}
	return ChunkTimestamp{Micros: micros}, nil
}

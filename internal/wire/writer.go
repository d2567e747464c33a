// Package wire implements the postcard-equivalent binary encoding shared
// by every RFR file format: varints, zigzag signed integers, IEEE-754
// doubles, length-prefixed strings and sequences, option tags, and tagged
// union discriminants. Every higher-level format (streaming, chunked,
// meta, callsites) is built strictly on top of these primitives.
package wire

import (
	"math"

	"fortio.org/safecast"
)

// Writer accumulates an encoded byte stream. It never returns an error:
// encoding a well-formed in-memory value cannot fail.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// PutBool encodes a bool as a single byte, 0x00 or 0x01.
func (w *Writer) PutBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// PutU64 encodes an unsigned varint: 7 payload bits per byte, MSB is the
// continuation bit, little-endian bit order.
func (w *Writer) PutU64(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		return
	}
}

// PutI64 zigzag-encodes a signed value then writes it as an unsigned
// varint.
func (w *Writer) PutI64(v int64) {
	w.PutU64(zigzagEncode64(v))
}

// PutU128 encodes a 128-bit unsigned varint.
func (w *Writer) PutU128(v U128) {
	for {
		b := byte(v.low7())
		v = v.shiftRight7()
		if !v.isZero() {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		return
	}
}

// PutI128 zigzag-encodes a signed 128-bit value then writes it unsigned.
func (w *Writer) PutI128(v I128) {
	w.PutU128(zigzagEncode128(v))
}

// PutF64 writes an IEEE-754 binary64 in little-endian byte order.
func (w *Writer) PutF64(v float64) {
	bits := math.Float64bits(v)
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(bits)
		bits >>= 8
	}
	w.buf = append(w.buf, b[:]...)
}

// PutString writes a varint byte-length prefix followed by the raw UTF-8
// bytes. Callers must ensure v is valid UTF-8 (Go strings from literals
// and most decoding paths already are); Decode enforces it on read.
func (w *Writer) PutString(v string) {
	n, err := safecast.Conv[uint64](len(v))
	if err != nil {
		// len() of a Go string never exceeds platform int range; this
		// path is unreachable in practice and only guards the cast.
		n = uint64(len(v))
	}
	w.PutU64(n)
	w.buf = append(w.buf, v...)
}

// PutBytes writes a varint byte-length prefix followed by the raw bytes.
func (w *Writer) PutBytes(v []byte) {
	n, err := safecast.Conv[uint64](len(v))
	if err != nil {
		n = uint64(len(v))
	}
	w.PutU64(n)
	w.buf = append(w.buf, v...)
}

// PutSeqLen writes a varint element count ahead of a sequence; callers
// then encode each element in order.
func (w *Writer) PutSeqLen(n int) {
	v, err := safecast.Conv[uint64](n)
	if err != nil {
		v = uint64(n)
	}
	w.PutU64(v)
}

// PutDiscriminant writes a tagged-union discriminant as a varint.
func (w *Writer) PutDiscriminant(tag uint64) { w.PutU64(tag) }

// PutOptionTag writes the option present/absent byte. Callers encode the
// payload themselves when present is true.
func (w *Writer) PutOptionTag(present bool) {
	if present {
		w.buf = append(w.buf, 0x01)
		return
	}
	w.buf = append(w.buf, 0x00)
}

func zigzagEncode64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagEncode128(v I128) U128 {
	// (v << 1) ^ (v >> 127), computed on the Hi/Lo split.
	signMask := uint64(0)
	if int64(v.Hi) < 0 {
		signMask = ^uint64(0)
	}
	shiftedHi := (v.Hi << 1) | (v.Lo >> 63)
	shiftedLo := v.Lo << 1
	return U128{Lo: shiftedLo ^ signMask, Hi: shiftedHi ^ signMask}
}

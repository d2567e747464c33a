package wire

import "testing"

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1, 1<<64 - 1}
	for _, v := range cases {
		w := NewWriter()
		w.PutU64(v)
		r := NewReader(w.Bytes())
		got, err := r.GetU64()
		if err != nil {
			t.Fatalf("GetU64(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("GetU64: got %d, want %d", got, v)
		}
		if r.Remaining() != 0 {
			t.Fatalf("expected all bytes consumed for %d", v)
		}
	}
}

func TestSignedZigzagRoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -64, 64, -1 << 40, 1 << 40}
	for _, v := range cases {
		w := NewWriter()
		w.PutI64(v)
		r := NewReader(w.Bytes())
		got, err := r.GetI64()
		if err != nil {
			t.Fatalf("GetI64(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("GetI64: got %d, want %d", got, v)
		}
	}
}

func TestU128RoundTrip(t *testing.T) {
	cases := []U128{
		{Lo: 0, Hi: 0},
		{Lo: 1, Hi: 0},
		U128FromUint64(1<<64 - 1),
		{Lo: 1<<64 - 1, Hi: 1<<64 - 1},
		{Lo: 0, Hi: 1},
	}
	for _, v := range cases {
		w := NewWriter()
		w.PutU128(v)
		r := NewReader(w.Bytes())
		got, err := r.GetU128()
		if err != nil {
			t.Fatalf("GetU128(%+v): %v", v, err)
		}
		if got != v {
			t.Fatalf("GetU128: got %+v, want %+v", got, v)
		}
	}
}

func TestI128RoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -12345, 12345}
	for _, v := range cases {
		want := I128FromInt64(v)
		w := NewWriter()
		w.PutI128(want)
		r := NewReader(w.Bytes())
		got, err := r.GetI128()
		if err != nil {
			t.Fatalf("GetI128(%d): %v", v, err)
		}
		if got != want {
			t.Fatalf("GetI128: got %+v, want %+v", got, want)
		}
	}
}

func TestF64RoundTrip(t *testing.T) {
	cases := []float64{0, -0.0, 1.5, -1.5, 3.14159265358979, 1e300, -1e-300}
	for _, v := range cases {
		w := NewWriter()
		w.PutF64(v)
		r := NewReader(w.Bytes())
		got, err := r.GetF64()
		if err != nil {
			t.Fatalf("GetF64(%v): %v", v, err)
		}
		if got != v {
			t.Fatalf("GetF64: got %v, want %v", got, v)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "hello", "unicode: é中\U0001F600"}
	for _, v := range cases {
		w := NewWriter()
		w.PutString(v)
		r := NewReader(w.Bytes())
		got, err := r.GetString()
		if err != nil {
			t.Fatalf("GetString(%q): %v", v, err)
		}
		if got != v {
			t.Fatalf("GetString: got %q, want %q", got, v)
		}
	}
}

func TestStringInvalidUTF8(t *testing.T) {
	w := NewWriter()
	w.PutBytes([]byte{0xff, 0xfe})
	r := NewReader(w.Bytes())
	if _, err := r.GetString(); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestOptionTag(t *testing.T) {
	w := NewWriter()
	w.PutOptionTag(false)
	w.PutOptionTag(true)
	w.PutU64(42)
	r := NewReader(w.Bytes())
	absent, err := r.GetOptionTag()
	if err != nil || absent {
		t.Fatalf("expected present=false, err=nil, got present=%v err=%v", absent, err)
	}
	present, err := r.GetOptionTag()
	if err != nil || !present {
		t.Fatalf("expected present=true, err=nil, got present=%v err=%v", present, err)
	}
	v, err := r.GetU64()
	if err != nil || v != 42 {
		t.Fatalf("expected payload 42, got %d err=%v", v, err)
	}
}

func TestOptionTagOutOfRange(t *testing.T) {
	r := NewReader([]byte{0x02})
	if _, err := r.GetOptionTag(); err != ErrOptionTagOutOfRange {
		t.Fatalf("expected ErrOptionTagOutOfRange, got %v", err)
	}
}

func TestTruncatedVarint(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80})
	if _, err := r.GetU64(); err != ErrTruncatedInput {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestOverlongVarint(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}
	buf[len(buf)-1] = 0x00
	r := NewReader(buf)
	if _, err := r.GetU64(); err != ErrOverlongVarint {
		t.Fatalf("expected ErrOverlongVarint, got %v", err)
	}
}

func TestLengthExceedsRemaining(t *testing.T) {
	w := NewWriter()
	w.PutU64(1000)
	r := NewReader(w.Bytes())
	if _, err := r.GetBytes(); err != ErrLengthExceedsRemaining {
		t.Fatalf("expected ErrLengthExceedsRemaining, got %v", err)
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	values := []uint64{1, 2, 3, 4, 5}
	w := NewWriter()
	w.PutSeqLen(len(values))
	for _, v := range values {
		w.PutU64(v)
	}
	r := NewReader(w.Bytes())
	n, err := r.GetSeqLen()
	if err != nil || n != len(values) {
		t.Fatalf("GetSeqLen: got %d err=%v", n, err)
	}
	for i := 0; i < n; i++ {
		v, err := r.GetU64()
		if err != nil || v != values[i] {
			t.Fatalf("element %d: got %d err=%v", i, v, err)
		}
	}
}

func TestUnknownVariantError(t *testing.T) {
	err := NewUnknownVariantError(99)
	uv, ok := err.(*UnknownVariantError)
	if !ok {
		t.Fatalf("expected *UnknownVariantError")
	}
	if uv.Tag != 99 {
		t.Fatalf("expected tag 99, got %d", uv.Tag)
	}
}

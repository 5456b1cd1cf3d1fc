package reader

import "testing"

func TestU16BigEndian(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0xFF, 0xFF})
	v, err := r.U16()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x0102 {
		t.Fatalf("got %#x, want 0x0102", v)
	}
	v2, err := r.U16()
	if err != nil {
		t.Fatal(err)
	}
	if v2 != 0xFFFF {
		t.Fatalf("got %#x, want 0xffff", v2)
	}
}

func TestPrimitiveWidths(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78}

	r := New(data)
	if v, _ := r.U16(); v != 0x1234 {
		t.Fatalf("first U16 = %#x, want 0x1234", v)
	}
	if v, _ := r.U16(); v != 0x5678 {
		t.Fatalf("second U16 = %#x, want 0x5678", v)
	}

	r = New(data)
	if v, _ := r.U32(); v != 0x12345678 {
		t.Fatalf("U32 = %#x, want 0x12345678", v)
	}

	r = New(data)
	f, _ := r.Fixed()
	want := float64(0x12345678) / 65536.0
	if f != want {
		t.Fatalf("Fixed = %v, want %v", f, want)
	}
}

func TestI16Negative(t *testing.T) {
	r := New([]byte{0xFF, 0xFF})
	v, err := r.I16()
	if err != nil {
		t.Fatal(err)
	}
	if v != -1 {
		t.Fatalf("got %d, want -1", v)
	}
}

func TestF2Dot14(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  float32
	}{
		{[]byte{0x40, 0x00}, 1.0},
		{[]byte{0x60, 0x00}, 1.5},
		{[]byte{0xC0, 0x00}, -1.0},
		{[]byte{0x00, 0x00}, 0.0},
		{[]byte{0x7F, 0xFF}, 1.999939},
	}
	for _, c := range cases {
		r := New(c.bytes)
		got, err := r.F2Dot14()
		if err != nil {
			t.Fatal(err)
		}
		diff := got - c.want
		if diff < -0.0001 || diff > 0.0001 {
			t.Errorf("F2Dot14(%v) = %v, want %v", c.bytes, got, c.want)
		}
	}
}

func TestUnexpectedEndOfData(t *testing.T) {
	r := New([]byte{0x01})
	_, err := r.U32()
	if err == nil {
		t.Fatal("expected error reading past end of data")
	}
	if _, ok := err.(interface{ Error() string }); !ok {
		t.Fatalf("error does not implement error interface: %v", err)
	}
}

func TestUIntBase128Success(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7F}, 127},
		{[]byte{0x81, 0x00}, 128},
		{[]byte{0x81, 0x80, 0x7F}, 128*128 + 127},
	}
	for _, c := range cases {
		r := New(c.bytes)
		got, err := r.UIntBase128()
		if err != nil {
			t.Fatalf("UIntBase128(%v) unexpected error: %v", c.bytes, err)
		}
		if got != c.want {
			t.Errorf("UIntBase128(%v) = %d, want %d", c.bytes, got, c.want)
		}
	}
}

func TestUIntBase128RejectsNonMinimalEncoding(t *testing.T) {
	r := New([]byte{0x80, 0x00})
	if _, err := r.UIntBase128(); err == nil {
		t.Fatal("expected error for non-minimal leading 0x80 byte")
	}
}

func TestUIntBase128RejectsTooManyBytes(t *testing.T) {
	r := New([]byte{0x90, 0x80, 0x80, 0x80, 0x80, 0x00})
	if _, err := r.UIntBase128(); err == nil {
		t.Fatal("expected error for > 5 continuation bytes")
	}
}

func TestUIntBase128RejectsAccumulatorOverflow(t *testing.T) {
	r := New([]byte{0x81, 0x80, 0x80, 0x00})
	if _, err := r.UIntBase128(); err == nil {
		t.Fatal("expected error for accumulator exceeding 0x1FFFFF")
	}
}

func TestUint255Direct(t *testing.T) {
	r := New([]byte{0x05})
	v, err := r.Uint255()
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Fatalf("got %d, want 5", v)
	}
}

func TestUint255Word(t *testing.T) {
	r := New([]byte{253, 0x01, 0x00})
	v, err := r.Uint255()
	if err != nil {
		t.Fatal(err)
	}
	if v != 256 {
		t.Fatalf("got %d, want 256", v)
	}
}

func TestPeekRestoresCursor(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0x03, 0x04})
	err := r.Peek(func(r *R) error {
		_, err := r.U16()
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Offset() != 0 {
		t.Fatalf("Peek moved cursor to %d, want 0", r.Offset())
	}
}

func TestPeekRestoresCursorOnFailure(t *testing.T) {
	r := New([]byte{0x01, 0x02})
	err := r.Peek(func(r *R) error {
		_, err := r.U32() // too wide, must fail
		return err
	})
	if err == nil {
		t.Fatal("expected error from inner read past end")
	}
	if r.Offset() != 0 {
		t.Fatalf("failed Peek moved cursor to %d, want 0", r.Offset())
	}
}

func TestReadAtRestoresCursor(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0x03, 0x04})
	if _, err := r.U16(); err != nil {
		t.Fatal(err)
	}
	var got uint16
	err := r.ReadAt(0, func(r *R) error {
		v, err := r.U16()
		got = v
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x0102 {
		t.Fatalf("ReadAt read %#x, want 0x0102", got)
	}
	if r.Offset() != 2 {
		t.Fatalf("ReadAt left cursor at %d, want 2", r.Offset())
	}
}

func TestLongDateTime(t *testing.T) {
	// 0 seconds since 1904-01-01 maps to the 1904 epoch offset.
	r := New([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	v, err := r.LongDateTime()
	if err != nil {
		t.Fatal(err)
	}
	if v != sfntEpoch {
		t.Fatalf("got %d, want %d", v, sfntEpoch)
	}
}


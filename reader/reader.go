// Package reader implements the zero-copy binary reader and numeric
// codecs shared by the sfnt and woff2 decoders: a big-endian cursor over
// a byte slice plus the fixed-point and variable-length integer formats
// the OpenType and WOFF2 specs use.
package reader

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
)

// R is a cursor over a byte slice. It never copies the underlying data;
// Slice and SliceFrom return sub-views of the original backing array.
type R struct {
	data []byte
	off  int
}

// New creates a reader positioned at the start of data.
func New(data []byte) *R {
	return &R{data: data}
}

// Len returns the total length of the underlying data.
func (r *R) Len() int { return len(r.data) }

// Offset returns the current cursor position.
func (r *R) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *R) Remaining() int { return len(r.data) - r.off }

// Seek moves the cursor to an absolute offset.
func (r *R) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return &ferrors.UnexpectedEndOfData{Needed: off, Available: len(r.data)}
	}
	r.off = off
	return nil
}

// Skip advances the cursor by n bytes without reading.
func (r *R) Skip(n int) error {
	return r.Seek(r.off + n)
}

func (r *R) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return &ferrors.UnexpectedEndOfData{Needed: n, Available: r.Remaining()}
	}
	return nil
}

// Bytes reads n raw bytes and advances the cursor. The returned slice
// aliases the reader's backing array.
func (r *R) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// U8 reads an unsigned byte.
func (r *R) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// I8 reads a signed byte.
func (r *R) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads a big-endian uint16.
func (r *R) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// I16 reads a big-endian int16.
func (r *R) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U24 reads a big-endian 24-bit unsigned integer (used by CFF offsets
// and a handful of OpenType tables).
func (r *R) U24() (uint32, error) {
	if err := r.need(3); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.off])<<16 | uint32(r.data[r.off+1])<<8 | uint32(r.data[r.off+2])
	r.off += 3
	return v, nil
}

// U32 reads a big-endian uint32.
func (r *R) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// I32 reads a big-endian int32.
func (r *R) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// Tag reads a 4-byte tag as a plain uint32; callers wrap it in their own
// Tag type (sfnt.Tag, woff2's known-tag table) to keep this package
// format-agnostic.
func (r *R) Tag() (uint32, error) {
	return r.U32()
}

// F2Dot14 reads a 2.14 fixed-point value, used for variation deltas and
// transform scales.
func (r *R) F2Dot14() (float32, error) {
	v, err := r.I16()
	if err != nil {
		return 0, err
	}
	return float32(v) / 16384.0, nil
}

// Fixed reads a 16.16 fixed-point value, used for version numbers and
// variation axis ranges.
func (r *R) Fixed() (float64, error) {
	v, err := r.I32()
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536.0, nil
}

// sfntEpoch is 1904-01-01T00:00:00Z expressed as seconds before the Unix
// epoch, the base LongDateTime counts from.
const sfntEpoch = -2082844800

// LongDateTime reads an sfnt longDateTime: seconds since 1904-01-01,
// returned as seconds since the Unix epoch.
func (r *R) LongDateTime() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(r.data[r.off:]))
	r.off += 8
	return v + sfntEpoch, nil
}

// Offset16 reads a 16-bit offset.
func (r *R) Offset16() (int, error) {
	v, err := r.U16()
	return int(v), err
}

// Offset32 reads a 32-bit offset.
func (r *R) Offset32() (int, error) {
	v, err := r.U32()
	return int(v), err
}

// PeekU16 reads a uint16 at an absolute offset without moving the
// cursor, used by table parsers that jump between sub-structures
// (subtable records, VariationSelectorRecords) and need to come back.
func (r *R) PeekU16(off int) (uint16, error) {
	if off < 0 || off+2 > len(r.data) {
		return 0, &ferrors.UnexpectedEndOfData{Needed: off + 2, Available: len(r.data)}
	}
	return binary.BigEndian.Uint16(r.data[off:]), nil
}

// PeekU32 reads a uint32 at an absolute offset without moving the
// cursor.
func (r *R) PeekU32(off int) (uint32, error) {
	if off < 0 || off+4 > len(r.data) {
		return 0, &ferrors.UnexpectedEndOfData{Needed: off + 4, Available: len(r.data)}
	}
	return binary.BigEndian.Uint32(r.data[off:]), nil
}

// Slice returns a sub-view of the underlying data, independent of the
// cursor position.
func (r *R) Slice(off, length int) ([]byte, error) {
	if off < 0 || length < 0 || off+length > len(r.data) {
		return nil, &ferrors.UnexpectedEndOfData{Needed: off + length, Available: len(r.data)}
	}
	return r.data[off : off+length], nil
}

// SliceFrom returns a sub-view from off to the end of the data.
func (r *R) SliceFrom(off int) ([]byte, error) {
	if off < 0 || off > len(r.data) {
		return nil, &ferrors.UnexpectedEndOfData{Needed: off, Available: len(r.data)}
	}
	return r.data[off:], nil
}

// At returns a new reader positioned at off, sharing the same backing
// array. Used to parse a subtable reached via an offset field without
// disturbing the parent reader's cursor.
func (r *R) At(off int) (*R, error) {
	if off < 0 || off > len(r.data) {
		return nil, &ferrors.UnexpectedEndOfData{Needed: off, Available: len(r.data)}
	}
	return &R{data: r.data, off: off}, nil
}

// Peek runs fn against the reader and restores the cursor afterwards,
// whether fn succeeded or not. fn's error propagates to the caller.
func (r *R) Peek(fn func(*R) error) error {
	saved := r.off
	err := fn(r)
	r.off = saved
	return err
}

// ReadAt jumps the cursor to off, runs fn, and restores the cursor
// afterwards, whether fn succeeded or not. Used by table parsers that
// follow an offset field into a sub-structure and need to come back.
func (r *R) ReadAt(off int, fn func(*R) error) error {
	saved := r.off
	if err := r.Seek(off); err != nil {
		return err
	}
	err := fn(r)
	r.off = saved
	return err
}

// ASCIIString reads n bytes and returns them as a string verbatim
// (Macintosh/platform-3 name records are Latin-1/ASCII in practice).
func (r *R) ASCIIString(n int) (string, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UTF16BEString reads n bytes as UTF-16BE and returns the decoded
// string, used for Windows-platform name records.
func (r *R) UTF16BEString(n int) (string, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(b[i*2:])
	}
	return string(utf16Decode(units)), nil
}

func utf16Decode(units []uint16) []rune {
	var out []rune
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u < 0xD800 || u > 0xDFFF:
			out = append(out, rune(u))
		case u <= 0xDBFF && i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF:
			lo := units[i+1]
			out = append(out, ((rune(u)-0xD800)<<10|(rune(lo)-0xDC00))+0x10000)
			i++
		default:
			out = append(out, 0xFFFD)
		}
	}
	return out
}


package woff2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestDecodeRejectsBadSignature(t *testing.T) {
	data := make([]byte, 48)
	copy(data, "NOPE")
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for bad signature")
	}
}

func TestDecodeRejectsShortFile(t *testing.T) {
	if _, err := Decode(make([]byte, 10)); err == nil {
		t.Fatal("expected error for file shorter than header")
	}
}

func TestCalcChecksum(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02}
	if got := calcChecksum(data); got != 3 {
		t.Fatalf("calcChecksum = %d, want 3", got)
	}
}

func TestCalcChecksumPadsShortTail(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	if got := calcChecksum(data); got != 1 {
		t.Fatalf("calcChecksum = %d, want 1", got)
	}
}

// buildMinimalWOFF2 assembles a single-table, untransformed WOFF2 file
// wrapping one 54-byte fake "head" table, to exercise the header and
// table-directory parse path without a real font.
func buildMinimalWOFF2(t *testing.T) []byte {
	t.Helper()
	headTable := make([]byte, 54) // head table minimum size
	binary.BigEndian.PutUint16(headTable[16:], 0x0800) // flags bit 11 set

	var compBuf bytes.Buffer
	bw := brotli.NewWriter(&compBuf)
	if _, err := bw.Write(headTable); err != nil {
		t.Fatalf("brotli write: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("brotli close: %v", err)
	}
	compData := compBuf.Bytes()

	var directory bytes.Buffer
	directory.WriteByte(1) // tag index 1 = "head", transform version 0 (no transform for head)
	directory.Write(encodeUIntBase128(uint32(len(headTable))))

	totalHeaderLen := 48 + directory.Len()
	totalCompressedLen := len(compData)
	totalSfntSize := uint32(12 + 16 + len(headTable))

	var buf bytes.Buffer
	buf.WriteString("wOF2")
	binary.Write(&buf, binary.BigEndian, uint32(0x00010000)) // flavor (TrueType)
	binary.Write(&buf, binary.BigEndian, uint32(totalHeaderLen+totalCompressedLen))
	binary.Write(&buf, binary.BigEndian, uint16(1)) // numTables
	binary.Write(&buf, binary.BigEndian, uint16(0)) // reserved
	binary.Write(&buf, binary.BigEndian, totalSfntSize)
	binary.Write(&buf, binary.BigEndian, uint32(totalCompressedLen))
	binary.Write(&buf, binary.BigEndian, uint16(1)) // majorVersion
	binary.Write(&buf, binary.BigEndian, uint16(0)) // minorVersion
	binary.Write(&buf, binary.BigEndian, uint32(0)) // metaOffset
	binary.Write(&buf, binary.BigEndian, uint32(0)) // metaLength
	binary.Write(&buf, binary.BigEndian, uint32(0)) // metaOrigLength
	binary.Write(&buf, binary.BigEndian, uint32(0)) // privOffset
	binary.Write(&buf, binary.BigEndian, uint32(0)) // privLength
	buf.Write(directory.Bytes())
	buf.Write(compData)
	return buf.Bytes()
}

// encodeUIntBase128 mirrors the reader package's WOFF2 variable-length
// format, used here only to build a test fixture.
func encodeUIntBase128(v uint32) []byte {
	if v == 0 {
		return []byte{0}
	}
	var digits []byte
	for v > 0 {
		digits = append([]byte{byte(v & 0x7F)}, digits...)
		v >>= 7
	}
	for i := 0; i < len(digits)-1; i++ {
		digits[i] |= 0x80
	}
	return digits
}

func TestDecodeMinimalSingleTableFont(t *testing.T) {
	data := buildMinimalWOFF2(t)
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) < 12+16 {
		t.Fatalf("decoded font too short: %d bytes", len(out))
	}
	if binary.BigEndian.Uint32(out) != 0x00010000 {
		t.Fatalf("decoded font missing TrueType sfnt version, got %x", out[:4])
	}
	if binary.BigEndian.Uint16(out[4:]) != 1 {
		t.Fatalf("decoded font numTables = %d, want 1", binary.BigEndian.Uint16(out[4:]))
	}
	// After checksumAdjustment is patched, the whole file must sum to
	// the sfnt sentinel.
	if sum := calcChecksum(out); sum != 0xB1B0AFBA {
		t.Fatalf("whole-file checksum = %#x, want 0xB1B0AFBA", sum)
	}
}


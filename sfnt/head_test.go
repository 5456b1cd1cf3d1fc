package sfnt

import (
	"encoding/binary"
	"testing"
)

func buildHeadTable(magic uint32, indexToLocFormat int16) []byte {
	data := make([]byte, 54)
	binary.BigEndian.PutUint32(data[0:], 0x00010000) // version
	binary.BigEndian.PutUint32(data[4:], 0x00010000) // fontRevision
	binary.BigEndian.PutUint32(data[12:], magic)
	binary.BigEndian.PutUint16(data[18:], 1000) // unitsPerEm
	binary.BigEndian.PutUint16(data[50:], uint16(indexToLocFormat))
	return data
}

func TestParseHead(t *testing.T) {
	h, err := ParseHead(buildHeadTable(0x5F0F3CF5, 1))
	if err != nil {
		t.Fatalf("ParseHead: %v", err)
	}
	if h.UnitsPerEm != 1000 {
		t.Fatalf("unitsPerEm = %d, want 1000", h.UnitsPerEm)
	}
	if h.IndexToLocFormat != 1 {
		t.Fatalf("indexToLocFormat = %d, want 1", h.IndexToLocFormat)
	}
}

func TestParseHeadRejectsBadMagic(t *testing.T) {
	if _, err := ParseHead(buildHeadTable(0xDEADBEEF, 0)); err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestParseMaxpVersions(t *testing.T) {
	data := make([]byte, 6)
	binary.BigEndian.PutUint32(data[0:], 0x00005000)
	binary.BigEndian.PutUint16(data[4:], 42)
	m, err := ParseMaxp(data)
	if err != nil {
		t.Fatalf("ParseMaxp v0.5: %v", err)
	}
	if m.NumGlyphs != 42 {
		t.Fatalf("numGlyphs = %d, want 42", m.NumGlyphs)
	}

	binary.BigEndian.PutUint32(data[0:], 0x00012345)
	if _, err := ParseMaxp(data); err == nil {
		t.Fatal("expected error for unknown maxp version")
	}
}

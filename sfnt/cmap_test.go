package sfnt

import (
	"encoding/binary"
	"testing"
)

func buildCmapTable(platformID, encodingID uint16, subtable []byte) []byte {
	header := make([]byte, 4+8)
	binary.BigEndian.PutUint16(header[0:], 0) // version
	binary.BigEndian.PutUint16(header[2:], 1) // numTables
	binary.BigEndian.PutUint16(header[4:], platformID)
	binary.BigEndian.PutUint16(header[6:], encodingID)
	binary.BigEndian.PutUint32(header[8:], uint32(len(header)))
	return append(header, subtable...)
}

// buildFormat4Direct builds a format 4 subtable with a single segment
// using idDelta-only mapping (idRangeOffset == 0).
func buildFormat4Direct(startCode, endCode uint16, delta int16) []byte {
	segCount := 2 // one real segment + the 0xFFFF sentinel
	segCountX2 := segCount * 2
	size := 14 + segCountX2*4 + 2
	data := make([]byte, size)
	binary.BigEndian.PutUint16(data[0:], 4)
	binary.BigEndian.PutUint16(data[2:], uint16(size))
	binary.BigEndian.PutUint16(data[6:], uint16(segCountX2))

	endOff := 14
	startOff := endOff + segCountX2 + 2
	deltaOff := startOff + segCountX2
	rangeOff := deltaOff + segCountX2

	binary.BigEndian.PutUint16(data[endOff:], endCode)
	binary.BigEndian.PutUint16(data[endOff+2:], 0xFFFF)
	binary.BigEndian.PutUint16(data[startOff:], startCode)
	binary.BigEndian.PutUint16(data[startOff+2:], 0xFFFF)
	binary.BigEndian.PutUint16(data[deltaOff:], uint16(delta))
	binary.BigEndian.PutUint16(data[deltaOff+2:], 1)
	binary.BigEndian.PutUint16(data[rangeOff:], 0)
	binary.BigEndian.PutUint16(data[rangeOff+2:], 0)
	return data
}

func TestCmapFormat4DirectDelta(t *testing.T) {
	sub := buildFormat4Direct(0x41, 0x5A, 10) // 'A'-'Z' -> gid+10
	table := buildCmapTable(3, 1, sub)

	c, err := ParseCmap(table)
	if err != nil {
		t.Fatal(err)
	}
	gid, ok := c.Lookup('A')
	if !ok || gid != 0x41+10 {
		t.Fatalf("Lookup('A') = (%d, %v), want (75, true)", gid, ok)
	}
	if _, ok := c.Lookup('a'); ok {
		t.Fatal("Lookup('a') should not be found outside the mapped segment")
	}
}

func TestCmapFormat4NegativeDelta(t *testing.T) {
	// startCode=65, endCode=90, idDelta=-64: 'A' maps to glyph 1,
	// 'Z' to 26, 91 falls outside the segment.
	sub := buildFormat4Direct(65, 90, -64)
	table := buildCmapTable(3, 1, sub)

	c, err := ParseCmap(table)
	if err != nil {
		t.Fatal(err)
	}
	if gid, ok := c.Lookup(65); !ok || gid != 1 {
		t.Fatalf("Lookup(65) = (%d, %v), want (1, true)", gid, ok)
	}
	if gid, ok := c.Lookup(90); !ok || gid != 26 {
		t.Fatalf("Lookup(90) = (%d, %v), want (26, true)", gid, ok)
	}
	if _, ok := c.Lookup(91); ok {
		t.Fatal("Lookup(91) should fall outside the segment")
	}
}

func TestCmapCoalescesDuplicateOffsets(t *testing.T) {
	// Two encoding records pointing at the same subtable offset: both
	// keys must resolve, backed by a single parsed subtable.
	sub := buildFormat4Direct(65, 90, 0)
	header := make([]byte, 4+16)
	binary.BigEndian.PutUint16(header[0:], 0)
	binary.BigEndian.PutUint16(header[2:], 2)
	binary.BigEndian.PutUint16(header[4:], 0) // Unicode BMP
	binary.BigEndian.PutUint16(header[6:], 3)
	binary.BigEndian.PutUint32(header[8:], uint32(len(header)))
	binary.BigEndian.PutUint16(header[12:], 3) // Windows BMP, same offset
	binary.BigEndian.PutUint16(header[14:], 1)
	binary.BigEndian.PutUint32(header[16:], uint32(len(header)))
	table := append(header, sub...)

	c, err := ParseCmap(table)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.EncodingKeys()) != 2 {
		t.Fatalf("got %d encoding keys, want 2", len(c.EncodingKeys()))
	}
	for _, key := range []EncodingKey{{0, 3}, {3, 1}} {
		if gid, ok := c.LookupIn(key, 65); !ok || gid != 65 {
			t.Fatalf("LookupIn(%v, 65) = (%d, %v), want (65, true)", key, gid, ok)
		}
	}
}

func TestCmapFormat0(t *testing.T) {
	sub := make([]byte, 262)
	binary.BigEndian.PutUint16(sub[0:], 0)
	binary.BigEndian.PutUint16(sub[2:], 262)
	sub[6+65] = 5 // 'A' -> gid 5
	table := buildCmapTable(1, 0, sub)

	c, err := ParseCmap(table)
	if err != nil {
		t.Fatal(err)
	}
	gid, ok := c.Lookup('A')
	if !ok || gid != 5 {
		t.Fatalf("Lookup('A') = (%d, %v), want (5, true)", gid, ok)
	}
}

func TestCmapFormat12SingleGroup(t *testing.T) {
	sub := make([]byte, 16+12)
	binary.BigEndian.PutUint16(sub[0:], 12)
	binary.BigEndian.PutUint32(sub[4:], uint32(len(sub)))
	binary.BigEndian.PutUint32(sub[12:], 1) // numGroups
	binary.BigEndian.PutUint32(sub[16:], 0x1F600)
	binary.BigEndian.PutUint32(sub[20:], 0x1F600)
	binary.BigEndian.PutUint32(sub[24:], 200)
	table := buildCmapTable(3, 10, sub)

	c, err := ParseCmap(table)
	if err != nil {
		t.Fatal(err)
	}
	gid, ok := c.Lookup(0x1F600)
	if !ok || gid != 200 {
		t.Fatalf("Lookup(emoji) = (%d, %v), want (200, true)", gid, ok)
	}
}

func TestCmapLookupVariationAlwaysUnresolved(t *testing.T) {
	sub := buildFormat4Direct(0x41, 0x5A, 0)
	table := buildCmapTable(3, 1, sub)
	c, err := ParseCmap(table)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.LookupVariation('A', 0xFE00); ok {
		t.Fatal("LookupVariation must report not-found: variation-sequence resolution is out of scope")
	}
}

func TestParseCmapRejectsTruncatedHeader(t *testing.T) {
	if _, err := ParseCmap([]byte{0, 0}); err == nil {
		t.Fatal("expected error for data shorter than cmap's fixed header")
	}
}


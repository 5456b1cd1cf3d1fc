package woff2

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildTransformedTriangle assembles a transformed glyf slab holding a
// single simple glyph: a triangle (0,0) (100,0) (50,100), all points
// on-curve, no instructions, bbox computed from the points.
func buildTransformedTriangle() []byte {
	nContourStream := []byte{0x00, 0x01}
	nPointsStream := []byte{3}
	// Point triplets: (0,0) via the dy-only branch, (100,0) via the
	// dx-only branch, (-50,100) via the two-byte branch (flag 86).
	flagStream := []byte{0x00, 0x0B, 0x56}
	glyphStream := []byte{
		0x00,   // dy magnitude byte for point 0
		100,    // dx magnitude byte for point 1
		49, 99, // dx/dy magnitude bytes for point 2
		0, // instructionLength (255UInt16)
	}
	bboxBitmap := make([]byte, 4) // all zero: no explicit bbox

	var buf bytes.Buffer
	writeU16 := func(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); buf.Write(b[:]) }
	writeU32 := func(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); buf.Write(b[:]) }

	writeU16(0) // reserved
	writeU16(0) // optionFlags
	writeU16(1) // numGlyphs
	writeU16(0) // indexFormat: short loca
	writeU32(uint32(len(nContourStream)))
	writeU32(uint32(len(nPointsStream)))
	writeU32(uint32(len(flagStream)))
	writeU32(uint32(len(glyphStream)))
	writeU32(0) // compositeStream
	writeU32(uint32(len(bboxBitmap)))
	writeU32(0) // instructionStream
	buf.Write(nContourStream)
	buf.Write(nPointsStream)
	buf.Write(flagStream)
	buf.Write(glyphStream)
	buf.Write(bboxBitmap)
	return buf.Bytes()
}

func TestReconstructGlyfLocaTriangle(t *testing.T) {
	glyf, loca, err := reconstructGlyfLoca(buildTransformedTriangle())
	if err != nil {
		t.Fatalf("reconstructGlyfLoca: %v", err)
	}

	want := []byte{
		0x00, 0x01, // numberOfContours = 1
		0x00, 0x00, // xMin = 0
		0x00, 0x00, // yMin = 0
		0x00, 0x64, // xMax = 100
		0x00, 0x64, // yMax = 100
		0x00, 0x02, // endPtsOfContours[0] = 2
		0x00, 0x00, // instructionLength = 0
		0x31, 0x33, 0x27, // flags: on-curve plus short/same bits
		100, 50, // x deltas: +100, then -50 (sign in flag)
		100, // y deltas: +100 (zeros carried by the same-flag bits)
	}
	// The glyph record is padded to a 4-byte boundary.
	for len(want)%4 != 0 {
		want = append(want, 0)
	}
	if !bytes.Equal(glyf, want) {
		t.Fatalf("reconstructed glyf =\n% x\nwant\n% x", glyf, want)
	}

	// Short loca: offsets [0, len(glyf)] stored halved.
	wantLoca := []byte{0x00, 0x00, 0x00, byte(len(glyf) / 2)}
	if !bytes.Equal(loca, wantLoca) {
		t.Fatalf("reconstructed loca = % x, want % x", loca, wantLoca)
	}
}

func TestReconstructGlyfLocaEmptyGlyph(t *testing.T) {
	var buf bytes.Buffer
	writeU16 := func(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); buf.Write(b[:]) }
	writeU32 := func(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); buf.Write(b[:]) }
	writeU16(0)
	writeU16(0)
	writeU16(1) // one glyph
	writeU16(0)
	writeU32(2) // nContourStream
	writeU32(0)
	writeU32(0)
	writeU32(0)
	writeU32(0)
	writeU32(4) // bbox bitmap only
	writeU32(0)
	writeU16(0)                 // nContours = 0: empty glyph
	buf.Write(make([]byte, 4))  // bbox bitmap, all zero

	glyf, loca, err := reconstructGlyfLoca(buf.Bytes())
	if err != nil {
		t.Fatalf("reconstructGlyfLoca: %v", err)
	}
	if len(glyf) != 0 {
		t.Fatalf("empty glyph produced %d glyf bytes", len(glyf))
	}
	if !bytes.Equal(loca, []byte{0, 0, 0, 0}) {
		t.Fatalf("loca = % x, want all-zero offsets", loca)
	}
}

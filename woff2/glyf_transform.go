package woff2

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

// reconstructGlyfLoca reverses WOFF2's transform-version-0 glyf/loca
// encoding: glyph outlines are split into per-kind streams (contour
// counts, point counts, flags, coordinate deltas, composite records,
// bounding boxes, instructions) so Brotli can compress similar bytes
// together; this walks those streams back into plain glyf table bytes
// plus a matching loca offset array.
func reconstructGlyfLoca(transformed []byte) (glyfOut, locaOut []byte, err error) {
	r := reader.New(transformed)
	if err := r.Skip(2); err != nil { // reserved version field
		return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "transformed glyf header truncated"}
	}
	optionFlags, err1 := r.U16()
	numGlyphs, err2 := r.U16()
	indexFormat, err3 := r.U16()
	nContourStreamSize, err4 := r.U32()
	nPointsStreamSize, err5 := r.U32()
	flagStreamSize, err6 := r.U32()
	glyphStreamSize, err7 := r.U32()
	compositeStreamSize, err8 := r.U32()
	bboxStreamSize, err9 := r.U32()
	instructionStreamSize, err10 := r.U32()
	for _, e := range []error{err1, err2, err3, err4, err5, err6, err7, err8, err9, err10} {
		if e != nil {
			return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "transformed glyf header truncated"}
		}
	}
	if nContourStreamSize != 2*uint32(numGlyphs) {
		return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "nContourStream size disagrees with numGlyphs"}
	}

	bitmapSize := ((uint32(numGlyphs) + 31) >> 5) << 2
	nContourStream, err1 := subReader(r, nContourStreamSize)
	nPointsStream, err2 := subReader(r, nPointsStreamSize)
	flagStream, err3 := subReader(r, flagStreamSize)
	glyphStream, err4 := subReader(r, glyphStreamSize)
	compositeStream, err5 := subReader(r, compositeStreamSize)
	bboxBitmap, err6 := subReader(r, bitmapSize)
	bboxStream, err7 := subReader(r, bboxStreamSize-bitmapSize)
	instructionStream, err8 := subReader(r, instructionStreamSize)
	for _, e := range []error{err1, err2, err3, err4, err5, err6, err7, err8} {
		if e != nil {
			return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "transformed glyf stream truncated"}
		}
	}
	var overlapSimpleBitmap *reader.R
	if optionFlags&0x0001 != 0 {
		overlapSimpleBitmap, err = subReader(r, bitmapSize)
		if err != nil {
			return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "overlapSimpleBitmap truncated"}
		}
	}

	glyfBuf := make([]byte, 0, glyphStreamSize*2)
	locaOffsets := make([]uint32, 0, numGlyphs+1)

	for gid := uint16(0); gid < numGlyphs; gid++ {
		locaOffsets = append(locaOffsets, uint32(len(glyfBuf)))

		explicitBbox, err := readBitmapBit(bboxBitmap, int(gid))
		if err != nil {
			return nil, nil, err
		}
		nContours, err := nContourStream.I16()
		if err != nil {
			return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "nContourStream truncated"}
		}

		if nContours == 0 {
			if explicitBbox {
				return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "empty glyph cannot have explicit bbox"}
			}
			continue
		}

		if nContours > 0 {
			overlap := false
			if overlapSimpleBitmap != nil {
				overlap, _ = readBitmapBit(overlapSimpleBitmap, int(gid))
			}
			data, err := reconstructSimpleGlyph(nContours, explicitBbox, overlap, nPointsStream, flagStream, glyphStream, bboxStream, instructionStream)
			if err != nil {
				return nil, nil, err
			}
			glyfBuf = append(glyfBuf, data...)
		} else {
			if !explicitBbox {
				return nil, nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite glyph must have explicit bbox"}
			}
			data, err := reconstructCompositeGlyph(nContours, bboxStream, compositeStream, glyphStream, instructionStream)
			if err != nil {
				return nil, nil, err
			}
			glyfBuf = append(glyfBuf, data...)
		}

		for len(glyfBuf)%4 != 0 {
			glyfBuf = append(glyfBuf, 0)
		}
	}

	locaOffsets = append(locaOffsets, uint32(len(glyfBuf)))
	return glyfBuf, encodeLoca(locaOffsets, indexFormat), nil
}

func subReader(r *reader.R, n uint32) (*reader.R, error) {
	b, err := r.Bytes(int(n))
	if err != nil {
		return nil, err
	}
	return reader.New(b), nil
}

func readBitmapBit(r *reader.R, index int) (bool, error) {
	byteIdx := index / 8
	bitIdx := uint(7 - index%8)
	if byteIdx >= r.Len() {
		return false, &ferrors.InvalidTable{Tag: "glyf", Reason: "bbox bitmap index out of range"}
	}
	b, err := r.Slice(byteIdx, 1)
	if err != nil {
		return false, err
	}
	return b[0]&(1<<bitIdx) != 0, nil
}

func signOf(flag byte, bit uint) int16 {
	if flag&(1<<bit) != 0 {
		return 1
	}
	return -1
}

func reconstructSimpleGlyph(nContours int16, explicitBbox, overlap bool, nPointsStream, flagStream, glyphStream, bboxStream, instructionStream *reader.R) ([]byte, error) {
	endPts := make([]uint16, nContours)
	var nPoints uint16
	for i := int16(0); i < nContours; i++ {
		n, err := nPointsStream.Uint255()
		if err != nil {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "nPointsStream truncated"}
		}
		nPoints += n
		endPts[i] = nPoints - 1
	}

	var xMin, yMin, xMax, yMax int16
	if explicitBbox {
		var e1, e2, e3, e4 error
		xMin, e1 = bboxStream.I16()
		yMin, e2 = bboxStream.I16()
		xMax, e3 = bboxStream.I16()
		yMax, e4 = bboxStream.I16()
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "bboxStream truncated"}
		}
	}

	var x, y int32
	onCurves := make([]bool, nPoints)
	xs := make([]int16, nPoints)
	ys := make([]int16, nPoints)
	for i := uint16(0); i < nPoints; i++ {
		flag, err := flagStream.U8()
		if err != nil {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "flagStream truncated"}
		}
		onCurve := flag&0x80 == 0
		flag &= 0x7F

		var dx, dy int16
		switch {
		case flag < 10:
			c0, err := glyphStream.U8()
			if err != nil {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyphStream truncated"}
			}
			dy = signOf(flag, 0) * (int16(flag&0x0E)<<7 + int16(c0))
		case flag < 20:
			c0, err := glyphStream.U8()
			if err != nil {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyphStream truncated"}
			}
			dx = signOf(flag, 0) * (int16((flag-10)&0x0E)<<7 + int16(c0))
		case flag < 84:
			c0, err := glyphStream.U8()
			if err != nil {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyphStream truncated"}
			}
			dx = signOf(flag, 0) * (1 + int16((flag-20)&0x30) + int16(c0)>>4)
			dy = signOf(flag, 1) * (1 + int16((flag-20)&0x0C)<<2 + int16(c0&0x0F))
		case flag < 120:
			c0, e1 := glyphStream.U8()
			c1, e2 := glyphStream.U8()
			if e1 != nil || e2 != nil {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyphStream truncated"}
			}
			dx = signOf(flag, 0) * (1 + int16((flag-84)/12)<<8 + int16(c0))
			dy = signOf(flag, 1) * (1 + int16((flag-84)%12)>>2<<8 + int16(c1))
		case flag < 124:
			c0, e1 := glyphStream.U8()
			c1, e2 := glyphStream.U8()
			c2, e3 := glyphStream.U8()
			if e1 != nil || e2 != nil || e3 != nil {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyphStream truncated"}
			}
			dx = signOf(flag, 0) * (int16(c0)<<4 + int16(c1)>>4)
			dy = signOf(flag, 1) * (int16(c1&0x0F)<<8 + int16(c2))
		default:
			c0, e1 := glyphStream.U8()
			c1, e2 := glyphStream.U8()
			c2, e3 := glyphStream.U8()
			c3, e4 := glyphStream.U8()
			if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyphStream truncated"}
			}
			dx = signOf(flag, 0) * (int16(c0)<<8 + int16(c1))
			dy = signOf(flag, 1) * (int16(c2)<<8 + int16(c3))
		}
		xs[i] = dx
		ys[i] = dy
		onCurves[i] = onCurve

		if !explicitBbox {
			x += int32(dx)
			y += int32(dy)
			if i == 0 {
				xMin, xMax = int16(x), int16(x)
				yMin, yMax = int16(y), int16(y)
			} else {
				if int16(x) < xMin {
					xMin = int16(x)
				} else if int16(x) > xMax {
					xMax = int16(x)
				}
				if int16(y) < yMin {
					yMin = int16(y)
				} else if int16(y) > yMax {
					yMax = int16(y)
				}
			}
		}
	}

	instructionLength, err := glyphStream.Uint255()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "instructionLength truncated"}
	}
	instructions, err := instructionStream.Bytes(int(instructionLength))
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "instructionStream truncated"}
	}

	// Re-encode into the plain glyf simple-glyph layout: per-point flag
	// bytes with the short/same bits (0x02/0x10 for x, 0x04/0x20 for y),
	// then the delta-encoded x and y coordinate streams.
	outlineFlags := make([]byte, 0, nPoints)
	xBytes := make([]byte, 0, 2*int(nPoints))
	yBytes := make([]byte, 0, 2*int(nPoints))
	for i := uint16(0); i < nPoints; i++ {
		var f byte
		if onCurves[i] {
			f |= 0x01
		}
		if i == 0 && overlap {
			f |= 0x40
		}
		switch dx := xs[i]; {
		case dx == 0:
			f |= 0x10
		case dx >= -255 && dx <= 255:
			f |= 0x02
			if dx > 0 {
				f |= 0x10
				xBytes = append(xBytes, byte(dx))
			} else {
				xBytes = append(xBytes, byte(-dx))
			}
		default:
			xBytes = appendI16(xBytes, dx)
		}
		switch dy := ys[i]; {
		case dy == 0:
			f |= 0x20
		case dy >= -255 && dy <= 255:
			f |= 0x04
			if dy > 0 {
				f |= 0x20
				yBytes = append(yBytes, byte(dy))
			} else {
				yBytes = append(yBytes, byte(-dy))
			}
		default:
			yBytes = appendI16(yBytes, dy)
		}
		outlineFlags = append(outlineFlags, f)
	}

	buf := make([]byte, 0, 10+len(endPts)*2+2+len(instructions)+len(outlineFlags)+len(xBytes)+len(yBytes))
	buf = appendI16(buf, nContours)
	buf = appendI16(buf, xMin)
	buf = appendI16(buf, yMin)
	buf = appendI16(buf, xMax)
	buf = appendI16(buf, yMax)
	for _, e := range endPts {
		buf = appendU16(buf, e)
	}
	buf = appendU16(buf, instructionLength)
	buf = append(buf, instructions...)
	buf = append(buf, outlineFlags...)
	buf = append(buf, xBytes...)
	buf = append(buf, yBytes...)
	return buf, nil
}

func reconstructCompositeGlyph(nContours int16, bboxStream, compositeStream, glyphStream, instructionStream *reader.R) ([]byte, error) {
	var xMin, yMin, xMax, yMax int16
	var e1, e2, e3, e4 error
	xMin, e1 = bboxStream.I16()
	yMin, e2 = bboxStream.I16()
	xMax, e3 = bboxStream.I16()
	yMax, e4 = bboxStream.I16()
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "bboxStream truncated"}
	}

	buf := make([]byte, 0, 64)
	buf = appendI16(buf, nContours)
	buf = appendI16(buf, xMin)
	buf = appendI16(buf, yMin)
	buf = appendI16(buf, xMax)
	buf = appendI16(buf, yMax)

	hasInstructions := false
	for {
		flags, err := compositeStream.U16()
		if err != nil {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "compositeStream truncated"}
		}
		argsAreWords := flags&0x0001 != 0
		haveScale := flags&0x0008 != 0
		moreComponents := flags&0x0020 != 0
		haveXYScales := flags&0x0040 != 0
		have2x2 := flags&0x0080 != 0
		haveInstructions := flags&0x0100 != 0

		n := 4
		if argsAreWords {
			n += 2
		}
		switch {
		case haveScale:
			n += 2
		case haveXYScales:
			n += 4
		case have2x2:
			n += 8
		}
		rest, err := compositeStream.Bytes(n)
		if err != nil {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "compositeStream truncated"}
		}

		buf = appendU16(buf, flags)
		buf = append(buf, rest...)

		if haveInstructions {
			hasInstructions = true
		}
		if !moreComponents {
			break
		}
	}

	if hasInstructions {
		instructionLength, err := glyphStream.Uint255()
		if err != nil {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "instructionLength truncated"}
		}
		instructions, err := instructionStream.Bytes(int(instructionLength))
		if err != nil {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "instructionStream truncated"}
		}
		buf = appendU16(buf, instructionLength)
		buf = append(buf, instructions...)
	}
	return buf, nil
}

func encodeLoca(offsets []uint32, indexFormat uint16) []byte {
	if indexFormat == 0 {
		out := make([]byte, len(offsets)*2)
		for i, off := range offsets {
			binary.BigEndian.PutUint16(out[i*2:], uint16(off/2))
		}
		return out
	}
	out := make([]byte, len(offsets)*4)
	for i, off := range offsets {
		binary.BigEndian.PutUint32(out[i*4:], off)
	}
	return out
}

func appendU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendI16(buf []byte, v int16) []byte {
	return appendU16(buf, uint16(v))
}


package sfnt

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
)

// AxisValueMapEntry is one correspondence pair of an avar segment map:
// a user-space F2Dot14 coordinate paired with its normalized
// counterpart.
type AxisValueMapEntry struct {
	FromCoordinate float32
	ToCoordinate   float32
}

// Avar is the parsed axis-variations (`avar`) table: one segment map
// per fvar axis. Interpolating an instance coordinate against these
// segments is variable-font axis application and out of this module's
// scope; this type only exposes the decoded correspondence pairs.
type Avar struct {
	segments [][]AxisValueMapEntry
}

// ParseAvar parses an avar table. axisCount must come from the font's
// fvar table, since avar carries no width field of its own for the
// coordinate part of each segment.
func ParseAvar(data []byte, axisCount int) (*Avar, error) {
	if len(data) < 8 {
		return nil, &ferrors.InvalidTable{Tag: "avar", Reason: "header truncated"}
	}
	if binary.BigEndian.Uint16(data[0:]) != 1 {
		return nil, &ferrors.InvalidTable{Tag: "avar", Reason: "unsupported version"}
	}
	declaredAxisCount := int(binary.BigEndian.Uint16(data[6:]))
	if declaredAxisCount != axisCount {
		return nil, &ferrors.InvalidTable{Tag: "avar", Reason: "axisCount disagrees with fvar"}
	}

	a := &Avar{segments: make([][]AxisValueMapEntry, axisCount)}
	off := 8
	for i := 0; i < axisCount; i++ {
		if off+2 > len(data) {
			return nil, &ferrors.InvalidTable{Tag: "avar", Reason: "segment map count truncated"}
		}
		pairCount := int(binary.BigEndian.Uint16(data[off:]))
		off += 2
		if off+pairCount*4 > len(data) {
			return nil, &ferrors.InvalidTable{Tag: "avar", Reason: "segment map pairs truncated"}
		}
		pairs := make([]AxisValueMapEntry, pairCount)
		for p := 0; p < pairCount; p++ {
			pairs[p] = AxisValueMapEntry{
				FromCoordinate: f2dot14(data[off:]),
				ToCoordinate:   f2dot14(data[off+2:]),
			}
			off += 4
		}
		a.segments[i] = pairs
	}
	return a, nil
}

// SegmentMap returns the correspondence pairs for one axis index.
func (a *Avar) SegmentMap(axisIndex int) []AxisValueMapEntry {
	if axisIndex < 0 || axisIndex >= len(a.segments) {
		return nil
	}
	return a.segments[axisIndex]
}

func f2dot14(b []byte) float32 {
	return float32(int16(binary.BigEndian.Uint16(b))) / 16384.0
}


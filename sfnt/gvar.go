package sfnt

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
)

// Gvar is the parsed glyph-variations (`gvar`) table header: the
// shared-tuples region and each glyph's variation-data sub-range.
// Decoding a glyph's per-tuple point deltas and applying them to an
// outline is variable-font axis application and out of this module's
// scope; this type exposes only the raw per-glyph byte ranges so a
// caller building that logic elsewhere doesn't have to re-parse the
// header.
type Gvar struct {
	data               []byte
	axisCount          int
	sharedTupleCount   int
	sharedTuplesOffset uint32
	glyphVarDataOffset uint32
	glyphOffsets       []uint32
}

// ParseGvar parses a gvar table's header and offset arrays.
func ParseGvar(data []byte) (*Gvar, error) {
	if len(data) < 20 {
		return nil, &ferrors.InvalidTable{Tag: "gvar", Reason: "header truncated"}
	}
	if binary.BigEndian.Uint16(data[0:]) != 1 {
		return nil, &ferrors.InvalidTable{Tag: "gvar", Reason: "unsupported version"}
	}

	g := &Gvar{
		data:               data,
		axisCount:          int(binary.BigEndian.Uint16(data[4:])),
		sharedTupleCount:   int(binary.BigEndian.Uint16(data[6:])),
		sharedTuplesOffset: binary.BigEndian.Uint32(data[8:]),
		glyphVarDataOffset: binary.BigEndian.Uint32(data[16:]),
	}
	glyphCount := int(binary.BigEndian.Uint16(data[12:]))
	flags := binary.BigEndian.Uint16(data[14:])
	longOffsets := flags&1 != 0

	offsetsStart := 20
	g.glyphOffsets = make([]uint32, glyphCount+1)
	if longOffsets {
		if len(data) < offsetsStart+(glyphCount+1)*4 {
			return nil, &ferrors.InvalidTable{Tag: "gvar", Reason: "32-bit offset array truncated"}
		}
		for i := range g.glyphOffsets {
			g.glyphOffsets[i] = binary.BigEndian.Uint32(data[offsetsStart+i*4:])
		}
	} else {
		if len(data) < offsetsStart+(glyphCount+1)*2 {
			return nil, &ferrors.InvalidTable{Tag: "gvar", Reason: "16-bit offset array truncated"}
		}
		for i := range g.glyphOffsets {
			g.glyphOffsets[i] = uint32(binary.BigEndian.Uint16(data[offsetsStart+i*2:])) * 2
		}
	}
	return g, nil
}

// AxisCount returns the number of variation axes gvar's tuples are
// expressed in.
func (g *Gvar) AxisCount() int { return g.axisCount }

// GlyphVariationData returns the raw, still-packed tuple-variation
// bytes for a glyph, or nil if it carries no variation data.
func (g *Gvar) GlyphVariationData(gid GlyphID) []byte {
	idx := int(gid)
	if idx < 0 || idx+1 >= len(g.glyphOffsets) {
		return nil
	}
	start := g.glyphVarDataOffset + g.glyphOffsets[idx]
	end := g.glyphVarDataOffset + g.glyphOffsets[idx+1]
	if end <= start || int(end) > len(g.data) {
		return nil
	}
	return g.data[start:end]
}

// SharedTuples returns the raw bytes of the shared-tuples region,
// sharedTupleCount F2Dot14 tuples of axisCount coordinates each.
func (g *Gvar) SharedTuples() []byte {
	size := uint32(g.sharedTupleCount * g.axisCount * 2)
	if int(g.sharedTuplesOffset+size) > len(g.data) {
		return nil
	}
	return g.data[g.sharedTuplesOffset : g.sharedTuplesOffset+size]
}


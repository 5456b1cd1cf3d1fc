package sfnt

import (
	"encoding/binary"
	"sort"

	"github.com/boxesandglue/fontcore/ferrors"
)

// NotCovered is returned by Coverage.Index for a glyph outside the
// table's coverage set.
const NotCovered = ^uint32(0)

// Coverage is an OpenType Coverage table: a sorted set of glyph IDs,
// stored either as a flat array (format 1) or as ranges (format 2),
// mapping each covered glyph to its position within the set. GDEF,
// GSUB, and GPOS all key their per-lookup data off this index, which
// is why it's kept here as a shared decoder primitive even though this
// module doesn't apply any shaping lookups itself.
type Coverage struct {
	format     uint16
	data       []byte
	glyphCount int
	glyphsOff  int
	rangeCount int
	rangesOff  int
}

// ParseCoverage parses a Coverage table at offset within data.
func ParseCoverage(data []byte, offset int) (*Coverage, error) {
	if offset+4 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "Coverage", Reason: "header truncated"}
	}
	format := binary.BigEndian.Uint16(data[offset:])
	c := &Coverage{format: format, data: data}

	switch format {
	case 1:
		count := int(binary.BigEndian.Uint16(data[offset+2:]))
		if offset+4+count*2 > len(data) {
			return nil, &ferrors.InvalidTable{Tag: "Coverage", Reason: "format 1 glyph array truncated"}
		}
		c.glyphCount = count
		c.glyphsOff = offset + 4
		return c, nil
	case 2:
		count := int(binary.BigEndian.Uint16(data[offset+2:]))
		if offset+4+count*6 > len(data) {
			return nil, &ferrors.InvalidTable{Tag: "Coverage", Reason: "format 2 range array truncated"}
		}
		c.rangeCount = count
		c.rangesOff = offset + 4
		return c, nil
	default:
		return nil, &ferrors.InvalidTable{Tag: "Coverage", Reason: "unsupported format"}
	}
}

// Index returns glyph's position within the coverage set, or NotCovered.
func (c *Coverage) Index(glyph GlyphID) uint32 {
	switch c.format {
	case 1:
		lo, hi := 0, c.glyphCount
		for lo < hi {
			mid := (lo + hi) / 2
			g := GlyphID(binary.BigEndian.Uint16(c.data[c.glyphsOff+mid*2:]))
			switch {
			case glyph < g:
				hi = mid
			case glyph > g:
				lo = mid + 1
			default:
				return uint32(mid)
			}
		}
		return NotCovered
	case 2:
		lo, hi := 0, c.rangeCount
		for lo < hi {
			mid := (lo + hi) / 2
			off := c.rangesOff + mid*6
			start := GlyphID(binary.BigEndian.Uint16(c.data[off:]))
			end := GlyphID(binary.BigEndian.Uint16(c.data[off+2:]))
			switch {
			case glyph < start:
				hi = mid
			case glyph > end:
				lo = mid + 1
			default:
				startIdx := binary.BigEndian.Uint16(c.data[off+4:])
				return uint32(startIdx) + uint32(glyph-start)
			}
		}
		return NotCovered
	default:
		return NotCovered
	}
}

// ClassDef maps glyph IDs to class values, stored as either a
// contiguous array (format 1) or class ranges (format 2). Kept for the
// same reason as Coverage: GDEF's mark/base/ligature glyph
// classification is a ClassDef read, independent of any shaping logic.
type ClassDef struct {
	format      uint16
	startGlyph  GlyphID
	classValues []uint16
	classRanges []classDefRange
}

type classDefRange struct {
	startGlyph, endGlyph GlyphID
	class                uint16
}

// ParseClassDef parses a ClassDef table at offset within data.
func ParseClassDef(data []byte, offset int) (*ClassDef, error) {
	if offset+4 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "ClassDef", Reason: "header truncated"}
	}
	format := binary.BigEndian.Uint16(data[offset:])
	cd := &ClassDef{format: format}

	switch format {
	case 1:
		startGlyph := binary.BigEndian.Uint16(data[offset+2:])
		count := int(binary.BigEndian.Uint16(data[offset+4:]))
		if offset+6+count*2 > len(data) {
			return nil, &ferrors.InvalidTable{Tag: "ClassDef", Reason: "format 1 array truncated"}
		}
		cd.startGlyph = GlyphID(startGlyph)
		cd.classValues = make([]uint16, count)
		for i := range cd.classValues {
			cd.classValues[i] = binary.BigEndian.Uint16(data[offset+6+i*2:])
		}
		return cd, nil
	case 2:
		count := int(binary.BigEndian.Uint16(data[offset+2:]))
		if offset+4+count*6 > len(data) {
			return nil, &ferrors.InvalidTable{Tag: "ClassDef", Reason: "format 2 array truncated"}
		}
		cd.classRanges = make([]classDefRange, count)
		for i := range cd.classRanges {
			off := offset + 4 + i*6
			cd.classRanges[i] = classDefRange{
				startGlyph: GlyphID(binary.BigEndian.Uint16(data[off:])),
				endGlyph:   GlyphID(binary.BigEndian.Uint16(data[off+2:])),
				class:      binary.BigEndian.Uint16(data[off+4:]),
			}
		}
		return cd, nil
	default:
		return nil, &ferrors.InvalidTable{Tag: "ClassDef", Reason: "unsupported format"}
	}
}

// Class returns glyph's class, or 0 (the default class) if unlisted.
func (cd *ClassDef) Class(glyph GlyphID) int {
	switch cd.format {
	case 1:
		idx := int(glyph) - int(cd.startGlyph)
		if idx >= 0 && idx < len(cd.classValues) {
			return int(cd.classValues[idx])
		}
		return 0
	case 2:
		idx := sort.Search(len(cd.classRanges), func(i int) bool {
			return cd.classRanges[i].endGlyph >= glyph
		})
		if idx < len(cd.classRanges) {
			r := cd.classRanges[idx]
			if glyph >= r.startGlyph && glyph <= r.endGlyph {
				return int(r.class)
			}
		}
		return 0
	default:
		return 0
	}
}

// GDEF glyph classes, per the OpenType GDEF GlyphClassDef table.
const (
	GlyphClassBase      = 1
	GlyphClassLigature  = 2
	GlyphClassMark      = 3
	GlyphClassComponent = 4
)

// GDEF exposes the glyph-class and mark-attachment-class tables of a
// GDEF table; lookup application (mark-to-base attachment, ligature
// caret positioning) is out of scope and not implemented here.
type GDEF struct {
	GlyphClass       *ClassDef
	MarkAttachClass  *ClassDef
}

// ParseGDEF parses the subset of a GDEF table this module cares about:
// the two top-level ClassDef offsets.
func ParseGDEF(data []byte) (*GDEF, error) {
	if len(data) < 12 {
		return nil, &ferrors.InvalidTable{Tag: "GDEF", Reason: "header truncated"}
	}
	g := &GDEF{}
	glyphClassOff := int(binary.BigEndian.Uint16(data[4:]))
	if glyphClassOff != 0 {
		cd, err := ParseClassDef(data, glyphClassOff)
		if err == nil {
			g.GlyphClass = cd
		}
	}
	markAttachOff := int(binary.BigEndian.Uint16(data[10:]))
	if markAttachOff != 0 {
		cd, err := ParseClassDef(data, markAttachOff)
		if err == nil {
			g.MarkAttachClass = cd
		}
	}
	return g, nil
}


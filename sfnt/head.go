package sfnt

import (
	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

// headMagic is the fixed sentinel value every valid head table carries.
const headMagic = 0x5F0F3CF5

// Head is the parsed font header (`head`) table.
type Head struct {
	FontRevision     float64
	UnitsPerEm       uint16
	Created          int64
	Modified         int64
	XMin, YMin       int16
	XMax, YMax       int16
	MacStyle         uint16
	LowestRecPPEM    uint16
	IndexToLocFormat int16
	GlyphDataFormat  int16
}

// ParseHead parses a head table, verifying its magic number.
func ParseHead(data []byte) (*Head, error) {
	r := reader.New(data)
	r.Skip(4) // version
	rev, err := r.Fixed()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "truncated"}
	}
	r.Skip(4) // checkSumAdjustment

	magic, err := r.U32()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "truncated"}
	}
	if magic != headMagic {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "magic number mismatch"}
	}

	h := &Head{FontRevision: rev}
	r.Skip(2) // flags
	h.UnitsPerEm, err = r.U16()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "truncated"}
	}
	h.Created, err = r.LongDateTime()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "truncated"}
	}
	h.Modified, err = r.LongDateTime()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "truncated"}
	}
	h.XMin, _ = r.I16()
	h.YMin, _ = r.I16()
	h.XMax, _ = r.I16()
	h.YMax, _ = r.I16()
	h.MacStyle, _ = r.U16()
	h.LowestRecPPEM, _ = r.U16()
	r.Skip(2) // fontDirectionHint
	h.IndexToLocFormat, err = r.I16()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "truncated"}
	}
	h.GlyphDataFormat, _ = r.I16()

	return h, nil
}

// Maxp is the parsed maximum-profile (`maxp`) table. Only the fields
// this module's glyph decoders need are kept; the version-1.0 TrueType
// instruction-interpreter limits (maxStorage, maxFunctionDefs, ...) are
// not exposed since nothing here executes hinting bytecode.
type Maxp struct {
	NumGlyphs        int
	MaxPoints        uint16
	MaxContours      uint16
	MaxCompositeDepth uint16
}

// ParseMaxp parses a maxp table. Version 0.5 (CFF fonts) carries only
// numGlyphs; version 1.0 (TrueType) adds the point/contour/depth limits.
func ParseMaxp(data []byte) (*Maxp, error) {
	r := reader.New(data)
	version, err := r.U32()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "maxp", Reason: "truncated"}
	}
	numGlyphs, err := r.U16()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "maxp", Reason: "truncated"}
	}
	m := &Maxp{NumGlyphs: int(numGlyphs)}
	switch version {
	case 0x00005000:
		// version 0.5: numGlyphs only, nothing further to read.
	case 0x00010000:
		m.MaxPoints, _ = r.U16()
		m.MaxContours, _ = r.U16()
		r.Skip(4) // maxCompositePoints, maxCompositeContours
		r.Skip(2) // maxZones
		r.Skip(2) // maxTwilightPoints
		r.Skip(2) // maxStorage
		r.Skip(2) // maxFunctionDefs
		r.Skip(2) // maxInstructionDefs
		r.Skip(2) // maxStackElements
		r.Skip(2) // maxSizeOfInstructions
		r.Skip(2) // maxComponentElements
		m.MaxCompositeDepth, _ = r.U16()
	default:
		return nil, &ferrors.InvalidTable{Tag: "maxp", Reason: "unknown version"}
	}
	return m, nil
}


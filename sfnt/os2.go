package sfnt

import (
	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

// OS2 is the parsed OS/2 and Windows Metrics table. Version-gated
// fields beyond version 0 are left at their zero value when absent.
type OS2 struct {
	Version          uint16
	UsWeightClass    uint16
	UsWidthClass     uint16
	FsSelection      uint16
	STypoAscender    int16
	STypoDescender   int16
	STypoLineGap     int16
	UsWinAscent      uint16
	UsWinDescent     uint16
	SxHeight         int16 // version 2+
	SCapHeight       int16 // version 2+
}

// ParseOS2 parses an OS/2 table.
func ParseOS2(data []byte) (*OS2, error) {
	if len(data) < 78 {
		return nil, &ferrors.InvalidTable{Tag: "OS/2", Reason: "shorter than version-0 layout"}
	}
	r := reader.New(data)
	o := &OS2{}
	o.Version, _ = r.U16()
	r.Skip(2) // xAvgCharWidth
	o.UsWeightClass, _ = r.U16()
	o.UsWidthClass, _ = r.U16()
	r.Skip(2) // fsType
	r.Skip(8 * 2) // subscript/superscript x/y size/offset
	r.Skip(2 * 2) // yStrikeoutSize, yStrikeoutPosition
	r.Skip(2)     // sFamilyClass
	r.Skip(10)    // panose
	r.Skip(4 * 4) // ulUnicodeRange1-4
	r.Skip(4)     // achVendID
	o.FsSelection, _ = r.U16()
	r.Skip(4) // usFirstCharIndex, usLastCharIndex
	o.STypoAscender, _ = r.I16()
	o.STypoDescender, _ = r.I16()
	o.STypoLineGap, _ = r.I16()
	o.UsWinAscent, _ = r.U16()
	o.UsWinDescent, _ = r.U16()

	if o.Version >= 2 && len(data) >= 96 {
		r2 := reader.New(data)
		r2.Seek(86)
		o.SxHeight, _ = r2.I16()
		o.SCapHeight, _ = r2.I16()
	}
	return o, nil
}

// Post is the parsed PostScript (`post`) table header; glyph name
// tables (format 2.0) are not decoded since nothing here needs
// PostScript glyph names.
type Post struct {
	Version            uint32
	ItalicAngle        float64
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       bool
}

// ParsePost parses a post table's fixed-size header.
func ParsePost(data []byte) (*Post, error) {
	if len(data) < 32 {
		return nil, &ferrors.InvalidTable{Tag: "post", Reason: "shorter than fixed header"}
	}
	r := reader.New(data)
	p := &Post{}
	var err error
	p.Version, err = r.U32()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "post", Reason: "truncated"}
	}
	p.ItalicAngle, _ = r.Fixed()
	p.UnderlinePosition, _ = r.I16()
	p.UnderlineThickness, _ = r.I16()
	fixedPitch, _ := r.U32()
	p.IsFixedPitch = fixedPitch != 0
	return p, nil
}


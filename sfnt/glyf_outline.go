package sfnt

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
)

// Simple glyph point flags (TrueType spec, `glyf` table).
const (
	glyfOnCurve       byte = 0x01
	glyfXShort        byte = 0x02
	glyfYShort        byte = 0x04
	glyfRepeat        byte = 0x08
	glyfXSameOrPos    byte = 0x10
	glyfYSameOrPos    byte = 0x20
	glyfOverlapSimple byte = 0x40
)

// Composite glyph component flags, same bit layout the WOFF2 transform
// and the plain glyf table share.
const (
	compArgsAreWords    uint16 = 0x0001
	compArgsAreXYValues uint16 = 0x0002
	compRoundXYToGrid   uint16 = 0x0004
	compWeHaveScale     uint16 = 0x0008
	compMoreComponents  uint16 = 0x0020
	compWeHaveXYScale   uint16 = 0x0040
	compWeHave2x2       uint16 = 0x0080
	compWeHaveInstr     uint16 = 0x0100
	compUseMyMetrics    uint16 = 0x0200
)

const maxCompositeDepth = 16

// Loca is the parsed glyph-location (`loca`) table: each glyph's byte
// offset into `glyf`.
type Loca struct {
	offsets []uint32
}

// ParseLoca parses a loca table. indexToLocFormat comes from head: 0
// selects the short (16-bit, half-offset) format, 1 the long format.
func ParseLoca(data []byte, numGlyphs int, indexToLocFormat int16) (*Loca, error) {
	entries := numGlyphs + 1
	offsets := make([]uint32, entries)
	if indexToLocFormat == 0 {
		if len(data) < entries*2 {
			return nil, &ferrors.InvalidTable{Tag: "loca", Reason: "short loca table truncated"}
		}
		for i := range offsets {
			offsets[i] = uint32(binary.BigEndian.Uint16(data[i*2:])) * 2
		}
	} else {
		if len(data) < entries*4 {
			return nil, &ferrors.InvalidTable{Tag: "loca", Reason: "long loca table truncated"}
		}
		for i := range offsets {
			offsets[i] = binary.BigEndian.Uint32(data[i*4:])
		}
	}
	return &Loca{offsets: offsets}, nil
}

func (l *Loca) glyphRange(gid GlyphID) (start, end uint32, ok bool) {
	idx := int(gid)
	if idx < 0 || idx+1 >= len(l.offsets) {
		return 0, 0, false
	}
	return l.offsets[idx], l.offsets[idx+1], true
}

// Glyf is the parsed glyph-outline (`glyf`) table, read alongside loca.
type Glyf struct {
	data []byte
	loca *Loca
}

// ParseGlyf pairs a glyf table's raw bytes with its loca index.
func ParseGlyf(data []byte, loca *Loca) *Glyf {
	return &Glyf{data: data, loca: loca}
}

// GlyphOutline decodes glyph gid's outline, resolving composite glyphs
// recursively up to a fixed depth so a font with a component cycle
// fails cleanly instead of recursing forever.
func (g *Glyf) GlyphOutline(gid GlyphID) (*Outline, error) {
	return g.glyphOutline(gid, 0, identityTransform())
}

// componentTransform is a composite glyph component's affine transform:
// xnew = A*x + C*y + Dx, ynew = B*x + D*y + Dy (OpenType `glyf` composite
// component convention).
type componentTransform struct {
	A, B, C, D float32
	Dx, Dy     float32
}

func identityTransform() componentTransform {
	return componentTransform{A: 1, D: 1}
}

func (g *Glyf) glyphOutline(gid GlyphID, depth int, xf componentTransform) (*Outline, error) {
	if depth > maxCompositeDepth {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite recursion limit exceeded"}
	}
	start, end, ok := g.loca.glyphRange(gid)
	if !ok {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyph ID out of range"}
	}
	if end <= start {
		return &Outline{}, nil // empty glyph, e.g. space
	}
	if int(end) > len(g.data) {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyph data out of bounds"}
	}
	data := g.data[start:end]
	if len(data) < 10 {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "glyph header truncated"}
	}

	numberOfContours := int16(binary.BigEndian.Uint16(data))
	xMin := int16(binary.BigEndian.Uint16(data[2:]))
	yMin := int16(binary.BigEndian.Uint16(data[4:]))
	xMax := int16(binary.BigEndian.Uint16(data[6:]))
	yMax := int16(binary.BigEndian.Uint16(data[8:]))

	var out *Outline
	var err error
	if numberOfContours >= 0 {
		out, err = decodeSimpleGlyph(data[10:], int(numberOfContours))
	} else {
		out, err = g.decodeCompositeGlyph(data[10:], depth)
	}
	if err != nil {
		return nil, err
	}
	out.XMin, out.YMin, out.XMax, out.YMax = xMin, yMin, xMax, yMax
	if xf != identityTransform() {
		transformOutline(out, xf)
	}
	return out, nil
}

// transformOutline applies a composite component's affine transform to
// every point of a decoded child outline, in place.
func transformOutline(o *Outline, xf componentTransform) {
	for i := range o.Segments {
		args := &o.Segments[i].Args
		for j := range args {
			x, y := args[j].X, args[j].Y
			args[j].X = xf.A*x + xf.C*y + xf.Dx
			args[j].Y = xf.B*x + xf.D*y + xf.Dy
		}
	}
}

// decodeSimpleGlyph parses a non-composite glyph's contour points and
// converts its on/off-curve quadratic point stream into Path Model
// MoveTo/QuadTo/LineTo/Close commands, synthesizing the implied
// on-curve midpoints between consecutive off-curve points the way
// TrueType's outline definition requires.
func decodeSimpleGlyph(data []byte, numberOfContours int) (*Outline, error) {
	if numberOfContours == 0 {
		return &Outline{}, nil
	}
	if len(data) < numberOfContours*2+2 {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "contour end-point array truncated"}
	}
	endPts := make([]uint16, numberOfContours)
	for i := range endPts {
		endPts[i] = binary.BigEndian.Uint16(data[i*2:])
	}
	numPoints := int(endPts[numberOfContours-1]) + 1

	off := numberOfContours * 2
	instructionLength := int(binary.BigEndian.Uint16(data[off:]))
	off += 2 + instructionLength
	if off > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "instruction stream truncated"}
	}

	flags := make([]byte, 0, numPoints)
	for len(flags) < numPoints {
		if off >= len(data) {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "flags array truncated"}
		}
		f := data[off]
		off++
		flags = append(flags, f)
		if f&glyfRepeat != 0 {
			if off >= len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "flags array truncated"}
			}
			repeat := int(data[off])
			off++
			for i := 0; i < repeat && len(flags) < numPoints; i++ {
				flags = append(flags, f)
			}
		}
	}

	xs := make([]int32, numPoints)
	var x int32
	for i, f := range flags {
		switch {
		case f&glyfXShort != 0:
			if off >= len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "x-coordinate array truncated"}
			}
			d := int32(data[off])
			off++
			if f&glyfXSameOrPos == 0 {
				d = -d
			}
			x += d
		case f&glyfXSameOrPos == 0:
			if off+2 > len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "x-coordinate array truncated"}
			}
			x += int32(int16(binary.BigEndian.Uint16(data[off:])))
			off += 2
		}
		xs[i] = x
	}

	ys := make([]int32, numPoints)
	var y int32
	for i, f := range flags {
		switch {
		case f&glyfYShort != 0:
			if off >= len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "y-coordinate array truncated"}
			}
			d := int32(data[off])
			off++
			if f&glyfYSameOrPos == 0 {
				d = -d
			}
			y += d
		case f&glyfYSameOrPos == 0:
			if off+2 > len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "y-coordinate array truncated"}
			}
			y += int32(int16(binary.BigEndian.Uint16(data[off:])))
			off += 2
		}
		ys[i] = y
	}

	out := &Outline{}
	start := 0
	for _, ep := range endPts {
		end := int(ep)
		emitContour(out, flags[start:end+1], xs[start:end+1], ys[start:end+1])
		start = end + 1
	}
	return out, nil
}

func pt(xs, ys []int32, i int) Point {
	return Point{X: float32(xs[i]), Y: float32(ys[i])}
}

func mid(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// emitContour walks one contour's on/off-curve points and emits
// MoveTo/QuadTo/LineTo/Close, inserting the implied on-curve point
// whenever two off-curve points are adjacent.
func emitContour(out *Outline, flags []byte, xs, ys []int32) {
	n := len(flags)
	if n == 0 {
		return
	}
	onCurve := func(i int) bool { return flags[i%n]&glyfOnCurve != 0 }
	point := func(i int) Point { return pt(xs, ys, i%n) }

	startIdx := 0
	var startPoint Point
	if onCurve(0) {
		startPoint = point(0)
	} else if onCurve(n - 1) {
		startPoint = point(n - 1)
		startIdx = n - 1
	} else {
		startPoint = mid(point(0), point(n-1))
		startIdx = n - 1
	}
	out.moveTo(startPoint)

	i := startIdx + 1
	for count := 0; count < n; count++ {
		p := point(i)
		if onCurve(i) {
			out.lineTo(p)
		} else {
			next := point(i + 1)
			var endPoint Point
			if onCurve(i + 1) {
				endPoint = next
			} else {
				endPoint = mid(p, next)
			}
			out.quadTo(p, endPoint)
			if onCurve(i + 1) {
				i++
				count++
			}
		}
		i++
	}
	out.closePath()
}

func (g *Glyf) decodeCompositeGlyph(data []byte, depth int) (*Outline, error) {
	out := &Outline{}
	off := 0
	for {
		if off+4 > len(data) {
			return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite component header truncated"}
		}
		flags := binary.BigEndian.Uint16(data[off:])
		componentGID := GlyphID(binary.BigEndian.Uint16(data[off+2:]))
		off += 4

		var dx, dy float32
		if flags&compArgsAreWords != 0 {
			if off+4 > len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite args truncated"}
			}
			a1 := int16(binary.BigEndian.Uint16(data[off:]))
			a2 := int16(binary.BigEndian.Uint16(data[off+2:]))
			off += 4
			if flags&compArgsAreXYValues != 0 {
				dx, dy = float32(a1), float32(a2)
			}
		} else {
			if off+2 > len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite args truncated"}
			}
			a1 := int16(int8(data[off]))
			a2 := int16(int8(data[off+1]))
			off += 2
			if flags&compArgsAreXYValues != 0 {
				dx, dy = float32(a1), float32(a2)
			}
		}

		xf := componentTransform{A: 1, D: 1, Dx: dx, Dy: dy}
		switch {
		case flags&compWeHave2x2 != 0:
			if off+8 > len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite 2x2 transform truncated"}
			}
			xf.A = f2dot14(data[off:])
			xf.B = f2dot14(data[off+2:])
			xf.C = f2dot14(data[off+4:])
			xf.D = f2dot14(data[off+6:])
			off += 8
		case flags&compWeHaveXYScale != 0:
			if off+4 > len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite xy-scale transform truncated"}
			}
			xf.A = f2dot14(data[off:])
			xf.D = f2dot14(data[off+2:])
			off += 4
		case flags&compWeHaveScale != 0:
			if off+2 > len(data) {
				return nil, &ferrors.InvalidTable{Tag: "glyf", Reason: "composite scale transform truncated"}
			}
			s := f2dot14(data[off:])
			xf.A, xf.D = s, s
			off += 2
		}

		child, err := g.glyphOutline(componentGID, depth+1, xf)
		if err != nil {
			return nil, err
		}
		out.Segments = append(out.Segments, child.Segments...)

		if flags&compMoreComponents == 0 {
			break
		}
	}
	return out, nil
}


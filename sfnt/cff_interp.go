package sfnt

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
)

// Type2 CharString operators (Adobe TN #5177). Only the subset that
// affects outline shape or subroutine control flow is interpreted;
// arithmetic/flow operators (and, or, random, ...) are accepted and
// popped but otherwise ignored, since no CharString in practice needs
// them to produce its outline once `seac`-style accent composition is
// handled via composite glyphs instead.
const (
	t2Hstem      = 1
	t2Vstem      = 3
	t2Vmoveto    = 4
	t2Rlineto    = 5
	t2Hlineto    = 6
	t2Vlineto    = 7
	t2Rrcurveto  = 8
	t2Callsubr   = 10
	t2Return     = 11
	t2Escape     = 12
	t2Endchar    = 14
	t2Hstemhm    = 18
	t2Hintmask   = 19
	t2Cntrmask   = 20
	t2Rmoveto    = 21
	t2Hmoveto    = 22
	t2Vstemhm    = 23
	t2Rcurveline = 24
	t2Rlinecurve = 25
	t2Vvcurveto  = 26
	t2Hhcurveto  = 27
	t2Callgsubr  = 29
	t2Vhcurveto  = 30
	t2Hvcurveto  = 31

	t2Flex   = 12<<8 | 35
	t2Hflex  = 12<<8 | 34
	t2Hflex1 = 12<<8 | 36
	t2Flex1  = 12<<8 | 37
)

// calcSubrBias returns a CharString INDEX's subroutine bias, per the
// Type2 spec's "number of subrs determines the bias" rule.
func calcSubrBias(count int) int {
	switch {
	case count < 1240:
		return 107
	case count < 33900:
		return 1131
	default:
		return 32768
	}
}

const maxCharStringCallDepth = 10

// charStringInterp walks a single glyph's Type2 CharString and emits
// Path Model segments. Grounded on ot/cff_charstring.go's operand
// decoding and subroutine bias/recursion handling, extended from
// "track which subrs are called" to "execute the drawing operators."
type charStringInterp struct {
	globalSubrs [][]byte
	localSubrs  [][]byte
	globalBias  int
	localBias   int

	stack     []float64
	x, y      float64
	nStems    int
	widthDone bool
	open      bool
	depth     int

	outline *Outline
}

func newCharStringInterp(globalSubrs, localSubrs [][]byte) *charStringInterp {
	return &charStringInterp{
		globalSubrs: globalSubrs,
		localSubrs:  localSubrs,
		globalBias:  calcSubrBias(len(globalSubrs)),
		localBias:   calcSubrBias(len(localSubrs)),
		stack:       make([]float64, 0, 48),
		outline:     &Outline{},
	}
}

// Run interprets a glyph's top-level CharString and returns its
// decoded outline.
func (ip *charStringInterp) Run(charstring []byte) (*Outline, error) {
	if err := ip.exec(charstring); err != nil {
		return nil, err
	}
	if ip.open {
		ip.outline.closePath()
	}
	return ip.outline, nil
}

func (ip *charStringInterp) exec(data []byte) error {
	ip.depth++
	defer func() { ip.depth-- }()
	if ip.depth > maxCharStringCallDepth {
		return &ferrors.InvalidTable{Tag: "CFF ", Reason: "CharString subroutine recursion too deep"}
	}

	pos := 0
	for pos < len(data) {
		b := data[pos]

		if b >= 32 || b == 28 {
			val, consumed := decodeCFFCSOperand(data[pos:])
			ip.stack = append(ip.stack, val)
			pos += consumed
			continue
		}

		op := int(b)
		pos++
		if b == t2Escape && pos < len(data) {
			op = t2Escape<<8 | int(data[pos])
			pos++
		}

		switch op {
		case t2Hstem, t2Vstem, t2Hstemhm, t2Vstemhm:
			ip.takeWidthIfOdd()
			ip.nStems += len(ip.stack) / 2
			ip.stack = ip.stack[:0]

		case t2Hintmask, t2Cntrmask:
			if len(ip.stack) > 0 {
				ip.takeWidthIfOdd()
				ip.nStems += len(ip.stack) / 2
				ip.stack = ip.stack[:0]
			}
			maskBytes := (ip.nStems + 7) / 8
			pos += maskBytes

		case t2Rmoveto:
			ip.takeWidthIfArgs(2)
			ip.moveBy(ip.arg(0), ip.arg(1))
			ip.stack = ip.stack[:0]

		case t2Hmoveto:
			ip.takeWidthIfArgs(1)
			ip.moveBy(ip.arg(0), 0)
			ip.stack = ip.stack[:0]

		case t2Vmoveto:
			ip.takeWidthIfArgs(1)
			ip.moveBy(0, ip.arg(0))
			ip.stack = ip.stack[:0]

		case t2Rlineto:
			for i := 0; i+1 < len(ip.stack); i += 2 {
				ip.lineBy(ip.stack[i], ip.stack[i+1])
			}
			ip.stack = ip.stack[:0]

		case t2Hlineto:
			ip.altLines(true)
			ip.stack = ip.stack[:0]

		case t2Vlineto:
			ip.altLines(false)
			ip.stack = ip.stack[:0]

		case t2Rrcurveto:
			for i := 0; i+5 < len(ip.stack); i += 6 {
				ip.curveBy(ip.stack[i], ip.stack[i+1], ip.stack[i+2], ip.stack[i+3], ip.stack[i+4], ip.stack[i+5])
			}
			ip.stack = ip.stack[:0]

		case t2Rcurveline:
			i := 0
			for ; i+5 < len(ip.stack)-2; i += 6 {
				ip.curveBy(ip.stack[i], ip.stack[i+1], ip.stack[i+2], ip.stack[i+3], ip.stack[i+4], ip.stack[i+5])
			}
			if i+1 < len(ip.stack) {
				ip.lineBy(ip.stack[i], ip.stack[i+1])
			}
			ip.stack = ip.stack[:0]

		case t2Rlinecurve:
			i := 0
			for ; i+1 < len(ip.stack)-6; i += 2 {
				ip.lineBy(ip.stack[i], ip.stack[i+1])
			}
			if i+5 < len(ip.stack) {
				ip.curveBy(ip.stack[i], ip.stack[i+1], ip.stack[i+2], ip.stack[i+3], ip.stack[i+4], ip.stack[i+5])
			}
			ip.stack = ip.stack[:0]

		case t2Vvcurveto:
			ip.vvCurves()
			ip.stack = ip.stack[:0]

		case t2Hhcurveto:
			ip.hhCurves()
			ip.stack = ip.stack[:0]

		case t2Vhcurveto:
			ip.altCurves(false)
			ip.stack = ip.stack[:0]

		case t2Hvcurveto:
			ip.altCurves(true)
			ip.stack = ip.stack[:0]

		case t2Flex:
			if len(ip.stack) >= 13 {
				s := ip.stack
				ip.curveBy(s[0], s[1], s[2], s[3], s[4], s[5])
				ip.curveBy(s[6], s[7], s[8], s[9], s[10], s[11])
			}
			ip.stack = ip.stack[:0]

		case t2Hflex:
			if len(ip.stack) >= 7 {
				s := ip.stack
				ip.curveBy(s[0], 0, s[1], s[2], s[3], 0)
				ip.curveBy(s[4], 0, s[5], -s[2], s[6], 0)
			}
			ip.stack = ip.stack[:0]

		case t2Hflex1:
			if len(ip.stack) >= 9 {
				s := ip.stack
				dy := s[1] + s[3] + s[7]
				ip.curveBy(s[0], s[1], s[2], s[3], s[4], 0)
				ip.curveBy(s[5], 0, s[6], s[7], s[8], -dy)
			}
			ip.stack = ip.stack[:0]

		case t2Flex1:
			if len(ip.stack) >= 11 {
				s := ip.stack
				dx := s[0] + s[2] + s[4] + s[6] + s[8]
				dy := s[1] + s[3] + s[5] + s[7] + s[9]
				ip.curveBy(s[0], s[1], s[2], s[3], s[4], s[5])
				if abs64(dx) > abs64(dy) {
					ip.curveBy(s[6], s[7], s[8], s[9], s[10], -dy)
				} else {
					ip.curveBy(s[6], s[7], s[8], s[9], -dx, s[10])
				}
			}
			ip.stack = ip.stack[:0]

		case t2Callsubr:
			if err := ip.call(ip.localSubrs, ip.localBias); err != nil {
				return err
			}

		case t2Callgsubr:
			if err := ip.call(ip.globalSubrs, ip.globalBias); err != nil {
				return err
			}

		case t2Return:
			return nil

		case t2Endchar:
			ip.takeWidthIfArgs(0)
			return nil

		default:
			// Arithmetic/storage/flow operators from the "escape"
			// family: no outline effect, just keep the stack sane.
			ip.stack = ip.stack[:0]
		}
	}
	return nil
}

func (ip *charStringInterp) call(subrs [][]byte, bias int) error {
	if len(ip.stack) == 0 {
		return nil
	}
	idx := int(ip.stack[len(ip.stack)-1]) + bias
	ip.stack = ip.stack[:len(ip.stack)-1]
	if idx < 0 || idx >= len(subrs) {
		return nil // out-of-range subr calls are ignored, matching lenient real-world rasterizers
	}
	return ip.exec(subrs[idx])
}

func (ip *charStringInterp) arg(i int) float64 {
	if i < len(ip.stack) {
		return ip.stack[i]
	}
	return 0
}

// takeWidthIfOdd drops a leading width operand from a stem-hint
// operator's stack when an odd number of operands implies one is
// present (width is never drawn, only consumed).
func (ip *charStringInterp) takeWidthIfOdd() {
	if !ip.widthDone {
		ip.widthDone = true
		if len(ip.stack)%2 == 1 {
			ip.stack = ip.stack[1:]
		}
	}
}

func (ip *charStringInterp) takeWidthIfArgs(want int) {
	if !ip.widthDone {
		ip.widthDone = true
		if len(ip.stack) > want {
			ip.stack = ip.stack[1:]
		}
	}
}

func (ip *charStringInterp) moveBy(dx, dy float64) {
	if ip.open {
		ip.outline.closePath()
	}
	ip.x += dx
	ip.y += dy
	ip.outline.moveTo(Point{float32(ip.x), float32(ip.y)})
	ip.open = true
}

func (ip *charStringInterp) lineBy(dx, dy float64) {
	ip.x += dx
	ip.y += dy
	ip.outline.lineTo(Point{float32(ip.x), float32(ip.y)})
}

func (ip *charStringInterp) curveBy(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
	c1 := Point{float32(ip.x + dx1), float32(ip.y + dy1)}
	c2 := Point{float32(c1.X) + float32(dx2), float32(c1.Y) + float32(dy2)}
	end := Point{c2.X + float32(dx3), c2.Y + float32(dy3)}
	ip.x = float64(end.X)
	ip.y = float64(end.Y)
	ip.outline.cubeTo(c1, c2, end)
}

func (ip *charStringInterp) altLines(startHorizontal bool) {
	horizontal := startHorizontal
	for _, v := range ip.stack {
		if horizontal {
			ip.lineBy(v, 0)
		} else {
			ip.lineBy(0, v)
		}
		horizontal = !horizontal
	}
}

func (ip *charStringInterp) vvCurves() {
	s := ip.stack
	i := 0
	dx1 := 0.0
	if len(s)%4 == 1 {
		dx1 = s[0]
		i = 1
	}
	for ; i+3 < len(s); i += 4 {
		ip.curveBy(dx1, s[i], s[i+1], s[i+2], 0, s[i+3])
		dx1 = 0
	}
}

func (ip *charStringInterp) hhCurves() {
	s := ip.stack
	i := 0
	dy1 := 0.0
	if len(s)%4 == 1 {
		dy1 = s[0]
		i = 1
	}
	for ; i+3 < len(s); i += 4 {
		ip.curveBy(s[i], dy1, s[i+1], s[i+2], s[i+3], 0)
		dy1 = 0
	}
}

// altCurves implements vhcurveto/hvcurveto: curves alternating which
// tangent starts horizontal vs. vertical, with the final curve's
// "other" delta optionally present as a trailing 5th argument.
func (ip *charStringInterp) altCurves(startHorizontal bool) {
	s := ip.stack
	horizontal := startHorizontal
	i := 0
	for i+3 < len(s) {
		last := i+4 >= len(s)-1 // this is the final curve in the group
		var df float64
		if last && i+4 < len(s) {
			df = s[i+4]
		}
		if horizontal {
			ip.curveBy(s[i], 0, s[i+1], s[i+2], df, s[i+3])
		} else {
			ip.curveBy(0, s[i], s[i+1], s[i+2], s[i+3], df)
		}
		horizontal = !horizontal
		i += 4
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func decodeCFFCSOperand(data []byte) (float64, int) {
	if len(data) == 0 {
		return 0, 0
	}
	b0 := data[0]
	switch {
	case b0 >= 32 && b0 <= 246:
		return float64(int(b0) - 139), 1
	case b0 >= 247 && b0 <= 250:
		if len(data) < 2 {
			return 0, 1
		}
		return float64((int(b0)-247)*256 + int(data[1]) + 108), 2
	case b0 >= 251 && b0 <= 254:
		if len(data) < 2 {
			return 0, 1
		}
		return float64(-(int(b0)-251)*256 - int(data[1]) - 108), 2
	case b0 == 28:
		if len(data) < 3 {
			return 0, 1
		}
		return float64(int16(binary.BigEndian.Uint16(data[1:3]))), 3
	case b0 == 255:
		if len(data) < 5 {
			return 0, 1
		}
		// 16.16 fixed point
		return float64(int32(binary.BigEndian.Uint32(data[1:5]))) / 65536.0, 5
	default:
		return 0, 1
	}
}

// GlyphOutline interprets glyph gid's CharString and returns its Path
// Model outline. For CID-keyed fonts, the glyph's local subrs come from
// its FDArray entry (selected via FDSelect) rather than the top-level
// Private DICT.
func (c *CFF) GlyphOutline(gid GlyphID) (*Outline, error) {
	idx := int(gid)
	if idx < 0 || idx >= len(c.CharStrings) {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "glyph ID out of range"}
	}
	local := c.LocalSubrs
	if c.IsCID && c.FDSelect != nil && idx < len(c.FDSelect) {
		fd := int(c.FDSelect[idx])
		if fd >= 0 && fd < len(c.FDArray) {
			local = c.FDArray[fd].LocalSubrs
		}
	}
	interp := newCharStringInterp(c.GlobalSubrs, local)
	return interp.Run(c.CharStrings[idx])
}


package sfnt

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
)

// CFF DICT operators, single-byte and two-byte (prefix 12). See Adobe
// TN #5176, the Compact Font Format specification.
const (
	dictVersion     = 0
	dictFontBBox    = 5
	dictCharset     = 15
	dictEncoding    = 16
	dictCharStrings = 17
	dictPrivate     = 18

	dictBlueValues    = 6
	dictStdHW         = 10
	dictStdVW         = 11
	dictSubrs         = 19
	dictDefaultWidthX = 20
	dictNominalWidthX = 21

	dictROS      = 12<<8 | 30
	dictFDArray  = 12<<8 | 36
	dictFDSelect = 12<<8 | 37
)

// CFF is a parsed Compact Font Format table: the structural pieces
// (INDEXes, Top/Private DICTs, charset) needed to locate and interpret
// each glyph's Type2 CharString.
type CFF struct {
	CharStrings [][]byte
	GlobalSubrs [][]byte
	LocalSubrs  [][]byte
	Charset     []GlyphID // glyph ID -> SID, .notdef implicit at index 0

	IsCID    bool
	FDArray  []cffFontDict
	FDSelect []byte // glyph ID -> FD index, expanded to one byte per glyph regardless of source format
}

type cffTopDict struct {
	fontBBox    [4]int
	charStrings int
	private     [2]int // size, offset
	charset     int
	isCID       bool
	fdArray     int
	fdSelect    int
}

type cffFontDict struct {
	private    [2]int
	LocalSubrs [][]byte
}

type cffPrivateDict struct {
	subrs         int
	defaultWidthX int
	nominalWidthX int
}

// ParseCFF parses a CFF table from a font's `CFF ` table data.
func ParseCFF(data []byte) (*CFF, error) {
	if len(data) < 4 {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "shorter than fixed header"}
	}
	major, hdrSize := data[0], data[2]
	if major != 1 {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "unsupported major version"}
	}

	offset := int(hdrSize)

	_, consumed, err := parseCFFIndex(data[offset:]) // Name INDEX, unused
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "Name INDEX: " + err.Error()}
	}
	offset += consumed

	topDicts, consumed, err := parseCFFIndex(data[offset:])
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "Top DICT INDEX: " + err.Error()}
	}
	if len(topDicts) == 0 {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "no Top DICT"}
	}
	top := parseCFFTopDict(topDicts[0])
	offset += consumed

	_, consumed, err = parseCFFIndex(data[offset:]) // String INDEX, unused (no name lookups here)
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "String INDEX: " + err.Error()}
	}
	offset += consumed

	cff := &CFF{IsCID: top.isCID}

	cff.GlobalSubrs, _, err = parseCFFIndex(data[offset:])
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "Global Subrs INDEX: " + err.Error()}
	}

	if top.charStrings <= 0 || top.charStrings >= len(data) {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "missing CharStrings INDEX"}
	}
	cff.CharStrings, _, err = parseCFFIndex(data[top.charStrings:])
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "CFF ", Reason: "CharStrings INDEX: " + err.Error()}
	}

	cff.LocalSubrs = parseLocalSubrs(data, top.private)

	if top.charset > 2 {
		cff.Charset, err = parseCFFCharset(data, top.charset, len(cff.CharStrings))
		if err != nil {
			cff.Charset = identityCharset(len(cff.CharStrings))
		}
	} else {
		cff.Charset = identityCharset(len(cff.CharStrings))
	}

	if top.isCID && top.fdArray > 0 {
		fdDicts, _, err := parseCFFIndex(data[top.fdArray:])
		if err == nil {
			cff.FDArray = make([]cffFontDict, len(fdDicts))
			for i, fd := range fdDicts {
				sub := parseCFFTopDict(fd)
				cff.FDArray[i] = cffFontDict{
					private:    sub.private,
					LocalSubrs: parseLocalSubrs(data, sub.private),
				}
			}
		}
		if top.fdSelect > 0 && top.fdSelect < len(data) {
			cff.FDSelect = parseCFFFDSelect(data, top.fdSelect, len(cff.CharStrings))
		}
	}

	return cff, nil
}

// NumGlyphs reports how many CharStrings the font carries.
func (c *CFF) NumGlyphs() int { return len(c.CharStrings) }

func identityCharset(n int) []GlyphID {
	cs := make([]GlyphID, n)
	for i := range cs {
		cs[i] = GlyphID(i)
	}
	return cs
}

func parseCFFIndex(data []byte) ([][]byte, int, error) {
	if len(data) < 2 {
		return nil, 0, errShortIndex
	}
	count := int(binary.BigEndian.Uint16(data[0:2]))
	if count == 0 {
		return nil, 2, nil
	}
	if len(data) < 3 {
		return nil, 0, errShortIndex
	}
	offSize := int(data[2])
	if offSize < 1 || offSize > 4 {
		return nil, 0, errBadOffSize
	}
	headerSize := 3 + (count+1)*offSize
	if len(data) < headerSize {
		return nil, 0, errShortIndex
	}

	offsets := make([]int, count+1)
	for i := range offsets {
		offsets[i] = readCFFOffset(data[3+i*offSize:], offSize)
	}

	dataStart := headerSize
	dataEnd := dataStart + offsets[count] - 1
	if dataEnd > len(data) {
		return nil, 0, errShortIndex
	}

	items := make([][]byte, count)
	for i := range items {
		start := dataStart + offsets[i] - 1
		end := dataStart + offsets[i+1] - 1
		if start < 0 || end > len(data) || start > end {
			return nil, 0, errBadItemBounds
		}
		items[i] = data[start:end]
	}
	return items, dataEnd, nil
}

func readCFFOffset(b []byte, size int) int {
	switch size {
	case 1:
		return int(b[0])
	case 2:
		return int(binary.BigEndian.Uint16(b))
	case 3:
		return int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	case 4:
		return int(binary.BigEndian.Uint32(b))
	}
	return 0
}

func parseCFFTopDict(data []byte) cffTopDict {
	var dict cffTopDict
	operands := make([]int, 0, 16)
	pos := 0
	for pos < len(data) {
		b := data[pos]
		if b >= 32 && b <= 254 || b == 28 || b == 29 || b == 30 {
			val, consumed := decodeCFFDictOperand(data[pos:])
			operands = append(operands, val)
			pos += consumed
			continue
		}
		op := int(b)
		pos++
		if b == 12 && pos < len(data) {
			op = 12<<8 | int(data[pos])
			pos++
		}
		switch op {
		case dictFontBBox:
			if len(operands) >= 4 {
				copy(dict.fontBBox[:], operands[len(operands)-4:])
			}
		case dictCharset:
			if len(operands) > 0 {
				dict.charset = operands[len(operands)-1]
			}
		case dictCharStrings:
			if len(operands) > 0 {
				dict.charStrings = operands[len(operands)-1]
			}
		case dictPrivate:
			if len(operands) >= 2 {
				dict.private[0] = operands[len(operands)-2]
				dict.private[1] = operands[len(operands)-1]
			}
		case dictROS:
			dict.isCID = true
		case dictFDArray:
			if len(operands) > 0 {
				dict.fdArray = operands[len(operands)-1]
			}
		case dictFDSelect:
			if len(operands) > 0 {
				dict.fdSelect = operands[len(operands)-1]
			}
		}
		operands = operands[:0]
	}
	return dict
}

func parseCFFPrivateDict(data []byte) cffPrivateDict {
	var dict cffPrivateDict
	operands := make([]int, 0, 16)
	pos := 0
	for pos < len(data) {
		b := data[pos]
		if b >= 32 && b <= 254 || b == 28 || b == 29 || b == 30 {
			val, consumed := decodeCFFDictOperand(data[pos:])
			operands = append(operands, val)
			pos += consumed
			continue
		}
		op := int(b)
		pos++
		if b == 12 && pos < len(data) {
			op = 12<<8 | int(data[pos])
			pos++
		}
		switch op {
		case dictSubrs:
			if len(operands) > 0 {
				dict.subrs = operands[len(operands)-1]
			}
		case dictDefaultWidthX:
			if len(operands) > 0 {
				dict.defaultWidthX = operands[len(operands)-1]
			}
		case dictNominalWidthX:
			if len(operands) > 0 {
				dict.nominalWidthX = operands[len(operands)-1]
			}
		}
		operands = operands[:0]
	}
	return dict
}

// parseLocalSubrs reads a Private DICT's local Subrs INDEX, given the
// DICT's (size, offset) pair as stored by parseCFFTopDict. Used both
// for the top-level Private DICT (non-CID fonts) and for each FDArray
// entry's own Private DICT (CID-keyed fonts).
func parseLocalSubrs(data []byte, private [2]int) [][]byte {
	size, off := private[0], private[1]
	if size <= 0 || off <= 0 || off+size > len(data) {
		return nil
	}
	priv := parseCFFPrivateDict(data[off : off+size])
	if priv.subrs <= 0 {
		return nil
	}
	localOff := off + priv.subrs
	if localOff >= len(data) {
		return nil
	}
	subrs, _, err := parseCFFIndex(data[localOff:])
	if err != nil {
		return nil
	}
	return subrs
}

func decodeCFFDictOperand(data []byte) (int, int) {
	if len(data) == 0 {
		return 0, 0
	}
	b0 := data[0]
	switch {
	case b0 >= 32 && b0 <= 246:
		return int(b0) - 139, 1
	case b0 >= 247 && b0 <= 250:
		if len(data) < 2 {
			return 0, 1
		}
		return (int(b0)-247)*256 + int(data[1]) + 108, 2
	case b0 >= 251 && b0 <= 254:
		if len(data) < 2 {
			return 0, 1
		}
		return -(int(b0)-251)*256 - int(data[1]) - 108, 2
	case b0 == 28:
		if len(data) < 3 {
			return 0, 1
		}
		return int(int16(binary.BigEndian.Uint16(data[1:3]))), 3
	case b0 == 29:
		if len(data) < 5 {
			return 0, 1
		}
		return int(int32(binary.BigEndian.Uint32(data[1:5]))), 5
	case b0 == 30:
		pos := 1
		for pos < len(data) {
			nib := data[pos]
			if nib&0x0f == 0x0f || nib>>4 == 0x0f {
				break
			}
			pos++
		}
		return 0, pos + 1
	default:
		return 0, 1
	}
}

func parseCFFCharset(data []byte, offset, numGlyphs int) ([]GlyphID, error) {
	if offset >= len(data) {
		return nil, errBadItemBounds
	}
	format := data[offset]
	charset := make([]GlyphID, numGlyphs)
	pos := offset + 1
	gid := 1
	switch format {
	case 0:
		for gid < numGlyphs && pos+1 < len(data) {
			charset[gid] = GlyphID(binary.BigEndian.Uint16(data[pos:]))
			gid++
			pos += 2
		}
	case 1:
		for gid < numGlyphs && pos+2 < len(data) {
			first := int(binary.BigEndian.Uint16(data[pos:]))
			nLeft := int(data[pos+2])
			for i := 0; i <= nLeft && gid < numGlyphs; i++ {
				charset[gid] = GlyphID(first + i)
				gid++
			}
			pos += 3
		}
	case 2:
		for gid < numGlyphs && pos+3 < len(data) {
			first := int(binary.BigEndian.Uint16(data[pos:]))
			nLeft := int(binary.BigEndian.Uint16(data[pos+2:]))
			for i := 0; i <= nLeft && gid < numGlyphs; i++ {
				charset[gid] = GlyphID(first + i)
				gid++
			}
			pos += 4
		}
	default:
		return nil, errBadItemBounds
	}
	return charset, nil
}

func parseCFFFDSelect(data []byte, offset, numGlyphs int) []byte {
	if offset >= len(data) {
		return nil
	}
	format := data[offset]
	result := make([]byte, numGlyphs)
	switch format {
	case 0:
		if offset+1+numGlyphs > len(data) {
			return nil
		}
		copy(result, data[offset+1:offset+1+numGlyphs])
	case 3:
		if offset+5 > len(data) {
			return nil
		}
		nRanges := int(binary.BigEndian.Uint16(data[offset+1:]))
		pos := offset + 3
		for i := 0; i < nRanges && pos+5 <= len(data); i++ {
			first := int(binary.BigEndian.Uint16(data[pos:]))
			fd := data[pos+2]
			next := int(binary.BigEndian.Uint16(data[pos+3:]))
			for g := first; g < next && g < numGlyphs; g++ {
				result[g] = fd
			}
			pos += 3
		}
	}
	return result
}

// internal sentinel errors for the INDEX/charset readers above; callers
// see these wrapped in an InvalidTable, never directly.
var (
	errShortIndex    = &ferrors.InvalidTable{Tag: "CFF ", Reason: "INDEX truncated"}
	errBadOffSize    = &ferrors.InvalidTable{Tag: "CFF ", Reason: "invalid INDEX offSize"}
	errBadItemBounds = &ferrors.InvalidTable{Tag: "CFF ", Reason: "INDEX item out of bounds"}
)


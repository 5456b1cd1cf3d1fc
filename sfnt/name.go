package sfnt

import (
	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

// NameID is a well-known name table identifier. Only the handful this
// package's callers reasonably need (family/subfamily/full name) are
// given constants; any other ID can still be looked up numerically.
const (
	NameIDFamily    = 1
	NameIDSubfamily = 2
	NameIDFullName  = 4
	NameIDPostScript = 6
)

// Name is the parsed `name` table: a map from name ID to its preferred
// decoded string, picking the platform/encoding pair that needs the
// least guesswork to decode (Windows Unicode BMP over Macintosh Roman).
type Name struct {
	entries map[uint16]string
}

// ParseName parses a name table, formats 0 and 1 (the format 1
// language-tag records are skipped since nothing here does
// locale-sensitive name selection).
func ParseName(data []byte) (*Name, error) {
	if len(data) < 6 {
		return nil, &ferrors.InvalidTable{Tag: "name", Reason: "shorter than fixed header"}
	}
	r := reader.New(data)
	format, _ := r.U16()
	if format > 1 {
		return &Name{entries: map[uint16]string{}}, nil
	}
	count, _ := r.U16()
	storageOffset, _ := r.U16()

	n := &Name{entries: make(map[uint16]string, count)}
	fromWindows := make(map[uint16]bool)
	recOff := 6
	for i := 0; i < int(count); i++ {
		if recOff+12 > len(data) {
			break
		}
		platformID, _ := r.PeekU16(recOff)
		encodingID, _ := r.PeekU16(recOff + 2)
		nameID, _ := r.PeekU16(recOff + 6)
		length, _ := r.PeekU16(recOff + 8)
		offset, _ := r.PeekU16(recOff + 10)
		recOff += 12

		strOff := int(storageOffset) + int(offset)
		strLen := int(length)
		if strOff+strLen > len(data) {
			continue
		}

		var str string
		sr := reader.New(data)
		sr.Seek(strOff)
		if platformID == 3 || platformID == 0 {
			str, _ = sr.UTF16BEString(strLen)
		} else if platformID == 1 && encodingID == 0 {
			str, _ = sr.ASCIIString(strLen)
		}
		if str != "" {
			// Keep the first decodable record for each nameID, except
			// that a Windows-platform record replaces one taken from
			// another platform (records sort by platform ID, so Unicode
			// and Macintosh entries come before Windows ones).
			if _, ok := n.entries[nameID]; !ok || (platformID == 3 && !fromWindows[nameID]) {
				n.entries[nameID] = str
				fromWindows[nameID] = platformID == 3
			}
		}
	}
	return n, nil
}

// Get returns the string for a name ID, if present.
func (n *Name) Get(id uint16) (string, bool) {
	s, ok := n.entries[id]
	return s, ok
}


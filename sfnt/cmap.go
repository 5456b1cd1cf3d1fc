package sfnt

import (
	"encoding/binary"
	"sort"

	"github.com/boxesandglue/fontcore/ferrors"
)

// EncodingKey identifies one cmap encoding record by its platform and
// encoding IDs.
type EncodingKey struct {
	PlatformID, EncodingID uint16
}

// Cmap resolves Unicode codepoints to glyph IDs. A font may carry
// several subtables; ParseCmap keeps all of them keyed by platform/encoding
// pair, selects the best one by a fixed preference order, and keeps a
// format-14 subtable (if present) alongside for variation-sequence
// lookups. Encoding records that point at the same subtable offset are
// parsed once and aliased under each key.
type Cmap struct {
	subtable  cmapSubtable
	subtables map[EncodingKey]cmapSubtable
	format14  *cmapFormat14
}

type cmapSubtable interface {
	Lookup(cp Codepoint) (GlyphID, bool)
	collectMapping(mapping map[rune]GlyphID)
}

// ParseCmap parses a cmap table and picks its best subtable.
func ParseCmap(data []byte) (*Cmap, error) {
	if len(data) < 4 {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "shorter than fixed header"}
	}

	version := binary.BigEndian.Uint16(data[0:])
	if version != 0 {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "unsupported version"}
	}
	numTables := int(binary.BigEndian.Uint16(data[2:]))

	c := &Cmap{subtables: make(map[EncodingKey]cmapSubtable)}
	byOffset := make(map[uint32]cmapSubtable)
	var best cmapSubtable
	bestPriority := -1

	recOff := 4
	for i := 0; i < numTables; i++ {
		if recOff+8 > len(data) {
			break
		}
		platformID := binary.BigEndian.Uint16(data[recOff:])
		encodingID := binary.BigEndian.Uint16(data[recOff+2:])
		offset := binary.BigEndian.Uint32(data[recOff+4:])
		recOff += 8

		if platformID == 0 && encodingID == 5 {
			if f14, err := parseCmapFormat14(data, int(offset)); err == nil {
				c.format14 = f14
			}
			continue
		}

		st, seen := byOffset[offset]
		if !seen {
			parsed, err := parseCmapSubtable(data, int(offset))
			if err != nil {
				continue
			}
			st = parsed
			byOffset[offset] = st
		}
		if st == nil {
			continue
		}
		c.subtables[EncodingKey{platformID, encodingID}] = st
		if priority := subtablePriority(platformID, encodingID); priority > bestPriority {
			best = st
			bestPriority = priority
		}
	}

	if best == nil {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "no usable subtable"}
	}
	c.subtable = best
	return c, nil
}

// subtablePriority ranks a platform/encoding pair by the fixed
// preference order: Windows full-Unicode, Unicode full, Windows BMP,
// Unicode BMP, Unicode 0-6, Macintosh Roman last. Unlisted pairs rank
// below all of these but remain usable when nothing better exists.
func subtablePriority(platformID, encodingID uint16) int {
	switch {
	case platformID == 3 && encodingID == 10:
		return 60
	case platformID == 0 && encodingID == 4:
		return 50
	case platformID == 3 && encodingID == 1:
		return 40
	case platformID == 0 && encodingID == 3:
		return 30
	case platformID == 0 && encodingID == 6:
		return 20
	case platformID == 1 && encodingID == 0:
		return 10
	default:
		return 0
	}
}

func parseCmapSubtable(data []byte, offset int) (cmapSubtable, error) {
	if offset < 0 || offset+2 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "subtable offset out of range"}
	}
	switch binary.BigEndian.Uint16(data[offset:]) {
	case 0:
		return parseCmapFormat0(data, offset)
	case 4:
		return parseCmapFormat4(data, offset)
	case 6:
		return parseCmapFormat6(data, offset)
	case 12:
		return parseCmapFormat12(data, offset)
	case 13:
		return parseCmapFormat13(data, offset)
	default:
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "unsupported subtable format"}
	}
}

// Lookup resolves a codepoint via the font's primary cmap subtable.
func (c *Cmap) Lookup(cp Codepoint) (GlyphID, bool) {
	return c.subtable.Lookup(cp)
}

// LookupIn resolves a codepoint via the subtable of a specific
// platform/encoding pair, if the font carries one.
func (c *Cmap) LookupIn(key EncodingKey, cp Codepoint) (GlyphID, bool) {
	st, ok := c.subtables[key]
	if !ok {
		return 0, false
	}
	return st.Lookup(cp)
}

// EncodingKeys lists the platform/encoding pairs with a parsed
// subtable (format 14 is tracked separately and not listed).
func (c *Cmap) EncodingKeys() []EncodingKey {
	keys := make([]EncodingKey, 0, len(c.subtables))
	for k := range c.subtables {
		keys = append(keys, k)
	}
	return keys
}

// LookupVariation resolves a (base codepoint, variation selector) pair.
// A format-14 subtable's variation selector records are parsed when
// present, but neither its default-UVS nor its non-default-UVS table is
// read: this always reports "not found", and callers fall back to
// Lookup themselves. See DESIGN.md's Open Question decisions.
func (c *Cmap) LookupVariation(cp, vs Codepoint) (GlyphID, bool) {
	return 0, false
}

// CollectMapping returns every codepoint-to-glyph pair the primary
// subtable covers.
func (c *Cmap) CollectMapping() map[rune]GlyphID {
	m := make(map[rune]GlyphID)
	if c.subtable != nil {
		c.subtable.collectMapping(m)
	}
	return m
}

// --- Format 0: byte encoding table ---

type cmapFormat0 struct {
	glyphIDs [256]byte
}

func parseCmapFormat0(data []byte, offset int) (*cmapFormat0, error) {
	if offset+262 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 0 subtable truncated"}
	}
	f := &cmapFormat0{}
	copy(f.glyphIDs[:], data[offset+6:offset+262])
	return f, nil
}

func (f *cmapFormat0) Lookup(cp Codepoint) (GlyphID, bool) {
	if cp >= 256 {
		return 0, false
	}
	gid := f.glyphIDs[cp]
	return GlyphID(gid), gid != 0
}

func (f *cmapFormat0) collectMapping(m map[rune]GlyphID) {
	for i, gid := range f.glyphIDs {
		if gid != 0 {
			m[rune(i)] = GlyphID(gid)
		}
	}
}

// --- Format 4: segment mapping to delta values (BMP) ---

type cmapFormat4 struct {
	data            []byte
	segCount        int
	endCodeOff      int
	startCodeOff    int
	idDeltaOff      int
	idRangeOffOff   int
	glyphIdArrayOff int
	glyphIdArrayLen int
}

func parseCmapFormat4(data []byte, offset int) (*cmapFormat4, error) {
	if offset+14 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 4 header truncated"}
	}
	length := int(binary.BigEndian.Uint16(data[offset+2:]))
	if offset+length > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 4 length out of range"}
	}
	segCountX2 := int(binary.BigEndian.Uint16(data[offset+6:]))

	f := &cmapFormat4{data: data[offset : offset+length], segCount: segCountX2 / 2}
	f.endCodeOff = 14
	f.startCodeOff = f.endCodeOff + segCountX2 + 2
	f.idDeltaOff = f.startCodeOff + segCountX2
	f.idRangeOffOff = f.idDeltaOff + segCountX2
	f.glyphIdArrayOff = f.idRangeOffOff + segCountX2
	if f.glyphIdArrayOff > len(f.data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 4 arrays out of range"}
	}
	f.glyphIdArrayLen = (length - f.glyphIdArrayOff) / 2
	return f, nil
}

func (f *cmapFormat4) Lookup(cp Codepoint) (GlyphID, bool) {
	if cp > 0xFFFF {
		return 0, false
	}
	segIdx := f.searchSegment(uint16(cp))
	if segIdx < 0 {
		return 0, false
	}
	startCode := f.startCodeAt(segIdx)
	if uint16(cp) < startCode {
		return 0, false
	}

	idRangeOffset := f.idRangeOffsetAt(segIdx)
	idDelta := f.idDeltaAt(segIdx)

	var gid uint16
	if idRangeOffset == 0 {
		gid = uint16(int(cp) + int(idDelta))
	} else {
		index := int(idRangeOffset)/2 + int(uint16(cp)-startCode) + segIdx - f.segCount
		if index < 0 || index >= f.glyphIdArrayLen {
			return 0, false
		}
		gid = binary.BigEndian.Uint16(f.data[f.glyphIdArrayOff+index*2:])
		if gid == 0 {
			return 0, false
		}
		gid = uint16(int(gid) + int(idDelta))
	}
	return GlyphID(gid), gid != 0
}

func (f *cmapFormat4) searchSegment(cp uint16) int {
	lo, hi := 0, f.segCount
	for lo < hi {
		mid := (lo + hi) / 2
		if cp > f.endCodeAt(mid) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= f.segCount {
		return -1
	}
	return lo
}

func (f *cmapFormat4) endCodeAt(i int) uint16   { return binary.BigEndian.Uint16(f.data[f.endCodeOff+i*2:]) }
func (f *cmapFormat4) startCodeAt(i int) uint16 { return binary.BigEndian.Uint16(f.data[f.startCodeOff+i*2:]) }
func (f *cmapFormat4) idDeltaAt(i int) int16 {
	return int16(binary.BigEndian.Uint16(f.data[f.idDeltaOff+i*2:]))
}
func (f *cmapFormat4) idRangeOffsetAt(i int) uint16 {
	return binary.BigEndian.Uint16(f.data[f.idRangeOffOff+i*2:])
}

func (f *cmapFormat4) collectMapping(m map[rune]GlyphID) {
	for seg := 0; seg < f.segCount; seg++ {
		start, end := f.startCodeAt(seg), f.endCodeAt(seg)
		if start == 0xFFFF {
			continue
		}
		for cp := start; cp <= end; cp++ {
			if gid, ok := f.Lookup(Codepoint(cp)); ok {
				m[rune(cp)] = gid
			}
			if cp == 0xFFFF {
				break
			}
		}
	}
}

// --- Format 6: trimmed table mapping ---

type cmapFormat6 struct {
	firstCode uint16
	glyphIDs  []uint16
}

func parseCmapFormat6(data []byte, offset int) (*cmapFormat6, error) {
	if offset+10 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 6 header truncated"}
	}
	firstCode := binary.BigEndian.Uint16(data[offset+6:])
	entryCount := int(binary.BigEndian.Uint16(data[offset+8:]))
	if offset+10+entryCount*2 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 6 array truncated"}
	}
	f := &cmapFormat6{firstCode: firstCode, glyphIDs: make([]uint16, entryCount)}
	for i := range f.glyphIDs {
		f.glyphIDs[i] = binary.BigEndian.Uint16(data[offset+10+i*2:])
	}
	return f, nil
}

func (f *cmapFormat6) Lookup(cp Codepoint) (GlyphID, bool) {
	if cp > 0xFFFF {
		return 0, false
	}
	idx := int(cp) - int(f.firstCode)
	if idx < 0 || idx >= len(f.glyphIDs) {
		return 0, false
	}
	gid := f.glyphIDs[idx]
	return GlyphID(gid), gid != 0
}

func (f *cmapFormat6) collectMapping(m map[rune]GlyphID) {
	for i, gid := range f.glyphIDs {
		if gid != 0 {
			m[rune(int(f.firstCode)+i)] = GlyphID(gid)
		}
	}
}

// --- Formats 12/13: segmented coverage, full Unicode ---

type cmapGroup struct {
	startCharCode, endCharCode, startGlyphID uint32
}

func parseCmapGroups(data []byte, offset int) ([]cmapGroup, error) {
	if offset+16 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "group header truncated"}
	}
	length := binary.BigEndian.Uint32(data[offset+4:])
	if uint64(offset)+uint64(length) > uint64(len(data)) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "group table length out of range"}
	}
	numGroups := int(binary.BigEndian.Uint32(data[offset+12:]))
	if offset+16+numGroups*12 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "group array truncated"}
	}
	groups := make([]cmapGroup, numGroups)
	off := offset + 16
	for i := range groups {
		groups[i] = cmapGroup{
			startCharCode: binary.BigEndian.Uint32(data[off:]),
			endCharCode:   binary.BigEndian.Uint32(data[off+4:]),
			startGlyphID:  binary.BigEndian.Uint32(data[off+8:]),
		}
		off += 12
	}
	return groups, nil
}

type cmapFormat12 struct{ groups []cmapGroup }

func parseCmapFormat12(data []byte, offset int) (*cmapFormat12, error) {
	groups, err := parseCmapGroups(data, offset)
	if err != nil {
		return nil, err
	}
	return &cmapFormat12{groups: groups}, nil
}

func (f *cmapFormat12) Lookup(cp Codepoint) (GlyphID, bool) {
	idx := sort.Search(len(f.groups), func(i int) bool { return f.groups[i].endCharCode >= cp })
	if idx >= len(f.groups) {
		return 0, false
	}
	g := f.groups[idx]
	if cp < g.startCharCode || cp > g.endCharCode {
		return 0, false
	}
	gid := g.startGlyphID + (cp - g.startCharCode)
	if gid == 0 || gid > 0xFFFF {
		return 0, false
	}
	return GlyphID(gid), true
}

func (f *cmapFormat12) collectMapping(m map[rune]GlyphID) {
	for _, g := range f.groups {
		for cp := g.startCharCode; cp <= g.endCharCode; cp++ {
			gid := g.startGlyphID + (cp - g.startCharCode)
			if gid != 0 && gid <= 0xFFFF {
				m[rune(cp)] = GlyphID(gid)
			}
		}
	}
}

type cmapFormat13 struct{ groups []cmapGroup }

func parseCmapFormat13(data []byte, offset int) (*cmapFormat13, error) {
	groups, err := parseCmapGroups(data, offset)
	if err != nil {
		return nil, err
	}
	return &cmapFormat13{groups: groups}, nil
}

func (f *cmapFormat13) Lookup(cp Codepoint) (GlyphID, bool) {
	idx := sort.Search(len(f.groups), func(i int) bool { return f.groups[i].endCharCode >= cp })
	if idx >= len(f.groups) {
		return 0, false
	}
	g := f.groups[idx]
	if cp < g.startCharCode || cp > g.endCharCode {
		return 0, false
	}
	if g.startGlyphID == 0 || g.startGlyphID > 0xFFFF {
		return 0, false
	}
	return GlyphID(g.startGlyphID), true
}

func (f *cmapFormat13) collectMapping(m map[rune]GlyphID) {
	for _, g := range f.groups {
		if g.startGlyphID == 0 || g.startGlyphID > 0xFFFF {
			continue
		}
		gid := GlyphID(g.startGlyphID)
		for cp := g.startCharCode; cp <= g.endCharCode; cp++ {
			m[rune(cp)] = gid
		}
	}
}

// --- Format 14: Unicode variation sequences (parsed, never resolved) ---

type cmapFormat14 struct {
	records []variationRecord
}

type variationRecord struct {
	varSelector                        uint32
	defaultUVSOff, nonDefaultUVSOff uint32
}

func parseCmapFormat14(data []byte, offset int) (*cmapFormat14, error) {
	if offset+10 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 14 header truncated"}
	}
	if binary.BigEndian.Uint16(data[offset:]) != 14 {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "not a format 14 subtable"}
	}
	numRecords := int(binary.BigEndian.Uint32(data[offset+6:]))
	if offset+10+numRecords*11 > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "cmap", Reason: "format 14 records truncated"}
	}
	f := &cmapFormat14{records: make([]variationRecord, numRecords)}
	off := offset + 10
	for i := range f.records {
		vs := uint32(data[off])<<16 | uint32(data[off+1])<<8 | uint32(data[off+2])
		f.records[i] = variationRecord{
			varSelector:      vs,
			defaultUVSOff:    binary.BigEndian.Uint32(data[off+3:]),
			nonDefaultUVSOff: binary.BigEndian.Uint32(data[off+7:]),
		}
		off += 11
	}
	return f, nil
}


package sfnt

import (
	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

// TableRecord is one table directory entry as it appeared in the file,
// checksum included.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Font is a parsed sfnt container: the table directory plus the backing
// byte slice each table's data is sliced from. Parsing a Font does not
// validate any individual table's contents — callers decode tables
// lazily via the TableData/Record accessors.
type Font struct {
	data   []byte
	tables map[Tag]TableRecord

	// The directory's binary-search parameters, retained as read.
	// Lookups go through the tables map; these stay available for
	// fidelity checks against the derived values.
	NumTables     uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// NumFonts reports how many fonts a container holds: 1 for a bare
// sfnt/OTF file, or the collection count for a TTC.
func NumFonts(data []byte) (int, error) {
	if len(data) < 12 {
		return 0, &ferrors.InvalidContainer{What: "file shorter than an sfnt header"}
	}
	r := reader.New(data)
	magic, _ := r.U32()
	if magic != sfntVersionTTC {
		return 1, nil
	}
	r.Skip(4) // version
	numFonts, err := r.U32()
	if err != nil {
		return 0, &ferrors.InvalidContainer{What: "truncated TTC header"}
	}
	if err := checkTTCNumFonts(numFonts, len(data)); err != nil {
		return 0, err
	}
	return int(numFonts), nil
}

// checkTTCNumFonts bounds a TTC's declared font count: it must be
// non-zero and its offset array must fit in the bytes after the
// 12-byte collection header.
func checkTTCNumFonts(numFonts uint32, bufLen int) error {
	if numFonts == 0 {
		return &ferrors.InvalidContainer{What: "TTC numFonts must not be zero"}
	}
	if numFonts > uint32(bufLen-12)/4 {
		return &ferrors.InvalidContainer{What: "TTC numFonts larger than the file can hold"}
	}
	return nil
}

// Parse parses a single font from an sfnt container. For a TrueType
// Collection, index selects which member font to parse; for a bare
// sfnt/OTF file index must be 0.
func Parse(data []byte, index int) (*Font, error) {
	if len(data) < 12 {
		return nil, &ferrors.InvalidContainer{What: "file shorter than an sfnt header"}
	}

	r := reader.New(data)
	magic, _ := r.U32()
	if magic == sfntVersionTTC {
		return parseTTCMember(data, index)
	}
	if index != 0 {
		return nil, &ferrors.InvalidContainer{What: "non-zero font index on a non-collection file"}
	}
	return parseOffsetTable(data, 0)
}

func parseTTCMember(data []byte, index int) (*Font, error) {
	r := reader.New(data)
	r.Skip(4) // 'ttcf'
	version, err := r.U32()
	if err != nil {
		return nil, &ferrors.InvalidContainer{What: "truncated TTC header"}
	}
	if version != 0x00010000 && version != 0x00020000 {
		return nil, &ferrors.InvalidContainer{What: "unrecognized TTC version"}
	}
	numFonts, err := r.U32()
	if err != nil {
		return nil, &ferrors.InvalidContainer{What: "truncated TTC header"}
	}
	if err := checkTTCNumFonts(numFonts, len(data)); err != nil {
		return nil, err
	}
	if index < 0 || index >= int(numFonts) {
		return nil, &ferrors.InvalidContainer{What: "TTC font index out of range"}
	}
	if err := r.Skip(index * 4); err != nil {
		return nil, &ferrors.InvalidContainer{What: "truncated TTC directory"}
	}
	offset, err := r.U32()
	if err != nil {
		return nil, &ferrors.InvalidContainer{What: "truncated TTC directory"}
	}
	return parseOffsetTable(data, int(offset))
}

func parseOffsetTable(data []byte, offset int) (*Font, error) {
	if offset < 0 || offset+12 > len(data) {
		return nil, &ferrors.InvalidContainer{What: "offset table out of range"}
	}

	r := reader.New(data)
	if err := r.Seek(offset); err != nil {
		return nil, &ferrors.InvalidContainer{What: "offset table out of range"}
	}

	version, _ := r.U32()
	switch version {
	case sfntVersionTrueType, sfntVersionOTTO, sfntVersionTrue:
	default:
		return nil, &ferrors.InvalidContainer{What: "unrecognized sfnt version"}
	}

	numTables, _ := r.U16()
	if numTables == 0 {
		return nil, &ferrors.InvalidContainer{What: "numTables must not be zero"}
	}

	f := &Font{
		data:      data,
		tables:    make(map[Tag]TableRecord, numTables),
		NumTables: numTables,
	}
	f.SearchRange, _ = r.U16()
	f.EntrySelector, _ = r.U16()
	f.RangeShift, _ = r.U16()

	for i := 0; i < int(numTables); i++ {
		tag, err := r.Tag()
		if err != nil {
			return nil, &ferrors.InvalidContainer{What: "truncated table directory"}
		}
		checksum, _ := r.U32()
		tableOffset, err1 := r.U32()
		tableLength, err2 := r.U32()
		if err1 != nil || err2 != nil {
			return nil, &ferrors.InvalidContainer{What: "truncated table directory"}
		}
		if uint64(tableOffset)+uint64(tableLength) > uint64(len(data)) {
			return nil, &ferrors.InvalidContainer{What: "table record extends past end of file"}
		}
		f.tables[Tag(tag)] = TableRecord{
			Tag:      Tag(tag),
			Checksum: checksum,
			Offset:   tableOffset,
			Length:   tableLength,
		}
	}

	return f, nil
}

// HasTable reports whether the font carries a table with the given tag.
func (f *Font) HasTable(tag Tag) bool {
	_, ok := f.tables[tag]
	return ok
}

// Record returns a table's directory entry as it appeared in the file.
func (f *Font) Record(tag Tag) (TableRecord, bool) {
	rec, ok := f.tables[tag]
	return rec, ok
}

// TableData returns the raw bytes of a table, sliced from the font's
// backing data without copying.
func (f *Font) TableData(tag Tag) ([]byte, error) {
	rec, ok := f.tables[tag]
	if !ok {
		return nil, &ferrors.InvalidContainer{What: "table not found: " + tag.String()}
	}
	end := uint64(rec.Offset) + uint64(rec.Length)
	if end > uint64(len(f.data)) {
		return nil, &ferrors.InvalidTable{Tag: tag.String(), Reason: "table extends past end of file"}
	}
	return f.data[rec.Offset:end], nil
}

// IsCFF reports whether glyph outlines are stored as CFF/CFF2
// CharStrings rather than TrueType glyf contours.
func (f *Font) IsCFF() bool {
	return f.HasTable(TagCFF) || f.HasTable(TagCFF2)
}


// Package woff2 decodes WOFF2-compressed sfnt font containers back into
// plain sfnt bytes, reversing the WOFF2 table directory, Brotli
// compression, and the glyf/loca transform. A transformed hmtx table
// is rejected with an error rather than reconstructed.
package woff2

import (
	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

const signature = 0x774F4632 // 'wOF2'

// knownTableTags is WOFF2's fixed table-tag dictionary: a directory
// entry whose tag index is < 63 names one of these instead of spelling
// the tag out, the same table ordinarily ordered this way across the
// format family.
var knownTableTags = []string{
	"cmap", "head", "hhea", "hmtx",
	"maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca",
	"prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern",
	"LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS",
	"GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL",
	"SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar",
	"fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar",
	"mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat",
	"Gloc", "Feat", "Sill",
}

// header is the decoded 48-byte WOFF2 file header.
type header struct {
	flavor               uint32
	length               uint32
	numTables            uint16
	totalSfntSize        uint32
	totalCompressedSize  uint32
}

// tableEntry is one WOFF2 table directory entry: its tag, declared
// (uncompressed, untransformed) length, the transform applied to it,
// and the transformed length when a transform is present. For glyf and
// loca a transformVersion of 0 means "transformed" (the format's
// default for those tags); for every other tag a non-zero version
// does.
type tableEntry struct {
	tag              string
	origLength       uint32
	transformVersion int
	hasTransform     bool
	transformLength  uint32
	data             []byte // filled in after decompression
}

// streamLength is how many bytes of the decompressed block this table
// occupies: its transformed length when a transform applies (zero for
// transformed loca, which is reconstructed from glyf), its original
// length otherwise.
func (t *tableEntry) streamLength() uint32 {
	if t.hasTransform {
		return t.transformLength
	}
	return t.origLength
}

func parseHeader(r *reader.R) (header, error) {
	var h header
	sig, err := r.U32()
	if err != nil || sig != signature {
		return h, &ferrors.InvalidContainer{What: "not a WOFF2 file (bad signature)"}
	}
	h.flavor, _ = r.U32()
	if h.flavor == 0x74746366 { // 'ttcf'
		return h, &ferrors.InvalidContainer{What: "WOFF2 collections are unsupported"}
	}
	h.length, _ = r.U32()
	h.numTables, _ = r.U16()
	reserved, _ := r.U16()
	h.totalSfntSize, _ = r.U32()
	h.totalCompressedSize, _ = r.U32()
	if err := r.Skip(2 + 2 + 4 + 4 + 4 + 4 + 4); err != nil { // majorVersion..privLength
		return h, &ferrors.InvalidContainer{What: "truncated WOFF2 header"}
	}
	if h.numTables == 0 {
		return h, &ferrors.InvalidContainer{What: "WOFF2 numTables must not be zero"}
	}
	if reserved != 0 {
		return h, &ferrors.InvalidContainer{What: "WOFF2 header reserved field must be zero"}
	}
	return h, nil
}

func parseTableDirectory(r *reader.R, numTables uint16) ([]tableEntry, error) {
	tables := make([]tableEntry, 0, numTables)
	seen := make(map[string]bool, numTables)

	for i := 0; i < int(numTables); i++ {
		flagsByte, err := r.U8()
		if err != nil {
			return nil, &ferrors.InvalidContainer{What: "truncated WOFF2 table directory"}
		}
		tagIndex := int(flagsByte & 0x3F)
		transformVersion := int((flagsByte & 0xC0) >> 6)

		var tag string
		if tagIndex == 63 {
			rawTag, err := r.Tag()
			if err != nil {
				return nil, &ferrors.InvalidContainer{What: "truncated WOFF2 table tag"}
			}
			tag = tagString(rawTag)
		} else if tagIndex < len(knownTableTags) {
			tag = knownTableTags[tagIndex]
		} else {
			return nil, &ferrors.InvalidContainer{What: "WOFF2 table tag index out of range"}
		}

		if seen[tag] {
			return nil, &ferrors.InvalidTable{Tag: tag, Reason: "table defined more than once"}
		}
		seen[tag] = true

		origLength, err := r.UIntBase128()
		if err != nil {
			return nil, err
		}

		isGlyfLoca := tag == "glyf" || tag == "loca"
		hasTransform := isGlyfLoca && transformVersion == 0 ||
			!isGlyfLoca && transformVersion != 0

		var transformLength uint32
		if hasTransform {
			transformLength, err = r.UIntBase128()
			if err != nil {
				return nil, err
			}
			if tag == "loca" && transformLength != 0 {
				return nil, &ferrors.InvalidTable{Tag: tag, Reason: "transformLength must be zero"}
			}
			if tag != "loca" && transformLength == 0 {
				return nil, &ferrors.InvalidTable{Tag: tag, Reason: "transformLength must be set"}
			}
		}

		tables = append(tables, tableEntry{
			tag:              tag,
			origLength:       origLength,
			transformVersion: transformVersion,
			hasTransform:     hasTransform,
			transformLength:  transformLength,
		})
	}
	return tables, nil
}

func tagString(t uint32) string {
	b := [4]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)}
	return string(b[:])
}

func indexOfTag(tables []tableEntry, tag string) (int, bool) {
	for i, t := range tables {
		if t.tag == tag {
			return i, true
		}
	}
	return -1, false
}


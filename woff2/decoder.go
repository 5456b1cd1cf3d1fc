package woff2

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/andybalholm/brotli"

	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

// maxDecompressedSize bounds how much memory a single decode will
// allocate for the Brotli output, guarding against a crafted header
// declaring an enormous uncompressed size.
const maxDecompressedSize = 256 << 20

// Decode converts a WOFF2 file's bytes into a plain sfnt container:
// TrueType or OpenType bytes suitable for sfnt.Parse. It does not
// support WOFF2-wrapped TrueType Collections.
func Decode(data []byte) ([]byte, error) {
	if len(data) < 48 {
		return nil, &ferrors.InvalidContainer{What: "file shorter than a WOFF2 header"}
	}

	r := reader.New(data)
	hdr, err := parseHeader(r)
	if err != nil {
		return nil, err
	}
	if hdr.length != uint32(len(data)) {
		return nil, &ferrors.InvalidContainer{What: "WOFF2 header length disagrees with file size"}
	}

	tables, err := parseTableDirectory(r, hdr.numTables)
	if err != nil {
		return nil, err
	}

	iGlyf, hasGlyf := indexOfTag(tables, "glyf")
	iLoca, hasLoca := indexOfTag(tables, "loca")
	if hasGlyf != hasLoca {
		return nil, &ferrors.InvalidContainer{What: "glyf and loca tables must both be present or both absent"}
	}
	if hasGlyf && tables[iGlyf].transformVersion != tables[iLoca].transformVersion {
		return nil, &ferrors.InvalidContainer{What: "glyf and loca must share the same transform version"}
	}
	for _, t := range tables {
		if t.hasTransform && t.tag != "glyf" && t.tag != "loca" {
			if t.tag == "hmtx" && t.transformVersion == 1 {
				return nil, &ferrors.CompressionFailure{Reason: "transformed hmtx (version 1) reconstruction is not supported"}
			}
			return nil, &ferrors.InvalidTable{Tag: t.tag, Reason: "unknown table transform"}
		}
	}

	var uncompressedSize uint64
	for i := range tables {
		uncompressedSize += uint64(tables[i].streamLength())
	}
	if uncompressedSize > maxDecompressedSize {
		return nil, &ferrors.CompressionFailure{Reason: "declared uncompressed size exceeds the decode limit"}
	}

	compData, err := r.Bytes(int(hdr.totalCompressedSize))
	if err != nil {
		return nil, &ferrors.InvalidContainer{What: "truncated WOFF2 compressed block"}
	}

	decompressed, err := decompressBrotli(compData, int(uncompressedSize))
	if err != nil {
		return nil, err
	}
	if uint64(len(decompressed)) != uncompressedSize {
		return nil, &ferrors.CompressionFailure{Reason: "decompressed size disagrees with the table directory"}
	}

	var offset uint32
	for i := range tables {
		n := tables[i].streamLength()
		if uint32(len(decompressed))-offset < n {
			return nil, &ferrors.InvalidContainer{What: "decompressed table data truncated"}
		}
		tables[i].data = decompressed[offset : offset+n]
		offset += n
	}

	if hasGlyf && tables[iGlyf].hasTransform {
		glyfData, locaData, err := reconstructGlyfLoca(tables[iGlyf].data)
		if err != nil {
			return nil, err
		}
		if uint32(len(locaData)) != tables[iLoca].origLength {
			return nil, &ferrors.InvalidTable{Tag: "loca", Reason: "reconstructed length disagrees with origLength"}
		}
		tables[iGlyf].data = glyfData
		tables[iLoca].data = locaData
	}

	iHead, hasHead := indexOfTag(tables, "head")
	if !hasHead || len(tables[iHead].data) < 18 {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "head table must be present"}
	}
	headCopy := append([]byte(nil), tables[iHead].data...)
	binary.BigEndian.PutUint32(headCopy[8:], 0) // checkSumAdjustment is recomputed below
	tables[iHead].data = headCopy

	if _, hasDSIG := indexOfTag(tables, "DSIG"); hasDSIG {
		return nil, &ferrors.InvalidContainer{What: "DSIG table must be removed from a WOFF2-decoded font"}
	}

	return assembleSfnt(hdr.flavor, tables)
}

func decompressBrotli(compData []byte, expectedSize int) ([]byte, error) {
	br := brotli.NewReader(bytes.NewReader(compData))
	buf := bytes.NewBuffer(make([]byte, 0, expectedSize))
	if _, err := io.Copy(buf, br); err != nil {
		return nil, &ferrors.CompressionFailure{Reason: "brotli decompression failed: " + err.Error()}
	}
	return buf.Bytes(), nil
}

// assembleSfnt writes the reconstructed tables out as a plain sfnt
// container: a standard offset table followed by tables in tag-sorted
// order, checksums computed per table and as a whole-file adjustment.
func assembleSfnt(flavor uint32, tables []tableEntry) ([]byte, error) {
	numTables := uint16(len(tables))

	var searchRange uint16 = 1
	var entrySelector uint16
	for searchRange*2 <= numTables {
		searchRange *= 2
		entrySelector++
	}
	searchRange *= 16
	rangeShift := numTables*16 - searchRange

	tags := make([]string, len(tables))
	byTag := make(map[string]int, len(tables))
	for i, t := range tables {
		tags[i] = t.tag
		byTag[t.tag] = i
	}
	sort.Strings(tags)

	var buf bytes.Buffer
	writeU32 := func(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); buf.Write(b[:]) }
	writeU16 := func(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); buf.Write(b[:]) }

	writeU32(flavor)
	writeU16(numTables)
	writeU16(searchRange)
	writeU16(entrySelector)
	writeU16(rangeShift)

	sfntOffset := uint32(12 + 16*int(numTables))
	padded := make([][]byte, len(tables))
	for _, tag := range tags {
		i := byTag[tag]
		data := tables[i].data
		paddedLen := (len(data) + 3) &^ 3
		padBuf := make([]byte, paddedLen)
		copy(padBuf, data)
		padded[i] = padBuf

		writeU32(tagToUint32(tag))
		writeU32(calcChecksum(data))
		writeU32(sfntOffset)
		writeU32(uint32(len(data)))
		sfntOffset += uint32(paddedLen)
	}

	headOffset := -1
	for _, tag := range tags {
		i := byTag[tag]
		if tag == "head" {
			headOffset = buf.Len() + 8
		}
		buf.Write(padded[i])
	}

	out := buf.Bytes()
	if headOffset < 0 || headOffset+4 > len(out) {
		return nil, &ferrors.InvalidTable{Tag: "head", Reason: "head table missing from assembled font"}
	}
	checksumAdjustment := 0xB1B0AFBA - calcChecksum(out)
	binary.BigEndian.PutUint32(out[headOffset:], checksumAdjustment)
	return out, nil
}

func tagToUint32(tag string) uint32 {
	b := []byte(tag)
	return binary.BigEndian.Uint32(b)
}


package sfnt

import (
	"github.com/boxesandglue/fontcore/ferrors"
	"github.com/boxesandglue/fontcore/reader"
)

// Hhea is the parsed horizontal header (`hhea`) table.
type Hhea struct {
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	NumberOfHMetrics    uint16
}

// ParseHhea parses an hhea table.
func ParseHhea(data []byte) (*Hhea, error) {
	r := reader.New(data)
	r.Skip(4) // version
	h := &Hhea{}
	var err error
	h.Ascender, err = r.I16()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "hhea", Reason: "truncated"}
	}
	h.Descender, _ = r.I16()
	h.LineGap, _ = r.I16()
	h.AdvanceWidthMax, _ = r.U16()
	r.Skip(2 * 11) // minLeftSideBearing..metricDataFormat
	h.NumberOfHMetrics, err = r.U16()
	if err != nil {
		return nil, &ferrors.InvalidTable{Tag: "hhea", Reason: "truncated"}
	}
	return h, nil
}

// LongHorMetric is one entry of the hmtx table's variable-length
// advance-width array.
type LongHorMetric struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

// Hmtx is the parsed horizontal metrics (`hmtx`) table.
type Hmtx struct {
	metrics              []LongHorMetric
	extraLeftSideBearing []int16 // for glyphs beyond numberOfHMetrics
}

// ParseHmtx parses an hmtx table. numberOfHMetrics and numGlyphs come
// from hhea and maxp respectively; hmtx itself carries no counts.
func ParseHmtx(data []byte, numberOfHMetrics, numGlyphs int) (*Hmtx, error) {
	r := reader.New(data)
	h := &Hmtx{metrics: make([]LongHorMetric, 0, numberOfHMetrics)}
	for i := 0; i < numberOfHMetrics; i++ {
		aw, err := r.U16()
		if err != nil {
			return nil, &ferrors.InvalidTable{Tag: "hmtx", Reason: "truncated metrics array"}
		}
		lsb, _ := r.I16()
		h.metrics = append(h.metrics, LongHorMetric{AdvanceWidth: aw, LeftSideBearing: lsb})
	}
	remaining := numGlyphs - numberOfHMetrics
	for i := 0; i < remaining; i++ {
		lsb, err := r.I16()
		if err != nil {
			break // some fonts omit the trailing LSB array for compatibility
		}
		h.extraLeftSideBearing = append(h.extraLeftSideBearing, lsb)
	}
	return h, nil
}

// Advance returns the horizontal advance width for a glyph. Glyph IDs
// beyond numberOfHMetrics repeat the last recorded advance, per the
// hmtx table's monospace-tail convention.
func (h *Hmtx) Advance(gid GlyphID) uint16 {
	if len(h.metrics) == 0 {
		return 0
	}
	idx := int(gid)
	if idx < len(h.metrics) {
		return h.metrics[idx].AdvanceWidth
	}
	return h.metrics[len(h.metrics)-1].AdvanceWidth
}

// LeftSideBearing returns the left side bearing for a glyph.
func (h *Hmtx) LeftSideBearing(gid GlyphID) int16 {
	idx := int(gid)
	if idx < len(h.metrics) {
		return h.metrics[idx].LeftSideBearing
	}
	extra := idx - len(h.metrics)
	if extra >= 0 && extra < len(h.extraLeftSideBearing) {
		return h.extraLeftSideBearing[extra]
	}
	return 0
}


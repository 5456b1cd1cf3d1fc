package sfnt

import (
	"github.com/boxesandglue/fontcore/ferrors"
)

// OutlineProvider decodes a font's glyph outlines regardless of
// whether the underlying container stores them as TrueType glyf
// contours or CFF CharStrings.
type OutlineProvider interface {
	GlyphOutline(gid GlyphID) (*Outline, error)
	NumGlyphs() int
}

// NewOutlineProvider inspects a parsed Font and builds the outline
// provider appropriate to its glyph format, decoding whichever of
// glyf+loca or CFF the container carries.
func NewOutlineProvider(f *Font) (OutlineProvider, error) {
	if f.IsCFF() {
		cffData, err := f.TableData(TagCFF)
		if err != nil {
			return nil, err
		}
		return ParseCFF(cffData)
	}

	headData, err := f.TableData(TagHead)
	if err != nil {
		return nil, err
	}
	head, err := ParseHead(headData)
	if err != nil {
		return nil, err
	}

	maxpData, err := f.TableData(TagMaxp)
	if err != nil {
		return nil, err
	}
	maxp, err := ParseMaxp(maxpData)
	if err != nil {
		return nil, err
	}

	locaData, err := f.TableData(TagLoca)
	if err != nil {
		return nil, err
	}
	loca, err := ParseLoca(locaData, int(maxp.NumGlyphs), head.IndexToLocFormat)
	if err != nil {
		return nil, err
	}

	glyfData, err := f.TableData(TagGlyf)
	if err != nil {
		return nil, err
	}

	return &glyfOutlineProvider{
		glyf:      ParseGlyf(glyfData, loca),
		numGlyphs: int(maxp.NumGlyphs),
	}, nil
}

type glyfOutlineProvider struct {
	glyf      *Glyf
	numGlyphs int
}

func (p *glyfOutlineProvider) GlyphOutline(gid GlyphID) (*Outline, error) {
	return p.glyf.GlyphOutline(gid)
}

func (p *glyfOutlineProvider) NumGlyphs() int { return p.numGlyphs }

// GlyphOutlineByRune is a convenience helper: resolve a rune through a
// font's cmap, then decode its outline via the supplied provider.
func GlyphOutlineByRune(f *Font, cmap *Cmap, provider OutlineProvider, r rune) (*Outline, GlyphID, error) {
	gid, ok := cmap.Lookup(Codepoint(r))
	if !ok {
		return nil, 0, &ferrors.InvalidTable{Tag: "cmap", Reason: "no glyph mapped for rune"}
	}
	outline, err := provider.GlyphOutline(gid)
	if err != nil {
		return nil, 0, err
	}
	return outline, gid, nil
}


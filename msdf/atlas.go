package msdf

import (
	"github.com/boxesandglue/fontcore/sfnt"
)

// AtlasConfig carries the caller-tunable knobs for BuildAtlas.
type AtlasConfig struct {
	// FontSize is required: the pixel size the atlas is rendered at.
	// The glyph-to-pixel scale is FontSize/unitsPerEm.
	FontSize float64
	// Padding is the empty border, in pixels, added around each glyph
	// in the atlas. Default 2.
	Padding int
	// MaxWidth/MaxHeight bound the output texture. Defaults 2048/2048.
	MaxWidth, MaxHeight int
	// Spread is the distance-field radius in pixels. Default 4 for
	// atlas builds, 8 for single-glyph rendering (RenderGlyph).
	Spread float64
}

// withDefaults fills in the zero-valued fields of an AtlasConfig with
// their documented defaults.
func (c AtlasConfig) withDefaults() AtlasConfig {
	if c.Padding == 0 {
		c.Padding = 2
	}
	if c.MaxWidth == 0 {
		c.MaxWidth = 2048
	}
	if c.MaxHeight == 0 {
		c.MaxHeight = 2048
	}
	if c.Spread == 0 {
		c.Spread = 4
	}
	return c
}

// GlyphMetrics locates one glyph's MSDF tile within an Atlas and
// carries the bearing/advance a shaper needs to lay it out, in the
// atlas's pixel scale (fontSize/unitsPerEm).
type GlyphMetrics struct {
	AtlasX, AtlasY int
	Width, Height  int
	BearingX       float64
	BearingY       float64
	Advance        float64
}

// Atlas is the output of BuildAtlas: a packed RGB MSDF texture plus the
// per-glyph placement and metrics map. Absent entries in Glyphs signal
// a glyph that didn't fit.
type Atlas struct {
	Bitmap   []byte // RGB, row pitch = Width*3
	Width    int
	Height   int
	Glyphs   map[sfnt.GlyphID]GlyphMetrics
	FontSize float64
}

// glyphBuild is the per-glyph intermediate state carried from shape
// extraction through packing to final rendering.
type glyphBuild struct {
	gid                sfnt.GlyphID
	shape              Shape
	edges              []Edge
	bearingX, bearingY float64
	advance            float64
	pixelW, pixelH     int // glyph bounding box in pixels, before padding
}

// BuildAtlas decodes each requested glyph's outline, extracts and
// colors its edges, shelf-packs the glyphs into a power-of-two RGB
// texture, and fills every pixel of every placed glyph's tile with its
// MSDF sample.
func BuildAtlas(provider sfnt.OutlineProvider, unitsPerEm uint16, hmtx *sfnt.Hmtx, gids []sfnt.GlyphID, cfg AtlasConfig) (*Atlas, error) {
	cfg = cfg.withDefaults()
	if unitsPerEm == 0 {
		unitsPerEm = 1000
	}
	scale := cfg.FontSize / float64(unitsPerEm)

	builds := make([]*glyphBuild, 0, len(gids))
	rects := make([]Rect, 0, len(gids))

	for _, gid := range gids {
		outline, err := provider.GlyphOutline(gid)
		if err != nil {
			return nil, err
		}

		minX, minY := float64(outline.XMin)*scale, float64(outline.YMin)*scale
		maxX, maxY := float64(outline.XMax)*scale, float64(outline.YMax)*scale
		w := maxX - minX
		h := maxY - minY
		pixelW := int(w) + 1
		pixelH := int(h) + 1
		if pixelW < 1 {
			pixelW = 1
		}
		if pixelH < 1 {
			pixelH = 1
		}

		// Transform glyph design space into this tile's local pixel
		// space: flip y (design space increases upward, atlas rows
		// increase downward) and shift so the glyph's bbox sits at
		// (0, 0) within its tile, padding applied at pack time.
		t := Transform{
			Scale:   scale,
			FlipY:   -1,
			OffsetX: -minX,
			OffsetY: maxY,
		}
		shape := ExtractShape(outline, t)
		ColorShape(&shape)

		var advance float64
		if hmtx != nil {
			advance = float64(hmtx.Advance(gid)) * scale
		}

		b := &glyphBuild{
			gid:      gid,
			shape:    shape,
			edges:    flattenShapeEdges(shape),
			bearingX: minX,
			bearingY: maxY,
			advance:  advance,
			pixelW:   pixelW,
			pixelH:   pixelH,
		}
		builds = append(builds, b)
		rects = append(rects, Rect{
			Width:  pixelW + 2*cfg.Padding,
			Height: pixelH + 2*cfg.Padding,
		})
	}

	placements, usedW, usedH := PackShelves(rects, cfg.MaxWidth, cfg.MaxHeight)
	width := nextPowerOfTwo(usedW)
	height := nextPowerOfTwo(usedH)
	if width > cfg.MaxWidth {
		width = cfg.MaxWidth
	}
	if height > cfg.MaxHeight {
		height = cfg.MaxHeight
	}

	atlas := &Atlas{
		Bitmap:   make([]byte, width*height*3),
		Width:    width,
		Height:   height,
		Glyphs:   make(map[sfnt.GlyphID]GlyphMetrics, len(builds)),
		FontSize: cfg.FontSize,
	}

	for i, b := range builds {
		p := placements[i]
		if !p.Placed {
			continue
		}
		tileX := p.X + cfg.Padding
		tileY := p.Y + cfg.Padding
		renderGlyphInto(atlas, b, tileX, tileY, cfg.Spread)

		atlas.Glyphs[b.gid] = GlyphMetrics{
			AtlasX:   tileX,
			AtlasY:   tileY,
			Width:    b.pixelW,
			Height:   b.pixelH,
			BearingX: b.bearingX,
			BearingY: b.bearingY,
			Advance:  b.advance,
		}
	}

	return atlas, nil
}

func flattenShapeEdges(s Shape) []Edge {
	var edges []Edge
	for _, c := range s.Contours {
		edges = append(edges, c.Edges...)
	}
	return edges
}

// renderGlyphInto samples b's MSDF at every pixel of its tile and
// writes the encoded RGB bytes into atlas.Bitmap.
func renderGlyphInto(atlas *Atlas, b *glyphBuild, tileX, tileY int, spread float64) {
	for y := 0; y < b.pixelH; y++ {
		for x := 0; x < b.pixelW; x++ {
			sample := Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			r, g, bl := sampleShape(&b.shape, b.edges, sample)

			px := tileX + x
			py := tileY + y
			if px < 0 || py < 0 || px >= atlas.Width || py >= atlas.Height {
				continue
			}
			off := (py*atlas.Width + px) * 3
			atlas.Bitmap[off] = encodeChannel(r, spread)
			atlas.Bitmap[off+1] = encodeChannel(g, spread)
			atlas.Bitmap[off+2] = encodeChannel(bl, spread)
		}
	}
}

// RenderGlyph produces a single-glyph MSDF bitmap without atlas
// packing, for callers that want one glyph at a time (e.g. a cache
// keyed by (font, gid, size) built outside this engine). Spread
// defaults to 8 pixels.
func RenderGlyph(outline *sfnt.Outline, unitsPerEm uint16, fontSize float64, spread float64) (bitmap []byte, width, height int) {
	if unitsPerEm == 0 {
		unitsPerEm = 1000
	}
	if spread == 0 {
		spread = 8
	}
	scale := fontSize / float64(unitsPerEm)

	minX, minY := float64(outline.XMin)*scale, float64(outline.YMin)*scale
	maxX, maxY := float64(outline.XMax)*scale, float64(outline.YMax)*scale
	width = int(maxX-minX) + 1
	height = int(maxY-minY) + 1
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	t := Transform{Scale: scale, FlipY: -1, OffsetX: -minX, OffsetY: maxY}
	shape := ExtractShape(outline, t)
	ColorShape(&shape)
	edges := flattenShapeEdges(shape)

	bitmap = make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sample := Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			r, g, b := sampleShape(&shape, edges, sample)
			off := (y*width + x) * 3
			bitmap[off] = encodeChannel(r, spread)
			bitmap[off+1] = encodeChannel(g, spread)
			bitmap[off+2] = encodeChannel(b, spread)
		}
	}
	return bitmap, width, height
}

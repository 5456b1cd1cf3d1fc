package msdf

import (
	"github.com/boxesandglue/fontcore/sfnt"
)

// Transform maps glyph design-unit coordinates into atlas pixel space:
// x' = x*Scale + OffsetX, y' = y*Scale*FlipY + OffsetY. FlipY is ±1;
// font design space has y increasing upward, most atlas/bitmap
// conventions have y increasing downward, so callers typically pass -1.
type Transform struct {
	Scale           float64
	OffsetX, OffsetY float64
	FlipY           float64
}

func (t Transform) apply(p sfnt.Point) Vec2 {
	flip := t.FlipY
	if flip == 0 {
		flip = 1
	}
	return Vec2{
		X: float64(p.X)*t.Scale + t.OffsetX,
		Y: float64(p.Y)*t.Scale*flip + t.OffsetY,
	}
}

// ExtractShape walks a decoded glyph outline's path commands and builds
// the edge-list Shape the rest of this package operates on.
// Degenerate edges (endpoints closer than 1e-6) are
// dropped; an implicit closing line is synthesized for any contour
// whose last point doesn't already coincide with its first.
func ExtractShape(outline *sfnt.Outline, t Transform) Shape {
	var shape Shape
	var cur Contour
	var start, pos Vec2
	haveStart := false

	flushContour := func() {
		if !haveStart {
			return
		}
		if !near(pos, start) {
			if e, ok := makeLine(pos, start); ok {
				cur.Edges = append(cur.Edges, e)
			}
		}
		if len(cur.Edges) > 0 {
			shape.Contours = append(shape.Contours, cur)
		}
		cur = Contour{}
		haveStart = false
	}

	for _, seg := range outline.Segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			flushContour()
			start = t.apply(seg.Args[0])
			pos = start
			haveStart = true
		case sfnt.SegmentOpLineTo:
			p := t.apply(seg.Args[0])
			if e, ok := makeLine(pos, p); ok {
				cur.Edges = append(cur.Edges, e)
			}
			pos = p
		case sfnt.SegmentOpQuadTo:
			ctrl := t.apply(seg.Args[0])
			p := t.apply(seg.Args[1])
			if e, ok := makeQuad(pos, ctrl, p); ok {
				cur.Edges = append(cur.Edges, e)
			}
			pos = p
		case sfnt.SegmentOpCubeTo:
			c1 := t.apply(seg.Args[0])
			c2 := t.apply(seg.Args[1])
			p := t.apply(seg.Args[2])
			if e, ok := makeCubic(pos, c1, c2, p); ok {
				cur.Edges = append(cur.Edges, e)
			}
			pos = p
		case sfnt.SegmentOpClose:
			flushContour()
		}
	}
	flushContour()
	return shape
}

func makeLine(p0, p1 Vec2) (Edge, bool) {
	if near(p0, p1) {
		return Edge{}, false
	}
	return newLineEdge(p0, p1), true
}

func makeQuad(p0, ctrl, p1 Vec2) (Edge, bool) {
	if near(p0, p1) {
		return Edge{}, false
	}
	return newQuadEdge(p0, ctrl, p1), true
}

func makeCubic(p0, c1, c2, p1 Vec2) (Edge, bool) {
	if near(p0, p1) {
		return Edge{}, false
	}
	return newCubicEdge(p0, c1, c2, p1), true
}

package msdf

import (
	"testing"

	"github.com/boxesandglue/fontcore/sfnt"
)

func pt(x, y float32) sfnt.Point { return sfnt.Point{X: x, Y: y} }

func TestExtractShapeTriangle(t *testing.T) {
	outline := &sfnt.Outline{
		Segments: []sfnt.Segment{
			{Op: sfnt.SegmentOpMoveTo, Args: [3]sfnt.Point{pt(0, 0)}},
			{Op: sfnt.SegmentOpLineTo, Args: [3]sfnt.Point{pt(10, 0)}},
			{Op: sfnt.SegmentOpLineTo, Args: [3]sfnt.Point{pt(5, 10)}},
			{Op: sfnt.SegmentOpClose},
		},
	}

	shape := ExtractShape(outline, Transform{Scale: 1, FlipY: 1})
	if len(shape.Contours) != 1 {
		t.Fatalf("got %d contours, want 1", len(shape.Contours))
	}
	c := shape.Contours[0]
	// Two explicit lines plus one synthesized closing line back to the
	// start point.
	if len(c.Edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(c.Edges))
	}
	if !near(c.Edges[2].end(), Vec2{0, 0}) {
		t.Fatalf("closing edge doesn't return to start: %+v", c.Edges[2])
	}
}

func TestExtractShapeQuadAndCubic(t *testing.T) {
	outline := &sfnt.Outline{
		Segments: []sfnt.Segment{
			{Op: sfnt.SegmentOpMoveTo, Args: [3]sfnt.Point{pt(0, 0)}},
			{Op: sfnt.SegmentOpQuadTo, Args: [3]sfnt.Point{pt(5, 10), pt(10, 0)}},
			{Op: sfnt.SegmentOpCubeTo, Args: [3]sfnt.Point{pt(13, 0), pt(13, -10), pt(0, -10)}},
			{Op: sfnt.SegmentOpClose},
		},
	}
	shape := ExtractShape(outline, Transform{Scale: 2, FlipY: -1, OffsetX: 1, OffsetY: 1})
	c := shape.Contours[0]
	if c.Edges[0].Kind != EdgeQuadratic {
		t.Fatalf("edge 0 kind = %v, want quadratic", c.Edges[0].Kind)
	}
	if c.Edges[1].Kind != EdgeCubic {
		t.Fatalf("edge 1 kind = %v, want cubic", c.Edges[1].Kind)
	}
	// scale=2, flipY=-1, offset (1,1): (0,0) -> (1,1)
	if !near(c.Edges[0].start(), Vec2{1, 1}) {
		t.Fatalf("start point not transformed correctly: %+v", c.Edges[0].start())
	}
}

func TestExtractShapeDropsDegenerateEdges(t *testing.T) {
	outline := &sfnt.Outline{
		Segments: []sfnt.Segment{
			{Op: sfnt.SegmentOpMoveTo, Args: [3]sfnt.Point{pt(0, 0)}},
			{Op: sfnt.SegmentOpLineTo, Args: [3]sfnt.Point{pt(0, 0)}},
			{Op: sfnt.SegmentOpLineTo, Args: [3]sfnt.Point{pt(10, 0)}},
			{Op: sfnt.SegmentOpClose},
		},
	}
	shape := ExtractShape(outline, Transform{Scale: 1, FlipY: 1})
	// The degenerate zero-length line is dropped; only the real line
	// and the synthesized close remain.
	if len(shape.Contours[0].Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(shape.Contours[0].Edges))
	}
}

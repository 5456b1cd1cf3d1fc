package msdf

// EdgeKind discriminates the Edge variant. Exhaustive switches over
// Kind are the dispatch mechanism throughout this package, matching
// the format-tag convention the sfnt package uses for its own tagged
// variants.
type EdgeKind int

const (
	EdgeLine EdgeKind = iota
	EdgeQuadratic
	EdgeCubic
)

// Edge is one segment of a contour: a line, quadratic, or cubic Bezier,
// annotated with the color channel it was assigned during coloring and
// its axis-aligned bounding box. Points holds 2, 3, or 4 entries
// depending on Kind.
type Edge struct {
	Kind    EdgeKind
	Points  [4]Vec2
	Color   Channel
	Bounds  Bounds
}

func newLineEdge(p0, p1 Vec2) Edge {
	return Edge{Kind: EdgeLine, Points: [4]Vec2{p0, p1}, Bounds: lineBounds(p0, p1)}
}

func newQuadEdge(p0, p1, p2 Vec2) Edge {
	return Edge{Kind: EdgeQuadratic, Points: [4]Vec2{p0, p1, p2}, Bounds: curveBounds(p0, p1, p2)}
}

func newCubicEdge(p0, p1, p2, p3 Vec2) Edge {
	return Edge{Kind: EdgeCubic, Points: [4]Vec2{p0, p1, p2, p3}, Bounds: curveBounds(p0, p1, p2, p3)}
}

func lineBounds(p0, p1 Vec2) Bounds {
	b := emptyBounds()
	b = b.expand(p0)
	b = b.expand(p1)
	return b
}

func curveBounds(pts ...Vec2) Bounds {
	b := emptyBounds()
	for _, p := range pts {
		b = b.expand(p)
	}
	return b
}

// P0 and P3 (or the equivalent endpoint for lower-order edges) are the
// edge's start and end points, used by contour-level bookkeeping
// (closing, tangent continuity between edges).
func (e Edge) start() Vec2 { return e.Points[0] }

func (e Edge) end() Vec2 {
	switch e.Kind {
	case EdgeLine:
		return e.Points[1]
	case EdgeQuadratic:
		return e.Points[2]
	default:
		return e.Points[3]
	}
}

// startTangent and endTangent are the unit tangent vectors at an edge's
// two endpoints, used by the corner-detection step of edge coloring.
func (e Edge) startTangent() Vec2 {
	switch e.Kind {
	case EdgeLine:
		return e.Points[1].Sub(e.Points[0]).Normalized()
	case EdgeQuadratic:
		d := e.Points[1].Sub(e.Points[0])
		if d.Length() < 1e-9 {
			d = e.Points[2].Sub(e.Points[0])
		}
		return d.Normalized()
	default:
		d := e.Points[1].Sub(e.Points[0])
		if d.Length() < 1e-9 {
			d = e.Points[2].Sub(e.Points[0])
		}
		if d.Length() < 1e-9 {
			d = e.Points[3].Sub(e.Points[0])
		}
		return d.Normalized()
	}
}

func (e Edge) endTangent() Vec2 {
	switch e.Kind {
	case EdgeLine:
		return e.Points[1].Sub(e.Points[0]).Normalized()
	case EdgeQuadratic:
		d := e.Points[2].Sub(e.Points[1])
		if d.Length() < 1e-9 {
			d = e.Points[2].Sub(e.Points[0])
		}
		return d.Normalized()
	default:
		d := e.Points[3].Sub(e.Points[2])
		if d.Length() < 1e-9 {
			d = e.Points[3].Sub(e.Points[1])
		}
		if d.Length() < 1e-9 {
			d = e.Points[3].Sub(e.Points[0])
		}
		return d.Normalized()
	}
}

// Contour is an ordered sequence of edges forming one closed loop of a
// glyph outline.
type Contour struct {
	Edges []Edge
}

func (c *Contour) bounds() Bounds {
	b := emptyBounds()
	for _, e := range c.Edges {
		b.MinX = minf(b.MinX, e.Bounds.MinX)
		b.MinY = minf(b.MinY, e.Bounds.MinY)
		b.MaxX = maxf(b.MaxX, e.Bounds.MaxX)
		b.MaxY = maxf(b.MaxY, e.Bounds.MaxY)
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Shape is the full set of contours extracted from one glyph outline.
type Shape struct {
	Contours []Contour
}

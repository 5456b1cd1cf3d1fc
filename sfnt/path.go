package sfnt

// SegmentOp identifies the kind of a single Path Model command. Naming
// follows golang.org/x/image/font/sfnt's Segment/SegmentOp convention.
type SegmentOp int

const (
	SegmentOpMoveTo SegmentOp = iota
	SegmentOpLineTo
	SegmentOpQuadTo
	SegmentOpCubeTo
	SegmentOpClose
)

// Point is a glyph-space coordinate, in font design units.
type Point struct {
	X, Y float32
}

// Segment is one command of a decoded glyph outline. Args holds 0
// points for Close, 1 for MoveTo/LineTo, 2 for QuadTo, 3 for CubeTo.
type Segment struct {
	Op   SegmentOp
	Args [3]Point
}

// Outline is a glyph's decoded vector outline: a flat sequence of
// MoveTo/LineTo/QuadTo/CubeTo/Close commands, one or more contours
// long. It carries no stroke/fill styling — that belongs to whatever
// renders it (the msdf package, in this module).
type Outline struct {
	Segments []Segment
	XMin, YMin, XMax, YMax int16
}

func (o *Outline) moveTo(p Point) {
	o.Segments = append(o.Segments, Segment{Op: SegmentOpMoveTo, Args: [3]Point{p}})
}

func (o *Outline) lineTo(p Point) {
	o.Segments = append(o.Segments, Segment{Op: SegmentOpLineTo, Args: [3]Point{p}})
}

func (o *Outline) quadTo(ctrl, p Point) {
	o.Segments = append(o.Segments, Segment{Op: SegmentOpQuadTo, Args: [3]Point{ctrl, p}})
}

func (o *Outline) cubeTo(c1, c2, p Point) {
	o.Segments = append(o.Segments, Segment{Op: SegmentOpCubeTo, Args: [3]Point{c1, c2, p}})
}

func (o *Outline) closePath() {
	o.Segments = append(o.Segments, Segment{Op: SegmentOpClose})
}


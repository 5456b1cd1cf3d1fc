package msdf

import (
	"math"
	"testing"
)

func TestLineSignedDistanceMagnitude(t *testing.T) {
	d := lineSignedDistance(Vec2{0, 0}, Vec2{10, 0}, Vec2{5, 3})
	if math.Abs(math.Abs(d)-3) > 1e-9 {
		t.Fatalf("distance magnitude = %v, want 3", d)
	}
}

func TestLineSignedDistanceOppositeSides(t *testing.T) {
	above := lineSignedDistance(Vec2{0, 0}, Vec2{10, 0}, Vec2{5, 3})
	below := lineSignedDistance(Vec2{0, 0}, Vec2{10, 0}, Vec2{5, -3})
	if (above > 0) == (below > 0) {
		t.Fatalf("expected opposite signs, got above=%v below=%v", above, below)
	}
}

func TestLineSignedDistanceClampsToSegment(t *testing.T) {
	// Point beyond the segment's end should measure from the endpoint,
	// not the infinite line.
	d := lineSignedDistance(Vec2{0, 0}, Vec2{10, 0}, Vec2{15, 0})
	if math.Abs(math.Abs(d)-5) > 1e-9 {
		t.Fatalf("clamped distance = %v, want 5", d)
	}
}

func TestQuadSignedDistanceAtControlApex(t *testing.T) {
	// A symmetric quad bowing upward from (0,0) to (10,0) via (5,10):
	// near its midpoint the curve should be noticeably closer than the
	// straight chord.
	d := quadSignedDistance(Vec2{0, 0}, Vec2{5, 10}, Vec2{10, 0}, Vec2{5, 5})
	if math.Abs(d) > 3 {
		t.Fatalf("distance from near-curve point too large: %v", d)
	}
}

func TestIsInsideSquare(t *testing.T) {
	shape := Shape{Contours: []Contour{{Edges: []Edge{
		newLineEdge(Vec2{0, 0}, Vec2{10, 0}),
		newLineEdge(Vec2{10, 0}, Vec2{10, 10}),
		newLineEdge(Vec2{10, 10}, Vec2{0, 10}),
		newLineEdge(Vec2{0, 10}, Vec2{0, 0}),
	}}}}

	if !isInside(&shape, Vec2{5, 5}) {
		t.Fatal("center of square should be inside")
	}
	if isInside(&shape, Vec2{50, 50}) {
		t.Fatal("point far outside square should not be inside")
	}
}

func TestEncodeChannel(t *testing.T) {
	cases := []struct {
		d, spread float64
		want      byte
	}{
		{0, 4, 128},
		{4, 4, 255},
		{-4, 4, 1},
		{100, 4, 255},
		{-100, 4, 0},
	}
	for _, c := range cases {
		got := encodeChannel(c.d, c.spread)
		if got != c.want {
			t.Fatalf("encodeChannel(%v, %v) = %d, want %d", c.d, c.spread, got, c.want)
		}
	}
}

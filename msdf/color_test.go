package msdf

import "testing"

func TestColorContourSingleEdge(t *testing.T) {
	c := Contour{Edges: []Edge{newLineEdge(Vec2{0, 0}, Vec2{10, 0})}}
	ColorContour(&c)
	if c.Edges[0].Color != ChannelR {
		t.Fatalf("single edge got channel %v, want R", c.Edges[0].Color)
	}
}

func TestColorContourSquareCorners(t *testing.T) {
	// A closed square: every corner is a 90 degree turn, well inside
	// the (pi/4, 3pi/4) sharp range, so color must advance at each one.
	c := Contour{Edges: []Edge{
		newLineEdge(Vec2{0, 0}, Vec2{10, 0}),
		newLineEdge(Vec2{10, 0}, Vec2{10, 10}),
		newLineEdge(Vec2{10, 10}, Vec2{0, 10}),
		newLineEdge(Vec2{0, 10}, Vec2{0, 0}),
	}}
	ColorContour(&c)

	if c.Edges[0].Color != ChannelR {
		t.Fatalf("edge 0 = %v, want R", c.Edges[0].Color)
	}
	for i := 1; i < 4; i++ {
		if c.Edges[i].Color == c.Edges[i-1].Color {
			t.Fatalf("edge %d shares color %v with edge %d, expected a sharp-corner advance", i, c.Edges[i].Color, i-1)
		}
	}
	last := len(c.Edges) - 1
	if c.Edges[last].Color == c.Edges[0].Color {
		t.Fatalf("closing edge shares color %v with first edge after reassignment", c.Edges[last].Color)
	}
}

func TestColorShapeColorsEveryContour(t *testing.T) {
	shape := Shape{Contours: []Contour{
		{Edges: []Edge{newLineEdge(Vec2{0, 0}, Vec2{1, 1})}},
		{Edges: []Edge{newLineEdge(Vec2{2, 2}, Vec2{3, 3})}},
	}}
	ColorShape(&shape)
	for i, c := range shape.Contours {
		if c.Edges[0].Color != ChannelR {
			t.Fatalf("contour %d edge 0 = %v, want R", i, c.Edges[0].Color)
		}
	}
}

func TestDifferentChannel(t *testing.T) {
	got := differentChannel(ChannelR, ChannelG)
	if got != ChannelB {
		t.Fatalf("differentChannel(R,G) = %v, want B", got)
	}
}

package msdf

import "math"

const (
	sharpCornerLow  = math.Pi / 4
	sharpCornerHigh = 3 * math.Pi / 4
)

// isSharpCorner reports whether the angle between two tangent vectors
// meeting at a contour joint falls in the sharp-corner range
// (pi/4, 3pi/4).
func isSharpCorner(a, b Vec2) bool {
	cos := clamp(a.Dot(b), -1, 1)
	angle := math.Acos(cos)
	return angle > sharpCornerLow && angle < sharpCornerHigh
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ColorContour assigns each edge in a contour one of the three MSDF
// channels, mutating Edges in place: the channel advances at every
// sharp corner so the two sides of the corner never share one.
func ColorContour(c *Contour) {
	n := len(c.Edges)
	if n == 0 {
		return
	}
	if n == 1 {
		c.Edges[0].Color = ChannelR
		return
	}

	color := ChannelR
	c.Edges[0].Color = color
	for i := 1; i < n; i++ {
		prev := c.Edges[i-1]
		cur := c.Edges[i]
		if isSharpCorner(prev.endTangent(), cur.startTangent()) {
			color = nextChannel(color)
		}
		c.Edges[i].Color = color
	}

	// Closing joint: last edge's end meets first edge's start.
	last := c.Edges[n-1]
	first := c.Edges[0]
	if isSharpCorner(last.endTangent(), first.startTangent()) && last.Color == first.Color {
		c.Edges[n-1].Color = differentChannel(c.Edges[n-2].Color, first.Color)
	}
}

func nextChannel(c Channel) Channel {
	return Channel((int(c) + 1) % 3)
}

// differentChannel returns a channel distinct from both a and b (there
// is always exactly one, since there are only three channels).
func differentChannel(a, b Channel) Channel {
	for _, c := range []Channel{ChannelR, ChannelG, ChannelB} {
		if c != a && c != b {
			return c
		}
	}
	return ChannelR
}

// ColorShape colors every contour of a shape independently.
func ColorShape(s *Shape) {
	for i := range s.Contours {
		ColorContour(&s.Contours[i])
	}
}

package msdf

import "math"

// curveSeeds are the initial Newton-Raphson search points for the
// curve distance solvers, spread evenly across the parameter range.
var curveSeeds = [6]float64{1.0 / 12, 3.0 / 12, 5.0 / 12, 7.0 / 12, 9.0 / 12, 11.0 / 12}

const newtonIterations = 3
const newtonMinDenominator = 1e-10

// signedDistanceToEdge evaluates the signed distance from p to e,
// dispatching on edge kind.
func signedDistanceToEdge(e Edge, p Vec2) float64 {
	switch e.Kind {
	case EdgeLine:
		return lineSignedDistance(e.Points[0], e.Points[1], p)
	case EdgeQuadratic:
		return quadSignedDistance(e.Points[0], e.Points[1], e.Points[2], p)
	default:
		return cubicSignedDistance(e.Points[0], e.Points[1], e.Points[2], e.Points[3], p)
	}
}

// lineSignedDistance projects p onto the segment p0-p1 clamped to
// [0,1]; sign comes from the 2D cross of the segment direction with
// (p - p0).
func lineSignedDistance(p0, p1, p Vec2) float64 {
	dir := p1.Sub(p0)
	length2 := dir.Dot(dir)
	var t float64
	if length2 > 1e-12 {
		t = clamp(p.Sub(p0).Dot(dir)/length2, 0, 1)
	}
	proj := p0.Add(dir.Scale(t))
	dist := p.Sub(proj).Length()
	sign := dir.Cross(p.Sub(p0))
	if sign < 0 {
		return -dist
	}
	return dist
}

func quadBezier(p0, p1, p2 Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func quadBezierDeriv(p0, p1, p2 Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		X: 2*u*(p1.X-p0.X) + 2*t*(p2.X-p1.X),
		Y: 2*u*(p1.Y-p0.Y) + 2*t*(p2.Y-p1.Y),
	}
}

func quadBezierDeriv2(p0, p1, p2 Vec2) Vec2 {
	return Vec2{X: 2 * (p2.X - 2*p1.X + p0.X), Y: 2 * (p2.Y - 2*p1.Y + p0.Y)}
}

// quadSignedDistance finds the closest point on a quadratic Bezier to p
// via seeded Newton-Raphson iteration.
func quadSignedDistance(p0, p1, p2, p Vec2) float64 {
	deriv2 := quadBezierDeriv2(p0, p1, p2)
	best := math.Inf(1)
	var bestTangent, bestOffset Vec2

	consider := func(t float64) {
		b := quadBezier(p0, p1, p2, t)
		offset := b.Sub(p)
		d := offset.Length()
		if d < best {
			best = d
			bestTangent = quadBezierDeriv(p0, p1, p2, t)
			bestOffset = offset
		}
	}

	for _, seed := range curveSeeds {
		t := seed
		for i := 0; i < newtonIterations; i++ {
			b := quadBezier(p0, p1, p2, t)
			deriv := quadBezierDeriv(p0, p1, p2, t)
			offset := b.Sub(p)
			denom := deriv.Dot(deriv) + offset.Dot(deriv2)
			if math.Abs(denom) < newtonMinDenominator {
				break
			}
			f := offset.Dot(deriv) / denom
			t = clamp(t-f, 0, 1)
		}
		consider(t)
	}
	consider(0)
	consider(1)

	sign := bestTangent.Cross(bestOffset)
	if sign > 0 {
		return -best
	}
	return best
}

func cubicBezier(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

func cubicBezierDeriv(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	a := 3 * u * u
	b := 6 * u * t
	c := 3 * t * t
	return Vec2{
		X: a*(p1.X-p0.X) + b*(p2.X-p1.X) + c*(p3.X-p2.X),
		Y: a*(p1.Y-p0.Y) + b*(p2.Y-p1.Y) + c*(p3.Y-p2.Y),
	}
}

func cubicBezierDeriv2(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		X: 6*u*(p2.X-2*p1.X+p0.X) + 6*t*(p3.X-2*p2.X+p1.X),
		Y: 6*u*(p2.Y-2*p1.Y+p0.Y) + 6*t*(p3.Y-2*p2.Y+p1.Y),
	}
}

// cubicSignedDistance is quadSignedDistance's analog for cubic Beziers,
// using the full second-derivative term since it varies with t.
func cubicSignedDistance(p0, p1, p2, p3, p Vec2) float64 {
	best := math.Inf(1)
	var bestTangent, bestOffset Vec2

	consider := func(t float64) {
		b := cubicBezier(p0, p1, p2, p3, t)
		offset := b.Sub(p)
		d := offset.Length()
		if d < best {
			best = d
			bestTangent = cubicBezierDeriv(p0, p1, p2, p3, t)
			bestOffset = offset
		}
	}

	for _, seed := range curveSeeds {
		t := seed
		for i := 0; i < newtonIterations; i++ {
			b := cubicBezier(p0, p1, p2, p3, t)
			deriv := cubicBezierDeriv(p0, p1, p2, p3, t)
			deriv2 := cubicBezierDeriv2(p0, p1, p2, p3, t)
			offset := b.Sub(p)
			denom := deriv.Dot(deriv) + offset.Dot(deriv2)
			if math.Abs(denom) < newtonMinDenominator {
				break
			}
			f := offset.Dot(deriv) / denom
			t = clamp(t-f, 0, 1)
		}
		consider(t)
	}
	consider(0)
	consider(1)

	sign := bestTangent.Cross(bestOffset)
	if sign > 0 {
		return -best
	}
	return best
}

// flattenEdge reduces an edge to a polyline for the ray-casting inside
// test: lines keep their two endpoints, curves are sampled to 8 linear
// segments.
func flattenEdge(e Edge) []Vec2 {
	switch e.Kind {
	case EdgeLine:
		return []Vec2{e.Points[0], e.Points[1]}
	case EdgeQuadratic:
		pts := make([]Vec2, 9)
		for i := 0; i <= 8; i++ {
			pts[i] = quadBezier(e.Points[0], e.Points[1], e.Points[2], float64(i)/8)
		}
		return pts
	default:
		pts := make([]Vec2, 9)
		for i := 0; i <= 8; i++ {
			pts[i] = cubicBezier(e.Points[0], e.Points[1], e.Points[2], e.Points[3], float64(i)/8)
		}
		return pts
	}
}

// isInside runs an even-odd ray-casting parity test: a horizontal ray
// cast to the right of p crosses the shape's flattened boundary an odd
// number of times iff p is inside.
func isInside(shape *Shape, p Vec2) bool {
	crossings := 0
	for _, c := range shape.Contours {
		for _, e := range c.Edges {
			poly := flattenEdge(e)
			for i := 0; i < len(poly)-1; i++ {
				a, b := poly[i], poly[i+1]
				if crossesRay(a, b, p) {
					crossings++
				}
			}
		}
	}
	return crossings%2 == 1
}

// crossesRay reports whether segment a-b crosses the rightward
// horizontal ray from p at p.Y.
func crossesRay(a, b, p Vec2) bool {
	if (a.Y > p.Y) == (b.Y > p.Y) {
		return false
	}
	// x coordinate where the segment crosses y = p.Y
	t := (p.Y - a.Y) / (b.Y - a.Y)
	x := a.X + t*(b.X-a.X)
	return x > p.X
}

// channelDistances holds, per channel, the minimum-magnitude signed
// distance found among that channel's edges at one sample point.
type channelDistances struct {
	r, g, b float64
	hasR, hasG, hasB bool
}

// sampleShape evaluates the three-channel signed distance at p,
// falling back to the full edge set for any channel with no edges of
// its own, so a single-color contour still fills all three channels.
func sampleShape(shape *Shape, allEdges []Edge, p Vec2) (r, g, b float64) {
	var cd channelDistances
	for _, e := range allEdges {
		d := signedDistanceToEdge(e, p)
		switch e.Color {
		case ChannelR:
			if !cd.hasR || math.Abs(d) < math.Abs(cd.r) {
				cd.r, cd.hasR = d, true
			}
		case ChannelG:
			if !cd.hasG || math.Abs(d) < math.Abs(cd.g) {
				cd.g, cd.hasG = d, true
			}
		case ChannelB:
			if !cd.hasB || math.Abs(d) < math.Abs(cd.b) {
				cd.b, cd.hasB = d, true
			}
		}
	}

	fallback := math.Inf(1)
	haveFallback := false
	fallbackNeeded := !cd.hasR || !cd.hasG || !cd.hasB
	if fallbackNeeded {
		for _, e := range allEdges {
			d := signedDistanceToEdge(e, p)
			if !haveFallback || math.Abs(d) < math.Abs(fallback) {
				fallback, haveFallback = d, true
			}
		}
	}
	if !cd.hasR {
		cd.r = fallback
	}
	if !cd.hasG {
		cd.g = fallback
	}
	if !cd.hasB {
		cd.b = fallback
	}

	inside := isInside(shape, p)
	r = signMagnitude(cd.r, inside)
	g = signMagnitude(cd.g, inside)
	b = signMagnitude(cd.b, inside)
	return r, g, b
}

func signMagnitude(d float64, inside bool) float64 {
	mag := math.Abs(d)
	if inside {
		return mag
	}
	return -mag
}

// encodeChannel maps a signed distance (in pixels) to a 0-255 byte
// centered on 128, saturating at the spread radius.
func encodeChannel(d, spread float64) byte {
	v := 128 + (d/spread)*127
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(math.Round(v))
}

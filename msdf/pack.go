package msdf

import "sort"

// Rect is one rectangle submitted to the shelf packer: typically a
// glyph's (width+2*padding, height+2*padding) footprint in the atlas.
type Rect struct {
	Width, Height int
}

// Placement is where the packer put a Rect, or Placed=false if it
// didn't fit within MaxWidth/MaxHeight.
type Placement struct {
	X, Y   int
	Placed bool
}

type shelf struct {
	y, height, usedWidth int
}

// PackShelves runs a shelf-packing heuristic:
// rectangles are placed tallest-first; each goes into the existing
// shelf with the smallest y whose remaining width fits it, or else a
// new shelf is opened at the current total height. Rects whose
// dimensions alone exceed maxWidth/maxHeight are never placed.
//
// The returned slice is indexed by the ORIGINAL rects order, not the
// sorted processing order, so callers can zip it back against whatever
// they used to build rects.
func PackShelves(rects []Rect, maxWidth, maxHeight int) ([]Placement, int, int) {
	order := make([]int, len(rects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return rects[order[i]].Height > rects[order[j]].Height
	})

	placements := make([]Placement, len(rects))
	var shelves []shelf
	usedWidth, usedHeight := 0, 0

	for _, idx := range order {
		r := rects[idx]
		if r.Width > maxWidth || r.Height > maxHeight {
			placements[idx] = Placement{Placed: false}
			continue
		}

		placed := false
		for i := range shelves {
			s := &shelves[i]
			if r.Height <= s.height && s.usedWidth+r.Width <= maxWidth {
				placements[idx] = Placement{X: s.usedWidth, Y: s.y, Placed: true}
				s.usedWidth += r.Width
				placed = true
				break
			}
		}
		if placed {
			if placements[idx].X+r.Width > usedWidth {
				usedWidth = placements[idx].X + r.Width
			}
			continue
		}

		newY := usedHeight
		if newY+r.Height > maxHeight {
			placements[idx] = Placement{Placed: false}
			continue
		}
		shelves = append(shelves, shelf{y: newY, height: r.Height, usedWidth: r.Width})
		placements[idx] = Placement{X: 0, Y: newY, Placed: true}
		usedHeight = newY + r.Height
		if r.Width > usedWidth {
			usedWidth = r.Width
		}
	}

	return placements, usedWidth, usedHeight
}

// nextPowerOfTwo returns the smallest power of two >= v, or 1 if v<=0.
func nextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

package msdf

import "testing"

// Three rects packed into a 20-wide bin should land at (0,0), (10,0),
// (0,20), use height 30, and round up to a 32x32 final atlas size.
func TestPackShelvesPlacements(t *testing.T) {
	rects := []Rect{{10, 20}, {10, 20}, {10, 10}}
	placements, usedW, usedH := PackShelves(rects, 20, 40)

	want := []Placement{
		{X: 0, Y: 0, Placed: true},
		{X: 10, Y: 0, Placed: true},
		{X: 0, Y: 20, Placed: true},
	}
	for i, w := range want {
		got := placements[i]
		if got != w {
			t.Fatalf("placement %d = %+v, want %+v", i, got, w)
		}
	}

	if usedH != 30 {
		t.Fatalf("used height = %d, want 30", usedH)
	}

	w := nextPowerOfTwo(usedW)
	h := nextPowerOfTwo(usedH)
	if w != 32 || h != 32 {
		t.Fatalf("final dims = %dx%d, want 32x32", w, h)
	}
}

func TestPackShelvesRejectsOversize(t *testing.T) {
	rects := []Rect{{100, 10}}
	placements, _, _ := PackShelves(rects, 20, 40)
	if placements[0].Placed {
		t.Fatal("expected oversize rect to be rejected")
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 17: 32, 32: 32, 33: 64}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Fatalf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

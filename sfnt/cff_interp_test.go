package sfnt

import "testing"

// encodeCSInt encodes a small integer using the 32-246 single-byte
// Type2 operand range.
func encodeCSInt(v int) []byte {
	return []byte{byte(v + 139)}
}

func TestCharStringRMovetoLineto(t *testing.T) {
	var cs []byte
	cs = append(cs, encodeCSInt(10)...)
	cs = append(cs, encodeCSInt(20)...)
	cs = append(cs, byte(t2Rmoveto))
	cs = append(cs, encodeCSInt(30)...)
	cs = append(cs, encodeCSInt(0)...)
	cs = append(cs, byte(t2Rlineto))
	cs = append(cs, byte(t2Endchar))

	interp := newCharStringInterp(nil, nil)
	outline, err := interp.Run(cs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outline.Segments) != 3 { // MoveTo, LineTo, Close
		t.Fatalf("expected 3 segments, got %d: %+v", len(outline.Segments), outline.Segments)
	}
	if outline.Segments[0].Op != SegmentOpMoveTo || outline.Segments[0].Args[0] != (Point{10, 20}) {
		t.Fatalf("unexpected moveto: %+v", outline.Segments[0])
	}
	if outline.Segments[1].Op != SegmentOpLineTo || outline.Segments[1].Args[0] != (Point{40, 20}) {
		t.Fatalf("unexpected lineto: %+v", outline.Segments[1])
	}
}

func TestCharStringRrcurveto(t *testing.T) {
	var cs []byte
	cs = append(cs, encodeCSInt(0)...)
	cs = append(cs, encodeCSInt(0)...)
	cs = append(cs, byte(t2Rmoveto))
	for _, v := range []int{10, 0, 10, 10, 0, 10} {
		cs = append(cs, encodeCSInt(v)...)
	}
	cs = append(cs, byte(t2Rrcurveto))
	cs = append(cs, byte(t2Endchar))

	interp := newCharStringInterp(nil, nil)
	outline, err := interp.Run(cs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var sawCube bool
	for _, seg := range outline.Segments {
		if seg.Op == SegmentOpCubeTo {
			sawCube = true
			if seg.Args[2] != (Point{20, 20}) {
				t.Fatalf("unexpected curve endpoint: %+v", seg.Args[2])
			}
		}
	}
	if !sawCube {
		t.Fatal("expected a CubeTo segment")
	}
}

func TestCalcSubrBias(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 107},
		{1239, 107},
		{1240, 1131},
		{33899, 1131},
		{33900, 32768},
	}
	for _, c := range cases {
		if got := calcSubrBias(c.count); got != c.want {
			t.Errorf("calcSubrBias(%d) = %d, want %d", c.count, got, c.want)
		}
	}
}

func TestCharStringCallsubr(t *testing.T) {
	// Local subr 0 at bias 107 is called via index -107.
	subr := append(encodeCSInt(5), append(encodeCSInt(5), byte(t2Rmoveto), byte(t2Return))...)
	localSubrs := [][]byte{subr}

	var cs []byte
	cs = append(cs, encodeCSInt(-107+0)...) // selects subr index 0 once the bias is added back... see below
	cs = append(cs, byte(t2Callsubr))
	cs = append(cs, byte(t2Endchar))

	interp := newCharStringInterp(nil, localSubrs)
	// The encoded operand must equal (subrIndex - bias): 0 - 107 = -107.
	outline, err := interp.Run(cs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outline.Segments) == 0 || outline.Segments[0].Op != SegmentOpMoveTo {
		t.Fatalf("expected subroutine's moveto to execute, got %+v", outline.Segments)
	}
}


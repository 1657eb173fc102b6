package point

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		block, stmt uint32
		pos         Position
	}{
		{0, 0, Start},
		{0, 0, Mid},
		{3, 17, Start},
		{1_000_000, 40_000, Mid}, // exercises the widened 31-bit stmt field
	}
	for _, c := range cases {
		p := Encode(c.block, c.stmt, c.pos)
		block, stmt, pos := Decode(p)
		if block != c.block || stmt != c.stmt || pos != c.pos {
			t.Errorf("Decode(Encode(%d,%d,%v)) = (%d,%d,%v), want (%d,%d,%v)",
				c.block, c.stmt, c.pos, block, stmt, pos, c.block, c.stmt, c.pos)
		}
	}
}

func TestStartAndMidShareCoordinate(t *testing.T) {
	mid := Encode(2, 5, Mid)
	start := mid.Start()
	block, stmt, pos := Decode(start)
	if block != 2 || stmt != 5 || pos != Start {
		t.Errorf("mid.Start() decoded to (%d,%d,%v), want (2,5,Start)", block, stmt, pos)
	}

	startPoint := Encode(2, 5, Start)
	if startPoint.Mid() != mid {
		t.Error("start.Mid() should equal the Mid point of the same statement")
	}
}

func TestDistinctPointsAreDistinct(t *testing.T) {
	a := Encode(0, 0, Start)
	b := Encode(0, 0, Mid)
	c := Encode(0, 1, Start)
	d := Encode(1, 0, Start)
	seen := map[Point]bool{}
	for _, p := range []Point{a, b, c, d} {
		if seen[p] {
			t.Fatalf("point %d collided with an earlier distinct point", p)
		}
		seen[p] = true
	}
}

package hilbert

import "testing"

func coordEqual(a, b Coord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRoundTrip1D(t *testing.T) {
	c := New([]uint{3}) // 8 patches
	for i := uint64(0); i < 8; i++ {
		idx := c.Encode(Coord{i})
		got := c.Decode(idx)
		if !coordEqual(got, Coord{i}) {
			t.Fatalf("1D round trip failed for %d: got %v via index %d", i, got, idx)
		}
	}
}

func TestRoundTrip2D(t *testing.T) {
	c := New([]uint{2, 2}) // 4x4 patches
	seen := make(map[uint64]bool)
	for x := uint64(0); x < 4; x++ {
		for y := uint64(0); y < 4; y++ {
			coord := Coord{x, y}
			idx := c.Encode(coord)
			if seen[idx] {
				t.Fatalf("duplicate Hilbert index %d for %v", idx, coord)
			}
			seen[idx] = true
			got := c.Decode(idx)
			if !coordEqual(got, coord) {
				t.Fatalf("2D round trip failed for %v: got %v via index %d", coord, got, idx)
			}
		}
	}
	if len(seen) != 16 {
		t.Fatalf("expected 16 distinct indices, got %d", len(seen))
	}
}

func TestRoundTrip3D(t *testing.T) {
	c := New([]uint{2, 1, 3}) // mixed per-axis exponents: 4 x 2 x 8
	for x := uint64(0); x < 4; x++ {
		for y := uint64(0); y < 2; y++ {
			for z := uint64(0); z < 8; z++ {
				coord := Coord{x, y, z}
				idx := c.Encode(coord)
				got := c.Decode(idx)
				if !coordEqual(got, coord) {
					t.Fatalf("3D round trip failed for %v: got %v via index %d", coord, got, idx)
				}
			}
		}
	}
}

func TestRankOf(t *testing.T) {
	counts := []int{3, 5, 2} // ranks own [0,3), [3,8), [8,10)
	cases := map[uint64]int{0: 0, 2: 0, 3: 1, 7: 1, 8: 2, 9: 2}
	for idx, want := range cases {
		if got := RankOf(idx, counts); got != want {
			t.Errorf("RankOf(%d) = %d, want %d", idx, got, want)
		}
	}
}

func TestSingleTrivialCurve(t *testing.T) {
	c := New([]uint{0, 0})
	idx := c.Encode(Coord{0, 0})
	if idx != 0 {
		t.Fatalf("expected trivial curve index 0, got %d", idx)
	}
	got := c.Decode(0)
	if !coordEqual(got, Coord{0, 0}) {
		t.Fatalf("expected zero coord, got %v", got)
	}
}

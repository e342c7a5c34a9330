package fieldbc

import (
	"math"
	"testing"

	"github.com/deveworld/picengine/internal/field"
)

func TestParseKindRoundTrip(t *testing.T) {
	cases := map[string]Kind{
		"periodic":      Periodic,
		"silver-muller": SilverMuller,
		"reflective":    Reflecting,
		"buneman":       Buneman,
	}
	for s, want := range cases {
		got, err := ParseKind(s)
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Fatalf("expected error for unknown boundary condition")
	}
}

func TestApplyReflectingTangentialFlipsSign(t *testing.T) {
	f := field.New("Ey", []bool{false}, []int{10}, 2)
	lo, _ := f.InteriorBounds()
	f.Set(3.0, lo[0])
	f.Set(4.0, lo[0]+1)
	ApplyReflecting(f, 0, Min, true)
	if got := f.At(lo[0] - 1); got != -3.0 {
		t.Fatalf("ghost[-1] = %f, want -3.0", got)
	}
	if got := f.At(lo[0] - 2); got != -4.0 {
		t.Fatalf("ghost[-2] = %f, want -4.0", got)
	}
}

func TestApplyReflectingNormalPreservesSign(t *testing.T) {
	f := field.New("Bx", []bool{false}, []int{10}, 2)
	lo, _ := f.InteriorBounds()
	f.Set(5.0, lo[0])
	ApplyReflecting(f, 0, Min, false)
	if got := f.At(lo[0] - 1); got != 5.0 {
		t.Fatalf("ghost[-1] = %f, want 5.0", got)
	}
}

func TestApplyBunemanExtrapolatesBoundaryValue(t *testing.T) {
	f := field.New("Ex", []bool{false}, []int{10}, 2)
	_, hi := f.InteriorBounds()
	f.Set(7.5, hi[0]-1)
	ApplyBuneman(f, 0, Max)
	if got := f.At(hi[0]); got != 7.5 {
		t.Fatalf("ghost at Max side = %f, want 7.5", got)
	}
}

func TestInjectLaserAddsAmplitudeAtBoundary(t *testing.T) {
	f := field.New("Ez", []bool{false, false}, []int{4, 4}, 1)
	src := LaserSource{Profile: func(t float64) float64 { return math.Sin(t) }}
	lo, _ := f.InteriorBounds()
	before := f.At(lo[0], lo[1])
	InjectLaser(f, 0, Min, src, math.Pi/2)
	after := f.At(lo[0], lo[1])
	if math.Abs(after-before-1.0) > 1e-9 {
		t.Fatalf("InjectLaser delta = %f, want 1.0", after-before)
	}
}

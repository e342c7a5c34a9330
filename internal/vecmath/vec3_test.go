package vecmath

import (
	"math"
	"testing"
)

func TestNewVec3(t *testing.T) {
	v := NewVec3(1, 2, 3)
	if v.X() != 1 || v.Y() != 2 || v.Z() != 3 {
		t.Fatalf("unexpected vector: %v", v)
	}
}

func TestGammaRest(t *testing.T) {
	g := Gamma(NewVec3(0, 0, 0), 1)
	if math.Abs(g-1) > 1e-12 {
		t.Fatalf("expected gamma=1 at rest, got %f", g)
	}
}

func TestGammaRelativistic(t *testing.T) {
	// p/mc = 1 along x gives gamma = sqrt(2)
	g := Gamma(NewVec3(1, 0, 0), 1)
	want := math.Sqrt(2)
	if math.Abs(g-want) > 1e-12 {
		t.Fatalf("expected gamma=%f, got %f", want, g)
	}
}

func TestPositionAdd(t *testing.T) {
	p := Position{1, 2}
	q := Position{0.5, -1}
	r := p.Add(q)
	if r[0] != 1.5 || r[1] != 1 {
		t.Fatalf("unexpected sum: %v", r)
	}
	// original untouched
	if p[0] != 1 || p[1] != 2 {
		t.Fatalf("Add mutated receiver: %v", p)
	}
}

func TestPositionClone(t *testing.T) {
	p := Position{1, 2, 3}
	c := p.Clone()
	c[0] = 99
	if p[0] != 1 {
		t.Fatalf("Clone aliased underlying array")
	}
}

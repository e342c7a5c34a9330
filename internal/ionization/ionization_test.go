package ionization

import (
	"math/rand"
	"testing"

	"github.com/deveworld/picengine/internal/particle"
)

func newIon(charge float64) *particle.Container {
	c := particle.New(1)
	c.PushBack([]float64{1.0}, [3]float64{2.0, 0, 0}, 1.0, charge)
	return c
}

func TestApplySkipsFullyIonizedParticle(t *testing.T) {
	ions := newIon(2.0)
	electrons := particle.New(1)
	op := &Operator{
		MaximumChargeState:    2.0,
		IonizedSpeciesInvMass: 1.0,
		Rate:                  func(c *particle.Container, i int) float64 { return 1e6 },
		Rng:                   rand.New(rand.NewSource(1)),
	}
	events := op.Apply(ions, electrons, 1.0)
	if events != 0 {
		t.Fatalf("Apply ionized a fully-ionized particle: events=%d", events)
	}
	if electrons.Size() != 0 {
		t.Fatalf("expected no electrons created, got %d", electrons.Size())
	}
}

func TestApplyIonizesWithHighRate(t *testing.T) {
	ions := newIon(0.0)
	electrons := particle.New(1)
	op := &Operator{
		MaximumChargeState:    3.0,
		IonizedSpeciesInvMass: 1.0,
		Rate:                  func(c *particle.Container, i int) float64 { return 1e6 },
		Rng:                   rand.New(rand.NewSource(1)),
	}
	events := op.Apply(ions, electrons, 1.0)
	if events != 1 {
		t.Fatalf("Apply events = %d, want 1 with a very high ionization rate", events)
	}
	if ions.Charge[0] != 1.0 {
		t.Fatalf("ion charge = %f, want 1 after one ionization event", ions.Charge[0])
	}
	if electrons.Size() != 1 {
		t.Fatalf("expected one electron appended, got %d", electrons.Size())
	}
	if electrons.Charge[0] != -1.0 {
		t.Fatalf("new electron charge = %f, want -1", electrons.Charge[0])
	}
	if electrons.Weight[0] != ions.Weight[0] {
		t.Fatalf("new electron weight = %f, want to match ion weight %f", electrons.Weight[0], ions.Weight[0])
	}
}

func TestApplyNeverIonizesWithZeroRate(t *testing.T) {
	ions := newIon(0.0)
	electrons := particle.New(1)
	op := &Operator{
		MaximumChargeState:    3.0,
		IonizedSpeciesInvMass: 1.0,
		Rate:                  func(c *particle.Container, i int) float64 { return 0 },
		Rng:                   rand.New(rand.NewSource(1)),
	}
	events := op.Apply(ions, electrons, 1.0)
	if events != 0 {
		t.Fatalf("Apply events = %d, want 0 with zero ionization rate", events)
	}
}

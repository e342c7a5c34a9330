package radiation

import (
	"math/rand"
	"testing"

	"github.com/deveworld/picengine/internal/particle"
	"github.com/deveworld/picengine/internal/vecmath"
)

func TestParseModelRoundTrip(t *testing.T) {
	cases := map[string]Model{"none": None, "": None, "ll": LandauLifshitz, "cll": CorrectedLandauLifshitz, "niel": Niel, "mc": MonteCarlo}
	for s, want := range cases {
		got, err := ParseModel(s)
		if err != nil {
			t.Fatalf("ParseModel(%q) error: %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseModel(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseModel("bogus"); err == nil {
		t.Fatalf("ParseModel(bogus) expected error")
	}
}

func TestComputeChiZeroForRestParticle(t *testing.T) {
	p := vecmath.NewVec3(0, 0, 0)
	e := vecmath.NewVec3(1, 0, 0)
	b := vecmath.NewVec3(0, 0, 0)
	chi := ComputeChi(1.0, p, e, b, 1.0)
	if chi != 0 {
		t.Fatalf("ComputeChi for a particle at rest (gamma=1, p=0) = %f, want 0 since beta=0", chi)
	}
}

func TestComputeChiPositiveForUltraRelativisticParticleInField(t *testing.T) {
	p := vecmath.NewVec3(1000, 0, 0)
	e := vecmath.NewVec3(0, 1, 0)
	b := vecmath.NewVec3(0, 0, 0)
	gamma := vecmath.Gamma(p, 1.0)
	chi := ComputeChi(1.0, p, e, b, gamma)
	if chi <= 0 {
		t.Fatalf("ComputeChi = %f, want > 0 for a fast particle transverse to E", chi)
	}
}

func TestApplyContinuousNoOpBelowThreshold(t *testing.T) {
	p := vecmath.NewVec3(1, 0, 0)
	e := vecmath.NewVec3(0, 0, 0)
	b := vecmath.NewVec3(0, 0, 0)
	pNew, radiated := ApplyContinuous(LandauLifshitz, Tables{}, 1.0, 1.0, p, e, b, 0.01)
	if pNew != p || radiated != 0 {
		t.Fatalf("ApplyContinuous below threshold changed momentum: %v, radiated %f", pNew, radiated)
	}
}

func TestApplyContinuousDragsMomentumDownwardAboveThreshold(t *testing.T) {
	p := vecmath.NewVec3(0, 5000, 0)
	e := vecmath.NewVec3(0, 0, 5000)
	b := vecmath.NewVec3(0, 0, 0)
	pNew, radiated := ApplyContinuous(LandauLifshitz, Tables{}, 1.0, 1.0, p, e, b, 1e-3)
	if pNew.Len() >= p.Len() {
		t.Fatalf("ApplyContinuous did not reduce |p|: before %f after %f", p.Len(), pNew.Len())
	}
	if radiated <= 0 {
		t.Fatalf("ApplyContinuous radiated = %f, want > 0", radiated)
	}
}

func TestApplyNielAddsStochasticDeviationFromPureDrag(t *testing.T) {
	p := vecmath.NewVec3(0, 5000, 0)
	e := vecmath.NewVec3(0, 0, 5000)
	b := vecmath.NewVec3(0, 0, 0)
	rng := rand.New(rand.NewSource(1))
	tables := Tables{QuantumCorrection: func(chi float64) float64 { return 1.0 }}
	pNew, radiated := ApplyNiel(tables, 1.0, 1.0, p, e, b, 1e-3, rng)
	if radiated <= 0 {
		t.Fatalf("ApplyNiel radiated = %f, want > 0", radiated)
	}
	if pNew == p {
		t.Fatalf("ApplyNiel left momentum unchanged")
	}
}

func TestMonteCarloEmissionSkipsWhenNoTable(t *testing.T) {
	p := vecmath.NewVec3(0, 5000, 0)
	e := vecmath.NewVec3(0, 0, 5000)
	b := vecmath.NewVec3(0, 0, 0)
	tau := 0.0
	rng := rand.New(rand.NewSource(1))
	photons := particle.New(1)
	emitted := MonteCarloEmission(Tables{}, 1.0, 1.0, p, e, b, 1.0, 1e-3, &tau, rng, photons, []float64{0})
	if emitted {
		t.Fatalf("MonteCarloEmission emitted with no EmissionRate table")
	}
}

func TestMonteCarloEmissionEventuallyEmits(t *testing.T) {
	p := vecmath.NewVec3(0, 5000, 0)
	e := vecmath.NewVec3(0, 0, 5000)
	b := vecmath.NewVec3(0, 0, 0)
	tau := 0.0
	rng := rand.New(rand.NewSource(1))
	photons := particle.New(1)
	tables := Tables{EmissionRate: func(chi, gamma float64) float64 { return 1e6 }}
	emitted := false
	for i := 0; i < 1000 && !emitted; i++ {
		emitted = MonteCarloEmission(tables, 1.0, 1.0, p, e, b, 1.0, 1e-3, &tau, rng, photons, []float64{0})
	}
	if !emitted {
		t.Fatalf("MonteCarloEmission never fired with a large emission rate")
	}
	if photons.Size() != 1 {
		t.Fatalf("photons.Size() = %d, want 1", photons.Size())
	}
}

func TestBreitWheelerPairAppendsElectronAndPositron(t *testing.T) {
	electrons := particle.New(1)
	positrons := particle.New(1)
	tau := 0.0
	rng := rand.New(rand.NewSource(2))
	rate := func(chi float64) float64 { return 1e6 }
	photonMomentum := vecmath.NewVec3(10, 0, 0)
	emitted := false
	for i := 0; i < 1000 && !emitted; i++ {
		emitted = BreitWheelerPair(rate, 1.0, []float64{0}, photonMomentum, 1.0, 1e-3, &tau, rng, electrons, positrons, -1.0, 1.0)
	}
	if !emitted {
		t.Fatalf("BreitWheelerPair never fired with a large pair rate")
	}
	if electrons.Size() != 1 || positrons.Size() != 1 {
		t.Fatalf("expected one electron and one positron, got %d/%d", electrons.Size(), positrons.Size())
	}
	if electrons.Charge[0] != -1.0 || positrons.Charge[0] != 1.0 {
		t.Fatalf("wrong charges assigned: electron=%f positron=%f", electrons.Charge[0], positrons.Charge[0])
	}
}

package species

import (
	"math"
	"testing"

	"github.com/deveworld/picengine/internal/vecmath"
)

func TestBorisPushPureElectricFieldMatchesAnalytic(t *testing.T) {
	p := vecmath.NewVec3(0, 0, 0)
	e := vecmath.NewVec3(1, 0, 0)
	b := vecmath.NewVec3(0, 0, 0)
	dt := 0.01
	qOverM := 1.0
	mass := 1.0
	for i := 0; i < 100; i++ {
		p = BorisPush(p, e, b, qOverM, dt, mass)
	}
	want := qOverM * 1.0 * dt * 100
	if math.Abs(p.X()-want) > 1e-9 {
		t.Fatalf("px after pure E push = %f, want %f", p.X(), want)
	}
}

func TestBorisPushMagneticFieldConservesEnergy(t *testing.T) {
	p := vecmath.NewVec3(1.0, 0, 0)
	e := vecmath.NewVec3(0, 0, 0)
	b := vecmath.NewVec3(0, 0, 1.0)
	mass := 1.0
	gammaBefore := vecmath.Gamma(p, mass)
	for i := 0; i < 1000; i++ {
		p = BorisPush(p, e, b, 1.0, 0.001, mass)
	}
	gammaAfter := vecmath.Gamma(p, mass)
	if math.Abs(gammaAfter-gammaBefore) > 1e-6 {
		t.Fatalf("pure magnetic push changed gamma from %f to %f", gammaBefore, gammaAfter)
	}
}

func TestVelocityMasslessMovesAtUnitSpeed(t *testing.T) {
	p := vecmath.NewVec3(3, 4, 0)
	v := Velocity(p, 0)
	if math.Abs(v.Len()-1.0) > 1e-12 {
		t.Fatalf("massless velocity magnitude = %f, want 1.0", v.Len())
	}
}

func TestVelocityNonrelativisticLimit(t *testing.T) {
	p := vecmath.NewVec3(0.001, 0, 0)
	v := Velocity(p, 1.0)
	if math.Abs(v.X()-0.001) > 1e-6 {
		t.Fatalf("nonrelativistic v = %f, want ~p/m = 0.001", v.X())
	}
}

// Package species wires interpolation, the relativistic particle
// push, current projection and boundary conditions into the
// per-species update spec.md §4.4 describes. The kick-drift-kick
// structure is grounded directly on the teacher's leapfrog
// (internal/physics/time_evolution.go's LeapfrogStep, now removed: half-kick,
// drift, half-kick), generalized from a Newtonian force update to the
// relativistic Boris rotation spec.md's equations call for.
package species

import (
	"github.com/deveworld/picengine/internal/vecmath"
)

// BorisPush advances one particle's momentum by dt using the
// relativistic Boris algorithm: a half electric-field kick, a
// magnetic rotation, and a second half electric-field kick. Returns
// the new momentum.
//
// This is the relativistic generalization of the teacher's
// UpdateVelocities kick (force_calculation.go), replacing a
// Newtonian a=F/m update with the charge/mass-ratio Lorentz force the
// spec's equations of motion require.
func BorisPush(p vecmath.Vec3, e, b vecmath.Vec3, qOverM, dt, mass float64) vecmath.Vec3 {
	half := 0.5 * qOverM * dt

	// First half electric kick.
	pMinus := p.Add(e.Mul(half))

	gammaMinus := vecmath.Gamma(pMinus, mass)
	t := b.Mul(half / gammaMinus)
	tMagSq := t.Dot(t)
	s := t.Mul(2.0 / (1.0 + tMagSq))

	pPrime := pMinus.Add(pMinus.Cross(t))
	pPlus := pMinus.Add(pPrime.Cross(s))

	// Second half electric kick.
	return pPlus.Add(e.Mul(half))
}

// Velocity converts a relativistic momentum into a velocity via
// v = p/(gamma*m); massless species (photons, mass==0) move at the
// normalized speed of light along their momentum direction.
func Velocity(p vecmath.Vec3, mass float64) vecmath.Vec3 {
	if mass == 0 {
		norm := p.Len()
		if norm == 0 {
			return vecmath.NewVec3(0, 0, 0)
		}
		return p.Mul(1.0 / norm)
	}
	gamma := vecmath.Gamma(p, mass)
	return p.Mul(1.0 / (gamma * mass))
}

// Package ionization implements the rate-based field/collisional
// ionization operator spec.md §4.12 names as one of the per-species
// particle-lifecycle mutators. It is grounded on
// original_source/src/Ionization/IonizationFromRate.cpp: each bound
// ion is tested, once per step, against a Monte-Carlo probability
// derived from a caller-supplied ionization rate; on success the ion's
// charge state increases by one and a new macro-electron is appended
// to a target species carrying a fraction of the ion's momentum and
// the ion's full statistical weight.
//
// The rate itself — whichever of field ionization (ADK/PPT), impact
// ionization from a binary-collision pairing, or a tabulated
// barrier-suppression curve the caller wants — is supplied as a
// function value rather than hard-coded, matching spec.md §1's
// "specific physics tables... treated as opaque interpolation
// tables".
package ionization

import (
	"math"
	"math/rand"

	"github.com/deveworld/picengine/internal/particle"
)

// RateFunc returns the instantaneous ionization rate (probability per
// unit time) for one ion particle at index i of container c, e.g. as
// a function of the local field magnitude the caller already
// interpolated. IonizationFromRate.cpp computes this externally
// (historically via a user-supplied Python profile) and passes in a
// precomputed per-particle rate array; RateFunc plays that role here.
type RateFunc func(c *particle.Container, i int) float64

// Operator applies the rate-based ionization model to one ion species
// each step it is invoked, per the species' `ionization_rate` profile
// (spec.md §6 Species block).
type Operator struct {
	MaximumChargeState    float64 // fully-ionized charge state; particles at or above this are skipped
	IonizedSpeciesInvMass float64 // 1/mass of the ion, used to scale the ejected electron's momentum
	Rate                  RateFunc
	Rng                   *rand.Rand
}

// Apply tests every live ion in c against its ionization rate and
// advances its charge state on success, appending the liberated
// electron to electrons. It returns the number of ionization events
// this call produced, the diagnostic spec.md §7 scalar output wants.
//
// IonizationFromRate.cpp computes at most one ionization event per
// particle per step ("At the moment, only 1 ionization per
// timestep is possible"); this operator preserves that limit.
func (op *Operator) Apply(c *particle.Container, electrons *particle.Container, dt float64) int {
	if op.Rate == nil {
		return 0
	}
	events := 0
	n := c.Size()
	for i := 0; i < n; i++ {
		z := c.Charge[i]
		if op.MaximumChargeState > 0 && z >= op.MaximumChargeState {
			continue
		}
		rate := op.Rate(c, i)
		if rate <= 0 {
			continue
		}
		probability := 1.0 - math.Exp(-rate*dt)
		if op.Rng.Float64() >= probability {
			continue
		}

		pos := make([]float64, c.Dim)
		for axis := 0; axis < c.Dim; axis++ {
			pos[axis] = c.Position[axis][i]
		}
		electronMomentum := [3]float64{
			c.Momentum[0][i] * op.IonizedSpeciesInvMass,
			c.Momentum[1][i] * op.IonizedSpeciesInvMass,
			c.Momentum[2][i] * op.IonizedSpeciesInvMass,
		}
		electrons.PushBack(pos, electronMomentum, c.Weight[i], -1.0)
		c.Charge[i] = z + 1
		events++
	}
	return events
}

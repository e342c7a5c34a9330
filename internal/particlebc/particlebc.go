// Package particlebc implements the per-axis particle boundary
// conditions spec.md §4.7 lists: reflect (elastic bounce, no energy
// loss), stop (zero momentum, particle stays at the wall), remove
// (charge zeroed as a marker for internal/particle.Container.
// EraseMarked), thermalize (redraw momentum from a wall-temperature
// Maxwellian when the particle is fast enough, otherwise reflect), and
// periodic (wrap position, handled structurally like fieldbc's
// periodic case by internal/patch's neighbor table, so it is a no-op
// here too).
package particlebc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/deveworld/picengine/internal/particle"
)

type Kind int

const (
	Periodic Kind = iota
	Reflect
	Stop
	Remove
	Thermalize
)

func ParseKind(s string) (Kind, error) {
	switch s {
	case "periodic":
		return Periodic, nil
	case "reflective":
		return Reflect, nil
	case "stop":
		return Stop, nil
	case "remove":
		return Remove, nil
	case "thermalize":
		return Thermalize, nil
	default:
		return 0, fmt.Errorf("particlebc: unknown boundary condition %q", s)
	}
}

// Side mirrors fieldbc.Side so the two packages can share a config
// axis/side vocabulary without importing one another.
type Side int

const (
	Min Side = iota
	Max
)

// Apply enforces the boundary condition for axis/side on every
// particle in c whose position has crossed the domain edge at
// `boundary`, and returns the total kinetic energy tallied as lost
// (spec.md §4.7, §8 invariant 2's U_lost_boundary term). rng provides
// the randomness thermalize needs; callers pass the species'
// BoundaryRng, which draws from gonum's global source unless its Src
// field is set, and Apply overwrites its Sigma. drift is the
// wall's mean velocity (spec.md §4.7's thermalize drift boost); it may
// be the zero vector for a wall with no net flow.
func Apply(c *particle.Container, axis int, side Side, boundary, wallTemperature, mass float64, kind Kind, rng *distuv.Normal, drift [3]float64) float64 {
	n := c.Size()
	var lostEnergy float64
	for i := 0; i < n; i++ {
		pos := c.Position[axis][i]
		crossed := (side == Min && pos < boundary) || (side == Max && pos > boundary)
		if !crossed {
			continue
		}
		switch kind {
		case Periodic:
			// handled by the patch's neighbor wraparound; nothing to do.
		case Reflect:
			c.Position[axis][i] = 2*boundary - pos
			c.Momentum[axis][i] = -c.Momentum[axis][i]
		case Stop:
			lostEnergy += kineticEnergy(c, i, mass)
			c.Position[axis][i] = boundary
			c.Momentum[0][i] = 0
			c.Momentum[1][i] = 0
			c.Momentum[2][i] = 0
		case Remove:
			lostEnergy += kineticEnergy(c, i, mass)
			c.Charge[i] = 0
		case Thermalize:
			before := kineticEnergy(c, i, mass)
			c.Position[axis][i] = boundary
			thermalizeOrReflect(c, i, axis, side, wallTemperature, mass, rng, drift)
			lostEnergy += before - kineticEnergy(c, i, mass)
		}
	}
	return lostEnergy
}

func kineticEnergy(c *particle.Container, i int, mass float64) float64 {
	p2 := c.Momentum[0][i]*c.Momentum[0][i] + c.Momentum[1][i]*c.Momentum[1][i] + c.Momentum[2][i]*c.Momentum[2][i]
	gamma := math.Sqrt(1 + p2/(mass*mass))
	return c.Weight[i] * (gamma - 1) * mass
}

// thermalizeOrReflect implements spec.md §4.7's "if |v| > 3*v_thermal,
// redraw from the wall Maxwellian and boost by the wall drift;
// otherwise simply reflect," grounded on original_source/src/Species/
// BoundaryConditionType.h's thermalize_particle.
func thermalizeOrReflect(c *particle.Container, i, normalAxis int, side Side, wallTemperature, mass float64, rng *distuv.Normal, drift [3]float64) {
	gamma := math.Sqrt(1 + (c.Momentum[0][i]*c.Momentum[0][i]+c.Momentum[1][i]*c.Momentum[1][i]+c.Momentum[2][i]*c.Momentum[2][i])/(mass*mass))
	v := math.Sqrt(c.Momentum[0][i]*c.Momentum[0][i]+c.Momentum[1][i]*c.Momentum[1][i]+c.Momentum[2][i]*c.Momentum[2][i]) / (gamma * mass)
	thermalVelocity := math.Sqrt(wallTemperature / mass)
	if v <= 3*thermalVelocity {
		c.Momentum[normalAxis][i] = -c.Momentum[normalAxis][i]
		return
	}

	sigma := math.Sqrt(wallTemperature * mass)
	rng.Sigma = sigma
	for axis := 0; axis < 3; axis++ {
		c.Momentum[axis][i] = rng.Rand()
	}
	if side == Min {
		c.Momentum[normalAxis][i] = math.Abs(c.Momentum[normalAxis][i])
	} else {
		c.Momentum[normalAxis][i] = -math.Abs(c.Momentum[normalAxis][i])
	}
	boostByDrift(c, i, mass, drift)
}

// boostByDrift composes the redrawn momentum with the wall's mean
// drift velocity via a relativistic Lorentz boost, so a thermalized
// wall can inject a net flow rather than a purely isotropic
// Maxwellian (original_source/src/Species/BoundaryConditionType.h's
// "Adding the mean velocity (using relativistic composition)").
func boostByDrift(c *particle.Container, i int, mass float64, drift [3]float64) {
	v2 := drift[0]*drift[0] + drift[1]*drift[1] + drift[2]*drift[2]
	if v2 <= 0 {
		return
	}
	g := 1.0 / math.Sqrt(1.0-v2)
	gm1 := g - 1.0
	lxx := 1.0 + gm1*drift[0]*drift[0]/v2
	lyy := 1.0 + gm1*drift[1]*drift[1]/v2
	lzz := 1.0 + gm1*drift[2]*drift[2]/v2
	lxy := gm1 * drift[0] * drift[1] / v2
	lxz := gm1 * drift[0] * drift[2] / v2
	lyz := gm1 * drift[1] * drift[2] / v2

	p0, p1, p2 := c.Momentum[0][i], c.Momentum[1][i], c.Momentum[2][i]
	gp := math.Sqrt(mass*mass + p0*p0 + p1*p1 + p2*p2)
	c.Momentum[0][i] = -gp*g*drift[0] + lxx*p0 + lxy*p1 + lxz*p2
	c.Momentum[1][i] = -gp*g*drift[1] + lxy*p0 + lyy*p1 + lyz*p2
	c.Momentum[2][i] = -gp*g*drift[2] + lxz*p0 + lyz*p1 + lzz*p2
}

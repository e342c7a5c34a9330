package species

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/deveworld/picengine/internal/interpolate"
	"github.com/deveworld/picengine/internal/maxwell"
	"github.com/deveworld/picengine/internal/particle"
	"github.com/deveworld/picengine/internal/particlebc"
	"github.com/deveworld/picengine/internal/project"
	"github.com/deveworld/picengine/internal/radiation"
	"github.com/deveworld/picengine/internal/vecmath"
)

// RadiationModel enumerates spec.md §4.12's radiation-reaction options.
type RadiationModel int

const (
	RadiationNone RadiationModel = iota
	RadiationLandauLifshitz
	RadiationCorrectedLL
	RadiationNiel
	RadiationMonteCarlo
)

// Species aggregates one particle population with the physical
// parameters that govern its push and deposition (spec.md §3
// "Species"): mass/charge ratio, whether it is frozen (position-only,
// no current deposition beyond rho), and its radiation model.
type Species struct {
	Name     string
	Mass     float64
	Charge   float64
	Frozen   bool
	Radiated RadiationModel

	Container *particle.Container

	// RadiatedEnergy accumulates the energy lost to radiation reaction
	// each step, per spec.md §4.12's diagnostic requirement.
	RadiatedEnergy float64

	// RadiationTables supplies the quantum-correction/emission-rate
	// lookups internal/radiation's corrected-LL, Niel, and Monte-Carlo
	// models need; nil falls back to the uncorrected classical values.
	RadiationTables radiation.Tables
	// RadiationRng drives the stochastic Niel model's random draws.
	// With a nil Rng a Niel species falls back to the deterministic
	// corrected Landau-Lifshitz drag; the other models never read it.
	RadiationRng *rand.Rand

	// BoundaryConditions[axis][side] governs what happens to this
	// species' particles at a domain edge on that axis/side (spec.md
	// §4.7); the zero value on an unset axis is particlebc.Periodic, so
	// a fully periodic species needs no explicit configuration.
	BoundaryConditions [][2]particlebc.Kind
	// WallTemperature feeds particlebc's thermalize reinjection.
	WallTemperature float64
	// BoundaryRng drives thermalize's Maxwellian redraw. A nil Src
	// field falls back to gonum's default global source, so this only
	// needs to be non-nil when a species wants a reproducible,
	// independently-seeded thermalize stream.
	BoundaryRng *distuv.Normal
	// WallDrift is the mean velocity thermalize boosts the redrawn
	// momentum by (spec.md §4.7); the zero vector means an isotropic
	// wall with no net injected flow.
	WallDrift [3]float64

	// LostBoundaryEnergy accumulates the kinetic energy tallied as lost
	// to stop/remove/thermalize boundary conditions (spec.md §8
	// invariant 2's U_lost_boundary term).
	LostBoundaryEnergy float64
}

// New allocates a species with an empty container of the given
// dimensionality.
func New(name string, dim int, mass, charge float64) *Species {
	return &Species{
		Name: name, Mass: mass, Charge: charge, Container: particle.New(dim),
		BoundaryRng: &distuv.Normal{Mu: 0, Sigma: 1},
	}
}

// Dynamics advances every live particle in the species by one time
// step: interpolate fields at the old position, Boris-push momentum,
// drift position, then hand the old/new shape coefficients to the
// projector for charge-conserving current deposition. Frozen species
// skip the push and projection entirely but still deposit rho when
// diagFlag is set (spec.md §4.4's frozen-species edge case).
func (s *Species) Dynamics(ip *interpolate.Interpolator, fs interpolate.FieldSet, grid *maxwell.Grid, oversize int, dt float64, diagFlag bool) {
	c := s.Container
	n := c.Size()
	qOverM := s.Charge / s.Mass
	dim := c.Dim

	for i := 0; i < n; i++ {
		pos := make([]float64, dim)
		for axis := 0; axis < dim; axis++ {
			pos[axis] = c.Position[axis][i]
		}
		oldShapes := ip.Shapes(pos, grid.Jx.Dual, oversize)

		if s.Frozen {
			if diagFlag {
				project.Deposit(project.Trajectory{
					Dim: dim, Old: oldShapes, New: oldShapes,
					Weight: c.Weight[i], Charge: s.Charge,
				}, grid.Jx, grid.Jy, grid.Jz, grid.Rho, grid.Dx, dt, true)
			}
			continue
		}

		e, b := ip.AtParticle(fs, pos, oversize)
		p := vecmath.NewVec3(c.Momentum[0][i], c.Momentum[1][i], c.Momentum[2][i])
		pNew := BorisPush(p, e, b, qOverM, dt, s.Mass)
		pNew, lost := s.applyRadiation(pNew, e, b, qOverM, dt)
		s.RadiatedEnergy += lost
		c.Momentum[0][i], c.Momentum[1][i], c.Momentum[2][i] = pNew.X(), pNew.Y(), pNew.Z()

		v := Velocity(pNew, s.Mass)
		newPos := make([]float64, dim)
		for axis := 0; axis < dim; axis++ {
			var vAxis float64
			switch axis {
			case 0:
				vAxis = v.X()
			case 1:
				vAxis = v.Y()
			case 2:
				vAxis = v.Z()
			}
			newPos[axis] = pos[axis] + vAxis*dt
			c.Position[axis][i] = newPos[axis]
		}
		newShapes := ip.Shapes(newPos, grid.Jx.Dual, oversize)

		project.Deposit(project.Trajectory{
			Dim: dim, Old: oldShapes, New: newShapes,
			Velocity: [3]float64{v.X(), v.Y(), v.Z()},
			Weight:   c.Weight[i], Charge: s.Charge,
		}, grid.Jx, grid.Jy, grid.Jz, grid.Rho, grid.Dx, dt, diagFlag)
	}
}

// Sort reorders the container's particles by axis-0 position, a
// prerequisite for RebuildBins producing contiguous bins (spec.md
// §4.1 "particles re-sorted by cell after every step so the bin index
// stays valid").
func (s *Species) Sort() {
	c := s.Container
	n := c.Size()
	if n == 0 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return c.Position[0][order[i]] < c.Position[0][order[j]]
	})
	permute(c, order)
}

func permute(c *particle.Container, order []int) {
	n := len(order)
	newPos := make([][]float64, c.Dim)
	for axis := 0; axis < c.Dim; axis++ {
		newPos[axis] = make([]float64, n)
		for i, src := range order {
			newPos[axis][i] = c.Position[axis][src]
		}
	}
	var newMom [3][]float64
	for axis := 0; axis < 3; axis++ {
		newMom[axis] = make([]float64, n)
		for i, src := range order {
			newMom[axis][i] = c.Momentum[axis][src]
		}
	}
	newWeight := make([]float64, n)
	newCharge := make([]float64, n)
	for i, src := range order {
		newWeight[i] = c.Weight[src]
		newCharge[i] = c.Charge[src]
	}
	c.Position = newPos
	c.Momentum = newMom
	c.Weight = newWeight
	c.Charge = newCharge
	if c.Chi != nil {
		newChi := make([]float64, n)
		for i, src := range order {
			newChi[i] = c.Chi[src]
		}
		c.Chi = newChi
	}
	if c.Tau != nil {
		newTau := make([]float64, n)
		for i, src := range order {
			newTau[i] = c.Tau[src]
		}
		c.Tau = newTau
	}
}

// applyRadiation dispatches to the continuous radiation-reaction
// operator matching s.Radiated, returning the possibly-reduced
// momentum and the energy radiated this step. MonteCarlo discrete
// photon emission is not applied here since it needs a target photon
// species container Dynamics does not have access to; species using it
// fall back to the corrected-LL continuous drag.
func (s *Species) applyRadiation(p, e, b vecmath.Vec3, qOverM, dt float64) (vecmath.Vec3, float64) {
	switch s.Radiated {
	case RadiationNone:
		return p, 0
	case RadiationLandauLifshitz:
		return radiation.ApplyContinuous(radiation.LandauLifshitz, s.RadiationTables, qOverM, s.Mass, p, e, b, dt)
	case RadiationCorrectedLL, RadiationMonteCarlo:
		return radiation.ApplyContinuous(radiation.CorrectedLandauLifshitz, s.RadiationTables, qOverM, s.Mass, p, e, b, dt)
	case RadiationNiel:
		if s.RadiationRng == nil {
			return radiation.ApplyContinuous(radiation.CorrectedLandauLifshitz, s.RadiationTables, qOverM, s.Mass, p, e, b, dt)
		}
		return radiation.ApplyNiel(s.RadiationTables, qOverM, s.Mass, p, e, b, dt, s.RadiationRng)
	}
	return p, 0
}

// MeanKineticEnergy returns the species' total kinetic energy,
// (gamma-1)*mass per particle weighted by macro-particle weight, the
// scalar diagnostic spec.md §7 requires per species.
func (s *Species) MeanKineticEnergy() float64 {
	c := s.Container
	var total float64
	for i := 0; i < c.Size(); i++ {
		p := vecmath.NewVec3(c.Momentum[0][i], c.Momentum[1][i], c.Momentum[2][i])
		gamma := vecmath.Gamma(p, s.Mass)
		total += (gamma - 1) * s.Mass * c.Weight[i]
	}
	return total
}

// InjectMaxwellian appends one particle at each of the given positions
// with momentum drawn from a Maxwellian of temperature T, using rng
// for reproducibility (spec.md §6 Species init requires a fixed seed
// to reproduce a run bit-for-bit).
func InjectMaxwellian(s *Species, positions [][]float64, temperature, weight float64, rng *rand.Rand) {
	sigma := math.Sqrt(temperature * s.Mass)
	for _, pos := range positions {
		mom := [3]float64{
			sigma * rng.NormFloat64(),
			sigma * rng.NormFloat64(),
			sigma * rng.NormFloat64(),
		}
		s.Container.PushBack(pos, mom, weight, s.Charge)
	}
}

// Package collision implements the binary-process pairing framework
// spec.md §4.12 describes: particles within a bin are paired up at
// random (intra-species, pairing a species against itself, or
// inter-species, pairing two distinct groups), and a pairwise kernel
// is invoked on each pair. Two concrete kernels are provided:
// relaxation-model Coulomb collisions and collisional (impact)
// ionization; there is no nuclear-reaction kernel.
//
// Grounded on original_source/src/Collisions/BinaryProcesses.h, which
// generalizes exactly this shape — one pairing pass shared by
// collisions, nuclear reactions, and collisional ionization,
// configured by two species groups, an intra/inter flag, a cadence
// (every), and a time_frozen cutoff — and
// CollisionalIonization.h, whose prepare1/prepare2/prepare3/apply/
// finish staged interface the ImpactIonization kernel collapses into a
// single Apply. The specific relativistic Coulomb-log and
// differential cross-section tables those files ultimately delegate
// to are out of scope per spec.md §1's opaque-table treatment of
// collisional physics; the Coulomb kernel here uses the standard
// small-angle relaxation-time approximation instead.
package collision

import (
	"math"
	"math/rand"

	"github.com/deveworld/picengine/internal/particle"
)

// Kernel is invoked once per paired particle, one from group1 (p1,i1)
// and one from group2 (p2,i2), which may be the same container twice
// (intra-species pairing pairs a species against itself).
type Kernel interface {
	Apply(p1 *particle.Container, i1 int, p2 *particle.Container, i2 int, dt float64, rng *rand.Rand)
}

// BinaryProcess bundles everything BinaryProcesses.h's constructor
// takes: the two species groups to pair, whether they are the same
// group (intra), the cadence at which pairing runs, the time before
// which it is inactive, and the kernel to invoke on each pair.
type BinaryProcess struct {
	Group1     []*particle.Container
	Group2     []*particle.Container
	Intra      bool
	Every      int
	TimeFrozen float64
	Kernel     Kernel

	step int
}

// Apply runs one pairing-and-kernel pass over every bin of every
// container in Group1 against Group2 (or against itself, if Intra),
// skipping the call entirely before TimeFrozen or off-cadence steps
// (BinaryProcesses::apply's "every" and "timesteps_frozen" guards).
func (bp *BinaryProcess) Apply(simTime float64, dt float64, rng *rand.Rand) {
	bp.step++
	if simTime < bp.TimeFrozen {
		return
	}
	if bp.Every > 1 && bp.step%bp.Every != 0 {
		return
	}
	if bp.Intra {
		for _, c := range bp.Group1 {
			pairIntra(c, bp.Kernel, dt, rng)
		}
		return
	}
	n := len(bp.Group1)
	if len(bp.Group2) < n {
		n = len(bp.Group2)
	}
	for i := 0; i < n; i++ {
		pairInter(bp.Group1[i], bp.Group2[i], bp.Kernel, dt, rng)
	}
}

// binRanges returns the [lo,hi) index ranges to pair within: the
// container's bmin/bmax partition if it has been built, or the whole
// container as one range otherwise (spec.md §4.12 "builds a
// randomized pairing of particles within a cell").
func binRanges(c *particle.Container) [][2]int {
	if len(c.BinMin) == 0 {
		return [][2]int{{0, c.Size()}}
	}
	ranges := make([][2]int, len(c.BinMin))
	for b := range c.BinMin {
		ranges[b] = [2]int{c.BinMin[b], c.BinMax[b]}
	}
	return ranges
}

// shuffledIndices returns a random permutation of [lo,hi).
func shuffledIndices(lo, hi int, rng *rand.Rand) []int {
	idx := make([]int, hi-lo)
	for i := range idx {
		idx[i] = lo + i
	}
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}

func pairIntra(c *particle.Container, k Kernel, dt float64, rng *rand.Rand) {
	for _, r := range binRanges(c) {
		idx := shuffledIndices(r[0], r[1], rng)
		for i := 0; i+1 < len(idx); i += 2 {
			k.Apply(c, idx[i], c, idx[i+1], dt, rng)
		}
	}
}

func pairInter(c1, c2 *particle.Container, k Kernel, dt float64, rng *rand.Rand) {
	ranges1 := binRanges(c1)
	ranges2 := binRanges(c2)
	n := len(ranges1)
	if len(ranges2) < n {
		n = len(ranges2)
	}
	for b := 0; b < n; b++ {
		idx1 := shuffledIndices(ranges1[b][0], ranges1[b][1], rng)
		idx2 := shuffledIndices(ranges2[b][0], ranges2[b][1], rng)
		m := len(idx1)
		if len(idx2) < m {
			m = len(idx2)
		}
		for i := 0; i < m; i++ {
			k.Apply(c1, idx1[i], c2, idx2[i], dt, rng)
		}
	}
}

// CoulombKernel implements small-angle binary Coulomb collisions via
// the standard relaxation-time approximation: the pair's
// center-of-mass relative velocity is rotated by a random angle whose
// variance grows with CoulombLogarithm * dt / (relative speed)^3,
// then redistributed back onto the two particles' momenta so total
// momentum and (for equal masses) energy are conserved. This is the
// kernel BinaryProcesses.h's `collisions_` member would invoke.
type CoulombKernel struct {
	Mass1, Mass2       float64
	CoulombLogarithm   float64 // ln(Lambda); a constant here since tabulated Debye-length screening is out of scope
	DensityCoefficient float64 // n * q1^2 * q2^2 lumped prefactor, supplied by the caller per spec.md's opaque-table treatment
}

func (ck *CoulombKernel) Apply(p1 *particle.Container, i1 int, p2 *particle.Container, i2 int, dt float64, rng *rand.Rand) {
	m1, m2 := ck.Mass1, ck.Mass2
	reducedMass := m1 * m2 / (m1 + m2)

	relV := [3]float64{
		p1.Momentum[0][i1]/m1 - p2.Momentum[0][i2]/m2,
		p1.Momentum[1][i1]/m1 - p2.Momentum[1][i2]/m2,
		p1.Momentum[2][i1]/m1 - p2.Momentum[2][i2]/m2,
	}
	speed := math.Sqrt(relV[0]*relV[0] + relV[1]*relV[1] + relV[2]*relV[2])
	if speed == 0 {
		return
	}

	variance := ck.DensityCoefficient * ck.CoulombLogarithm * dt / (speed * speed * speed)
	theta := math.Sqrt(math.Max(variance, 0)) * rng.NormFloat64()
	phi := 2 * math.Pi * rng.Float64()

	scattered := rotateAboutRandomAxis(relV, theta, phi, rng)

	for axis := 0; axis < 3; axis++ {
		delta := reducedMass * (scattered[axis] - relV[axis])
		p1.Momentum[axis][i1] += delta
		p2.Momentum[axis][i2] -= delta
	}
}

// rotateAboutRandomAxis scatters v by polar angle theta about a
// randomly chosen azimuthal direction, the minimal construction that
// preserves |v| (so the reduced-mass redistribution above conserves
// kinetic energy in the center-of-mass frame).
func rotateAboutRandomAxis(v [3]float64, theta, phi float64, rng *rand.Rand) [3]float64 {
	speed := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if speed == 0 {
		return v
	}
	// Build an orthonormal frame (u, w) perpendicular to v.
	var u [3]float64
	if math.Abs(v[0]) < 0.9*speed {
		u = cross(v, [3]float64{1, 0, 0})
	} else {
		u = cross(v, [3]float64{0, 1, 0})
	}
	u = normalize(u)
	w := normalize(cross(v, u))

	sinT, cosT := math.Sin(theta), math.Cos(theta)
	sinP, cosP := math.Sin(phi), math.Cos(phi)

	var out [3]float64
	for axis := 0; axis < 3; axis++ {
		out[axis] = speed * (cosT*v[axis]/speed + sinT*cosP*u[axis] + sinT*sinP*w[axis])
	}
	return out
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(a [3]float64) [3]float64 {
	n := math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
	if n == 0 {
		return a
	}
	return [3]float64{a[0] / n, a[1] / n, a[2] / n}
}

// ImpactIonization implements collisional (impact) ionization: an
// electron-ion pair whose relative kinetic energy exceeds the ion's
// binding energy ionizes the ion with a probability proportional to
// that excess energy, appending a liberated electron to NewElectrons.
// NewElectrons accumulates across the whole pairing pass; the kernel
// has no Finish step, so moving those electrons into a species
// container is left to the caller.
type ImpactIonization struct {
	ElectronMass    float64
	BindingEnergy   float64 // energy required to strip one more electron from the ion
	RateCoefficient float64
	MaxChargeState  float64

	NewElectrons *particle.Container
}

func (ii *ImpactIonization) Apply(p1 *particle.Container, i1 int, p2 *particle.Container, i2 int, dt float64, rng *rand.Rand) {
	electrons, eIdx, ions, iIdx := p1, i1, p2, i2
	// CollisionalIonization::prepare1 determines which group is the
	// electrons by their sign of charge; do the same here so callers
	// may pass either ordering.
	if p1.Charge[i1] > 0 {
		electrons, eIdx, ions, iIdx = p2, i2, p1, i1
	}
	if ions.Charge[iIdx] >= ii.MaxChargeState {
		return
	}

	relKE := relativeKineticEnergy(electrons, eIdx, ions, iIdx, ii.ElectronMass)
	if relKE <= ii.BindingEnergy {
		return
	}
	probability := 1.0 - math.Exp(-ii.RateCoefficient*(relKE-ii.BindingEnergy)*dt)
	if rng.Float64() >= probability {
		return
	}

	pos := make([]float64, ions.Dim)
	for axis := 0; axis < ions.Dim; axis++ {
		pos[axis] = ions.Position[axis][iIdx]
	}
	ii.NewElectrons.PushBack(pos, [3]float64{}, ions.Weight[iIdx], -1.0)
	ions.Charge[iIdx]++
}

func relativeKineticEnergy(electrons *particle.Container, ei int, ions *particle.Container, ii int, electronMass float64) float64 {
	var rel [3]float64
	for axis := 0; axis < 3; axis++ {
		rel[axis] = electrons.Momentum[axis][ei] - ions.Momentum[axis][ii]
	}
	p2 := rel[0]*rel[0] + rel[1]*rel[1] + rel[2]*rel[2]
	gamma := math.Sqrt(1.0 + p2/(electronMass*electronMass))
	return (gamma - 1.0) * electronMass
}

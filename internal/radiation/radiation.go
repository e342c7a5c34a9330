// Package radiation implements the per-particle radiation-reaction
// operators spec.md §4.12 describes: compute the Lorentz-invariant
// quantum parameter chi from the local E/B sample, then apply one of
// a deterministic Landau-Lifshitz friction force, a quantum-corrected
// variant, a stochastic Fokker-Planck correction (Niel), or a discrete
// Monte-Carlo photon emission that appends a macro-photon to a target
// species. It also implements multiphoton Breit-Wheeler pair
// production, which decays photons into electron-positron pairs.
//
// Grounded on original_source/src/Radiation/RadiationCorrLandauLifshitz.cpp
// (the corrected-LL continuous model), RadiationNiel.cpp (the
// stochastic diffusive correction), RadiationTables.cpp (the
// classical-radiated-power prefactor and the chipa threshold), and
// original_source/src/MultiphotonBreitWheeler/MultiphotonBreitWheeler.h
// (the photon-decay optical-depth bookkeeping). The specific
// cross-section tables those files load from disk are out of scope
// per spec.md §1 ("physics tables for Compton scattering and
// Breit-Wheeler pair production, treated as opaque interpolation
// tables"); here they are a caller-supplied function value instead of
// an HDF5-backed table.
package radiation

import (
	"math"
	"math/rand"

	"github.com/deveworld/picengine/internal/particle"
	"github.com/deveworld/picengine/internal/vecmath"
)

// Model enumerates spec.md §4.12's radiation_model values.
type Model int

const (
	None Model = iota
	LandauLifshitz
	CorrectedLandauLifshitz
	Niel
	MonteCarlo
)

// ParseModel maps a config string (spec.md §6 "none, ll, cll, niel,
// mc") to a Model.
func ParseModel(s string) (Model, error) {
	switch s {
	case "none", "":
		return None, nil
	case "ll":
		return LandauLifshitz, nil
	case "cll":
		return CorrectedLandauLifshitz, nil
	case "niel":
		return Niel, nil
	case "mc":
		return MonteCarlo, nil
	}
	return None, errUnknownModel(s)
}

type errUnknownModel string

func (e errUnknownModel) Error() string { return "radiation: unknown model " + string(e) }

// Tables bundles the opaque, caller-supplied physics-table lookups
// RadiationTables.cpp would otherwise compute from tabulated data:
// the quantum-correction factor g(chi) used by the corrected-LL and
// Niel models, and the photon-emission rate used by the Monte-Carlo
// model. A nil field falls back to the uncorrected classical value (1
// for g, meaning no quantum suppression).
type Tables struct {
	QuantumCorrection func(chi float64) float64
	EmissionRate      func(chi, gamma float64) float64
}

func (t Tables) g(chi float64) float64 {
	if t.QuantumCorrection == nil {
		return 1.0
	}
	return t.QuantumCorrection(chi)
}

// ChiThreshold below which radiation losses are negligible and the
// operator is skipped entirely (RadiationNiel.cpp's
// chipa_radiation_threshold).
const ChiThreshold = 1e-3

// classicalRadiatedPowerFactor is the normalized prefactor
// 2*alpha/(3*lambda_C) from RadiationTables.cpp's
// factor_classical_radiated_power_, expressed in the code units where
// alpha (fine structure constant) and the Compton wavelength are
// folded into mass/charge normalization upstream; callers that need
// absolute physical units should scale chi and the returned radiated
// power accordingly. Kept as a named constant rather than inlined so
// the one magic number in this package has a name tied to its source.
const classicalRadiatedPowerFactor = 2.0 * fineStructureConstant / 3.0

const fineStructureConstant = 1.0 / 137.035999084

// ComputeChi returns the Lorentz-invariant quantum parameter for a
// particle of charge-to-mass ratio qOverM, momentum p and Lorentz
// factor gamma, sampled at local fields e, b (RadiationNiel.cpp /
// RadiationCorrLandauLifshitz.cpp both delegate to the shared
// Radiation::compute_chipa helper for this). chi gauges the field
// strength seen in the particle's rest frame against the Schwinger
// field: chi = |q/m| * gamma * sqrt((E + beta x B)^2 - (beta . E)^2).
func ComputeChi(qOverM float64, p, e, b vecmath.Vec3, gamma float64) float64 {
	if gamma == 0 {
		return 0
	}
	beta := p.Mul(1.0 / gamma)
	transverse := e.Add(beta.Cross(b))
	longitudinal := beta.Dot(e)
	radicand := transverse.Dot(transverse) - longitudinal*longitudinal
	if radicand < 0 {
		radicand = 0
	}
	return math.Abs(qOverM) * gamma * math.Sqrt(radicand)
}

// continuousRadiatedMomentumLoss returns the momentum-loss fraction
// per unit time for the classical/corrected-LL friction force:
// dp/dt = -factor * chi^2 * gamma * g(chi) * p / gamma (direction of
// motion), the continuous-drag term both RadiationCorrLandauLifshitz
// and the non-diffusive part of RadiationNiel apply.
func continuousRadiatedMomentumLoss(chi, gamma float64, g float64) float64 {
	return classicalRadiatedPowerFactor * chi * chi * gamma * g
}

// ApplyContinuous applies the Landau-Lifshitz (model==LandauLifshitz,
// g forced to 1) or corrected Landau-Lifshitz (model==CorrectedLandauLifshitz,
// g from tables) friction force to one particle in place, and returns
// the energy radiated this step (added by the caller to the species'
// RadiatedEnergy accumulator per spec.md §4.12).
func ApplyContinuous(model Model, tables Tables, qOverM, mass float64, p vecmath.Vec3, e, b vecmath.Vec3, dt float64) (vecmath.Vec3, float64) {
	gamma := vecmath.Gamma(p, mass)
	chi := ComputeChi(qOverM, p, e, b, gamma)
	if chi < ChiThreshold {
		return p, 0
	}
	g := 1.0
	if model == CorrectedLandauLifshitz {
		g = tables.g(chi)
	}
	lossRate := continuousRadiatedMomentumLoss(chi, gamma, g)
	if gamma == 0 {
		return p, 0
	}
	fraction := lossRate * dt / gamma
	if fraction > 1 {
		// The drag never removes more momentum than the particle has.
		fraction = 1
	}
	drag := p.Mul(fraction)
	pNew := p.Sub(drag)
	radiated := drag.Len()
	return pNew, radiated
}

// ApplyNiel applies the corrected Landau-Lifshitz drag plus a
// stochastic diffusive kick drawn from a normal distribution of
// variance dt (RadiationNiel.cpp's diffusion term
// sqrt(factor_cla_rad_power*gamma*h)*random_numbers[ipart]), modeling
// the quantum fluctuations the classical drag alone misses.
func ApplyNiel(tables Tables, qOverM, mass float64, p, e, b vecmath.Vec3, dt float64, rng *rand.Rand) (vecmath.Vec3, float64) {
	gamma := vecmath.Gamma(p, mass)
	chi := ComputeChi(qOverM, p, e, b, gamma)
	if chi < ChiThreshold {
		return p, 0
	}
	g := tables.g(chi)
	lossRate := continuousRadiatedMomentumLoss(chi, gamma, g)
	if gamma == 0 {
		return p, 0
	}
	drag := p.Mul(lossRate * dt / gamma)

	h := classicalRadiatedPowerFactor * chi * chi * g
	sigma := math.Sqrt(math.Abs(classicalRadiatedPowerFactor * gamma * h * dt))
	diffusion := sigma * rng.NormFloat64()
	direction := p
	if norm := direction.Len(); norm > 0 {
		direction = direction.Mul(1.0 / norm)
	}
	pNew := p.Sub(drag).Add(direction.Mul(diffusion))
	radiated := drag.Len()
	return pNew, radiated
}

// MonteCarloEmission checks whether a particle emits a discrete
// macro-photon this step via the optical-depth method: tau decays by
// the emission rate each step and a photon is emitted when tau
// crosses zero, at which point a new photon is appended to
// photons carrying the momentum direction of the radiating
// particle and a fraction of its energy. Returns true if a photon was
// emitted. Mirrors the Monte-Carlo branch MultiphotonBreitWheeler.h's
// sibling class in the pack uses for the inverse process.
func MonteCarloEmission(tables Tables, qOverM, mass float64, p, e, b vecmath.Vec3, weight float64, dt float64, tau *float64, rng *rand.Rand, photons *particle.Container, pos []float64) bool {
	gamma := vecmath.Gamma(p, mass)
	chi := ComputeChi(qOverM, p, e, b, gamma)
	if chi < ChiThreshold || tables.EmissionRate == nil {
		return false
	}
	rate := tables.EmissionRate(chi, gamma)
	if *tau <= 0 {
		*tau = -math.Log(1.0 - rng.Float64())
	}
	*tau -= rate * dt
	if *tau > 0 {
		return false
	}
	*tau = 0

	photonEnergyFraction := 0.5 // mean fraction per MultiphotonBreitWheeler's symmetric split assumption
	photonMomentum := p.Mul(photonEnergyFraction)
	p[0], p[1], p[2] = p[0]-photonMomentum[0], p[1]-photonMomentum[1], p[2]-photonMomentum[2]
	photons.PushBack(pos, [3]float64{photonMomentum.X(), photonMomentum.Y(), photonMomentum.Z()}, weight, 0)
	return true
}

// BreitWheelerPair decays one macro-photon in place into an
// electron-positron pair when its optical depth crosses zero, the
// inverse of MonteCarloEmission, per
// original_source/.../MultiphotonBreitWheeler.h's per-photon
// optical-depth loop. electrons and positrons receive half the
// photon's momentum each (the symmetric pair-production
// approximation used when no differential cross-section table is
// supplied). The photon itself is not modified or marked for removal:
// its position, momentum and weight are passed by value.
func BreitWheelerPair(pairRate func(chiPhoton float64) float64, chiPhoton float64, photonPos []float64, photonMomentum vecmath.Vec3, weight float64, dt float64, tau *float64, rng *rand.Rand, electrons, positrons *particle.Container, electronCharge, positronCharge float64) bool {
	if pairRate == nil || chiPhoton < ChiThreshold {
		return false
	}
	rate := pairRate(chiPhoton)
	if *tau <= 0 {
		*tau = -math.Log(1.0 - rng.Float64())
	}
	*tau -= rate * dt
	if *tau > 0 {
		return false
	}
	half := photonMomentum.Mul(0.5)
	electrons.PushBack(photonPos, [3]float64{half.X(), half.Y(), half.Z()}, weight, electronCharge)
	positrons.PushBack(photonPos, [3]float64{half.X(), half.Y(), half.Z()}, weight, positronCharge)
	return true
}

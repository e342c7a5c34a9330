// Package vecmath provides the small vector types shared across the
// PIC core: a fixed 3-component type for momentum and EM-field
// samples (always 3 components regardless of grid dimensionality),
// and a variable-length type for spatial position in 1D/2D/3D/AM
// geometries.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the fixed 3-component type used for momentum (p_x, p_y, p_z)
// and interpolated E/B samples. It is a thin wrapper over mgl64.Vec3
// so the core gets mathgl's vector algebra instead of hand-rolled
// arithmetic.
type Vec3 = mgl64.Vec3

// NewVec3 builds a Vec3 from components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Gamma returns the relativistic Lorentz factor for a momentum
// p (normalized to mc) of a particle with the given rest mass in the
// same units: gamma = sqrt(1 + |p|^2 / m^2).
func Gamma(p Vec3, mass float64) float64 {
	if mass == 0 {
		return p.Len() // massless (photon): gamma undefined, caller uses |p| directly
	}
	pm := p.Mul(1.0 / mass)
	return math.Sqrt(1.0 + pm.Dot(pm))
}

// Position is a d-dimensional spatial coordinate, d in {1,2,3}. Unlike
// momentum and field samples, position genuinely varies with grid
// dimensionality, so it stays a plain slice rather than a fixed mathgl
// type.
type Position []float64

// NewPosition allocates a zeroed d-dimensional position.
func NewPosition(d int) Position {
	return make(Position, d)
}

// Clone returns an independent copy.
func (p Position) Clone() Position {
	out := make(Position, len(p))
	copy(out, p)
	return out
}

// Add returns p + q component-wise over p's length; panics if q is
// shorter than p, and ignores extra components of a longer q.
func (p Position) Add(q Position) Position {
	out := make(Position, len(p))
	for i := range p {
		out[i] = p[i] + q[i]
	}
	return out
}

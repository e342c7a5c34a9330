// Package interpolate implements grid-to-particle field gathering at
// 2nd or 4th order (spec.md §4.3), generalizing the teacher's bilinear
// InterpolateAcceleration (internal/physics/force_calculation.go, now removed) to
// both orders and to 1/2/3 spatial dimensions.
//
// The shape functions are the standard cardinal (Schoenberg) B-splines:
// interpolation_order 2 is the quadratic B-spline (3-point support),
// interpolation_order 4 is the quartic B-spline (5-point support).
// spec.md §4.3 spells out the quadratic case in closed form
// (coefficients as functions of the fractional residual ξ); the
// quartic case is obtained from the same general cardinal B-spline
// formula rather than a second set of hand-transcribed magic
// constants, which is the shape-function family spec.md's "symmetric
// 2nd- or 4th-order shape function S(ξ)" describes either way.
package interpolate

import "math"

// Order is the configured interpolation order; spec.md §6 constrains
// it to {2,4}.
type Order int

const (
	Order2 Order = 2
	Order4 Order = 4
)

// supportPoints returns the number of grid nodes the shape function
// touches per axis: 3 for order 2, 5 for order 4.
func (o Order) supportPoints() int { return int(o) + 1 }

// HalfWidth returns (supportPoints-1)/2, the number of nodes on each
// side of the central node.
func (o Order) HalfWidth() int { return (o.supportPoints() - 1) / 2 }

// cardinalBSpline evaluates the centered cardinal B-spline of the
// given order (support width = order+1 points, degree = order) at x,
// via the Schoenberg closed form
//
//	B_n(x) = 1/(n-1)! * sum_{j=0}^{n} (-1)^j C(n,j) * max(0, x+n/2-j)^(n-1)
//
// with n = order+1.
func cardinalBSpline(order int, x float64) float64 {
	n := order + 1
	var sum float64
	sign := 1.0
	for j := 0; j <= n; j++ {
		t := x + float64(n)/2 - float64(j)
		if t > 0 {
			sum += sign * binomial(n, j) * math.Pow(t, float64(n-1))
		}
		sign = -sign
	}
	return sum / factorial(n-1)
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	return factorial(n) / (factorial(k) * factorial(n-k))
}

// AxisShape holds the per-axis interpolation anchor and shape
// coefficients computed at a particle position, and is kept around so
// internal/project can reuse the old/new shape coefficients for the
// Esirkepov current deposition without recomputing them (spec.md §4.3
// "Each particle's chosen (primal index, fractional residual) are
// stored for use by the projector.").
type AxisShape struct {
	BaseIndex int       // grid index of the lowest node touched (ghost-inclusive)
	Coeff     []float64 // length order.supportPoints()
	Xi        float64   // fractional residual used to build Coeff
}

// Shape computes the per-axis shape coefficients for a particle at
// normalized coordinate xn = x/dx, for a field staggered according to
// `dual` on this axis, and the ghost width `oversize` that must be
// added to translate a primal grid index into this field's
// ghost-inclusive array index.
func Shape(order Order, xn float64, dual bool, oversize int) AxisShape {
	var center int
	var xi float64
	if dual {
		center = int(math.Round(xn + 0.5))
		xi = xn - float64(center) + 0.5
	} else {
		center = int(math.Round(xn))
		xi = xn - float64(center)
	}
	half := order.HalfWidth()
	coeff := make([]float64, order.supportPoints())
	for k := -half; k <= half; k++ {
		coeff[k+half] = cardinalBSpline(int(order), xi-float64(k))
	}
	return AxisShape{BaseIndex: center - half + oversize, Coeff: coeff, Xi: xi}
}

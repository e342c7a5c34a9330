// Poisson.go solves the initial-field Poisson equation the Maxwell
// solver uses to seed E from a charge density snapshot at t=0 (spec.md
// §4.5 "On the first step... the electric field may instead be
// initialized by solving Poisson's equation"). Two branches are
// offered, selected per patch axis: an FFT branch for axes that are
// periodic on every axis, grounded directly on the teacher's
// SolvePoissonFFT (internal/physics/force_calculation.go, now removed,
// which already solved a structurally identical ∇²Φ=4πGρ via pkg/fft's
// go-dsp wrapper), and a conjugate-gradient branch via gonum/mat for
// the general d-dimensional case with non-periodic (reflecting/
// Silver-Muller) boundaries, where the FFT's implicit periodicity
// would be wrong. The CG branch's stencil generalizes the same way
// AdvanceFaraday's 1-D difference generalizes into faraday2D/faraday3D
// in yee.go: a flattened array plus a per-axis stride table standing
// in for what would be an MPI-reduced inner product across patches in
// a distributed build.
package maxwell

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/deveworld/picengine/internal/field"
	"github.com/deveworld/picengine/pkg/fft"
)

// SolvePoissonFFT2D solves ∇²Φ = -rho/eps0 (eps0=1) on a doubly
// periodic 2-D grid, the same spectral technique as the teacher's
// SolvePoissonFFT generalized from a gravitational source term to an
// electrostatic one (sign flip, no 4*pi*G prefactor). A 1-D periodic
// grid rides this same routine as a height-1 row.
func SolvePoissonFFT2D(rho [][]float64, dx, dy float64) [][]float64 {
	width := len(rho)
	height := len(rho[0])

	complexGrid := make([][]complex128, width)
	for i := range complexGrid {
		complexGrid[i] = make([]complex128, height)
		for j := range complexGrid[i] {
			complexGrid[i][j] = complex(rho[i][j], 0)
		}
	}

	fftGrid := fft.FFT2D(complexGrid)

	kxFactor := 2.0 * math.Pi / (float64(width) * dx)
	kyFactor := 2.0 * math.Pi / (float64(height) * dy)

	for u := 0; u < width; u++ {
		kx := float64(u)
		if u > width/2 {
			kx = float64(u - width)
		}
		for v := 0; v < height; v++ {
			ky := float64(v)
			if v > height/2 {
				ky = float64(v - height)
			}
			kSquared := (kx*kxFactor)*(kx*kxFactor) + (ky*kyFactor)*(ky*kyFactor)
			if kSquared == 0 {
				fftGrid[u][v] = 0
			} else {
				fftGrid[u][v] *= complex(1.0/kSquared, 0)
			}
		}
	}

	potentialComplex := fft.IFFT2D(fftGrid)
	potential := make([][]float64, width)
	for i := range potential {
		potential[i] = make([]float64, height)
		for j := range potential[i] {
			potential[i][j] = real(potentialComplex[i][j])
		}
	}
	return potential
}

// SolvePoissonCG solves the 1-D Poisson equation d2phi/dx2 = -rho on a
// grid with Dirichlet boundaries (phi=0 at both ends), for the
// non-periodic axes the FFT branch can't handle, via unpreconditioned
// conjugate gradient over gonum's dense linear algebra types.
func SolvePoissonCG(rho []float64, dx float64, tol float64, maxIter int) []float64 {
	n := len(rho)
	if n == 0 {
		return nil
	}
	h2 := dx * dx
	apply := func(x, out *mat.VecDense) {
		for i := 0; i < n; i++ {
			left, right := 0.0, 0.0
			if i > 0 {
				left = x.AtVec(i - 1)
			}
			if i < n-1 {
				right = x.AtVec(i + 1)
			}
			out.SetVec(i, (2*x.AtVec(i)-left-right)/h2)
		}
	}
	return conjugateGradient(n, rho, apply, tol, maxIter)
}

// SolvePoissonCGND is SolvePoissonCG generalized to d in {1,2,3}: rho
// is a flattened row-major array of shape dims, dx holds the spacing
// for each of those axes, and the Laplacian stencil sums one
// second-difference term per axis with Dirichlet (phi=0 outside the
// box) boundaries on every face.
func SolvePoissonCGND(rho []float64, dims []int, dx []float64, tol float64, maxIter int) []float64 {
	n := len(rho)
	if n == 0 {
		return nil
	}
	strides := ndStrides(dims)
	apply := ndLaplacianApply(dims, dx, strides)
	return conjugateGradient(n, rho, apply, tol, maxIter)
}

// conjugateGradient is the solver loop shared by SolvePoissonCG and
// SolvePoissonCGND: only the stencil (`apply`, the discrete Laplacian
// acting on a flattened vector) differs between 1-D and d-dimensional
// callers.
func conjugateGradient(n int, rho []float64, apply func(x, out *mat.VecDense), tol float64, maxIter int) []float64 {
	b := mat.NewVecDense(n, rho)
	x := mat.NewVecDense(n, nil)
	r := mat.NewVecDense(n, nil)
	r.CloneFromVec(b)
	p := mat.NewVecDense(n, nil)
	p.CloneFromVec(r)
	ap := mat.NewVecDense(n, nil)

	rsOld := mat.Dot(r, r)
	if rsOld < tol*tol {
		return x.RawVector().Data
	}
	for iter := 0; iter < maxIter; iter++ {
		apply(p, ap)
		denom := mat.Dot(p, ap)
		if denom == 0 {
			break
		}
		alpha := rsOld / denom
		x.AddScaledVec(x, alpha, p)
		r.AddScaledVec(r, -alpha, ap)
		rsNew := mat.Dot(r, r)
		if rsNew < tol*tol {
			break
		}
		beta := rsNew / rsOld
		p.AddScaledVec(r, beta, p)
		rsOld = rsNew
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x.AtVec(i)
	}
	return out
}

// ndStrides returns the row-major strides for a flattened array of
// shape dims.
func ndStrides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i]
	}
	return strides
}

// ndLaplacianApply builds the stencil SolvePoissonCGND hands to
// conjugateGradient: at each flattened index it sums, over every axis,
// a second-difference term with Dirichlet ends (a missing neighbor
// contributes 0, same convention as SolvePoissonCG's 1-D `left`/
// `right`).
func ndLaplacianApply(dims []int, dx []float64, strides []int) func(x, out *mat.VecDense) {
	n := 1
	for _, d := range dims {
		n *= d
	}
	coord := make([]int, len(dims))
	return func(x, out *mat.VecDense) {
		for off := 0; off < n; off++ {
			rem := off
			for a, s := range strides {
				coord[a] = rem / s
				rem %= s
			}
			var lap, diag float64
			for a, d := range dims {
				h2 := dx[a] * dx[a]
				diag += 2.0 / h2
				if coord[a] > 0 {
					lap -= x.AtVec(off-strides[a]) / h2
				}
				if coord[a] < d-1 {
					lap -= x.AtVec(off+strides[a]) / h2
				}
			}
			out.SetVec(off, diag*x.AtVec(off)+lap)
		}
	}
}

// InitializeFromRho solves the Poisson equation for the charge density
// currently stored in g.Rho and overwrites E (Ex/Ey/Ez) so the
// particle push's very first step sees a field consistent with the
// initial particle distribution rather than a cold-start zero field.
// periodic must hold one flag per axis (len(periodic) == len(g.Dx)).
//
// Two combinations are solved directly: every axis periodic (FFT, up
// to 2-D, since pkg/fft wraps go-dsp's FFT/FFT2 and go-dsp has no 3-D
// transform), and every axis bounded (conjugate gradient, 1-D to 3-D
// via SolvePoissonCG/SolvePoissonCGND). A mix of periodic and bounded
// axes, or a fully periodic 3-D grid, returns an error instead of
// silently leaving E untouched, so callers can detect the unsupported
// case rather than get a cold-start field they didn't ask for.
func (g *Grid) InitializeFromRho(periodic []bool, tol float64, maxIter int) error {
	dim := len(g.Dx)
	if len(periodic) != dim {
		return fmt.Errorf("maxwell: InitializeFromRho needs %d periodic flags (one per axis), got %d", dim, len(periodic))
	}

	lo, hi := g.Rho.InteriorBounds()
	dims := make([]int, dim)
	for a := 0; a < dim; a++ {
		dims[a] = hi[a] - lo[a]
	}

	allPeriodic, nonePeriodic := true, true
	for _, p := range periodic {
		if p {
			nonePeriodic = false
		} else {
			allPeriodic = false
		}
	}

	switch {
	case dim == 1 && periodic[0]:
		rho := rhoRow(g, lo, dims)
		phi := SolvePoissonFFT2D([][]float64{rho}, g.Dx[0], g.Dx[0])[0]
		applyGradient(g, func(coord []int) float64 { return phi[coord[0]] }, dims, lo, g.Dx, periodic)
		return nil

	case dim == 1 && !periodic[0]:
		rho := rhoRow(g, lo, dims)
		phi := SolvePoissonCG(rho, g.Dx[0], tol, maxIter)
		applyGradient(g, func(coord []int) float64 { return phi[coord[0]] }, dims, lo, g.Dx, periodic)
		return nil

	case allPeriodic && dim == 2:
		rho2D := make([][]float64, dims[0])
		for i := range rho2D {
			rho2D[i] = make([]float64, dims[1])
			for j := range rho2D[i] {
				rho2D[i][j] = g.Rho.At(lo[0]+i, lo[1]+j)
			}
		}
		phi := SolvePoissonFFT2D(rho2D, g.Dx[0], g.Dx[1])
		applyGradient(g, func(coord []int) float64 { return phi[coord[0]][coord[1]] }, dims, lo, g.Dx, periodic)
		return nil

	case nonePeriodic && dim <= 3:
		strides := ndStrides(dims)
		rho := flattenRho(g, lo, dims, strides)
		phi := SolvePoissonCGND(rho, dims, g.Dx, tol, maxIter)
		applyGradient(g, func(coord []int) float64 { return phi[flatten(coord, strides)] }, dims, lo, g.Dx, periodic)
		return nil

	default:
		return fmt.Errorf("maxwell: InitializeFromRho does not support a mix of periodic and bounded axes, or a fully periodic 3-D grid (pkg/fft has no 3-D transform); got periodic=%v", periodic)
	}
}

func rhoRow(g *Grid, lo, dims []int) []float64 {
	rho := make([]float64, dims[0])
	for i := 0; i < dims[0]; i++ {
		rho[i] = g.Rho.At(lo[0] + i)
	}
	return rho
}

func flattenRho(g *Grid, lo, dims, strides []int) []float64 {
	n := 1
	for _, d := range dims {
		n *= d
	}
	rho := make([]float64, n)
	coord := make([]int, len(dims))
	gridIdx := make([]int, len(dims))
	for off := 0; off < n; off++ {
		rem := off
		for a, s := range strides {
			coord[a] = rem / s
			rem %= s
			gridIdx[a] = lo[a] + coord[a]
		}
		rho[off] = g.Rho.At(gridIdx...)
	}
	return rho
}

func flatten(coord, strides []int) int {
	off := 0
	for a, s := range strides {
		off += coord[a] * s
	}
	return off
}

// applyGradient writes E's axis-`axis` component as -dphi/d(axis_a)
// via a centered difference, for every axis, walking the full dims
// box. A periodic axis wraps its neighbor lookup; a bounded axis
// leaves the two boundary layers untouched (E stays at its prior
// value there, consistent with the Dirichlet phi=0 condition the CG
// solve assumed).
func applyGradient(g *Grid, phiAt func(coord []int) float64, dims, lo []int, dx []float64, periodic []bool) {
	dim := len(dims)
	components := []*field.Field{g.Ex, g.Ey, g.Ez}
	coord := make([]int, dim)
	walkDims(dims, coord, 0, func() {
		for axis := 0; axis < dim; axis++ {
			lower := append([]int(nil), coord...)
			upper := append([]int(nil), coord...)
			switch {
			case coord[axis] == 0 && periodic[axis]:
				lower[axis] = dims[axis] - 1
			case coord[axis] == 0:
				continue
			default:
				lower[axis] = coord[axis] - 1
			}
			switch {
			case coord[axis] == dims[axis]-1 && periodic[axis]:
				upper[axis] = 0
			case coord[axis] == dims[axis]-1:
				continue
			default:
				upper[axis] = coord[axis] + 1
			}
			grad := (phiAt(upper) - phiAt(lower)) / (2 * dx[axis])
			gridIdx := make([]int, dim)
			for a := 0; a < dim; a++ {
				gridIdx[a] = lo[a] + coord[a]
			}
			components[axis].Set(-grad, gridIdx...)
		}
	})
}

func walkDims(dims, coord []int, axis int, visit func()) {
	if axis == len(dims) {
		visit()
		return
	}
	for v := 0; v < dims[axis]; v++ {
		coord[axis] = v
		walkDims(dims, coord, axis+1, visit)
	}
}

// Package maxwell advances the electromagnetic field on a Yee-staggered
// grid (spec.md §4.5): Faraday's law updates B at half time steps,
// Ampere's law updates E at full time steps using the deposited
// current, and B is kept time-centered by averaging consecutive
// half-step values ("B-centering").
//
// The leapfrog structure mirrors the teacher's TimeEvolution (see
// internal/physics/time_evolution.go, now removed, for the position/momentum
// leapfrog this generalizes to fields), generalized to the full
// curl-based Yee update that spec.md's equations 4.5.1-4.5.2
// prescribe instead of the teacher's gravitational force leapfrog.
package maxwell

import (
	"math"

	"github.com/deveworld/picengine/internal/field"
)

// Grid bundles the six EM field components plus current and charge
// density on one patch (spec.md §3 "Field").
type Grid struct {
	Ex, Ey, Ez *field.Field
	Bx, By, Bz *field.Field
	// Bx_m etc. hold the previous half-step B, averaged with the
	// current half-step to produce the time-centered B the
	// interpolator reads (spec.md §4.5 "B-centering").
	BxM, ByM, BzM *field.Field
	Jx, Jy, Jz    *field.Field
	Rho           *field.Field
	Dx            []float64
}

// NewGrid allocates every component with consistent staggering for a
// patch of the given interior cell counts and ghost width.
func NewGrid(dim int, nCells []int, oversize int, dx []float64) *Grid {
	dualAll := func(pattern []bool) []bool { return append([]bool(nil), pattern...) }
	// Staggering per spec.md §3: E components are dual on their own
	// axis and primal on the others; B components are primal on their
	// own axis and dual on the others.
	axisPattern := func(own int, dualOnOwn bool) []bool {
		p := make([]bool, dim)
		for i := range p {
			if i == own {
				p[i] = dualOnOwn
			} else {
				p[i] = !dualOnOwn
			}
		}
		return p
	}
	g := &Grid{Dx: append([]float64(nil), dx...)}
	if dim == 1 {
		g.Ex = field.New("Ex", []bool{false}, nCells, oversize)
		g.Ey = field.New("Ey", []bool{true}, nCells, oversize)
		g.Ez = field.New("Ez", []bool{true}, nCells, oversize)
		g.Bx = field.New("Bx", []bool{true}, nCells, oversize)
		g.By = field.New("By", []bool{false}, nCells, oversize)
		g.Bz = field.New("Bz", []bool{false}, nCells, oversize)
	} else {
		g.Ex = field.New("Ex", axisPattern(0, true), nCells, oversize)
		g.Ey = field.New("Ey", axisPattern(1, true), nCells, oversize)
		g.Ez = field.New("Ez", axisPattern(2, true), nCells, oversize)
		g.Bx = field.New("Bx", axisPattern(0, false), nCells, oversize)
		g.By = field.New("By", axisPattern(1, false), nCells, oversize)
		g.Bz = field.New("Bz", axisPattern(2, false), nCells, oversize)
	}
	g.BxM = field.New("Bx_m", dualAll(g.Bx.Dual), nCells, oversize)
	g.ByM = field.New("By_m", dualAll(g.By.Dual), nCells, oversize)
	g.BzM = field.New("Bz_m", dualAll(g.Bz.Dual), nCells, oversize)
	g.Jx = field.New("Jx", g.Ex.Dual, nCells, oversize)
	g.Jy = field.New("Jy", g.Ey.Dual, nCells, oversize)
	g.Jz = field.New("Jz", g.Ez.Dual, nCells, oversize)
	g.Rho = field.New("Rho", func() []bool {
		p := make([]bool, dim)
		return p
	}(), nCells, oversize)
	return g
}

// ResetCurrents zeros J and Rho before the next deposition pass
// (spec.md §4.9 "finalize_and_sort" calls this each step).
func (g *Grid) ResetCurrents() {
	g.Jx.PutToValue(0)
	g.Jy.PutToValue(0)
	g.Jz.PutToValue(0)
	g.Rho.PutToValue(0)
}

// SaveMagneticFields snapshots the current B before Faraday's update,
// so AdvanceFaraday can average the old and new half-steps afterward.
func (g *Grid) SaveMagneticFields() {
	copy(g.BxM.Raw(), g.Bx.Raw())
	copy(g.ByM.Raw(), g.By.Raw())
	copy(g.BzM.Raw(), g.Bz.Raw())
}

// CenterMagneticFields overwrites BxM/ByM/BzM in place with the
// average of the pre-update snapshot and the freshly advanced B,
// producing the time-centered field the particle push reads (spec.md
// §4.5 "the particle push reads the time-centered B, the average of
// the field's value before and after the Faraday update").
func (g *Grid) CenterMagneticFields() {
	center := func(m, cur *field.Field) {
		md, cd := m.Raw(), cur.Raw()
		for i := range md {
			md[i] = 0.5 * (md[i] + cd[i])
		}
	}
	center(g.BxM, g.Bx)
	center(g.ByM, g.By)
	center(g.BzM, g.Bz)
}

// FieldEnergy returns the electromagnetic energy stored in this
// patch's interior, integral((E^2+B^2)/2) dV, the spec.md §8 invariant
// 2 FieldEnergy term that tracks U_total alongside particle kinetic
// energy.
func (g *Grid) FieldEnergy() float64 {
	cellVolume := 1.0
	for _, dx := range g.Dx {
		cellVolume *= dx
	}
	sumSquares := func(f *field.Field) float64 {
		lo, hi := f.InteriorBounds()
		n := f.L2NormSubWindow(lo, hi)
		return n * n
	}
	total := sumSquares(g.Ex) + sumSquares(g.Ey) + sumSquares(g.Ez) +
		sumSquares(g.Bx) + sumSquares(g.By) + sumSquares(g.Bz)
	return 0.5 * cellVolume * total
}

// AdvanceFaraday advances B by a full step using curl(E) over the
// patch interior, one axis at a time (1D reduces to a single
// transverse pair, exercised by the d==1 case below; 2D/3D use the
// general curl stencil).
func (g *Grid) AdvanceFaraday(dt float64) {
	g.SaveMagneticFields()
	d := len(g.Dx)
	switch d {
	case 1:
		faraday1D(g, dt)
	case 2:
		faraday2D(g, dt)
	case 3:
		faraday3D(g, dt)
	}
	g.CenterMagneticFields()
}

func diff(f *field.Field, axis int, idx []int, h float64) float64 {
	lowered := append([]int(nil), idx...)
	lowered[axis]--
	return (f.At(idx...) - f.At(lowered...)) / h
}

func faraday1D(g *Grid, dt float64) {
	lo, hi := g.By.InteriorBounds()
	idx := make([]int, 1)
	for idx[0] = lo[0]; idx[0] < hi[0]; idx[0]++ {
		g.By.Add(dt*diff(g.Ez, 0, idx, g.Dx[0]), idx[0])
	}
	lo, hi = g.Bz.InteriorBounds()
	for idx[0] = lo[0]; idx[0] < hi[0]; idx[0]++ {
		g.Bz.Add(-dt*diff(g.Ey, 0, idx, g.Dx[0]), idx[0])
	}
}

func faraday2D(g *Grid, dt float64) {
	// dBx/dt = -dEz/dy ; dBy/dt = dEz/dx ; dBz/dt = dEx/dy - dEy/dx
	walk2D(g.Bx, func(idx []int) {
		g.Bx.Add(-dt*diff(g.Ez, 1, idx, g.Dx[1]), idx...)
	})
	walk2D(g.By, func(idx []int) {
		g.By.Add(dt*diff(g.Ez, 0, idx, g.Dx[0]), idx...)
	})
	walk2D(g.Bz, func(idx []int) {
		g.Bz.Add(dt*(diff(g.Ex, 1, idx, g.Dx[1])-diff(g.Ey, 0, idx, g.Dx[0])), idx...)
	})
}

func faraday3D(g *Grid, dt float64) {
	walk3D(g.Bx, func(idx []int) {
		g.Bx.Add(dt*(diff(g.Ey, 2, idx, g.Dx[2])-diff(g.Ez, 1, idx, g.Dx[1])), idx...)
	})
	walk3D(g.By, func(idx []int) {
		g.By.Add(dt*(diff(g.Ez, 0, idx, g.Dx[0])-diff(g.Ex, 2, idx, g.Dx[2])), idx...)
	})
	walk3D(g.Bz, func(idx []int) {
		g.Bz.Add(dt*(diff(g.Ex, 1, idx, g.Dx[1])-diff(g.Ey, 0, idx, g.Dx[0])), idx...)
	})
}

// AdvanceAmpere advances E by a full step using curl(B) - J/eps0,
// eps0 held at 1 in the normalized units spec.md §4.1 fixes (c=1).
func (g *Grid) AdvanceAmpere(dt float64) {
	d := len(g.Dx)
	switch d {
	case 1:
		ampere1D(g, dt)
	case 2:
		ampere2D(g, dt)
	case 3:
		ampere3D(g, dt)
	}
}

func ampere1D(g *Grid, dt float64) {
	lo, hi := g.Ey.InteriorBounds()
	idx := make([]int, 1)
	for idx[0] = lo[0]; idx[0] < hi[0]; idx[0]++ {
		curl := -diffForward(g.Bz, 0, idx, g.Dx[0])
		g.Ey.Add(dt*curl-dt*g.Jy.At(idx...), idx[0])
	}
	lo, hi = g.Ez.InteriorBounds()
	for idx[0] = lo[0]; idx[0] < hi[0]; idx[0]++ {
		curl := diffForward(g.By, 0, idx, g.Dx[0])
		g.Ez.Add(dt*curl-dt*g.Jz.At(idx...), idx[0])
	}
	lo, hi = g.Ex.InteriorBounds()
	for idx[0] = lo[0]; idx[0] < hi[0]; idx[0]++ {
		g.Ex.Add(-dt*g.Jx.At(idx...), idx[0])
	}
}

func diffForward(f *field.Field, axis int, idx []int, h float64) float64 {
	raised := append([]int(nil), idx...)
	raised[axis]++
	return (f.At(raised...) - f.At(idx...)) / h
}

func ampere2D(g *Grid, dt float64) {
	walk2D(g.Ex, func(idx []int) {
		g.Ex.Add(dt*diffForward(g.Bz, 1, idx, g.Dx[1])-dt*g.Jx.At(idx...), idx...)
	})
	walk2D(g.Ey, func(idx []int) {
		g.Ey.Add(-dt*diffForward(g.Bz, 0, idx, g.Dx[0])-dt*g.Jy.At(idx...), idx...)
	})
	walk2D(g.Ez, func(idx []int) {
		curl := diffForward(g.By, 0, idx, g.Dx[0]) - diffForward(g.Bx, 1, idx, g.Dx[1])
		g.Ez.Add(dt*curl-dt*g.Jz.At(idx...), idx...)
	})
}

func ampere3D(g *Grid, dt float64) {
	walk3D(g.Ex, func(idx []int) {
		curl := diffForward(g.Bz, 1, idx, g.Dx[1]) - diffForward(g.By, 2, idx, g.Dx[2])
		g.Ex.Add(dt*curl-dt*g.Jx.At(idx...), idx...)
	})
	walk3D(g.Ey, func(idx []int) {
		curl := diffForward(g.Bx, 2, idx, g.Dx[2]) - diffForward(g.Bz, 0, idx, g.Dx[0])
		g.Ey.Add(dt*curl-dt*g.Jy.At(idx...), idx...)
	})
	walk3D(g.Ez, func(idx []int) {
		curl := diffForward(g.By, 0, idx, g.Dx[0]) - diffForward(g.Bx, 1, idx, g.Dx[1])
		g.Ez.Add(dt*curl-dt*g.Jz.At(idx...), idx...)
	})
}

func walk2D(f *field.Field, fn func(idx []int)) {
	lo, hi := f.InteriorBounds()
	idx := make([]int, 2)
	for idx[0] = lo[0]; idx[0] < hi[0]; idx[0]++ {
		for idx[1] = lo[1]; idx[1] < hi[1]; idx[1]++ {
			fn(idx)
		}
	}
}

func walk3D(f *field.Field, fn func(idx []int)) {
	lo, hi := f.InteriorBounds()
	idx := make([]int, 3)
	for idx[0] = lo[0]; idx[0] < hi[0]; idx[0]++ {
		for idx[1] = lo[1]; idx[1] < hi[1]; idx[1]++ {
			for idx[2] = lo[2]; idx[2] < hi[2]; idx[2]++ {
				fn(idx)
			}
		}
	}
}

// CourantLimit returns the maximum stable dt for the given cell sizes
// under the Yee scheme's CFL condition (spec.md §4.1/§9: dt must
// satisfy the Courant condition, checked at startup).
func CourantLimit(dx []float64) float64 {
	var sumInvSq float64
	for _, h := range dx {
		sumInvSq += 1.0 / (h * h)
	}
	return 1.0 / math.Sqrt(sumInvSq)
}

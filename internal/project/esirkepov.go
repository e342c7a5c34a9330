// Package project implements the charge-conserving Esirkepov current
// projector (spec.md §4.4): for each particle, the current produced by
// its displacement from old to new position is deposited onto Jx, Jy,
// Jz so that the discrete continuity equation holds cell-wise, using
// the difference between the old and new shape functions integrated
// along the trajectory.
//
// There is no teacher code for this (the teacher's force_calculation.go
// uses a PM/FFT-Poisson solver, not a per-particle current
// deposition), so the structure follows spec.md §4.4's algorithm
// sketch directly, generalized from the worked 1-D case to 2-D/3-D
// with the standard Esirkepov cross terms (Esirkepov, Comp. Phys.
// Comm. 135 (2001)).
package project

import (
	"github.com/deveworld/picengine/internal/field"
	"github.com/deveworld/picengine/internal/interpolate"
)

// Trajectory is one particle's shape coefficients at its old and new
// position along every axis, plus its velocity and charge-weight, the
// minimum the projector needs. internal/species builds this from the
// same interpolate.AxisShape the interpolator already computed for
// push, per spec.md's note that old/new coefficients may be shared
// when positions coincide (frozen species).
type Trajectory struct {
	Dim      int
	Old, New []interpolate.AxisShape // length Dim
	Velocity [3]float64              // v_x, v_y, v_z (not momentum: already divided by gamma)
	Weight   float64
	Charge   float64
}

// Deposit projects one particle's trajectory onto Jx, Jy, Jz (and
// optionally Rho, when diagFlag is set, per spec.md §4.4's edge case).
// dx is the cell size per axis, dt the time step.
func Deposit(traj Trajectory, jx, jy, jz, rho *field.Field, dx []float64, dt float64, diagFlag bool) {
	q := traj.Charge * traj.Weight
	switch traj.Dim {
	case 1:
		deposit1D(traj, q, jx, jy, jz, dx[0], dt)
	case 2:
		deposit2D(traj, q, jx, jy, jz, dx, dt)
	case 3:
		deposit3D(traj, q, jx, jy, jz, dx, dt)
	default:
		panic("project.Deposit: unsupported dimensionality")
	}
	if diagFlag && rho != nil {
		depositRho(traj, q, rho)
	}
}

// unionRange merges two AxisShape supports (old and new) into one
// contiguous index range, since a particle crossing a cell boundary
// shifts its support by at most one node.
func unionRange(a, b interpolate.AxisShape) (lo, n int) {
	loA, hiA := a.BaseIndex, a.BaseIndex+len(a.Coeff)
	loB, hiB := b.BaseIndex, b.BaseIndex+len(b.Coeff)
	lo = min(loA, loB)
	hi := max(hiA, hiB)
	return lo, hi - lo
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// alignedCoeff returns the coefficient of AxisShape s at the global
// node index `node`, 0 if out of its support.
func alignedCoeff(s interpolate.AxisShape, node int) float64 {
	k := node - s.BaseIndex
	if k < 0 || k >= len(s.Coeff) {
		return 0
	}
	return s.Coeff[k]
}

// deposit1D implements spec.md §4.4's worked algorithm exactly:
// W_l = S0-S1, prefix-summed into Jx; transverse components use the
// average shape S0+S1)/2 weighted by velocity.
func deposit1D(traj Trajectory, q float64, jx, jy, jz *field.Field, dxAxis, dt float64) {
	lo, n := unionRange(traj.Old[0], traj.New[0])
	wl := make([]float64, n)
	wt := make([]float64, n)
	for k := 0; k < n; k++ {
		node := lo + k
		s0 := alignedCoeff(traj.Old[0], node)
		s1 := alignedCoeff(traj.New[0], node)
		wl[k] = s0 - s1
		wt[k] = 0.5 * (s0 + s1)
	}

	// lo is already ghost-inclusive: AxisShape.BaseIndex folds in Oversize.
	factor := q * dxAxis / dt
	var acc float64
	for k := 0; k < n; k++ {
		acc += factor * wl[k]
		jx.Add(acc, lo+k)
	}
	for k := 0; k < n; k++ {
		node := lo + k
		jy.Add(q*traj.Velocity[1]*wt[k], node)
		jz.Add(q*traj.Velocity[2]*wt[k], node)
	}
}

// deposit2D follows Esirkepov's published cross-term formulas for the
// x/y plane; Jz uses the symmetric three-term transverse weight.
func deposit2D(traj Trajectory, q float64, jx, jy, jz *field.Field, dx []float64, dt float64) {
	loX, nX := unionRange(traj.Old[0], traj.New[0])
	loY, nY := unionRange(traj.Old[1], traj.New[1])

	dsx := make([]float64, nX)
	s0x := make([]float64, nX)
	for i := 0; i < nX; i++ {
		node := loX + i
		s0x[i] = alignedCoeff(traj.Old[0], node)
		dsx[i] = alignedCoeff(traj.New[0], node) - s0x[i]
	}
	dsy := make([]float64, nY)
	s0y := make([]float64, nY)
	for j := 0; j < nY; j++ {
		node := loY + j
		s0y[j] = alignedCoeff(traj.Old[1], node)
		dsy[j] = alignedCoeff(traj.New[1], node) - s0y[j]
	}

	wx := make([][]float64, nX)
	wy := make([][]float64, nX)
	wz := make([][]float64, nX)
	for i := range wx {
		wx[i] = make([]float64, nY)
		wy[i] = make([]float64, nY)
		wz[i] = make([]float64, nY)
	}
	for i := 0; i < nX; i++ {
		for j := 0; j < nY; j++ {
			wx[i][j] = dsx[i] * (s0y[j] + 0.5*dsy[j])
			wy[i][j] = dsy[j] * (s0x[i] + 0.5*dsx[i])
			wz[i][j] = s0x[i]*s0y[j] + 0.5*dsx[i]*s0y[j] + 0.5*s0x[i]*dsy[j] + (1.0/3.0)*dsx[i]*dsy[j]
		}
	}

	// Jx: prefix sum along x for each y column.
	factorX := -q * dx[0] / dt
	for j := 0; j < nY; j++ {
		var acc float64
		for i := 0; i < nX; i++ {
			acc += factorX * wx[i][j]
			jx.Add(acc, loX+i, loY+j)
		}
	}
	// Jy: prefix sum along y for each x row.
	factorY := -q * dx[1] / dt
	for i := 0; i < nX; i++ {
		var acc float64
		for j := 0; j < nY; j++ {
			acc += factorY * wy[i][j]
			jy.Add(acc, loX+i, loY+j)
		}
	}
	// Jz: transverse, weighted by v_z.
	for i := 0; i < nX; i++ {
		for j := 0; j < nY; j++ {
			jz.Add(q*traj.Velocity[2]*wz[i][j], loX+i, loY+j)
		}
	}
}

// deposit3D generalizes the 2D cross terms with the third axis
// treated symmetrically; Jx/Jy/Jz each prefix-sum along their own
// axis through the product of the other two axes' averaged shapes.
func deposit3D(traj Trajectory, q float64, jx, jy, jz *field.Field, dx []float64, dt float64) {
	lo := make([]int, 3)
	n := make([]int, 3)
	s0 := make([][]float64, 3)
	ds := make([][]float64, 3)
	for a := 0; a < 3; a++ {
		lo[a], n[a] = unionRange(traj.Old[a], traj.New[a])
		s0[a] = make([]float64, n[a])
		ds[a] = make([]float64, n[a])
		for k := 0; k < n[a]; k++ {
			node := lo[a] + k
			s0[a][k] = alignedCoeff(traj.Old[a], node)
			ds[a][k] = alignedCoeff(traj.New[a], node) - s0[a][k]
		}
	}
	avg := func(axis, k int) float64 { return s0[axis][k] + 0.5*ds[axis][k] }

	targets := [3]*field.Field{jx, jy, jz}
	for longAxis := 0; longAxis < 3; longAxis++ {
		tA, tB := (longAxis+1)%3, (longAxis+2)%3
		factor := -q * dx[longAxis] / dt
		for ib := 0; ib < n[tB]; ib++ {
			for ia := 0; ia < n[tA]; ia++ {
				w := avg(tA, ia) * avg(tB, ib)
				var acc float64
				idx := [3]int{}
				idx[tA] = lo[tA] + ia
				idx[tB] = lo[tB] + ib
				for il := 0; il < n[longAxis]; il++ {
					acc += factor * ds[longAxis][il] * w
					idx[longAxis] = lo[longAxis] + il
					targets[longAxis].Add(acc, idx[0], idx[1], idx[2])
				}
			}
		}
	}
}

func depositRho(traj Trajectory, q float64, rho *field.Field) {
	idx := make([]int, traj.Dim)
	depositRhoAxis(traj, q, rho, idx, 0, 1.0)
}

func depositRhoAxis(traj Trajectory, q float64, rho *field.Field, idx []int, axis int, weight float64) {
	if axis == traj.Dim {
		rho.Add(weight*q, idx...)
		return
	}
	s := traj.New[axis]
	for k, c := range s.Coeff {
		idx[axis] = s.BaseIndex + k
		depositRhoAxis(traj, q, rho, idx, axis+1, weight*c)
	}
}

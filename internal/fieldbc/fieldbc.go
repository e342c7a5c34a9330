// Package fieldbc implements the field boundary conditions spec.md
// §4.6 names: periodic, Silver-Muller (absorbing), reflecting, Buneman
// (absorbing, cheaper than Silver-Muller), and laser source injection.
// Periodic boundaries need no code here: they are handled entirely by
// internal/patch's neighbor table wrapping around, so this package
// only has to cover the boundary patches that border the true domain
// edge.
package fieldbc

import (
	"fmt"

	"github.com/deveworld/picengine/internal/field"
)

// Kind enumerates the boundary condition families spec.md §6's
// "boundary_conditions" config block selects between, per domain edge.
type Kind int

const (
	Periodic Kind = iota
	SilverMuller
	Reflecting
	Buneman
)

func ParseKind(s string) (Kind, error) {
	switch s {
	case "periodic":
		return Periodic, nil
	case "silver-muller":
		return SilverMuller, nil
	case "reflective":
		return Reflecting, nil
	case "buneman":
		return Buneman, nil
	default:
		return 0, fmt.Errorf("fieldbc: unknown boundary condition %q", s)
	}
}

// Side identifies the lower (min) or upper (max) edge of an axis.
type Side int

const (
	Min Side = iota
	Max
)

// LaserSource is the time-dependent field an antenna/laser boundary
// injects, evaluated once per step (spec.md §6 "Laser" block).
type LaserSource struct {
	// Profile returns the transverse E amplitude at time t.
	Profile func(t float64) float64
}

// ApplyReflecting enforces E_tangential=0, B_normal=0 at a reflecting
// wall by mirroring the ghost cells with a sign flip, the discrete
// analogue of a perfect electric conductor boundary.
func ApplyReflecting(f *field.Field, axis int, side Side, tangential bool) {
	lo, hi := f.InteriorBounds()
	width := f.Oversize
	idx := make([]int, f.Dim())
	var boundary int
	if side == Min {
		boundary = lo[axis]
	} else {
		boundary = hi[axis] - 1
	}
	sign := 1.0
	if tangential {
		sign = -1.0
	}
	walkGhosts(f, axis, side, width, idx, func(ghostIdx []int, depth int) {
		mirrorIdx := append([]int(nil), ghostIdx...)
		if side == Min {
			mirrorIdx[axis] = boundary + (depth - 1)
		} else {
			mirrorIdx[axis] = boundary - (depth - 1)
		}
		f.Set(sign*f.At(mirrorIdx...), ghostIdx...)
	})
}

// walkGhosts visits every ghost-cell index on the given side of axis,
// calling fn with the ghost index and its depth (1-based distance from
// the interior boundary) along every combination of the other axes.
func walkGhosts(f *field.Field, axis int, side Side, width int, idx []int, fn func(ghostIdx []int, depth int)) {
	dims := f.Dims()
	lo, hi := f.InteriorBounds()
	others := make([]int, 0, f.Dim()-1)
	for a := 0; a < f.Dim(); a++ {
		if a != axis {
			others = append(others, a)
		}
	}
	var visit func(pos int)
	visit = func(pos int) {
		if pos == len(others) {
			for depth := 1; depth <= width; depth++ {
				ghostIdx := append([]int(nil), idx...)
				if side == Min {
					ghostIdx[axis] = lo[axis] - depth
				} else {
					ghostIdx[axis] = hi[axis] - 1 + depth
				}
				fn(ghostIdx, depth)
			}
			return
		}
		a := others[pos]
		for v := 0; v < dims[a]; v++ {
			idx[a] = v
			visit(pos + 1)
		}
	}
	visit(0)
}

// ApplySilverMuller applies the first-order absorbing boundary
// condition on the field's outermost interior node along the normal
// axis (ghost cells are not written): it advects the
// outgoing characteristic field combination (E - cB, for a
// right-going wave) so that waves leaving the domain are not
// reflected back in, approximating an open boundary.
func ApplySilverMuller(eTangential, bNormalPair *field.Field, axis int, side Side, dt, dx float64) {
	lo, hi := eTangential.InteriorBounds()
	var boundary int
	if side == Min {
		boundary = lo[axis]
	} else {
		boundary = hi[axis] - 1
	}
	idx := make([]int, eTangential.Dim())
	walkBoundaryPlane(eTangential, axis, idx, func() {
		idx[axis] = boundary
		e := eTangential.At(idx...)
		b := bNormalPair.At(idx...)
		var outgoing float64
		if side == Min {
			outgoing = e + b
		} else {
			outgoing = e - b
		}
		// Damp the outward characteristic toward zero at the boundary
		// node, the standard first-order Silver-Muller relaxation.
		coef := dt / dx
		eTangential.Set(e-coef*outgoing, idx...)
	})
}

func walkBoundaryPlane(f *field.Field, axis int, idx []int, fn func()) {
	dims := f.Dims()
	others := make([]int, 0, f.Dim()-1)
	for a := 0; a < f.Dim(); a++ {
		if a != axis {
			others = append(others, a)
		}
	}
	var visit func(pos int)
	visit = func(pos int) {
		if pos == len(others) {
			fn()
			return
		}
		a := others[pos]
		for v := 0; v < dims[a]; v++ {
			idx[a] = v
			visit(pos + 1)
		}
	}
	visit(0)
}

// ApplyBuneman is the cheaper, purely-local absorbing condition
// spec.md §4.6 lists alongside Silver-Muller: it simply extrapolates
// the ghost value from the boundary without solving a characteristic
// equation, trading accuracy for cost.
func ApplyBuneman(f *field.Field, axis int, side Side) {
	lo, hi := f.InteriorBounds()
	var boundary int
	if side == Min {
		boundary = lo[axis]
	} else {
		boundary = hi[axis] - 1
	}
	idx := make([]int, f.Dim())
	walkGhosts(f, axis, side, f.Oversize, idx, func(ghostIdx []int, depth int) {
		boundaryIdx := append([]int(nil), ghostIdx...)
		boundaryIdx[axis] = boundary
		f.Set(f.At(boundaryIdx...), ghostIdx...)
	})
}

// InjectLaser adds the antenna's transverse field contribution at the
// domain boundary for the current time, per spec.md §6's Laser
// profile/time-envelope fields.
func InjectLaser(f *field.Field, axis int, side Side, src LaserSource, t float64) {
	lo, hi := f.InteriorBounds()
	var boundary int
	if side == Min {
		boundary = lo[axis]
	} else {
		boundary = hi[axis] - 1
	}
	idx := make([]int, f.Dim())
	amplitude := src.Profile(t)
	walkBoundaryPlane(f, axis, idx, func() {
		idx[axis] = boundary
		f.Add(amplitude, idx...)
	})
}

// Package field implements the dense N-D Yee-staggered field array
// described in spec.md §3/§4.2: a cache-friendly flat array per
// scalar field, ghost cells of configurable width surrounding the
// interior, and the per-axis primal/dual sampling flag fixed at
// construction. Generalizes the teacher's [][]float64 grids
// (internal/physics/force_calculation.go's AccelFieldX/Z, now removed) from a
// fixed 2-D slice-of-slices into an owned flat buffer addressable in
// 1, 2 or 3 dimensions with explicit strides, which is what lets
// Field support d in {1,2,3} uniformly and what the MPI ghost-slab
// exchange in internal/patch needs (a contiguous byte range per
// slab, not a jagged slice).
package field

import (
	"fmt"
	"math"
)

// Field is one scalar component (Ex, By, Jz, rho, ...) on the local
// patch grid, including its ghost cells.
type Field struct {
	Name string

	// Dual[i] is true if this field samples at the half-shifted node
	// on axis i (dual), false for the integer node (primal). Fixed at
	// construction (spec.md §3).
	Dual []bool

	// NCells[i] is the number of primal cells the patch owns along
	// axis i (not counting ghosts): a primal field has NCells[i]+1
	// samples along that axis, a dual field has NCells[i].
	NCells []int

	// Oversize is the ghost width, uniform across axes and fields on
	// a given patch (spec.md: "All fields share identical ghost
	// depth").
	Oversize int

	dims    []int // full per-axis extent including ghosts
	strides []int // row-major strides over dims
	data    []float64
}

// New allocates a Field with the given name, dual flags and interior
// cell counts, and a ghost width of `oversize` on every side of every
// axis.
func New(name string, dual []bool, nCells []int, oversize int) *Field {
	d := len(dual)
	if len(nCells) != d {
		panic("field.New: dual and nCells length mismatch")
	}
	dims := make([]int, d)
	for i := 0; i < d; i++ {
		n := nCells[i]
		if dual[i] {
			// dual sample sits at cell centers: n samples
		} else {
			n++ // primal: n+1 node samples
		}
		dims[i] = n + 2*oversize
	}
	strides := make([]int, d)
	acc := 1
	for i := d - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i]
	}
	return &Field{
		Name:     name,
		Dual:     append([]bool(nil), dual...),
		NCells:   append([]int(nil), nCells...),
		Oversize: oversize,
		dims:     dims,
		strides:  strides,
		data:     make([]float64, acc),
	}
}

// Dim returns the number of axes.
func (f *Field) Dim() int { return len(f.dims) }

// Dims returns the full per-axis extent including ghosts.
func (f *Field) Dims() []int { return append([]int(nil), f.dims...) }

func (f *Field) offset(idx []int) int {
	off := 0
	for i, v := range idx {
		if v < 0 || v >= f.dims[i] {
			panic(fmt.Sprintf("field %q: index %v out of range %v", f.Name, idx, f.dims))
		}
		off += v * f.strides[i]
	}
	return off
}

// At returns the value at the given ghost-inclusive index tuple.
func (f *Field) At(idx ...int) float64 {
	return f.data[f.offset(idx)]
}

// Set stores a value at the given ghost-inclusive index tuple.
func (f *Field) Set(v float64, idx ...int) {
	f.data[f.offset(idx)] = v
}

// Add accumulates a value at the given ghost-inclusive index tuple;
// used by the Esirkepov projector and by additive ghost-cell exchange
// (spec.md §4.8 current-summation variant).
func (f *Field) Add(v float64, idx ...int) {
	f.data[f.offset(idx)] += v
}

// Raw exposes the backing flat buffer for bulk operations (ghost slab
// copies, FFT packing). Callers must respect Dims()/strides; this
// exists so internal/field's own MPI-buffer code and internal/patch's
// exchange code can avoid per-element bounds checks in hot paths.
func (f *Field) Raw() []float64 { return f.data }

// PutToValue sets every element, ghosts included, to v.
func (f *Field) PutToValue(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// L2NormSubWindow returns sqrt(sum(f[idx]^2)) over the closed-open
// box [lo[i], hi[i]) on every axis, e.g. restricted to the interior
// (excluding ghosts) by passing lo=Oversize, hi=Oversize+NCells(+1).
func (f *Field) L2NormSubWindow(lo, hi []int) float64 {
	var sum float64
	idx := make([]int, len(lo))
	copy(idx, lo)
	f.walk(lo, hi, idx, 0, func(off int) {
		v := f.data[off]
		sum += v * v
	})
	return math.Sqrt(sum)
}

func (f *Field) walk(lo, hi, idx []int, axis int, visit func(off int)) {
	if axis == len(idx) {
		visit(f.offset(idx))
		return
	}
	for v := lo[axis]; v < hi[axis]; v++ {
		idx[axis] = v
		f.walk(lo, hi, idx, axis+1, visit)
	}
}

// InteriorBounds returns the [lo, hi) index box of the interior
// (non-ghost) region.
func (f *Field) InteriorBounds() (lo, hi []int) {
	d := f.Dim()
	lo = make([]int, d)
	hi = make([]int, d)
	for i := 0; i < d; i++ {
		lo[i] = f.Oversize
		hi[i] = f.dims[i] - f.Oversize
	}
	return lo, hi
}

// ShiftAlongAxis translates the field's content by `n` cells along
// `axis` (n>0 shifts toward higher index), used by the moving window
// (spec.md §1/§3). Cells vacated at the trailing edge are zeroed; the
// caller (internal/patch) is responsible for injecting fresh
// particles/fields at the new inlet.
func (f *Field) ShiftAlongAxis(axis, n int) {
	if n == 0 {
		return
	}
	d := f.Dim()
	newData := make([]float64, len(f.data))
	srcIdx := make([]int, d)
	copyRec(f, newData, srcIdx, 0, axis, n)
	f.data = newData
}

func copyRec(f *Field, dst []float64, idx []int, axis int, shiftAxis, shiftN int) {
	d := f.Dim()
	if axis == d {
		off := f.offset(idx)
		destIdx := append([]int(nil), idx...)
		destIdx[shiftAxis] += shiftN
		if destIdx[shiftAxis] < 0 || destIdx[shiftAxis] >= f.dims[shiftAxis] {
			return
		}
		var destOff int
		for i, v := range destIdx {
			destOff += v * f.strides[i]
		}
		dst[destOff] = f.data[off]
		return
	}
	for v := 0; v < f.dims[axis]; v++ {
		idx[axis] = v
		copyRec(f, dst, idx, axis+1, shiftAxis, shiftN)
	}
}

// Push copies values from a smaller, patch-local field `src` into
// this (larger, compound) field at the given per-axis offset. Pull is
// the inverse. Together they implement spec.md §4.2's "push/pull that
// copy between a smaller patch-local field and a larger compound
// field at a designated offset" — used when assembling/disassembling
// the global diagnostic field from per-patch pieces.
func (f *Field) Push(src *Field, offset []int) {
	transfer(src, f, offset, true)
}

// Pull is the inverse of Push: copies from this (compound) field into
// the smaller patch-local field dst at the given offset.
func (f *Field) Pull(dst *Field, offset []int) {
	transfer(dst, f, offset, false)
}

func transfer(small, big *Field, offset []int, smallToBig bool) {
	lo, hi := small.InteriorBounds()
	d := small.Dim()
	idx := make([]int, d)
	walkBox(lo, hi, idx, 0, func() {
		bigIdx := make([]int, d)
		for i := 0; i < d; i++ {
			bigIdx[i] = idx[i] - small.Oversize + offset[i] + big.Oversize
		}
		if smallToBig {
			big.Set(small.At(idx...), bigIdx...)
		} else {
			small.Set(big.At(bigIdx...), idx...)
		}
	})
}

func walkBox(lo, hi, idx []int, axis int, visit func()) {
	if axis == len(idx) {
		visit()
		return
	}
	for v := lo[axis]; v < hi[axis]; v++ {
		idx[axis] = v
		walkBox(lo, hi, idx, axis+1, visit)
	}
}

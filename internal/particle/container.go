// Package particle implements the structure-of-arrays particle
// container described in spec.md §3/§4.1. It generalizes the
// teacher's per-particle *Particle struct
// (internal/physics/particle.go, now removed, in the original relativity_simul
// repo) into parallel component slices with no per-particle pointers,
// plus the bin-indexed (bmin/bmax) partitioning the Esirkepov
// projector and the cache-friendly per-cluster iteration rely on.
package particle

import "fmt"

// Container is one species' population within one patch: parallel
// component vectors, no pointers per particle (spec.md §3).
type Container struct {
	Dim int // spatial dimensionality d of Position

	Position [][]float64 // Position[axis][i], axis in [0,Dim)
	Momentum [3][]float64 // Momentum[axis][i], always 3 components
	Weight   []float64
	Charge   []float64 // macro-particle charge; 0 marks a removed particle (spec.md §4.7)

	Chi []float64 // quantum parameter, only allocated for radiating species
	Tau []float64 // Monte-Carlo optical depth, only allocated when MC radiation/ionization is active

	// Bin index: bmin[b] <= i < bmax[b] partitions the container into
	// clusters of clrw cells along axis 0 (spec.md §3/§4.1).
	BinMin []int
	BinMax []int
}

// New allocates an empty container for the given spatial dimension.
func New(dim int) *Container {
	c := &Container{Dim: dim}
	c.Position = make([][]float64, dim)
	return c
}

// Size returns the number of live particle slots (including any not
// yet compacted after a removal — callers that need the true live
// count after boundary processing should compact first via Erase).
func (c *Container) Size() int {
	return len(c.Weight)
}

// EnableChi allocates the chi (quantum parameter) array lazily, for
// species with a radiation_model other than none.
func (c *Container) EnableChi() {
	if c.Chi == nil {
		c.Chi = make([]float64, c.Size())
	}
}

// EnableTau allocates the tau (optical depth) array lazily, for
// species using Monte-Carlo radiation or multiphoton Breit-Wheeler.
func (c *Container) EnableTau() {
	if c.Tau == nil {
		c.Tau = make([]float64, c.Size())
	}
}

// PushBack appends one new particle with the given properties.
// Appending never invalidates the indices of existing particles
// (spec.md §4.1): it only grows the backing slices.
func (c *Container) PushBack(pos []float64, mom [3]float64, weight, charge float64) {
	if len(pos) != c.Dim {
		panic(fmt.Sprintf("particle.Container: position has %d components, want %d", len(pos), c.Dim))
	}
	for axis := 0; axis < c.Dim; axis++ {
		c.Position[axis] = append(c.Position[axis], pos[axis])
	}
	for axis := 0; axis < 3; axis++ {
		c.Momentum[axis] = append(c.Momentum[axis], mom[axis])
	}
	c.Weight = append(c.Weight, weight)
	c.Charge = append(c.Charge, charge)
	if c.Chi != nil {
		c.Chi = append(c.Chi, 0)
	}
	if c.Tau != nil {
		c.Tau = append(c.Tau, 0)
	}
}

// Erase removes particle indices in the sorted, deduplicated index
// list `idx` by shifting tail particles leftward (compaction). The
// caller must recompute bmin/bmax after calling Erase, per spec.md
// §4.1.
func (c *Container) Erase(idx []int) {
	if len(idx) == 0 {
		return
	}
	remove := make(map[int]bool, len(idx))
	for _, i := range idx {
		remove[i] = true
	}
	write := 0
	n := c.Size()
	for read := 0; read < n; read++ {
		if remove[read] {
			continue
		}
		if write != read {
			for axis := 0; axis < c.Dim; axis++ {
				c.Position[axis][write] = c.Position[axis][read]
			}
			for axis := 0; axis < 3; axis++ {
				c.Momentum[axis][write] = c.Momentum[axis][read]
			}
			c.Weight[write] = c.Weight[read]
			c.Charge[write] = c.Charge[read]
			if c.Chi != nil {
				c.Chi[write] = c.Chi[read]
			}
			if c.Tau != nil {
				c.Tau[write] = c.Tau[read]
			}
		}
		write++
	}
	c.truncate(write)
}

func (c *Container) truncate(n int) {
	for axis := 0; axis < c.Dim; axis++ {
		c.Position[axis] = c.Position[axis][:n]
	}
	for axis := 0; axis < 3; axis++ {
		c.Momentum[axis] = c.Momentum[axis][:n]
	}
	c.Weight = c.Weight[:n]
	c.Charge = c.Charge[:n]
	if c.Chi != nil {
		c.Chi = c.Chi[:n]
	}
	if c.Tau != nil {
		c.Tau = c.Tau[:n]
	}
}

// EraseMarked removes every particle whose Charge has been set to
// zero by a Remove boundary condition (spec.md §4.7), compacting in
// place. Frozen-at-zero-charge particles that were *born* with zero
// charge do not exist (charge is always nonzero at creation), so this
// is an unambiguous removal marker.
func (c *Container) EraseMarked() int {
	idx := make([]int, 0)
	for i, q := range c.Charge {
		if q == 0 {
			idx = append(idx, i)
		}
	}
	c.Erase(idx)
	return len(idx)
}

// RebuildBins partitions the container into bins of `clrw` cells
// along axis 0, given each particle's axis-0 cell width dx. Particles
// must already be sorted by position along axis 0 for the resulting
// bmin/bmax to be contiguous (callers sort before calling this; see
// internal/species.Sort).
func (c *Container) RebuildBins(clrw int, dx float64, nCellsAxis0 int) {
	nBins := (nCellsAxis0 + clrw - 1) / clrw
	c.BinMin = make([]int, nBins)
	c.BinMax = make([]int, nBins)
	n := c.Size()
	i := 0
	for b := 0; b < nBins; b++ {
		c.BinMin[b] = i
		cellHi := float64((b + 1) * clrw)
		for i < n && c.Position[0][i]/dx < cellHi {
			i++
		}
		c.BinMax[b] = i
	}
	if nBins > 0 {
		c.BinMin[0] = 0
		c.BinMax[nBins-1] = n
	}
}

package patch

import (
	"sync"
	"testing"

	"github.com/deveworld/picengine/internal/comm"
	"github.com/deveworld/picengine/internal/fieldbc"
	"github.com/deveworld/picengine/internal/particlebc"
	"github.com/deveworld/picengine/internal/species"
)

// TestExchangeGhostsCopiesAcrossTwoPatches sets up two patches
// side-by-side along axis 0 and checks that after ExchangeGhosts, each
// patch's ghost cells hold the neighbor's boundary-adjacent interior
// values (spec.md §4.8's field exchange protocol).
func TestExchangeGhostsCopiesAcrossTwoPatches(t *testing.T) {
	c := comm.New(2)
	oversize := 1
	nCells := []int{4}
	dx := []float64{1.0}

	p0 := New(0, 0, 1, nCells, oversize, dx)
	p1 := New(1, 1, 1, nCells, oversize, dx)
	// Side-by-side topology (no wraparound): p0's upper neighbor is p1,
	// p1's lower neighbor is p0.
	p0.Neighbor[0] = [2]int{NoNeighbor, 1}
	p1.Neighbor[0] = [2]int{0, NoNeighbor}

	lo0, hi0 := p0.Grid.Ex.InteriorBounds()
	p0.Grid.Ex.Set(9.0, hi0[0]-1)
	lo1, _ := p1.Grid.Ex.InteriorBounds()
	p1.Grid.Ex.Set(3.0, lo1[0])

	var wg sync.WaitGroup
	wg.Add(2)
	var err0, err1 error
	go func() { defer wg.Done(); err0 = p0.ExchangeGhosts(c, oversize) }()
	go func() { defer wg.Done(); err1 = p1.ExchangeGhosts(c, oversize) }()
	wg.Wait()

	if err0 != nil || err1 != nil {
		t.Fatalf("exchange errors: %v, %v", err0, err1)
	}

	if got := p0.Grid.Ex.At(hi0[0]); got != 3.0 {
		t.Fatalf("p0's upper ghost = %f, want 3.0 (copied from p1's boundary)", got)
	}
	if got := p1.Grid.Ex.At(lo1[0] - 1); got != 9.0 {
		t.Fatalf("p1's lower ghost = %f, want 9.0 (copied from p0's boundary)", got)
	}
	_ = lo0
}

func TestSumDensitiesAddsAcrossPatches(t *testing.T) {
	c := comm.New(2)
	oversize := 1
	nCells := []int{4}
	dx := []float64{1.0}

	p0 := New(0, 0, 1, nCells, oversize, dx)
	p1 := New(1, 1, 1, nCells, oversize, dx)
	p0.Neighbor[0] = [2]int{NoNeighbor, 1}
	p1.Neighbor[0] = [2]int{0, NoNeighbor}

	_, hi0 := p0.Grid.Jx.InteriorBounds()
	p0.Grid.Jx.Set(2.0, hi0[0]-1)
	lo1, _ := p1.Grid.Jx.InteriorBounds()
	p1.Grid.Jx.Set(5.0, lo1[0]-1) // p1's lower ghost already has partial deposit

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = p0.SumDensities(c, oversize) }()
	go func() { defer wg.Done(); _ = p1.SumDensities(c, oversize) }()
	wg.Wait()

	if got := p1.Grid.Jx.At(lo1[0] - 1); got != 7.0 {
		t.Fatalf("p1 ghost after additive sum = %f, want 7.0", got)
	}
}

// TestExchangeParticlesMovesParticleAcrossPatchBoundary sets up two
// patches side by side along axis 0, places a particle just past p0's
// upper wall, and checks it lands in p1's container with a
// local-frame position near p1's lower wall (spec.md §4.8's particle
// exchange protocol).
func TestExchangeParticlesMovesParticleAcrossPatchBoundary(t *testing.T) {
	c := comm.New(2)
	nCells := []int{4}
	dx := []float64{1.0}

	p0 := New(0, 0, 1, nCells, 1, dx)
	p1 := New(1, 1, 1, nCells, 1, dx)
	p0.Neighbor[0] = [2]int{NoNeighbor, 1}
	p1.Neighbor[0] = [2]int{0, NoNeighbor}

	s0 := species.New("electron", 1, 1.0, -1.0)
	s0.Container.PushBack([]float64{4.5}, [3]float64{1, 0, 0}, 1.0, -1.0) // past p0's domainMax of 4.0
	p0.Species = []*species.Species{s0}
	s1 := species.New("electron", 1, 1.0, -1.0)
	p1.Species = []*species.Species{s1}

	var wg sync.WaitGroup
	wg.Add(2)
	var err0, err1 error
	go func() { defer wg.Done(); err0 = p0.ExchangeParticles(c) }()
	go func() { defer wg.Done(); err1 = p1.ExchangeParticles(c) }()
	wg.Wait()

	if err0 != nil || err1 != nil {
		t.Fatalf("exchange errors: %v, %v", err0, err1)
	}
	if s0.Container.Size() != 0 {
		t.Fatalf("p0 still holds the exported particle: size %d", s0.Container.Size())
	}
	if s1.Container.Size() != 1 {
		t.Fatalf("p1 did not receive the particle: size %d", s1.Container.Size())
	}
	if got := s1.Container.Position[0][0]; got != 0.5 {
		t.Fatalf("imported position = %f, want 0.5 (4.5 - domainMax 4.0)", got)
	}
}

// TestApplyParticleBoundariesReflectsAtDomainEdge checks that a
// species configured with Reflect bounces a particle back into the
// domain at a patch edge with no neighbor.
func TestApplyParticleBoundariesReflectsAtDomainEdge(t *testing.T) {
	p := New(0, 0, 1, []int{4}, 1, []float64{1.0})
	// No neighbor on either side: a standalone, fully bounded patch.

	s := species.New("ion", 1, 1.0, 1.0)
	s.Container.PushBack([]float64{-0.5}, [3]float64{-1, 0, 0}, 1.0, 1.0)
	s.BoundaryConditions = [][2]particlebc.Kind{{particlebc.Reflect, particlebc.Reflect}}
	p.Species = []*species.Species{s}

	p.ApplyParticleBoundaries()

	if got := s.Container.Position[0][0]; got != 0.5 {
		t.Fatalf("reflected position = %f, want 0.5", got)
	}
	if got := s.Container.Momentum[0][0]; got != 1.0 {
		t.Fatalf("reflected momentum = %f, want 1.0", got)
	}
	if s.LostBoundaryEnergy != 0 {
		t.Fatalf("reflect must not tally lost energy, got %f", s.LostBoundaryEnergy)
	}
}

// TestApplyParticleBoundariesStopTalliesLostEnergy checks that a Stop
// boundary condition both zeroes the particle's momentum and
// accumulates the tallied kinetic energy onto the species (spec.md
// §4.7, §8 invariant 2's U_lost_boundary term).
func TestApplyParticleBoundariesStopTalliesLostEnergy(t *testing.T) {
	p := New(0, 0, 1, []int{4}, 1, []float64{1.0})

	s := species.New("ion", 1, 1.0, 1.0)
	s.Container.PushBack([]float64{-0.5}, [3]float64{-2, 0, 0}, 1.0, 1.0)
	s.BoundaryConditions = [][2]particlebc.Kind{{particlebc.Stop, particlebc.Stop}}
	p.Species = []*species.Species{s}

	p.ApplyParticleBoundaries()

	if got := s.Container.Momentum[0][0]; got != 0 {
		t.Fatalf("stopped momentum = %f, want 0", got)
	}
	if s.LostBoundaryEnergy <= 0 {
		t.Fatalf("expected positive LostBoundaryEnergy, got %f", s.LostBoundaryEnergy)
	}
}

// TestApplyFieldBoundariesSkipsLiveNeighbors checks that
// ApplyFieldBoundaries only touches an axis/side with no neighbor,
// leaving an interior (neighbor-bearing) edge's ghost cells alone.
func TestApplyFieldBoundariesSkipsLiveNeighbors(t *testing.T) {
	p := New(0, 0, 1, []int{4}, 1, []float64{1.0})
	p.Neighbor[0] = [2]int{NoNeighbor, 1} // lower edge is the domain edge, upper has a neighbor
	p.FieldBoundary = [][2]fieldbc.Kind{{fieldbc.Reflecting, fieldbc.Reflecting}}

	lo, hi := p.Grid.Ey.InteriorBounds()
	p.Grid.Ey.Set(5.0, lo[0])
	p.Grid.Ey.Set(7.0, hi[0]-1)

	p.ApplyFieldBoundaries(0.01, 0)

	if got := p.Grid.Ey.At(lo[0] - 1); got != -5.0 {
		t.Fatalf("lower ghost (true domain edge) = %f, want -5.0", got)
	}
	if got := p.Grid.Ey.At(hi[0]); got != 0.0 {
		t.Fatalf("upper ghost (live neighbor) = %f, want untouched 0.0", got)
	}
}

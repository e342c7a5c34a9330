// Package balance implements the dynamic load balancer spec.md §4.11
// describes: each rank estimates its own computational load (from its
// patches' particle counts), the estimates are gathered, and patches
// are reassigned along the Hilbert curve ordering so that each rank's
// cumulative load stays close to the global average — a one-sided
// scan over the ordered patch list, not a full repartition.
package balance

import (
	"context"
	"sync"

	"github.com/deveworld/picengine/internal/comm"
)

// PatchLoad is one patch's estimated cost, keyed by its position in
// Hilbert order (spec.md §4.11 "the patch list, kept in Hilbert
// order, is the basis for every rank's contiguous ownership range").
type PatchLoad struct {
	HilbertIndex uint64
	Cost         float64
}

// EstimateCost returns a patch's load estimate: particle count is the
// dominant cost in a PIC step (spec.md §4.11 "load is estimated from
// the number of particles a patch owns, optionally weighted by a
// per-species cost factor").
func EstimateCost(particleCounts []int, speciesCostFactor []float64) float64 {
	var cost float64
	for i, n := range particleCounts {
		factor := 1.0
		if i < len(speciesCostFactor) {
			factor = speciesCostFactor[i]
		}
		cost += float64(n) * factor
	}
	return cost
}

// Assignment maps a Hilbert-ordered patch index to the owning rank.
type Assignment []int

// ComputeAssignment performs the one-sided scan spec.md §4.11
// describes: walk patches in Hilbert order, accumulating cost onto the
// current rank until its share of the global average is reached, then
// advance to the next rank. This keeps patch ownership contiguous in
// Hilbert order, the property the exchange protocol in
// internal/patch/internal/syncpatch relies on to keep neighbor patches
// geometrically close even after rebalancing.
func ComputeAssignment(loads []PatchLoad, numRanks int) Assignment {
	n := len(loads)
	assignment := make(Assignment, n)
	if numRanks <= 0 || n == 0 {
		return assignment
	}
	var total float64
	for _, l := range loads {
		total += l.Cost
	}
	target := total / float64(numRanks)
	if target == 0 {
		// Degenerate case (no particles yet): split evenly by count.
		for i := range assignment {
			assignment[i] = (i * numRanks) / n
		}
		return assignment
	}

	rank := 0
	var accum float64
	for i, l := range loads {
		assignment[i] = rank
		accum += l.Cost
		remainingRanks := numRanks - rank - 1
		remainingPatches := n - i - 1
		if accum >= target && rank < numRanks-1 && remainingPatches >= remainingRanks {
			rank++
			accum = 0
		}
	}
	return assignment
}

// GatherLoads collects every rank's local patch loads into one
// Hilbert-ordered slice via the Communicator's Allreduce-style
// rendezvous, so rank 0 (or whichever rank runs ComputeAssignment) has
// the global picture spec.md §4.11's "patch_count broadcast" needs.
func GatherLoads(ctx context.Context, c *comm.Communicator, rank int, local []PatchLoad, stage *GatherStage) ([]PatchLoad, error) {
	return stage.gather(ctx, rank, local)
}

// GatherStage coordinates one GatherLoads call across all ranks,
// analogous to internal/comm.ReduceStage but collecting slices instead
// of summing scalars.
type GatherStage struct {
	size    int
	mu      sync.Mutex
	values  [][]PatchLoad
	present int
	result  []PatchLoad
	done    bool
	cond    *sync.Cond
}

func NewGatherStage(size int) *GatherStage {
	s := &GatherStage{size: size, values: make([][]PatchLoad, size)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *GatherStage) gather(ctx context.Context, rank int, local []PatchLoad) ([]PatchLoad, error) {
	s.mu.Lock()
	s.values[rank] = local
	s.present++
	if s.present == s.size {
		var merged []PatchLoad
		for _, v := range s.values {
			merged = append(merged, v...)
		}
		sortByHilbert(merged)
		s.result = merged
		s.done = true
		s.cond.Broadcast()
		s.mu.Unlock()
		return merged, nil
	}
	for !s.done {
		s.cond.Wait()
		select {
		case <-ctx.Done():
			s.mu.Unlock()
			return nil, ctx.Err()
		default:
		}
	}
	result := s.result
	s.mu.Unlock()
	return result, nil
}

func sortByHilbert(loads []PatchLoad) {
	// Small-N insertion sort is adequate: rebalancing runs rarely
	// (every load_balancing_every steps, spec.md §6) and the patch
	// count per rebalance call is the total patch count, typically
	// small relative to particle counts.
	for i := 1; i < len(loads); i++ {
		for j := i; j > 0 && loads[j].HilbertIndex < loads[j-1].HilbertIndex; j-- {
			loads[j], loads[j-1] = loads[j-1], loads[j]
		}
	}
}

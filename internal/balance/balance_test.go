package balance

import (
	"context"
	"sync"
	"testing"
)

func TestEstimateCostWeightsBySpeciesFactor(t *testing.T) {
	got := EstimateCost([]int{100, 50}, []float64{1.0, 2.0})
	if got != 200 {
		t.Fatalf("EstimateCost = %f, want 200", got)
	}
}

func TestComputeAssignmentBalancesEvenLoad(t *testing.T) {
	loads := []PatchLoad{
		{HilbertIndex: 0, Cost: 100},
		{HilbertIndex: 1, Cost: 100},
		{HilbertIndex: 2, Cost: 100},
		{HilbertIndex: 3, Cost: 100},
	}
	assignment := ComputeAssignment(loads, 2)
	counts := map[int]int{}
	for _, r := range assignment {
		counts[r]++
	}
	if counts[0] != 2 || counts[1] != 2 {
		t.Fatalf("expected even 2/2 split, got %v", counts)
	}
}

func TestComputeAssignmentKeepsHilbertContiguity(t *testing.T) {
	loads := []PatchLoad{
		{HilbertIndex: 0, Cost: 10},
		{HilbertIndex: 1, Cost: 90},
		{HilbertIndex: 2, Cost: 10},
		{HilbertIndex: 3, Cost: 10},
	}
	assignment := ComputeAssignment(loads, 2)
	// Ownership along Hilbert order must be contiguous: once a rank's
	// range ends it must never reappear.
	seen := map[int]bool{}
	last := -1
	for _, r := range assignment {
		if r != last {
			if seen[r] {
				t.Fatalf("rank %d reappeared non-contiguously in assignment %v", r, assignment)
			}
			seen[r] = true
			last = r
		}
	}
}

func TestComputeAssignmentHandlesZeroLoad(t *testing.T) {
	loads := []PatchLoad{
		{HilbertIndex: 0, Cost: 0},
		{HilbertIndex: 1, Cost: 0},
	}
	assignment := ComputeAssignment(loads, 2)
	if len(assignment) != 2 {
		t.Fatalf("assignment length = %d, want 2", len(assignment))
	}
}

func TestGatherLoadsMergesAndSortsAcrossRanks(t *testing.T) {
	stage := NewGatherStage(2)
	var wg sync.WaitGroup
	results := make([][]PatchLoad, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		r, err := GatherLoads(context.Background(), nil, 0, []PatchLoad{{HilbertIndex: 2, Cost: 1}}, stage)
		if err != nil {
			t.Errorf("rank0 gather error: %v", err)
		}
		results[0] = r
	}()
	go func() {
		defer wg.Done()
		r, err := GatherLoads(context.Background(), nil, 1, []PatchLoad{{HilbertIndex: 0, Cost: 2}}, stage)
		if err != nil {
			t.Errorf("rank1 gather error: %v", err)
		}
		results[1] = r
	}()
	wg.Wait()

	for _, r := range results {
		if len(r) != 2 {
			t.Fatalf("merged result length = %d, want 2", len(r))
		}
		if r[0].HilbertIndex != 0 || r[1].HilbertIndex != 2 {
			t.Fatalf("merged result not sorted by Hilbert index: %v", r)
		}
	}
}

package syncpatch

import (
	"testing"

	"github.com/deveworld/picengine/internal/comm"
	"github.com/deveworld/picengine/internal/patch"
)

func buildTwoPatches() (*comm.Communicator, []*patch.Patch) {
	c := comm.New(2)
	oversize := 1
	nCells := []int{4}
	dx := []float64{1.0}
	p0 := patch.New(0, 0, 1, nCells, oversize, dx)
	p1 := patch.New(1, 1, 1, nCells, oversize, dx)
	p0.Neighbor[0] = [2]int{patch.NoNeighbor, 1}
	p1.Neighbor[0] = [2]int{0, patch.NoNeighbor}
	return c, []*patch.Patch{p0, p1}
}

func TestSyncVectorPatchFieldsOnlyLeavesDensitiesUntouched(t *testing.T) {
	c, patches := buildTwoPatches()
	_, hi0 := patches[0].Grid.Jx.InteriorBounds()
	patches[0].Grid.Jx.Set(2.0, hi0[0]-1)

	if err := SyncVectorPatch(patches, c, 1, FieldsOnly); err != nil {
		t.Fatalf("SyncVectorPatch error: %v", err)
	}
	lo1, _ := patches[1].Grid.Jx.InteriorBounds()
	if got := patches[1].Grid.Jx.At(lo1[0] - 1); got != 0 {
		t.Fatalf("FieldsOnly mode leaked a density update: ghost = %f", got)
	}
}

func TestSyncVectorPatchFullSyncPropagatesDensities(t *testing.T) {
	c, patches := buildTwoPatches()
	_, hi0 := patches[0].Grid.Jx.InteriorBounds()
	patches[0].Grid.Jx.Set(2.0, hi0[0]-1)

	if err := SyncVectorPatch(patches, c, 1, FullSync); err != nil {
		t.Fatalf("SyncVectorPatch error: %v", err)
	}
	lo1, _ := patches[1].Grid.Jx.InteriorBounds()
	if got := patches[1].Grid.Jx.At(lo1[0] - 1); got != 2.0 {
		t.Fatalf("FullSync ghost = %f, want 2.0", got)
	}
}

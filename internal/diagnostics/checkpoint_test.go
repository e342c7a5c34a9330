package diagnostics

import (
	"path/filepath"
	"testing"
)

func TestCheckpointWriteAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.json")

	c := NewCheckpoint(100, 5.0)
	c.Ownership = []PatchOwnership{{HilbertIndex: 0, Rank: 0}, {HilbertIndex: 1, Rank: 1}}
	c.RNGSeeds[0] = 42
	c.LaserPhase["xmin"] = 1.25

	if err := c.Write(path); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint error: %v", err)
	}
	if loaded.RunID != c.RunID {
		t.Fatalf("RunID mismatch after round trip: %v vs %v", loaded.RunID, c.RunID)
	}
	if loaded.Step != 100 || loaded.Time != 5.0 {
		t.Fatalf("Step/Time mismatch: %+v", loaded)
	}
	if len(loaded.Ownership) != 2 || loaded.Ownership[1].Rank != 1 {
		t.Fatalf("Ownership mismatch: %+v", loaded.Ownership)
	}
	if loaded.RNGSeeds[0] != 42 {
		t.Fatalf("RNGSeeds mismatch: %+v", loaded.RNGSeeds)
	}
	if loaded.LaserPhase["xmin"] != 1.25 {
		t.Fatalf("LaserPhase mismatch: %+v", loaded.LaserPhase)
	}
}

func TestLoadCheckpointErrorsOnMissingFile(t *testing.T) {
	if _, err := LoadCheckpoint("/nonexistent/checkpoint.json"); err == nil {
		t.Fatalf("LoadCheckpoint expected an error for a missing file")
	}
}

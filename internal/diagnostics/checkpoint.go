package diagnostics

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// PatchOwnership records which rank owns a patch at checkpoint time,
// the piece of restart state spec.md §7 Recovery calls out
// ("particle count and patch count may differ between the checkpoint
// and the new run only if load balancing is re-run as part of
// restart").
type PatchOwnership struct {
	HilbertIndex uint64 `json:"hilbert_index"`
	Rank         int    `json:"rank"`
}

// Checkpoint is the restart state one rank writes at the configured
// Checkpoints.every cadence (spec.md §6 Checkpoints block), grounded
// on original_source/SmileiIO.cpp's checkpoint record: patch
// ownership, per-patch RNG seeds (so collisions/ionization/radiation's
// Monte-Carlo draws resume deterministically, per spec.md §5's
// "Global mutable state" note), and laser/antenna phase.
type Checkpoint struct {
	RunID       uuid.UUID          `json:"run_id"`
	Step        int                `json:"step"`
	Time        float64            `json:"time"`
	Ownership   []PatchOwnership   `json:"ownership"`
	RNGSeeds    map[uint64]int64   `json:"rng_seeds"` // keyed by patch Hilbert index
	LaserPhase  map[string]float64 `json:"laser_phase"`
	AntennaTime float64            `json:"antenna_time"`
}

// NewCheckpoint starts a fresh checkpoint record tagged with a new
// run identifier.
func NewCheckpoint(step int, simTime float64) *Checkpoint {
	return &Checkpoint{
		RunID:      uuid.New(),
		Step:       step,
		Time:       simTime,
		RNGSeeds:   make(map[uint64]int64),
		LaserPhase: make(map[string]float64),
	}
}

// Write serializes the checkpoint to path as JSON, the lightweight
// stand-in for the "versioned HDF5 layout" spec.md §6 describes for
// checkpoint files, which stays out of scope per spec.md §1.
func (c *Checkpoint) Write(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("diagnostics: marshaling checkpoint: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCheckpoint reads back a checkpoint written by Write, the first
// half of spec.md §7 Recovery's "on startup with restart flag, the
// reverse is done".
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: reading checkpoint %s: %w", path, err)
	}
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("diagnostics: parsing checkpoint %s: %w", path, err)
	}
	return &c, nil
}

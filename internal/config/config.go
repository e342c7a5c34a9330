// Package config loads and validates the block-structured YAML
// configuration spec.md §6 describes, grounded on pthm-soup/config's
// gopkg.in/yaml.v3 struct-tag loading style: one Go struct per
// top-level block (Main, Species, ElectroMagn external fields/
// antennas, Laser, LoadBalancing, Collisions, RadiationReaction,
// Checkpoints, and the Diag* family), a Load reader, and a Validate
// walking the configuration-error taxonomy spec.md §7 lists
// (dimension mismatches, non-power-of-2 patch counts, periodic EM
// boundary conditions paired with non-periodic particle boundary
// conditions, CFL violation).
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Geometry enumerates spec.md §6's Main.geometry values.
type Geometry string

const (
	Geometry1D Geometry = "1Dcartesian"
	Geometry2D Geometry = "2Dcartesian"
	Geometry3D Geometry = "3Dcartesian"
	GeometryAM Geometry = "AMcylindrical"
)

func (g Geometry) dim() (int, bool) {
	switch g {
	case Geometry1D:
		return 1, true
	case Geometry2D, GeometryAM:
		return 2, true
	case Geometry3D:
		return 3, true
	}
	return 0, false
}

// Main is spec.md §6's Main block.
type Main struct {
	Geometry             Geometry    `yaml:"geometry"`
	InterpolationOrder   int         `yaml:"interpolation_order"`
	CellLength           []float64   `yaml:"cell_length"`
	GridLength           []float64   `yaml:"grid_length"`
	Timestep             float64     `yaml:"timestep"`
	SimulationTime       float64     `yaml:"simulation_time"`
	NumberOfPatches      []int       `yaml:"number_of_patches"`
	EMBoundaryConditions [][2]string `yaml:"EM_boundary_conditions"`
	SolvePoisson         bool        `yaml:"solve_poisson"`
	PoissonMaxIteration  int         `yaml:"poisson_max_iteration"`
	PoissonMaxError      float64     `yaml:"poisson_max_error"`
	Clrw                 int         `yaml:"clrw"`
}

// Species is one entry of spec.md §6's Species block.
type Species struct {
	Name                    string      `yaml:"name"`
	Mass                    float64     `yaml:"mass"`
	Charge                  float64     `yaml:"charge"`
	ParticleProfile         string      `yaml:"particle_profile"`
	ThermalVelocity         [3]float64  `yaml:"thermal_velocity"`
	BoundaryConditions      [][2]string `yaml:"boundary_conditions"`
	TimeFrozen              float64     `yaml:"time_frozen"`
	RadiationModel          string      `yaml:"radiation_model"`
	MultiphotonBreitWheeler bool        `yaml:"multiphoton_Breit_Wheeler"`
	Pusher                  string      `yaml:"pusher"`
	IonizationRate          string      `yaml:"ionization_rate"`
	MaximumChargeState      float64     `yaml:"maximum_charge_state"`
}

// ExternalField is spec.md §6's "ElectroMagn ExtField" entry.
type ExternalField struct {
	Field   string `yaml:"field"`
	Profile string `yaml:"profile"`
}

// Antenna is spec.md §6's "ElectroMagn Antenna" entry.
type Antenna struct {
	Field   string `yaml:"field"`
	Profile string `yaml:"profile"`
}

// Laser is spec.md §6's Laser block.
type Laser struct {
	BoxSide          string `yaml:"box_side"`
	SpatialProfile   string `yaml:"space_profile"`
	TemporalProfile  string `yaml:"time_profile"`
}

// LoadBalancing is spec.md §6's LoadBalancing block.
type LoadBalancing struct {
	Every              int     `yaml:"every"`
	CellLoad           float64 `yaml:"cell_load"`
	FrozenParticleLoad float64 `yaml:"frozen_particle_load"`
	InitialBalance     bool    `yaml:"initial_balance"`
}

// Collisions is spec.md §6's Collisions block.
type Collisions struct {
	Species1             []string `yaml:"species1"`
	Species2             []string `yaml:"species2"`
	CoulombLog           float64  `yaml:"coulomb_log"`
	Every                int      `yaml:"every"`
	Ionizing             bool     `yaml:"ionizing"`
}

// RadiationReaction is spec.md §6's RadiationReaction block.
type RadiationReaction struct {
	ChipaThreshold         float64 `yaml:"chipa_disc_min_threshold"`
	ClassicalRadiatedPower float64 `yaml:"classical_radiated_power_factor"`
}

// Checkpoints is spec.md §6's Checkpoints block.
type Checkpoints struct {
	Every   int    `yaml:"every"`
	Restart bool   `yaml:"restart"`
	Dump    string `yaml:"dump_file"`
}

// DiagScalar is spec.md §6's DiagScalar block.
type DiagScalar struct {
	Every int `yaml:"every"`
}

// DiagFields is spec.md §6's DiagFields block.
type DiagFields struct {
	Every  int      `yaml:"every"`
	Fields []string `yaml:"fields"`
}

// DiagParticleBinning is spec.md §6's DiagParticleBinning block.
type DiagParticleBinning struct {
	Every   int      `yaml:"every"`
	Deposit string   `yaml:"deposit"`
	Axes    []string `yaml:"axes"`
}

// DiagScreen is spec.md §6's DiagScreen block.
type DiagScreen struct {
	Every int    `yaml:"every"`
	Shape string `yaml:"shape"`
}

// DiagTrackParticles is spec.md §6's DiagTrackParticles block.
type DiagTrackParticles struct {
	Every   int    `yaml:"every"`
	Species string `yaml:"species"`
}

// Config is the complete parsed namelist: every block spec.md §6
// enumerates, loaded from one YAML document.
type Config struct {
	Main                Main                  `yaml:"Main"`
	Species             []Species             `yaml:"Species"`
	ExternalFields      []ExternalField       `yaml:"ExtFields"`
	Antennas            []Antenna             `yaml:"Antennas"`
	Lasers              []Laser               `yaml:"Lasers"`
	LoadBalancing       LoadBalancing         `yaml:"LoadBalancing"`
	Collisions          []Collisions          `yaml:"Collisions"`
	RadiationReaction   RadiationReaction     `yaml:"RadiationReaction"`
	Checkpoints         Checkpoints           `yaml:"Checkpoints"`
	DiagScalar          DiagScalar            `yaml:"DiagScalar"`
	DiagFields          []DiagFields          `yaml:"DiagFields"`
	DiagParticleBinning []DiagParticleBinning `yaml:"DiagParticleBinning"`
	DiagScreen          []DiagScreen          `yaml:"DiagScreen"`
	DiagTrackParticles  []DiagTrackParticles  `yaml:"DiagTrackParticles"`
}

// Load reads and parses a namelist file. It does not validate;
// callers should call Validate separately so configuration errors are
// reported distinctly from parse errors (spec.md §7's taxonomy treats
// them the same way — fatal, reported by every rank — but keeping the
// steps separate lets callers unit-test each independently).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// ValidationError wraps a single configuration-error-taxonomy
// violation (spec.md §7's "Configuration error: ... Fatal; abort
// before time loop").
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate walks the configuration-error taxonomy spec.md §7 names:
// dimension mismatches against geometry, non-power-of-2 patch counts,
// periodic EM boundary conditions paired with non-periodic particle
// boundary conditions, and (given Main.Timestep) a CFL violation.
// It returns the first violation found.
func (c *Config) Validate() error {
	dim, ok := c.Main.Geometry.dim()
	if !ok {
		return &ValidationError{"Main.geometry", fmt.Sprintf("unknown geometry %q", c.Main.Geometry)}
	}
	if len(c.Main.CellLength) != dim {
		return &ValidationError{"Main.cell_length", fmt.Sprintf("has %d components, geometry %q needs %d", len(c.Main.CellLength), c.Main.Geometry, dim)}
	}
	if len(c.Main.GridLength) != dim {
		return &ValidationError{"Main.grid_length", fmt.Sprintf("has %d components, geometry %q needs %d", len(c.Main.GridLength), c.Main.Geometry, dim)}
	}
	if len(c.Main.NumberOfPatches) != dim {
		return &ValidationError{"Main.number_of_patches", fmt.Sprintf("has %d components, geometry %q needs %d", len(c.Main.NumberOfPatches), c.Main.Geometry, dim)}
	}
	for axis, n := range c.Main.NumberOfPatches {
		if !isPowerOfTwo(n) {
			return &ValidationError{"Main.number_of_patches", fmt.Sprintf("axis %d = %d is not a power of 2", axis, n)}
		}
	}
	if len(c.Main.EMBoundaryConditions) != dim {
		return &ValidationError{"Main.EM_boundary_conditions", fmt.Sprintf("has %d axes, geometry %q needs %d", len(c.Main.EMBoundaryConditions), c.Main.Geometry, dim)}
	}

	for i, sp := range c.Species {
		if len(sp.BoundaryConditions) != dim {
			return &ValidationError{fmt.Sprintf("Species[%d].boundary_conditions", i), fmt.Sprintf("has %d axes, geometry %q needs %d", len(sp.BoundaryConditions), c.Main.Geometry, dim)}
		}
		for axis, sides := range sp.BoundaryConditions {
			emPeriodicLower := c.Main.EMBoundaryConditions[axis][0] == "periodic"
			emPeriodicUpper := c.Main.EMBoundaryConditions[axis][1] == "periodic"
			partPeriodicLower := sides[0] == "periodic"
			partPeriodicUpper := sides[1] == "periodic"
			if emPeriodicLower != partPeriodicLower || emPeriodicUpper != partPeriodicUpper {
				return &ValidationError{fmt.Sprintf("Species[%d].boundary_conditions", i), fmt.Sprintf("axis %d: EM periodicity (%t,%t) does not match particle periodicity (%t,%t)", axis, emPeriodicLower, emPeriodicUpper, partPeriodicLower, partPeriodicUpper)}
			}
		}
	}

	if c.Main.Timestep > 0 {
		var courantLimit float64
		for _, dx := range c.Main.CellLength {
			if dx <= 0 {
				return &ValidationError{"Main.cell_length", "must be positive"}
			}
			courantLimit += 1.0 / (dx * dx)
		}
		courantLimit = 1.0 / math.Sqrt(courantLimit)
		if c.Main.Timestep > courantLimit {
			return &ValidationError{"Main.timestep", fmt.Sprintf("%.6g exceeds the CFL limit %.6g for the given cell_length", c.Main.Timestep, courantLimit)}
		}
	}

	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

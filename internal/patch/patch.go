// Package patch implements the per-patch domain-decomposition unit
// spec.md §4.8 describes: one patch owns a local Maxwell grid and one
// Container per species, plus a 2*dim neighbor table (one lower and
// one upper neighbor rank per axis) used to drive the ghost-cell
// exchange protocol over internal/comm.
package patch

import (
	"github.com/deveworld/picengine/internal/comm"
	"github.com/deveworld/picengine/internal/field"
	"github.com/deveworld/picengine/internal/fieldbc"
	"github.com/deveworld/picengine/internal/maxwell"
	"github.com/deveworld/picengine/internal/particle"
	"github.com/deveworld/picengine/internal/particlebc"
	"github.com/deveworld/picengine/internal/species"
)

// NoNeighbor marks a boundary axis/side with no neighbor patch (domain
// edge under a non-periodic boundary condition).
const NoNeighbor = -1

// Patch is one rank's local piece of the simulation domain.
type Patch struct {
	HilbertIndex uint64
	Rank         int
	Dim          int

	Grid *maxwell.Grid
	// Neighbor[axis][side] is the rank owning the adjacent patch along
	// that axis/side (0=lower,1=upper), or NoNeighbor at a domain edge.
	Neighbor [][2]int

	Species []*species.Species

	// FieldBoundary[axis][side] selects the EM boundary condition
	// applied at that domain edge (spec.md §4.6); nil leaves every edge
	// untouched, which is only correct when every axis is periodic.
	FieldBoundary [][2]fieldbc.Kind
	// Laser[axis][side], when non-nil, injects an antenna source at
	// that edge every step regardless of FieldBoundary's Kind (spec.md
	// §6's Laser block is configured independently of the absorbing
	// condition it rides on).
	Laser [][2]*fieldbc.LaserSource
}

// New builds a patch with an allocated Maxwell grid and neighbor table
// sized for `dim` axes, all initially NoNeighbor.
func New(hilbertIndex uint64, rank, dim int, nCells []int, oversize int, dx []float64) *Patch {
	neighbor := make([][2]int, dim)
	for a := range neighbor {
		neighbor[a] = [2]int{NoNeighbor, NoNeighbor}
	}
	return &Patch{
		HilbertIndex: hilbertIndex,
		Rank:         rank,
		Dim:          dim,
		Grid:         maxwell.NewGrid(dim, nCells, oversize, dx),
		Neighbor:     neighbor,
	}
}

// exchangeEntry pairs one field with its MPI buffer and whether its
// ghost exchange is additive. additive is true only for J and rho, per
// spec.md §4.8's "current-summation variant": adjacent patches both
// contributed current/charge to the same physical cells and their
// ghost contributions must add, not overwrite, while E/B are simply
// copied since each patch is authoritative over its own interior.
type exchangeEntry struct {
	f         *field.Field
	buf       *field.Buffer
	additive  bool
	fieldKind comm.FieldKind
}

func mkEntry(f *field.Field, kind comm.FieldKind, additive bool) exchangeEntry {
	return exchangeEntry{f: f, buf: field.NewBuffer(kind), additive: additive, fieldKind: kind}
}

func (p *Patch) fieldEntries() []exchangeEntry {
	g := p.Grid
	return []exchangeEntry{
		mkEntry(g.Ex, comm.KindEx, false), mkEntry(g.Ey, comm.KindEy, false), mkEntry(g.Ez, comm.KindEz, false),
		mkEntry(g.Bx, comm.KindBx, false), mkEntry(g.By, comm.KindBy, false), mkEntry(g.Bz, comm.KindBz, false),
	}
}

func (p *Patch) densityEntries() []exchangeEntry {
	g := p.Grid
	return []exchangeEntry{
		mkEntry(g.Jx, comm.KindJx, true), mkEntry(g.Jy, comm.KindJy, true), mkEntry(g.Jz, comm.KindJz, true),
		mkEntry(g.Rho, comm.KindRho, true),
	}
}

// ExchangeGhosts performs the ghost-cell exchange with every neighbor
// for every EM field component (spec.md §4.8/§4.10): non-blocking
// sends of this patch's boundary-adjacent interior slab, non-blocking
// receives into the corresponding ghost region, then a Waitall before
// returning so the caller sees fully updated ghosts. It does not touch
// J/rho; see SumDensities for the additive counterpart.
func (p *Patch) ExchangeGhosts(c *comm.Communicator, oversize int) error {
	return p.exchangeSubset(p.fieldEntries(), c, oversize)
}

// SumDensities performs the additive J/rho portion of the exchange,
// the "current-summation variant" spec.md §4.9's sumDensities step
// uses, separate from ExchangeGhosts so a rank can run the density sum
// right after projection without waiting on the Maxwell solve.
func (p *Patch) SumDensities(c *comm.Communicator, oversize int) error {
	return p.exchangeSubset(p.densityEntries(), c, oversize)
}

func (p *Patch) exchangeSubset(entries []exchangeEntry, c *comm.Communicator, oversize int) error {
	var reqs []*comm.Request
	for axis := 0; axis < p.Dim; axis++ {
		for side := 0; side < 2; side++ {
			neighborRank := p.Neighbor[axis][side]
			if neighborRank == NoNeighbor {
				continue
			}
			otherSide := 1 - side
			for _, e := range entries {
				slab := e.f.PackSendSlab(e.buf, axis, side, oversize)
				tag := e.buf.TagFor(axis, side)
				reqs = append(reqs, c.ISend(p.Rank, neighborRank, tag, slab))
				recvTag := comm.Tag{Direction: axis, Side: otherSide, Kind: e.fieldKind}.Int()
				reqs = append(reqs, c.IRecv(p.Rank, neighborRank, recvTag))
			}
		}
	}
	if err := comm.Waitall(reqs); err != nil {
		return err
	}
	idx := 1
	for axis := 0; axis < p.Dim; axis++ {
		for side := 0; side < 2; side++ {
			neighborRank := p.Neighbor[axis][side]
			if neighborRank == NoNeighbor {
				continue
			}
			for _, e := range entries {
				req := reqs[idx]
				idx += 2
				slab, ok := req.Value().([]float64)
				if !ok {
					continue
				}
				// The slab arrived from the neighbor on this same side,
				// so it fills this patch's ghost on that side.
				e.f.UnpackRecvSlab(slab, axis, side, oversize, e.additive)
			}
		}
	}
	return nil
}

// ParticleBatch is the payload shipped when a particle crosses into a
// neighboring patch (spec.md §4.8's particle-exchange protocol).
type ParticleBatch struct {
	SpeciesIndex int
	Position     [][]float64
	Momentum     [3][]float64
	Weight       []float64
	Charge       []float64
}

// domainMax returns this patch's local-frame interior extent per axis
// (NCells[axis] * Dx[axis]), the upper wall position particlebc and
// ExchangeParticles both compare positions against; the lower wall is
// always 0 since particle positions are patch-local.
func (p *Patch) domainMax() []float64 {
	out := make([]float64, p.Dim)
	for axis := 0; axis < p.Dim; axis++ {
		out[axis] = float64(p.Grid.Ex.NCells[axis]) * p.Grid.Dx[axis]
	}
	return out
}

// ApplyParticleBoundaries enforces every species' particlebc.Kind at
// this patch's domain edges (spec.md §4.7): an axis/side with a live
// neighbor is left untouched here since those particles leave through
// ExchangeParticles instead. Energy tallied as lost by stop/remove/
// thermalize accumulates into each species' LostBoundaryEnergy.
func (p *Patch) ApplyParticleBoundaries() {
	max := p.domainMax()
	for _, s := range p.Species {
		if s.BoundaryConditions == nil {
			continue
		}
		for axis, sides := range s.BoundaryConditions {
			if p.Neighbor[axis][0] == NoNeighbor {
				s.LostBoundaryEnergy += particlebc.Apply(s.Container, axis, particlebc.Min, 0, s.WallTemperature, s.Mass, sides[0], s.BoundaryRng, s.WallDrift)
			}
			if p.Neighbor[axis][1] == NoNeighbor {
				s.LostBoundaryEnergy += particlebc.Apply(s.Container, axis, particlebc.Max, max[axis], s.WallTemperature, s.Mass, sides[1], s.BoundaryRng, s.WallDrift)
			}
		}
	}
}

// ExchangeParticles migrates particles that crossed into a neighboring
// patch's domain (spec.md §2's named particle-exchange pipeline stage
// and §4.8's per-axis protocol): every species' container is scanned
// for particles outside [0, domainMax) on an axis/side with a live
// neighbor, those are shipped to the neighbor with their position
// re-expressed in its local frame, and removed here. Particles at a
// true domain edge (no neighbor) are left for ApplyParticleBoundaries
// instead, so call that first.
func (p *Patch) ExchangeParticles(c *comm.Communicator) error {
	max := p.domainMax()
	for si, s := range p.Species {
		if err := p.exchangeSpeciesParticles(c, si, s.Container, max); err != nil {
			return err
		}
	}
	return nil
}

func (p *Patch) exchangeSpeciesParticles(c *comm.Communicator, speciesIdx int, cont *particle.Container, max []float64) error {
	n := cont.Size()
	exportAxis := make([]int, n)
	exportSide := make([]int, n)
	for i := range exportSide {
		exportSide[i] = -1
	}
	for axis := 0; axis < p.Dim; axis++ {
		for i := 0; i < n; i++ {
			if exportSide[i] != -1 {
				continue
			}
			pos := cont.Position[axis][i]
			if pos < 0 && p.Neighbor[axis][0] != NoNeighbor {
				exportAxis[i], exportSide[i] = axis, 0
			} else if pos >= max[axis] && p.Neighbor[axis][1] != NoNeighbor {
				exportAxis[i], exportSide[i] = axis, 1
			}
		}
	}

	type key struct{ axis, side int }
	groups := make(map[key][]int)
	for i, side := range exportSide {
		if side == -1 {
			continue
		}
		k := key{exportAxis[i], side}
		groups[k] = append(groups[k], i)
	}

	var reqs []*comm.Request
	var recvAxes, recvSides []int
	for axis := 0; axis < p.Dim; axis++ {
		for side := 0; side < 2; side++ {
			neighborRank := p.Neighbor[axis][side]
			if neighborRank == NoNeighbor {
				continue
			}
			batch := buildBatch(cont, speciesIdx, groups[key{axis, side}], axis, max[axis], side)
			tag := comm.Tag{Direction: axis, Side: side, Kind: comm.KindParticles}.Int()
			reqs = append(reqs, c.ISend(p.Rank, neighborRank, tag, batch))
			otherSide := 1 - side
			recvTag := comm.Tag{Direction: axis, Side: otherSide, Kind: comm.KindParticles}.Int()
			reqs = append(reqs, c.IRecv(p.Rank, neighborRank, recvTag))
			recvAxes = append(recvAxes, axis)
			recvSides = append(recvSides, side)
		}
	}
	if err := comm.Waitall(reqs); err != nil {
		return err
	}

	var toErase []int
	for i, side := range exportSide {
		if side != -1 {
			toErase = append(toErase, i)
		}
	}
	cont.Erase(toErase)

	idx := 1
	for range recvAxes {
		req := reqs[idx]
		idx += 2
		batch, ok := req.Value().(ParticleBatch)
		if !ok {
			continue
		}
		for j := range batch.Weight {
			pos := make([]float64, cont.Dim)
			for a := 0; a < cont.Dim; a++ {
				pos[a] = batch.Position[a][j]
			}
			mom := [3]float64{batch.Momentum[0][j], batch.Momentum[1][j], batch.Momentum[2][j]}
			cont.PushBack(pos, mom, batch.Weight[j], batch.Charge[j])
		}
	}
	return nil
}

// buildBatch packages the particles at indices idx for shipment to the
// neighbor on the given axis/side, shifting the crossing axis's
// position into the neighbor's local frame: +domainMax when leaving
// through the lower wall (arriving at the neighbor's upper edge), or
// -domainMax when leaving through the upper wall.
func buildBatch(cont *particle.Container, speciesIdx int, idx []int, axis int, domainMax float64, side int) ParticleBatch {
	n := len(idx)
	batch := ParticleBatch{
		SpeciesIndex: speciesIdx,
		Position:     make([][]float64, cont.Dim),
		Weight:       make([]float64, n),
		Charge:       make([]float64, n),
	}
	for a := 0; a < cont.Dim; a++ {
		batch.Position[a] = make([]float64, n)
	}
	for axisM := 0; axisM < 3; axisM++ {
		batch.Momentum[axisM] = make([]float64, n)
	}
	for k, i := range idx {
		for a := 0; a < cont.Dim; a++ {
			pos := cont.Position[a][i]
			if a == axis {
				if side == 0 {
					pos += domainMax
				} else {
					pos -= domainMax
				}
			}
			batch.Position[a][k] = pos
		}
		for axisM := 0; axisM < 3; axisM++ {
			batch.Momentum[axisM][k] = cont.Momentum[axisM][i]
		}
		batch.Weight[k] = cont.Weight[i]
		batch.Charge[k] = cont.Charge[i]
	}
	return batch
}

// axisComponents returns the field component normal to axis (the one
// a reflecting/absorbing wall zeroes or absorbs directly) and the two
// transverse (E,B) pairs Silver-Muller's characteristic combination
// reads, per spec.md §4.5's E/B axis assignment: Ex/Bx for axis 0,
// Ey/By for axis 1, Ez/Bz for axis 2, independent of the grid's actual
// Dim since every grid allocates all six components regardless.
func axisComponents(g *maxwell.Grid, axis int) (normalE, normalB *field.Field, pairs [2][2]*field.Field) {
	es := [3]*field.Field{g.Ex, g.Ey, g.Ez}
	bs := [3]*field.Field{g.Bx, g.By, g.Bz}
	o1, o2 := (axis+1)%3, (axis+2)%3
	pairs[0] = [2]*field.Field{es[o1], bs[o2]}
	pairs[1] = [2]*field.Field{es[o2], bs[o1]}
	return es[axis], bs[axis], pairs
}

// ApplyFieldBoundaries applies this patch's configured EM boundary
// condition at every domain edge (spec.md §4.6), skipping any
// axis/side with a live neighbor since those are periodic or
// interior and handled entirely by the ghost exchange. It runs after
// SolveMaxwell's field exchange. SolveMaxwell advances Faraday (which
// also saves and centers B) before Ampere, so boundary conditions act
// on already-centered B and no centering pass follows them.
func (p *Patch) ApplyFieldBoundaries(dt, t float64) {
	if p.FieldBoundary == nil {
		return
	}
	for axis, sides := range p.FieldBoundary {
		for side, kind := range sides {
			if p.Neighbor[axis][side] != NoNeighbor {
				continue
			}
			fbcSide := fieldbc.Min
			if side == 1 {
				fbcSide = fieldbc.Max
			}
			normalE, normalB, pairs := axisComponents(p.Grid, axis)
			switch kind {
			case fieldbc.Periodic:
				// A periodic axis never reaches NoNeighbor, so this case
				// is a defensive no-op rather than a reachable path.
			case fieldbc.Reflecting:
				fieldbc.ApplyReflecting(normalE, axis, fbcSide, false)
				fieldbc.ApplyReflecting(normalB, axis, fbcSide, true)
				for _, pr := range pairs {
					fieldbc.ApplyReflecting(pr[0], axis, fbcSide, true)
					fieldbc.ApplyReflecting(pr[1], axis, fbcSide, false)
				}
			case fieldbc.SilverMuller:
				for _, pr := range pairs {
					fieldbc.ApplySilverMuller(pr[0], pr[1], axis, fbcSide, dt, p.Grid.Dx[axis])
				}
			case fieldbc.Buneman:
				fieldbc.ApplyBuneman(normalE, axis, fbcSide)
				fieldbc.ApplyBuneman(normalB, axis, fbcSide)
				for _, pr := range pairs {
					fieldbc.ApplyBuneman(pr[0], axis, fbcSide)
					fieldbc.ApplyBuneman(pr[1], axis, fbcSide)
				}
			}
			if p.Laser != nil {
				if src := p.Laser[axis][side]; src != nil {
					fieldbc.InjectLaser(pairs[0][0], axis, fbcSide, *src, t)
				}
			}
		}
	}
}

package field

import "github.com/deveworld/picengine/internal/comm"

// Buffer is the per-field MPI buffer object of spec.md §4.2: a
// contiguous send/recv slab per direction and side, plus the
// deterministic tag for that (direction, side, field-kind) triple.
// One Buffer is attached to each Field on a patch.
type Buffer struct {
	Kind comm.FieldKind

	// Send[axis][side] holds the ghost slab of width Oversize last
	// shipped in that direction; it is allocated lazily by
	// PackSendSlab since its size depends on the field's transverse
	// extent, which callers know, not Buffer itself. Recv is allocated
	// empty and left unused: UnpackRecvSlab takes the received slab as
	// an argument instead.
	Send map[int]map[int][]float64
	Recv map[int]map[int][]float64
}

// NewBuffer builds an empty MPI buffer for the given field kind.
func NewBuffer(kind comm.FieldKind) *Buffer {
	return &Buffer{
		Kind: kind,
		Send: make(map[int]map[int][]float64),
		Recv: make(map[int]map[int][]float64),
	}
}

// TagFor returns the deterministic tag for exchanging this field's
// ghost slab in the given direction/side, per spec.md's "MPI tag
// uniqueness" invariant (§3) — distinct (field-kind, direction, side)
// triples always produce distinct tags, so multiple concurrent
// exchanges of different field kinds never collide even though they
// share the same in-process Communicator.
func (b *Buffer) TagFor(axis, side int) int {
	return comm.Tag{Direction: axis, Side: side, Kind: b.Kind}.Int()
}

// PackSendSlab extracts the `width`-deep ghost slab on the given side
// of `axis` (side 0 = low boundary, side 1 = high boundary) into the
// buffer's send slot, ready to ship via comm.Communicator.ISend.
func (f *Field) PackSendSlab(buf *Buffer, axis, side, width int) []float64 {
	lo, hi := f.sliceBounds(axis, side, width, true)
	slab := f.extractBox(lo, hi)
	ensureSlot(buf.Send, axis)
	buf.Send[axis][side] = slab
	return slab
}

// UnpackRecvSlab writes a received ghost slab into the matching ghost
// region on the given side of `axis`. When additive is true (the J/rho
// "current summation" variant of spec.md §4.8), values are added
// rather than overwritten.
func (f *Field) UnpackRecvSlab(slab []float64, axis, side, width int, additive bool) {
	lo, hi := f.sliceBounds(axis, side, width, false)
	f.writeBox(lo, hi, slab, additive)
}

// sliceBounds computes the index box for the ghost slab exchanged on
// (axis, side). outgoing selects whether the box is the donor's
// interior-adjacent cells (outgoing=true, for packing a send) or the
// receiver's ghost cells (outgoing=false, for unpacking a receive).
func (f *Field) sliceBounds(axis, side, width int, outgoing bool) (lo, hi []int) {
	d := f.Dim()
	lo = make([]int, d)
	hi = f.Dims()
	if side == 0 {
		// low side: donor's first interior cells, or receiver's low ghosts
		if outgoing {
			lo[axis] = f.Oversize
			hi[axis] = f.Oversize + width
		} else {
			lo[axis] = 0
			hi[axis] = width
		}
	} else {
		// high side: donor's last interior cells, or receiver's high ghosts
		top := f.dims[axis] - f.Oversize
		if outgoing {
			lo[axis] = top - width
			hi[axis] = top
		} else {
			lo[axis] = f.dims[axis] - width
			hi[axis] = f.dims[axis]
		}
	}
	return lo, hi
}

func (f *Field) extractBox(lo, hi []int) []float64 {
	var out []float64
	idx := make([]int, len(lo))
	walkBox(lo, hi, idx, 0, func() {
		out = append(out, f.At(idx...))
	})
	return out
}

func (f *Field) writeBox(lo, hi []int, values []float64, additive bool) {
	idx := make([]int, len(lo))
	i := 0
	walkBox(lo, hi, idx, 0, func() {
		if additive {
			f.Add(values[i], idx...)
		} else {
			f.Set(values[i], idx...)
		}
		i++
	})
}

func ensureSlot(m map[int]map[int][]float64, axis int) {
	if m[axis] == nil {
		m[axis] = make(map[int][]float64)
	}
}

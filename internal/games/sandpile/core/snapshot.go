package core

import (
	"encoding/binary"
	"fmt"
	"slices"
)

const (
	snapshotMagic   = "SPIL"
	snapshotVersion = 1
)

// Snapshot captures the complete state of a Field: dimensions, both count
// buffers, both queues and the generation counter. Restoring a snapshot and
// continuing to step behaves exactly as if the field had never stopped.
type Snapshot struct {
	Width      int
	Height     int
	Generation uint64
	Counts     []uint32
	Frozen     []uint32
	Pending    []Cell
	Draining   []Cell
}

// Snapshot returns a deep copy of the field state.
func (f *Field) Snapshot() Snapshot {
	return Snapshot{
		Width:      f.grid.W,
		Height:     f.grid.H,
		Generation: f.generation,
		Counts:     slices.Clone(f.grid.counts),
		Frozen:     slices.Clone(f.grid.snapshot),
		Pending:    slices.Clone(f.queue.pending),
		Draining:   slices.Clone(f.queue.draining),
	}
}

// FromSnapshot builds a new Field from a snapshot.
func FromSnapshot(s Snapshot) (*Field, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	f, err := New(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	copy(f.grid.counts, s.Counts)
	copy(f.grid.snapshot, s.Frozen)
	f.queue.pending = slices.Clone(s.Pending)
	f.queue.draining = slices.Clone(s.Draining)
	f.generation = s.Generation
	return f, nil
}

// Restore replaces the field state in place. The snapshot must have the
// field's dimensions; use FromSnapshot to change size.
func (f *Field) Restore(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Width != f.grid.W || s.Height != f.grid.H {
		return fmt.Errorf("%w: %dx%d snapshot for %dx%d field", ErrBadSnapshot, s.Width, s.Height, f.grid.W, f.grid.H)
	}
	copy(f.grid.counts, s.Counts)
	copy(f.grid.snapshot, s.Frozen)
	f.queue.pending = append(f.queue.pending[:0], s.Pending...)
	f.queue.draining = append(f.queue.draining[:0], s.Draining...)
	f.generation = s.Generation
	return nil
}

// Validate checks that buffer lengths match the dimensions and that every
// queued cell is consistent and in bounds.
func (s Snapshot) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %w: %dx%d", ErrBadSnapshot, ErrInvalidSize, s.Width, s.Height)
	}
	n := s.Width * s.Height
	if len(s.Counts) != n || len(s.Frozen) != n {
		return fmt.Errorf("%w: buffers have %d/%d cells, want %d", ErrBadSnapshot, len(s.Counts), len(s.Frozen), n)
	}
	for _, queue := range [][]Cell{s.Pending, s.Draining} {
		for _, c := range queue {
			if c.X < 0 || c.X >= s.Width || c.Y < 0 || c.Y >= s.Height || c.Index != c.Y*s.Width+c.X {
				return fmt.Errorf("%w: queued cell %v invalid for %dx%d", ErrBadSnapshot, c, s.Width, s.Height)
			}
		}
	}
	return nil
}

// MarshalBinary encodes the snapshot in a little-endian binary layout:
// magic, version, width, height, generation, both count buffers, then both
// queues as length-prefixed (x, y) pairs.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	le := binary.LittleEndian
	out := make([]byte, 0, len(snapshotMagic)+1+16+8*len(s.Counts)+8*(len(s.Pending)+len(s.Draining)+1))
	out = append(out, snapshotMagic...)
	out = append(out, snapshotVersion)
	out = le.AppendUint32(out, uint32(s.Width))
	out = le.AppendUint32(out, uint32(s.Height))
	out = le.AppendUint64(out, s.Generation)
	for _, block := range [][]uint32{s.Counts, s.Frozen} {
		for _, v := range block {
			out = le.AppendUint32(out, v)
		}
	}
	for _, queue := range [][]Cell{s.Pending, s.Draining} {
		out = le.AppendUint32(out, uint32(len(queue)))
		for _, c := range queue {
			out = le.AppendUint32(out, uint32(c.X))
			out = le.AppendUint32(out, uint32(c.Y))
		}
	}
	return out, nil
}

// UnmarshalSnapshot decodes data produced by Snapshot.MarshalBinary.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	r := snapshotReader{data: data}

	if string(r.take(len(snapshotMagic))) != snapshotMagic {
		return Snapshot{}, fmt.Errorf("%w: missing magic", ErrBadSnapshot)
	}
	if v := r.take(1); len(v) != 1 || v[0] != snapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version", ErrBadSnapshot)
	}

	s := Snapshot{
		Width:  int(r.u32()),
		Height: int(r.u32()),
	}
	s.Generation = r.u64()
	if r.err != nil {
		return Snapshot{}, r.err
	}
	if s.Width <= 0 || s.Height <= 0 {
		return Snapshot{}, fmt.Errorf("%w: %dx%d", ErrBadSnapshot, s.Width, s.Height)
	}

	if uint64(s.Width)*uint64(s.Height) > uint64(r.remaining())/8 {
		return Snapshot{}, fmt.Errorf("%w: truncated count buffers", ErrBadSnapshot)
	}
	n := s.Width * s.Height
	s.Counts = make([]uint32, n)
	s.Frozen = make([]uint32, n)
	for i := range s.Counts {
		s.Counts[i] = r.u32()
	}
	for i := range s.Frozen {
		s.Frozen[i] = r.u32()
	}

	s.Pending = r.cells(s.Width)
	s.Draining = r.cells(s.Width)
	if r.err != nil {
		return Snapshot{}, r.err
	}
	if r.remaining() != 0 {
		return Snapshot{}, fmt.Errorf("%w: %d trailing bytes", ErrBadSnapshot, r.remaining())
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// snapshotReader is a cursor over snapshot bytes that records the first
// truncation error and returns zero values afterwards.
type snapshotReader struct {
	data []byte
	off  int
	err  error
}

func (r *snapshotReader) remaining() int { return len(r.data) - r.off }

func (r *snapshotReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.remaining() < n {
		r.err = fmt.Errorf("%w: truncated at byte %d", ErrBadSnapshot, r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *snapshotReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *snapshotReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *snapshotReader) cells(width int) []Cell {
	n := int(r.u32())
	if r.err != nil {
		return nil
	}
	if n > r.remaining()/8 {
		r.err = fmt.Errorf("%w: truncated queue of %d cells", ErrBadSnapshot, n)
		return nil
	}
	cells := make([]Cell, n)
	for i := range cells {
		x, y := int(r.u32()), int(r.u32())
		cells[i] = Cell{Index: y*width + x, X: x, Y: y}
	}
	return cells
}

package core

import "fmt"

// Grid holds the grain counts of a W x H board.
// Cells are stored in row-major order: index = y*W + x.
type Grid struct {
	W int // Width of the grid
	H int // Height of the grid

	counts   []uint32 // Current counts, mutated by injection and steps
	snapshot []uint32 // Pre-step counts, frozen for the duration of a step
}

// NewGrid creates an all-zero grid with the given dimensions.
func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return &Grid{
		W:        w,
		H:        h,
		counts:   make([]uint32, w*h),
		snapshot: make([]uint32, w*h),
	}, nil
}

// Index converts coordinates to a flat index. It does not check bounds.
func (g *Grid) Index(x, y int) int {
	return y*g.W + x
}

// InBounds returns true if (x, y) lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Cell returns the Cell for valid coordinates, or ErrOutOfRange.
func (g *Grid) Cell(x, y int) (Cell, error) {
	if !g.InBounds(x, y) {
		return Cell{}, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfRange, x, y, g.W, g.H)
	}
	return Cell{Index: g.Index(x, y), X: x, Y: y}, nil
}

// Read returns the grain count at (x, y).
func (g *Grid) Read(x, y int) (uint32, error) {
	c, err := g.Cell(x, y)
	if err != nil {
		return 0, err
	}
	return g.counts[c.Index], nil
}

// Counts exposes the current counts for rendering. Callers must not modify it.
func (g *Grid) Counts() []uint32 {
	return g.counts
}

// freeze copies the current counts into the snapshot buffer.
func (g *Grid) freeze() {
	copy(g.snapshot, g.counts)
}

// Mass returns the total number of grains on the grid.
func (g *Grid) Mass() uint64 {
	var total uint64
	for _, c := range g.counts {
		total += uint64(c)
	}
	return total
}

// MaxCount returns the largest count on the grid.
func (g *Grid) MaxCount() uint32 {
	var highest uint32
	for _, c := range g.counts {
		if c > highest {
			highest = c
		}
	}
	return highest
}

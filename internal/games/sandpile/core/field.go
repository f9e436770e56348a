package core

// Field is the sandpile automaton: a grid, its active-cell queue and the
// generation counter. A Field has a single owner and is not safe for
// concurrent use.
type Field struct {
	grid       *Grid
	queue      ActiveQueue
	generation uint64
}

// StepStats summarizes one call to Step.
type StepStats struct {
	Toppled int // Cells that toppled this generation
	Lost    int // Grains that fell off the open boundary
}

// New creates an all-zero field with empty queues and generation 0.
func New(w, h int) (*Field, error) {
	g, err := NewGrid(w, h)
	if err != nil {
		return nil, err
	}
	return &Field{grid: g}, nil
}

// Width returns the grid width.
func (f *Field) Width() int { return f.grid.W }

// Height returns the grid height.
func (f *Field) Height() int { return f.grid.H }

// Grid exposes the underlying grid for read access.
func (f *Field) Grid() *Grid { return f.grid }

// Generation returns the number of steps that toppled at least one cell.
func (f *Field) Generation() uint64 { return f.generation }

// QueueLen returns the number of pending queue entries.
// Zero means the configuration is stable.
func (f *Field) QueueLen() int { return f.queue.Len() }

// Stable reports whether no cell is waiting to be evaluated.
func (f *Field) Stable() bool { return f.queue.Len() == 0 }

// Read returns the grain count at (x, y).
func (f *Field) Read(x, y int) (uint32, error) {
	return f.grid.Read(x, y)
}

// Mass returns the total number of grains on the field.
func (f *Field) Mass() uint64 { return f.grid.Mass() }

// CellForInjection returns a pointer to the count at (x, y) so the caller can
// add grains. The cell is queued unconditionally, whether or not the caller
// ends up pushing it over the threshold; Step discards entries that turn out
// to be stable.
func (f *Field) CellForInjection(x, y int) (*uint32, error) {
	c, err := f.grid.Cell(x, y)
	if err != nil {
		return nil, err
	}
	f.queue.Push(c)
	return &f.grid.counts[c.Index], nil
}

// Step advances the automaton by one synchronous generation.
//
// Every toppling decision reads the counts frozen at the start of the step,
// so the result equals toppling all overloaded cells simultaneously.
// Neighbors pushed over the threshold are queued for the next step, never
// processed in this one.
func (f *Field) Step() StepStats {
	var stats StepStats
	g := f.grid

	g.freeze()
	work := f.queue.swap()

	for _, c := range work {
		if g.snapshot[c.Index] <= Threshold {
			continue // stale or already settled
		}
		stats.Toppled++
		f.add(c, -ToppleAmount)

		for _, d := range neighbors {
			nx, ny := c.X+d[0], c.Y+d[1]
			if !g.InBounds(nx, ny) {
				stats.Lost++
				continue
			}
			f.add(Cell{Index: g.Index(nx, ny), X: nx, Y: ny}, 1)
		}
	}

	f.queue.clearDraining()
	f.queue.Compact()

	if stats.Toppled > 0 {
		f.generation++
	}
	return stats
}

// add applies delta to a cell and queues it if it is now overloaded.
func (f *Field) add(c Cell, delta int64) {
	v := ApplyDelta(f.grid.counts[c.Index], delta)
	f.grid.counts[c.Index] = v
	if v > Threshold {
		f.queue.Push(c)
	}
}

// StepBurst runs up to n steps, stopping early once the field is stable.
// It returns the number of steps run and their combined stats.
func (f *Field) StepBurst(n int) (int, StepStats) {
	var total StepStats
	steps := 0
	for steps < n && !f.Stable() {
		s := f.Step()
		total.Toppled += s.Toppled
		total.Lost += s.Lost
		steps++
	}
	return steps, total
}

// RunUntilStable steps until the queue is empty or maxSteps is reached.
// Returns the steps taken and whether the field is stable.
func (f *Field) RunUntilStable(maxSteps int) (int, bool) {
	steps, _ := f.StepBurst(maxSteps)
	return steps, f.Stable()
}

// Clear zeroes every count, empties both queues and resets the generation.
func (f *Field) Clear() {
	clear(f.grid.counts)
	clear(f.grid.snapshot)
	f.queue.pending = f.queue.pending[:0]
	f.queue.draining = f.queue.draining[:0]
	f.generation = 0
}

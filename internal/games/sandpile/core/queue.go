package core

import (
	"cmp"
	"slices"
)

// ActiveQueue tracks cells that may need toppling.
// Pending collects work for the next generation while draining holds the
// work of the generation being stepped. Pending may contain duplicates
// until Compact is called.
type ActiveQueue struct {
	pending  []Cell
	draining []Cell
}

// Push appends a cell to the pending queue.
func (q *ActiveQueue) Push(c Cell) {
	q.pending = append(q.pending, c)
}

// Len returns the number of pending entries, duplicates included.
func (q *ActiveQueue) Len() int {
	return len(q.pending)
}

// Pending returns a copy of the pending entries.
func (q *ActiveQueue) Pending() []Cell {
	return slices.Clone(q.pending)
}

// swap moves pending work into the draining slot and deduplicates it.
// The old draining slice is reused as the new, empty pending queue.
func (q *ActiveQueue) swap() []Cell {
	q.pending, q.draining = q.draining[:0], q.pending
	q.draining = compactCells(q.draining)
	return q.draining
}

// clearDraining drops the processed generation.
func (q *ActiveQueue) clearDraining() {
	q.draining = q.draining[:0]
}

// Compact sorts pending by index and removes duplicates.
func (q *ActiveQueue) Compact() {
	q.pending = compactCells(q.pending)
}

func compactCells(cells []Cell) []Cell {
	slices.SortFunc(cells, func(a, b Cell) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return slices.CompactFunc(cells, func(a, b Cell) bool {
		return a.Index == b.Index
	})
}

// Package core provides the incremental abelian sandpile engine.
// This package is UI-agnostic and deterministic.
package core

import (
	"errors"
	"fmt"
)

const (
	// Threshold is the largest stable grain count. A cell holding more topples.
	Threshold = 3

	// ToppleAmount is removed from a toppling cell, one grain per neighbor.
	ToppleAmount = 4

	// InjectAmount is the number of grains added by InjectPoint.
	InjectAmount = 40
)

var (
	// ErrOutOfRange is returned when a coordinate lies outside the grid.
	ErrOutOfRange = errors.New("coordinate out of range")

	// ErrInvalidSize is returned when a grid is created with non-positive dimensions.
	ErrInvalidSize = errors.New("invalid grid size")

	// ErrBadSnapshot is returned when a snapshot cannot be decoded or restored.
	ErrBadSnapshot = errors.New("bad snapshot")
)

// Cell identifies a grid cell by its flat index and coordinates.
type Cell struct {
	Index int
	X     int
	Y     int
}

// String returns a string representation of the cell.
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)#%d", c.X, c.Y, c.Index)
}

// InvariantError reports a broken internal invariant.
// It is raised with panic, never returned.
type InvariantError struct {
	Msg string
}

func (e InvariantError) Error() string {
	return "sandpile: invariant violated: " + e.Msg
}

// neighbors lists the orthogonal offsets a topple distributes to.
var neighbors = [4][2]int{
	{0, -1}, // up
	{1, 0},  // right
	{0, 1},  // down
	{-1, 0}, // left
}

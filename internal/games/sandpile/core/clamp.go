package core

import "math"

// Clamp maps a continuous, possibly out-of-range coordinate to a grid cell.
// Negative values (and NaN) map to 0, values at or past the extent map to
// the last row or column, and fractions truncate.
func (g *Grid) Clamp(x, y float64) (int, int) {
	return clampAxis(x, g.W), clampAxis(y, g.H)
}

// Clamp maps a continuous coordinate to a cell of the field.
func (f *Field) Clamp(x, y float64) (int, int) {
	return f.grid.Clamp(x, y)
}

func clampAxis(v float64, extent int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(extent) {
		return extent - 1
	}
	return int(v)
}

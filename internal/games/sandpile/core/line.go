package core

// InjectPoint adds InjectAmount grains to (x, y) and queues the cell.
func (f *Field) InjectPoint(x, y int) error {
	p, err := f.CellForInjection(x, y)
	if err != nil {
		return err
	}
	*p = ApplyDelta(*p, InjectAmount)
	return nil
}

// InjectLine calls InjectPoint once for every cell on the discrete line from
// (x1, y1) to (x2, y2), endpoints included. Both endpoints are validated
// before any grain is added.
func (f *Field) InjectLine(x1, y1, x2, y2 int) error {
	if _, err := f.grid.Cell(x1, y1); err != nil {
		return err
	}
	if _, err := f.grid.Cell(x2, y2); err != nil {
		return err
	}
	var err error
	RasterLine(x1, y1, x2, y2, func(x, y int) {
		if err == nil {
			err = f.InjectPoint(x, y)
		}
	})
	return err
}

// RasterLine visits each cell of an 8-connected Bresenham line exactly once.
// The axis with the greater extent drives the loop; the minor axis advances
// when the accumulated error turns positive.
func RasterLine(x1, y1, x2, y2 int, visit func(x, y int)) {
	dx, dy := x2-x1, y2-y1
	adx, ady := abs(dx), abs(dy)

	if ady <= adx {
		// X-dominant: always walk left to right
		if dx < 0 {
			x1, y1, x2, y2 = x2, y2, x1, y1
			dy = -dy
		}
		step := 1
		if dy < 0 {
			step = -1
		}
		e := 2*ady - adx
		y := y1
		for x := x1; x <= x2; x++ {
			visit(x, y)
			if e > 0 {
				y += step
				e -= 2 * adx
			}
			e += 2 * ady
		}
		return
	}

	// Y-dominant: always walk top to bottom
	if dy < 0 {
		x1, y1, x2, y2 = x2, y2, x1, y1
		dx = -dx
	}
	step := 1
	if dx < 0 {
		step = -1
	}
	e := 2*adx - ady
	x := x1
	for y := y1; y <= y2; y++ {
		visit(x, y)
		if e > 0 {
			x += step
			e -= 2 * ady
		}
		e += 2 * adx
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package stats

// canvas is a braille dot grid: every terminal cell holds 2x4 dots, which
// gives the chart four times the vertical and twice the horizontal
// resolution of plain characters.
type canvas struct {
	cols  int
	rows  int
	cells [][]uint8
}

func newCanvas(cols, rows int) *canvas {
	cells := make([][]uint8, rows)
	for y := range cells {
		cells[y] = make([]uint8, cols)
	}
	return &canvas{cols: cols, rows: rows, cells: cells}
}

func (c *canvas) dotWidth() int  { return c.cols * 2 }
func (c *canvas) dotHeight() int { return c.rows * 4 }

func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellX, cellY := x/2, y/4
	if cellY >= c.rows || cellX >= c.cols {
		return
	}
	c.cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func (c *canvas) line(x0, y0, x1, y1 int) {
	drawLine(x0, y0, x1, y1, c.set)
}

func (c *canvas) rune(col, row int) (rune, bool) {
	mask := c.cells[row][col]
	if mask == 0 {
		return ' ', false
	}
	return brailleFromMask(mask), true
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func brailleDotMask(x, y int) uint8 {
	if x == 0 {
		switch y {
		case 0:
			return 0x01
		case 1:
			return 0x02
		case 2:
			return 0x04
		case 3:
			return 0x40
		}
		return 0
	}
	switch y {
	case 0:
		return 0x08
	case 1:
		return 0x10
	case 2:
		return 0x20
	case 3:
		return 0x80
	}
	return 0
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

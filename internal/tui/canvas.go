package tui

import "strings"

// Braille patterns pack a 2x4 dot grid into one rune:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille-dot terminal canvas with a world-space window
// mapped onto it, used for the dashboard's top-down (XZ plane) scene
// view. The drawable resolution is (Width*2) x (Height*4) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	// world window, X right / Z up on screen
	minX, minZ, maxX, maxZ float64
}

// NewCanvas builds an empty canvas of w x h characters covering the
// world rectangle [minX,maxX] x [minZ,maxZ].
func NewCanvas(w, h int, minX, minZ, maxX, maxZ float64) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		minX:   minX, minZ: minZ, maxX: maxX, maxZ: maxZ,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

func (c *Canvas) project(wx, wz float64) (int, int) {
	spanX := c.maxX - c.minX
	spanZ := c.maxZ - c.minZ
	if spanX <= 0 || spanZ <= 0 {
		return -1, -1
	}
	px := int((wx - c.minX) / spanX * float64(c.Width*2))
	py := int((c.maxZ - wz) / spanZ * float64(c.Height*4))
	return px, py
}

// Set lights the dot nearest world point (wx, wz).
func (c *Canvas) Set(wx, wz float64) {
	x, y := c.project(wx, wz)
	c.setDot(x, y)
}

func (c *Canvas) setDot(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Line draws a world-space segment with Bresenham over the dot grid.
func (c *Canvas) Line(x0w, z0w, x1w, z1w float64) {
	x0, y0 := c.project(x0w, z0w)
	x1, y1 := c.project(x1w, z1w)
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.setDot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Marker lights a small plus-shaped cluster of dots at a world point so
// sources and the listener stand out from single-dot geometry.
func (c *Canvas) Marker(wx, wz float64) {
	x, y := c.project(wx, wz)
	c.setDot(x, y)
	c.setDot(x+1, y)
	c.setDot(x-1, y)
	c.setDot(x, y+1)
	c.setDot(x, y-1)
}

// Clear resets every cell to the empty braille rune.
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

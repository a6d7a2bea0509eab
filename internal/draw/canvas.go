// Package draw renders logical-space shapes to a terminal using colored
// half-block characters.
package draw

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Color is a 24-bit RGB value (0xRRGGBB).
type Color uint32

// RGB splits the color into channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// ParseHex parses "#rrggbb" or "rrggbb". Invalid input yields white.
func ParseHex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0xffffff
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0xffffff
	}
	return Color(v)
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// pixel is a color with a presence bit so black can still be drawn.
type pixel uint32

const pixelSet pixel = 1 << 24

func (p pixel) set() bool    { return p&pixelSet != 0 }
func (p pixel) color() Color { return Color(p &^ pixelSet) }

// cell is the pair of sub-pixels rendered into one terminal character.
type cell struct {
	top, bottom pixel
}

// Canvas is a color drawing buffer with 2x vertical resolution using
// half-block characters. Drawing calls take logical coordinates, which are
// divided by unitsPerPixel to get sub-pixels.
//
// Render only emits cells that changed since the previous Render.
type Canvas struct {
	termWidth      int // Actual terminal columns
	termHeight     int // Actual terminal rows
	subPixelHeight int // termHeight * 2
	pixels         []pixel
	prev           []cell
	forceRedraw    bool

	unitsPerPixel float64
	scale         float64 // 1 / unitsPerPixel

	// 0-based terminal offsets for centering the render area.
	offsetCol int
	offsetRow int

	// Reusable buffers to reduce allocations
	renderBuf       strings.Builder
	numBuf          [20]byte
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewCanvas creates a canvas covering termWidth x termHeight terminal cells
// where every sub-pixel spans unitsPerPixel logical units on both axes.
func NewCanvas(termWidth, termHeight int, unitsPerPixel float64) *Canvas {
	if unitsPerPixel <= 0 {
		unitsPerPixel = 1
	}
	c := &Canvas{
		unitsPerPixel: unitsPerPixel,
		scale:         1 / unitsPerPixel,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions. The logical size
// follows the terminal; the scale stays fixed.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	if termWidth == c.termWidth && termHeight == c.termHeight && c.pixels != nil {
		return
	}
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.subPixelHeight = termHeight * 2
	c.pixels = make([]pixel, c.subPixelHeight*termWidth)
	c.prev = make([]cell, termHeight*termWidth)
	c.forceRedraw = true
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render emit every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a sub-pixel at terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = pixel(col) | pixelSet
	}
}

// Set sets the sub-pixel under a logical coordinate.
func (c *Canvas) Set(x, y float64, col Color) {
	c.setPixel(int(math.Floor(x*c.scale)), int(math.Floor(y*c.scale)), col)
}

// FillRect fills an axis-aligned logical rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, col Color) {
	x0 := int(math.Floor(x * c.scale))
	y0 := int(math.Floor(y * c.scale))
	x1 := int(math.Ceil((x + w) * c.scale))
	y1 := int(math.Ceil((y + h) * c.scale))
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.setPixel(px, py, col)
		}
	}
}

// DrawCircle draws a circle around a logical center. Radii smaller than a
// sub-pixel still mark the center.
func (c *Canvas) DrawCircle(cx, cy, r float64, col Color, filled bool) {
	pcx := cx * c.scale
	pcy := cy * c.scale
	pr := r * c.scale
	if pr < 0.5 {
		c.setPixel(int(math.Floor(pcx)), int(math.Floor(pcy)), col)
		return
	}

	inner := (pr - 1) * (pr - 1)
	outer := pr * pr
	y0, y1 := int(math.Floor(pcy-pr)), int(math.Ceil(pcy+pr))
	x0, x1 := int(math.Floor(pcx-pr)), int(math.Ceil(pcx+pr))
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			dx := float64(px) + 0.5 - pcx
			dy := float64(py) + 0.5 - pcy
			d := dx*dx + dy*dy
			if d > outer {
				continue
			}
			if !filled && d < inner {
				continue
			}
			c.setPixel(px, py, col)
		}
	}
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to sub-pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col Color) {
	x1 := int(math.Floor(p1.X * c.scale))
	y1 := int(math.Floor(p1.Y * c.scale))
	x2 := int(math.Floor(p2.X * c.scale))
	y2 := int(math.Floor(p2.Y * c.scale))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon on the canvas.
// If filled is true, the interior is filled using scanline algorithm.
func (c *Canvas) DrawPolygon(points []Point, col Color, filled bool) {
	if len(points) < 3 {
		return
	}

	if filled {
		c.fillPolygon(points, col)
	}

	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], col)
	}
}

// fillPolygon fills a polygon using scanline algorithm in sub-pixel space.
func (c *Canvas) fillPolygon(points []Point, col Color) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scale, Y: p.Y * c.scale}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	yStart := int(math.Floor(minY))
	yEnd := int(math.Ceil(maxY))

	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]

			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections

		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i] - 0.5))
			xEnd := int(math.Floor(intersections[i+1] - 0.5))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y, col)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// Slightly below a typical MTU for smooth SSH transmission.
const maxChunkSize = 1400

// Render writes every changed cell to w using half-block characters.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()

	lastRow, lastCol := -1, -1
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !c.forceRedraw && cur == c.prev[idx] {
				continue
			}
			c.prev[idx] = cur

			if row != lastRow || col != lastCol+1 {
				c.moveCursor(row+1+c.offsetRow, col+1+c.offsetCol)
			}
			c.writeCell(cur)
			lastRow, lastCol = row, col
		}
	}
	c.forceRedraw = false

	if c.renderBuf.Len() == 0 {
		return nil
	}
	c.renderBuf.WriteString("\033[0m")
	return writeChunked(w, c.renderBuf.String())
}

func (c *Canvas) moveCursor(row, col int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) writeColor(layer string, col Color) {
	r, g, b := col.RGB()
	c.renderBuf.WriteString(layer)
	c.renderBuf.Write(strconv.AppendUint(c.numBuf[:0], uint64(r), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendUint(c.numBuf[:0], uint64(g), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendUint(c.numBuf[:0], uint64(b), 10))
	c.renderBuf.WriteByte('m')
}

func (c *Canvas) writeCell(cl cell) {
	c.renderBuf.WriteString("\033[0m")
	switch {
	case cl.top.set() && cl.bottom.set() && cl.top == cl.bottom:
		c.writeColor("\033[38;2;", cl.top.color())
		c.renderBuf.WriteRune(BlockFull)
	case cl.top.set() && cl.bottom.set():
		c.writeColor("\033[38;2;", cl.top.color())
		c.writeColor("\033[48;2;", cl.bottom.color())
		c.renderBuf.WriteRune(BlockUpperHalf)
	case cl.top.set():
		c.writeColor("\033[38;2;", cl.top.color())
		c.renderBuf.WriteRune(BlockUpperHalf)
	case cl.bottom.set():
		c.writeColor("\033[38;2;", cl.bottom.color())
		c.renderBuf.WriteRune(BlockLowerHalf)
	default:
		c.renderBuf.WriteByte(' ')
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return nil
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	buf.WriteString("\033[0m")
	if hasV {
		if hasH {
			buf.WriteString(cursorTo(top, left) + "┌" + line + "┐")
			buf.WriteString(cursorTo(bottom, left) + "└" + line + "┘")
		} else {
			buf.WriteString(cursorTo(top, c.offsetCol+1) + line)
			buf.WriteString(cursorTo(bottom, c.offsetCol+1) + line)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			buf.WriteString(cursorTo(row, left) + "│" + cursorTo(row, right) + "│")
		}
	}
	return writeChunked(w, buf.String())
}

// LogicalWidth returns the logical width covered by the canvas.
func (c *Canvas) LogicalWidth() float64 {
	return float64(c.termWidth) * c.unitsPerPixel
}

// LogicalHeight returns the logical height covered by the canvas.
func (c *Canvas) LogicalHeight() float64 {
	return float64(c.subPixelHeight) * c.unitsPerPixel
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based terminal
// position (col, row) inside the canvas, without the centering offset.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Floor(x * c.scale))
	py := int(math.Floor(y * c.scale))
	return px + 1, py/2 + 1
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

func cursorTo(row, col int) string {
	return "\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H"
}

func writeChunked(w io.Writer, data string) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package render

import (
	"github.com/gdamore/tcell/v2"
)

// quadrantChars maps 4-bit coverage patterns to Unicode quadrant
// characters. Bit order: 0=UL, 1=UR, 2=LL, 3=LR (1 = foreground)
var quadrantChars = [16]rune{
	' ', '▘', '▝', '▀',
	'▖', '▌', '▞', '▛',
	'▗', '▚', '▐', '▜',
	'▄', '▙', '▟', '█',
}

type rgb struct {
	r, g, b uint8
}

type gridCell struct {
	ch rune
	fg rgb
	bg rgb
}

// CellGrid converts the framebuffer into terminal cells, one cell per
// 2x2 pixel block, and flushes only cells that changed since the last
// frame
type CellGrid struct {
	cols, rows int
	cells      []gridCell
	prev       []gridCell
	force      bool
}

// NewCellGrid allocates a grid for the given terminal dimensions
func NewCellGrid(cols, rows int) *CellGrid {
	g := &CellGrid{}
	g.Resize(cols, rows)
	return g
}

// Resize adjusts the grid and forces a full redraw on the next flush
func (g *CellGrid) Resize(cols, rows int) {
	size := cols * rows
	if cap(g.cells) < size {
		g.cells = make([]gridCell, size)
		g.prev = make([]gridCell, size)
	} else {
		g.cells = g.cells[:size]
		g.prev = g.prev[:size]
	}
	g.cols, g.rows = cols, rows
	g.force = true
}

// FromFramebuffer converts pixel blocks to quadrant cells. The buffer
// must be at least 2*cols x 2*rows pixels
func (g *CellGrid) FromFramebuffer(fb *Framebuffer) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			var block [4]rgb
			px, py := col*2, row*2
			block[0].r, block[0].g, block[0].b = fb.At(px, py)
			block[1].r, block[1].g, block[1].b = fb.At(px+1, py)
			block[2].r, block[2].g, block[2].b = fb.At(px, py+1)
			block[3].r, block[3].g, block[3].b = fb.At(px+1, py+1)

			ch, fg, bg := bestQuadrant(block)
			g.cells[row*g.cols+col] = gridCell{ch: ch, fg: fg, bg: bg}
		}
	}
}

// SetText overlays a string at a cell position, clipped to the grid
func (g *CellGrid) SetText(col, row int, text string, fg, bg tcell.Color) {
	if row < 0 || row >= g.rows {
		return
	}
	fr, fgc, fb := fg.RGB()
	br, bgc, bb := bg.RGB()
	f := rgb{uint8(fr), uint8(fgc), uint8(fb)}
	b := rgb{uint8(br), uint8(bgc), uint8(bb)}
	for _, r := range text {
		if col < 0 {
			col++
			continue
		}
		if col >= g.cols {
			break
		}
		g.cells[row*g.cols+col] = gridCell{ch: r, fg: f, bg: b}
		col++
	}
}

// Flush writes changed cells to the screen and shows the frame
func (g *CellGrid) Flush(screen tcell.Screen) {
	for i, c := range g.cells {
		if !g.force && c == g.prev[i] {
			continue
		}
		style := tcell.StyleDefault.
			Foreground(tcell.NewRGBColor(int32(c.fg.r), int32(c.fg.g), int32(c.fg.b))).
			Background(tcell.NewRGBColor(int32(c.bg.r), int32(c.bg.g), int32(c.bg.b)))
		screen.SetContent(i%g.cols, i/g.cols, c.ch, nil, style)
	}
	copy(g.prev, g.cells)
	g.force = false
	screen.Show()
}

// bestQuadrant picks the quadrant character and fg/bg pair minimizing
// squared color error across the 2x2 block
func bestQuadrant(block [4]rgb) (rune, rgb, rgb) {
	bestErr := int(^uint(0) >> 1)
	bestPattern := 0
	var bestFg, bestBg rgb

	for pattern := 0; pattern < 16; pattern++ {
		fg, bg, err := patternColors(block, pattern)
		if err < bestErr {
			bestErr = err
			bestPattern = pattern
			bestFg, bestBg = fg, bg
		}
	}
	return quadrantChars[bestPattern], bestFg, bestBg
}

// patternColors averages the pixels assigned to fg and bg by the
// pattern and totals the resulting squared error
func patternColors(block [4]rgb, pattern int) (fg, bg rgb, totalErr int) {
	var fr, fgSum, fb, fn int
	var br, bgSum, bb, bn int

	for i := 0; i < 4; i++ {
		if pattern&(1<<i) != 0 {
			fr += int(block[i].r)
			fgSum += int(block[i].g)
			fb += int(block[i].b)
			fn++
		} else {
			br += int(block[i].r)
			bgSum += int(block[i].g)
			bb += int(block[i].b)
			bn++
		}
	}
	if fn > 0 {
		fg = rgb{uint8(fr / fn), uint8(fgSum / fn), uint8(fb / fn)}
	}
	if bn > 0 {
		bg = rgb{uint8(br / bn), uint8(bgSum / bn), uint8(bb / bn)}
	}

	for i := 0; i < 4; i++ {
		target := bg
		if pattern&(1<<i) != 0 {
			target = fg
		}
		totalErr += colorDistSq(block[i], target)
	}
	return fg, bg, totalErr
}

func colorDistSq(a, b rgb) int {
	dr := int(a.r) - int(b.r)
	dg := int(a.g) - int(b.g)
	db := int(a.b) - int(b.b)
	return dr*dr + dg*dg + db*db
}

package render

// Framebuffer is the per-frame RGBA compositing target. One logical
// pixel maps to a quadrant of a terminal cell, so the buffer is twice
// the cell grid in each dimension
type Framebuffer struct {
	pix    []uint8 // RGBA, 4 bytes per pixel
	width  int
	height int
}

// NewFramebuffer allocates a buffer of the given pixel dimensions
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		pix:    make([]uint8, width*height*4),
		width:  width,
		height: height,
	}
}

// Size returns pixel dimensions
func (f *Framebuffer) Size() (int, int) {
	return f.width, f.height
}

// Resize adjusts dimensions, reallocating only if capacity is short
func (f *Framebuffer) Resize(width, height int) {
	size := width * height * 4
	if cap(f.pix) < size {
		f.pix = make([]uint8, size)
	} else {
		f.pix = f.pix[:size]
	}
	f.width = width
	f.height = height
	f.Clear()
}

// Clear resets the buffer to black using exponential copy
func (f *Framebuffer) Clear() {
	if len(f.pix) == 0 {
		return
	}
	f.pix[0], f.pix[1], f.pix[2], f.pix[3] = 0, 0, 0, 255
	for filled := 4; filled < len(f.pix); filled *= 2 {
		copy(f.pix[filled:], f.pix[:filled])
	}
}

// At returns the pixel color, zero outside bounds
func (f *Framebuffer) At(x, y int) (r, g, b uint8) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return 0, 0, 0
	}
	i := (y*f.width + x) * 4
	return f.pix[i], f.pix[i+1], f.pix[i+2]
}

// BlendAt alpha-blends a color over the existing pixel
func (f *Framebuffer) BlendAt(x, y int, r, g, b uint8, alpha float64) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	if alpha >= 1.0 {
		i := (y*f.width + x) * 4
		f.pix[i], f.pix[i+1], f.pix[i+2] = r, g, b
		return
	}
	if alpha <= 0 {
		return
	}
	i := (y*f.width + x) * 4
	inv := 1.0 - alpha
	f.pix[i] = uint8(float64(f.pix[i])*inv + float64(r)*alpha)
	f.pix[i+1] = uint8(float64(f.pix[i+1])*inv + float64(g)*alpha)
	f.pix[i+2] = uint8(float64(f.pix[i+2])*inv + float64(b)*alpha)
}

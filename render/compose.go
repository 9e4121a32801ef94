package render

import (
	"math"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

// Label is a text overlay anchored at a framebuffer pixel, used for
// live-lane queue badges
type Label struct {
	X, Y int
	Text string
}

// Compose paints the active tile stack into the framebuffer and
// returns badge overlays. Tiles are drawn per pixel through the
// inverse of the global rotation, so the whole layer container appears
// rotated by -camera.Rotation while tile selection stays axis-aligned
func (o *Orchestrator) Compose(cam camera.Camera, fb *Framebuffer) []Label {
	fb.Clear()
	fbW, fbH := fb.Size()
	cx := float64(fbW) / 2
	cy := float64(fbH) / 2

	// Forward rotation of the container is -rotation; mapping a screen
	// pixel back into layer space applies the inverse, +rotation
	sin, cos := math.Sincos(cam.Rotation)

	var labels []Label
	for _, v := range o.sortedViews() {
		if v.opacity <= parameter.ChildOpacityEpsilon {
			continue
		}
		if v.loaded && v.img != nil {
			o.composeTile(v, fb, cx, cy, sin, cos)
		}
		if v.badge != "" || v.rendering {
			text := v.badge
			if text == "" {
				text = "~"
			}
			lx, ly := tileCenterOnScreen(v, cx, cy, sin, cos)
			labels = append(labels, Label{X: int(lx), Y: int(ly), Text: text})
		}
	}
	return labels
}

// composeTile rasterizes one tile. The screen-space bounding box of the
// rotated quad limits the pixel loop; each covered pixel maps back into
// tile-local coordinates for sampling
func (o *Orchestrator) composeTile(v *TileView, fb *Framebuffer, cx, cy, sin, cos float64) {
	size := v.size
	if size <= 0 {
		return
	}
	over := size * parameter.SeamOverscale

	// Quad corners in layer space (pixels relative to viewport center)
	x0 := v.relX * size
	y0 := v.relY * size
	corners := [4][2]float64{
		{x0, y0}, {x0 + over, y0}, {x0, y0 + over}, {x0 + over, y0 + over},
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		// Forward transform: rotate by -rotation about the center
		sx := cx + c[0]*cos + c[1]*sin
		sy := cy - c[0]*sin + c[1]*cos
		minX, maxX = math.Min(minX, sx), math.Max(maxX, sx)
		minY, maxY = math.Min(minY, sy), math.Max(maxY, sy)
	}

	fbW, fbH := fb.Size()
	px0 := clampInt(int(math.Floor(minX)), 0, fbW)
	px1 := clampInt(int(math.Ceil(maxX))+1, 0, fbW)
	py0 := clampInt(int(math.Floor(minY)), 0, fbH)
	py1 := clampInt(int(math.Ceil(maxY))+1, 0, fbH)

	img := v.img
	iw := img.Bounds().Dx()
	ih := img.Bounds().Dy()
	if iw == 0 || ih == 0 {
		return
	}

	for py := py0; py < py1; py++ {
		dy := float64(py) + 0.5 - cy
		for px := px0; px < px1; px++ {
			dx := float64(px) + 0.5 - cx
			// Inverse transform back into layer space
			qx := dx*cos - dy*sin
			qy := dx*sin + dy*cos

			lx := (qx - x0) / over
			ly := (qy - y0) / over
			if lx < 0 || lx >= 1 || ly < 0 || ly >= 1 {
				continue
			}
			ix := int(lx * float64(iw))
			iy := int(ly * float64(ih))
			i := img.PixOffset(ix, iy)
			fb.BlendAt(px, py, img.Pix[i], img.Pix[i+1], img.Pix[i+2], v.opacity)
		}
	}
}

// tileCenterOnScreen maps a tile's center through the container rotation
func tileCenterOnScreen(v *TileView, cx, cy, sin, cos float64) (float64, float64) {
	mx := (v.relX + 0.5) * v.size
	my := (v.relY + 0.5) * v.size
	return cx + mx*cos + my*sin, cy - mx*sin + my*cos
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

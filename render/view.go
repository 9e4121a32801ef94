package render

import (
	"image"
	"image/draw"

	"github.com/veyra/abyss/tiles"
)

// TileView is one on-screen tile element. It is owned exclusively by
// the orchestrator on the main loop; workers never see it
type TileView struct {
	ID tiles.ID

	img    *image.RGBA
	loaded bool

	// Cached style fields, compared on reconcile so only real changes
	// touch the element
	tx, ty  float64
	size    float64 // tile edge on screen in pixels, before overscale
	opacity float64
	z       int

	relX, relY float64

	badge     string
	rendering bool
}

// Loaded reports whether the tile has finished (image or blank)
func (v *TileView) Loaded() bool {
	return v.loaded
}

// Image returns the decoded tile, nil when blank or pending
func (v *TileView) Image() *image.RGBA {
	return v.img
}

// SetBadge implements sched.Badger
func (v *TileView) SetBadge(label string) {
	v.badge = label
}

// SetRendering implements sched.Badger
func (v *TileView) SetRendering(on bool) {
	v.rendering = on
}

// deliver installs a completed image. nil marks the tile loaded-as-blank
// so readiness checks count it as processed
func (v *TileView) deliver(img image.Image) {
	v.loaded = true
	if img == nil {
		v.img = nil
		return
	}
	v.img = toRGBA(img)
}

// toRGBA normalizes a decoded image for direct pixel access during
// compositing
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

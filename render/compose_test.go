package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/dataset"
)

func composeSetup(t *testing.T, rotation float64) (*Orchestrator, camera.Camera, *Framebuffer) {
	t.Helper()
	o, _, _, _ := testOrchestrator()
	o.SetDataset("d", 32, nil, false)
	o.Resize(64, 64)

	cam := camera.New()
	cam.Rotation = rotation
	o.Reconcile(cam)

	for _, v := range o.Views() {
		o.ApplyCompletion(dataset.Completion{
			ID:      v.ID,
			Outcome: dataset.OutcomeOK,
			Image:   solidTile(color.RGBA{R: 250}, 8),
		})
	}
	return o, cam, NewFramebuffer(64, 64)
}

func TestComposeCoversViewportCenter(t *testing.T) {
	o, cam, fb := composeSetup(t, 0)
	o.Compose(cam, fb)

	r, _, _ := fb.At(32, 32)
	if r < 200 {
		t.Fatalf("center pixel r = %d, want tile color", r)
	}
	// The level-0 tile spans 32px around the center; pixels outside it
	// stay background
	r, _, _ = fb.At(1, 1)
	if r != 0 {
		t.Fatalf("far corner r = %d, want background", r)
	}
}

func TestComposeHonorsRotation(t *testing.T) {
	// A square tile centered on the viewport covers the same center
	// pixel at any rotation
	for _, rot := range []float64{0, math.Pi / 6, math.Pi / 2} {
		o, cam, fb := composeSetup(t, rot)
		o.Compose(cam, fb)
		if r, _, _ := fb.At(32, 32); r < 200 {
			t.Fatalf("rotation %.2f: center pixel r = %d", rot, r)
		}
	}

	// At 45 degrees the tile's axis-aligned extent grows by sqrt(2): a
	// pixel just outside the unrotated edge along x is now covered
	o, cam, fb := composeSetup(t, math.Pi/4)
	o.Compose(cam, fb)
	if r, _, _ := fb.At(32+19, 32); r < 200 {
		t.Fatal("rotated tile corner not rasterized")
	}

	o0, cam0, fb0 := composeSetup(t, 0)
	o0.Compose(cam0, fb0)
	if r, _, _ := fb0.At(32+19, 32); r != 0 {
		t.Fatal("unrotated tile wider than its edge")
	}
}

func TestComposeSkipsPendingTiles(t *testing.T) {
	o, _, _, _ := testOrchestrator()
	o.SetDataset("d", 32, nil, false)
	o.Resize(64, 64)
	cam := camera.New()
	o.Reconcile(cam)

	fb := NewFramebuffer(64, 64)
	o.Compose(cam, fb)
	if r, _, _ := fb.At(32, 32); r != 0 {
		t.Fatalf("pending tile painted pixels: r = %d", r)
	}
}

func TestFramebufferClearAndBlend(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.BlendAt(1, 1, 100, 100, 100, 1.0)
	fb.Clear()
	if r, g, b := fb.At(1, 1); r != 0 || g != 0 || b != 0 {
		t.Fatalf("clear left (%d,%d,%d)", r, g, b)
	}

	fb.BlendAt(2, 2, 200, 0, 0, 0.5)
	r, _, _ := fb.At(2, 2)
	if r < 95 || r > 105 {
		t.Fatalf("half blend r = %d, want ~100", r)
	}

	// Out-of-bounds writes are ignored
	fb.BlendAt(-1, 0, 255, 255, 255, 1.0)
	fb.BlendAt(0, 17, 255, 255, 255, 1.0)
}

func TestQuadrantSelection(t *testing.T) {
	white := rgb{255, 255, 255}
	black := rgb{0, 0, 0}

	// Uniform block: zero error with everything background
	ch, _, bg := bestQuadrant([4]rgb{white, white, white, white})
	if ch != ' ' || bg != white {
		t.Fatalf("uniform block -> %q bg=%v", ch, bg)
	}

	// Top half white, bottom half black: exact upper-half character
	ch, fg, bg := bestQuadrant([4]rgb{white, white, black, black})
	if ch != '▀' || fg != white || bg != black {
		t.Fatalf("split block -> %q fg=%v bg=%v", ch, fg, bg)
	}

	// Single bright quadrant keeps its color in the foreground
	ch, fg, _ = bestQuadrant([4]rgb{white, black, black, black})
	if ch != '▘' || fg != white {
		t.Fatalf("single quadrant -> %q fg=%v", ch, fg)
	}
}

func TestCellGridDirtyTracking(t *testing.T) {
	fb := NewFramebuffer(8, 4)
	g := NewCellGrid(4, 2)

	g.FromFramebuffer(fb)
	if len(g.cells) != 8 {
		t.Fatalf("cell count = %d", len(g.cells))
	}

	// Paint one 2x2 block and reconvert: exactly that cell changes
	fb.BlendAt(2, 0, 255, 0, 0, 1.0)
	fb.BlendAt(3, 0, 255, 0, 0, 1.0)
	fb.BlendAt(2, 1, 255, 0, 0, 1.0)
	fb.BlendAt(3, 1, 255, 0, 0, 1.0)

	prev := make([]gridCell, len(g.cells))
	copy(prev, g.cells)
	g.FromFramebuffer(fb)

	changed := 0
	for i := range g.cells {
		if g.cells[i] != prev[i] {
			changed++
		}
	}
	if changed != 1 {
		t.Fatalf("%d cells changed, want 1", changed)
	}
}

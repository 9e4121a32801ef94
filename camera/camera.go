package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/veyra/abyss/bignum"
)

// ErrBadCamera reports a rejected camera mutation; prior state is preserved
var ErrBadCamera = errors.New("bad camera update")

// Camera is the canonical navigation state. GlobalLevel's integer part
// selects the base LOD, the fractional part drives child-layer opacity.
// X/Y are normalized global coordinates in [0,1] held in big-decimal so
// deep-zoom positions survive past float precision
type Camera struct {
	GlobalLevel float64
	X, Y        bignum.Dec
	Rotation    float64 // radians, clockwise screen rotation
}

// New returns a camera centered on the world at level 0
func New() Camera {
	return Camera{
		X: bignum.FromFloat(0.5),
		Y: bignum.FromFloat(0.5),
	}
}

// BaseLevel is the integer LOD selected by GlobalLevel
func (c Camera) BaseLevel() int {
	return int(math.Floor(c.GlobalLevel))
}

// LevelFrac is the fractional part of GlobalLevel, the fading-in child
// layer's opacity
func (c Camera) LevelFrac() float64 {
	return c.GlobalLevel - math.Floor(c.GlobalLevel)
}

// Pan drags the world with the cursor by (dxPx, dyPx) screen pixels.
// Screen deltas rotate by +Rotation into the world frame (the layer
// stack is displayed rotated by -Rotation), scale by world units per
// pixel, and subtract. Coordinates clamp silently to [0,1]
func (c *Camera) Pan(dxPx, dyPx float64, tileSize int) {
	if tileSize <= 0 {
		return
	}
	sin, cos := math.Sincos(c.Rotation)
	rx := dxPx*cos - dyPx*sin
	ry := dxPx*sin + dyPx*cos

	worldPerPixel := bignum.Div(
		bignum.FromInt(1),
		bignum.FromInt(int64(tileSize)).Mul(bignum.Pow2(c.GlobalLevel)),
	)
	c.X = bignum.Clamp01(c.X.Sub(bignum.FromFloat(rx).Mul(worldPerPixel)))
	c.Y = bignum.Clamp01(c.Y.Sub(bignum.FromFloat(ry).Mul(worldPerPixel)))
}

// Zoom shifts GlobalLevel by delta, floored at 0. Position and rotation
// are unchanged. Non-finite deltas are rejected
func (c *Camera) Zoom(delta float64) error {
	next := c.GlobalLevel + delta
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return fmt.Errorf("%w: zoom delta %v", ErrBadCamera, delta)
	}
	c.GlobalLevel = math.Max(0, next)
	return nil
}

// SetRotation stores r in radians. No wrap-around normalization
func (c *Camera) SetRotation(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: rotation %v", ErrBadCamera, r)
	}
	c.Rotation = r
	return nil
}

// SetGlobalLevel replaces the zoom scalar, rejecting non-finite values
func (c *Camera) SetGlobalLevel(l float64) error {
	if math.IsNaN(l) || math.IsInf(l, 0) {
		return fmt.Errorf("%w: global level %v", ErrBadCamera, l)
	}
	c.GlobalLevel = math.Max(0, l)
	return nil
}

// Validate checks camera invariants, clamping coordinates in place
func (c *Camera) Validate() error {
	if math.IsNaN(c.GlobalLevel) || math.IsInf(c.GlobalLevel, 0) {
		return fmt.Errorf("%w: global level %v", ErrBadCamera, c.GlobalLevel)
	}
	c.X = bignum.Clamp01(c.X)
	c.Y = bignum.Clamp01(c.Y)
	return nil
}

package path

import (
	"math"

	"github.com/veyra/abyss/bignum"
	"github.com/veyra/abyss/camera"
)

// VisualDistance is the perceptual cost between two cameras. Position
// deltas are weighted by the screen scale at the coarser endpoint's
// level: using the minimum level keeps a deep-zoom pan comparable in
// cost to a shallow one instead of astronomically overestimating it
func VisualDistance(a, b camera.Camera) float64 {
	lref := math.Min(a.GlobalLevel, b.GlobalLevel)
	scale := bignum.Pow2(lref)

	dx, _ := b.X.Sub(a.X).Mul(scale).Float64()
	dy, _ := b.Y.Sub(a.Y).Mul(scale).Float64()
	dl := b.GlobalLevel - a.GlobalLevel
	dr := b.Rotation - a.Rotation

	return math.Sqrt(dx*dx + dy*dy + dl*dl + dr*dr)
}

package tiles

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/veyra/abyss/bignum"
	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

// Placed is a visible tile with its position relative to the camera in
// target-level tile units (tile top-left minus camera position)
type Placed struct {
	Level      int
	X, Y       bignum.Index
	RelX, RelY float64
}

// Result is the visible tile set at one level plus the index bounds of
// the accepted tiles
type Result struct {
	Tiles                  []Placed
	MinX, MaxX, MinY, MaxY bignum.Index // nil when no tile accepted
}

// searchRadiusCap bounds the sweep so a degenerate camera/level pairing
// cannot turn the O(R^2) loop into a memory bomb
const searchRadiusCap = 512

// VisibleForLevel returns the integer-indexed tiles intersecting the
// rotation-invariant bounding circle of the viewport at targetLevel.
//
// Big-decimal arithmetic happens exactly once per call, converting the
// camera position to target-level tile units; the sweep itself runs on
// native integers and floats
func VisibleForLevel(cam camera.Camera, targetLevel, viewW, viewH, tileSize int) (Result, error) {
	if targetLevel < 0 {
		return Result{}, nil
	}
	if err := cam.Validate(); err != nil {
		return Result{}, err
	}

	// Bounding circle to the farthest viewport corner: covers every
	// rotation without per-angle work
	viewRadiusPx := math.Hypot(float64(viewW)/2, float64(viewH)/2)

	displayScale := math.Exp2(cam.GlobalLevel - float64(targetLevel))
	tileSizeOnScreen := float64(tileSize) * displayScale
	if !(tileSizeOnScreen > 0) || math.IsInf(tileSizeOnScreen, 0) {
		return Result{}, fmt.Errorf("%w: display scale at level %d", camera.ErrBadCamera, targetLevel)
	}

	radiusInTiles := viewRadiusPx / tileSizeOnScreen
	searchRadius := int(math.Ceil(radiusInTiles))
	if searchRadius > searchRadiusCap {
		return Result{}, fmt.Errorf("%w: search radius %d at level %d", camera.ErrBadCamera, searchRadius, targetLevel)
	}

	// Single big-decimal conversion: camera position in target-level tile
	// units, split into an integer tile index and a float fraction
	scale := bignum.Pow2Int(targetLevel)
	centerX := cam.X.Mul(scale)
	centerY := cam.Y.Mul(scale)
	intX := bignum.FloorToIndex(centerX)
	intY := bignum.FloorToIndex(centerY)
	fracX := fracOf(centerX, intX)
	fracY := fracOf(centerY, intY)

	acceptSq := (radiusInTiles + parameter.CoverageBuffer) * (radiusInTiles + parameter.CoverageBuffer)

	var res Result
	for dy := -searchRadius; dy <= searchRadius; dy++ {
		cy := float64(dy) + 0.5 - fracY
		for dx := -searchRadius; dx <= searchRadius; dx++ {
			cx := float64(dx) + 0.5 - fracX
			if cx*cx+cy*cy >= acceptSq {
				continue
			}
			x := new(big.Int).Add(intX, big.NewInt(int64(dx)))
			y := new(big.Int).Add(intY, big.NewInt(int64(dy)))
			// Skip out-of-world indices rather than clamping: clamping
			// would alias edge tiles and break the exactly-one-tile
			// property at level 0
			if !bignum.IndexInRange(x, targetLevel) || !bignum.IndexInRange(y, targetLevel) {
				continue
			}
			res.Tiles = append(res.Tiles, Placed{
				Level: targetLevel,
				X:     x,
				Y:     y,
				RelX:  float64(dx) - fracX,
				RelY:  float64(dy) - fracY,
			})
			res.track(x, y)
		}
	}
	return res, nil
}

// fracOf returns d minus its floor as a float. The subtraction stays in
// big-decimal so the fraction is exact to float resolution even when d
// has hundreds of digits
func fracOf(d bignum.Dec, floor bignum.Index) float64 {
	f, _ := d.Sub(decimal.NewFromBigInt(floor, 0)).Float64()
	return f
}

func (r *Result) track(x, y bignum.Index) {
	if r.MinX == nil || x.Cmp(r.MinX) < 0 {
		r.MinX = x
	}
	if r.MaxX == nil || x.Cmp(r.MaxX) > 0 {
		r.MaxX = x
	}
	if r.MinY == nil || y.Cmp(r.MinY) < 0 {
		r.MinY = y
	}
	if r.MaxY == nil || y.Cmp(r.MaxY) > 0 {
		r.MaxY = y
	}
}

package path

import (
	"math"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

// filletEpsilon below which a corner degenerates to a sharp joint
const filletEpsilon = 1e-12

// buildPrimitives converts keyframes into the filleted line/corner chain
// and returns, per keyframe, the globalT of its anchor on that chain.
// Interior keyframes with a live fillet anchor at the corner midpoint;
// degenerate joints anchor at the primitive boundary
func buildPrimitives(kfs []camera.Camera) ([]primitive, []float64) {
	n := len(kfs)
	segLen := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		segLen[i] = VisualDistance(kfs[i], kfs[i+1])
	}

	prims := make([]primitive, 0, 2*n)
	stopT := make([]float64, n)

	start := kfs[0]
	for i := 0; i < n-1; i++ {
		last := i == n-2

		r := 0.0
		if !last {
			r = filletRadius(segLen[i], segLen[i+1])
		}

		if last || r < filletEpsilon {
			prims = append(prims, Line{A: start, B: kfs[i+1]})
			stopT[i+1] = float64(len(prims))
			start = kfs[i+1]
			continue
		}

		// Fillet offsets sit on the raw segments in parameter space:
		// t = 1 - r/lenPrev entering the corner, t = r/lenNext leaving it
		qIn := Line{A: kfs[i], B: kfs[i+1]}.at(1 - r/segLen[i])
		qOut := Line{A: kfs[i+1], B: kfs[i+2]}.at(r / segLen[i+1])

		prims = append(prims, Line{A: start, B: qIn})
		prims = append(prims, Corner{In: qIn, Mid: kfs[i+1], Out: qOut})
		stopT[i+1] = float64(len(prims)) - 0.5
		start = qOut
	}
	return prims, stopT
}

// filletRadius is half the shorter adjacent segment, capped so deep
// levels do not produce wide orbiting arcs
func filletRadius(prev, next float64) float64 {
	if prev <= 0 || next <= 0 {
		return 0
	}
	return math.Min(math.Min(prev, next)*parameter.FilletRatio, parameter.FilletCap)
}

package path

import (
	"math"
	"sort"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

// lutEntry maps a geometric parameter (primitive index + local t) to
// cumulative visual arc distance. Entries are strictly ordered in both
// fields, enabling binary search in either direction
type lutEntry struct {
	globalT float64
	dist    float64
}

// Sampler converts a keyframe list into a constant-visual-speed camera
// function. Immutable after Build; rebuilt whenever the path changes
type Sampler struct {
	prims       []primitive
	lut         []lutEntry
	totalLength float64
	stops       []float64

	// constant holds the camera of a single-keyframe path; such a path is
	// sampleable but not playable
	constant *camera.Camera
}

// Build constructs a sampler from canonical keyframe cameras.
// samplesPerPrim tunes LUT resolution; <= 0 selects the default
func Build(kfs []camera.Camera, samplesPerPrim int) *Sampler {
	if samplesPerPrim <= 0 {
		samplesPerPrim = parameter.SamplesPerPrimitive
	}

	switch len(kfs) {
	case 0:
		return &Sampler{}
	case 1:
		c := kfs[0]
		return &Sampler{constant: &c, stops: []float64{0}}
	}

	prims, stopT := buildPrimitives(kfs)
	s := &Sampler{prims: prims}
	s.buildLUT(samplesPerPrim)

	s.stops = make([]float64, len(stopT))
	for i, gt := range stopT {
		s.stops[i] = s.distAt(gt)
	}
	return s
}

// Playable reports whether the path supports playback (>= 2 keyframes)
func (s *Sampler) Playable() bool {
	return len(s.prims) > 0
}

// TotalLength is the path's visual arc length
func (s *Sampler) TotalLength() float64 {
	return s.totalLength
}

// Stops returns the arc distance at which each keyframe occurs, for
// timeline synchronization
func (s *Sampler) Stops() []float64 {
	return s.stops
}

// CameraAt evaluates the path at normalized progress p in [0,1]. The
// second return is false only for an empty path
func (s *Sampler) CameraAt(p float64) (camera.Camera, bool) {
	if s.constant != nil {
		return *s.constant, true
	}
	if len(s.prims) == 0 {
		return camera.Camera{}, false
	}
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))

	if s.totalLength == 0 {
		return s.prims[0].at(0), true
	}

	target := p * s.totalLength
	i := sort.Search(len(s.lut), func(i int) bool { return s.lut[i].dist >= target })
	if i == 0 {
		return s.evalGlobalT(s.lut[0].globalT), true
	}
	if i >= len(s.lut) {
		i = len(s.lut) - 1
	}
	lo, hi := s.lut[i-1], s.lut[i]
	gt := lo.globalT
	if hi.dist > lo.dist {
		gt += (hi.globalT - lo.globalT) * (target - lo.dist) / (hi.dist - lo.dist)
	}
	return s.evalGlobalT(gt), true
}

func (s *Sampler) evalGlobalT(gt float64) camera.Camera {
	pi := int(math.Floor(gt))
	if pi >= len(s.prims) {
		pi = len(s.prims) - 1
		return s.prims[pi].at(1)
	}
	if pi < 0 {
		pi = 0
		gt = 0
	}
	return s.prims[pi].at(gt - float64(pi))
}

// buildLUT samples every primitive at equal-t intervals, accumulating
// pairwise visual distance
func (s *Sampler) buildLUT(samplesPerPrim int) {
	s.lut = make([]lutEntry, 0, len(s.prims)*samplesPerPrim+1)
	s.lut = append(s.lut, lutEntry{0, 0})

	cum := 0.0
	prev := s.prims[0].at(0)
	for pi, pr := range s.prims {
		for j := 1; j <= samplesPerPrim; j++ {
			t := float64(j) / float64(samplesPerPrim)
			cur := pr.at(t)
			cum += VisualDistance(prev, cur)
			s.lut = append(s.lut, lutEntry{float64(pi) + t, cum})
			prev = cur
		}
	}
	s.totalLength = cum
}

// distAt converts a geometric parameter into cumulative arc distance by
// interpolating the LUT in the forward direction
func (s *Sampler) distAt(gt float64) float64 {
	i := sort.Search(len(s.lut), func(i int) bool { return s.lut[i].globalT >= gt })
	if i == 0 {
		return 0
	}
	if i >= len(s.lut) {
		return s.totalLength
	}
	lo, hi := s.lut[i-1], s.lut[i]
	if hi.globalT == lo.globalT {
		return hi.dist
	}
	return lo.dist + (hi.dist-lo.dist)*(gt-lo.globalT)/(hi.globalT-lo.globalT)
}

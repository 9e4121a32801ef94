package path

import (
	"math"
	"testing"

	"github.com/veyra/abyss/bignum"
	"github.com/veyra/abyss/camera"
)

// testSamples keeps LUT building fast in tests; accuracy margins below
// account for the coarser discretization
const testSamples = 400

func kf(level float64, x, y string) camera.Camera {
	c := camera.New()
	c.GlobalLevel = level
	xd, err := bignum.ParseDec(x)
	if err != nil {
		panic(err)
	}
	yd, err := bignum.ParseDec(y)
	if err != nil {
		panic(err)
	}
	c.X, c.Y = xd, yd
	return c
}

func deepZoomPath() []camera.Camera {
	return []camera.Camera{
		kf(0, "0.5", "0.5"),
		kf(10, "0.52", "0.52"),
		kf(25, "0.5201", "0.5201"),
		kf(50, "0.520105", "0.520105"),
	}
}

func TestConstantVisualSpeed(t *testing.T) {
	bignum.Raise(60)
	s := Build(deepZoomPath(), testSamples)
	if !s.Playable() {
		t.Fatal("4-keyframe path must be playable")
	}

	const n = 1000
	speeds := make([]float64, 0, n)
	prev, _ := s.CameraAt(0)
	for i := 1; i <= n; i++ {
		cur, ok := s.CameraAt(float64(i) / n)
		if !ok {
			t.Fatal("CameraAt returned no camera")
		}
		speeds = append(speeds, VisualDistance(prev, cur))
		prev = cur
	}

	mean := 0.0
	for _, v := range speeds {
		mean += v
	}
	mean /= float64(len(speeds))
	if mean <= 0 {
		t.Fatal("zero mean speed")
	}

	variance := 0.0
	minSpeed := math.Inf(1)
	for _, v := range speeds {
		variance += (v - mean) * (v - mean)
		minSpeed = math.Min(minSpeed, v)
	}
	variance /= float64(len(speeds))
	cv := math.Sqrt(variance) / mean

	if cv >= 0.05 {
		t.Fatalf("speed coefficient of variation %.4f, want < 0.05", cv)
	}
	// No stops along the path
	if minSpeed < 0.5*mean {
		t.Fatalf("min speed %.6f below half the mean %.6f", minSpeed, mean)
	}
}

func TestSafetyBounds(t *testing.T) {
	bignum.Raise(60)
	kfs := deepZoomPath()
	s := Build(kfs, testSamples)

	minX, maxX := 0.5, 0.520105
	pad := (maxX - minX) * 0.1
	lo, hi := minX-pad, maxX+pad

	for i := 0; i <= 500; i++ {
		cam, _ := s.CameraAt(float64(i) / 500)
		x, _ := cam.X.Float64()
		y, _ := cam.Y.Float64()
		if x < lo || x > hi || y < lo || y > hi {
			t.Fatalf("sample %d at (%v, %v) escaped the padded keyframe box", i, x, y)
		}
	}
}

func TestEndpointIdempotence(t *testing.T) {
	kfs := deepZoomPath()
	s := Build(kfs, testSamples)

	first, _ := s.CameraAt(0)
	last, _ := s.CameraAt(1)

	if VisualDistance(first, kfs[0]) > 1e-9 {
		t.Fatalf("CameraAt(0) drifted from the first keyframe")
	}
	if VisualDistance(last, kfs[len(kfs)-1]) > 1e-9 {
		t.Fatalf("CameraAt(1) drifted from the last keyframe")
	}
}

func TestCornerCurvature(t *testing.T) {
	// Pan-then-zoom with direction changes at interior keyframes
	kfs := []camera.Camera{
		kf(0, "0.2", "0.5"),
		kf(0, "0.5", "0.5"),
		kf(0, "0.5", "0.2"),
		kf(2, "0.5", "0.2"),
		kf(2, "0.7", "0.2"),
	}
	s := Build(kfs, testSamples)
	stops := s.Stops()
	if len(stops) != 5 {
		t.Fatalf("got %d stops", len(stops))
	}

	// 95% into the k1->k2 segment: inside the fillet at k2, so the sample
	// must bow away from the straight chord
	d := stops[1] + 0.95*(stops[2]-stops[1])
	cam, _ := s.CameraAt(d / s.TotalLength())

	lin := camera.Camera{GlobalLevel: 0}
	lin.X = kfs[1].X.Add(bignum.FromFloat(0.95).Mul(kfs[2].X.Sub(kfs[1].X)))
	lin.Y = kfs[1].Y.Add(bignum.FromFloat(0.95).Mul(kfs[2].Y.Sub(kfs[1].Y)))

	dx, _ := cam.X.Sub(lin.X).Float64()
	dy, _ := cam.Y.Sub(lin.Y).Float64()
	dev := math.Hypot(dx, dy)
	if dev < 1e-4 {
		t.Fatalf("corner deviation %.2e, want >= 1e-4", dev)
	}
}

func TestStopsMonotonic(t *testing.T) {
	s := Build(deepZoomPath(), testSamples)
	stops := s.Stops()
	if stops[0] != 0 {
		t.Fatalf("stops[0] = %v", stops[0])
	}
	for i := 1; i < len(stops); i++ {
		if stops[i] <= stops[i-1] {
			t.Fatalf("stops not increasing: %v", stops)
		}
	}
	if math.Abs(stops[len(stops)-1]-s.TotalLength()) > 1e-9 {
		t.Fatalf("last stop %v != total length %v", stops[len(stops)-1], s.TotalLength())
	}
}

func TestDegeneratePaths(t *testing.T) {
	empty := Build(nil, testSamples)
	if _, ok := empty.CameraAt(0.5); ok {
		t.Fatal("empty path must return no camera")
	}
	if empty.Playable() {
		t.Fatal("empty path must not be playable")
	}

	single := Build([]camera.Camera{kf(3, "0.25", "0.75")}, testSamples)
	if single.Playable() {
		t.Fatal("single keyframe must not be playable")
	}
	for _, p := range []float64{0, 0.3, 1} {
		cam, ok := single.CameraAt(p)
		if !ok || cam.GlobalLevel != 3 {
			t.Fatalf("constant sampler broke at p=%v", p)
		}
	}

	// Duplicate keyframes: zero-length segments must not divide by zero
	dup := Build([]camera.Camera{
		kf(1, "0.5", "0.5"),
		kf(1, "0.5", "0.5"),
		kf(2, "0.6", "0.5"),
	}, testSamples)
	cam, ok := dup.CameraAt(0.5)
	if !ok {
		t.Fatal("duplicate-keyframe path must still sample")
	}
	if math.IsNaN(cam.GlobalLevel) {
		t.Fatal("NaN level from zero-length segment")
	}
	x, _ := cam.X.Float64()
	if math.IsNaN(x) {
		t.Fatal("NaN position from zero-length segment")
	}
}

func TestPanOnlySegmentAvoidsNaN(t *testing.T) {
	// Equal levels with moving position: the swoop denominator is zero and
	// must short-circuit to linear blending
	s := Build([]camera.Camera{
		kf(5, "0.1", "0.5"),
		kf(5, "0.9", "0.5"),
	}, testSamples)
	cam, _ := s.CameraAt(0.5)
	x, _ := cam.X.Float64()
	if math.IsNaN(x) {
		t.Fatal("pan-only segment produced NaN")
	}
	if math.Abs(x-0.5) > 0.01 {
		t.Fatalf("midpoint x = %v, want ~0.5", x)
	}
}

func TestProgressClamping(t *testing.T) {
	s := Build(deepZoomPath(), testSamples)
	lo, _ := s.CameraAt(-3)
	hi, _ := s.CameraAt(7)
	zero, _ := s.CameraAt(0)
	one, _ := s.CameraAt(1)
	if VisualDistance(lo, zero) != 0 || VisualDistance(hi, one) != 0 {
		t.Fatal("out-of-range progress must clamp to the endpoints")
	}
}

package path

import (
	"encoding/json"
	"testing"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

func TestEditorInsertDelete(t *testing.T) {
	e := NewEditor([]camera.Camera{
		kf(0, "0.5", "0.5"),
		kf(5, "0.6", "0.6"),
	}, testSamples)

	if !e.Sampler().Playable() {
		t.Fatal("two keyframes must be playable")
	}

	e.InsertAfterActive(kf(2, "0.55", "0.55"))
	if e.Len() != 3 || e.ActiveIndex() != 1 {
		t.Fatalf("len=%d active=%d after insert", e.Len(), e.ActiveIndex())
	}
	mid, err := e.Keyframe(1)
	if err != nil || mid.GlobalLevel != 2 {
		t.Fatalf("inserted keyframe misplaced: %v %v", mid.GlobalLevel, err)
	}

	if err := e.Delete(0); err != nil {
		t.Fatal(err)
	}
	if e.Len() != 2 || e.ActiveIndex() != 0 {
		t.Fatalf("len=%d active=%d after delete", e.Len(), e.ActiveIndex())
	}

	if err := e.Delete(5); err == nil {
		t.Fatal("out-of-range delete must fail")
	}

	// Deleting down to one keyframe disables playback but keeps sampling
	if err := e.Delete(1); err != nil {
		t.Fatal(err)
	}
	if e.Sampler().Playable() {
		t.Fatal("single keyframe path must not be playable")
	}
	if _, ok := e.Sampler().CameraAt(0); !ok {
		t.Fatal("single keyframe path must still sample")
	}
}

func TestEditorJumpTo(t *testing.T) {
	kfs := []camera.Camera{
		kf(0, "0.5", "0.5"),
		kf(4, "0.52", "0.52"),
		kf(8, "0.521", "0.521"),
	}
	e := NewEditor(kfs, testSamples)

	cam, elapsed, err := e.JumpTo(1)
	if err != nil {
		t.Fatal(err)
	}
	if VisualDistance(cam, kfs[1]) != 0 {
		t.Fatal("JumpTo must return the exact keyframe, not a sampled camera")
	}
	wantElapsed := e.Sampler().Stops()[1] / parameter.PathSpeed
	if elapsed != wantElapsed {
		t.Fatalf("elapsed = %v, want %v", elapsed, wantElapsed)
	}
	if e.ActiveIndex() != 1 {
		t.Fatalf("active = %d", e.ActiveIndex())
	}

	if _, _, err := e.JumpTo(9); err == nil {
		t.Fatal("out-of-range jump must fail")
	}
}

func TestEditorExportRoundTrip(t *testing.T) {
	kfs := []camera.Camera{
		kf(0, "0.5", "0.5"),
		kf(40, "0.5200000000000000000000001", "0.52"),
	}
	e := NewEditor(kfs, testSamples)

	data, err := e.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Path struct {
			Keyframes []camera.KeyframeJSON `json:"keyframes"`
		} `json:"path"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Path.Keyframes) != 2 {
		t.Fatalf("got %d keyframes", len(decoded.Path.Keyframes))
	}
	back, err := decoded.Path.Keyframes[1].Camera.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if back.X.Cmp(kfs[1].X) != 0 {
		t.Fatalf("deep-zoom x lost precision: %s", back.X.String())
	}
}

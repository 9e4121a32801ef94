package path

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

// ErrPathInvalid reports a path too short to sample or play
var ErrPathInvalid = errors.New("path needs at least 2 keyframes")

// Editor mutates the active path's keyframe list. Every mutation rebuilds
// the sampler; playback controls key off Playable()
type Editor struct {
	keyframes      []camera.Camera
	active         int
	sampler        *Sampler
	samplesPerPrim int
}

// NewEditor wraps a keyframe list and builds the initial sampler.
// samplesPerPrim <= 0 selects the default LUT resolution
func NewEditor(kfs []camera.Camera, samplesPerPrim int) *Editor {
	e := &Editor{
		keyframes:      append([]camera.Camera(nil), kfs...),
		samplesPerPrim: samplesPerPrim,
	}
	e.rebuild()
	return e
}

// Sampler returns the current built sampler
func (e *Editor) Sampler() *Sampler {
	return e.sampler
}

// Len returns the keyframe count
func (e *Editor) Len() int {
	return len(e.keyframes)
}

// ActiveIndex returns the cursor position in the keyframe list
func (e *Editor) ActiveIndex() int {
	return e.active
}

// Keyframe returns keyframe i
func (e *Editor) Keyframe(i int) (camera.Camera, error) {
	if i < 0 || i >= len(e.keyframes) {
		return camera.Camera{}, fmt.Errorf("keyframe %d out of range [0,%d)", i, len(e.keyframes))
	}
	return e.keyframes[i], nil
}

// JumpTo sets the active index to i and returns the exact keyframe camera
// (bypassing the sampler) together with the elapsed playback time that
// keyframe corresponds to
func (e *Editor) JumpTo(i int) (camera.Camera, float64, error) {
	cam, err := e.Keyframe(i)
	if err != nil {
		return camera.Camera{}, 0, err
	}
	e.active = i
	elapsed := 0.0
	if stops := e.sampler.Stops(); i < len(stops) {
		elapsed = stops[i] / parameter.PathSpeed
	}
	return cam, elapsed, nil
}

// InsertAfterActive snapshots cam as a new keyframe after the active one
// and advances the cursor onto it
func (e *Editor) InsertAfterActive(cam camera.Camera) {
	at := e.active + 1
	if len(e.keyframes) == 0 {
		at = 0
	}
	e.keyframes = append(e.keyframes, camera.Camera{})
	copy(e.keyframes[at+1:], e.keyframes[at:])
	e.keyframes[at] = cam
	e.active = at
	e.rebuild()
}

// Delete removes keyframe i, keeping the active cursor on a valid entry
func (e *Editor) Delete(i int) error {
	if i < 0 || i >= len(e.keyframes) {
		return fmt.Errorf("keyframe %d out of range [0,%d)", i, len(e.keyframes))
	}
	e.keyframes = append(e.keyframes[:i], e.keyframes[i+1:]...)
	if e.active > i || e.active >= len(e.keyframes) {
		e.active--
	}
	if e.active < 0 {
		e.active = 0
	}
	e.rebuild()
	return nil
}

// pathJSON mirrors the wire layout: {"path": {"keyframes": [...]}}
type pathJSON struct {
	Path struct {
		Keyframes []camera.KeyframeJSON `json:"keyframes"`
	} `json:"path"`
}

// ExportJSON serializes the keyframes with string-encoded positions so
// deep-zoom coordinates survive the round trip
func (e *Editor) ExportJSON() ([]byte, error) {
	var out pathJSON
	out.Path.Keyframes = make([]camera.KeyframeJSON, len(e.keyframes))
	for i, kf := range e.keyframes {
		out.Path.Keyframes[i] = camera.KeyframeJSON{Camera: camera.Encode(kf)}
	}
	return json.MarshalIndent(out, "", "  ")
}

func (e *Editor) rebuild() {
	e.sampler = Build(e.keyframes, e.samplesPerPrim)
}

package engine

import (
	"math"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/bignum"
	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/dataset"
	"github.com/veyra/abyss/parameter"
	"github.com/veyra/abyss/path"
	"github.com/veyra/abyss/render"
	"github.com/veyra/abyss/sched"
	"github.com/veyra/abyss/sound"
)

// LoopHook is the per-frame telemetry callback, invoked with the
// context and current time before any frame work
type LoopHook func(v *ViewerContext, now time.Time)

// ViewerContext is the single-owner viewer state. Everything in it is
// touched only from the frame loop; workers reach it exclusively
// through completion messages
type ViewerContext struct {
	Log *logrus.Logger

	Cam    camera.Camera
	Editor *path.Editor
	Sched  *sched.Scheduler
	Orch   *render.Orchestrator
	Clock  *PlaybackClock
	Time   *TimeProvider
	Sounds *sound.Player

	Datasets []dataset.IndexEntry
	Active   int
	Config   *dataset.Config

	LiveEnabled     bool
	AutoplayPending bool

	// Status is the latest backend snapshot; nil means unavailable
	Status *dataset.Status

	Hook LoopHook

	// Viewport in framebuffer pixels (2 per terminal cell each way)
	ViewW, ViewH int

	statusMsg   string
	statusUntil time.Time
}

// NewViewerContext wires the main-loop state around a scheduler and
// orchestrator
func NewViewerContext(log *logrus.Logger, sch *sched.Scheduler, orch *render.Orchestrator) *ViewerContext {
	return &ViewerContext{
		Log:    log,
		Cam:    camera.New(),
		Editor: path.NewEditor(nil, 0),
		Sched:  sch,
		Orch:   orch,
		Clock:  NewPlaybackClock(),
		Time:   NewTimeProvider(),
	}
}

// ActivateDataset installs a loaded dataset: path, manifest, camera
// start point, and precision headroom for its deepest level
func (v *ViewerContext) ActivateDataset(cfg *dataset.Config, kfs []camera.Camera, manifest *dataset.Manifest) {
	v.Config = cfg
	v.Editor = path.NewEditor(kfs, 0)
	v.Clock = NewPlaybackClock()

	bignum.Raise(dataset.MaxLevel(cfg, kfs))

	if len(kfs) > 0 {
		v.Cam = kfs[0]
	} else {
		v.Cam = camera.New()
	}

	v.Orch.SetDataset(cfg.ID, cfg.TileSize, manifest, v.LiveEnabled)
	v.Log.WithField("dataset", cfg.ID).WithField("keyframes", len(kfs)).Info("dataset activated")
}

// Resize updates viewport pixel dimensions
func (v *ViewerContext) Resize(w, h int) {
	v.ViewW, v.ViewH = w, h
	v.Orch.Resize(w, h)
}

// Step runs one frame of main-loop work: hook, autoplay gate, playback
// advance, reconcile, dispatch
func (v *ViewerContext) Step(now time.Time) {
	if v.Hook != nil {
		v.Hook(v, now)
	}

	if v.AutoplayPending && v.Editor.Sampler().Playable() &&
		len(v.Orch.Views()) > 0 && v.Orch.AllLoaded() {
		v.AutoplayPending = false
		v.Clock.Start()
		v.Sounds.Play(sound.CueChime)
	}

	if v.Clock.Running() {
		v.advancePlayback()
	}

	v.Orch.Reconcile(v.Cam)
	v.Sched.Process()
}

// advancePlayback samples the path at the clock's progress, pausing at
// the end
func (v *ViewerContext) advancePlayback() {
	s := v.Editor.Sampler()
	total := s.TotalLength()
	if total <= 0 {
		v.Clock.Pause()
		return
	}
	progress := v.Clock.Elapsed() * parameter.PathSpeed / total
	if cam, ok := s.CameraAt(progress); ok {
		v.Cam = cam
	}
	if progress >= 1 {
		v.Clock.Pause()
		v.Clock.SeekTo(total / parameter.PathSpeed)
	}
}

// PlaybackProgress reports normalized position for the timeline, 0 when
// the path is not playable
func (v *ViewerContext) PlaybackProgress() float64 {
	total := v.Editor.Sampler().TotalLength()
	if total <= 0 {
		return 0
	}
	p := v.Clock.Elapsed() * parameter.PathSpeed / total
	if p > 1 {
		p = 1
	}
	return p
}

// TogglePlayback starts or pauses path playback. Unplayable paths
// reject with an error cue
func (v *ViewerContext) TogglePlayback() {
	if !v.Editor.Sampler().Playable() {
		v.Sounds.Play(sound.CueError)
		v.SetStatus("path needs at least 2 keyframes")
		return
	}
	if v.Clock.Running() {
		v.Clock.Pause()
		return
	}
	if v.PlaybackProgress() >= 1 {
		v.Clock.SeekTo(0)
	}
	v.Clock.Start()
	v.Sounds.Play(sound.CueChime)
}

// JumpKeyframe moves the active keyframe cursor by delta and snaps the
// camera to the exact keyframe, bypassing the sampler
func (v *ViewerContext) JumpKeyframe(delta int) {
	n := v.Editor.Len()
	if n == 0 {
		v.Sounds.Play(sound.CueError)
		return
	}
	i := v.Editor.ActiveIndex() + delta
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	cam, elapsed, err := v.Editor.JumpTo(i)
	if err != nil {
		v.Sounds.Play(sound.CueError)
		return
	}
	v.Cam = cam
	v.Clock.Pause()
	v.Clock.SeekTo(elapsed)
	v.SetStatus("keyframe " + strconv.Itoa(i+1) + "/" + strconv.Itoa(n))
}

// InsertKeyframe snapshots the current camera after the active keyframe
func (v *ViewerContext) InsertKeyframe() {
	v.Editor.InsertAfterActive(v.Cam)
	v.Sounds.Play(sound.CueConfirm)
	v.SetStatus("keyframe inserted (" + strconv.Itoa(v.Editor.Len()) + " total)")
}

// DeleteKeyframe removes the active keyframe
func (v *ViewerContext) DeleteKeyframe() {
	if v.Editor.Len() == 0 {
		v.Sounds.Play(sound.CueError)
		return
	}
	if err := v.Editor.Delete(v.Editor.ActiveIndex()); err != nil {
		v.Sounds.Play(sound.CueError)
		return
	}
	v.Sounds.Play(sound.CueConfirm)
	v.SetStatus("keyframe deleted (" + strconv.Itoa(v.Editor.Len()) + " left)")
}

// ExportPath writes the edited keyframe list as JSON beside the viewer,
// positions string-encoded so no precision is lost
func (v *ViewerContext) ExportPath() {
	if v.Editor.Len() == 0 {
		v.Sounds.Play(sound.CueError)
		v.SetStatus("no keyframes to export")
		return
	}
	data, err := v.Editor.ExportJSON()
	if err != nil {
		v.Sounds.Play(sound.CueError)
		v.SetStatus("path export failed")
		return
	}
	name := "path-export.json"
	if v.Config != nil {
		name = "path-" + v.Config.ID + ".json"
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		v.Log.WithError(err).Warn("path export failed")
		v.Sounds.Play(sound.CueError)
		v.SetStatus("path export failed")
		return
	}
	v.Sounds.Play(sound.CueConfirm)
	v.SetStatus("path saved: " + name)
}

// Pan moves the camera by screen pixels, honoring rotation
func (v *ViewerContext) Pan(dxPx, dyPx float64) {
	if v.Config == nil {
		return
	}
	v.Cam.Pan(dxPx, dyPx, v.Config.TileSize)
	bignum.Raise(int(math.Ceil(v.Cam.GlobalLevel)))
}

// Zoom shifts the global level; rejected deltas keep prior state
func (v *ViewerContext) Zoom(delta float64) {
	if err := v.Cam.Zoom(delta); err != nil {
		v.Sounds.Play(sound.CueError)
		v.SetStatus(err.Error())
		return
	}
	bignum.Raise(int(math.Ceil(v.Cam.GlobalLevel)))
}

// Rotate adjusts the view rotation
func (v *ViewerContext) Rotate(delta float64) {
	if err := v.Cam.SetRotation(v.Cam.Rotation + delta); err != nil {
		v.Sounds.Play(sound.CueError)
	}
}

// HandleCompletion routes a worker result: busy live renders retry at
// the queue front, everything else completes its lane slot and lands
// in the tile view (or is discarded if the view was pruned)
func (v *ViewerContext) HandleCompletion(c dataset.Completion) {
	if c.Outcome == dataset.OutcomeBusy && c.Lane == sched.LaneLive {
		v.Sched.RetryFront(c.ID)
		return
	}
	v.Sched.Complete(c.ID, c.Outcome == dataset.OutcomeOK)
	v.Orch.ApplyCompletion(c)
}

// SetStatus shows a transient message in the status line
func (v *ViewerContext) SetStatus(msg string) {
	v.statusMsg = msg
	v.statusUntil = v.Time.Now().Add(3 * time.Second)
}

// StatusMessage returns the current transient message, empty when
// expired
func (v *ViewerContext) StatusMessage(now time.Time) string {
	if now.After(v.statusUntil) {
		return ""
	}
	return v.statusMsg
}

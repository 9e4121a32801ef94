package render

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/dataset"
	"github.com/veyra/abyss/parameter"
	"github.com/veyra/abyss/sched"
	"github.com/veyra/abyss/tiles"
)

// Orchestrator reconciles the visible layer stack against the active
// tile views once per frame and composites them into the framebuffer.
// All state is main-loop-owned
type Orchestrator struct {
	log *logrus.Logger
	sch *sched.Scheduler

	dsID        string
	tileSize    int
	manifest    *dataset.Manifest
	liveEnabled bool
	noManifest  bool

	viewW, viewH int

	active map[string]*TileView
}

// NewOrchestrator creates an orchestrator bound to a scheduler
func NewOrchestrator(log *logrus.Logger, sch *sched.Scheduler) *Orchestrator {
	return &Orchestrator{
		log:    log,
		sch:    sch,
		active: make(map[string]*TileView),
	}
}

// SetDataset switches the active dataset, dropping every tile view.
// A nil manifest enables the always-request fallback, logged once
func (o *Orchestrator) SetDataset(dsID string, tileSize int, manifest *dataset.Manifest, liveEnabled bool) {
	o.dsID = dsID
	o.tileSize = tileSize
	o.manifest = manifest
	o.liveEnabled = liveEnabled
	o.noManifest = manifest == nil
	o.active = make(map[string]*TileView)
	if o.noManifest {
		o.log.WithField("dataset", dsID).Warn("no tile manifest, requesting every visible tile")
	}
}

// Resize updates the viewport pixel dimensions
func (o *Orchestrator) Resize(w, h int) {
	o.viewW, o.viewH = w, h
}

// TileSize returns the active dataset's tile edge in source pixels
func (o *Orchestrator) TileSize() int {
	return o.tileSize
}

// Views returns the active tile view map. Read-only for callers
func (o *Orchestrator) Views() map[string]*TileView {
	return o.active
}

// AllLoaded reports whether every active tile has finished, the
// autoplay readiness gate. Blank-loaded tiles count as processed
func (o *Orchestrator) AllLoaded() bool {
	for _, v := range o.active {
		if !v.loaded {
			return false
		}
	}
	return true
}

// layer is one level of the target stack
type layer struct {
	level   int
	opacity float64
}

// targetEntry is one tile the frame wants on screen
type targetEntry struct {
	id         tiles.ID
	lane       sched.Lane
	tx, ty     float64
	size       float64
	opacity    float64
	z          int
	relX, relY float64
}

// Reconcile prunes the scheduler, computes the three-level target
// stack, and diffs it against the active views: stale views removed,
// missing ones created and requested, changed style fields updated
func (o *Orchestrator) Reconcile(cam camera.Camera) {
	if o.dsID == "" || o.viewW == 0 || o.viewH == 0 {
		return
	}
	o.sch.Prune(cam, o.viewW, o.viewH, o.tileSize)

	base := cam.BaseLevel()
	frac := cam.LevelFrac()

	layers := make([]layer, 0, 3)
	if base > 0 {
		layers = append(layers, layer{base - 1, 1.0})
	}
	layers = append(layers, layer{base, 1.0})
	if frac > parameter.ChildOpacityEpsilon {
		layers = append(layers, layer{base + 1, frac})
	}

	target := make(map[string]targetEntry)
	for _, ly := range layers {
		res, err := tiles.VisibleForLevel(cam, ly.level, o.viewW, o.viewH, o.tileSize)
		if err != nil {
			o.log.WithError(err).WithField("level", ly.level).Warn("tile selection failed")
			continue
		}
		displayScale := math.Exp2(cam.GlobalLevel - float64(ly.level))
		size := float64(o.tileSize) * displayScale

		for _, tl := range res.Tiles {
			id := tiles.ID{Dataset: o.dsID, Level: tl.Level, X: tl.X, Y: tl.Y}
			inManifest := o.manifest.Has(id.Key())
			if !inManifest && !o.liveEnabled {
				continue
			}
			lane := sched.LaneStatic
			if !inManifest {
				lane = sched.LaneLive
			}
			target[id.String()] = targetEntry{
				id:      id,
				lane:    lane,
				tx:      float64(o.viewW)/2 + tl.RelX*size,
				ty:      float64(o.viewH)/2 + tl.RelY*size,
				size:    size,
				opacity: ly.opacity,
				z:       ly.level,
				relX:    tl.RelX,
				relY:    tl.RelY,
			}
		}
	}

	for key := range o.active {
		if _, ok := target[key]; !ok {
			// In-flight results for removed views are discarded at
			// completion time
			delete(o.active, key)
		}
	}

	for key, e := range target {
		v, ok := o.active[key]
		if !ok {
			v = &TileView{ID: e.id}
			o.active[key] = v
			opts := sched.Options{
				Lane: e.lane,
				RelX: e.relX,
				RelY: e.relY,
			}
			if e.lane == sched.LaneLive {
				opts.URL = dataset.LivePath(e.id)
				opts.Badge = v
			} else {
				opts.URL = dataset.TilePath(o.dsID, e.id)
			}
			o.sch.Request(e.id, opts)
		}
		if v.tx != e.tx || v.ty != e.ty || v.size != e.size {
			v.tx, v.ty, v.size = e.tx, e.ty, e.size
		}
		if v.opacity != e.opacity {
			v.opacity = e.opacity
		}
		if v.z != e.z {
			v.z = e.z
		}
		v.relX, v.relY = e.relX, e.relY
	}
}

// ApplyCompletion installs a worker result into its tile view and
// reports whether the view was still active. Live successes grow the
// manifest so later frames route the tile to the static lane
func (o *Orchestrator) ApplyCompletion(c dataset.Completion) bool {
	v, ok := o.active[c.ID.String()]
	if !ok {
		return false
	}
	switch c.Outcome {
	case dataset.OutcomeOK:
		v.deliver(c.Image)
		if c.Lane == sched.LaneLive {
			o.manifest.Add(c.ID.Key())
		}
	case dataset.OutcomeFailed:
		v.deliver(nil)
	}
	return true
}

// sortedViews returns active views in ascending z so deeper levels
// paint over their parents
func (o *Orchestrator) sortedViews() []*TileView {
	vs := make([]*TileView, 0, len(o.active))
	for _, v := range o.active {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].z != vs[j].z {
			return vs[i].z < vs[j].z
		}
		return vs[i].ID.Key() < vs[j].ID.Key()
	})
	return vs
}

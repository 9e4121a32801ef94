package sched

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
	"github.com/veyra/abyss/tiles"
)

// Dispatcher executes a dispatched request on its lane. Implementations
// run the work off the main loop and report back through Complete
type Dispatcher interface {
	Dispatch(req *Request)
}

// Scheduler is the prioritized two-lane tile request queue. It is owned
// by the main loop: every method must be called from there, which is
// what makes the whole thing lock-free
type Scheduler struct {
	queue   []*Request
	entries map[string]*Request
	active  map[Lane]int
	limits  map[Lane]int
	disp    map[Lane]Dispatcher

	// Last observed camera/view, recorded by Prune, drives priority
	cam      camera.Camera
	viewW    int
	viewH    int
	tileSize int
	observed bool

	now func() time.Time
	log *logrus.Logger
}

// New creates a scheduler with the standard lane limits
func New(log *logrus.Logger, static, live Dispatcher) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{
		entries: make(map[string]*Request),
		active:  map[Lane]int{},
		limits: map[Lane]int{
			LaneStatic: parameter.StaticLaneLimit,
			LaneLive:   parameter.LiveLaneLimit,
		},
		disp: map[Lane]Dispatcher{
			LaneStatic: static,
			LaneLive:   live,
		},
		now: time.Now,
		log: log,
	}
}

// Request enqueues a tile or merges options into its existing entry.
// Duplicate identities never produce a second queue slot; badge targets
// transfer to the newest element
func (s *Scheduler) Request(id tiles.ID, opts Options) {
	key := id.String()
	if req, ok := s.entries[key]; ok {
		if opts.Badge != nil {
			if req.Badge != nil && req.Badge != opts.Badge {
				req.Badge.SetBadge("")
				req.Badge.SetRendering(false)
			}
			req.Badge = opts.Badge
			if req.Status == StatusDispatched && req.Lane == LaneLive {
				req.Badge.SetRendering(true)
			}
		}
		if opts.URL != "" {
			req.URL = opts.URL
		}
		req.RelX, req.RelY = opts.RelX, opts.RelY
		return
	}

	req := &Request{
		ID:     id,
		Lane:   opts.Lane,
		Status: StatusQueued,
		URL:    opts.URL,
		Badge:  opts.Badge,
		RelX:   opts.RelX,
		RelY:   opts.RelY,
	}
	s.entries[key] = req
	s.queue = append(s.queue, req)
}

// QueuedLen reports the number of undispatched entries
func (s *Scheduler) QueuedLen() int {
	return len(s.queue)
}

// Active reports in-flight dispatches on a lane
func (s *Scheduler) Active(lane Lane) int {
	return s.active[lane]
}

// Has reports whether the tile is queued or in flight
func (s *Scheduler) Has(id tiles.ID) bool {
	_, ok := s.entries[id.String()]
	return ok
}

// Prune records the current camera/view and evicts queued entries no
// longer visible. Levels outside the base +/- span window are dropped
// wholesale; in-window entries are checked against the selector's valid
// set and their relative placements refreshed
func (s *Scheduler) Prune(cam camera.Camera, viewW, viewH, tileSize int) {
	s.cam, s.viewW, s.viewH, s.tileSize = cam, viewW, viewH, tileSize
	s.observed = true

	base := cam.BaseLevel()
	levels := make(map[int]bool)
	for _, req := range s.queue {
		levels[req.ID.Level] = true
	}

	valid := make(map[int]map[string]tiles.Placed)
	for level := range levels {
		if abs(level-base) > parameter.PruneLevelSpan {
			continue
		}
		res, err := tiles.VisibleForLevel(cam, level, viewW, viewH, tileSize)
		if err != nil {
			s.log.WithError(err).WithField("level", level).Warn("prune: selector failed")
			continue
		}
		set := make(map[string]tiles.Placed, len(res.Tiles))
		for _, tl := range res.Tiles {
			set[tiles.ID{Level: tl.Level, X: tl.X, Y: tl.Y}.Key()] = tl
		}
		valid[level] = set
	}

	kept := s.queue[:0]
	for _, req := range s.queue {
		set, inWindow := valid[req.ID.Level]
		tl, visible := tiles.Placed{}, false
		if inWindow {
			tl, visible = set[req.ID.Key()]
		}
		if !visible {
			s.evict(req)
			continue
		}
		req.RelX, req.RelY = tl.RelX, tl.RelY
		kept = append(kept, req)
	}
	// Zero the tail so evicted requests do not pin memory
	for i := len(kept); i < len(s.queue); i++ {
		s.queue[i] = nil
	}
	s.queue = kept
}

func (s *Scheduler) evict(req *Request) {
	if req.Badge != nil {
		req.Badge.SetBadge("")
		req.Badge.SetRendering(false)
	}
	delete(s.entries, req.ID.String())
}

// Process sorts the queue by priority, refreshes live badges, and
// dispatches up to each lane's concurrency limit
func (s *Scheduler) Process() {
	s.sortQueue()
	s.relabelBadges()

	now := s.now()
	kept := s.queue[:0]
	for _, req := range s.queue {
		if s.active[req.Lane] >= s.limits[req.Lane] || req.notBefore.After(now) {
			kept = append(kept, req)
			continue
		}
		req.Status = StatusDispatched
		s.active[req.Lane]++
		if req.Lane == LaneLive && req.Badge != nil {
			req.Badge.SetBadge("")
			req.Badge.SetRendering(true)
		}
		s.disp[req.Lane].Dispatch(req)
	}
	for i := len(kept); i < len(s.queue); i++ {
		s.queue[i] = nil
	}
	s.queue = kept
}

// Complete frees a lane slot. ok=false covers decode failures and
// permanent backend errors; the caller is responsible for marking the
// tile view loaded-as-blank so readiness checks do not stall
func (s *Scheduler) Complete(id tiles.ID, ok bool) {
	key := id.String()
	req, found := s.entries[key]
	if !found || req.Status != StatusDispatched {
		return
	}
	req.Status = StatusDone
	if s.active[req.Lane] > 0 {
		s.active[req.Lane]--
	}
	if req.Badge != nil {
		req.Badge.SetRendering(false)
	}
	delete(s.entries, key)
	if !ok {
		s.log.WithField("tile", key).Debug("request completed with failure")
	}
}

// RetryFront re-enqueues a dispatched live request at the head of the
// queue, delayed by the retry interval. Options are preserved; the tile
// element stays visible to the user
func (s *Scheduler) RetryFront(id tiles.ID) {
	key := id.String()
	req, found := s.entries[key]
	if !found || req.Status != StatusDispatched {
		return
	}
	if s.active[req.Lane] > 0 {
		s.active[req.Lane]--
	}
	req.Status = StatusQueued
	req.Retries++
	req.notBefore = s.now().Add(parameter.RetryDelay)
	if req.Badge != nil {
		req.Badge.SetRendering(false)
	}
	s.queue = append([]*Request{req}, s.queue...)
	s.log.WithField("tile", key).WithField("retries", req.Retries).Debug("backend busy, retrying")
}

// sortQueue orders by larger visible screen area first, then by smaller
// squared distance to the viewport center. Stable so equal tiles keep
// arrival order
func (s *Scheduler) sortQueue() {
	if !s.observed || len(s.queue) < 2 {
		return
	}
	type ranked struct {
		area float64
		dist float64
	}
	ranks := make(map[*Request]ranked, len(s.queue))
	for _, req := range s.queue {
		a, d := s.screenRank(req)
		ranks[req] = ranked{a, d}
	}
	sort.SliceStable(s.queue, func(i, j int) bool {
		ri, rj := ranks[s.queue[i]], ranks[s.queue[j]]
		if ri.area != rj.area {
			return ri.area > rj.area
		}
		return ri.dist < rj.dist
	})
}

// screenRank computes a request's expected on-screen clipped area and
// squared center distance from its relative placement
func (s *Scheduler) screenRank(req *Request) (area, distSq float64) {
	scale := math.Exp2(s.cam.GlobalLevel - float64(req.ID.Level))
	size := float64(s.tileSize) * scale
	tx := float64(s.viewW)/2 + req.RelX*size
	ty := float64(s.viewH)/2 + req.RelY*size

	w := math.Min(tx+size, float64(s.viewW)) - math.Max(tx, 0)
	h := math.Min(ty+size, float64(s.viewH)) - math.Max(ty, 0)
	if w > 0 && h > 0 {
		area = w * h
	}

	cx := tx + size/2 - float64(s.viewW)/2
	cy := ty + size/2 - float64(s.viewH)/2
	return area, cx*cx + cy*cy
}

// relabelBadges renumbers queued live entries in priority order
func (s *Scheduler) relabelBadges() {
	pos := 0
	for _, req := range s.queue {
		if req.Lane != LaneLive {
			continue
		}
		pos++
		if req.Badge == nil {
			continue
		}
		if pos > parameter.BadgeMax {
			req.Badge.SetBadge("#" + strconv.Itoa(parameter.BadgeMax) + "+")
		} else {
			req.Badge.SetBadge("#" + strconv.Itoa(pos))
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

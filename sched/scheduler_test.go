package sched

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/bignum"
	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/tiles"
)

type fakeDispatcher struct {
	dispatched []*Request
}

func (d *fakeDispatcher) Dispatch(req *Request) {
	d.dispatched = append(d.dispatched, req)
}

type fakeBadge struct {
	label     string
	rendering bool
}

func (b *fakeBadge) SetBadge(label string) { b.label = label }
func (b *fakeBadge) SetRendering(on bool)  { b.rendering = on }

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testScheduler() (*Scheduler, *fakeDispatcher, *fakeDispatcher) {
	static := &fakeDispatcher{}
	live := &fakeDispatcher{}
	return New(quietLog(), static, live), static, live
}

func tid(level int, x, y int64) tiles.ID {
	return tiles.ID{Dataset: "d", Level: level, X: bignum.NewIndex(x), Y: bignum.NewIndex(y)}
}

func centeredCam(level float64) camera.Camera {
	c := camera.New()
	c.GlobalLevel = level
	return c
}

func TestDuplicateRequestSingleDispatch(t *testing.T) {
	s, static, _ := testScheduler()
	id := tid(3, 4, 4)

	s.Request(id, Options{Lane: LaneStatic})
	s.Request(id, Options{Lane: LaneStatic})
	if s.QueuedLen() != 1 {
		t.Fatalf("queue length %d, want 1", s.QueuedLen())
	}

	s.Process()
	if len(static.dispatched) != 1 {
		t.Fatalf("%d dispatches, want 1", len(static.dispatched))
	}
	// Re-requesting an in-flight tile must not re-queue it
	s.Request(id, Options{Lane: LaneStatic})
	s.Process()
	if len(static.dispatched) != 1 {
		t.Fatalf("in-flight tile was dispatched again")
	}
}

func TestLaneConcurrencyLimits(t *testing.T) {
	s, static, live := testScheduler()

	for i := int64(0); i < 10; i++ {
		s.Request(tid(3, i, 0), Options{Lane: LaneStatic})
		s.Request(tid(3, i, 1), Options{Lane: LaneLive})
	}
	s.Process()

	if len(static.dispatched) != 6 || s.Active(LaneStatic) != 6 {
		t.Fatalf("static: %d dispatched, %d active", len(static.dispatched), s.Active(LaneStatic))
	}
	if len(live.dispatched) != 1 || s.Active(LaneLive) != 1 {
		t.Fatalf("live: %d dispatched, %d active", len(live.dispatched), s.Active(LaneLive))
	}

	// Completions free slots; further processing refills up to the limits
	s.Complete(static.dispatched[0].ID, true)
	s.Complete(live.dispatched[0].ID, true)
	s.Process()
	if s.Active(LaneStatic) != 6 {
		t.Fatalf("static lane did not refill: %d", s.Active(LaneStatic))
	}
	if s.Active(LaneLive) != 1 {
		t.Fatalf("live lane active = %d, want 1", s.Active(LaneLive))
	}
}

func TestPruneEvictsOffscreenTiles(t *testing.T) {
	s, static, _ := testScheduler()

	// Visible at the world center, plus one far-corner tile
	s.Request(tid(10, 512, 512), Options{Lane: LaneStatic})
	far := tid(10, 0, 0)
	badge := &fakeBadge{}
	s.Request(far, Options{Lane: LaneLive, Badge: badge})
	badge.label = "#1"

	s.Prune(centeredCam(10), 800, 600, 100)

	if s.Has(far) {
		t.Fatal("far tile survived pruning")
	}
	if badge.label != "" {
		t.Fatalf("evicted badge not cleared: %q", badge.label)
	}
	if !s.Has(tid(10, 512, 512)) {
		t.Fatal("center tile was wrongly evicted")
	}

	// Levels far outside the camera window are dropped wholesale
	s.Request(tid(3, 4, 4), Options{Lane: LaneStatic})
	s.Prune(centeredCam(10), 800, 600, 100)
	if s.Has(tid(3, 4, 4)) {
		t.Fatal("out-of-window level survived pruning")
	}

	s.Process()
	for _, req := range static.dispatched {
		if req.ID.Key() == far.Key() {
			t.Fatal("evicted tile was dispatched")
		}
	}
}

func TestPriorityOrdersByAreaThenCenter(t *testing.T) {
	s, static, _ := testScheduler()

	// Same level: the tile under the camera beats a half-clipped edge tile
	center := tid(10, 512, 512)
	edge := tid(10, 515, 512)
	s.Request(edge, Options{Lane: LaneStatic, RelX: 2.5, RelY: -0.5})
	s.Request(center, Options{Lane: LaneStatic, RelX: -0.5, RelY: -0.5})

	s.Prune(centeredCam(10), 800, 600, 100)
	s.Process()

	if len(static.dispatched) < 2 {
		t.Fatalf("expected both dispatched, got %d", len(static.dispatched))
	}
	if static.dispatched[0].ID.Key() != center.Key() {
		t.Fatalf("first dispatch was %s, want %s", static.dispatched[0].ID.Key(), center.Key())
	}
}

func TestRetryFrontDelaysAndPreservesOptions(t *testing.T) {
	s, _, live := testScheduler()
	now := time.Now()
	s.now = func() time.Time { return now }

	id := tid(5, 16, 16)
	badge := &fakeBadge{}
	s.Request(id, Options{Lane: LaneLive, URL: "http://backend/live/5/16/16.webp", Badge: badge})
	s.Process()
	if len(live.dispatched) != 1 {
		t.Fatal("live dispatch missing")
	}
	if !badge.rendering {
		t.Fatal("rendering mark not set on dispatch")
	}

	s.RetryFront(id)
	if s.Active(LaneLive) != 0 {
		t.Fatalf("active = %d after retry", s.Active(LaneLive))
	}
	if badge.rendering {
		t.Fatal("rendering mark not cleared on retry")
	}
	if s.QueuedLen() != 1 {
		t.Fatalf("queue length %d after retry", s.QueuedLen())
	}

	// Within the delay window nothing dispatches
	s.Process()
	if len(live.dispatched) != 1 {
		t.Fatal("retried request dispatched before the delay elapsed")
	}

	// After the delay the same request (options intact) goes out again
	now = now.Add(250 * time.Millisecond)
	s.Process()
	if len(live.dispatched) != 2 {
		t.Fatal("retried request never re-dispatched")
	}
	if live.dispatched[1].URL != "http://backend/live/5/16/16.webp" {
		t.Fatalf("retry lost options: %q", live.dispatched[1].URL)
	}
	if live.dispatched[1].Retries != 1 {
		t.Fatalf("retry count = %d", live.dispatched[1].Retries)
	}
}

func TestBadgeRelabelling(t *testing.T) {
	s, _, _ := testScheduler()

	badges := make([]*fakeBadge, 12)
	for i := range badges {
		badges[i] = &fakeBadge{}
		s.Request(tid(10, int64(512+i), 512), Options{
			Lane:  LaneLive,
			Badge: badges[i],
			RelX:  float64(i), RelY: 0,
		})
	}
	s.sortQueue()
	s.relabelBadges()

	if badges[0].label != "#1" {
		t.Fatalf("closest tile badge = %q", badges[0].label)
	}
	count10plus := 0
	for _, b := range badges {
		if b.label == "#10+" {
			count10plus++
		}
	}
	if count10plus == 0 {
		t.Fatal("no badge collapsed to #10+")
	}
}

func TestCompleteUnknownTileIsNoop(t *testing.T) {
	s, _, _ := testScheduler()
	s.Complete(tid(1, 0, 0), true)
	if s.Active(LaneStatic) != 0 || s.Active(LaneLive) != 0 {
		t.Fatal("completing an unknown tile perturbed lane counts")
	}
}

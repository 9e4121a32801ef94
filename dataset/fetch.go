package dataset

import (
	"context"
	"errors"
	"image"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/parameter"
	"github.com/veyra/abyss/sched"
)

const (
	// Decoded-tile cache sizing: cost is tracked in pixel bytes, so
	// 256 MB holds ~256 decoded 512px RGBA tiles
	cacheMaxCost     = 256 << 20
	cacheNumCounters = 10_000
	cacheBufferItems = 64
)

// StaticFetcher runs the static-lane worker pool: fetch tile bytes from
// the source, decode, and report decoded images to the frame loop.
// Decoded tiles are kept in a cost-bounded cache so revisited regions
// skip the fetch entirely
type StaticFetcher struct {
	src   Source
	cache *ristretto.Cache[string, image.Image]
	jobs  chan *sched.Request
	out   chan<- Completion
	log   *logrus.Logger
}

// NewStaticFetcher creates the fetcher; Run starts its workers
func NewStaticFetcher(log *logrus.Logger, src Source, out chan<- Completion) (*StaticFetcher, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, image.Image]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &StaticFetcher{
		src:   src,
		cache: cache,
		jobs:  make(chan *sched.Request, parameter.CompletionChannelSize),
		out:   out,
		log:   log,
	}, nil
}

// Run starts the worker pool, one worker per static lane slot. Workers
// exit when ctx is cancelled
func (f *StaticFetcher) Run(ctx context.Context) {
	for i := 0; i < parameter.StaticLaneLimit; i++ {
		go f.worker(ctx)
	}
}

// Dispatch implements sched.Dispatcher. The scheduler never exceeds the
// lane limit, so the buffered jobs channel cannot block the frame loop
func (f *StaticFetcher) Dispatch(req *sched.Request) {
	select {
	case f.jobs <- req:
	default:
		// Should not happen under the lane limit; fail the tile rather
		// than stall the caller
		f.log.WithField("tile", req.ID.String()).Error("static job queue overflow")
		f.report(Completion{ID: req.ID, Lane: sched.LaneStatic, Outcome: OutcomeFailed})
	}
}

// Peek returns a cached decoded tile without queueing a fetch
func (f *StaticFetcher) Peek(key string) (image.Image, bool) {
	return f.cache.Get(key)
}

// Wait flushes pending cache admissions. Used when a caller needs Peek
// to observe a tile that just completed
func (f *StaticFetcher) Wait() {
	f.cache.Wait()
}

func (f *StaticFetcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-f.jobs:
			f.handle(ctx, req)
		}
	}
}

func (f *StaticFetcher) handle(ctx context.Context, req *sched.Request) {
	key := req.ID.String()
	if img, ok := f.cache.Get(key); ok {
		f.report(Completion{ID: req.ID, Lane: sched.LaneStatic, Outcome: OutcomeOK, Image: img})
		return
	}

	b, err := f.src.Fetch(ctx, req.URL)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			f.log.WithError(err).WithField("tile", key).Warn("static fetch failed")
		}
		f.report(Completion{ID: req.ID, Lane: sched.LaneStatic, Outcome: OutcomeFailed, Err: err})
		return
	}
	img, err := DecodeTile(b)
	if err != nil {
		f.log.WithError(err).WithField("tile", key).Warn("static decode failed")
		f.report(Completion{ID: req.ID, Lane: sched.LaneStatic, Outcome: OutcomeFailed, Err: err})
		return
	}

	bounds := img.Bounds()
	f.cache.Set(key, img, int64(bounds.Dx()*bounds.Dy()*4))
	f.report(Completion{ID: req.ID, Lane: sched.LaneStatic, Outcome: OutcomeOK, Image: img})
}

func (f *StaticFetcher) report(c Completion) {
	select {
	case f.out <- c:
	default:
		f.log.WithField("tile", c.ID.String()).Warn("completion channel full, dropping")
	}
}

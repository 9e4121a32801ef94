package dataset

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/parameter"
	"github.com/veyra/abyss/sched"
)

// LiveClient runs the live lane: ask the backend to render a tile on
// demand. 503 and network errors classify as busy so the scheduler can
// retry at the front of the queue; anything else unexpected is permanent
type LiveClient struct {
	base string
	hc   *http.Client
	jobs chan *sched.Request
	out  chan<- Completion
	log  *logrus.Logger
}

// NewLiveClient creates the client against a backend base URL
func NewLiveClient(log *logrus.Logger, base string, out chan<- Completion) *LiveClient {
	return &LiveClient{
		base: strings.TrimRight(base, "/"),
		// Live renders can take a while at depth; generous timeout
		hc:   &http.Client{Timeout: 120 * time.Second},
		jobs: make(chan *sched.Request, parameter.CompletionChannelSize),
		out:  out,
		log:  log,
	}
}

// Run starts the live worker. A single worker matches the lane limit:
// the backend renders one tile at a time anyway
func (c *LiveClient) Run(ctx context.Context) {
	for i := 0; i < parameter.LiveLaneLimit; i++ {
		go c.worker(ctx)
	}
}

// Dispatch implements sched.Dispatcher
func (c *LiveClient) Dispatch(req *sched.Request) {
	select {
	case c.jobs <- req:
	default:
		c.log.WithField("tile", req.ID.String()).Error("live job queue overflow")
		c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeFailed})
	}
}

func (c *LiveClient) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.jobs:
			c.handle(ctx, req)
		}
	}
}

func (c *LiveClient) handle(ctx context.Context, req *sched.Request) {
	key := req.ID.String()

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+req.URL, nil)
	if err != nil {
		c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeFailed, Err: err})
		return
	}
	resp, err := c.hc.Do(hreq)
	if err != nil {
		// Unreachable backend reads as busy: it may be restarting
		c.log.WithError(err).WithField("tile", key).Debug("live fetch unreachable")
		c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeBusy, Err: err})
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeFailed, Err: err})
			return
		}
		img, err := DecodeTile(b)
		if err != nil {
			c.log.WithError(err).WithField("tile", key).Warn("live decode failed")
			c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeFailed, Err: err})
			return
		}
		c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeOK, Image: img})

	case resp.StatusCode == http.StatusServiceUnavailable:
		c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeBusy})

	default:
		c.log.WithField("tile", key).WithField("status", resp.StatusCode).Warn("live render rejected")
		c.report(Completion{ID: req.ID, Lane: sched.LaneLive, Outcome: OutcomeFailed})
	}
}

func (c *LiveClient) report(comp Completion) {
	select {
	case c.out <- comp:
	default:
		c.log.WithField("tile", comp.ID.String()).Warn("completion channel full, dropping")
	}
}

package sched

import (
	"time"

	"github.com/veyra/abyss/tiles"
)

// Lane is a scheduler queue with its own concurrency limit
type Lane int

const (
	// LaneStatic fetches tiles known to exist in the static cache
	LaneStatic Lane = iota
	// LaneLive asks the backend to render a missing tile on demand
	LaneLive
)

func (l Lane) String() string {
	if l == LaneLive {
		return "live"
	}
	return "static"
}

// Status tracks a request through its lifetime
type Status int

const (
	StatusQueued Status = iota
	StatusDispatched
	StatusDone
)

// Badger receives queue-position badge updates for live-lane tiles. The
// scheduler holds it as an opaque reference; the orchestrator's tile
// views implement it
type Badger interface {
	SetBadge(label string)
	SetRendering(on bool)
}

// Options carries lane-specific request payload
type Options struct {
	Lane Lane

	// URL is the fetch target (static tile URL or live render URL)
	URL string

	// Badge is the optional element receiving queue-position labels
	Badge Badger

	// RelX/RelY place the tile relative to the camera in target-level
	// tile units, used for priority ordering
	RelX, RelY float64
}

// Request is one scheduler entry, identified by its tile
type Request struct {
	ID     tiles.ID
	Lane   Lane
	Status Status

	URL        string
	Badge      Badger
	RelX, RelY float64

	// notBefore delays re-dispatch of a retried request
	notBefore time.Time

	// Retries counts 503/network re-enqueues, for logging only
	Retries int
}
